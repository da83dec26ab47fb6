package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActivityDetectorStartsInactive(t *testing.T) {
	d := NewActivityDetector()
	assert.False(t, d.Active())
}

func TestActivityDetectorHysteresis(t *testing.T) {
	cfg := DetectorConfig{Threshold: 0.5, DeadbandFactor: 0.5}
	d := NewActivityDetector()

	// Each step feeds one RMS value and checks the resulting state.
	steps := []struct {
		rms  float64
		want bool
	}{
		{0.1, false}, // below threshold, stays off
		{0.6, true},  // crosses threshold, turns on
		{0.4, true},  // above off level (0.25), holds
		{0.3, true},  // still holding
		{0.24, false}, // below 0.25, turns off
		{0.6, true},  // reactivates
	}

	for i, step := range steps {
		got := d.Update(step.rms, cfg)
		assert.Equal(t, step.want, got, "step %d (rms=%v)", i, step.rms)
	}
}

func TestActivityDetectorExactThresholdActivates(t *testing.T) {
	cfg := DetectorConfig{Threshold: 0.5, DeadbandFactor: 0.5}
	d := NewActivityDetector()

	assert.True(t, d.Update(0.5, cfg), "level equal to threshold activates")
}

func TestActivityDetectorExactOffLevelHolds(t *testing.T) {
	cfg := DetectorConfig{Threshold: 0.5, DeadbandFactor: 0.5}
	d := NewActivityDetector()

	d.Update(0.9, cfg)
	// Deactivation requires strictly below Threshold*DeadbandFactor.
	assert.True(t, d.Update(0.25, cfg), "level equal to off level holds active")
	assert.False(t, d.Update(0.249, cfg))
}

func TestActivityDetectorZeroThreshold(t *testing.T) {
	cfg := DetectorConfig{Threshold: 0, DeadbandFactor: 0.5}
	d := NewActivityDetector()

	// With a zero threshold even silence activates and nothing can deactivate.
	assert.True(t, d.Update(0, cfg))
	assert.True(t, d.Update(0, cfg))
}

func TestActivityDetectorZeroDeadband(t *testing.T) {
	cfg := DetectorConfig{Threshold: 0.5, DeadbandFactor: 0}
	d := NewActivityDetector()

	d.Update(0.9, cfg)
	// Off level is 0; RMS can never go strictly below it, so the state latches.
	assert.True(t, d.Update(0, cfg))
}

func TestActivityDetectorMonotonicThreshold(t *testing.T) {
	// Raising the threshold can only delay activation and hasten release,
	// so on a fixed input the number of active frames never grows.
	levels := []float64{0.05, 0.3, 0.6, 0.2, 0.15, 0.5, 0.08, 0.4, 0.02, 0.7, 0.35, 0.1}

	activeFrames := func(threshold float64) int {
		d := NewActivityDetector()
		cfg := DetectorConfig{Threshold: threshold, DeadbandFactor: 0.5}
		count := 0
		for _, rms := range levels {
			if d.Update(rms, cfg) {
				count++
			}
		}
		return count
	}

	prev := activeFrames(0.05)
	for _, threshold := range []float64{0.1, 0.2, 0.35, 0.5, 0.65, 0.8, 1.0} {
		count := activeFrames(threshold)
		assert.LessOrEqual(t, count, prev, "threshold %v", threshold)
		prev = count
	}
}

func TestActivityDetectorReset(t *testing.T) {
	cfg := DetectorConfig{Threshold: 0.5, DeadbandFactor: 0.5}
	d := NewActivityDetector()

	d.Update(0.9, cfg)
	assert.True(t, d.Active())

	d.Reset()
	assert.False(t, d.Active())
}
