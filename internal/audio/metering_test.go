package audio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// pcm builds an S16LE byte buffer from sample values.
func pcm(samples ...int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

func TestMeasureBuffer(t *testing.T) {
	tests := []struct {
		name    string
		samples []int16
		want    float64
	}{
		{"silence", []int16{0, 0, 0, 0}, 0},
		{"full scale negative", []int16{-32768, -32768}, 1.0},
		{"half scale", []int16{16384, -16384, 16384, -16384}, 0.5},
		{"single sample", []int16{3277}, float64(3277) / MaxSampleValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := pcm(tt.samples...)
			got := MeasureBuffer(buf, len(buf))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestMeasureBufferEmpty(t *testing.T) {
	assert.Zero(t, MeasureBuffer(nil, 0))
	assert.Zero(t, MeasureBuffer([]byte{0x12}, 1), "a lone byte is not a complete sample")
}

func TestMeasureBufferPartialRead(t *testing.T) {
	buf := pcm(16384, 16384, 16384, 16384)

	// Only the first two samples fall within n.
	got := MeasureBuffer(buf, 4)
	assert.InDelta(t, 0.5, got, 1e-9)

	// An odd n must not read past the last complete sample.
	got = MeasureBuffer(buf, 5)
	assert.InDelta(t, 0.5, got, 1e-9)
}

func TestProcessSamplesAccumulates(t *testing.T) {
	var data LevelData

	buf := pcm(100, -200, 32767)
	ProcessSamples(buf, len(buf), &data)

	assert.Equal(t, 3, data.SampleCount)
	assert.Equal(t, float64(32767), data.Peak)
	assert.Equal(t, 1, data.ClipCount)

	// A second buffer extends the same window.
	ProcessSamples(pcm(-32768), 2, &data)
	assert.Equal(t, 4, data.SampleCount)
	assert.Equal(t, 2, data.ClipCount)
}

func TestCalculateLevels(t *testing.T) {
	var data LevelData
	buf := pcm(16384, -16384, 16384, -16384)
	ProcessSamples(buf, len(buf), &data)

	levels := CalculateLevels(&data)

	// Half scale is -6.02 dB for both RMS and peak of a square wave.
	wantDB := 20 * math.Log10(16384.0/MaxSampleValue)
	assert.InDelta(t, wantDB, levels.RMS, 0.01)
	assert.InDelta(t, wantDB, levels.Peak, 0.01)
	assert.Zero(t, levels.Clip)
}

func TestCalculateLevelsFloorsAtMinDB(t *testing.T) {
	var data LevelData
	ProcessSamples(pcm(0, 0, 0, 0), 8, &data)

	levels := CalculateLevels(&data)
	assert.Equal(t, MinDB, levels.RMS)
	assert.Equal(t, MinDB, levels.Peak)
}

func TestCalculateLevelsEmptyWindow(t *testing.T) {
	var data LevelData
	levels := CalculateLevels(&data)
	assert.Equal(t, MinDB, levels.RMS)
	assert.Equal(t, MinDB, levels.Peak)
}

func TestLevelDataReset(t *testing.T) {
	var data LevelData
	ProcessSamples(pcm(1000, 2000), 4, &data)
	data.Reset()

	assert.Zero(t, data.SampleCount)
	assert.Zero(t, data.SumSquares)
	assert.Zero(t, data.Peak)
	assert.Zero(t, data.ClipCount)
}
