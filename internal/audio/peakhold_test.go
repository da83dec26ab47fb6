package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeakHolderHoldsPeak(t *testing.T) {
	p := NewPeakHolder()
	now := time.Now()

	assert.Equal(t, -10.0, p.Update(-10, now))

	// A lower peak within the hold window keeps the held value.
	assert.Equal(t, -10.0, p.Update(-30, now.Add(time.Second)))

	// A higher peak replaces it immediately.
	assert.Equal(t, -5.0, p.Update(-5, now.Add(2*time.Second)))
}

func TestPeakHolderDecaysAfterHold(t *testing.T) {
	p := NewPeakHolder()
	p.SetHoldDuration(time.Second)
	now := time.Now()

	p.Update(-10, now)
	got := p.Update(-30, now.Add(1500*time.Millisecond))
	assert.Equal(t, -30.0, got, "held peak released after hold duration")
}

func TestPeakHolderReset(t *testing.T) {
	p := NewPeakHolder()
	now := time.Now()

	p.Update(-10, now)
	p.Reset()

	// After reset the next value becomes the new peak regardless of level.
	assert.Equal(t, -55.0, p.Update(-55, now.Add(time.Millisecond)))
}
