package bridge

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Default pulse bounds. A talking pose held between 30 and 100 ms reads as
// natural mouth movement at typical speech cadence.
const (
	DefaultPulseMin = 30 * time.Millisecond
	DefaultPulseMax = 100 * time.Millisecond
)

// PulseShaper converts sustained speech activity into short talking pulses.
// When enabled, each activation emits true immediately and schedules a false
// after a random pulse duration, so the avatar's mouth opens and closes while
// speech continues. When disabled, states pass through unchanged.
//
// Shaping happens on the consumer side; the audio path only reports raw
// activity and never sleeps.
type PulseShaper struct {
	mu       sync.Mutex
	emit     func(active bool)
	timer    *time.Timer
	pulseMin time.Duration
	pulseMax time.Duration
	active   bool
}

// NewPulseShaper creates a shaper that delivers shaped states through emit.
// The emit callback runs either synchronously inside Feed or on a timer
// goroutine, so it must be safe for concurrent use.
func NewPulseShaper(emit func(active bool)) *PulseShaper {
	return &PulseShaper{
		emit:     emit,
		pulseMin: DefaultPulseMin,
		pulseMax: DefaultPulseMax,
	}
}

// SetPulseRange adjusts the pulse duration bounds. Invalid ranges are ignored.
func (p *PulseShaper) SetPulseRange(minDur, maxDur time.Duration) {
	if minDur <= 0 || maxDur < minDur {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pulseMin = minDur
	p.pulseMax = maxDur
}

// Feed processes one raw activity state from the detector.
func (p *PulseShaper) Feed(active, flickerEnabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopTimerLocked()

	if !flickerEnabled {
		p.active = active
		p.emit(active)
		return
	}

	if !active {
		p.active = false
		p.emit(false)
		return
	}

	// Pulse: talk now, fall back to idle after a random interval unless a
	// newer state arrives first.
	p.active = true
	p.emit(true)
	p.timer = time.AfterFunc(p.pulseDurationLocked(), func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if !p.active {
			return
		}
		p.active = false
		p.emit(false)
	})
}

// Stop cancels any pending pulse timer.
func (p *PulseShaper) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopTimerLocked()
}

func (p *PulseShaper) stopTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *PulseShaper) pulseDurationLocked() time.Duration {
	spread := p.pulseMax - p.pulseMin
	if spread <= 0 {
		return p.pulseMin
	}
	return p.pulseMin + rand.N(spread)
}
