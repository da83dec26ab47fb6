package audio

import (
	"sync"
	"time"

	"github.com/oszuidwest/zwfm-avatar/internal/types"
)

// DeadAirConfig holds the configurable thresholds for dead-air detection.
type DeadAirConfig struct {
	ThresholdDB float64 // dB level below which audio is considered silent
	DurationMs  int64   // milliseconds of silence before triggering
	RecoveryMs  int64   // milliseconds of audio before considering recovered
}

// DeadAirEvent represents the result of a dead-air detection update.
type DeadAirEvent struct {
	// Current state
	InDeadAir  bool               // Currently in confirmed dead-air state
	DurationMs int64              // Current dead-air duration in ms (0 if audio present)
	Level      types.DeadAirLevel // "active" when in dead air, "" otherwise

	// Current audio level (for notifications)
	CurrentLevelDB float64

	// State transitions (for triggering notifications)
	JustEntered     bool  // True on the frame when dead air is first confirmed
	JustRecovered   bool  // True on the frame when recovery completes
	TotalDurationMs int64 // Total dead-air duration in ms (only set when JustRecovered)
}

// DeadAirDetector tracks prolonged silence and generates detection events.
// It is safe for concurrent use.
type DeadAirDetector struct {
	mu                sync.Mutex
	deadAirStart      time.Time // when current silent period started
	recoveryStart     time.Time // when audio returned after dead air
	inDeadAir         bool      // currently in confirmed dead-air state
	deadAirDurationMs int64     // tracks duration in ms for recovery reporting
}

// NewDeadAirDetector creates a new dead-air detector.
func NewDeadAirDetector() *DeadAirDetector {
	return &DeadAirDetector{}
}

// Update updates the detection state with a new audio level and returns the current state.
func (d *DeadAirDetector) Update(db float64, cfg DeadAirConfig, now time.Time) DeadAirEvent {
	d.mu.Lock()
	defer d.mu.Unlock()

	audioIsSilent := db < cfg.ThresholdDB

	event := DeadAirEvent{
		CurrentLevelDB: db,
	}

	if audioIsSilent {
		d.recoveryStart = time.Time{}

		if d.deadAirStart.IsZero() {
			d.deadAirStart = now
		}

		durationMs := now.Sub(d.deadAirStart).Milliseconds()
		d.deadAirDurationMs = durationMs

		if d.inDeadAir {
			// Already in confirmed dead-air state
			event.InDeadAir = true
			event.DurationMs = durationMs
			event.Level = types.DeadAirLevelActive
		} else if durationMs >= cfg.DurationMs {
			// Just crossed the duration threshold - enter dead-air state
			d.inDeadAir = true
			event.InDeadAir = true
			event.DurationMs = durationMs
			event.Level = types.DeadAirLevelActive
			event.JustEntered = true
		}
	} else {
		// Audio is above threshold - preserve start time during recovery.
		if !d.inDeadAir {
			d.deadAirStart = time.Time{}
		}

		if d.inDeadAir {
			// Was in dead air, now have audio - check recovery
			if d.recoveryStart.IsZero() {
				d.recoveryStart = now
			}

			recoveryDurationMs := now.Sub(d.recoveryStart).Milliseconds()

			if recoveryDurationMs >= cfg.RecoveryMs {
				event.JustRecovered = true
				event.TotalDurationMs = d.deadAirDurationMs

				d.inDeadAir = false
				d.deadAirDurationMs = 0
				d.deadAirStart = time.Time{}
				d.recoveryStart = time.Time{}
			} else {
				// Still in recovery period - remain in dead-air state
				event.InDeadAir = true
				event.Level = types.DeadAirLevelActive
			}
		}
	}

	return event
}

// Reset clears the detection state.
func (d *DeadAirDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deadAirStart = time.Time{}
	d.recoveryStart = time.Time{}
	d.inDeadAir = false
	d.deadAirDurationMs = 0
}
