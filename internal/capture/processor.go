package capture

import (
	"log/slog"
	"time"

	"github.com/oszuidwest/zwfm-avatar/internal/audio"
	"github.com/oszuidwest/zwfm-avatar/internal/bridge"
	"github.com/oszuidwest/zwfm-avatar/internal/config"
	"github.com/oszuidwest/zwfm-avatar/internal/eventlog"
	"github.com/oszuidwest/zwfm-avatar/internal/notify"
	"github.com/oszuidwest/zwfm-avatar/internal/types"
)

// LevelUpdateSamples is the number of samples before updating audio levels.
// 12000 samples is 250ms of mono audio at 48kHz.
const LevelUpdateSamples = 12000

// AudioLevelCallback receives audio level updates from the processor.
type AudioLevelCallback func(metrics *types.AudioMetrics)

// Processor turns raw PCM buffers into activity states, dead-air events and
// level metrics. Activity detection runs on every buffer so the avatar reacts
// within one read interval; VU levels and dead-air checks update per
// measurement window.
type Processor struct {
	levelData       *audio.LevelData
	activityDetect  *audio.ActivityDetector
	deadAirDetect   *audio.DeadAirDetector
	deadAirNotifier *notify.DeadAirNotifier
	peakHolder      *audio.PeakHolder
	config          *config.Config
	bridge          *bridge.Bridge
	eventLog        *eventlog.Logger
	callback        AudioLevelCallback
}

// NewProcessor creates a processor wired to the given detectors and sinks.
func NewProcessor(
	activityDetect *audio.ActivityDetector,
	deadAirDetect *audio.DeadAirDetector,
	deadAirNotifier *notify.DeadAirNotifier,
	peakHolder *audio.PeakHolder,
	cfg *config.Config,
	br *bridge.Bridge,
	eventLog *eventlog.Logger,
	callback AudioLevelCallback,
) *Processor {
	return &Processor{
		levelData:       &audio.LevelData{},
		activityDetect:  activityDetect,
		deadAirDetect:   deadAirDetect,
		deadAirNotifier: deadAirNotifier,
		peakHolder:      peakHolder,
		config:          cfg,
		bridge:          br,
		eventLog:        eventLog,
		callback:        callback,
	}
}

// ProcessBuffer analyzes one PCM buffer and publishes the results.
func (p *Processor) ProcessBuffer(buf []byte, n int) {
	// Fresh config snapshot so slider changes apply to the next buffer
	cfg := p.config.Snapshot()

	rms := audio.MeasureBuffer(buf, n)
	active := p.activityDetect.Update(rms, audio.DetectorConfig{
		Threshold:      cfg.DetectorThreshold,
		DeadbandFactor: cfg.DeadbandFactor,
		FlickerEnabled: cfg.FlickerEnabled,
	})
	p.bridge.TrySend(active)

	audio.ProcessSamples(buf, n, p.levelData)

	if p.levelData.SampleCount < LevelUpdateSamples {
		return
	}

	levels := audio.CalculateLevels(p.levelData)

	now := time.Now()
	heldPeak := p.peakHolder.Update(levels.Peak, now)

	deadAirCfg := audio.DeadAirConfig{
		ThresholdDB: cfg.DeadAirThresholdDB,
		DurationMs:  cfg.DeadAirDurationMs,
		RecoveryMs:  cfg.DeadAirRecoveryMs,
	}
	deadAirEvent := p.deadAirDetect.Update(levels.RMS, deadAirCfg, now)

	// Delegate notification handling to the notifier (separation of concerns)
	p.deadAirNotifier.HandleEvent(deadAirEvent)

	p.logDeadAirTransitions(deadAirEvent, deadAirCfg.ThresholdDB)

	if p.callback != nil {
		p.callback(&types.AudioMetrics{
			RMS:          levels.RMS,
			Peak:         heldPeak,
			Active:       active,
			DeadAir:      deadAirEvent.InDeadAir,
			DeadAirDurMs: deadAirEvent.DurationMs,
			DeadAirLevel: deadAirEvent.Level,
			Clip:         levels.Clip,
		})
	}

	p.levelData.Reset()
}

// logDeadAirTransitions records dead-air state changes in the event log.
func (p *Processor) logDeadAirTransitions(event audio.DeadAirEvent, thresholdDB float64) {
	if p.eventLog == nil {
		return
	}
	if event.JustEntered {
		if err := p.eventLog.LogDeadAirStart(event.CurrentLevelDB, thresholdDB); err != nil {
			slog.Debug("failed to write dead-air start event", "error", err)
		}
	}
	if event.JustRecovered {
		if err := p.eventLog.LogDeadAirEnd(event.TotalDurationMs, event.CurrentLevelDB, thresholdDB); err != nil {
			slog.Debug("failed to write dead-air end event", "error", err)
		}
	}
}
