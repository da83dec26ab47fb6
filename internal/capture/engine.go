// Package capture provides the microphone capture engine.
// It manages a real-time PCM capture subprocess with automatic retry,
// voice activity detection, dead-air detection and level metering.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/oszuidwest/zwfm-avatar/internal/audio"
	"github.com/oszuidwest/zwfm-avatar/internal/bridge"
	"github.com/oszuidwest/zwfm-avatar/internal/config"
	"github.com/oszuidwest/zwfm-avatar/internal/eventlog"
	"github.com/oszuidwest/zwfm-avatar/internal/notify"
	"github.com/oszuidwest/zwfm-avatar/internal/types"
	"github.com/oszuidwest/zwfm-avatar/internal/util"
)

// Sentinel errors for capture operations.
var (
	ErrAlreadyRunning = errors.New("capture already running")
	ErrNotRunning     = errors.New("capture not running")
)

// Engine manages the microphone capture subprocess and its processing chain.
type Engine struct {
	config          *config.Config
	ffmpegPath      string
	bridge          *bridge.Bridge
	eventLog        *eventlog.Logger
	sourceCmd       *exec.Cmd
	sourceCancel    context.CancelFunc
	sourceStdout    io.ReadCloser
	state           types.CaptureState
	stopChan        chan struct{}
	mu              sync.RWMutex
	lastError       string
	startTime       time.Time
	retryCount      int
	backoff         *util.Backoff
	audioLevels     types.AudioLevels
	lastKnownLevels types.AudioLevels // Cache for TryRLock fallback
	activityDetect  *audio.ActivityDetector
	deadAirDetect   *audio.DeadAirDetector
	deadAirNotifier *notify.DeadAirNotifier
	peakHolder      *audio.PeakHolder
}

// New creates a new Engine with the given configuration and FFmpeg binary path.
// Activity states flow to br; lifecycle and dead-air events go to eventLog,
// which may be nil.
func New(cfg *config.Config, ffmpegPath string, br *bridge.Bridge, eventLog *eventlog.Logger) *Engine {
	return &Engine{
		config:          cfg,
		ffmpegPath:      ffmpegPath,
		bridge:          br,
		eventLog:        eventLog,
		state:           types.StateStopped,
		backoff:         util.NewBackoff(types.InitialRetryDelay, types.MaxRetryDelay),
		activityDetect:  audio.NewActivityDetector(),
		deadAirDetect:   audio.NewDeadAirDetector(),
		deadAirNotifier: notify.NewDeadAirNotifier(cfg),
		peakHolder:      audio.NewPeakHolder(),
	}
}

// State returns the current capture state.
func (e *Engine) State() types.CaptureState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// IsRunning reports whether the engine is in running state.
func (e *Engine) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state == types.StateRunning
}

// AudioLevels returns the current audio levels.
func (e *Engine) AudioLevels() types.AudioLevels {
	if !e.mu.TryRLock() {
		return e.lastKnownLevels
	}
	defer e.mu.RUnlock()

	if e.state != types.StateRunning {
		return types.AudioLevels{RMS: audio.MinDB, Peak: audio.MinDB}
	}
	return e.audioLevels
}

// Status returns the current capture status.
func (e *Engine) Status() types.CaptureStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	uptime := ""
	if e.state == types.StateRunning {
		uptime = time.Since(e.startTime).Truncate(time.Second).String()
	}

	return types.CaptureStatus{
		State:            e.state,
		Uptime:           uptime,
		LastError:        e.lastError,
		SourceRetryCount: e.retryCount,
		SourceMaxRetries: types.MaxRetries,
	}
}

// Notifier returns the dead-air notifier so callers can invalidate cached clients.
func (e *Engine) Notifier() *notify.DeadAirNotifier {
	return e.deadAirNotifier
}

// Start begins microphone capture.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == types.StateRunning || e.state == types.StateStarting {
		return ErrAlreadyRunning
	}

	e.state = types.StateStarting
	e.stopChan = make(chan struct{})
	e.retryCount = 0
	e.backoff.Reset()
	e.activityDetect.Reset()
	e.deadAirDetect.Reset()
	e.deadAirNotifier.Reset()
	e.peakHolder.Reset()

	go e.runSourceLoop()

	return nil
}

// Stop stops the capture subprocess with graceful shutdown.
func (e *Engine) Stop() error {
	e.mu.Lock()

	if e.state == types.StateStopped || e.state == types.StateStopping {
		e.mu.Unlock()
		return nil
	}

	e.state = types.StateStopping

	if e.stopChan != nil {
		close(e.stopChan)
	}

	// Get references while holding lock
	sourceProcess := e.sourceCmd
	sourceCancel := e.sourceCancel
	e.mu.Unlock()

	var errs []error

	// Send graceful termination signal to source.
	if sourceProcess != nil && sourceProcess.Process != nil {
		if err := util.GracefulSignal(sourceProcess.Process); err != nil {
			slog.Warn("failed to send signal to source", "error", err)
			errs = append(errs, fmt.Errorf("signal source: %w", err))
		}
	}

	stopped := e.pollUntil(func() bool {
		e.mu.RLock()
		defer e.mu.RUnlock()
		return e.sourceCmd == nil
	})

	select {
	case <-stopped:
		slog.Info("microphone capture stopped gracefully")
	case <-time.After(types.ShutdownTimeout):
		slog.Warn("microphone capture did not stop in time, forcing kill")
		if sourceCancel != nil {
			sourceCancel()
		}
		errs = append(errs, fmt.Errorf("source shutdown timeout"))
	}

	e.mu.Lock()
	e.state = types.StateStopped
	e.sourceCmd = nil
	e.sourceCancel = nil
	e.mu.Unlock()

	// Leave the avatar on the idle pose after shutdown.
	e.bridge.TrySend(false)

	e.logCaptureEvent(eventlog.CaptureStopped, "", 0)

	return errors.Join(errs...)
}

// Restart stops and starts the engine. Used after the input device changes.
func (e *Engine) Restart() error {
	if err := e.Stop(); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	time.Sleep(1000 * time.Millisecond)
	return e.Start()
}

// TriggerTestEmail sends a test email to verify configuration.
func (e *Engine) TriggerTestEmail() error {
	cfg := e.config.Snapshot()
	return notify.SendTestEmail(notify.BuildGraphConfig(cfg), cfg.StationName)
}

// TriggerTestWebhook sends a test webhook to verify configuration.
func (e *Engine) TriggerTestWebhook() error {
	cfg := e.config.Snapshot()
	return notify.SendTestWebhook(cfg.WebhookURL, cfg.StationName)
}

// TriggerTestLog writes a test entry to verify log file configuration.
func (e *Engine) TriggerTestLog() error {
	return notify.WriteTestLog(e.config.Snapshot().LogPath)
}

// runSourceLoop runs the capture process with retry.
func (e *Engine) runSourceLoop() {
	for {
		e.mu.Lock()
		if e.state == types.StateStopping || e.state == types.StateStopped {
			e.mu.Unlock()
			return
		}
		e.mu.Unlock()

		startTime := time.Now()
		stderrOutput, err := e.runSource()
		runDuration := time.Since(startTime)

		var errMsg string
		var attempt int

		e.mu.Lock()
		if err != nil {
			errMsg = err.Error()
			if stderrOutput != "" {
				errMsg = stderrOutput
			}
			e.lastError = errMsg
			slog.Error("microphone capture error", "error", errMsg)

			if runDuration >= types.SuccessThreshold {
				e.retryCount = 0
				e.backoff.Reset()
			} else {
				e.retryCount++
			}

			if e.retryCount >= types.MaxRetries {
				slog.Error("microphone capture failed, giving up", "attempts", types.MaxRetries)
				e.state = types.StateStopped
				e.lastError = fmt.Sprintf("Stopped after %d failed attempts: %s", types.MaxRetries, errMsg)
				e.mu.Unlock()
				e.bridge.TrySend(false)
				e.logCaptureEvent(eventlog.CaptureError, errMsg, types.MaxRetries)
				return
			}
			attempt = e.retryCount
		} else {
			e.retryCount = 0
			e.backoff.Reset()
		}

		if e.state == types.StateStopping || e.state == types.StateStopped {
			e.mu.Unlock()
			return
		}

		e.state = types.StateStarting
		retryDelay := e.backoff.Next()
		e.mu.Unlock()

		if errMsg != "" {
			e.logCaptureEvent(eventlog.CaptureRetry, errMsg, attempt)
		}

		slog.Info("capture source stopped, waiting before restart",
			"delay", retryDelay, "attempt", attempt+1, "max_retries", types.MaxRetries)
		select {
		case <-e.stopChan:
			return
		case <-time.After(retryDelay):
		}
	}
}

// runSource executes the capture process and processes its PCM output.
func (e *Engine) runSource() (string, error) {
	audioInput := e.config.Snapshot().AudioInput
	cmdName, args, err := audio.BuildCaptureCommand(audioInput, e.ffmpegPath)
	if err != nil {
		return "", err
	}

	slog.Info("starting microphone capture", "command", cmdName, "input", audioInput)

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, cmdName, args...)

	// Go 1.20+: Declarative graceful shutdown - sends signal first, waits, then kills.
	cmd.Cancel = func() error {
		return util.GracefulSignal(cmd.Process)
	}
	cmd.WaitDelay = types.ShutdownTimeout

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return "", err
	}

	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.sourceCmd = cmd
		e.sourceCancel = cancel
		e.sourceStdout = stdoutPipe
		e.state = types.StateRunning
		e.startTime = time.Now()
		e.lastError = ""
		e.audioLevels = types.AudioLevels{RMS: audio.MinDB, Peak: audio.MinDB}
	}()

	if err := cmd.Start(); err != nil {
		return "", err
	}

	e.logCaptureEvent(eventlog.CaptureStarted, "", 0)

	go e.runProcessor()

	err = cmd.Wait()

	func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.sourceCmd = nil
		e.sourceCancel = nil
		e.sourceStdout = nil
	}()

	return util.ExtractLastError(stderrBuf.String()), err
}

// runProcessor reads PCM from the capture process and feeds the processing chain.
func (e *Engine) runProcessor() {
	processor := NewProcessor(
		e.activityDetect,
		e.deadAirDetect,
		e.deadAirNotifier,
		e.peakHolder,
		e.config,
		e.bridge,
		e.eventLog,
		e.updateAudioLevels,
	)

	e.mu.RLock()
	reader := e.sourceStdout
	e.mu.RUnlock()
	if reader == nil {
		return
	}

	buf := make([]byte, types.SampleRate/10*2) // ~100ms of 16-bit mono audio
	pumpPCM(reader, buf, func(b []byte, n int) bool {
		e.mu.RLock()
		state := e.state
		stopChan := e.stopChan
		e.mu.RUnlock()

		if state != types.StateRunning {
			return false
		}
		select {
		case <-stopChan:
			return false
		default:
		}

		processor.ProcessBuffer(b, n)
		return true
	})
}

// pumpPCM reads S16LE PCM from r into buf and hands each read to sink as a
// whole number of samples. A pipe read may end mid-sample; the trailing byte
// is carried to the front of the next read so sample alignment survives
// odd-sized deliveries. Returns when r fails or sink reports stop.
func pumpPCM(r io.Reader, buf []byte, sink func([]byte, int) bool) {
	off := 0
	for {
		n, err := r.Read(buf[off:])
		if n > 0 {
			total := off + n
			usable := total - total%2
			if usable > 0 && !sink(buf, usable) {
				return
			}
			if usable != total {
				buf[0] = buf[total-1]
				off = 1
			} else {
				off = 0
			}
		}
		if err != nil {
			return
		}
	}
}

// updateAudioLevels updates audio levels from calculated metrics.
func (e *Engine) updateAudioLevels(m *types.AudioMetrics) {
	levels := types.AudioLevels{
		RMS:          m.RMS,
		Peak:         m.Peak,
		Active:       m.Active,
		DeadAir:      m.DeadAir,
		DeadAirDurMs: m.DeadAirDurMs,
		DeadAirLevel: m.DeadAirLevel,
		Clip:         m.Clip,
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.audioLevels = levels
	e.lastKnownLevels = levels // Update cache for TryRLock fallback
}

// logCaptureEvent writes a capture lifecycle event when an event log is attached.
func (e *Engine) logCaptureEvent(eventType eventlog.EventType, errMsg string, retryCount int) {
	if e.eventLog == nil {
		return
	}
	device := e.config.AudioInput()
	if err := e.eventLog.LogCapture(eventType, device, "", errMsg, retryCount, types.MaxRetries); err != nil {
		slog.Debug("failed to write capture event", "type", eventType, "error", err)
	}
}

// pollUntil signals when the given condition becomes true.
func (e *Engine) pollUntil(condition func() bool) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		for !condition() {
			time.Sleep(types.PollInterval)
		}
		close(done)
	}()
	return done
}
