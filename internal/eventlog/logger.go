// Package eventlog provides unified event logging for the avatar service.
// It captures both capture lifecycle events (started, stable, error, retry,
// stopped) and dead-air events (dead_air_start, dead_air_end) in a single
// JSON lines file.
package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// EventType represents the type of event.
type EventType string

// Capture event types.
const (
	CaptureStarted EventType = "capture_started"
	CaptureStable  EventType = "capture_stable"
	CaptureError   EventType = "capture_error"
	CaptureRetry   EventType = "capture_retry"
	CaptureStopped EventType = "capture_stopped"
)

// Dead-air event types.
const (
	DeadAirStart EventType = "dead_air_start"
	DeadAirEnd   EventType = "dead_air_end"
)

// Event represents a single log entry with type-specific details.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Type      EventType `json:"type"`
	Message   string    `json:"msg,omitempty"`
	Details   any       `json:"details,omitempty"`
}

// CaptureDetails contains capture-specific event details.
type CaptureDetails struct {
	Device     string `json:"device,omitempty"`
	Error      string `json:"error,omitempty"`
	RetryCount int    `json:"retry,omitempty"`
	MaxRetries int    `json:"max_retries,omitempty"`
}

// DeadAirDetails contains dead-air-specific event details.
type DeadAirDetails struct {
	LevelDB     float64 `json:"level_db"`
	ThresholdDB float64 `json:"threshold_db"`
	DurationMs  int64   `json:"duration_ms,omitempty"`
}

// Logger writes events to a JSON lines file.
type Logger struct {
	mu       sync.Mutex
	filePath string
	file     *os.File
	encoder  *json.Encoder
}

// DefaultLogPath returns the platform-specific log file path.
func DefaultLogPath(port int) string {
	switch runtime.GOOS {
	case "windows":
		// %PROGRAMDATA% is typically C:\ProgramData
		programData := os.Getenv("PROGRAMDATA")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return filepath.Join(programData, "avatar", "logs", fmt.Sprintf("%d", port), "avatar.jsonl")
	default: // linux, darwin
		//nolint:gocritic // Intentional absolute path for Unix systems
		return filepath.Join("/var/log/avatar", fmt.Sprintf("%d", port), "avatar.jsonl")
	}
}

// NewLogger creates a new event logger at the specified path.
func NewLogger(filePath string) (*Logger, error) {
	// Ensure directory exists
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	// Open file for appending
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &Logger{
		filePath: filePath,
		file:     file,
		encoder:  json.NewEncoder(file),
	}, nil
}

// Log writes an event to the log file.
func (l *Logger) Log(event *Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	return l.encoder.Encode(event)
}

// LogCapture logs a capture lifecycle event.
func (l *Logger) LogCapture(eventType EventType, device, message, errMsg string, retryCount, maxRetries int) error {
	return l.Log(&Event{
		Timestamp: time.Now(),
		Type:      eventType,
		Message:   message,
		Details: &CaptureDetails{
			Device:     device,
			Error:      errMsg,
			RetryCount: retryCount,
			MaxRetries: maxRetries,
		},
	})
}

// LogDeadAirStart logs a dead-air start event.
func (l *Logger) LogDeadAirStart(levelDB, thresholdDB float64) error {
	return l.Log(&Event{
		Timestamp: time.Now(),
		Type:      DeadAirStart,
		Details: &DeadAirDetails{
			LevelDB:     levelDB,
			ThresholdDB: thresholdDB,
		},
	})
}

// LogDeadAirEnd logs a dead-air end event.
func (l *Logger) LogDeadAirEnd(durationMs int64, levelDB, thresholdDB float64) error {
	return l.Log(&Event{
		Timestamp: time.Now(),
		Type:      DeadAirEnd,
		Details: &DeadAirDetails{
			LevelDB:     levelDB,
			ThresholdDB: thresholdDB,
			DurationMs:  durationMs,
		},
	})
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Path returns the path to the log file.
func (l *Logger) Path() string {
	return l.filePath
}

// TypeFilter specifies which event types to include when reading.
type TypeFilter string

// Filter constants for ReadLast.
const (
	FilterAll     TypeFilter = ""
	FilterCapture TypeFilter = "capture"
	FilterDeadAir TypeFilter = "dead_air"
)

// MaxReadLimit is the maximum number of events that can be read at once.
// This prevents denial-of-service via excessive memory allocation.
const MaxReadLimit = 500

// ReadLast reads events from the log file with pagination support.
// Returns up to n events starting from offset, filtered by type.
// Events are returned in reverse chronological order (newest first).
// The n parameter is capped at MaxReadLimit to prevent excessive memory allocation.
func ReadLast(filePath string, n, offset int, filter TypeFilter) ([]Event, bool, error) {
	// Cap n to prevent excessive memory allocation (defense in depth)
	if n > MaxReadLimit {
		n = MaxReadLimit
	}
	if n <= 0 {
		return []Event{}, false, nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Event{}, false, nil
		}
		return nil, false, err
	}
	defer file.Close() //nolint:errcheck // Read-only operation, close error not critical

	// Read all lines
	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, false, err
	}

	matchesFilter := func(t EventType) bool {
		switch filter {
		case FilterCapture:
			return IsCaptureEvent(t)
		case FilterDeadAir:
			return IsDeadAirEvent(t)
		default:
			return true
		}
	}

	// Parse events in reverse order (newest first), applying filter
	events := make([]Event, 0, n)
	skipped := 0
	hasMore := false
	for i := len(lines) - 1; i >= 0; i-- {
		var event Event
		if err := json.Unmarshal([]byte(lines[i]), &event); err != nil {
			continue // Skip malformed lines
		}

		if !matchesFilter(event.Type) {
			continue
		}

		// Skip events until we reach the offset
		if skipped < offset {
			skipped++
			continue
		}

		if len(events) >= n {
			// One more matching event exists beyond the requested page
			hasMore = true
			break
		}

		events = append(events, event)
	}

	return events, hasMore, nil
}

// IsCaptureEvent returns true if the event type is a capture event.
func IsCaptureEvent(t EventType) bool {
	return t == CaptureStarted || t == CaptureStable || t == CaptureError || t == CaptureRetry || t == CaptureStopped
}

// IsDeadAirEvent returns true if the event type is a dead-air event.
func IsDeadAirEvent(t EventType) bool {
	return t == DeadAirStart || t == DeadAirEnd
}
