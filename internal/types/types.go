// Package types provides shared type definitions used across the avatar service.
package types

import (
	"time"
)

// CaptureState represents the current state of the capture engine.
type CaptureState string

const (
	// StateStopped indicates the capture engine is not running.
	StateStopped CaptureState = "stopped"
	// StateStarting indicates the capture engine is initializing.
	StateStarting CaptureState = "starting"
	// StateRunning indicates the capture engine is actively processing audio.
	StateRunning CaptureState = "running"
	// StateStopping indicates the capture engine is shutting down.
	StateStopping CaptureState = "stopping"
)

const (
	// InitialRetryDelay is the starting delay between retry attempts.
	InitialRetryDelay = 3000 * time.Millisecond
	// MaxRetryDelay is the maximum delay between retry attempts.
	MaxRetryDelay = 60000 * time.Millisecond
	// MaxRetries is the maximum number of retry attempts for the audio source.
	MaxRetries = 10
	// SuccessThreshold is the duration after which retry count resets.
	SuccessThreshold = 30000 * time.Millisecond
)

const (
	// ShutdownTimeout is the duration to wait for graceful shutdown.
	ShutdownTimeout = 3000 * time.Millisecond
	// PollInterval is the interval for polling process state.
	PollInterval = 50 * time.Millisecond
)

// Audio format constants for PCM capture.
const (
	// SampleRate is the audio sample rate in Hz.
	SampleRate = 48000
	// Channels is the number of audio channels (mono microphone input).
	Channels = 1
)

// Pose identifies one of the two avatar images.
type Pose int

const (
	// PoseIdle is the image shown while the microphone is inactive.
	PoseIdle Pose = 0
	// PoseTalking is the image shown while the microphone is active.
	PoseTalking Pose = 1
)

// String returns the pose name used in asset filenames and WS messages.
func (p Pose) String() string {
	if p == PoseTalking {
		return "talking"
	}
	return "idle"
}

// CaptureStatus contains a summary of the capture engine's current operational state.
type CaptureStatus struct {
	State            CaptureState `json:"state"`                       // Current capture state
	Uptime           string       `json:"uptime,omitzero"`             // Time since start
	LastError        string       `json:"last_error,omitzero"`         // Most recent error
	SourceRetryCount int          `json:"source_retry_count,omitzero"` // Source retry attempts
	SourceMaxRetries int          `json:"source_max_retries"`          // Max source retries
}

// DeadAirLevel represents the dead-air detection state.
type DeadAirLevel string

// DeadAirLevelActive indicates dead air is confirmed.
const DeadAirLevelActive DeadAirLevel = "active"

// AudioLevels contains current audio level measurements.
type AudioLevels struct {
	RMS           float64      `json:"rms"`                      // RMS level in dB
	Peak          float64      `json:"peak"`                     // Held peak level in dB
	Active        bool         `json:"active"`                   // Current hysteresis activity state
	DeadAir       bool         `json:"dead_air,omitzero"`        // True when confirmed dead air
	DeadAirDurMs  int64        `json:"dead_air_dur_ms,omitzero"` // Dead-air duration in milliseconds
	DeadAirLevel  DeadAirLevel `json:"dead_air_level,omitzero"`  // "active" when in confirmed dead air
	Clip          int          `json:"clip,omitzero"`            // Clipped samples this frame
}

// AudioMetrics contains audio level metrics for callback processing.
type AudioMetrics struct {
	RMS          float64      // RMS level in dB
	Peak         float64      // Held peak level in dB
	Active       bool         // Current hysteresis activity state
	DeadAir      bool         // True when confirmed dead air
	DeadAirDurMs int64        // Dead-air duration in milliseconds
	DeadAirLevel DeadAirLevel // "active" when in confirmed dead air
	Clip         int          // Clipped sample count
}

// AudioDevice represents an available audio input device.
type AudioDevice struct {
	ID   string `json:"id"`   // Device identifier
	Name string `json:"name"` // Device display name
}

// GraphConfig contains Microsoft Graph API settings for email notifications.
type GraphConfig struct {
	TenantID     string `json:"tenant_id,omitempty"`     // Azure AD tenant ID
	ClientID     string `json:"client_id,omitempty"`     // App registration client ID
	ClientSecret string `json:"client_secret,omitempty"` // App registration client secret
	FromAddress  string `json:"from_address,omitempty"`  // Shared mailbox address (sender)
	Recipients   string `json:"recipients,omitempty"`    // Comma-separated recipients
}

// DeadAirLogEntry represents a single entry in the dead-air alert log.
type DeadAirLogEntry struct {
	Timestamp   string  `json:"timestamp"`             // RFC3339 timestamp
	Event       string  `json:"event"`                 // Event type (dead_air_start, dead_air_end)
	DurationMs  int64   `json:"duration_ms,omitempty"` // Dead-air duration in milliseconds (dead_air_end only)
	LevelDB     float64 `json:"level_db,omitempty"`    // RMS level in dB
	ThresholdDB float64 `json:"threshold_db"`          // Threshold in dB
}

// VersionInfo contains version comparison data.
type VersionInfo struct {
	Current     string `json:"current"`              // Current version
	Latest      string `json:"latest,omitempty"`     // Latest available version
	UpdateAvail bool   `json:"update_available"`     // Update is available
	Commit      string `json:"commit,omitempty"`     // Git commit hash
	BuildTime   string `json:"build_time,omitempty"` // Build timestamp
}
