package types

// WSConfigResponse is sent in response to config/get.
// Contains the full configuration without runtime state.
type WSConfigResponse struct {
	Type   string      `json:"type"` // "config"
	Config interface{} `json:"config"`
}

// WSCommandResult is the standard response for command execution.
// Used by slash-style commands (audio/update, detector/update, etc.)
type WSCommandResult struct {
	Type    string           `json:"type"`            // "<command>_result"
	Success bool             `json:"success"`         // true if command succeeded
	Error   *ValidationError `json:"error,omitempty"` // Validation errors if failed
	Data    interface{}      `json:"data,omitempty"`  // Optional response data
}

// WSStatusResponse is sent to clients with full capture and settings status.
type WSStatusResponse struct {
	Type               string        `json:"type"`                 // Message type identifier
	Capture            CaptureStatus `json:"capture"`              // Capture engine status
	Devices            []AudioDevice `json:"devices"`              // Available audio devices
	Threshold          float64       `json:"threshold"`            // Activation threshold (linear RMS)
	DeadbandFactor     float64       `json:"deadband_factor"`      // Off-threshold multiplier
	FlickerEnabled     bool          `json:"flicker_enabled"`      // Randomized pulse shaping enabled
	DeadAirThresholdDB float64       `json:"dead_air_threshold"`   // Dead-air threshold in dB
	DeadAirDurationMs  int64         `json:"dead_air_duration_ms"` // Dead-air confirm duration
	DeadAirRecoveryMs  int64         `json:"dead_air_recovery_ms"` // Dead-air recovery duration
	AlertWebhook       string        `json:"alert_webhook"`        // Webhook URL for alerts
	AlertLogPath       string        `json:"alert_log_path"`       // Alert log file path
	GraphTenantID      string        `json:"graph_tenant_id"`      // Azure AD tenant ID
	GraphClientID      string        `json:"graph_client_id"`      // App registration client ID
	GraphFromAddress   string        `json:"graph_from_address"`   // Shared mailbox address
	GraphRecipients    string        `json:"graph_recipients"`     // Comma-separated recipients
	Settings           WSSettings    `json:"settings"`             // Current settings
	Version            VersionInfo   `json:"version"`              // Version information
}

// WSSettings contains the settings sub-object in status responses.
type WSSettings struct {
	AudioInput string `json:"audio_input"` // Selected audio input device
	Platform   string `json:"platform"`    // Operating system platform
}

// WSLevelsResponse is sent to clients with audio level updates.
type WSLevelsResponse struct {
	Type   string      `json:"type"`   // Message type identifier
	Levels AudioLevels `json:"levels"` // Current audio levels
}

// WSActivityResponse is sent to clients when the avatar pose changes.
type WSActivityResponse struct {
	Type   string `json:"type"`   // "activity"
	Active bool   `json:"active"` // Microphone currently considered active
	Pose   string `json:"pose"`   // "idle" or "talking"
}

// WSTestResult is sent to clients after a test operation completes.
type WSTestResult struct {
	Type     string `json:"type"`            // Message type identifier
	TestType string `json:"test_type"`       // Type of test performed
	Success  bool   `json:"success"`         // Test succeeded
	Error    string `json:"error,omitempty"` // Error message if failed
}

// WSAlertLogResult is sent to clients with dead-air alert log entries.
type WSAlertLogResult struct {
	Type    string            `json:"type"`              // Message type identifier
	Success bool              `json:"success"`           // Operation succeeded
	Error   string            `json:"error,omitempty"`   // Error message if failed
	Entries []DeadAirLogEntry `json:"entries,omitempty"` // Log entries
	Path    string            `json:"path,omitempty"`    // Log file path
}
