package server

// Request types for WebSocket commands with validation tags.
// These types define the expected input for each command and use
// go-playground/validator struct tags for automatic validation.

// --- Audio settings ---

// AudioUpdateRequest is the request body for audio/update.
type AudioUpdateRequest struct {
	Input string `json:"input" validate:"omitempty"`
}

// --- Voice activity detector settings ---

// DetectorUpdateRequest is the request body for detector/update.
// Pointer fields distinguish "not provided" from an explicit zero,
// which is a valid threshold value.
type DetectorUpdateRequest struct {
	Threshold      *float64 `json:"threshold" validate:"omitempty,gte=0,lte=1"`
	DeadbandFactor *float64 `json:"deadband_factor" validate:"omitempty,gte=0,lte=1"`
	FlickerEnabled *bool    `json:"flicker_enabled"`
}

// --- Dead-air detection settings ---

// DeadAirUpdateRequest is the request body for deadair/update.
type DeadAirUpdateRequest struct {
	ThresholdDB *float64 `json:"threshold_db" validate:"omitempty,gte=-60,lte=0"`
	DurationMs  *int64   `json:"duration_ms" validate:"omitempty,gte=500,lte=300000"`
	RecoveryMs  *int64   `json:"recovery_ms" validate:"omitempty,gte=500,lte=60000"`
}

// --- Notification settings ---

// WebhookUpdateRequest is the request body for notifications/webhook/update.
type WebhookUpdateRequest struct {
	URL string `json:"url" validate:"omitempty,max=2048"`
}

// LogUpdateRequest is the request body for notifications/log/update.
type LogUpdateRequest struct {
	Path string `json:"path" validate:"omitempty,max=4096"`
}

// EmailUpdateRequest is the request body for notifications/email/update.
type EmailUpdateRequest struct {
	TenantID     string `json:"tenant_id" validate:"omitempty,max=100"`
	ClientID     string `json:"client_id" validate:"omitempty,max=100"`
	ClientSecret string `json:"client_secret" validate:"omitempty,max=500"`
	FromAddress  string `json:"from_address" validate:"omitempty,max=254"`
	Recipients   string `json:"recipients" validate:"omitempty,max=1000"`
}
