package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oszuidwest/zwfm-avatar/internal/util"
)

// WebhookPayload represents the data sent to webhook endpoints.
type WebhookPayload struct {
	Event             string  `json:"event"`
	DeadAirDurationMs int64   `json:"dead_air_duration_ms,omitempty"`
	LevelDB           float64 `json:"level_db,omitempty"`
	ThresholdDB       float64 `json:"threshold_db,omitempty"`
	Message           string  `json:"message,omitempty"`
	Timestamp         string  `json:"timestamp"`
}

// SendDeadAirWebhook notifies the configured webhook that dead air was detected.
func SendDeadAirWebhook(webhookURL string, levelDB, thresholdDB float64) error {
	return sendWebhook(webhookURL, &WebhookPayload{
		Event:       "dead_air_detected",
		LevelDB:     levelDB,
		ThresholdDB: thresholdDB,
		Timestamp:   timestampUTC(),
	})
}

// SendRecoveryWebhook notifies the configured webhook that audio recovered.
func SendRecoveryWebhook(webhookURL string, durationMs int64, levelDB, thresholdDB float64) error {
	return sendWebhook(webhookURL, &WebhookPayload{
		Event:             "dead_air_recovered",
		DeadAirDurationMs: durationMs,
		LevelDB:           levelDB,
		ThresholdDB:       thresholdDB,
		Timestamp:         timestampUTC(),
	})
}

// SendTestWebhook sends a test webhook notification.
func SendTestWebhook(webhookURL, stationName string) error {
	if webhookURL == "" {
		return fmt.Errorf("webhook URL not configured")
	}

	return sendWebhook(webhookURL, &WebhookPayload{
		Event:     "test",
		Message:   "This is a test notification from " + stationName,
		Timestamp: timestampUTC(),
	})
}

// sendWebhook delivers a notification to the configured webhook endpoint.
func sendWebhook(webhookURL string, payload *WebhookPayload) error {
	if !util.IsConfigured(webhookURL) {
		return nil // Silently skip if not configured
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return util.WrapError("marshal payload", err)
	}

	client := &http.Client{Timeout: 10000 * time.Millisecond}
	resp, err := client.Post(webhookURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return util.WrapError("send webhook request", err)
	}
	defer util.SafeCloseFunc(resp.Body, "webhook response body")()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
