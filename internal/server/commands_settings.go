package server

import (
	"log/slog"
	"runtime"

	"github.com/oszuidwest/zwfm-avatar/internal/audio"
	"github.com/oszuidwest/zwfm-avatar/internal/types"
)

// --- Audio handlers ---

// handleAudioUpdate processes an audio/update command.
func (h *CommandHandler) handleAudioUpdate(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *AudioUpdateRequest) error {
		if req.Input == "" {
			return nil // No change requested
		}

		slog.Info("audio/update: changing audio input", "input", req.Input)
		if err := h.cfg.SetAudioInput(req.Input); err != nil {
			return err
		}

		go func() {
			var err error
			switch h.engine.State() {
			case types.StateRunning:
				err = h.engine.Restart()
			case types.StateStopped:
				err = h.engine.Start()
			}
			if err != nil {
				slog.Error("audio/update: capture state change failed", "error", err)
			}
		}()

		return nil
	})
}

// handleAudioGet processes an audio/get command.
func (h *CommandHandler) handleAudioGet(send chan<- any) {
	SendSuccess(send, "audio/get", map[string]any{
		"input":    h.cfg.AudioInput(),
		"devices":  audio.ListDevices(),
		"platform": runtime.GOOS,
	})
}

// --- Detector handlers ---

// handleDetectorUpdate processes a detector/update command.
func (h *CommandHandler) handleDetectorUpdate(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *DetectorUpdateRequest) error {
		if req.Threshold != nil {
			if err := h.cfg.SetDetectorThreshold(*req.Threshold); err != nil {
				return err
			}
		}
		if req.DeadbandFactor != nil {
			if err := h.cfg.SetDeadbandFactor(*req.DeadbandFactor); err != nil {
				return err
			}
		}
		if req.FlickerEnabled != nil {
			if err := h.cfg.SetFlickerEnabled(*req.FlickerEnabled); err != nil {
				return err
			}
		}
		// The capture processor snapshots config per buffer, no push needed
		return nil
	})
}

// handleDetectorGet processes a detector/get command.
func (h *CommandHandler) handleDetectorGet(send chan<- any) {
	snap := h.cfg.Snapshot()
	SendSuccess(send, "detector/get", map[string]any{
		"threshold":       snap.DetectorThreshold,
		"deadband_factor": snap.DeadbandFactor,
		"flicker_enabled": snap.FlickerEnabled,
	})
}

// --- Dead-air handlers ---

// handleDeadAirUpdate processes a deadair/update command.
func (h *CommandHandler) handleDeadAirUpdate(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *DeadAirUpdateRequest) error {
		if req.ThresholdDB != nil {
			if err := h.cfg.SetDeadAirThreshold(*req.ThresholdDB); err != nil {
				return err
			}
		}
		if req.DurationMs != nil {
			if err := h.cfg.SetDeadAirDurationMs(*req.DurationMs); err != nil {
				return err
			}
		}
		if req.RecoveryMs != nil {
			if err := h.cfg.SetDeadAirRecoveryMs(*req.RecoveryMs); err != nil {
				return err
			}
		}
		return nil
	})
}

// handleDeadAirGet processes a deadair/get command.
func (h *CommandHandler) handleDeadAirGet(send chan<- any) {
	snap := h.cfg.Snapshot()
	SendSuccess(send, "deadair/get", map[string]any{
		"threshold_db": snap.DeadAirThresholdDB,
		"duration_ms":  snap.DeadAirDurationMs,
		"recovery_ms":  snap.DeadAirRecoveryMs,
	})
}

// --- Notification handlers ---

// handleWebhookUpdate processes a notifications/webhook/update command.
func (h *CommandHandler) handleWebhookUpdate(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *WebhookUpdateRequest) error {
		return h.cfg.SetWebhookURL(req.URL)
	})
}

// handleWebhookGet processes a notifications/webhook/get command.
func (h *CommandHandler) handleWebhookGet(send chan<- any) {
	SendSuccess(send, "notifications/webhook/get", map[string]any{
		"url": h.cfg.Snapshot().WebhookURL,
	})
}

// handleLogUpdate processes a notifications/log/update command.
func (h *CommandHandler) handleLogUpdate(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *LogUpdateRequest) error {
		return h.cfg.SetLogPath(req.Path)
	})
}

// handleLogGet processes a notifications/log/get command.
func (h *CommandHandler) handleLogGet(send chan<- any) {
	SendSuccess(send, "notifications/log/get", map[string]any{
		"path": h.cfg.LogPath(),
	})
}

// handleEmailUpdate processes a notifications/email/update command.
func (h *CommandHandler) handleEmailUpdate(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *EmailUpdateRequest) error {
		if err := h.cfg.SetGraphConfig(
			req.TenantID,
			req.ClientID,
			req.ClientSecret,
			req.FromAddress,
			req.Recipients,
		); err != nil {
			return err
		}
		h.engine.Notifier().InvalidateGraphClient()
		return nil
	})
}

// handleEmailGet processes a notifications/email/get command.
// The client secret is never echoed back.
func (h *CommandHandler) handleEmailGet(send chan<- any) {
	snap := h.cfg.Snapshot()
	SendSuccess(send, "notifications/email/get", map[string]any{
		"tenant_id":    snap.GraphTenantID,
		"client_id":    snap.GraphClientID,
		"from_address": snap.GraphFromAddress,
		"recipients":   snap.GraphRecipients,
	})
}

// --- Config handler ---

// handleConfigGet processes a config/get command.
// Credentials are omitted from the response.
func (h *CommandHandler) handleConfigGet(send chan<- any) {
	snap := h.cfg.Snapshot()
	trySend(send, "config/get", types.WSConfigResponse{
		Type: "config",
		Config: map[string]any{
			"web": map[string]any{
				"station_name": snap.StationName,
				"color_light":  snap.StationColorLight,
				"color_dark":   snap.StationColorDark,
			},
			"audio": map[string]any{
				"input": snap.AudioInput,
			},
			"detector": map[string]any{
				"threshold":       snap.DetectorThreshold,
				"deadband_factor": snap.DeadbandFactor,
				"flicker_enabled": snap.FlickerEnabled,
			},
			"dead_air": map[string]any{
				"threshold_db": snap.DeadAirThresholdDB,
				"duration_ms":  snap.DeadAirDurationMs,
				"recovery_ms":  snap.DeadAirRecoveryMs,
			},
			"notifications": map[string]any{
				"webhook": map[string]any{"url": snap.WebhookURL},
				"log":     map[string]any{"path": snap.LogPath},
				"email": map[string]any{
					"tenant_id":    snap.GraphTenantID,
					"client_id":    snap.GraphClientID,
					"from_address": snap.GraphFromAddress,
					"recipients":   snap.GraphRecipients,
				},
			},
		},
	})
}
