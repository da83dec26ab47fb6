package server

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/oszuidwest/zwfm-avatar/internal/capture"
	"github.com/oszuidwest/zwfm-avatar/internal/config"
)

// MaxLogEntries is the maximum number of dead-air log entries to return.
const MaxLogEntries = 100

// WSCommand is a command received from a WebSocket client.
type WSCommand struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// CommandHandler processes WebSocket commands.
type CommandHandler struct {
	cfg    *config.Config
	engine *capture.Engine
}

// NewCommandHandler creates a new command handler.
func NewCommandHandler(cfg *config.Config, engine *capture.Engine) *CommandHandler {
	return &CommandHandler{
		cfg:    cfg,
		engine: engine,
	}
}

// Handle processes a WebSocket command and performs the requested action.
// Commands use slash-style format: namespace/action (e.g., "detector/update", "audio/update")
func (h *CommandHandler) Handle(cmd WSCommand, send chan<- any, triggerStatusUpdate func()) {
	// Parse command into namespace and action
	parts := strings.SplitN(cmd.Type, "/", 3)
	namespace := parts[0]
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}
	subaction := ""
	if len(parts) > 2 {
		subaction = parts[2]
	}

	switch namespace {
	case "audio":
		h.handleAudio(action, cmd, send)
	case "detector":
		h.handleDetector(action, cmd, send)
	case "deadair":
		h.handleDeadAir(action, cmd, send)
	case "notifications":
		h.handleNotifications(action, subaction, cmd, send)
	case "config":
		h.handleConfig(action, send)
	case "status":
		h.handleStatus(action, send)
	default:
		slog.Warn("unknown WebSocket command", "type", cmd.Type)
	}

	triggerStatusUpdate()
}

// --- Namespace handlers ---

// handleAudio routes audio/* commands
func (h *CommandHandler) handleAudio(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "update":
		h.handleAudioUpdate(cmd, send)
	case "get":
		h.handleAudioGet(send)
	default:
		slog.Warn("unknown audio action", "action", action)
	}
}

// handleDetector routes detector/* commands
func (h *CommandHandler) handleDetector(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "update":
		h.handleDetectorUpdate(cmd, send)
	case "get":
		h.handleDetectorGet(send)
	default:
		slog.Warn("unknown detector action", "action", action)
	}
}

// handleDeadAir routes deadair/* commands
func (h *CommandHandler) handleDeadAir(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "update":
		h.handleDeadAirUpdate(cmd, send)
	case "get":
		h.handleDeadAirGet(send)
	default:
		slog.Warn("unknown deadair action", "action", action)
	}
}

// handleNotifications routes notifications/*/* commands
func (h *CommandHandler) handleNotifications(action, subaction string, cmd WSCommand, send chan<- any) {
	switch action {
	case "webhook":
		switch subaction {
		case "update":
			h.handleWebhookUpdate(cmd, send)
		case "test":
			h.handleTest(send, "test_webhook")
		case "get":
			h.handleWebhookGet(send)
		default:
			slog.Warn("unknown webhook action", "subaction", subaction)
		}
	case "log":
		switch subaction {
		case "update":
			h.handleLogUpdate(cmd, send)
		case "test":
			h.handleTest(send, "test_log")
		case "view":
			h.handleViewAlertLog(send)
		case "get":
			h.handleLogGet(send)
		default:
			slog.Warn("unknown log action", "subaction", subaction)
		}
	case "email":
		switch subaction {
		case "update":
			h.handleEmailUpdate(cmd, send)
		case "test":
			h.handleTest(send, "test_email")
		case "get":
			h.handleEmailGet(send)
		default:
			slog.Warn("unknown email action", "subaction", subaction)
		}
	default:
		slog.Warn("unknown notifications action", "action", action)
	}
}

// handleConfig routes config/* commands
func (h *CommandHandler) handleConfig(action string, send chan<- any) {
	switch action {
	case "get":
		h.handleConfigGet(send)
	default:
		slog.Warn("unknown config action", "action", action)
	}
}

// handleStatus routes status/* commands
func (h *CommandHandler) handleStatus(action string, send chan<- any) {
	switch action {
	case "get":
		// Status is sent automatically, but explicit get triggers immediate update
		slog.Debug("status/get received, status update will be triggered")
	default:
		slog.Warn("unknown status action", "action", action)
	}
}
