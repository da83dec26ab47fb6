package notify

import (
	"fmt"
	"sync"

	"github.com/oszuidwest/zwfm-avatar/internal/audio"
	"github.com/oszuidwest/zwfm-avatar/internal/config"
	"github.com/oszuidwest/zwfm-avatar/internal/types"
	"github.com/oszuidwest/zwfm-avatar/internal/util"
)

// DeadAirNotifier manages notifications for dead-air detection events.
type DeadAirNotifier struct {
	cfg *config.Config

	// mu protects the notification state fields below
	mu sync.Mutex

	// Track which notifications have been sent for current dead-air period
	webhookSent bool
	emailSent   bool
	logSent     bool

	// Cached Graph client for email notifications
	graphClient *GraphClient
}

// NewDeadAirNotifier returns a DeadAirNotifier configured with the given config.
func NewDeadAirNotifier(cfg *config.Config) *DeadAirNotifier {
	return &DeadAirNotifier{cfg: cfg}
}

// InvalidateGraphClient clears the cached Graph client.
// Call this when Graph configuration changes.
func (n *DeadAirNotifier) InvalidateGraphClient() {
	n.mu.Lock()
	n.graphClient = nil
	n.mu.Unlock()
}

// getOrCreateGraphClient returns the cached Graph client, creating it if needed.
func (n *DeadAirNotifier) getOrCreateGraphClient(cfg *types.GraphConfig) (*GraphClient, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.graphClient != nil {
		return n.graphClient, nil
	}

	client, err := NewGraphClient(cfg)
	if err != nil {
		return nil, err
	}
	n.graphClient = client
	return client, nil
}

// HandleEvent processes a dead-air event and triggers notifications.
func (n *DeadAirNotifier) HandleEvent(event audio.DeadAirEvent) {
	if event.JustEntered {
		n.handleDeadAirStart(event.CurrentLevelDB)
	}

	if event.JustRecovered {
		n.handleDeadAirEnd(event.TotalDurationMs, event.CurrentLevelDB)
	}
}

// handleDeadAirStart triggers notifications when dead air is first detected.
func (n *DeadAirNotifier) handleDeadAirStart(levelDB float64) {
	cfg := n.cfg.Snapshot()

	n.trySend(&n.webhookSent, cfg.HasWebhook(), func() { n.sendDeadAirWebhook(cfg, levelDB) })
	n.trySend(&n.emailSent, cfg.HasGraph(), func() { n.sendDeadAirEmail(cfg, levelDB) })
	n.trySend(&n.logSent, cfg.HasLogPath(), func() { n.logDeadAirStart(cfg, levelDB) })
}

// trySend sends a notification if the condition is met and not already sent.
func (n *DeadAirNotifier) trySend(sent *bool, condition bool, sender func()) {
	n.mu.Lock()
	shouldSend := !*sent && condition
	if shouldSend {
		*sent = true
	}
	n.mu.Unlock()
	if shouldSend {
		go sender()
	}
}

// handleDeadAirEnd triggers recovery notifications when dead air ends.
func (n *DeadAirNotifier) handleDeadAirEnd(totalDurationMs int64, levelDB float64) {
	cfg := n.cfg.Snapshot()

	// Only send recovery notifications if we sent the corresponding start notification
	n.mu.Lock()
	shouldSendWebhookRecovery := n.webhookSent
	shouldSendEmailRecovery := n.emailSent
	shouldSendLogRecovery := n.logSent
	// Reset notification state for next dead-air period
	n.webhookSent = false
	n.emailSent = false
	n.logSent = false
	n.mu.Unlock()

	if shouldSendWebhookRecovery {
		go n.sendRecoveryWebhook(cfg, totalDurationMs, levelDB)
	}

	if shouldSendEmailRecovery {
		go n.sendRecoveryEmail(cfg, totalDurationMs, levelDB)
	}

	if shouldSendLogRecovery {
		go n.logDeadAirEnd(cfg, totalDurationMs, levelDB)
	}
}

// Reset clears the notification state.
func (n *DeadAirNotifier) Reset() {
	n.mu.Lock()
	n.webhookSent = false
	n.emailSent = false
	n.logSent = false
	n.mu.Unlock()
}

//nolint:gocritic // hugeParam: copy is acceptable for infrequent notification events
func (n *DeadAirNotifier) sendDeadAirWebhook(cfg config.Snapshot, levelDB float64) {
	util.LogNotifyResult(
		func() error { return SendDeadAirWebhook(cfg.WebhookURL, levelDB, cfg.DeadAirThresholdDB) },
		"Dead-air webhook",
	)
}

//nolint:gocritic // hugeParam: copy is acceptable for infrequent notification events
func (n *DeadAirNotifier) sendRecoveryWebhook(cfg config.Snapshot, durationMs int64, levelDB float64) {
	util.LogNotifyResult(
		func() error {
			return SendRecoveryWebhook(cfg.WebhookURL, durationMs, levelDB, cfg.DeadAirThresholdDB)
		},
		"Recovery webhook",
	)
}

// BuildGraphConfig creates a GraphConfig from the config snapshot.
//
//nolint:gocritic // hugeParam: copy is acceptable for infrequent notification events
func BuildGraphConfig(cfg config.Snapshot) *types.GraphConfig {
	return &types.GraphConfig{
		TenantID:     cfg.GraphTenantID,
		ClientID:     cfg.GraphClientID,
		ClientSecret: cfg.GraphClientSecret,
		FromAddress:  cfg.GraphFromAddress,
		Recipients:   cfg.GraphRecipients,
	}
}

//nolint:gocritic // hugeParam: copy is acceptable for infrequent notification events
func (n *DeadAirNotifier) sendDeadAirEmail(cfg config.Snapshot, levelDB float64) {
	graphCfg := BuildGraphConfig(cfg)
	util.LogNotifyResult(
		func() error {
			return n.sendDeadAirEmailWithClient(graphCfg, cfg.StationName, levelDB, cfg.DeadAirThresholdDB)
		},
		"Dead-air email",
	)
}

//nolint:gocritic // hugeParam: copy is acceptable for infrequent notification events
func (n *DeadAirNotifier) sendRecoveryEmail(cfg config.Snapshot, durationMs int64, levelDB float64) {
	graphCfg := BuildGraphConfig(cfg)
	util.LogNotifyResult(
		func() error {
			return n.sendRecoveryEmailWithClient(graphCfg, cfg.StationName, durationMs, levelDB, cfg.DeadAirThresholdDB)
		},
		"Recovery email",
	)
}

// sendEmail handles the common email sending infrastructure.
func (n *DeadAirNotifier) sendEmail(cfg *types.GraphConfig, subject, body string) error {
	if !IsConfigured(cfg) {
		return nil
	}

	client, err := n.getOrCreateGraphClient(cfg)
	if err != nil {
		return util.WrapError("create Graph client", err)
	}

	recipients := ParseRecipients(cfg.Recipients)
	if len(recipients) == 0 {
		return fmt.Errorf("no valid recipients")
	}

	if err := client.SendMail(recipients, subject, body); err != nil {
		return util.WrapError("send email via Graph", err)
	}

	return nil
}

// sendDeadAirEmailWithClient sends a dead-air alert email using the cached Graph client.
func (n *DeadAirNotifier) sendDeadAirEmailWithClient(cfg *types.GraphConfig, stationName string, levelDB, thresholdDB float64) error {
	subject := "[ALERT] Dead Air Detected - " + stationName
	body := fmt.Sprintf(
		"Dead air detected on the studio microphone.\n\n"+
			"Level:     %.1f dB\n"+
			"Threshold: %.1f dB\n"+
			"Time:      %s\n\n"+
			"Silence is ongoing. Please check the microphone.",
		levelDB, thresholdDB, util.HumanTime(),
	)
	return n.sendEmail(cfg, subject, body)
}

// sendRecoveryEmailWithClient sends a recovery email using the cached Graph client.
func (n *DeadAirNotifier) sendRecoveryEmailWithClient(cfg *types.GraphConfig, stationName string, durationMs int64, levelDB, thresholdDB float64) error {
	subject := "[OK] Audio Recovered - " + stationName
	body := fmt.Sprintf(
		"Audio recovered on the studio microphone.\n\n"+
			"Level:           %.1f dB\n"+
			"Dead air lasted: %s\n"+
			"Threshold:       %.1f dB\n"+
			"Time:            %s",
		levelDB, util.FormatDuration(durationMs), thresholdDB, util.HumanTime(),
	)
	return n.sendEmail(cfg, subject, body)
}

//nolint:gocritic // hugeParam: copy is acceptable for infrequent notification events
func (n *DeadAirNotifier) logDeadAirStart(cfg config.Snapshot, levelDB float64) {
	util.LogNotifyResult(
		func() error { return LogDeadAirStart(cfg.LogPath, levelDB, cfg.DeadAirThresholdDB) },
		"Dead-air log",
	)
}

//nolint:gocritic // hugeParam: copy is acceptable for infrequent notification events
func (n *DeadAirNotifier) logDeadAirEnd(cfg config.Snapshot, durationMs int64, levelDB float64) {
	util.LogNotifyResult(
		func() error { return LogDeadAirEnd(cfg.LogPath, durationMs, levelDB, cfg.DeadAirThresholdDB) },
		"Recovery log",
	)
}
