// Package config provides application configuration management.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/oszuidwest/zwfm-avatar/internal/types"
	"github.com/oszuidwest/zwfm-avatar/internal/util"
)

// Configuration defaults are used when values are not specified.
const (
	DefaultWebPort            = 8080
	DefaultWebUsername        = "admin"
	DefaultWebPassword        = "avatar"
	DefaultDetectorThreshold  = 0.12
	DefaultDeadbandFactor     = 0.30
	DefaultDeadAirThresholdDB = -40.0
	DefaultDeadAirDurationMs  = 15000 // 15 seconds in milliseconds
	DefaultDeadAirRecoveryMs  = 5000  // 5 seconds in milliseconds
	DefaultStationName        = "ZuidWest FM"
	DefaultStationColorLight  = "#E6007E"
	DefaultStationColorDark   = "#E6007E"
)

// Validation patterns define regular expressions for configuration value validation.
var (
	// Station name: any printable characters except control chars (blocks CRLF injection in emails)
	stationNamePattern  = regexp.MustCompile(`^[^\x00-\x1F\x7F]+$`)
	stationColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// SystemConfig holds system-level settings that require restart.
type SystemConfig struct {
	FFmpegPath string `json:"ffmpeg_path"` // Path to FFmpeg binary (empty = use PATH)
	Port       int    `json:"port"`        // HTTP server port
	Username   string `json:"username"`    // Login username
	Password   string `json:"password"`    // Login password
	AssetsDir  string `json:"assets_dir"`  // Directory holding the avatar pose images
}

// WebConfig holds station branding settings.
type WebConfig struct {
	StationName string `json:"station_name"` // Station display name
	ColorLight  string `json:"color_light"`  // Theme color for light mode (#RRGGBB)
	ColorDark   string `json:"color_dark"`   // Theme color for dark mode (#RRGGBB)
}

// AudioConfig holds audio input device settings.
type AudioConfig struct {
	Input string `json:"input"` // Audio input device identifier
}

// DetectorConfig holds voice activity detection parameters.
type DetectorConfig struct {
	Threshold      float64 `json:"threshold"`       // Linear RMS activation threshold [0, 1]
	DeadbandFactor float64 `json:"deadband_factor"` // Deactivation fraction of threshold [0, 1]
	FlickerEnabled bool    `json:"flicker_enabled"` // Pulse the talking pose instead of holding it
}

// DeadAirConfig holds dead-air detection thresholds and timing parameters.
type DeadAirConfig struct {
	ThresholdDB float64 `json:"threshold_db"` // Silence threshold in dB
	DurationMs  int64   `json:"duration_ms"`  // Duration below threshold before dead-air alert
	RecoveryMs  int64   `json:"recovery_ms"`  // Duration above threshold before recovery
}

// WebhookConfig holds webhook notification settings.
type WebhookConfig struct {
	URL string `json:"url"` // Webhook URL for dead-air alerts
}

// LogConfig holds log file notification settings.
type LogConfig struct {
	Path string `json:"path"` // Log file path for dead-air events
}

// EmailConfig holds Microsoft Graph email notification settings.
type EmailConfig struct {
	TenantID     string `json:"tenant_id"`     // Azure AD tenant ID
	ClientID     string `json:"client_id"`     // App registration client ID
	ClientSecret string `json:"client_secret"` // App registration client secret
	FromAddress  string `json:"from_address"`  // Shared mailbox sender address
	Recipients   string `json:"recipients"`    // Comma-separated recipient addresses
}

// NotificationsConfig holds all notification channel settings.
type NotificationsConfig struct {
	Webhook WebhookConfig `json:"webhook"` // Webhook settings
	Log     LogConfig     `json:"log"`     // Log file settings
	Email   EmailConfig   `json:"email"`   // Email settings
}

// Config holds all application configuration. It is safe for concurrent use.
type Config struct {
	System        SystemConfig        `json:"system"`
	Web           WebConfig           `json:"web"`
	Audio         AudioConfig         `json:"audio"`
	Detector      DetectorConfig      `json:"detector"`
	DeadAir       DeadAirConfig       `json:"dead_air"`
	Notifications NotificationsConfig `json:"notifications"`

	mu       sync.RWMutex
	filePath string
}

// New creates a new Config with default values. Detector and dead-air
// defaults live here rather than in applyDefaults: zero is a meaningful
// value for those fields once a user has saved it.
func New(filePath string) *Config {
	return &Config{
		System: SystemConfig{
			Port:     DefaultWebPort,
			Username: DefaultWebUsername,
			Password: DefaultWebPassword,
		},
		Web: WebConfig{
			StationName: DefaultStationName,
			ColorLight:  DefaultStationColorLight,
			ColorDark:   DefaultStationColorDark,
		},
		Audio: AudioConfig{},
		Detector: DetectorConfig{
			Threshold:      DefaultDetectorThreshold,
			DeadbandFactor: DefaultDeadbandFactor,
		},
		DeadAir: DeadAirConfig{
			ThresholdDB: DefaultDeadAirThresholdDB,
			DurationMs:  DefaultDeadAirDurationMs,
			RecoveryMs:  DefaultDeadAirRecoveryMs,
		},
		Notifications: NotificationsConfig{},
		filePath:      filePath,
	}
}

// Load reads config from file, creating a default if none exists.
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.filePath)
	if os.IsNotExist(err) {
		return c.saveLocked()
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return util.WrapError("parse config", err)
	}

	c.applyDefaults()

	if err := c.validate(); err != nil {
		return err
	}

	return nil
}

// validate checks all configuration fields for correctness.
func (c *Config) validate() error {
	// Validate station name
	name := c.Web.StationName
	if name == "" || len(name) > 30 || !stationNamePattern.MatchString(name) {
		return fmt.Errorf("invalid station_name %q: must be 1-30 printable characters", name)
	}
	// Validate station colors
	if !stationColorPattern.MatchString(c.Web.ColorLight) {
		return fmt.Errorf("invalid color_light %q: must be hex format (#RRGGBB)", c.Web.ColorLight)
	}
	if !stationColorPattern.MatchString(c.Web.ColorDark) {
		return fmt.Errorf("invalid color_dark %q: must be hex format (#RRGGBB)", c.Web.ColorDark)
	}
	// Validate detector parameters
	if c.Detector.Threshold < 0 || c.Detector.Threshold > 1 {
		return fmt.Errorf("invalid detector threshold %v: must be in range 0-1", c.Detector.Threshold)
	}
	if c.Detector.DeadbandFactor < 0 || c.Detector.DeadbandFactor > 1 {
		return fmt.Errorf("invalid deadband_factor %v: must be in range 0-1", c.Detector.DeadbandFactor)
	}
	return nil
}

// applyDefaults sets default values for zero-value fields.
func (c *Config) applyDefaults() {
	// System defaults
	if c.System.Port == 0 {
		c.System.Port = DefaultWebPort
	}
	if c.System.Username == "" {
		c.System.Username = DefaultWebUsername
	}
	if c.System.Password == "" {
		c.System.Password = DefaultWebPassword
	}
	// Web defaults
	if c.Web.StationName == "" {
		c.Web.StationName = DefaultStationName
	}
	if c.Web.ColorLight == "" {
		c.Web.ColorLight = DefaultStationColorLight
	}
	if c.Web.ColorDark == "" {
		c.Web.ColorDark = DefaultStationColorDark
	}
	// Dead-air timing defaults
	if c.DeadAir.DurationMs == 0 {
		c.DeadAir.DurationMs = DefaultDeadAirDurationMs
	}
	if c.DeadAir.RecoveryMs == 0 {
		c.DeadAir.RecoveryMs = DefaultDeadAirRecoveryMs
	}
}

// saveLocked persists configuration. Caller must hold c.mu.
func (c *Config) saveLocked() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return util.WrapError("marshal config", err)
	}

	dir := filepath.Dir(c.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return util.WrapError("create config directory", err)
	}

	if err := os.WriteFile(c.filePath, data, 0o600); err != nil {
		return util.WrapError("write config", err)
	}

	return nil
}

// --- Getters for individual settings ---

// AudioInput returns the configured audio input device.
func (c *Config) AudioInput() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Audio.Input
}

// GetFFmpegPath returns the configured FFmpeg binary path.
func (c *Config) GetFFmpegPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.System.FFmpegPath
}

// AssetsDir returns the configured avatar assets directory.
func (c *Config) AssetsDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.System.AssetsDir
}

// LogPath returns the configured log file path for notifications.
func (c *Config) LogPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Notifications.Log.Path
}

// GraphConfig returns a copy of the current Graph/Email configuration.
func (c *Config) GraphConfig() types.GraphConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return types.GraphConfig{
		TenantID:     c.Notifications.Email.TenantID,
		ClientID:     c.Notifications.Email.ClientID,
		ClientSecret: c.Notifications.Email.ClientSecret,
		FromAddress:  c.Notifications.Email.FromAddress,
		Recipients:   c.Notifications.Email.Recipients,
	}
}

// --- Setters for individual settings ---

// SetAudioInput updates the audio input device and saves the configuration.
func (c *Config) SetAudioInput(input string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Audio.Input = input
	return c.saveLocked()
}

// SetDetectorThreshold updates the activation threshold and saves the configuration.
func (c *Config) SetDetectorThreshold(threshold float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Detector.Threshold = threshold
	return c.saveLocked()
}

// SetDeadbandFactor updates the deactivation factor and saves the configuration.
func (c *Config) SetDeadbandFactor(factor float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Detector.DeadbandFactor = factor
	return c.saveLocked()
}

// SetFlickerEnabled updates the flicker setting and saves the configuration.
func (c *Config) SetFlickerEnabled(enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Detector.FlickerEnabled = enabled
	return c.saveLocked()
}

// SetDeadAirThreshold updates the dead-air threshold and saves the configuration.
func (c *Config) SetDeadAirThreshold(thresholdDB float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DeadAir.ThresholdDB = thresholdDB
	return c.saveLocked()
}

// SetDeadAirDurationMs updates the dead-air duration and saves the configuration.
func (c *Config) SetDeadAirDurationMs(ms int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DeadAir.DurationMs = ms
	return c.saveLocked()
}

// SetDeadAirRecoveryMs updates the dead-air recovery time and saves the configuration.
func (c *Config) SetDeadAirRecoveryMs(ms int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DeadAir.RecoveryMs = ms
	return c.saveLocked()
}

// SetWebhookURL updates the webhook URL and saves the configuration.
func (c *Config) SetWebhookURL(url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Notifications.Webhook.URL = url
	return c.saveLocked()
}

// SetLogPath updates the log file path and saves the configuration.
func (c *Config) SetLogPath(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Notifications.Log.Path = path
	return c.saveLocked()
}

// SetGraphConfig updates all Microsoft Graph/Email configuration fields and saves.
func (c *Config) SetGraphConfig(tenantID, clientID, clientSecret, fromAddress, recipients string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Notifications.Email.TenantID = tenantID
	c.Notifications.Email.ClientID = clientID
	c.Notifications.Email.ClientSecret = clientSecret
	c.Notifications.Email.FromAddress = fromAddress
	c.Notifications.Email.Recipients = recipients
	return c.saveLocked()
}

// --- Snapshot for atomic reads ---

// Snapshot is a point-in-time copy of configuration values.
type Snapshot struct {
	// System
	WebPort     int
	WebUser     string
	WebPassword string

	// Web/Branding
	StationName       string
	StationColorLight string
	StationColorDark  string

	// Audio
	AudioInput string

	// Voice activity detection
	DetectorThreshold float64
	DeadbandFactor    float64
	FlickerEnabled    bool

	// Dead-air detection
	DeadAirThresholdDB float64
	DeadAirDurationMs  int64
	DeadAirRecoveryMs  int64

	// Notifications
	WebhookURL        string
	LogPath           string
	GraphTenantID     string
	GraphClientID     string
	GraphClientSecret string
	GraphFromAddress  string
	GraphRecipients   string
}

// Snapshot returns a point-in-time copy of all configuration values.
func (c *Config) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		// System
		WebPort:     c.System.Port,
		WebUser:     c.System.Username,
		WebPassword: c.System.Password,

		// Web/Branding
		StationName:       c.Web.StationName,
		StationColorLight: c.Web.ColorLight,
		StationColorDark:  c.Web.ColorDark,

		// Audio
		AudioInput: c.Audio.Input,

		// Voice activity detection
		DetectorThreshold: c.Detector.Threshold,
		DeadbandFactor:    c.Detector.DeadbandFactor,
		FlickerEnabled:    c.Detector.FlickerEnabled,

		// Dead-air detection
		DeadAirThresholdDB: c.DeadAir.ThresholdDB,
		DeadAirDurationMs:  c.DeadAir.DurationMs,
		DeadAirRecoveryMs:  c.DeadAir.RecoveryMs,

		// Notifications
		WebhookURL:        c.Notifications.Webhook.URL,
		LogPath:           c.Notifications.Log.Path,
		GraphTenantID:     c.Notifications.Email.TenantID,
		GraphClientID:     c.Notifications.Email.ClientID,
		GraphClientSecret: c.Notifications.Email.ClientSecret,
		GraphFromAddress:  c.Notifications.Email.FromAddress,
		GraphRecipients:   c.Notifications.Email.Recipients,
	}
}

// HasWebhook reports whether a webhook URL is configured.
func (s *Snapshot) HasWebhook() bool {
	return s.WebhookURL != ""
}

// HasGraph reports whether Microsoft Graph email notifications are configured.
func (s *Snapshot) HasGraph() bool {
	return s.GraphTenantID != "" && s.GraphClientID != "" && s.GraphClientSecret != "" &&
		s.GraphFromAddress != "" && s.GraphRecipients != ""
}

// HasLogPath reports whether a log path is configured.
func (s *Snapshot) HasLogPath() bool {
	return s.LogPath != ""
}
