package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempConfigPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.json")
}

func TestNewDefaults(t *testing.T) {
	cfg := New(tempConfigPath(t))
	snap := cfg.Snapshot()

	assert.Equal(t, DefaultWebPort, snap.WebPort)
	assert.Equal(t, DefaultWebUsername, snap.WebUser)
	assert.Equal(t, DefaultStationName, snap.StationName)
	assert.Equal(t, DefaultDetectorThreshold, snap.DetectorThreshold)
	assert.Equal(t, DefaultDeadbandFactor, snap.DeadbandFactor)
	assert.False(t, snap.FlickerEnabled)
	assert.Equal(t, DefaultDeadAirThresholdDB, snap.DeadAirThresholdDB)
	assert.Equal(t, int64(DefaultDeadAirDurationMs), snap.DeadAirDurationMs)
	assert.Equal(t, int64(DefaultDeadAirRecoveryMs), snap.DeadAirRecoveryMs)
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := tempConfigPath(t)
	cfg := New(path)

	require.NoError(t, cfg.Load())

	_, err := os.Stat(path)
	assert.NoError(t, err, "missing config is created on first load")
}

func TestLoadRoundTrip(t *testing.T) {
	path := tempConfigPath(t)

	cfg := New(path)
	require.NoError(t, cfg.Load())
	require.NoError(t, cfg.SetAudioInput("hw:1"))
	require.NoError(t, cfg.SetDetectorThreshold(0.42))
	require.NoError(t, cfg.SetFlickerEnabled(true))
	require.NoError(t, cfg.SetWebhookURL("https://example.com/hook"))

	reloaded := New(path)
	require.NoError(t, reloaded.Load())
	snap := reloaded.Snapshot()

	assert.Equal(t, "hw:1", snap.AudioInput)
	assert.Equal(t, 0.42, snap.DetectorThreshold)
	assert.True(t, snap.FlickerEnabled)
	assert.Equal(t, "https://example.com/hook", snap.WebhookURL)
}

func TestLoadPreservesExplicitZeroThreshold(t *testing.T) {
	path := tempConfigPath(t)

	cfg := New(path)
	require.NoError(t, cfg.Load())
	require.NoError(t, cfg.SetDetectorThreshold(0))
	require.NoError(t, cfg.SetDeadbandFactor(0))

	// A saved zero must survive a reload instead of snapping back to defaults.
	reloaded := New(path)
	require.NoError(t, reloaded.Load())
	snap := reloaded.Snapshot()

	assert.Zero(t, snap.DetectorThreshold)
	assert.Zero(t, snap.DeadbandFactor)
}

func TestLoadAppliesDefaultsForMissingFields(t *testing.T) {
	path := tempConfigPath(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"audio":{"input":"hw:0"}}`), 0o600))

	cfg := New(path)
	require.NoError(t, cfg.Load())
	snap := cfg.Snapshot()

	assert.Equal(t, "hw:0", snap.AudioInput)
	assert.Equal(t, DefaultWebPort, snap.WebPort)
	assert.Equal(t, DefaultStationName, snap.StationName)
	assert.Equal(t, int64(DefaultDeadAirDurationMs), snap.DeadAirDurationMs)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"threshold above one", `{"detector":{"threshold":1.5,"deadband_factor":0.3}}`},
		{"negative threshold", `{"detector":{"threshold":-0.1,"deadband_factor":0.3}}`},
		{"deadband above one", `{"detector":{"threshold":0.1,"deadband_factor":2}}`},
		{"bad color", `{"web":{"station_name":"Test","color_light":"red","color_dark":"#FFFFFF"}}`},
		{"station name too long", `{"web":{"station_name":"0123456789012345678901234567890123456789"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tempConfigPath(t)
			require.NoError(t, os.WriteFile(path, []byte(tt.json), 0o600))

			cfg := New(path)
			assert.Error(t, cfg.Load())
		})
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := tempConfigPath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	cfg := New(path)
	assert.Error(t, cfg.Load())
}

func TestSetGraphConfig(t *testing.T) {
	cfg := New(tempConfigPath(t))
	require.NoError(t, cfg.SetGraphConfig("tenant", "client", "secret", "from@x.nl", "a@x.nl,b@x.nl"))

	graph := cfg.GraphConfig()
	assert.Equal(t, "tenant", graph.TenantID)
	assert.Equal(t, "secret", graph.ClientSecret)

	snap := cfg.Snapshot()
	assert.True(t, snap.HasGraph())
}

func TestSnapshotHelpers(t *testing.T) {
	cfg := New(tempConfigPath(t))
	snap := cfg.Snapshot()

	assert.False(t, snap.HasWebhook())
	assert.False(t, snap.HasGraph())
	assert.False(t, snap.HasLogPath())

	require.NoError(t, cfg.SetWebhookURL("https://example.com"))
	require.NoError(t, cfg.SetLogPath("/tmp/alerts.log"))

	snap = cfg.Snapshot()
	assert.True(t, snap.HasWebhook())
	assert.True(t, snap.HasLogPath())
}
