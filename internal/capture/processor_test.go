package capture

import (
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-avatar/internal/audio"
	"github.com/oszuidwest/zwfm-avatar/internal/bridge"
	"github.com/oszuidwest/zwfm-avatar/internal/config"
	"github.com/oszuidwest/zwfm-avatar/internal/notify"
	"github.com/oszuidwest/zwfm-avatar/internal/types"
)

// constantPCM returns count S16LE mono samples at the given amplitude.
func constantPCM(amplitude int16, count int) []byte {
	buf := make([]byte, count*2)
	for i := range count {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(amplitude))
	}
	return buf
}

func newTestProcessor(t *testing.T, br *bridge.Bridge, callback AudioLevelCallback) (*Processor, *config.Config) {
	t.Helper()
	cfg := config.New(filepath.Join(t.TempDir(), "config.json"))
	p := NewProcessor(
		audio.NewActivityDetector(),
		audio.NewDeadAirDetector(),
		notify.NewDeadAirNotifier(cfg),
		audio.NewPeakHolder(),
		cfg,
		br,
		nil,
		callback,
	)
	return p, cfg
}

func TestProcessBufferSendsActivity(t *testing.T) {
	br := bridge.NewWithCapacity(16)
	p, cfg := newTestProcessor(t, br, nil)
	require.NoError(t, cfg.SetDetectorThreshold(0.1))

	// Loud buffer: amplitude 0.5 of full scale, well above the threshold.
	loud := constantPCM(16384, 480)
	p.ProcessBuffer(loud, len(loud))
	assert.True(t, <-br.Events())

	// Silence holds the state through the deadband, then releases.
	quiet := constantPCM(0, 480)
	p.ProcessBuffer(quiet, len(quiet))
	assert.False(t, <-br.Events())
}

func TestProcessBufferEmitsLevelsPerWindow(t *testing.T) {
	br := bridge.NewWithCapacity(1024)
	var metrics []*types.AudioMetrics
	p, _ := newTestProcessor(t, br, func(m *types.AudioMetrics) {
		metrics = append(metrics, m)
	})

	// One window is LevelUpdateSamples samples; feed it in ~100ms chunks.
	chunk := constantPCM(16384, 4800)
	for range 2 {
		p.ProcessBuffer(chunk, len(chunk))
	}
	assert.Empty(t, metrics, "no level update before the window fills")

	p.ProcessBuffer(chunk, len(chunk))
	require.Len(t, metrics, 1)

	m := metrics[0]
	assert.InDelta(t, -6.02, m.RMS, 0.1)
	assert.InDelta(t, -6.02, m.Peak, 0.1)
	assert.True(t, m.Active)
	assert.False(t, m.DeadAir)
	assert.Zero(t, m.Clip)
}

func TestProcessBufferCountsClips(t *testing.T) {
	br := bridge.NewWithCapacity(1024)
	var metrics []*types.AudioMetrics
	p, _ := newTestProcessor(t, br, func(m *types.AudioMetrics) {
		metrics = append(metrics, m)
	})

	chunk := constantPCM(32767, LevelUpdateSamples)
	p.ProcessBuffer(chunk, len(chunk))

	require.Len(t, metrics, 1)
	assert.Equal(t, LevelUpdateSamples, metrics[0].Clip)
}

func TestProcessBufferConfigChangesApplyNextBuffer(t *testing.T) {
	br := bridge.NewWithCapacity(16)
	p, cfg := newTestProcessor(t, br, nil)
	require.NoError(t, cfg.SetDetectorThreshold(0.9))

	buf := constantPCM(16384, 480) // RMS 0.5, below 0.9
	p.ProcessBuffer(buf, len(buf))
	assert.False(t, <-br.Events())

	require.NoError(t, cfg.SetDetectorThreshold(0.1))
	p.ProcessBuffer(buf, len(buf))
	assert.True(t, <-br.Events(), "lowered threshold picked up on the next buffer")
}
