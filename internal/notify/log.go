package notify

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/oszuidwest/zwfm-avatar/internal/types"
	"github.com/oszuidwest/zwfm-avatar/internal/util"
)

// LogDeadAirStart records the beginning of a dead-air event.
func LogDeadAirStart(logPath string, levelDB, thresholdDB float64) error {
	return appendLogEntry(logPath, &types.DeadAirLogEntry{
		Timestamp:   timestampUTC(),
		Event:       "dead_air_start",
		LevelDB:     levelDB,
		ThresholdDB: thresholdDB,
	})
}

// LogDeadAirEnd records the end of a dead-air event.
func LogDeadAirEnd(logPath string, durationMs int64, levelDB, thresholdDB float64) error {
	return appendLogEntry(logPath, &types.DeadAirLogEntry{
		Timestamp:   timestampUTC(),
		Event:       "dead_air_end",
		DurationMs:  durationMs,
		LevelDB:     levelDB,
		ThresholdDB: thresholdDB,
	})
}

// WriteTestLog writes a test log entry.
func WriteTestLog(logPath string) error {
	if logPath == "" {
		return fmt.Errorf("log file path not configured")
	}

	return appendLogEntry(logPath, &types.DeadAirLogEntry{
		Timestamp:   timestampUTC(),
		Event:       "test",
		DurationMs:  0,
		ThresholdDB: 0,
	})
}

// appendLogEntry appends a log entry to the file.
func appendLogEntry(logPath string, entry *types.DeadAirLogEntry) error {
	if !util.IsConfigured(logPath) {
		return nil
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return util.WrapError("marshal log entry", err)
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return util.WrapError("open log file", err)
	}
	defer util.SafeCloseFunc(f, "log file")()

	if _, err := f.Write(jsonData); err != nil {
		return util.WrapError("write log entry", err)
	}
	if _, err := f.WriteString("\n"); err != nil {
		return util.WrapError("write newline", err)
	}

	return nil
}
