package util

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// IsConfigured reports whether all provided values are non-empty.
func IsConfigured(values ...string) bool {
	for _, v := range values {
		if v == "" {
			return false
		}
	}
	return true
}

// ValidatePath validates a file path for security.
func ValidatePath(field, path string) error {
	if path == "" {
		return fmt.Errorf("%s: is required", field)
	}

	// Reject path traversal attempts before cleaning
	// This catches both explicit "../" and encoded variants
	if strings.Contains(path, "..") {
		return fmt.Errorf("%s: path cannot contain '..'", field)
	}

	cleaned := filepath.Clean(path)
	if strings.Contains(cleaned, "..") {
		return fmt.Errorf("%s: invalid path", field)
	}

	return nil
}

// CheckPathWritable verifies that a directory path exists and is writable.
func CheckPathWritable(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		slog.Error("path writability check failed", "path", path, "error", err, "step", "mkdir")
		return fmt.Errorf("path is not writable")
	}

	testFile := filepath.Join(path, fmt.Sprintf(".avatar-write-test-%d", time.Now().UnixNano()))

	f, err := os.Create(testFile)
	if err != nil {
		slog.Error("path writability check failed", "path", path, "error", err, "step", "create")
		return fmt.Errorf("path is not writable")
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(testFile) // Best effort cleanup
		slog.Error("path writability check failed", "path", path, "error", err, "step", "close")
		return fmt.Errorf("path is not writable")
	}

	if err := os.Remove(testFile); err != nil {
		slog.Error("path writability check failed", "path", path, "error", err, "step", "remove")
		return fmt.Errorf("path is not writable")
	}

	return nil
}
