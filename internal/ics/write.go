package ics

import (
	"fmt"
	"os"
	"path/filepath"

	ical "github.com/arran4/golang-ical"
	"go.uber.org/zap"
)

// WriteFile serializes a calendar to the given path. The write is a
// one-shot direct overwrite; concurrent runs against the same path must
// be serialized by the caller.
func WriteFile(path string, cal *ical.Calendar, logger *zap.Logger) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory for %s: %w", path, err)
		}
	}

	payload := []byte(cal.Serialize())
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write calendar %s: %w", path, err)
	}

	logger.Info("Calendar written",
		zap.String("path", path),
		zap.Int("bytes", len(payload)))

	return nil
}
