// Package logging builds the structured logger shared by the scanner and
// worker binaries. Output is JSON on stdout with a fixed service field, so
// records from both binaries aggregate cleanly.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// NewJSONLogger returns a slog logger at the given level. Unrecognized
// level names fall back to info rather than failing startup.
func NewJSONLogger(service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("service", service)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
