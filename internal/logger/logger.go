// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Builds stderr loggers for CLI commands and a file logger for the TUI.

package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// New creates a logger writing to w with the given level and format.
// format: "json" or anything else for text.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OpenFile creates a logger appending to <configDir>/debug.log.
// The TUI owns the terminal, so its diagnostics go to a file instead of stderr.
// If configDir is empty or the file cannot be opened, a discarding logger is
// returned together with the error.
func OpenFile(configDir, level, format string) (*slog.Logger, func() error, error) {
	noop := func() error { return nil }
	if configDir == "" {
		return Discard(), noop, nil
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return Discard(), noop, err
	}

	f, err := os.OpenFile(filepath.Join(configDir, "debug.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return Discard(), noop, err
	}

	return New(f, level, format), f.Close, nil
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
