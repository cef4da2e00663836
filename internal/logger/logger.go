// Package logger builds the slog.Logger used across querykit from the
// LOG_LEVEL / LOG_FORMAT configuration.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Options configures New.
type Options struct {
	Level     string // DEBUG, INFO, WARN, ERROR or a numeric slog level
	Format    string // "json" or "text"
	AddSource bool
	Writer    io.Writer
}

// ParseLevel converts a level name to slog.Level. Unknown values fall back to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO", "":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	if n, err := strconv.Atoi(s); err == nil {
		return slog.Level(n)
	}
	return slog.LevelInfo
}

// New creates a logger writing to opts.Writer (stderr when nil).
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     ParseLevel(opts.Level),
		AddSource: opts.AddSource,
	}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	default:
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}

// Setup creates a logger and installs it as slog's default.
func Setup(opts Options) *slog.Logger {
	l := New(opts)
	slog.SetDefault(l)
	return l
}
