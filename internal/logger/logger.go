package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"note-sync/internal/config"
)

var (
	singleton *slog.Logger
	once      sync.Once

	discard = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// Init initializes the singleton logger from the provided config.
// The first call wins; later calls return the same instance.
func Init(cfg config.Config) (*slog.Logger, error) {
	once.Do(func() {
		singleton = New(cfg, os.Stdout)
	})

	return singleton, nil
}

// New builds a logger writing to w with the level and format from cfg.
// Unknown formats fall back to JSON and unknown levels to info.
func New(cfg config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.LogLevel),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.LogFormat) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler).With("app", "note-sync")
}

// ParseLevel maps a config level name to a slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// L returns the singleton logger instance, or a discarding logger when Init
// has not run yet (unit tests, tools).
func L() *slog.Logger {
	if singleton == nil {
		return discard
	}
	return singleton
}
