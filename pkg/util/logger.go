package util

import (
	"log/slog"
	"os"
)

// NewLogger returns a slog logger tagged with the service name. Development
// gets human-readable text at debug level; everything else gets JSON.
func NewLogger(env string) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler).With("service", "stayora-auth")
}
