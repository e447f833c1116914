package logger

import (
	"io"
	"log/slog"
	"os"
)

// New creates a JSON-formatted stdout logger.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// NewNope creates a no-op logger that discards all output.
// Use as a default when logging is not configured.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
