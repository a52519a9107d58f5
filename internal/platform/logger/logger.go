package logger

import (
	"log/slog"
	"os"
)

// New returns the root structured logger. All handlers and services derive
// their loggers from this one so log shape stays uniform.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
