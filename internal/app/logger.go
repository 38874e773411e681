package app

import (
	"log/slog"
	"os"
)

// NewLogger returns the process logger. Non-production environments log at
// debug so the import pipeline's per-row diagnostics are visible.
func NewLogger(cfg *Config) *slog.Logger {
	level := slog.LevelDebug
	if cfg.IsProduction() {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{AddSource: true, Level: level}

	var handler slog.Handler
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler).With(slog.String("service", "meridian-oms"))
}
