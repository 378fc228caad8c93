package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. JSON output feeds log aggregation in
// deployed environments; any other format falls back to text for local runs.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
