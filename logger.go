package main

import (
	"log/slog"
	"os"
)

// NewLogger returns a structured JSON logger with the given level. Logs go
// to stderr; command output owns stdout.
func NewLogger(level slog.Leveler) *slog.Logger {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}
