package debug

import (
	"context"
	"log/slog"
	"time"
)

// Measure runs fn and logs its duration under name: at Info when it took
// longer than slow, at Debug otherwise.
func Measure(logger *slog.Logger, name string, slow time.Duration, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	level := slog.LevelDebug
	if elapsed > slow {
		level = slog.LevelInfo
	}
	attrs := []any{slog.String("op", name), slog.Duration("elapsed", elapsed)}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
	}
	logger.Log(context.Background(), level, "debug.measure", attrs...)
	return err
}
