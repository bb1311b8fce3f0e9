// Package debug holds diagnostics that run only when Config.Debug is set.
package debug

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"
)

// StartGoroutineLogger logs goroutine count and stack usage every interval
// until ctx is done. Useful for spotting leaked capture workers.
func StartGoroutineLogger(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			metrics.Read(samples)
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			logger.Info("debug.goroutines",
				slog.Uint64("goroutines", samples[0].Value.Uint64()),
				slog.Uint64("stack_inuse", ms.StackInuse),
				slog.Uint64("stack_sys", ms.StackSys),
				slog.Uint64("heap_alloc", ms.HeapAlloc),
			)
		}
	}()
}
