package debug

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// StartMemLogger logs Go heap stats next to the process working set every
// interval until ctx is done. Pixel buffers from the capture pool show up
// in heap_inuse; native capture handles only in rss.
func StartMemLogger(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var rssErrLogged bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			rss, err := residentSetSize()
			if err != nil && !rssErrLogged {
				logger.Warn("debug.rss_unavailable", slog.String("err", err.Error()))
				rssErrLogged = true
			}
			logger.Info("debug.memstats",
				slog.Int("goroutines", runtime.NumGoroutine()),
				slog.Uint64("heap_alloc", ms.HeapAlloc),
				slog.Uint64("heap_inuse", ms.HeapInuse),
				slog.Uint64("heap_idle", ms.HeapIdle),
				slog.Uint64("heap_sys", ms.HeapSys),
				slog.Uint64("next_gc", ms.NextGC),
				slog.Uint64("rss", rss),
				slog.Uint64("num_gc", uint64(ms.NumGC)),
			)
		}
	}()
}
