package capture

import (
	"slices"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Stats summarises pipeline behaviour for instrumentation.
type Stats struct {
	Captures   uint64
	Latches    uint64
	Failures   uint64
	AvgRead    time.Duration
	MedianRead time.Duration
	LastFrame  time.Time
	FrameAge   time.Duration
	Serial     uint64
	State      WorkerState
}

// readWindow keeps the most recent read durations in a ring.
type readWindow struct {
	mu    sync.Mutex
	ring  []float64
	next  int
	full  bool
	total time.Duration
	count uint64
}

func newReadWindow(size int) *readWindow {
	return &readWindow{ring: make([]float64, size)}
}

func (w *readWindow) add(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ring[w.next] = float64(d)
	w.next++
	if w.next == len(w.ring) {
		w.next, w.full = 0, true
	}
	w.total += d
	w.count++
}

// summary returns the lifetime average and the median of the window.
func (w *readWindow) summary() (avg, median time.Duration) {
	w.mu.Lock()
	n := w.next
	if w.full {
		n = len(w.ring)
	}
	sample := slices.Clone(w.ring[:n])
	if w.count > 0 {
		avg = w.total / time.Duration(w.count)
	}
	w.mu.Unlock()
	if len(sample) == 0 {
		return avg, 0
	}
	slices.Sort(sample)
	return avg, time.Duration(stat.Quantile(0.5, stat.Empirical, sample, nil))
}
