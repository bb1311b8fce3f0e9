package capture

import (
	"errors"
	"time"

	"github.com/soocke/pixel-agent-go/domain/pic"
)

var (
	// ErrInterrupted is returned when a blocking call is cancelled or the
	// pipeline shuts down underneath it.
	ErrInterrupted = errors.New("capture: interrupted")
	// ErrReadFailed wraps a failed latch or pixel read-back.
	ErrReadFailed = errors.New("capture: read failed")
	// ErrShutdownTimeout means a goroutine did not exit within JoinTimeout.
	ErrShutdownTimeout = errors.New("capture: shutdown timeout")
	// ErrInit wraps a failure while the pipeline was starting.
	ErrInit = errors.New("capture: init failed")
)

// Producer delivers frames. onFrame is called from the producer's own
// goroutine whenever a new frame becomes available.
type Producer interface {
	OpenSurface() (Surface, error)
	Register(onFrame func()) error
	Unregister() error
}

// Surface is the readable side of a producer. Latch advances to the newest
// produced frame; ReadPixels copies the latched frame as RGBA with stride
// w*4 into dst, which holds at least w*h*4 bytes.
type Surface interface {
	Size() (w, h int)
	Latch() error
	ReadPixels(dst []byte) error
	Close() error
}

// Frame is one published read-back. Equal serials mean the same latched
// producer frame.
type Frame struct {
	Image      *pic.Image
	Serial     uint64
	CapturedAt time.Time
}

// WorkerState is the acquisition worker's position in its loop.
type WorkerState int32

const (
	StateIdle WorkerState = iota
	StateAwaitingSignal
	StateReading
	StatePublished
	StateStopped
)

func (s WorkerState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateAwaitingSignal:
		return "AwaitingSignal"
	case StateReading:
		return "Reading"
	case StatePublished:
		return "Published"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Options tune a Pipeline.
type Options struct {
	JoinTimeout   time.Duration // per goroutine at shutdown
	StatsInterval time.Duration // 0 disables periodic stats logging
	StatsWindow   int           // read durations kept for the median
}

// DefaultOptions returns the pipeline defaults.
func DefaultOptions() Options {
	return Options{JoinTimeout: 2 * time.Second, StatsInterval: 5 * time.Second, StatsWindow: 64}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.JoinTimeout <= 0 {
		o.JoinTimeout = d.JoinTimeout
	}
	if o.StatsWindow <= 0 {
		o.StatsWindow = d.StatsWindow
	}
	return o
}
