package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soocke/pixel-agent-go/domain/pic"
)

type readResult struct {
	frame Frame
	err   error
}

type readRequest struct {
	reply chan readResult // buffered, the worker never blocks on it
}

type dispatchCall struct {
	fn    func() error
	reply chan error
}

// Pipeline hands out frames from a Producer. One dispatch goroutine owns the
// producer callback registration; one acquisition worker owns the surface
// and performs every read-back. Construct with NewPipeline.
type Pipeline struct {
	producer Producer
	opts     Options
	logger   *slog.Logger

	frameAvailable chan struct{} // capacity 1, coalesces producer signals
	readRequests   chan readRequest
	quit           chan struct{}
	workerDone     chan struct{}

	dispatchCalls chan dispatchCall
	dispatchQuit  chan struct{}
	dispatchDone  chan struct{}

	firstFrame     chan struct{}
	firstFrameOnce sync.Once
	closing        chan struct{}

	state    atomic.Int32
	latest   atomic.Pointer[Frame]
	captures atomic.Uint64
	latches  atomic.Uint64
	failures atomic.Uint64
	reads    *readWindow

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewPipeline starts the dispatch goroutine, waits for it, starts the
// acquisition worker, waits for it to open the surface and finally registers
// the frame callback on the dispatch goroutine. It returns only once both
// goroutines are up.
func NewPipeline(producer Producer, opts Options, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opts = opts.withDefaults()
	p := &Pipeline{
		producer:       producer,
		opts:           opts,
		logger:         logger,
		frameAvailable: make(chan struct{}, 1),
		readRequests:   make(chan readRequest),
		quit:           make(chan struct{}),
		workerDone:     make(chan struct{}),
		dispatchCalls:  make(chan dispatchCall),
		dispatchQuit:   make(chan struct{}),
		dispatchDone:   make(chan struct{}),
		firstFrame:     make(chan struct{}),
		closing:        make(chan struct{}),
		reads:          newReadWindow(opts.StatsWindow),
	}

	dispatchReady := make(chan struct{})
	go p.dispatch(dispatchReady)
	<-dispatchReady

	workerReady := make(chan error, 1)
	go p.work(workerReady)
	if err := <-workerReady; err != nil {
		close(p.dispatchQuit)
		<-p.dispatchDone
		return nil, fmt.Errorf("%w: open surface: %w", ErrInit, err)
	}

	if err := p.onDispatcher(func() error { return producer.Register(p.onFrame) }); err != nil {
		close(p.closing)
		close(p.quit)
		<-p.workerDone
		close(p.dispatchQuit)
		<-p.dispatchDone
		return nil, fmt.Errorf("%w: register: %w", ErrInit, err)
	}
	logger.Info("capture.started", "join_timeout", opts.JoinTimeout)
	return p, nil
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		logger.Error(msg, "error", r, "stack", string(debug.Stack()))
	}
}

// onFrame is handed to the producer. It never blocks.
func (p *Pipeline) onFrame() {
	select {
	case p.frameAvailable <- struct{}{}:
	default:
	}
	p.firstFrameOnce.Do(func() { close(p.firstFrame) })
}

func (p *Pipeline) dispatch(ready chan<- struct{}) {
	defer close(p.dispatchDone)
	defer recoverLog(p.logger, "capture.dispatch_panic")
	close(ready)
	for {
		select {
		case call := <-p.dispatchCalls:
			call.reply <- call.fn()
		case <-p.dispatchQuit:
			return
		}
	}
}

// onDispatcher runs fn on the dispatch goroutine and waits for its result,
// bounded by JoinTimeout.
func (p *Pipeline) onDispatcher(fn func() error) error {
	call := dispatchCall{fn: fn, reply: make(chan error, 1)}
	timer := time.NewTimer(p.opts.JoinTimeout)
	defer timer.Stop()
	select {
	case p.dispatchCalls <- call:
	case <-timer.C:
		return fmt.Errorf("%w: dispatcher busy", ErrShutdownTimeout)
	}
	select {
	case err := <-call.reply:
		return err
	case <-timer.C:
		return fmt.Errorf("%w: dispatcher call", ErrShutdownTimeout)
	}
}

func (p *Pipeline) setState(s WorkerState) { p.state.Store(int32(s)) }

// State reports the acquisition worker's current state.
func (p *Pipeline) State() WorkerState { return WorkerState(p.state.Load()) }

func (p *Pipeline) work(ready chan<- error) {
	defer close(p.workerDone)
	defer p.setState(StateStopped)
	defer recoverLog(p.logger, "capture.worker_panic")

	p.setState(StateIdle)
	surface, err := p.producer.OpenSurface()
	if err != nil {
		ready <- err
		return
	}
	defer func() {
		if err := surface.Close(); err != nil {
			p.logger.Warn("capture.surface_close", "error", err)
		}
	}()
	ready <- nil

	var tick <-chan time.Time
	if p.opts.StatsInterval > 0 {
		t := time.NewTicker(p.opts.StatsInterval)
		defer t.Stop()
		tick = t.C
	}

	var serial uint64
	pending := false
	for {
		p.setState(StateAwaitingSignal)
		select {
		case <-p.quit:
			return
		case <-p.frameAvailable:
			pending = true
		case req := <-p.readRequests:
			p.setState(StateReading)
			frame, err := p.read(surface, &serial, &pending)
			if err != nil {
				p.failures.Add(1)
				req.reply <- readResult{err: err}
				continue
			}
			p.latest.Store(&frame)
			p.setState(StatePublished)
			out := frame
			out.Image = frame.Image.Clone()
			req.reply <- readResult{frame: out}
		case <-tick:
			p.logStats()
		}
	}
}

// read latches any frame signalled up to now and copies its pixels out.
func (p *Pipeline) read(surface Surface, serial *uint64, pending *bool) (Frame, error) {
	start := time.Now()
	select {
	case <-p.frameAvailable:
		*pending = true
	default:
	}
	if *pending {
		if err := surface.Latch(); err != nil {
			return Frame{}, fmt.Errorf("%w: latch: %w", ErrReadFailed, err)
		}
		*pending = false
		*serial++
		p.latches.Add(1)
	}
	w, h := surface.Size()
	buf := acquireBuffer(w * h * 4)
	defer recycleBuffer(buf)
	if err := surface.ReadPixels(*buf); err != nil {
		return Frame{}, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	frame := Frame{Image: pic.FromRGBABytes(w, h, *buf), Serial: *serial, CapturedAt: time.Now()}
	p.reads.add(time.Since(start))
	p.captures.Add(1)
	return frame, nil
}

func interrupted(cause error) error {
	if cause == nil {
		return ErrInterrupted
	}
	return fmt.Errorf("%w: %w", ErrInterrupted, cause)
}

// Capture asks the worker for a read-back and waits for it. The frame is no
// older than the newest frame signalled before the call. The caller owns the
// returned image.
func (p *Pipeline) Capture(ctx context.Context) (Frame, error) {
	req := readRequest{reply: make(chan readResult, 1)}
	select {
	case p.readRequests <- req:
	case <-ctx.Done():
		return Frame{}, interrupted(ctx.Err())
	case <-p.closing:
		return Frame{}, interrupted(nil)
	}
	select {
	case r := <-req.reply:
		return r.frame, r.err
	case <-ctx.Done():
		return Frame{}, interrupted(ctx.Err())
	case <-p.closing:
		return Frame{}, interrupted(nil)
	}
}

// WaitFirstFrame blocks until the producer has signalled at least once. It
// does not read pixels and returns immediately on later calls.
func (p *Pipeline) WaitFirstFrame(ctx context.Context) error {
	select {
	case <-p.firstFrame:
		return nil
	default:
	}
	select {
	case <-p.firstFrame:
		return nil
	case <-ctx.Done():
		return interrupted(ctx.Err())
	case <-p.closing:
		return interrupted(nil)
	}
}

// LatestFrame returns a copy of the most recently published frame, or a
// zero Frame. Every caller owns the image it gets.
func (p *Pipeline) LatestFrame() Frame {
	f := p.latest.Load()
	if f == nil {
		return Frame{}
	}
	out := *f
	out.Image = f.Image.Clone()
	return out
}

// Stats returns a snapshot of the pipeline counters.
func (p *Pipeline) Stats() Stats {
	avg, median := p.reads.summary()
	var latest Frame
	if f := p.latest.Load(); f != nil {
		latest = *f
	}
	age := time.Duration(0)
	if !latest.CapturedAt.IsZero() {
		age = time.Since(latest.CapturedAt)
	}
	return Stats{
		Captures:   p.captures.Load(),
		Latches:    p.latches.Load(),
		Failures:   p.failures.Load(),
		AvgRead:    avg,
		MedianRead: median,
		LastFrame:  latest.CapturedAt,
		FrameAge:   age,
		Serial:     latest.Serial,
		State:      p.State(),
	}
}

func (p *Pipeline) logStats() {
	s := p.Stats()
	p.logger.Debug("capture.stats",
		"captures", s.Captures,
		"latches", s.Latches,
		"failures", s.Failures,
		"avg_read", s.AvgRead,
		"median_read", s.MedianRead,
		"age", s.FrameAge,
		"serial", s.Serial,
	)
}

func joinWithin(done <-chan struct{}, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

// Shutdown stops the worker, unregisters the producer callback on the
// dispatch goroutine, then stops the dispatcher. Each join is bounded by
// JoinTimeout; exceeding it returns an error wrapping ErrShutdownTimeout.
// Later calls return the first result.
func (p *Pipeline) Shutdown() error {
	p.shutdownOnce.Do(func() {
		p.shutdownErr = p.shutdown()
		if p.shutdownErr != nil {
			p.logger.Error("capture.shutdown", "error", p.shutdownErr)
		} else {
			p.logger.Info("capture.stopped")
		}
	})
	return p.shutdownErr
}

func (p *Pipeline) shutdown() error {
	close(p.closing)
	close(p.quit)
	if !joinWithin(p.workerDone, p.opts.JoinTimeout) {
		return fmt.Errorf("%w: acquisition worker still in %s", ErrShutdownTimeout, p.State())
	}
	var errs []error
	if err := p.onDispatcher(p.producer.Unregister); err != nil {
		errs = append(errs, fmt.Errorf("unregister: %w", err))
	}
	close(p.dispatchQuit)
	if !joinWithin(p.dispatchDone, p.opts.JoinTimeout) {
		errs = append(errs, fmt.Errorf("%w: dispatcher", ErrShutdownTimeout))
	}
	return errors.Join(errs...)
}
