package capture

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// fakeProducer paints every pixel with the number of frames produced when
// the surface was latched: low byte in red, high byte in green.
type fakeProducer struct {
	w, h int

	mu       sync.Mutex
	produced uint64
	onFrame  func()

	openErr      error
	readErr      error
	block        chan struct{} // ReadPixels waits on it when non-nil
	registered   atomic.Int32
	unregistered atomic.Int32
	closed       atomic.Int32
}

func newFakeProducer() *fakeProducer { return &fakeProducer{w: 4, h: 3} }

func (f *fakeProducer) emit() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.produced++
	if f.onFrame != nil {
		f.onFrame()
	}
}

func latchedOf(fr Frame) uint64 {
	px := fr.Image.Pix[0]
	return uint64(px>>24) | uint64(px>>16&0xFF)<<8
}

func (f *fakeProducer) OpenSurface() (Surface, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &fakeSurface{f: f}, nil
}

func (f *fakeProducer) Register(onFrame func()) error {
	f.mu.Lock()
	f.onFrame = onFrame
	f.mu.Unlock()
	f.registered.Add(1)
	return nil
}

func (f *fakeProducer) Unregister() error {
	f.mu.Lock()
	f.onFrame = nil
	f.mu.Unlock()
	f.unregistered.Add(1)
	return nil
}

type fakeSurface struct {
	f       *fakeProducer
	latched uint64
}

func (s *fakeSurface) Size() (int, int) { return s.f.w, s.f.h }

func (s *fakeSurface) Latch() error {
	s.f.mu.Lock()
	s.latched = s.f.produced
	s.f.mu.Unlock()
	return nil
}

func (s *fakeSurface) ReadPixels(dst []byte) error {
	if s.f.block != nil {
		<-s.f.block
	}
	if s.f.readErr != nil {
		return s.f.readErr
	}
	for i := 0; i < len(dst); i += 4 {
		dst[i], dst[i+1], dst[i+2], dst[i+3] = byte(s.latched), byte(s.latched>>8), 0, 0xFF
	}
	return nil
}

func (s *fakeSurface) Close() error {
	s.f.closed.Add(1)
	return nil
}

func newTestPipeline(t *testing.T, f *fakeProducer) *Pipeline {
	t.Helper()
	p, err := NewPipeline(f, Options{JoinTimeout: time.Second}, discardLogger)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	t.Cleanup(func() { _ = p.Shutdown() })
	return p
}

func waitForState(t *testing.T, p *Pipeline, expected WorkerState, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if p.State() == expected {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for state %v (got %v)", expected, p.State())
}

func mustCapture(t *testing.T, p *Pipeline) Frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	f, err := p.Capture(ctx)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	return f
}

func TestPipelineStartsFullyInitialized(t *testing.T) {
	f := newFakeProducer()
	p := newTestPipeline(t, f)
	if f.registered.Load() != 1 {
		t.Fatalf("callback not registered before NewPipeline returned")
	}
	waitForState(t, p, StateAwaitingSignal, time.Second)
	if err := p.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if f.unregistered.Load() != 1 || f.closed.Load() != 1 {
		t.Fatalf("unregistered=%d closed=%d", f.unregistered.Load(), f.closed.Load())
	}
	if p.State() != StateStopped {
		t.Fatalf("state after shutdown %v", p.State())
	}
	if err := p.Shutdown(); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
}

func TestSerialCountsLatchedFrames(t *testing.T) {
	f := newFakeProducer()
	p := newTestPipeline(t, f)

	if fr := mustCapture(t, p); fr.Serial != 0 {
		t.Fatalf("serial before any frame = %d", fr.Serial)
	}
	f.emit()
	first := mustCapture(t, p)
	if first.Serial != 1 || latchedOf(first) != 1 {
		t.Fatalf("first frame serial=%d pixel=%08x", first.Serial, first.Image.Pix[0])
	}
	again := mustCapture(t, p)
	if again.Serial != first.Serial {
		t.Fatalf("no new frame but serial moved %d -> %d", first.Serial, again.Serial)
	}
	// three signals coalesce into one latch of the newest frame
	f.emit()
	f.emit()
	f.emit()
	next := mustCapture(t, p)
	if next.Serial != 2 || latchedOf(next) != 4 {
		t.Fatalf("after burst serial=%d pixel=%08x", next.Serial, next.Image.Pix[0])
	}
	if got := p.LatestFrame(); got.Serial != next.Serial || !got.Image.Equal(next.Image) {
		t.Fatalf("LatestFrame = %+v", got)
	}
	st := p.Stats()
	if st.Captures != 4 || st.Latches != 2 || st.Serial != 2 {
		t.Fatalf("stats %+v", st)
	}
}

func TestFrameHoldersOwnTheirImages(t *testing.T) {
	f := newFakeProducer()
	p := newTestPipeline(t, f)
	f.emit()
	fr := mustCapture(t, p)
	want := fr.Image.Pix[0]
	fr.Image.Pix[0] = 0xDEADBEEF
	latest := p.LatestFrame()
	if latest.Image.Pix[0] != want {
		t.Fatalf("caller's write leaked into LatestFrame: %08x", latest.Image.Pix[0])
	}
	latest.Image.Pix[0] = 0
	if again := p.LatestFrame(); again.Image.Pix[0] != want {
		t.Fatalf("LatestFrame copies share pixels: %08x", again.Image.Pix[0])
	}
}

func TestCaptureNeverSeesOlderFrame(t *testing.T) {
	f := newFakeProducer()
	p := newTestPipeline(t, f)
	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				f.emit()
				time.Sleep(100 * time.Microsecond)
			}
		}
	}()
	errs := make(chan error, 4)
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var last uint64
			for i := 0; i < 50; i++ {
				f.mu.Lock()
				before := f.produced
				f.mu.Unlock()
				fr, err := p.Capture(context.Background())
				if err != nil {
					errs <- err
					return
				}
				if fr.Serial < last || latchedOf(fr) < before {
					errs <- errors.New("stale frame")
					return
				}
				last = fr.Serial
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(stop)
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("capture: %v", err)
	}
}

func TestWaitFirstFrame(t *testing.T) {
	f := newFakeProducer()
	p := newTestPipeline(t, f)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.WaitFirstFrame(ctx)
	if !errors.Is(err, ErrInterrupted) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected interrupted deadline, got %v", err)
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		f.emit()
	}()
	for i := 0; i < 3; i++ {
		if err := p.WaitFirstFrame(context.Background()); err != nil {
			t.Fatalf("WaitFirstFrame #%d: %v", i, err)
		}
	}
	if st := p.Stats(); st.Captures != 0 {
		t.Fatalf("WaitFirstFrame read pixels: %+v", st)
	}
}

func TestReadFailureIsNotInterruption(t *testing.T) {
	f := newFakeProducer()
	f.readErr = errors.New("device lost")
	p := newTestPipeline(t, f)
	_, err := p.Capture(context.Background())
	if !errors.Is(err, ErrReadFailed) || errors.Is(err, ErrInterrupted) {
		t.Fatalf("expected read failure, got %v", err)
	}
	if p.Stats().Failures != 1 {
		t.Fatalf("failure not counted")
	}
}

func TestOpenFailureAbortsConstruction(t *testing.T) {
	f := newFakeProducer()
	f.openErr = errors.New("no display")
	if _, err := NewPipeline(f, DefaultOptions(), discardLogger); !errors.Is(err, ErrInit) {
		t.Fatalf("expected ErrInit, got %v", err)
	}
	if f.registered.Load() != 0 {
		t.Fatalf("registered despite open failure")
	}
}

func TestShutdownTimeoutIsReported(t *testing.T) {
	f := newFakeProducer()
	f.block = make(chan struct{})
	defer close(f.block)
	p, err := NewPipeline(f, Options{JoinTimeout: 30 * time.Millisecond}, discardLogger)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	captured := make(chan error, 1)
	go func() {
		_, err := p.Capture(context.Background())
		captured <- err
	}()
	waitForState(t, p, StateReading, time.Second)

	if err := p.Shutdown(); !errors.Is(err, ErrShutdownTimeout) {
		t.Fatalf("expected ErrShutdownTimeout, got %v", err)
	}
	select {
	case err := <-captured:
		if !errors.Is(err, ErrInterrupted) {
			t.Fatalf("in-flight capture: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("in-flight capture not interrupted")
	}
	if _, err := p.Capture(context.Background()); !errors.Is(err, ErrInterrupted) {
		t.Fatalf("capture after shutdown: %v", err)
	}
}

func TestCaptureHonoursContext(t *testing.T) {
	f := newFakeProducer()
	f.block = make(chan struct{})
	p := newTestPipeline(t, f)
	defer close(f.block)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for p.State() != StateReading {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()
	if _, err := p.Capture(ctx); !errors.Is(err, ErrInterrupted) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled interruption, got %v", err)
	}
}

func TestBufferPoolReuses(t *testing.T) {
	a := acquireBuffer(64)
	if len(*a) != 64 {
		t.Fatalf("len %d", len(*a))
	}
	recycleBuffer(a)
	b := acquireBuffer(16)
	if len(*b) != 16 {
		t.Fatalf("len %d", len(*b))
	}
}

func TestDesktopSurfaceCopiesLatchedGrab(t *testing.T) {
	grab := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for i := range grab.Pix {
		grab.Pix[i] = byte(i)
	}
	d := &DesktopProducer{rect: image.Rect(10, 10, 12, 12), interval: time.Millisecond,
		grab: func(image.Rectangle) (*image.RGBA, error) { return grab, nil }}
	s, err := d.OpenSurface()
	if err != nil {
		t.Fatalf("OpenSurface: %v", err)
	}
	dst := make([]byte, 2*2*4)
	if err := s.ReadPixels(dst); err == nil {
		t.Fatalf("read before latch should fail")
	}
	if err := s.Latch(); err != nil {
		t.Fatalf("Latch: %v", err)
	}
	if err := s.ReadPixels(dst); err != nil {
		t.Fatalf("ReadPixels: %v", err)
	}
	// second row starts at stride 12 in the grab
	if dst[8] != 12 || dst[7] != 7 {
		t.Fatalf("row copy wrong: %v", dst)
	}

	var ticks atomic.Int32
	if err := d.Register(func() { ticks.Add(1) }); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := d.Register(func() {}); err == nil {
		t.Fatalf("double register accepted")
	}
	time.Sleep(10 * time.Millisecond)
	if err := d.Unregister(); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	if ticks.Load() == 0 {
		t.Fatalf("no ticks delivered")
	}
}
