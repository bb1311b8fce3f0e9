package capture

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/vova616/screenshot"
)

// DesktopProducer captures a rectangle of the desktop. It has no native
// frame notification, so a ticker stands in for the compositor's
// frame-available callback and every Latch grabs the screen. On windows the
// surface blits through GDI into a persistent DIB; elsewhere it grabs
// through the screenshot package.
type DesktopProducer struct {
	rect     image.Rectangle
	interval time.Duration
	native   bool
	grab     func(image.Rectangle) (*image.RGBA, error)

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewDesktopProducer captures rect (the whole primary screen when empty),
// signalling a new frame every interval.
func NewDesktopProducer(rect image.Rectangle, interval time.Duration) *DesktopProducer {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &DesktopProducer{rect: rect, interval: interval, native: nativeCapture, grab: screenshot.CaptureRect}
}

func (d *DesktopProducer) OpenSurface() (Surface, error) {
	rect := d.rect
	if rect.Empty() {
		r, err := screenshot.ScreenRect()
		if err != nil {
			return nil, fmt.Errorf("screen rect: %w", err)
		}
		rect = r
	}
	if d.native {
		return openGDISurface(rect)
	}
	return &desktopSurface{rect: rect, grab: d.grab}, nil
}

func (d *DesktopProducer) Register(onFrame func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return errors.New("desktop producer: already registered")
	}
	d.stop, d.done = make(chan struct{}), make(chan struct{})
	go func(stop, done chan struct{}) {
		defer close(done)
		t := time.NewTicker(d.interval)
		defer t.Stop()
		onFrame()
		for {
			select {
			case <-t.C:
				onFrame()
			case <-stop:
				return
			}
		}
	}(d.stop, d.done)
	return nil
}

func (d *DesktopProducer) Unregister() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop == nil {
		return nil
	}
	close(d.stop)
	<-d.done
	d.stop, d.done = nil, nil
	return nil
}

type desktopSurface struct {
	rect    image.Rectangle
	grab    func(image.Rectangle) (*image.RGBA, error)
	latched *image.RGBA
}

func (s *desktopSurface) Size() (int, int) { return s.rect.Dx(), s.rect.Dy() }

func (s *desktopSurface) Latch() error {
	img, err := s.grab(s.rect)
	if err != nil {
		return err
	}
	s.latched = img
	return nil
}

func (s *desktopSurface) ReadPixels(dst []byte) error {
	if s.latched == nil {
		return errors.New("desktop surface: nothing latched")
	}
	w, h := s.Size()
	b := s.latched.Bounds()
	if b.Dx() < w || b.Dy() < h {
		return fmt.Errorf("desktop surface: grabbed %v, want %d×%d", b, w, h)
	}
	for y := 0; y < h; y++ {
		src := s.latched.Pix[y*s.latched.Stride : y*s.latched.Stride+w*4]
		copy(dst[y*w*4:(y+1)*w*4], src)
	}
	return nil
}

func (s *desktopSurface) Close() error {
	s.latched = nil
	return nil
}
