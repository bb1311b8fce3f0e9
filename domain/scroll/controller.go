package scroll

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/soocke/pixel-agent-go/domain/capture"
	"github.com/soocke/pixel-agent-go/domain/pic"
)

// FrameSource hands out the current frame. *capture.Pipeline implements it.
type FrameSource interface {
	Capture(ctx context.Context) (capture.Frame, error)
}

// Unit of a scroll offset.
type Unit int

const (
	Pixels Unit = iota
	Lines
)

func (u Unit) String() string {
	if u == Lines {
		return "lines"
	}
	return "pixels"
}

// Mode selects the physical gesture.
type Mode int

const (
	Touch Mode = iota
	Wheel
)

func (m Mode) String() string {
	if m == Wheel {
		return "wheel"
	}
	return "touch"
}

// Request describes one verified scroll. A positive Offset reads further
// (the surface moves up). Origin defaults to the centre of Area.
type Request struct {
	Origin *image.Point
	Offset float64
	Unit   Unit
	Mode   Mode
	Area   *pic.Mask
}

// Options tune verification.
type Options struct {
	Deadline     time.Duration // default 2500ms
	PollInterval time.Duration // sleep between attempts, 0 polls back to back
	MaxAttempts  int           // 0 is unbounded
	Detect       DetectOptions
}

func DefaultOptions() Options {
	return Options{Deadline: 2500 * time.Millisecond}
}

// Controller issues scroll commands and checks their effect on screen.
// Not safe for concurrent use.
type Controller struct {
	frames   FrameSource
	gestures *Gestures
	dumper   *Dumper
	opts     Options
	log      *slog.Logger

	now   func() time.Time
	sleep func(time.Duration)
}

// NewController wires a controller. dumper may be nil.
func NewController(frames FrameSource, gestures *Gestures, dumper *Dumper, opts Options, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Deadline <= 0 {
		opts.Deadline = DefaultOptions().Deadline
	}
	return &Controller{
		frames:   frames,
		gestures: gestures,
		dumper:   dumper,
		opts:     opts,
		log:      logger,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

func checkCommand(offset float64, u Unit, m Mode) error {
	if offset == 0 {
		return ErrZeroOffset
	}
	if u == Lines && m == Touch {
		return fmt.Errorf("%w: %s/%s", ErrUnsupported, u, m)
	}
	return nil
}

// issue sends the gesture and returns the expected signed pixel offset.
func (c *Controller) issue(origin image.Point, offset float64, u Unit, m Mode) (int, error) {
	switch {
	case m == Touch && u == Pixels:
		return int(-offset), c.gestures.Drag(origin.X, origin.Y, int(-offset))
	case m == Wheel && u == Pixels:
		return int(-offset), c.gestures.WheelPixels(origin.X, origin.Y, int(-offset))
	case m == Wheel && u == Lines:
		return c.gestures.LinesToPixels(-offset), c.gestures.WheelLines(origin.X, origin.Y, float32(-offset))
	}
	return 0, fmt.Errorf("%w: %s/%s", ErrUnsupported, u, m)
}

// ScrollBlind issues the command without looking at the screen.
func (c *Controller) ScrollBlind(ctx context.Context, origin image.Point, offset float64, u Unit, m Mode) error {
	if err := checkCommand(offset, u, m); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.issue(origin, offset, u, m)
	return err
}

// Scroll issues the command and polls frames until the observed motion
// matches or the deadline passes. A mismatch is reported in the Result, not
// as an error; errors are reserved for bad requests, input failures and
// capture failures.
func (c *Controller) Scroll(ctx context.Context, req Request) (Result, error) {
	if err := checkCommand(req.Offset, req.Unit, req.Mode); err != nil {
		return Result{}, err
	}
	if req.Origin == nil && req.Area == nil {
		return Result{}, ErrNoOrigin
	}
	if req.Area == nil {
		return Result{}, ErrNoArea
	}
	origin := req.Area.Center()
	if req.Origin != nil {
		origin = *req.Origin
	}

	before, err := c.frames.Capture(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("scroll: before frame: %w", err)
	}
	expected, err := c.issue(origin, req.Offset, req.Unit, req.Mode)
	if err != nil {
		return Result{}, fmt.Errorf("scroll: %s %s: %w", req.Mode, req.Unit, err)
	}
	if expected == 0 {
		return Result{}, fmt.Errorf("%w: %v %s is below one pixel", ErrZeroOffset, req.Offset, req.Unit)
	}

	var (
		res      Result
		after    capture.Frame
		attempts int
		start    = c.now()
	)
	for {
		after, err = c.frames.Capture(ctx)
		if err != nil {
			return res, fmt.Errorf("scroll: after frame: %w", err)
		}
		attempts++
		res = c.compare(before, after, *req.Area, expected)
		if res.Outcome == AsExpected {
			break
		}
		if c.now().Sub(start) > c.opts.Deadline {
			break
		}
		if c.opts.MaxAttempts > 0 && attempts >= c.opts.MaxAttempts {
			break
		}
		if c.opts.PollInterval > 0 {
			c.sleep(c.opts.PollInterval)
		}
	}

	if res.Outcome == AsExpected {
		c.log.Debug("scroll.result", "result", res.String(), "attempts", attempts)
		return res, nil
	}
	c.log.Error("scroll.result",
		"result", res.String(),
		"area", req.Area.String(),
		"attempts", attempts,
		"before_serial", before.Serial,
		"after_serial", after.Serial,
	)
	if c.dumper != nil {
		if err := c.dumper.Dump(before, after, *req.Area); err != nil {
			c.log.Error("scroll.dump_failed", "error", err)
		}
	}
	return res, nil
}

func (c *Controller) compare(before, after capture.Frame, area pic.Mask, expected int) Result {
	if after.Serial == before.Serial {
		r, _ := Classify(expected, &Motion{Direction: NoScroll})
		return r
	}
	m, falsePos := DetectMotion(before.Image, after.Image, area, c.opts.Detect)
	if falsePos > 0 {
		c.log.Debug("scroll.prefilter", "false_positives", falsePos)
	}
	r, _ := Classify(expected, m)
	return r
}
