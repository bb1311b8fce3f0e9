// Package split segments an image region into foreground runs separated by
// background gaps along one axis, and composes two such passes into
// rectangles.
package split

import (
	"errors"
	"fmt"

	"github.com/soocke/pixel-agent-go/domain/pic"
)

var ErrInvalidOptions = errors.New("split: invalid options")

// Axis selects the scan direction. Vertical walks rows top to bottom, each
// row spanning the mask width; Horizontal walks columns.
type Axis int

const (
	Vertical Axis = iota
	Horizontal
)

func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Orthogonal returns the other axis.
func (a Axis) Orthogonal() Axis {
	if a == Horizontal {
		return Vertical
	}
	return Horizontal
}

// EdgeFlags demand a gap at the scan boundaries.
type EdgeFlags uint8

const (
	// EdgeLead drops a run touching the scan start without a gap before it.
	EdgeLead EdgeFlags = 1 << iota
	// EdgeTrail drops a run reaching the scan end without a gap after it.
	EdgeTrail
)

// Options configure one split pass.
type Options struct {
	Mask         *pic.Mask // nil scans the whole image
	Background   uint32    // 0xRRGGBBAA, alpha ignored
	Tolerance    int       // per-channel absolute difference
	GapThickness int       // background lines that separate runs, >= 1
	Edge         EdgeFlags
	Axis         Axis
	MinLen       int
	MaxLen       int // 0 means unbounded
}

func (o Options) window(img *pic.Image) (pic.Mask, error) {
	m := img.Bounds()
	if o.Mask != nil {
		m = *o.Mask
	}
	if !m.Within(img.Width, img.Height) {
		return m, fmt.Errorf("%w: mask %s outside %d×%d", ErrInvalidOptions, m, img.Width, img.Height)
	}
	if o.GapThickness < 1 {
		return m, fmt.Errorf("%w: gap thickness %d", ErrInvalidOptions, o.GapThickness)
	}
	if o.MaxLen != 0 && o.MaxLen < o.MinLen {
		return m, fmt.Errorf("%w: length bounds [%d,%d]", ErrInvalidOptions, o.MinLen, o.MaxLen)
	}
	return m, nil
}

type runState int

const (
	stateStart runState = iota
	stateReading
	stateValidGap
	stateStop
)

type lineKind int

const (
	lineBG lineKind = iota
	lineFG
	lineEnd
)

// runTracker is the per-pass state machine fed one line at a time.
type runTracker struct {
	opts   Options
	state  runState
	start  int // -1 while no run is open
	gapCnt int
	out    Set1D
}

func (r *runTracker) emit(start, n int) {
	if n < r.opts.MinLen || (r.opts.MaxLen != 0 && n > r.opts.MaxLen) {
		return
	}
	r.out[Segment1D{Start: start, Len: n}] = struct{}{}
}

func (r *runTracker) handle(kind lineKind, idx int) {
	switch kind {
	case lineEnd:
		if r.opts.Edge&EdgeTrail == 0 && r.state == stateReading && r.start != -1 {
			r.emit(r.start, idx-r.start-r.gapCnt)
		}
		r.state = stateStop
	case lineBG:
		r.gapCnt++
		if r.gapCnt == r.opts.GapThickness {
			if r.start != -1 {
				r.emit(r.start, idx-r.start-r.gapCnt+1)
				r.start = -1
			}
			r.state = stateValidGap
		}
	case lineFG:
		r.gapCnt = 0
		switch {
		case r.state == stateValidGap:
			r.start = idx
		case r.state == stateStart && r.opts.Edge&EdgeLead == 0:
			r.start = idx
		}
		r.state = stateReading
	}
}

func within(c, bg uint32, tol int) bool {
	for shift := 24; shift >= 8; shift -= 8 {
		d := int(c>>shift&0xFF) - int(bg>>shift&0xFF)
		if d > tol || -d > tol {
			return false
		}
	}
	return true
}

// Split returns the foreground runs of img along o.Axis inside the mask.
// Run starts are absolute image coordinates.
func Split(img *pic.Image, o Options) (Set1D, error) {
	m, err := o.window(img)
	if err != nil {
		return nil, err
	}
	r := &runTracker{opts: o, start: -1, out: Set1D{}}
	from, to := m.Y, m.Y+m.H
	if o.Axis == Horizontal {
		from, to = m.X, m.X+m.W
	}
	for idx := from; idx < to; idx++ {
		kind := lineBG
		if o.Axis == Vertical {
			row := img.Pix[idx*img.Width+m.X : idx*img.Width+m.X+m.W]
			for _, c := range row {
				if !within(c, o.Background, o.Tolerance) {
					kind = lineFG
					break
				}
			}
		} else {
			for y := m.Y; y < m.Y+m.H; y++ {
				if !within(img.Pix[y*img.Width+idx], o.Background, o.Tolerance) {
					kind = lineFG
					break
				}
			}
		}
		r.handle(kind, idx)
	}
	r.handle(lineEnd, to)
	return r.out, nil
}

// SplitAs2D maps every run to a rectangle spanning the mask across the
// other axis.
func SplitAs2D(img *pic.Image, o Options) (Set2D, error) {
	runs, err := Split(img, o)
	if err != nil {
		return nil, err
	}
	m, _ := o.window(img)
	out := make(Set2D, len(runs))
	for s := range runs {
		if o.Axis == Vertical {
			out[Segment2D{X: m.X, W: m.W, Y: s.Start, H: s.Len}] = struct{}{}
		} else {
			out[Segment2D{X: s.Start, W: s.Len, Y: m.Y, H: m.H}] = struct{}{}
		}
	}
	return out, nil
}

// DoubleSplit splits along first.Axis, then re-splits every resulting
// rectangle along the orthogonal axis using second's gap and length
// settings, and returns the union. second.Mask and second.Axis are ignored.
func DoubleSplit(img *pic.Image, first, second Options) (Set2D, error) {
	rects, err := SplitAs2D(img, first)
	if err != nil {
		return nil, err
	}
	out := Set2D{}
	for rect := range rects {
		o := second
		o.Axis = first.Axis.Orthogonal()
		o.Mask = &pic.Mask{X: rect.X, Y: rect.Y, W: rect.W, H: rect.H}
		inner, err := SplitAs2D(img, o)
		if err != nil {
			return nil, err
		}
		for seg := range inner {
			out[seg] = struct{}{}
		}
	}
	return out, nil
}
