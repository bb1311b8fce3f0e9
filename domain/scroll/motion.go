// Package scroll issues scroll gestures and verifies their effect by
// comparing frames captured before and after.
package scroll

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/soocke/pixel-agent-go/domain/pic"
)

// Direction is the observed movement of the scrolled surface.
type Direction int

const (
	NoScroll Direction = iota
	// SurfaceUp: content moved towards the top, i.e. the view scrolled down.
	SurfaceUp
	// SurfaceDown: content moved towards the bottom.
	SurfaceDown
)

func (d Direction) String() string {
	switch d {
	case SurfaceUp:
		return "surface_up"
	case SurfaceDown:
		return "surface_down"
	default:
		return "no_scroll"
	}
}

// Motion is a detected vertical shift of Abs pixels.
type Motion struct {
	Direction Direction
	Abs       int
}

// DetectOptions bound the search.
type DetectOptions struct {
	Tolerance  int // per-channel
	MaxShift   int // 0 means as far as MinOverlap allows
	MinOverlap int // rows that must agree, default 8
}

// rowSignatures sums the gray values of every window row.
func rowSignatures(img *pic.Image, w pic.Mask) []float64 {
	out := make([]float64, w.H)
	for y := 0; y < w.H; y++ {
		row := img.Pix[(w.Y+y)*img.Width+w.X : (w.Y+y)*img.Width+w.X+w.W]
		sum := 0
		for _, c := range row {
			sum += (int(c>>24) + int(c>>16&0xFF) + int(c>>8&0xFF)) / 3
		}
		out[y] = float64(sum)
	}
	return out
}

func rowsMatch(prev, next *pic.Image, w pic.Mask, prevY, nextY, tol int) bool {
	a := prev.Pix[(w.Y+prevY)*prev.Width+w.X : (w.Y+prevY)*prev.Width+w.X+w.W]
	b := next.Pix[(w.Y+nextY)*next.Width+w.X : (w.Y+nextY)*next.Width+w.X+w.W]
	for i, c := range a {
		p := b[i]
		for shift := 24; shift >= 8; shift -= 8 {
			d := int(c>>shift&0xFF) - int(p>>shift&0xFF)
			if d > tol || -d > tol {
				return false
			}
		}
	}
	return true
}

// DetectMotion looks for the vertical shift s such that, inside window,
// next row y matches prev row y+s. Shift 0 is tried first and reports
// NoScroll; then 1, -1, 2, -2 and so on. A positive shift means the surface
// moved up. Candidates are prefiltered by comparing row gray sums under the
// L∞ norm and confirmed row by row. The second result counts candidates that
// passed the prefilter but failed confirmation. nil means the frames do not
// align at any shift.
func DetectMotion(prev, next *pic.Image, window pic.Mask, o DetectOptions) (*Motion, int) {
	if prev.Width != next.Width || prev.Height != next.Height || window.Empty() || !window.Within(prev.Width, prev.Height) {
		return nil, 0
	}
	if o.MinOverlap <= 0 {
		o.MinOverlap = 8
	}
	o.MinOverlap = min(o.MinOverlap, window.H)
	maxShift := window.H - o.MinOverlap
	if o.MaxShift > 0 {
		maxShift = min(maxShift, o.MaxShift)
	}
	tol := max(o.Tolerance, 0)
	slack := float64(tol*window.W + window.W - 1)

	sp, sn := rowSignatures(prev, window), rowSignatures(next, window)
	falsePos := 0
	try := func(s int) bool {
		n := window.H - abs(s)
		var a, b []float64
		if s >= 0 {
			a, b = sp[s:s+n], sn[:n]
		} else {
			a, b = sp[:n], sn[-s:-s+n]
		}
		if floats.Distance(a, b, math.Inf(1)) > slack {
			return false
		}
		for y := 0; y < n; y++ {
			prevY, nextY := y+s, y
			if s < 0 {
				prevY, nextY = y, y-s
			}
			if !rowsMatch(prev, next, window, prevY, nextY, tol) {
				falsePos++
				return false
			}
		}
		return true
	}

	if try(0) {
		return &Motion{Direction: NoScroll}, falsePos
	}
	for s := 1; s <= maxShift; s++ {
		if try(s) {
			return &Motion{Direction: SurfaceUp, Abs: s}, falsePos
		}
		if try(-s) {
			return &Motion{Direction: SurfaceDown, Abs: s}, falsePos
		}
	}
	return nil, falsePos
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
