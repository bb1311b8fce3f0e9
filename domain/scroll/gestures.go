package scroll

import (
	"fmt"
	"math"
	"time"
)

// Input injects raw input events. It reports only whether injection worked,
// never the on-screen effect.
type Input interface {
	Press(x, y int) error
	Move(x, y int) error
	Release(x, y int) error
	Wheel(x, y int, lines float32) error
	Key(code int, down bool) error
}

// lineFactor relates wheel lines to pixels: px = lines * density / lineFactor.
const lineFactor = 2.5

const (
	dragStep     = 20
	dragPad      = 16
	dragMinDist  = 100
	dragMinSteps = 17
)

// Gestures builds scroll and key gestures from Input primitives.
type Gestures struct {
	in      Input
	density float64
	sleep   func(time.Duration)
}

// NewGestures wraps in for a display of the given density (dpi).
func NewGestures(in Input, density float64) *Gestures {
	return &Gestures{in: in, density: density, sleep: time.Sleep}
}

// Tap presses and releases at (x, y).
func (g *Gestures) Tap(x, y int, hold time.Duration) error {
	if err := g.in.Press(x, y); err != nil {
		return err
	}
	g.sleep(hold)
	return g.in.Release(x, y)
}

// Drag performs a vertical touch drag from (x, y) by dy pixels. The path is
// padded by 16px to absorb touch slop and walked in at least 17 steps.
func (g *Gestures) Drag(x, y, dy int) error {
	if dy > 0 {
		dy += dragPad
	} else if dy < 0 {
		dy -= dragPad
	}
	dist := abs(dy)
	if dist < dragMinDist {
		return fmt.Errorf("%w: %d", ErrDragTooShort, dist)
	}
	steps := max(dist/dragStep, dragMinSteps)
	step := dy / steps
	if err := g.in.Press(x, y); err != nil {
		return err
	}
	for i := 1; i <= steps; i++ {
		if err := g.in.Move(x, y+step*i); err != nil {
			return err
		}
		g.sleep(5 * time.Millisecond)
	}
	g.sleep(70 * time.Millisecond)
	if err := g.in.Move(x, y+dy); err != nil {
		return err
	}
	return g.in.Release(x, y+dy)
}

// WheelLines scrolls by a (possibly fractional) number of lines.
func (g *Gestures) WheelLines(x, y int, lines float32) error {
	return g.in.Wheel(x, y, lines)
}

// LinesToPixels converts wheel lines to the pixel distance they scroll.
func (g *Gestures) LinesToPixels(lines float64) int {
	return int(lines * g.density / lineFactor)
}

func (g *Gestures) pxToLines(px int) float64 {
	return float64(float32(float64(px) * lineFactor / g.density))
}

// WheelPixels scrolls exactly px pixels. Line amounts are single precision,
// so one wheel event may land a pixel short; the distance is then split into
// two events whose truncated pixel conversions add up to px.
func (g *Gestures) WheelPixels(x, y, px int) error {
	total := abs(px)
	a, b := total, 0
	var la, lb float64
	for {
		la, lb = g.pxToLines(a), g.pxToLines(b)
		if g.LinesToPixels(la)+g.LinesToPixels(lb) == total {
			break
		}
		if a == 0 {
			return fmt.Errorf("%w: %dpx at density %v", ErrWheelSplit, px, g.density)
		}
		a--
		b++
	}
	sign := math.Copysign(1, float64(px))
	if err := g.in.Wheel(x, y, float32(sign*la)); err != nil {
		return err
	}
	if lb != 0 {
		return g.in.Wheel(x, y, float32(sign*lb))
	}
	return nil
}

// PressKey holds key code for hold.
func (g *Gestures) PressKey(code int, hold time.Duration) error {
	if err := g.in.Key(code, true); err != nil {
		return err
	}
	g.sleep(hold)
	return g.in.Key(code, false)
}
