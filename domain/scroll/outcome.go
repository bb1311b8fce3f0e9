package scroll

import (
	"errors"
	"fmt"
)

var (
	ErrZeroOffset   = errors.New("scroll: zero offset")
	ErrNoOrigin     = errors.New("scroll: neither origin nor area given")
	ErrNoArea       = errors.New("scroll: verification needs an area")
	ErrUnsupported  = errors.New("scroll: unsupported unit and mode")
	ErrDragTooShort = errors.New("scroll: drag distance must be at least 100px")
	ErrWheelSplit   = errors.New("scroll: cannot split distance into wheel lines")
)

// Outcome classifies an observed scroll against the commanded one.
type Outcome int

const (
	AsExpected Outcome = iota
	Overshot
	Undershot
	Opposite
	Still
	Disparate
)

func (o Outcome) String() string {
	switch o {
	case AsExpected:
		return "AS_EXPECTED"
	case Overshot:
		return "OVERSHOT"
	case Undershot:
		return "UNDERSHOT"
	case Opposite:
		return "OPPOSITE"
	case Still:
		return "STILL"
	case Disparate:
		return "DISPARATE"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is one verification verdict. Expected is the signed pixel offset
// the command aimed for; Miss is unsigned.
type Result struct {
	Outcome  Outcome
	Motion   *Motion
	Miss     int
	Expected int
}

func (r Result) String() string {
	if r.Motion == nil {
		return fmt.Sprintf("%s expected=%d", r.Outcome, r.Expected)
	}
	return fmt.Sprintf("%s expected=%d observed=%s/%d miss=%d", r.Outcome, r.Expected, r.Motion.Direction, r.Motion.Abs, r.Miss)
}

// Classify compares a detected motion with the expected offset. A negative
// expected offset asks the surface to move up.
func Classify(expected int, m *Motion) (Result, error) {
	if expected == 0 {
		return Result{}, ErrZeroOffset
	}
	r := Result{Motion: m, Expected: expected}
	want := abs(expected)
	switch {
	case m == nil:
		r.Outcome = Disparate
	case m.Direction == NoScroll:
		r.Outcome = Still
	case (expected < 0 && m.Direction == SurfaceUp) || (expected > 0 && m.Direction == SurfaceDown):
		switch {
		case m.Abs == want:
			r.Outcome = AsExpected
		case m.Abs > want:
			r.Outcome, r.Miss = Overshot, m.Abs-want
		default:
			r.Outcome, r.Miss = Undershot, want-m.Abs
		}
	default:
		r.Outcome = Opposite
	}
	return r, nil
}
