package split

import (
	"fmt"
	"slices"
)

// Segment1D is a run along the scan axis.
type Segment1D struct {
	Start int
	Len   int
}

// Segment2D is a rectangle: X/W across columns, Y/H across rows.
type Segment2D struct {
	X, W int
	Y, H int
}

func (s Segment1D) String() string { return fmt.Sprintf("(%d,%d)", s.Start, s.Len) }
func (s Segment2D) String() string { return fmt.Sprintf("(%d,%d,%d,%d)", s.X, s.W, s.Y, s.H) }

// Set1D is an unordered set of runs.
type Set1D map[Segment1D]struct{}

// Set2D is an unordered set of rectangles.
type Set2D map[Segment2D]struct{}

// NewSet1D builds a set from runs.
func NewSet1D(segs ...Segment1D) Set1D {
	s := make(Set1D, len(segs))
	for _, seg := range segs {
		s[seg] = struct{}{}
	}
	return s
}

// NewSet2D builds a set from rectangles.
func NewSet2D(segs ...Segment2D) Set2D {
	s := make(Set2D, len(segs))
	for _, seg := range segs {
		s[seg] = struct{}{}
	}
	return s
}

// Sorted returns the runs ordered by start.
func (s Set1D) Sorted() []Segment1D {
	out := make([]Segment1D, 0, len(s))
	for seg := range s {
		out = append(out, seg)
	}
	slices.SortFunc(out, func(a, b Segment1D) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return a.Len - b.Len
	})
	return out
}

// Sorted returns the rectangles ordered top to bottom, then left to right.
func (s Set2D) Sorted() []Segment2D {
	out := make([]Segment2D, 0, len(s))
	for seg := range s {
		out = append(out, seg)
	}
	slices.SortFunc(out, func(a, b Segment2D) int {
		switch {
		case a.Y != b.Y:
			return a.Y - b.Y
		case a.X != b.X:
			return a.X - b.X
		case a.H != b.H:
			return a.H - b.H
		default:
			return a.W - b.W
		}
	})
	return out
}

// Equal reports identical membership.
func (s Set1D) Equal(o Set1D) bool {
	if len(s) != len(o) {
		return false
	}
	for seg := range s {
		if _, ok := o[seg]; !ok {
			return false
		}
	}
	return true
}

// Equal reports identical membership.
func (s Set2D) Equal(o Set2D) bool {
	if len(s) != len(o) {
		return false
	}
	for seg := range s {
		if _, ok := o[seg]; !ok {
			return false
		}
	}
	return true
}
