package pic

import (
	"fmt"
	"image"
)

// Mask is a rectangular window of a larger image.
type Mask struct {
	X, Y int
	W, H int
}

// MaskOf converts a stdlib rectangle.
func MaskOf(r image.Rectangle) Mask {
	return Mask{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

func (m Mask) Rect() image.Rectangle { return image.Rect(m.X, m.Y, m.X+m.W, m.Y+m.H) }
func (m Mask) Empty() bool           { return m.W <= 0 || m.H <= 0 }

// Center returns the integer center point.
func (m Mask) Center() image.Point {
	return image.Pt(m.X+m.W/2, m.Y+m.H/2)
}

// Within reports whether the mask lies inside a w×h image.
func (m Mask) Within(w, h int) bool {
	return m.X >= 0 && m.Y >= 0 && m.W >= 0 && m.H >= 0 && m.X+m.W <= w && m.Y+m.H <= h
}

// Contains reports whether (x, y) lies inside the mask.
func (m Mask) Contains(x, y int) bool {
	return x >= m.X && y >= m.Y && x < m.X+m.W && y < m.Y+m.H
}

// RotateCCW90 maps the mask into the coordinates of an image of width
// picWidth rotated 90° counter-clockwise (see Image.RotateCCW90).
func (m Mask) RotateCCW90(picWidth int) Mask {
	return Mask{X: m.Y, Y: picWidth - m.X - m.W, W: m.H, H: m.W}
}

func (m Mask) String() string {
	return fmt.Sprintf("%d,%d %d×%d", m.X, m.Y, m.W, m.H)
}
