package pic

import (
	"fmt"
	"math/rand/v2"
)

// Crop returns a copy of the w×h window at (x, y).
func (p *Image) Crop(x, y, w, h int) (*Image, error) {
	m := Mask{X: x, Y: y, W: w, H: h}
	if !m.Within(p.Width, p.Height) {
		return nil, fmt.Errorf("pic: crop %s outside %d×%d", m, p.Width, p.Height)
	}
	out := New(w, h)
	out.CopyFrom(p, x, y)
	return out, nil
}

// CopyFrom fills p with the window of src starting at (fromX, fromY). The
// window has p's dimensions and must lie inside src.
func (p *Image) CopyFrom(src *Image, fromX, fromY int) {
	for row := 0; row < p.Height; row++ {
		s := (fromY+row)*src.Width + fromX
		copy(p.Pix[row*p.Width:(row+1)*p.Width], src.Pix[s:s+p.Width])
	}
}

// Highlight inverts RGB inside the mask, clipped to the image. Alpha becomes opaque.
func (p *Image) Highlight(m Mask) {
	x0, y0 := max(m.X, 0), max(m.Y, 0)
	x1, y1 := min(m.X+m.W, p.Width), min(m.Y+m.H, p.Height)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			i := y*p.Width + x
			p.Pix[i] = (^p.Pix[i] & 0xFFFFFF00) | Opaque
		}
	}
}

// RotateCCW90 returns the image rotated 90° counter-clockwise: the result is
// H×W and pixel (x, y) lands on (y, W-1-x).
func (p *Image) RotateCCW90() *Image {
	out := New(p.Height, p.Width)
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			out.Pix[(p.Width-1-x)*out.Width+y] = p.Pix[y*p.Width+x]
		}
	}
	return out
}

// Fill paints the mask (clipped) with c.
func (p *Image) Fill(m Mask, c uint32) {
	x0, y0 := max(m.X, 0), max(m.Y, 0)
	x1, y1 := min(m.X+m.W, p.Width), min(m.Y+m.H, p.Height)
	for y := y0; y < y1; y++ {
		row := p.Pix[y*p.Width : (y+1)*p.Width]
		for x := x0; x < x1; x++ {
			row[x] = c
		}
	}
}

// AddNoise perturbs every RGB channel by a uniform delta in
// [-maxDelta, maxDelta], clamped to a byte. Alpha and dimensions are kept.
func AddNoise(p *Image, maxDelta int, rng *rand.Rand) {
	if maxDelta <= 0 {
		return
	}
	span := 2*maxDelta + 1
	jitter := func(v uint8) uint8 {
		n := int(v) + rng.IntN(span) - maxDelta
		return uint8(min(max(n, 0), 255))
	}
	for i, c := range p.Pix {
		r, g, b, a := Unpack(c)
		p.Pix[i] = PackRGBA(jitter(r), jitter(g), jitter(b), a)
	}
}
