package color

import (
	"errors"
	"fmt"

	"github.com/soocke/pixel-agent-go/domain/pic"
)

// ErrBitSplit reports a channel bit split that does not total 8 bits.
var ErrBitSplit = errors.New("color: bit split must sum to 8")

// Bits describes how three channels share one byte: channel 1 keeps its top
// B1 bits in the high end of the byte, channel 2 its top B2 bits next, and
// channel 3 its top B3 bits at the low end.
type Bits struct {
	B1, B2, B3 uint8
	// SetNextBit makes Inflate set the bit below each kept range, placing
	// the reconstruction mid-bucket instead of at its floor.
	SetNextBit bool
}

// DefaultBits favors hue and value over saturation.
var DefaultBits = Bits{B1: 3, B2: 2, B3: 3, SetNextBit: true}

// NewBits validates a split.
func NewBits(b1, b2, b3 uint8, setNextBit bool) (Bits, error) {
	b := Bits{B1: b1, B2: b2, B3: b3, SetNextBit: setNextBit}
	if err := b.Validate(); err != nil {
		return Bits{}, err
	}
	return b, nil
}

// Validate checks the split totals 8 bits.
func (b Bits) Validate() error {
	if int(b.B1)+int(b.B2)+int(b.B3) != 8 {
		return fmt.Errorf("%w: %d+%d+%d", ErrBitSplit, b.B1, b.B2, b.B3)
	}
	return nil
}

func lowMask(n uint8) uint { return (1 << n) - 1 }

// Condense packs three channels into one byte. The split must be valid.
func Condense(c1, c2, c3 uint8, b Bits) byte {
	v1 := uint(c1) & (lowMask(b.B1) << (8 - b.B1))
	v2 := (uint(c2) >> b.B1) & (lowMask(b.B2) << (8 - b.B1 - b.B2))
	v3 := (uint(c3) >> (b.B1 + b.B2)) & lowMask(b.B3)
	return byte(v1 | v2 | v3)
}

// Inflate expands a packed byte back into three channels.
func Inflate(v byte, b Bits) (c1, c2, c3 uint8) {
	u := uint(v)
	r1 := u & (lowMask(b.B1) << (8 - b.B1))
	r2 := (u & (lowMask(b.B2) << (8 - b.B1 - b.B2))) << b.B1
	r3 := (u & lowMask(b.B3)) << (b.B1 + b.B2)
	if b.SetNextBit {
		r1 |= nextBit(b.B1)
		r2 |= nextBit(b.B2)
		r3 |= nextBit(b.B3)
	}
	return uint8(r1), uint8(r2), uint8(r3)
}

func nextBit(kept uint8) uint {
	if kept >= 8 {
		return 0
	}
	return 1 << (7 - kept)
}

// CondenseImage packs the HSV of every pixel into a quantized image.
func CondenseImage(img *pic.Image, b Bits) (*pic.Pic8, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	out := pic.NewPic8(img.Width, img.Height)
	for i, c := range img.Pix {
		r, g, bl, _ := pic.Unpack(c)
		h, s, v := rgbToHSVFast(r, g, bl)
		out.Pix[i] = Condense(h, s, v, b)
	}
	return out, nil
}

// InflateImage reverses CondenseImage approximately.
func InflateImage(p *pic.Pic8, b Bits) (*pic.Image, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	out := pic.New(p.Width, p.Height)
	for i, v := range p.Pix {
		h, s, val := Inflate(v, b)
		r, g, bl := HSVToRGB(h, s, val)
		out.Pix[i] = pic.Pack(r, g, bl)
	}
	return out, nil
}
