package color

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/soocke/pixel-agent-go/domain/pic"
)

func allSplits() []Bits {
	var out []Bits
	for b1 := uint8(0); b1 <= 8; b1++ {
		for b2 := uint8(0); b1+b2 <= 8; b2++ {
			out = append(out, Bits{B1: b1, B2: b2, B3: 8 - b1 - b2})
		}
	}
	return out
}

func highBits(v uint8, kept uint8) uint8 {
	return uint8(uint(v) & (lowMask(kept) << (8 - kept)))
}

func TestInflateVectors(t *testing.T) {
	cases := []struct {
		v          byte
		bits       Bits
		c1, c2, c3 uint8
	}{
		{0xFF, Bits{B1: 3, B2: 2, B3: 3}, 0xE0, 0xC0, 0xE0},
		{0xFF, Bits{B1: 2, B2: 4, B3: 2}, 0xC0, 0xF0, 0xC0},
		{0x00, Bits{B1: 3, B2: 2, B3: 3, SetNextBit: true}, 0x10, 0x20, 0x10},
		{0xFF, Bits{B1: 3, B2: 2, B3: 3, SetNextBit: true}, 0xF0, 0xE0, 0xF0},
		{0xFF, Bits{B1: 2, B2: 4, B3: 2, SetNextBit: true}, 0xE0, 0xF8, 0xE0},
	}
	for _, c := range cases {
		c1, c2, c3 := Inflate(c.v, c.bits)
		if c1 != c.c1 || c2 != c.c2 || c3 != c.c3 {
			t.Errorf("Inflate(%#x, %+v) = %#x %#x %#x, want %#x %#x %#x", c.v, c.bits, c1, c2, c3, c.c1, c.c2, c.c3)
		}
	}
}

func TestCondenseVectors(t *testing.T) {
	b := Bits{B1: 3, B2: 2, B3: 3}
	if got := Condense(0b10100000, 0b01000000, 0b01000000, b); got != 0b10101010 {
		t.Fatalf("got %08b", got)
	}
	if got := Condense(0b01000000, 0b10000000, 0b10100000, b); got != 0b01010101 {
		t.Fatalf("got %08b", got)
	}
}

func TestCondenseInvertsInflate(t *testing.T) {
	for _, b := range allSplits() {
		for v := 0; v < 256; v++ {
			c1, c2, c3 := Inflate(byte(v), b)
			if got := Condense(c1, c2, c3, b); got != byte(v) {
				t.Fatalf("split %+v: condense(inflate(%#x)) = %#x", b, v, got)
			}
		}
	}
}

func TestInflateRestoresKeptBits(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for _, b := range allSplits() {
		for i := 0; i < 2000; i++ {
			x1, x2, x3 := uint8(rng.IntN(256)), uint8(rng.IntN(256)), uint8(rng.IntN(256))
			c1, c2, c3 := Inflate(Condense(x1, x2, x3, b), b)
			if c1 != highBits(x1, b.B1) || c2 != highBits(x2, b.B2) || c3 != highBits(x3, b.B3) {
				t.Fatalf("split %+v: (%#x,%#x,%#x) -> (%#x,%#x,%#x)", b, x1, x2, x3, c1, c2, c3)
			}
		}
	}
}

func TestBitSplitMustSumToEight(t *testing.T) {
	if _, err := NewBits(3, 3, 3, false); !errors.Is(err, ErrBitSplit) {
		t.Fatalf("expected ErrBitSplit, got %v", err)
	}
	if _, err := NewBits(3, 2, 3, true); err != nil {
		t.Fatalf("valid split rejected: %v", err)
	}
	if _, err := CondenseImage(pic.New(1, 1), Bits{B1: 1, B2: 1, B3: 1}); !errors.Is(err, ErrBitSplit) {
		t.Fatalf("CondenseImage accepted a bad split")
	}
}

func TestCondenseImageRoundTripIsClose(t *testing.T) {
	img := pic.New(2, 1)
	img.Pix[0] = pic.Pack(0, 0, 0)
	img.Pix[1] = pic.Pack(255, 255, 255)
	p8, err := CondenseImage(img, DefaultBits)
	if err != nil {
		t.Fatalf("condense: %v", err)
	}
	back, err := InflateImage(p8, Bits{B1: 3, B2: 2, B3: 3})
	if err != nil {
		t.Fatalf("inflate: %v", err)
	}
	if back.Pix[0] != pic.Pack(0, 0, 0) {
		t.Fatalf("black inflated to %08x", back.Pix[0])
	}
	// white keeps only the top three value bits
	if back.Pix[1] != pic.Pack(0xE0, 0xE0, 0xE0) {
		t.Fatalf("white inflated to %08x", back.Pix[1])
	}
}
