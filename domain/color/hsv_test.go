package color

import (
	"testing"

	"github.com/soocke/pixel-agent-go/domain/pic"
)

var rgbToHSV255 = []struct {
	r, g, b uint8
	h, s, v uint8
}{
	{0, 0, 0, 0, 0, 0},
	{255, 255, 255, 0, 0, 255},
	{127, 99, 99, 0, 56, 127},
	{50, 200, 50, 85, 191, 200},
	{20, 20, 50, 170, 153, 50},
	{54, 179, 64, 88, 178, 179},
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestRGBToHSVTable(t *testing.T) {
	for _, c := range rgbToHSV255 {
		h, s, v := RGBToHSV(c.r, c.g, c.b)
		if h != c.h || s != c.s || v != c.v {
			t.Errorf("RGBToHSV(%d,%d,%d) = (%d,%d,%d), want (%d,%d,%d)", c.r, c.g, c.b, h, s, v, c.h, c.s, c.v)
		}
		h, s, v = rgbToHSVFast(c.r, c.g, c.b)
		if h != c.h || s != c.s || v != c.v {
			t.Errorf("rgbToHSVFast(%d,%d,%d) = (%d,%d,%d), want (%d,%d,%d)", c.r, c.g, c.b, h, s, v, c.h, c.s, c.v)
		}
	}
}

func TestHSVToRGBTable(t *testing.T) {
	for _, c := range rgbToHSV255 {
		r, g, b := HSVToRGB(c.h, c.s, c.v)
		if absDiff(r, c.r) > 1 || absDiff(g, c.g) > 1 || absDiff(b, c.b) > 1 {
			t.Errorf("HSVToRGB(%d,%d,%d) = (%d,%d,%d), want about (%d,%d,%d)", c.h, c.s, c.v, r, g, b, c.r, c.g, c.b)
		}
	}
}

// The integer path must match the reference for every color.
func TestFastPathMatchesReference(t *testing.T) {
	step := 1
	if testing.Short() {
		step = 7
	}
	for r := 0; r < 256; r += step {
		for g := 0; g < 256; g++ {
			for b := 0; b < 256; b++ {
				h0, s0, v0 := RGBToHSV(uint8(r), uint8(g), uint8(b))
				h1, s1, v1 := rgbToHSVFast(uint8(r), uint8(g), uint8(b))
				if h0 != h1 || s0 != s1 || v0 != v1 {
					t.Fatalf("(%d,%d,%d): reference (%d,%d,%d) fast (%d,%d,%d)", r, g, b, h0, s0, v0, h1, s1, v1)
				}
			}
		}
	}
}

// A byte-scale hue step covers 1/255 of the circle, so the round trip can
// drift by up to 3 on the interpolated channel; grays are exact.
func TestRoundTripBounded(t *testing.T) {
	step := 1
	if testing.Short() {
		step = 5
	}
	for r := 0; r < 256; r += step {
		for g := 0; g < 256; g++ {
			for b := 0; b < 256; b++ {
				h, s, v := RGBToHSV(uint8(r), uint8(g), uint8(b))
				r1, g1, b1 := HSVToRGB(h, s, v)
				if absDiff(r1, uint8(r)) > 3 || absDiff(g1, uint8(g)) > 3 || absDiff(b1, uint8(b)) > 3 {
					t.Fatalf("(%d,%d,%d) -> (%d,%d,%d) -> (%d,%d,%d)", r, g, b, h, s, v, r1, g1, b1)
				}
				if r == g && g == b && (r1 != uint8(r) || g1 != uint8(r) || b1 != uint8(r)) {
					t.Fatalf("gray %d not exact: (%d,%d,%d)", r, r1, g1, b1)
				}
			}
		}
	}
}

func TestHSV360RoundTripTable(t *testing.T) {
	for _, c := range rgbToHSV255 {
		h, s, v := RGBToHSV360(c.r, c.g, c.b)
		r, g, b := HSV360ToRGB(h, s, v)
		if absDiff(r, c.r) > 2 || absDiff(g, c.g) > 2 || absDiff(b, c.b) > 2 {
			t.Errorf("360 round trip of (%d,%d,%d) = (%d,%d,%d)", c.r, c.g, c.b, r, g, b)
		}
		// the coarse scale agrees with the byte scale within the same bound
		r2, g2, b2 := HSVToRGB(RGBToHSV(c.r, c.g, c.b))
		if absDiff(r, r2) > 2 || absDiff(g, g2) > 2 || absDiff(b, b2) > 2 {
			t.Errorf("scales disagree for (%d,%d,%d): (%d,%d,%d) vs (%d,%d,%d)", c.r, c.g, c.b, r, g, b, r2, g2, b2)
		}
	}
	if h, s, v := RGBToHSV360(0, 255, 0); h != 120 || s != 100 || v != 100 {
		t.Fatalf("pure green = (%d,%d,%d)", h, s, v)
	}
}

func TestHueFullCircleFoldsToZero(t *testing.T) {
	r0, g0, b0 := HSVToRGB(0, 200, 200)
	r1, g1, b1 := HSVToRGB(255, 200, 200)
	if r0 != r1 || g0 != g1 || b0 != b1 {
		t.Fatalf("hue 255 should fold to sector 0")
	}
}

func TestHSVImageUsesPackedLayout(t *testing.T) {
	img := pic.New(1, 1)
	img.Pix[0] = pic.PackRGBA(54, 179, 64, 0x7F)
	if got := HSVImage(img).Pix[0]; got != pic.PackRGBA(88, 178, 179, 0x7F) {
		t.Fatalf("packed hsv = %08x", got)
	}
}

func TestReplace(t *testing.T) {
	img := pic.New(3, 1)
	img.Pix[0] = pic.Pack(10, 10, 10)  // gray, saturation 0
	img.Pix[1] = pic.Pack(200, 10, 10) // saturated red
	img.Pix[2] = pic.Pack(54, 179, 64) // saturated green
	n := Replace(img, HSVRange{HMax: 255, SMin: 1, SMax: 255, VMax: 255}, 0xFFFFFFFF)
	if n != 2 {
		t.Fatalf("replaced %d pixels", n)
	}
	if img.Pix[0] != pic.Pack(10, 10, 10) || img.Pix[1] != 0xFFFFFFFF || img.Pix[2] != 0xFFFFFFFF {
		t.Fatalf("unexpected pixels %08x", img.Pix)
	}
}
