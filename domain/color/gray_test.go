package color

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/soocke/pixel-agent-go/domain/pic"
)

func TestGrayscaleTruncates(t *testing.T) {
	img := pic.New(2, 1)
	img.Pix[0] = pic.Pack(1, 1, 2)       // 4/3
	img.Pix[1] = pic.Pack(255, 255, 254) // 764/3
	g := Grayscale(img)
	if g.Pix[0] != 1 || g.Pix[1] != 254 {
		t.Fatalf("gray = %v", g.Pix)
	}
}

func TestGrayscaleWindowEqualsCropThenGray(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	img := pic.New(23, 17)
	for i := range img.Pix {
		img.Pix[i] = rng.Uint32()
	}
	full := Grayscale(img)
	for _, m := range []pic.Mask{{X: 3, Y: 2, W: 6, H: 3}, {X: 0, Y: 0, W: 23, H: 17}, {X: 22, Y: 16, W: 1, H: 1}} {
		win, err := GrayscaleWindow(img, m.X, m.Y, m.W, m.H)
		if err != nil {
			t.Fatalf("window %v: %v", m, err)
		}
		crop, err := img.Crop(m.X, m.Y, m.W, m.H)
		if err != nil {
			t.Fatalf("crop %v: %v", m, err)
		}
		if !bytes.Equal(win.Pix, Grayscale(crop).Pix) {
			t.Fatalf("window %v differs from crop then gray", m)
		}
		if !bytes.Equal(win.Pix, full.Crop(m.X, m.Y, m.W, m.H).Pix) {
			t.Fatalf("window %v differs from gray then crop", m)
		}
	}
	if _, err := GrayscaleWindow(img, 20, 0, 4, 1); err == nil {
		t.Fatalf("expected error for window outside image")
	}
}
