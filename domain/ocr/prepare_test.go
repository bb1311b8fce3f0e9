package ocr

import (
	"bytes"
	"image/png"
	"testing"
)

func TestUpscaleKeepsFlatClips(t *testing.T) {
	g := clip(5, 2, 77)
	up := Upscale(g, 3)
	if b := up.Bounds(); b.Dx() != 15 || b.Dy() != 6 {
		t.Fatalf("bounds %v", b)
	}
	for _, v := range up.Pix {
		if v < 76 || v > 78 {
			t.Fatalf("flat clip resampled to %d", v)
		}
	}
	if same := Upscale(g, 1); same.Bounds().Dx() != 5 {
		t.Fatalf("factor 1 resized")
	}
}

func TestEncodePNGDecodes(t *testing.T) {
	data, err := EncodePNG(clip(4, 4, 200), 2)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 8 {
		t.Fatalf("bounds %v", b)
	}
}
