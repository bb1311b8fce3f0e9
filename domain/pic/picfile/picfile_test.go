package picfile

import (
	"path/filepath"
	"testing"

	"github.com/soocke/pixel-agent-go/domain/pic"
)

func sample() *pic.Image {
	img := pic.New(6, 3)
	for i := range img.Pix {
		img.Pix[i] = pic.Pack(uint8(i*40), uint8(i*3), uint8(200-i))
	}
	return img
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := sample()
	for _, name := range []string{"a.png", "b.ppm", "c.p3.ppm", "d.bmp"} {
		path := filepath.Join(dir, name)
		if err := Save(path, src); err != nil {
			t.Fatalf("%s save: %v", name, err)
		}
		back, err := Load(path)
		if err != nil {
			t.Fatalf("%s load: %v", name, err)
		}
		if !back.Equal(src) {
			t.Fatalf("%s round trip differs", name)
		}
	}
}

func TestSaveGrayPNM(t *testing.T) {
	g := pic.NewGray(4, 2)
	copy(g.Pix, []byte{0, 10, 20, 30, 40, 50, 60, 70})
	path := filepath.Join(t.TempDir(), "g.pgm")
	if err := SaveGray(path, g); err != nil {
		t.Fatalf("save: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for i, v := range g.Pix {
		if back.Pix[i] != pic.Pack(v, v, v) {
			t.Fatalf("pixel %d = %08x", i, back.Pix[i])
		}
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Fatalf("expected error")
	}
}
