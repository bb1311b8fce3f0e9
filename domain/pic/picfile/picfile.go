// Package picfile loads and saves pictures by file extension: the PNM
// family goes through the pnm codec, everything else through imaging.
package picfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/soocke/pixel-agent-go/domain/pic"
	"github.com/soocke/pixel-agent-go/domain/pic/pnm"
)

func isPNM(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ppm", ".pgm", ".pnm":
		return true
	}
	return false
}

// Load reads a picture file into an RGBA buffer.
func Load(path string) (*pic.Image, error) {
	if isPNM(path) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		img, err := pnm.DecodeImage(f)
		if err != nil {
			return nil, fmt.Errorf("picfile: %s: %w", path, err)
		}
		return img, nil
	}
	src, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("picfile: %s: %w", path, err)
	}
	return pic.FromImage(src), nil
}

// Save writes img to path. ".ppm" writes raw P6 unless plain is requested
// with the ".p3.ppm" suffix; other extensions use imaging's encoders.
func Save(path string, img *pic.Image) error {
	if isPNM(path) {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		enc := pnm.EncodeP6
		if strings.HasSuffix(strings.ToLower(path), ".p3.ppm") {
			enc = pnm.EncodeP3
		}
		if err := enc(f, img); err != nil {
			f.Close()
			return fmt.Errorf("picfile: %s: %w", path, err)
		}
		return f.Close()
	}
	if err := imaging.Save(img.RGBA(), path); err != nil {
		return fmt.Errorf("picfile: %s: %w", path, err)
	}
	return nil
}

// SaveGray writes a grayscale picture; PNM paths get P5, others imaging.
func SaveGray(path string, g *pic.Gray) error {
	if isPNM(path) {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := pnm.EncodeP5(f, g); err != nil {
			f.Close()
			return fmt.Errorf("picfile: %s: %w", path, err)
		}
		return f.Close()
	}
	if err := imaging.Save(g.Image(), path); err != nil {
		return fmt.Errorf("picfile: %s: %w", path, err)
	}
	return nil
}
