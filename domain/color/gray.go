package color

import (
	"fmt"

	"github.com/soocke/pixel-agent-go/domain/pic"
)

func grayOf(c uint32) byte {
	return byte((c>>24 + c>>16&0xFF + c>>8&0xFF) / 3)
}

// Grayscale averages the three channels of every pixel, truncating.
func Grayscale(img *pic.Image) *pic.Gray {
	out := pic.NewGray(img.Width, img.Height)
	for i, c := range img.Pix {
		out.Pix[i] = grayOf(c)
	}
	return out
}

// GrayscaleWindow converts the w×h window at (x, y). The result equals
// cropping first and converting the crop.
func GrayscaleWindow(img *pic.Image, x, y, w, h int) (*pic.Gray, error) {
	out := pic.NewGray(w, h)
	if err := GrayscaleInto(img, out, x, y); err != nil {
		return nil, err
	}
	return out, nil
}

// GrayscaleInto fills dst from the window of src at (fromX, fromY) sized like dst.
func GrayscaleInto(src *pic.Image, dst *pic.Gray, fromX, fromY int) error {
	m := pic.Mask{X: fromX, Y: fromY, W: dst.Width, H: dst.Height}
	if !m.Within(src.Width, src.Height) {
		return fmt.Errorf("color: grayscale window %s outside %d×%d", m, src.Width, src.Height)
	}
	for row := 0; row < dst.Height; row++ {
		s := src.Pix[(fromY+row)*src.Width+fromX:]
		d := dst.Pix[row*dst.Width : (row+1)*dst.Width]
		for x := range d {
			d[x] = grayOf(s[x])
		}
	}
	return nil
}
