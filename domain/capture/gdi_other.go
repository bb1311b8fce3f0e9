//go:build !windows

package capture

import (
	"errors"
	"image"
)

const nativeCapture = false

func openGDISurface(image.Rectangle) (Surface, error) {
	return nil, errors.New("gdi: not available")
}
