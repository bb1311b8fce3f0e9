package capture

import (
	"fmt"
	"image"
	"unsafe"

	"golang.org/x/sys/windows"
)

const nativeCapture = true

const (
	srccopy      = 0x00CC0020
	dibRGBColors = 0
	biRGB        = 0
	gdiError     = ^uintptr(0)
)

var (
	user32                 = windows.NewLazySystemDLL("user32.dll")
	gdi32                  = windows.NewLazySystemDLL("gdi32.dll")
	procGetDC              = user32.NewProc("GetDC")
	procReleaseDC          = user32.NewProc("ReleaseDC")
	procCreateCompatibleDC = gdi32.NewProc("CreateCompatibleDC")
	procDeleteDC           = gdi32.NewProc("DeleteDC")
	procSelectObject       = gdi32.NewProc("SelectObject")
	procBitBlt             = gdi32.NewProc("BitBlt")
	procCreateDIBSection   = gdi32.NewProc("CreateDIBSection")
	procDeleteObject       = gdi32.NewProc("DeleteObject")
)

// BITMAPINFO (Win32 layout).
type bitmapInfoHeader struct {
	BiSize          uint32
	BiWidth         int32
	BiHeight        int32
	BiPlanes        uint16
	BiBitCount      uint16
	BiCompression   uint32
	BiSizeImage     uint32
	BiXPelsPerMeter int32
	BiYPelsPerMeter int32
	BiClrUsed       uint32
	BiClrImportant  uint32
}

type bitmapInfo struct {
	Header bitmapInfoHeader
	_      [4]byte
}

// gdiSurface keeps one screen DC, one memory DC and one top-down DIB for
// its lifetime. Latch blits the screen into the DIB; ReadPixels converts
// the DIB's BGRA into RGBA.
type gdiSurface struct {
	rect     image.Rectangle
	screenDC uintptr
	memDC    uintptr
	bmp      uintptr
	prevObj  uintptr
	bits     []byte
	latched  bool
}

func openGDISurface(r image.Rectangle) (Surface, error) {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("gdi: invalid rect %v", r)
	}
	s := &gdiSurface{rect: r}
	var err error
	if s.screenDC, _, err = procGetDC.Call(0); s.screenDC == 0 {
		return nil, fmt.Errorf("gdi: GetDC: %w", err)
	}
	if s.memDC, _, err = procCreateCompatibleDC.Call(s.screenDC); s.memDC == 0 {
		s.Close()
		return nil, fmt.Errorf("gdi: CreateCompatibleDC: %w", err)
	}

	var bi bitmapInfo
	bi.Header.BiSize = uint32(unsafe.Sizeof(bi.Header))
	bi.Header.BiWidth = int32(w)
	bi.Header.BiHeight = -int32(h) // top-down
	bi.Header.BiPlanes = 1
	bi.Header.BiBitCount = 32
	bi.Header.BiCompression = biRGB
	bi.Header.BiSizeImage = uint32(w * h * 4)

	var bitsPtr unsafe.Pointer
	if s.bmp, _, err = procCreateDIBSection.Call(s.memDC, uintptr(unsafe.Pointer(&bi)), dibRGBColors, uintptr(unsafe.Pointer(&bitsPtr)), 0, 0); s.bmp == 0 {
		s.Close()
		return nil, fmt.Errorf("gdi: CreateDIBSection: %w", err)
	}
	if s.prevObj, _, err = procSelectObject.Call(s.memDC, s.bmp); s.prevObj == 0 || s.prevObj == gdiError {
		s.prevObj = 0
		s.Close()
		return nil, fmt.Errorf("gdi: SelectObject: %w", err)
	}
	s.bits = unsafe.Slice((*byte)(bitsPtr), w*h*4)
	return s, nil
}

func (s *gdiSurface) Size() (int, int) { return s.rect.Dx(), s.rect.Dy() }

func (s *gdiSurface) Latch() error {
	ok, _, err := procBitBlt.Call(s.memDC, 0, 0, uintptr(s.rect.Dx()), uintptr(s.rect.Dy()),
		s.screenDC, uintptr(s.rect.Min.X), uintptr(s.rect.Min.Y), srccopy)
	if ok == 0 {
		return fmt.Errorf("gdi: BitBlt %v: %w", s.rect, err)
	}
	s.latched = true
	return nil
}

func (s *gdiSurface) ReadPixels(dst []byte) error {
	if !s.latched {
		return fmt.Errorf("gdi: nothing latched")
	}
	// DIB alpha is undefined; force opaque.
	for i := 0; i < len(s.bits); i += 4 {
		dst[i], dst[i+1], dst[i+2], dst[i+3] = s.bits[i+2], s.bits[i+1], s.bits[i], 0xFF
	}
	return nil
}

func (s *gdiSurface) Close() error {
	if s.prevObj != 0 {
		procSelectObject.Call(s.memDC, s.prevObj)
		s.prevObj = 0
	}
	if s.bmp != 0 {
		procDeleteObject.Call(s.bmp)
		s.bmp = 0
	}
	if s.memDC != 0 {
		procDeleteDC.Call(s.memDC)
		s.memDC = 0
	}
	if s.screenDC != 0 {
		procReleaseDC.Call(0, s.screenDC)
		s.screenDC = 0
	}
	s.bits = nil
	return nil
}
