package pic

import (
	"image"
	"image/color"
)

// Opaque is the alpha byte written for every pixel that is not explicitly composed.
const Opaque = 0xFF

// Image is a dense row-major RGBA buffer. Each sample is packed 0xRRGGBBAA.
type Image struct {
	Width  int
	Height int
	Pix    []uint32
}

// Gray holds one byte per pixel.
type Gray struct {
	Width  int
	Height int
	Pix    []byte
}

// Pic8 holds one bit-packed color code per pixel. It is produced by
// color.CondenseImage and used only as an approximate comparison key.
type Pic8 struct {
	Width  int
	Height int
	Pix    []byte
}

// New allocates a zeroed w×h image.
func New(w, h int) *Image {
	if w < 0 || h < 0 {
		w, h = 0, 0
	}
	return &Image{Width: w, Height: h, Pix: make([]uint32, w*h)}
}

// NewGray allocates a zeroed w×h grayscale image.
func NewGray(w, h int) *Gray {
	if w < 0 || h < 0 {
		w, h = 0, 0
	}
	return &Gray{Width: w, Height: h, Pix: make([]byte, w*h)}
}

// NewPic8 allocates a zeroed w×h quantized image.
func NewPic8(w, h int) *Pic8 {
	if w < 0 || h < 0 {
		w, h = 0, 0
	}
	return &Pic8{Width: w, Height: h, Pix: make([]byte, w*h)}
}

// Pack returns the opaque sample for r, g, b.
func Pack(r, g, b uint8) uint32 {
	return uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | Opaque
}

// PackRGBA returns the sample for r, g, b, a.
func PackRGBA(r, g, b, a uint8) uint32 {
	return uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a)
}

// Unpack splits a sample into its channels.
func Unpack(c uint32) (r, g, b, a uint8) {
	return uint8(c >> 24), uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// SwapRB converts between 0xRRGGBBAA and 0xBBGGRRAA.
func SwapRB(c uint32) uint32 {
	return (c&0xFF000000)>>16 | c&0x00FF00FF | (c&0x0000FF00)<<16
}

func (p *Image) At(x, y int) uint32     { return p.Pix[y*p.Width+x] }
func (p *Image) Set(x, y int, c uint32) { p.Pix[y*p.Width+x] = c }

// Bounds reports the full-image mask.
func (p *Image) Bounds() Mask { return Mask{W: p.Width, H: p.Height} }

// Clone returns a deep copy.
func (p *Image) Clone() *Image {
	out := &Image{Width: p.Width, Height: p.Height, Pix: make([]uint32, len(p.Pix))}
	copy(out.Pix, p.Pix)
	return out
}

// Equal reports identical dimensions and samples.
func (p *Image) Equal(o *Image) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.Width != o.Width || p.Height != o.Height || len(p.Pix) != len(o.Pix) {
		return false
	}
	for i, c := range p.Pix {
		if o.Pix[i] != c {
			return false
		}
	}
	return true
}

func (g *Gray) At(x, y int) byte     { return g.Pix[y*g.Width+x] }
func (g *Gray) Set(x, y int, v byte) { g.Pix[y*g.Width+x] = v }

// Clone returns a deep copy.
func (g *Gray) Clone() *Gray {
	out := &Gray{Width: g.Width, Height: g.Height, Pix: make([]byte, len(g.Pix))}
	copy(out.Pix, g.Pix)
	return out
}

// Crop returns a copy of the w×h window at (x, y).
func (g *Gray) Crop(x, y, w, h int) *Gray {
	out := NewGray(w, h)
	for row := 0; row < h; row++ {
		src := (y+row)*g.Width + x
		copy(out.Pix[row*w:(row+1)*w], g.Pix[src:src+w])
	}
	return out
}

// Image wraps the buffer as a stdlib image sharing no memory.
func (g *Gray) Image() *image.Gray {
	out := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	copy(out.Pix, g.Pix)
	return out
}

// GrayToImage expands a grayscale image into opaque gray RGBA.
func GrayToImage(g *Gray) *Image {
	out := New(g.Width, g.Height)
	for i, v := range g.Pix {
		out.Pix[i] = Pack(v, v, v)
	}
	return out
}

// FromImage converts any stdlib image into a packed buffer. Alpha is kept
// as reported by the source color model.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	out := New(b.Dx(), b.Dy())
	if rgba, ok := src.(*image.RGBA); ok {
		for y := 0; y < out.Height; y++ {
			row := rgba.Pix[(y+b.Min.Y-rgba.Rect.Min.Y)*rgba.Stride+(b.Min.X-rgba.Rect.Min.X)*4:]
			for x := 0; x < out.Width; x++ {
				i := x * 4
				out.Pix[y*out.Width+x] = PackRGBA(row[i], row[i+1], row[i+2], row[i+3])
			}
		}
		return out
	}
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			out.Pix[y*out.Width+x] = PackRGBA(c.R, c.G, c.B, c.A)
		}
	}
	return out
}

// FromRGBABytes converts a tightly packed RGBA byte buffer (stride w*4).
func FromRGBABytes(w, h int, buf []byte) *Image {
	out := New(w, h)
	for i := range out.Pix {
		j := i * 4
		out.Pix[i] = PackRGBA(buf[j], buf[j+1], buf[j+2], buf[j+3])
	}
	return out
}

// RGBA converts the buffer to a stdlib image with alpha forced opaque.
func (p *Image) RGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	for i, c := range p.Pix {
		j := i * 4
		out.Pix[j], out.Pix[j+1], out.Pix[j+2], out.Pix[j+3] = uint8(c>>24), uint8(c>>16), uint8(c>>8), Opaque
	}
	return out
}
