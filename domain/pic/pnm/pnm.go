// Package pnm reads and writes the portable anymap raster variants P2, P3,
// P5 and P6. Samples are never rescaled: maxval is validated (1..255) and
// values are stored as read. Writers always emit maxval 255.
package pnm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/soocke/pixel-agent-go/domain/pic"
)

// Picture is a decoded raster. Exactly one of Color and Gray is set.
type Picture struct {
	Header Header
	Color  *pic.Image
	Gray   *pic.Gray
}

// Decode reads one picture from r.
func Decode(r io.Reader) (*Picture, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	cr := &countingReader{r: br}
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	// Rasters grow with the data read, so a short stream fails before a
	// header's claimed size is ever allocated.
	out := &Picture{Header: h}
	pixels := h.Width * h.Height
	switch h.Type {
	case PlainColor:
		pix := make([]uint32, 0, min(pixels, growChunk))
		var acc [3]uint8
		n := 0
		err = readPlain(cr, h.Samples(), h.Maxval, func(v int) {
			acc[n] = uint8(v)
			n++
			if n == 3 {
				pix = append(pix, pic.Pack(acc[0], acc[1], acc[2]))
				n = 0
			}
		})
		out.Color = &pic.Image{Width: h.Width, Height: h.Height, Pix: pix}
	case PlainGray:
		pix := make([]byte, 0, min(pixels, growChunk))
		err = readPlain(cr, h.Samples(), h.Maxval, func(v int) {
			pix = append(pix, uint8(v))
		})
		out.Gray = &pic.Gray{Width: h.Width, Height: h.Height, Pix: pix}
	case RawColor:
		var buf []byte
		if buf, err = readRaw(cr, h.Samples()); err == nil {
			pix := make([]uint32, pixels)
			for i := range pix {
				pix[i] = pic.Pack(buf[i*3], buf[i*3+1], buf[i*3+2])
			}
			out.Color = &pic.Image{Width: h.Width, Height: h.Height, Pix: pix}
		}
	case RawGray:
		var buf []byte
		if buf, err = readRaw(cr, h.Samples()); err == nil {
			out.Gray = &pic.Gray{Width: h.Width, Height: h.Height, Pix: buf}
		}
	}
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("pnm: decode %s %d×%d: %w", h.Type, h.Width, h.Height, err)
	}
	return out, nil
}

// DecodeImage decodes any variant into an RGBA image; gray sources become
// opaque gray pixels.
func DecodeImage(r io.Reader) (*pic.Image, error) {
	p, err := Decode(r)
	if err != nil {
		return nil, err
	}
	if p.Gray != nil {
		return pic.GrayToImage(p.Gray), nil
	}
	return p.Color, nil
}

// DecodeGray decodes a P2 or P5 picture.
func DecodeGray(r io.Reader) (*pic.Gray, error) {
	p, err := Decode(r)
	if err != nil {
		return nil, err
	}
	if p.Gray == nil {
		return nil, fmt.Errorf("%w: %s is not grayscale", ErrUnsupportedType, p.Header.Type)
	}
	return p.Gray, nil
}

// growChunk is the initial raster capacity and the raw read step.
const growChunk = 1 << 16

// readRaw reads exactly n raster bytes in chunks.
func readRaw(cr *countingReader, n int) ([]byte, error) {
	buf := make([]byte, 0, min(n, growChunk))
	for len(buf) < n {
		step := min(n-len(buf), growChunk)
		buf = append(buf, make([]byte, step)...)
		if _, err := io.ReadFull(byteReaderAdapter{cr}, buf[len(buf)-step:]); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// byteReaderAdapter lets io.ReadFull drain the counting reader.
type byteReaderAdapter struct{ cr *countingReader }

func (a byteReaderAdapter) Read(p []byte) (int, error) {
	for i := range p {
		b, err := a.cr.r.ReadByte()
		if err != nil {
			return i, err
		}
		a.cr.off++
		p[i] = b
	}
	return len(p), nil
}

func writeHeader(w io.Writer, t Type, width, height int) error {
	_, err := fmt.Fprintf(w, "P%d\n%d %d\n255\n", int(t), width, height)
	return err
}

// EncodeP3 writes a plain color picture, one pixel per line. Alpha is dropped.
func EncodeP3(w io.Writer, img *pic.Image) error {
	bw := bufio.NewWriter(w)
	if err := writeHeader(bw, PlainColor, img.Width, img.Height); err != nil {
		return err
	}
	line := make([]byte, 0, 12)
	for _, c := range img.Pix {
		r, g, b, _ := pic.Unpack(c)
		line = strconv.AppendUint(line[:0], uint64(r), 10)
		line = append(line, ' ')
		line = strconv.AppendUint(line, uint64(g), 10)
		line = append(line, ' ')
		line = strconv.AppendUint(line, uint64(b), 10)
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// EncodeP6 writes a raw color picture. Alpha is dropped.
func EncodeP6(w io.Writer, img *pic.Image) error {
	bw := bufio.NewWriter(w)
	if err := writeHeader(bw, RawColor, img.Width, img.Height); err != nil {
		return err
	}
	for _, c := range img.Pix {
		r, g, b, _ := pic.Unpack(c)
		if _, err := bw.Write([]byte{r, g, b}); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// EncodeP2 writes a plain grayscale picture, one sample per line.
func EncodeP2(w io.Writer, g *pic.Gray) error {
	bw := bufio.NewWriter(w)
	if err := writeHeader(bw, PlainGray, g.Width, g.Height); err != nil {
		return err
	}
	line := make([]byte, 0, 4)
	for _, v := range g.Pix {
		line = strconv.AppendUint(line[:0], uint64(v), 10)
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// EncodeP5 writes a raw grayscale picture.
func EncodeP5(w io.Writer, g *pic.Gray) error {
	bw := bufio.NewWriter(w)
	if err := writeHeader(bw, RawGray, g.Width, g.Height); err != nil {
		return err
	}
	if _, err := bw.Write(g.Pix); err != nil {
		return err
	}
	return bw.Flush()
}
