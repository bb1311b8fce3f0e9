package pnm

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/soocke/pixel-agent-go/domain/pic"
)

// microCanvas returns a small deterministic color picture.
func microCanvas() *pic.Image {
	img := pic.New(5, 4)
	for i := range img.Pix {
		img.Pix[i] = pic.Pack(uint8(i*13), uint8(255-i*7), uint8(i*i))
	}
	return img
}

func TestPlainAndRawColorAgree(t *testing.T) {
	src := microCanvas()
	var p3, p6 bytes.Buffer
	if err := EncodeP3(&p3, src); err != nil {
		t.Fatalf("encode p3: %v", err)
	}
	if err := EncodeP6(&p6, src); err != nil {
		t.Fatalf("encode p6: %v", err)
	}
	a, err := DecodeImage(&p3)
	if err != nil {
		t.Fatalf("decode p3: %v", err)
	}
	b, err := DecodeImage(&p6)
	if err != nil {
		t.Fatalf("decode p6: %v", err)
	}
	if !a.Equal(src) || !b.Equal(src) {
		t.Fatalf("decoded pictures differ from source")
	}
}

func TestEncodeDropsAlpha(t *testing.T) {
	src := pic.New(2, 1)
	src.Pix[0] = pic.PackRGBA(1, 2, 3, 0)
	src.Pix[1] = pic.PackRGBA(4, 5, 6, 7)
	var buf bytes.Buffer
	if err := EncodeP3(&buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := buf.String(); got != "P3\n2 1\n255\n1 2 3\n4 5 6\n" {
		t.Fatalf("unexpected P3 output %q", got)
	}
	back, err := DecodeImage(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Pix[0] != pic.Pack(1, 2, 3) || back.Pix[1] != pic.Pack(4, 5, 6) {
		t.Fatalf("alpha not forced opaque: %08x %08x", back.Pix[0], back.Pix[1])
	}
}

func TestGrayRoundTrip(t *testing.T) {
	g := pic.NewGray(32, 8)
	for i := range g.Pix {
		g.Pix[i] = byte(i)
	}
	for name, enc := range map[string]func(io.Writer, *pic.Gray) error{"p2": EncodeP2, "p5": EncodeP5} {
		var buf bytes.Buffer
		if err := enc(&buf, g); err != nil {
			t.Fatalf("%s encode: %v", name, err)
		}
		back, err := DecodeGray(&buf)
		if err != nil {
			t.Fatalf("%s decode: %v", name, err)
		}
		if !bytes.Equal(back.Pix, g.Pix) {
			t.Fatalf("%s round trip differs", name)
		}
	}
}

func TestHeaderComments(t *testing.T) {
	in := "P2\n# made by hand\n2 # width first\n1\n# maxval next\n255\n7 9\n"
	g, err := DecodeGray(strings.NewReader(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if g.Width != 2 || g.Height != 1 || g.Pix[0] != 7 || g.Pix[1] != 9 {
		t.Fatalf("unexpected picture %+v", g)
	}
}

func TestHeaderStopsAtRaster(t *testing.T) {
	// raster bytes look like whitespace and digits
	raw := append([]byte("P5\n3 1\n255\n"), ' ', '\n', '7')
	g, err := DecodeGray(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(g.Pix, []byte{' ', '\n', '7'}) {
		t.Fatalf("raster misaligned: %v", g.Pix)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		want  error
		state string
	}{
		{"no magic", "X3\n1 1\n255\n", ErrMalformed, "INIT"},
		{"comment inside number", "P3\n1#\n", ErrMalformed, "READING_NUMERIC"},
		{"truncated header", "P3\n1 1", ErrMalformed, "READING_NUMERIC"},
		{"letter in header", "P3\n1 x\n", ErrMalformed, "READING_WSP"},
		{"unterminated comment", "P3\n# never ends", ErrMalformed, "READING_COMMENT"},
		{"unsupported type", "P4\n1 1\n255\n", ErrUnsupportedType, ""},
		{"bad maxval", "P2\n1 1\n65535\n0\n", ErrUnsupportedMaxval, ""},
		{"insufficient", "P3\n2 1\n255\n1 2 3 4 5\n", ErrInsufficientSamples, ""},
		{"trailing data", "P2\n1 1\n255\n1 2\n", ErrTrailingData, ""},
		{"garbage sample", "P2\n2 1\n255\n1 z\n", ErrMalformed, "READING_WSP"},
		{"raw short", "P6\n2 1\n255\nabc", io.ErrUnexpectedEOF, ""},
		{"sample over maxval", "P2\n1 1\n15\n16\n", ErrMalformed, ""},
		{"too many pixels", "P5\n1048576 1048576\n255\n", ErrMalformed, ""},
		{"huge raw gray, no data", "P5\n8192 8192\n255\n", io.ErrUnexpectedEOF, ""},
		{"huge raw color, short data", "P6\n8192 8192\n255\nabcdef", io.ErrUnexpectedEOF, ""},
		{"huge plain, no data", "P3\n8192 8192\n255\n", ErrInsufficientSamples, ""},
	}
	for _, c := range cases {
		_, err := Decode(strings.NewReader(c.in))
		if !errors.Is(err, c.want) {
			t.Errorf("%s: got %v, want %v", c.name, err, c.want)
			continue
		}
		if c.state == "" {
			continue
		}
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Errorf("%s: expected DecodeError, got %T", c.name, err)
			continue
		}
		if de.State != c.state {
			t.Errorf("%s: state %s, want %s", c.name, de.State, c.state)
		}
	}
}

func TestPlainAcceptsMissingFinalNewline(t *testing.T) {
	g, err := DecodeGray(strings.NewReader("P2 2 1 255 4 5"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if g.Pix[0] != 4 || g.Pix[1] != 5 {
		t.Fatalf("unexpected samples %v", g.Pix)
	}
}
