package pnm

import (
	"errors"
	"fmt"
	"io"
)

// Type is the numeric tag following 'P' in the header.
type Type int

const (
	PlainGray  Type = 2
	PlainColor Type = 3
	RawGray    Type = 5
	RawColor   Type = 6
)

func (t Type) String() string {
	switch t {
	case PlainGray:
		return "P2"
	case PlainColor:
		return "P3"
	case RawGray:
		return "P5"
	case RawColor:
		return "P6"
	default:
		return fmt.Sprintf("P%d", int(t))
	}
}

// Gray reports whether the type carries one sample per pixel.
func (t Type) Gray() bool { return t == PlainGray || t == RawGray }

var (
	ErrMalformed           = errors.New("pnm: malformed data")
	ErrUnsupportedType     = errors.New("pnm: unsupported type")
	ErrUnsupportedMaxval   = errors.New("pnm: unsupported maxval")
	ErrInsufficientSamples = errors.New("pnm: insufficient number of samples read")
	ErrTrailingData        = errors.New("pnm: extra data found after samples")
)

// DecodeError reports a byte that is not allowed in the parser state.
type DecodeError struct {
	Stage  string // "header" or "data"
	State  string
	Class  string
	Offset int64
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("pnm: %s: unexpected %s in state %s at offset %d", e.Stage, e.Class, e.State, e.Offset)
}

func (e *DecodeError) Unwrap() error { return ErrMalformed }

// Header is the parsed TYPE WIDTH HEIGHT MAXVAL preamble.
type Header struct {
	Type   Type
	Width  int
	Height int
	Maxval int
}

// Samples is the number of samples the raster must hold.
func (h Header) Samples() int {
	if h.Type.Gray() {
		return h.Width * h.Height
	}
	return h.Width * h.Height * 3
}

type charClass int

const (
	classEOF charClass = iota
	classP
	classHash
	classDigit
	classWSP
	classNL
	classOther
)

func (c charClass) String() string {
	switch c {
	case classEOF:
		return "EOF"
	case classP:
		return "'P'"
	case classHash:
		return "'#'"
	case classDigit:
		return "digit"
	case classWSP:
		return "whitespace"
	case classNL:
		return "newline"
	default:
		return "other"
	}
}

func classify(b byte) charClass {
	switch {
	case b == 'P':
		return classP
	case b == '#':
		return classHash
	case b >= '0' && b <= '9':
		return classDigit
	case b == ' ' || b == '\t' || b == '\r':
		return classWSP
	case b == '\n':
		return classNL
	default:
		return classOther
	}
}

type headerState int

const (
	hInit headerState = iota
	hCharP
	hNumeric
	hWSP
	hComment
	hConsumed
)

func (s headerState) String() string {
	switch s {
	case hInit:
		return "INIT"
	case hCharP:
		return "CHARP_READ"
	case hNumeric:
		return "READING_NUMERIC"
	case hWSP:
		return "READING_WSP"
	case hComment:
		return "READING_COMMENT"
	case hConsumed:
		return "HEADER_CONSUMED"
	default:
		return "UNKNOWN"
	}
}

// maxHeaderNumber bounds each header number; maxPixels bounds the raster.
const (
	maxHeaderNumber = 1 << 20
	maxPixels       = 1 << 26
)

// countingReader tracks the byte offset for error reports.
type countingReader struct {
	r   io.ByteReader
	off int64
}

// next returns the next byte and its class; EOF maps to classEOF.
func (c *countingReader) next() (byte, charClass, error) {
	b, err := c.r.ReadByte()
	if err == io.EOF {
		return 0, classEOF, nil
	}
	if err != nil {
		return 0, classEOF, err
	}
	c.off++
	return b, classify(b), nil
}

// readHeader consumes the header up to and including the single whitespace
// byte following maxval, leaving the reader at the first raster byte.
func readHeader(cr *countingReader) (Header, error) {
	var nums [4]int
	n := 0
	state := hInit
	fail := func(cls charClass) error {
		return &DecodeError{Stage: "header", State: state.String(), Class: cls.String(), Offset: cr.off}
	}
	for state != hConsumed {
		b, cls, err := cr.next()
		if err != nil {
			return Header{}, fmt.Errorf("pnm: read header: %w", err)
		}
		switch state {
		case hInit:
			if cls != classP {
				return Header{}, fail(cls)
			}
			state = hCharP
		case hCharP:
			if cls != classDigit {
				return Header{}, fail(cls)
			}
			nums[n] = int(b - '0')
			state = hNumeric
		case hNumeric:
			switch cls {
			case classDigit:
				nums[n] = nums[n]*10 + int(b-'0')
				if nums[n] > maxHeaderNumber {
					return Header{}, fmt.Errorf("pnm: header number too large at offset %d: %w", cr.off, ErrMalformed)
				}
			case classWSP, classNL:
				n++
				if n == len(nums) {
					state = hConsumed
				} else {
					state = hWSP
				}
			default:
				return Header{}, fail(cls)
			}
		case hWSP:
			switch cls {
			case classWSP, classNL:
			case classDigit:
				nums[n] = int(b - '0')
				state = hNumeric
			case classHash:
				state = hComment
			default:
				return Header{}, fail(cls)
			}
		case hComment:
			switch cls {
			case classNL:
				state = hWSP
			case classEOF:
				return Header{}, fail(cls)
			}
		}
	}
	h := Header{Type: Type(nums[0]), Width: nums[1], Height: nums[2], Maxval: nums[3]}
	switch h.Type {
	case PlainGray, PlainColor, RawGray, RawColor:
	default:
		return h, fmt.Errorf("%w: %s", ErrUnsupportedType, h.Type)
	}
	if h.Maxval < 1 || h.Maxval > 255 {
		return h, fmt.Errorf("%w: %d", ErrUnsupportedMaxval, h.Maxval)
	}
	if h.Width <= 0 || h.Height <= 0 {
		return h, fmt.Errorf("pnm: invalid dimensions %d×%d: %w", h.Width, h.Height, ErrMalformed)
	}
	if h.Width*h.Height > maxPixels {
		return h, fmt.Errorf("pnm: %d×%d exceeds %d pixels: %w", h.Width, h.Height, maxPixels, ErrMalformed)
	}
	return h, nil
}
