package pnm

import "fmt"

type dataState int

const (
	dWSP dataState = iota
	dNumeric
	dConsumed
)

func (s dataState) String() string {
	switch s {
	case dWSP:
		return "READING_WSP"
	case dNumeric:
		return "READING_NUMERIC"
	case dConsumed:
		return "DATA_CONSUMED"
	default:
		return "UNKNOWN"
	}
}

// readPlain tokenizes whitespace-separated decimal samples and calls emit
// once per completed token. It reads to EOF: exactly expected samples must
// be present and only whitespace may follow them.
func readPlain(cr *countingReader, expected, maxval int, emit func(int)) error {
	state := dWSP
	count := 0
	val := 0
	fail := func(cls charClass) error {
		return &DecodeError{Stage: "data", State: state.String(), Class: cls.String(), Offset: cr.off}
	}
	finish := func() error {
		if val > maxval {
			return fmt.Errorf("pnm: sample %d exceeds maxval %d at offset %d: %w", val, maxval, cr.off, ErrMalformed)
		}
		emit(val)
		count++
		if count == expected {
			state = dConsumed
		} else {
			state = dWSP
		}
		return nil
	}
	for {
		b, cls, err := cr.next()
		if err != nil {
			return fmt.Errorf("pnm: read data: %w", err)
		}
		switch state {
		case dWSP:
			switch cls {
			case classWSP, classNL:
			case classDigit:
				val = int(b - '0')
				state = dNumeric
			case classEOF:
				return fmt.Errorf("%w: %d of %d", ErrInsufficientSamples, count, expected)
			default:
				return fail(cls)
			}
		case dNumeric:
			switch cls {
			case classDigit:
				val = val*10 + int(b-'0')
				if val > maxval {
					return fmt.Errorf("pnm: sample exceeds maxval %d at offset %d: %w", maxval, cr.off, ErrMalformed)
				}
			case classWSP, classNL, classEOF:
				if err := finish(); err != nil {
					return err
				}
				if cls == classEOF {
					if count < expected {
						return fmt.Errorf("%w: %d of %d", ErrInsufficientSamples, count, expected)
					}
					return nil
				}
			default:
				return fail(cls)
			}
		case dConsumed:
			switch cls {
			case classWSP, classNL:
			case classEOF:
				return nil
			default:
				return fmt.Errorf("%w at offset %d", ErrTrailingData, cr.off)
			}
		}
	}
}
