package ocr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var ErrNoNumber = errors.New("ocr: no number in text")

// TrimText drops the trailing whitespace engines append to recognized text.
// Line breaks and spacing inside the text are kept.
func TrimText(text string) string {
	return strings.TrimRightFunc(text, unicode.IsSpace)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isGroupSep(c byte) bool { return c == ' ' || c == ',' || c == '.' || c == '\'' }

// ParseInt returns the first run of digits in text. Grouping separators
// (space, comma, dot, apostrophe) between two digits are skipped, so
// "1 234" and "12,345" parse whole.
func ParseInt(text string) (int64, error) {
	start := strings.IndexFunc(text, func(r rune) bool { return r >= '0' && r <= '9' })
	if start < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNoNumber, text)
	}
	var digits []byte
	for i := start; i < len(text); i++ {
		c := text[i]
		if isDigit(c) {
			digits = append(digits, c)
			continue
		}
		if isGroupSep(c) && i+1 < len(text) && isDigit(text[i+1]) {
			continue
		}
		break
	}
	n, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ocr: parse %q: %w", text, err)
	}
	return n, nil
}
