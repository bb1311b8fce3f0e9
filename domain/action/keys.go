// Package action injects input events into the desktop session.
package action

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedPlatform is returned where no input backend exists.
var ErrUnsupportedPlatform = errors.New("action: input injection is only implemented on windows")

// Virtual-key codes used by the CLI.
const (
	KeyReturn   = 0x0D
	KeyEscape   = 0x1B
	KeySpace    = 0x20
	KeyPageUp   = 0x21
	KeyPageDown = 0x22
	KeyEnd      = 0x23
	KeyHome     = 0x24
	KeyUp       = 0x26
	KeyDown     = 0x28
	KeyF1       = 0x70
)

var namedKeys = map[string]int{
	"ENTER":    KeyReturn,
	"RETURN":   KeyReturn,
	"ESC":      KeyEscape,
	"ESCAPE":   KeyEscape,
	"SPACE":    KeySpace,
	"PGUP":     KeyPageUp,
	"PAGEUP":   KeyPageUp,
	"PGDN":     KeyPageDown,
	"PAGEDOWN": KeyPageDown,
	"END":      KeyEnd,
	"HOME":     KeyHome,
	"UP":       KeyUp,
	"DOWN":     KeyDown,
}

// ParseKey converts a key token ("F3", "R", "7", "PageDown") into a
// Windows virtual-key code. Letters and digits map onto their ASCII codes,
// function keys cover F1..F24.
func ParseKey(token string) (int, error) {
	k := strings.ToUpper(strings.TrimSpace(token))
	if code, ok := namedKeys[k]; ok {
		return code, nil
	}
	if len(k) == 1 && (k[0] >= 'A' && k[0] <= 'Z' || k[0] >= '0' && k[0] <= '9') {
		return int(k[0]), nil
	}
	if len(k) >= 2 && k[0] == 'F' {
		var n int
		if _, err := fmt.Sscanf(k[1:], "%d", &n); err == nil && n >= 1 && n <= 24 && fmt.Sprint(n) == k[1:] {
			return KeyF1 + n - 1, nil
		}
	}
	return 0, fmt.Errorf("action: unknown key %q", token)
}
