package action

import (
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sys/windows"

	"github.com/soocke/pixel-agent-go/domain/scroll"
)

const (
	mouseLeftDown = 0x0002
	mouseLeftUp   = 0x0004
	mouseWheel    = 0x0800
	keyUp         = 0x0002

	// wheelDelta is one notch.
	wheelDelta = 120
)

var (
	user32       = windows.NewLazySystemDLL("user32.dll")
	setCursorPos = user32.NewProc("SetCursorPos")
	mouseEvent   = user32.NewProc("mouse_event")
	keybdEvent   = user32.NewProc("keybd_event")
)

// Win32Input drives the primary mouse button, the wheel and the keyboard
// through user32. Touch drags are emulated with a held left button.
type Win32Input struct {
	log *slog.Logger
}

// New loads user32 and returns the Win32 backend.
func New(logger *slog.Logger) (scroll.Input, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	for _, p := range []*windows.LazyProc{setCursorPos, mouseEvent, keybdEvent} {
		if err := p.Find(); err != nil {
			return nil, fmt.Errorf("action: %s: %w", p.Name, err)
		}
	}
	return &Win32Input{log: logger}, nil
}

func (in *Win32Input) moveTo(x, y int) error {
	r, _, err := setCursorPos.Call(uintptr(x), uintptr(y))
	if r == 0 {
		return fmt.Errorf("action: SetCursorPos(%d, %d): %w", x, y, err)
	}
	return nil
}

func (in *Win32Input) Press(x, y int) error {
	if err := in.moveTo(x, y); err != nil {
		return err
	}
	_, _, _ = mouseEvent.Call(mouseLeftDown, 0, 0, 0, 0)
	return nil
}

func (in *Win32Input) Move(x, y int) error { return in.moveTo(x, y) }

func (in *Win32Input) Release(x, y int) error {
	if err := in.moveTo(x, y); err != nil {
		return err
	}
	_, _, _ = mouseEvent.Call(mouseLeftUp, 0, 0, 0, 0)
	return nil
}

// Wheel turns the wheel by lines notches. Windows scrolls the view down for
// negative deltas, which moves the surface up.
func (in *Win32Input) Wheel(x, y int, lines float32) error {
	if err := in.moveTo(x, y); err != nil {
		return err
	}
	delta := int32(math.Round(float64(lines) * wheelDelta))
	if delta == 0 {
		in.log.Warn("action.wheel_below_resolution", "lines", lines)
		return nil
	}
	_, _, _ = mouseEvent.Call(mouseWheel, 0, 0, uintptr(uint32(delta)), 0)
	return nil
}

func (in *Win32Input) Key(code int, down bool) error {
	if code <= 0 || code > 0xFE {
		return fmt.Errorf("action: virtual key %#x out of range", code)
	}
	var flags uintptr
	if !down {
		flags = keyUp
	}
	_, _, _ = keybdEvent.Call(uintptr(code), 0, flags, 0)
	return nil
}
