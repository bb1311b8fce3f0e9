package action

import (
	"errors"
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	enumWindows         = user32.NewProc("EnumWindows")
	getWindowTextW      = user32.NewProc("GetWindowTextW")
	isWindowVisible     = user32.NewProc("IsWindowVisible")
	getForegroundWindow = user32.NewProc("GetForegroundWindow")
)

func windowText(hwnd uintptr) string {
	buf := make([]uint16, 256)
	r, _, _ := getWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if r == 0 {
		return ""
	}
	return strings.TrimSpace(windows.UTF16ToString(buf[:r]))
}

// ListWindows returns titles of visible top-level windows, skipping
// untitled ones.
func ListWindows() ([]string, error) {
	var titles []string
	cb := syscall.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		if vis, _, _ := isWindowVisible.Call(hwnd); vis == 0 {
			return 1
		}
		if title := windowText(hwnd); title != "" {
			titles = append(titles, title)
		}
		return 1
	})
	if r, _, err := enumWindows.Call(cb, 0); r == 0 {
		if err != nil && err != syscall.Errno(0) {
			return nil, err
		}
		return nil, errors.New("action: EnumWindows failed")
	}
	return titles, nil
}

func ForegroundWindowTitle() (string, error) {
	hwnd, _, _ := getForegroundWindow.Call()
	if hwnd == 0 {
		return "", errors.New("action: no foreground window")
	}
	return windowText(hwnd), nil
}
