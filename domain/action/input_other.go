//go:build !windows

package action

import (
	"log/slog"

	"github.com/soocke/pixel-agent-go/domain/scroll"
)

// New reports ErrUnsupportedPlatform outside windows.
func New(logger *slog.Logger) (scroll.Input, error) {
	return nil, ErrUnsupportedPlatform
}

func ListWindows() ([]string, error) { return nil, ErrUnsupportedPlatform }

func ForegroundWindowTitle() (string, error) { return "", ErrUnsupportedPlatform }
