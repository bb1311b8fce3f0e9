// Package tesseract adapts gosseract to ocr.Engine.
package tesseract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/otiai10/gosseract/v2"

	"github.com/soocke/pixel-agent-go/domain/ocr"
	"github.com/soocke/pixel-agent-go/domain/pic"
)

// Options configure the engine.
type Options struct {
	Languages []string // default eng
	Scale     int      // clip upscale factor, default 3
	ConfigDir string   // where per-mode config files go, default a temp dir
}

// Engine drives one tesseract client. Not safe for concurrent use.
type Engine struct {
	client  *gosseract.Client
	scale   int
	configs map[ocr.Mode]string
	tmpDir  string
}

var engineModes = map[ocr.Mode]int{
	ocr.ModeLegacy:   0,
	ocr.ModeLSTM:     1,
	ocr.ModeCombined: 2,
}

// New creates the client and writes one config file per engine mode.
// Tesseract only reads the engine mode at init, so Configure swaps the config
// file and the client re-initialises on its next call.
func New(opts Options) (*Engine, error) {
	if len(opts.Languages) == 0 {
		opts.Languages = []string{"eng"}
	}
	if opts.Scale <= 0 {
		opts.Scale = 3
	}
	e := &Engine{scale: opts.Scale, configs: map[ocr.Mode]string{}}
	dir := opts.ConfigDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "pixel-agent-tess-")
		if err != nil {
			return nil, fmt.Errorf("tesseract: config dir: %w", err)
		}
		dir, e.tmpDir = tmp, tmp
	}
	for mode, oem := range engineModes {
		path := filepath.Join(dir, "oem-"+mode.String())
		if err := os.WriteFile(path, []byte(fmt.Sprintf("tessedit_ocr_engine_mode %d\n", oem)), 0o644); err != nil {
			e.cleanup()
			return nil, fmt.Errorf("tesseract: write %s: %w", path, err)
		}
		e.configs[mode] = path
	}

	e.client = gosseract.NewClient()
	if err := e.client.SetLanguage(opts.Languages...); err != nil {
		e.Close()
		return nil, fmt.Errorf("tesseract: language: %w", err)
	}
	if err := e.client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		e.Close()
		return nil, fmt.Errorf("tesseract: page seg mode: %w", err)
	}
	return e, nil
}

func (e *Engine) Configure(mode ocr.Mode) error {
	path, ok := e.configs[mode]
	if !ok {
		return fmt.Errorf("tesseract: unsupported mode %s", mode)
	}
	return e.client.SetConfigFile(path)
}

// SetOption always reports success: gosseract only records the variable and
// applies it when the API initializes, so a bad name or value surfaces as a
// Recognize error instead.
func (e *Engine) SetOption(name, value string) bool {
	return e.client.SetVariable(gosseract.SettableVariable(name), value) == nil
}

func (e *Engine) Recognize(clip *pic.Gray) (string, error) {
	png, err := ocr.EncodePNG(clip, e.scale)
	if err != nil {
		return "", fmt.Errorf("tesseract: encode: %w", err)
	}
	if err := e.client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("tesseract: set image: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return "", err
	}
	return ocr.TrimText(text), nil
}

func (e *Engine) cleanup() {
	if e.tmpDir != "" {
		_ = os.RemoveAll(e.tmpDir)
		e.tmpDir = ""
	}
}

// Close releases the client and removes generated config files.
func (e *Engine) Close() error {
	defer e.cleanup()
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}
