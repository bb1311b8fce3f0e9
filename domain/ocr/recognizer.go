package ocr

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/soocke/pixel-agent-go/domain/color"
	"github.com/soocke/pixel-agent-go/domain/pic"
)

var ErrRecognize = errors.New("ocr: recognize failed")

// Mode is the recognizer engine mode. Switching modes is expensive.
type Mode int

const (
	ModeLegacy Mode = iota
	ModeLSTM
	ModeCombined
)

func (m Mode) String() string {
	switch m {
	case ModeLegacy:
		return "legacy"
	case ModeLSTM:
		return "lstm"
	case ModeCombined:
		return "combined"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts the names printed by Mode.String.
func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{ModeLegacy, ModeLSTM, ModeCombined} {
		if m.String() == s {
			return m, nil
		}
	}
	return ModeLegacy, fmt.Errorf("ocr: unknown mode %q", s)
}

// Engine is the external text recognizer.
type Engine interface {
	Configure(mode Mode) error
	SetOption(name, value string) bool
	Recognize(clip *pic.Gray) (string, error)
}

// WhitelistOption restricts the characters the engine may emit.
const WhitelistOption = "tessedit_char_whitelist"

// DefaultOptions turn off dictionary correction and adaptive learning; the
// clips are short labels and numbers, not prose.
var DefaultOptions = [][2]string{
	{"load_bigram_dawg", "false"},
	{"load_unambig_dawg", "false"},
	{"load_number_dawg", "false"},
	{"load_punc_dawg", "false"},
	{"load_freq_dawg", "false"},
	{"load_system_dawg", "false"},
	{"language_model_penalty_non_dict_word", "0"},
	{"language_model_penalty_non_freq_dict_word", "0"},
	{"classify_enable_learning", "false"},
	{"classify_enable_adaptive_matcher", "false"},
}

// Params are applied before the engine runs on a cache miss.
type Params struct {
	Mode      Mode
	Whitelist string
}

// Options configure a Recognizer.
type Options struct {
	Capacity int
	Policy   Policy
}

// Recognizer answers from the cache and falls back to the engine.
type Recognizer struct {
	engine Engine
	cache  *Cache
	mode   Mode
	logger *slog.Logger

	hits, misses uint64
}

// NewRecognizer configures the engine in ModeLegacy with DefaultOptions.
func NewRecognizer(engine Engine, opts Options, logger *slog.Logger) (*Recognizer, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Recognizer{engine: engine, cache: NewCache(opts.Capacity, opts.Policy), mode: ModeLegacy, logger: logger}
	if err := engine.Configure(ModeLegacy); err != nil {
		return nil, fmt.Errorf("%w: configure %s: %w", ErrRecognize, ModeLegacy, err)
	}
	r.applyDefaults()
	return r, nil
}

func (r *Recognizer) setOption(name, value string) {
	if !r.engine.SetOption(name, value) {
		r.logger.Error("ocr.set_option", "name", name, "value", value)
	}
}

func (r *Recognizer) applyDefaults() {
	for _, kv := range DefaultOptions {
		r.setOption(kv[0], kv[1])
	}
}

func (r *Recognizer) apply(p Params) error {
	if p.Mode != r.mode {
		r.logger.Info("ocr.mode_switch", "from", r.mode.String(), "to", p.Mode.String())
		if err := r.engine.Configure(p.Mode); err != nil {
			return fmt.Errorf("%w: configure %s: %w", ErrRecognize, p.Mode, err)
		}
		r.mode = p.Mode
		r.applyDefaults()
	}
	r.setOption(WhitelistOption, p.Whitelist)
	return nil
}

// Recognize returns the text of clip, consulting the cache first.
func (r *Recognizer) Recognize(clip *pic.Gray, p Params) (string, error) {
	key := NewKey(clip)
	if text, ok := r.cache.Get(key); ok {
		r.hits++
		return text, nil
	}
	r.misses++
	if err := r.apply(p); err != nil {
		return "", err
	}
	text, err := r.engine.Recognize(key.clip)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRecognize, err)
	}
	r.cache.Insert(key, text)
	r.logger.Debug("ocr.recognized", "text", text, "w", clip.Width, "h", clip.Height, "cached", r.cache.Len())
	return text, nil
}

// RecognizeRegion converts the window m of frame to gray and recognizes it.
func (r *Recognizer) RecognizeRegion(frame *pic.Image, m pic.Mask, p Params) (string, error) {
	clip, err := color.GrayscaleWindow(frame, m.X, m.Y, m.W, m.H)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRecognize, err)
	}
	return r.Recognize(clip, p)
}

// RecognizeInt recognizes the region and parses the first number in it.
func (r *Recognizer) RecognizeInt(frame *pic.Image, m pic.Mask, p Params) (int64, error) {
	text, err := r.RecognizeRegion(frame, m, p)
	if err != nil {
		return 0, err
	}
	return ParseInt(text)
}

// Mode reports the engine's loaded mode.
func (r *Recognizer) Mode() Mode { return r.mode }

// CacheStats returns hit and miss counts.
func (r *Recognizer) CacheStats() (hits, misses uint64) { return r.hits, r.misses }
