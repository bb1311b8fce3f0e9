package config

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/soocke/pixel-agent-go/domain/capture"
	"github.com/soocke/pixel-agent-go/domain/locate"
	"github.com/soocke/pixel-agent-go/domain/ocr"
	"github.com/soocke/pixel-agent-go/domain/scroll"
	"github.com/soocke/pixel-agent-go/domain/split"
)

// Config holds runtime configuration. Fields may be loaded from a JSON file
// and overridden by command-line flags.
type Config struct {
	Debug   bool          `json:"debug"`
	Capture CaptureConfig `json:"capture"`
	Match   MatchConfig   `json:"match"`
	Split   SplitConfig   `json:"split"`
	OCR     OCRConfig     `json:"ocr"`
	Scroll  ScrollConfig  `json:"scroll"`
}

// CaptureConfig selects the screen region and pipeline timing. A zero
// region captures the primary display.
type CaptureConfig struct {
	X               int `json:"x"`
	Y               int `json:"y"`
	W               int `json:"w"`
	H               int `json:"h"`
	IntervalMS      int `json:"interval_ms"`
	JoinTimeoutMS   int `json:"join_timeout_ms"`
	StatsIntervalMS int `json:"stats_interval_ms"`
	StatsWindow     int `json:"stats_window"`
}

type MatchConfig struct {
	Tolerance  int `json:"tolerance"`
	MaxResults int `json:"max_results"`
}

// SplitConfig describes the separator color as hex RRGGBB.
type SplitConfig struct {
	Background   string `json:"background"`
	Tolerance    int    `json:"tolerance"`
	GapThickness int    `json:"gap_thickness"`
	MinLen       int    `json:"min_len"`
	MaxLen       int    `json:"max_len"`
	StrictLead   bool   `json:"strict_lead"`
	StrictTrail  bool   `json:"strict_trail"`
	Horizontal   bool   `json:"horizontal"`
}

type OCRConfig struct {
	Languages []string `json:"languages"`
	Scale     int      `json:"scale"`
	Mode      string   `json:"mode"`
	Whitelist string   `json:"whitelist"`
	Capacity  int      `json:"capacity"`
	// Policy is "oldest" or "lru".
	Policy string `json:"policy"`
}

type ScrollConfig struct {
	Density        float64 `json:"density"`
	DeadlineMS     int     `json:"deadline_ms"`
	PollIntervalMS int     `json:"poll_interval_ms"`
	MaxAttempts    int     `json:"max_attempts"`
	Tolerance      int     `json:"tolerance"`
	MaxShift       int     `json:"max_shift"`
	MinOverlap     int     `json:"min_overlap"`
	DumpDir        string  `json:"dump_dir"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Capture: CaptureConfig{
			IntervalMS:      100,
			JoinTimeoutMS:   2000,
			StatsIntervalMS: 5000,
			StatsWindow:     64,
		},
		Match: MatchConfig{MaxResults: 0},
		Split: SplitConfig{
			Background:   "FFFFFF",
			Tolerance:    15,
			GapThickness: 1,
		},
		OCR: OCRConfig{
			Languages: []string{"eng"},
			Scale:     3,
			Mode:      ocr.ModeLegacy.String(),
			Capacity:  ocr.DefaultCapacity,
			Policy:    ocr.EvictOldestInserted.String(),
		},
		Scroll: ScrollConfig{
			Density:    160,
			DeadlineMS: 2500,
			MinOverlap: 8,
		},
	}
}

func clampInt(v, lo, hi, fallback int) int {
	if v < lo || v > hi {
		return fallback
	}
	return v
}

// Validate clamps/normalizes values to safe ranges. Only values that cannot
// be repaired are reported.
func (c *Config) Validate() error {
	d := DefaultConfig()

	c.Capture.X, c.Capture.Y = max(c.Capture.X, 0), max(c.Capture.Y, 0)
	if c.Capture.W < 0 || c.Capture.H < 0 {
		c.Capture.W, c.Capture.H = 0, 0
	}
	c.Capture.IntervalMS = clampInt(c.Capture.IntervalMS, 10, 60_000, d.Capture.IntervalMS)
	c.Capture.JoinTimeoutMS = clampInt(c.Capture.JoinTimeoutMS, 100, 60_000, d.Capture.JoinTimeoutMS)
	c.Capture.StatsIntervalMS = clampInt(c.Capture.StatsIntervalMS, 0, 3_600_000, d.Capture.StatsIntervalMS)
	c.Capture.StatsWindow = clampInt(c.Capture.StatsWindow, 1, 4096, d.Capture.StatsWindow)

	c.Match.Tolerance = clampInt(c.Match.Tolerance, 0, 255, 0)
	c.Match.MaxResults = max(c.Match.MaxResults, 0)

	c.Split.Tolerance = clampInt(c.Split.Tolerance, 0, 255, d.Split.Tolerance)
	c.Split.GapThickness = max(c.Split.GapThickness, 1)
	c.Split.MinLen = max(c.Split.MinLen, 0)
	if c.Split.MaxLen < 0 || (c.Split.MaxLen > 0 && c.Split.MaxLen < c.Split.MinLen) {
		c.Split.MaxLen = 0
	}

	if len(c.OCR.Languages) == 0 {
		c.OCR.Languages = d.OCR.Languages
	}
	c.OCR.Scale = clampInt(c.OCR.Scale, 1, 8, d.OCR.Scale)
	c.OCR.Capacity = clampInt(c.OCR.Capacity, 1, 10_000, d.OCR.Capacity)
	if c.OCR.Mode == "" {
		c.OCR.Mode = d.OCR.Mode
	}
	if c.OCR.Policy != ocr.EvictLeastRecentlyUsed.String() {
		c.OCR.Policy = d.OCR.Policy
	}

	if c.Scroll.Density <= 0 {
		c.Scroll.Density = d.Scroll.Density
	}
	c.Scroll.DeadlineMS = clampInt(c.Scroll.DeadlineMS, 1, 60_000, d.Scroll.DeadlineMS)
	c.Scroll.PollIntervalMS = clampInt(c.Scroll.PollIntervalMS, 0, 10_000, 0)
	c.Scroll.MaxAttempts = max(c.Scroll.MaxAttempts, 0)
	c.Scroll.Tolerance = clampInt(c.Scroll.Tolerance, 0, 255, 0)
	c.Scroll.MaxShift = max(c.Scroll.MaxShift, 0)
	c.Scroll.MinOverlap = clampInt(c.Scroll.MinOverlap, 1, 1<<16, d.Scroll.MinOverlap)

	if _, err := c.Split.background(); err != nil {
		return err
	}
	if _, err := ocr.ParseMode(c.OCR.Mode); err != nil {
		return fmt.Errorf("config: ocr.mode: %w", err)
	}
	return nil
}

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

// Rect is the capture region; empty means the whole primary display.
func (c CaptureConfig) Rect() image.Rectangle {
	if c.W == 0 || c.H == 0 {
		return image.Rectangle{}
	}
	return image.Rect(c.X, c.Y, c.X+c.W, c.Y+c.H)
}

func (c CaptureConfig) Interval() time.Duration { return ms(c.IntervalMS) }

func (c CaptureConfig) Options() capture.Options {
	return capture.Options{
		JoinTimeout:   ms(c.JoinTimeoutMS),
		StatsInterval: ms(c.StatsIntervalMS),
		StatsWindow:   c.StatsWindow,
	}
}

func (c MatchConfig) Options() locate.Options {
	return locate.Options{Tolerance: c.Tolerance, MaxResults: c.MaxResults}
}

func (c SplitConfig) background() (uint32, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(c.Background, "#"), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		return 0, fmt.Errorf("config: split.background %q is not RRGGBB", c.Background)
	}
	return uint32(v) << 8, nil
}

// Options converts the section; the mask is left to the caller.
func (c SplitConfig) Options() split.Options {
	bg, _ := c.background()
	var edge split.EdgeFlags
	if c.StrictLead {
		edge |= split.EdgeLead
	}
	if c.StrictTrail {
		edge |= split.EdgeTrail
	}
	axis := split.Vertical
	if c.Horizontal {
		axis = split.Horizontal
	}
	return split.Options{
		Background:   bg,
		Tolerance:    c.Tolerance,
		GapThickness: c.GapThickness,
		Edge:         edge,
		Axis:         axis,
		MinLen:       c.MinLen,
		MaxLen:       c.MaxLen,
	}
}

func (c OCRConfig) Options() ocr.Options {
	p := ocr.EvictOldestInserted
	if c.Policy == ocr.EvictLeastRecentlyUsed.String() {
		p = ocr.EvictLeastRecentlyUsed
	}
	return ocr.Options{Capacity: c.Capacity, Policy: p}
}

func (c OCRConfig) Params() ocr.Params {
	m, _ := ocr.ParseMode(c.Mode)
	return ocr.Params{Mode: m, Whitelist: c.Whitelist}
}

func (c ScrollConfig) Options() scroll.Options {
	return scroll.Options{
		Deadline:     ms(c.DeadlineMS),
		PollInterval: ms(c.PollIntervalMS),
		MaxAttempts:  c.MaxAttempts,
		Detect: scroll.DetectOptions{
			Tolerance:  c.Tolerance,
			MaxShift:   c.MaxShift,
			MinOverlap: c.MinOverlap,
		},
	}
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
