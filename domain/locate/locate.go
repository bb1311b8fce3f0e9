// Package locate finds every offset at which a pattern image occurs inside a
// canvas image, either exactly or within a per-channel tolerance.
package locate

import (
	"image"
	"log/slog"
	"time"

	"github.com/soocke/pixel-agent-go/domain/pic"
)

// Occurrence is one top-left offset where the pattern matched. Closeness is
// the largest per-channel difference seen over the footprint.
type Occurrence struct {
	Point     image.Point
	Closeness int
}

// Result lists the matches in (y, x) order. FalseMatches counts candidates
// that passed the prefilter but failed the full comparison.
type Result struct {
	Occurrences  []Occurrence
	FalseMatches int
}

// Options narrow a search. A nil Mask searches the whole canvas; the pattern
// must fit entirely inside the mask. MaxResults of 0 means unbounded.
type Options struct {
	Mask       *pic.Mask
	MaxResults int
	Tolerance  int
}

// Points returns the matched offsets as a set.
func Points(r Result) map[image.Point]struct{} {
	out := make(map[image.Point]struct{}, len(r.Occurrences))
	for _, o := range r.Occurrences {
		out[o.Point] = struct{}{}
	}
	return out
}

// candidates returns the search window clipped to the canvas and the range of
// top-left offsets whose footprint fits in it. ok is false when none does.
func candidates(canvas, pattern *pic.Image, o Options) (win pic.Mask, nx, ny int, ok bool) {
	win = canvas.Bounds()
	if o.Mask != nil {
		r := o.Mask.Rect().Intersect(win.Rect())
		win = pic.MaskOf(r)
	}
	if pattern.Width == 0 || pattern.Height == 0 {
		return win, 0, 0, false
	}
	nx, ny = win.W-pattern.Width+1, win.H-pattern.Height+1
	return win, nx, ny, nx > 0 && ny > 0
}

func (r *Result) full(o Options) bool {
	return o.MaxResults > 0 && len(r.Occurrences) >= o.MaxResults
}

// compare walks the footprint at (x, y) and returns the largest RGB channel
// difference, giving up as soon as it exceeds limit.
func compare(canvas, pattern *pic.Image, x, y, limit int) (int, bool) {
	worst := 0
	for py := 0; py < pattern.Height; py++ {
		crow := canvas.Pix[(y+py)*canvas.Width+x : (y+py)*canvas.Width+x+pattern.Width]
		prow := pattern.Pix[py*pattern.Width : (py+1)*pattern.Width]
		for i, c := range crow {
			p := prow[i]
			if limit == 0 {
				if (c^p)&0xFFFFFF00 != 0 {
					return worst, false
				}
				continue
			}
			for shift := 24; shift >= 8; shift -= 8 {
				d := int(c>>shift&0xFF) - int(p>>shift&0xFF)
				if d < 0 {
					d = -d
				}
				if d > limit {
					return d, false
				}
				worst = max(worst, d)
			}
		}
	}
	return worst, true
}

// Matcher bundles search options with a logger.
type Matcher struct {
	Opts Options
	Log  *slog.Logger
}

// NewMatcher returns a Matcher; a nil logger discards.
func NewMatcher(opts Options, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Matcher{Opts: opts, Log: logger}
}

// Exact runs Exact with the matcher's options.
func (m *Matcher) Exact(canvas, pattern *pic.Image) Result {
	start := time.Now()
	r := Exact(canvas, pattern, m.Opts)
	m.done("exact", r, start)
	return r
}

// Fuzzy runs Fuzzy with the matcher's options.
func (m *Matcher) Fuzzy(canvas, pattern *pic.Image) Result {
	start := time.Now()
	r := Fuzzy(canvas, pattern, m.Opts)
	m.done("fuzzy", r, start)
	return r
}

func (m *Matcher) done(mode string, r Result, start time.Time) {
	m.Log.Debug("locate.done",
		"mode", mode,
		"matches", len(r.Occurrences),
		"false_matches", r.FalseMatches,
		"tolerance", m.Opts.Tolerance,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}
