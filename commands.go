package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/soocke/pixel-agent-go/debug"
	"github.com/soocke/pixel-agent-go/domain/action"
	"github.com/soocke/pixel-agent-go/domain/capture"
	"github.com/soocke/pixel-agent-go/domain/color"
	"github.com/soocke/pixel-agent-go/domain/locate"
	"github.com/soocke/pixel-agent-go/domain/ocr"
	"github.com/soocke/pixel-agent-go/domain/ocr/tesseract"
	"github.com/soocke/pixel-agent-go/domain/pic"
	"github.com/soocke/pixel-agent-go/domain/pic/picfile"
	"github.com/soocke/pixel-agent-go/domain/scroll"
	"github.com/soocke/pixel-agent-go/domain/split"
)

// slowOp is where debug.Measure starts logging at Info.
const slowOp = 250 * time.Millisecond

func parseInts(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma-separated integers, got %q", n, s)
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}

// maskFlag parses "x,y,w,h"; unset leaves the mask nil.
type maskFlag struct{ m *pic.Mask }

func (f *maskFlag) String() string {
	if f.m == nil {
		return ""
	}
	return fmt.Sprintf("%d,%d,%d,%d", f.m.X, f.m.Y, f.m.W, f.m.H)
}

func (f *maskFlag) Set(s string) error {
	v, err := parseInts(s, 4)
	if err != nil {
		return err
	}
	f.m = &pic.Mask{X: v[0], Y: v[1], W: v[2], H: v[3]}
	return nil
}

func newFlags(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func runMatch(ctx context.Context, e *env, args []string) error {
	fs := newFlags("match")
	fuzzy := fs.Bool("fuzzy", false, "tolerate per-channel differences up to match.tolerance")
	var mask maskFlag
	fs.Var(&mask, "mask", "search window x,y,w,h")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("match needs a canvas and a pattern")
	}
	canvas, err := picfile.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	pattern, err := picfile.Load(fs.Arg(1))
	if err != nil {
		return err
	}
	opts := e.cfg.Match.Options()
	opts.Mask = mask.m
	m := locate.NewMatcher(opts, e.log)

	var res locate.Result
	_ = debug.Measure(e.log, "match", slowOp, func() error {
		if *fuzzy {
			res = m.Fuzzy(canvas, pattern)
		} else {
			res = m.Exact(canvas, pattern)
		}
		return nil
	})
	for _, o := range res.Occurrences {
		fmt.Fprintf(e.out, "%d %d %d\n", o.Point.X, o.Point.Y, o.Closeness)
	}
	e.log.Info("match.result", "matches", len(res.Occurrences), "false_matches", res.FalseMatches)
	return nil
}

func runSplit(ctx context.Context, e *env, args []string) error {
	fs := newFlags("split")
	double := fs.Bool("double", false, "split each run again along the other axis")
	var mask maskFlag
	fs.Var(&mask, "mask", "window x,y,w,h")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("split needs an image")
	}
	img, err := picfile.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	opts := e.cfg.Split.Options()
	opts.Mask = mask.m
	if !*double {
		segs, err := split.SplitAs2D(img, opts)
		if err != nil {
			return err
		}
		for _, s := range segs.Sorted() {
			fmt.Fprintln(e.out, s)
		}
		return nil
	}
	second := opts
	second.Mask = nil
	segs, err := split.DoubleSplit(img, opts, second)
	if err != nil {
		return err
	}
	for _, s := range segs.Sorted() {
		fmt.Fprintln(e.out, s)
	}
	return nil
}

func runConvert(ctx context.Context, e *env, args []string) error {
	fs := newFlags("convert")
	gray := fs.Bool("gray", false, "write the grayscale rendition")
	condense := fs.String("condense", "", "quantize to b1,b2,b3 bits per channel and back")
	replace := fs.String("replace", "", "HSV box hmin,hmax,smin,smax,vmin,vmax painted with -with")
	with := fs.String("with", "000000", "replacement color RRGGBB")
	var hl maskFlag
	fs.Var(&hl, "highlight", "invert x,y,w,h")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("convert needs an input and an output")
	}
	img, err := picfile.Load(fs.Arg(0))
	if err != nil {
		return err
	}

	if *replace != "" {
		v, err := parseInts(*replace, 6)
		if err != nil {
			return fmt.Errorf("-replace: %w", err)
		}
		c, err := strconv.ParseUint(strings.TrimPrefix(*with, "#"), 16, 32)
		if err != nil {
			return fmt.Errorf("-with: %w", err)
		}
		rng := color.HSVRange{
			HMin: uint8(v[0]), HMax: uint8(v[1]),
			SMin: uint8(v[2]), SMax: uint8(v[3]),
			VMin: uint8(v[4]), VMax: uint8(v[5]),
		}
		n := color.Replace(img, rng, uint32(c)<<8|pic.Opaque)
		e.log.Info("convert.replaced", "pixels", n)
	}
	if *condense != "" {
		v, err := parseInts(*condense, 3)
		if err != nil {
			return fmt.Errorf("-condense: %w", err)
		}
		bits, err := color.NewBits(uint8(v[0]), uint8(v[1]), uint8(v[2]), true)
		if err != nil {
			return err
		}
		q, err := color.CondenseImage(img, bits)
		if err != nil {
			return err
		}
		if img, err = color.InflateImage(q, bits); err != nil {
			return err
		}
	}
	if hl.m != nil {
		img.Highlight(*hl.m)
	}
	if *gray {
		return picfile.SaveGray(fs.Arg(1), color.Grayscale(img))
	}
	return picfile.Save(fs.Arg(1), img)
}

func runOCR(ctx context.Context, e *env, args []string) error {
	fs := newFlags("ocr")
	asInt := fs.Bool("int", false, "parse the first number")
	var region maskFlag
	fs.Var(&region, "region", "clip x,y,w,h, default the whole image")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("ocr needs an image")
	}
	img, err := picfile.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	m := img.Bounds()
	if region.m != nil {
		m = *region.m
	}

	engine, err := tesseract.New(tesseract.Options{Languages: e.cfg.OCR.Languages, Scale: e.cfg.OCR.Scale})
	if err != nil {
		return err
	}
	defer engine.Close()
	rec, err := ocr.NewRecognizer(engine, e.cfg.OCR.Options(), e.log)
	if err != nil {
		return err
	}
	params := e.cfg.OCR.Params()

	return debug.Measure(e.log, "ocr", slowOp, func() error {
		if *asInt {
			n, err := rec.RecognizeInt(img, m, params)
			if err != nil {
				return err
			}
			fmt.Fprintln(e.out, n)
			return nil
		}
		text, err := rec.RecognizeRegion(img, m, params)
		if err != nil {
			return err
		}
		fmt.Fprintln(e.out, text)
		return nil
	})
}

func startPipeline(ctx context.Context, e *env) (*capture.Pipeline, error) {
	producer := capture.NewDesktopProducer(e.cfg.Capture.Rect(), e.cfg.Capture.Interval())
	p, err := capture.NewPipeline(producer, e.cfg.Capture.Options(), e.log)
	if err != nil {
		return nil, err
	}
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.WaitFirstFrame(waitCtx); err != nil {
		return nil, errors.Join(err, p.Shutdown())
	}
	return p, nil
}

func runWatch(ctx context.Context, e *env, args []string) error {
	fs := newFlags("watch")
	dur := fs.Duration("for", 10*time.Second, "how long to capture, 0 until interrupted")
	save := fs.String("save", "", "write the last frame here")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := startPipeline(ctx, e)
	if err != nil {
		return err
	}
	if *dur > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *dur)
		defer cancel()
	}

	var last capture.Frame
	for {
		fr, err := p.Capture(ctx)
		if err != nil {
			if errors.Is(err, capture.ErrInterrupted) && ctx.Err() != nil {
				break
			}
			return errors.Join(err, p.Shutdown())
		}
		if fr.Serial != last.Serial {
			e.log.Debug("watch.frame", "serial", fr.Serial, "captured_at", fr.CapturedAt)
		}
		last = fr
		select {
		case <-ctx.Done():
		case <-time.After(e.cfg.Capture.Interval()):
		}
	}
	st := p.Stats()
	fmt.Fprintf(e.out, "captures=%d latches=%d failures=%d median_read=%s serial=%d\n",
		st.Captures, st.Latches, st.Failures, st.MedianRead, st.Serial)
	if err := p.Shutdown(); err != nil {
		return err
	}
	if *save != "" && last.Image != nil {
		return picfile.Save(*save, last.Image)
	}
	return nil
}

func parseUnitMode(unit, mode string) (scroll.Unit, scroll.Mode, error) {
	var u scroll.Unit
	switch unit {
	case "pixels", "px":
		u = scroll.Pixels
	case "lines":
		u = scroll.Lines
	default:
		return 0, 0, fmt.Errorf("unknown unit %q", unit)
	}
	var m scroll.Mode
	switch mode {
	case "wheel":
		m = scroll.Wheel
	case "touch":
		m = scroll.Touch
	default:
		return 0, 0, fmt.Errorf("unknown mode %q", mode)
	}
	return u, m, nil
}

func runScroll(ctx context.Context, e *env, args []string) error {
	fs := newFlags("scroll")
	offset := fs.Float64("offset", 0, "positive reads further, negative goes back")
	unit := fs.String("unit", "pixels", "pixels or lines")
	mode := fs.String("mode", "wheel", "wheel or touch")
	blind := fs.Bool("blind", false, "do not verify")
	var area maskFlag
	fs.Var(&area, "area", "comparison window x,y,w,h in capture coordinates")
	if err := fs.Parse(args); err != nil {
		return err
	}
	u, m, err := parseUnitMode(*unit, *mode)
	if err != nil {
		return err
	}
	if area.m == nil {
		return scroll.ErrNoOrigin
	}
	in, err := action.New(e.log)
	if err != nil {
		return err
	}
	gestures := scroll.NewGestures(in, e.cfg.Scroll.Density)
	// Input works in screen coordinates, frames in capture coordinates.
	origin := area.m.Center().Add(e.cfg.Capture.Rect().Min)

	if *blind {
		c := scroll.NewController(nil, gestures, nil, e.cfg.Scroll.Options(), e.log)
		return c.ScrollBlind(ctx, origin, *offset, u, m)
	}

	p, err := startPipeline(ctx, e)
	if err != nil {
		return err
	}
	dumper := scroll.NewDumper(e.cfg.Scroll.DumpDir, e.log)
	c := scroll.NewController(p, gestures, dumper, e.cfg.Scroll.Options(), e.log)
	res, err := c.Scroll(ctx, scroll.Request{Origin: &origin, Offset: *offset, Unit: u, Mode: m, Area: area.m})
	if serr := p.Shutdown(); serr != nil {
		err = errors.Join(err, serr)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, res)
	return nil
}

func runKey(ctx context.Context, e *env, args []string) error {
	fs := newFlags("key")
	hold := fs.Duration("hold", 100*time.Millisecond, "how long the key stays down")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("key needs a key name")
	}
	code, err := action.ParseKey(fs.Arg(0))
	if err != nil {
		return err
	}
	in, err := action.New(e.log)
	if err != nil {
		return err
	}
	return scroll.NewGestures(in, e.cfg.Scroll.Density).PressKey(code, *hold)
}

func runWindows(ctx context.Context, e *env, args []string) error {
	return listWindows(e, action.ListWindows, action.ForegroundWindowTitle)
}

func listWindows(e *env, list func() ([]string, error), foreground func() (string, error)) error {
	titles, err := list()
	if err != nil {
		return err
	}
	fg, err := foreground()
	if err != nil {
		e.log.Debug("windows.foreground_failed", "err", err)
	}
	for _, t := range titles {
		mark := " "
		if err == nil && t == fg {
			mark = "*"
		}
		fmt.Fprintf(e.out, "%s %s\n", mark, t)
	}
	return nil
}
