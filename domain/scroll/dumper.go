package scroll

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"

	"github.com/soocke/pixel-agent-go/domain/capture"
	"github.com/soocke/pixel-agent-go/domain/pic"
)

// Dumper records failed verifications. With an empty dir it only logs.
type Dumper struct {
	dir string
	log *slog.Logger
	now func() time.Time
}

func NewDumper(dir string, logger *slog.Logger) *Dumper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dumper{dir: dir, log: logger, now: time.Now}
}

// Dump logs how far apart the two frames look and writes prev, next and a
// copy of next with area inverted.
func (d *Dumper) Dump(before, after capture.Frame, area pic.Mask) error {
	prev, next := before.Image.RGBA(), after.Image.RGBA()
	attrs := []any{"before_serial", before.Serial, "after_serial", after.Serial, "area", area.String()}
	if dist, err := perceptualDistance(prev, next); err == nil {
		attrs = append(attrs, "phash_distance", dist)
	} else {
		attrs = append(attrs, "phash_error", err)
	}
	d.log.Info("scroll.dump", attrs...)
	if d.dir == "" {
		return nil
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("scroll: dump dir: %w", err)
	}
	hl := after.Image.Clone()
	hl.Highlight(area)
	stamp := d.now().Format("20060102-150405.000")
	for _, f := range []struct {
		name string
		img  image.Image
	}{
		{fmt.Sprintf("%s-prev-%d.png", stamp, before.Serial), prev},
		{fmt.Sprintf("%s-next-%d.png", stamp, after.Serial), next},
		{fmt.Sprintf("%s-area.png", stamp), hl.RGBA()},
	} {
		path := filepath.Join(d.dir, f.name)
		if err := imaging.Save(f.img, path); err != nil {
			return fmt.Errorf("scroll: save %s: %w", path, err)
		}
	}
	return nil
}

func perceptualDistance(a, b image.Image) (int, error) {
	ha, err := goimagehash.PerceptionHash(a)
	if err != nil {
		return 0, err
	}
	hb, err := goimagehash.PerceptionHash(b)
	if err != nil {
		return 0, err
	}
	return ha.Distance(hb)
}
