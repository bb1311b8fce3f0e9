package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soocke/pixel-agent-go/domain/ocr"
	"github.com/soocke/pixel-agent-go/domain/split"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scroll.DeadlineMS != 2500 || cfg.OCR.Capacity != ocr.DefaultCapacity || cfg.Split.Tolerance != 15 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	cfg := DefaultConfig()
	cfg.Debug = true
	cfg.Capture.W, cfg.Capture.H = 640, 480
	cfg.Split.Background = "#102030"
	cfg.Split.StrictLead = true
	cfg.OCR.Policy = "lru"
	cfg.OCR.Mode = "lstm"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.Debug || got.Capture.Rect().Dx() != 640 {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	so := got.Split.Options()
	if so.Background != 0x10203000 || so.Edge != split.EdgeLead || so.Axis != split.Vertical {
		t.Fatalf("split options %+v", so)
	}
	if o := got.OCR.Options(); o.Policy != ocr.EvictLeastRecentlyUsed {
		t.Fatalf("policy %v", o.Policy)
	}
	if p := got.OCR.Params(); p.Mode != ocr.ModeLSTM {
		t.Fatalf("mode %v", p.Mode)
	}
}

func TestValidateClamps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capture.IntervalMS = 0
	cfg.Capture.W = -5
	cfg.Split.GapThickness = 0
	cfg.Split.MinLen, cfg.Split.MaxLen = 10, 3
	cfg.OCR.Scale = 99
	cfg.OCR.Policy = "random"
	cfg.Scroll.Density = -1
	cfg.Scroll.DeadlineMS = -1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Capture.IntervalMS != 100 || cfg.Capture.W != 0 || !cfg.Capture.Rect().Empty() {
		t.Fatalf("capture %+v", cfg.Capture)
	}
	if cfg.Split.GapThickness != 1 || cfg.Split.MaxLen != 0 {
		t.Fatalf("split %+v", cfg.Split)
	}
	if cfg.OCR.Scale != 3 || cfg.OCR.Policy != "oldest" {
		t.Fatalf("ocr %+v", cfg.OCR)
	}
	if o := cfg.Scroll.Options(); o.Deadline != 2500*time.Millisecond || cfg.Scroll.Density != 160 {
		t.Fatalf("scroll %+v", o)
	}
}

func TestValidateRejectsUnrepairable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Split.Background = "white"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("bad background accepted")
	}
	cfg = DefaultConfig()
	cfg.OCR.Mode = "neural"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("bad mode accepted")
	}
}

func TestLoadReportsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err == nil {
		t.Fatalf("bad JSON accepted")
	}
	if cfg == nil || cfg.Scroll.DeadlineMS != 2500 {
		t.Fatalf("defaults not returned alongside error")
	}
}
