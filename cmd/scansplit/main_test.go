package main

import (
	"reflect"
	"testing"

	"github.com/gardar/scansplit/pkg/ocr"
	"github.com/gardar/scansplit/pkg/pdfsplit"
	"github.com/gardar/scansplit/pkg/pipeline"
	"github.com/gardar/scansplit/pkg/raster"
)

func TestApplyFlags(t *testing.T) {
	s := defaultSettings()
	err := applyFlags(&s, flagValues{
		mode:       "archive",
		policy:     "fallback",
		textOut:    "t.pdf",
		scannedOut: "s.pdf",
		engine:     "documentai",
		backend:    "poppler",
		workers:    2,
		verbose:    true,
	})
	if err != nil {
		t.Fatalf("applyFlags() error = %v", err)
	}
	if s.Pipeline.Mode != pipeline.ModeArchive || s.Pipeline.Split.Policy != pdfsplit.PolicyFallback {
		t.Errorf("mode %s policy %s", s.Pipeline.Mode, s.Pipeline.Split.Policy)
	}
	if s.Engine != ocr.KindDocumentAI || s.RasterBackend != raster.BackendPoppler {
		t.Errorf("engine %s backend %s", s.Engine, s.RasterBackend)
	}
	if s.Pipeline.Outputs.TextPDF != "t.pdf" || s.Pipeline.Outputs.ScannedPDF != "s.pdf" {
		t.Errorf("Outputs = %+v", s.Pipeline.Outputs)
	}
	if s.Pipeline.Outputs.Transcript != pipeline.DefaultOutputs().Transcript {
		t.Errorf("unset flag changed Transcript to %q", s.Pipeline.Outputs.Transcript)
	}
	if s.Pipeline.Workers != 2 || s.LogLevel != "debug" {
		t.Errorf("workers %d level %s", s.Pipeline.Workers, s.LogLevel)
	}
}

func TestApplyFlagsRejectsUnknownValues(t *testing.T) {
	for _, f := range []flagValues{
		{mode: "print"},
		{policy: "both"},
		{engine: "easyocr"},
		{backend: "ghostscript"},
	} {
		s := defaultSettings()
		if err := applyFlags(&s, f); err == nil {
			t.Errorf("applyFlags(%+v) = nil error", f)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	cfg := pipeline.DefaultConfig()
	if got := outputPaths(cfg); !reflect.DeepEqual(got, []string{"text_pages.pdf", "scanned_pages.txt"}) {
		t.Errorf("ocr mode outputPaths() = %v", got)
	}

	cfg.Mode = pipeline.ModeArchive
	cfg.Outputs.TextPDF = ""
	if got := outputPaths(cfg); !reflect.DeepEqual(got, []string{"scanned_pages.pdf"}) {
		t.Errorf("archive mode outputPaths() = %v", got)
	}
}

func TestNewLogger(t *testing.T) {
	for _, dev := range []bool{false, true} {
		logger, err := newLogger(dev, "warn")
		if err != nil {
			t.Fatalf("newLogger(%v) error = %v", dev, err)
		}
		if logger.Core().Enabled(-1) {
			t.Errorf("newLogger(%v) enables debug at warn level", dev)
		}
	}
	if _, err := newLogger(false, "chatty"); err == nil {
		t.Errorf("newLogger(chatty) = nil error")
	}
}

func TestTesseractConfig(t *testing.T) {
	s := defaultSettings()
	s.Raster.DPI = 200
	s.Pipeline.Workers = 6
	s.Pipeline.OCRConcurrency = 0
	if cfg := tesseractConfig(s); cfg.DPI != 200 || cfg.MaxConcurrent != 6 {
		t.Errorf("dpi %d max concurrent %d, want 200 and 6", cfg.DPI, cfg.MaxConcurrent)
	}

	s.Pipeline.OCRConcurrency = 2
	if cfg := tesseractConfig(s); cfg.MaxConcurrent != 2 {
		t.Errorf("max concurrent %d, want 2", cfg.MaxConcurrent)
	}
}
