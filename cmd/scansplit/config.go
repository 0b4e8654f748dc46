package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gardar/scansplit/pkg/ocr"
	"github.com/gardar/scansplit/pkg/pdfsplit"
	"github.com/gardar/scansplit/pkg/pipeline"
	"github.com/gardar/scansplit/pkg/raster"
)

type yamlConfig struct {
	Mode           string        `yaml:"mode"`
	Workers        int           `yaml:"workers"`
	OCRConcurrency int           `yaml:"ocr_concurrency"`
	PageTimeout    time.Duration `yaml:"page_timeout"`

	Log struct {
		Development bool   `yaml:"development"`
		Level       string `yaml:"level"`
	} `yaml:"log"`

	Classify struct {
		Policy        string `yaml:"policy"`
		TextThreshold *int   `yaml:"text_threshold"`
		Unclassified  string `yaml:"unclassified"`
	} `yaml:"classify"`

	Outputs struct {
		TextPDF       *string `yaml:"text_pdf"`
		ScannedPDF    *string `yaml:"scanned_pdf"`
		Transcript    *string `yaml:"transcript"`
		SearchablePDF *string `yaml:"searchable_pdf"`
	} `yaml:"outputs"`

	Searchable struct {
		FontFile    string `yaml:"font_file"`
		FontName    string `yaml:"font_name"`
		LayerName   string `yaml:"layer_name"`
		JPEGQuality int    `yaml:"jpeg_quality"`
		Debug       bool   `yaml:"debug"`
	} `yaml:"searchable"`

	Raster struct {
		Backend  string        `yaml:"backend"`
		DPI      int           `yaml:"dpi"`
		Timeout  time.Duration `yaml:"timeout"`
		Pdftoppm string        `yaml:"pdftoppm"`
	} `yaml:"raster"`

	OCR struct {
		Engine     string   `yaml:"engine"`
		Languages  []string `yaml:"languages"`
		PSM        *int     `yaml:"psm"`
		Tessdata   string   `yaml:"tessdata"`
		DocumentAI struct {
			ProjectID       string `yaml:"project_id"`
			Location        string `yaml:"location"`
			ProcessorID     string `yaml:"processor_id"`
			CredentialsFile string `yaml:"credentials_file"`
		} `yaml:"document_ai"`
	} `yaml:"ocr"`

	Transcript struct {
		Label string `yaml:"label"`
	} `yaml:"transcript"`
}

// settings is the resolved configuration of one invocation.
type settings struct {
	Pipeline      pipeline.Config
	RasterBackend raster.Backend
	Raster        raster.Options
	Engine        ocr.Kind
	Tesseract     ocr.TesseractConfig
	DocumentAI    ocr.DocumentAIConfig
	LogDev        bool
	LogLevel      string
}

func defaultSettings() settings {
	return settings{
		Pipeline:      pipeline.DefaultConfig(),
		RasterBackend: raster.BackendFitz,
		Raster:        raster.DefaultOptions(),
		Engine:        ocr.KindTesseract,
		Tesseract:     ocr.DefaultTesseractConfig(),
		DocumentAI:    ocr.DocumentAIConfig{Location: "us"},
		LogLevel:      "info",
	}
}

// loadSettings starts from the defaults, applies the YAML file at path (if
// any) and then the environment.
func loadSettings(path string) (settings, error) {
	s := defaultSettings()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return s, err
		}
		var yc yamlConfig
		if err := yaml.Unmarshal(data, &yc); err != nil {
			return s, fmt.Errorf("parse %s: %w", path, err)
		}
		if err := yc.apply(&s); err != nil {
			return s, fmt.Errorf("%s: %w", path, err)
		}
	}
	applyEnv(&s)
	return s, nil
}

func (yc yamlConfig) apply(s *settings) error {
	p := &s.Pipeline
	if yc.Mode != "" {
		mode, err := pipeline.ParseMode(yc.Mode)
		if err != nil {
			return err
		}
		p.Mode = mode
	}
	if yc.Workers > 0 {
		p.Workers = yc.Workers
	}
	if yc.OCRConcurrency > 0 {
		p.OCRConcurrency = yc.OCRConcurrency
	}
	if yc.PageTimeout > 0 {
		p.PageTimeout = yc.PageTimeout
	}

	s.LogDev = yc.Log.Development
	if yc.Log.Level != "" {
		s.LogLevel = yc.Log.Level
	}

	if yc.Classify.Policy != "" {
		policy, err := pdfsplit.ParsePolicy(yc.Classify.Policy)
		if err != nil {
			return err
		}
		p.Split.Policy = policy
	}
	if yc.Classify.TextThreshold != nil {
		p.Split.TextThreshold = *yc.Classify.TextThreshold
	}
	if yc.Classify.Unclassified != "" {
		p.Split.Unclassified = pdfsplit.UnclassifiedAction(yc.Classify.Unclassified)
	}

	// Outputs may be set to "" to skip them.
	if yc.Outputs.TextPDF != nil {
		p.Outputs.TextPDF = *yc.Outputs.TextPDF
	}
	if yc.Outputs.ScannedPDF != nil {
		p.Outputs.ScannedPDF = *yc.Outputs.ScannedPDF
	}
	if yc.Outputs.Transcript != nil {
		p.Outputs.Transcript = *yc.Outputs.Transcript
	}
	if yc.Outputs.SearchablePDF != nil {
		p.Outputs.SearchablePDF = *yc.Outputs.SearchablePDF
	}

	sc := yc.Searchable
	if sc.FontFile != "" {
		p.Searchable.Font.UTF8File = sc.FontFile
		p.Searchable.Font.Name = "OCRFont"
	}
	if sc.FontName != "" {
		p.Searchable.Font.Name = sc.FontName
	}
	if sc.LayerName != "" {
		p.Searchable.LayerName = sc.LayerName
	}
	if sc.JPEGQuality > 0 {
		p.Searchable.JPEGQuality = sc.JPEGQuality
	}
	p.Searchable.Debug = sc.Debug

	if yc.Raster.Backend != "" {
		backend, err := raster.ParseBackend(yc.Raster.Backend)
		if err != nil {
			return err
		}
		s.RasterBackend = backend
	}
	if yc.Raster.DPI > 0 {
		s.Raster.DPI = yc.Raster.DPI
	}
	if yc.Raster.Timeout > 0 {
		s.Raster.Timeout = yc.Raster.Timeout
	}
	if yc.Raster.Pdftoppm != "" {
		s.Raster.PdftoppmPath = yc.Raster.Pdftoppm
	}

	if yc.OCR.Engine != "" {
		kind, err := ocr.ParseKind(yc.OCR.Engine)
		if err != nil {
			return err
		}
		s.Engine = kind
	}
	if len(yc.OCR.Languages) > 0 {
		s.Tesseract.Languages = yc.OCR.Languages
	}
	if yc.OCR.PSM != nil {
		s.Tesseract.PageSegMode = *yc.OCR.PSM
	}
	s.Tesseract.TessdataDir = yc.OCR.Tessdata

	dai := yc.OCR.DocumentAI
	s.DocumentAI.ProjectID = dai.ProjectID
	s.DocumentAI.ProcessorID = dai.ProcessorID
	s.DocumentAI.CredentialsFile = dai.CredentialsFile
	if dai.Location != "" {
		s.DocumentAI.Location = dai.Location
	}

	if yc.Transcript.Label != "" {
		p.Transcript.Label = yc.Transcript.Label
	}
	return nil
}

func applyEnv(s *settings) {
	s.Pipeline.Workers = envInt("SCANSPLIT_WORKERS", s.Pipeline.Workers)
	s.Pipeline.PageTimeout = envDur("SCANSPLIT_PAGE_TIMEOUT", s.Pipeline.PageTimeout)
	s.Raster.DPI = envInt("SCANSPLIT_DPI", s.Raster.DPI)
	if langs := envStr("SCANSPLIT_OCR_LANGS", ""); langs != "" {
		s.Tesseract.Languages = splitList(langs)
	}
	s.DocumentAI.CredentialsFile = envStr("GOOGLE_APPLICATION_CREDENTIALS", s.DocumentAI.CredentialsFile)
}

// resolve derives the settings that follow from others once every source
// has been applied.
func (s *settings) resolve() {
	s.Pipeline.Searchable.DPI = s.Raster.DPI
}

// splitList accepts Tesseract's "rus+eng" as well as "rus,eng".
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '+' || r == ',' || r == ' '
	})
}

func envStr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDur(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
