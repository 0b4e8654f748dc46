package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

// DocumentAIConfig identifies the Document AI OCR processor to call.
type DocumentAIConfig struct {
	ProjectID       string
	Location        string // Processor region, e.g. "eu" or "us"
	ProcessorID     string
	CredentialsFile string   // Service account key; application default credentials when empty
	Languages       []string // Tesseract-style codes, sent as BCP 47 hints
}

// Validate checks that the processor is fully named.
func (c DocumentAIConfig) Validate() error {
	var missing []string
	if c.ProjectID == "" {
		missing = append(missing, "project_id")
	}
	if c.Location == "" {
		missing = append(missing, "location")
	}
	if c.ProcessorID == "" {
		missing = append(missing, "processor_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("document ai: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// DocumentAI recognises pages with a Google Document AI OCR processor.
type DocumentAI struct {
	client *documentai.DocumentProcessorClient
	name   string
	hints  []string
}

// NewDocumentAI dials the regional Document AI endpoint.
func NewDocumentAI(ctx context.Context, cfg DocumentAIConfig) (*DocumentAI, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = DefaultLanguages
	}

	opts := []option.ClientOption{
		option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)),
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}

	return &DocumentAI{
		client: client,
		name:   processorName(cfg),
		hints:  LanguageHints(cfg.Languages),
	}, nil
}

// Recognize sends img to the processor as a PNG.
func (d *DocumentAI) Recognize(ctx context.Context, img image.Image) (Result, error) {
	data, err := encodePNG(img)
	if err != nil {
		return Result{}, err
	}
	resp, err := d.client.ProcessDocument(ctx, processRequest(d.name, data, d.hints))
	if err != nil {
		return Result{}, recognitionError("document ai", err)
	}
	return documentResult(resp.GetDocument()), nil
}

// Close closes the gRPC connection.
func (d *DocumentAI) Close() error {
	return d.client.Close()
}

func processorName(cfg DocumentAIConfig) string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", cfg.ProjectID, cfg.Location, cfg.ProcessorID)
}

func processRequest(name string, png []byte, hints []string) *documentaipb.ProcessRequest {
	req := &documentaipb.ProcessRequest{
		Name: name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  png,
				MimeType: "image/png",
			},
		},
		SkipHumanReview: true,
	}
	if len(hints) > 0 {
		req.ProcessOptions = &documentaipb.ProcessOptions{
			OcrConfig: &documentaipb.OcrConfig{
				Hints: &documentaipb.OcrConfig_Hints{LanguageHints: hints},
			},
		}
	}
	return req
}

// documentResult takes the full document text and averages the page layout
// confidences, which Document AI reports in 0-1.
func documentResult(doc *documentaipb.Document) Result {
	res := Result{Text: strings.TrimSpace(doc.GetText())}
	var sum float64
	var n int
	for _, p := range doc.GetPages() {
		if l := p.GetLayout(); l != nil {
			sum += float64(l.GetConfidence())
			n++
		}
	}
	if n > 0 {
		res.Confidence = sum / float64(n) * 100
	}
	res.Layout = documentLayout(doc)
	return res
}
