// certextract asks a Mistral model which certificates a document describes.
//
// The source PDF is uploaded to Mistral and referenced from the chat request
// through a signed URL. With -transcript the tool instead sends the text of a
// scansplit transcript, so no upload takes place.
//
// Usage:
//
//	certextract -pdf certificate.pdf
//	certextract -transcript scanned_pages.txt
//
// Flags:
//
//	-pdf string         Path to the PDF to upload
//	-transcript string  Path to a transcript to send as text
//	-prompt string      Path to a file with a replacement prompt
//	-output string      Path to save the answer (stdout when empty)
//	-overwrite          Overwrite an existing output file
//
// Environment:
//
// MISTRAL_API_KEY is required. MISTRAL_MODEL overrides the default
// model "mistral-small-latest".
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/gardar/scansplit/internal/fsutil"
	"github.com/gardar/scansplit/pkg/certs"
	"github.com/gardar/scansplit/pkg/mistral"
)

func main() {
	pdfPath := flag.String("pdf", "", "Path to the PDF to upload")
	transcriptPath := flag.String("transcript", "", "Path to a transcript to send as text")
	promptPath := flag.String("prompt", "", "Path to a file with a replacement prompt")
	outputPath := flag.String("output", "", "Path to save the answer (stdout when empty)")
	overwrite := flag.Bool("overwrite", false, "Overwrite an existing output file")
	flag.Parse()

	if (*pdfPath == "") == (*transcriptPath == "") {
		fmt.Fprintln(os.Stderr, "Error: exactly one of -pdf or -transcript is required")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *outputPath != "" && !*overwrite && fsutil.Exists(*outputPath) {
		log.Fatalf("Output file %s already exists. Use -overwrite to overwrite.", *outputPath)
	}

	apiKey := strings.TrimSpace(os.Getenv("MISTRAL_API_KEY"))
	if apiKey == "" {
		log.Fatalf("MISTRAL_API_KEY is not set")
	}
	model := strings.TrimSpace(os.Getenv("MISTRAL_MODEL"))
	if model == "" {
		model = mistral.DefaultModel
	}

	var prompt string
	if *promptPath != "" {
		data, err := os.ReadFile(*promptPath)
		if err != nil {
			log.Fatalf("Failed to read prompt: %v", err)
		}
		prompt = strings.TrimSpace(string(data))
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var answer string
	if *transcriptPath != "" {
		llm, err := certs.NewMistralModel(apiKey, model)
		if err != nil {
			log.Fatalf("Failed to create model: %v", err)
		}
		ex := &certs.TranscriptExtractor{Model: llm, Prompt: prompt}
		fmt.Printf("Sending transcript %s to %s\n", *transcriptPath, model)
		answer, err = ex.ExtractFile(ctx, *transcriptPath)
		if err != nil {
			log.Fatalf("Extraction failed: %v", err)
		}
	} else {
		client, err := mistral.New(apiKey, mistral.WithModel(model))
		if err != nil {
			log.Fatalf("Failed to create Mistral client: %v", err)
		}
		ex := &certs.Extractor{Host: client, Completer: client, Prompt: prompt, Logger: logger}
		fmt.Printf("Uploading %s to %s\n", *pdfPath, model)
		answer, err = ex.Extract(ctx, *pdfPath)
		if err != nil {
			log.Fatalf("Extraction failed: %v", err)
		}
	}

	if *outputPath == "" {
		fmt.Println(answer)
		return
	}
	if err := fsutil.WriteFile(*outputPath, []byte(answer+"\n")); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	fmt.Printf("Saved answer to %s\n", *outputPath)
}
