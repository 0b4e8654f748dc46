// Package certs asks a language model to find quality certificates in a
// document and list the materials each one certifies.
//
// Two flows are supported:
//
// - Extractor uploads the whole PDF to a document host and hands the model a
//   URL to it (the Mistral document_url flow).
// - TranscriptExtractor sends the text of a local OCR transcript through any
//   langchaingo model.
//
// The model's answer is returned as free-form text; nothing here interprets it.
package certs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	lcmistral "github.com/tmc/langchaingo/llms/mistral"
	"go.uber.org/zap"
)

// DefaultPrompt is the instruction sent with every document. The
// certificates are Russian, so the instruction is too.
const DefaultPrompt = "Ты ассистент, который помогает анализировать PDF-документы. " +
	"Пожалуйста, найди ВСЕ СЕРТИФИКАТЫ КАЧЕСТВА в документе. " +
	"Затем из каждого сертификата выдели СЕРТИФИЦИРУЕМЫЕ МАТЕРИАЛЫ. " +
	"Выведи результат в виде нумерованного списка:" +
	"\n\n1. Название сертификата\n   - Материал 1\n   - Материал 2 и т.д."

// ErrEmptyAnswer is returned when the model answers with no text.
var ErrEmptyAnswer = errors.New("model returned an empty answer")

// DocumentHost makes a local document reachable by the model.
type DocumentHost interface {
	Upload(ctx context.Context, path string) (url string, err error)
}

// Completer runs one prompt against a hosted document.
type Completer interface {
	Complete(ctx context.Context, prompt, documentURL string) (string, error)
}

// Extractor runs the prompt against an uploaded document.
type Extractor struct {
	Host      DocumentHost
	Completer Completer
	Prompt    string // DefaultPrompt when empty
	Logger    *zap.Logger
}

// Extract uploads the PDF at path and returns the model's answer.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	log := e.Logger
	if log == nil {
		log = zap.NewNop()
	}

	url, err := e.Host.Upload(ctx, path)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	log.Info("document uploaded", zap.String("path", path))

	answer, err := e.Completer.Complete(ctx, promptOrDefault(e.Prompt), url)
	if err != nil {
		return "", fmt.Errorf("extract certificates: %w", err)
	}
	if strings.TrimSpace(answer) == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}

// TranscriptExtractor runs the prompt over transcript text with a
// langchaingo model.
type TranscriptExtractor struct {
	Model   llms.Model
	Prompt  string // DefaultPrompt when empty
	Options []llms.CallOption
}

// NewMistralModel returns a langchaingo Mistral chat model.
func NewMistralModel(apiKey, model string) (llms.Model, error) {
	opts := []lcmistral.Option{lcmistral.WithAPIKey(apiKey)}
	if model != "" {
		opts = append(opts, lcmistral.WithModel(model))
	}
	llm, err := lcmistral.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("mistral model: %w", err)
	}
	return llm, nil
}

// Extract returns the model's answer for the given transcript text.
func (e *TranscriptExtractor) Extract(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", fmt.Errorf("empty transcript")
	}
	prompt := promptOrDefault(e.Prompt) + "\n\nDocument:\n\n" + transcript

	answer, err := llms.GenerateFromSinglePrompt(ctx, e.Model, prompt, e.Options...)
	if err != nil {
		return "", fmt.Errorf("extract certificates: %w", err)
	}
	if strings.TrimSpace(answer) == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}

// ExtractFile reads a transcript written by the pipeline and extracts from it.
func (e *TranscriptExtractor) ExtractFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return e.Extract(ctx, string(data))
}

func promptOrDefault(p string) string {
	if strings.TrimSpace(p) == "" {
		return DefaultPrompt
	}
	return p
}
