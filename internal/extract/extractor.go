// Package extract turns one review into standardized feedback points:
// the Extractor asks the model, the Cleaner filters its output and the
// Standardizer maps each surviving line to a canonical label.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/reviewinsights/internal/llm"
	"github.com/ppiankov/reviewinsights/internal/taxonomy"
)

// ExtractorOptions are the sampling settings for feedback extraction
type ExtractorOptions struct {
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
	Categories  []string // listed in the prompt; defaults to the standard taxonomy
}

// DefaultExtractorOptions returns near-deterministic sampling with a short
// output budget
func DefaultExtractorOptions() ExtractorOptions {
	return ExtractorOptions{
		Temperature: 0.1,
		TopP:        0.85,
		MaxTokens:   100,
		Categories:  taxonomy.Default().Categories,
	}
}

// Extractor produces raw, untrusted feedback text for one review
type Extractor struct {
	gen  llm.Generator
	opts ExtractorOptions
}

// NewExtractor creates an extractor backed by gen
func NewExtractor(gen llm.Generator, opts ExtractorOptions) *Extractor {
	if len(opts.Categories) == 0 {
		opts.Categories = taxonomy.Default().Categories
	}
	return &Extractor{gen: gen, opts: opts}
}

const extractionPrompt = `Extract 3-4 key feedback points from this review.

Use ONLY these categories:
%s

Format: "Category: detail"

Examples:
"Food was cold and service slow" → 1. Food Quality: temperature 2. Service: speed
"Great atmosphere but pricey" → 1. Ambiance: atmosphere 2. Value: pricing

Review: "%s"

Feedback points:`

// Prompt renders the extraction prompt for a review
func (e *Extractor) Prompt(text string) string {
	var categories strings.Builder
	for i, c := range e.opts.Categories {
		if i > 0 {
			categories.WriteString("\n")
		}
		categories.WriteString("- " + c)
	}
	return fmt.Sprintf(extractionPrompt, categories.String(), text)
}

// Extract returns the model's raw feedback points for text.
// Blank text yields "" without a model call. Model errors are returned
// as-is to the caller, unretried.
func (e *Extractor) Extract(ctx context.Context, text string) (string, error) {
	if IsBlank(text) {
		return "", nil
	}

	resp, err := e.gen.Generate(ctx, llm.GenerateRequest{
		Model:       e.opts.Model,
		Prompt:      e.Prompt(text),
		Temperature: e.opts.Temperature,
		TopP:        e.opts.TopP,
		MaxTokens:   e.opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("extract feedback: %w", err)
	}
	return resp.Text, nil
}

// IsBlank reports whether review text carries nothing to analyze.
// Spreadsheet exports write missing cells as "nan".
func IsBlank(text string) bool {
	t := strings.TrimSpace(text)
	return t == "" || strings.EqualFold(t, "nan")
}
