/*
summarizer.go - Placeholder truncation summarizer

PURPOSE:
  The stand-in capability for scientific article summarization: it keeps
  the first two sentences of the input. Real engineering lives in the
  ledger and workflow; this exists so the pipeline has something to run.

BEHAVIOR:
  Preprocess: reject empty input, trim, cap at MaxInputLength runes.
  Predict:    first two sentences, or the whole text when shorter.
  Postprocess: pass the summary through.
*/
package model

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrEmptyInput is returned by Preprocess for blank input.
var ErrEmptyInput = errors.New("input text cannot be empty")

// =============================================================================
// TRUNCATION SUMMARIZER
// =============================================================================

// TruncationSummarizer summarizes by keeping the leading sentences.
type TruncationSummarizer struct {
	ModelName      string
	ModelVersion   string
	CostPerRequest decimal.Decimal
	MaxInputLength int

	active bool
}

// NewTruncationSummarizer creates an active summarizer.
func NewTruncationSummarizer(name, version string, cost decimal.Decimal, maxInputLength int) *TruncationSummarizer {
	return &TruncationSummarizer{
		ModelName:      name,
		ModelVersion:   version,
		CostPerRequest: cost,
		MaxInputLength: maxInputLength,
		active:         true,
	}
}

func (s *TruncationSummarizer) Name() string          { return s.ModelName }
func (s *TruncationSummarizer) Version() string       { return s.ModelVersion }
func (s *TruncationSummarizer) Cost() decimal.Decimal { return s.CostPerRequest }
func (s *TruncationSummarizer) Active() bool          { return s.active }

// Activate enables the model.
func (s *TruncationSummarizer) Activate() { s.active = true }

// Deactivate stops the model from accepting work. Process then fails
// with a ProcessingError.
func (s *TruncationSummarizer) Deactivate() { s.active = false }

// Preprocess trims the input and caps it at MaxInputLength runes.
func (s *TruncationSummarizer) Preprocess(input string) (*Prepared, error) {
	cleaned := strings.TrimSpace(input)
	if cleaned == "" {
		return nil, ErrEmptyInput
	}

	runes := []rune(cleaned)
	if s.MaxInputLength > 0 && len(runes) > s.MaxInputLength {
		cleaned = string(runes[:s.MaxInputLength])
	}

	return &Prepared{
		Text:   cleaned,
		Tokens: strings.Fields(cleaned),
		Length: len(cleaned),
	}, nil
}

// Predict keeps the first two sentences of the prepared text.
func (s *TruncationSummarizer) Predict(p *Prepared) (*Prediction, error) {
	sentences := strings.Split(p.Text, ".")

	summary := p.Text
	if len(sentences) > 2 {
		summary = strings.TrimSpace(sentences[0]) + ". " + strings.TrimSpace(sentences[1]) + "."
	}

	return &Prediction{
		Summary:        summary,
		OriginalLength: len(p.Text),
		SummaryLength:  len(summary),
	}, nil
}

// Postprocess returns the summary text.
func (s *TruncationSummarizer) Postprocess(pred *Prediction) (string, error) {
	return pred.Summary, nil
}
