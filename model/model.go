/*
Package model defines the pluggable processing capability.

PURPOSE:
  A Model is a unit-of-work executor with a three-stage pipeline:
  preprocess the raw input, predict on the prepared form, postprocess
  the prediction into the final string. Process composes the stages and
  is the only entry point the workflow uses; every stage failure comes
  back as a *ProcessingError.

KEY TYPES:
  Model:           the pipeline interface, with name/version/cost metadata
  Prepared:        output of Preprocess
  Prediction:      output of Predict
  ProcessingError: structured failure wrapping the stage error

COST:
  Cost() is read once when a request is constructed. Changing a model's
  cost later must not affect requests already in flight, so the workflow
  snapshots it into the request record.

SEE ALSO:
  - summarizer.go: the truncation summarizer implementation
  - workflow: the caller driving charge/process/refund
*/
package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MODEL - Three-stage processing pipeline
// =============================================================================

// Model is a pluggable processing capability.
type Model interface {
	// Name identifies the model (e.g., "text-summarizer").
	Name() string

	// Version of the model implementation.
	Version() string

	// Cost is the per-request price. Read once at request construction.
	Cost() decimal.Decimal

	// Active reports whether the model accepts work.
	Active() bool

	// Preprocess validates and normalizes the raw input.
	Preprocess(input string) (*Prepared, error)

	// Predict runs the model on the prepared input.
	Predict(p *Prepared) (*Prediction, error)

	// Postprocess turns the prediction into the final output.
	Postprocess(pred *Prediction) (string, error)
}

// Prepared is the normalized input produced by Preprocess.
type Prepared struct {
	Text   string
	Tokens []string
	Length int
}

// Prediction is the raw model output before postprocessing.
type Prediction struct {
	Summary        string
	OriginalLength int
	SummaryLength  int
}

// Process composes the three pipeline stages. Any stage failure is
// returned as a *ProcessingError naming the model.
func Process(m Model, input string) (string, error) {
	if !m.Active() {
		return "", &ProcessingError{Model: m.Name(), Message: "model is not active"}
	}

	prepared, err := m.Preprocess(input)
	if err != nil {
		return "", wrapStage(m, "preprocess", err)
	}
	prediction, err := m.Predict(prepared)
	if err != nil {
		return "", wrapStage(m, "predict", err)
	}
	out, err := m.Postprocess(prediction)
	if err != nil {
		return "", wrapStage(m, "postprocess", err)
	}
	return out, nil
}

func wrapStage(m Model, stage string, err error) error {
	var perr *ProcessingError
	if errors.As(err, &perr) {
		return err
	}
	return &ProcessingError{Model: m.Name(), Message: stage + ": " + err.Error(), Err: err}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrProcessing is the sentinel all capability failures unwrap to.
var ErrProcessing = errors.New("processing failed")

// ProcessingError is a capability failure with the originating model
// and a human-readable message.
type ProcessingError struct {
	Model   string
	Message string
	Err     error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("model %s: %s", e.Model, e.Message)
}

func (e *ProcessingError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrProcessing, e.Err}
	}
	return []error{ErrProcessing}
}
