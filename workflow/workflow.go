/*
workflow.go - The charge/process/settle state machine

PURPOSE:
  Runs one request through its lifecycle:

    funds check -> charge -> process -> settle or compensate

  A charge is compensated by a refund on every terminal path except
  SUCCESS and except INSUFFICIENT_FUNDS (where no charge occurred).

TRANSITIONS:
  1. Insufficient balance: INSUFFICIENT_FUNDS, no ledger mutation.
  2. Charge returns false (balance dropped since the check): ERROR
     "failed to withdraw funds". No mutation happened, no refund.
  3. Document has no extractable content: ERROR "no content available",
     refund.
  4. Model failure (including a panic out of the pipeline): ERROR with
     the model's message, refund.
  5. Otherwise: SUCCESS with the result and a processed-at timestamp.

  The request is added to the user's History exactly once on every path.

BEST-EFFORT COMPENSATION:
  A refund that itself fails must not crash the workflow or replace the
  original error. It is logged through zap and the request keeps its
  primary error message.

SEE ALSO:
  - ledger: Charge/Refund semantics
  - model: Process and ProcessingError
*/
package workflow

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/molodkinanr-debug/sci-summ/ledger"
	"github.com/molodkinanr-debug/sci-summ/model"
)

// =============================================================================
// LEDGER DEPENDENCY
// =============================================================================

// Ledger is the slice of ledger behavior the workflow consumes.
// *ledger.Ledger satisfies it. Charge must not mutate any balance when
// it returns an error.
type Ledger interface {
	HasSufficientBalance(user ledger.UserID, amount decimal.Decimal) bool
	Charge(ctx context.Context, user ledger.UserID, amount decimal.Decimal, description string) (bool, error)
	Refund(ctx context.Context, user ledger.UserID, amount decimal.Decimal, description string) error
}

// =============================================================================
// WORKFLOW
// =============================================================================

// Workflow drives requests against a shared ledger.
type Workflow struct {
	Ledger Ledger
	Clock  ledger.Clock
	Logger *zap.Logger
}

// NewWorkflow creates a workflow. A nil logger disables logging.
func NewWorkflow(l Ledger, clock ledger.Clock, logger *zap.Logger) *Workflow {
	if clock == nil {
		clock = ledger.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{Ledger: l, Clock: clock, Logger: logger}
}

// Run executes the state machine for req and records it into history.
// Returns true iff the request ended in SUCCESS. Business failures are
// absorbed into the request's terminal status; Run never returns an
// error.
func (w *Workflow) Run(ctx context.Context, req *Request, doc model.Document, m model.Model, history *History) bool {
	ok := w.run(ctx, req, doc, m)
	history.Add(req)

	w.Logger.Info("request settled",
		zap.String("request_id", string(req.ID)),
		zap.String("user_id", string(req.UserID)),
		zap.String("status", string(req.Status)),
		zap.String("cost", req.Cost.String()),
	)
	return ok
}

func (w *Workflow) run(ctx context.Context, req *Request, doc model.Document, m model.Model) bool {
	// 1. Funds check. No mutation on this path.
	if !w.Ledger.HasSufficientBalance(req.UserID, req.Cost) {
		req.markInsufficientFunds("insufficient funds")
		return false
	}

	// 2. Charge. The balance may have dropped since the check; a false
	// return means nothing was debited.
	charged, err := w.Ledger.Charge(ctx, req.UserID, req.Cost, "payment for "+req.ModelName)
	if err != nil {
		w.Logger.Error("charge failed",
			zap.String("request_id", string(req.ID)),
			zap.Error(err),
		)
		req.markError("failed to withdraw funds")
		return false
	}
	if !charged {
		req.markError("failed to withdraw funds")
		return false
	}

	// Charged from here on: every failure path below must compensate.
	req.Status = StatusProcessing

	// 3. Payload check.
	content, ok := doc.ExtractedContent()
	if !ok {
		req.markError("no content available")
		w.compensate(ctx, req, "no content available")
		return false
	}

	// 4. Execute the capability.
	result, err := w.process(m, content)
	if err != nil {
		req.markError(err.Error())
		w.compensate(ctx, req, err.Error())
		return false
	}

	req.markSuccess(result, w.Clock.Now())
	return true
}

// process runs the model pipeline, converting a panic into a
// ProcessingError so the compensation path still runs.
func (w *Workflow) process(m model.Model, content string) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &model.ProcessingError{
				Model:   m.Name(),
				Message: fmt.Sprintf("panic: %v", r),
			}
		}
	}()
	return model.Process(m, content)
}

// compensate refunds the request's charge. Best-effort: a failed refund
// is logged and the request keeps its primary error.
func (w *Workflow) compensate(ctx context.Context, req *Request, reason string) {
	description := fmt.Sprintf("refund for request %s: %s", req.ID, reason)
	if err := w.Ledger.Refund(ctx, req.UserID, req.Cost, description); err != nil {
		w.Logger.Warn("refund failed during compensation",
			zap.String("request_id", string(req.ID)),
			zap.String("user_id", string(req.UserID)),
			zap.String("cost", req.Cost.String()),
			zap.Error(err),
		)
	}
}
