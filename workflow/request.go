/*
Package workflow drives the charge/process/settle sequence for a request.

PURPOSE:
  A Request is charged against the user's account, handed to a Model,
  and settled: the result is stored on success, the charge is refunded
  on failure. Whatever happens, the request lands in the user's History
  exactly once with a terminal status.

KEY CONCEPTS IN THIS FILE (request.go):
  - Status: pending -> processing -> {success, error, insufficient_funds}
  - Request: one unit of work with its snapshotted cost and outcome

SEE ALSO:
  - workflow.go: the state machine
  - history.go: the per-user request log
  - system.go: the orchestrator exposing Submit
*/
package workflow

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/molodkinanr-debug/sci-summ/ledger"
	"github.com/molodkinanr-debug/sci-summ/model"
)

// =============================================================================
// STATUS - Request state machine
// =============================================================================

type Status string

const (
	StatusPending           Status = "pending"
	StatusProcessing        Status = "processing"
	StatusSuccess           Status = "success"
	StatusError             Status = "error"
	StatusInsufficientFunds Status = "insufficient_funds"
)

// Terminal reports whether no further transition can occur.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusError || s == StatusInsufficientFunds
}

// =============================================================================
// REQUEST - One unit of processing work
// =============================================================================

type RequestID string

// Request records a single processing request and its outcome.
//
// Cost is snapshotted from the model at construction time: later cost
// changes on the model must not affect a request already in flight.
//
// Only the workflow that owns a Request mutates it, and never after it
// reaches a terminal status. Once added to a History the record is
// frozen; History hands out the same pointers, so outside mutation
// would desynchronize history from ledger state.
type Request struct {
	ID           RequestID
	UserID       ledger.UserID
	DocumentName string
	ModelName    string
	ModelVersion string
	Cost         decimal.Decimal

	Status       Status
	Result       string     // set only on success
	ErrorMessage string     // set only on error / insufficient funds
	CreatedAt    time.Time
	ProcessedAt  *time.Time // set only on success
}

// NewRequest builds a pending request for user against doc and m,
// snapshotting the model's current cost.
func NewRequest(user ledger.UserID, doc model.Document, m model.Model, clock ledger.Clock) *Request {
	return &Request{
		ID:           RequestID(uuid.NewString()),
		UserID:       user,
		DocumentName: doc.DocumentName(),
		ModelName:    m.Name(),
		ModelVersion: m.Version(),
		Cost:         m.Cost(),
		Status:       StatusPending,
		CreatedAt:    clock.Now(),
	}
}

func (r *Request) markInsufficientFunds(message string) {
	r.Status = StatusInsufficientFunds
	r.ErrorMessage = message
}

func (r *Request) markError(message string) {
	r.Status = StatusError
	r.ErrorMessage = message
}

func (r *Request) markSuccess(result string, at time.Time) {
	r.Status = StatusSuccess
	r.Result = result
	r.ProcessedAt = &at
}
