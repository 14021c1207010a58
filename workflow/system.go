/*
system.go - Orchestrator: one ledger, one history per user

PURPOSE:
  The System is the single entry point for submitting work. It owns the
  shared ledger reference and the per-user histories (explicit fields,
  created at construction, entries added lazily, never removed) and
  delegates each submission to the Workflow.
*/
package workflow

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/molodkinanr-debug/sci-summ/ledger"
	"github.com/molodkinanr-debug/sci-summ/model"
)

// =============================================================================
// SYSTEM
// =============================================================================

// System coordinates request submissions against the shared ledger.
// Safe for concurrent use.
type System struct {
	workflow *Workflow
	clock    ledger.Clock

	mu        sync.Mutex
	histories map[ledger.UserID]*History
}

// NewSystem creates the orchestrator around l.
func NewSystem(l Ledger, clock ledger.Clock, logger *zap.Logger) *System {
	if clock == nil {
		clock = ledger.SystemClock{}
	}
	return &System{
		workflow:  NewWorkflow(l, clock, logger),
		clock:     clock,
		histories: make(map[ledger.UserID]*History),
	}
}

// HistoryFor returns the user's history, creating it on first access.
// Histories persist for the process lifetime.
func (s *System) HistoryFor(user ledger.UserID) *History {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.histories[user]
	if !ok {
		h = NewHistory()
		s.histories[user] = h
	}
	return h
}

// Submit builds a pending request for doc against m, runs it through
// the workflow, and returns the settled record plus a success flag.
// The record is also queryable afterwards via HistoryFor.
func (s *System) Submit(ctx context.Context, user ledger.UserID, doc model.Document, m model.Model) (*Request, bool) {
	req := NewRequest(user, doc, m, s.clock)
	history := s.HistoryFor(user)
	ok := s.workflow.Run(ctx, req, doc, m, history)
	return req, ok
}
