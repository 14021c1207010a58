// Package memory provides an in-memory ledger.Journal for tests and dev runs.
package memory

import (
	"context"
	"sync"

	"github.com/molodkinanr-debug/sci-summ/ledger"
)

// =============================================================================
// MEMORY JOURNAL
// =============================================================================

// Journal keeps recorded transactions in a slice. Append-only.
type Journal struct {
	mu  sync.RWMutex
	txs []ledger.Transaction
}

func New() *Journal {
	return &Journal{}
}

// RecordTransaction appends the transaction.
func (j *Journal) RecordTransaction(_ context.Context, tx ledger.Transaction) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.txs = append(j.txs, tx)
	return nil
}

// Transactions returns a snapshot of everything recorded so far.
func (j *Journal) Transactions() []ledger.Transaction {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]ledger.Transaction, len(j.txs))
	copy(out, j.txs)
	return out
}

// Len returns the number of recorded transactions.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.txs)
}
