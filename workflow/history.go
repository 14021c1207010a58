/*
history.go - Per-user append-only request log

PURPOSE:
  Records every request a user submitted, in insertion order, for audit
  and reporting. Independent of the ledger's own transaction log: the
  two describe the same events from different angles and are reconciled
  only by both being written before Submit returns.
*/
package workflow

import "sync"

// =============================================================================
// HISTORY - Ordered, append-only, queryable
// =============================================================================

// History is one user's request log. Append-only; records are never
// removed or reordered.
type History struct {
	mu      sync.RWMutex
	records []*Request
}

func NewHistory() *History {
	return &History{}
}

// Add appends a record. O(1).
func (h *History) Add(r *Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
}

// Len returns the number of recorded requests.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// List returns the most recent limit records in insertion order, as an
// independent slice. limit <= 0 returns everything.
func (h *History) List(limit int) []*Request {
	h.mu.RLock()
	defer h.mu.RUnlock()

	start := 0
	if limit > 0 && len(h.records) > limit {
		start = len(h.records) - limit
	}
	out := make([]*Request, len(h.records)-start)
	copy(out, h.records[start:])
	return out
}

// FilterByStatus returns the records with the given status, in order.
func (h *History) FilterByStatus(status Status) []*Request {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []*Request
	for _, r := range h.records {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// Successful returns the records that completed successfully.
func (h *History) Successful() []*Request {
	return h.FilterByStatus(StatusSuccess)
}
