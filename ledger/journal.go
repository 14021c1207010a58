/*
journal.go - Durable write-through for the transaction log

PURPOSE:
  The Ledger keeps balances and the log in memory. A Journal mirrors
  every transaction to durable storage so the audit trail survives a
  restart. The journal is written BEFORE the balance mutation: if the
  append fails, the operation is aborted and the balance is untouched,
  so memory and storage never disagree about a recorded transaction.

APPEND-ONLY CONTRACT:
  Implementations must be insert-only. No Update, No Delete. Ever.

IMPLEMENTATIONS:
  - store/sqlite: production journal plus user storage
  - store/memory: in-memory journal for tests and dev

SEE ALSO:
  - ledger.go: the write path calling RecordTransaction
*/
package ledger

import "context"

// Journal persists transactions as they are appended to the ledger.
type Journal interface {
	// RecordTransaction durably appends one transaction.
	// This is the ONLY write operation.
	RecordTransaction(ctx context.Context, tx Transaction) error
}
