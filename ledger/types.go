/*
Package ledger owns user account balances and the transaction log.

PURPOSE:
  The Ledger is the only component allowed to mutate balances. Every
  balance change appends exactly one immutable Transaction, so the log
  can always explain how a balance got to its current value.

KEY CONCEPTS IN THIS FILE (types.go):
  - UserID/TransactionID: type-safe identifiers
  - TransactionType: deposit, withdrawal, payment, refund
  - Transaction: an immutable log entry recording one balance change

DESIGN PRINCIPLES:
  1. Append-only: transactions are never updated or deleted
  2. Precision: decimal.Decimal for money, never float64
  3. Exclusivity: balances change only through Ledger methods

SEE ALSO:
  - ledger.go: balance operations and per-account locking
  - journal.go: optional durable write-through
*/
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string

type TransactionID string

// NewTransactionID generates a unique transaction id.
func NewTransactionID() TransactionID {
	return TransactionID(uuid.NewString())
}

// =============================================================================
// TRANSACTION - Atomic change to an account balance
// =============================================================================

type TransactionType string

const (
	TxDeposit    TransactionType = "deposit"    // User tops up the account
	TxWithdrawal TransactionType = "withdrawal" // User takes funds out
	TxPayment    TransactionType = "payment"    // Charge for a processing request
	TxRefund     TransactionType = "refund"     // Compensation for a failed request
)

// Credits reports whether this transaction type increases the balance.
func (t TransactionType) Credits() bool {
	return t == TxDeposit || t == TxRefund
}

// Debits reports whether this transaction type decreases the balance.
func (t TransactionType) Debits() bool {
	return t == TxWithdrawal || t == TxPayment
}

// Transaction is one immutable entry in the ledger log.
// Amount is always positive; Type determines the sign of the balance change.
type Transaction struct {
	ID          TransactionID
	UserID      UserID
	Amount      decimal.Decimal
	Type        TransactionType
	Description string
	CreatedAt   time.Time
}

// Delta returns the signed balance change this transaction represents.
func (tx Transaction) Delta() decimal.Decimal {
	if tx.Type.Debits() {
		return tx.Amount.Neg()
	}
	return tx.Amount
}

// =============================================================================
// STATS - Aggregate view over the whole ledger
// =============================================================================

// Stats summarizes the ledger for reporting endpoints.
type Stats struct {
	TotalAccounts     int
	TotalBalance      decimal.Decimal
	TotalTransactions int
}
