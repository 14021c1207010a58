/*
errors.go - Centralized error types for the ledger

PURPOSE:
  All ledger error types in one place. Invalid-argument errors
  (non-positive amounts, duplicate accounts) are programmer errors and
  propagate to the caller. Insufficient funds is NOT an error here: it
  is an expected outcome, reported as a false return from Withdraw and
  Charge so callers are forced to handle it.

USAGE:
  if errors.Is(err, ledger.ErrInvalidAmount) {
      // reject the request as bad input
  }

SEE ALSO:
  - ledger.go: where these are returned
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidAmount is returned when a deposit, withdrawal, charge or
	// refund is attempted with a non-positive amount, or an account is
	// created with a negative initial balance.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrDuplicateAccount is returned when creating an account that
	// already exists.
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrJournalFailed is returned when the durable journal rejects a
	// transaction. The balance is left untouched in that case.
	ErrJournalFailed = errors.New("journal append failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidAmountError reports which operation received which bad amount.
type InvalidAmountError struct {
	Op     string
	Amount decimal.Decimal
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("%s: amount must be positive, got %s", e.Op, e.Amount)
}

func (e *InvalidAmountError) Unwrap() error { return ErrInvalidAmount }

// DuplicateAccountError reports which account already existed.
type DuplicateAccountError struct {
	UserID UserID
}

func (e *DuplicateAccountError) Error() string {
	return fmt.Sprintf("account for user %s already exists", e.UserID)
}

func (e *DuplicateAccountError) Unwrap() error { return ErrDuplicateAccount }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrDuplicateAccount)
}
