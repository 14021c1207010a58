/*
ledger.go - Account balances and the append-only transaction log

PURPOSE:
  Implements the account operations: create, deposit, withdraw, charge,
  refund, balance queries and history snapshots. Every balance change
  appends exactly one Transaction; no call ever alters or removes an
  existing record.

CRITICAL INVARIANTS:
  1. Balance is never negative: Withdraw/Charge return false instead.
  2. One transaction per mutation, appended atomically with it.
  3. Unknown users read as zero balance. Not an error.
  4. Refund is a deposit tagged as refund. The ledger does not verify a
     matching prior charge; callers pair them via the description.

CONCURRENCY:
  All mutations and reads for one account serialize on a per-account
  mutex, so a funds check immediately followed by a charge cannot
  interleave with another debit on the same account inside the ledger.
  Accounts of different users proceed fully in parallel. The global log
  has its own lock; history reads return copies.

EXAMPLE FLOW:
  1. User deposits 100:           TxDeposit +100
  2. Request charged 15:          TxPayment -15
  3. Processing fails, refund 15: TxRefund  +15

  History: [+100, -15, +15], balance 100.

SEE ALSO:
  - journal.go: durable write-through
  - workflow: the charge/refund caller
*/
package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEDGER
// =============================================================================

// Ledger owns all accounts and the transaction log.
type Ledger struct {
	mu       sync.RWMutex // guards the accounts map
	accounts map[UserID]*account

	logMu sync.RWMutex
	log   []Transaction

	journal Journal // may be nil: memory-only ledger
	clock   Clock
}

// account serializes every balance read and write for one user.
type account struct {
	mu      sync.Mutex
	balance decimal.Decimal
}

// New creates a memory-only ledger with the system clock.
func New() *Ledger {
	return NewWith(nil, SystemClock{})
}

// NewWith creates a ledger with a durable journal and an injectable clock.
// A nil journal is valid and keeps the ledger memory-only.
func NewWith(journal Journal, clock Clock) *Ledger {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Ledger{
		accounts: make(map[UserID]*account),
		journal:  journal,
		clock:    clock,
	}
}

// =============================================================================
// ACCOUNT LIFECYCLE
// =============================================================================

// CreateAccount registers a new account with the given starting balance.
// The starting balance is not a transaction: the log explains every change
// relative to it.
func (l *Ledger) CreateAccount(user UserID, initialBalance decimal.Decimal) error {
	if initialBalance.IsNegative() {
		return &InvalidAmountError{Op: "create account", Amount: initialBalance}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.accounts[user]; exists {
		return &DuplicateAccountError{UserID: user}
	}
	l.accounts[user] = &account{balance: initialBalance}
	return nil
}

// getOrCreate returns the account for user, creating a zero-balance one
// if absent. Deposits auto-create accounts; debits never do.
func (l *Ledger) getOrCreate(user UserID) *account {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[user]
	if !ok {
		acct = &account{balance: decimal.Zero}
		l.accounts[user] = acct
	}
	return acct
}

func (l *Ledger) lookup(user UserID) *account {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.accounts[user]
}

// =============================================================================
// READS
// =============================================================================

// Balance returns the current balance. Unknown users read as zero.
func (l *Ledger) Balance(user UserID) decimal.Decimal {
	acct := l.lookup(user)
	if acct == nil {
		return decimal.Zero
	}
	acct.mu.Lock()
	defer acct.mu.Unlock()
	return acct.balance
}

// HasSufficientBalance reports whether user can cover amount.
// Callers that act on the answer must still handle a false return from
// the subsequent debit: the balance may drop in between.
func (l *Ledger) HasSufficientBalance(user UserID, amount decimal.Decimal) bool {
	return l.Balance(user).GreaterThanOrEqual(amount)
}

// TransactionHistory returns a snapshot of the full log, in append order.
func (l *Ledger) TransactionHistory() []Transaction {
	l.logMu.RLock()
	defer l.logMu.RUnlock()

	out := make([]Transaction, len(l.log))
	copy(out, l.log)
	return out
}

// TransactionHistoryFor returns a snapshot of one user's transactions,
// in append order.
func (l *Ledger) TransactionHistoryFor(user UserID) []Transaction {
	l.logMu.RLock()
	defer l.logMu.RUnlock()

	var out []Transaction
	for _, tx := range l.log {
		if tx.UserID == user {
			out = append(out, tx)
		}
	}
	return out
}

// Stats returns aggregate counts for reporting.
func (l *Ledger) Stats() Stats {
	l.mu.RLock()
	total := decimal.Zero
	accounts := len(l.accounts)
	accts := make([]*account, 0, accounts)
	for _, a := range l.accounts {
		accts = append(accts, a)
	}
	l.mu.RUnlock()

	for _, a := range accts {
		a.mu.Lock()
		total = total.Add(a.balance)
		a.mu.Unlock()
	}

	l.logMu.RLock()
	txs := len(l.log)
	l.logMu.RUnlock()

	return Stats{TotalAccounts: accounts, TotalBalance: total, TotalTransactions: txs}
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Deposit credits amount to user, creating the account if absent.
func (l *Ledger) Deposit(ctx context.Context, user UserID, amount decimal.Decimal, description string) error {
	return l.credit(ctx, user, amount, TxDeposit, "deposit", description)
}

// Refund credits amount to user as compensation for a failed charge.
// The ledger does not verify a matching prior payment; the description
// should name the request being compensated.
func (l *Ledger) Refund(ctx context.Context, user UserID, amount decimal.Decimal, description string) error {
	return l.credit(ctx, user, amount, TxRefund, "refund", description)
}

// Withdraw debits amount from user. Returns false without mutating
// anything when the balance is insufficient.
func (l *Ledger) Withdraw(ctx context.Context, user UserID, amount decimal.Decimal, description string) (bool, error) {
	return l.debit(ctx, user, amount, TxWithdrawal, "withdraw", description)
}

// Charge debits amount from user as payment for a processing request.
// Same semantics as Withdraw; the transaction is tagged as a payment.
func (l *Ledger) Charge(ctx context.Context, user UserID, amount decimal.Decimal, description string) (bool, error) {
	return l.debit(ctx, user, amount, TxPayment, "charge", description)
}

func (l *Ledger) credit(ctx context.Context, user UserID, amount decimal.Decimal, typ TransactionType, op, description string) error {
	if !amount.IsPositive() {
		return &InvalidAmountError{Op: op, Amount: amount}
	}

	acct := l.getOrCreate(user)
	acct.mu.Lock()
	defer acct.mu.Unlock()

	if err := l.record(ctx, l.newTransaction(user, amount, typ, description)); err != nil {
		return err
	}
	acct.balance = acct.balance.Add(amount)
	return nil
}

func (l *Ledger) debit(ctx context.Context, user UserID, amount decimal.Decimal, typ TransactionType, op, description string) (bool, error) {
	if !amount.IsPositive() {
		return false, &InvalidAmountError{Op: op, Amount: amount}
	}

	acct := l.lookup(user)
	if acct == nil {
		// Unknown user: zero balance, nothing to debit.
		return false, nil
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()

	if acct.balance.LessThan(amount) {
		return false, nil
	}
	if err := l.record(ctx, l.newTransaction(user, amount, typ, description)); err != nil {
		return false, err
	}
	acct.balance = acct.balance.Sub(amount)
	return true, nil
}

func (l *Ledger) newTransaction(user UserID, amount decimal.Decimal, typ TransactionType, description string) Transaction {
	return Transaction{
		ID:          NewTransactionID(),
		UserID:      user,
		Amount:      amount,
		Type:        typ,
		Description: description,
		CreatedAt:   l.clock.Now(),
	}
}

// record journals the transaction first, then appends it to the memory
// log. A journal failure aborts the operation before any balance change.
func (l *Ledger) record(ctx context.Context, tx Transaction) error {
	if l.journal != nil {
		if err := l.journal.RecordTransaction(ctx, tx); err != nil {
			return fmt.Errorf("%w: %v", ErrJournalFailed, err)
		}
	}

	l.logMu.Lock()
	l.log = append(l.log, tx)
	l.logMu.Unlock()
	return nil
}
