package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molodkinanr-debug/sci-summ/ledger"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

func newTestLedger() *ledger.Ledger {
	return ledger.NewWith(nil, fixedClock{at: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)})
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// failingJournal rejects every append.
type failingJournal struct{}

func (failingJournal) RecordTransaction(context.Context, ledger.Transaction) error {
	return errors.New("disk full")
}

// =============================================================================
// ACCOUNT LIFECYCLE
// =============================================================================

func TestLedger_CreateAccount_Duplicate_Rejected(t *testing.T) {
	// GIVEN: An account for alice
	// WHEN: Creating alice again
	// THEN: DuplicateAccountError

	l := newTestLedger()
	require.NoError(t, l.CreateAccount("alice", dec(100)))

	err := l.CreateAccount("alice", dec(0))
	assert.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrDuplicateAccount)

	var dup *ledger.DuplicateAccountError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, ledger.UserID("alice"), dup.UserID)
}

func TestLedger_CreateAccount_NegativeInitialBalance_Rejected(t *testing.T) {
	l := newTestLedger()
	err := l.CreateAccount("alice", dec(-1))
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

func TestLedger_Balance_UnknownUser_IsZero(t *testing.T) {
	// Unknown users are zero-balance, not an error condition.
	l := newTestLedger()
	assert.True(t, l.Balance("nobody").IsZero())
	assert.False(t, l.HasSufficientBalance("nobody", dec(1)))
	assert.True(t, l.HasSufficientBalance("nobody", dec(0)))
}

// =============================================================================
// MUTATIONS
// =============================================================================

func TestLedger_Deposit_CreatesAccountAndRecordsTransaction(t *testing.T) {
	// GIVEN: No account for bob
	// WHEN: Depositing 50
	// THEN: Account exists with balance 50 and one deposit transaction

	l := newTestLedger()
	ctx := context.Background()

	require.NoError(t, l.Deposit(ctx, "bob", dec(50), "signup bonus"))

	assert.True(t, l.Balance("bob").Equal(dec(50)))

	txs := l.TransactionHistoryFor("bob")
	require.Len(t, txs, 1)
	assert.Equal(t, ledger.TxDeposit, txs[0].Type)
	assert.True(t, txs[0].Amount.Equal(dec(50)))
	assert.Equal(t, "signup bonus", txs[0].Description)
	assert.NotEmpty(t, txs[0].ID)
}

func TestLedger_Deposit_NonPositiveAmount_Rejected(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	assert.ErrorIs(t, l.Deposit(ctx, "bob", dec(0), ""), ledger.ErrInvalidAmount)
	assert.ErrorIs(t, l.Deposit(ctx, "bob", dec(-5), ""), ledger.ErrInvalidAmount)

	// No account was created, no transaction recorded.
	assert.True(t, l.Balance("bob").IsZero())
	assert.Empty(t, l.TransactionHistory())
}

func TestLedger_Withdraw_Insufficient_NoMutationNoError(t *testing.T) {
	// GIVEN: bob has 5
	// WHEN: Withdrawing 10
	// THEN: false, balance unchanged, no transaction

	l := newTestLedger()
	ctx := context.Background()
	require.NoError(t, l.Deposit(ctx, "bob", dec(5), ""))

	ok, err := l.Withdraw(ctx, "bob", dec(10), "too much")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, l.Balance("bob").Equal(dec(5)))
	assert.Len(t, l.TransactionHistoryFor("bob"), 1) // just the deposit
}

func TestLedger_Withdraw_NeverGoesNegative(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()
	require.NoError(t, l.Deposit(ctx, "bob", dec(10), ""))

	ok, err := l.Withdraw(ctx, "bob", dec(10), "")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Withdraw(ctx, "bob", dec(1), "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, l.Balance("bob").IsZero())
}

func TestLedger_Charge_TaggedAsPayment(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()
	require.NoError(t, l.Deposit(ctx, "carol", dec(100), ""))

	ok, err := l.Charge(ctx, "carol", dec(15), "payment for text-summarizer")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, l.Balance("carol").Equal(dec(85)))

	txs := l.TransactionHistoryFor("carol")
	require.Len(t, txs, 2)
	assert.Equal(t, ledger.TxPayment, txs[1].Type)
}

func TestLedger_Refund_TaggedAsRefund_NoPriorChargeRequired(t *testing.T) {
	// The ledger does not verify a matching prior charge.
	l := newTestLedger()
	ctx := context.Background()

	require.NoError(t, l.Refund(ctx, "dave", dec(7), "refund for request r-1"))
	assert.True(t, l.Balance("dave").Equal(dec(7)))

	txs := l.TransactionHistoryFor("dave")
	require.Len(t, txs, 1)
	assert.Equal(t, ledger.TxRefund, txs[0].Type)
}

// =============================================================================
// BALANCE CONSERVATION
// =============================================================================

func TestLedger_BalanceConservation(t *testing.T) {
	// For any sequence of operations:
	// balance == initial + deposits + refunds - withdrawals - payments

	l := newTestLedger()
	ctx := context.Background()
	require.NoError(t, l.CreateAccount("eve", dec(20)))

	require.NoError(t, l.Deposit(ctx, "eve", dec(100), ""))
	ok, err := l.Withdraw(ctx, "eve", dec(30), "")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = l.Charge(ctx, "eve", dec(25), "")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, l.Refund(ctx, "eve", dec(25), ""))

	expected := dec(20)
	for _, tx := range l.TransactionHistoryFor("eve") {
		expected = expected.Add(tx.Delta())
	}
	assert.True(t, l.Balance("eve").Equal(expected))
	assert.True(t, l.Balance("eve").Equal(dec(90)))
}

// =============================================================================
// HISTORY SNAPSHOTS
// =============================================================================

func TestLedger_TransactionHistory_IsSnapshot(t *testing.T) {
	// GIVEN: A history snapshot taken before further mutations
	// THEN: The snapshot does not change

	l := newTestLedger()
	ctx := context.Background()
	require.NoError(t, l.Deposit(ctx, "frank", dec(10), ""))

	snapshot := l.TransactionHistory()
	require.NoError(t, l.Deposit(ctx, "frank", dec(10), ""))

	assert.Len(t, snapshot, 1)
	assert.Len(t, l.TransactionHistory(), 2)
}

func TestLedger_TransactionHistoryFor_FiltersByUser(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()
	require.NoError(t, l.Deposit(ctx, "a", dec(1), ""))
	require.NoError(t, l.Deposit(ctx, "b", dec(2), ""))
	require.NoError(t, l.Deposit(ctx, "a", dec(3), ""))

	assert.Len(t, l.TransactionHistoryFor("a"), 2)
	assert.Len(t, l.TransactionHistoryFor("b"), 1)
	assert.Len(t, l.TransactionHistory(), 3)
}

// =============================================================================
// JOURNAL WRITE-THROUGH
// =============================================================================

func TestLedger_JournalFailure_AbortsBeforeBalanceChange(t *testing.T) {
	// GIVEN: A journal that rejects every append
	// WHEN: Depositing and charging
	// THEN: Operations fail and balances stay untouched

	l := ledger.NewWith(failingJournal{}, nil)
	ctx := context.Background()

	err := l.Deposit(ctx, "gina", dec(10), "")
	assert.ErrorIs(t, err, ledger.ErrJournalFailed)
	assert.True(t, l.Balance("gina").IsZero())
	assert.Empty(t, l.TransactionHistory())
}

// =============================================================================
// CONCURRENCY
// =============================================================================

func TestLedger_ConcurrentMutations_SameAccount_Conserved(t *testing.T) {
	// 50 deposits of 2 and 50 withdrawals of 1, concurrently.
	// Final balance must be exactly 50 and no withdrawal may overdraw.

	l := newTestLedger()
	ctx := context.Background()
	require.NoError(t, l.CreateAccount("hank", dec(0)))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = l.Deposit(ctx, "hank", dec(2), "")
		}()
		go func() {
			defer wg.Done()
			_, _ = l.Withdraw(ctx, "hank", dec(1), "")
		}()
	}
	wg.Wait()

	balance := l.Balance("hank")
	assert.False(t, balance.IsNegative(), "balance must never go negative")

	expected := dec(0)
	for _, tx := range l.TransactionHistoryFor("hank") {
		expected = expected.Add(tx.Delta())
	}
	assert.True(t, balance.Equal(expected), "balance %s must equal transaction sum %s", balance, expected)
}

func TestLedger_ConcurrentDeposits_DifferentAccounts(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	var wg sync.WaitGroup
	users := []ledger.UserID{"u1", "u2", "u3", "u4"}
	for _, u := range users {
		for i := 0; i < 25; i++ {
			wg.Add(1)
			go func(u ledger.UserID) {
				defer wg.Done()
				_ = l.Deposit(ctx, u, dec(1), "")
			}(u)
		}
	}
	wg.Wait()

	for _, u := range users {
		assert.True(t, l.Balance(u).Equal(dec(25)))
	}
	assert.Equal(t, 100, l.Stats().TotalTransactions)
}
