package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molodkinanr-debug/sci-summ/ledger"
	"github.com/molodkinanr-debug/sci-summ/store/sqlite"
	"github.com/molodkinanr-debug/sci-summ/workflow"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	// A file-backed database: ":memory:" gives every pooled connection
	// its own empty database.
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

var testTime = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func testUser(id, username string) sqlite.User {
	return sqlite.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$10$hash",
		FullName:     "Test User",
		IsActive:     true,
		CreatedAt:    testTime,
	}
}

// =============================================================================
// USERS
// =============================================================================

func TestStore_CreateAndGetUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("u-1", "alice")))

	byName, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, "u-1", byName.ID)
	assert.Equal(t, "alice@example.com", byName.Email)
	assert.True(t, byName.IsActive)
	assert.False(t, byName.IsAdmin)
	assert.True(t, byName.CreatedAt.Equal(testTime))

	byID, err := store.GetUserByID(ctx, "u-1")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "alice", byID.Username)
}

func TestStore_GetUser_Missing_ReturnsNil(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.GetUserByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestStore_CreateUser_DuplicateUsername(t *testing.T) {
	// GIVEN: An existing user alice
	// WHEN: Inserting another alice (different id and email)
	// THEN: ErrUserExists

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("u-1", "alice")))

	dup := testUser("u-2", "alice")
	dup.Email = "other@example.com"
	assert.ErrorIs(t, store.CreateUser(ctx, dup), sqlite.ErrUserExists)
}

func TestStore_CreateUser_DuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("u-1", "alice")))

	dup := testUser("u-2", "bob")
	dup.Email = "alice@example.com"
	assert.ErrorIs(t, store.CreateUser(ctx, dup), sqlite.ErrUserExists)
}

func TestStore_ListUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := testUser("u-1", "alice")
	b := testUser("u-2", "bob")
	b.CreatedAt = testTime.Add(time.Minute)
	require.NoError(t, store.CreateUser(ctx, a))
	require.NoError(t, store.CreateUser(ctx, b))

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}

// =============================================================================
// TRANSACTION JOURNAL
// =============================================================================

func TestStore_TransactionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tx := ledger.Transaction{
		ID:          "t-1",
		UserID:      "alice",
		Amount:      decimal.RequireFromString("12.50"),
		Type:        ledger.TxDeposit,
		Description: "signup bonus",
		CreatedAt:   testTime,
	}
	require.NoError(t, store.RecordTransaction(ctx, tx))

	loaded, err := store.LoadTransactions(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	assert.Equal(t, tx.ID, loaded[0].ID)
	assert.Equal(t, tx.UserID, loaded[0].UserID)
	assert.True(t, loaded[0].Amount.Equal(tx.Amount), "decimal amount survives the round trip exactly")
	assert.Equal(t, ledger.TxDeposit, loaded[0].Type)
	assert.Equal(t, "signup bonus", loaded[0].Description)
	assert.True(t, loaded[0].CreatedAt.Equal(testTime))
}

func TestStore_LoadTransactions_FiltersByUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, user := range []ledger.UserID{"alice", "bob", "alice"} {
		require.NoError(t, store.RecordTransaction(ctx, ledger.Transaction{
			ID:        ledger.TransactionID(string(rune('a' + i))),
			UserID:    user,
			Amount:    decimal.NewFromInt(1),
			Type:      ledger.TxDeposit,
			CreatedAt: testTime.Add(time.Duration(i) * time.Second),
		}))
	}

	alice, err := store.LoadTransactions(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, alice, 2)

	all, err := store.LoadTransactions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_JournalsALiveLedger(t *testing.T) {
	// GIVEN: A ledger journaling through the store
	// WHEN: Depositing and charging
	// THEN: The journal matches the ledger's own log

	store := newTestStore(t)
	ctx := context.Background()

	l := ledger.NewWith(store, nil)
	require.NoError(t, l.Deposit(ctx, "alice", decimal.NewFromInt(100), "top up"))
	ok, err := l.Charge(ctx, "alice", decimal.NewFromInt(15), "payment for text-summarizer")
	require.NoError(t, err)
	require.True(t, ok)

	journaled, err := store.LoadTransactions(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, journaled, 2)
	assert.Equal(t, ledger.TxDeposit, journaled[0].Type)
	assert.Equal(t, ledger.TxPayment, journaled[1].Type)
	assert.True(t, l.Balance("alice").Equal(decimal.NewFromInt(85)))
}

// =============================================================================
// REQUEST ARCHIVE
// =============================================================================

func TestStore_RequestRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	processedAt := testTime.Add(2 * time.Second)
	req := &workflow.Request{
		ID:           "r-1",
		UserID:       "alice",
		DocumentName: "paper.pdf",
		ModelName:    "text-summarizer",
		ModelVersion: "1.0",
		Cost:         decimal.NewFromInt(10),
		Status:       workflow.StatusSuccess,
		Result:       "First sentence. Second sentence.",
		CreatedAt:    testTime,
		ProcessedAt:  &processedAt,
	}
	require.NoError(t, store.SaveRequest(ctx, req))

	loaded, err := store.LoadRequests(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, req.ID, got.ID)
	assert.Equal(t, req.DocumentName, got.DocumentName)
	assert.Equal(t, req.ModelName, got.ModelName)
	assert.True(t, got.Cost.Equal(req.Cost))
	assert.Equal(t, workflow.StatusSuccess, got.Status)
	assert.Equal(t, req.Result, got.Result)
	require.NotNil(t, got.ProcessedAt)
	assert.True(t, got.ProcessedAt.Equal(processedAt))
}

func TestStore_RequestArchive_FailedRequest(t *testing.T) {
	// A failed request has no result and no processed-at timestamp.
	store := newTestStore(t)
	ctx := context.Background()

	req := &workflow.Request{
		ID:           "r-2",
		UserID:       "bob",
		DocumentName: "empty.pdf",
		ModelName:    "text-summarizer",
		Cost:         decimal.NewFromInt(10),
		Status:       workflow.StatusError,
		ErrorMessage: "no content available",
		CreatedAt:    testTime,
	}
	require.NoError(t, store.SaveRequest(ctx, req))

	loaded, err := store.LoadRequests(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, workflow.StatusError, loaded[0].Status)
	assert.Equal(t, "no content available", loaded[0].ErrorMessage)
	assert.Empty(t, loaded[0].Result)
	assert.Nil(t, loaded[0].ProcessedAt)
}

func TestStore_LoadRequests_EmptyForUnknownUser(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.LoadRequests(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
