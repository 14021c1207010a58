/*
Package sqlite provides SQLite-backed persistence.

PURPOSE:
  Implements the durable side of the service: user records for
  authentication, the append-only transaction journal mirroring the
  ledger, and an archive of settled requests for reporting.

INTERFACES IMPLEMENTED:
  ledger.Journal: transaction write-through

APPEND-ONLY ENFORCEMENT:
  No UPDATE or DELETE is ever issued against the transactions and
  requests tables.

KEY TABLES:
  users:        account holders (unique username and email)
  transactions: immutable mirror of the ledger log
  requests:     settled request records

WAL MODE:
  The database is opened with WAL so readers do not block the writer.

USAGE:
  store, err := sqlite.New("./sci_summ.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  led := ledger.NewWith(store, ledger.SystemClock{})

SEE ALSO:
  - ledger/journal.go: the interface this store implements
  - store/memory: in-memory journal for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/molodkinanr-debug/sci-summ/ledger"
	"github.com/molodkinanr-debug/sci-summ/workflow"
)

// ErrUserExists is returned when the username or email is already taken.
var ErrUserExists = errors.New("username or email already registered")

// Store implements persistence over a single SQLite database.
type Store struct {
	db *sql.DB
}

// New opens (and migrates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Account holders
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	-- Transactions (append-only mirror of the ledger log)
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		tx_type TEXT NOT NULL,
		description TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user
		ON transactions(user_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_type
		ON transactions(tx_type);

	-- Settled requests (append-only archive)
	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		document TEXT,
		model_name TEXT NOT NULL,
		model_version TEXT,
		cost TEXT NOT NULL,
		status TEXT NOT NULL,
		result TEXT,
		error_message TEXT,
		created_at TEXT NOT NULL,
		processed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_requests_user
		ON requests(user_id);
	CREATE INDEX IF NOT EXISTS idx_requests_status
		ON requests(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USERS
// =============================================================================

// User is a registered account holder.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	IsActive     bool
	IsAdmin      bool
	CreatedAt    time.Time
}

// CreateUser inserts a user. Returns ErrUserExists when the username or
// email is already taken.
func (s *Store) CreateUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, full_name, is_active, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FullName, u.IsActive, u.IsAdmin,
		u.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if isUniqueConstraintError(err) {
		return ErrUserExists
	}
	return err
}

// GetUserByUsername returns the user, or nil when not found.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.getUser(ctx, "username = ?", username)
}

// GetUserByID returns the user, or nil when not found.
func (s *Store) GetUserByID(ctx context.Context, id string) (*User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, full_name, is_active, is_admin, created_at
		FROM users WHERE `+where, arg)

	var u User
	var createdAt string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.IsActive, &u.IsAdmin, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &u, nil
}

// ListUsers returns all users ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, email, password_hash, full_name, is_active, is_admin, created_at
		FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		var createdAt string
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.IsActive, &u.IsAdmin, &createdAt); err != nil {
			return nil, err
		}
		u.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		users = append(users, u)
	}
	return users, rows.Err()
}

// =============================================================================
// TRANSACTION JOURNAL (ledger.Journal)
// =============================================================================

// RecordTransaction durably appends one ledger transaction.
func (s *Store) RecordTransaction(ctx context.Context, tx ledger.Transaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, amount, tx_type, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(tx.ID), string(tx.UserID), tx.Amount.String(), string(tx.Type),
		tx.Description, tx.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// LoadTransactions returns the journaled transactions for one user, or
// all transactions when user is empty, in append order.
func (s *Store) LoadTransactions(ctx context.Context, user ledger.UserID) ([]ledger.Transaction, error) {
	query := `SELECT id, user_id, amount, tx_type, description, created_at FROM transactions`
	args := []any{}
	if user != "" {
		query += ` WHERE user_id = ?`
		args = append(args, string(user))
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []ledger.Transaction
	for rows.Next() {
		var tx ledger.Transaction
		var amount, createdAt string
		if err := rows.Scan(&tx.ID, &tx.UserID, &amount, &tx.Type, &tx.Description, &createdAt); err != nil {
			return nil, err
		}
		tx.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount in transaction %s: %w", tx.ID, err)
		}
		tx.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// =============================================================================
// REQUEST ARCHIVE
// =============================================================================

// SaveRequest archives a settled request.
func (s *Store) SaveRequest(ctx context.Context, r *workflow.Request) error {
	var processedAt any
	if r.ProcessedAt != nil {
		processedAt = r.ProcessedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO requests (id, user_id, document, model_name, model_version, cost, status, result, error_message, created_at, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(r.ID), string(r.UserID), r.DocumentName, r.ModelName, r.ModelVersion,
		r.Cost.String(), string(r.Status), r.Result, r.ErrorMessage,
		r.CreatedAt.UTC().Format(time.RFC3339Nano), processedAt,
	)
	return err
}

// LoadRequests returns the archived requests for one user, in creation order.
func (s *Store) LoadRequests(ctx context.Context, user ledger.UserID) ([]workflow.Request, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, document, model_name, model_version, cost, status, result, error_message, created_at, processed_at
		FROM requests WHERE user_id = ? ORDER BY created_at, id`, string(user))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []workflow.Request
	for rows.Next() {
		var r workflow.Request
		var cost, createdAt string
		var processedAt sql.NullString
		if err := rows.Scan(&r.ID, &r.UserID, &r.DocumentName, &r.ModelName, &r.ModelVersion,
			&cost, &r.Status, &r.Result, &r.ErrorMessage, &createdAt, &processedAt); err != nil {
			return nil, err
		}
		r.Cost, err = decimal.NewFromString(cost)
		if err != nil {
			return nil, fmt.Errorf("corrupt cost in request %s: %w", r.ID, err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		if processedAt.Valid {
			t, _ := time.Parse(time.RFC3339Nano, processedAt.String)
			r.ProcessedAt = &t
		}
		reqs = append(reqs, r)
	}
	return reqs, rows.Err()
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
