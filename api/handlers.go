/*
handlers.go - HTTP handlers for the summarization service

PURPOSE:
  Exposes the ledger and request workflow over REST. Handlers parse and
  validate input, delegate to domain logic, and serialize responses.

ENDPOINTS:
  Auth:
    POST /auth/register          Create a user (and a zero-balance account)
    POST /auth/login             Exchange credentials for a JWT
    GET  /auth/me                Current user

  Accounts:
    GET  /accounts/balance       Current balance
    POST /accounts/deposit       Top up the account
    GET  /accounts/transactions  Transaction history

  Predictions:
    POST /predictions/summarize  Submit text for summarization
    GET  /predictions/history    Request history

  Misc:
    GET  /users                  List users
    GET  /stats                  Ledger aggregates
    GET  /health                 Liveness check

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: validation errors, invalid input
  - 401/403: authentication failures, inactive users
  - 402: request rejected for insufficient funds
  - 422: request settled with a processing error
  - 500: internal errors

SEE ALSO:
  - dto.go: request/response data structures
  - auth.go: token middleware
  - server.go: router setup
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/molodkinanr-debug/sci-summ/ledger"
	"github.com/molodkinanr-debug/sci-summ/model"
	"github.com/molodkinanr-debug/sci-summ/store/sqlite"
	"github.com/molodkinanr-debug/sci-summ/workflow"
)

// =============================================================================
// HANDLER
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Ledger *ledger.Ledger
	System *workflow.System
	Model  model.Model
	Clock  ledger.Clock
	Logger *zap.Logger

	JWTSecret string
	TokenTTL  time.Duration
}

// NewHandler wires the handler. A nil logger disables logging.
func NewHandler(store *sqlite.Store, led *ledger.Ledger, system *workflow.System, m model.Model, clock ledger.Clock, logger *zap.Logger, jwtSecret string, tokenTTL time.Duration) *Handler {
	if clock == nil {
		clock = ledger.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:     store,
		Ledger:    led,
		System:    system,
		Model:     m,
		Clock:     clock,
		Logger:    logger,
		JWTSecret: jwtSecret,
		TokenTTL:  tokenTTL,
	}
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Register creates a user and a zero-balance ledger account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email and password are required", nil)
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "Invalid email format", nil)
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password", err)
		return
	}

	user := sqlite.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		IsActive:     true,
		CreatedAt:    h.Clock.Now(),
	}

	if err := h.Store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, sqlite.ErrUserExists) {
			writeError(w, http.StatusBadRequest, "Username or email already registered", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create user", err)
		return
	}

	if err := h.Ledger.CreateAccount(ledger.UserID(user.ID), decimal.Zero); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create account", err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserDTO(&user))
}

// Login authenticates and issues a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.Store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user", err)
		return
	}
	if user == nil || !verifyPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Incorrect username or password", nil)
		return
	}

	token, err := h.issueToken(user.Username, h.Clock.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toUserDTO(currentUser(r)))
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// GetBalance returns the caller's current balance.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	writeJSON(w, http.StatusOK, BalanceDTO{
		UserID:  user.ID,
		Balance: h.Ledger.Balance(ledger.UserID(user.ID)),
	})
}

// Deposit credits the caller's account.
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user := currentUser(r)
	description := req.Description
	if description == "" {
		description = "deposit"
	}

	if err := h.Ledger.Deposit(r.Context(), ledger.UserID(user.ID), req.Amount, description); err != nil {
		if ledger.IsClientError(err) {
			writeError(w, http.StatusBadRequest, "Amount must be positive", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to deposit", err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceDTO{
		UserID:  user.ID,
		Balance: h.Ledger.Balance(ledger.UserID(user.ID)),
	})
}

// GetTransactions returns the caller's transaction history.
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	txs := h.Ledger.TransactionHistoryFor(ledger.UserID(user.ID))
	writeJSON(w, http.StatusOK, toTransactionDTOs(txs))
}

// =============================================================================
// PREDICTION HANDLERS
// =============================================================================

// Summarize submits text through the request workflow.
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	name := req.DocumentName
	if name == "" {
		name = "inline-text"
	}
	doc := model.TextDocument{Name: name, Text: req.Text}

	user := currentUser(r)
	record, _ := h.System.Submit(r.Context(), ledger.UserID(user.ID), doc, h.Model)

	// Archive is reporting only. A failed insert must not fail the
	// already-settled request.
	if err := h.Store.SaveRequest(r.Context(), record); err != nil {
		h.Logger.Warn("failed to archive request",
			zap.String("request_id", string(record.ID)),
			zap.Error(err),
		)
	}

	writeJSON(w, statusForRequest(record), toRequestDTO(record))
}

// statusForRequest maps a settled request to an HTTP status.
func statusForRequest(r *workflow.Request) int {
	switch r.Status {
	case workflow.StatusSuccess:
		return http.StatusOK
	case workflow.StatusInsufficientFunds:
		return http.StatusPaymentRequired
	default:
		return http.StatusUnprocessableEntity
	}
}

// GetRequestHistory returns the caller's request history.
// Query params: limit (int), status (filter).
func (h *Handler) GetRequestHistory(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	history := h.System.HistoryFor(ledger.UserID(user.ID))

	if status := r.URL.Query().Get("status"); status != "" {
		writeJSON(w, http.StatusOK, toRequestDTOs(history.FilterByStatus(workflow.Status(status))))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	writeJSON(w, http.StatusOK, toRequestDTOs(history.List(limit)))
}

// =============================================================================
// MISC HANDLERS
// =============================================================================

// ListUsers returns all registered users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = toUserDTO(&users[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Stats returns ledger aggregates.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.Ledger.Stats()
	writeJSON(w, http.StatusOK, StatsDTO{
		TotalAccounts:     stats.TotalAccounts,
		TotalBalance:      stats.TotalBalance,
		TotalTransactions: stats.TotalTransactions,
	})
}

// Health is the liveness check.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil && status >= 500 {
		resp.Code = "internal"
	}
	writeJSON(w, status, resp)
}
