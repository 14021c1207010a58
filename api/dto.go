/*
dto.go - Data transfer objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain types
  from the wire contract. DTOs are pure data carriers; validation
  happens in handlers.

NAMING CONVENTION:
  - *Request: request body types from clients
  - *DTO / *Response: types returned to clients

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/molodkinanr-debug/sci-summ/ledger"
	"github.com/molodkinanr-debug/sci-summ/store/sqlite"
	"github.com/molodkinanr-debug/sci-summ/workflow"
)

// =============================================================================
// AUTH
// =============================================================================

// RegisterRequest creates a new user.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries the issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserDTO represents a user in API responses. Never carries the hash.
type UserDTO struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"full_name,omitempty"`
	IsActive  bool   `json:"is_active"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at"`
}

// =============================================================================
// ACCOUNTS
// =============================================================================

// DepositRequest tops up the caller's account.
type DepositRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// BalanceDTO is the caller's current balance.
type BalanceDTO struct {
	UserID  string          `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}

// TransactionDTO represents one ledger transaction.
type TransactionDTO struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

// =============================================================================
// PREDICTIONS
// =============================================================================

// SummarizeRequest submits text for summarization.
type SummarizeRequest struct {
	Text         string `json:"text"`
	DocumentName string `json:"document_name,omitempty"`
}

// RequestDTO represents a settled processing request.
type RequestDTO struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	DocumentName string          `json:"document_name,omitempty"`
	ModelName    string          `json:"model_name"`
	ModelVersion string          `json:"model_version,omitempty"`
	Cost         decimal.Decimal `json:"cost"`
	Status       string          `json:"status"`
	Result       string          `json:"result,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    string          `json:"created_at"`
	ProcessedAt  *string         `json:"processed_at,omitempty"`
}

// =============================================================================
// MISC
// =============================================================================

// StatsDTO summarizes the ledger.
type StatsDTO struct {
	TotalAccounts     int             `json:"total_accounts"`
	TotalBalance      decimal.Decimal `json:"total_balance"`
	TotalTransactions int             `json:"total_transactions"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toUserDTO(u *sqlite.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		IsActive:  u.IsActive,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func toTransactionDTO(tx ledger.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:          string(tx.ID),
		UserID:      string(tx.UserID),
		Amount:      tx.Amount,
		Type:        string(tx.Type),
		Description: tx.Description,
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
	}
}

func toTransactionDTOs(txs []ledger.Transaction) []TransactionDTO {
	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = toTransactionDTO(tx)
	}
	return dtos
}

func toRequestDTO(r *workflow.Request) RequestDTO {
	dto := RequestDTO{
		ID:           string(r.ID),
		UserID:       string(r.UserID),
		DocumentName: r.DocumentName,
		ModelName:    r.ModelName,
		ModelVersion: r.ModelVersion,
		Cost:         r.Cost,
		Status:       string(r.Status),
		Result:       r.Result,
		ErrorMessage: r.ErrorMessage,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}
	if r.ProcessedAt != nil {
		s := r.ProcessedAt.Format(time.RFC3339)
		dto.ProcessedAt = &s
	}
	return dto
}

func toRequestDTOs(reqs []*workflow.Request) []RequestDTO {
	dtos := make([]RequestDTO, len(reqs))
	for i, r := range reqs {
		dtos[i] = toRequestDTO(r)
	}
	return dtos
}
