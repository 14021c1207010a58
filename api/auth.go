/*
auth.go - JWT bearer authentication and password hashing

PURPOSE:
  Issues and verifies JWT access tokens and hashes passwords with
  bcrypt. The middleware resolves the token's subject to a stored user
  and rejects inactive accounts.

TOKEN SHAPE:
  Registered claims only: subject = username, plus issued-at and
  expiry. Signed with HMAC-SHA256 and the configured secret.
*/
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/molodkinanr-debug/sci-summ/store/sqlite"
)

type contextKey string

const userContextKey contextKey = "current-user"

// =============================================================================
// PASSWORDS
// =============================================================================

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

func verifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// =============================================================================
// TOKENS
// =============================================================================

func (h *Handler) issueToken(username string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.TokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.JWTSecret))
}

func (h *Handler) parseToken(raw string) (string, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(h.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	return token.Claims.GetSubject()
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

// RequireAuth validates the bearer token and loads the current user
// into the request context.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}

		username, err := h.parseToken(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Could not validate credentials", err)
			return
		}

		user, err := h.Store.GetUserByUsername(r.Context(), username)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load user", err)
			return
		}
		if user == nil {
			writeError(w, http.StatusUnauthorized, "Could not validate credentials", nil)
			return
		}
		if !user.IsActive {
			writeError(w, http.StatusForbidden, "Inactive user", nil)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser returns the authenticated user stored by RequireAuth.
func currentUser(r *http.Request) *sqlite.User {
	user, _ := r.Context().Value(userContextKey).(*sqlite.User)
	return user
}
