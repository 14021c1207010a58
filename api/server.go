/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer connecting URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  unique id per request for tracing
  2. Logger:     request logging
  3. Recoverer:  panic recovery (500 instead of crash)
  4. CORS:       cross-origin requests for a frontend

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(h.RequireAuth).Get("/me", h.Me)
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Get("/balance", h.GetBalance)
		r.Post("/deposit", h.Deposit)
		r.Get("/transactions", h.GetTransactions)
	})

	r.Route("/predictions", func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Post("/summarize", h.Summarize)
		r.Get("/history", h.GetRequestHistory)
	})

	r.Get("/users", h.ListUsers)
	r.Get("/stats", h.Stats)
	r.Get("/health", h.Health)

	return r
}
