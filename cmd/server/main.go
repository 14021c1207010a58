/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the sci-summ server: configuration, storage,
  ledger, workflow, HTTP router, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and environment config
  2. Open the SQLite store
  3. Build the ledger (journaled through the store) and the system
  4. Configure the HTTP router
  5. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT env; default 8080)
  -db      SQLite database path (overrides DB_PATH; ":memory:" works)

ENVIRONMENT:
  PORT, DB_PATH, JWT_SECRET, TOKEN_TTL, MODEL_COST, MAX_INPUT_LENGTH.
  A .env file is honored in development.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for
  in-flight requests, close the database, exit.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/molodkinanr-debug/sci-summ/api"
	"github.com/molodkinanr-debug/sci-summ/config"
	"github.com/molodkinanr-debug/sci-summ/ledger"
	"github.com/molodkinanr-debug/sci-summ/model"
	"github.com/molodkinanr-debug/sci-summ/store/sqlite"
	"github.com/molodkinanr-debug/sci-summ/workflow"
)

func main() {
	cfg := config.Load()

	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	clock := ledger.SystemClock{}
	led := ledger.NewWith(store, clock)
	system := workflow.NewSystem(led, clock, logger)

	summarizer := model.NewTruncationSummarizer(
		"text-summarizer", "1.0", cfg.ModelCost, cfg.MaxInputLength,
	)

	handler := api.NewHandler(store, led, system, summarizer, clock, logger, cfg.JWTSecret, cfg.TokenTTL)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.Int("port", *port), zap.String("db", *dbPath))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
