package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go-bank-api/config"
	"go-bank-api/exchange"
	"go-bank-api/handler"
	"go-bank-api/seed"
	"go-bank-api/service"
	"go-bank-api/storage"
)

func main() {
	// Setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// Initialize storage
	var store storage.Store
	if cfg.DatabaseURL != "" {
		pgStore, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("Failed to initialize database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pgStore.Close()
		store = pgStore
		logger.Info("Database connection established and schema initialized.")
	} else {
		store = storage.NewMemoryStore()
		logger.Info("DATABASE_URL not set, using in-memory store.")
	}

	bank := service.NewBank(store, exchange.NewService(store), logger)

	if cfg.SeedData {
		if err := loadSeed(ctx, cfg, bank); err != nil {
			logger.Error("Failed to seed data", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// Create and start server
	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: handler.NewRouter(bank, logger),
	}

	go func() {
		logger.Info("Starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ListenAndServe error", slog.String("error", err.Error()))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
		return
	}

	logger.Info("Server gracefully stopped")
}

// loadSeed applies the configured seed file, or the embedded demo data when none is set.
// A persistent store that already holds currencies is left alone.
func loadSeed(ctx context.Context, cfg *config.Config, bank *service.Bank) error {
	existing, err := bank.ListCurrencies(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		slog.Info("Store already populated, skipping seed.")
		return nil
	}

	var data *seed.Data
	if cfg.SeedFile != "" {
		data, err = seed.Load(cfg.SeedFile)
	} else {
		data, err = seed.Default()
	}
	if err != nil {
		return err
	}

	if err := data.Apply(ctx, bank); err != nil {
		return err
	}
	slog.Info("Seed data applied.",
		slog.Int("currencies", len(data.Currencies)),
		slog.Int("customers", len(data.Customers)),
		slog.Int("accounts", len(data.Accounts)))
	return nil
}
