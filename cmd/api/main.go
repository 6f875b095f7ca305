package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/app"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/config"
	trackerHttp "github.com/FinanceTrackerAP/FinanceTracker/internal/http"
	authHandler "github.com/FinanceTrackerAP/FinanceTracker/internal/http/auth"
	categoryHandler "github.com/FinanceTrackerAP/FinanceTracker/internal/http/category"
	txHandler "github.com/FinanceTrackerAP/FinanceTracker/internal/http/transaction"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		return fmt.Errorf("failed to start services: %w", err)
	}
	defer a.Close()

	var (
		authH        = authHandler.NewHandler(a.Auth, a.Identity)
		categoryH    = categoryHandler.NewHandler(a.Categories)
		transactionH = txHandler.NewHandler(a.Transactions, a.Importer, a.Auth)
	)

	router := trackerHttp.New(trackerHttp.Options{
		Timeout:     cfg.Server.Timeout,
		CORSOrigins: cfg.Server.CORSOrigins,
	}, a.Identity, authH, categoryH, transactionH)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
