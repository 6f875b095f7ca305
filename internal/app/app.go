// Package app assembles the tracker's services from configuration. Both
// binaries build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/auth"
	authStore "github.com/FinanceTrackerAP/FinanceTracker/internal/auth/store"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/category"
	categoryStore "github.com/FinanceTrackerAP/FinanceTracker/internal/category/store"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/config"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/database"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/docstore"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/docstore/memory"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/docstore/sqlstore"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/identity/local"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/importer"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/mail"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
	txStore "github.com/FinanceTrackerAP/FinanceTracker/internal/transaction/store"
)

type Options struct {
	// RememberSession is for single-user clients such as the terminal UI.
	RememberSession bool
	// Mailer overrides the mailer picked from configuration.
	Mailer mail.Mailer
}

type App struct {
	Docs         docstore.Store
	Identity     *local.Provider
	Auth         *auth.Gateway
	Transactions *transaction.Service
	Categories   *category.Service
	Importer     *importer.Service

	closers []io.Closer
}

func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	a := &App{}

	docs, err := a.openDocs(cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	mailer, err := a.mailer(cfg, opts)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	provider := local.New(docs, mailer, local.Options{
		Secret:          []byte(cfg.Auth.Secret),
		TokenTTL:        cfg.Auth.TokenTTL,
		ResetTTL:        cfg.Auth.ResetTTL,
		RememberSession: opts.RememberSession,
	})

	a.Docs = docs
	a.Identity = provider
	a.Auth = auth.NewGateway(provider, authStore.New(docs), auth.Options{
		DegradedProfiles: cfg.Auth.DegradedProfiles,
	})
	a.Transactions = transaction.NewService(txStore.New(docs), a.Auth)
	a.Categories = category.NewService(categoryStore.New(docs), a.Auth)
	a.Importer = importer.NewService(a.Transactions, time.Local)

	slog.InfoContext(ctx, "services ready",
		"backend", cfg.Storage.Backend,
		"amqp", cfg.AMQP.URL != "" && opts.Mailer == nil,
		"degraded_profiles", cfg.Auth.DegradedProfiles,
	)

	return a, nil
}

func (a *App) openDocs(cfg *config.Config) (docstore.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendSQLite:
		if err := database.MigrateSQLite(cfg.Storage.SQLitePath); err != nil {
			return nil, err
		}

		db, err := database.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}

		a.closers = append(a.closers, db)

		return sqlstore.NewSQLite(db), nil
	case config.BackendPostgres:
		if err := database.MigratePostgres(cfg.ConnectionString()); err != nil {
			return nil, err
		}

		db, err := database.OpenPostgres(cfg.ConnectionString())
		if err != nil {
			return nil, err
		}

		a.closers = append(a.closers, db)

		return sqlstore.NewPostgres(db), nil
	}

	return nil, fmt.Errorf("unknown backend %q", cfg.Storage.Backend)
}

func (a *App) mailer(cfg *config.Config, opts Options) (mail.Mailer, error) {
	if opts.Mailer != nil {
		return opts.Mailer, nil
	}

	if cfg.AMQP.URL == "" {
		return mail.NewLogMailer(slog.Default()), nil
	}

	pub, err := mail.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
	if err != nil {
		return nil, err
	}

	a.closers = append(a.closers, pub)

	return pub, nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}

	a.closers = nil

	return errors.Join(errs...)
}
