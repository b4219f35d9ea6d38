// Package runtime wires configuration, storage, services and the HTTP server
// into a runnable application.
package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"github.com/gdiv-se/richflow/internal/config"
	"github.com/gdiv-se/richflow/internal/gemini"
	"github.com/gdiv-se/richflow/internal/httpapi"
	"github.com/gdiv-se/richflow/internal/logging"
	"github.com/gdiv-se/richflow/internal/services/advisor"
	authsvc "github.com/gdiv-se/richflow/internal/services/auth"
	"github.com/gdiv-se/richflow/internal/services/balancesheet"
	"github.com/gdiv-se/richflow/internal/services/cashsavings"
	"github.com/gdiv-se/richflow/internal/services/expense"
	"github.com/gdiv-se/richflow/internal/services/income"
	"github.com/gdiv-se/richflow/internal/storage/postgres"
)

// Application owns the wired dependencies and the HTTP server lifecycle.
type Application struct {
	cfg    *config.Config
	log    *logging.Logger
	server *http.Server
	db     *sql.DB
}

// NewApplication loads configuration and wires the full dependency graph:
// database, migrations, stores, services and router.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}).WithField("component", "richflow")

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	migrateCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := postgres.Migrate(migrateCtx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store := postgres.New(db)

	authService := authsvc.New(store, store, []byte(cfg.Auth.JWTSecret), log.WithField("service", "auth"),
		authsvc.WithBcryptCost(cfg.Auth.BcryptCost),
		authsvc.WithTokenValidity(cfg.Auth.TokenValidity),
	)

	generator := gemini.New(gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
		Timeout: cfg.Gemini.Timeout,
	})

	svc := httpapi.Services{
		Auth:         authService,
		Income:       income.New(store, log.WithField("service", "income")),
		Expense:      expense.New(store, log.WithField("service", "expense")),
		BalanceSheet: balancesheet.New(store, store, log.WithField("service", "balancesheet")),
		CashSavings:  cashsavings.New(store, log.WithField("service", "cashsavings")),
		Advisor:      advisor.New(store, store, store, generator, log.WithField("service", "advisor")),
	}

	router := httpapi.NewRouter(svc, log, httpapi.RouterConfig{
		SignupLimit:  cfg.Signup.Attempts,
		SignupWindow: cfg.Signup.Window,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Application{cfg: cfg, log: log, server: server, db: db}, nil
}

// Run starts the HTTP server and blocks until the context is cancelled or
// the server fails.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.log.Infof("HTTP server listening on %s", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown drains the HTTP server and closes the database.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("error closing database connection")
		}
	}
	return nil
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
