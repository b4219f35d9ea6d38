// Package storage defines the persistence interfaces backing the services.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/gdiv-se/richflow/internal/domain/finance"
	"github.com/gdiv-se/richflow/internal/domain/session"
	"github.com/gdiv-se/richflow/internal/domain/user"
)

// ErrNotFound marks lookups that matched no row. Implementations wrap it so
// callers can classify with errors.Is.
var ErrNotFound = errors.New("not found")

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUserByID(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	// GetUserByEmailOrName returns any user whose email or name matches.
	GetUserByEmailOrName(ctx context.Context, email, name string) (user.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// SessionStore persists issued sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, s session.Session) error
	// GetLiveSession returns the session for token only when it is valid and
	// unexpired at the given instant.
	GetLiveSession(ctx context.Context, token string, now time.Time) (session.Session, error)
	RevokeSession(ctx context.Context, token string) error
	RevokeUserSessions(ctx context.Context, userID string) error
}

// IncomeStore persists income lines.
type IncomeStore interface {
	CreateIncomeLine(ctx context.Context, line finance.IncomeLine) (finance.IncomeLine, error)
	UpdateIncomeLine(ctx context.Context, line finance.IncomeLine) (finance.IncomeLine, error)
	GetIncomeLine(ctx context.Context, id string) (finance.IncomeLine, error)
	ListIncomeLines(ctx context.Context, userID string) ([]finance.IncomeLine, error)
	DeleteIncomeLine(ctx context.Context, id string) error
}

// ExpenseStore persists expenses.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, exp finance.Expense) (finance.Expense, error)
	UpdateExpense(ctx context.Context, exp finance.Expense) (finance.Expense, error)
	GetExpense(ctx context.Context, id string) (finance.Expense, error)
	ListExpenses(ctx context.Context, userID string) ([]finance.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
}

// AssetStore persists balance sheet assets.
type AssetStore interface {
	CreateAsset(ctx context.Context, a finance.Asset) (finance.Asset, error)
	UpdateAsset(ctx context.Context, a finance.Asset) (finance.Asset, error)
	GetAsset(ctx context.Context, id string) (finance.Asset, error)
	ListAssets(ctx context.Context, userID string) ([]finance.Asset, error)
	DeleteAsset(ctx context.Context, id string) error
}

// LiabilityStore persists balance sheet liabilities.
type LiabilityStore interface {
	CreateLiability(ctx context.Context, l finance.Liability) (finance.Liability, error)
	UpdateLiability(ctx context.Context, l finance.Liability) (finance.Liability, error)
	GetLiability(ctx context.Context, id string) (finance.Liability, error)
	ListLiabilities(ctx context.Context, userID string) ([]finance.Liability, error)
	DeleteLiability(ctx context.Context, id string) error
}

// CashSavingsStore persists the single per-user cash savings figure.
type CashSavingsStore interface {
	// GetCashSavings returns ErrNotFound when the user has no row yet.
	GetCashSavings(ctx context.Context, userID string) (finance.CashSavings, error)
	// UpsertCashSavings inserts or overwrites the user's row.
	UpsertCashSavings(ctx context.Context, cs finance.CashSavings) (finance.CashSavings, error)
}
