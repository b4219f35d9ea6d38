// Package cashsavings manages the single per-user cash savings figure.
package cashsavings

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/gdiv-se/richflow/internal/domain/finance"
	"github.com/gdiv-se/richflow/internal/logging"
	"github.com/gdiv-se/richflow/internal/services"
	"github.com/gdiv-se/richflow/internal/storage"
)

// Service reads and upserts cash savings.
type Service struct {
	store storage.CashSavingsStore
	log   *logging.Logger
}

// New constructs the cash savings service.
func New(store storage.CashSavingsStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("cashsavings")
	}
	return &Service{store: store, log: log}
}

// Get returns the user's cash savings, or a zero figure when none was ever
// recorded. Absence is not an error here.
func (s *Service) Get(ctx context.Context, userID string) (finance.CashSavings, error) {
	cs, err := s.store.GetCashSavings(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return finance.CashSavings{UserID: userID, Amount: decimal.Zero}, nil
	}
	if err != nil {
		return finance.CashSavings{}, err
	}
	return cs, nil
}

// Set overwrites the user's cash savings. One row per user; upsert semantics.
func (s *Service) Set(ctx context.Context, userID string, amount decimal.Decimal) (finance.CashSavings, error) {
	if amount.IsNegative() {
		return finance.CashSavings{}, services.Invalidf("amount must not be negative")
	}
	cs, err := s.store.UpsertCashSavings(ctx, finance.CashSavings{UserID: userID, Amount: amount})
	if err != nil {
		return finance.CashSavings{}, err
	}
	s.log.WithField("user_id", userID).Info("cash savings updated")
	return cs, nil
}
