// Package income manages a user's recorded income lines.
package income

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gdiv-se/richflow/internal/domain/finance"
	"github.com/gdiv-se/richflow/internal/logging"
	"github.com/gdiv-se/richflow/internal/services"
	"github.com/gdiv-se/richflow/internal/storage"
)

// Service implements income line CRUD with ownership checks.
type Service struct {
	store storage.IncomeStore
	log   *logging.Logger
}

// New constructs the income service.
func New(store storage.IncomeStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("income")
	}
	return &Service{store: store, log: log}
}

// Add records a new income line for the user.
func (s *Service) Add(ctx context.Context, userID, typ, name string, amount decimal.Decimal) (finance.IncomeLine, error) {
	incomeType, name, err := validate(typ, name, amount)
	if err != nil {
		return finance.IncomeLine{}, err
	}

	line, err := s.store.CreateIncomeLine(ctx, finance.IncomeLine{
		UserID: userID,
		Type:   incomeType,
		Name:   name,
		Amount: amount,
	})
	if err != nil {
		return finance.IncomeLine{}, err
	}
	s.log.WithField("income_id", line.ID).WithField("user_id", userID).Info("income line added")
	return line, nil
}

// List returns the user's income lines in creation order.
func (s *Service) List(ctx context.Context, userID string) ([]finance.IncomeLine, error) {
	return s.store.ListIncomeLines(ctx, userID)
}

// Update replaces an income line's type, name and amount. Rows owned by other
// users surface as not found.
func (s *Service) Update(ctx context.Context, userID, id, typ, name string, amount decimal.Decimal) (finance.IncomeLine, error) {
	incomeType, name, err := validate(typ, name, amount)
	if err != nil {
		return finance.IncomeLine{}, err
	}

	existing, err := s.store.GetIncomeLine(ctx, id)
	if err != nil {
		return finance.IncomeLine{}, err
	}
	if existing.UserID != userID {
		return finance.IncomeLine{}, fmt.Errorf("income line %s: %w", id, storage.ErrNotFound)
	}

	existing.Type = incomeType
	existing.Name = name
	existing.Amount = amount
	return s.store.UpdateIncomeLine(ctx, existing)
}

// Delete removes an income line owned by the user.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	existing, err := s.store.GetIncomeLine(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return fmt.Errorf("income line %s: %w", id, storage.ErrNotFound)
	}
	if err := s.store.DeleteIncomeLine(ctx, id); err != nil {
		return err
	}
	s.log.WithField("income_id", id).WithField("user_id", userID).Info("income line deleted")
	return nil
}

func validate(typ, name string, amount decimal.Decimal) (finance.IncomeType, string, error) {
	incomeType, ok := finance.ParseIncomeType(strings.TrimSpace(typ))
	if !ok {
		return "", "", services.Invalidf("type must be one of Earned, Portfolio, Passive")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", services.Invalidf("name is required")
	}
	if amount.IsNegative() {
		return "", "", services.Invalidf("amount must not be negative")
	}
	return incomeType, name, nil
}
