// Package expense manages a user's recorded expenses.
package expense

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

// Service implements expense CRUD with ownership checks.
type Service struct {
	store storage.ExpenseStore
	log   *logging.Logger
}

// New constructs the expense service.
func New(store storage.ExpenseStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("expense")
	}
	return &Service{store: store, log: log}
}

// Add records a new expense for the user.
func (s *Service) Add(ctx context.Context, userID, name string, amount decimal.Decimal) (finance.Expense, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return finance.Expense{}, services.Invalidf("name is required")
	}
	if amount.IsNegative() {
		return finance.Expense{}, services.Invalidf("amount must not be negative")
	}

	exp, err := s.store.CreateExpense(ctx, finance.Expense{
		UserID: userID,
		Name:   name,
		Amount: amount,
	})
	if err != nil {
		return finance.Expense{}, err
	}
	s.log.WithField("expense_id", exp.ID).WithField("user_id", userID).Info("expense added")
	return exp, nil
}

// List returns the user's expenses in creation order.
func (s *Service) List(ctx context.Context, userID string) ([]finance.Expense, error) {
	return s.store.ListExpenses(ctx, userID)
}

// Update replaces an expense's name and amount.
func (s *Service) Update(ctx context.Context, userID, id, name string, amount decimal.Decimal) (finance.Expense, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return finance.Expense{}, services.Invalidf("name is required")
	}
	if amount.IsNegative() {
		return finance.Expense{}, services.Invalidf("amount must not be negative")
	}

	existing, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return finance.Expense{}, err
	}
	if existing.UserID != userID {
		return finance.Expense{}, fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}

	existing.Name = name
	existing.Amount = amount
	return s.store.UpdateExpense(ctx, existing)
}

// Delete removes an expense owned by the user.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	existing, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.log.WithField("expense_id", id).WithField("user_id", userID).Info("expense deleted")
	return nil
}
