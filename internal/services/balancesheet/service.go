// Package balancesheet manages assets and liabilities and derives the
// balance sheet view.
package balancesheet

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

// Service implements asset/liability CRUD and the combined balance sheet.
type Service struct {
	assets      storage.AssetStore
	liabilities storage.LiabilityStore
	log         *logging.Logger
}

// New constructs the balance sheet service.
func New(assets storage.AssetStore, liabilities storage.LiabilityStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("balancesheet")
	}
	return &Service{assets: assets, liabilities: liabilities, log: log}
}

// BalanceSheet returns the user's assets and liabilities with totals.
func (s *Service) BalanceSheet(ctx context.Context, userID string) (finance.BalanceSheet, error) {
	assets, err := s.assets.ListAssets(ctx, userID)
	if err != nil {
		return finance.BalanceSheet{}, err
	}
	liabilities, err := s.liabilities.ListLiabilities(ctx, userID)
	if err != nil {
		return finance.BalanceSheet{}, err
	}

	totalAssets := decimal.Zero
	for _, a := range assets {
		totalAssets = totalAssets.Add(a.Value)
	}
	totalLiabilities := decimal.Zero
	for _, l := range liabilities {
		totalLiabilities = totalLiabilities.Add(l.Value)
	}

	return finance.BalanceSheet{
		Assets:           assets,
		Liabilities:      liabilities,
		TotalAssets:      totalAssets,
		TotalLiabilities: totalLiabilities,
		NetWorth:         totalAssets.Sub(totalLiabilities),
	}, nil
}

// AddAsset records a new asset.
func (s *Service) AddAsset(ctx context.Context, userID, name string, value decimal.Decimal) (finance.Asset, error) {
	name, err := validateEntry(name, value)
	if err != nil {
		return finance.Asset{}, err
	}
	a, err := s.assets.CreateAsset(ctx, finance.Asset{UserID: userID, Name: name, Value: value})
	if err != nil {
		return finance.Asset{}, err
	}
	s.log.WithField("asset_id", a.ID).WithField("user_id", userID).Info("asset added")
	return a, nil
}

// ListAssets returns the user's assets.
func (s *Service) ListAssets(ctx context.Context, userID string) ([]finance.Asset, error) {
	return s.assets.ListAssets(ctx, userID)
}

// UpdateAsset replaces an asset's name and value.
func (s *Service) UpdateAsset(ctx context.Context, userID, id, name string, value decimal.Decimal) (finance.Asset, error) {
	name, err := validateEntry(name, value)
	if err != nil {
		return finance.Asset{}, err
	}
	existing, err := s.assets.GetAsset(ctx, id)
	if err != nil {
		return finance.Asset{}, err
	}
	if existing.UserID != userID {
		return finance.Asset{}, fmt.Errorf("asset %s: %w", id, storage.ErrNotFound)
	}
	existing.Name = name
	existing.Value = value
	return s.assets.UpdateAsset(ctx, existing)
}

// DeleteAsset removes an asset owned by the user.
func (s *Service) DeleteAsset(ctx context.Context, userID, id string) error {
	existing, err := s.assets.GetAsset(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return fmt.Errorf("asset %s: %w", id, storage.ErrNotFound)
	}
	return s.assets.DeleteAsset(ctx, id)
}

// AddLiability records a new liability.
func (s *Service) AddLiability(ctx context.Context, userID, name string, value decimal.Decimal) (finance.Liability, error) {
	name, err := validateEntry(name, value)
	if err != nil {
		return finance.Liability{}, err
	}
	l, err := s.liabilities.CreateLiability(ctx, finance.Liability{UserID: userID, Name: name, Value: value})
	if err != nil {
		return finance.Liability{}, err
	}
	s.log.WithField("liability_id", l.ID).WithField("user_id", userID).Info("liability added")
	return l, nil
}

// ListLiabilities returns the user's liabilities.
func (s *Service) ListLiabilities(ctx context.Context, userID string) ([]finance.Liability, error) {
	return s.liabilities.ListLiabilities(ctx, userID)
}

// UpdateLiability replaces a liability's name and value.
func (s *Service) UpdateLiability(ctx context.Context, userID, id, name string, value decimal.Decimal) (finance.Liability, error) {
	name, err := validateEntry(name, value)
	if err != nil {
		return finance.Liability{}, err
	}
	existing, err := s.liabilities.GetLiability(ctx, id)
	if err != nil {
		return finance.Liability{}, err
	}
	if existing.UserID != userID {
		return finance.Liability{}, fmt.Errorf("liability %s: %w", id, storage.ErrNotFound)
	}
	existing.Name = name
	existing.Value = value
	return s.liabilities.UpdateLiability(ctx, existing)
}

// DeleteLiability removes a liability owned by the user.
func (s *Service) DeleteLiability(ctx context.Context, userID, id string) error {
	existing, err := s.liabilities.GetLiability(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return fmt.Errorf("liability %s: %w", id, storage.ErrNotFound)
	}
	return s.liabilities.DeleteLiability(ctx, id)
}

func validateEntry(name string, value decimal.Decimal) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", services.Invalidf("name is required")
	}
	if value.IsNegative() {
		return "", services.Invalidf("value must not be negative")
	}
	return name, nil
}
