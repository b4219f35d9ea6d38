package balancesheet

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/gdiv-se/richflow/internal/logging"
	"github.com/gdiv-se/richflow/internal/services"
	"github.com/gdiv-se/richflow/internal/storage"
	"github.com/gdiv-se/richflow/internal/storage/memory"
)

func newTestService() *Service {
	store := memory.New()
	return New(store, store, logging.NewNop())
}

func TestBalanceSheetTotals(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.AddAsset(ctx, "u1", "House", decimal.NewFromInt(250000)); err != nil {
		t.Fatalf("add asset: %v", err)
	}
	if _, err := svc.AddAsset(ctx, "u1", "Brokerage", decimal.NewFromInt(40000)); err != nil {
		t.Fatalf("add asset: %v", err)
	}
	if _, err := svc.AddLiability(ctx, "u1", "Mortgage", decimal.NewFromInt(180000)); err != nil {
		t.Fatalf("add liability: %v", err)
	}

	sheet, err := svc.BalanceSheet(ctx, "u1")
	if err != nil {
		t.Fatalf("balance sheet: %v", err)
	}
	if len(sheet.Assets) != 2 || len(sheet.Liabilities) != 1 {
		t.Fatalf("unexpected sheet contents: %d assets, %d liabilities", len(sheet.Assets), len(sheet.Liabilities))
	}
	if !sheet.TotalAssets.Equal(decimal.NewFromInt(290000)) {
		t.Fatalf("total assets %s, want 290000", sheet.TotalAssets)
	}
	if !sheet.TotalLiabilities.Equal(decimal.NewFromInt(180000)) {
		t.Fatalf("total liabilities %s, want 180000", sheet.TotalLiabilities)
	}
	if !sheet.NetWorth.Equal(decimal.NewFromInt(110000)) {
		t.Fatalf("net worth %s, want 110000", sheet.NetWorth)
	}
}

func TestEmptyBalanceSheet(t *testing.T) {
	svc := newTestService()

	sheet, err := svc.BalanceSheet(context.Background(), "u1")
	if err != nil {
		t.Fatalf("balance sheet: %v", err)
	}
	if !sheet.TotalAssets.IsZero() || !sheet.TotalLiabilities.IsZero() || !sheet.NetWorth.IsZero() {
		t.Fatalf("empty sheet has nonzero totals: %+v", sheet)
	}
}

func TestNegativeNetWorth(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.AddAsset(ctx, "u1", "Car", decimal.NewFromInt(5000)); err != nil {
		t.Fatalf("add asset: %v", err)
	}
	if _, err := svc.AddLiability(ctx, "u1", "Student loan", decimal.NewFromInt(30000)); err != nil {
		t.Fatalf("add liability: %v", err)
	}

	sheet, err := svc.BalanceSheet(ctx, "u1")
	if err != nil {
		t.Fatalf("balance sheet: %v", err)
	}
	if !sheet.NetWorth.Equal(decimal.NewFromInt(-25000)) {
		t.Fatalf("net worth %s, want -25000", sheet.NetWorth)
	}
}

func TestEntryValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.AddAsset(ctx, "u1", "", decimal.NewFromInt(1)); !services.IsValidation(err) {
		t.Fatalf("blank asset name: %v, want validation error", err)
	}
	if _, err := svc.AddLiability(ctx, "u1", "Loan", decimal.NewFromInt(-1)); !services.IsValidation(err) {
		t.Fatalf("negative liability: %v, want validation error", err)
	}
}

func TestUpdateAndDeleteOwnership(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	asset, err := svc.AddAsset(ctx, "u1", "House", decimal.NewFromInt(250000))
	if err != nil {
		t.Fatalf("add asset: %v", err)
	}
	liability, err := svc.AddLiability(ctx, "u1", "Mortgage", decimal.NewFromInt(180000))
	if err != nil {
		t.Fatalf("add liability: %v", err)
	}

	updated, err := svc.UpdateAsset(ctx, "u1", asset.ID, "House (revalued)", decimal.NewFromInt(260000))
	if err != nil {
		t.Fatalf("update asset: %v", err)
	}
	if updated.Name != "House (revalued)" {
		t.Fatalf("update asset: %+v", updated)
	}

	if _, err := svc.UpdateAsset(ctx, "u2", asset.ID, "Stolen", decimal.NewFromInt(1)); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("cross-user asset update: %v, want ErrNotFound", err)
	}
	if err := svc.DeleteLiability(ctx, "u2", liability.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("cross-user liability delete: %v, want ErrNotFound", err)
	}

	if err := svc.DeleteAsset(ctx, "u1", asset.ID); err != nil {
		t.Fatalf("delete asset: %v", err)
	}
	if err := svc.DeleteLiability(ctx, "u1", liability.ID); err != nil {
		t.Fatalf("delete liability: %v", err)
	}

	sheet, err := svc.BalanceSheet(ctx, "u1")
	if err != nil {
		t.Fatalf("balance sheet: %v", err)
	}
	if len(sheet.Assets) != 0 || len(sheet.Liabilities) != 0 {
		t.Fatalf("sheet not empty after deletes: %+v", sheet)
	}
}
