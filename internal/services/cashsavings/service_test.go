package cashsavings

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/gdiv-se/richflow/internal/logging"
	"github.com/gdiv-se/richflow/internal/services"
	"github.com/gdiv-se/richflow/internal/storage/memory"
)

func newTestService() *Service {
	return New(memory.New(), logging.NewNop())
}

func TestGetAbsentReturnsZero(t *testing.T) {
	svc := newTestService()

	cs, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cs.UserID != "u1" || !cs.Amount.IsZero() {
		t.Fatalf("absent savings: %+v, want zero figure", cs)
	}
}

func TestSetThenGet(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	set, err := svc.Set(ctx, "u1", decimal.RequireFromString("1234.56"))
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if !set.Amount.Equal(decimal.RequireFromString("1234.56")) {
		t.Fatalf("set: amount %s", set.Amount)
	}

	got, err := svc.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Amount.Equal(set.Amount) {
		t.Fatalf("get after set: %s, want %s", got.Amount, set.Amount)
	}
}

func TestSetOverwrites(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Set(ctx, "u1", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("first set: %v", err)
	}
	if _, err := svc.Set(ctx, "u1", decimal.NewFromInt(50)); err != nil {
		t.Fatalf("second set: %v", err)
	}

	got, err := svc.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Amount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("amount %s, want 50 (one row per user)", got.Amount)
	}
}

func TestSetRejectsNegative(t *testing.T) {
	svc := newTestService()

	_, err := svc.Set(context.Background(), "u1", decimal.NewFromInt(-5))
	if !services.IsValidation(err) {
		t.Fatalf("negative amount: %v, want validation error", err)
	}
}
