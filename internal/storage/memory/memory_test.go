package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gdiv-se/richflow/internal/domain/finance"
	"github.com/gdiv-se/richflow/internal/domain/session"
	"github.com/gdiv-se/richflow/internal/domain/user"
	"github.com/gdiv-se/richflow/internal/storage"
)

func TestUserLookup(t *testing.T) {
	store := New()
	ctx := context.Background()

	u, err := store.CreateUser(ctx, user.User{Name: "alice", Email: "Alice@Example.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == "" {
		t.Fatal("create: no id assigned")
	}

	// Email lookup is case-insensitive.
	got, err := store.GetUserByEmail(ctx, "alice@example.COM")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("get by email: id %q, want %q", got.ID, u.ID)
	}

	if _, err := store.GetUserByEmail(ctx, "ghost@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing email: %v, want ErrNotFound", err)
	}

	// Matches on either field.
	if _, err := store.GetUserByEmailOrName(ctx, "nobody@example.com", "alice"); err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if _, err := store.GetUserByEmailOrName(ctx, "alice@example.com", "nobody"); err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if _, err := store.GetUserByEmailOrName(ctx, "nobody@example.com", "nobody"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("no match: %v, want ErrNotFound", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now().UTC()

	sess := session.Session{Token: "tok", UserID: "u1", IsValid: true, ExpiresAt: now.Add(time.Hour)}
	if err := store.CreateSession(ctx, sess); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.GetLiveSession(ctx, "tok", now); err != nil {
		t.Fatalf("live session: %v", err)
	}

	// Expired sessions are not live even if still valid.
	if _, err := store.GetLiveSession(ctx, "tok", now.Add(2*time.Hour)); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expired session: %v, want ErrNotFound", err)
	}

	if err := store.RevokeSession(ctx, "tok"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := store.GetLiveSession(ctx, "tok", now); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("revoked session: %v, want ErrNotFound", err)
	}
}

func TestRevokeUserSessions(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now().UTC()

	for _, tok := range []string{"a", "b"} {
		if err := store.CreateSession(ctx, session.Session{Token: tok, UserID: "u1", IsValid: true, ExpiresAt: now.Add(time.Hour)}); err != nil {
			t.Fatalf("create %s: %v", tok, err)
		}
	}
	if err := store.CreateSession(ctx, session.Session{Token: "c", UserID: "u2", IsValid: true, ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("create c: %v", err)
	}

	if err := store.RevokeUserSessions(ctx, "u1"); err != nil {
		t.Fatalf("revoke all: %v", err)
	}
	for _, tok := range []string{"a", "b"} {
		if _, err := store.GetLiveSession(ctx, tok, now); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("session %s still live after revoke", tok)
		}
	}
	if _, err := store.GetLiveSession(ctx, "c", now); err != nil {
		t.Fatalf("unrelated session revoked: %v", err)
	}
}

func TestIncomeOrdering(t *testing.T) {
	store := New()
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		if _, err := store.CreateIncomeLine(ctx, finance.IncomeLine{UserID: "u1", Type: finance.IncomeEarned, Name: name, Amount: decimal.NewFromInt(1)}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	lines, err := store.ListIncomeLines(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for i, want := range []string{"first", "second", "third"} {
		if lines[i].Name != want {
			t.Fatalf("line %d = %q, want %q", i, lines[i].Name, want)
		}
	}
}

func TestCashSavingsUpsert(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.GetCashSavings(ctx, "u1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("absent savings: %v, want ErrNotFound", err)
	}

	if _, err := store.UpsertCashSavings(ctx, finance.CashSavings{UserID: "u1", Amount: decimal.NewFromInt(100)}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := store.UpsertCashSavings(ctx, finance.CashSavings{UserID: "u1", Amount: decimal.NewFromInt(250)}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	cs, err := store.GetCashSavings(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !cs.Amount.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("amount %s, want 250", cs.Amount)
	}
}
