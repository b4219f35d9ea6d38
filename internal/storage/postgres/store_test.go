package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"

	"github.com/gdiv-se/richflow/internal/domain/finance"
	"github.com/gdiv-se/richflow/internal/domain/session"
	"github.com/gdiv-se/richflow/internal/domain/user"
	"github.com/gdiv-se/richflow/internal/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func expectDone(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateUserAssignsID(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u, err := store.CreateUser(context.Background(), user.User{
		Name:         "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.ID == "" {
		t.Fatal("create user: no id assigned")
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Fatal("create user: timestamps not set")
	}
	expectDone(t, mock)
}

func TestGetUserByEmailNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT .+ FROM users").
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetUserByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing user: %v, want ErrNotFound", err)
	}
	expectDone(t, mock)
}

func TestGetLiveSessionFiltersInQuery(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	expires := now.Add(time.Hour)
	rows := sqlmock.NewRows([]string{"token", "user_id", "is_valid", "expires_at", "created_at"}).
		AddRow("tok-1", "u1", true, expires, now.Add(-time.Minute))

	mock.ExpectQuery("SELECT .+ FROM sessions").
		WithArgs("tok-1", now).
		WillReturnRows(rows)

	sess, err := store.GetLiveSession(context.Background(), "tok-1", now)
	if err != nil {
		t.Fatalf("get live session: %v", err)
	}
	if sess.UserID != "u1" || !sess.IsValid {
		t.Fatalf("unexpected session: %+v", sess)
	}
	expectDone(t, mock)
}

func TestGetLiveSessionMissing(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .+ FROM sessions").
		WithArgs("tok-dead", now).
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetLiveSession(context.Background(), "tok-dead", now)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("dead session: %v, want ErrNotFound", err)
	}
	expectDone(t, mock)
}

func TestRevokeSessionMissingRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE sessions SET is_valid").
		WithArgs("tok-gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.RevokeSession(context.Background(), "tok-gone")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("revoke missing: %v, want ErrNotFound", err)
	}
	expectDone(t, mock)
}

func TestCreateSessionInsertsRow(t *testing.T) {
	store, mock := newMockStore(t)

	sess := session.Session{
		Token:     "tok-1",
		UserID:    "u1",
		IsValid:   true,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	mock.ExpectExec("INSERT INTO sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.CreateSession(context.Background(), sess); err != nil {
		t.Fatalf("create session: %v", err)
	}
	expectDone(t, mock)
}

func TestListIncomeLines(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "type", "name", "amount", "created_at", "updated_at"}).
		AddRow("i1", "u1", "Earned", "Salary", "1000", now, now).
		AddRow("i2", "u1", "Passive", "Dividends", "200", now.Add(time.Second), now.Add(time.Second))

	mock.ExpectQuery("SELECT .+ FROM income_lines").
		WithArgs("u1").
		WillReturnRows(rows)

	lines, err := store.ListIncomeLines(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list income: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Type != finance.IncomeEarned || !lines[0].Amount.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("unexpected first line: %+v", lines[0])
	}
	expectDone(t, mock)
}

func TestDeleteIncomeLineMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM income_lines").
		WithArgs("no-such-id").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteIncomeLine(context.Background(), "no-such-id")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("delete missing: %v, want ErrNotFound", err)
	}
	expectDone(t, mock)
}

func TestGetCashSavingsMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT .+ FROM cash_savings").
		WithArgs("u1").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetCashSavings(context.Background(), "u1")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing savings: %v, want ErrNotFound", err)
	}
	expectDone(t, mock)
}

func TestUpsertCashSavings(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO cash_savings").
		WillReturnResult(sqlmock.NewResult(0, 1))

	cs, err := store.UpsertCashSavings(context.Background(), finance.CashSavings{
		UserID: "u1",
		Amount: decimal.RequireFromString("1234.56"),
	})
	if err != nil {
		t.Fatalf("upsert savings: %v", err)
	}
	if cs.UpdatedAt.IsZero() {
		t.Fatal("upsert savings: updated_at not set")
	}
	expectDone(t, mock)
}
