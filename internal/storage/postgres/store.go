// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gdiv-se/richflow/internal/domain/finance"
	"github.com/gdiv-se/richflow/internal/domain/session"
	"github.com/gdiv-se/richflow/internal/domain/user"
	"github.com/gdiv-se/richflow/internal/storage"
)

// Store implements the storage interfaces over a database/sql handle.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.SessionStore = (*Store)(nil)
var _ storage.IncomeStore = (*Store)(nil)
var _ storage.ExpenseStore = (*Store)(nil)
var _ storage.AssetStore = (*Store)(nil)
var _ storage.LiabilityStore = (*Store)(nil)
var _ storage.CashSavingsStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, is_admin, preferred_currency, created_at, updated_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.IsAdmin, u.PreferredCurrency, u.CreatedAt, u.UpdatedAt, u.LastLogin)
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, userSelect+` WHERE id = $1`, id), id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, userSelect+` WHERE lower(email) = lower($1)`, email), email)
}

func (s *Store) GetUserByEmailOrName(ctx context.Context, email, name string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, userSelect+` WHERE lower(email) = lower($1) OR name = $2 LIMIT 1`, email, name)
	return s.scanUser(row, email)
}

func (s *Store) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET last_login = $2, updated_at = $2 WHERE id = $1
	`, id, at)
	if err != nil {
		return err
	}
	return requireRow(res, fmt.Sprintf("user %s", id))
}

const userSelect = `
	SELECT id, name, email, password_hash, is_admin, preferred_currency, created_at, updated_at, last_login
	FROM users`

func (s *Store) scanUser(row *sql.Row, key string) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.PreferredCurrency,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, fmt.Errorf("user %s: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

// --- SessionStore -----------------------------------------------------------

func (s *Store) CreateSession(ctx context.Context, sess session.Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, is_valid, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, sess.Token, sess.UserID, sess.IsValid, sess.ExpiresAt, sess.CreatedAt)
	return err
}

func (s *Store) GetLiveSession(ctx context.Context, token string, now time.Time) (session.Session, error) {
	var sess session.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT token, user_id, is_valid, expires_at, created_at
		FROM sessions
		WHERE token = $1 AND is_valid = TRUE AND expires_at > $2
	`, token, now).Scan(&sess.Token, &sess.UserID, &sess.IsValid, &sess.ExpiresAt, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Session{}, fmt.Errorf("session: %w", storage.ErrNotFound)
	}
	if err != nil {
		return session.Session{}, err
	}
	return sess, nil
}

func (s *Store) RevokeSession(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET is_valid = FALSE WHERE token = $1`, token)
	if err != nil {
		return err
	}
	return requireRow(res, "session")
}

func (s *Store) RevokeUserSessions(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE sessions SET is_valid = FALSE WHERE user_id = $1`, userID)
	return err
}

// --- IncomeStore ------------------------------------------------------------

func (s *Store) CreateIncomeLine(ctx context.Context, line finance.IncomeLine) (finance.IncomeLine, error) {
	if line.ID == "" {
		line.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	line.CreatedAt = now
	line.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO income_lines (id, user_id, type, name, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, line.ID, line.UserID, string(line.Type), line.Name, line.Amount, line.CreatedAt, line.UpdatedAt)
	if err != nil {
		return finance.IncomeLine{}, err
	}
	return line, nil
}

func (s *Store) UpdateIncomeLine(ctx context.Context, line finance.IncomeLine) (finance.IncomeLine, error) {
	line.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE income_lines SET type = $2, name = $3, amount = $4, updated_at = $5 WHERE id = $1
	`, line.ID, string(line.Type), line.Name, line.Amount, line.UpdatedAt)
	if err != nil {
		return finance.IncomeLine{}, err
	}
	if err := requireRow(res, fmt.Sprintf("income line %s", line.ID)); err != nil {
		return finance.IncomeLine{}, err
	}
	return s.GetIncomeLine(ctx, line.ID)
}

func (s *Store) GetIncomeLine(ctx context.Context, id string) (finance.IncomeLine, error) {
	var line finance.IncomeLine
	var typ string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, type, name, amount, created_at, updated_at
		FROM income_lines WHERE id = $1
	`, id).Scan(&line.ID, &line.UserID, &typ, &line.Name, &line.Amount, &line.CreatedAt, &line.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return finance.IncomeLine{}, fmt.Errorf("income line %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return finance.IncomeLine{}, err
	}
	line.Type = finance.IncomeType(typ)
	return line, nil
}

func (s *Store) ListIncomeLines(ctx context.Context, userID string) ([]finance.IncomeLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, name, amount, created_at, updated_at
		FROM income_lines WHERE user_id = $1 ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finance.IncomeLine
	for rows.Next() {
		var line finance.IncomeLine
		var typ string
		if err := rows.Scan(&line.ID, &line.UserID, &typ, &line.Name, &line.Amount, &line.CreatedAt, &line.UpdatedAt); err != nil {
			return nil, err
		}
		line.Type = finance.IncomeType(typ)
		out = append(out, line)
	}
	return out, rows.Err()
}

func (s *Store) DeleteIncomeLine(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM income_lines WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, fmt.Sprintf("income line %s", id))
}

// --- ExpenseStore -----------------------------------------------------------

func (s *Store) CreateExpense(ctx context.Context, exp finance.Expense) (finance.Expense, error) {
	if exp.ID == "" {
		exp.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	exp.CreatedAt = now
	exp.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (id, user_id, name, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, exp.ID, exp.UserID, exp.Name, exp.Amount, exp.CreatedAt, exp.UpdatedAt)
	if err != nil {
		return finance.Expense{}, err
	}
	return exp, nil
}

func (s *Store) UpdateExpense(ctx context.Context, exp finance.Expense) (finance.Expense, error) {
	exp.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE expenses SET name = $2, amount = $3, updated_at = $4 WHERE id = $1
	`, exp.ID, exp.Name, exp.Amount, exp.UpdatedAt)
	if err != nil {
		return finance.Expense{}, err
	}
	if err := requireRow(res, fmt.Sprintf("expense %s", exp.ID)); err != nil {
		return finance.Expense{}, err
	}
	return s.GetExpense(ctx, exp.ID)
}

func (s *Store) GetExpense(ctx context.Context, id string) (finance.Expense, error) {
	var exp finance.Expense
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, amount, created_at, updated_at
		FROM expenses WHERE id = $1
	`, id).Scan(&exp.ID, &exp.UserID, &exp.Name, &exp.Amount, &exp.CreatedAt, &exp.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return finance.Expense{}, fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return finance.Expense{}, err
	}
	return exp, nil
}

func (s *Store) ListExpenses(ctx context.Context, userID string) ([]finance.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, amount, created_at, updated_at
		FROM expenses WHERE user_id = $1 ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finance.Expense
	for rows.Next() {
		var exp finance.Expense
		if err := rows.Scan(&exp.ID, &exp.UserID, &exp.Name, &exp.Amount, &exp.CreatedAt, &exp.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, exp)
	}
	return out, rows.Err()
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, fmt.Sprintf("expense %s", id))
}

// --- AssetStore -------------------------------------------------------------

func (s *Store) CreateAsset(ctx context.Context, a finance.Asset) (finance.Asset, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assets (id, user_id, name, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.UserID, a.Name, a.Value, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return finance.Asset{}, err
	}
	return a, nil
}

func (s *Store) UpdateAsset(ctx context.Context, a finance.Asset) (finance.Asset, error) {
	a.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE assets SET name = $2, value = $3, updated_at = $4 WHERE id = $1
	`, a.ID, a.Name, a.Value, a.UpdatedAt)
	if err != nil {
		return finance.Asset{}, err
	}
	if err := requireRow(res, fmt.Sprintf("asset %s", a.ID)); err != nil {
		return finance.Asset{}, err
	}
	return s.GetAsset(ctx, a.ID)
}

func (s *Store) GetAsset(ctx context.Context, id string) (finance.Asset, error) {
	var a finance.Asset
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, value, created_at, updated_at
		FROM assets WHERE id = $1
	`, id).Scan(&a.ID, &a.UserID, &a.Name, &a.Value, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return finance.Asset{}, fmt.Errorf("asset %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return finance.Asset{}, err
	}
	return a, nil
}

func (s *Store) ListAssets(ctx context.Context, userID string) ([]finance.Asset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, value, created_at, updated_at
		FROM assets WHERE user_id = $1 ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finance.Asset
	for rows.Next() {
		var a finance.Asset
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Value, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) DeleteAsset(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, fmt.Sprintf("asset %s", id))
}

// --- LiabilityStore ---------------------------------------------------------

func (s *Store) CreateLiability(ctx context.Context, l finance.Liability) (finance.Liability, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO liabilities (id, user_id, name, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, l.ID, l.UserID, l.Name, l.Value, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return finance.Liability{}, err
	}
	return l, nil
}

func (s *Store) UpdateLiability(ctx context.Context, l finance.Liability) (finance.Liability, error) {
	l.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE liabilities SET name = $2, value = $3, updated_at = $4 WHERE id = $1
	`, l.ID, l.Name, l.Value, l.UpdatedAt)
	if err != nil {
		return finance.Liability{}, err
	}
	if err := requireRow(res, fmt.Sprintf("liability %s", l.ID)); err != nil {
		return finance.Liability{}, err
	}
	return s.GetLiability(ctx, l.ID)
}

func (s *Store) GetLiability(ctx context.Context, id string) (finance.Liability, error) {
	var l finance.Liability
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, value, created_at, updated_at
		FROM liabilities WHERE id = $1
	`, id).Scan(&l.ID, &l.UserID, &l.Name, &l.Value, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return finance.Liability{}, fmt.Errorf("liability %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return finance.Liability{}, err
	}
	return l, nil
}

func (s *Store) ListLiabilities(ctx context.Context, userID string) ([]finance.Liability, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, value, created_at, updated_at
		FROM liabilities WHERE user_id = $1 ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finance.Liability
	for rows.Next() {
		var l finance.Liability
		if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.Value, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) DeleteLiability(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM liabilities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, fmt.Sprintf("liability %s", id))
}

// --- CashSavingsStore -------------------------------------------------------

func (s *Store) GetCashSavings(ctx context.Context, userID string) (finance.CashSavings, error) {
	var cs finance.CashSavings
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, amount, updated_at FROM cash_savings WHERE user_id = $1
	`, userID).Scan(&cs.UserID, &cs.Amount, &cs.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return finance.CashSavings{}, fmt.Errorf("cash savings for %s: %w", userID, storage.ErrNotFound)
	}
	if err != nil {
		return finance.CashSavings{}, err
	}
	return cs, nil
}

func (s *Store) UpsertCashSavings(ctx context.Context, cs finance.CashSavings) (finance.CashSavings, error) {
	cs.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cash_savings (user_id, amount, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET amount = EXCLUDED.amount, updated_at = EXCLUDED.updated_at
	`, cs.UserID, cs.Amount, cs.UpdatedAt)
	if err != nil {
		return finance.CashSavings{}, err
	}
	return cs, nil
}

// requireRow converts a zero-row result into ErrNotFound.
func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return nil
}
