// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gdiv-se/richflow/internal/domain/finance"
	"github.com/gdiv-se/richflow/internal/domain/session"
	"github.com/gdiv-se/richflow/internal/domain/user"
	"github.com/gdiv-se/richflow/internal/storage"
)

// Store is the in-memory implementation of every storage interface.
type Store struct {
	mu          sync.RWMutex
	users       map[string]user.User
	sessions    map[string]session.Session
	income      map[string]finance.IncomeLine
	expenses    map[string]finance.Expense
	assets      map[string]finance.Asset
	liabilities map[string]finance.Liability
	cashSavings map[string]finance.CashSavings
	lastStamp   time.Time
}

// stamp returns a strictly increasing creation time so listings sorted by
// CreatedAt are deterministic. Callers must hold mu.
func (s *Store) stamp() time.Time {
	now := time.Now().UTC()
	if !now.After(s.lastStamp) {
		now = s.lastStamp.Add(time.Nanosecond)
	}
	s.lastStamp = now
	return now
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.SessionStore = (*Store)(nil)
var _ storage.IncomeStore = (*Store)(nil)
var _ storage.ExpenseStore = (*Store)(nil)
var _ storage.AssetStore = (*Store)(nil)
var _ storage.LiabilityStore = (*Store)(nil)
var _ storage.CashSavingsStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:       make(map[string]user.User),
		sessions:    make(map[string]session.Session),
		income:      make(map[string]finance.IncomeLine),
		expenses:    make(map[string]finance.Expense),
		assets:      make(map[string]finance.Asset),
		liabilities: make(map[string]finance.Liability),
		cashSavings: make(map[string]finance.CashSavings),
	}
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.User{}, fmt.Errorf("user email %s already exists", u.Email)
		}
		if existing.Name == u.Name {
			return user.User{}, fmt.Errorf("user name %s already exists", u.Name)
		}
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := s.stamp()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, fmt.Errorf("user %s: %w", email, storage.ErrNotFound)
}

func (s *Store) GetUserByEmailOrName(ctx context.Context, email, name string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) || u.Name == name {
			return u, nil
		}
	}
	return user.User{}, fmt.Errorf("user %s/%s: %w", email, name, storage.ErrNotFound)
}

func (s *Store) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	u.LastLogin = &at
	u.UpdatedAt = at
	s.users[id] = u
	return nil
}

// --- SessionStore -----------------------------------------------------------

func (s *Store) CreateSession(ctx context.Context, sess session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	s.sessions[sess.Token] = sess
	return nil
}

func (s *Store) GetLiveSession(ctx context.Context, token string, now time.Time) (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[token]
	if !ok || !sess.Live(now) {
		return session.Session{}, fmt.Errorf("session: %w", storage.ErrNotFound)
	}
	return sess, nil
}

func (s *Store) RevokeSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return fmt.Errorf("session: %w", storage.ErrNotFound)
	}
	sess.IsValid = false
	s.sessions[token] = sess
	return nil
}

func (s *Store) RevokeUserSessions(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, sess := range s.sessions {
		if sess.UserID == userID {
			sess.IsValid = false
			s.sessions[token] = sess
		}
	}
	return nil
}

// --- IncomeStore ------------------------------------------------------------

func (s *Store) CreateIncomeLine(ctx context.Context, line finance.IncomeLine) (finance.IncomeLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if line.ID == "" {
		line.ID = uuid.NewString()
	}
	now := s.stamp()
	line.CreatedAt = now
	line.UpdatedAt = now
	s.income[line.ID] = line
	return line, nil
}

func (s *Store) UpdateIncomeLine(ctx context.Context, line finance.IncomeLine) (finance.IncomeLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.income[line.ID]
	if !ok {
		return finance.IncomeLine{}, fmt.Errorf("income line %s: %w", line.ID, storage.ErrNotFound)
	}
	line.CreatedAt = existing.CreatedAt
	line.UpdatedAt = time.Now().UTC()
	s.income[line.ID] = line
	return line, nil
}

func (s *Store) GetIncomeLine(ctx context.Context, id string) (finance.IncomeLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	line, ok := s.income[id]
	if !ok {
		return finance.IncomeLine{}, fmt.Errorf("income line %s: %w", id, storage.ErrNotFound)
	}
	return line, nil
}

func (s *Store) ListIncomeLines(ctx context.Context, userID string) ([]finance.IncomeLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []finance.IncomeLine
	for _, line := range s.income {
		if line.UserID == userID {
			out = append(out, line)
		}
	}
	sortByCreated(out, func(l finance.IncomeLine) time.Time { return l.CreatedAt })
	return out, nil
}

func (s *Store) DeleteIncomeLine(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.income[id]; !ok {
		return fmt.Errorf("income line %s: %w", id, storage.ErrNotFound)
	}
	delete(s.income, id)
	return nil
}

// --- ExpenseStore -----------------------------------------------------------

func (s *Store) CreateExpense(ctx context.Context, exp finance.Expense) (finance.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if exp.ID == "" {
		exp.ID = uuid.NewString()
	}
	now := s.stamp()
	exp.CreatedAt = now
	exp.UpdatedAt = now
	s.expenses[exp.ID] = exp
	return exp, nil
}

func (s *Store) UpdateExpense(ctx context.Context, exp finance.Expense) (finance.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.expenses[exp.ID]
	if !ok {
		return finance.Expense{}, fmt.Errorf("expense %s: %w", exp.ID, storage.ErrNotFound)
	}
	exp.CreatedAt = existing.CreatedAt
	exp.UpdatedAt = time.Now().UTC()
	s.expenses[exp.ID] = exp
	return exp, nil
}

func (s *Store) GetExpense(ctx context.Context, id string) (finance.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exp, ok := s.expenses[id]
	if !ok {
		return finance.Expense{}, fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	return exp, nil
}

func (s *Store) ListExpenses(ctx context.Context, userID string) ([]finance.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []finance.Expense
	for _, exp := range s.expenses {
		if exp.UserID == userID {
			out = append(out, exp)
		}
	}
	sortByCreated(out, func(e finance.Expense) time.Time { return e.CreatedAt })
	return out, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[id]; !ok {
		return fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	delete(s.expenses, id)
	return nil
}

// --- AssetStore -------------------------------------------------------------

func (s *Store) CreateAsset(ctx context.Context, a finance.Asset) (finance.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := s.stamp()
	a.CreatedAt = now
	a.UpdatedAt = now
	s.assets[a.ID] = a
	return a, nil
}

func (s *Store) UpdateAsset(ctx context.Context, a finance.Asset) (finance.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.assets[a.ID]
	if !ok {
		return finance.Asset{}, fmt.Errorf("asset %s: %w", a.ID, storage.ErrNotFound)
	}
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now().UTC()
	s.assets[a.ID] = a
	return a, nil
}

func (s *Store) GetAsset(ctx context.Context, id string) (finance.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assets[id]
	if !ok {
		return finance.Asset{}, fmt.Errorf("asset %s: %w", id, storage.ErrNotFound)
	}
	return a, nil
}

func (s *Store) ListAssets(ctx context.Context, userID string) ([]finance.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []finance.Asset
	for _, a := range s.assets {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sortByCreated(out, func(a finance.Asset) time.Time { return a.CreatedAt })
	return out, nil
}

func (s *Store) DeleteAsset(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assets[id]; !ok {
		return fmt.Errorf("asset %s: %w", id, storage.ErrNotFound)
	}
	delete(s.assets, id)
	return nil
}

// --- LiabilityStore ---------------------------------------------------------

func (s *Store) CreateLiability(ctx context.Context, l finance.Liability) (finance.Liability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := s.stamp()
	l.CreatedAt = now
	l.UpdatedAt = now
	s.liabilities[l.ID] = l
	return l, nil
}

func (s *Store) UpdateLiability(ctx context.Context, l finance.Liability) (finance.Liability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.liabilities[l.ID]
	if !ok {
		return finance.Liability{}, fmt.Errorf("liability %s: %w", l.ID, storage.ErrNotFound)
	}
	l.CreatedAt = existing.CreatedAt
	l.UpdatedAt = time.Now().UTC()
	s.liabilities[l.ID] = l
	return l, nil
}

func (s *Store) GetLiability(ctx context.Context, id string) (finance.Liability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.liabilities[id]
	if !ok {
		return finance.Liability{}, fmt.Errorf("liability %s: %w", id, storage.ErrNotFound)
	}
	return l, nil
}

func (s *Store) ListLiabilities(ctx context.Context, userID string) ([]finance.Liability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []finance.Liability
	for _, l := range s.liabilities {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sortByCreated(out, func(l finance.Liability) time.Time { return l.CreatedAt })
	return out, nil
}

func (s *Store) DeleteLiability(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.liabilities[id]; !ok {
		return fmt.Errorf("liability %s: %w", id, storage.ErrNotFound)
	}
	delete(s.liabilities, id)
	return nil
}

// --- CashSavingsStore -------------------------------------------------------

func (s *Store) GetCashSavings(ctx context.Context, userID string) (finance.CashSavings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cs, ok := s.cashSavings[userID]
	if !ok {
		return finance.CashSavings{}, fmt.Errorf("cash savings for %s: %w", userID, storage.ErrNotFound)
	}
	return cs, nil
}

func (s *Store) UpsertCashSavings(ctx context.Context, cs finance.CashSavings) (finance.CashSavings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs.UpdatedAt = time.Now().UTC()
	s.cashSavings[cs.UserID] = cs
	return cs, nil
}

// sortByCreated orders a slice by creation time so listings are stable.
func sortByCreated[T any](items []T, created func(T) time.Time) {
	sort.Slice(items, func(i, j int) bool {
		return created(items[i]).Before(created(items[j]))
	})
}
