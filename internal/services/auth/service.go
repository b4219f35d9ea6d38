// Package auth implements signup, login and session authentication.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	tokens "github.com/gdiv-se/richflow/internal/auth"
	"github.com/gdiv-se/richflow/internal/domain/session"
	"github.com/gdiv-se/richflow/internal/domain/user"
	"github.com/gdiv-se/richflow/internal/logging"
	"github.com/gdiv-se/richflow/internal/services"
	"github.com/gdiv-se/richflow/internal/storage"
)

// Conflict and credential outcomes the HTTP layer maps to status codes.
var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrNameTaken          = errors.New("this username is already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// Service implements account registration and session-backed authentication.
type Service struct {
	users         storage.UserStore
	sessions      storage.SessionStore
	jwtSecret     []byte
	tokenValidity time.Duration
	bcryptCost    int
	log           *logging.Logger
	now           func() time.Time
}

// Option customises service construction.
type Option func(*Service)

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

// WithTokenValidity overrides the token/session lifetime.
func WithTokenValidity(d time.Duration) Option {
	return func(s *Service) { s.tokenValidity = d }
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New constructs the auth service.
func New(users storage.UserStore, sessions storage.SessionStore, jwtSecret []byte, log *logging.Logger, opts ...Option) *Service {
	if log == nil {
		log = logging.NewDefault("auth")
	}
	s := &Service{
		users:         users,
		sessions:      sessions,
		jwtSecret:     jwtSecret,
		tokenValidity: tokens.SessionValidity,
		bcryptCost:    bcrypt.DefaultCost,
		log:           log,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindExistingUser returns the user whose email or name matches, or
// storage.ErrNotFound when neither does.
func (s *Service) FindExistingUser(ctx context.Context, email, name string) (user.User, error) {
	return s.users.GetUserByEmailOrName(ctx, email, name)
}

// Register creates a new account. The conflict outcome distinguishes a taken
// email from a taken name. The returned profile never carries the hash.
func (s *Service) Register(ctx context.Context, name, email, password string) (user.Profile, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return user.Profile{}, services.Invalidf("name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return user.Profile{}, services.Invalidf("a valid email is required")
	}
	if len(password) < 8 {
		return user.Profile{}, services.Invalidf("password must be at least 8 characters")
	}

	existing, err := s.FindExistingUser(ctx, email, name)
	if err == nil {
		if strings.EqualFold(existing.Email, email) {
			return user.Profile{}, ErrEmailTaken
		}
		return user.Profile{}, ErrNameTaken
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return user.Profile{}, fmt.Errorf("lookup existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return user.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.CreateUser(ctx, user.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return user.Profile{}, fmt.Errorf("create user: %w", err)
	}

	s.log.WithField("user_id", created.ID).Info("user registered")
	return created.PublicProfile(), nil
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token string
	User  user.Profile
}

// Login verifies credentials, issues a token and records the session row.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := tokens.GenerateToken(u.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return LoginResult{}, fmt.Errorf("generate token: %w", err)
	}

	now := s.now().UTC()
	if err := s.sessions.CreateSession(ctx, session.Session{
		Token:     token,
		UserID:    u.ID,
		IsValid:   true,
		ExpiresAt: now.Add(s.tokenValidity),
		CreatedAt: now,
	}); err != nil {
		return LoginResult{}, fmt.Errorf("record session: %w", err)
	}

	if err := s.users.TouchLastLogin(ctx, u.ID, now); err != nil {
		s.log.WithError(err).WithField("user_id", u.ID).Warn("failed to record last login")
	}
	u.LastLogin = &now

	s.log.WithField("user_id", u.ID).Info("user logged in")
	return LoginResult{Token: token, User: u.PublicProfile()}, nil
}

// Logout revokes the session behind the token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	err := s.sessions.RevokeSession(ctx, token)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// Authenticate performs the two-factor session check: the token must verify
// cryptographically AND a live session row must exist for it. Either check
// failing yields ErrUnauthenticated.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	userID, ok := tokens.VerifyToken(token, s.jwtSecret)
	if !ok {
		return "", ErrUnauthenticated
	}

	sess, err := s.sessions.GetLiveSession(ctx, token, s.now().UTC())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("lookup session: %w", err)
	}
	if sess.UserID != userID {
		return "", ErrUnauthenticated
	}
	return userID, nil
}
