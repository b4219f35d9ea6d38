package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gdiv-se/richflow/internal/logging"
	"github.com/gdiv-se/richflow/internal/services"
	"github.com/gdiv-se/richflow/internal/storage/memory"
)

var testSecret = []byte("unit-test-secret")

func newTestService(opts ...Option) (*Service, *memory.Store) {
	store := memory.New()
	base := []Option{WithBcryptCost(4)} // keep hashing fast in tests
	svc := New(store, store, testSecret, logging.NewNop(), append(base, opts...)...)
	return svc, store
}

func TestRegister_Success(t *testing.T) {
	svc, store := newTestService()

	profile, err := svc.Register(context.Background(), "alice", "alice@example.com", "sup3rsecret")
	require.NoError(t, err)
	require.NotEmpty(t, profile.ID)
	require.Equal(t, "alice", profile.Name)
	require.Equal(t, "alice@example.com", profile.Email)

	stored, err := store.GetUserByID(context.Background(), profile.ID)
	require.NoError(t, err)
	require.NotEqual(t, "sup3rsecret", stored.PasswordHash, "plaintext password must never be stored")
	require.NotEmpty(t, stored.PasswordHash)
}

func TestRegister_ConflictDistinguishesEmailAndName(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "sup3rsecret")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "someone-else", "alice@example.com", "sup3rsecret")
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(context.Background(), "alice", "other@example.com", "sup3rsecret")
	require.ErrorIs(t, err, ErrNameTaken)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()

	cases := []struct {
		name, email, password string
	}{
		{"", "a@example.com", "longenough"},
		{"bob", "not-an-email", "longenough"},
		{"bob", "b@example.com", "short"},
	}
	for _, tc := range cases {
		_, err := svc.Register(context.Background(), tc.name, tc.email, tc.password)
		if !services.IsValidation(err) {
			t.Fatalf("Register(%q, %q, ...) = %v, want validation error", tc.name, tc.email, err)
		}
	}
}

func TestLogin_IssuesTokenAndSession(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "sup3rsecret")
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), "alice@example.com", "sup3rsecret")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.NotNil(t, res.User.LastLogin)

	userID, err := svc.Authenticate(context.Background(), res.Token)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, userID)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "sup3rsecret")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "alice@example.com", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "sup3rsecret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_RevokedSession(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "sup3rsecret")
	require.NoError(t, err)
	res, err := svc.Login(context.Background(), "alice@example.com", "sup3rsecret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), res.Token))

	// Token still verifies cryptographically, but the session is revoked.
	_, err = svc.Authenticate(context.Background(), res.Token)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthenticate_ExpiredSession(t *testing.T) {
	current := time.Now()
	svc, _ := newTestService(
		WithTokenValidity(time.Hour),
		WithClock(func() time.Time { return current }),
	)

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "sup3rsecret")
	require.NoError(t, err)
	res, err := svc.Login(context.Background(), "alice@example.com", "sup3rsecret")
	require.NoError(t, err)

	// Advance past the session expiry; the row is still there but no longer
	// live, so authentication must fail.
	current = current.Add(2 * time.Hour)
	_, err = svc.Authenticate(context.Background(), res.Token)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthenticate_GarbageToken(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Authenticate(context.Background(), "not-a-token")
	require.ErrorIs(t, err, ErrUnauthenticated)
}
