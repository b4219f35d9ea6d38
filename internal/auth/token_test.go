package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken("user-1", secret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, ok := VerifyToken(token, secret)
	require.True(t, ok)
	require.Equal(t, "user-1", userID)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("user-1", []byte("secret-a"), time.Hour)
	require.NoError(t, err)

	if _, ok := VerifyToken(token, []byte("secret-b")); ok {
		t.Fatal("token signed with a different secret must not verify")
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	token, err := GenerateToken("user-1", []byte("secret"), -time.Minute)
	require.NoError(t, err)

	if _, ok := VerifyToken(token, []byte("secret")); ok {
		t.Fatal("expired token must not verify")
	}
}

func TestVerifyToken_Tampered(t *testing.T) {
	token, err := GenerateToken("user-1", []byte("secret"), time.Hour)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	if _, ok := VerifyToken(tampered, []byte("secret")); ok {
		t.Fatal("tampered token must not verify")
	}
}

func TestVerifyToken_Garbage(t *testing.T) {
	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		if _, ok := VerifyToken(input, []byte("secret")); ok {
			t.Fatalf("garbage input %q must not verify", input)
		}
	}
}

func TestVerifyToken_RejectsNonHMAC(t *testing.T) {
	// An unsigned token claiming alg=none must be rejected even though it
	// parses structurally.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-1"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	if _, ok := VerifyToken(token, []byte("secret")); ok {
		t.Fatal("alg=none token must not verify")
	}
}

func TestVerifyToken_EmptyUserID(t *testing.T) {
	token, err := GenerateToken("", []byte("secret"), time.Hour)
	require.NoError(t, err)

	if _, ok := VerifyToken(token, []byte("secret")); ok {
		t.Fatal("token without a user id must not verify")
	}
}
