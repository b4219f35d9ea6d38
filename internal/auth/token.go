// Package auth provides JWT issuance and verification for session tokens.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionValidity is how long issued tokens and their session rows last.
const SessionValidity = 7 * 24 * time.Hour

// Claims carries the user identity inside an issued token.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed HS256 token for the user, valid for the given
// duration.
func GenerateToken(userID string, secret []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
	})
	return token.SignedString(secret)
}

// VerifyToken validates a token and extracts the user id. Any failure
// (malformed input, wrong signature, wrong method, expiry) yields ok=false;
// it never returns an error to the caller.
func VerifyToken(tokenString string, secret []byte) (userID string, ok bool) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, isHMAC := t.Method.(*jwt.SigningMethodHMAC); !isHMAC {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", false
	}
	return claims.UserID, true
}

// SessionExpiry returns the expiry instant for a session created now.
func SessionExpiry(now time.Time) time.Time {
	return now.Add(SessionValidity)
}
