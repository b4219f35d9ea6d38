// Package session defines the server-side session record backing issued tokens.
package session

import "time"

// Session is a server-recorded grant for an issued token. A request is
// authenticated only when the token verifies and a matching live session
// exists.
type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"userId"`
	IsValid   bool      `json:"isValid"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Live reports whether the session is usable at the given instant. Validity
// requires both the revocation flag and the expiry to agree.
func (s Session) Live(now time.Time) bool {
	return s.IsValid && s.ExpiresAt.After(now)
}
