package domain

import "time"

// Session is the server-side record of one issued token.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// NewSession builds a session whose expiry is createdAt + ttl.
// The same expiry must be placed in the token claims.
func NewSession(token, userID string, createdAt time.Time, ttl time.Duration) *Session {
	return &Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(ttl),
	}
}

// ExpiredAt reports whether the session has lapsed at the given instant.
func (s *Session) ExpiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Principal is the resolved identity handed to protected handlers.
type Principal struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// SessionStats summarises the session table.
type SessionStats struct {
	Total  int64
	Active int64
}
