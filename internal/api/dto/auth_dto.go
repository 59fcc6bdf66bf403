package dto

import "time"

// RegisterRequest payload for new accounts. Role defaults to "user".
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token     string `json:"token"`
	Role      string `json:"role"`
	ExpiresAt string `json:"expires_at"`
}

// StatusResponse carries a single status word.
type StatusResponse struct {
	Status string `json:"status"`
}

// SessionStatsResponse summarises stored sessions.
type SessionStatsResponse struct {
	TotalUsers     int64     `json:"total_users"`
	TotalSessions  int64     `json:"total_sessions"`
	ActiveSessions int64     `json:"active_sessions"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// PurgeResponse reports how many lapsed sessions were deleted.
type PurgeResponse struct {
	Purged int64 `json:"purged"`
}
