package events

import (
	"time"

	"github.com/spec-kit/lottery-auth/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventLoginSucceeded EventType = "login_succeeded"
	EventLoginFailed    EventType = "login_failed"
	EventLoggedOut      EventType = "logged_out"
	EventAccessDenied   EventType = "access_denied"
	EventSessionsPurged EventType = "sessions_purged"
)

// Event represents an auth lifecycle event. Tokens appear only as fingerprints.
type Event struct {
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id,omitempty"`
	Username  string      `json:"username,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
	TokenFP   string      `json:"token_fp,omitempty"`
	Reason    string      `json:"reason,omitempty"`
	Count     int64       `json:"count,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
