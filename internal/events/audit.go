package events

import (
	"context"

	"go.uber.org/zap"
)

// AllEventTypes lists every auth event type.
var AllEventTypes = []EventType{
	EventUserRegistered,
	EventLoginSucceeded,
	EventLoginFailed,
	EventLoggedOut,
	EventAccessDenied,
	EventSessionsPurged,
}

// RegisterAuditLog subscribes a zap audit writer to every auth event.
func RegisterAuditLog(d Dispatcher, logger *zap.Logger) {
	audit := logger.Named("audit")
	handler := func(_ context.Context, e Event) error {
		fields := []zap.Field{zap.String("event", string(e.Type)), zap.Time("at", e.Timestamp)}
		if e.UserID != "" {
			fields = append(fields, zap.String("user_id", e.UserID))
		}
		if e.Username != "" {
			fields = append(fields, zap.String("username", e.Username))
		}
		if e.Role != "" {
			fields = append(fields, zap.String("role", string(e.Role)))
		}
		if e.TokenFP != "" {
			fields = append(fields, zap.String("token_fp", e.TokenFP))
		}
		if e.Reason != "" {
			fields = append(fields, zap.String("reason", e.Reason))
		}
		if e.Type == EventSessionsPurged {
			fields = append(fields, zap.Int64("count", e.Count))
		}

		switch e.Type {
		case EventLoginFailed, EventAccessDenied:
			audit.Warn("auth event", fields...)
		default:
			audit.Info("auth event", fields...)
		}
		return nil
	}
	for _, t := range AllEventTypes {
		d.Subscribe(t, handler)
	}
}
