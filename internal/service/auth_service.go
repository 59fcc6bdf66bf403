package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/lottery-auth/internal/auth"
	"github.com/spec-kit/lottery-auth/internal/config"
	"github.com/spec-kit/lottery-auth/internal/domain"
	"github.com/spec-kit/lottery-auth/internal/events"
	"github.com/spec-kit/lottery-auth/internal/observability"
	"github.com/spec-kit/lottery-auth/internal/repository"
	"github.com/spec-kit/lottery-auth/internal/session"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingCredentials = errors.New("username and password required")
	ErrInvalidRole        = errors.New("invalid role")
)

// dummySalt feeds the KDF when the username is unknown so both failure paths cost the same.
const dummySalt = "00000000000000000000000000000000"

// LoginResult is returned to the caller of a successful login.
type LoginResult struct {
	Token     string
	Role      domain.Role
	ExpiresAt time.Time
}

// AuthService coordinates registration, login, authorization and logout.
type AuthService struct {
	users    repository.UserRepository
	sessions session.Backend
	codec    *auth.TokenCodec
	gate     *auth.Gate
	events   events.Dispatcher
	metrics  *observability.Metrics
	logger   *zap.Logger
	ttl      time.Duration
	now      func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Users    repository.UserRepository
	Sessions session.Backend
	Events   events.Dispatcher
	Metrics  *observability.Metrics
	Logger   *zap.Logger
}

// NewAuthService builds the service from the auth configuration.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := deps.Events
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}
	codec := auth.NewTokenCodec(cfg.JWTSecret)
	return &AuthService{
		users:    deps.Users,
		sessions: deps.Sessions,
		codec:    codec,
		gate:     auth.NewGate(codec, deps.Sessions, deps.Users, logger),
		events:   dispatcher,
		metrics:  deps.Metrics,
		logger:   logger,
		ttl:      cfg.TokenTTL(),
		now:      time.Now,
	}
}

// Register creates an account with a fresh salt and a PBKDF2 digest.
func (s *AuthService) Register(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	salt, err := auth.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	user := &domain.User{
		Username:       username,
		PasswordDigest: auth.HashPassword(password, salt),
		Salt:           salt,
		Role:           role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventUserRegistered,
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	return user, nil
}

// Login verifies the password, signs a token and persists its session.
// The claims exp and the session expiry come from the same instant.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		auth.VerifyPassword(password, "", dummySalt)
		return nil, s.loginFailed(ctx, username, "unknown user")
	}
	if !auth.VerifyPassword(password, user.PasswordDigest, user.Salt) {
		return nil, s.loginFailed(ctx, username, "password mismatch")
	}

	issuedAt := s.now().UTC().Truncate(time.Second)
	claims := auth.TokenClaims{
		ID:        uuid.NewString(),
		Subject:   user.ID,
		Role:      user.Role,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(s.ttl),
	}
	token, err := s.codec.Encode(claims.Claims())
	if err != nil {
		return nil, err
	}

	sess := domain.NewSession(token, user.ID, issuedAt, s.ttl)
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.metrics.RecordAuth("login_ok")
	s.publish(ctx, events.Event{
		Type:     events.EventLoginSucceeded,
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		TokenFP:  auth.Fingerprint(token),
	})
	if user.Legacy() {
		s.logger.Info("login with legacy password digest", zap.String("user_id", user.ID))
	}

	return &LoginResult{Token: token, Role: user.Role, ExpiresAt: sess.ExpiresAt}, nil
}

// Authorize resolves the principal behind an Authorization header value.
func (s *AuthService) Authorize(ctx context.Context, header string, required domain.Role) (*domain.Principal, error) {
	principal, err := s.gate.Authorize(ctx, header, required)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrForbidden):
			s.metrics.RecordAuth("gate_forbidden")
		case auth.Unauthenticated(err):
			s.metrics.RecordAuth("gate_unauthorized")
		default:
			s.metrics.RecordAuth("gate_error")
			return nil, err
		}
		s.publish(ctx, events.Event{
			Type:    events.EventAccessDenied,
			TokenFP: auth.Fingerprint(auth.BearerToken(header)),
			Reason:  err.Error(),
		})
		return nil, err
	}
	return principal, nil
}

// Logout revokes the session behind token. Revoking an absent session is not an error.
func (s *AuthService) Logout(ctx context.Context, principal *domain.Principal, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	e := events.Event{Type: events.EventLoggedOut, TokenFP: auth.Fingerprint(token)}
	if principal != nil {
		e.UserID, e.Username, e.Role = principal.UserID, principal.Username, principal.Role
	}
	s.publish(ctx, e)
	return nil
}

// SessionStats reports total and live session rows.
func (s *AuthService) SessionStats(ctx context.Context) (domain.SessionStats, error) {
	return s.sessions.Stats(ctx, s.now())
}

// UserCount reports how many accounts exist.
func (s *AuthService) UserCount(ctx context.Context) (int64, error) {
	return s.users.Count(ctx)
}

// PurgeExpiredSessions deletes lapsed session rows.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	purged, err := s.sessions.PurgeExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	s.publish(ctx, events.Event{Type: events.EventSessionsPurged, Count: purged})
	return purged, nil
}

func (s *AuthService) loginFailed(ctx context.Context, username, reason string) error {
	s.metrics.RecordAuth("login_failed")
	s.publish(ctx, events.Event{Type: events.EventLoginFailed, Username: username, Reason: reason})
	return ErrInvalidCredentials
}

func (s *AuthService) publish(ctx context.Context, e events.Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now().UTC()
	}
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(e.Type)), zap.Error(err))
	}
}
