package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/lottery-auth/internal/domain"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrUnknownSubject  = errors.New("token subject does not match a user")
	ErrForbidden       = errors.New("insufficient role")
)

// SessionStore persists issued tokens. It is the only source of truth for revocation.
// Lookup returns domain.ErrSessionNotFound for absent rows and never filters lapsed ones.
type SessionStore interface {
	Create(ctx context.Context, session *domain.Session) error
	Lookup(ctx context.Context, token string) (*domain.Session, error)
	Revoke(ctx context.Context, token string) error
}

// UserLookup resolves the username of a session owner.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Gate answers whether a bearer token may proceed and as whom.
type Gate struct {
	codec    *TokenCodec
	sessions SessionStore
	users    UserLookup
	logger   *zap.Logger
	now      func() time.Time
}

// NewGate composes the codec, session store and user lookup.
func NewGate(codec *TokenCodec, sessions SessionStore, users UserLookup, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{codec: codec, sessions: sessions, users: users, logger: logger, now: time.Now}
}

// Authorize extracts the bearer token from an Authorization header value and checks it.
func (g *Gate) Authorize(ctx context.Context, header string, required domain.Role) (*domain.Principal, error) {
	return g.Check(ctx, BearerToken(header), required)
}

// Check runs decode, session lookup and the role policy, stopping at the first failure.
// The role comes from the token claims, not from the current user row.
func (g *Gate) Check(ctx context.Context, token string, required domain.Role) (*domain.Principal, error) {
	raw, err := g.codec.Decode(token)
	if err != nil {
		return nil, g.reject(token, err)
	}
	claims, err := ParseTokenClaims(raw)
	if err != nil {
		return nil, g.reject(token, err)
	}

	session, err := g.sessions.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, g.reject(token, ErrSessionNotFound)
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if session.ExpiredAt(g.now()) {
		return nil, g.reject(token, ErrSessionExpired)
	}
	if session.UserID != claims.Subject {
		return nil, g.reject(token, fmt.Errorf("%w: subject does not own session", ErrInvalidToken))
	}

	user, err := g.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, g.reject(token, ErrUnknownSubject)
		}
		return nil, fmt.Errorf("load session owner: %w", err)
	}

	if !Allows(required, claims.Role) {
		return nil, g.reject(token, ErrForbidden)
	}

	return &domain.Principal{
		UserID:   session.UserID,
		Username: user.Username,
		Role:     claims.Role,
	}, nil
}

func (g *Gate) reject(token string, err error) error {
	g.logger.Debug("authorization rejected",
		zap.String("token_fp", Fingerprint(token)),
		zap.Error(err),
	)
	return err
}

// Unauthenticated reports whether err is one of the 401 rejections.
func Unauthenticated(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrSessionExpired) ||
		errors.Is(err, ErrUnknownSubject)
}

// BearerToken returns the token of an "Authorization: Bearer <token>" value, or "".
func BearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Fingerprint is a short non-reversible token identifier for logs.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:4])
}
