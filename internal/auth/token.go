package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/lottery-auth/internal/domain"
)

// Claim keys written at login.
const (
	ClaimID        = "jti"
	ClaimSubject   = "sub"
	ClaimRole      = "role"
	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"
)

var (
	// ErrInvalidToken covers malformed, badly signed and expired tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is joined with ErrInvalidToken when the exp claim has passed.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the decoded token payload.
type Claims map[string]any

// TokenCodec encodes and decodes HS256-signed compact tokens.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// NewTokenCodec builds a codec around the process-wide signing secret.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), now: time.Now}
}

// Encode signs claims as header.claims.signature, each segment unpadded base64url.
func (tc *TokenCodec) Encode(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims))
	signed, err := token.SignedString(tc.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature in constant time, then the exp claim when present.
func (tc *TokenCodec) Decode(tokenStr string) (Claims, error) {
	if strings.Count(tokenStr, ".") != 2 {
		return nil, fmt.Errorf("%w: expected three segments", ErrInvalidToken)
	}

	parsed, err := tc.parser().ParseWithClaims(tokenStr, jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tc.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", ErrInvalidToken)
	}
	return Claims(claims), nil
}

// parser compares against whole seconds with one second of leeway, so a token
// stays valid through the second named by its exp claim.
func (tc *TokenCodec) parser() *jwt.Parser {
	return jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithLeeway(time.Second),
		jwt.WithTimeFunc(func() time.Time {
			return tc.now().Truncate(time.Second)
		}),
	)
}

// TokenClaims is the typed view of the claims issued at login.
type TokenClaims struct {
	ID        string
	Subject   string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Claims flattens the typed claims into the wire map.
func (t TokenClaims) Claims() Claims {
	return Claims{
		ClaimID:        t.ID,
		ClaimSubject:   t.Subject,
		ClaimRole:      string(t.Role),
		ClaimIssuedAt:  t.IssuedAt.Unix(),
		ClaimExpiresAt: t.ExpiresAt.Unix(),
	}
}

// ParseTokenClaims extracts the login claims from a decoded payload.
func ParseTokenClaims(c Claims) (TokenClaims, error) {
	mc := jwt.MapClaims(c)

	sub, err := mc.GetSubject()
	if err != nil || sub == "" {
		return TokenClaims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	role, _ := c[ClaimRole].(string)
	if !domain.Role(role).Valid() {
		return TokenClaims{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, role)
	}

	out := TokenClaims{Subject: sub, Role: domain.Role(role)}
	out.ID, _ = c[ClaimID].(string)
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return TokenClaims{}, fmt.Errorf("%w: missing expiry", ErrInvalidToken)
	}
	out.ExpiresAt = exp.Time
	return out, nil
}
