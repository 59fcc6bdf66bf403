package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lottery-auth/internal/domain"
	apperrors "github.com/spec-kit/lottery-auth/pkg/util/errorutil"
)

const (
	principalKey = "auth_principal"
	tokenKey     = "auth_token"
)

// unauthorizedMessage is shared by every 401 so callers cannot tell rejections apart.
const unauthorizedMessage = "invalid or expired token"

// Authorizer resolves the principal for an Authorization header value.
type Authorizer interface {
	Authorize(ctx context.Context, header string, required domain.Role) (*domain.Principal, error)
}

// RequireRole runs the authorization check before the handler body.
func RequireRole(authorizer Authorizer, required domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		principal, err := authorizer.Authorize(c.UserContext(), header, required)
		if err != nil {
			return MapError(err)
		}
		c.Locals(principalKey, principal)
		c.Locals(tokenKey, BearerToken(header))
		return c.Next()
	}
}

// MapError converts gate failures into HTTP errors: 403 for role mismatches,
// one uniform 401 for every other rejection and 500 for anything else.
func MapError(err error) error {
	switch {
	case errors.Is(err, ErrForbidden):
		return apperrors.NewForbidden("forbidden")
	case Unauthenticated(err):
		return apperrors.NewUnauthorized(unauthorizedMessage)
	default:
		return apperrors.NewInternalError(err)
	}
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*domain.Principal)
	return principal, ok
}

// TokenFromContext retrieves the bearer token that authenticated the request.
func TokenFromContext(c *fiber.Ctx) string {
	token, _ := c.Locals(tokenKey).(string)
	return token
}
