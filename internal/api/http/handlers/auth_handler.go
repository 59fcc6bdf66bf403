package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lottery-auth/internal/api/dto"
	"github.com/spec-kit/lottery-auth/internal/auth"
	"github.com/spec-kit/lottery-auth/internal/domain"
	"github.com/spec-kit/lottery-auth/internal/service"
	apperrors "github.com/spec-kit/lottery-auth/pkg/util/errorutil"
)

// AuthHandler exposes register, login, me and logout.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	_, err := h.auth.Register(c.UserContext(), req.Username, req.Password, domain.Role(req.Role))
	switch {
	case err == nil:
	case errors.Is(err, service.ErrMissingCredentials), errors.Is(err, service.ErrInvalidRole):
		return apperrors.NewValidationError(err.Error(), nil)
	case errors.Is(err, domain.ErrDuplicateUser):
		return apperrors.NewConflict("user already exists", nil)
	default:
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.StatusResponse{Status: "registered"})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return apperrors.NewInvalidCredentials()
		}
		return err
	}

	return c.JSON(dto.LoginResponse{
		Token:     result.Token,
		Role:      string(result.Role),
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Me handles GET /api/auth/me and returns the resolved principal.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("invalid or expired token")
	}
	return c.JSON(principal)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	if err := h.auth.Logout(c.UserContext(), principal, auth.TokenFromContext(c)); err != nil {
		return err
	}
	return c.JSON(dto.StatusResponse{Status: "logged_out"})
}
