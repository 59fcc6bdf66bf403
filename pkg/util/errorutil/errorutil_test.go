package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorKeepsDomainErrors(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", NewInvalidCredentials())
	de := ToDomainError(wrapped)
	require.Equal(t, http.StatusUnauthorized, de.HTTPStatus)
	require.Equal(t, "INVALID_CREDENTIALS", de.Code)
}

func TestToDomainErrorMapsFiberErrors(t *testing.T) {
	de := ToDomainError(fiber.ErrNotFound)
	require.Equal(t, http.StatusNotFound, de.HTTPStatus)
	require.Equal(t, "NOT_FOUND", de.Code)
}

func TestToDomainErrorHidesUnknownErrors(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	de := ToDomainError(cause)
	require.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	require.Equal(t, "internal server error", de.Message)
	require.ErrorIs(t, de, cause)
}

func TestToDomainErrorNil(t *testing.T) {
	require.Nil(t, ToDomainError(nil))
}
