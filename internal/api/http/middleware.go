package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/lottery-auth/internal/observability"
	apperrors "github.com/spec-kit/lottery-auth/pkg/util/errorutil"
)

// NewApp builds a Fiber app whose errors always render as {"error": ..., "code": ...}.
func NewApp(logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return writeError(c, logger, metrics, err)
		},
	})
	RegisterMiddlewares(app, logger, metrics, timeout)
	return app
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				err = writeError(c, logger, metrics, err)
			}
		}()
		return c.Next()
	}
}

func writeError(c *fiber.Ctx, logger *zap.Logger, metrics *observability.Metrics, err error) error {
	domainErr := apperrors.ToDomainError(err)
	metrics.RecordError(c.Path(), c.Method(), domainErr.Code)

	response := fiber.Map{
		"error": domainErr.Message,
		"code":  domainErr.Code,
	}
	if len(domainErr.Details) > 0 {
		response["details"] = domainErr.Details
	}
	if domainErr.HTTPStatus >= 500 {
		logger.Error("request failed", zap.String("path", c.Path()), zap.Error(domainErr))
	}
	return c.Status(domainErr.HTTPStatus).JSON(response)
}
