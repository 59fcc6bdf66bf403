package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request and feeds the request counters.
// Headers are not logged so bearer tokens never reach the log.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		metrics.RecordRequest(c.Route().Path, c.Method(), status, elapsed)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
		}
		if status >= 500 {
			logger.Warn("request", fields...)
		} else {
			logger.Debug("request", fields...)
		}
		return err
	}
}
