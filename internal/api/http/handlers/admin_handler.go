package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lottery-auth/internal/api/dto"
	"github.com/spec-kit/lottery-auth/internal/observability"
	"github.com/spec-kit/lottery-auth/internal/service"
)

// AdminHandler exposes session maintenance and counters to administrators.
type AdminHandler struct {
	auth    *service.AuthService
	metrics *observability.Metrics
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService, metrics *observability.Metrics) *AdminHandler {
	return &AdminHandler{auth: authService, metrics: metrics}
}

// SessionStats handles GET /api/admin/sessions.
func (h *AdminHandler) SessionStats(c *fiber.Ctx) error {
	ctx := c.UserContext()
	stats, err := h.auth.SessionStats(ctx)
	if err != nil {
		return err
	}
	users, err := h.auth.UserCount(ctx)
	if err != nil {
		return err
	}
	return c.JSON(dto.SessionStatsResponse{
		TotalUsers:     users,
		TotalSessions:  stats.Total,
		ActiveSessions: stats.Active,
		GeneratedAt:    time.Now().UTC(),
	})
}

// PurgeSessions handles POST /api/admin/sessions/purge.
func (h *AdminHandler) PurgeSessions(c *fiber.Ctx) error {
	purged, err := h.auth.PurgeExpiredSessions(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.PurgeResponse{Purged: purged})
}

// Metrics handles GET /api/admin/metrics.
func (h *AdminHandler) Metrics(c *fiber.Ctx) error {
	snapshot := h.metrics.Snapshot()
	if snapshot == nil {
		snapshot = map[string]map[string]int64{}
	}
	return c.JSON(snapshot)
}
