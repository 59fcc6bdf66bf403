package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lottery-auth/internal/api/http/handlers"
	"github.com/spec-kit/lottery-auth/internal/auth"
	"github.com/spec-kit/lottery-auth/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	Admin      *handlers.AdminHandler
	Authorizer auth.Authorizer
}

// RegisterRoutes wires HTTP routes. Every protected route names its required role.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", auth.RequireRole(cfg.Authorizer, domain.RoleUser), cfg.Auth.Me)
	authGroup.Post("/logout", auth.RequireRole(cfg.Authorizer, domain.RoleUser), cfg.Auth.Logout)

	api.Get("/moderation/ping", auth.RequireRole(cfg.Authorizer, domain.RoleModerator), cfg.Auth.Me)

	admin := api.Group("/admin", auth.RequireRole(cfg.Authorizer, domain.RoleAdmin))
	admin.Get("/sessions", cfg.Admin.SessionStats)
	admin.Post("/sessions/purge", cfg.Admin.PurgeSessions)
	admin.Get("/metrics", cfg.Admin.Metrics)
}
