package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Reports        *handlers.ReportsHandler
	Live           *handlers.LiveHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")
	requireAuth := cfg.AuthMiddleware.Handle

	api.Post("/auth/login", cfg.Auth.Login)
	api.Post("/auth/logout", requireAuth, cfg.Auth.Logout)
	api.Get("/auth/me", requireAuth, cfg.Auth.Me)

	// submission is the public form; everything else needs a session
	api.Post("/tickets", cfg.Tickets.Submit)
	api.Get("/tickets", requireAuth, cfg.Tickets.List)
	api.Post("/tickets/cleanup", requireAuth, auth.RequireAdmin(), cfg.Tickets.Cleanup)
	api.Get("/tickets/:id", requireAuth, cfg.Tickets.Get)
	api.Post("/tickets/:id/toggle", requireAuth, cfg.Tickets.Toggle)
	api.Put("/tickets/:id", requireAuth, auth.RequireAdmin(), cfg.Tickets.Update)
	api.Delete("/tickets/:id", requireAuth, auth.RequireAdmin(), cfg.Tickets.Delete)

	api.Get("/reports", requireAuth, cfg.Reports.Get)

	if cfg.Live != nil {
		api.Get("/live", requireAuth, cfg.Live.Upgrade, cfg.Live.Stream())
	}
}
