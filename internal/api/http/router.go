package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/history-importer/internal/api/http/handlers"
	"github.com/spec-kit/history-importer/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Imports        *handlers.ImportsHandler
	History        *handlers.HistoryHandler
	Metrics        *handlers.MetricsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	imports := api.Group("/imports", auth.RequireScope(auth.ScopeImport))
	imports.Post("", cfg.Imports.CreateImport)
	imports.Get("/:id", cfg.Imports.GetImport)

	api.Get("/projects/:project/history/:kind/:id", auth.RequireScope(auth.ScopeHistoryRead), cfg.History.ListHistory)
	api.Get("/metrics", auth.RequireScope(auth.ScopeMetrics), cfg.Metrics.Snapshot)
}
