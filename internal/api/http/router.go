package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/call-console/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health *handlers.HealthHandler
	Calls  *handlers.CallsHandler
	Status *handlers.StatusHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Get("/status", cfg.Status.Get)

	api.Get("/calls", cfg.Calls.List)
	api.Get("/calls/live", cfg.Calls.Live)
	api.Get("/calls/past", cfg.Calls.Past)
	api.Get("/calls/:id", cfg.Calls.Get)
	api.Get("/calls/:id/transcript", cfg.Calls.Transcript)
	api.Put("/calls/:id/notes", cfg.Calls.SaveNotes)
	api.Post("/calls/:id/ticket", cfg.Calls.UpdateTicket)
}
