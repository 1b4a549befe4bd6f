package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/call-console/internal/observability"
	"github.com/spec-kit/call-console/internal/store"
)

// StatusHandler exposes the connection lifecycle state and event counters.
type StatusHandler struct {
	tracker *store.StatusTracker
	metrics *observability.Metrics
}

// NewStatusHandler returns a new handler instance.
func NewStatusHandler(tracker *store.StatusTracker, metrics *observability.Metrics) *StatusHandler {
	return &StatusHandler{tracker: tracker, metrics: metrics}
}

// Get serves the current system status.
func (h *StatusHandler) Get(c *fiber.Ctx) error {
	status := h.tracker.Status()
	applied, dropped := h.metrics.EventCounts()

	return c.JSON(fiber.Map{
		"backend_connected":    status.BackendConnected,
		"last_event_timestamp": status.LastEventTimestamp,
		"active_connections":   status.ActiveConnections,
		"loading":              status.Loading,
		"events_applied":       applied,
		"events_dropped":       dropped,
	})
}
