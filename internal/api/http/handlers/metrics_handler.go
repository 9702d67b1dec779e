package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/history-importer/internal/observability"
)

// MetricsHandler exposes the in-memory counters.
type MetricsHandler struct {
	metrics *observability.Metrics
}

// NewMetricsHandler constructs handler.
func NewMetricsHandler(metrics *observability.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Snapshot GET /metrics.
func (h *MetricsHandler) Snapshot(c *fiber.Ctx) error {
	samples := h.metrics.Snapshot()
	if samples == nil {
		samples = []observability.Sample{}
	}
	return c.JSON(fiber.Map{"data": samples})
}
