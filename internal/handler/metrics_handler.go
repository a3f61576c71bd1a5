package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/tagora/backend/internal/metrics"
)

type MetricsHandler struct {
	registry *metrics.Registry
}

func NewMetricsHandler(registry *metrics.Registry) *MetricsHandler {
	return &MetricsHandler{registry: registry}
}

func (h *MetricsHandler) Register(app *fiber.App) {
	app.Get("/metrics", adaptor.HTTPHandler(h.registry.Handler()))
}
