package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tagora/backend/internal/response"
)

type HealthData struct {
	Status          string    `json:"status"`
	Timestamp       time.Time `json:"timestamp"`
	Version         string    `json:"version"`
	Uptime          string    `json:"uptime"`
	ActiveTokens    int       `json:"activeTokens"`
	DeliveryChannel string    `json:"deliveryChannel"`
}

type HealthHandlerConfig struct {
	Version         string
	Broker          AdminTokenBroker
	DeliveryChannel string
	Now             func() time.Time
}

type HealthHandler struct {
	version         string
	broker          AdminTokenBroker
	deliveryChannel string
	now             func() time.Time
	startedAt       time.Time
}

func NewHealthHandler(cfg HealthHandlerConfig) *HealthHandler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	channel := cfg.DeliveryChannel
	if channel == "" {
		channel = "console"
	}
	return &HealthHandler{
		version:         cfg.Version,
		broker:          cfg.Broker,
		deliveryChannel: channel,
		now:             now,
		startedAt:       now(),
	}
}

func (h *HealthHandler) Register(app *fiber.App) {
	app.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	now := h.now()
	data := HealthData{
		Status:          "healthy",
		Timestamp:       now.UTC(),
		Version:         h.version,
		Uptime:          now.Sub(h.startedAt).Truncate(time.Second).String(),
		DeliveryChannel: h.deliveryChannel,
	}
	if h.broker != nil {
		data.ActiveTokens = h.broker.Stats().Active
	}
	return response.OK(c, data)
}
