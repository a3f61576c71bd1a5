package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/tagora/backend/internal/adminauth"
	"github.com/tagora/backend/internal/middleware"
)

type AdminTokenBroker interface {
	Issue(ctx context.Context) (*adminauth.IssuedToken, error)
	Validate(token string) adminauth.Outcome
	Stats() adminauth.Stats
}

type AdminAuthHandler struct {
	broker          AdminTokenBroker
	deliveryChannel string
	logger          *slog.Logger
}

type AdminAuthHandlerConfig struct {
	Broker AdminTokenBroker
	// DeliveryChannel names the channel shown to the caller, e.g. "Telegram".
	// Empty means tokens only go to the server log.
	DeliveryChannel string
	Logger          *slog.Logger
}

func NewAdminAuthHandler(cfg AdminAuthHandlerConfig) *AdminAuthHandler {
	return &AdminAuthHandler{
		broker:          cfg.Broker,
		deliveryChannel: cfg.DeliveryChannel,
		logger:          cfg.Logger.With("component", "admin_auth_handler"),
	}
}

type RequestAdminTokenResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ValidateTokenRequest struct {
	Token string `json:"token"`
}

type ValidateTokenResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type TokenStatsResponse struct {
	ActiveTokens   int   `json:"activeTokens"`
	TotalGenerated int64 `json:"totalGenerated"`
}

func (h *AdminAuthHandler) Register(app *fiber.App) {
	group := app.Group(AdminAuthPrefix)
	group.Post("/request-admin-token", h.RequestAdminToken)
	group.Post("/validate-token", h.ValidateToken)
	group.Get("/token-stats", h.TokenStats)
}

func (h *AdminAuthHandler) RequestAdminToken(c *fiber.Ctx) error {
	issued, err := h.broker.Issue(c.UserContext())
	if err != nil {
		middleware.RequestLogger(c, h.logger).Error("Failed to generate admin token", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(RequestAdminTokenResponse{
			Success: false,
			Message: MsgAdminTokenFailed,
		})
	}

	middleware.RequestLogger(c, h.logger).Debug("Admin token requested", "expiresAt", issued.ExpiresAt)

	message := MsgAdminTokenLogged
	if h.deliveryChannel != "" {
		message = fmt.Sprintf(MsgAdminTokenSent, h.deliveryChannel)
	}
	return c.JSON(RequestAdminTokenResponse{
		Success: true,
		Message: message,
	})
}

func (h *AdminAuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req ValidateTokenRequest
	if err := c.BodyParser(&req); err != nil {
		middleware.RequestLogger(c, h.logger).Debug("Invalid validate-token body", "error", err)
		req.Token = ""
	}

	outcome := h.broker.Validate(req.Token)
	if !outcome.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(ValidateTokenResponse{
			Valid:   false,
			Message: outcome.Message(),
		})
	}

	return c.JSON(ValidateTokenResponse{
		Valid:   true,
		Message: outcome.Message(),
	})
}

func (h *AdminAuthHandler) TokenStats(c *fiber.Ctx) error {
	stats := h.broker.Stats()
	return c.JSON(TokenStatsResponse{
		ActiveTokens:   stats.Active,
		TotalGenerated: stats.TotalIssued,
	})
}
