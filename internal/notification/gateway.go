package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tagora/backend/internal/clock"
	"github.com/tagora/backend/internal/crypto"
	"github.com/tagora/backend/internal/metrics"
)

const DefaultDeliveryTimeout = 10 * time.Second

// Gateway delivers admin tokens through a single Sender. Failures are logged
// and counted, never returned: issuance must not depend on the channel.
type Gateway struct {
	sender  Sender
	timeout time.Duration
	metrics *metrics.Registry
	logger  *slog.Logger
	clock   clock.Clock
}

type GatewayConfig struct {
	Sender  Sender
	Timeout time.Duration
	Metrics *metrics.Registry
	Logger  *slog.Logger
	Clock   clock.Clock
}

func NewGateway(cfg GatewayConfig) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultDeliveryTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	return &Gateway{
		sender:  cfg.Sender,
		timeout: cfg.Timeout,
		metrics: cfg.Metrics,
		logger:  cfg.Logger.With("component", "admin_token_delivery", "channel", cfg.Sender.Channel()),
		clock:   cfg.Clock,
	}
}

func (g *Gateway) Deliver(ctx context.Context, token string, expiresAt time.Time) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	channel := string(g.sender.Channel())
	msg := Message{
		Token:     token,
		Text:      FormatAdminTokenMessage(token, expiresAt.Sub(g.clock.Now())),
		ExpiresAt: expiresAt,
	}

	if err := g.sender.Send(ctx, msg); err != nil {
		g.metrics.ObserveDelivery(channel, metrics.DeliveryResultFailed)
		g.logger.Error("Failed to deliver admin token",
			"fingerprint", crypto.Fingerprint(token),
			"error", err,
		)
		return
	}

	g.metrics.ObserveDelivery(channel, metrics.DeliveryResultSent)
	g.logger.Info("Admin token delivered", "fingerprint", crypto.Fingerprint(token))
}

func FormatAdminTokenMessage(token string, validFor time.Duration) string {
	msg := "🔐 *Admin Login Token*\n\n"
	msg += fmt.Sprintf("`%s`\n\n", token)
	msg += fmt.Sprintf("⏰ Valid for %s or until used.\n", humanizeDuration(validFor))
	msg += "🚫 Do not share this token."
	return msg
}

func humanizeDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "a moment"
	}
	if d >= time.Minute && d%time.Minute == 0 {
		minutes := int(d / time.Minute)
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	seconds := int(d / time.Second)
	if seconds == 1 {
		return "1 second"
	}
	return fmt.Sprintf("%d seconds", seconds)
}
