package di

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/wire"
	"github.com/lmittmann/tint"

	"github.com/tagora/backend/internal/adminauth"
	"github.com/tagora/backend/internal/clock"
	"github.com/tagora/backend/internal/config"
	"github.com/tagora/backend/internal/credential"
	"github.com/tagora/backend/internal/crypto"
	"github.com/tagora/backend/internal/domain"
	"github.com/tagora/backend/internal/handler"
	"github.com/tagora/backend/internal/metrics"
	"github.com/tagora/backend/internal/notification"
	"github.com/tagora/backend/internal/server"
)

var ConfigSet = wire.NewSet(
	config.Load,
	ProvideClock,
)

var LoggerSet = wire.NewSet(
	ProvideLogger,
)

var MetricsSet = wire.NewSet(
	metrics.New,
)

var AdminAuthSet = wire.NewSet(
	ProvideMinter,
	wire.Bind(new(domain.CredentialMinter), new(*credential.Minter)),
	ProvideSender,
	ProvideGateway,
	wire.Bind(new(adminauth.Deliverer), new(*notification.Gateway)),
	ProvideBroker,
	wire.Bind(new(handler.AdminTokenBroker), new(*adminauth.Broker)),
)

var HandlerSet = wire.NewSet(
	ProvideHealthHandler,
	ProvideAdminAuthHandler,
	handler.NewMetricsHandler,
)

var ServerSet = wire.NewSet(
	ProvideServerConfig,
	server.New,
)

const Version = "0.1.0"

func ProvideHealthHandler(broker handler.AdminTokenBroker, sender notification.Sender) *handler.HealthHandler {
	return handler.NewHealthHandler(handler.HealthHandlerConfig{
		Version:         Version,
		Broker:          broker,
		DeliveryChannel: channelDisplayName(sender.Channel()),
	})
}

func ProvideLogger(cfg *config.Config) *slog.Logger {
	var logLevel slog.Level
	switch cfg.Server.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	if cfg.Server.LogFormat == "text" {
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.TimeOnly,
		}))
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	h := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(h)
}

func ProvideMinter(cfg *config.Config, log *slog.Logger) (*credential.Minter, error) {
	secret := cfg.AdminToken.Secret
	if secret == "" {
		generated, err := crypto.GenerateSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate admin token secret: %w", err)
		}
		secret = generated
		log.Warn("ADMIN_TOKEN_SECRET not set; using a per-process signing secret")
	}

	key, err := crypto.DeriveSigningKey(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to derive admin token signing key: %w", err)
	}

	return credential.NewMinter(key, cfg.AdminToken.Issuer)
}

func ProvideSender(cfg *config.Config, log *slog.Logger) notification.Sender {
	if cfg.Telegram.Configured() {
		return notification.NewTelegramSender(cfg.Telegram.APIURL, cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}

	if cfg.Webhook.URL != "" {
		switch notification.Channel(cfg.Webhook.Kind) {
		case notification.ChannelDiscord:
			return notification.NewDiscordSender(cfg.Webhook.URL)
		case notification.ChannelSlack:
			return notification.NewSlackSender(cfg.Webhook.URL)
		default:
			log.Warn("Unknown ADMIN_TOKEN_WEBHOOK_KIND, ignoring webhook", "kind", cfg.Webhook.Kind)
		}
	}

	log.Warn("Telegram bot credentials not configured. Set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID; admin tokens will be written to the log")
	return notification.NewLogSender(log)
}

// ProvideClock is the single time source shared by the broker and the
// delivery gateway.
func ProvideClock() clock.Clock {
	return clock.Real()
}

func ProvideGateway(cfg *config.Config, sender notification.Sender, clk clock.Clock, reg *metrics.Registry, log *slog.Logger) *notification.Gateway {
	return notification.NewGateway(notification.GatewayConfig{
		Sender:  sender,
		Timeout: cfg.AdminToken.DeliveryTimeout,
		Metrics: reg,
		Logger:  log,
		Clock:   clk,
	})
}

func ProvideBroker(
	cfg *config.Config,
	minter domain.CredentialMinter,
	deliverer adminauth.Deliverer,
	clk clock.Clock,
	reg *metrics.Registry,
	log *slog.Logger,
) (*adminauth.Broker, error) {
	broker := adminauth.NewBroker(adminauth.BrokerConfig{
		Identity: domain.AdminIdentity{
			UID: cfg.AdminToken.AdminUID,
			Claims: map[string]any{
				"role":    cfg.AdminToken.AdminRole,
				"isAdmin": true,
			},
		},
		TTL:           cfg.AdminToken.TTL,
		Grace:         cfg.AdminToken.Grace,
		SweepInterval: cfg.AdminToken.SweepInterval,
		Minter:        minter,
		Deliverer:     deliverer,
		Clock:         clk,
		Metrics:       reg,
		Logger:        log,
	})

	if err := reg.RegisterActiveTokens(func() float64 {
		return float64(broker.Stats().Active)
	}); err != nil {
		return nil, fmt.Errorf("failed to register admin token gauge: %w", err)
	}

	return broker, nil
}

func ProvideAdminAuthHandler(broker handler.AdminTokenBroker, sender notification.Sender, log *slog.Logger) *handler.AdminAuthHandler {
	return handler.NewAdminAuthHandler(handler.AdminAuthHandlerConfig{
		Broker:          broker,
		DeliveryChannel: channelDisplayName(sender.Channel()),
		Logger:          log,
	})
}

func channelDisplayName(channel notification.Channel) string {
	switch channel {
	case notification.ChannelTelegram:
		return "Telegram"
	case notification.ChannelSlack:
		return "Slack"
	case notification.ChannelDiscord:
		return "Discord"
	default:
		return ""
	}
}

func ProvideServerConfig(cfg *config.Config) server.Config {
	return server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		CorsOrigins:  cfg.Server.CorsOrigins,

		RateLimitMax:    cfg.Server.RateLimitMax,
		RateLimitWindow: cfg.Server.RateLimitWindow,
	}
}

type Application struct {
	Config           *config.Config
	Logger           *slog.Logger
	Metrics          *metrics.Registry
	Broker           *adminauth.Broker
	Server           *server.Server
	HealthHandler    *handler.HealthHandler
	AdminAuthHandler *handler.AdminAuthHandler
	MetricsHandler   *handler.MetricsHandler
}
