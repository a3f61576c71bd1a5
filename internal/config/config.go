package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPort               = 5000
	DefaultAdminTokenTTLSec   = 120
	DefaultAdminTokenGraceMs  = 1000
	DefaultAdminTokenSweepMs  = 1000
	DefaultDeliveryTimeoutMs  = 10000
	DefaultAdminUID           = "secure-admin-uid"
	DefaultAdminRole          = "admin"
	DefaultTelegramAPIURL     = "https://api.telegram.org"
	DefaultAdminTokenIssuer   = "tagora-admin-auth"
	DefaultWebhookKind        = "slack"
	DefaultRateLimitMax       = 120
	DefaultRateLimitWindowSec = 60
	DefaultShutdownTimeoutMs  = 5000
)

type Config struct {
	Server     ServerConfig
	AdminToken AdminTokenConfig
	Telegram   TelegramConfig
	Webhook    WebhookConfig
}

type ServerConfig struct {
	Env         string
	Host        string
	Port        int
	LogLevel    string
	LogFormat   string
	CorsOrigins string

	RateLimitMax    int
	RateLimitWindow time.Duration
	ShutdownTimeout time.Duration
}

type AdminTokenConfig struct {
	TTL             time.Duration
	Grace           time.Duration
	SweepInterval   time.Duration
	DeliveryTimeout time.Duration
	Secret          string
	Issuer          string
	AdminUID        string
	AdminRole       string
}

type TelegramConfig struct {
	APIURL   string
	BotToken string
	ChatID   string
}

// WebhookConfig routes admin tokens to a Slack or Discord incoming webhook
// when Telegram is not configured.
type WebhookConfig struct {
	URL  string
	Kind string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Env:         getEnv("APP_ENV", "development"),
			Host:        getEnv("HOST", "0.0.0.0"),
			Port:        getEnvInt("PORT", DefaultPort),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "json"),
			CorsOrigins: getEnv("CORS_ORIGINS", "*"),

			RateLimitMax:    getEnvInt("API_RATE_LIMIT_MAX", DefaultRateLimitMax),
			RateLimitWindow: time.Duration(getEnvInt("API_RATE_LIMIT_WINDOW_SEC", DefaultRateLimitWindowSec)) * time.Second,
			ShutdownTimeout: time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_MS", DefaultShutdownTimeoutMs)) * time.Millisecond,
		},
		AdminToken: AdminTokenConfig{
			TTL:             time.Duration(getEnvInt("ADMIN_TOKEN_TTL", DefaultAdminTokenTTLSec)) * time.Second,
			Grace:           time.Duration(getEnvInt("ADMIN_TOKEN_GRACE_MS", DefaultAdminTokenGraceMs)) * time.Millisecond,
			SweepInterval:   time.Duration(getEnvInt("ADMIN_TOKEN_SWEEP_MS", DefaultAdminTokenSweepMs)) * time.Millisecond,
			DeliveryTimeout: time.Duration(getEnvInt("DELIVERY_TIMEOUT_MS", DefaultDeliveryTimeoutMs)) * time.Millisecond,
			Secret:          getEnv("ADMIN_TOKEN_SECRET", ""),
			Issuer:          getEnv("ADMIN_TOKEN_ISSUER", DefaultAdminTokenIssuer),
			AdminUID:        getEnv("ADMIN_UID", DefaultAdminUID),
			AdminRole:       getEnv("ADMIN_ROLE", DefaultAdminRole),
		},
		Telegram: TelegramConfig{
			APIURL:   getEnv("TELEGRAM_API_URL", DefaultTelegramAPIURL),
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		},
		Webhook: WebhookConfig{
			URL:  getEnv("ADMIN_TOKEN_WEBHOOK_URL", ""),
			Kind: strings.ToLower(getEnv("ADMIN_TOKEN_WEBHOOK_KIND", DefaultWebhookKind)),
		},
	}
}

func (c TelegramConfig) Configured() bool {
	return c.BotToken != "" && c.ChatID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}
