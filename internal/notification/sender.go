package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultTelegramAPIURL = "https://api.telegram.org"
	defaultClientTimeout  = 10 * time.Second
	maxErrorBodyBytes     = 512
)

type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelSlack    Channel = "slack"
	ChannelDiscord  Channel = "discord"
	ChannelLog      Channel = "log"
)

type Message struct {
	Token     string
	Text      string
	ExpiresAt time.Time
}

type Sender interface {
	Channel() Channel
	Send(ctx context.Context, msg Message) error
}

type TelegramSender struct {
	client   *http.Client
	apiURL   string
	botToken string
	chatID   string
}

func NewTelegramSender(apiURL, botToken, chatID string) *TelegramSender {
	if apiURL == "" {
		apiURL = DefaultTelegramAPIURL
	}
	return &TelegramSender{
		client:   &http.Client{Timeout: defaultClientTimeout},
		apiURL:   strings.TrimRight(apiURL, "/"),
		botToken: botToken,
		chatID:   chatID,
	}
}

type telegramPayload struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

func (s *TelegramSender) Channel() Channel {
	return ChannelTelegram
}

func (s *TelegramSender) Send(ctx context.Context, msg Message) error {
	if s.botToken == "" || s.chatID == "" {
		return fmt.Errorf("invalid telegram config: bot token and chat id required")
	}

	body, err := json.Marshal(telegramPayload{
		ChatID:    s.chatID,
		Text:      msg.Text,
		ParseMode: "Markdown",
	})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", s.apiURL, s.botToken)
	return postJSON(ctx, s.client, endpoint, body, "telegram api")
}

type SlackSender struct {
	client     *http.Client
	webhookURL string
}

func NewSlackSender(webhookURL string) *SlackSender {
	return &SlackSender{
		client:     &http.Client{Timeout: defaultClientTimeout},
		webhookURL: webhookURL,
	}
}

type slackPayload struct {
	Text string `json:"text"`
}

func (s *SlackSender) Channel() Channel {
	return ChannelSlack
}

func (s *SlackSender) Send(ctx context.Context, msg Message) error {
	if s.webhookURL == "" {
		return fmt.Errorf("invalid slack config: webhookUrl required")
	}

	body, err := json.Marshal(slackPayload{Text: msg.Text})
	if err != nil {
		return err
	}
	return postJSON(ctx, s.client, s.webhookURL, body, "slack webhook")
}

type DiscordSender struct {
	client     *http.Client
	webhookURL string
}

func NewDiscordSender(webhookURL string) *DiscordSender {
	return &DiscordSender{
		client:     &http.Client{Timeout: defaultClientTimeout},
		webhookURL: webhookURL,
	}
}

type discordPayload struct {
	Content string `json:"content"`
}

func (d *DiscordSender) Channel() Channel {
	return ChannelDiscord
}

func (d *DiscordSender) Send(ctx context.Context, msg Message) error {
	if d.webhookURL == "" {
		return fmt.Errorf("invalid discord config: webhookUrl required")
	}

	body, err := json.Marshal(discordPayload{Content: msg.Text})
	if err != nil {
		return err
	}
	return postJSON(ctx, d.client, d.webhookURL, body, "discord webhook")
}

// LogSender is the fallback when no messaging channel is configured: the
// operator reads the token from the server console.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (l *LogSender) Channel() Channel {
	return ChannelLog
}

func (l *LogSender) Send(_ context.Context, msg Message) error {
	l.logger.Warn("Admin token (no messaging channel configured)",
		"token", msg.Token,
		"expiresAt", msg.ExpiresAt,
	)
	return nil
}

func postJSON(ctx context.Context, client *http.Client, url string, body []byte, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("%s returned %d: %s", target, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
