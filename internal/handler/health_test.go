package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagora/backend/internal/adminauth"
)

func TestHealth(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start
	broker := &mockBroker{stats: adminauth.Stats{Active: 2, TotalIssued: 5}}

	h := NewHealthHandler(HealthHandlerConfig{
		Version:         "1.2.3",
		Broker:          broker,
		DeliveryChannel: "Telegram",
		Now:             func() time.Time { return now },
	})
	now = start.Add(90*time.Second + 250*time.Millisecond)

	app := fiber.New()
	defer app.Shutdown()
	h.Register(app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool       `json:"success"`
		Data    HealthData `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "healthy", body.Data.Status)
	assert.Equal(t, "1.2.3", body.Data.Version)
	assert.Equal(t, "1m30s", body.Data.Uptime)
	assert.Equal(t, 2, body.Data.ActiveTokens)
	assert.Equal(t, "Telegram", body.Data.DeliveryChannel)
}

func TestHealthDefaultsToConsoleChannel(t *testing.T) {
	app := fiber.New()
	defer app.Shutdown()
	NewHealthHandler(HealthHandlerConfig{Version: "dev"}).Register(app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)

	var body struct {
		Data HealthData `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "console", body.Data.DeliveryChannel)
	assert.Zero(t, body.Data.ActiveTokens)
}
