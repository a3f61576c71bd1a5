package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/tagora/backend/internal/adminauth"
	"github.com/tagora/backend/internal/credential"
	"github.com/tagora/backend/internal/crypto"
	"github.com/tagora/backend/internal/domain"
	"github.com/tagora/backend/internal/handler"
)

type channelDeliverer struct {
	tokens chan string
}

func (d *channelDeliverer) Deliver(_ context.Context, token string, _ time.Time) {
	d.tokens <- token
}

func newTestAPI(t *testing.T) (*httptest.Server, *channelDeliverer) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	minter, err := credential.NewMinter([]byte("0123456789abcdef0123456789abcdef"), "")
	require.NoError(t, err)
	deliverer := &channelDeliverer{tokens: make(chan string, 4)}
	broker := adminauth.NewBroker(adminauth.BrokerConfig{
		Identity:  domain.AdminIdentity{UID: "secure-admin-uid"},
		Minter:    minter,
		Deliverer: deliverer,
		Logger:    logger,
	})

	app := fiber.New()
	handler.NewAdminAuthHandler(handler.AdminAuthHandlerConfig{
		Broker:          broker,
		DeliveryChannel: "Telegram",
		Logger:          logger,
	}).Register(app)

	server := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(server.Close)
	return server, deliverer
}

type runResult struct {
	out      bytes.Buffer
	err      error
	exitCode int
}

func run(t *testing.T, server string, args ...string) *runResult {
	t.Helper()
	res := &runResult{}

	app := App()
	app.Writer = &res.out
	app.ErrWriter = io.Discard
	app.ExitErrHandler = func(_ *cli.Context, err error) {
		if coder, ok := err.(cli.ExitCoder); ok {
			res.exitCode = coder.ExitCode()
		}
	}

	res.err = app.Run(append([]string{"admintoken", "--server", server}, args...))
	return res
}

func TestRequestValidateStats(t *testing.T) {
	server, deliverer := newTestAPI(t)

	res := run(t, server.URL, "request")
	require.NoError(t, res.err)
	var requested handler.RequestAdminTokenResponse
	require.NoError(t, json.Unmarshal(res.out.Bytes(), &requested))
	assert.True(t, requested.Success)

	var token string
	select {
	case token = <-deliverer.tokens:
	case <-time.After(time.Second):
		t.Fatal("token was not delivered")
	}

	res = run(t, server.URL, "stats")
	require.NoError(t, res.err)
	var stats handler.TokenStatsResponse
	require.NoError(t, json.Unmarshal(res.out.Bytes(), &stats))
	assert.Equal(t, 1, stats.ActiveTokens)
	assert.Equal(t, int64(1), stats.TotalGenerated)

	res = run(t, server.URL, "validate", token)
	require.NoError(t, res.err)
	var validated handler.ValidateTokenResponse
	require.NoError(t, json.Unmarshal(res.out.Bytes(), &validated))
	assert.True(t, validated.Valid)

	res = run(t, server.URL, "validate", token)
	assert.Error(t, res.err)
	assert.Equal(t, 1, res.exitCode)
	assert.Contains(t, res.out.String(), adminauth.MsgTokenAlreadyUsed)
}

func TestValidateRequiresArgument(t *testing.T) {
	server, _ := newTestAPI(t)

	res := run(t, server.URL, "validate")

	assert.Error(t, res.err)
	assert.Equal(t, 2, res.exitCode)
}

func TestUnreachableServer(t *testing.T) {
	res := run(t, "http://127.0.0.1:1", "stats")

	assert.Error(t, res.err)
}

func mintWithSecret(t *testing.T, secret string, expiresIn time.Duration) string {
	t.Helper()
	key, err := crypto.DeriveSigningKey(secret)
	require.NoError(t, err)
	minter, err := credential.NewMinter(key, "")
	require.NoError(t, err)

	now := time.Now()
	token, err := minter.Mint(context.Background(), domain.MintInput{
		Identity:  domain.AdminIdentity{UID: "secure-admin-uid", Claims: map[string]any{"role": "admin"}},
		IssuedAt:  now,
		ExpiresAt: now.Add(expiresIn),
	})
	require.NoError(t, err)
	return token
}

func TestInspectVerifiesOffline(t *testing.T) {
	token := mintWithSecret(t, "s3cret", 2*time.Minute)

	res := run(t, "http://127.0.0.1:1", "inspect", "--secret", "s3cret", token)
	require.NoError(t, res.err)

	var out InspectOutput
	require.NoError(t, json.Unmarshal(res.out.Bytes(), &out))
	assert.Equal(t, "secure-admin-uid", out.Subject)
	assert.False(t, out.Expired)
	assert.Equal(t, "admin", out.Claims["role"])
}

func TestInspectRejectsWrongSecret(t *testing.T) {
	token := mintWithSecret(t, "s3cret", 2*time.Minute)

	res := run(t, "http://127.0.0.1:1", "inspect", "--secret", "other", token)

	assert.Error(t, res.err)
	assert.Equal(t, 1, res.exitCode)
}

func TestInspectReportsExpiredToken(t *testing.T) {
	token := mintWithSecret(t, "s3cret", -time.Minute)

	res := run(t, "http://127.0.0.1:1", "inspect", "--secret", "s3cret", token)
	require.NoError(t, res.err)

	var out InspectOutput
	require.NoError(t, json.Unmarshal(res.out.Bytes(), &out))
	assert.True(t, out.Expired)
	assert.Equal(t, "secure-admin-uid", out.Subject)
}

func TestUsageErrorsExitTwo(t *testing.T) {
	t.Setenv("ADMIN_TOKEN_SECRET", "")
	token := mintWithSecret(t, "s3cret", 2*time.Minute)

	tests := []struct {
		name string
		args []string
	}{
		{"inspect without secret", []string{"inspect", token}},
		{"inspect without token", []string{"inspect", "--secret", "s3cret"}},
		{"unknown command flag", []string{"stats", "--bogus"}},
		{"unknown global flag", []string{"--bogus", "stats"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, "http://127.0.0.1:1", tt.args...)
			assert.Error(t, res.err)
			assert.Equal(t, 2, res.exitCode)
		})
	}
}

func TestClientReportsUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"success":false,"data":null,"error":{"code":"RATE_LIMITED","message":"too many requests"},"meta":{}}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Validate(context.Background(), "tok")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr), "expected StatusError, got %v", err)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Status)
	assert.Equal(t, "too many requests", statusErr.Message)
}

func TestClientDecodesRejectedToken(t *testing.T) {
	server, _ := newTestAPI(t)

	resp, err := NewClient(server.URL).Validate(context.Background(), "unknown")

	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, adminauth.MsgTokenNotFound, resp.Message)
}
