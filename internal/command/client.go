package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/tagora/backend/internal/handler"
	"github.com/tagora/backend/internal/response"
)

const (
	defaultClientTimeout = 15 * time.Second
	maxErrorBodyBytes    = 4096
)

// Client talks to the admin-auth routes of a running API server.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultClientTimeout},
	}
}

// StatusError reports a response status the admin-auth route never uses for
// its own answers, such as a rate-limit or routing error from the server.
type StatusError struct {
	Path    string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned %d: %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s returned %d", e.Path, e.Status)
}

// RequestToken returns the decoded body for both issued tokens and
// generation failures (500).
func (c *Client) RequestToken(ctx context.Context) (*handler.RequestAdminTokenResponse, error) {
	var out handler.RequestAdminTokenResponse
	if err := c.do(ctx, http.MethodPost, "/request-admin-token", nil, &out, http.StatusOK, http.StatusInternalServerError); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate returns the decoded response for both accepted and rejected
// tokens; only transport and decoding problems are errors.
func (c *Client) Validate(ctx context.Context, token string) (*handler.ValidateTokenResponse, error) {
	body, err := json.Marshal(handler.ValidateTokenRequest{Token: token})
	if err != nil {
		return nil, err
	}

	var out handler.ValidateTokenResponse
	if err := c.do(ctx, http.MethodPost, "/validate-token", body, &out, http.StatusOK, http.StatusBadRequest); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stats(ctx context.Context) (*handler.TokenStatsResponse, error) {
	var out handler.TokenStatsResponse
	if err := c.do(ctx, http.MethodGet, "/token-stats", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// do decodes the response into out when its status is one of accepted.
func (c *Client) do(ctx context.Context, method, path string, body []byte, out any, accepted ...int) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+handler.AdminAuthPrefix+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if !slices.Contains(accepted, resp.StatusCode) {
		return statusError(path, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response (status %d): %w", path, resp.StatusCode, err)
	}
	return nil
}

func statusError(path string, resp *http.Response) *StatusError {
	statusErr := &StatusError{Path: path, Status: resp.StatusCode}

	var envelope response.Envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBodyBytes)).Decode(&envelope); err == nil && envelope.Error != nil {
		statusErr.Message = envelope.Error.Message
	}
	return statusErr
}
