// Package otp is the boundary to the one-time-passcode collaborator. The
// gateway holds no passcode state of its own: issuance, expiry and matching
// all live behind this interface.
package otp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Service issues and verifies one-time passcodes keyed by email address.
// Send is assumed idempotent-safe: requesting a second passcode must not
// invalidate a previously issued, still-valid one.
type Service interface {
	Send(ctx context.Context, email string) (bool, error)
	Verify(ctx context.Context, email, code string) (bool, error)
}

// Client calls a remote passcode service over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// ClientConfig configures the passcode service client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a passcode service client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("otp service base URL required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
	}, nil
}

// Send requests passcode issuance for the address.
func (c *Client) Send(ctx context.Context, email string) (bool, error) {
	var out struct {
		Sent bool `json:"sent"`
	}
	if err := c.post(ctx, "/otp/send", map[string]string{"email": email}, &out); err != nil {
		return false, err
	}
	return out.Sent, nil
}

// Verify checks a passcode for the address. A non-matching or expired code
// is reported as false, not as an error.
func (c *Client) Verify(ctx context.Context, email, code string) (bool, error) {
	var out struct {
		Verified bool `json:"verified"`
	}
	if err := c.post(ctx, "/otp/verify", map[string]string{"email": email, "otp": code}, &out); err != nil {
		return false, err
	}
	return out.Verified, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("otp service returned %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
