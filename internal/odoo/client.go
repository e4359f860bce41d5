// Package odoo provides the JSON-RPC client for a multi-tenant Odoo backend.
// Every remote interaction of the gateway goes through Client.Call, which
// builds the uniform call envelope and splits failures into remote-reported
// errors and transport errors.
package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ars-4/grocer-middleware/internal/metrics"
)

// Client issues JSON-RPC calls against tenant-scoped Odoo endpoints.
type Client struct {
	httpClient  *http.Client
	hostPattern string
	metrics     *metrics.Metrics
}

// Config holds client configuration.
type Config struct {
	// HostPattern is a fmt pattern producing the tenant base URL,
	// e.g. "https://%s.odoo.com".
	HostPattern string
	Timeout     time.Duration
	Metrics     *metrics.Metrics
}

// NewClient creates a new Odoo JSON-RPC client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.HostPattern == "" {
		return nil, fmt.Errorf("host pattern required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		hostPattern: cfg.HostPattern,
		metrics:     cfg.Metrics,
	}, nil
}

// BaseURL returns the tenant-scoped base URL, used both for RPC calls and
// for deriving public image URLs.
func (c *Client) BaseURL(tenant string) string {
	return fmt.Sprintf(c.hostPattern, tenant)
}

// rpcRequest is the uniform JSON-RPC call envelope.
type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int64     `json:"id"`
}

type rpcParams struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	Args    []any  `json:"args"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// RemoteError is an error reported by the Odoo server inside a well-formed
// RPC response. Detail carries the remote error payload verbatim.
type RemoteError struct {
	Detail json.RawMessage
}

func (e *RemoteError) Error() string {
	detail := gjson.ParseBytes(e.Detail)
	if msg := detail.Get("data.message"); msg.Type == gjson.String && msg.Str != "" {
		return msg.Str
	}
	if msg := detail.Get("message"); msg.Type == gjson.String && msg.Str != "" {
		return msg.Str
	}
	return "remote call failed"
}

// TransportError is a network or protocol level failure: the call never
// produced a well-formed response from the remote service.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("odoo transport: %v", e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

// Call sends one JSON-RPC call to the tenant's endpoint and returns the
// parsed result. A remote-reported error yields *RemoteError; any
// network/decoding failure yields *TransportError. No retries happen here.
func (c *Client) Call(ctx context.Context, tenant, service, method string, args []any) (gjson.Result, error) {
	start := time.Now()
	result, err := c.call(ctx, tenant, service, method, args)
	if c.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		c.metrics.RecordRemoteCall(service, method, outcome, time.Since(start))
	}
	return result, err
}

func (c *Client) call(ctx context.Context, tenant, service, method string, args []any) (gjson.Result, error) {
	if args == nil {
		args = []any{}
	}

	req := rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params: rpcParams{
			Service: service,
			Method:  method,
			Args:    args,
		},
		ID: time.Now().UnixMilli(),
	}

	body, err := json.Marshal(req)
	if err != nil {
		return gjson.Result{}, &TransportError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	url := c.BaseURL(tenant) + "/jsonrpc"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, &TransportError{Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return gjson.Result{}, &TransportError{Err: fmt.Errorf("execute request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return gjson.Result{}, &TransportError{Err: fmt.Errorf("unmarshal response: %w", err)}
	}

	// Some servers emit an explicit "error": null on success.
	if len(rpcResp.Error) > 0 && string(rpcResp.Error) != "null" {
		return gjson.Result{}, &RemoteError{Detail: rpcResp.Error}
	}

	return gjson.ParseBytes(rpcResp.Result), nil
}
