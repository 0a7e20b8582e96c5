package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// RPCClient is a JSON-RPC 1.0 client for a dogecoind node.
// It handles request serialization, authentication, and response parsing.
// All high-level indexer methods are built on top of the Call method.
type RPCClient struct {
	url    string
	user   string
	pass   string
	client *http.Client
	nextID atomic.Int64
}

// rpcRequest represents a JSON-RPC 1.0 request payload.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// rpcResponse represents a JSON-RPC 1.0 response payload.
type rpcResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// NewRPCClient creates a new JSON-RPC client with the given configuration.
// The client uses HTTP Basic Auth when User is non-empty, and maintains
// a connection pool for efficient reuse.
func NewRPCClient(cfg RPCConfig) *RPCClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RPCClient{
		url:  cfg.URL,
		user: cfg.User,
		pass: cfg.Password,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
	}
}

// Call invokes a JSON-RPC method on the node. It serializes the request,
// sends it with optional Basic Auth, and deserializes the response into result.
//
// If params is nil, an empty params array is sent. If result is nil, the
// response result is discarded.
//
// Call returns ErrNetwork if the HTTP request fails or the node answers
// 5xx without an RPC error body, ErrInvalidResponse (with ErrIndexer) if
// the response cannot be decoded, and *RPCError for RPC-level errors.
// dogecoind reports RPC errors with HTTP 500, so the body is inspected
// before the status code.
func (c *RPCClient) Call(ctx context.Context, method string, params []any, result any) error {
	if params == nil {
		params = []any{}
	}
	reqBody := rpcRequest{
		JSONRPC: "1.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("network: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("network: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.pass)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return transportError(method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return transportError(method+": read body", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return statusError(method, resp.StatusCode, truncate(raw))
		}
		return fmt.Errorf("%w: %w: decode response: %w", ErrIndexer, ErrInvalidResponse, err)
	}

	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(method, resp.StatusCode, truncate(raw))
	}

	if rpcResp.ID != reqBody.ID {
		return fmt.Errorf("%w: %w: response ID mismatch: expected %d, got %d",
			ErrIndexer, ErrInvalidResponse, reqBody.ID, rpcResp.ID)
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("%w: %w: unmarshal result: %w", ErrIndexer, ErrInvalidResponse, err)
		}
	}

	return nil
}
