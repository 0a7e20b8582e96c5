package network

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultRESTURL is the public explorer the REST client targets by default.
const DefaultRESTURL = "https://sochain.com/api/v2"

// Compile-time interface check.
var _ Indexer = (*RESTClient)(nil)

// RESTClient is an Indexer backed by a SoChain-v2 shaped explorer API.
// Requests are paced by a token bucket so a burst of sends does not trip
// the explorer's rate limits.
type RESTClient struct {
	baseURL string
	code    string // network code in the URL path, e.g. DOGE
	client  *http.Client
	limiter *rate.Limiter
}

// RESTConfig configures a RESTClient.
type RESTConfig struct {
	BaseURL           string
	NetworkCode       string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// envelope is the common response wrapper of the explorer API.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// NewRESTClient creates a REST indexer client. Zero values fall back to
// DefaultRESTURL, network code DOGE, 5 requests/s and a 30s timeout.
func NewRESTClient(cfg RESTConfig) *RESTClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultRESTURL
	}
	if cfg.NetworkCode == "" {
		cfg.NetworkCode = "DOGE"
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &RESTClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		code:    cfg.NetworkCode,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
	}
}

// do performs one request and returns the decoded envelope together with
// the HTTP status. Transport failures are ErrNetwork. A non-2xx status is
// only turned into an error here when the body is not an envelope; callers
// classify enveloped failures themselves.
func (c *RESTClient) do(ctx context.Context, method, path string, body any) (*envelope, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, transportError("rate limit wait", err)
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("network: marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("network: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, transportError(method+" "+path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, resp.StatusCode, transportError("read body", err)
	}

	var env envelope
	if jsonErr := json.Unmarshal(raw, &env); jsonErr != nil || env.Status == "" {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, resp.StatusCode, statusError(path, resp.StatusCode, truncate(raw))
		}
		return nil, resp.StatusCode, fmt.Errorf("%w: %w: %s: %s", ErrIndexer, ErrInvalidResponse, path, truncate(raw))
	}
	return &env, resp.StatusCode, nil
}

// get performs a read and decodes data into out. status "fail" is ErrIndexer.
func (c *RESTClient) get(ctx context.Context, path string, out any) error {
	env, code, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if code >= 500 || code == http.StatusTooManyRequests {
		return statusError(path, code, string(env.Data))
	}
	if env.Status != "success" {
		if code == http.StatusNotFound {
			return fmt.Errorf("%w: %w: %s: %s", ErrIndexer, ErrTxNotFound, path, string(env.Data))
		}
		return fmt.Errorf("%w: %s: status %q: %s", ErrIndexer, path, env.Status, string(env.Data))
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %w: %s: %w", ErrIndexer, ErrInvalidResponse, path, err)
	}
	return nil
}

func (c *RESTClient) path(endpoint, arg string) string {
	return "/" + endpoint + "/" + url.PathEscape(c.code) + "/" + url.PathEscape(arg)
}

type restBalance struct {
	Confirmed   string `json:"confirmed_balance"`
	Unconfirmed string `json:"unconfirmed_balance"`
}

// Balance returns the confirmed and unconfirmed balance of address.
func (c *RESTClient) Balance(ctx context.Context, address string) (*Balance, error) {
	var data restBalance
	if err := c.get(ctx, c.path("get_address_balance", address), &data); err != nil {
		return nil, err
	}
	confirmed, err := ParseSignedAmount(data.Confirmed)
	if err != nil {
		return nil, fmt.Errorf("%w: confirmed_balance: %w", ErrIndexer, err)
	}
	unconfirmed, err := ParseSignedAmount(data.Unconfirmed)
	if err != nil {
		return nil, fmt.Errorf("%w: unconfirmed_balance: %w", ErrIndexer, err)
	}
	return &Balance{Confirmed: confirmed, Unconfirmed: unconfirmed}, nil
}

type restUnspent struct {
	Txs []struct {
		TxID          string `json:"txid"`
		OutputNo      uint32 `json:"output_no"`
		ScriptHex     string `json:"script_hex"`
		Value         string `json:"value"`
		Confirmations int64  `json:"confirmations"`
	} `json:"txs"`
}

// ListUnspent returns all unspent transaction outputs for the given address.
func (c *RESTClient) ListUnspent(ctx context.Context, address string) ([]*UTXO, error) {
	var data restUnspent
	if err := c.get(ctx, c.path("get_tx_unspent", address), &data); err != nil {
		return nil, err
	}

	utxos := make([]*UTXO, 0, len(data.Txs))
	for _, t := range data.Txs {
		value, err := ParseAmount(t.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: utxo %s:%d: %w", ErrIndexer, t.TxID, t.OutputNo, err)
		}
		utxos = append(utxos, &UTXO{
			TxID:          t.TxID,
			Vout:          t.OutputNo,
			Value:         value,
			ScriptPubKey:  t.ScriptHex,
			Confirmations: t.Confirmations,
		})
	}
	return utxos, nil
}

type restTxHex struct {
	TxID  string `json:"txid"`
	TxHex string `json:"tx_hex"`
}

// GetRawTx returns the raw transaction bytes for the given txid.
func (c *RESTClient) GetRawTx(ctx context.Context, txid string) ([]byte, error) {
	var data restTxHex
	if err := c.get(ctx, c.path("get_tx_hex", txid), &data); err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(data.TxHex)
	if err != nil || len(raw) == 0 {
		return nil, fmt.Errorf("%w: %w: tx %s: invalid hex", ErrIndexer, ErrInvalidResponse, txid)
	}
	return raw, nil
}

// BroadcastTx posts rawTxHex to the relay. Any answer with status "fail",
// whatever its HTTP status, is a rejection carrying the relay's data as the
// reason. The relay has seen the transaction in that case, so it must not
// be retried.
func (c *RESTClient) BroadcastTx(ctx context.Context, rawTxHex string) (string, error) {
	path := "/send_tx/" + url.PathEscape(c.code)
	env, _, err := c.do(ctx, http.MethodPost, path, map[string]string{"tx_hex": rawTxHex})
	if err != nil {
		return "", err
	}
	if env.Status != "success" {
		return "", &BroadcastRejectedError{Reason: rejectionReason(env.Data)}
	}

	var data struct {
		TxID string `json:"txid"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.TxID == "" {
		return "", fmt.Errorf("%w: %w: send_tx: missing txid", ErrIndexer, ErrInvalidResponse)
	}
	return data.TxID, nil
}

// rejectionReason extracts a human-readable reason from a failed send_tx
// payload, falling back to the raw JSON.
func rejectionReason(data json.RawMessage) string {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err == nil {
		for _, k := range []string{"message", "error", "tx_hex"} {
			if s, ok := fields[k].(string); ok && s != "" {
				return s
			}
		}
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil && s != "" {
		return s
	}
	return string(data)
}

func truncate(b []byte) string {
	const limit = 512
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
