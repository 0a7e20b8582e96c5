package network

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig bounds the exponential backoff applied to transport failures.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryConfig returns three attempts starting at 500ms, capped at 10s total.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxElapsedTime:  10 * time.Second,
	}
}

// retryingIndexer wraps an Indexer and retries transport failures.
type retryingIndexer struct {
	next   Indexer
	cfg    RetryConfig
	logger *slog.Logger
}

// WithRetry decorates idx so that calls failing with a retryable error
// (IsRetryable) are repeated with exponential backoff. Service errors and
// broadcast rejections are returned on the first attempt.
func WithRetry(idx Indexer, cfg RetryConfig, logger *slog.Logger) Indexer {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = DefaultRetryConfig().InitialInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &retryingIndexer{next: idx, cfg: cfg, logger: logger}
}

func (r *retryingIndexer) do(ctx context.Context, op string, fn func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.cfg.InitialInterval
	if r.cfg.MaxElapsedTime > 0 {
		bo.MaxElapsedTime = r.cfg.MaxElapsedTime
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(bo, uint64(r.cfg.MaxAttempts-1)), ctx)

	err := backoff.RetryNotify(func() error {
		err := fn()
		if err != nil && !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, next time.Duration) {
		r.logger.Warn("indexer call failed, retrying",
			"op", op, "error", err, "next", next)
	})
	if (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) && !errors.Is(err, ErrNetwork) {
		return transportError(op, err)
	}
	return err
}

func (r *retryingIndexer) Balance(ctx context.Context, address string) (*Balance, error) {
	var out *Balance
	err := r.do(ctx, "balance", func() (err error) {
		out, err = r.next.Balance(ctx, address)
		return err
	})
	return out, err
}

func (r *retryingIndexer) ListUnspent(ctx context.Context, address string) ([]*UTXO, error) {
	var out []*UTXO
	err := r.do(ctx, "list_unspent", func() (err error) {
		out, err = r.next.ListUnspent(ctx, address)
		return err
	})
	return out, err
}

func (r *retryingIndexer) GetRawTx(ctx context.Context, txid string) ([]byte, error) {
	var out []byte
	err := r.do(ctx, "get_raw_tx", func() (err error) {
		out, err = r.next.GetRawTx(ctx, txid)
		return err
	})
	return out, err
}

// BroadcastTx is retried on transport failures only; a rejection is
// returned at once.
func (r *retryingIndexer) BroadcastTx(ctx context.Context, rawTxHex string) (string, error) {
	var out string
	err := r.do(ctx, "broadcast", func() (err error) {
		out, err = r.next.BroadcastTx(ctx, rawTxHex)
		return err
	})
	return out, err
}
