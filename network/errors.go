package network

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork indicates a transport-level failure: the service could not be
	// reached, timed out, the context ended, or it answered 5xx/429. These
	// failures are retryable.
	ErrNetwork = errors.New("network: transport failure")

	// ErrIndexer indicates the indexer answered but refused or failed the
	// request (HTTP 4xx, status "fail", JSON-RPC error). Not retryable.
	ErrIndexer = errors.New("network: indexer error")

	// ErrAuthFailed indicates authentication (e.g., RPC credentials) was rejected.
	ErrAuthFailed = errors.New("network: authentication failed")

	// ErrTxNotFound indicates the requested transaction does not exist.
	ErrTxNotFound = errors.New("network: transaction not found")

	// ErrBroadcastRejected indicates the relay rejected the broadcast transaction.
	ErrBroadcastRejected = errors.New("network: broadcast rejected")

	// ErrInvalidResponse indicates the service returned a malformed or unexpected response.
	ErrInvalidResponse = errors.New("network: invalid response")
)

// BroadcastRejectedError carries the relay's rejection reason verbatim.
// It matches ErrBroadcastRejected under errors.Is.
type BroadcastRejectedError struct {
	Reason string
}

func (e *BroadcastRejectedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrBroadcastRejected, e.Reason)
}

func (e *BroadcastRejectedError) Is(target error) bool {
	return target == ErrBroadcastRejected
}

// RPCError is an error object returned by a JSON-RPC server.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("network: rpc error %d: %s", e.Code, e.Message)
}

// Is makes every RPC error an indexer error.
func (e *RPCError) Is(target error) bool {
	return target == ErrIndexer
}

// IsRetryable reports whether err is a transport failure worth retrying.
// Rejections and service errors are permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrBroadcastRejected) || errors.Is(err, ErrIndexer) {
		return false
	}
	return errors.Is(err, ErrNetwork)
}

// transportError classifies an HTTP client failure as ErrNetwork.
func transportError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrNetwork, op, err)
}

// statusError classifies a non-2xx HTTP status without a usable body.
func statusError(op string, code int, body string) error {
	switch {
	case code == 401 || code == 403:
		return fmt.Errorf("%w: %w: %s: HTTP %d", ErrIndexer, ErrAuthFailed, op, code)
	case code == 404:
		return fmt.Errorf("%w: %w: %s: HTTP %d: %s", ErrIndexer, ErrTxNotFound, op, code, body)
	case code == 429 || code >= 500:
		return fmt.Errorf("%w: %s: HTTP %d: %s", ErrNetwork, op, code, body)
	default:
		return fmt.Errorf("%w: %s: HTTP %d: %s", ErrIndexer, op, code, body)
	}
}
