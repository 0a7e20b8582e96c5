package network

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// Compile-time interface check.
var _ Indexer = (*RPCClient)(nil)

// rpcInvalidAddressOrKey is RPC_INVALID_ADDRESS_OR_KEY, returned by
// getrawtransaction for an unknown txid.
const rpcInvalidAddressOrKey = -5

// listUnspentResult maps the JSON fields returned by the listunspent call.
// Amounts are decoded as json.Number to keep them out of float64.
type listUnspentResult struct {
	TxID          string      `json:"txid"`
	Vout          uint32      `json:"vout"`
	Amount        json.Number `json:"amount"`
	ScriptPubKey  string      `json:"scriptPubKey"`
	Address       string      `json:"address"`
	Confirmations int64       `json:"confirmations"`
}

// ListUnspent returns all unspent transaction outputs for the given address.
// It calls `listunspent 0 9999999 ["address"]`; the address must be in the
// node's wallet (see ImportAddress).
func (c *RPCClient) ListUnspent(ctx context.Context, address string) ([]*UTXO, error) {
	params := []any{0, 9999999, []string{address}}
	var results []listUnspentResult
	if err := c.Call(ctx, "listunspent", params, &results); err != nil {
		return nil, err
	}

	utxos := make([]*UTXO, 0, len(results))
	for _, r := range results {
		value, err := ParseAmount(r.Amount.String())
		if err != nil {
			return nil, fmt.Errorf("%w: utxo %s:%d: %w", ErrIndexer, r.TxID, r.Vout, err)
		}
		utxos = append(utxos, &UTXO{
			TxID:          r.TxID,
			Vout:          r.Vout,
			Value:         value,
			ScriptPubKey:  r.ScriptPubKey,
			Confirmations: r.Confirmations,
		})
	}
	return utxos, nil
}

// Balance sums the node's view of address's unspent outputs. Outputs with
// zero confirmations count as unconfirmed.
func (c *RPCClient) Balance(ctx context.Context, address string) (*Balance, error) {
	utxos, err := c.ListUnspent(ctx, address)
	if err != nil {
		return nil, err
	}
	var b Balance
	for _, u := range utxos {
		if u.Confirmations > 0 {
			b.Confirmed += int64(u.Value)
		} else {
			b.Unconfirmed += int64(u.Value)
		}
	}
	return &b, nil
}

// BroadcastTx submits a raw transaction hex to the network and returns the txid.
// It calls `sendrawtransaction "hex"`. Verification errors from the node
// become *BroadcastRejectedError; transport failures are returned as is.
func (c *RPCClient) BroadcastTx(ctx context.Context, rawTxHex string) (string, error) {
	params := []any{rawTxHex}
	var txid string
	if err := c.Call(ctx, "sendrawtransaction", params, &txid); err != nil {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) {
			return "", &BroadcastRejectedError{Reason: rpcErr.Message}
		}
		return "", err
	}
	return txid, nil
}

// GetRawTx returns the raw transaction bytes for the given txid.
// It calls `getrawtransaction "txid" 0` (non-verbose) to get the hex-encoded
// transaction and decodes it to bytes.
func (c *RPCClient) GetRawTx(ctx context.Context, txid string) ([]byte, error) {
	params := []any{txid, 0}
	var rawHex string
	if err := c.Call(ctx, "getrawtransaction", params, &rawHex); err != nil {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) && rpcErr.Code == rpcInvalidAddressOrKey {
			return nil, fmt.Errorf("%w: %s: %w", ErrTxNotFound, txid, err)
		}
		return nil, err
	}
	data, err := hex.DecodeString(rawHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: invalid tx hex: %v", ErrIndexer, ErrInvalidResponse, err)
	}
	return data, nil
}

// ImportAddress imports a watch-only address into the node's wallet so that
// ListUnspent can find its outputs. When rescan is true the node rescans
// the chain, which can take minutes on mainnet. Safe to call repeatedly.
func (c *RPCClient) ImportAddress(ctx context.Context, address string, rescan bool) error {
	params := []any{address, "", rescan}
	return c.Call(ctx, "importaddress", params, nil)
}

// GetBlockCount returns the height of the node's chain tip.
func (c *RPCClient) GetBlockCount(ctx context.Context) (uint64, error) {
	var height uint64
	if err := c.Call(ctx, "getblockcount", nil, &height); err != nil {
		return 0, err
	}
	return height, nil
}
