// Package network talks to the outside world on behalf of the wallet:
// address indexers that list unspent outputs and serve parent
// transactions, and relays that broadcast signed transactions.
package network

import "context"

// Indexer is the interface the send pipeline depends on. Implementations
// return ErrNetwork for transport failures and ErrIndexer for service
// errors; BroadcastTx returns *BroadcastRejectedError on rejection.
type Indexer interface {
	// Balance returns the confirmed and unconfirmed balance of address.
	Balance(ctx context.Context, address string) (*Balance, error)

	// ListUnspent returns all unspent transaction outputs for the given address.
	ListUnspent(ctx context.Context, address string) ([]*UTXO, error)

	// GetRawTx returns the raw transaction bytes for the given txid.
	GetRawTx(ctx context.Context, txid string) ([]byte, error)

	// BroadcastTx submits a raw transaction hex to the network and returns the txid.
	BroadcastTx(ctx context.Context, rawTxHex string) (string, error)
}

// UTXO represents an unspent transaction output as reported by an indexer.
// Value is in koinu.
type UTXO struct {
	TxID          string `json:"txid"`
	Vout          uint32 `json:"vout"`
	Value         uint64 `json:"value"`
	ScriptPubKey  string `json:"script_pubkey"`
	Confirmations int64  `json:"confirmations"`
}

// Balance of an address in koinu. Unconfirmed may be negative while spends
// are pending.
type Balance struct {
	Confirmed   int64 `json:"confirmed"`
	Unconfirmed int64 `json:"unconfirmed"`
}

// Total returns confirmed plus unconfirmed.
func (b *Balance) Total() int64 {
	return b.Confirmed + b.Unconfirmed
}
