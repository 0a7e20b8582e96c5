// Package tx selects inputs, builds, signs and finalizes Dogecoin
// pay-to-public-key-hash transactions. All values are integer koinu.
package tx

import "fmt"

// UTXO represents an unspent transaction output owned by the wallet.
type UTXO struct {
	TxID         string `json:"txid"`          // display (big-endian) hex
	Vout         uint32 `json:"vout"`
	Value        uint64 `json:"value"`         // koinu
	ScriptPubKey []byte `json:"script_pubkey"` // as reported by the indexer, may be empty
	ParentRaw    []byte `json:"-"`             // full serialized parent transaction, needed to sign
}

// Outpoint returns "txid:vout", the identity of the output.
func (u *UTXO) Outpoint() string {
	return Outpoint(u.TxID, u.Vout)
}

// Outpoint formats a txid and output index as "txid:vout".
func Outpoint(txid string, vout uint32) string {
	return fmt.Sprintf("%s:%d", txid, vout)
}

// Output is a destination address and value.
type Output struct {
	Address string `json:"address"`
	Value   uint64 `json:"value"`
}

// SumValues returns the total value of utxos and false if it overflows uint64.
func SumValues(utxos []*UTXO) (uint64, bool) {
	var total uint64
	for _, u := range utxos {
		next := total + u.Value
		if next < total {
			return 0, false
		}
		total = next
	}
	return total, true
}
