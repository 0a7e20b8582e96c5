package tx

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libdoge-go/wallet"
)

var parentCounter atomic.Uint64

func testKeyPair(t *testing.T) *wallet.KeyPair {
	t.Helper()
	kp, err := wallet.GenerateKeyPair(&wallet.MainNet)
	require.NoError(t, err)
	return kp
}

func testAddress(t *testing.T) string {
	t.Helper()
	return testKeyPair(t).Address()
}

// fundingUTXO builds a parent transaction whose output vout pays value to
// kp and returns the matching UTXO with ParentRaw attached.
func fundingUTXO(t *testing.T, kp *wallet.KeyPair, value uint64, vout uint32) *UTXO {
	t.Helper()

	lock, err := wallet.P2PKHScript(kp.PubKeyHash())
	require.NoError(t, err)
	return scriptUTXO(t, lock, value, vout)
}

// scriptUTXO is fundingUTXO for an arbitrary locking script.
func scriptUTXO(t *testing.T, lock *script.Script, value uint64, vout uint32) *UTXO {
	t.Helper()

	parent := transaction.NewTransaction()
	parent.Version = 1
	seed := chainhash.DoubleHashH([]byte(fmt.Sprintf("parent-%d", parentCounter.Add(1))))
	parent.AddInput(&transaction.TransactionInput{
		SourceTXID:       &seed,
		SourceTxOutIndex: 0,
		SequenceNumber:   transaction.DefaultSequenceNumber,
		UnlockingScript:  &script.Script{},
	})
	for i := uint32(0); i <= vout; i++ {
		v := uint64(1_000)
		if i == vout {
			v = value
		}
		parent.AddOutput(&transaction.TransactionOutput{Satoshis: v, LockingScript: lock})
	}

	return &UTXO{
		TxID:         parent.TxID().String(),
		Vout:         vout,
		Value:        value,
		ScriptPubKey: lock.Bytes(),
		ParentRaw:    parent.Bytes(),
	}
}

// plainUTXO is a selection-only UTXO with no parent data.
func plainUTXO(n int, value uint64) *UTXO {
	h := chainhash.DoubleHashH([]byte(fmt.Sprintf("utxo-%d", n)))
	return &UTXO{TxID: h.String(), Vout: 0, Value: value}
}
