package tx

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libdoge-go/wallet"
)

func TestBuildUnsigned_ChangeScenario(t *testing.T) {
	sender := testKeyPair(t)
	to := testAddress(t)
	utxos := []*UTXO{plainUTXO(1, 500_000_000), plainUTXO(2, 300_000_000)}

	selected, err := SelectInputs(utxos, 600_000_000+DefaultFixedFee)
	require.NoError(t, err)

	b := NewBuilder(&wallet.MainNet)
	utx, err := b.BuildUnsigned(selected, Output{Address: to, Value: 600_000_000}, sender.Address(), DefaultFixedFee)
	require.NoError(t, err)

	require.Len(t, utx.Outputs, 2)
	assert.Equal(t, to, utx.Outputs[0].Address, "payment output comes first")
	assert.Equal(t, uint64(600_000_000), utx.Outputs[0].Value)
	assert.Equal(t, sender.Address(), utx.Outputs[1].Address, "change goes back to the sender")
	assert.Equal(t, uint64(190_000_000), utx.Outputs[1].Value)
	assert.Equal(t, 1, utx.ChangeIndex)
	assert.Equal(t, uint64(190_000_000), utx.Change())
	assert.Equal(t, DefaultFixedFee, utx.Fee)
	require.NoError(t, utx.CheckConservation())

	sdkTx, err := utx.Transaction()
	require.NoError(t, err)
	assert.Equal(t, uint32(TxVersion), sdkTx.Version)
	require.Len(t, sdkTx.Inputs, 2)
	assert.Equal(t, selected[0].TxID, sdkTx.Inputs[0].SourceTXID.String())
	require.Len(t, sdkTx.Outputs, 2)
	assert.Equal(t, uint64(190_000_000), sdkTx.Outputs[1].Satoshis)
}

func TestBuildUnsigned_DustSuppression(t *testing.T) {
	sender := testKeyPair(t)
	to := testAddress(t)
	b := NewBuilder(&wallet.MainNet)
	fee := DefaultFixedFee
	amount := uint64(100_000_000)

	tests := []struct {
		name       string
		change     uint64
		wantChange bool
	}{
		{"no change", 0, false},
		{"one koinu", 1, false},
		{"exactly dust", DefaultDustLimit, false},
		{"dust plus one", DefaultDustLimit + 1, true},
		{"large", 50_000_000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := []*UTXO{plainUTXO(1, amount+fee+tt.change)}
			utx, err := b.BuildUnsigned(in, Output{Address: to, Value: amount}, sender.Address(), fee)
			require.NoError(t, err)
			require.NoError(t, utx.CheckConservation())

			if tt.wantChange {
				require.Len(t, utx.Outputs, 2)
				assert.Equal(t, tt.change, utx.Outputs[1].Value)
				assert.Equal(t, sender.Address(), utx.Outputs[1].Address)
				assert.Equal(t, fee, utx.Fee)
			} else {
				assert.Len(t, utx.Outputs, 1)
				assert.Equal(t, -1, utx.ChangeIndex)
				assert.Equal(t, uint64(0), utx.Change())
				assert.Equal(t, fee+tt.change, utx.Fee, "sub-dust change is donated to the fee")
			}
		})
	}
}

func TestBuildUnsigned_Conservation(t *testing.T) {
	sender := testKeyPair(t)
	to := testAddress(t)
	b := NewBuilder(&wallet.MainNet)

	values := []uint64{5460, 5461, 10_000_000, 123_456_789, 700_000_001}
	for _, amount := range []uint64{5460, 99_999_999, 250_000_000} {
		for _, fee := range []uint64{0, 226, DefaultFixedFee} {
			var utxos []*UTXO
			for i, v := range values {
				utxos = append(utxos, plainUTXO(i, v))
			}
			selected, err := SelectInputs(utxos, amount+fee)
			require.NoError(t, err)

			utx, err := b.BuildUnsigned(selected, Output{Address: to, Value: amount}, sender.Address(), fee)
			require.NoError(t, err)

			totalIn, _ := SumValues(utx.Inputs)
			var totalOut uint64
			for _, o := range utx.Outputs {
				totalOut += o.Value
			}
			assert.Equal(t, totalIn, totalOut+utx.Fee, "amount=%d fee=%d", amount, fee)
			assert.GreaterOrEqual(t, utx.Fee, fee)
		}
	}
}

func TestBuildUnsigned_Insufficient(t *testing.T) {
	b := NewBuilder(&wallet.MainNet)
	_, err := b.BuildUnsigned([]*UTXO{plainUTXO(1, 100_000)}, Output{Address: testAddress(t), Value: 99_000}, testAddress(t), 10_000)

	var insufficient *InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, uint64(109_000), insufficient.Required)
	assert.Equal(t, uint64(100_000), insufficient.Available)
}

func TestBuildUnsigned_InvalidParams(t *testing.T) {
	to := testAddress(t)
	change := testAddress(t)
	in := []*UTXO{plainUTXO(1, 1_000_000_000)}
	b := NewBuilder(&wallet.MainNet)

	_, err := b.BuildUnsigned(nil, Output{Address: to, Value: 1_000_000}, change, 0)
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = b.BuildUnsigned(in, Output{Address: to, Value: 0}, change, 0)
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = b.BuildUnsigned(in, Output{Address: to, Value: DefaultDustLimit - 1}, change, 0)
	assert.ErrorIs(t, err, ErrInvalidParams)

	dup := *in[0]
	_, err = b.BuildUnsigned([]*UTXO{in[0], &dup}, Output{Address: to, Value: 1_000_000}, change, 0)
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = b.BuildUnsigned([]*UTXO{{TxID: "zz", Value: 1_000_000_000}}, Output{Address: to, Value: 1_000_000}, change, 0)
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = b.BuildUnsigned([]*UTXO{nil}, Output{Address: to, Value: 1_000_000}, change, 0)
	assert.ErrorIs(t, err, ErrNilParam)

	_, err = (&Builder{}).BuildUnsigned(in, Output{Address: to, Value: 1_000_000}, change, 0)
	assert.ErrorIs(t, err, wallet.ErrInvalidNetwork)
}

func TestBuildUnsigned_WrongNetworkAddress(t *testing.T) {
	testnetKey, err := wallet.GenerateKeyPair(&wallet.TestNet)
	require.NoError(t, err)

	b := NewBuilder(&wallet.MainNet)
	in := []*UTXO{plainUTXO(1, 1_000_000_000)}

	_, err = b.BuildUnsigned(in, Output{Address: testnetKey.Address(), Value: 1_000_000}, testAddress(t), 0)
	assert.ErrorIs(t, err, wallet.ErrInvalidAddress)

	_, err = b.BuildUnsigned(in, Output{Address: testAddress(t), Value: 1_000_000}, testnetKey.Address(), 0)
	assert.ErrorIs(t, err, wallet.ErrInvalidAddress)
}

func TestBuildUnsigned_PayToScriptHash(t *testing.T) {
	p2sh := base58.CheckEncode(make([]byte, wallet.HashLen), wallet.MainNet.ScriptHashAddrID)
	b := NewBuilder(&wallet.MainNet)

	utx, err := b.BuildUnsigned([]*UTXO{plainUTXO(1, 1_000_000_000)}, Output{Address: p2sh, Value: 1_000_000}, testAddress(t), DefaultFixedFee)
	require.NoError(t, err)

	sdkTx, err := utx.Transaction()
	require.NoError(t, err)
	script := sdkTx.Outputs[0].LockingScript.Bytes()
	require.Len(t, script, 23)
	assert.Equal(t, byte(0xa9), script[0])  // OP_HASH160
	assert.Equal(t, byte(0x87), script[22]) // OP_EQUAL
}

func TestBuildUnsigned_CustomDustLimit(t *testing.T) {
	b := &Builder{Network: &wallet.MainNet, DustLimit: 1_000_000}
	utx, err := b.BuildUnsigned([]*UTXO{plainUTXO(1, 12_000_000)}, Output{Address: testAddress(t), Value: 1_000_000}, testAddress(t), DefaultFixedFee)
	require.NoError(t, err)
	assert.Len(t, utx.Outputs, 1)
	assert.Equal(t, uint64(11_000_000), utx.Fee)
}
