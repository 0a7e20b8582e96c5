package tx

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"

	"github.com/bitfsorg/libdoge-go/wallet"
)

// TxVersion is the version field of transactions built here.
const TxVersion = 1

// Builder assembles unsigned transactions for one network.
type Builder struct {
	Network   *wallet.NetworkConfig
	DustLimit uint64
}

// NewBuilder returns a Builder for net with DefaultDustLimit.
func NewBuilder(net *wallet.NetworkConfig) *Builder {
	return &Builder{Network: net, DustLimit: DefaultDustLimit}
}

// UnsignedTransaction is a built but unsigned transaction.
//
// Outputs are ordered payment first, then change when present. Fee is the
// implicit fee actually paid, including any change below the dust limit.
type UnsignedTransaction struct {
	Inputs      []*UTXO
	Outputs     []*Output
	Fee         uint64
	ChangeIndex int // index of the change output, -1 when none

	tx *transaction.Transaction
}

// Change returns the change value, or 0 when there is no change output.
func (u *UnsignedTransaction) Change() uint64 {
	if u.ChangeIndex < 0 {
		return 0
	}
	return u.Outputs[u.ChangeIndex].Value
}

// Transaction returns a copy of the go-sdk transaction with empty
// unlocking scripts.
func (u *UnsignedTransaction) Transaction() (*transaction.Transaction, error) {
	return transaction.NewTransactionFromBytes(u.tx.Bytes())
}

// BuildUnsigned spends inputs to pay payment and returns the rest, minus
// fee, to changeAddress. Change is only emitted when it exceeds the dust
// limit; otherwise it is added to the fee.
//
// It returns *InsufficientFundsError when inputs do not cover
// payment + fee, and ErrConservation if the built outputs do not account
// for every input koinu.
func (b *Builder) BuildUnsigned(inputs []*UTXO, payment Output, changeAddress string, fee uint64) (*UnsignedTransaction, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: builder", ErrNilParam)
	}
	if b.Network == nil {
		return nil, fmt.Errorf("%w: nil network", wallet.ErrInvalidNetwork)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no inputs", ErrInvalidParams)
	}
	if payment.Value == 0 || payment.Value < b.DustLimit {
		return nil, fmt.Errorf("%w: payment %d koinu is below the dust limit %d", ErrInvalidParams, payment.Value, b.DustLimit)
	}

	paymentScript, err := wallet.LockingScript(payment.Address, b.Network)
	if err != nil {
		return nil, fmt.Errorf("payment output: %w", err)
	}
	changeScript, err := wallet.LockingScript(changeAddress, b.Network)
	if err != nil {
		return nil, fmt.Errorf("change output: %w", err)
	}

	seen := make(map[string]struct{}, len(inputs))
	for i, in := range inputs {
		if in == nil {
			return nil, fmt.Errorf("%w: input[%d]", ErrNilParam, i)
		}
		if _, dup := seen[in.Outpoint()]; dup {
			return nil, fmt.Errorf("%w: input %s spent twice", ErrInvalidParams, in.Outpoint())
		}
		seen[in.Outpoint()] = struct{}{}
	}

	totalIn, ok := SumValues(inputs)
	if !ok {
		return nil, fmt.Errorf("%w: input values overflow", ErrInvalidParams)
	}
	required := payment.Value + fee
	if required < payment.Value {
		return nil, fmt.Errorf("%w: payment plus fee overflows", ErrInvalidParams)
	}
	if totalIn < required {
		return nil, &InsufficientFundsError{Required: required, Available: totalIn}
	}

	change := totalIn - payment.Value - fee
	utx := &UnsignedTransaction{
		Inputs:      inputs,
		Outputs:     []*Output{{Address: payment.Address, Value: payment.Value}},
		Fee:         fee,
		ChangeIndex: -1,
	}
	if change > b.DustLimit {
		utx.Outputs = append(utx.Outputs, &Output{Address: changeAddress, Value: change})
		utx.ChangeIndex = 1
	} else {
		utx.Fee += change
	}

	sdkTx := transaction.NewTransaction()
	sdkTx.Version = TxVersion
	for i, in := range inputs {
		hash, err := txidHash(in.TxID)
		if err != nil {
			return nil, fmt.Errorf("%w: input[%d] txid %q: %w", ErrInvalidParams, i, in.TxID, err)
		}
		sdkTx.AddInput(&transaction.TransactionInput{
			SourceTXID:       hash,
			SourceTxOutIndex: in.Vout,
			SequenceNumber:   transaction.DefaultSequenceNumber,
			UnlockingScript:  &script.Script{},
		})
	}
	sdkTx.AddOutput(&transaction.TransactionOutput{
		Satoshis:      payment.Value,
		LockingScript: paymentScript,
	})
	if utx.ChangeIndex >= 0 {
		sdkTx.AddOutput(&transaction.TransactionOutput{
			Satoshis:      change,
			LockingScript: changeScript,
		})
	}
	utx.tx = sdkTx

	if err := utx.CheckConservation(); err != nil {
		return nil, err
	}
	return utx, nil
}

// CheckConservation verifies sum(inputs) == sum(outputs) + fee and that
// the serialized outputs match the Outputs list.
func (u *UnsignedTransaction) CheckConservation() error {
	totalIn, ok := SumValues(u.Inputs)
	if !ok {
		return fmt.Errorf("%w: input values overflow", ErrConservation)
	}
	var totalOut uint64
	for _, o := range u.Outputs {
		next := totalOut + o.Value
		if next < totalOut {
			return fmt.Errorf("%w: output values overflow", ErrConservation)
		}
		totalOut = next
	}
	if totalOut+u.Fee < totalOut || totalIn != totalOut+u.Fee {
		return fmt.Errorf("%w: inputs %d != outputs %d + fee %d", ErrConservation, totalIn, totalOut, u.Fee)
	}

	if u.tx != nil {
		if len(u.tx.Outputs) != len(u.Outputs) || len(u.tx.Inputs) != len(u.Inputs) {
			return fmt.Errorf("%w: serialized shape differs", ErrConservation)
		}
		for i, o := range u.tx.Outputs {
			if o.Satoshis != u.Outputs[i].Value {
				return fmt.Errorf("%w: output %d value differs", ErrConservation, i)
			}
		}
		for i, in := range u.tx.Inputs {
			if !strings.EqualFold(in.SourceTXID.String(), u.Inputs[i].TxID) || in.SourceTxOutIndex != u.Inputs[i].Vout {
				return fmt.Errorf("%w: input %d outpoint differs", ErrConservation, i)
			}
		}
	}
	return nil
}

// txidHash parses a display-order txid into a chainhash.Hash.
func txidHash(txid string) (*chainhash.Hash, error) {
	b, err := hex.DecodeString(txid)
	if err != nil {
		return nil, err
	}
	if len(b) != chainhash.HashSize {
		return nil, fmt.Errorf("txid must be %d bytes, got %d", chainhash.HashSize, len(b))
	}
	slices.Reverse(b)
	return chainhash.NewHash(b)
}
