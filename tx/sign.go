package tx

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	sighash "github.com/bsv-blockchain/go-sdk/transaction/sighash"

	"github.com/bitfsorg/libdoge-go/wallet"
)

// SigHashAll is the legacy SIGHASH_ALL flag. Dogecoin has no FORKID.
const SigHashAll = sighash.All

// SignedInput is one input's signature over its legacy signature hash.
type SignedInput struct {
	Index     int
	Signature *ec.Signature
	SigHash   []byte
	PubKey    *ec.PublicKey
	PubKeyRaw []byte // serialized form the address commits to; compressed if empty
}

// SignedTransaction is a finalized, broadcast-ready transaction.
type SignedTransaction struct {
	Raw  []byte
	Hex  string
	TxID string
}

// LegacySigHash computes the original (pre-BIP143, no FORKID) signature
// hash of input idx: every unlocking script is emptied, the signed input
// carries prevScript, the serialization is followed by the little-endian
// hash type and double SHA-256'd.
//
// Only SIGHASH_ALL is supported.
func LegacySigHash(t *transaction.Transaction, idx int, prevScript []byte, flag sighash.Flag) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: transaction", ErrNilParam)
	}
	if idx < 0 || idx >= len(t.Inputs) {
		return nil, fmt.Errorf("%w: input index %d out of range", ErrInvalidParams, idx)
	}
	if flag != sighash.All {
		return nil, fmt.Errorf("%w: unsupported sighash type 0x%02x", ErrInvalidParams, uint32(flag))
	}

	cp := transaction.NewTransaction()
	cp.Version = t.Version
	cp.LockTime = t.LockTime
	for i, in := range t.Inputs {
		unlocking := &script.Script{}
		if i == idx {
			unlocking = script.NewFromBytes(prevScript)
		}
		cp.AddInput(&transaction.TransactionInput{
			SourceTXID:       in.SourceTXID,
			SourceTxOutIndex: in.SourceTxOutIndex,
			SequenceNumber:   in.SequenceNumber,
			UnlockingScript:  unlocking,
		})
	}
	for _, out := range t.Outputs {
		cp.AddOutput(&transaction.TransactionOutput{
			Satoshis:      out.Satoshis,
			LockingScript: out.LockingScript,
		})
	}

	preimage := binary.LittleEndian.AppendUint32(cp.Bytes(), uint32(flag))
	h := chainhash.DoubleHashH(preimage)
	return h[:], nil
}

// SignAll signs every input of u with kp. Each input's parent transaction
// must be present, hash to the input's txid, contain the spent output with
// the expected value, and lock it to kp's public key hash. Any failure is
// a *SigningError.
func SignAll(u *UnsignedTransaction, kp *wallet.KeyPair) ([]*SignedInput, error) {
	if u == nil || u.tx == nil {
		return nil, fmt.Errorf("%w: unsigned transaction", ErrNilParam)
	}
	if kp == nil || kp.PrivateKey == nil {
		return nil, fmt.Errorf("%w: key pair", ErrNilParam)
	}

	ownHash := kp.PubKeyHash()
	pubRaw := kp.PubKeyBytes()
	signed := make([]*SignedInput, 0, len(u.Inputs))

	for i, in := range u.Inputs {
		prevScript, err := parentLockingScript(i, in)
		if err != nil {
			return nil, err
		}
		pkh, ok := wallet.ExtractP2PKHHash(prevScript)
		if !ok {
			return nil, &SigningError{Input: i, Reason: "spent output is not P2PKH"}
		}
		if !bytes.Equal(pkh, ownHash) {
			return nil, &SigningError{Input: i, Reason: "spent output is not locked to this key"}
		}

		hash, err := LegacySigHash(u.tx, i, prevScript, SigHashAll)
		if err != nil {
			return nil, &SigningError{Input: i, Reason: "sighash", Err: err}
		}
		sig, err := kp.PrivateKey.Sign(hash)
		if err != nil {
			return nil, &SigningError{Input: i, Reason: "sign", Err: err}
		}
		signed = append(signed, &SignedInput{
			Index:     i,
			Signature: sig,
			SigHash:   hash,
			PubKey:    kp.PublicKey,
			PubKeyRaw: pubRaw,
		})
	}
	return signed, nil
}

// parentLockingScript validates in.ParentRaw and returns the locking script
// of the output in spends.
func parentLockingScript(idx int, in *UTXO) ([]byte, error) {
	if len(in.ParentRaw) == 0 {
		return nil, &SigningError{Input: idx, Reason: "missing parent transaction"}
	}
	parent, err := transaction.NewTransactionFromBytes(in.ParentRaw)
	if err != nil {
		return nil, &SigningError{Input: idx, Reason: "malformed parent transaction", Err: err}
	}
	if got := parent.TxID().String(); !strings.EqualFold(got, in.TxID) {
		return nil, &SigningError{Input: idx, Reason: fmt.Sprintf("parent hashes to %s, want %s", got, in.TxID)}
	}
	if int(in.Vout) >= len(parent.Outputs) {
		return nil, &SigningError{Input: idx, Reason: fmt.Sprintf("parent has no output %d", in.Vout)}
	}
	out := parent.Outputs[in.Vout]
	if out.Satoshis != in.Value {
		return nil, &SigningError{Input: idx, Reason: fmt.Sprintf("parent output value %d, indexer reported %d", out.Satoshis, in.Value)}
	}
	if out.LockingScript == nil {
		return nil, &SigningError{Input: idx, Reason: "parent output has no locking script"}
	}
	return out.LockingScript.Bytes(), nil
}

// Finalize embeds <sig||hashtype> <pubkey> into every input and serializes
// the result. It fails with ErrIncompleteTransaction unless there is
// exactly one signature per input, and with ErrSigning if any signature
// would fail the spent output's CHECKSIG.
func Finalize(u *UnsignedTransaction, signed []*SignedInput) (*SignedTransaction, error) {
	if u == nil || u.tx == nil {
		return nil, fmt.Errorf("%w: unsigned transaction", ErrNilParam)
	}
	if len(signed) != len(u.Inputs) {
		return nil, fmt.Errorf("%w: %d signatures for %d inputs", ErrIncompleteTransaction, len(signed), len(u.Inputs))
	}

	byIndex := make([]*SignedInput, len(u.Inputs))
	for _, s := range signed {
		if s == nil || s.Signature == nil || s.PubKey == nil {
			return nil, fmt.Errorf("%w: empty signature", ErrIncompleteTransaction)
		}
		if s.Index < 0 || s.Index >= len(byIndex) {
			return nil, fmt.Errorf("%w: signature for unknown input %d", ErrIncompleteTransaction, s.Index)
		}
		if byIndex[s.Index] != nil {
			return nil, fmt.Errorf("%w: input %d signed twice", ErrIncompleteTransaction, s.Index)
		}
		byIndex[s.Index] = s
	}

	final, err := u.Transaction()
	if err != nil {
		return nil, fmt.Errorf("%w: copy transaction: %w", ErrSigning, err)
	}

	for i, s := range byIndex {
		if s == nil {
			return nil, fmt.Errorf("%w: input %d is unsigned", ErrIncompleteTransaction, i)
		}
		pubRaw, err := checkSignature(u, i, s)
		if err != nil {
			return nil, err
		}

		sigBytes := append(s.Signature.Serialize(), byte(SigHashAll))
		unlocking := &script.Script{}
		if err := unlocking.AppendPushData(sigBytes); err != nil {
			return nil, fmt.Errorf("%w: push sig: %w", ErrScriptBuild, err)
		}
		if err := unlocking.AppendPushData(pubRaw); err != nil {
			return nil, fmt.Errorf("%w: push pubkey: %w", ErrScriptBuild, err)
		}
		final.Inputs[i].UnlockingScript = unlocking
	}

	raw := final.Bytes()
	return &SignedTransaction{
		Raw:  raw,
		Hex:  hex.EncodeToString(raw),
		TxID: final.TxID().String(),
	}, nil
}

// checkSignature recomputes input i's sighash from u and the parent's
// locking script, and checks that s signs it with the key the script pays
// to. It returns the public key bytes to push.
func checkSignature(u *UnsignedTransaction, i int, s *SignedInput) ([]byte, error) {
	prevScript, err := parentLockingScript(i, u.Inputs[i])
	if err != nil {
		return nil, err
	}
	pkh, ok := wallet.ExtractP2PKHHash(prevScript)
	if !ok {
		return nil, &SigningError{Input: i, Reason: "spent output is not P2PKH"}
	}

	pubRaw := s.PubKeyRaw
	if len(pubRaw) == 0 {
		pubRaw = s.PubKey.Compressed()
	}
	if !bytes.Equal(pubRaw, wallet.SerializePubKey(s.PubKey, len(pubRaw) == 33)) {
		return nil, &SigningError{Input: i, Reason: "public key bytes do not encode the signing key"}
	}
	if !bytes.Equal(wallet.Hash160(pubRaw), pkh) {
		return nil, &SigningError{Input: i, Reason: "public key does not match the spent output"}
	}

	hash, err := LegacySigHash(u.tx, i, prevScript, SigHashAll)
	if err != nil {
		return nil, &SigningError{Input: i, Reason: "sighash", Err: err}
	}
	if !bytes.Equal(hash, s.SigHash) {
		return nil, &SigningError{Input: i, Reason: "signature covers a different transaction"}
	}
	if !s.Signature.Verify(hash, s.PubKey) {
		return nil, &SigningError{Input: i, Reason: "signature does not verify"}
	}
	return pubRaw, nil
}
