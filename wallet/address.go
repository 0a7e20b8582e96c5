package wallet

import (
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/btcsuite/btcd/btcutil/base58"
)

// HashLen is the length of a HASH160 digest.
const HashLen = 20

// AddressKind identifies the locking scheme an address commits to.
type AddressKind int

const (
	// KindP2PKH is a pay-to-public-key-hash address.
	KindP2PKH AddressKind = iota
	// KindP2SH is a pay-to-script-hash address (payable, not ownable by this wallet).
	KindP2SH
)

func (k AddressKind) String() string {
	switch k {
	case KindP2PKH:
		return "p2pkh"
	case KindP2SH:
		return "p2sh"
	default:
		return "unknown"
	}
}

// DecodedAddress is a parsed base58check address.
type DecodedAddress struct {
	Kind AddressKind
	Hash []byte // 20 bytes
}

// Hash160 returns RIPEMD160(SHA256(b)).
func Hash160(b []byte) []byte {
	return bsvhash.Hash160(b)
}

// AddressFromPubKey derives the P2PKH address of pub on net.
func AddressFromPubKey(pub *ec.PublicKey, compressed bool, net *NetworkConfig) (string, error) {
	if pub == nil {
		return "", fmt.Errorf("%w: public key", ErrNilParam)
	}
	if err := checkNetwork(net); err != nil {
		return "", err
	}
	return PubKeyHashAddress(Hash160(SerializePubKey(pub, compressed)), net), nil
}

// PubKeyHashAddress encodes a 20-byte public key hash with net's P2PKH version byte.
func PubKeyHashAddress(hash []byte, net *NetworkConfig) string {
	return base58.CheckEncode(hash, net.PubKeyHashAddrID)
}

// DecodeAddress parses addr and checks its version byte against net.
func DecodeAddress(addr string, net *NetworkConfig) (*DecodedAddress, error) {
	if err := checkNetwork(net); err != nil {
		return nil, err
	}
	if addr == "" {
		return nil, fmt.Errorf("%w: empty address", ErrInvalidAddress)
	}

	hash, version, err := base58.CheckDecode(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, addr, err)
	}
	if len(hash) != HashLen {
		return nil, fmt.Errorf("%w: %q: hash length %d", ErrInvalidAddress, addr, len(hash))
	}

	switch version {
	case net.PubKeyHashAddrID:
		return &DecodedAddress{Kind: KindP2PKH, Hash: hash}, nil
	case net.ScriptHashAddrID:
		return &DecodedAddress{Kind: KindP2SH, Hash: hash}, nil
	default:
		return nil, fmt.Errorf("%w: %q: version byte 0x%02x does not belong to %s",
			ErrInvalidAddress, addr, version, net.Name)
	}
}

// ValidateAddress reports whether addr is a valid address on net.
func ValidateAddress(addr string, net *NetworkConfig) error {
	_, err := DecodeAddress(addr, net)
	return err
}

// LockingScript returns the output script paying to addr on net.
func LockingScript(addr string, net *NetworkConfig) (*script.Script, error) {
	decoded, err := DecodeAddress(addr, net)
	if err != nil {
		return nil, err
	}
	if decoded.Kind == KindP2SH {
		return P2SHScript(decoded.Hash)
	}
	return P2PKHScript(decoded.Hash)
}

// P2PKHScript builds OP_DUP OP_HASH160 <hash> OP_EQUALVERIFY OP_CHECKSIG.
func P2PKHScript(pubKeyHash []byte) (*script.Script, error) {
	if len(pubKeyHash) != HashLen {
		return nil, fmt.Errorf("%w: pubkey hash must be %d bytes", ErrInvalidAddress, HashLen)
	}
	s := &script.Script{}
	if err := s.AppendOpcodes(script.OpDUP, script.OpHASH160); err != nil {
		return nil, err
	}
	if err := s.AppendPushData(pubKeyHash); err != nil {
		return nil, err
	}
	if err := s.AppendOpcodes(script.OpEQUALVERIFY, script.OpCHECKSIG); err != nil {
		return nil, err
	}
	return s, nil
}

// P2SHScript builds OP_HASH160 <hash> OP_EQUAL.
func P2SHScript(scriptHash []byte) (*script.Script, error) {
	if len(scriptHash) != HashLen {
		return nil, fmt.Errorf("%w: script hash must be %d bytes", ErrInvalidAddress, HashLen)
	}
	s := &script.Script{}
	if err := s.AppendOpcodes(script.OpHASH160); err != nil {
		return nil, err
	}
	if err := s.AppendPushData(scriptHash); err != nil {
		return nil, err
	}
	if err := s.AppendOpcodes(script.OpEQUAL); err != nil {
		return nil, err
	}
	return s, nil
}

// ExtractP2PKHHash returns the public key hash of a standard P2PKH script,
// or false if b is not one.
func ExtractP2PKHHash(b []byte) ([]byte, bool) {
	if len(b) != 25 ||
		b[0] != byte(script.OpDUP) ||
		b[1] != byte(script.OpHASH160) ||
		b[2] != HashLen ||
		b[23] != byte(script.OpEQUALVERIFY) ||
		b[24] != byte(script.OpCHECKSIG) {
		return nil, false
	}
	return b[3:23], true
}
