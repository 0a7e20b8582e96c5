// Package wallet implements the single-key Dogecoin wallet: key pairs,
// WIF secrets and pay-to-public-key-hash addresses.
//
// Every function takes the target network explicitly. Encoding a key or
// address with the wrong version byte yields a valid-looking string for a
// different network, so there is no default.
package wallet

import (
	"fmt"
	"math/big"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/btcsuite/btcd/btcutil/base58"
)

const (
	// PrivKeyLen is the length of a raw secp256k1 scalar.
	PrivKeyLen = 32

	// compressedFlag is appended to the WIF payload of compressed keys.
	compressedFlag = 0x01
)

// curveOrder is the order N of the secp256k1 group.
var curveOrder, _ = new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)

// KeyPair holds a private key and its public key for one network.
// It is never mutated after construction.
type KeyPair struct {
	PrivateKey *ec.PrivateKey `json:"-"`
	PublicKey  *ec.PublicKey  `json:"public_key"`
	Compressed bool           `json:"compressed"`
	Network    *NetworkConfig `json:"-"`
}

// Info is the upward result of wallet creation or import.
type Info struct {
	Address string `json:"address"`
	Secret  string `json:"-"`
}

// CreateWallet generates a fresh key pair from crypto/rand and returns its
// address together with the WIF secret for net.
func CreateWallet(net *NetworkConfig) (*Info, error) {
	kp, err := GenerateKeyPair(net)
	if err != nil {
		return nil, err
	}
	return kp.Info()
}

// ImportWallet parses a WIF secret for net and derives its address.
// A checksum, version-byte or length mismatch yields ErrInvalidKey.
func ImportWallet(secret string, net *NetworkConfig) (*Info, error) {
	kp, err := NewKeyPair(secret, net)
	if err != nil {
		return nil, err
	}
	return &Info{Address: kp.Address(), Secret: secret}, nil
}

// GenerateKeyPair creates a new compressed key pair for net.
func GenerateKeyPair(net *NetworkConfig) (*KeyPair, error) {
	if err := checkNetwork(net); err != nil {
		return nil, err
	}
	priv, err := ec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("wallet: failed to generate key: %w", err)
	}
	return &KeyPair{
		PrivateKey: priv,
		PublicKey:  priv.PubKey(),
		Compressed: true,
		Network:    net,
	}, nil
}

// NewKeyPair decodes a WIF secret into a key pair bound to net.
func NewKeyPair(secret string, net *NetworkConfig) (*KeyPair, error) {
	priv, compressed, err := DecodeWIF(secret, net)
	if err != nil {
		return nil, err
	}
	return &KeyPair{
		PrivateKey: priv,
		PublicKey:  priv.PubKey(),
		Compressed: compressed,
		Network:    net,
	}, nil
}

// Address returns the P2PKH address of the key pair on its network.
func (kp *KeyPair) Address() string {
	return PubKeyHashAddress(kp.PubKeyHash(), kp.Network)
}

// PubKeyBytes returns the serialized public key in the form the address
// commits to (compressed or uncompressed).
func (kp *KeyPair) PubKeyBytes() []byte {
	return SerializePubKey(kp.PublicKey, kp.Compressed)
}

// PubKeyHash returns HASH160 of the serialized public key.
func (kp *KeyPair) PubKeyHash() []byte {
	return Hash160(kp.PubKeyBytes())
}

// WIF encodes the private key as a secret for the key pair's network.
func (kp *KeyPair) WIF() (string, error) {
	return EncodeWIF(kp.PrivateKey, kp.Compressed, kp.Network)
}

// Info returns the address and WIF secret of the key pair.
func (kp *KeyPair) Info() (*Info, error) {
	secret, err := kp.WIF()
	if err != nil {
		return nil, err
	}
	return &Info{Address: kp.Address(), Secret: secret}, nil
}

// EncodeWIF encodes priv as base58check(PrivateKeyID || key [|| 0x01]).
func EncodeWIF(priv *ec.PrivateKey, compressed bool, net *NetworkConfig) (string, error) {
	if priv == nil {
		return "", fmt.Errorf("%w: private key", ErrNilParam)
	}
	if err := checkNetwork(net); err != nil {
		return "", err
	}
	payload := make([]byte, PrivKeyLen, PrivKeyLen+1)
	priv.D.FillBytes(payload)
	if compressed {
		payload = append(payload, compressedFlag)
	}
	return base58.CheckEncode(payload, net.PrivateKeyID), nil
}

// DecodeWIF parses a WIF secret for net. It returns the private key and
// whether the corresponding public key is serialized compressed.
func DecodeWIF(secret string, net *NetworkConfig) (*ec.PrivateKey, bool, error) {
	if err := checkNetwork(net); err != nil {
		return nil, false, err
	}
	if secret == "" {
		return nil, false, fmt.Errorf("%w: empty secret", ErrInvalidKey)
	}

	payload, version, err := base58.CheckDecode(secret)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	if version != net.PrivateKeyID {
		return nil, false, fmt.Errorf("%w: version byte 0x%02x is not %s (0x%02x)",
			ErrInvalidKey, version, net.Name, net.PrivateKeyID)
	}

	var compressed bool
	switch len(payload) {
	case PrivKeyLen:
	case PrivKeyLen + 1:
		if payload[PrivKeyLen] != compressedFlag {
			return nil, false, fmt.Errorf("%w: bad compression flag 0x%02x", ErrInvalidKey, payload[PrivKeyLen])
		}
		compressed = true
	default:
		return nil, false, fmt.Errorf("%w: payload length %d", ErrInvalidKey, len(payload))
	}

	scalar := new(big.Int).SetBytes(payload[:PrivKeyLen])
	if scalar.Sign() == 0 || scalar.Cmp(curveOrder) >= 0 {
		return nil, false, fmt.Errorf("%w: scalar out of range", ErrInvalidKey)
	}

	priv, _ := ec.PrivateKeyFromBytes(payload[:PrivKeyLen])
	return priv, compressed, nil
}

// SerializePubKey returns the 33-byte compressed or 65-byte uncompressed
// SEC encoding of pub.
func SerializePubKey(pub *ec.PublicKey, compressed bool) []byte {
	if compressed {
		return pub.Compressed()
	}
	out := make([]byte, 65)
	out[0] = 0x04
	pub.X.FillBytes(out[1:33])
	pub.Y.FillBytes(out[33:])
	return out
}
