package wallet

import (
	"encoding/json"
	"fmt"
	"os"
)

// NetworkConfig defines the parameters of a Dogecoin network. Every key,
// address and script function takes one explicitly; there is no package
// default.
type NetworkConfig struct {
	Name             string `json:"name"`
	PubKeyHashAddrID byte   `json:"pubkey_hash_addr_id"`
	ScriptHashAddrID byte   `json:"script_hash_addr_id"`
	PrivateKeyID     byte   `json:"private_key_id"`
	DefaultPort      uint16 `json:"default_port"`
	RPCPort          uint16 `json:"rpc_port"`
	GenesisHash      string `json:"genesis_hash"`
	ExplorerCode     string `json:"explorer_code"` // network code used by explorer APIs
}

// Predefined network configurations.
var (
	MainNet = NetworkConfig{
		Name:             "mainnet",
		PubKeyHashAddrID: 0x1e, // D...
		ScriptHashAddrID: 0x16, // 9... or A...
		PrivateKeyID:     0x9e, // Q... or 6...
		DefaultPort:      22556,
		RPCPort:          22555,
		GenesisHash:      "1a91e3dace36e2be3bf030a65679fe821aa1d6ef92e7c9902eb318182c355691",
		ExplorerCode:     "DOGE",
	}

	TestNet = NetworkConfig{
		Name:             "testnet",
		PubKeyHashAddrID: 0x71, // n...
		ScriptHashAddrID: 0xc4,
		PrivateKeyID:     0xf1,
		DefaultPort:      44556,
		RPCPort:          44555,
		GenesisHash:      "bb0a78264637406b6360aad926284d544d7049f45189db5664f3c4d07350559e",
		ExplorerCode:     "DOGETEST",
	}

	RegTest = NetworkConfig{
		Name:             "regtest",
		PubKeyHashAddrID: 0x6f,
		ScriptHashAddrID: 0xc4,
		PrivateKeyID:     0xef,
		DefaultPort:      18444,
		RPCPort:          18332,
		GenesisHash:      "3d2160a3b5dc4a9d62e7e66a295f70313ac808440ef7400d6c0772171ce973a5",
		ExplorerCode:     "DOGEREGTEST",
	}
)

// predefined maps network names to their configs.
var predefined = map[string]*NetworkConfig{
	"mainnet": &MainNet,
	"testnet": &TestNet,
	"regtest": &RegTest,
}

// GetNetwork returns a predefined network by name.
// If the name is not predefined, it returns ErrInvalidNetwork.
func GetNetwork(name string) (*NetworkConfig, error) {
	if net, ok := predefined[name]; ok {
		return net, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, name)
}

// LoadCustomNetwork loads a NetworkConfig from a JSON file.
func LoadCustomNetwork(path string) (*NetworkConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wallet: failed to read network config: %w", err)
	}

	var config NetworkConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("wallet: failed to parse network config: %w", err)
	}

	if config.Name == "" {
		return nil, fmt.Errorf("%w: network config must have a name", ErrInvalidNetwork)
	}
	if config.PubKeyHashAddrID == config.ScriptHashAddrID {
		return nil, fmt.Errorf("%w: %s: pubkey-hash and script-hash versions collide", ErrInvalidNetwork, config.Name)
	}

	return &config, nil
}

// checkNetwork rejects a nil network before any encoding happens.
func checkNetwork(net *NetworkConfig) error {
	if net == nil {
		return fmt.Errorf("%w: nil network", ErrInvalidNetwork)
	}
	return nil
}
