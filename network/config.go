package network

import (
	"fmt"
	"time"
)

// Indexer kinds accepted by NewIndexer.
const (
	KindREST = "rest"
	KindRPC  = "rpc"
)

// RPCConfig holds the connection parameters for a dogecoind JSON-RPC interface.
type RPCConfig struct {
	URL      string        `json:"url"`
	User     string        `json:"user"`
	Password string        `json:"password"`
	Network  string        `json:"network"`
	Timeout  time.Duration `json:"timeout"`
}

// NetworkPresets contains default RPC configurations for local nodes.
// Mainnet is intentionally omitted to require explicit configuration.
var NetworkPresets = map[string]RPCConfig{
	"regtest": {URL: "http://localhost:18332", User: "doge", Password: "doge"},
	"testnet": {URL: "http://localhost:44555", User: "doge", Password: "doge"},
}

// Environment variables consulted by ResolveConfig.
const (
	EnvIndexerURL = "DOGEWALLET_INDEXER_URL"
	EnvRPCUser    = "DOGEWALLET_RPC_USER"
	EnvRPCPass    = "DOGEWALLET_RPC_PASS"
)

// ResolveConfig merges RPC configuration from three sources with decreasing priority:
//  1. CLI flags (highest priority)
//  2. Environment variables (DOGEWALLET_INDEXER_URL, DOGEWALLET_RPC_USER, DOGEWALLET_RPC_PASS)
//  3. Network presets (lowest priority, regtest/testnet only)
//
// For mainnet, explicit configuration is required -- there is no preset.
func ResolveConfig(flags *RPCConfig, env map[string]string, network string) (*RPCConfig, error) {
	result := RPCConfig{Network: network}

	// Layer 1: start with preset defaults if available.
	if preset, ok := NetworkPresets[network]; ok {
		result = preset
		result.Network = network
	}

	// Layer 2: environment variables override preset defaults.
	if v := env[EnvIndexerURL]; v != "" {
		result.URL = v
	}
	if v := env[EnvRPCUser]; v != "" {
		result.User = v
	}
	if v := env[EnvRPCPass]; v != "" {
		result.Password = v
	}

	// Layer 3: CLI flags have highest priority.
	if flags != nil {
		if flags.URL != "" {
			result.URL = flags.URL
		}
		if flags.User != "" {
			result.User = flags.User
		}
		if flags.Password != "" {
			result.Password = flags.Password
		}
		if flags.Timeout > 0 {
			result.Timeout = flags.Timeout
		}
	}

	if result.URL == "" {
		return nil, fmt.Errorf("network: %s requires explicit RPC configuration (set --indexer-url, %s, or config file)", network, EnvIndexerURL)
	}

	return &result, nil
}

// IndexerConfig selects and configures an Indexer implementation.
type IndexerConfig struct {
	Kind              string
	URL               string
	User              string
	Password          string
	NetworkCode       string // REST only
	RequestsPerSecond float64
	Timeout           time.Duration
}

// NewIndexer builds the Indexer named by cfg.Kind. An empty kind is REST.
func NewIndexer(cfg IndexerConfig) (Indexer, error) {
	switch cfg.Kind {
	case "", KindREST:
		return NewRESTClient(RESTConfig{
			BaseURL:           cfg.URL,
			NetworkCode:       cfg.NetworkCode,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Timeout:           cfg.Timeout,
		}), nil
	case KindRPC:
		if cfg.URL == "" {
			return nil, fmt.Errorf("network: rpc indexer requires a URL")
		}
		return NewRPCClient(RPCConfig{
			URL:      cfg.URL,
			User:     cfg.User,
			Password: cfg.Password,
			Timeout:  cfg.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("network: unknown indexer kind %q", cfg.Kind)
	}
}
