// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads the wallet's YAML configuration file and applies
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bitfsorg/libdoge-go/network"
	"github.com/bitfsorg/libdoge-go/tx"
)

const (
	// configFileName is the file name inside the data directory.
	configFileName = "config.yaml"

	// reservationsFileName is the bbolt database holding UTXO reservations.
	reservationsFileName = "reservations.db"
)

// Environment variables consulted by ApplyEnv, in addition to
// network.EnvIndexerURL, network.EnvRPCUser and network.EnvRPCPass.
const (
	EnvNetwork  = "DOGEWALLET_NETWORK"
	EnvLogLevel = "DOGEWALLET_LOG_LEVEL"
)

// Fee policy names.
const (
	FeeFixed = "fixed"
	FeeRate  = "rate"
)

// Config holds the wallet configuration.
type Config struct {
	Network     string            `yaml:"network"`
	DataDir     string            `yaml:"data_dir"`
	LogLevel    string            `yaml:"log_level"`
	Indexer     IndexerConfig     `yaml:"indexer"`
	Fee         FeeConfig         `yaml:"fee"`
	DustLimit   uint64            `yaml:"dust_limit"`
	Retry       RetryConfig       `yaml:"retry"`
	Reservation ReservationConfig `yaml:"reservation"`
	Events      EventsConfig      `yaml:"events"`
	Alias       AliasConfig       `yaml:"alias"`
}

// IndexerConfig selects the UTXO indexer and broadcast relay.
type IndexerConfig struct {
	Kind              string        `yaml:"kind"` // "rest" or "rpc"
	URL               string        `yaml:"url"`
	User              string        `yaml:"user,omitempty"`
	Password          string        `yaml:"password,omitempty"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout"`
}

// FeeConfig selects the fee policy. Amounts are koinu.
type FeeConfig struct {
	Policy string `yaml:"policy"` // "fixed" or "rate"
	Amount uint64 `yaml:"amount"`
	PerKB  uint64 `yaml:"per_kb"`
}

// RetryConfig bounds retries of transport failures.
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts"`
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxElapsed      time.Duration `yaml:"max_elapsed"`
}

// ReservationConfig controls the persistent UTXO reservation store.
type ReservationConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// EventsConfig enables NATS publication of broadcasts when NATSURL is set.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// AliasConfig controls OpenAlias resolution.
type AliasConfig struct {
	Upstream string `yaml:"upstream"`
	DNSSEC   bool   `yaml:"dnssec"`
}

// DefaultDataDir returns ~/.dogewallet, or .dogewallet in the working
// directory when the home directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dogewallet"
	}
	return filepath.Join(home, ".dogewallet")
}

// ConfigPath returns the config file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, configFileName)
}

// ReservationsPath returns the reservation database path inside dataDir.
func ReservationsPath(dataDir string) string {
	return filepath.Join(dataDir, reservationsFileName)
}

// DefaultConfig returns a mainnet configuration against the public
// SoChain-style explorer with the fixed 0.1 DOGE fee.
func DefaultConfig() Config {
	return Config{
		Network:  "mainnet",
		DataDir:  DefaultDataDir(),
		LogLevel: "info",
		Indexer: IndexerConfig{
			Kind:              network.KindREST,
			URL:               network.DefaultRESTURL,
			RequestsPerSecond: 5,
			Timeout:           30 * time.Second,
		},
		Fee: FeeConfig{
			Policy: FeeFixed,
			Amount: tx.DefaultFixedFee,
		},
		DustLimit: tx.DefaultDustLimit,
		Retry: RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 500 * time.Millisecond,
			MaxElapsed:      10 * time.Second,
		},
		Reservation: ReservationConfig{
			Enabled: true,
			TTL:     30 * time.Minute,
		},
		Alias: AliasConfig{DNSSEC: true},
	}
}

// LoadConfig reads the YAML file at path over DefaultConfig. Keys absent
// from the file keep their defaults; unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %w", ErrInvalidConfigFile, path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as YAML with owner-only permissions,
// creating parent directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg from env (typically built from os.Environ).
// Empty values are ignored.
func ApplyEnv(cfg *Config, env map[string]string) {
	if v := env[EnvNetwork]; v != "" {
		cfg.Network = v
	}
	if v := env[EnvLogLevel]; v != "" {
		cfg.LogLevel = v
	}
	if v := env[network.EnvIndexerURL]; v != "" {
		cfg.Indexer.URL = v
	}
	if v := env[network.EnvRPCUser]; v != "" {
		cfg.Indexer.User = v
	}
	if v := env[network.EnvRPCPass]; v != "" {
		cfg.Indexer.Password = v
	}
}

// Env returns the process environment variables ApplyEnv consults.
func Env() map[string]string {
	env := make(map[string]string)
	for _, k := range []string{EnvNetwork, EnvLogLevel, network.EnvIndexerURL, network.EnvRPCUser, network.EnvRPCPass} {
		if v, ok := os.LookupEnv(k); ok {
			env[k] = v
		}
	}
	return env
}

// FeePolicy returns the tx.FeePolicy the configuration selects.
func (c Config) FeePolicy() tx.FeePolicy {
	if c.Fee.Policy == FeeRate {
		return tx.RateFee{PerKB: c.Fee.PerKB}
	}
	return tx.FixedFee(c.Fee.Amount)
}

// RetryPolicy converts the retry section for network.WithRetry.
func (c Config) RetryPolicy() network.RetryConfig {
	return network.RetryConfig{
		MaxAttempts:     c.Retry.MaxAttempts,
		InitialInterval: c.Retry.InitialInterval,
		MaxElapsedTime:  c.Retry.MaxElapsed,
	}
}
