// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/bitfsorg/libdoge-go/network"
	"github.com/bitfsorg/libdoge-go/tx"
)

// ---------------------------------------------------------------------------
// DefaultConfig tests
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Network", cfg.Network, "mainnet"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"IndexerKind", cfg.Indexer.Kind, network.KindREST},
		{"IndexerURL", cfg.Indexer.URL, network.DefaultRESTURL},
		{"FeePolicy", cfg.Fee.Policy, FeeFixed},
		{"FeeAmount", cfg.Fee.Amount, tx.DefaultFixedFee},
		{"DustLimit", cfg.DustLimit, tx.DefaultDustLimit},
		{"ReservationTTL", cfg.Reservation.TTL, 30 * time.Minute},
		{"DNSSEC", cfg.Alias.DNSSEC, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}

	if cfg.DataDir == "" {
		t.Error("DataDir should not be empty")
	}
}

// ---------------------------------------------------------------------------
// SaveConfig / LoadConfig round-trip tests
// ---------------------------------------------------------------------------

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	original := DefaultConfig()
	original.DataDir = "/tmp/test-doge"
	original.Network = "testnet"
	original.LogLevel = "debug"
	original.Indexer = IndexerConfig{
		Kind:     network.KindRPC,
		URL:      "http://127.0.0.1:44555",
		User:     "doge",
		Password: "secret",
		Timeout:  5 * time.Second,
	}
	original.Fee = FeeConfig{Policy: FeeRate, PerKB: 1_000_000}
	original.Events = EventsConfig{NATSURL: "nats://127.0.0.1:4222", Subject: "launchpad.tx"}

	if err := SaveConfig(path, original); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"DataDir", loaded.DataDir, original.DataDir},
		{"Network", loaded.Network, original.Network},
		{"LogLevel", loaded.LogLevel, original.LogLevel},
		{"Indexer", loaded.Indexer, original.Indexer},
		{"Fee", loaded.Fee, original.Fee},
		{"Retry", loaded.Retry, original.Retry},
		{"Reservation", loaded.Reservation, original.Reservation},
		{"Events", loaded.Events, original.Events},
		{"Alias", loaded.Alias, original.Alias},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}
}

func TestSaveConfigCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config.yaml")

	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatalf("SaveConfig should create parent dirs: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Config file not created: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

// ---------------------------------------------------------------------------
// LoadConfig error and partial-file tests
// ---------------------------------------------------------------------------

func TestLoadConfigNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig nonexistent: got %v, want ErrConfigNotFound", err)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("network: [unterminated\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(path)
	if !errors.Is(err, ErrInvalidConfigFile) {
		t.Errorf("LoadConfig bad yaml: got %v, want ErrInvalidConfigFile", err)
	}
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `# testnet wallet
network: testnet
indexer:
  timeout: 3s
futurekey: ignored
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Network != "testnet" {
		t.Errorf("Network = %q, want %q", cfg.Network, "testnet")
	}
	if cfg.Indexer.Timeout != 3*time.Second {
		t.Errorf("Indexer.Timeout = %v, want 3s", cfg.Indexer.Timeout)
	}
	if cfg.Indexer.URL != network.DefaultRESTURL {
		t.Errorf("Indexer.URL = %q, want default", cfg.Indexer.URL)
	}
	if cfg.Fee.Amount != tx.DefaultFixedFee {
		t.Errorf("Fee.Amount = %d, want default", cfg.Fee.Amount)
	}
}

// ---------------------------------------------------------------------------
// ValidateConfig tests
// ---------------------------------------------------------------------------

func TestValidateConfigDefaults(t *testing.T) {
	if err := ValidateConfig(DefaultConfig()); err != nil {
		t.Errorf("ValidateConfig(DefaultConfig()) = %v, want nil", err)
	}
}

func TestValidateConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"empty_datadir", func(c *Config) { c.DataDir = "" }, ErrEmptyDataDir},
		{"bad_network", func(c *Config) { c.Network = "devnet" }, ErrInvalidNetwork},
		{"bad_loglevel", func(c *Config) { c.LogLevel = "verbose" }, ErrInvalidLogLevel},
		{"bad_indexer_kind", func(c *Config) { c.Indexer.Kind = "electrum" }, ErrInvalidIndexer},
		{"empty_indexer_url", func(c *Config) { c.Indexer.URL = "" }, ErrInvalidIndexer},
		{"relative_indexer_url", func(c *Config) { c.Indexer.URL = "sochain.com/api" }, ErrInvalidIndexer},
		{"negative_rate", func(c *Config) { c.Indexer.RequestsPerSecond = -1 }, ErrInvalidIndexer},
		{"bad_fee_policy", func(c *Config) { c.Fee.Policy = "auction" }, ErrInvalidFee},
		{"rate_without_per_kb", func(c *Config) { c.Fee = FeeConfig{Policy: FeeRate} }, ErrInvalidFee},
		{"negative_retry", func(c *Config) { c.Retry.MaxAttempts = -1 }, ErrInvalidRetry},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := ValidateConfig(cfg)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateConfig: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateConfigValidNetworks(t *testing.T) {
	for _, name := range []string{"mainnet", "testnet", "regtest"} {
		cfg := DefaultConfig()
		cfg.Network = name
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("ValidateConfig with network %q: %v", name, err)
		}
	}
}

func TestValidateConfigValidLogLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "INFO"} {
		cfg := DefaultConfig()
		cfg.LogLevel = level
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("ValidateConfig with log level %q: %v", level, err)
		}
	}
}

// ---------------------------------------------------------------------------
// Environment overrides
// ---------------------------------------------------------------------------

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	ApplyEnv(&cfg, map[string]string{
		EnvNetwork:            "regtest",
		EnvLogLevel:           "debug",
		network.EnvIndexerURL: "http://127.0.0.1:18332",
		network.EnvRPCUser:    "alice",
		network.EnvRPCPass:    "",
	})

	if cfg.Network != "regtest" {
		t.Errorf("Network = %q", cfg.Network)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.Indexer.URL != "http://127.0.0.1:18332" {
		t.Errorf("Indexer.URL = %q", cfg.Indexer.URL)
	}
	if cfg.Indexer.User != "alice" {
		t.Errorf("Indexer.User = %q", cfg.Indexer.User)
	}
	if cfg.Indexer.Password != "" {
		t.Errorf("empty env value should not override, got %q", cfg.Indexer.Password)
	}
}

func TestEnv(t *testing.T) {
	t.Setenv(EnvNetwork, "testnet")
	env := Env()
	if env[EnvNetwork] != "testnet" {
		t.Errorf("Env()[%s] = %q", EnvNetwork, env[EnvNetwork])
	}
}

// ---------------------------------------------------------------------------
// Derived settings
// ---------------------------------------------------------------------------

func TestFeePolicy(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.FeePolicy().Fee(1, 2); got != tx.DefaultFixedFee {
		t.Errorf("fixed fee = %d", got)
	}

	cfg.Fee = FeeConfig{Policy: FeeRate, PerKB: 1_000_000}
	if got := cfg.FeePolicy().Fee(7, 2); got != 2_000_000 {
		t.Errorf("rate fee for 7 inputs = %d, want 2000000", got)
	}
}

func TestRetryPolicy(t *testing.T) {
	rc := DefaultConfig().RetryPolicy()
	if rc.MaxAttempts != 3 || rc.InitialInterval != 500*time.Millisecond || rc.MaxElapsedTime != 10*time.Second {
		t.Errorf("RetryPolicy = %+v", rc)
	}
}

func TestPaths(t *testing.T) {
	if got, want := ConfigPath("/home/user/.dogewallet"), filepath.Join("/home/user/.dogewallet", "config.yaml"); got != want {
		t.Errorf("ConfigPath = %q, want %q", got, want)
	}
	if got := ReservationsPath("/d"); !strings.HasSuffix(got, "reservations.db") {
		t.Errorf("ReservationsPath = %q", got)
	}
	if dir := DefaultDataDir(); !strings.HasSuffix(dir, ".dogewallet") {
		t.Errorf("DefaultDataDir() = %q, want suffix %q", dir, ".dogewallet")
	}
}
