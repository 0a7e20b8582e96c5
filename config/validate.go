// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bitfsorg/libdoge-go/network"
	"github.com/bitfsorg/libdoge-go/wallet"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if _, err := wallet.GetNetwork(cfg.Network); err != nil {
		return ErrInvalidNetwork
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	if err := validateIndexer(cfg.Indexer); err != nil {
		return err
	}

	switch cfg.Fee.Policy {
	case FeeFixed:
	case FeeRate:
		if cfg.Fee.PerKB == 0 {
			return fmt.Errorf("%w: rate policy needs per_kb", ErrInvalidFee)
		}
	default:
		return fmt.Errorf("%w: unknown policy %q", ErrInvalidFee, cfg.Fee.Policy)
	}

	if cfg.Retry.MaxAttempts < 0 || cfg.Retry.InitialInterval < 0 || cfg.Retry.MaxElapsed < 0 {
		return ErrInvalidRetry
	}

	return nil
}

// validateIndexer checks the kind and that URL is an absolute http(s) URL.
func validateIndexer(ic IndexerConfig) error {
	if ic.Kind != network.KindREST && ic.Kind != network.KindRPC {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidIndexer, ic.Kind)
	}
	if ic.URL == "" {
		return fmt.Errorf("%w: empty url", ErrInvalidIndexer)
	}
	u, err := url.Parse(ic.URL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidIndexer, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q is not an http(s) url", ErrInvalidIndexer, ic.URL)
	}
	if ic.RequestsPerSecond < 0 || ic.Timeout < 0 {
		return fmt.Errorf("%w: negative limit", ErrInvalidIndexer)
	}
	return nil
}
