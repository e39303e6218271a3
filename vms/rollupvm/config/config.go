// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidNamespace = errors.New("invalid namespace")
	ErrInvalidInterval  = errors.New("invalid execute interval")
	ErrInvalidPageSize  = errors.New("invalid max pending query")
)

// Config holds the runtime configuration of the rollup VM. It does not affect
// contract semantics, which are fixed by the genesis config.
type Config struct {
	// API settings
	APINamespace  string `json:"apiNamespace"`
	ListenAddress string `json:"listenAddress"` // Used by the standalone server

	// MetricsNamespace prefixes every exported metric.
	MetricsNamespace string `json:"metricsNamespace"`

	// ExecuteInterval is how often the VM executes due settlements on its
	// own. Zero disables the keeper.
	ExecuteInterval time.Duration `json:"executeInterval"`

	// MaxPendingQuery caps the settlements returned by one pending query.
	MaxPendingQuery int `json:"maxPendingQuery"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() Config {
	return Config{
		APINamespace:     "rollup",
		ListenAddress:    "127.0.0.1:9650",
		MetricsNamespace: "rollupvm",
		ExecuteInterval:  time.Second,
		MaxPendingQuery:  1024,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.APINamespace == "" {
		return fmt.Errorf("%w: api namespace is empty", ErrInvalidNamespace)
	}
	if c.ExecuteInterval < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, c.ExecuteInterval)
	}
	if c.MaxPendingQuery <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, c.MaxPendingQuery)
	}
	return nil
}

// ParseConfig overlays the JSON in b onto the defaults. Empty input yields the
// defaults.
func ParseConfig(b []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(b) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, cfg.Validate()
}
