// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vm defines the lifecycle shared by rollup virtual machines.
package vm

import (
	"context"
	"net/http"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
)

// Factory creates new VM instances.
type Factory interface {
	// New creates an uninitialized VM that logs to the given logger.
	New(log.Logger) (VM, error)
}

// VM defines the interface for a virtual machine
type VM interface {
	// Initialize initializes the VM with the given configuration
	Initialize(context.Context, *Config) error

	// Shutdown cleanly stops the VM
	Shutdown(context.Context) error

	// Version returns the VM version
	Version(context.Context) (string, error)

	// SetState transitions the VM to the specified state
	SetState(context.Context, State) error

	// CreateHandlers returns the HTTP handlers the VM serves, keyed by path
	// extension.
	CreateHandlers(context.Context) (map[string]http.Handler, error)
}

// Config defines VM configuration
type Config struct {
	ChainID   ids.ID
	NetworkID uint32

	// DB is owned by the VM until Shutdown returns.
	DB database.Database

	// Genesis is read only if DB holds no state yet.
	Genesis []byte
	// Config is the VM specific runtime configuration.
	Config []byte

	// Metrics may be nil, in which case nothing is registered.
	Metrics metric.Registerer
}
