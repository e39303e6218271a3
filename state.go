// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

// State is the lifecycle stage of a VM instance.
type State uint8

const (
	// Unknown is the state of a VM the host has not yet moved.
	Unknown State = iota

	// Bootstrapping VMs answer queries but refuse operations that change
	// state.
	Bootstrapping

	// NormalOp VMs accept every operation.
	NormalOp

	// Halted VMs refuse every call. A VM halts itself after detecting an
	// invariant violation; the host cannot move it out again.
	Halted
)

// AllowsWrites reports whether state-changing operations may run.
func (s State) AllowsWrites() bool {
	return s == NormalOp
}

// AllowsReads reports whether queries may run.
func (s State) AllowsReads() bool {
	return s != Halted
}

func (s State) String() string {
	switch s {
	case Bootstrapping:
		return "Bootstrapping"
	case NormalOp:
		return "NormalOp"
	case Halted:
		return "Halted"
	default:
		return "Unknown"
	}
}
