// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger describes the host ledger the contract settles against: the
// clock it reads and the payment primitive it pays out with.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/luxfi/ids"

	"github.com/luxfi/rollupvm/utils/timer/mockable"
)

var (
	// ErrMissingAccount is returned when the recipient of a transfer does
	// not exist on the ledger.
	ErrMissingAccount = errors.New("missing account")
	// ErrAmountTooLarge is returned when the payer cannot cover a transfer.
	ErrAmountTooLarge = errors.New("amount too large")

	_ Clock = (*mockable.Clock)(nil)
)

// Clock returns the host's notion of the current time.
type Clock interface {
	Time() time.Time
}

// UnixMilli returns the clock reading as unix milliseconds. Times before the
// epoch read as zero.
func UnixMilli(c Clock) uint64 {
	return uint64(max(c.Time().UnixMilli(), 0))
}

// Ledger moves native value between the contract and participants.
//
//go:generate go run go.uber.org/mock/mockgen -package=${GOPACKAGE}mock -destination=${GOPACKAGE}mock/ledger.go -mock_names=Ledger=Ledger . Ledger
type Ledger interface {
	// Receive collects a payment of amount attached by from.
	Receive(ctx context.Context, from ids.ShortID, amount uint64) error
	// Transfer irreversibly pays amount from the contract to to.
	Transfer(ctx context.Context, to ids.ShortID, amount uint64) error
}
