// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"errors"

	"github.com/luxfi/ids"

	safemath "github.com/luxfi/rollupvm/utils/math"
)

var ErrUnbalanced = errors.New("send total differs from receive total")

// AddressAmount pairs a participant with an amount in the smallest unit.
type AddressAmount struct {
	Address ids.ShortID `serialize:"true" json:"address"`
	Amount  uint64      `serialize:"true" json:"amount"`
}

// Transfer is a net settlement between participants. Entries may repeat a
// participant and may carry zero amounts.
type Transfer struct {
	SendTransfers    []AddressAmount `serialize:"true" json:"sendTransfers"`
	ReceiveTransfers []AddressAmount `serialize:"true" json:"receiveTransfers"`
	MetaData         []byte          `serialize:"true" json:"metaData"`
}

// Totals returns the sum of the send entries and the sum of the receive
// entries.
func (t *Transfer) Totals() (sent uint64, received uint64, err error) {
	sent, err = total(t.SendTransfers)
	if err != nil {
		return 0, 0, err
	}
	received, err = total(t.ReceiveTransfers)
	if err != nil {
		return 0, 0, err
	}
	return sent, received, nil
}

// Verify returns nil iff both sides sum without overflow to the same value.
func (t *Transfer) Verify() error {
	sent, received, err := t.Totals()
	if err != nil {
		return err
	}
	if sent != received {
		return ErrUnbalanced
	}
	return nil
}

// Outgoing returns the amount addr sends in this transfer. Verify bounds it
// by the send total, so the sum cannot overflow on a verified transfer.
func (t *Transfer) Outgoing(addr ids.ShortID) (uint64, error) {
	return totalFor(t.SendTransfers, addr)
}

// Incoming returns the amount addr receives in this transfer.
func (t *Transfer) Incoming(addr ids.ShortID) (uint64, error) {
	return totalFor(t.ReceiveTransfers, addr)
}

// Senders returns each distinct sender once, in order of first appearance.
func (t *Transfer) Senders() []ids.ShortID {
	seen := make(map[ids.ShortID]struct{}, len(t.SendTransfers))
	senders := make([]ids.ShortID, 0, len(t.SendTransfers))
	for _, s := range t.SendTransfers {
		if _, ok := seen[s.Address]; ok {
			continue
		}
		seen[s.Address] = struct{}{}
		senders = append(senders, s.Address)
	}
	return senders
}

func total(entries []AddressAmount) (uint64, error) {
	var sum uint64
	for _, e := range entries {
		var err error
		sum, err = safemath.Add(sum, e.Amount)
		if err != nil {
			return 0, err
		}
	}
	return sum, nil
}

func totalFor(entries []AddressAmount, addr ids.ShortID) (uint64, error) {
	var sum uint64
	for _, e := range entries {
		if e.Address != addr {
			continue
		}
		var err error
		sum, err = safemath.Add(sum, e.Amount)
		if err != nil {
			return 0, err
		}
	}
	return sum, nil
}
