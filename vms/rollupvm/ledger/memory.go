// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/luxfi/ids"

	safemath "github.com/luxfi/rollupvm/utils/math"
)

var _ Ledger = (*Memory)(nil)

// Memory is an in-process ledger holding participant wallets and the
// contract's escrow. It is safe for concurrent use.
type Memory struct {
	lock    sync.Mutex
	escrow  uint64
	wallets map[ids.ShortID]uint64

	// OnTransfer, if set, runs after every successful Transfer with the lock
	// released. It lets tests observe or re-enter the contract mid-payout.
	OnTransfer func(ctx context.Context, to ids.ShortID, amount uint64)
}

func NewMemory() *Memory {
	return &Memory{
		wallets: make(map[ids.ShortID]uint64),
	}
}

// Fund creates the wallet if needed and credits it.
func (m *Memory) Fund(addr ids.ShortID, amount uint64) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	balance, err := safemath.Add(m.wallets[addr], amount)
	if err != nil {
		return fmt.Errorf("couldn't fund %s: %w", addr, err)
	}
	m.wallets[addr] = balance
	return nil
}

// Balance returns the wallet balance of addr and whether the wallet exists.
func (m *Memory) Balance(addr ids.ShortID) (uint64, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	balance, ok := m.wallets[addr]
	return balance, ok
}

// Escrow returns the value currently held by the contract.
func (m *Memory) Escrow() uint64 {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.escrow
}

func (m *Memory) Receive(_ context.Context, from ids.ShortID, amount uint64) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	balance, ok := m.wallets[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingAccount, from)
	}
	if balance < amount {
		return fmt.Errorf("%w: %s holds %d, attached %d", ErrAmountTooLarge, from, balance, amount)
	}
	escrow, err := safemath.Add(m.escrow, amount)
	if err != nil {
		return fmt.Errorf("%w: escrow would overflow", ErrAmountTooLarge)
	}
	m.wallets[from] = balance - amount
	m.escrow = escrow
	return nil
}

func (m *Memory) Transfer(ctx context.Context, to ids.ShortID, amount uint64) error {
	if err := m.transfer(to, amount); err != nil {
		return err
	}
	if m.OnTransfer != nil {
		m.OnTransfer(ctx, to, amount)
	}
	return nil
}

func (m *Memory) transfer(to ids.ShortID, amount uint64) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	balance, ok := m.wallets[to]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingAccount, to)
	}
	if m.escrow < amount {
		return fmt.Errorf("%w: escrow holds %d, requested %d", ErrAmountTooLarge, m.escrow, amount)
	}
	credited, err := safemath.Add(balance, amount)
	if err != nil {
		return fmt.Errorf("%w: wallet would overflow", ErrAmountTooLarge)
	}
	m.escrow -= amount
	m.wallets[to] = credited
	return nil
}
