// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package executor applies contract operations to state. Each Executor works
// against a single invocation's view of the database and leaves committing or
// discarding that view to its caller.
package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/rollupvm/vms/rollupvm/ledger"
	"github.com/luxfi/rollupvm/vms/rollupvm/state"
	"github.com/luxfi/rollupvm/vms/rollupvm/txs"

	safemath "github.com/luxfi/rollupvm/utils/math"
)

// Executor runs operations for one invocation. Any error leaves writes made
// through State in place, so the caller must discard them.
type Executor struct {
	*Backend
	State *state.State
}

func New(backend *Backend, s *state.State) *Executor {
	return &Executor{
		Backend: backend,
		State:   s,
	}
}

// Result summarizes an execution pass.
type Result struct {
	Applied   []uint64
	Rejected  []uint64
	Remaining uint64
}

// Pruned returns the number of settlements removed by the pass.
func (r *Result) Pruned() int {
	return len(r.Applied) + len(r.Rejected)
}

func (e *Executor) now() uint64 {
	return ledger.UnixMilli(e.Clock)
}

// Initialize stores the contract configuration. It may run once.
func (e *Executor) Initialize(cfg *txs.ContractConfig) error {
	initialized, err := e.State.IsInitialized()
	if err != nil {
		return err
	}
	if initialized {
		return ErrAlreadyInitialized
	}
	if err := cfg.Verify(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := e.State.PutConfig(cfg); err != nil {
		return err
	}
	e.Log.Info("initialized contract",
		log.Stringer("validator", cfg.Validator),
		log.Stringer("judge", cfg.Judge),
		log.Uint64("timeToFinality", cfg.TimeToFinality),
		log.Uint64("settlementLimit", uint64(cfg.SettlementLimit)),
	)
	return nil
}

// Config returns the contract configuration.
func (e *Executor) Config() (*txs.ContractConfig, error) {
	cfg, err := e.State.GetConfig()
	return cfg, e.storageErr(err)
}

// Deposit collects amount from caller and credits it to the caller's balance.
func (e *Executor) Deposit(ctx context.Context, caller txs.Caller, amount uint64) error {
	if !caller.IsAccount() {
		return ErrContractSender
	}
	if _, err := e.Config(); err != nil {
		return err
	}

	balance, _, err := e.State.GetBalance(caller.Address)
	if err != nil {
		return e.storageErr(err)
	}
	credited, err := safemath.Add(balance, amount)
	if err != nil {
		return invariant("balance of %s overflows on deposit of %d", caller.Address, amount)
	}
	if err := e.Ledger.Receive(ctx, caller.Address, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrPaymentRejected, err)
	}
	if err := e.State.SetBalance(caller.Address, credited); err != nil {
		return err
	}
	e.Log.Debug("deposited",
		log.Stringer("address", caller.Address),
		log.Uint64("amount", amount),
		log.Uint64("balance", credited),
	)
	return nil
}

// Withdraw pays amount out to caller if the caller's balance covers it plus
// everything the caller sends in queued settlements. The debit is written
// before the payout, so a re-entrant call made by the ledger observes it.
func (e *Executor) Withdraw(ctx context.Context, caller txs.Caller, amount uint64) error {
	if !caller.IsAccount() {
		return ErrContractSender
	}
	if amount == 0 {
		return ErrZeroWithdrawal
	}
	if _, err := e.Config(); err != nil {
		return err
	}

	balance, ok, err := e.State.GetBalance(caller.Address)
	if err != nil {
		return e.storageErr(err)
	}
	if !ok {
		return fmt.Errorf("%w: %s has never deposited", ErrInsufficientFunds, caller.Address)
	}
	liabilities, err := e.State.Liabilities(caller.Address)
	if errors.Is(err, safemath.ErrOverflow) {
		return fmt.Errorf("%w: liabilities of %s overflow", ErrInsufficientFunds, caller.Address)
	}
	if err != nil {
		return e.storageErr(err)
	}
	required, err := safemath.Add(liabilities, amount)
	if err != nil || balance < required {
		return fmt.Errorf("%w: balance %d, liabilities %d, requested %d",
			ErrInsufficientFunds, balance, liabilities, amount)
	}

	if err := e.State.SetBalance(caller.Address, balance-amount); err != nil {
		return err
	}
	if err := e.Ledger.Transfer(ctx, caller.Address, amount); err != nil {
		switch {
		case errors.Is(err, ledger.ErrMissingAccount):
			return fmt.Errorf("%w: %w", ErrInvokeTransferMissingAccount, err)
		case errors.Is(err, ledger.ErrAmountTooLarge):
			return fmt.Errorf("%w: %w", ErrInvokeTransferInsufficientFunds, err)
		default:
			return fmt.Errorf("payout to %s failed: %w", caller.Address, err)
		}
	}
	e.Log.Debug("withdrew",
		log.Stringer("address", caller.Address),
		log.Uint64("amount", amount),
		log.Uint64("liabilities", liabilities),
	)
	return nil
}

// AddSettlement appends transfer to the queue and returns the id it was
// assigned. Solvency of the senders is only checked at execution.
func (e *Executor) AddSettlement(caller txs.Caller, transfer *txs.Transfer) (uint64, error) {
	cfg, err := e.admitSettlement(caller)
	if err != nil {
		return 0, err
	}
	if err := transfer.Verify(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidTransfer, err)
	}

	id, err := e.State.NextID()
	if err != nil {
		return 0, e.storageErr(err)
	}
	nextID, err := safemath.Add(id, 1)
	if err != nil {
		return 0, ErrCounterOverflow
	}
	now := e.now()
	finality, err := safemath.Add(now, cfg.TimeToFinality)
	if err != nil {
		return 0, fmt.Errorf("%w: now %d, window %d", ErrTimeOverflow, now, cfg.TimeToFinality)
	}

	settlement := &txs.Settlement{
		ID:           id,
		Transfer:     *transfer,
		FinalityTime: finality,
	}
	if err := e.State.AddSettlement(settlement); err != nil {
		if errors.Is(err, state.ErrDuplicateID) {
			return 0, invariant("allocated id %d is already queued", id)
		}
		return 0, e.storageErr(err)
	}
	if err := e.State.SetNextID(nextID); err != nil {
		return 0, err
	}
	e.Log.Debug("added settlement",
		log.Uint64("id", id),
		log.Uint64("finalityTime", finality),
		log.Int("senders", len(transfer.SendTransfers)),
		log.Int("receivers", len(transfer.ReceiveTransfers)),
	)
	return id, nil
}

// admitSettlement checks that caller is the validator account and that the
// queue has room, before anything about the transfer itself is looked at.
func (e *Executor) admitSettlement(caller txs.Caller) (*txs.ContractConfig, error) {
	cfg, err := e.Config()
	if err != nil {
		return nil, err
	}
	if !caller.IsAccount() || caller.Address != cfg.Validator {
		return nil, ErrNotAValidator
	}
	length, err := e.State.QueueLen()
	if err != nil {
		return nil, e.storageErr(err)
	}
	if length >= uint64(cfg.SettlementLimit) {
		return nil, fmt.Errorf("%w: %d queued", ErrSettlementQueueFull, length)
	}
	return cfg, nil
}

// Veto removes the settlement with id if its dispute window is still open.
// It reports whether a settlement was removed. An unknown or already final id
// is not an error.
func (e *Executor) Veto(caller txs.Caller, id uint64) (bool, error) {
	cfg, err := e.Config()
	if err != nil {
		return false, err
	}
	if !caller.IsAccount() || caller.Address != cfg.Judge {
		return false, ErrNotAJudge
	}
	settlement, err := e.State.GetSettlement(id)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, e.storageErr(err)
	}
	if settlement.IsFinal(e.now()) {
		return false, nil
	}
	if err := e.State.DeleteSettlement(id); err != nil {
		return false, e.storageErr(err)
	}
	e.Log.Debug("vetoed settlement", log.Uint64("id", id))
	return true, nil
}

// Execute walks the queue in insertion order and resolves every settlement
// whose dispute window has closed: valid ones are applied, invalid ones are
// dropped without effect. Each settlement is checked against the balances
// left by the ones before it.
func (e *Executor) Execute() (*Result, error) {
	if _, err := e.Config(); err != nil {
		return nil, err
	}
	settlements, err := e.State.Settlements()
	if err != nil {
		return nil, e.storageErr(err)
	}

	var (
		now    = e.now()
		result = &Result{}
	)
	for _, settlement := range settlements {
		if !settlement.IsFinal(now) {
			result.Remaining++
			continue
		}
		valid, err := e.isValid(&settlement.Transfer)
		if err != nil {
			return nil, err
		}
		if valid {
			if err := e.apply(&settlement.Transfer); err != nil {
				return nil, err
			}
			result.Applied = append(result.Applied, settlement.ID)
		} else {
			result.Rejected = append(result.Rejected, settlement.ID)
		}
		if err := e.State.DeleteSettlement(settlement.ID); err != nil {
			return nil, e.storageErr(err)
		}
	}
	if result.Pruned() > 0 {
		e.Log.Debug("executed settlements",
			log.Int("applied", len(result.Applied)),
			log.Int("rejected", len(result.Rejected)),
			log.Uint64("remaining", result.Remaining),
		)
	}
	return result, nil
}

// isValid reports whether every sender can cover what it sends out of its
// current balance plus what it receives in the same transfer.
func (e *Executor) isValid(transfer *txs.Transfer) (bool, error) {
	for _, sender := range transfer.Senders() {
		balance, _, err := e.State.GetBalance(sender)
		if err != nil {
			return false, e.storageErr(err)
		}
		incoming, err := transfer.Incoming(sender)
		if err != nil {
			return false, invariant("incoming of %s overflows in a verified transfer", sender)
		}
		outgoing, err := transfer.Outgoing(sender)
		if err != nil {
			return false, invariant("outgoing of %s overflows in a verified transfer", sender)
		}
		available, err := safemath.Add(balance, incoming)
		if err != nil {
			// More than can be represented is certainly enough.
			continue
		}
		if available < outgoing {
			return false, nil
		}
	}
	return true, nil
}

// apply moves every participant to balance + incoming - outgoing. This is the
// outcome of crediting all receivers before debiting all senders, computed
// per participant so that no intermediate sum exceeds the final balances.
func (e *Executor) apply(transfer *txs.Transfer) error {
	for _, addr := range participants(transfer) {
		balance, _, err := e.State.GetBalance(addr)
		if err != nil {
			return e.storageErr(err)
		}
		incoming, err := transfer.Incoming(addr)
		if err != nil {
			return invariant("incoming of %s overflows in a verified transfer", addr)
		}
		outgoing, err := transfer.Outgoing(addr)
		if err != nil {
			return invariant("outgoing of %s overflows in a verified transfer", addr)
		}

		var updated uint64
		if incoming >= outgoing {
			updated, err = safemath.Add(balance, incoming-outgoing)
		} else {
			updated, err = safemath.Sub(balance, outgoing-incoming)
		}
		if err != nil {
			return invariant("balance of %s leaves range applying a valid transfer: %v", addr, err)
		}
		if err := e.State.SetBalance(addr, updated); err != nil {
			return err
		}
	}
	return nil
}

// participants lists receivers then senders, each once.
func participants(transfer *txs.Transfer) []ids.ShortID {
	var (
		seen  = make(map[ids.ShortID]struct{})
		addrs []ids.ShortID
	)
	add := func(entries []txs.AddressAmount) {
		for _, entry := range entries {
			if _, ok := seen[entry.Address]; ok {
				continue
			}
			seen[entry.Address] = struct{}{}
			addrs = append(addrs, entry.Address)
		}
	}
	add(transfer.ReceiveTransfers)
	add(transfer.SendTransfers)
	return addrs
}

// SettledBalanceOf returns what addr could withdraw right now: its balance
// minus everything it sends in queued settlements, floored at zero.
func (e *Executor) SettledBalanceOf(addr ids.ShortID) (uint64, error) {
	if _, err := e.Config(); err != nil {
		return 0, err
	}
	balance, _, err := e.State.GetBalance(addr)
	if err != nil {
		return 0, e.storageErr(err)
	}
	liabilities, err := e.State.Liabilities(addr)
	if errors.Is(err, safemath.ErrOverflow) {
		return 0, nil
	}
	if err != nil {
		return 0, e.storageErr(err)
	}
	return safemath.SaturatingSub(balance, liabilities), nil
}

// BalanceOf returns the raw balance sheet entry of addr, 0 if absent.
func (e *Executor) BalanceOf(addr ids.ShortID) (uint64, error) {
	if _, err := e.Config(); err != nil {
		return 0, err
	}
	balance, _, err := e.State.GetBalance(addr)
	return balance, e.storageErr(err)
}

// GetSettlement returns the queued settlement with id, if any.
func (e *Executor) GetSettlement(id uint64) (*txs.Settlement, bool, error) {
	if _, err := e.Config(); err != nil {
		return nil, false, err
	}
	settlement, err := e.State.GetSettlement(id)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, e.storageErr(err)
	default:
		return settlement, true, nil
	}
}

// PendingSettlements returns the queue in insertion order.
func (e *Executor) PendingSettlements() ([]*txs.Settlement, error) {
	if _, err := e.Config(); err != nil {
		return nil, err
	}
	settlements, err := e.State.Settlements()
	return settlements, e.storageErr(err)
}

// storageErr escalates corrupted records to invariant violations.
func (*Executor) storageErr(err error) error {
	if errors.Is(err, state.ErrCorrupted) {
		return fmt.Errorf("%w: %w", ErrInvariant, err)
	}
	return err
}
