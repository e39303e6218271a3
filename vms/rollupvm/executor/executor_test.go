// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/rollupvm/utils/timer/mockable"
	"github.com/luxfi/rollupvm/vms/rollupvm/ledger"
	"github.com/luxfi/rollupvm/vms/rollupvm/state"
	"github.com/luxfi/rollupvm/vms/rollupvm/txs"
)

type harness struct {
	t         *testing.T
	base      database.Database
	clock     *mockable.Clock
	ledger    *ledger.Memory
	backend   *Backend
	validator txs.Caller
	judge     txs.Caller
}

func newHarness(t *testing.T, window time.Duration, limit uint32) *harness {
	h := &harness{
		t:         t,
		base:      memdb.New(),
		clock:     &mockable.Clock{},
		ledger:    ledger.NewMemory(),
		validator: txs.AccountCaller(ids.GenerateTestShortID()),
		judge:     txs.AccountCaller(ids.GenerateTestShortID()),
	}
	h.clock.Set(time.UnixMilli(0))
	h.backend = &Backend{
		Clock:  h.clock,
		Ledger: h.ledger,
		Log:    log.NewNoOpLogger(),
	}
	require.NoError(t, h.run(func(e *Executor) error {
		return e.Initialize(&txs.ContractConfig{
			Validator:       h.validator.Address,
			Judge:           h.judge.Address,
			TimeToFinality:  uint64(window.Milliseconds()),
			SettlementLimit: limit,
		})
	}))
	return h
}

// run executes f as one invocation, committing its writes only on success.
func (h *harness) run(f func(*Executor) error) error {
	vdb := versiondb.New(h.base)
	if err := f(New(h.backend, state.New(vdb))); err != nil {
		vdb.Abort()
		return err
	}
	return vdb.Commit()
}

func (h *harness) at(ms uint64) {
	h.clock.Set(time.UnixMilli(int64(ms)))
}

func (h *harness) account(deposit uint64) ids.ShortID {
	addr := ids.GenerateTestShortID()
	require.NoError(h.t, h.ledger.Fund(addr, deposit))
	if deposit > 0 {
		require.NoError(h.t, h.deposit(addr, deposit))
	}
	return addr
}

func (h *harness) deposit(addr ids.ShortID, amount uint64) error {
	return h.run(func(e *Executor) error {
		return e.Deposit(context.Background(), txs.AccountCaller(addr), amount)
	})
}

func (h *harness) withdraw(addr ids.ShortID, amount uint64) error {
	return h.run(func(e *Executor) error {
		return e.Withdraw(context.Background(), txs.AccountCaller(addr), amount)
	})
}

func (h *harness) add(transfer *txs.Transfer) (uint64, error) {
	var id uint64
	err := h.run(func(e *Executor) error {
		var err error
		id, err = e.AddSettlement(h.validator, transfer)
		return err
	})
	return id, err
}

func (h *harness) veto(id uint64) (bool, error) {
	var vetoed bool
	err := h.run(func(e *Executor) error {
		var err error
		vetoed, err = e.Veto(h.judge, id)
		return err
	})
	return vetoed, err
}

func (h *harness) execute() *Result {
	var result *Result
	require.NoError(h.t, h.run(func(e *Executor) error {
		var err error
		result, err = e.Execute()
		return err
	}))
	return result
}

func (h *harness) balance(addr ids.ShortID) uint64 {
	var balance uint64
	require.NoError(h.t, h.run(func(e *Executor) error {
		var err error
		balance, err = e.BalanceOf(addr)
		return err
	}))
	return balance
}

func (h *harness) settled(addr ids.ShortID) uint64 {
	var balance uint64
	require.NoError(h.t, h.run(func(e *Executor) error {
		var err error
		balance, err = e.SettledBalanceOf(addr)
		return err
	}))
	return balance
}

func (h *harness) pending() []*txs.Settlement {
	var settlements []*txs.Settlement
	require.NoError(h.t, h.run(func(e *Executor) error {
		var err error
		settlements, err = e.PendingSettlements()
		return err
	}))
	return settlements
}

func transfer(sends, receives []txs.AddressAmount) *txs.Transfer {
	return &txs.Transfer{
		SendTransfers:    sends,
		ReceiveTransfers: receives,
	}
}

func aa(addr ids.ShortID, amount uint64) txs.AddressAmount {
	return txs.AddressAmount{Address: addr, Amount: amount}
}

func TestInitialize(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, time.Second, 4)
	err := h.run(func(e *Executor) error {
		return e.Initialize(&txs.ContractConfig{
			Validator:       ids.GenerateTestShortID(),
			Judge:           ids.GenerateTestShortID(),
			SettlementLimit: 1,
		})
	})
	require.ErrorIs(err, ErrAlreadyInitialized)

	var cfg *txs.ContractConfig
	require.NoError(h.run(func(e *Executor) error {
		var err error
		cfg, err = e.Config()
		return err
	}))
	require.Equal(h.validator.Address, cfg.Validator)
	require.Equal(h.judge.Address, cfg.Judge)
	require.Equal(uint64(1000), cfg.TimeToFinality)
	require.Equal(uint32(4), cfg.SettlementLimit)
}

func TestInitializeRejectsInvalidConfig(t *testing.T) {
	require := require.New(t)

	backend := &Backend{
		Clock:  &mockable.Clock{},
		Ledger: ledger.NewMemory(),
		Log:    log.NewNoOpLogger(),
	}
	e := New(backend, state.New(memdb.New()))
	err := e.Initialize(&txs.ContractConfig{Judge: ids.GenerateTestShortID(), SettlementLimit: 1})
	require.ErrorIs(err, ErrInvalidConfig)
	require.ErrorIs(err, txs.ErrMissingValidator)
}

func TestOperationsRequireInitialization(t *testing.T) {
	require := require.New(t)

	var (
		ctx     = context.Background()
		caller  = txs.AccountCaller(ids.GenerateTestShortID())
		backend = &Backend{
			Clock:  &mockable.Clock{},
			Ledger: ledger.NewMemory(),
			Log:    log.NewNoOpLogger(),
		}
		e = New(backend, state.New(memdb.New()))
	)
	require.ErrorIs(e.Deposit(ctx, caller, 1), ErrNotInitialized)
	require.ErrorIs(e.Withdraw(ctx, caller, 1), ErrNotInitialized)
	_, err := e.AddSettlement(caller, &txs.Transfer{})
	require.ErrorIs(err, ErrNotInitialized)
	_, err = e.Veto(caller, 0)
	require.ErrorIs(err, ErrNotInitialized)
	_, err = e.Execute()
	require.ErrorIs(err, ErrNotInitialized)
	_, err = e.SettledBalanceOf(caller.Address)
	require.ErrorIs(err, ErrNotInitialized)
	_, _, err = e.GetSettlement(0)
	require.ErrorIs(err, ErrNotInitialized)
}

func TestDeposit(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, time.Second, 4)
	alice := h.account(0)
	require.NoError(h.ledger.Fund(alice, 30))

	require.NoError(h.deposit(alice, 0))
	require.Zero(h.balance(alice))
	require.NoError(h.deposit(alice, 10))
	require.NoError(h.deposit(alice, 20))
	require.Equal(uint64(30), h.balance(alice))
	require.Equal(uint64(30), h.ledger.Escrow())

	err := h.run(func(e *Executor) error {
		return e.Deposit(context.Background(), txs.ContractCaller(alice), 1)
	})
	require.ErrorIs(err, ErrContractSender)

	err = h.deposit(alice, 1)
	require.ErrorIs(err, ErrPaymentRejected)
	require.ErrorIs(err, ledger.ErrAmountTooLarge)
	require.Equal(uint64(30), h.balance(alice))
}

func TestWithdraw(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, time.Second, 4)
	var (
		alice   = h.account(100)
		bob     = h.account(100)
		charlie = ids.GenerateTestShortID()
	)
	_, err := h.add(transfer(
		[]txs.AddressAmount{aa(alice, 30), aa(alice, 10)},
		[]txs.AddressAmount{aa(bob, 40)},
	))
	require.NoError(err)

	err = h.run(func(e *Executor) error {
		return e.Withdraw(context.Background(), txs.ContractCaller(alice), 1)
	})
	require.ErrorIs(err, ErrContractSender)
	require.ErrorIs(h.withdraw(alice, 0), ErrZeroWithdrawal)
	require.ErrorIs(h.withdraw(charlie, 1), ErrInsufficientFunds)
	require.ErrorIs(h.withdraw(alice, 61), ErrInsufficientFunds)
	require.ErrorIs(h.withdraw(alice, math.MaxUint64), ErrInsufficientFunds)

	// Pending incoming amounts are not withdrawable.
	require.Equal(uint64(100), h.settled(bob))
	require.ErrorIs(h.withdraw(bob, 101), ErrInsufficientFunds)

	require.Equal(uint64(60), h.settled(alice))
	require.NoError(h.withdraw(alice, 60))
	require.Equal(uint64(40), h.balance(alice))
	require.Zero(h.settled(alice))

	wallet, _ := h.ledger.Balance(alice)
	require.Equal(uint64(60), wallet)
	require.Equal(uint64(140), h.ledger.Escrow())
}

func TestWithdrawTransferFailure(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, time.Second, 4)
	alice := h.account(100)
	bob := ids.GenerateTestShortID()

	// A balance sheet entry whose wallet is unknown to the ledger.
	require.NoError(h.run(func(e *Executor) error {
		return e.State.SetBalance(bob, 10)
	}))
	err := h.withdraw(bob, 10)
	require.ErrorIs(err, ErrInvokeTransferMissingAccount)
	require.Equal(uint64(10), h.balance(bob))

	// Escrow short of the balance sheet.
	require.NoError(h.run(func(e *Executor) error {
		return e.State.SetBalance(alice, 1000)
	}))
	err = h.withdraw(alice, 500)
	require.ErrorIs(err, ErrInvokeTransferInsufficientFunds)
	require.Equal(uint64(1000), h.balance(alice))
}

func TestWithdrawReentrancy(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, time.Second, 4)
	alice := h.account(100)

	vdb := versiondb.New(h.base)
	e := New(h.backend, state.New(vdb))

	var reentrantErr error
	h.ledger.OnTransfer = func(ctx context.Context, to ids.ShortID, amount uint64) {
		reentrantErr = e.Withdraw(ctx, txs.AccountCaller(to), amount)
	}
	require.NoError(e.Withdraw(context.Background(), txs.AccountCaller(alice), 60))
	require.ErrorIs(reentrantErr, ErrInsufficientFunds)
	require.NoError(vdb.Commit())

	h.ledger.OnTransfer = nil
	require.Equal(uint64(40), h.balance(alice))
	require.Equal(uint64(40), h.ledger.Escrow())
}

func TestAddSettlement(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, 600*time.Second, 3)
	alice := h.account(100)
	bob := h.account(100)

	err := h.run(func(e *Executor) error {
		_, err := e.AddSettlement(txs.AccountCaller(alice), transfer(nil, nil))
		return err
	})
	require.ErrorIs(err, ErrNotAValidator)

	// A contract sharing the validator's address is not the validator.
	err = h.run(func(e *Executor) error {
		_, err := e.AddSettlement(txs.ContractCaller(h.validator.Address), transfer(nil, nil))
		return err
	})
	require.ErrorIs(err, ErrNotAValidator)
	require.Empty(h.pending())

	_, err = h.add(transfer(
		[]txs.AddressAmount{aa(alice, 10)},
		[]txs.AddressAmount{aa(bob, 9)},
	))
	require.ErrorIs(err, ErrInvalidTransfer)

	_, err = h.add(transfer(
		[]txs.AddressAmount{aa(alice, math.MaxUint64), aa(bob, 1)},
		[]txs.AddressAmount{aa(bob, 0)},
	))
	require.ErrorIs(err, ErrInvalidTransfer)

	// Insolvent senders are accepted and only rejected at execution.
	h.at(1_000)
	for i := uint64(0); i < 3; i++ {
		id, err := h.add(transfer(
			[]txs.AddressAmount{aa(alice, 1_000)},
			[]txs.AddressAmount{aa(bob, 1_000)},
		))
		require.NoError(err)
		require.Equal(i, id)
	}
	_, err = h.add(transfer(nil, nil))
	require.ErrorIs(err, ErrSettlementQueueFull)

	settlements := h.pending()
	require.Len(settlements, 3)
	require.Equal(uint64(601_000), settlements[0].FinalityTime)

	// Ids are never reused, even after the queue drains.
	h.at(601_000)
	result := h.execute()
	require.Equal([]uint64{0, 1, 2}, result.Rejected)
	id, err := h.add(transfer(nil, nil))
	require.NoError(err)
	require.Equal(uint64(3), id)
}

func TestAddSettlementOverflows(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, time.Second, 10)
	require.NoError(h.run(func(e *Executor) error {
		return e.State.SetNextID(math.MaxUint64)
	}))
	_, err := h.add(transfer(nil, nil))
	require.ErrorIs(err, ErrCounterOverflow)
	require.Empty(h.pending())

	h = newHarness(t, time.Duration(math.MaxInt64), 10)
	require.NoError(h.run(func(e *Executor) error {
		return e.State.PutConfig(&txs.ContractConfig{
			Validator:       h.validator.Address,
			Judge:           h.judge.Address,
			TimeToFinality:  math.MaxUint64,
			SettlementLimit: 10,
		})
	}))
	h.at(1)
	_, err = h.add(transfer(nil, nil))
	require.ErrorIs(err, ErrTimeOverflow)

	var next uint64
	require.NoError(h.run(func(e *Executor) error {
		var err error
		next, err = e.State.NextID()
		return err
	}))
	require.Zero(next)
}

func TestVeto(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, 100*time.Millisecond, 10)
	alice := h.account(100)

	err := h.run(func(e *Executor) error {
		_, err := e.Veto(txs.AccountCaller(alice), 0)
		return err
	})
	require.ErrorIs(err, ErrNotAJudge)

	vetoed, err := h.veto(42)
	require.NoError(err)
	require.False(vetoed)

	h.at(0)
	_, err = h.add(transfer([]txs.AddressAmount{aa(alice, 10)}, []txs.AddressAmount{aa(alice, 10)}))
	require.NoError(err)
	h.at(50)
	_, err = h.add(transfer([]txs.AddressAmount{aa(alice, 20)}, []txs.AddressAmount{aa(alice, 20)}))
	require.NoError(err)

	err = h.run(func(e *Executor) error {
		_, err := e.Veto(txs.ContractCaller(h.judge.Address), 1)
		return err
	})
	require.ErrorIs(err, ErrNotAJudge)

	// id 0 is final at 100 and can no longer be disputed.
	h.at(100)
	vetoed, err = h.veto(0)
	require.NoError(err)
	require.False(vetoed)

	vetoed, err = h.veto(1)
	require.NoError(err)
	require.True(vetoed)
	vetoed, err = h.veto(1)
	require.NoError(err)
	require.False(vetoed)

	settlements := h.pending()
	require.Len(settlements, 1)
	require.Equal(uint64(0), settlements[0].ID)
	require.Equal(uint64(90), h.settled(alice))
}

func TestGetSettlement(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, time.Second, 10)
	alice := h.account(10)
	tx := transfer([]txs.AddressAmount{aa(alice, 5)}, []txs.AddressAmount{aa(alice, 5)})
	tx.MetaData = []byte{1, 2, 3}
	id, err := h.add(tx)
	require.NoError(err)

	require.NoError(h.run(func(e *Executor) error {
		settlement, found, err := e.GetSettlement(id)
		require.NoError(err)
		require.True(found)
		require.Equal(*tx, settlement.Transfer)
		require.Equal(uint64(1000), settlement.FinalityTime)

		_, found, err = e.GetSettlement(id + 1)
		require.NoError(err)
		require.False(found)
		return nil
	}))
}

func TestExecuteScenario(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, 600*time.Second, 10)
	var (
		alice   = h.account(100)
		bob     = h.account(100)
		charlie = h.account(100)
		dave    = ids.GenerateTestShortID()
	)

	h.at(0)
	_, err := h.add(transfer(
		[]txs.AddressAmount{aa(alice, 50), aa(bob, 25)},
		[]txs.AddressAmount{aa(charlie, 75)},
	))
	require.NoError(err)
	_, err = h.add(transfer(
		[]txs.AddressAmount{aa(alice, 60), aa(bob, 5)},
		[]txs.AddressAmount{aa(charlie, 65)},
	))
	require.NoError(err)
	h.at(200_000)
	_, err = h.add(transfer(
		[]txs.AddressAmount{aa(alice, 1), aa(bob, 1)},
		[]txs.AddressAmount{aa(charlie, 2)},
	))
	require.NoError(err)
	h.at(0)
	_, err = h.add(transfer(
		[]txs.AddressAmount{aa(alice, 50), aa(bob, 5)},
		[]txs.AddressAmount{aa(charlie, 55)},
	))
	require.NoError(err)
	h.at(1_000)
	_, err = h.add(transfer(
		[]txs.AddressAmount{aa(charlie, 50)},
		[]txs.AddressAmount{aa(dave, 50)},
	))
	require.NoError(err)

	h.at(700_000)
	result := h.execute()
	require.Equal([]uint64{0, 3, 4}, result.Applied)
	require.Equal([]uint64{1}, result.Rejected)
	require.Equal(uint64(1), result.Remaining)

	require.Zero(h.balance(alice))
	require.Equal(uint64(70), h.balance(bob))
	require.Equal(uint64(180), h.balance(charlie))
	require.Equal(uint64(50), h.balance(dave))

	settlements := h.pending()
	require.Len(settlements, 1)
	require.Equal(uint64(2), settlements[0].ID)

	// A second pass at the same time changes nothing.
	result = h.execute()
	require.Zero(result.Pruned())
	require.Equal(uint64(1), result.Remaining)
	require.Zero(h.balance(alice))
	require.Equal(uint64(70), h.balance(bob))
	require.Equal(uint64(180), h.balance(charlie))
	require.Equal(uint64(50), h.balance(dave))
}

func TestExecuteSelfTransferAndAliasing(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, time.Second, 10)
	alice := h.account(10)
	bob := h.account(0)

	// alice only covers her send by what she receives in the same transfer.
	_, err := h.add(transfer(
		[]txs.AddressAmount{aa(alice, 25), aa(bob, 15)},
		[]txs.AddressAmount{aa(alice, 15), aa(bob, 25)},
	))
	require.NoError(err)
	// After the first transfer bob holds 10.
	_, err = h.add(transfer(
		[]txs.AddressAmount{aa(bob, 11)},
		[]txs.AddressAmount{aa(alice, 11)},
	))
	require.NoError(err)

	h.at(1_000)
	result := h.execute()
	require.Equal([]uint64{0}, result.Applied)
	require.Equal([]uint64{1}, result.Rejected)
	require.Zero(h.balance(alice))
	require.Equal(uint64(10), h.balance(bob))
}

func TestExecuteRejectsInsolventAfterEarlierSettlement(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, time.Second, 10)
	alice := h.account(10)
	bob := h.account(0)

	_, err := h.add(transfer([]txs.AddressAmount{aa(alice, 10)}, []txs.AddressAmount{aa(bob, 10)}))
	require.NoError(err)
	_, err = h.add(transfer([]txs.AddressAmount{aa(alice, 1)}, []txs.AddressAmount{aa(bob, 1)}))
	require.NoError(err)

	h.at(1_000)
	result := h.execute()
	require.Equal([]uint64{0}, result.Applied)
	require.Equal([]uint64{1}, result.Rejected)
	require.Zero(h.balance(alice))
	require.Equal(uint64(10), h.balance(bob))
}

// Whatever the judge vetoes, withdrawing the settled balance first never
// makes a later execution fail or drive a balance below zero.
func TestWithdrawalSafetyUnderVetoes(t *testing.T) {
	require := require.New(t)

	const numSettlements = 3
	for mask := 0; mask < 1<<numSettlements; mask++ {
		h := newHarness(t, time.Second, 10)
		var (
			alice = h.account(100)
			bob   = h.account(50)
			carol = h.account(20)
		)
		transfers := []*txs.Transfer{
			transfer([]txs.AddressAmount{aa(alice, 60)}, []txs.AddressAmount{aa(bob, 60)}),
			transfer([]txs.AddressAmount{aa(bob, 50), aa(carol, 20)}, []txs.AddressAmount{aa(alice, 70)}),
			transfer([]txs.AddressAmount{aa(alice, 30)}, []txs.AddressAmount{aa(carol, 30)}),
		}
		for _, tx := range transfers {
			_, err := h.add(tx)
			require.NoError(err)
		}
		for _, addr := range []ids.ShortID{alice, bob, carol} {
			if settled := h.settled(addr); settled > 0 {
				require.NoError(h.withdraw(addr, settled))
			}
		}
		for id := uint64(0); id < numSettlements; id++ {
			if mask&(1<<id) != 0 {
				_, err := h.veto(id)
				require.NoError(err)
			}
		}

		h.at(1_000)
		result := h.execute()
		require.Empty(result.Rejected, "mask %b", mask)

		total := h.balance(alice) + h.balance(bob) + h.balance(carol)
		require.Equal(h.ledger.Escrow(), total, "mask %b", mask)
	}
}

func TestLifecycle(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, 100*time.Millisecond, 10)
	var (
		alice   = h.account(100)
		bob     = h.account(100)
		charlie = h.account(100)
	)

	require.ErrorIs(h.withdraw(bob, 120), ErrInsufficientFunds)
	require.NoError(h.withdraw(bob, 40))

	h.at(200)
	_, err := h.add(transfer(
		[]txs.AddressAmount{aa(alice, 50), aa(charlie, 20)},
		[]txs.AddressAmount{aa(charlie, 70)},
	))
	require.NoError(err)
	require.ErrorIs(h.withdraw(alice, 60), ErrInsufficientFunds)

	h.at(220)
	_, err = h.add(transfer(
		[]txs.AddressAmount{aa(charlie, 90)},
		[]txs.AddressAmount{aa(alice, 50), aa(bob, 40)},
	))
	require.NoError(err)
	vetoed, err := h.veto(0)
	require.NoError(err)
	require.True(vetoed)
	require.NoError(h.withdraw(alice, 60))

	h.at(310)
	result := h.execute()
	require.Zero(result.Pruned())
	require.Len(h.pending(), 1)

	h.at(320)
	result = h.execute()
	require.Equal([]uint64{1}, result.Applied)
	require.Empty(h.pending())

	require.NoError(h.withdraw(alice, 90))
	require.NoError(h.withdraw(bob, 100))
	require.NoError(h.withdraw(charlie, 10))
	for _, addr := range []ids.ShortID{alice, bob, charlie} {
		require.Zero(h.balance(addr))
	}
	require.Zero(h.ledger.Escrow())
}

func TestInvariantOnCorruptedQueue(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, time.Second, 10)
	require.NoError(h.run(func(e *Executor) error {
		return e.State.AddSettlement(&txs.Settlement{
			ID: 0,
			Transfer: txs.Transfer{
				SendTransfers: []txs.AddressAmount{aa(ids.GenerateTestShortID(), 1)},
			},
		})
	}))
	// The queued record claims an id the counter never handed out.
	_, err := h.add(transfer(nil, nil))
	require.ErrorIs(err, ErrInvariant)
}

func TestCode(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, time.Second, 1)
	_, err := h.veto(0)
	require.NoError(err)
	require.Zero(Code(err))

	err = h.run(func(e *Executor) error {
		_, err := e.Veto(h.validator, 0)
		return err
	})
	require.Equal(int32(-8), Code(err))
	require.Equal(int32(-100), Code(invariant("x")))
	require.Equal(CodeInternal, Code(database.ErrClosed))

	for _, c := range codes {
		require.Equal(c.err, FromCode(Code(c.err)))
	}
	require.NoError(FromCode(CodeInternal))
}
