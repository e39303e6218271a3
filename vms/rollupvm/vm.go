// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rollupvm implements an optimistic settlement contract: participants
// deposit collateral, a validator queues net settlements, a judge may veto a
// settlement during its dispute window and anyone may execute settlements once
// the window has closed.
package rollupvm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/rpc/v2"
	"github.com/luxfi/database"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/luxfi/utils/json"
	"github.com/luxfi/version"

	luxvm "github.com/luxfi/rollupvm"
	"github.com/luxfi/rollupvm/vms/rollupvm/config"
	"github.com/luxfi/rollupvm/vms/rollupvm/executor"
	"github.com/luxfi/rollupvm/vms/rollupvm/ledger"
	"github.com/luxfi/rollupvm/vms/rollupvm/metrics"
	"github.com/luxfi/rollupvm/vms/rollupvm/state"
	"github.com/luxfi/rollupvm/vms/rollupvm/txs"
)

var (
	_ luxvm.VM = (*VM)(nil)

	Version = &version.Semantic{
		Major: 1,
		Minor: 0,
		Patch: 0,
	}

	errMissingDB      = errors.New("missing database")
	errMissingGenesis = errors.New("database is empty and no genesis was provided")
	errNotInitialized = errors.New("vm not initialized")
	errNotNormalOp    = errors.New("vm is not in normal operation")
	errHalted         = errors.New("vm halted")
	errInvalidState   = errors.New("invalid state transition")
	errInInvocation   = errors.New("not allowed during an invocation")
)

// VM serializes every operation and runs each one against its own versiondb
// layer, committed only if the operation succeeds.
type VM struct {
	config.Config

	log    log.Logger
	clock  ledger.Clock
	ledger ledger.Ledger

	lock     sync.Mutex
	db       database.Database
	backend  *executor.Backend
	metrics  metrics.Metrics
	chainID  ids.ID
	vmState  luxvm.State
	haltedBy error

	keeperCancel context.CancelFunc
	keeperDone   chan struct{}
}

func (vm *VM) Initialize(ctx context.Context, cfg *luxvm.Config) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	if cfg.DB == nil {
		return errMissingDB
	}
	runtimeConfig, err := config.ParseConfig(cfg.Config)
	if err != nil {
		return err
	}
	vm.Config = runtimeConfig
	vm.db = cfg.DB
	vm.chainID = cfg.ChainID

	registerer := cfg.Metrics
	if registerer == nil {
		registerer = metric.NewRegistry()
	}
	vm.metrics, err = metrics.New(vm.MetricsNamespace, registerer)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	vm.backend = &executor.Backend{
		Clock:  vm.clock,
		Ledger: vm.ledger,
		Log:    vm.log,
	}

	initialized, err := state.New(vm.db).IsInitialized()
	if err != nil {
		return err
	}
	if !initialized {
		if len(cfg.Genesis) == 0 {
			return errMissingGenesis
		}
		genesis, err := txs.ParseConfig(cfg.Genesis)
		if err != nil {
			return fmt.Errorf("failed to parse genesis: %w", err)
		}
		if err := vm.invoke(ctx, "initialize", vm.db, func(_ context.Context, e *executor.Executor) error {
			return e.Initialize(genesis)
		}); err != nil {
			return err
		}
	}

	length, err := state.New(vm.db).QueueLen()
	if err != nil {
		return err
	}
	vm.metrics.SetQueueLength(length)
	vm.log.Info("initialized rollup vm",
		log.Stringer("chainID", vm.chainID),
		log.Bool("fromGenesis", !initialized),
		log.Uint64("queueLength", length),
		log.Duration("executeInterval", vm.ExecuteInterval),
	)
	return nil
}

// SetState transitions the VM. Operations that change state are accepted only
// in NormalOp, which also starts the keeper if one is configured. A halted VM
// stays halted.
func (vm *VM) SetState(ctx context.Context, s luxvm.State) error {
	if _, ok := vm.nested(ctx); ok {
		return fmt.Errorf("%w: set state %s", errInInvocation, s)
	}
	vm.lock.Lock()
	if vm.backend == nil {
		vm.lock.Unlock()
		return errNotInitialized
	}
	switch {
	case !vm.vmState.AllowsReads():
		vm.lock.Unlock()
		return errHalted
	case !s.AllowsReads():
		vm.lock.Unlock()
		return fmt.Errorf("%w: %s", errInvalidState, s)
	}
	vm.vmState = s
	if s.AllowsWrites() {
		vm.startKeeper()
		vm.lock.Unlock()
		return nil
	}
	vm.lock.Unlock()

	vm.stopKeeper()
	return nil
}

func (vm *VM) Shutdown(ctx context.Context) error {
	if _, ok := vm.nested(ctx); ok {
		return fmt.Errorf("%w: shutdown", errInInvocation)
	}
	vm.stopKeeper()
	vm.log.Info("shut down rollup vm", log.Stringer("chainID", vm.chainID))
	return nil
}

func (*VM) Version(context.Context) (string, error) {
	return Version.String(), nil
}

func (vm *VM) CreateHandlers(context.Context) (map[string]http.Handler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(json.NewCodec(), "application/json")
	server.RegisterCodec(json.NewCodec(), "application/json;charset=UTF-8")
	return map[string]http.Handler{
		"": server,
	}, server.RegisterService(&Service{vm: vm}, vm.APINamespace)
}

// Deposit credits amount, attached by caller, to the caller's balance.
func (vm *VM) Deposit(ctx context.Context, caller txs.Caller, amount uint64) error {
	err := vm.write(ctx, "deposit", func(ctx context.Context, e *executor.Executor) error {
		return e.Deposit(ctx, caller, amount)
	})
	if err == nil {
		vm.metrics.MarkDeposit(amount)
	}
	return err
}

// Withdraw pays amount out of the caller's settled balance.
func (vm *VM) Withdraw(ctx context.Context, caller txs.Caller, amount uint64) error {
	err := vm.write(ctx, "withdraw", func(ctx context.Context, e *executor.Executor) error {
		return e.Withdraw(ctx, caller, amount)
	})
	if err == nil {
		vm.metrics.MarkWithdrawal(amount)
	}
	return err
}

// AddSettlement queues transfer on behalf of the validator.
func (vm *VM) AddSettlement(ctx context.Context, caller txs.Caller, transfer *txs.Transfer) (uint64, error) {
	var id uint64
	err := vm.write(ctx, "add_settlement", func(_ context.Context, e *executor.Executor) error {
		var err error
		id, err = e.AddSettlement(caller, transfer)
		return err
	})
	if err == nil {
		vm.metrics.MarkSettlementAdded()
	}
	return id, err
}

// Veto removes a settlement that is still in its dispute window.
func (vm *VM) Veto(ctx context.Context, caller txs.Caller, id uint64) (bool, error) {
	var vetoed bool
	err := vm.write(ctx, "veto", func(_ context.Context, e *executor.Executor) error {
		var err error
		vetoed, err = e.Veto(caller, id)
		return err
	})
	if vetoed {
		vm.metrics.MarkSettlementVetoed()
	}
	return vetoed, err
}

// ExecuteSettlements resolves every settlement whose dispute window closed.
func (vm *VM) ExecuteSettlements(ctx context.Context) (*executor.Result, error) {
	var result *executor.Result
	err := vm.write(ctx, "execute_settlements", func(_ context.Context, e *executor.Executor) error {
		var err error
		result, err = e.Execute()
		return err
	})
	if err != nil {
		return nil, err
	}
	vm.metrics.MarkExecution(len(result.Applied), len(result.Rejected), result.Remaining)
	if result.Pruned() > 0 {
		vm.log.Info("executed settlements",
			log.Int("applied", len(result.Applied)),
			log.Int("rejected", len(result.Rejected)),
			log.Uint64("remaining", result.Remaining),
		)
	}
	return result, nil
}

func (vm *VM) SettledBalanceOf(ctx context.Context, addr ids.ShortID) (uint64, error) {
	var balance uint64
	err := vm.read(ctx, func(e *executor.Executor) error {
		var err error
		balance, err = e.SettledBalanceOf(addr)
		return err
	})
	return balance, err
}

func (vm *VM) BalanceOf(ctx context.Context, addr ids.ShortID) (uint64, error) {
	var balance uint64
	err := vm.read(ctx, func(e *executor.Executor) error {
		var err error
		balance, err = e.BalanceOf(addr)
		return err
	})
	return balance, err
}

func (vm *VM) GetSettlement(ctx context.Context, id uint64) (*txs.Settlement, bool, error) {
	var (
		settlement *txs.Settlement
		found      bool
	)
	err := vm.read(ctx, func(e *executor.Executor) error {
		var err error
		settlement, found, err = e.GetSettlement(id)
		return err
	})
	return settlement, found, err
}

// PendingSettlements returns up to MaxPendingQuery queued settlements in
// insertion order.
func (vm *VM) PendingSettlements(ctx context.Context) ([]*txs.Settlement, error) {
	var settlements []*txs.Settlement
	err := vm.read(ctx, func(e *executor.Executor) error {
		var err error
		settlements, err = e.PendingSettlements()
		return err
	})
	if len(settlements) > vm.MaxPendingQuery {
		settlements = settlements[:vm.MaxPendingQuery]
	}
	return settlements, err
}

func (vm *VM) ContractConfig(ctx context.Context) (*txs.ContractConfig, error) {
	var cfg *txs.ContractConfig
	err := vm.read(ctx, func(e *executor.Executor) error {
		var err error
		cfg, err = e.Config()
		return err
	})
	return cfg, err
}

// Invoke runs method with codec-encoded params, the way a host environment
// calls into the contract. Queries run in any state.
func (vm *VM) Invoke(
	ctx context.Context,
	caller txs.Caller,
	method executor.Method,
	params []byte,
	attached uint64,
) ([]byte, error) {
	var reply []byte
	f := func(ctx context.Context, e *executor.Executor) error {
		var err error
		reply, err = e.Invoke(ctx, caller, method, params, attached)
		return err
	}
	if method.IsQuery() {
		return reply, vm.read(ctx, func(e *executor.Executor) error {
			return f(ctx, e)
		})
	}
	return reply, vm.write(ctx, string(method), f)
}

// Health reports an error once the VM has halted.
func (vm *VM) Health(ctx context.Context) (luxvm.State, error) {
	if _, ok := vm.nested(ctx); !ok {
		vm.lock.Lock()
		defer vm.lock.Unlock()
	}

	if !vm.vmState.AllowsReads() {
		return vm.vmState, fmt.Errorf("%w: %w", errHalted, vm.haltedBy)
	}
	return vm.vmState, nil
}

// invocationKey marks the context handed to a running operation.
type invocationKey struct{}

// invocation is the database layer of a running operation. An operation
// re-entered with its context, for example by a ledger payout, runs on a
// child layer of it while the outer operation keeps holding the lock.
type invocation struct {
	vm   *VM
	db   *versiondb.Database
	done atomic.Bool
}

// nested returns the operation ctx was handed out by, if it is still running.
func (vm *VM) nested(ctx context.Context) (*invocation, bool) {
	inv, ok := ctx.Value(invocationKey{}).(*invocation)
	if !ok || inv.vm != vm || inv.done.Load() {
		return nil, false
	}
	return inv, true
}

func (vm *VM) write(ctx context.Context, op string, f func(context.Context, *executor.Executor) error) error {
	if parent, ok := vm.nested(ctx); ok {
		if err := vm.writable(); err != nil {
			return err
		}
		return vm.invoke(ctx, op, parent.db, f)
	}

	vm.lock.Lock()
	defer vm.lock.Unlock()

	if err := vm.writable(); err != nil {
		return err
	}
	if err := vm.invoke(ctx, op, vm.db, f); err != nil {
		return err
	}

	length, err := state.New(vm.db).QueueLen()
	if err != nil {
		vm.log.Warn("failed to read queue length", log.Err(err))
		return nil
	}
	vm.metrics.SetQueueLength(length)
	return nil
}

func (vm *VM) read(ctx context.Context, f func(*executor.Executor) error) error {
	if parent, ok := vm.nested(ctx); ok {
		if err := vm.usable(); err != nil {
			return err
		}
		return vm.query(parent.db, f)
	}

	vm.lock.Lock()
	defer vm.lock.Unlock()

	if err := vm.usable(); err != nil {
		return err
	}
	return vm.query(vm.db, f)
}

// query must be called with the lock held.
func (vm *VM) query(db database.Database, f func(*executor.Executor) error) error {
	err := f(executor.New(vm.backend, state.New(db)))
	if errors.Is(err, executor.ErrInvariant) {
		vm.halt("query", err)
	}
	return err
}

func (vm *VM) usable() error {
	switch {
	case vm.backend == nil:
		return errNotInitialized
	case !vm.vmState.AllowsReads():
		return errHalted
	default:
		return nil
	}
}

func (vm *VM) writable() error {
	if err := vm.usable(); err != nil {
		return err
	}
	if !vm.vmState.AllowsWrites() {
		return fmt.Errorf("%w: %s", errNotNormalOp, vm.vmState)
	}
	return nil
}

// invoke runs f on a new layer over base and commits the layer into base only
// if f succeeds. It must be called with the lock held.
func (vm *VM) invoke(
	ctx context.Context,
	op string,
	base database.Database,
	f func(context.Context, *executor.Executor) error,
) error {
	vdb := versiondb.New(base)
	inv := &invocation{
		vm: vm,
		db: vdb,
	}
	defer inv.done.Store(true)

	err := f(context.WithValue(ctx, invocationKey{}, inv), executor.New(vm.backend, state.New(vdb)))
	if err == nil && !vm.vmState.AllowsReads() {
		// A nested operation halted the VM.
		err = errHalted
	}
	if err != nil {
		vdb.Abort()
		vm.metrics.MarkFailure(op)
		if errors.Is(err, executor.ErrInvariant) {
			vm.halt(op, err)
		} else {
			vm.log.Debug("operation failed",
				log.String("op", op),
				log.Err(err),
			)
		}
		return err
	}
	if err := vdb.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", op, err)
	}
	return nil
}

// halt must be called with the lock held.
func (vm *VM) halt(op string, err error) {
	vm.vmState = luxvm.Halted
	vm.haltedBy = err
	vm.log.Error("halting after invariant violation",
		log.String("op", op),
		log.Err(err),
	)
}

// startKeeper must be called with the lock held.
func (vm *VM) startKeeper() {
	if vm.keeperCancel != nil || vm.ExecuteInterval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	vm.keeperCancel = cancel
	vm.keeperDone = make(chan struct{})
	go vm.runKeeper(ctx, vm.ExecuteInterval, vm.keeperDone)
}

func (vm *VM) stopKeeper() {
	vm.lock.Lock()
	cancel, done := vm.keeperCancel, vm.keeperDone
	vm.keeperCancel, vm.keeperDone = nil, nil
	vm.lock.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (vm *VM) runKeeper(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if _, err := vm.ExecuteSettlements(ctx); err != nil {
			if errors.Is(err, errHalted) || errors.Is(err, executor.ErrInvariant) {
				return
			}
			vm.log.Warn("keeper failed to execute settlements", log.Err(err))
		}
	}
}
