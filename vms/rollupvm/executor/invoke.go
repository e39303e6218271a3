// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"context"
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/rollupvm/vms/rollupvm/txs"
)

// Method names an entry point of the contract.
type Method string

const (
	MethodInitialize         Method = "initialize"
	MethodDeposit            Method = "deposit"
	MethodWithdraw           Method = "withdraw"
	MethodAddSettlement      Method = "add_settlement"
	MethodVeto               Method = "veto"
	MethodExecuteSettlements Method = "execute_settlements"
	MethodSettledBalanceOf   Method = "settled_balance_of"
	MethodGetSettlement      Method = "get_settlement"
)

// IsQuery reports whether m only reads state.
func (m Method) IsQuery() bool {
	return m == MethodSettledBalanceOf || m == MethodGetSettlement
}

// SettlementReply is the encoded result of get_settlement.
type SettlementReply struct {
	Found      bool           `serialize:"true"`
	Settlement txs.Settlement `serialize:"true"`
}

// Invoke decodes codec-encoded params for method, runs it and returns the
// codec-encoded result, if the method has one. attached is the payment sent
// along with the call and is only meaningful for deposit.
func (e *Executor) Invoke(
	ctx context.Context,
	caller txs.Caller,
	method Method,
	params []byte,
	attached uint64,
) ([]byte, error) {
	switch method {
	case MethodInitialize:
		cfg, err := txs.ParseConfig(params)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseParams, err)
		}
		return nil, e.Initialize(cfg)
	case MethodDeposit:
		return nil, e.Deposit(ctx, caller, attached)
	case MethodWithdraw:
		amount, err := txs.ParseUint64(params)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseParams, err)
		}
		return nil, e.Withdraw(ctx, caller, amount)
	case MethodAddSettlement:
		if _, err := e.admitSettlement(caller); err != nil {
			return nil, err
		}
		transfer, err := txs.ParseTransfer(params)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseParams, err)
		}
		_, err = e.AddSettlement(caller, transfer)
		return nil, err
	case MethodVeto:
		id, err := txs.ParseUint64(params)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseParams, err)
		}
		_, err = e.Veto(caller, id)
		return nil, err
	case MethodExecuteSettlements:
		_, err := e.Execute()
		return nil, err
	case MethodSettledBalanceOf:
		var addr ids.ShortID
		if err := txs.Unmarshal(params, &addr); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseParams, err)
		}
		balance, err := e.SettledBalanceOf(addr)
		if err != nil {
			return nil, err
		}
		return txs.Marshal(balance)
	case MethodGetSettlement:
		id, err := txs.ParseUint64(params)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseParams, err)
		}
		settlement, found, err := e.GetSettlement(id)
		if err != nil {
			return nil, err
		}
		reply := &SettlementReply{Found: found}
		if found {
			reply.Settlement = *settlement
		}
		return txs.Marshal(reply)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}
