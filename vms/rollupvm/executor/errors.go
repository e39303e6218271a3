// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"errors"
	"fmt"

	"github.com/luxfi/rollupvm/vms/rollupvm/state"
)

var (
	ErrParseParams                     = errors.New("couldn't parse params")
	ErrContractSender                  = errors.New("caller must be an account")
	ErrInsufficientFunds               = errors.New("insufficient funds")
	ErrInvalidTransfer                 = errors.New("invalid transfer")
	ErrTimeOverflow                    = errors.New("finality time overflow")
	ErrCounterOverflow                 = errors.New("settlement counter overflow")
	ErrNotAValidator                   = errors.New("caller is not the validator")
	ErrNotAJudge                       = errors.New("caller is not the judge")
	ErrZeroWithdrawal                  = errors.New("withdrawal amount must be positive")
	ErrSettlementQueueFull             = errors.New("settlement queue full")
	ErrInvokeTransferMissingAccount    = errors.New("payout recipient account missing")
	ErrInvokeTransferInsufficientFunds = errors.New("payout exceeds contract funds")
	ErrPaymentRejected                 = errors.New("attached payment rejected")
	ErrAlreadyInitialized              = errors.New("contract already initialized")
	ErrInvalidConfig                   = errors.New("invalid contract config")
	ErrUnknownMethod                   = errors.New("unknown method")

	// ErrNotInitialized is returned by every operation before initialize.
	ErrNotInitialized = state.ErrNotInitialized

	// ErrInvariant marks a state the validity checks should have made
	// unreachable. Callers must not retry and should stop serving.
	ErrInvariant = errors.New("invariant violated")
)

// codes are reported to clients alongside the error message. Values are part
// of the API and must not be renumbered.
var codes = []struct {
	err  error
	code int32
}{
	{ErrParseParams, -1},
	{ErrContractSender, -2},
	{ErrInsufficientFunds, -3},
	{ErrInvalidTransfer, -4},
	{ErrTimeOverflow, -5},
	{ErrCounterOverflow, -6},
	{ErrNotAValidator, -7},
	{ErrNotAJudge, -8},
	{ErrZeroWithdrawal, -9},
	{ErrSettlementQueueFull, -10},
	{ErrInvokeTransferMissingAccount, -11},
	{ErrInvokeTransferInsufficientFunds, -12},
	{ErrPaymentRejected, -13},
	{ErrNotInitialized, -14},
	{ErrAlreadyInitialized, -15},
	{ErrInvalidConfig, -16},
	{ErrUnknownMethod, -17},
	{ErrInvariant, -100},
}

// CodeInternal is the code of errors outside the contract's own failures,
// such as storage errors.
const CodeInternal int32 = -32000

// Code returns the stable numeric code of err, 0 for nil.
func Code(err error) int32 {
	if err == nil {
		return 0
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// FromCode returns the error reported with code, or nil if the code is not
// one of the contract's.
func FromCode(code int32) error {
	for _, c := range codes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}

func invariant(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
