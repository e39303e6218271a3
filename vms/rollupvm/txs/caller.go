// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"fmt"

	"github.com/luxfi/ids"
)

// CallerKind distinguishes externally owned accounts from contracts.
type CallerKind uint8

const (
	Account CallerKind = iota
	Contract
)

func (k CallerKind) String() string {
	switch k {
	case Account:
		return "account"
	case Contract:
		return "contract"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Caller is the identity the host attributes to an invocation.
type Caller struct {
	Address ids.ShortID
	Kind    CallerKind
}

func AccountCaller(addr ids.ShortID) Caller {
	return Caller{Address: addr, Kind: Account}
}

func ContractCaller(addr ids.ShortID) Caller {
	return Caller{Address: addr, Kind: Contract}
}

func (c Caller) IsAccount() bool {
	return c.Kind == Account
}
