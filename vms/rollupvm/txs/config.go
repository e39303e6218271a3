// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"errors"

	"github.com/luxfi/ids"
)

var (
	ErrMissingValidator = errors.New("missing validator")
	ErrMissingJudge     = errors.New("missing judge")
	ErrZeroLimit        = errors.New("settlement limit must be positive")
)

// ContractConfig is fixed when the contract is initialized.
type ContractConfig struct {
	Validator ids.ShortID `serialize:"true" json:"validator"`
	Judge     ids.ShortID `serialize:"true" json:"judge"`
	// TimeToFinality is the dispute window in milliseconds.
	TimeToFinality  uint64 `serialize:"true" json:"timeToFinality"`
	SettlementLimit uint32 `serialize:"true" json:"settlementLimit"`
}

func (c *ContractConfig) Verify() error {
	switch {
	case c.Validator == ids.ShortEmpty:
		return ErrMissingValidator
	case c.Judge == ids.ShortEmpty:
		return ErrMissingJudge
	case c.SettlementLimit == 0:
		return ErrZeroLimit
	default:
		return nil
	}
}
