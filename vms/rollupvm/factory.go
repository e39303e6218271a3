// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rollupvm

import (
	"errors"

	"github.com/luxfi/log"

	luxvm "github.com/luxfi/rollupvm"
	"github.com/luxfi/rollupvm/utils/timer/mockable"
	"github.com/luxfi/rollupvm/vms/rollupvm/ledger"
)

var (
	_ luxvm.Factory = (*Factory)(nil)

	errMissingLedger = errors.New("missing ledger")
)

// Factory creates rollup VMs settling against Ledger. A nil Clock follows
// wall-clock time.
type Factory struct {
	Ledger ledger.Ledger
	Clock  ledger.Clock
}

func (f *Factory) New(logger log.Logger) (luxvm.VM, error) {
	if f.Ledger == nil {
		return nil, errMissingLedger
	}
	clock := f.Clock
	if clock == nil {
		clock = &mockable.Clock{}
	}
	return &VM{
		log:    logger,
		clock:  clock,
		ledger: f.Ledger,
	}, nil
}
