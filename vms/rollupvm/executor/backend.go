// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"github.com/luxfi/log"

	"github.com/luxfi/rollupvm/vms/rollupvm/ledger"
)

// Backend holds the host collaborators shared by every invocation.
type Backend struct {
	Clock  ledger.Clock
	Ledger ledger.Ledger
	Log    log.Logger
}
