// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/luxfi/ids"

	"github.com/luxfi/rollupvm/vms/rollupvm/txs"
)

const (
	ValidatorKey       = "validator"
	JudgeKey           = "judge"
	TimeToFinalityKey  = "time-to-finality"
	SettlementLimitKey = "settlement-limit"
)

func AddFlags(flags *pflag.FlagSet) {
	flags.String(ValidatorKey, "", "Address allowed to queue settlements (required)")
	flags.String(JudgeKey, "", "Address allowed to veto settlements (required)")
	flags.Duration(TimeToFinalityKey, 10*time.Minute, "Dispute window of each settlement")
	flags.Uint32(SettlementLimitKey, 256, "Maximum number of queued settlements")
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*txs.ContractConfig, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	validator, err := parseAddressFlag(flags, ValidatorKey)
	if err != nil {
		return nil, err
	}

	judge, err := parseAddressFlag(flags, JudgeKey)
	if err != nil {
		return nil, err
	}

	window, err := flags.GetDuration(TimeToFinalityKey)
	if err != nil {
		return nil, err
	}
	if window < 0 {
		return nil, fmt.Errorf("--%s must not be negative", TimeToFinalityKey)
	}

	limit, err := flags.GetUint32(SettlementLimitKey)
	if err != nil {
		return nil, err
	}

	cfg := &txs.ContractConfig{
		Validator:       validator,
		Judge:           judge,
		TimeToFinality:  uint64(window.Milliseconds()),
		SettlementLimit: limit,
	}
	return cfg, cfg.Verify()
}

func parseAddressFlag(flags *pflag.FlagSet, key string) (ids.ShortID, error) {
	s, err := flags.GetString(key)
	if err != nil {
		return ids.ShortEmpty, err
	}
	addr, err := ids.ShortFromString(s)
	if err != nil {
		return ids.ShortEmpty, fmt.Errorf("invalid --%s %q: %w", key, s, err)
	}
	return addr, nil
}
