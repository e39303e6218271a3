// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/luxfi/ids"

	"github.com/luxfi/rollupvm/vms/rollupvm/ledger"

	safemath "github.com/luxfi/rollupvm/utils/math"
)

const (
	GenesisKey     = "genesis"
	GenesisFileKey = "genesis-file"
	ConfigKey      = "config"
	FundKey        = "fund"
	NetworkIDKey   = "network-id"

	AllowedOriginsKey = "allowed-origins"
	AllowedHostsKey   = "allowed-hosts"
)

var errNoGenesis = errors.New("one of --genesis or --genesis-file is required")

func AddFlags(flags *pflag.FlagSet) {
	flags.String(GenesisKey, "", "Hex encoded contract configuration")
	flags.String(GenesisFileKey, "", "File holding a hex encoded contract configuration")
	flags.String(ConfigKey, "", "JSON runtime configuration")
	flags.StringSlice(FundKey, nil, "Initial wallet balance of the in-memory ledger, as address=amount")
	flags.Uint32(NetworkIDKey, 1, "Network ID reported to the VM")
	flags.StringSlice(AllowedOriginsKey, []string{"*"}, "Origins allowed to make cross-origin API calls")
	flags.StringSlice(AllowedHostsKey, []string{"localhost"}, "Host names accepted in the Host header; * accepts any")
}

type Config struct {
	Genesis   []byte
	Config    []byte
	Funds     map[ids.ShortID]uint64
	NetworkID uint32

	AllowedOrigins []string
	AllowedHosts   []string
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	genesis, err := parseGenesis(flags)
	if err != nil {
		return nil, err
	}

	cfg, err := flags.GetString(ConfigKey)
	if err != nil {
		return nil, err
	}

	rawFunds, err := flags.GetStringSlice(FundKey)
	if err != nil {
		return nil, err
	}
	funds := make(map[ids.ShortID]uint64, len(rawFunds))
	for _, raw := range rawFunds {
		addr, amount, err := parseFund(raw)
		if err != nil {
			return nil, err
		}
		funds[addr], err = safemath.Add(funds[addr], amount)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s: total for %s: %w", FundKey, addr, err)
		}
	}

	networkID, err := flags.GetUint32(NetworkIDKey)
	if err != nil {
		return nil, err
	}

	allowedOrigins, err := flags.GetStringSlice(AllowedOriginsKey)
	if err != nil {
		return nil, err
	}
	allowedHosts, err := flags.GetStringSlice(AllowedHostsKey)
	if err != nil {
		return nil, err
	}

	return &Config{
		Genesis:        genesis,
		Config:         []byte(cfg),
		Funds:          funds,
		NetworkID:      networkID,
		AllowedOrigins: allowedOrigins,
		AllowedHosts:   allowedHosts,
	}, nil
}

// Fund seeds l with the configured wallet balances.
func (c *Config) Fund(l *ledger.Memory) error {
	for addr, amount := range c.Funds {
		if err := l.Fund(addr, amount); err != nil {
			return fmt.Errorf("failed to fund %s: %w", addr, err)
		}
	}
	return nil
}

func parseGenesis(flags *pflag.FlagSet) ([]byte, error) {
	genesisHex, err := flags.GetString(GenesisKey)
	if err != nil {
		return nil, err
	}
	genesisFile, err := flags.GetString(GenesisFileKey)
	if err != nil {
		return nil, err
	}
	switch {
	case genesisHex != "" && genesisFile != "":
		return nil, fmt.Errorf("--%s and --%s are mutually exclusive", GenesisKey, GenesisFileKey)
	case genesisFile != "":
		b, err := os.ReadFile(genesisFile)
		if err != nil {
			return nil, err
		}
		genesisHex = string(b)
	case genesisHex == "":
		return nil, errNoGenesis
	}
	return hex.DecodeString(strings.TrimSpace(genesisHex))
}

func parseFund(raw string) (ids.ShortID, uint64, error) {
	addrStr, amountStr, ok := strings.Cut(raw, "=")
	if !ok {
		return ids.ShortEmpty, 0, fmt.Errorf("invalid --%s %q: expected address=amount", FundKey, raw)
	}
	addr, err := ids.ShortFromString(addrStr)
	if err != nil {
		return ids.ShortEmpty, 0, fmt.Errorf("invalid --%s address %q: %w", FundKey, addrStr, err)
	}
	amount, err := strconv.ParseUint(amountStr, 10, 64)
	if err != nil {
		return ids.ShortEmpty, 0, fmt.Errorf("invalid --%s amount %q: %w", FundKey, amountStr, err)
	}
	return addr, amount, nil
}
