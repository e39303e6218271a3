// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/luxfi/ids"

	"github.com/luxfi/rollupvm/vms/rollupvm"
	"github.com/luxfi/rollupvm/vms/rollupvm/txs"
)

const (
	URIKey        = "uri"
	NamespaceKey  = "namespace"
	SenderKey     = "sender"
	SenderKindKey = "sender-kind"

	SendKey     = "send"
	ReceiveKey  = "receive"
	MetaDataKey = "metadata"
	SettledKey  = "settled"

	MetricsURIKey = "metrics-uri"
)

func AddFlags(flags *pflag.FlagSet) {
	flags.String(URIKey, "http://127.0.0.1:9650/ext/rollup", "API endpoint of the rollup VM")
	flags.String(NamespaceKey, "rollup", "JSON-RPC namespace of the rollup API")
	flags.String(SenderKey, "", "Address the call is made as")
	flags.String(SenderKindKey, txs.Account.String(), "Kind of the sender: account or contract")
}

// NewClient builds an API client from the persistent flags.
func NewClient(flags *pflag.FlagSet) (*rollupvm.Client, error) {
	uri, err := flags.GetString(URIKey)
	if err != nil {
		return nil, err
	}
	namespace, err := flags.GetString(NamespaceKey)
	if err != nil {
		return nil, err
	}
	client := rollupvm.NewClient(uri, namespace)

	sender, err := flags.GetString(SenderKey)
	if err != nil || sender == "" {
		return client, err
	}
	addr, err := ids.ShortFromString(sender)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", SenderKey, sender, err)
	}
	kindStr, err := flags.GetString(SenderKindKey)
	if err != nil {
		return nil, err
	}
	var kind txs.CallerKind
	switch kindStr {
	case txs.Account.String():
		kind = txs.Account
	case txs.Contract.String():
		kind = txs.Contract
	default:
		return nil, fmt.Errorf("invalid --%s %q", SenderKindKey, kindStr)
	}
	return client.As(addr, kind), nil
}

func parseAddressAmounts(key string, raw []string) ([]txs.AddressAmount, error) {
	amounts := make([]txs.AddressAmount, 0, len(raw))
	for _, r := range raw {
		addrStr, amountStr, ok := strings.Cut(r, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --%s %q: expected address=amount", key, r)
		}
		addr, err := ids.ShortFromString(addrStr)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s address %q: %w", key, addrStr, err)
		}
		amount, err := strconv.ParseUint(amountStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s amount %q: %w", key, amountStr, err)
		}
		amounts = append(amounts, txs.AddressAmount{
			Address: addr,
			Amount:  amount,
		})
	}
	return amounts, nil
}
