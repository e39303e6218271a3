// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/luxfi/ids"

	"github.com/luxfi/rollupvm/api/metrics"
	"github.com/luxfi/rollupvm/vms/rollupvm/txs"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "client",
		Short: "Calls the rollup API",
	}
	AddFlags(c.PersistentFlags())
	c.AddCommand(
		depositCommand(),
		withdrawCommand(),
		settleCommand(),
		vetoCommand(),
		executeCommand(),
		balanceCommand(),
		settlementCommand(),
		pendingCommand(),
		metricsCommand(),
	)
	return c
}

func depositCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Deposits collateral from the sender's wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			amount, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			client, err := NewClient(c.Flags())
			if err != nil {
				return err
			}
			return client.Deposit(c.Context(), amount)
		},
	}
}

func withdrawCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <amount>",
		Short: "Withdraws collateral to the sender's wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			amount, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			client, err := NewClient(c.Flags())
			if err != nil {
				return err
			}
			return client.Withdraw(c.Context(), amount)
		},
	}
}

func settleCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "settle",
		Short: "Queues a settlement; the sender must be the validator",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			transfer, err := parseTransfer(c)
			if err != nil {
				return err
			}
			client, err := NewClient(c.Flags())
			if err != nil {
				return err
			}
			id, err := client.AddSettlement(c.Context(), transfer)
			if err != nil {
				return err
			}
			return printJSON(c.OutOrStdout(), map[string]uint64{"id": id})
		},
	}
	flags := c.Flags()
	flags.StringSlice(SendKey, nil, "Outgoing leg as address=amount")
	flags.StringSlice(ReceiveKey, nil, "Incoming leg as address=amount")
	flags.String(MetaDataKey, "", "Hex encoded metadata")
	return c
}

func parseTransfer(c *cobra.Command) (*txs.Transfer, error) {
	flags := c.Flags()
	rawSend, err := flags.GetStringSlice(SendKey)
	if err != nil {
		return nil, err
	}
	send, err := parseAddressAmounts(SendKey, rawSend)
	if err != nil {
		return nil, err
	}
	rawReceive, err := flags.GetStringSlice(ReceiveKey)
	if err != nil {
		return nil, err
	}
	receive, err := parseAddressAmounts(ReceiveKey, rawReceive)
	if err != nil {
		return nil, err
	}
	rawMetaData, err := flags.GetString(MetaDataKey)
	if err != nil {
		return nil, err
	}
	metaData, err := hex.DecodeString(rawMetaData)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", MetaDataKey, err)
	}
	return &txs.Transfer{
		SendTransfers:    send,
		ReceiveTransfers: receive,
		MetaData:         metaData,
	}, nil
}

func vetoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "veto <id>",
		Short: "Vetoes a pending settlement; the sender must be the judge",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			client, err := NewClient(c.Flags())
			if err != nil {
				return err
			}
			vetoed, err := client.Veto(c.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(c.OutOrStdout(), map[string]bool{"vetoed": vetoed})
		},
	}
}

func executeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "execute",
		Short: "Executes every settlement past its dispute window",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			client, err := NewClient(c.Flags())
			if err != nil {
				return err
			}
			reply, err := client.ExecuteSettlements(c.Context())
			if err != nil {
				return err
			}
			return printJSON(c.OutOrStdout(), reply)
		},
	}
}

func balanceCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "balance <address>",
		Short: "Prints the balance of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			addr, err := ids.ShortFromString(args[0])
			if err != nil {
				return err
			}
			settled, err := c.Flags().GetBool(SettledKey)
			if err != nil {
				return err
			}
			client, err := NewClient(c.Flags())
			if err != nil {
				return err
			}
			var balance uint64
			if settled {
				balance, err = client.SettledBalanceOf(c.Context(), addr)
			} else {
				balance, err = client.BalanceOf(c.Context(), addr)
			}
			if err != nil {
				return err
			}
			return printJSON(c.OutOrStdout(), map[string]uint64{"balance": balance})
		},
	}
	c.Flags().Bool(SettledKey, true, "Discount liabilities of pending settlements")
	return c
}

func settlementCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "settlement <id>",
		Short: "Prints a pending settlement",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			client, err := NewClient(c.Flags())
			if err != nil {
				return err
			}
			settlement, err := client.GetSettlement(c.Context(), id)
			if err != nil {
				return err
			}
			if settlement == nil {
				return fmt.Errorf("settlement %d not found", id)
			}
			return printJSON(c.OutOrStdout(), settlement)
		},
	}
}

func pendingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "Prints the queued settlements in execution order",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			client, err := NewClient(c.Flags())
			if err != nil {
				return err
			}
			settlements, err := client.PendingSettlements(c.Context())
			if err != nil {
				return err
			}
			return printJSON(c.OutOrStdout(), settlements)
		},
	}
}

func metricsCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "metrics",
		Short: "Prints the counters and gauges exported by the node",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			uri, err := c.Flags().GetString(MetricsURIKey)
			if err != nil {
				return err
			}
			families, err := metrics.NewClient(uri).GetMetrics(c.Context())
			if err != nil {
				return err
			}
			values := make(map[string]float64)
			for name, family := range families {
				for _, m := range family.GetMetric() {
					switch {
					case m.GetCounter() != nil:
						values[name] += m.GetCounter().GetValue()
					case m.GetGauge() != nil:
						values[name] += m.GetGauge().GetValue()
					}
				}
			}
			return printJSON(c.OutOrStdout(), values)
		},
	}
	c.Flags().String(MetricsURIKey, "http://127.0.0.1:9650", "Root URI of the node")
	return c
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
