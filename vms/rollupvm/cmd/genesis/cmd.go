// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/rollupvm/vms/rollupvm/txs"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "genesis",
		Short: "Encodes the contract configuration used to initialize a chain",
		RunE:  genesisFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

func genesisFunc(c *cobra.Command, args []string) error {
	cfg, err := ParseFlags(c.Flags(), args)
	if err != nil {
		return err
	}
	genesis, err := txs.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode genesis: %w", err)
	}
	_, err = fmt.Fprintln(c.OutOrStdout(), hex.EncodeToString(genesis))
	return err
}
