// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/rollupvm/vms/rollupvm"
	"github.com/luxfi/rollupvm/vms/rollupvm/cmd/client"
	"github.com/luxfi/rollupvm/vms/rollupvm/cmd/genesis"
	"github.com/luxfi/rollupvm/vms/rollupvm/cmd/run"
)

func main() {
	versionStr := fmt.Sprintf("Rollup-VM/%s", rollupvm.Version)

	cmd := &cobra.Command{
		Use:     "rollupvm",
		Short:   "Optimistic settlement VM",
		Version: versionStr,
	}
	cmd.AddCommand(
		run.Command(),
		genesis.Command(),
		client.Command(),
	)
	cmd.SilenceUsage = true

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "command failed: %s\n", err)
		os.Exit(1)
	}
}
