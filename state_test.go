// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestState(t *testing.T) {
	tests := []struct {
		state       State
		name        string
		allowsReads bool
		allowsWrite bool
	}{
		{Unknown, "Unknown", true, false},
		{Bootstrapping, "Bootstrapping", true, false},
		{NormalOp, "NormalOp", true, true},
		{Halted, "Halted", false, false},
		{State(42), "Unknown", true, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			require.Equal(test.name, test.state.String())
			require.Equal(test.allowsReads, test.state.AllowsReads())
			require.Equal(test.allowsWrite, test.state.AllowsWrites())
		})
	}
}
