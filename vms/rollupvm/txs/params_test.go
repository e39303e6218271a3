// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"
)

func TestParseTransfer(t *testing.T) {
	require := require.New(t)

	transfer := &Transfer{
		SendTransfers:    []AddressAmount{{ids.GenerateTestShortID(), 3}},
		ReceiveTransfers: []AddressAmount{{ids.GenerateTestShortID(), 3}},
		MetaData:         []byte("batch 7"),
	}
	b, err := Marshal(transfer)
	require.NoError(err)

	parsed, err := ParseTransfer(b)
	require.NoError(err)
	require.Equal(transfer, parsed)
}

func TestParseRejectsMalformed(t *testing.T) {
	require := require.New(t)

	b, err := Marshal(uint64(9))
	require.NoError(err)

	v, err := ParseUint64(b)
	require.NoError(err)
	require.Equal(uint64(9), v)

	_, err = ParseUint64(append(b, 0x00))
	require.ErrorIs(err, ErrParse)

	_, err = ParseUint64(b[:len(b)-1])
	require.ErrorIs(err, ErrParse)

	_, err = ParseTransfer([]byte{0x00, 0x00, 0xff, 0xff, 0xff, 0xff})
	require.ErrorIs(err, ErrParse)

	_, err = ParseConfig(nil)
	require.ErrorIs(err, ErrParse)
}
