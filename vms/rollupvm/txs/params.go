// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"errors"
	"fmt"
)

var ErrParse = errors.New("couldn't parse params")

// Marshal encodes a parameter or stored record with the current codec version.
func Marshal(v any) ([]byte, error) {
	return Codec.Marshal(CodecVersion, v)
}

// Unmarshal decodes b into dest. Failures, including trailing bytes and
// unknown codec versions, wrap ErrParse.
func Unmarshal(b []byte, dest any) error {
	version, err := Codec.Unmarshal(b, dest)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	if version != CodecVersion {
		return fmt.Errorf("%w: unexpected codec version %d", ErrParse, version)
	}
	return nil
}

// ParseTransfer decodes an add-settlement parameter.
func ParseTransfer(b []byte) (*Transfer, error) {
	t := &Transfer{}
	if err := Unmarshal(b, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ParseConfig decodes an initialize parameter.
func ParseConfig(b []byte) (*ContractConfig, error) {
	c := &ContractConfig{}
	if err := Unmarshal(b, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ParseUint64 decodes a withdraw amount or a settlement id.
func ParseUint64(b []byte) (uint64, error) {
	var v uint64
	if err := Unmarshal(b, &v); err != nil {
		return 0, err
	}
	return v, nil
}
