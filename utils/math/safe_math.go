// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package math provides overflow-checked arithmetic on unsigned integers.
package math

import "errors"

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

var (
	ErrOverflow  = errors.New("overflow")
	ErrUnderflow = errors.New("underflow")
)

// MaxUint returns the maximum value of an unsigned integer of type T.
func MaxUint[T Unsigned]() T {
	return ^T(0)
}

// Add returns:
// 1) a + b
// 2) If there is overflow, an error
func Add[T Unsigned](a, b T) (T, error) {
	if a > MaxUint[T]()-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// Sub returns:
// 1) a - b
// 2) If there is underflow, an error
func Sub[T Unsigned](a, b T) (T, error) {
	if a < b {
		return 0, ErrUnderflow
	}
	return a - b, nil
}

// Sum adds up all the values, failing with ErrOverflow as soon as the running
// total no longer fits in T.
func Sum[T Unsigned](values ...T) (T, error) {
	var total T
	for _, v := range values {
		var err error
		total, err = Add(total, v)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// SaturatingSub returns a - b, or 0 if b > a.
func SaturatingSub[T Unsigned](a, b T) T {
	if a < b {
		return 0
	}
	return a - b
}
