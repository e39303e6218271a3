// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

// Settlement is a transfer proposed by the validator that becomes final once
// the clock reaches FinalityTime. Times are unix milliseconds.
type Settlement struct {
	ID           uint64   `serialize:"true" json:"id"`
	Transfer     Transfer `serialize:"true" json:"transfer"`
	FinalityTime uint64   `serialize:"true" json:"finalityTime"`
}

// IsFinal reports whether the dispute window has closed at now.
func (s *Settlement) IsFinal(now uint64) bool {
	return now >= s.FinalityTime
}
