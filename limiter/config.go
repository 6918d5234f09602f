// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package limiter

import "fmt"

// MaxDivisionCount bounds how many buckets a window may be split into, and
// with it the per-limiter storage cost.
const MaxDivisionCount = 10

// WindowConfig fixes the shape of a change limiter's sliding window.
type WindowConfig struct {
	// WindowSize is the trailing span the average is computed over, in
	// nanoseconds.
	WindowSize uint64 `json:"windowSize"`

	// DivisionCount is the number of equal buckets the window is divided
	// into.
	DivisionCount uint64 `json:"divisionCount"`
}

func (c WindowConfig) Verify() error {
	switch {
	case c.WindowSize == 0:
		return ErrZeroWindowSize
	case c.DivisionCount == 0:
		return ErrZeroDivisionCount
	case c.DivisionCount > MaxDivisionCount:
		return fmt.Errorf("%w: %d > %d", ErrDivisionCountExceeded, c.DivisionCount, MaxDivisionCount)
	case c.WindowSize%c.DivisionCount != 0:
		return fmt.Errorf("%w: %d %% %d != 0", ErrUnevenWindowDivision, c.WindowSize, c.DivisionCount)
	default:
		return nil
	}
}

// DivisionSize returns the span of one bucket.
func (c WindowConfig) DivisionSize() uint64 {
	return c.WindowSize / c.DivisionCount
}
