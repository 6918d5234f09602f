// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package movingaverage implements a compressed sliding window for
// approximated time-weighted moving averages.
//
// Instead of storing every observed sample, history is compressed into a
// bounded sequence of time-bucketed aggregates called divisions. Each
// division carries the time-weighted sum of its closed intervals plus one
// still-open value, which is extrapolated lazily at query time. The
// windowed average over the sequence is therefore O(1) space per bucket
// and deterministic: the same inputs always produce bit-for-bit identical
// results, which is required when the computation is replayed for
// verification.
package movingaverage

import (
	"errors"
	"fmt"

	"github.com/ava-labs/ratiolimit/decimal"

	safemath "github.com/ava-labs/ratiolimit/utils/math"
)

var (
	ErrInvalidTemporalOrder = errors.New("division updated before it started")
	ErrZeroDivisionSize     = errors.New("division size must be greater than zero")
)

// Division is one compressed time bucket. It is a value: updates return a
// new Division and never mutate in place.
//
// All times are uint64 nanoseconds and all spans within a bucket are
// measured in the same unit.
type Division struct {
	// StartedAt is the time the bucket opened.
	StartedAt uint64 `json:"startedAt"`
	// UpdatedAt is the time of the most recent value change. Always >=
	// StartedAt.
	UpdatedAt uint64 `json:"updatedAt"`
	// LatestValue is the most recently recorded value. Its weight is not
	// yet part of Cumsum; the open interval from UpdatedAt onward is
	// attributed to it at query time.
	LatestValue decimal.Dec `json:"latestValue"`
	// Cumsum is the sum over every closed interval in the bucket of
	// value * duration the value was current.
	Cumsum decimal.Dec `json:"cumsum"`
}

// NewDivision opens a bucket at [startedAt] whose first value change lands
// at [updatedAt]. [prevValue] is the value that was current for the whole
// [startedAt, updatedAt) interval, typically the previous bucket's final
// value, so the bucket's opening span is attributed to it rather than to
// the new value.
func NewDivision(startedAt, updatedAt uint64, value, prevValue decimal.Dec) (Division, error) {
	if updatedAt < startedAt {
		return Division{}, fmt.Errorf("%w: started at %d but updated at %d",
			ErrInvalidTemporalOrder,
			startedAt,
			updatedAt,
		)
	}
	cumsum, err := prevValue.MulUint64(updatedAt - startedAt)
	if err != nil {
		return Division{}, err
	}
	return Division{
		StartedAt:   startedAt,
		UpdatedAt:   updatedAt,
		LatestValue: value,
		Cumsum:      cumsum,
	}, nil
}

// Update folds the open interval into the cumulative sum and opens a new
// interval for [value]. A decreasing [updatedAt] surfaces as an arithmetic
// underflow; monotonicity proper is the caller's invariant.
func (d Division) Update(updatedAt uint64, value decimal.Dec) (Division, error) {
	elapsed, err := safemath.Sub(updatedAt, d.UpdatedAt)
	if err != nil {
		return Division{}, err
	}
	closedWeight, err := d.LatestValue.MulUint64(elapsed)
	if err != nil {
		return Division{}, err
	}
	cumsum, err := d.Cumsum.Add(closedWeight)
	if err != nil {
		return Division{}, err
	}
	return Division{
		StartedAt:   d.StartedAt,
		UpdatedAt:   updatedAt,
		LatestValue: value,
		Cumsum:      cumsum,
	}, nil
}

// EndedAt returns the exclusive end of the bucket's span.
func (d Division) EndedAt(divisionSize uint64) (uint64, error) {
	return safemath.Add(d.StartedAt, divisionSize)
}

// Outdated reports whether the bucket's whole span lies at or before the
// start of the window ending at [blockTime]. Outdated divisions carry no
// weight and should be evicted by the caller before averaging.
//
// A window that extends past time zero has nothing outside it, so nothing
// is outdated.
func (d Division) Outdated(blockTime, windowSize, divisionSize uint64) (bool, error) {
	endedAt, err := d.EndedAt(divisionSize)
	if err != nil {
		return false, err
	}
	windowStartedAt, err := safemath.Sub(blockTime, windowSize)
	if err != nil {
		return false, nil
	}
	return endedAt <= windowStartedAt, nil
}

// NextStartedAt returns the aligned start of the bucket containing
// [blockTime], counting whole divisions from this bucket's start. Used to
// open a successor division once this bucket's span has fully elapsed.
func (d Division) NextStartedAt(divisionSize, blockTime uint64) (uint64, error) {
	if divisionSize == 0 {
		return 0, ErrZeroDivisionSize
	}
	elapsed, err := safemath.Sub(blockTime, d.StartedAt)
	if err != nil {
		return 0, err
	}
	offset, err := safemath.Mul(elapsed/divisionSize, divisionSize)
	if err != nil {
		return 0, err
	}
	return safemath.Add(d.StartedAt, offset)
}

// contribution returns the bucket's whole mass at [blockTime]: every closed
// interval plus the open interval extrapolated to the earlier of
// [blockTime] and the bucket end.
func (d Division) contribution(divisionSize, blockTime uint64) (decimal.Dec, error) {
	endedAt, err := d.EndedAt(divisionSize)
	if err != nil {
		return decimal.Dec{}, err
	}
	latestValueElapsed, err := safemath.Sub(safemath.Min(blockTime, endedAt), d.UpdatedAt)
	if err != nil {
		return decimal.Dec{}, err
	}
	openWeight, err := d.LatestValue.MulUint64(latestValueElapsed)
	if err != nil {
		return decimal.Dec{}, err
	}
	return d.Cumsum.Add(openWeight)
}
