// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package movingaverage

import (
	"errors"
	"fmt"

	"github.com/ava-labs/ratiolimit/decimal"

	safemath "github.com/ava-labs/ratiolimit/utils/math"
)

var (
	ErrNoDivisions     = errors.New("no division to average over")
	ErrZeroElapsedTime = errors.New("moving average is undefined over zero elapsed time")
)

// Average returns the time-weighted average of the tracked value over the
// half-open window (blockTime - windowSize, blockTime].
//
// [divisions] must be ordered oldest first, every division's UpdatedAt must
// be at or before [blockTime], and divisions that lie entirely outside the
// window must already have been evicted; only the oldest retained division
// receives partial weighting at the window boundary. Ordering is not
// re-validated here, but gross violations surface as checked-arithmetic
// errors rather than wrong results.
func Average(
	divisions []Division,
	divisionSize uint64,
	windowSize uint64,
	blockTime uint64,
) (decimal.Dec, error) {
	if len(divisions) == 0 {
		return decimal.Dec{}, ErrNoDivisions
	}

	windowStartedAt, err := safemath.Sub(blockTime, windowSize)
	if err != nil {
		return decimal.Dec{}, fmt.Errorf("window of size %d extends before time zero at %d: %w",
			windowSize,
			blockTime,
			err,
		)
	}

	// The head division straddles the window boundary and is weighted by
	// only the portion of its span inside the window. Every later division
	// lies entirely inside the window and contributes in full.
	head := divisions[0]
	cumsumTotal, err := headContribution(head, divisionSize, windowStartedAt, blockTime)
	if err != nil {
		return decimal.Dec{}, err
	}
	for _, division := range divisions[1:] {
		contribution, err := division.contribution(divisionSize, blockTime)
		if err != nil {
			return decimal.Dec{}, err
		}
		cumsumTotal, err = cumsumTotal.Add(contribution)
		if err != nil {
			return decimal.Dec{}, err
		}
	}

	// The denominator is the window clipped to where data actually begins.
	totalElapsed, err := safemath.Sub(blockTime, safemath.Max(windowStartedAt, head.StartedAt))
	if err != nil {
		return decimal.Dec{}, err
	}
	if totalElapsed == 0 {
		return decimal.Dec{}, ErrZeroElapsedTime
	}
	return cumsumTotal.QuoUint64(totalElapsed)
}

// headContribution weights the oldest division by the portion of its span
// that falls inside the window starting at [windowStartedAt].
func headContribution(
	division Division,
	divisionSize uint64,
	windowStartedAt uint64,
	blockTime uint64,
) (decimal.Dec, error) {
	endedAt, err := division.EndedAt(divisionSize)
	if err != nil {
		return decimal.Dec{}, err
	}

	// Portion of the bucket's span at or after the window start, capped at
	// the full bucket span.
	remainingDivisionSize, err := safemath.Sub(endedAt, safemath.Max(windowStartedAt, division.StartedAt))
	if err != nil {
		return decimal.Dec{}, err
	}
	remainingDivisionSize = safemath.Min(remainingDivisionSize, divisionSize)

	// Span attributed to the still-open latest value.
	latestValueElapsed, err := safemath.Sub(safemath.Min(blockTime, endedAt), division.UpdatedAt)
	if err != nil {
		return decimal.Dec{}, err
	}

	if remainingDivisionSize <= latestValueElapsed {
		// The window starts inside the open interval; every closed interval
		// is behind the boundary and only the latest value contributes.
		return division.LatestValue.MulUint64(remainingDivisionSize)
	}

	openWeight, err := division.LatestValue.MulUint64(latestValueElapsed)
	if err != nil {
		return decimal.Dec{}, err
	}

	if windowStartedAt <= division.StartedAt {
		// The whole bucket is inside the window; no rescaling.
		return division.Cumsum.Add(openWeight)
	}

	// The window cuts into the closed intervals. Cumsum represents weight
	// spread over (UpdatedAt - StartedAt); scale it down to the fraction of
	// that span still inside the window.
	newCumsumWeight := remainingDivisionSize - latestValueElapsed
	originalCumsumWeight := division.UpdatedAt - division.StartedAt
	scaledCumsum, err := scaleCumsum(division.Cumsum, newCumsumWeight, originalCumsumWeight)
	if err != nil {
		return decimal.Dec{}, err
	}
	return scaledCumsum.Add(openWeight)
}

func scaleCumsum(cumsum decimal.Dec, newWeight, originalWeight uint64) (decimal.Dec, error) {
	if originalWeight == 0 {
		// A zero-length closed span carries zero weight.
		return cumsum, nil
	}
	fraction, err := decimal.FromRatio(newWeight, originalWeight)
	if err != nil {
		return decimal.Dec{}, err
	}
	return cumsum.Mul(fraction)
}
