// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package limiter bounds how fast a tracked ratio may change over time.
//
// A ChangeLimiter compresses the ratio's history into time-bucketed
// divisions and rejects samples that exceed the windowed moving average by
// more than a configured offset. A StaticLimiter rejects samples above a
// fixed ceiling. Limiters for multiple scopes are managed by a Registry.
package limiter

import (
	"fmt"
	"slices"

	"github.com/ava-labs/ratiolimit/decimal"
	"github.com/ava-labs/ratiolimit/movingaverage"
)

var (
	_ Limiter = (*ChangeLimiter)(nil)
	_ Limiter = (*StaticLimiter)(nil)
)

// Limiter bounds the tracked ratio.
type Limiter interface {
	// CheckAndUpdate errors if [value] observed at [blockTime] breaches
	// the limiter's bound and records the sample otherwise. blockTime is
	// in nanoseconds and must never decrease across calls.
	CheckAndUpdate(blockTime uint64, value decimal.Dec) error

	// Snapshot returns the limiter's persistable form.
	Snapshot() Snapshot
}

// ChangeLimiter rejects samples that drift above the ratio's recent
// time-weighted average by more than the boundary offset. A fresh limiter
// has no history and accepts the first sample unconditionally.
type ChangeLimiter struct {
	window         WindowConfig
	boundaryOffset decimal.Dec
	divisions      []movingaverage.Division
	latestValue    decimal.Dec
}

func NewChangeLimiter(window WindowConfig, boundaryOffset decimal.Dec) (*ChangeLimiter, error) {
	if err := window.Verify(); err != nil {
		return nil, err
	}
	if boundaryOffset.IsZero() {
		return nil, ErrZeroBoundaryOffset
	}
	return &ChangeLimiter{
		window:         window,
		boundaryOffset: boundaryOffset,
	}, nil
}

func (l *ChangeLimiter) CheckAndUpdate(blockTime uint64, value decimal.Dec) error {
	if n := len(l.divisions); n > 0 && blockTime < l.divisions[n-1].UpdatedAt {
		return fmt.Errorf("%w: block time %d is behind the last update %d",
			ErrNonMonotonicTime,
			blockTime,
			l.divisions[n-1].UpdatedAt,
		)
	}

	if err := l.evictOutdated(blockTime); err != nil {
		return err
	}

	// With every division evicted there is no history to bound against,
	// the same as for a fresh limiter.
	if len(l.divisions) > 0 {
		average, err := movingaverage.Average(
			l.divisions,
			l.window.DivisionSize(),
			l.window.WindowSize,
			blockTime,
		)
		if err != nil {
			return err
		}
		upperLimit, err := average.Add(l.boundaryOffset)
		if err != nil {
			return err
		}
		if value.Cmp(upperLimit) > 0 {
			return fmt.Errorf("%w: upper limit is %s but value is %s",
				ErrUpperLimitExceeded,
				upperLimit,
				value,
			)
		}
	}

	if err := l.record(blockTime, value); err != nil {
		return err
	}
	l.latestValue = value
	return nil
}

// evictOutdated drops leading divisions whose whole span has exited the
// window. Divisions are ordered oldest first, so eviction stops at the
// first one still inside.
func (l *ChangeLimiter) evictOutdated(blockTime uint64) error {
	divisionSize := l.window.DivisionSize()
	keep := 0
	for ; keep < len(l.divisions); keep++ {
		outdated, err := l.divisions[keep].Outdated(blockTime, l.window.WindowSize, divisionSize)
		if err != nil {
			return err
		}
		if !outdated {
			break
		}
	}
	l.divisions = slices.Delete(l.divisions, 0, keep)
	return nil
}

// record lands the sample in the active division, or opens an aligned
// successor seeded with the previous latest value if the active division's
// span has fully elapsed.
func (l *ChangeLimiter) record(blockTime uint64, value decimal.Dec) error {
	divisionSize := l.window.DivisionSize()

	if len(l.divisions) == 0 {
		division, err := movingaverage.NewDivision(blockTime, blockTime, value, l.latestValue)
		if err != nil {
			return err
		}
		l.divisions = append(l.divisions, division)
		return nil
	}

	latest := l.divisions[len(l.divisions)-1]
	endedAt, err := latest.EndedAt(divisionSize)
	if err != nil {
		return err
	}
	if blockTime < endedAt {
		updated, err := latest.Update(blockTime, value)
		if err != nil {
			return err
		}
		l.divisions[len(l.divisions)-1] = updated
		return nil
	}

	startedAt, err := latest.NextStartedAt(divisionSize, blockTime)
	if err != nil {
		return err
	}
	division, err := movingaverage.NewDivision(startedAt, blockTime, value, latest.LatestValue)
	if err != nil {
		return err
	}
	l.divisions = append(l.divisions, division)
	return nil
}

func (l *ChangeLimiter) Snapshot() Snapshot {
	return Snapshot{
		Kind:           ChangeKind,
		Window:         l.window,
		BoundaryOffset: l.boundaryOffset,
		LatestValue:    l.latestValue,
		Divisions:      slices.Clone(l.divisions),
	}
}

// StaticLimiter rejects samples above a fixed ceiling in (0%, 100%].
type StaticLimiter struct {
	upperLimit  decimal.Dec
	latestValue decimal.Dec
}

func NewStaticLimiter(upperLimit decimal.Dec) (*StaticLimiter, error) {
	if upperLimit.IsZero() {
		return nil, ErrZeroUpperLimit
	}
	if upperLimit.Cmp(decimal.NewDec(1)) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUpperLimitTooHigh, upperLimit)
	}
	return &StaticLimiter{upperLimit: upperLimit}, nil
}

func (l *StaticLimiter) CheckAndUpdate(_ uint64, value decimal.Dec) error {
	if value.Cmp(l.upperLimit) > 0 {
		return fmt.Errorf("%w: upper limit is %s but value is %s",
			ErrUpperLimitExceeded,
			l.upperLimit,
			value,
		)
	}
	l.latestValue = value
	return nil
}

func (l *StaticLimiter) Snapshot() Snapshot {
	return Snapshot{
		Kind:        StaticKind,
		UpperLimit:  l.upperLimit,
		LatestValue: l.latestValue,
	}
}
