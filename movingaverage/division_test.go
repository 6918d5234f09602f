// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package movingaverage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/ratiolimit/decimal"

	safemath "github.com/ava-labs/ratiolimit/utils/math"
)

func TestNewDivision(t *testing.T) {
	require := require.New(t)

	division, err := NewDivision(90, 100, decimal.Percent(20), decimal.Percent(10))
	require.NoError(err)
	require.Equal(Division{
		StartedAt:   90,
		UpdatedAt:   100,
		LatestValue: decimal.Percent(20),
		// 10% over the 10ns the previous value was current
		Cumsum: decimal.NewDec(1),
	}, division)
}

func TestNewDivisionZeroElapsed(t *testing.T) {
	// Zero elapsed time carries zero weight regardless of the previous
	// value.
	prevValues := []decimal.Dec{
		{},
		decimal.Percent(10),
		decimal.NewDec(math.MaxUint64),
	}
	for _, prevValue := range prevValues {
		division, err := NewDivision(100, 100, decimal.Percent(20), prevValue)
		require.NoError(t, err)
		require.True(t, division.Cumsum.IsZero())
	}
}

func TestNewDivisionInvalidTemporalOrder(t *testing.T) {
	tests := []struct {
		startedAt uint64
		updatedAt uint64
	}{
		{startedAt: 1, updatedAt: 0},
		{startedAt: 100, updatedAt: 99},
		{startedAt: math.MaxUint64, updatedAt: 0},
	}
	for _, tt := range tests {
		_, err := NewDivision(tt.startedAt, tt.updatedAt, decimal.Percent(20), decimal.Percent(10))
		require.ErrorIs(t, err, ErrInvalidTemporalOrder)
	}
}

func TestUpdate(t *testing.T) {
	require := require.New(t)

	division, err := NewDivision(90, 100, decimal.Percent(20), decimal.Percent(10))
	require.NoError(err)

	updated, err := division.Update(120, decimal.Percent(30))
	require.NoError(err)

	// The open interval (20% for 20ns) is folded into the cumulative sum
	// and the new value opens a fresh interval.
	expectedCumsum, err := decimal.NewDec(1).Add(decimal.NewDec(4))
	require.NoError(err)
	require.Equal(Division{
		StartedAt:   90,
		UpdatedAt:   120,
		LatestValue: decimal.Percent(30),
		Cumsum:      expectedCumsum,
	}, updated)

	// The original value is untouched.
	require.Equal(uint64(100), division.UpdatedAt)
	require.Equal(decimal.Percent(20), division.LatestValue)
}

func TestUpdateZeroElapsed(t *testing.T) {
	require := require.New(t)

	division, err := NewDivision(90, 100, decimal.Percent(20), decimal.Percent(10))
	require.NoError(err)

	// Updating at the same instant only replaces the latest value.
	updated, err := division.Update(100, decimal.Percent(50))
	require.NoError(err)
	require.Equal(division.Cumsum, updated.Cumsum)
	require.Equal(division.UpdatedAt, updated.UpdatedAt)
	require.Equal(decimal.Percent(50), updated.LatestValue)
}

func TestUpdateDecreasingTime(t *testing.T) {
	require := require.New(t)

	division, err := NewDivision(90, 100, decimal.Percent(20), decimal.Percent(10))
	require.NoError(err)

	_, err = division.Update(99, decimal.Percent(30))
	require.ErrorIs(err, safemath.ErrUnderflow)
}

func TestOutdated(t *testing.T) {
	division, err := NewDivision(1100, 1110, decimal.Percent(20), decimal.Percent(10))
	require.NoError(t, err)

	tests := []struct {
		name      string
		blockTime uint64
		expected  bool
	}{
		{
			name:      "bucket ends inside window",
			blockTime: 2150,
			expected:  false,
		},
		{
			name:      "bucket ends exactly at window start",
			blockTime: 2200,
			expected:  true,
		},
		{
			name:      "bucket fully behind window",
			blockTime: 5000,
			expected:  true,
		},
		{
			name:      "window extends before time zero",
			blockTime: 900,
			expected:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outdated, err := division.Outdated(tt.blockTime, 1000, 100)
			require.NoError(t, err)
			require.Equal(t, tt.expected, outdated)
		})
	}
}

func TestNextStartedAt(t *testing.T) {
	division, err := NewDivision(1100, 1110, decimal.Percent(20), decimal.Percent(10))
	require.NoError(t, err)

	tests := []struct {
		name      string
		blockTime uint64
		expected  uint64
	}{
		{
			name:      "inside the current bucket",
			blockTime: 1150,
			expected:  1100,
		},
		{
			name:      "start of the next bucket",
			blockTime: 1200,
			expected:  1200,
		},
		{
			name:      "inside a later bucket",
			blockTime: 1555,
			expected:  1500,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			startedAt, err := division.NextStartedAt(100, tt.blockTime)
			require.NoError(t, err)
			require.Equal(t, tt.expected, startedAt)
		})
	}

	_, err = division.NextStartedAt(0, 1150)
	require.ErrorIs(t, err, ErrZeroDivisionSize)
}
