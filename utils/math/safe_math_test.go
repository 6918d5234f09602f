// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package math

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	require := require.New(t)

	sum, err := Add(uint64(0), uint64(0))
	require.NoError(err)
	require.Zero(sum)

	sum, err = Add(uint64(1), uint64(math.MaxUint64-1))
	require.NoError(err)
	require.Equal(uint64(math.MaxUint64), sum)

	_, err = Add(uint64(1), uint64(math.MaxUint64))
	require.ErrorIs(err, ErrOverflow)

	_, err = Add(uint64(math.MaxUint64), uint64(math.MaxUint64))
	require.ErrorIs(err, ErrOverflow)
}

func TestSub(t *testing.T) {
	require := require.New(t)

	diff, err := Sub(uint64(2), uint64(1))
	require.NoError(err)
	require.Equal(uint64(1), diff)

	diff, err = Sub(uint64(2), uint64(2))
	require.NoError(err)
	require.Zero(diff)

	_, err = Sub(uint64(1), uint64(2))
	require.ErrorIs(err, ErrUnderflow)
}

func TestMul(t *testing.T) {
	require := require.New(t)

	prod, err := Mul(uint64(0), uint64(math.MaxUint64))
	require.NoError(err)
	require.Zero(prod)

	prod, err = Mul(uint64(1), uint64(math.MaxUint64))
	require.NoError(err)
	require.Equal(uint64(math.MaxUint64), prod)

	_, err = Mul(uint64(2), uint64(math.MaxUint64))
	require.ErrorIs(err, ErrOverflow)

	_, err = Mul(uint64(math.MaxUint64), uint64(math.MaxUint64))
	require.ErrorIs(err, ErrOverflow)
}

func TestMinMax(t *testing.T) {
	require := require.New(t)

	require.Equal(uint64(1), Min(uint64(1), uint64(2)))
	require.Equal(uint64(1), Min(uint64(2), uint64(1)))
	require.Equal(uint64(2), Max(uint64(1), uint64(2)))
	require.Equal(uint64(2), Max(uint64(2), uint64(1)))
}
