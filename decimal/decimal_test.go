// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package decimal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	require := require.New(t)

	require.Equal("5", NewDec(5).String())
	require.Equal("0.1", Percent(10).String())
	require.Equal("1.5", Percent(150).String())
	require.Equal("0.005", Permille(5).String())

	third, err := FromRatio(1, 3)
	require.NoError(err)
	require.Equal("0.333333333333333333", third.String())

	two, err := FromRatio(4, 2)
	require.NoError(err)
	require.Equal(NewDec(2), two)

	_, err = FromRatio(1, 0)
	require.ErrorIs(err, ErrDivideByZero)
}

func TestParse(t *testing.T) {
	tests := []struct {
		in       string
		expected Dec
		wantErr  bool
	}{
		{in: "0", expected: Dec{}},
		{in: "12", expected: NewDec(12)},
		{in: "0.05", expected: Percent(5)},
		{in: "1.5", expected: Percent(150)},
		{in: "0.333333333333333333", expected: mustFromRatio(t, 1, 3)},
		{in: "", wantErr: true},
		{in: ".5", wantErr: true},
		{in: "1.0000000000000000001", wantErr: true}, // 19 fractional digits
		{in: "abc", wantErr: true},
		{in: "-1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require := require.New(t)

			d, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(err)
				return
			}
			require.NoError(err)
			require.Equal(tt.expected, d)
		})
	}
}

func TestCheckedOps(t *testing.T) {
	require := require.New(t)

	sum, err := Percent(10).Add(Percent(20))
	require.NoError(err)
	require.Equal(Percent(30), sum)

	diff, err := Percent(30).Sub(Percent(10))
	require.NoError(err)
	require.Equal(Percent(20), diff)

	_, err = Percent(10).Sub(Percent(20))
	require.ErrorIs(err, ErrUnderflow)

	prod, err := Percent(50).Mul(Percent(50))
	require.NoError(err)
	require.Equal(Percent(25), prod)

	weighted, err := Percent(10).MulUint64(10)
	require.NoError(err)
	require.Equal(NewDec(1), weighted)

	quo, err := NewDec(9).QuoUint64(50)
	require.NoError(err)
	require.Equal(Percent(18), quo)

	_, err = NewDec(1).QuoUint64(0)
	require.ErrorIs(err, ErrDivideByZero)

	quo, err = NewDec(1).Quo(NewDec(4))
	require.NoError(err)
	require.Equal(Percent(25), quo)

	_, err = NewDec(1).Quo(Dec{})
	require.ErrorIs(err, ErrDivideByZero)
}

func TestQuoTruncates(t *testing.T) {
	require := require.New(t)

	// 1/3 with 18 digits of precision, truncated rather than rounded.
	quo, err := NewDec(1).QuoUint64(3)
	require.NoError(err)
	require.Equal("0.333333333333333333", quo.String())

	// 2/3 would round up to ...667; truncation keeps ...666.
	quo, err = NewDec(2).QuoUint64(3)
	require.NoError(err)
	require.Equal("0.666666666666666666", quo.String())
}

func TestOverflow(t *testing.T) {
	require := require.New(t)

	// 58 integer digits is close to the 256-bit ceiling once scaled by 1e18.
	huge, err := Parse(strings.Repeat("9", 58))
	require.NoError(err)

	_, err = huge.Mul(huge)
	require.ErrorIs(err, ErrOverflow)

	_, err = huge.MulUint64(1 << 10)
	require.ErrorIs(err, ErrOverflow)

	sum, err := huge.Add(huge)
	require.NoError(err) // still fits in 256 bits
	require.Equal(1, sum.Cmp(huge))

	// Parses as an integer but cannot be scaled to atoms.
	_, err = Parse(strings.Repeat("9", 60))
	require.ErrorIs(err, ErrOverflow)
}

func TestBytesRoundTrip(t *testing.T) {
	require := require.New(t)

	d := mustFromRatio(t, 123456789, 97)
	b := d.Bytes()
	parsed, err := FromBytes(b[:])
	require.NoError(err)
	require.Equal(d, parsed)

	_, err = FromBytes([]byte{1, 2, 3})
	require.Error(err)
}

func TestCmp(t *testing.T) {
	require := require.New(t)

	require.Equal(-1, Percent(10).Cmp(Percent(20)))
	require.Equal(0, Percent(10).Cmp(Percent(10)))
	require.Equal(1, Percent(20).Cmp(Percent(10)))
	require.True(Dec{}.IsZero())
	require.False(Percent(1).IsZero())
}

func mustFromRatio(t *testing.T, num, den uint64) Dec {
	t.Helper()

	d, err := FromRatio(num, den)
	require.NoError(t, err)
	return d
}
