// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package limiter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWindowConfigVerify(t *testing.T) {
	tests := []struct {
		name        string
		config      WindowConfig
		expectedErr error
	}{
		{
			name: "valid",
			config: WindowConfig{
				WindowSize:    1000,
				DivisionCount: 10,
			},
		},
		{
			name: "single division",
			config: WindowConfig{
				WindowSize:    1000,
				DivisionCount: 1,
			},
		},
		{
			name: "zero window",
			config: WindowConfig{
				DivisionCount: 10,
			},
			expectedErr: ErrZeroWindowSize,
		},
		{
			name: "zero division count",
			config: WindowConfig{
				WindowSize: 1000,
			},
			expectedErr: ErrZeroDivisionCount,
		},
		{
			name: "too many divisions",
			config: WindowConfig{
				WindowSize:    1000,
				DivisionCount: MaxDivisionCount + 1,
			},
			expectedErr: ErrDivisionCountExceeded,
		},
		{
			name: "uneven division",
			config: WindowConfig{
				WindowSize:    1000,
				DivisionCount: 7,
			},
			expectedErr: ErrUnevenWindowDivision,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Verify()
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestDivisionSize(t *testing.T) {
	config := WindowConfig{
		WindowSize:    1000,
		DivisionCount: 10,
	}
	require.Equal(t, uint64(100), config.DivisionSize())
}
