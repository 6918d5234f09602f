// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package limiter

import "errors"

var (
	// Window configuration
	ErrZeroWindowSize        = errors.New("window size must be greater than zero")
	ErrZeroDivisionCount     = errors.New("division count must be greater than zero")
	ErrUnevenWindowDivision  = errors.New("window must be evenly divisible by division size")
	ErrDivisionCountExceeded = errors.New("division count exceeds maximum")

	// Limiter configuration
	ErrZeroBoundaryOffset = errors.New("boundary offset must be greater than zero")
	ErrZeroUpperLimit     = errors.New("upper limit must be greater than zero")
	ErrUpperLimitTooHigh  = errors.New("upper limit must not exceed 100%")
	ErrUnknownKind        = errors.New("unknown limiter kind")

	// Runtime violations
	ErrUpperLimitExceeded = errors.New("upper limit exceeded")
	ErrNonMonotonicTime   = errors.New("time must be monotonically increasing")

	// Registry
	ErrEmptyLabel       = errors.New("limiter label must not be empty")
	ErrLimiterExists    = errors.New("limiter already exists")
	ErrLimiterNotFound  = errors.New("limiter does not exist")
	ErrTooManyLimiters  = errors.New("limiter count exceeds maximum per scope")
	ErrWrongLimiterKind = errors.New("wrong limiter kind")
)
