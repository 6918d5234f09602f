// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package decimal implements a non-negative fixed point decimal with 18
// fractional digits over a 256-bit unsigned integer.
//
// Every operation is checked and fallible. Nothing wraps, saturates, or
// rounds silently: quotients truncate toward zero and everything else
// either fits or errors. This is what allows values derived from this
// package to be reproduced bit-for-bit across independent executions.
package decimal

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// Decimals is the number of fractional digits carried by a Dec.
const Decimals = 18

var (
	ErrOverflow     = errors.New("decimal overflow")
	ErrUnderflow    = errors.New("decimal underflow")
	ErrDivideByZero = errors.New("decimal division by zero")

	// scale is 10^Decimals, the number of atoms in 1.0.
	scale      = uint256.NewInt(1_000_000_000_000_000_000)
	scaleFloat = new(big.Float).SetInt(scale.ToBig())
)

// Dec is a fixed point decimal. The zero value is 0.
type Dec struct {
	atoms uint256.Int
}

// NewDec returns n as a Dec.
func NewDec(n uint64) Dec {
	var d Dec
	d.atoms.Mul(uint256.NewInt(n), scale)
	return d
}

// Percent returns n/100 as a Dec.
func Percent(n uint64) Dec {
	var d Dec
	d.atoms.Mul(uint256.NewInt(n), uint256.NewInt(10_000_000_000_000_000))
	return d
}

// Permille returns n/1000 as a Dec.
func Permille(n uint64) Dec {
	var d Dec
	d.atoms.Mul(uint256.NewInt(n), uint256.NewInt(1_000_000_000_000_000))
	return d
}

// FromRatio returns num/den as a Dec, truncated toward zero.
func FromRatio(num, den uint64) (Dec, error) {
	if den == 0 {
		return Dec{}, fmt.Errorf("%w: %d/%d", ErrDivideByZero, num, den)
	}
	var d Dec
	d.atoms.Mul(uint256.NewInt(num), scale)
	d.atoms.Div(&d.atoms, uint256.NewInt(den))
	return d, nil
}

// FromBytes parses the 32-byte big-endian form produced by Bytes.
func FromBytes(b []byte) (Dec, error) {
	if len(b) != 32 {
		return Dec{}, fmt.Errorf("expected 32 bytes but got %d", len(b))
	}
	var d Dec
	d.atoms.SetBytes(b)
	return d, nil
}

// Parse parses a decimal string such as "0.05" or "12". At most Decimals
// fractional digits are allowed.
func Parse(s string) (Dec, error) {
	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" || len(fracPart) > Decimals {
		return Dec{}, fmt.Errorf("invalid decimal %q", s)
	}

	var d Dec
	if err := d.atoms.SetFromDecimal(intPart); err != nil {
		return Dec{}, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	if _, overflow := d.atoms.MulOverflow(&d.atoms, scale); overflow {
		return Dec{}, fmt.Errorf("%w: %q", ErrOverflow, s)
	}
	if fracPart == "" {
		return d, nil
	}

	var frac uint256.Int
	if err := frac.SetFromDecimal(fracPart); err != nil {
		return Dec{}, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	for i := len(fracPart); i < Decimals; i++ {
		frac.Mul(&frac, uint256.NewInt(10))
	}
	if _, overflow := d.atoms.AddOverflow(&d.atoms, &frac); overflow {
		return Dec{}, fmt.Errorf("%w: %q", ErrOverflow, s)
	}
	return d, nil
}

// Add returns d + o or ErrOverflow.
func (d Dec) Add(o Dec) (Dec, error) {
	var sum Dec
	if _, overflow := sum.atoms.AddOverflow(&d.atoms, &o.atoms); overflow {
		return Dec{}, fmt.Errorf("%w: %s + %s", ErrOverflow, d, o)
	}
	return sum, nil
}

// Sub returns d - o or, if o > d, ErrUnderflow.
func (d Dec) Sub(o Dec) (Dec, error) {
	var diff Dec
	if _, underflow := diff.atoms.SubOverflow(&d.atoms, &o.atoms); underflow {
		return Dec{}, fmt.Errorf("%w: %s - %s", ErrUnderflow, d, o)
	}
	return diff, nil
}

// Mul returns d * o, truncated toward zero, or ErrOverflow.
func (d Dec) Mul(o Dec) (Dec, error) {
	var prod Dec
	if _, overflow := prod.atoms.MulOverflow(&d.atoms, &o.atoms); overflow {
		return Dec{}, fmt.Errorf("%w: %s * %s", ErrOverflow, d, o)
	}
	prod.atoms.Div(&prod.atoms, scale)
	return prod, nil
}

// MulUint64 returns d * n or ErrOverflow. It is the weighting operation of
// the moving average: a ratio times a duration in nanoseconds.
func (d Dec) MulUint64(n uint64) (Dec, error) {
	var prod Dec
	if _, overflow := prod.atoms.MulOverflow(&d.atoms, uint256.NewInt(n)); overflow {
		return Dec{}, fmt.Errorf("%w: %s * %d", ErrOverflow, d, n)
	}
	return prod, nil
}

// Quo returns d / o, truncated toward zero.
func (d Dec) Quo(o Dec) (Dec, error) {
	if o.IsZero() {
		return Dec{}, fmt.Errorf("%w: %s / 0", ErrDivideByZero, d)
	}
	var quo Dec
	if _, overflow := quo.atoms.MulOverflow(&d.atoms, scale); overflow {
		return Dec{}, fmt.Errorf("%w: %s / %s", ErrOverflow, d, o)
	}
	quo.atoms.Div(&quo.atoms, &o.atoms)
	return quo, nil
}

// QuoUint64 returns d / n, truncated toward zero.
func (d Dec) QuoUint64(n uint64) (Dec, error) {
	if n == 0 {
		return Dec{}, fmt.Errorf("%w: %s / 0", ErrDivideByZero, d)
	}
	var quo Dec
	quo.atoms.Div(&d.atoms, uint256.NewInt(n))
	return quo, nil
}

// Cmp returns -1, 0, or 1 depending on whether d is less than, equal to, or
// greater than o.
func (d Dec) Cmp(o Dec) int {
	return d.atoms.Cmp(&o.atoms)
}

func (d Dec) IsZero() bool {
	return d.atoms.IsZero()
}

// Bytes returns the 32-byte big-endian form of d, for persistence.
func (d Dec) Bytes() [32]byte {
	return d.atoms.Bytes32()
}

// Float64 returns the nearest float64. Lossy; for display and metrics only,
// never for consensus-visible state.
func (d Dec) Float64() float64 {
	f := new(big.Float).SetInt(d.atoms.ToBig())
	f.Quo(f, scaleFloat)
	res, _ := f.Float64()
	return res
}

// String returns the shortest decimal form of d, such as "0.05".
func (d Dec) String() string {
	var q, r uint256.Int
	q.DivMod(&d.atoms, scale, &r)
	if r.IsZero() {
		return q.Dec()
	}
	frac := fmt.Sprintf("%0*s", Decimals, r.Dec())
	return q.Dec() + "." + strings.TrimRight(frac, "0")
}
