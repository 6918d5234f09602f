// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package limiter

import (
	"fmt"
	"slices"

	"github.com/ava-labs/ratiolimit/decimal"
	"github.com/ava-labs/ratiolimit/movingaverage"
)

// Kind discriminates limiter implementations in persisted state.
type Kind uint8

const (
	ChangeKind Kind = iota + 1
	StaticKind
)

func (k Kind) String() string {
	switch k {
	case ChangeKind:
		return "change"
	case StaticKind:
		return "static"
	default:
		return "unknown"
	}
}

// Snapshot is the persistable form of a limiter. Window, BoundaryOffset,
// and Divisions are only populated for change limiters; UpperLimit only for
// static limiters.
type Snapshot struct {
	Kind           Kind                     `json:"kind"`
	Window         WindowConfig             `json:"window,omitempty"`
	BoundaryOffset decimal.Dec              `json:"boundaryOffset,omitempty"`
	UpperLimit     decimal.Dec              `json:"upperLimit,omitempty"`
	LatestValue    decimal.Dec              `json:"latestValue"`
	Divisions      []movingaverage.Division `json:"divisions,omitempty"`
}

// FromSnapshot rebuilds a limiter from its persisted form, revalidating its
// configuration.
func FromSnapshot(snapshot Snapshot) (Limiter, error) {
	switch snapshot.Kind {
	case ChangeKind:
		l, err := NewChangeLimiter(snapshot.Window, snapshot.BoundaryOffset)
		if err != nil {
			return nil, err
		}
		l.divisions = slices.Clone(snapshot.Divisions)
		l.latestValue = snapshot.LatestValue
		return l, nil
	case StaticKind:
		l, err := NewStaticLimiter(snapshot.UpperLimit)
		if err != nil {
			return nil, err
		}
		l.latestValue = snapshot.LatestValue
		return l, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, snapshot.Kind)
	}
}
