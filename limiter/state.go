// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package limiter

// Key identifies a limiter. The scope names the tracked ratio the limiter
// guards, typically an asset identifier; the label distinguishes multiple
// limiters over the same scope.
type Key struct {
	Scope string
	Label string
}

// State persists limiters across restarts. Implementations live in
// limiter/limiterstate; a Registry with a nil State is purely in-memory.
//
// Writes are staged: PutLimiter and DeleteLimiter accumulate until Commit
// applies them atomically. A staging error discards every pending write.
type State interface {
	// GetLimiters returns every committed limiter.
	GetLimiters() (map[Key]Snapshot, error)

	// PutLimiter stages the snapshot under [key], overwriting any previous
	// snapshot on Commit.
	PutLimiter(key Key, snapshot Snapshot) error

	// DeleteLimiter stages removal of the snapshot under [key].
	DeleteLimiter(key Key) error

	// Commit atomically applies every staged write. Either all of them
	// land or none do.
	Commit() error
}
