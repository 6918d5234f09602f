// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package database defines the key-value database interface used for
// persisting limiter state.
package database

import "io"

// Uint64Size is the encoded size of a big-endian uint64.
const Uint64Size = 8 // bytes

// KeyValueReader defines read operations.
type KeyValueReader interface {
	// Has returns whether [key] is present.
	Has(key []byte) (bool, error)

	// Get returns the value [key] maps to, or ErrNotFound.
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter defines write operations.
type KeyValueWriter interface {
	// Put sets the value [key] maps to.
	Put(key, value []byte) error
}

// KeyValueDeleter defines delete operations.
type KeyValueDeleter interface {
	// Delete removes [key]. Deleting an absent key is not an error.
	Delete(key []byte) error
}

// KeyValueReaderWriterDeleter groups the basic operations.
type KeyValueReaderWriterDeleter interface {
	KeyValueReader
	KeyValueWriter
	KeyValueDeleter
}

// Batch accumulates writes that are applied atomically on Write.
type Batch interface {
	KeyValueWriter
	KeyValueDeleter

	// Size returns the number of bytes queued in the batch.
	Size() int

	// Write applies every queued operation to the underlying database.
	Write() error

	// Reset empties the batch for reuse.
	Reset()
}

// Batcher creates batches.
type Batcher interface {
	NewBatch() Batch
}

// Iterator walks key-value pairs in ascending key order.
type Iterator interface {
	// Next advances the iterator and reports whether a pair is available.
	Next() bool

	// Error returns the error that stopped iteration, if any.
	Error() error

	// Key returns the current key. Invalidated by Next.
	Key() []byte

	// Value returns the current value. Invalidated by Next.
	Value() []byte

	// Release frees the iterator's resources.
	Release()
}

// Iteratee creates iterators.
type Iteratee interface {
	NewIterator() Iterator

	// NewIteratorWithPrefix returns an iterator over keys with [prefix].
	NewIteratorWithPrefix(prefix []byte) Iterator
}

// Database is a persistent ordered key-value store.
type Database interface {
	KeyValueReaderWriterDeleter
	Batcher
	Iteratee
	io.Closer
}
