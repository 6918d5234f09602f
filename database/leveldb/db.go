// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package leveldb provides a persistent database.Database backed by
// goleveldb.
package leveldb

import (
	"errors"
	"fmt"
	"slices"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/ava-labs/ratiolimit/database"

	ldbiterator "github.com/syndtr/goleveldb/leveldb/iterator"
)

const (
	// BlockCacheSize is the number of bytes to allocate to the block cache.
	BlockCacheSize = 8 * opt.MiB

	// WriteBufferSize is the number of bytes to buffer before flushing a
	// memtable to disk.
	WriteBufferSize = 4 * opt.MiB

	// HandleCap is the number of file descriptors leveldb may hold open.
	HandleCap = 64
)

var (
	_ database.Database = (*Database)(nil)
	_ database.Batch    = (*batch)(nil)
	_ database.Iterator = (*iterator)(nil)
)

// Database is a leveldb-backed implementation of database.Database.
type Database struct {
	db *leveldb.DB
}

// New opens, creating if needed, the database at [path].
func New(path string) (*Database, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		BlockCacheCapacity:     BlockCacheSize,
		WriteBuffer:            WriteBufferSize,
		OpenFilesCacheCapacity: HandleCap,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %q: %w", path, err)
	}
	return &Database{db: db}, nil
}

func (db *Database) Has(key []byte) (bool, error) {
	has, err := db.db.Has(key, nil)
	return has, updateError(err)
}

func (db *Database) Get(key []byte) ([]byte, error) {
	value, err := db.db.Get(key, nil)
	return value, updateError(err)
}

func (db *Database) Put(key, value []byte) error {
	return updateError(db.db.Put(key, value, nil))
}

func (db *Database) Delete(key []byte) error {
	return updateError(db.db.Delete(key, nil))
}

func (db *Database) NewBatch() database.Batch {
	return &batch{db: db}
}

func (db *Database) NewIterator() database.Iterator {
	return db.NewIteratorWithPrefix(nil)
}

func (db *Database) NewIteratorWithPrefix(prefix []byte) database.Iterator {
	return &iterator{
		inner: db.db.NewIterator(util.BytesPrefix(prefix), nil),
	}
}

func (db *Database) Close() error {
	return updateError(db.db.Close())
}

// updateError converts goleveldb errors to their database equivalents.
func updateError(err error) error {
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		return database.ErrNotFound
	case errors.Is(err, leveldb.ErrClosed):
		return database.ErrClosed
	default:
		return err
	}
}

type batch struct {
	database.BatchOps

	db *Database
}

func (b *batch) Write() error {
	inner := new(leveldb.Batch)
	for _, op := range b.Ops {
		if op.Delete {
			inner.Delete(op.Key)
		} else {
			inner.Put(op.Key, op.Value)
		}
	}
	return updateError(b.db.db.Write(inner, nil))
}

type iterator struct {
	inner ldbiterator.Iterator
}

func (it *iterator) Next() bool {
	return it.inner.Next()
}

func (it *iterator) Error() error {
	return updateError(it.inner.Error())
}

// Key clones the key; goleveldb reuses its buffers between calls to Next.
func (it *iterator) Key() []byte {
	return slices.Clone(it.inner.Key())
}

func (it *iterator) Value() []byte {
	return slices.Clone(it.inner.Value())
}

func (it *iterator) Release() {
	it.inner.Release()
}
