// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package prefixdb namespaces a database so that multiple components can
// share one backing store without key collisions.
package prefixdb

import (
	"slices"

	"github.com/ava-labs/ratiolimit/database"
)

var (
	_ database.Database = (*Database)(nil)
	_ database.Batch    = (*batch)(nil)
	_ database.Iterator = (*iterator)(nil)
)

// Database prefixes every key before delegating to the underlying store.
type Database struct {
	prefix []byte
	db     database.Database
}

func New(prefix []byte, db database.Database) *Database {
	return &Database{
		prefix: slices.Clone(prefix),
		db:     db,
	}
}

func (db *Database) prefixKey(key []byte) []byte {
	prefixed := make([]byte, 0, len(db.prefix)+len(key))
	prefixed = append(prefixed, db.prefix...)
	return append(prefixed, key...)
}

func (db *Database) Has(key []byte) (bool, error) {
	return db.db.Has(db.prefixKey(key))
}

func (db *Database) Get(key []byte) ([]byte, error) {
	return db.db.Get(db.prefixKey(key))
}

func (db *Database) Put(key, value []byte) error {
	return db.db.Put(db.prefixKey(key), value)
}

func (db *Database) Delete(key []byte) error {
	return db.db.Delete(db.prefixKey(key))
}

func (db *Database) NewBatch() database.Batch {
	return &batch{
		db:    db,
		inner: db.db.NewBatch(),
	}
}

func (db *Database) NewIterator() database.Iterator {
	return db.NewIteratorWithPrefix(nil)
}

func (db *Database) NewIteratorWithPrefix(prefix []byte) database.Iterator {
	return &iterator{
		prefixLen: len(db.prefix),
		inner:     db.db.NewIteratorWithPrefix(db.prefixKey(prefix)),
	}
}

// Close closes this view; the underlying database stays open.
func (*Database) Close() error {
	return nil
}

type batch struct {
	database.BatchOps

	db    *Database
	inner database.Batch
}

func (b *batch) Write() error {
	b.inner.Reset()
	for _, op := range b.Ops {
		if op.Delete {
			if err := b.inner.Delete(b.db.prefixKey(op.Key)); err != nil {
				return err
			}
		} else if err := b.inner.Put(b.db.prefixKey(op.Key), op.Value); err != nil {
			return err
		}
	}
	return b.inner.Write()
}

// iterator strips the namespace prefix from yielded keys.
type iterator struct {
	prefixLen int
	inner     database.Iterator
}

func (it *iterator) Next() bool {
	return it.inner.Next()
}

func (it *iterator) Error() error {
	return it.inner.Error()
}

func (it *iterator) Key() []byte {
	key := it.inner.Key()
	if len(key) >= it.prefixLen {
		return key[it.prefixLen:]
	}
	return key
}

func (it *iterator) Value() []byte {
	return it.inner.Value()
}

func (it *iterator) Release() {
	it.inner.Release()
}
