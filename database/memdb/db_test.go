// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memdb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/ratiolimit/database"
)

func TestPutGetDelete(t *testing.T) {
	require := require.New(t)

	db := New()

	_, err := db.Get([]byte("key"))
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(db.Put([]byte("key"), []byte("value")))

	has, err := db.Has([]byte("key"))
	require.NoError(err)
	require.True(has)

	value, err := db.Get([]byte("key"))
	require.NoError(err)
	require.Equal([]byte("value"), value)

	require.NoError(db.Delete([]byte("key")))

	has, err = db.Has([]byte("key"))
	require.NoError(err)
	require.False(has)
}

func TestGetClones(t *testing.T) {
	require := require.New(t)

	db := New()

	value := []byte("value")
	require.NoError(db.Put([]byte("key"), value))
	value[0] = 'x'

	stored, err := db.Get([]byte("key"))
	require.NoError(err)
	require.Equal([]byte("value"), stored)
}

func TestClosed(t *testing.T) {
	require := require.New(t)

	db := New()
	require.NoError(db.Close())

	_, err := db.Get([]byte("key"))
	require.ErrorIs(err, database.ErrClosed)

	err = db.Put([]byte("key"), []byte("value"))
	require.ErrorIs(err, database.ErrClosed)

	err = db.Close()
	require.ErrorIs(err, database.ErrClosed)

	it := db.NewIterator()
	defer it.Release()
	require.False(it.Next())
	require.ErrorIs(it.Error(), database.ErrClosed)
}

func TestIteratorSortedWithPrefix(t *testing.T) {
	require := require.New(t)

	db := New()
	require.NoError(db.Put([]byte("b/2"), []byte("v2")))
	require.NoError(db.Put([]byte("a/9"), []byte("v9")))
	require.NoError(db.Put([]byte("b/1"), []byte("v1")))

	it := db.NewIteratorWithPrefix([]byte("b/"))
	defer it.Release()

	require.True(it.Next())
	require.Equal([]byte("b/1"), it.Key())
	require.Equal([]byte("v1"), it.Value())
	require.True(it.Next())
	require.Equal([]byte("b/2"), it.Key())
	require.False(it.Next())
	require.NoError(it.Error())
}

func TestBatch(t *testing.T) {
	require := require.New(t)

	db := New()
	require.NoError(db.Put([]byte("stale"), []byte("value")))

	batch := db.NewBatch()
	require.NoError(batch.Put([]byte("key"), []byte("value")))
	require.NoError(batch.Delete([]byte("stale")))
	require.NotZero(batch.Size())

	// Nothing is applied until Write.
	_, err := db.Get([]byte("key"))
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(batch.Write())

	value, err := db.Get([]byte("key"))
	require.NoError(err)
	require.Equal([]byte("value"), value)

	_, err = db.Get([]byte("stale"))
	require.ErrorIs(err, database.ErrNotFound)
}
