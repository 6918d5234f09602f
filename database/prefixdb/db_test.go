// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package prefixdb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/ratiolimit/database"
	"github.com/ava-labs/ratiolimit/database/memdb"
)

func TestIsolation(t *testing.T) {
	require := require.New(t)

	base := memdb.New()
	foo := New([]byte("foo/"), base)
	bar := New([]byte("bar/"), base)

	require.NoError(foo.Put([]byte("key"), []byte("foo value")))
	require.NoError(bar.Put([]byte("key"), []byte("bar value")))

	value, err := foo.Get([]byte("key"))
	require.NoError(err)
	require.Equal([]byte("foo value"), value)

	value, err = bar.Get([]byte("key"))
	require.NoError(err)
	require.Equal([]byte("bar value"), value)

	// The base store sees the prefixed keys.
	value, err = base.Get([]byte("foo/key"))
	require.NoError(err)
	require.Equal([]byte("foo value"), value)

	require.NoError(foo.Delete([]byte("key")))
	_, err = foo.Get([]byte("key"))
	require.ErrorIs(err, database.ErrNotFound)

	// bar's view is untouched.
	has, err := bar.Has([]byte("key"))
	require.NoError(err)
	require.True(has)
}

func TestIteratorStripsPrefix(t *testing.T) {
	require := require.New(t)

	base := memdb.New()
	db := New([]byte("ns/"), base)

	require.NoError(db.Put([]byte("b"), []byte("2")))
	require.NoError(db.Put([]byte("a"), []byte("1")))
	require.NoError(base.Put([]byte("other"), []byte("x")))

	it := db.NewIterator()
	defer it.Release()

	require.True(it.Next())
	require.Equal([]byte("a"), it.Key())
	require.Equal([]byte("1"), it.Value())
	require.True(it.Next())
	require.Equal([]byte("b"), it.Key())
	require.False(it.Next())
	require.NoError(it.Error())
}

func TestBatch(t *testing.T) {
	require := require.New(t)

	base := memdb.New()
	db := New([]byte("ns/"), base)

	batch := db.NewBatch()
	require.NoError(batch.Put([]byte("key"), []byte("value")))
	require.NoError(batch.Write())

	value, err := base.Get([]byte("ns/key"))
	require.NoError(err)
	require.Equal([]byte("value"), value)

	batch.Reset()
	require.NoError(batch.Delete([]byte("key")))
	require.NoError(batch.Write())

	_, err = db.Get([]byte("key"))
	require.ErrorIs(err, database.ErrNotFound)
}
