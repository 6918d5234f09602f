// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package database

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrClosed   = errors.New("closed")
)

var _ Iterator = (*IteratorError)(nil)

// IteratorError is an iterator that immediately fails with a fixed error.
type IteratorError struct {
	Err error
}

func (*IteratorError) Next() bool {
	return false
}

func (it *IteratorError) Error() error {
	return it.Err
}

func (*IteratorError) Key() []byte {
	return nil
}

func (*IteratorError) Value() []byte {
	return nil
}

func (*IteratorError) Release() {}
