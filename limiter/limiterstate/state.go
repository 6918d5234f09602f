// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package limiterstate persists limiter snapshots in a key-value database.
package limiterstate

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/ava-labs/ratiolimit/database"
	"github.com/ava-labs/ratiolimit/decimal"
	"github.com/ava-labs/ratiolimit/limiter"
	"github.com/ava-labs/ratiolimit/movingaverage"
)

const (
	decSize = 32 // bytes

	// snapshotOverhead is the encoded size of a snapshot with no divisions:
	// kind byte, window config, three decimals, division count.
	snapshotOverhead = 1 + 2*database.Uint64Size + 3*decSize + 4

	// divisionSize is the encoded size of one division.
	divisionSize = 2*database.Uint64Size + 2*decSize
)

var (
	errCorruptKey      = errors.New("corrupt limiter key")
	errCorruptSnapshot = errors.New("corrupt limiter snapshot")

	_ limiter.State = (*state)(nil)
)

type state struct {
	db database.Database

	// batch holds writes staged since the last Commit.
	batch database.Batch
}

// New returns a limiter.State stored in [db]. The caller should namespace
// [db] (see database/prefixdb) if the store is shared.
func New(db database.Database) limiter.State {
	return &state{
		db:    db,
		batch: db.NewBatch(),
	}
}

func (s *state) GetLimiters() (map[limiter.Key]limiter.Snapshot, error) {
	snapshots := make(map[limiter.Key]limiter.Snapshot)

	it := s.db.NewIterator()
	defer it.Release()

	for it.Next() {
		key, err := parseLimiterKey(it.Key())
		if err != nil {
			return nil, err
		}
		snapshot, err := parseSnapshot(it.Value())
		if err != nil {
			return nil, fmt.Errorf("limiter %s/%s: %w", key.Scope, key.Label, err)
		}
		snapshots[key] = snapshot
	}
	return snapshots, it.Error()
}

func (s *state) PutLimiter(key limiter.Key, snapshot limiter.Snapshot) error {
	keyBytes, err := limiterKey(key)
	if err != nil {
		// A staging failure poisons the whole pending batch.
		s.batch.Reset()
		return err
	}
	return s.batch.Put(keyBytes, packSnapshot(snapshot))
}

func (s *state) DeleteLimiter(key limiter.Key) error {
	keyBytes, err := limiterKey(key)
	if err != nil {
		s.batch.Reset()
		return err
	}
	return s.batch.Delete(keyBytes)
}

func (s *state) Commit() error {
	defer s.batch.Reset()
	return s.batch.Write()
}

// limiterKey encodes (scope, label) with a length-prefixed scope so that
// neither part can masquerade as the other.
func limiterKey(key limiter.Key) ([]byte, error) {
	if len(key.Scope) > math.MaxUint16 {
		return nil, fmt.Errorf("scope %q is too long", key.Scope)
	}
	bytes := make([]byte, 2, 2+len(key.Scope)+len(key.Label))
	binary.BigEndian.PutUint16(bytes, uint16(len(key.Scope)))
	bytes = append(bytes, key.Scope...)
	return append(bytes, key.Label...), nil
}

func parseLimiterKey(bytes []byte) (limiter.Key, error) {
	if len(bytes) < 2 {
		return limiter.Key{}, errCorruptKey
	}
	scopeLen := int(binary.BigEndian.Uint16(bytes))
	bytes = bytes[2:]
	if len(bytes) < scopeLen {
		return limiter.Key{}, errCorruptKey
	}
	return limiter.Key{
		Scope: string(bytes[:scopeLen]),
		Label: string(bytes[scopeLen:]),
	}, nil
}

func packSnapshot(snapshot limiter.Snapshot) []byte {
	bytes := make([]byte, 0, snapshotOverhead+len(snapshot.Divisions)*divisionSize)
	bytes = append(bytes, byte(snapshot.Kind))
	bytes = binary.BigEndian.AppendUint64(bytes, snapshot.Window.WindowSize)
	bytes = binary.BigEndian.AppendUint64(bytes, snapshot.Window.DivisionCount)
	bytes = appendDec(bytes, snapshot.BoundaryOffset)
	bytes = appendDec(bytes, snapshot.UpperLimit)
	bytes = appendDec(bytes, snapshot.LatestValue)
	bytes = binary.BigEndian.AppendUint32(bytes, uint32(len(snapshot.Divisions)))
	for _, division := range snapshot.Divisions {
		bytes = binary.BigEndian.AppendUint64(bytes, division.StartedAt)
		bytes = binary.BigEndian.AppendUint64(bytes, division.UpdatedAt)
		bytes = appendDec(bytes, division.LatestValue)
		bytes = appendDec(bytes, division.Cumsum)
	}
	return bytes
}

func parseSnapshot(bytes []byte) (limiter.Snapshot, error) {
	if len(bytes) < snapshotOverhead {
		return limiter.Snapshot{}, errCorruptSnapshot
	}

	snapshot := limiter.Snapshot{
		Kind: limiter.Kind(bytes[0]),
	}
	bytes = bytes[1:]
	snapshot.Window.WindowSize = binary.BigEndian.Uint64(bytes)
	snapshot.Window.DivisionCount = binary.BigEndian.Uint64(bytes[database.Uint64Size:])
	bytes = bytes[2*database.Uint64Size:]

	var err error
	if snapshot.BoundaryOffset, bytes, err = readDec(bytes); err != nil {
		return limiter.Snapshot{}, err
	}
	if snapshot.UpperLimit, bytes, err = readDec(bytes); err != nil {
		return limiter.Snapshot{}, err
	}
	if snapshot.LatestValue, bytes, err = readDec(bytes); err != nil {
		return limiter.Snapshot{}, err
	}

	numDivisions := int(binary.BigEndian.Uint32(bytes))
	bytes = bytes[4:]
	if len(bytes) != numDivisions*divisionSize {
		return limiter.Snapshot{}, errCorruptSnapshot
	}
	if numDivisions == 0 {
		return snapshot, nil
	}

	snapshot.Divisions = make([]movingaverage.Division, numDivisions)
	for i := range snapshot.Divisions {
		division := &snapshot.Divisions[i]
		division.StartedAt = binary.BigEndian.Uint64(bytes)
		division.UpdatedAt = binary.BigEndian.Uint64(bytes[database.Uint64Size:])
		bytes = bytes[2*database.Uint64Size:]
		if division.LatestValue, bytes, err = readDec(bytes); err != nil {
			return limiter.Snapshot{}, err
		}
		if division.Cumsum, bytes, err = readDec(bytes); err != nil {
			return limiter.Snapshot{}, err
		}
	}
	return snapshot, nil
}

func appendDec(bytes []byte, d decimal.Dec) []byte {
	decBytes := d.Bytes()
	return append(bytes, decBytes[:]...)
}

func readDec(bytes []byte) (decimal.Dec, []byte, error) {
	if len(bytes) < decSize {
		return decimal.Dec{}, nil, errCorruptSnapshot
	}
	d, err := decimal.FromBytes(bytes[:decSize])
	if err != nil {
		return decimal.Dec{}, nil, err
	}
	return d, bytes[decSize:], nil
}
