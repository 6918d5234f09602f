// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package limiter

import (
	"fmt"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"

	"github.com/ava-labs/ratiolimit/decimal"
	"github.com/ava-labs/ratiolimit/utils/logging"
)

// MaxLimitersPerScope bounds how many limiters may guard one scope.
const MaxLimitersPerScope = 10

// RegistryConfig configures a Registry. Every field is optional.
type RegistryConfig struct {
	// Log receives violation and lifecycle events. Defaults to NoLog.
	Log logging.Logger

	// State persists limiters across restarts. Nil keeps the registry
	// purely in-memory.
	State State

	// Registerer receives the registry's metrics. Nil disables metrics.
	Registerer prometheus.Registerer
}

// Registry owns every limiter, keyed by (scope, label), and is the
// concurrency boundary of the package: the limiters and the engine beneath
// them are purely sequential.
type Registry struct {
	log     logging.Logger
	state   State
	metrics *metrics

	lock     sync.Mutex
	limiters map[string]map[string]Limiter
}

// NewRegistry builds a registry, loading every limiter persisted in
// [config.State].
func NewRegistry(config RegistryConfig) (*Registry, error) {
	log := config.Log
	if log == nil {
		log = logging.NoLog{}
	}
	m, err := newMetrics(config.Registerer)
	if err != nil {
		return nil, err
	}
	r := &Registry{
		log:      log,
		state:    config.State,
		metrics:  m,
		limiters: make(map[string]map[string]Limiter),
	}
	if config.State == nil {
		return r, nil
	}

	snapshots, err := config.State.GetLimiters()
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted limiters: %w", err)
	}
	for key, snapshot := range snapshots {
		l, err := FromSnapshot(snapshot)
		if err != nil {
			return nil, fmt.Errorf("failed to restore limiter %s/%s: %w", key.Scope, key.Label, err)
		}
		scoped, ok := r.limiters[key.Scope]
		if !ok {
			scoped = make(map[string]Limiter)
			r.limiters[key.Scope] = scoped
		}
		scoped[key.Label] = l
	}
	log.Debug("loaded persisted limiters",
		zap.Int("count", len(snapshots)),
	)
	return r, nil
}

// RegisterChangeLimiter registers a fresh change limiter under
// (scope, label).
func (r *Registry) RegisterChangeLimiter(
	scope string,
	label string,
	window WindowConfig,
	boundaryOffset decimal.Dec,
) error {
	l, err := NewChangeLimiter(window, boundaryOffset)
	if err != nil {
		return err
	}
	return r.register(scope, label, l)
}

// RegisterStaticLimiter registers a fresh static limiter under
// (scope, label).
func (r *Registry) RegisterStaticLimiter(scope, label string, upperLimit decimal.Dec) error {
	l, err := NewStaticLimiter(upperLimit)
	if err != nil {
		return err
	}
	return r.register(scope, label, l)
}

func (r *Registry) register(scope, label string, l Limiter) error {
	if label == "" {
		return ErrEmptyLabel
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	scoped, ok := r.limiters[scope]
	if !ok {
		scoped = make(map[string]Limiter)
		r.limiters[scope] = scoped
	}
	if _, ok := scoped[label]; ok {
		return fmt.Errorf("%w: %s/%s", ErrLimiterExists, scope, label)
	}
	if len(scoped) >= MaxLimitersPerScope {
		return fmt.Errorf("%w: %s already has %d", ErrTooManyLimiters, scope, len(scoped))
	}

	if err := r.persist(scope, label, l); err != nil {
		return err
	}
	if err := r.commit(); err != nil {
		return err
	}
	scoped[label] = l
	r.log.Debug("registered limiter",
		zap.String("scope", scope),
		zap.String("label", label),
		zap.Stringer("kind", l.Snapshot().Kind),
	)
	return nil
}

// Unregister removes the limiter under (scope, label).
func (r *Registry) Unregister(scope, label string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	scoped := r.limiters[scope]
	if _, ok := scoped[label]; !ok {
		return fmt.Errorf("%w: %s/%s", ErrLimiterNotFound, scope, label)
	}
	if r.state != nil {
		if err := r.state.DeleteLimiter(Key{Scope: scope, Label: label}); err != nil {
			return err
		}
		if err := r.state.Commit(); err != nil {
			return err
		}
	}
	delete(scoped, label)
	if len(scoped) == 0 {
		delete(r.limiters, scope)
	}
	r.log.Debug("unregistered limiter",
		zap.String("scope", scope),
		zap.String("label", label),
	)
	return nil
}

// SetBoundaryOffset reconfigures the change limiter under (scope, label).
func (r *Registry) SetBoundaryOffset(scope, label string, boundaryOffset decimal.Dec) error {
	if boundaryOffset.IsZero() {
		return ErrZeroBoundaryOffset
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	l, err := r.changeLimiter(scope, label)
	if err != nil {
		return err
	}
	previous := l.boundaryOffset
	l.boundaryOffset = boundaryOffset
	if err := r.persistAndCommit(scope, label, l); err != nil {
		l.boundaryOffset = previous
		return err
	}
	return nil
}

// SetUpperLimit reconfigures the static limiter under (scope, label).
func (r *Registry) SetUpperLimit(scope, label string, upperLimit decimal.Dec) error {
	if upperLimit.IsZero() {
		return ErrZeroUpperLimit
	}
	if upperLimit.Cmp(decimal.NewDec(1)) > 0 {
		return fmt.Errorf("%w: %s", ErrUpperLimitTooHigh, upperLimit)
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	l, err := r.staticLimiter(scope, label)
	if err != nil {
		return err
	}
	previous := l.upperLimit
	l.upperLimit = upperLimit
	if err := r.persistAndCommit(scope, label, l); err != nil {
		l.upperLimit = previous
		return err
	}
	return nil
}

// CheckAndUpdateAll runs [value] observed at [blockTime] through every
// limiter guarding [scope], in deterministic label order. Either every
// limiter accepts and records the sample, or none does: on a violation the
// limiters already updated in this call are rolled back before the error is
// returned.
func (r *Registry) CheckAndUpdateAll(scope string, blockTime uint64, value decimal.Dec) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	scoped := r.limiters[scope]
	labels := maps.Keys(scoped)
	slices.Sort(labels)

	snapshots := make([]Snapshot, 0, len(labels))
	for i, label := range labels {
		l := scoped[label]
		snapshots = append(snapshots, l.Snapshot())
		if err := l.CheckAndUpdate(blockTime, value); err != nil {
			r.rollback(scoped, labels[:i+1], snapshots)
			r.metrics.observeViolation(scope, label)
			r.log.Info("rejected sample",
				zap.String("scope", scope),
				zap.String("label", label),
				zap.Uint64("blockTime", blockTime),
				zap.Stringer("value", value),
				zap.Error(err),
			)
			return fmt.Errorf("limiter %s/%s: %w", scope, label, err)
		}
	}

	// Stage every updated snapshot, then flush them in one atomic batch. A
	// failure anywhere restores the in-memory limiters so that memory and
	// disk never disagree.
	for _, label := range labels {
		if err := r.persist(scope, label, scoped[label]); err != nil {
			r.rollback(scoped, labels, snapshots)
			return err
		}
	}
	if err := r.commit(); err != nil {
		r.rollback(scoped, labels, snapshots)
		return err
	}
	r.metrics.observeValue(scope, value.Float64())
	return nil
}

// rollback restores limiters mutated earlier in a failed CheckAndUpdateAll.
func (r *Registry) rollback(scoped map[string]Limiter, labels []string, snapshots []Snapshot) {
	for i, label := range labels {
		restored, err := FromSnapshot(snapshots[i])
		if err != nil {
			// Snapshots of live limiters always restore; this is unreachable
			// short of memory corruption.
			r.log.Error("failed to roll back limiter",
				zap.String("label", label),
				zap.Error(err),
			)
			continue
		}
		scoped[label] = restored
	}
}

func (r *Registry) persist(scope, label string, l Limiter) error {
	if r.state == nil {
		return nil
	}
	return r.state.PutLimiter(Key{Scope: scope, Label: label}, l.Snapshot())
}

func (r *Registry) commit() error {
	if r.state == nil {
		return nil
	}
	return r.state.Commit()
}

func (r *Registry) persistAndCommit(scope, label string, l Limiter) error {
	if err := r.persist(scope, label, l); err != nil {
		return err
	}
	return r.commit()
}

// changeLimiter returns the change limiter under (scope, label). The
// registry lock must be held.
func (r *Registry) changeLimiter(scope, label string) (*ChangeLimiter, error) {
	l, ok := r.limiters[scope][label]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrLimiterNotFound, scope, label)
	}
	changeLimiter, ok := l.(*ChangeLimiter)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s is %s", ErrWrongLimiterKind, scope, label, l.Snapshot().Kind)
	}
	return changeLimiter, nil
}

// staticLimiter returns the static limiter under (scope, label). The
// registry lock must be held.
func (r *Registry) staticLimiter(scope, label string) (*StaticLimiter, error) {
	l, ok := r.limiters[scope][label]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrLimiterNotFound, scope, label)
	}
	staticLimiter, ok := l.(*StaticLimiter)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s is %s", ErrWrongLimiterKind, scope, label, l.Snapshot().Kind)
	}
	return staticLimiter, nil
}
