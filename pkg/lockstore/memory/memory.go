// Package memory provides an in-process lockstore.Store backed by a
// mutex-guarded map. Suitable for tests, local development, and any
// single-process deployment where lock state doesn't need to survive a
// restart or be shared across hosts.
package memory

import (
	"context"
	"sync"

	"github.com/stealthycoin/lynk/pkg/lockstore"
)

// Store is an in-memory lockstore.Store. The zero value is not usable;
// construct with New.
type Store struct {
	mu      sync.RWMutex
	records map[string]lockstore.Record
}

var _ lockstore.Store = (*Store)(nil)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{records: make(map[string]lockstore.Record)}
}

func (s *Store) Put(ctx context.Context, rec lockstore.Record, cond *lockstore.Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, present := s.records[rec.Name]
	if cond != nil && !conditionHolds(*cond, existing, present) {
		return lockstore.ErrConditionFailed
	}

	s.records[rec.Name] = rec
	return nil
}

func (s *Store) Update(ctx context.Context, name string, versionNumber string, cond *lockstore.Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, present := s.records[name]
	if !present {
		return lockstore.ErrNoSuchLock
	}
	if cond != nil && !conditionHolds(*cond, existing, present) {
		return lockstore.ErrConditionFailed
	}

	existing.VersionNumber = versionNumber
	s.records[name] = existing
	return nil
}

func (s *Store) Delete(ctx context.Context, name string, cond *lockstore.Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, present := s.records[name]
	if !present {
		return lockstore.ErrNoSuchLock
	}
	if cond != nil && !conditionHolds(*cond, existing, present) {
		return lockstore.ErrConditionFailed
	}

	delete(s.records, name)
	return nil
}

func (s *Store) Get(ctx context.Context, name string) (lockstore.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return lockstore.Record{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, present := s.records[name]
	return rec, present, nil
}

// conditionHolds evaluates cond against the current (existing, present)
// state of a record, mirroring the semantics lockstore.Condition
// documents for each predicate kind.
func conditionHolds(cond lockstore.Condition, existing lockstore.Record, present bool) bool {
	switch {
	case cond.IsLockFree():
		return !present
	case cond.IsLockExpired(), cond.IsWeOwnLock():
		return present && existing.VersionNumber == cond.PriorVersion()
	case cond.IsLockFreeOrExpired():
		return !present || existing.VersionNumber == cond.PriorVersion()
	default:
		return false
	}
}
