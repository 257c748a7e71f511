// Package badger implements lockstore.Store on top of an embedded
// BadgerDB, for local development and the functional test suite where a
// single process needs durable lock state without a network dependency.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/stealthycoin/lynk/pkg/lockstore"
)

const keyPrefix = "lock:"

// Store is a BadgerDB-backed lockstore.Store. Every write runs inside a
// single db.Update transaction so the read-then-conditionally-write
// sequence is atomic; Get uses a read-only db.View transaction.
type Store struct {
	db *badgerdb.DB
}

var _ lockstore.Store = (*Store)(nil)

// Open opens (creating if necessary) a BadgerDB instance rooted at path.
func Open(path string) (*Store, error) {
	opts := badgerdb.DefaultOptions(path).WithLogger(nil)
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("lockstore/badger: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

type record struct {
	VersionNumber  string `json:"version_number"`
	LeaseSeconds   int64  `json:"lease_seconds"`
	HostIdentifier string `json:"host_identifier"`
}

func key(name string) []byte {
	return []byte(keyPrefix + name)
}

func (s *Store) Put(ctx context.Context, rec lockstore.Record, cond *lockstore.Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		existing, present, err := getTx(txn, rec.Name)
		if err != nil {
			return err
		}

		if cond != nil && !conditionHolds(*cond, existing, present) {
			return lockstore.ErrConditionFailed
		}

		return putTx(txn, rec)
	})
}

func (s *Store) Update(ctx context.Context, name string, versionNumber string, cond *lockstore.Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		existing, present, err := getTx(txn, name)
		if err != nil {
			return err
		}
		if !present {
			return lockstore.ErrNoSuchLock
		}
		if cond != nil && !conditionHolds(*cond, existing, present) {
			return lockstore.ErrConditionFailed
		}

		existing.VersionNumber = versionNumber
		return putRecordTx(txn, name, existing)
	})
}

func (s *Store) Delete(ctx context.Context, name string, cond *lockstore.Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		existing, present, err := getTx(txn, name)
		if err != nil {
			return err
		}
		if !present {
			return lockstore.ErrNoSuchLock
		}
		if cond != nil && !conditionHolds(*cond, existing, present) {
			return lockstore.ErrConditionFailed
		}

		return txn.Delete(key(name))
	})
}

func (s *Store) Get(ctx context.Context, name string) (lockstore.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return lockstore.Record{}, false, err
	}

	var rec lockstore.Record
	var present bool
	err := s.db.View(func(txn *badgerdb.Txn) error {
		lockRecord, ok, err := getTx(txn, name)
		if err != nil {
			return err
		}
		present = ok
		if ok {
			rec = lockstore.Record{
				Name:           name,
				VersionNumber:  lockRecord.VersionNumber,
				LeaseDuration:  time.Duration(lockRecord.LeaseSeconds) * time.Second,
				HostIdentifier: lockRecord.HostIdentifier,
			}
		}
		return nil
	})
	if err != nil {
		return lockstore.Record{}, false, err
	}

	return rec, present, nil
}

func getTx(txn *badgerdb.Txn, name string) (record, bool, error) {
	item, err := txn.Get(key(name))
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return record{}, false, nil
	}
	if err != nil {
		return record{}, false, fmt.Errorf("lockstore/badger: get %q: %w", name, err)
	}

	var rec record
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	}); err != nil {
		return record{}, false, fmt.Errorf("lockstore/badger: decode %q: %w", name, err)
	}

	return rec, true, nil
}

func putTx(txn *badgerdb.Txn, rec lockstore.Record) error {
	return putRecordTx(txn, rec.Name, record{
		VersionNumber:  rec.VersionNumber,
		LeaseSeconds:   int64(rec.LeaseDuration / time.Second),
		HostIdentifier: rec.HostIdentifier,
	})
}

func putRecordTx(txn *badgerdb.Txn, name string, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("lockstore/badger: encode %q: %w", name, err)
	}
	return txn.Set(key(name), data)
}

func conditionHolds(cond lockstore.Condition, existing record, present bool) bool {
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
