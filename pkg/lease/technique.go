// Package lease implements the version-lease locking algorithm: acquire,
// steal, refresh, release, and serialize/deserialize a lock whose
// authoritative state lives in a lockstore.Store. See Technique for the
// core state machine and Session/Handle for the user-facing surface.
package lease

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stealthycoin/lynk/internal/logger"
	"github.com/stealthycoin/lynk/internal/telemetry"
	"github.com/stealthycoin/lynk/pkg/lockstore"
	"github.com/stealthycoin/lynk/pkg/metrics"
)

// formatID identifies the wire format of a serialized Technique payload.
// Deserializing any other value is rejected.
const formatID = "VersionLease.v1"

// techniquePayload is the JSON shape of a serialized Technique: a flat map
// from lock name to the fencing version most recently written for it.
type techniquePayload struct {
	FormatID string            `json:"format_id"`
	Versions map[string]string `json:"versions"`
}

// Technique is the version-lease algorithm. One Technique instance tracks,
// per lock name, the fencing version this host last successfully wrote to
// the store. Its zero value is not usable; construct with NewTechnique.
//
// A Technique is safe for concurrent use by multiple goroutines: the
// Refresher calls refresh on a background goroutine while user code may
// concurrently call acquire/release for other names.
type Technique struct {
	store   lockstore.Store
	hostID  string
	backend string
	metrics metrics.LockMetrics

	mu       sync.Mutex
	versions map[string]string
}

// NewTechnique constructs a Technique bound to store, identifying itself
// to the store as hostID. backend is a short label (e.g. "postgres") used
// only for telemetry and log attribution.
func NewTechnique(store lockstore.Store, hostID, backend string) *Technique {
	return &Technique{
		store:    store,
		hostID:   hostID,
		backend:  backend,
		versions: make(map[string]string),
	}
}

// WithMetrics attaches a metrics.LockMetrics to record acquire/refresh/
// release observations against. A nil argument disables collection.
func (t *Technique) WithMetrics(m metrics.LockMetrics) *Technique {
	t.metrics = m
	return t
}

func (t *Technique) heldCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.versions)
}

func (t *Technique) localVersion(name string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.versions[name]
	return v, ok
}

func (t *Technique) setLocalVersion(name, version string) {
	t.mu.Lock()
	t.versions[name] = version
	t.mu.Unlock()
}

func (t *Technique) clearLocalVersion(name string) {
	t.mu.Lock()
	delete(t.versions, name)
	t.mu.Unlock()
}

// Acquire runs the acquire/steal protocol for name. leaseDuration is the
// interval the winning write grants before the lease is considered
// expired; maxWait bounds how long Acquire may block before giving up.
// On success, the fencing version is recorded locally. On failure, no
// local state is written and a *LockNotGrantedError is returned.
func (t *Technique) Acquire(ctx context.Context, name string, leaseDuration time.Duration, maxWait time.Duration) error {
	ctx, span := telemetry.StartLockSpan(ctx, "acquire", name, t.hostID,
		telemetry.LeaseDuration(leaseDuration.Seconds()),
		telemetry.MaxWait(maxWait.Seconds()),
	)
	defer span.End()

	start := time.Now()
	v := uuid.NewString()
	rec := lockstore.Record{
		Name:           name,
		VersionNumber:  v,
		LeaseDuration:  leaseDuration,
		HostIdentifier: t.hostID,
	}
	free := lockstore.LockFree()

	err := t.put(ctx, rec, &free)
	if err == nil {
		t.setLocalVersion(name, v)
		metrics.RecordAcquireAttempt(t.metrics, name, t.backend, "granted")
		metrics.ObserveAcquireDuration(t.metrics, name, t.backend, time.Since(start))
		metrics.SetHeldLocks(t.metrics, t.backend, t.heldCount())
		logger.InfoCtx(ctx, "lock acquired", logger.LockName(name), logger.Version(v), logger.Outcome("granted"))
		return nil
	}
	if !errors.Is(err, lockstore.ErrConditionFailed) {
		return err
	}

	priorLease, priorVersion, err := t.observe(ctx, name)
	if err != nil {
		return err
	}
	err = t.stealLoop(ctx, name, leaseDuration, maxWait, start, priorLease, priorVersion)
	metrics.ObserveAcquireDuration(t.metrics, name, t.backend, time.Since(start))
	if err == nil {
		metrics.SetHeldLocks(t.metrics, t.backend, t.heldCount())
	}
	return err
}

// observe fetches the current (leaseDuration, versionNumber) for name,
// treating an absent record as (0, "") per the steal-loop contract.
func (t *Technique) observe(ctx context.Context, name string) (time.Duration, string, error) {
	rec, present, err := t.store.Get(ctx, name)
	if err != nil {
		return 0, "", err
	}
	if !present {
		return 0, "", nil
	}
	return rec.LeaseDuration, rec.VersionNumber, nil
}

func (t *Technique) stealLoop(ctx context.Context, name string, leaseDuration, maxWait time.Duration, start time.Time, priorLease time.Duration, priorVersion string) error {
	attempt := 1
	for {
		elapsed := time.Since(start)
		if elapsed >= maxWait {
			logger.WarnCtx(ctx, "acquire deadline exceeded", logger.LockName(name), logger.Elapsed(elapsed.Seconds()))
			metrics.RecordAcquireAttempt(t.metrics, name, t.backend, "not_granted")
			return &LockNotGrantedError{Name: name}
		}

		remaining := maxWait - elapsed
		if priorLease > remaining {
			logger.WarnCtx(ctx, "acquire cannot succeed before deadline", logger.LockName(name),
				logger.Sleep(priorLease.Seconds()), logger.Elapsed(elapsed.Seconds()))
			metrics.RecordAcquireAttempt(t.metrics, name, t.backend, "not_granted")
			return &LockNotGrantedError{Name: name}
		}

		if err := sleepCtx(ctx, priorLease); err != nil {
			return err
		}

		v := uuid.NewString()
		rec := lockstore.Record{
			Name:           name,
			VersionNumber:  v,
			LeaseDuration:  leaseDuration,
			HostIdentifier: t.hostID,
		}

		var cond lockstore.Condition
		if priorVersion != "" {
			cond = lockstore.LockFreeOrExpired(priorVersion)
		} else {
			cond = lockstore.LockFree()
		}

		err := t.put(ctx, rec, &cond)
		if err == nil {
			t.setLocalVersion(name, v)
			metrics.RecordAcquireAttempt(t.metrics, name, t.backend, "stolen")
			logger.InfoCtx(ctx, "lock stolen", logger.LockName(name), logger.Version(v),
				logger.Prior(priorVersion), logger.Attempt(attempt), logger.Outcome("stolen"))
			return nil
		}
		if !errors.Is(err, lockstore.ErrConditionFailed) {
			return err
		}

		priorLease, priorVersion, err = t.observe(ctx, name)
		if err != nil {
			return err
		}
		attempt++
	}
}

func (t *Technique) put(ctx context.Context, rec lockstore.Record, cond *lockstore.Condition) error {
	ctx, span := telemetry.StartStoreSpan(ctx, t.backend, "put", telemetry.LockName(rec.Name), telemetry.Version(rec.VersionNumber))
	defer span.End()
	return t.store.Put(ctx, rec, cond)
}

// sleepCtx sleeps for d, returning early with ctx.Err() if ctx is
// canceled first. A zero or negative d returns immediately.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release deletes the store record for name, conditioned on this host
// still owning it. Idempotent: a second Release on the same name returns
// *NoSuchLockError since the local entry has already been removed.
func (t *Technique) Release(ctx context.Context, name string) error {
	ctx, span := telemetry.StartLockSpan(ctx, "release", name, t.hostID)
	defer span.End()

	v, ok := t.localVersion(name)
	if !ok {
		return &NoSuchLockError{Name: name}
	}

	own := lockstore.WeOwnLock(v)
	err := t.store.Delete(ctx, name, &own)
	t.clearLocalVersion(name)
	metrics.SetHeldLocks(t.metrics, t.backend, t.heldCount())

	switch {
	case err == nil:
		metrics.RecordRelease(t.metrics, name, t.backend, "ok")
		logger.InfoCtx(ctx, "lock released", logger.LockName(name), logger.Version(v), logger.Outcome("released"))
		return nil
	case errors.Is(err, lockstore.ErrNoSuchLock):
		metrics.RecordRelease(t.metrics, name, t.backend, "already_absent")
		logger.InfoCtx(ctx, "lock already absent on release", logger.LockName(name), logger.Version(v), logger.Outcome("released"))
		return nil
	case errors.Is(err, lockstore.ErrConditionFailed):
		metrics.RecordRelease(t.metrics, name, t.backend, "lost")
		logger.WarnCtx(ctx, "lock lost before release", logger.LockName(name), logger.Version(v), logger.Outcome("lost"))
		return &LockLostError{Name: name}
	default:
		return err
	}
}

// Refresh generates a new fencing version and conditionally updates the
// store record, proving this host is still the lease holder. On success
// the local version advances. On loss, the local entry is removed and
// *LockLostError is returned.
func (t *Technique) Refresh(ctx context.Context, name string) error {
	ctx, span := telemetry.StartLockSpan(ctx, "refresh", name, t.hostID)
	defer span.End()

	v, ok := t.localVersion(name)
	if !ok {
		return &NoSuchLockError{Name: name}
	}

	vNext := uuid.NewString()
	own := lockstore.WeOwnLock(v)

	refreshStart := time.Now()
	ctx2, storeSpan := telemetry.StartStoreSpan(ctx, t.backend, "update", telemetry.LockName(name), telemetry.Version(vNext), telemetry.Prior(v))
	err := t.store.Update(ctx2, name, vNext, &own)
	storeSpan.End()
	metrics.ObserveRefreshDuration(t.metrics, name, t.backend, time.Since(refreshStart))

	if err == nil {
		t.setLocalVersion(name, vNext)
		metrics.RecordRefresh(t.metrics, name, t.backend, "ok")
		logger.DebugCtx(ctx, "lock refreshed", logger.LockName(name), logger.Version(vNext), logger.Prior(v))
		return nil
	}
	if errors.Is(err, lockstore.ErrConditionFailed) || errors.Is(err, lockstore.ErrNoSuchLock) {
		t.clearLocalVersion(name)
		metrics.RecordRefresh(t.metrics, name, t.backend, "lost")
		metrics.SetHeldLocks(t.metrics, t.backend, t.heldCount())
		logger.WarnCtx(ctx, "lock lost on refresh", logger.LockName(name), logger.Prior(v), logger.Outcome("lost"))
		return &LockLostError{Name: name}
	}
	return err
}

// Version returns the fencing version this Technique currently holds for
// name, if any.
func (t *Technique) Version(name string) (string, bool) {
	return t.localVersion(name)
}

// Serialize emits the VersionLease.v1 envelope describing every lock
// name this Technique currently holds a fencing version for.
func (t *Technique) Serialize() ([]byte, error) {
	t.mu.Lock()
	versions := make(map[string]string, len(t.versions))
	for k, v := range t.versions {
		versions[k] = v
	}
	t.mu.Unlock()

	payload := techniquePayload{FormatID: formatID, Versions: versions}
	return json.Marshal(payload)
}

// FromSerialized rebuilds a Technique bound to store/hostID/backend whose
// local version map is the one encoded in data. A missing or mismatched
// format_id yields *CannotDeserializeError.
func FromSerialized(data []byte, store lockstore.Store, hostID, backend string) (*Technique, error) {
	var payload techniquePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &CannotDeserializeError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if payload.FormatID != formatID {
		return nil, &CannotDeserializeError{Reason: fmt.Sprintf("unknown format_id %q", payload.FormatID)}
	}

	t := NewTechnique(store, hostID, backend)
	for k, v := range payload.Versions {
		t.versions[k] = v
	}
	return t, nil
}
