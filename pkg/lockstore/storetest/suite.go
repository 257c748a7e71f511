// Package storetest is a shared conformance suite for lockstore.Store
// implementations. Every backend's own test file calls RunConformanceSuite
// with a constructor, so the same behavioral contract is exercised
// identically against memory, badger, and postgres.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/stealthycoin/lynk/pkg/lockstore"
)

// Factory constructs a fresh, empty Store for a single test.
type Factory func(t *testing.T) lockstore.Store

// RunConformanceSuite runs every backend-agnostic behavior test against
// the store produced by factory.
func RunConformanceSuite(t *testing.T, factory Factory) {
	t.Run("PutLockFreeOnEmptyStore", func(t *testing.T) { testPutLockFreeOnEmptyStore(t, factory) })
	t.Run("PutLockFreeFailsWhenPresent", func(t *testing.T) { testPutLockFreeFailsWhenPresent(t, factory) })
	t.Run("PutLockFreeOrExpiredSteal", func(t *testing.T) { testPutLockFreeOrExpiredSteal(t, factory) })
	t.Run("PutLockFreeOrExpiredFailsOnMismatch", func(t *testing.T) { testPutLockFreeOrExpiredFailsOnMismatch(t, factory) })
	t.Run("UpdateRequiresExistingRecord", func(t *testing.T) { testUpdateRequiresExistingRecord(t, factory) })
	t.Run("UpdateWeOwnLockSucceeds", func(t *testing.T) { testUpdateWeOwnLockSucceeds(t, factory) })
	t.Run("UpdateFailsOnVersionMismatch", func(t *testing.T) { testUpdateFailsOnVersionMismatch(t, factory) })
	t.Run("DeleteRequiresExistingRecord", func(t *testing.T) { testDeleteRequiresExistingRecord(t, factory) })
	t.Run("DeleteWeOwnLockSucceeds", func(t *testing.T) { testDeleteWeOwnLockSucceeds(t, factory) })
	t.Run("DeleteFailsOnVersionMismatch", func(t *testing.T) { testDeleteFailsOnVersionMismatch(t, factory) })
	t.Run("GetOnAbsentRecord", func(t *testing.T) { testGetOnAbsentRecord(t, factory) })
}

func testPutLockFreeOnEmptyStore(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	rec := lockstore.Record{
		Name:           "alpha",
		VersionNumber:  uuid.NewString(),
		LeaseDuration:  5 * time.Second,
		HostIdentifier: "host-1",
	}
	free := lockstore.LockFree()

	require.NoError(t, store.Put(ctx, rec, &free))

	got, present, err := store.Get(ctx, "alpha")
	require.NoError(t, err)
	require.True(t, present)
	require.Equal(t, rec, got)
}

func testPutLockFreeFailsWhenPresent(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	rec := lockstore.Record{Name: "alpha", VersionNumber: uuid.NewString(), LeaseDuration: time.Second, HostIdentifier: "host-1"}
	free := lockstore.LockFree()
	require.NoError(t, store.Put(ctx, rec, &free))

	rec2 := rec
	rec2.VersionNumber = uuid.NewString()
	err := store.Put(ctx, rec2, &free)
	require.ErrorIs(t, err, lockstore.ErrConditionFailed)
}

func testPutLockFreeOrExpiredSteal(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	vOld := uuid.NewString()
	rec := lockstore.Record{Name: "alpha", VersionNumber: vOld, LeaseDuration: 0, HostIdentifier: "host-1"}
	free := lockstore.LockFree()
	require.NoError(t, store.Put(ctx, rec, &free))

	vNew := uuid.NewString()
	steal := lockstore.Record{Name: "alpha", VersionNumber: vNew, LeaseDuration: 10 * time.Second, HostIdentifier: "host-2"}
	cond := lockstore.LockFreeOrExpired(vOld)
	require.NoError(t, store.Put(ctx, steal, &cond))

	got, present, err := store.Get(ctx, "alpha")
	require.NoError(t, err)
	require.True(t, present)
	require.Equal(t, vNew, got.VersionNumber)
	require.Equal(t, "host-2", got.HostIdentifier)
}

func testPutLockFreeOrExpiredFailsOnMismatch(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	rec := lockstore.Record{Name: "alpha", VersionNumber: uuid.NewString(), LeaseDuration: time.Minute, HostIdentifier: "host-1"}
	free := lockstore.LockFree()
	require.NoError(t, store.Put(ctx, rec, &free))

	cond := lockstore.LockFreeOrExpired(uuid.NewString())
	steal := lockstore.Record{Name: "alpha", VersionNumber: uuid.NewString(), LeaseDuration: time.Minute, HostIdentifier: "host-2"}
	err := store.Put(ctx, steal, &cond)
	require.ErrorIs(t, err, lockstore.ErrConditionFailed)
}

func testUpdateRequiresExistingRecord(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	err := store.Update(ctx, "absent", uuid.NewString(), nil)
	require.ErrorIs(t, err, lockstore.ErrNoSuchLock)
}

func testUpdateWeOwnLockSucceeds(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	v1 := uuid.NewString()
	rec := lockstore.Record{Name: "alpha", VersionNumber: v1, LeaseDuration: time.Minute, HostIdentifier: "host-1"}
	free := lockstore.LockFree()
	require.NoError(t, store.Put(ctx, rec, &free))

	v2 := uuid.NewString()
	own := lockstore.WeOwnLock(v1)
	require.NoError(t, store.Update(ctx, "alpha", v2, &own))

	got, present, err := store.Get(ctx, "alpha")
	require.NoError(t, err)
	require.True(t, present)
	require.Equal(t, v2, got.VersionNumber)
}

func testUpdateFailsOnVersionMismatch(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	rec := lockstore.Record{Name: "alpha", VersionNumber: uuid.NewString(), LeaseDuration: time.Minute, HostIdentifier: "host-1"}
	free := lockstore.LockFree()
	require.NoError(t, store.Put(ctx, rec, &free))

	own := lockstore.WeOwnLock(uuid.NewString())
	err := store.Update(ctx, "alpha", uuid.NewString(), &own)
	require.ErrorIs(t, err, lockstore.ErrConditionFailed)
}

func testDeleteRequiresExistingRecord(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	err := store.Delete(ctx, "absent", nil)
	require.ErrorIs(t, err, lockstore.ErrNoSuchLock)
}

func testDeleteWeOwnLockSucceeds(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	v1 := uuid.NewString()
	rec := lockstore.Record{Name: "alpha", VersionNumber: v1, LeaseDuration: time.Minute, HostIdentifier: "host-1"}
	free := lockstore.LockFree()
	require.NoError(t, store.Put(ctx, rec, &free))

	own := lockstore.WeOwnLock(v1)
	require.NoError(t, store.Delete(ctx, "alpha", &own))

	_, present, err := store.Get(ctx, "alpha")
	require.NoError(t, err)
	require.False(t, present)
}

func testDeleteFailsOnVersionMismatch(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	rec := lockstore.Record{Name: "alpha", VersionNumber: uuid.NewString(), LeaseDuration: time.Minute, HostIdentifier: "host-1"}
	free := lockstore.LockFree()
	require.NoError(t, store.Put(ctx, rec, &free))

	own := lockstore.WeOwnLock(uuid.NewString())
	err := store.Delete(ctx, "alpha", &own)
	require.ErrorIs(t, err, lockstore.ErrConditionFailed)

	_, present, err := store.Get(ctx, "alpha")
	require.NoError(t, err)
	require.True(t, present)
}

func testGetOnAbsentRecord(t *testing.T, factory Factory) {
	store := factory(t)
	ctx := context.Background()

	_, present, err := store.Get(ctx, "nowhere")
	require.NoError(t, err)
	require.False(t, present)
}
