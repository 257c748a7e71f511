package lease_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stealthycoin/lynk/pkg/lease"
)

// The first refresh callback invocation must not happen until one period
// has elapsed — the lease is already fresh at construction time.
func TestRefresher_FirstTickAfterPeriod(t *testing.T) {
	var calls atomic.Int32
	r := lease.NewRefresher(func() error {
		calls.Add(1)
		return nil
	}, 50*time.Millisecond)

	r.Start()
	defer r.Stop()

	time.Sleep(10 * time.Millisecond)
	require.Equal(t, int32(0), calls.Load())

	time.Sleep(60 * time.Millisecond)
	require.GreaterOrEqual(t, calls.Load(), int32(1))
}

// P5: once Stop returns, no further invocation of the refresh callback
// begins, and Stop does not block waiting out the remainder of the
// current period.
func TestRefresher_StopIsPrompt(t *testing.T) {
	var calls atomic.Int32
	r := lease.NewRefresher(func() error {
		calls.Add(1)
		return nil
	}, time.Hour)

	r.Start()
	start := time.Now()
	r.Stop()
	require.Less(t, time.Since(start), 100*time.Millisecond)

	seenAtStop := calls.Load()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, seenAtStop, calls.Load())
}

func TestRefresher_StartStopIdempotent(t *testing.T) {
	r := lease.NewRefresher(func() error { return nil }, time.Hour)
	r.Start()
	r.Start()
	r.Stop()
	r.Stop()
}

// A LockLostError from the refresh callback terminates the loop and is
// delivered on the Lost channel.
func TestRefresher_SurfacesLockLost(t *testing.T) {
	r := lease.NewRefresher(func() error {
		return &lease.LockLostError{Name: "A"}
	}, 10*time.Millisecond)

	r.Start()
	defer r.Stop()

	select {
	case err := <-r.Lost():
		require.Error(t, err)
		var lost *lease.LockLostError
		require.ErrorAs(t, err, &lost)
	case <-time.After(time.Second):
		t.Fatal("expected Lost() to receive the lock-lost error")
	}
}
