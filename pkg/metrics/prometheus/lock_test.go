package prometheus

import (
	"testing"
	"time"

	"github.com/stealthycoin/lynk/pkg/metrics"
)

func TestNewLockMetrics_RecordsAcrossRegistry(t *testing.T) {
	reg := metrics.InitRegistry()

	m := NewLockMetrics()
	if m == nil {
		t.Fatal("expected a non-nil LockMetrics once enabled")
	}

	m.RecordAcquireAttempt("A", "memory", "granted")
	m.ObserveAcquireDuration("A", "memory", 10*time.Millisecond)
	m.RecordRefresh("A", "memory", "ok")
	m.ObserveRefreshDuration("A", "memory", 5*time.Millisecond)
	m.RecordRelease("A", "memory", "ok")
	m.SetHeldLocks("memory", 3)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}

	for _, want := range []string{
		"lynk_acquire_attempts_total",
		"lynk_acquire_duration_seconds",
		"lynk_refresh_total",
		"lynk_refresh_duration_seconds",
		"lynk_release_total",
		"lynk_held_locks",
	} {
		if !names[want] {
			t.Errorf("expected metric %q to be registered", want)
		}
	}
}

func TestLockMetrics_NilReceiverNoPanic(t *testing.T) {
	var m *lockMetrics
	m.RecordAcquireAttempt("A", "memory", "granted")
	m.ObserveAcquireDuration("A", "memory", time.Second)
	m.RecordRefresh("A", "memory", "ok")
	m.ObserveRefreshDuration("A", "memory", time.Second)
	m.RecordRelease("A", "memory", "ok")
	m.SetHeldLocks("memory", 1)
}
