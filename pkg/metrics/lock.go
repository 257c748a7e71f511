package metrics

import "time"

// LockMetrics records observability data for the acquire/refresh/release
// lifecycle. Implementations must be safe for concurrent use; callers may
// pass a nil LockMetrics anywhere this interface is expected, and the
// package-level Record*/Observe* helpers below treat that as "metrics
// disabled" with zero overhead.
type LockMetrics interface {
	// RecordAcquireAttempt records the outcome of one acquire call.
	// outcome is one of "granted", "stolen", "not_granted".
	RecordAcquireAttempt(name, backend, outcome string)

	// ObserveAcquireDuration records how long an acquire call took to
	// settle, successful or not.
	ObserveAcquireDuration(name, backend string, d time.Duration)

	// RecordRefresh records the outcome of one refresh call. outcome is
	// one of "ok", "lost".
	RecordRefresh(name, backend, outcome string)

	// ObserveRefreshDuration records how long a refresh call took.
	ObserveRefreshDuration(name, backend string, d time.Duration)

	// RecordRelease records the outcome of one release call. outcome is
	// one of "ok", "lost", "already_absent".
	RecordRelease(name, backend, outcome string)

	// SetHeldLocks updates the current count of locks this process
	// believes it holds against backend.
	SetHeldLocks(backend string, count int)
}

// newLockMetrics is supplied by pkg/metrics/prometheus during its package
// init, breaking the import cycle a direct dependency would create (this
// package must not import its own implementation package).
var newLockMetrics func() LockMetrics

// RegisterLockMetricsConstructor registers the Prometheus-backed
// constructor. Called from pkg/metrics/prometheus's init.
func RegisterLockMetricsConstructor(constructor func() LockMetrics) {
	newLockMetrics = constructor
}

// NewLockMetrics returns a LockMetrics backed by the active registry, or
// nil if metrics have not been enabled via InitRegistry.
func NewLockMetrics() LockMetrics {
	if !IsEnabled() || newLockMetrics == nil {
		return nil
	}
	return newLockMetrics()
}

// RecordAcquireAttempt is a nil-safe wrapper around
// LockMetrics.RecordAcquireAttempt.
func RecordAcquireAttempt(m LockMetrics, name, backend, outcome string) {
	if m != nil {
		m.RecordAcquireAttempt(name, backend, outcome)
	}
}

// ObserveAcquireDuration is a nil-safe wrapper around
// LockMetrics.ObserveAcquireDuration.
func ObserveAcquireDuration(m LockMetrics, name, backend string, d time.Duration) {
	if m != nil {
		m.ObserveAcquireDuration(name, backend, d)
	}
}

// RecordRefresh is a nil-safe wrapper around LockMetrics.RecordRefresh.
func RecordRefresh(m LockMetrics, name, backend, outcome string) {
	if m != nil {
		m.RecordRefresh(name, backend, outcome)
	}
}

// ObserveRefreshDuration is a nil-safe wrapper around
// LockMetrics.ObserveRefreshDuration.
func ObserveRefreshDuration(m LockMetrics, name, backend string, d time.Duration) {
	if m != nil {
		m.ObserveRefreshDuration(name, backend, d)
	}
}

// RecordRelease is a nil-safe wrapper around LockMetrics.RecordRelease.
func RecordRelease(m LockMetrics, name, backend, outcome string) {
	if m != nil {
		m.RecordRelease(name, backend, outcome)
	}
}

// SetHeldLocks is a nil-safe wrapper around LockMetrics.SetHeldLocks.
func SetHeldLocks(m LockMetrics, backend string, count int) {
	if m != nil {
		m.SetHeldLocks(backend, count)
	}
}
