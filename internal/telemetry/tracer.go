package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for lock operation spans.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// Lock identity
	// ========================================================================
	AttrLockName = "lynk.lock_name" // Logical lock name chosen by the caller
	AttrHostID   = "lynk.host_id"   // Host identifier asserting/contending for the lock
	AttrVersion  = "lynk.version"   // Fencing version (UUIDv4) assigned to the held lock
	AttrPrior    = "lynk.prior"     // Previously observed fencing version (steal loop)

	// ========================================================================
	// Lease timing
	// ========================================================================
	AttrLeaseDuration = "lynk.lease_duration_s" // Lease duration in seconds
	AttrMaxWait       = "lynk.max_wait_s"       // Acquire deadline in seconds
	AttrElapsed       = "lynk.elapsed_s"        // Time elapsed since acquire started
	AttrSleep         = "lynk.sleep_s"          // Sleep duration before next steal attempt
	AttrRefreshPeriod = "lynk.refresh_period_s" // Background refresher period

	// ========================================================================
	// Backing store
	// ========================================================================
	AttrStoreBackend = "lynk.store_backend" // memory, dynamodb, postgres, badger
	AttrTableName    = "lynk.table_name"    // Table/collection name in the backing store
	AttrAttempt      = "lynk.attempt"       // Retry attempt number

	// ========================================================================
	// Operation metadata
	// ========================================================================
	AttrOperation = "lynk.operation" // acquire, steal, refresh, release, serialize, deserialize
	AttrOutcome   = "lynk.outcome"   // granted, stolen, lost, not_granted, released
)

// LockName returns an attribute for the logical lock name.
func LockName(name string) attribute.KeyValue {
	return attribute.String(AttrLockName, name)
}

// HostID returns an attribute for the host identifier.
func HostID(id string) attribute.KeyValue {
	return attribute.String(AttrHostID, id)
}

// Version returns an attribute for a fencing version.
func Version(v string) attribute.KeyValue {
	return attribute.String(AttrVersion, v)
}

// Prior returns an attribute for a previously observed fencing version.
func Prior(v string) attribute.KeyValue {
	return attribute.String(AttrPrior, v)
}

// LeaseDuration returns an attribute for a lease duration in seconds.
func LeaseDuration(seconds float64) attribute.KeyValue {
	return attribute.Float64(AttrLeaseDuration, seconds)
}

// MaxWait returns an attribute for an acquire deadline in seconds.
func MaxWait(seconds float64) attribute.KeyValue {
	return attribute.Float64(AttrMaxWait, seconds)
}

// Elapsed returns an attribute for elapsed time in seconds.
func Elapsed(seconds float64) attribute.KeyValue {
	return attribute.Float64(AttrElapsed, seconds)
}

// Sleep returns an attribute for a planned sleep duration in seconds.
func Sleep(seconds float64) attribute.KeyValue {
	return attribute.Float64(AttrSleep, seconds)
}

// RefreshPeriod returns an attribute for a refresher period in seconds.
func RefreshPeriod(seconds float64) attribute.KeyValue {
	return attribute.Float64(AttrRefreshPeriod, seconds)
}

// StoreBackend returns an attribute identifying the backing store implementation.
func StoreBackend(name string) attribute.KeyValue {
	return attribute.String(AttrStoreBackend, name)
}

// TableName returns an attribute for the backing store's table/collection name.
func TableName(name string) attribute.KeyValue {
	return attribute.String(AttrTableName, name)
}

// Attempt returns an attribute for a retry attempt number.
func Attempt(n int) attribute.KeyValue {
	return attribute.Int(AttrAttempt, n)
}

// Outcome returns an attribute for the outcome of a lock operation.
func Outcome(outcome string) attribute.KeyValue {
	return attribute.String(AttrOutcome, outcome)
}

// StartLockSpan starts a span for a lock operation (acquire, steal, refresh, release).
// This is a convenience function that sets the identity attributes every
// lock span carries.
func StartLockSpan(ctx context.Context, operation, lockName, hostID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		attribute.String(AttrOperation, operation),
		LockName(lockName),
		HostID(hostID),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "lynk."+operation, trace.WithAttributes(allAttrs...))
}

// StartStoreSpan starts a span for a backing store call (put/update/delete/get).
func StartStoreSpan(ctx context.Context, backend, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		StoreBackend(backend),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "lynk.store."+operation, trace.WithAttributes(allAttrs...))
}
