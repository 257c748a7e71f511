package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across the lock service.
// Use these keys consistently so log lines can be aggregated and queried
// by lock name, host, and fencing version across acquire/refresh/release.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Lock identity
	// ========================================================================
	KeyLockName = "lock_name" // Logical lock name chosen by the caller
	KeyHostID   = "host_id"   // Host identifier asserting/contending for the lock
	KeyVersion  = "version"   // Fencing version (UUIDv4) involved in the operation
	KeyPrior    = "prior"     // Previously observed fencing version (steal loop)

	// ========================================================================
	// Lease timing
	// ========================================================================
	KeyLeaseDuration = "lease_duration_s"  // Lease duration in seconds
	KeyMaxWait       = "max_wait_s"        // Acquire deadline in seconds
	KeyElapsed       = "elapsed_s"         // Time elapsed since acquire started
	KeySleep         = "sleep_s"           // Sleep duration before next steal attempt
	KeyRefreshPeriod = "refresh_period_s"  // Background refresher period

	// ========================================================================
	// Backing store
	// ========================================================================
	KeyStoreBackend = "store_backend" // memory, dynamodb, postgres, badger
	KeyTableName    = "table_name"    // Table/collection name in the backing store
	KeyAttempt      = "attempt"       // Retry attempt number

	// ========================================================================
	// Operation metadata
	// ========================================================================
	KeyOperation  = "operation"   // acquire, steal, refresh, release, serialize, deserialize
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyOutcome    = "outcome"     // granted, stolen, lost, not_granted, released
)

// LockName returns a slog.Attr for the logical lock name.
func LockName(name string) slog.Attr { return slog.String(KeyLockName, name) }

// HostID returns a slog.Attr for the host identifier.
func HostID(id string) slog.Attr { return slog.String(KeyHostID, id) }

// Version returns a slog.Attr for a fencing version.
func Version(v string) slog.Attr { return slog.String(KeyVersion, v) }

// Prior returns a slog.Attr for a previously observed fencing version.
func Prior(v string) slog.Attr { return slog.String(KeyPrior, v) }

// LeaseDuration returns a slog.Attr for a lease duration in seconds.
func LeaseDuration(seconds float64) slog.Attr { return slog.Float64(KeyLeaseDuration, seconds) }

// MaxWait returns a slog.Attr for an acquire deadline in seconds.
func MaxWait(seconds float64) slog.Attr { return slog.Float64(KeyMaxWait, seconds) }

// Elapsed returns a slog.Attr for elapsed time in seconds.
func Elapsed(seconds float64) slog.Attr { return slog.Float64(KeyElapsed, seconds) }

// Sleep returns a slog.Attr for a planned sleep duration in seconds.
func Sleep(seconds float64) slog.Attr { return slog.Float64(KeySleep, seconds) }

// RefreshPeriod returns a slog.Attr for a refresher period in seconds.
func RefreshPeriod(seconds float64) slog.Attr { return slog.Float64(KeyRefreshPeriod, seconds) }

// StoreBackend returns a slog.Attr identifying the backing store implementation.
func StoreBackend(name string) slog.Attr { return slog.String(KeyStoreBackend, name) }

// TableName returns a slog.Attr for the backing store's table/collection name.
func TableName(name string) slog.Attr { return slog.String(KeyTableName, name) }

// Attempt returns a slog.Attr for a retry attempt number.
func Attempt(n int) slog.Attr { return slog.Int(KeyAttempt, n) }

// Operation returns a slog.Attr naming the lock operation in progress.
func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }

// DurationMs returns a slog.Attr for an operation duration in milliseconds.
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns a slog.Attr for an error, or a zero-value attr (omitted by slog) if nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Outcome returns a slog.Attr for the outcome of a lock operation.
func Outcome(outcome string) slog.Attr { return slog.String(KeyOutcome, outcome) }

// TraceID returns a slog.Attr for an OpenTelemetry trace ID.
func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// SpanID returns a slog.Attr for an OpenTelemetry span ID.
func SpanID(id string) slog.Attr { return slog.String(KeySpanID, id) }
