package lease

import (
	"context"
	"os"

	"github.com/stealthycoin/lynk/pkg/lockstore"
	"github.com/stealthycoin/lynk/pkg/metrics"
)

// Session is the factory for the lock-handling core: it binds a backing
// store and a host identifier and mints Handles against them. Construct
// with NewSession.
type Session struct {
	store   lockstore.Store
	hostID  string
	backend string
	metrics metrics.LockMetrics
}

// SessionOption configures a Session at construction time.
type SessionOption func(*Session)

// WithHostID overrides the host identifier asserted in every lock record
// this Session writes. Defaults to the machine hostname.
func WithHostID(hostID string) SessionOption {
	return func(s *Session) { s.hostID = hostID }
}

// WithBackendLabel sets the short label (e.g. "postgres", "dynamodb")
// attached to telemetry and log output for operations run through this
// Session. Defaults to "unknown".
func WithBackendLabel(label string) SessionOption {
	return func(s *Session) { s.backend = label }
}

// WithMetrics attaches a LockMetrics recorder to every Handle this Session
// mints. Omit to run without metrics instrumentation.
func WithMetrics(m metrics.LockMetrics) SessionOption {
	return func(s *Session) { s.metrics = m }
}

// NewSession constructs a Session backed by store.
func NewSession(store lockstore.Store, opts ...SessionOption) *Session {
	s := &Session{store: store, backend: "unknown"}
	for _, opt := range opts {
		opt(s)
	}
	if s.hostID == "" {
		s.hostID = defaultHostID()
	}
	return s
}

func defaultHostID() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "unknown-host"
	}
	return name
}

// CreateLock mints a Handle for name bound to a fresh Technique. When
// autoRefresh is true, a successful Acquire starts a background
// Refresher automatically.
func (s *Session) CreateLock(name string, autoRefresh bool) *Handle {
	technique := NewTechnique(s.store, s.hostID, s.backend).WithMetrics(s.metrics)
	return newHandle(name, technique, autoRefresh)
}

// DeserializeLock decodes a LockHandle.v1 envelope produced by
// Handle.Serialize, rebuilds its Technique, performs one refresh to
// confirm ownership and reset the lease clock, and returns the resulting
// Handle. A malformed or version-mismatched envelope yields
// *CannotDeserializeError.
func (s *Session) DeserializeLock(ctx context.Context, data []byte, autoRefresh bool) (*Handle, error) {
	payload, err := decodeHandleEnvelope(data)
	if err != nil {
		return nil, err
	}

	technique, err := FromSerialized([]byte(payload.Technique), s.store, s.hostID, s.backend)
	if err != nil {
		return nil, err
	}
	technique.WithMetrics(s.metrics)

	handle := newHandle(payload.Name, technique, autoRefresh)
	if err := technique.Refresh(ctx, payload.Name); err != nil {
		return nil, err
	}
	return handle, nil
}
