package lease

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/stealthycoin/lynk/internal/logger"
)

// DefaultLeaseDuration is the lease granted by Acquire when the caller
// does not specify one.
const DefaultLeaseDuration = 20 * time.Second

// DefaultMaxWait is the acquisition deadline Acquire honors when the
// caller does not specify one.
const DefaultMaxWait = 300 * time.Second

// refresherPeriodNumerator/Denominator select the canonical 3/4 fraction
// of the lease duration used as the background refresh period.
const (
	refresherPeriodNumerator   = 3
	refresherPeriodDenominator = 4
)

// handleEnvelopeID identifies the wire format of a serialized Handle.
const handleEnvelopeID = "LockHandle.v1"

type handlePayload struct {
	EnvelopeID string `json:"envelope_id"`
	Name       string `json:"name"`
	Technique  string `json:"technique"`
}

// Handle is the user-facing wrapper binding a lock name to a Technique
// and, optionally, a background Refresher. A Handle is not safe for
// concurrent use by multiple goroutines; the Refresher it owns interacts
// with the Technique, not the Handle, so it may run concurrently with
// the goroutine that owns the Handle.
type Handle struct {
	name      string
	technique *Technique
	autoRefresh bool

	mu        sync.Mutex
	refresher *Refresher
	lost      error
}

func newHandle(name string, technique *Technique, autoRefresh bool) *Handle {
	return &Handle{name: name, technique: technique, autoRefresh: autoRefresh}
}

// Name returns the lock name this Handle is bound to.
func (h *Handle) Name() string { return h.name }

// Acquire runs the Technique's acquisition protocol for this Handle's
// name. leaseDuration and maxWait of zero select DefaultLeaseDuration and
// DefaultMaxWait respectively. On success, if auto-refresh is enabled, a
// Refresher is started with period 3/4 · leaseDuration.
func (h *Handle) Acquire(ctx context.Context, leaseDuration, maxWait time.Duration) error {
	if leaseDuration == 0 {
		leaseDuration = DefaultLeaseDuration
	}
	if maxWait == 0 {
		maxWait = DefaultMaxWait
	}

	if err := h.technique.Acquire(ctx, h.name, leaseDuration, maxWait); err != nil {
		return err
	}

	if h.autoRefresh {
		period := leaseDuration * refresherPeriodNumerator / refresherPeriodDenominator
		h.startRefresher(period)
	}
	return nil
}

func (h *Handle) startRefresher(period time.Duration) {
	r := NewRefresher(func() error {
		return h.technique.Refresh(context.Background(), h.name)
	}, period)

	h.mu.Lock()
	h.refresher = r
	h.mu.Unlock()

	r.Start()
}

// Release stops any running Refresher, awaiting its acknowledgement of
// cancellation, then deletes the store record via Technique.Release.
// Stopping first avoids a race where the Refresher fires a refresh
// concurrently with the release delete.
func (h *Handle) Release(ctx context.Context) error {
	h.stopRefresher()

	if lost := h.takeLost(); lost != nil {
		return lost
	}

	return h.technique.Release(ctx, h.name)
}

// stopRefresher stops the Refresher and checks whether it lost ownership
// before stopping. r.Stop() blocks until the refresher's loop goroutine
// has exited, and that goroutine always sends to r.lost (if it has an
// error to report) before it exits — so the moment Stop returns, a
// non-blocking receive on r.Lost() is guaranteed to see any pending loss.
func (h *Handle) stopRefresher() {
	h.mu.Lock()
	r := h.refresher
	h.refresher = nil
	h.mu.Unlock()

	if r == nil {
		return
	}
	r.Stop()

	select {
	case err := <-r.Lost():
		if err != nil {
			h.mu.Lock()
			h.lost = err
			h.mu.Unlock()
			logger.Warn("background refresh lost ownership", logger.LockName(h.name), logger.Err(err))
		}
	default:
	}
}

func (h *Handle) takeLost() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	lost := h.lost
	h.lost = nil
	return lost
}

// Refresh directly invokes the Technique's refresh for this Handle's
// name. Not normally called by users when auto-refresh is enabled.
func (h *Handle) Refresh(ctx context.Context) error {
	if lost := h.takeLost(); lost != nil {
		return lost
	}
	return h.technique.Refresh(ctx, h.name)
}

// Scoped acquires the lock and returns a release function guaranteed to
// run on every exit path via defer. If acquire fails, the returned
// release function is nil and must not be called.
//
//	release, err := handle.Scoped(ctx, lease, maxWait)
//	if err != nil { return err }
//	defer release()
func (h *Handle) Scoped(ctx context.Context, leaseDuration, maxWait time.Duration) (func(), error) {
	if err := h.Acquire(ctx, leaseDuration, maxWait); err != nil {
		return nil, err
	}
	return func() {
		if err := h.Release(ctx); err != nil {
			logger.Warn("scoped release failed", logger.LockName(h.name), logger.Err(err))
		}
	}, nil
}

// Serialize stops the Refresher, performs one refresh to maximize the
// time window available to the recipient, and emits the LockHandle.v1
// envelope as UTF-8 JSON bytes.
func (h *Handle) Serialize(ctx context.Context) ([]byte, error) {
	h.stopRefresher()

	if lost := h.takeLost(); lost != nil {
		return nil, lost
	}

	if err := h.technique.Refresh(ctx, h.name); err != nil {
		return nil, err
	}

	techniqueBytes, err := h.technique.Serialize()
	if err != nil {
		return nil, err
	}

	payload := handlePayload{
		EnvelopeID: handleEnvelopeID,
		Name:       h.name,
		Technique:  string(techniqueBytes),
	}
	return json.Marshal(payload)
}

func decodeHandleEnvelope(data []byte) (handlePayload, error) {
	var payload handlePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return handlePayload{}, &CannotDeserializeError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if payload.EnvelopeID != handleEnvelopeID {
		return handlePayload{}, &CannotDeserializeError{Reason: fmt.Sprintf("unknown envelope_id %q", payload.EnvelopeID)}
	}
	if payload.Name == "" || payload.Technique == "" {
		return handlePayload{}, &CannotDeserializeError{Reason: "missing required field"}
	}
	return payload, nil
}
