package lease

import (
	"sync"
	"time"
)

// Refresher periodically invokes a refresh callback while a lock is held,
// so the store entry does not expire. It runs on its own goroutine,
// started by start and stopped by stop; stop is prompt — it wakes the
// background goroutine immediately rather than waiting out the current
// sleep.
type Refresher struct {
	refresh func() error
	period  time.Duration

	lost chan error

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	done      chan struct{}
}

// NewRefresher constructs a Refresher that calls refresh every period once
// started. period must be strictly positive.
func NewRefresher(refresh func() error, period time.Duration) *Refresher {
	return &Refresher{
		refresh: refresh,
		period:  period,
		lost:    make(chan error, 1),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start begins background execution. The first call to the refresh
// callback happens after one period has elapsed, not immediately, since
// the lease is already fresh at acquisition. Start is idempotent.
func (r *Refresher) Start() {
	r.startOnce.Do(func() {
		go r.loop()
	})
}

func (r *Refresher) loop() {
	defer close(r.done)

	timer := time.NewTimer(r.period)
	defer timer.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-timer.C:
			if err := r.refresh(); err != nil {
				if _, ok := err.(*LockLostError); ok {
					select {
					case r.lost <- err:
					default:
					}
					return
				}
				// Non-fatal store error: keep the lease alive by retrying
				// next period rather than tearing down the refresher.
			}
			timer.Reset(r.period)
		}
	}
}

// Stop requests cancellation. It blocks until the background goroutine
// has acknowledged the request and guarantees no further invocation of
// the refresh callback begins after it returns. Stop is idempotent and
// safe to call concurrently with Start.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
	<-r.done
}

// Lost returns a channel that receives the error observed when the
// refresh callback reports lost ownership. It is closed-over by value
// once; callers should select on it alongside other work, not block on
// it exclusively.
func (r *Refresher) Lost() <-chan error {
	return r.lost
}
