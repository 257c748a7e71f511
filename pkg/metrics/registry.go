// Package metrics defines the observability surface for the lock
// service: an interface implementations record against, plus a
// Prometheus-backed registry that can be wired into an HTTP /metrics
// endpoint. All recording methods are nil-safe, so callers may pass a
// nil LockMetrics to disable collection with zero overhead.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.Mutex
	enabled  bool
	registry *prometheus.Registry
)

// InitRegistry enables metrics collection and returns the Prometheus
// registry implementations should register collectors against. Calling
// it more than once returns the same registry.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// GetRegistry returns the active Prometheus registry, or nil if metrics
// have not been enabled.
func GetRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	return registry
}
