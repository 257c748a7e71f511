package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stealthycoin/lynk/internal/logger"
	"github.com/stealthycoin/lynk/pkg/config"
	"github.com/stealthycoin/lynk/pkg/metrics"

	// registers the Prometheus-backed LockMetrics constructor via init
	_ "github.com/stealthycoin/lynk/pkg/metrics/prometheus"
)

// startMetrics enables the metrics registry when cfg.Enabled, serves it
// over HTTP on cfg.Port, and returns a LockMetrics to attach to a Session
// (nil when metrics are disabled). The returned shutdown func is safe to
// call even when metrics were never started.
func startMetrics(cfg config.MetricsConfig) (metrics.LockMetrics, func(context.Context) error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return nil, noop
	}

	metrics.InitRegistry()
	lockMetrics := metrics.NewLockMetrics()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	logger.Info("metrics server listening", "port", cfg.Port)

	return lockMetrics, server.Shutdown
}
