package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/stealthycoin/lynk/internal/logger"
	"github.com/stealthycoin/lynk/internal/telemetry"
	"github.com/stealthycoin/lynk/pkg/config"
	"github.com/stealthycoin/lynk/pkg/lease"
)

// newSession loads configuration, builds the configured backing store,
// starts telemetry/metrics, and returns a lease.Session bound to it plus
// a cleanup function the caller must invoke once done with the store.
func newSession(ctx context.Context) (*lease.Session, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	store, err := config.BuildStore(ctx, cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("building store: %w", err)
	}

	stopTracing, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "lynk",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	stopProfiling, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "lynk",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		_ = stopTracing(ctx)
		return nil, nil, fmt.Errorf("initializing profiling: %w", err)
	}

	lockMetrics, stopMetrics := startMetrics(cfg.Metrics)

	cleanup := func() {
		if closer, ok := store.(interface{ Close() error }); ok {
			_ = closer.Close()
		} else if closer, ok := store.(interface{ Close() }); ok {
			closer.Close()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = stopMetrics(shutdownCtx)
		if err := stopProfiling(); err != nil {
			logger.Warn("failed to stop profiler", "error", err)
		}
		if err := stopTracing(shutdownCtx); err != nil {
			logger.Warn("failed to stop tracer provider", "error", err)
		}
	}

	session := lease.NewSession(store, lease.WithBackendLabel(cfg.Store.Type), lease.WithMetrics(lockMetrics))
	return session, cleanup, nil
}
