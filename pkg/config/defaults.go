package config

import (
	"os"
	"strings"
	"time"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyLockDefaults(&cfg.Lock)
	applyStoreDefaults(&cfg.Store)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	if cfg.HostID == "" {
		cfg.HostID = defaultHostID()
	}
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}

	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	applyProfilingDefaults(&cfg.Profiling)
}

// applyProfilingDefaults sets Pyroscope profiling defaults.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}

	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// applyLockDefaults sets default lease parameters.
func applyLockDefaults(cfg *LockConfig) {
	if cfg.LeaseDuration == 0 {
		cfg.LeaseDuration = 30 * time.Second
	}
	if cfg.SleepInterval == 0 {
		cfg.SleepInterval = time.Second
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = 10 * time.Second
	}
	// MaxWait has no default and stays zero when unset.
}

// applyStoreDefaults sets backing store defaults.
func applyStoreDefaults(cfg *StoreConfig) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}
	if cfg.Table == "" {
		cfg.Table = "locks"
	}

	switch cfg.Type {
	case "dynamodb":
		if cfg.DynamoDB == nil {
			cfg.DynamoDB = &DynamoDBStoreConfig{}
		}
	case "postgres":
		if cfg.Postgres == nil {
			cfg.Postgres = &PostgresStoreConfig{}
		}
		// PrepareStatements defaults to true: pgx caches are cheap and
		// the conditional updates the lease technique issues benefit
		// from not re-parsing the statement on every steal attempt.
		cfg.Postgres.PrepareStatements = true
	case "badger":
		if cfg.Badger == nil {
			cfg.Badger = &BadgerStoreConfig{Path: "/tmp/lynk-badger"}
		}
		if cfg.Badger.Path == "" {
			cfg.Badger.Path = "/tmp/lynk-badger"
		}
	}
}

// defaultHostID returns the machine hostname, falling back to "unknown-host"
// if it cannot be determined.
func defaultHostID() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "unknown-host"
	}
	return name
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for generating sample configuration files, tests, and
// documentation.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Store: StoreConfig{
			Type: "memory",
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
