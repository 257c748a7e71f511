package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the lynk server configuration.
//
// This structure captures every static configuration aspect of a lynk
// process: logging, telemetry, the backing store used to hold lock
// records, and a lock section of lease parameters (see LockConfig for
// how far those are used).
//
// Configuration sources (in order of precedence, see Load for when
// environment variables apply):
//  1. Environment variables (LYNK_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// ShutdownTimeout is a graceful-shutdown timeout. It is defaulted and
	// validated, but no command reads it: hold releases its lock under a
	// fixed 5s timeout.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// HostID identifies this process when it contends for or holds locks.
	// Defaults to the machine hostname if left empty.
	HostID string `mapstructure:"host_id" yaml:"host_id,omitempty"`

	// Store configures the backing store that holds lock records.
	Store StoreConfig `mapstructure:"store" yaml:"store"`

	// Lock contains the lease parameters of the lock section.
	Lock LockConfig `mapstructure:"lock" yaml:"lock"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
// When enabled, trace data is exported to an OTLP-compatible collector
// (e.g., Jaeger, Tempo, or any OTLP receiver).
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled
	// Default: false (opt-in for telemetry)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port)
	// Default: "localhost:4317" (standard OTLP gRPC port)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use insecure (non-TLS) connection
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0)
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	// Enabled controls whether continuous profiling is enabled
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server endpoint (URL)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes specifies which profile types to collect
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
// When Enabled is false, no metrics are collected (zero overhead).
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP server are enabled
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// LockConfig contains the lease parameters of the lock section. They are
// loaded, defaulted and validated here, but pkg/lease and cmd/lynkctl do
// not read them: Handle.Acquire uses lease.DefaultLeaseDuration and
// lease.DefaultMaxWait when given zero, the steal loop sleeps for the
// lease duration recorded by the current holder, and the refresher period
// is derived from the lease duration.
type LockConfig struct {
	// LeaseDuration is a lease duration. Default: 30s.
	LeaseDuration time.Duration `mapstructure:"lease_duration" validate:"required,gt=0" yaml:"lease_duration"`

	// MaxWait is a maximum acquisition wait. Default: 0.
	MaxWait time.Duration `mapstructure:"max_wait" yaml:"max_wait"`

	// SleepInterval is a steal-loop sleep interval. Default: 1s.
	SleepInterval time.Duration `mapstructure:"sleep_interval" validate:"required,gt=0" yaml:"sleep_interval"`

	// RefreshInterval is a refresh interval. Default: 10s.
	RefreshInterval time.Duration `mapstructure:"refresh_interval" validate:"required,gt=0" yaml:"refresh_interval"`
}

// StoreConfig selects and configures the backing store holding lock
// records. Exactly one of DynamoDB, Postgres, or Badger is consulted,
// depending on Type.
type StoreConfig struct {
	// Type selects the backend implementation.
	// Valid values: memory, dynamodb, postgres, badger
	Type string `mapstructure:"type" validate:"required,oneof=memory dynamodb postgres badger" yaml:"type"`

	// Table is the table/collection name used by backends that need one
	// (dynamodb, postgres). Default: "locks".
	Table string `mapstructure:"table" yaml:"table"`

	DynamoDB *DynamoDBStoreConfig `mapstructure:"dynamodb" yaml:"dynamodb,omitempty"`
	Postgres *PostgresStoreConfig `mapstructure:"postgres" yaml:"postgres,omitempty"`
	Badger   *BadgerStoreConfig   `mapstructure:"badger" yaml:"badger,omitempty"`
}

// DynamoDBStoreConfig configures the DynamoDB-backed store.
// Credentials are resolved through the standard AWS SDK v2 chain
// (environment, shared config, EC2/ECS role) and are never read from
// this configuration directly.
type DynamoDBStoreConfig struct {
	// Region is the AWS region hosting the table.
	Region string `mapstructure:"region" yaml:"region,omitempty"`

	// Endpoint overrides the DynamoDB endpoint, for use against a local
	// DynamoDB instance during development.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
}

// PostgresStoreConfig configures the PostgreSQL-backed store.
type PostgresStoreConfig struct {
	// DSN is the PostgreSQL connection string.
	DSN string `mapstructure:"dsn" validate:"required" yaml:"dsn"`

	// PrepareStatements enables pgx prepared statement caching.
	// Default: true
	PrepareStatements bool `mapstructure:"prepare_statements" yaml:"prepare_statements"`
}

// BadgerStoreConfig configures the embedded BadgerDB-backed store.
type BadgerStoreConfig struct {
	// Path is the directory BadgerDB uses for its on-disk files.
	Path string `mapstructure:"path" validate:"required" yaml:"path"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (LYNK_*)
//  2. Configuration file
//  3. Default values
//
// When no configuration file is found, Load returns GetDefaultConfig()
// and environment variables are not consulted. With a file, environment
// variables override only keys that appear in that file.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Create a configuration file there, or specify a custom config file:\n"+
				"  lynkctl <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use LYNK_ prefix and underscores
	// Example: LYNK_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("LYNK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
	)
}

// durationDecodeHook returns a mapstructure decode hook that converts strings
// to time.Duration. This enables config files to use human-readable durations
// like "30s", "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "lynk")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "lynk")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
