package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_ShutdownTimeout(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
}

func TestApplyDefaults_Lock(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Lock.LeaseDuration != 30*time.Second {
		t.Errorf("Expected default lease duration 30s, got %v", cfg.Lock.LeaseDuration)
	}
	if cfg.Lock.SleepInterval != time.Second {
		t.Errorf("Expected default sleep interval 1s, got %v", cfg.Lock.SleepInterval)
	}
	if cfg.Lock.RefreshInterval != 10*time.Second {
		t.Errorf("Expected default refresh interval 10s, got %v", cfg.Lock.RefreshInterval)
	}
	if cfg.Lock.MaxWait != 0 {
		t.Errorf("Expected default max wait 0, got %v", cfg.Lock.MaxWait)
	}
}

func TestApplyDefaults_Store(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Store.Type != "memory" {
		t.Errorf("Expected default store type 'memory', got %q", cfg.Store.Type)
	}
	if cfg.Store.Table != "locks" {
		t.Errorf("Expected default store table 'locks', got %q", cfg.Store.Table)
	}
}

func TestApplyDefaults_StoreBackendSubConfig(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Type: "postgres"}}
	ApplyDefaults(cfg)

	if cfg.Store.Postgres == nil {
		t.Fatal("Expected postgres sub-config to be initialized")
	}
	if !cfg.Store.Postgres.PrepareStatements {
		t.Error("Expected prepare_statements to default to true")
	}

	cfg2 := &Config{Store: StoreConfig{Type: "badger"}}
	ApplyDefaults(cfg2)
	if cfg2.Store.Badger == nil || cfg2.Store.Badger.Path == "" {
		t.Error("Expected badger sub-config path to default to a non-empty value")
	}
}

func TestApplyDefaults_HostID(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.HostID == "" {
		t.Error("Expected host_id to default to the machine hostname")
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  "DEBUG",
			Format: "json",
			Output: "/var/log/lynk.log",
		},
		ShutdownTimeout: 60 * time.Second,
		HostID:          "host-a",
		Lock: LockConfig{
			LeaseDuration: 45 * time.Second,
		},
	}

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected explicit level 'DEBUG' to be preserved, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected explicit format 'json' to be preserved, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "/var/log/lynk.log" {
		t.Errorf("Expected explicit output to be preserved, got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 60*time.Second {
		t.Errorf("Expected explicit timeout 60s to be preserved, got %v", cfg.ShutdownTimeout)
	}
	if cfg.HostID != "host-a" {
		t.Errorf("Expected explicit host_id to be preserved, got %q", cfg.HostID)
	}
	if cfg.Lock.LeaseDuration != 45*time.Second {
		t.Errorf("Expected explicit lease duration to be preserved, got %v", cfg.Lock.LeaseDuration)
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	cfg := GetDefaultConfig()

	err := Validate(cfg)
	if err != nil {
		t.Errorf("Default config should be valid, got error: %v", err)
	}
}

func TestGetDefaultConfig_HasRequiredFields(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg.Logging.Level == "" {
		t.Error("Default config missing logging level")
	}
	if cfg.Store.Type == "" {
		t.Error("Default config missing store type")
	}
	if cfg.HostID == "" {
		t.Error("Default config missing host_id")
	}
	if cfg.Lock.LeaseDuration == 0 {
		t.Error("Default config missing lease duration")
	}
}
