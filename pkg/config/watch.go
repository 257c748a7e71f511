package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/stealthycoin/lynk/internal/logger"
)

// WatchLogging watches configPath (resolved the same way MustLoad does)
// for changes and applies updated logging.level/logging.format live via
// logger.Init. Store type, lease defaults, and telemetry settings are
// fixed for a process's lifetime and are not reloaded: changing them
// would mean rebuilding a store connection or a tracer provider mid-flight,
// which lynkctl's short-lived commands and hold's single long session have
// no use for.
//
// Returns a stop function that does nothing: the filesystem watch, once
// started, stays active for the rest of the process.
func WatchLogging(configPath string) (stop func(), err error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return func() {}, nil
		}
		configPath = GetDefaultConfigPath()
	}

	v := viper.New()
	setupViper(v, configPath)
	if _, err := readConfigFile(v); err != nil {
		return nil, fmt.Errorf("watch logging config: %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
			logger.Warn("config file changed but failed to parse; logging settings left unchanged", "error", err)
			return
		}
		ApplyDefaults(&cfg)

		if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}); err != nil {
			logger.Warn("failed to apply reloaded logging config", "error", err)
			return
		}
		logger.Info("logging configuration reloaded", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	})
	v.WatchConfig()

	return func() {}, nil
}
