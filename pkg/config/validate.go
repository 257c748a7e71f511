package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks a Config for structural correctness using struct tags,
// then applies the cross-field rules struct tags can't express (a backend
// needs its matching sub-config, telemetry needs an endpoint once enabled).
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry.endpoint is required when telemetry is enabled")
	}

	switch cfg.Store.Type {
	case "postgres":
		if cfg.Store.Postgres == nil || cfg.Store.Postgres.DSN == "" {
			return fmt.Errorf("store.postgres.dsn is required when store.type is postgres")
		}
	case "badger":
		if cfg.Store.Badger == nil || cfg.Store.Badger.Path == "" {
			return fmt.Errorf("store.badger.path is required when store.type is badger")
		}
	}

	return nil
}
