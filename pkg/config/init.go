package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// sampleConfigTemplate is the YAML written by InitConfig/InitConfigToPath.
// It documents every section with an inline comment and ships with the
// in-memory store so the generated file works immediately without any
// external dependency.
const sampleConfigTemplate = `# lynk Configuration File
#
# Generated by config.InitConfig. Edit freely; every field has a default
# applied by lynk if you remove it.

logging:
  level: "INFO"   # DEBUG, INFO, WARN, ERROR
  format: "text"  # text, json
  output: "stdout"

telemetry:
  enabled: false
  endpoint: "localhost:4317"
  insecure: true
  sample_rate: 1.0
  profiling:
    enabled: false
    endpoint: "http://localhost:4040"

metrics:
  enabled: false
  port: 9090

shutdown_timeout: 30s

# host_id identifies this process to other hosts contending for the same
# locks. Defaults to the machine hostname if omitted.
host_id: ""

# store selects the backend holding lock records. Switch type to
# "dynamodb", "postgres", or "badger" for a durable, multi-host deployment.
store:
  type: "memory"
  table: "locks"

lock:
  lease_duration: 30s
  max_wait: 0s
  sleep_interval: 1s
  refresh_interval: 10s
`

// InitConfig creates a configuration file at the default location
// ($XDG_CONFIG_HOME/lynk/config.yaml or ~/.config/lynk/config.yaml).
// Returns the path written to, or an error if the file already exists
// and force is false.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath creates a configuration file at the given path.
// Returns an error if the file already exists and force is false.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s (pass force=true to overwrite)", path)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(sampleConfigTemplate), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
