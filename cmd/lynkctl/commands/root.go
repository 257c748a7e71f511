// Package commands implements the lynkctl CLI subcommands.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stealthycoin/lynk/internal/logger"
	"github.com/stealthycoin/lynk/pkg/config"
)

// Version, Commit, and Date are set by main from ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "lynkctl",
	Short: "Acquire, hold, and release version-lease locks",
	Long: `lynkctl contends for and inspects locks managed by the lynk lock
service's version-lease algorithm.

Use --config to point at a configuration file, or it will use the default
location at $XDG_CONFIG_HOME/lynk/config.yaml.`,
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config file")
	rootCmd.AddCommand(acquireCmd, releaseCmd, refreshCmd, holdCmd, tableCmd)
}

// Execute runs the lynkctl root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetConfigFile returns the --config flag value.
func GetConfigFile() string {
	return configFile
}

// loadConfig loads and validates configuration, then initializes logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return nil, err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, nil
}
