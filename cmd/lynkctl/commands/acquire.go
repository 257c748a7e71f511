package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stealthycoin/lynk/internal/logger"
)

var (
	acquireLease   time.Duration
	acquireMaxWait time.Duration
	handleFile     string
)

var acquireCmd = &cobra.Command{
	Use:   "acquire <name>",
	Short: "Acquire a lock and write a handle file for a later release/refresh",
	Args:  cobra.ExactArgs(1),
	RunE:  runAcquire,
}

func init() {
	registerHandleFileFlags(acquireCmd, true)
	acquireCmd.Flags().DurationVar(&acquireLease, "lease", 0, "lease duration (0 means 20s)")
	acquireCmd.Flags().DurationVar(&acquireMaxWait, "max-wait", 0, "maximum time to wait for acquisition (0 means 5m)")
}

func registerHandleFileFlags(cmd *cobra.Command, required bool) {
	cmd.Flags().StringVar(&handleFile, "handle-file", "", "path to read/write the serialized lock handle")
	if required {
		_ = cmd.MarkFlagRequired("handle-file")
	}
}

func runAcquire(cmd *cobra.Command, args []string) error {
	name := args[0]
	ctx := cmd.Context()

	session, cleanup, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	handle := session.CreateLock(name, false)
	if err := handle.Acquire(ctx, acquireLease, acquireMaxWait); err != nil {
		return fmt.Errorf("acquire %q: %w", name, err)
	}

	bytes, err := handle.Serialize(ctx)
	if err != nil {
		return fmt.Errorf("serialize handle for %q: %w", name, err)
	}

	if err := os.WriteFile(handleFile, bytes, 0o600); err != nil {
		return fmt.Errorf("write handle file %q: %w", handleFile, err)
	}

	logger.Info("lock acquired", logger.LockName(name), "handle_file", handleFile)
	fmt.Printf("acquired %q; handle written to %s\n", name, handleFile)
	return nil
}
