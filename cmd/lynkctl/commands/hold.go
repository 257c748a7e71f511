package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stealthycoin/lynk/internal/logger"
	"github.com/stealthycoin/lynk/pkg/config"
)

var (
	holdLease   time.Duration
	holdMaxWait time.Duration
)

var holdCmd = &cobra.Command{
	Use:   "hold <name>",
	Short: "Acquire a lock, auto-refresh it, and hold it until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE:  runHold,
}

func init() {
	holdCmd.Flags().DurationVar(&holdLease, "lease", 0, "lease duration (0 means 20s)")
	holdCmd.Flags().DurationVar(&holdMaxWait, "max-wait", 0, "maximum time to wait for acquisition (0 means 5m)")
}

func runHold(cmd *cobra.Command, args []string) error {
	name := args[0]
	ctx := cmd.Context()

	session, cleanup, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	handle := session.CreateLock(name, true)
	if err := handle.Acquire(ctx, holdLease, holdMaxWait); err != nil {
		return fmt.Errorf("acquire %q: %w", name, err)
	}

	if stopWatch, err := config.WatchLogging(GetConfigFile()); err != nil {
		logger.Warn("logging hot-reload disabled", "error", err)
	} else {
		defer stopWatch()
	}

	logger.Info("lock held, auto-refreshing. Press Ctrl+C to release.", logger.LockName(name))
	fmt.Printf("holding %q; press Ctrl+C to release\n", name)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	signal.Stop(sigChan)

	logger.Info("shutdown signal received, releasing lock", logger.LockName(name))

	releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := handle.Release(releaseCtx); err != nil {
		return fmt.Errorf("release %q: %w", name, err)
	}

	fmt.Printf("released %q\n", name)
	return nil
}
