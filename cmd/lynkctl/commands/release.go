package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stealthycoin/lynk/internal/logger"
)

var releaseCmd = &cobra.Command{
	Use:   "release <name>",
	Short: "Release a lock previously acquired with acquire",
	Args:  cobra.ExactArgs(1),
	RunE:  runRelease,
}

func init() {
	registerHandleFileFlags(releaseCmd, true)
}

func runRelease(cmd *cobra.Command, args []string) error {
	name := args[0]
	ctx := cmd.Context()

	data, err := os.ReadFile(handleFile)
	if err != nil {
		return fmt.Errorf("read handle file %q: %w", handleFile, err)
	}

	session, cleanup, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	handle, err := session.DeserializeLock(ctx, data, false)
	if err != nil {
		return fmt.Errorf("deserialize handle for %q: %w", name, err)
	}

	if err := handle.Release(ctx); err != nil {
		return fmt.Errorf("release %q: %w", name, err)
	}

	if err := os.Remove(handleFile); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove handle file", logger.LockName(name), "handle_file", handleFile, "error", err)
	}

	logger.Info("lock released", logger.LockName(name))
	fmt.Printf("released %q\n", name)
	return nil
}
