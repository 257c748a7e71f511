package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stealthycoin/lynk/internal/logger"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh <name>",
	Short: "Refresh a held lock's lease and extend its handle file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefresh,
}

func init() {
	registerHandleFileFlags(refreshCmd, true)
}

func runRefresh(cmd *cobra.Command, args []string) error {
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

	// DeserializeLock itself performs one refresh to validate the handle is
	// still live; re-serializing afterward captures the advanced version.
	handle, err := session.DeserializeLock(ctx, data, false)
	if err != nil {
		return fmt.Errorf("refresh %q: %w", name, err)
	}

	bytes, err := handle.Serialize(ctx)
	if err != nil {
		return fmt.Errorf("serialize handle for %q: %w", name, err)
	}

	if err := os.WriteFile(handleFile, bytes, 0o600); err != nil {
		return fmt.Errorf("write handle file %q: %w", handleFile, err)
	}

	logger.Info("lock refreshed", logger.LockName(name))
	fmt.Printf("refreshed %q\n", name)
	return nil
}
