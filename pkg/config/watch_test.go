package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stealthycoin/lynk/internal/logger"
)

func TestWatchLogging_AppliesReloadedLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	initial := "logging:\n  level: \"INFO\"\n  format: \"text\"\nstore:\n  type: \"memory\"\n"
	if err := os.WriteFile(path, []byte(initial), 0o600); err != nil {
		t.Fatalf("write initial config: %v", err)
	}

	stop, err := WatchLogging(path)
	if err != nil {
		t.Fatalf("WatchLogging failed: %v", err)
	}
	defer stop()

	updated := "logging:\n  level: \"DEBUG\"\n  format: \"text\"\nstore:\n  type: \"memory\"\n"
	if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
		t.Fatalf("write updated config: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if logger.CurrentLevel() == "DEBUG" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("logging level was not reloaded within deadline, got %q", logger.CurrentLevel())
}

func TestWatchLogging_NoConfigIsNoop(t *testing.T) {
	dir := t.TempDir()
	_ = os.Setenv("XDG_CONFIG_HOME", dir)
	defer os.Unsetenv("XDG_CONFIG_HOME")

	stop, err := WatchLogging("")
	if err != nil {
		t.Fatalf("expected no error when no config file exists, got %v", err)
	}
	stop()
}
