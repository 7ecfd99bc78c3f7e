// Package testsupport holds helpers shared by the package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"flacpress/internal/config"
)

// NewConfig returns a validated default configuration whose writable paths
// live under a per-test temporary directory.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	base := t.TempDir()
	cfg.History.Path = filepath.Join(base, "history.db")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config is invalid: %v", err)
	}
	return &cfg
}

// InstallStubBinary drops an executable shell script named name onto a
// fresh PATH entry and returns its full path. Useful for standing in for
// ffmpeg during command-level tests.
func InstallStubBinary(t *testing.T, name, script string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, name)
	body := "#!/bin/sh\n" + script + "\n"
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub binary %s: %v", name, err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return path
}
