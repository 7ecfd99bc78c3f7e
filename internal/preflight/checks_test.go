package preflight_test

import (
	"os"
	"path/filepath"
	"testing"

	"flacpress/internal/preflight"
	"flacpress/internal/testsupport"
)

func TestCheckInputRootPasses(t *testing.T) {
	dir := t.TempDir()
	res := preflight.CheckInputRoot(dir)
	if !res.Passed {
		t.Fatalf("expected pass, got %+v", res)
	}
}

func TestCheckInputRootMissing(t *testing.T) {
	res := preflight.CheckInputRoot(filepath.Join(t.TempDir(), "nope"))
	if res.Passed {
		t.Fatal("expected failure for missing directory")
	}
}

func TestCheckInputRootRejectsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	res := preflight.CheckInputRoot(file)
	if res.Passed {
		t.Fatal("expected failure for non-directory")
	}
}

func TestRunFailsWithoutFFmpeg(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	cfg := testsupport.NewConfig(t)

	if err := preflight.Run(cfg, t.TempDir()); err == nil {
		t.Fatal("expected missing ffmpeg to fail preflight")
	}
}

func TestRunPassesWithStubbedFFmpeg(t *testing.T) {
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "ffmpeg")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PATH", binDir)

	cfg := testsupport.NewConfig(t)
	if err := preflight.Run(cfg, t.TempDir()); err != nil {
		t.Fatalf("preflight failed: %v", err)
	}
}
