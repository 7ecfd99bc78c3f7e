package deps_test

import (
	"os"
	"path/filepath"
	"testing"

	"flacpress/internal/deps"
)

func TestCheckBinariesReportsMissing(t *testing.T) {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "FFmpeg", Command: "definitely-not-a-real-binary-2718", Description: "codec"},
	})
	if len(statuses) != 1 {
		t.Fatalf("expected 1 status, got %d", len(statuses))
	}
	if statuses[0].Available {
		t.Fatal("expected binary to be unavailable")
	}
	if statuses[0].Detail == "" {
		t.Fatal("expected detail for missing binary")
	}
}

func TestCheckBinariesFindsStubOnPath(t *testing.T) {
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "ffmpeg")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PATH", binDir)

	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "FFmpeg", Command: "ffmpeg", Description: "codec"},
	})
	if !statuses[0].Available {
		t.Fatalf("expected stub to be found: %+v", statuses[0])
	}
	if statuses[0].Command != stub {
		t.Fatalf("expected resolved path %q, got %q", stub, statuses[0].Command)
	}
}

func TestCheckBinariesEmptyCommand(t *testing.T) {
	statuses := deps.CheckBinaries([]deps.Requirement{{Name: "FFmpeg"}})
	if statuses[0].Available {
		t.Fatal("expected unavailable for empty command")
	}
	if statuses[0].Detail != "command not configured" {
		t.Fatalf("unexpected detail: %q", statuses[0].Detail)
	}
}
