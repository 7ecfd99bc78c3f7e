package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flacpress/internal/config"
)

func TestLoadDefaultsWhenNoConfigFileExists(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_DATA_HOME", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Encode.Bitrate != "320k" {
		t.Fatalf("unexpected bitrate: %q", cfg.Encode.Bitrate)
	}
	if cfg.Encode.ID3Version != 3 {
		t.Fatalf("unexpected id3 version: %d", cfg.Encode.ID3Version)
	}
	if cfg.Encode.Workers != 1 {
		t.Fatalf("unexpected workers: %d", cfg.Encode.Workers)
	}
	if cfg.Ledger.Name != "flacpress.log" {
		t.Fatalf("unexpected ledger name: %q", cfg.Ledger.Name)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	wantHistory := filepath.Join(tempHome, ".local", "share", "flacpress", "history.db")
	if cfg.History.Path != wantHistory {
		t.Fatalf("unexpected history path: got %q want %q", cfg.History.Path, wantHistory)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "flacpress.toml")

	content := strings.Join([]string{
		"[encode]",
		`bitrate = "192k"`,
		"workers = 4",
		"",
		"[ledger]",
		`name = "press.log"`,
		"",
		"[logging]",
		`level = "debug"`,
	}, "\n")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be reported as existing")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Encode.Bitrate != "192k" {
		t.Fatalf("unexpected bitrate: %q", cfg.Encode.Bitrate)
	}
	if cfg.Encode.Workers != 4 {
		t.Fatalf("unexpected workers: %d", cfg.Encode.Workers)
	}
	if cfg.Encode.ID3Version != 3 {
		t.Fatalf("expected default id3 version, got %d", cfg.Encode.ID3Version)
	}
	if cfg.Ledger.Name != "press.log" {
		t.Fatalf("unexpected ledger name: %q", cfg.Ledger.Name)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected level: %q", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"bitrate without suffix", func(c *config.Config) { c.Encode.Bitrate = "320" }, "bitrate"},
		{"bitrate out of range", func(c *config.Config) { c.Encode.Bitrate = "999k" }, "bitrate"},
		{"bad id3 version", func(c *config.Config) { c.Encode.ID3Version = 2 }, "id3_version"},
		{"zero workers", func(c *config.Config) { c.Encode.Workers = 0 }, "workers"},
		{"too many workers", func(c *config.Config) { c.Encode.Workers = 99 }, "workers"},
		{"ledger with path separator", func(c *config.Config) { c.Ledger.Name = "logs/press.log" }, "ledger.name"},
		{"unknown log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"unknown log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "nested", "config.toml")

	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Encode.Bitrate != "320k" {
		t.Fatalf("sample should carry defaults, got bitrate %q", cfg.Encode.Bitrate)
	}
}
