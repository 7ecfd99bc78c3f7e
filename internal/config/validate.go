package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const maxWorkers = 16

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEncode(); err != nil {
		return err
	}
	if err := c.validateLedger(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEncode() error {
	if err := validateBitrate(c.Encode.Bitrate); err != nil {
		return err
	}
	if c.Encode.ID3Version != 3 && c.Encode.ID3Version != 4 {
		return errors.New("encode.id3_version must be 3 or 4")
	}
	if c.Encode.Workers < 1 || c.Encode.Workers > maxWorkers {
		return fmt.Errorf("encode.workers must be between 1 and %d", maxWorkers)
	}
	if strings.TrimSpace(c.Encode.FFmpegBinary) == "" {
		return errors.New("encode.ffmpeg_binary must be set")
	}
	return nil
}

// validateBitrate accepts ffmpeg-style constant bitrate specs such as "320k".
func validateBitrate(value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return errors.New("encode.bitrate must be set")
	}
	digits, hasSuffix := strings.CutSuffix(trimmed, "k")
	if !hasSuffix {
		return fmt.Errorf("encode.bitrate %q must end in \"k\" (e.g. \"320k\")", value)
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return fmt.Errorf("encode.bitrate %q is not a valid bitrate", value)
	}
	if n < 32 || n > 320 {
		return fmt.Errorf("encode.bitrate %q is outside the MP3 CBR range 32k-320k", value)
	}
	return nil
}

func (c *Config) validateLedger() error {
	if c.Ledger.Name == "" {
		return errors.New("ledger.name must be set")
	}
	if strings.ContainsAny(c.Ledger.Name, `/\`) {
		return fmt.Errorf("ledger.name %q must be a bare file name", c.Ledger.Name)
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		return errors.New("history.path must be set when history.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	return nil
}
