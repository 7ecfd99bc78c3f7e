package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultBitrate      = "320k"
	defaultID3Version   = 3
	defaultWorkers      = 1
	defaultFFmpegBinary = "ffmpeg"
	defaultLedgerName   = "flacpress.log"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Encode: Encode{
			Bitrate:      defaultBitrate,
			ID3Version:   defaultID3Version,
			Workers:      defaultWorkers,
			FFmpegBinary: defaultFFmpegBinary,
		},
		Ledger: Ledger{
			Name: defaultLedgerName,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultHistoryPath() string {
	if base, ok := os.LookupEnv("XDG_DATA_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "flacpress", "history.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.local/share/flacpress/history.db"
	}
	return filepath.Join(home, ".local", "share", "flacpress", "history.db")
}
