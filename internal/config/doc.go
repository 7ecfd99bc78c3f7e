// Package config loads, validates, and normalizes the flacpress TOML
// configuration file.
package config
