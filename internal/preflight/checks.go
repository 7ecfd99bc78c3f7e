// Package preflight runs the fatal pre-run checks: input directory access
// and external binary availability. Any failure here aborts before file work.
package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"flacpress/internal/config"
	"flacpress/internal/deps"
)

// Result describes a single preflight check outcome.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CheckInputRoot verifies that the input root exists, is a directory, and is
// readable and writable. Outputs are written beside their sources, so write
// access to the tree is required up front.
func CheckInputRoot(path string) Result {
	const name = "Input directory"

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s does not exist", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("stat %s: %v", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s is not a directory", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s: insufficient permissions: %v", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries for the given config. Both
// the conversion run and the status command use this so the requirements
// list lives in one place.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Encode.FFmpegBinary,
			Description: "Required for FLAC to MP3 transcoding",
		},
	}
	return deps.CheckBinaries(requirements)
}

// Run executes every fatal check and returns the first failure, if any.
func Run(cfg *config.Config, root string) error {
	if res := CheckInputRoot(root); !res.Passed {
		return fmt.Errorf("%s: %s", res.Name, res.Detail)
	}
	for _, status := range CheckSystemDeps(cfg) {
		if !status.Available && !status.Optional {
			return fmt.Errorf("%s unavailable: %s", status.Name, status.Detail)
		}
	}
	return nil
}
