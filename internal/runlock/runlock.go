// Package runlock guards an input tree against concurrent runs with an
// advisory file lock placed inside the tree.
package runlock

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is created under the input root for the duration of a run.
const LockFileName = ".flacpress.lock"

// Lock holds the per-tree advisory lock.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes the lock for root without blocking. It fails when another
// run already holds the lock on the same tree.
func Acquire(root string) (*Lock, error) {
	path := filepath.Join(root, LockFileName)
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock %q: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("another flacpress run is already working on %q", root)
	}
	return &Lock{fl: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil || l.fl == nil {
		return ""
	}
	return l.fl.Path()
}

// Release drops the lock. Safe to call on a nil lock.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}
