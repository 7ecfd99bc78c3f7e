// Package ledger maintains the per-run outcome log: an append-only UTF-8
// text file with one event per line, truncated at the start of every run.
package ledger

import (
	"fmt"
	"os"
	"sync"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

// Option configures the ledger.
type Option func(*Ledger)

// WithClock overrides the timestamp source (for tests).
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// Ledger serializes appends so concurrent workers produce one well-formed
// line per event with a monotonic sequence.
type Ledger struct {
	mu   sync.Mutex
	file *os.File
	path string
	seq  int64
	now  func() time.Time
}

// Open creates or truncates the ledger file at path.
func Open(path string, opts ...Option) (*Ledger, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open ledger %q: %w", path, err)
	}
	l := &Ledger{file: file, path: path, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Append writes one event line: "<timestamp> <filename> <outcome phrase>".
// Events are never rewritten or removed.
func (l *Ledger) Append(filename, outcome string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	line := fmt.Sprintf("%s %s %s\n", l.now().Format(timestampLayout), filename, outcome)
	if _, err := l.file.WriteString(line); err != nil {
		return fmt.Errorf("append ledger event: %w", err)
	}
	return nil
}

// Seq returns the number of events appended so far.
func (l *Ledger) Seq() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq
}

// Path returns the ledger file location.
func (l *Ledger) Path() string { return l.path }

// Close flushes and closes the underlying file.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
