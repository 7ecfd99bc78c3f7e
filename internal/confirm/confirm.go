// Package confirm provides the blocking yes/no gates that guard the
// conversion and deletion phases. Anything other than an explicit
// affirmative denies.
package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Confirmer answers a single yes/no prompt.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// Terminal prompts on out and reads one line from in. A non-interactive
// stdin denies immediately instead of blocking forever.
type Terminal struct {
	reader      *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewTerminal builds a confirmer on the process stdin/stdout.
func NewTerminal() *Terminal {
	fd := os.Stdin.Fd()
	return New(os.Stdin, os.Stdout, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}

// New builds a confirmer over arbitrary streams (used by tests and by
// callers that already decided interactivity).
func New(in io.Reader, out io.Writer, interactive bool) *Terminal {
	return &Terminal{reader: bufio.NewReader(in), out: out, interactive: interactive}
}

// Confirm presents the prompt and returns true only for an explicit "y" or
// "yes" (case-insensitive). EOF and blank input deny.
func (t *Terminal) Confirm(prompt string) (bool, error) {
	if !t.interactive {
		fmt.Fprintf(t.out, "%s [y/N]: n (stdin is not a terminal)\n", prompt)
		return false, nil
	}

	fmt.Fprintf(t.out, "%s [y/N]: ", prompt)
	line, err := t.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
