package transcode

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// diagnosticTailLines caps the captured ffmpeg output carried in errors.
const diagnosticTailLines = 20

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps ffmpeg CLI interactions for FLAC to MP3 conversion.
type Client struct {
	binary     string
	bitrate    string
	id3Version int
	exec       Executor
}

// New constructs an ffmpeg transcode client.
func New(binary, bitrate string, id3Version int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	bitrate = strings.TrimSpace(bitrate)
	if bitrate == "" {
		return nil, errors.New("bitrate required")
	}
	client := &Client{
		binary:     binary,
		bitrate:    bitrate,
		id3Version: id3Version,
		exec:       commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Error carries the diagnostic tail captured from a failed ffmpeg run.
type Error struct {
	Source string
	Output string
	Err    error
}

func (e *Error) Error() string {
	if strings.TrimSpace(e.Output) == "" {
		return fmt.Sprintf("transcode %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("transcode %s: %v: %s", e.Source, e.Err, e.Output)
}

func (e *Error) Unwrap() error { return e.Err }

// Transcode converts source to target, overwriting any existing target.
// A single attempt is made; callers re-run the tool rather than retrying
// individual files.
func (c *Client) Transcode(ctx context.Context, source, target string) error {
	args := []string{
		"-i", source,
		"-ab", c.bitrate,
		"-map_metadata", "0",
		"-id3v2_version", strconv.Itoa(c.id3Version),
		"-v", "quiet",
		"-stats",
		"-y",
		target,
	}

	tail := make([]string, 0, diagnosticTailLines)
	onLine := func(line string) {
		if len(tail) == diagnosticTailLines {
			copy(tail, tail[1:])
			tail = tail[:diagnosticTailLines-1]
		}
		tail = append(tail, line)
	}

	if err := c.exec.Run(ctx, c.binary, args, onLine); err != nil {
		return &Error{
			Source: source,
			Output: strings.TrimSpace(strings.Join(tail, "\n")),
			Err:    err,
		}
	}
	return nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	forward := func(line string) {
		if onLine == nil {
			return
		}
		mu.Lock()
		onLine(line)
		mu.Unlock()
	}

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		// ffmpeg -stats rewrites a single line with carriage returns.
		scanner.Split(scanCRLines)
		for scanner.Scan() {
			if text := strings.TrimSpace(scanner.Text()); text != "" {
				forward(text)
			}
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)

	wg.Wait()
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}

// scanCRLines splits on newlines and bare carriage returns.
func scanCRLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, b := range data {
		if b == '\n' || b == '\r' {
			return i + 1, data[:i], nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
