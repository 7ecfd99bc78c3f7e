package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"flacpress/internal/logging"
)

func TestConsoleHandlerIncludesComponentPrefixAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	scoped := logging.NewComponentLogger(logger, "convert")
	scoped.Info("converted file", logging.String(logging.FieldSource, "a.flac"), logging.Int("index", 3))

	line := buf.String()
	if !strings.Contains(line, "INFO convert: converted file") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if !strings.Contains(line, "source=a.flac") {
		t.Fatalf("expected source attr in line: %q", line)
	}
	if !strings.Contains(line, "index=3") {
		t.Fatalf("expected index attr in line: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Warn("transcode failed", logging.String("detail", "exit status 1"))

	if !strings.Contains(buf.String(), `detail="exit status 1"`) {
		t.Fatalf("expected quoted detail, got %q", buf.String())
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be suppressed: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn line should be present: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if _, err := logging.New(logging.Options{Format: "xml", Writer: &buf}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
