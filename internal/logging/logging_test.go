package logging_test

import (
	"bufio"
	"os"
	"strings"
	"testing"

	. "github.com/fgallina/swank/internal/logging"
)

func TestLoggerRespectsSinkLevel(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "log")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()

	AddSink(t.Name(), f, WARN)
	log := MustGetLogger("test")

	log.Debug("should not appear")
	log.Warn("should appear: %d", 7)

	f.Sync()
	r, err := os.Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "should appear: 7") {
		t.Fatalf("line = %q, missing expected message", lines[0])
	}
}

func TestParseLevelRoundTrip(t *testing.T) {
	for _, name := range []string{"debug", "info", "warn", "error", "fatal"} {
		l, err := ParseLevel(name)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", name, err)
		}
		if l.String() != name {
			t.Fatalf("Level(%q).String() = %q", name, l.String())
		}
	}
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	if _, err := ParseLevel("bogus"); err == nil {
		t.Fatalf("ParseLevel(bogus) succeeded, want error")
	}
}
