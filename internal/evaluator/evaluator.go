// Package evaluator implements swank.Evaluator: running host source
// through a pty-backed interactive subprocess and collecting its
// textual output, the way miniweb's consoleHandler spawns and attaches
// to a pty-backed child.
package evaluator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/kr/pty"

	"github.com/fgallina/swank/internal/logging"
)

var log = logging.MustGetLogger("evaluator")

// promptMarker is written after every source string is submitted to
// the child's stdin, so PTYEvaluator knows where the child's reply to
// this particular Eval call ends.
const promptMarker = "\x00--swank-eval-done--\x00"

// PTYEvaluator runs one long-lived interpreter subprocess under a pty
// and serializes access to it: spec.md §9's concurrency note resolves
// to "require the evaluator to be internally synchronized" rather than
// pushing serialization onto callers, since a single child process has
// no way to interleave two concurrent evaluations anyway.
type PTYEvaluator struct {
	mu     sync.Mutex
	cmd    *exec.Cmd
	tty    *os.File
	reader *bufio.Reader
}

// NewPTYEvaluator spawns name (with args) under a pty. The subprocess
// is expected to behave like an interactive REPL: text written to its
// stdin is executed, and its result appears on stdout.
func NewPTYEvaluator(name string, args ...string) (*PTYEvaluator, error) {
	cmd := exec.Command(name, args...)
	tty, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("evaluator: start %s: %w", name, err)
	}

	log.Info("spawned evaluator subprocess %s, pid = %d", name, cmd.Process.Pid)

	return &PTYEvaluator{
		cmd:    cmd,
		tty:    tty,
		reader: bufio.NewReader(tty),
	}, nil
}

// Eval writes source to the child's stdin followed by a request for
// promptMarker to be echoed, then reads output until promptMarker
// appears. It is the single synchronization point: only one Eval may
// be in flight against the child at a time.
func (e *PTYEvaluator) Eval(ctx context.Context, source string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := io.WriteString(e.tty, source+"\n"); err != nil {
		return "", fmt.Errorf("evaluator: write: %w", err)
	}
	marker := fmt.Sprintf("print(%q)\n", promptMarker)
	if _, err := io.WriteString(e.tty, marker); err != nil {
		return "", fmt.Errorf("evaluator: write marker: %w", err)
	}

	var out strings.Builder
	for {
		line, err := e.reader.ReadString('\n')
		out.WriteString(line)
		if strings.Contains(out.String(), promptMarker) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("evaluator: read: %w", err)
		}
	}

	result := strings.Replace(out.String(), promptMarker, "", 1)
	return strings.TrimRight(result, "\n"), nil
}

// Close terminates the subprocess, giving it a brief grace period
// before killing it outright.
func (e *PTYEvaluator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tty.Close()
	done := make(chan error, 1)
	go func() { done <- e.cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		return e.cmd.Process.Kill()
	}
}

// Echo is a dependency-free fallback evaluator: it returns its input
// unchanged, useful for tests and for running the server without a
// configured interpreter.
type Echo struct{}

func (Echo) Eval(_ context.Context, source string) (string, error) { return source, nil }
