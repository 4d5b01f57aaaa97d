// Package console implements the local interactive REPL that runs
// alongside the server, sharing its evaluator — the Go analogue of
// original_source/swank/repl.py's REPL(InteractiveConsole).
package console

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"

	"github.com/fgallina/swank/internal/logging"
	"github.com/fgallina/swank/pkg/swank"
)

var log = logging.MustGetLogger("console")

// Console is a prompt/evaluate/print loop reading from a liner-backed
// terminal, sharing the same swank.Evaluator the TCP server dispatches
// eval requests to.
type Console struct {
	Prompt    string
	Evaluator swank.Evaluator
}

// New returns a Console wrapping evaluator with a default prompt.
func New(evaluator swank.Evaluator) *Console {
	return &Console{Prompt: "Go> ", Evaluator: evaluator}
}

// Run reads lines until EOF (Ctrl-D) or a read error, evaluating each
// and printing its result, matching repl.py's interact() loop.
func (c *Console) Run() error {
	input := liner.NewLiner()
	defer input.Close()
	input.SetCtrlCAborts(true)

	for {
		line, err := input.Prompt(c.Prompt)
		if err == io.EOF || err == liner.ErrPromptAborted {
			return nil
		}
		if err != nil {
			return fmt.Errorf("console: read: %w", err)
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		input.AppendHistory(line)

		out, err := c.Evaluator.Eval(context.Background(), line)
		if err != nil {
			log.Error("eval failed: %v", err)
			fmt.Println(err)
			continue
		}
		fmt.Println(out)
	}
}
