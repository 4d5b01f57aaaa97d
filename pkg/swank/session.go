package swank

import (
	"context"

	"github.com/fgallina/swank/pkg/sexp"
)

// Session holds everything a dispatcher needs that outlives a single
// request: the echo fields from the last decoded :emacs-rex form and
// the capabilities handlers close over. One Session belongs to exactly
// one connection; nothing here is shared across connections, matching
// spec.md §4.5/§5 ("session object owned by its connection loop").
type Session struct {
	Package sexp.Value
	Thread  sexp.Value
	ID      int64

	Evaluator Evaluator
	Completer Completer

	// Prompt is echoed in connection-info's (:package :prompt ...) slot.
	Prompt string
}

// NewSession returns a Session ready to serve a fresh connection.
func NewSession(evaluator Evaluator, completer Completer) *Session {
	return &Session{
		Package:   sexp.Nil,
		Thread:    sexp.T,
		Evaluator: evaluator,
		Completer: completer,
		Prompt:    "Go> ",
	}
}

// Evaluator executes host source and returns its textual result, or an
// error describing why it could not. The dispatcher treats it as an
// opaque capability per spec.md §1; see internal/evaluator for the
// pty-backed default implementation.
type Evaluator interface {
	Eval(ctx context.Context, source string) (string, error)
}

// Completer returns the known completions for a prefix, used by the
// swank:simple-completions handler.
type Completer interface {
	Complete(prefix string) []string
}
