package swank

import (
	"errors"
	"fmt"

	"github.com/fgallina/swank/pkg/sexp"
)

// ErrBadRequestShape is returned when the decoded top-level form is not
// a proper five-element ( :emacs-rex FORM PACKAGE THREAD ID ) list.
var ErrBadRequestShape = errors.New("swank: malformed :emacs-rex request")

// indentationEntries is the fixed nine-entry table sent, unsolicited,
// as the very first frame on every connection — spec.md §4.4.
var indentationEntries = []string{
	"def", "class", "if", "else", "while", "for", "try", "except", "finally",
}

// IndentationUpdate builds the unsolicited first-frame message. The
// connection loop calls this exactly once, before reading any request.
func IndentationUpdate() []byte {
	entries := make([]sexp.Value, len(indentationEntries))
	for i, name := range indentationEntries {
		entries[i] = sexp.ConsOf(sexp.Symbol(name), sexp.Int64(1))
	}
	form := sexp.List(sexp.Symbol(":indentation-update"), sexp.List(entries...))
	return mustFrame(form)
}

// Dispatch decodes one de-framed request payload, routes it to the
// registered handler, and returns the framed response bytes. It never
// returns an error: handler failures and request-shape failures become a
// debug envelope per spec.md §7, and so does a payload that isn't valid
// sexp syntax (a reader error), which carries ID 0 since no ID can be
// recovered from it.
func Dispatch(s *Session, payload []byte) []byte {
	form, err := sexp.Read(string(payload))
	if err != nil {
		return mustFrame(debugEnvelope(fmt.Sprintf("%v", err), 0))
	}

	rex, id, ok := decodeRex(form)
	if !ok {
		return mustFrame(debugEnvelope(ErrBadRequestShape.Error(), id))
	}

	s.Package = rex.pkg
	s.Thread = rex.thread
	s.ID = rex.id

	h, found := lookup(rex.opName)
	if !found {
		return mustFrame(okEnvelope(sexp.Nil, rex.id))
	}

	result, err := h.Func(s, rex.args)
	if err != nil {
		return mustFrame(debugEnvelope(err.Error(), rex.id))
	}
	return mustFrame(okEnvelope(result, rex.id))
}

type rexForm struct {
	opName string
	args   []sexp.Value
	pkg    sexp.Value
	thread sexp.Value
	id     int64
}

// decodeRex validates and extracts the ( :emacs-rex (OP ARG*) PACKAGE
// THREAD ID ) shape described in spec.md §4.4 and §6. The returned id
// is best-effort: 0 when it can't be recovered, per spec.md §7.
func decodeRex(form sexp.Value) (rexForm, int64, bool) {
	if form.Kind != sexp.KindList || len(form.List) != 5 {
		return rexForm{}, 0, false
	}
	if form.List[0].Kind != sexp.KindSymbol || form.List[0].Str != ":emacs-rex" {
		return rexForm{}, 0, false
	}

	idVal := form.List[4]
	var id int64
	if idVal.Kind == sexp.KindInt {
		id = idVal.Int
	}

	callForm := form.List[1]
	if callForm.Kind != sexp.KindList || len(callForm.List) == 0 {
		return rexForm{}, id, false
	}
	opSym := callForm.List[0]
	if opSym.Kind != sexp.KindSymbol {
		return rexForm{}, id, false
	}

	rawArgs := callForm.List[1:]
	args := make([]sexp.Value, len(rawArgs))
	for i, a := range rawArgs {
		args[i] = sexp.Unquote(a)
	}

	return rexForm{
		opName: opSym.Str,
		args:   args,
		pkg:    form.List[2],
		thread: form.List[3],
		id:     idVal.Int,
	}, id, true
}

// okEnvelope builds ( :return ( :ok RESULT ) ID ).
func okEnvelope(result sexp.Value, id int64) sexp.Value {
	return sexp.List(
		sexp.Symbol(":return"),
		sexp.List(sexp.Symbol(":ok"), result),
		sexp.Int64(id),
	)
}

// debugEnvelope builds ( :debug 0 1 ( MESSAGE nil ) () () ID ), the
// minimal SLDB stub described in spec.md §4.4.
func debugEnvelope(message string, id int64) sexp.Value {
	return sexp.List(
		sexp.Symbol(":debug"),
		sexp.Int64(0),
		sexp.Int64(1),
		sexp.List(sexp.String(sexp.EscapeString(message)), sexp.Nil),
		sexp.List(),
		sexp.List(),
		sexp.Int64(id),
	)
}

func mustFrame(v sexp.Value) []byte {
	payload := []byte(sexp.Write(v))
	framed, err := Frame(payload)
	if err != nil {
		// A handler-constructed response exceeding 16MiB indicates a
		// runaway result; truncate rather than drop the connection.
		payload = payload[:MaxPayloadLen]
		framed, _ = Frame(payload)
	}
	return framed
}
