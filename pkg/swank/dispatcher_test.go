package swank_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fgallina/swank/pkg/sexp"
	. "github.com/fgallina/swank/pkg/swank"
)

type fakeEvaluator struct {
	out string
	err error
}

func (f fakeEvaluator) Eval(context.Context, string) (string, error) { return f.out, f.err }

type fakeCompleter struct{ names []string }

func (f fakeCompleter) Complete(prefix string) []string {
	var out []string
	for _, n := range f.names {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	return out
}

type fakeHostInfo struct{}

func (fakeHostInfo) PID() int                      { return 4242 }
func (fakeHostInfo) MachineType() string           { return "x86_64" }
func (fakeHostInfo) MachineVersion() string        { return "x86_64" }
func (fakeHostInfo) Instance() string              { return "testhost [127.0.0.1]" }
func (fakeHostInfo) ImplementationVersion() string { return "go1.21" }
func (fakeHostInfo) ProtocolVersion() string       { return "2012-07-13" }

func newTestSession(evalOut string, evalErr error) *Session {
	return NewSession(fakeEvaluator{out: evalOut, err: evalErr}, fakeCompleter{names: []string{"foo", "foobar", "bar"}})
}

func decodePayload(t *testing.T, framed []byte) string {
	t.Helper()
	if len(framed) < 6 {
		t.Fatalf("framed too short: %q", framed)
	}
	return string(framed[6:])
}

func TestDispatchUnknownOpReturnsNilOk(t *testing.T) {
	Reset()
	s := newTestSession("", nil)
	req := `(:emacs-rex (swank:totally-unknown-op) nil t 7)`
	resp := decodePayload(t, Dispatch(s, []byte(req)))
	want := Write(MustRead(t, `(:return (:ok nil) 7)`))
	if resp != want {
		t.Fatalf("resp = %q, want %q", resp, want)
	}
}

func TestDispatchBadShapeYieldsDebugEnvelopeWithZeroID(t *testing.T) {
	Reset()
	s := newTestSession("", nil)
	resp := decodePayload(t, Dispatch(s, []byte(`(1 2 3)`)))
	v := MustRead(t, resp)
	if v.Kind != sexp.KindList || len(v.List) != 7 {
		t.Fatalf("resp = %q, want 7-element debug envelope", resp)
	}
	if v.List[0].Str != ":debug" {
		t.Fatalf("resp head = %q, want :debug", v.List[0].Str)
	}
	if v.List[6].Int != 0 {
		t.Fatalf("resp ID = %d, want 0", v.List[6].Int)
	}
}

func TestDispatchEvalSuccess(t *testing.T) {
	Reset()
	RegisterCoreHandlers(fakeHostInfo{})
	s := newTestSession("Evaled region", nil)
	req := `(:emacs-rex (swank:interactive-eval "x = 1") nil t 2)`
	resp := decodePayload(t, Dispatch(s, []byte(req)))
	want := Write(MustRead(t, `(:return (:ok "Evaled region") 2)`))
	if resp != want {
		t.Fatalf("resp = %q, want %q", resp, want)
	}
}

func TestDispatchEvalFailureYieldsDebugEnvelope(t *testing.T) {
	Reset()
	RegisterCoreHandlers(fakeHostInfo{})
	s := newTestSession("", errors.New("division by zero"))
	req := `(:emacs-rex (swank:interactive-eval "1/0") nil t 3)`
	resp := decodePayload(t, Dispatch(s, []byte(req)))
	v := MustRead(t, resp)
	if v.Kind != sexp.KindList || len(v.List) != 7 || v.List[0].Str != ":debug" {
		t.Fatalf("resp = %q, want 7-element :debug envelope", resp)
	}
	if v.List[6].Int != 3 {
		t.Fatalf("resp ID = %d, want 3", v.List[6].Int)
	}
}

func TestDispatchConnectionInfo(t *testing.T) {
	Reset()
	RegisterCoreHandlers(fakeHostInfo{})
	s := newTestSession("", nil)
	req := `(:emacs-rex (swank:connection-info) nil t 1)`
	resp := decodePayload(t, Dispatch(s, []byte(req)))
	v := MustRead(t, resp)
	if v.Kind != sexp.KindList || v.List[0].Str != ":return" {
		t.Fatalf("resp = %q, want :return envelope", resp)
	}
	if v.List[2].Int != 1 {
		t.Fatalf("resp ID = %d, want 1", v.List[2].Int)
	}
}

func TestDispatchDottedPairArgCollapsesAndIsIgnored(t *testing.T) {
	Reset()
	RegisterCoreHandlers(fakeHostInfo{})
	s := newTestSession("", nil)
	req := `(:emacs-rex (swank:connection-info '(1 . 2)) nil t 4)`
	resp := decodePayload(t, Dispatch(s, []byte(req)))
	v := MustRead(t, resp)
	if v.List[2].Int != 4 {
		t.Fatalf("resp ID = %d, want 4", v.List[2].Int)
	}
}

func TestDispatchCommentToleranceYieldsSameResponseShape(t *testing.T) {
	Reset()
	RegisterStub("op")
	s1 := newTestSession("", nil)
	s2 := newTestSession("", nil)

	withComment := "(:emacs-rex (op) ;;; comment\n nil t 5)"
	withoutComment := "(:emacs-rex (op) nil t 5)"

	a := decodePayload(t, Dispatch(s1, []byte(withComment)))
	b := decodePayload(t, Dispatch(s2, []byte(withoutComment)))
	if a != b {
		t.Fatalf("comment tolerance mismatch: %q != %q", a, b)
	}
}

func TestDispatchSimpleCompletions(t *testing.T) {
	Reset()
	RegisterCoreHandlers(fakeHostInfo{})
	s := newTestSession("", nil)
	req := `(:emacs-rex (swank:simple-completions "foo" nil) nil t 9)`
	resp := decodePayload(t, Dispatch(s, []byte(req)))
	v := MustRead(t, resp)
	result := v.List[1].List[1]
	matches := result.List[0]
	if len(matches.List) != 2 {
		t.Fatalf("matches = %#v, want 2 entries", matches)
	}
	if result.List[1].Str != "foo" {
		t.Fatalf("common prefix = %q, want foo", result.List[1].Str)
	}
}

func TestIndentationUpdateHasNineEntries(t *testing.T) {
	framed := IndentationUpdate()
	v := MustRead(t, decodePayload(t, framed))
	if v.List[0].Str != ":indentation-update" {
		t.Fatalf("head = %q, want :indentation-update", v.List[0].Str)
	}
	if len(v.List[1].List) != 9 {
		t.Fatalf("entries = %d, want 9", len(v.List[1].List))
	}
}

func MustRead(t *testing.T, s string) sexp.Value {
	t.Helper()
	v, err := sexp.Read(s)
	if err != nil {
		t.Fatalf("sexp.Read(%q): %v", s, err)
	}
	return v
}

func Write(v sexp.Value) string { return sexp.Write(v) }
