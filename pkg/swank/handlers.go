package swank

import (
	"context"
	"strings"

	"github.com/fgallina/swank/pkg/sexp"
)

// HostInfo supplies the host-specific fields of the connection-info
// response. internal/hostinfo provides the concrete implementation;
// pkg/swank only depends on this narrow interface so it stays free of
// /proc and DNS concerns.
type HostInfo interface {
	PID() int
	MachineType() string
	MachineVersion() string
	Instance() string
	ImplementationVersion() string
	ProtocolVersion() string
}

// RegisterCoreHandlers wires the handlers spec.md §4.4 calls mandatory
// or built-in: connection-info, the four eval variants, and
// simple-completions. Host-specific operations are registered
// separately by the caller (see cmd/swankd, which then calls
// RegisterStubHandlers).
func RegisterCoreHandlers(info HostInfo) {
	Register(&Handler{
		Name: "swank:connection-info",
		Func: func(s *Session, _ []sexp.Value) (sexp.Value, error) {
			return connectionInfo(s, info), nil
		},
	})

	evalHandler := func(s *Session, args []sexp.Value) (sexp.Value, error) {
		source := firstString(args)
		out, err := s.Evaluator.Eval(context.Background(), source)
		if err != nil {
			return sexp.Value{}, err
		}
		return sexp.String(sexp.EscapeString(out)), nil
	}
	Register(&Handler{Name: "swank:interactive-eval", Func: evalHandler})
	Register(&Handler{Name: "swank:interactive-eval-region", Func: evalHandler})
	Register(&Handler{Name: "swank:pprint-eval", Func: evalHandler})
	Register(&Handler{Name: "swank:eval", Func: evalHandler})

	Register(&Handler{
		Name: "swank:simple-completions",
		Func: func(s *Session, args []sexp.Value) (sexp.Value, error) {
			prefix := firstString(args)
			var matches []string
			if s.Completer != nil {
				matches = s.Completer.Complete(prefix)
			}
			return completionsResult(prefix, matches), nil
		},
	})
}

func connectionInfo(s *Session, info HostInfo) sexp.Value {
	encoding := sexp.FromGo(sexp.Plist{
		sexp.Entry(":coding-systems", []string{"utf-8-unix", "iso-latin-1-unix"}),
	})
	impl := sexp.FromGo(sexp.Plist{
		sexp.Entry(":type", "GO"),
		sexp.Entry(":name", "go"),
		sexp.Entry(":version", info.ImplementationVersion()),
		sexp.Entry(":program", nil),
	})
	machine := sexp.FromGo(sexp.Plist{
		sexp.Entry(":instance", info.Instance()),
		sexp.Entry(":type", info.MachineType()),
		sexp.Entry(":version", info.MachineVersion()),
	})
	pkg := sexp.FromGo(sexp.Plist{
		sexp.Entry(":name", "go"),
		sexp.Entry(":prompt", s.Prompt),
	})

	return sexp.FromGo(sexp.Plist{
		sexp.Entry(":pid", info.PID()),
		sexp.Entry(":style", nil),
		sexp.Entry(":encoding", encoding),
		sexp.Entry(":lisp-implementation", impl),
		sexp.Entry(":machine", machine),
		sexp.Entry(":package", pkg),
		sexp.Entry(":version", info.ProtocolVersion()),
	})
}

// completionsResult builds ( (c1 c2 …) common-prefix ), per spec.md
// §4.4: common-prefix is the longest common prefix of matches, or the
// query prefix itself when there are no matches.
func completionsResult(prefix string, matches []string) sexp.Value {
	items := make([]sexp.Value, len(matches))
	for i, m := range matches {
		items[i] = sexp.String(sexp.EscapeString(m))
	}
	return sexp.List(sexp.List(items...), sexp.String(sexp.EscapeString(longestCommonPrefix(matches, prefix))))
}

func longestCommonPrefix(matches []string, fallback string) string {
	if len(matches) == 0 {
		return fallback
	}
	prefix := matches[0]
	for _, m := range matches[1:] {
		for !strings.HasPrefix(m, prefix) {
			prefix = prefix[:len(prefix)-1]
			if prefix == "" {
				return ""
			}
		}
	}
	return prefix
}

// firstString extracts the first String argument's text, or "" if
// args is empty or its head isn't a String (handlers are tolerant of
// malformed calls per spec.md's "client-side concern" framing).
func firstString(args []sexp.Value) string {
	if len(args) == 0 || args[0].Kind != sexp.KindString {
		return ""
	}
	return args[0].Str
}

// stubOperations lists the remaining SWANK operations this server
// accepts but does not implement; each resolves to Nil, which SWANK
// clients tolerate (spec.md §4.4, "Other handlers").
var stubOperations = []string{
	"swank:create-repl",
	"swank:listener-eval",
	"swank:interrupt",
	"swank:set-package",
	"swank:set-default-directory",
	"swank:buffer-first-change",
	"swank:compile-file-for-emacs",
	"swank:compile-string-for-emacs",
	"swank:load-file",
	"swank:describe-symbol",
	"swank:describe-function",
	"swank:documentation-symbol",
	"swank:apropos-list-for-emacs",
	"swank:fuzzy-completions",
	"swank:completions-for-keyword",
	"swank:init-inspector",
	"swank:inspect-nth-part",
	"swank:inspector-pop",
	"swank:inspector-next",
	"swank:quit-inspector",
	"swank:inspect-current-condition",
	"swank:inspect-frame-var",
	"swank:xref",
	"swank:xrefs",
	"swank:who-calls",
	"swank:who-references",
	"swank:who-sets",
	"swank:who-binds",
	"swank:who-macroexpands",
	"swank:who-specializes",
	"swank:list-callers",
	"swank:list-callees",
	"swank:throw-to-toplevel",
	"swank:sldb-abort",
	"swank:sldb-continue",
	"swank:sldb-step",
	"swank:sldb-next",
	"swank:sldb-out",
	"swank:sldb-break",
	"swank:sldb-disassemble",
	"swank:sldb-return-from-frame",
	"swank:backtrace",
	"swank:frame-locals-and-catch-tags",
	"swank:frame-source-location",
	"swank:debugger-info-for-emacs",
	"swank:invoke-nth-restart",
	"swank:invoke-nth-restart-for-emacs",
	"swank:frame-call-chain",
	"swank:toggle-trace",
	"swank:untrace-all",
	"swank:profile-toggle",
	"swank:profile-report",
	"swank:profile-reset",
	"swank:profiled-functions",
	"swank:macroexpand-1",
	"swank:macroexpand",
	"swank:macroexpand-all",
	"swank:disassemble-form",
	"swank:list-threads",
	"swank:kill-nth-thread",
	"swank:swank-require",
	"swank:swank-macroexpand-all",
	"swank:operator-arglist",
	"swank:autodoc",
	"swank:find-definitions-for-emacs",
	"swank:find-source-location-for-emacs",
	"swank:value-for-editing",
	"swank:commit-edited-value",
	"swank:server-has-global-breakpoints-p",
}

// RegisterStubHandlers registers every name in stubOperations as a
// Nil-returning handler. Called once at startup after
// RegisterCoreHandlers.
func RegisterStubHandlers() {
	for _, name := range stubOperations {
		if _, exists := lookup(name); exists {
			continue
		}
		RegisterStub(name)
	}
}
