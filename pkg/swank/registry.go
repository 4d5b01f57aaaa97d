package swank

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fgallina/swank/pkg/sexp"
)

// HandlerFunc implements one swank: operation. args are the already
// sexp.Unquote-d arguments from the :emacs-rex form, in order; the
// returned Value becomes the RESULT slot of the :ok envelope.
type HandlerFunc func(s *Session, args []sexp.Value) (sexp.Value, error)

// Handler binds a wire operation name to its implementation, mirroring
// minicli's Handler/Register split: registration normalizes the name
// once up front so dispatch is a map lookup, not a string rewrite per
// request.
type Handler struct {
	// Name is the SWANK operation as it appears on the wire, e.g.
	// "swank:connection-info" or "swank-repl:create-repl".
	Name string
	Func HandlerFunc
}

var (
	registryLock sync.Mutex
	registry     = map[string]*Handler{}
)

// normalizeName maps a wire operation name to its registry key: ':' and
// '-' both fold to '_', matching spec.md §4.4's handler-name dispatch
// rule so "swank:connection-info" and "swank_connection_info" resolve
// to the same Handler.
func normalizeName(name string) string {
	r := strings.NewReplacer(":", "_", "-", "_")
	return r.Replace(name)
}

// Register adds h to the handler table, keyed by its normalized name.
// It panics if a handler is already registered under that name — a
// programmer error caught at init time, never at request time.
func Register(h *Handler) {
	registryLock.Lock()
	defer registryLock.Unlock()

	key := normalizeName(h.Name)
	if _, exists := registry[key]; exists {
		panic(fmt.Sprintf("swank: handler already registered for %q", h.Name))
	}
	registry[key] = h
}

// RegisterStub registers name as a handler that always returns Nil,
// for SWANK operations this server accepts but does not implement.
func RegisterStub(name string) {
	Register(&Handler{
		Name: name,
		Func: func(*Session, []sexp.Value) (sexp.Value, error) {
			return sexp.Nil, nil
		},
	})
}

// lookup finds the handler registered for name, if any.
func lookup(name string) (*Handler, bool) {
	registryLock.Lock()
	defer registryLock.Unlock()

	h, ok := registry[normalizeName(name)]
	return h, ok
}

// Reset clears the handler registry. Exposed for tests that want a
// clean registry rather than one left populated by earlier Register calls.
func Reset() {
	registryLock.Lock()
	defer registryLock.Unlock()
	registry = map[string]*Handler{}
}
