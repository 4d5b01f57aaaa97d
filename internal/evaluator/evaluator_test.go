package evaluator_test

import (
	"context"
	"testing"

	. "github.com/fgallina/swank/internal/evaluator"
)

func TestEchoReturnsInputUnchanged(t *testing.T) {
	e := Echo{}
	out, err := e.Eval(context.Background(), "1 + 1")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if out != "1 + 1" {
		t.Fatalf("out = %q, want %q", out, "1 + 1")
	}
}
