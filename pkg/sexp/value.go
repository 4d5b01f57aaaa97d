// Package sexp implements the reader and writer for the SWANK wire
// protocol's S-expression dialect: symbols, strings, integers, floats,
// nil/t, proper lists, quoted lists, and dotted-pair cons cells.
package sexp

import "fmt"

// Kind tags the variant a Value holds.
type Kind int

const (
	KindNil Kind = iota
	KindT
	KindInt
	KindFloat
	KindString
	KindSymbol
	KindList
	KindQuoted
	KindCons
)

// Value is the tagged sum every Lisp datum on the wire is represented as.
// Only the fields relevant to Kind are populated; callers should switch on
// Kind rather than probe the zero value of an unrelated field.
type Value struct {
	Kind Kind

	Int    int64
	Float  float64
	Str    string // String and Symbol payload
	List   []Value
	Quoted *Value
	Car    *Value
	Cdr    *Value
}

// Nil is the canonical nil value.
var Nil = Value{Kind: KindNil}

// T is the canonical t value.
var T = Value{Kind: KindT}

// Int64 builds an Int value.
func Int64(n int64) Value { return Value{Kind: KindInt, Int: n} }

// Float64 builds a Float value.
func Float64(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// String builds a String value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Symbol builds a Symbol value. Callers are responsible for any leading
// ':' or quote character that belongs in the symbol's lexeme.
func Symbol(s string) Value { return Value{Kind: KindSymbol, Str: s} }

// List builds a proper List value.
func List(items ...Value) Value { return Value{Kind: KindList, List: items} }

// QuoteOf wraps v in a Quoted value.
func QuoteOf(v Value) Value {
	cp := v
	return Value{Kind: KindQuoted, Quoted: &cp}
}

// ConsOf builds a Cons(car, cdr) value.
func ConsOf(car, cdr Value) Value {
	a, d := car, cdr
	return Value{Kind: KindCons, Car: &a, Cdr: &d}
}

// Bool maps a Go bool to T/Nil.
func Bool(b bool) Value {
	if b {
		return T
	}
	return Nil
}

// IsNil reports whether v is Nil or an empty List, matching spec.md's
// "treated as equal to nil for printing purposes, but not interchangeable
// in the reader" rule.
func (v Value) IsNil() bool {
	return v.Kind == KindNil || (v.Kind == KindList && len(v.List) == 0)
}

// IsTruthy reports whether v should be treated as Lisp-true.
func (v Value) IsTruthy() bool {
	return !v.IsNil()
}

// Unquote returns v's inner value if v is Quoted, else v itself, per
// spec.md §9's "if the argument was a quoted form, descend one level".
func Unquote(v Value) Value {
	if v.Kind == KindQuoted {
		return *v.Quoted
	}
	return v
}

func (v Value) String() string {
	return Write(v)
}

func (v Value) GoString() string {
	switch v.Kind {
	case KindNil:
		return "sexp.Nil"
	case KindT:
		return "sexp.T"
	case KindInt:
		return fmt.Sprintf("sexp.Int64(%d)", v.Int)
	case KindFloat:
		return fmt.Sprintf("sexp.Float64(%v)", v.Float)
	case KindString:
		return fmt.Sprintf("sexp.String(%q)", v.Str)
	case KindSymbol:
		return fmt.Sprintf("sexp.Symbol(%q)", v.Str)
	case KindList:
		return fmt.Sprintf("sexp.List(%#v)", v.List)
	case KindQuoted:
		return fmt.Sprintf("sexp.QuoteOf(%#v)", *v.Quoted)
	case KindCons:
		return fmt.Sprintf("sexp.ConsOf(%#v, %#v)", *v.Car, *v.Cdr)
	default:
		return "sexp.Value{}"
	}
}
