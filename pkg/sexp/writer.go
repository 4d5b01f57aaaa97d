package sexp

import (
	"fmt"
	"strconv"
	"strings"
)

// Write serialises v back to its textual form. It is total: every Value
// produced by Reader.Read, and every Value built directly by a handler,
// has a defined printing.
func Write(v Value) string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindT:
		return "t"
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return formatFloat(v.Float)
	case KindString:
		return `"` + v.Str + `"`
	case KindSymbol:
		return v.Str
	case KindList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = Write(e)
		}
		return "(" + strings.Join(parts, " ") + ")"
	case KindQuoted:
		return "'" + Write(*v.Quoted)
	case KindCons:
		return "(" + Write(*v.Car) + " . " + Write(*v.Cdr) + ")"
	default:
		return "nil"
	}
}

// formatFloat renders f with the shortest round-trip decimal that still
// carries at least one '.', per spec.md §4.3.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// EscapeString turns arbitrary Go text into the wire-level raw form that
// Value.Str expects for a String: embedded '\' and '"' are escaped so
// that wrapping it in quotes produces valid, re-readable SWANK syntax.
// Reader-produced strings are already in this form (see readString) and
// must not be passed through EscapeString again.
func EscapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PlistEntry is one key/value pair of an ordered property list.
type PlistEntry struct {
	Key string
	Val interface{}
}

// Plist is an ordered, flat alternating-keyword-value list, used by
// handlers building host-native responses (e.g. connection-info) where
// key order must be preserved — a plain Go map cannot guarantee that.
type Plist []PlistEntry

// Entry is a convenience constructor for a PlistEntry.
func Entry(key string, val interface{}) PlistEntry {
	return PlistEntry{Key: key, Val: val}
}

// FromGo converts a host-native Go value into a Value, per spec.md §4.3's
// "convenience path for handlers": strings become String, numbers become
// Int/Float, bool/nil become T/Nil, slices become List, and Plist becomes
// a flat list alternating keyword-symbol keys and written values. Any
// other type is rendered by its textual form wrapped as a symbol.
func FromGo(v interface{}) Value {
	switch x := v.(type) {
	case Value:
		return x
	case nil:
		return Nil
	case bool:
		return Bool(x)
	case string:
		return String(EscapeString(x))
	case int:
		return Int64(int64(x))
	case int32:
		return Int64(int64(x))
	case int64:
		return Int64(x)
	case uint32:
		return Int64(int64(x))
	case float32:
		return Float64(float64(x))
	case float64:
		return Float64(x)
	case Plist:
		items := make([]Value, 0, len(x)*2)
		for _, e := range x {
			items = append(items, Symbol(e.Key))
			items = append(items, FromGo(e.Val))
		}
		return List(items...)
	case []Value:
		return List(x...)
	case []string:
		items := make([]Value, len(x))
		for i, e := range x {
			items[i] = String(EscapeString(e))
		}
		return List(items...)
	case []interface{}:
		items := make([]Value, len(x))
		for i, e := range x {
			items[i] = FromGo(e)
		}
		return List(items...)
	default:
		return Symbol(fmt.Sprintf("%v", x))
	}
}
