package models

import (
	"strconv"
)

// Kind tags the scalar held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
)

// Value is a scalar-or-null cell value taken from the input document.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
}

// Null is the empty value.
var Null = Value{}

func String(s string) Value  { return Value{Kind: KindString, Str: s} }
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }
func Bool(b bool) Value      { return Value{Kind: KindBool, Bool: b} }

// ScalarOf converts a decoded JSON scalar (string, float64, bool, nil) to a Value.
// It reports false for objects and arrays.
func ScalarOf(v any) (Value, bool) {
	switch x := v.(type) {
	case nil:
		return Null, true
	case string:
		return String(x), true
	case float64:
		return Number(x), true
	case bool:
		return Bool(x), true
	default:
		return Null, false
	}
}

// IsNull reports whether the value carries nothing.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// String renders the value for delimited text output.
// Numbers use the shortest representation that round-trips ("100", "102.5").
func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}

// Cell returns the value in the form spreadsheet writers expect:
// string, float64, bool, or nil for an empty cell.
func (v Value) Cell() any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	default:
		return nil
	}
}
