package vm

import "strconv"

// Kind tags the type of a stack cell.
type Kind byte

const (
	KindInt Kind = iota + 1
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	}
	return "invalid"
}

// Value is one stack cell. The Kind decides which of Int or Float is live,
// so a float opcode applied to an int cell is detected instead of silently
// reinterpreting bits.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
}

func IntValue(v int64) Value {
	return Value{Kind: KindInt, Int: v}
}

func FloatValue(v float64) Value {
	return Value{Kind: KindFloat, Float: v}
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	}
	return "<invalid>"
}

// Any returns the live field, for logging and json.
func (v Value) Any() any {
	if v.Kind == KindFloat {
		return v.Float
	}
	return v.Int
}
