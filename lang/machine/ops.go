package machine

import "github.com/mna/theta/lang/bitstream"

// binary dispatches Add/Sub/Mul/Div on a popped (left, right) pair. Add is
// additionally defined for Int+Int, Float+Float and the string
// concatenation special case; Sub/Mul/Div are numeric only. Every other
// pairing is a condition the type checker should have already rejected,
// surfaced here as a RuntimeError rather than a host panic.
func (vm *VM) binary(op string, left, right bitstream.Value) (bitstream.Value, error) {
	switch {
	case left.Kind == bitstream.KindInt && right.Kind == bitstream.KindInt:
		l, r := left.Int, right.Int
		switch op {
		case "add":
			return bitstream.Value{Kind: bitstream.KindInt, Int: l + r}, nil
		case "sub":
			return bitstream.Value{Kind: bitstream.KindInt, Int: l - r}, nil
		case "mul":
			return bitstream.Value{Kind: bitstream.KindInt, Int: l * r}, nil
		case "div":
			if r == 0 {
				return bitstream.Value{}, &RuntimeError{Msg: "integer division by zero"}
			}
			return bitstream.Value{Kind: bitstream.KindInt, Int: l / r}, nil
		}
	case left.Kind == bitstream.KindFloat && right.Kind == bitstream.KindFloat:
		l, r := left.Float, right.Float
		switch op {
		case "add":
			return bitstream.Value{Kind: bitstream.KindFloat, Float: l + r}, nil
		case "sub":
			return bitstream.Value{Kind: bitstream.KindFloat, Float: l - r}, nil
		case "mul":
			return bitstream.Value{Kind: bitstream.KindFloat, Float: l * r}, nil
		case "div":
			return bitstream.Value{Kind: bitstream.KindFloat, Float: l / r}, nil
		}
	case left.Kind == bitstream.KindString && right.Kind == bitstream.KindString && op == "add":
		return vm.intern(left.String() + right.String()), nil
	}
	return bitstream.Value{}, &RuntimeError{Msg: "invalid operand types for " + op + ": " + left.Type() + ", " + right.Type()}
}

// negate implements Negate: Float negation is fully defined, Bool negation
// doubles as logical not (emitUnary lowers both unary minus and unary bang
// to the same opcode). Int negation is a known gap left open by the
// container format's own text.
func negate(v bitstream.Value) (bitstream.Value, error) {
	switch v.Kind {
	case bitstream.KindFloat:
		return bitstream.Value{Kind: bitstream.KindFloat, Float: -v.Float}, nil
	case bitstream.KindBool:
		return bitstream.Value{Kind: bitstream.KindBool, Bool: !v.Bool}, nil
	case bitstream.KindInt:
		return bitstream.Value{}, &RuntimeError{Msg: "Int negation is not implemented"}
	default:
		return bitstream.Value{}, &RuntimeError{Msg: "cannot negate a " + v.Type()}
	}
}

// equal reports whether two values are equal: pointer identity for
// interned strings (per the container format's interning guarantee), value
// equality otherwise. Mismatched kinds are never equal rather than an
// error, matching how == is ordinarily total in expression-oriented
// languages even though the type checker will reject most such
// comparisons before they reach the VM.
func equal(left, right bitstream.Value) bool {
	if left.Kind != right.Kind {
		return false
	}
	switch left.Kind {
	case bitstream.KindBool:
		return left.Bool == right.Bool
	case bitstream.KindInt:
		return left.Int == right.Int
	case bitstream.KindFloat:
		return left.Float == right.Float
	case bitstream.KindString:
		return left.Ptr == right.Ptr
	default:
		return true // KindNone
	}
}

// compare implements the ordered comparisons (Greater/Less and their
// or-equal forms); only Int and Float are ordered.
func compare(op string, left, right bitstream.Value) (bool, error) {
	if left.Kind != right.Kind || (left.Kind != bitstream.KindInt && left.Kind != bitstream.KindFloat) {
		return false, &RuntimeError{Msg: "invalid operand types for " + op + ": " + left.Type() + ", " + right.Type()}
	}
	var cmp int
	if left.Kind == bitstream.KindInt {
		switch {
		case left.Int < right.Int:
			cmp = -1
		case left.Int > right.Int:
			cmp = 1
		}
	} else {
		switch {
		case left.Float < right.Float:
			cmp = -1
		case left.Float > right.Float:
			cmp = 1
		}
	}
	switch op {
	case "greater_than":
		return cmp > 0, nil
	case "greater_or_equal":
		return cmp >= 0, nil
	case "less_than":
		return cmp < 0, nil
	case "less_or_equal":
		return cmp <= 0, nil
	}
	return false, &RuntimeError{Msg: "unknown comparison " + op}
}
