package bitstream

import "fmt"

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	KindNone ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

// Value is a runtime value as produced by disassembly: the wire Constant
// representation with string constants already interned into heap
// pointers, ready for the machine to load directly into a constant pool
// without retouching the intern table.
type Value struct {
	Kind ValueKind
	Bool bool
	Int  int64
	Float float64
	// Ptr holds the interned string for KindString values. It is a pointer so
	// that two Values produced from equal strings during disassembly compare
	// equal by identity once interned, matching the container format's note
	// that runtime string equality need not retouch the intern table.
	Ptr *string
}

func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return fmt.Sprintf("%v", v.Bool)
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindString:
		if v.Ptr == nil {
			return ""
		}
		return *v.Ptr
	default:
		return "none"
	}
}

// Type returns a short string naming v's runtime type, for error messages
// and debug printing.
func (v Value) Type() string {
	switch v.Kind {
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	default:
		return "None"
	}
}

// CompiledFunction is a function as it exists after disassembly: its chunk
// is an opaque byte slice (the instruction stream, constant pool already
// lifted to the bitstream level) rather than a compiler.Chunk.
type CompiledFunction struct {
	Name     string
	Args     []TyTag
	ReturnTy TyTag
	Chunk    []byte
}

// CompiledBitstream is the disassembled form of a loaded program: a pool of
// runtime Values (strings already interned) and the function table the VM
// loader hands to the machine.
type CompiledBitstream struct {
	Constants []Value
	Functions []CompiledFunction
}
