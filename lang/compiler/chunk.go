package compiler

import (
	"encoding/binary"
	"fmt"
)

// ConstKind tags the variant held by a Constant.
type ConstKind uint8

const (
	ConstNone ConstKind = iota
	ConstBool
	ConstInt
	ConstFloat
	ConstString
)

// Constant is one entry of a Chunk's local constant pool. Only one of the
// payload fields is meaningful, selected by Kind; integers and floats are
// widened to the wire width (i64/f64) the container format uses, even
// though source literals are bounded to i32/f32 magnitudes at lex time.
type Constant struct {
	Kind ConstKind
	Bool bool
	Int  int64
	Float float64
	Str  string
}

func (c Constant) String() string {
	switch c.Kind {
	case ConstBool:
		return fmt.Sprintf("%v", c.Bool)
	case ConstInt:
		return fmt.Sprintf("%d", c.Int)
	case ConstFloat:
		return fmt.Sprintf("%g", c.Float)
	case ConstString:
		return fmt.Sprintf("%q", c.Str)
	default:
		return "none"
	}
}

// Chunk is a function's compiled instruction stream plus the local
// constant pool its Constant/DefineGlobal/GetGlobal/CallDirect operands
// index into. Chunks are built bottom-up: every emit* function returns a
// small Chunk, and composite nodes merge their children's chunks (and
// their own operator chunk) into one, relocating constant-pool offsets as
// they go, exactly as the final bitstream linker will do once more when
// chunks are joined across functions.
type Chunk struct {
	Constants []Constant
	Code      []byte
}

func single(op Opcode) *Chunk {
	return &Chunk{Code: []byte{byte(op)}}
}

func withArg(op Opcode, arg uint64) *Chunk {
	width, _ := argWidth(op)
	code := make([]byte, 1+width)
	code[0] = byte(op)
	switch width {
	case 1:
		code[1] = byte(arg)
	case 8:
		binary.LittleEndian.PutUint64(code[1:], arg)
	}
	return &Chunk{Code: code}
}

// withConstant appends c to a new chunk's pool and emits op referencing it
// at pool offset 0; merge relocates that offset as chunks are combined.
func withConstant(op Opcode, c Constant) *Chunk {
	ch := withArg(op, 0)
	ch.Constants = []Constant{c}
	return ch
}

// merge concatenates chunks, in order, into a new chunk, relocating every
// constant-pool-referencing instruction of each chunk by the number of
// constants the chunks before it contributed, so offsets stay correct in
// the combined pool.
func merge(chunks ...*Chunk) *Chunk {
	out := &Chunk{}
	for _, c := range chunks {
		base := len(out.Constants)
		out.Constants = append(out.Constants, c.Constants...)
		out.Code = append(out.Code, RelocateConstantRefs(c.Code, base)...)
	}
	return out
}

// RelocateConstantRefs returns a copy of code with every constant-pool
// reference (Constant, DefineGlobal, GetGlobal, CallDirect) shifted by base.
// The bitstream assembler uses this to relocate each function's chunk, whose
// constants were pooled locally during emission, against the single global
// constant pool the container format stores once per bitstream.
func RelocateConstantRefs(code []byte, base int) []byte {
	out := append([]byte(nil), code...)
	for pc := 0; pc < len(out); {
		op := Opcode(out[pc])
		width, isConstRef := argWidth(op)
		if isConstRef && width == 1 {
			out[pc+1] = byte(int(out[pc+1]) + base)
		}
		pc += 1 + width
	}
	return out
}

// len reports the number of bytes of emitted instructions in the chunk,
// used to measure jump distances when deciding between the short and far
// jump instruction variants.
func (c *Chunk) len() int { return len(c.Code) }
