package compiler

import (
	"encoding/binary"
	"fmt"
)

// Opcode is a single bytecode instruction tag. Values match the on-disk
// encoding exactly: the emitter, the disassemblers and the VM all share
// this table rather than each keeping their own.
type Opcode uint8

//nolint:revive
const (
	Return Opcode = 0x00

	Constant Opcode = 0x01 // u8 constant-pool offset
	Push     Opcode = 0x02 // u64 count of None locals to reserve
	Pop      Opcode = 0x03

	Add    Opcode = 0x04
	Sub    Opcode = 0x05
	Mul    Opcode = 0x06
	Div    Opcode = 0x07
	Negate Opcode = 0x08
	Equal  Opcode = 0x09

	GreaterThan    Opcode = 0xA0
	GreaterOrEqual Opcode = 0xA1
	LessThan       Opcode = 0xB0
	LessOrEqual    Opcode = 0xB1

	DefineGlobal Opcode = 0xC0 // u8 constant-pool offset (name)
	GetGlobal    Opcode = 0xC1 // u8 constant-pool offset (name)
	DefineLocal  Opcode = 0xC2 // u8 frame slot
	GetLocal     Opcode = 0xC3 // u8 frame slot

	JumpLocal        Opcode = 0xD0 // i8 relative offset
	JumpLocalIfFalse Opcode = 0xD1 // i8 relative offset
	JumpFar          Opcode = 0xD2 // i64 relative offset
	JumpFarIfFalse   Opcode = 0xD3 // i64 relative offset

	CallDirect Opcode = 0xE0 // u8 constant-pool offset (callee name)

	ReturnValue Opcode = 0xF0

	Noop       Opcode = 0xFD
	Breakpoint Opcode = 0xFE
	DebugPrint Opcode = 0xFF
)

var opcodeNames = map[Opcode]string{
	Return:           "return",
	Constant:         "constant",
	Push:             "push",
	Pop:              "pop",
	Add:              "add",
	Sub:              "sub",
	Mul:              "mul",
	Div:              "div",
	Negate:           "negate",
	Equal:            "equal",
	GreaterThan:      "greater_than",
	GreaterOrEqual:   "greater_or_equal",
	LessThan:         "less_than",
	LessOrEqual:      "less_or_equal",
	DefineGlobal:     "define_global",
	GetGlobal:        "get_global",
	DefineLocal:      "define_local",
	GetLocal:         "get_local",
	JumpLocal:        "jump_local",
	JumpLocalIfFalse: "jump_local_if_false",
	JumpFar:          "jump_far",
	JumpFarIfFalse:   "jump_far_if_false",
	CallDirect:       "call_direct",
	ReturnValue:      "return_value",
	Noop:             "noop",
	Breakpoint:       "breakpoint",
	DebugPrint:       "debug_print",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("illegal op (0x%02X)", byte(op))
}

// argWidth reports the number of operand bytes that follow op in an
// encoded instruction stream, and whether that operand indexes the
// chunk's constant pool (and so must be relocated by merge).
func argWidth(op Opcode) (width int, isConstRef bool) {
	switch op {
	case Constant:
		return 1, true
	case DefineGlobal, GetGlobal, CallDirect:
		return 1, true
	case DefineLocal, GetLocal:
		return 1, false
	case Push:
		return 8, false
	case JumpLocal, JumpLocalIfFalse:
		return 1, false
	case JumpFar, JumpFarIfFalse:
		return 8, false
	default:
		return 0, false
	}
}

// instrLen returns the total byte length (opcode + operand) of the
// instruction starting at code[pc].
func instrLen(code []byte, pc int) int {
	width, _ := argWidth(Opcode(code[pc]))
	return 1 + width
}

// ArgWidth exposes argWidth for callers outside this package (the
// disassembler and the VM) that need to step over an instruction's operand
// without re-deriving the table themselves.
func ArgWidth(op Opcode) (width int, isConstRef bool) {
	return argWidth(op)
}

// DecodeArg reads the operand of the instruction at code[pc] (whose opcode
// byte is code[pc]) as an unsigned integer of its natural width. Signed
// operands (jump offsets) are the caller's responsibility to reinterpret.
func DecodeArg(code []byte, pc int) uint64 {
	width, _ := argWidth(Opcode(code[pc]))
	switch width {
	case 1:
		return uint64(code[pc+1])
	case 8:
		return binary.LittleEndian.Uint64(code[pc+1 : pc+9])
	default:
		return 0
	}
}
