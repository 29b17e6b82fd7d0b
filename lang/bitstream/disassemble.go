package bitstream

import (
	"fmt"
	"strings"

	"github.com/mna/theta/lang/compiler"
)

// Intern resolves a string constant to a Value, assigning it a stable heap
// pointer. The machine's string table implements this so that a Value
// produced here compares equal by pointer identity to any other Value built
// from the same string at runtime.
type Intern func(s string) Value

// BasicDisassembler is the visitor the VM loader drives over an assembled
// bitstream: it interns every string constant as it is encountered and
// collects the result into a CompiledBitstream ready for execution.
type BasicDisassembler struct {
	intern Intern
	bs     CompiledBitstream
}

// NewBasicDisassembler returns a disassembler that resolves string
// constants through intern.
func NewBasicDisassembler(intern Intern) *BasicDisassembler {
	return &BasicDisassembler{intern: intern}
}

// Disassemble walks data (a complete assembled bitstream) and returns the
// loaded CompiledBitstream.
func (d *BasicDisassembler) Disassemble(data []byte) (CompiledBitstream, error) {
	var w Walker
	if err := w.Walk(d, data); err != nil {
		return CompiledBitstream{}, err
	}
	return d.bs, nil
}

func (d *BasicDisassembler) VisitFile()      {}
func (d *BasicDisassembler) VisitBitstream() { d.bs = CompiledBitstream{} }

func (d *BasicDisassembler) VisitConstant(c Constant) {
	switch c.Kind {
	case KindFloat:
		d.bs.Constants = append(d.bs.Constants, Value{Kind: KindFloat, Float: c.Float})
	case KindInt:
		d.bs.Constants = append(d.bs.Constants, Value{Kind: KindInt, Int: c.Int})
	case KindBool:
		d.bs.Constants = append(d.bs.Constants, Value{Kind: KindBool, Bool: c.Bool})
	case KindString:
		d.bs.Constants = append(d.bs.Constants, d.intern(c.Str))
	}
}

func (d *BasicDisassembler) VisitFunction(fn CompiledFunction) {
	d.bs.Functions = append(d.bs.Functions, fn)
}

// StringDisassembler renders an assembled bitstream as a human-readable
// dump for diagnostics; it is not used by the VM loader, which goes
// through BasicDisassembler instead.
type StringDisassembler struct {
	out      strings.Builder
	constIdx int
}

// Disassemble walks data and returns its textual rendering.
func (d *StringDisassembler) Disassemble(data []byte) (string, error) {
	var w Walker
	if err := w.Walk(d, data); err != nil {
		return "", err
	}
	return d.out.String(), nil
}

func (d *StringDisassembler) VisitFile() { d.out.WriteString("=== theta bitstream ===\n") }

func (d *StringDisassembler) VisitBitstream() {
	d.out.WriteString("-- constants --\n")
	d.constIdx = 0
}

func (d *StringDisassembler) VisitConstant(c Constant) {
	fmt.Fprintf(&d.out, "  [%d] %s\n", d.constIdx, formatConstant(c))
	d.constIdx++
}

func (d *StringDisassembler) VisitFunction(fn CompiledFunction) {
	fmt.Fprintf(&d.out, "-- function %s/%d --\n", fn.Name, len(fn.Args))
	disassembleChunk(&d.out, fn.Chunk)
}

// disassembleChunk renders each instruction in code as one line: its byte
// offset, its name, and its operand if it has one. Jump operands are shown
// as signed distances since that's how the emitter and the VM interpret
// them; every other single-byte operand is an unsigned pool or slot index.
func disassembleChunk(out *strings.Builder, code []byte) {
	for pc := 0; pc < len(code); {
		op := compiler.Opcode(code[pc])
		width, _ := compiler.ArgWidth(op)
		if width == 0 {
			fmt.Fprintf(out, "  %04d %s\n", pc, op)
			pc++
			continue
		}

		arg := compiler.DecodeArg(code, pc)
		if isJumpOpcode(op) {
			fmt.Fprintf(out, "  %04d %s %d\n", pc, op, signedOperand(arg, width))
		} else {
			fmt.Fprintf(out, "  %04d %s %d\n", pc, op, arg)
		}
		pc += 1 + width
	}
}

func isJumpOpcode(op compiler.Opcode) bool {
	switch op {
	case compiler.JumpLocal, compiler.JumpLocalIfFalse, compiler.JumpFar, compiler.JumpFarIfFalse:
		return true
	default:
		return false
	}
}

func signedOperand(arg uint64, width int) int64 {
	if width == 1 {
		return int64(int8(arg))
	}
	return int64(arg)
}

func formatConstant(c Constant) string {
	switch c.Kind {
	case KindFloat:
		return fmt.Sprintf("Float %g", c.Float)
	case KindInt:
		return fmt.Sprintf("Int %d", c.Int)
	case KindBool:
		return fmt.Sprintf("Bool %v", c.Bool)
	case KindString:
		return fmt.Sprintf("String %q", c.Str)
	default:
		return "None"
	}
}
