// Package machine implements the stack-based virtual machine that executes
// an assembled bitstream: a call stack of frames sharing one operand-stack-
// and-locals vector each, a global constant pool, a global-variable table,
// a function table resolved by name, and a content-addressed string intern
// table.
package machine

import (
	"fmt"
	"io"
	"os"

	"github.com/dolthub/swiss"

	"github.com/mna/theta/lang/bitstream"
	"github.com/mna/theta/lang/compiler"
)

// VM holds the full runtime state of one program execution: the loaded
// bitstream's constant pool and function table, the call stack, globals,
// and the string intern table shared by every frame.
type VM struct {
	Stdout io.Writer

	// MaxSteps caps the number of instructions run() dispatches before it
	// aborts with a RuntimeError; zero (the default) means unlimited.
	MaxSteps int64
	// DisableRecursion rejects a CallDirect whose callee is already present
	// somewhere on the call stack.
	DisableRecursion bool

	constants []bitstream.Value
	functions *swiss.Map[string, bitstream.CompiledFunction]
	globals   *swiss.Map[string, bitstream.Value]
	strings   *swiss.Map[string, *string]

	entry      bitstream.CompiledFunction
	callStack  []*CallFrame
	finalStack []bitstream.Value
	steps      int64
}

// New returns a VM ready to Load a bitstream. Stdout defaults to os.Stdout
// if unset when Run is called.
func New() *VM {
	return &VM{
		functions: swiss.NewMap[string, bitstream.CompiledFunction](8),
		globals:   swiss.NewMap[string, bitstream.Value](8),
		strings:   swiss.NewMap[string, *string](64),
	}
}

// Load disassembles data (a complete assembled bitstream) and populates the
// function table and constant pool from it. The bitstream's first function
// (the implicit top-level script compiler.CompileProgram always places at
// index 0) becomes the entry point for Run.
func (vm *VM) Load(data []byte) error {
	dis := bitstream.NewBasicDisassembler(vm.intern)
	bs, err := dis.Disassemble(data)
	if err != nil {
		return err
	}
	if len(bs.Functions) == 0 {
		return &RuntimeError{Msg: "bitstream has no functions"}
	}
	vm.constants = bs.Constants
	vm.entry = bs.Functions[0]
	for _, fn := range bs.Functions[1:] {
		vm.functions.Put(fn.Name, fn)
	}
	return nil
}

// intern implements bitstream.Intern: it resolves s to a stable heap
// pointer, allocating one on first sight, so that every Value built from
// the same string content compares equal by pointer identity.
func (vm *VM) intern(s string) bitstream.Value {
	if p, ok := vm.strings.Get(s); ok {
		return bitstream.Value{Kind: bitstream.KindString, Ptr: p}
	}
	v := s
	vm.strings.Put(s, &v)
	return bitstream.Value{Kind: bitstream.KindString, Ptr: &v}
}

// Global returns the current value of a global variable, for callers that
// want to inspect program results (such as tests).
func (vm *VM) Global(name string) (bitstream.Value, bool) {
	return vm.globals.Get(name)
}

// Run executes the loaded entry point to completion: one top-level frame,
// plus whatever nested frames CallDirect pushes and pops along the way.
func (vm *VM) Run() error {
	if vm.entry.Chunk == nil {
		return &RuntimeError{Msg: "no bitstream loaded"}
	}
	if vm.Stdout == nil {
		vm.Stdout = os.Stdout
	}
	vm.callStack = []*CallFrame{newFrame(vm.entry.Name, vm.entry.Chunk, -1, nil)}
	return vm.run()
}

// Stack exposes the operand stack and local slots (one shared vector) of
// the currently executing frame. Once Run returns, the top-level frame has
// terminated via its own safety-net Return, which — like every Return —
// only pops the frame off the call stack without touching its locals; the
// top-level frame's locals at that moment are retained as finalStack so
// the program's trailing result is still observable after Run returns.
func (vm *VM) Stack() []bitstream.Value {
	if len(vm.callStack) == 0 {
		return vm.finalStack
	}
	return vm.callStack[len(vm.callStack)-1].locals
}

func (vm *VM) frame() *CallFrame { return vm.callStack[len(vm.callStack)-1] }

// run is the opcode dispatch loop. It walks the top frame's chunk one
// instruction at a time, switching frames (and the chunk being decoded)
// whenever CallDirect/Return change the call stack, until the call stack
// empties (normal exit).
func (vm *VM) run() error {
	for len(vm.callStack) > 0 {
		if vm.MaxSteps > 0 {
			vm.steps++
			if vm.steps > vm.MaxSteps {
				return &RuntimeError{Msg: "exceeded step limit"}
			}
		}

		fr := vm.frame()
		if fr.pc >= len(fr.chunk) {
			return &RuntimeError{Msg: "program counter ran past the end of " + fr.name + "'s chunk"}
		}

		op := compiler.Opcode(fr.chunk[fr.pc])
		width, isConstRef := compiler.ArgWidth(op)
		var arg uint64
		if width > 0 {
			arg = compiler.DecodeArg(fr.chunk, fr.pc)
		}
		next := fr.pc + 1 + width

		if isConstRef {
			if err := vm.dispatchConstRef(fr, op, int(arg), next); err != nil {
				return err
			}
			continue
		}

		switch op {
		case compiler.Return, compiler.ReturnValue:
			if err := vm.execReturn(op == compiler.ReturnValue); err != nil {
				return err
			}
			continue

		case compiler.Push:
			fr.reserve(arg)
			fr.pc = next

		case compiler.Pop:
			if _, err := fr.pop(); err != nil {
				return err
			}
			fr.pc = next

		case compiler.Add, compiler.Sub, compiler.Mul, compiler.Div:
			if err := vm.execBinary(fr, op); err != nil {
				return err
			}
			fr.pc = next

		case compiler.Negate:
			v, err := fr.pop()
			if err != nil {
				return err
			}
			r, err := negate(v)
			if err != nil {
				return err
			}
			fr.push(r)
			fr.pc = next

		case compiler.Equal:
			right, err := fr.pop()
			if err != nil {
				return err
			}
			left, err := fr.pop()
			if err != nil {
				return err
			}
			fr.push(bitstream.Value{Kind: bitstream.KindBool, Bool: equal(left, right)})
			fr.pc = next

		case compiler.GreaterThan, compiler.GreaterOrEqual, compiler.LessThan, compiler.LessOrEqual:
			if err := vm.execCompare(fr, op); err != nil {
				return err
			}
			fr.pc = next

		case compiler.DefineLocal:
			if err := fr.setLocal(int(arg)); err != nil {
				return err
			}
			fr.pc = next

		case compiler.GetLocal:
			if err := fr.getLocal(int(arg)); err != nil {
				return err
			}
			fr.pc = next

		case compiler.JumpLocal, compiler.JumpFar:
			fr.pc = next + int(signed(arg, width))

		case compiler.JumpLocalIfFalse, compiler.JumpFarIfFalse:
			cond, err := fr.peek()
			if err != nil {
				return err
			}
			if cond.Kind != bitstream.KindBool {
				return &RuntimeError{Msg: "conditional jump operand is not a Bool"}
			}
			if !cond.Bool {
				fr.pc = next + int(signed(arg, width))
			} else {
				fr.pc = next
			}

		case compiler.DebugPrint:
			v, err := fr.pop()
			if err != nil {
				return err
			}
			fmt.Fprintf(vm.Stdout, "%s(%s)\n", v.Type(), v.String())
			fr.pc = next

		case compiler.Noop, compiler.Breakpoint:
			fr.pc = next

		default:
			return &RuntimeError{Msg: fmt.Sprintf("unimplemented opcode %s", op)}
		}
	}
	return nil
}

// dispatchConstRef handles the opcodes whose single-byte operand indexes
// the global constant pool: Constant, DefineGlobal, GetGlobal and
// CallDirect (which indexes the callee's name, not a function value).
func (vm *VM) dispatchConstRef(fr *CallFrame, op compiler.Opcode, idx, next int) error {
	switch op {
	case compiler.Constant:
		if idx < 0 || idx >= len(vm.constants) {
			return &RuntimeError{Msg: "constant index out of range"}
		}
		fr.push(vm.constants[idx])
		fr.pc = next
		return nil

	case compiler.DefineGlobal:
		name, err := vm.constName(idx)
		if err != nil {
			return err
		}
		v, err := fr.peek()
		if err != nil {
			return err
		}
		vm.globals.Put(name, v)
		if _, err := fr.pop(); err != nil {
			return err
		}
		fr.pc = next
		return nil

	case compiler.GetGlobal:
		name, err := vm.constName(idx)
		if err != nil {
			return err
		}
		v, ok := vm.globals.Get(name)
		if !ok {
			return &RuntimeError{Msg: "undefined global " + name}
		}
		fr.push(v)
		fr.pc = next
		return nil

	case compiler.CallDirect:
		name, err := vm.constName(idx)
		if err != nil {
			return err
		}
		return vm.execCall(fr, name, next)

	default:
		return &RuntimeError{Msg: fmt.Sprintf("unimplemented constant-referencing opcode %s", op)}
	}
}

// constName resolves a constant-pool index to the name of the string it
// holds: DefineGlobal, GetGlobal and CallDirect all index a string
// constant rather than carrying their operand inline.
func (vm *VM) constName(idx int) (string, error) {
	if idx < 0 || idx >= len(vm.constants) {
		return "", &RuntimeError{Msg: "constant index out of range"}
	}
	c := vm.constants[idx]
	if c.Kind != bitstream.KindString || c.Ptr == nil {
		return "", &RuntimeError{Msg: "expected a string constant, got " + c.Type()}
	}
	return *c.Ptr, nil
}

func (vm *VM) execBinary(fr *CallFrame, op compiler.Opcode) error {
	right, err := fr.pop()
	if err != nil {
		return err
	}
	left, err := fr.pop()
	if err != nil {
		return err
	}
	var name string
	switch op {
	case compiler.Add:
		name = "add"
	case compiler.Sub:
		name = "sub"
	case compiler.Mul:
		name = "mul"
	case compiler.Div:
		name = "div"
	}
	v, err := vm.binary(name, left, right)
	if err != nil {
		return err
	}
	fr.push(v)
	return nil
}

func (vm *VM) execCompare(fr *CallFrame, op compiler.Opcode) error {
	right, err := fr.pop()
	if err != nil {
		return err
	}
	left, err := fr.pop()
	if err != nil {
		return err
	}
	var name string
	switch op {
	case compiler.GreaterThan:
		name = "greater_than"
	case compiler.GreaterOrEqual:
		name = "greater_or_equal"
	case compiler.LessThan:
		name = "less_than"
	case compiler.LessOrEqual:
		name = "less_or_equal"
	}
	ok, err := compare(name, left, right)
	if err != nil {
		return err
	}
	fr.push(bitstream.Value{Kind: bitstream.KindBool, Bool: ok})
	return nil
}

// execCall implements CallDirect: look up the callee, move the caller's
// last len(args) locals into the callee's initial locals, and push a new
// frame whose rip resumes the caller right after this instruction.
func (vm *VM) execCall(fr *CallFrame, name string, callerNext int) error {
	fn, ok := vm.functions.Get(name)
	if !ok {
		return &RuntimeError{Msg: "undefined function " + name}
	}
	if vm.DisableRecursion {
		for _, called := range vm.callStack {
			if called.name == name {
				return &RuntimeError{Msg: "recursion is disabled: " + name + " is already on the call stack"}
			}
		}
	}
	args, err := fr.takeArgs(len(fn.Args))
	if err != nil {
		return err
	}
	fr.pc = callerNext
	callee := newFrame(name, fn.Chunk, callerNext, args)
	vm.callStack = append(vm.callStack, callee)
	return nil
}

// execReturn implements Return/ReturnValue: pop the top frame and resume
// the frame beneath it at the popped frame's rip. An empty call stack
// after the pop is the VM's normal termination condition.
func (vm *VM) execReturn(hasValue bool) error {
	fr := vm.frame()
	var result bitstream.Value
	if hasValue {
		v, err := fr.pop()
		if err != nil {
			return err
		}
		result = v
	}
	rip := fr.rip
	vm.callStack = vm.callStack[:len(vm.callStack)-1]
	if len(vm.callStack) == 0 {
		vm.finalStack = fr.locals
		return nil
	}
	caller := vm.frame()
	caller.pc = rip
	if hasValue {
		caller.push(result)
	}
	return nil
}

// signed reinterprets a jump operand read as unsigned by its natural
// width: one byte for the short jump variants, eight for the far ones.
func signed(arg uint64, width int) int64 {
	if width == 1 {
		return int64(int8(arg))
	}
	return int64(arg)
}
