package machine

import "github.com/mna/theta/lang/bitstream"

// CallFrame is one activation record. Its locals slice doubles as the
// operand stack and the local variable vector, per the container format's
// own contract: a plain value push grows the same slice that DefineLocal
// and GetLocal index into.
type CallFrame struct {
	// rip is the offset to resume at in the frame beneath this one once this
	// frame is popped. It is the *caller's* return address, captured when
	// this frame is pushed (the caller's pc just past the CallDirect that
	// created it) — not this frame's own program counter, which lives in pc
	// below.
	rip int

	// pc is this frame's own live offset into chunk.
	pc int

	locals []bitstream.Value
	chunk  []byte
	name   string
}

func newFrame(name string, chunk []byte, rip int, locals []bitstream.Value) *CallFrame {
	return &CallFrame{name: name, chunk: chunk, rip: rip, locals: locals}
}

func (f *CallFrame) push(v bitstream.Value) { f.locals = append(f.locals, v) }

func (f *CallFrame) pop() (bitstream.Value, error) {
	if len(f.locals) == 0 {
		return bitstream.Value{}, &RuntimeError{Msg: "pop from empty frame in " + f.name}
	}
	v := f.locals[len(f.locals)-1]
	f.locals = f.locals[:len(f.locals)-1]
	return v, nil
}

// peek returns the top of the frame's stack without removing it: the
// vehicle for the conditional jump opcodes' non-popping condition check
// and for DefineLocal's "copy top into slot without popping" contract
// (DefineGlobal also peeks, then pops once the value is stored).
func (f *CallFrame) peek() (bitstream.Value, error) {
	if len(f.locals) == 0 {
		return bitstream.Value{}, &RuntimeError{Msg: "peek on empty frame in " + f.name}
	}
	return f.locals[len(f.locals)-1], nil
}

func (f *CallFrame) setLocal(slot int) error {
	v, err := f.peek()
	if err != nil {
		return err
	}
	if slot < 0 || slot >= len(f.locals) {
		return &RuntimeError{Msg: "local slot out of range in " + f.name}
	}
	f.locals[slot] = v
	return nil
}

func (f *CallFrame) getLocal(slot int) error {
	if slot < 0 || slot >= len(f.locals) {
		return &RuntimeError{Msg: "local slot out of range in " + f.name}
	}
	f.push(f.locals[slot])
	return nil
}

// reserve appends n None placeholders, the Push(n) opcode's effect.
func (f *CallFrame) reserve(n uint64) {
	for i := uint64(0); i < n; i++ {
		f.locals = append(f.locals, bitstream.Value{})
	}
}

// takeArgs removes the last n locals (in order) and returns them as a fresh
// slice, for moving a caller's just-pushed call arguments into a new
// frame's initial locals.
func (f *CallFrame) takeArgs(n int) ([]bitstream.Value, error) {
	if n > len(f.locals) {
		return nil, &RuntimeError{Msg: "call argument count exceeds caller's live locals in " + f.name}
	}
	split := len(f.locals) - n
	args := append([]bitstream.Value(nil), f.locals[split:]...)
	f.locals = f.locals[:split]
	return args, nil
}
