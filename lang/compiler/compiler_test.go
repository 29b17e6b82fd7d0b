package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/theta/lang/parser"
)

func compile(t *testing.T, src string) []*Function {
	t.Helper()
	_, prog, err := parser.ParseFile("test.theta", []byte(src))
	require.NoError(t, err)
	fns, err := CompileProgram(prog)
	require.NoError(t, err)
	return fns
}

func TestCompileGlobalVarAndRead(t *testing.T) {
	fns := compile(t, `let x: Int = 1; x;`)
	script := fns[0]
	require.Len(t, script.Chunk.Constants, 3) // 1, "x" (define), "x" (get)
	assert.Equal(t, ConstInt, script.Chunk.Constants[0].Kind)
	assert.Equal(t, int64(1), script.Chunk.Constants[0].Int)
	assert.Equal(t, byte(Constant), script.Chunk.Code[0])
	assert.Equal(t, byte(DefineGlobal), script.Chunk.Code[2])
	assert.Equal(t, byte(GetGlobal), script.Chunk.Code[4])
	assert.Equal(t, byte(Pop), script.Chunk.Code[6]) // ExprStmt discards the read
}

func TestCompileFunctionArgsUseGetLocal(t *testing.T) {
	fns := compile(t, `fun add(a: Int, b: Int) -> Int { return a + b; }`)
	add := fns[1]
	assert.Equal(t, "add", add.Name)
	require.Len(t, add.Args, 2)

	code := add.Chunk.Code
	require.True(t, len(code) >= 6)
	assert.Equal(t, byte(GetLocal), code[0])
	assert.Equal(t, byte(0), code[1])
	assert.Equal(t, byte(GetLocal), code[2])
	assert.Equal(t, byte(1), code[3])
	assert.Equal(t, byte(Add), code[4])
	assert.Equal(t, byte(ReturnValue), code[5])
}

func TestCompileLessOrEqualUsesDedicatedOpcode(t *testing.T) {
	fns := compile(t, `1 <= 2;`)
	code := fns[0].Chunk.Code
	// Constant(1) Constant(2) LessOrEqual Pop ...
	assert.Equal(t, byte(Constant), code[0])
	assert.Equal(t, byte(Constant), code[2])
	assert.Equal(t, byte(LessOrEqual), code[4])
	assert.Equal(t, byte(Pop), code[5])
}

func TestCompileGreaterOrEqualUsesDedicatedOpcode(t *testing.T) {
	fns := compile(t, `1 >= 2;`)
	code := fns[0].Chunk.Code
	assert.Equal(t, byte(GreaterOrEqual), code[4])
	assert.Equal(t, byte(Pop), code[5])
}

func TestCompileNotEqualLowersToEqualNegate(t *testing.T) {
	fns := compile(t, `1 != 2;`)
	code := fns[0].Chunk.Code
	assert.Equal(t, byte(Equal), code[4])
	assert.Equal(t, byte(Negate), code[5])
}

func TestCompileIfWithoutElsePushesNone(t *testing.T) {
	fns := compile(t, `if (1) { 2; };`)
	code := fns[0].Chunk.Code
	// Constant(1) JumpLocalIfFalse(d) Pop Constant(2) Pop Push(1) JumpLocal(d)
	// Pop Push(1): the synthesized else branch pushes the None placeholder.
	assert.Equal(t, byte(Constant), code[0])
	assert.Equal(t, byte(JumpLocalIfFalse), code[2])
	assert.Equal(t, []Opcode{Constant, JumpLocalIfFalse, Pop, Constant, Pop, Push, JumpLocal, Pop, Push}, opcodeSequence(code)[:9])
}

func TestCompileWhileLoopBacksJumpToPredicate(t *testing.T) {
	fns := compile(t, `while (1) { 2; };`)
	code := fns[0].Chunk.Code
	// predicate Constant(1), JumpLocalIfFalse, body..., JumpLocal back, Push(None)
	assert.Equal(t, byte(Constant), code[0])
	assert.Equal(t, byte(JumpLocalIfFalse), code[2])
	found := false
	for i := 0; i < len(code); {
		if Opcode(code[i]) == JumpLocal {
			found = true
			break
		}
		i += 1 + widthOf(Opcode(code[i]))
	}
	assert.True(t, found, "expected a backward JumpLocal in the loop body")
}

func TestCompileBlockWithLocalAndTailExprRelocatesResult(t *testing.T) {
	fns := compile(t, `{ let x: Int = 1; x };`)
	code := fns[0].Chunk.Code
	// Constant(1) DefineLocal(0) GetLocal(0) DefineLocal(0) Pop Pop(outer ExprStmt)
	assert.Contains(t, opcodeSequence(code), DefineLocal)
	assert.Contains(t, opcodeSequence(code), GetLocal)
}

func widthOf(op Opcode) int {
	w, _ := argWidth(op)
	return w
}

func opcodeSequence(code []byte) []Opcode {
	var ops []Opcode
	for i := 0; i < len(code); {
		op := Opcode(code[i])
		ops = append(ops, op)
		i += 1 + widthOf(op)
	}
	return ops
}
