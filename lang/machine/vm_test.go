package machine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/theta/lang/bitstream"
	"github.com/mna/theta/lang/compiler"
	"github.com/mna/theta/lang/parser"
)

func runSource(t *testing.T, src string) (*VM, *strings.Builder) {
	t.Helper()
	_, prog, err := parser.ParseFile("test.theta", []byte(src))
	require.NoError(t, err)
	fns, err := compiler.CompileProgram(prog)
	require.NoError(t, err)
	data, err := bitstream.Assemble(fns)
	require.NoError(t, err)

	vm := New()
	var out strings.Builder
	vm.Stdout = &out
	require.NoError(t, vm.Load(data))
	require.NoError(t, vm.Run())
	return vm, &out
}

func loadSource(t *testing.T, src string) *VM {
	t.Helper()
	_, prog, err := parser.ParseFile("test.theta", []byte(src))
	require.NoError(t, err)
	fns, err := compiler.CompileProgram(prog)
	require.NoError(t, err)
	data, err := bitstream.Assemble(fns)
	require.NoError(t, err)

	vm := New()
	require.NoError(t, vm.Load(data))
	return vm
}

func TestMaxStepsAbortsInfiniteLoop(t *testing.T) {
	vm := loadSource(t, `while (true) { 1; };`)
	vm.MaxSteps = 100
	err := vm.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step limit")
}

func TestDisableRecursionRejectsSelfCall(t *testing.T) {
	src := `
fun loop(n: Int) -> Int { return loop(n); }
let result: Int = loop(1);
`
	vm := loadSource(t, src)
	vm.DisableRecursion = true
	err := vm.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recursion is disabled")
}

func TestArithmeticAndPrint(t *testing.T) {
	vm, out := runSource(t, `let x: Int = 1 + 2 * 3; print(x);`)
	g, ok := vm.Global("x")
	require.True(t, ok)
	assert.Equal(t, int64(7), g.Int)
	assert.Equal(t, "Int(7)\n", out.String())
}

func TestIfElseLeavesTakenBranchOnStack(t *testing.T) {
	vm, _ := runSource(t, `if (true) { 1 } else { 2 }`)
	stack := vm.Stack()
	require.NotEmpty(t, stack)
	top := stack[len(stack)-1]
	assert.Equal(t, bitstream.KindInt, top.Kind)
	assert.Equal(t, int64(1), top.Int)
}

func TestRecursiveFibonacci(t *testing.T) {
	src := `
fun fib(n: Int) -> Int { if (n <= 1) { return n; } else { return fib(n-1) + fib(n-2); } }
let result: Int = fib(10);
`
	vm, _ := runSource(t, src)
	g, ok := vm.Global("result")
	require.True(t, ok)
	assert.Equal(t, int64(55), g.Int)
}

func TestStringInternEquality(t *testing.T) {
	vm, _ := runSource(t, `let a: String = "hi"; let b: String = "hi"; a == b`)
	stack := vm.Stack()
	require.NotEmpty(t, stack)
	top := stack[len(stack)-1]
	assert.Equal(t, bitstream.KindBool, top.Kind)
	assert.True(t, top.Bool)

	av, _ := vm.Global("a")
	bv, _ := vm.Global("b")
	assert.Same(t, av.Ptr, bv.Ptr)
}

func TestWhileLoopPrintsEachIteration(t *testing.T) {
	_, out := runSource(t, `let i: Int = 0; while (i < 3) { print(i); i = i + 1; };`)
	assert.Equal(t, "Int(0)\nInt(1)\nInt(2)\n", out.String())
}

func TestLessOrEqualAndGreaterOrEqual(t *testing.T) {
	vm, _ := runSource(t, `let a: Bool = 2 <= 2; let b: Bool = 3 >= 4;`)
	a, _ := vm.Global("a")
	b, _ := vm.Global("b")
	assert.True(t, a.Bool)
	assert.False(t, b.Bool)
}

func TestNotEqual(t *testing.T) {
	vm, _ := runSource(t, `let a: Bool = 1 != 2;`)
	a, _ := vm.Global("a")
	assert.True(t, a.Bool)
}
