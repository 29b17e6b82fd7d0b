package typecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/theta/lang/parser"
)

func TestCheckValidProgramHasNoErrors(t *testing.T) {
	fs, prog, err := parser.ParseFile("test.theta", []byte(`let x: Int = 1; let y: Int = x + 1;`))
	require.NoError(t, err)
	err = Check(fs.Files()[0], prog)
	assert.NoError(t, err)
}

func TestCheckMismatchedVarDeclIsError(t *testing.T) {
	fs, prog, err := parser.ParseFile("test.theta", []byte(`let x: Int = "hi";`))
	require.NoError(t, err)
	err = Check(fs.Files()[0], prog)
	assert.Error(t, err)
}

func TestCheckBinaryOperandMismatchIsError(t *testing.T) {
	fs, prog, err := parser.ParseFile("test.theta", []byte(`let x: Int = 1 + 1.0;`))
	require.NoError(t, err)
	err = Check(fs.Files()[0], prog)
	assert.Error(t, err)
}

func TestCheckIfBranchMismatchIsError(t *testing.T) {
	fs, prog, err := parser.ParseFile("test.theta", []byte(`let x: Int = if (true) { 1 } else { "no" };`))
	require.NoError(t, err)
	err = Check(fs.Files()[0], prog)
	assert.Error(t, err)
}

func TestCheckFunctionReturnTypeMismatchIsError(t *testing.T) {
	fs, prog, err := parser.ParseFile("test.theta", []byte(`fun f() -> Int { return "no"; }`))
	require.NoError(t, err)
	err = Check(fs.Files()[0], prog)
	assert.Error(t, err)
}

func TestCheckCallArityMismatchIsError(t *testing.T) {
	src := `
fun add(a: Int, b: Int) -> Int { return a + b; }
add(1);
`
	fs, prog, err := parser.ParseFile("test.theta", []byte(src))
	require.NoError(t, err)
	err = Check(fs.Files()[0], prog)
	assert.Error(t, err)
}

func TestCheckCallArgTypeMismatchIsError(t *testing.T) {
	src := `
fun add(a: Int, b: Int) -> Int { return a + b; }
add(1, "two");
`
	fs, prog, err := parser.ParseFile("test.theta", []byte(src))
	require.NoError(t, err)
	err = Check(fs.Files()[0], prog)
	assert.Error(t, err)
}

func TestCheckValidCallHasNoErrors(t *testing.T) {
	src := `
fun add(a: Int, b: Int) -> Int { return a + b; }
let sum: Int = add(1, 2);
`
	fs, prog, err := parser.ParseFile("test.theta", []byte(src))
	require.NoError(t, err)
	err = Check(fs.Files()[0], prog)
	assert.NoError(t, err)
}
