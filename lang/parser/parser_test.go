package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/theta/lang/ast"
	"github.com/mna/theta/lang/symtab"
	"github.com/mna/theta/lang/token"
)

func TestParseVarDecl(t *testing.T) {
	_, prog, err := ParseFile("test.theta", []byte(`let x: Int = 1;`))
	require.NoError(t, err)
	require.Len(t, prog.Items, 1)
	script := prog.Items[0]
	require.Len(t, script.Body.Stmts, 1)
	v, ok := script.Body.Stmts[0].(*ast.VarStmt)
	require.True(t, ok)
	assert.Equal(t, "x", v.Name)

	b, ok := script.Body.Table.Get("x", 0)
	require.True(t, ok)
	assert.Equal(t, symtab.GlobalVariable, b.Kind)
}

func TestParseVarDeclRequiresAnnotationAndInit(t *testing.T) {
	_, _, err := ParseFile("test.theta", []byte(`let x = 1;`))
	assert.Error(t, err)
	_, _, err = ParseFile("test.theta", []byte(`let x: Int;`))
	assert.Error(t, err)
}

func TestParsePartialBlockFinalExpr(t *testing.T) {
	_, prog, err := ParseFile("test.theta", []byte(`{ let x: Int = 1; x }`))
	require.NoError(t, err)
	script := prog.Items[0]
	require.NotNil(t, script.Body.FinalExpr)
	blk, ok := script.Body.FinalExpr.(*ast.BlockExpr)
	require.True(t, ok)
	assert.NotNil(t, blk.FinalExpr)
	assert.Equal(t, 1, blk.NumLocals)
}

func TestParsePartialMidBlockIsError(t *testing.T) {
	_, _, err := ParseFile("test.theta", []byte(`{ 1 2; }`))
	assert.Error(t, err)
}

func TestParseFunctionRecursion(t *testing.T) {
	src := `
fun fact(n: Int) -> Int {
	if (n) { return fact(n); } else { return n; }
}
`
	_, prog, err := ParseFile("test.theta", []byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Items, 2)
	fn := prog.Items[1]
	assert.Equal(t, "fact", fn.Name)
	require.Len(t, fn.Args, 1)
	assert.Equal(t, "n", fn.Args[0].Name)
}

func TestParseFunctionArgsBecomeLocalsInOrder(t *testing.T) {
	src := `fun add(a: Int, b: Int) -> Int { return a; }`
	_, prog, err := ParseFile("test.theta", []byte(src))
	require.NoError(t, err)
	fn := prog.Items[1]
	ba, _ := fn.Body.Table.Get("a", 1)
	bb, _ := fn.Body.Table.Get("b", 1)
	assert.Equal(t, 0, ba.Slot)
	assert.Equal(t, 1, bb.Slot)
	assert.Equal(t, 2, fn.Frame.NumParams)
}

func TestParseUndeclaredNameIsError(t *testing.T) {
	_, _, err := ParseFile("test.theta", []byte(`y;`))
	assert.Error(t, err)
}

func TestParseCallUndeclaredFunctionIsError(t *testing.T) {
	_, _, err := ParseFile("test.theta", []byte(`missing();`))
	assert.Error(t, err)
}

func TestParseWhileLoop(t *testing.T) {
	src := `let i: Int = 0; while (i) { print(i); };`
	_, prog, err := ParseFile("test.theta", []byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Items[0].Body.Stmts, 2)
	stmt, ok := prog.Items[0].Body.Stmts[1].(*ast.ExprStmt)
	require.True(t, ok)
	_, ok = stmt.Expr.(*ast.LoopExpr)
	assert.True(t, ok)
}

func TestParseErrorRecoveryContinuesAfterSemicolon(t *testing.T) {
	src := `let ;
let y: Int = 2;`
	_, prog, err := ParseFile("test.theta", []byte(src))
	require.Error(t, err)
	require.Len(t, prog.Items[0].Body.Stmts, 1)
}

func TestParseGroupingSequence(t *testing.T) {
	_, prog, err := ParseFile("test.theta", []byte(`(1; 2; 3);`))
	require.NoError(t, err)
	stmt := prog.Items[0].Body.Stmts[0].(*ast.ExprStmt)
	seq, ok := stmt.Expr.(*ast.SequenceExpr)
	require.True(t, ok)
	assert.Len(t, seq.Items, 3)
}

func TestParseComparisonPrecedence(t *testing.T) {
	_, prog, err := ParseFile("test.theta", []byte(`1 + 2 == 3;`))
	require.NoError(t, err)
	stmt := prog.Items[0].Body.Stmts[0].(*ast.ExprStmt)
	bin, ok := stmt.Expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.EQ_EQ, bin.Op)
	_, ok = bin.Left.(*ast.BinaryExpr)
	assert.True(t, ok)
}
