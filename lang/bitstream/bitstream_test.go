package bitstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/theta/lang/compiler"
	"github.com/mna/theta/lang/parser"
	"github.com/mna/theta/lang/types"
)

func compile(t *testing.T, src string) []*compiler.Function {
	t.Helper()
	_, prog, err := parser.ParseFile("test.theta", []byte(src))
	require.NoError(t, err)
	fns, err := compiler.CompileProgram(prog)
	require.NoError(t, err)
	return fns
}

func internForTest(seen map[string]*string) Intern {
	return func(s string) Value {
		p, ok := seen[s]
		if !ok {
			v := s
			p = &v
			seen[s] = p
		}
		return Value{Kind: KindString, Ptr: p}
	}
}

func TestAssembleDisassembleRoundTrip(t *testing.T) {
	fns := compile(t, `let x: Int = 1; fun add(a: Int, b: Int) -> Int { return a + b; }`)
	data, err := Assemble(fns)
	require.NoError(t, err)

	dis := NewBasicDisassembler(internForTest(map[string]*string{}))
	bs, err := dis.Disassemble(data)
	require.NoError(t, err)

	assert.Len(t, bs.Functions, len(fns))
	for i, fn := range fns {
		assert.Equal(t, fn.Name, bs.Functions[i].Name)
		// the container format relocates constant-pool offsets against the
		// global pool on assembly, so only the instruction bytes' length (not
		// every byte) is guaranteed to survive the round trip unchanged.
		assert.Equal(t, len(fn.Chunk.Code), len(bs.Functions[i].Chunk))
	}
}

func TestAssembleEncodesArgAndReturnTypes(t *testing.T) {
	fns := compile(t, `fun add(a: Int, b: Int) -> Int { return a + b; }`)
	data, err := Assemble(fns)
	require.NoError(t, err)

	dis := NewBasicDisassembler(internForTest(map[string]*string{}))
	bs, err := dis.Disassemble(data)
	require.NoError(t, err)

	add := bs.Functions[1]
	require.Len(t, add.Args, 2)
	assert.Equal(t, TyInt, add.Args[0])
	assert.Equal(t, TyInt, add.Args[1])
	assert.Equal(t, TyInt, add.ReturnTy)
}

func TestAssembleInternsEqualStringsToTheSamePointer(t *testing.T) {
	fns := compile(t, `let x: Int = 1; x;`)
	data, err := Assemble(fns)
	require.NoError(t, err)

	seen := map[string]*string{}
	dis := NewBasicDisassembler(internForTest(seen))
	bs, err := dis.Disassemble(data)
	require.NoError(t, err)

	var strPtrs []*string
	for _, c := range bs.Constants {
		if c.Kind == KindString {
			strPtrs = append(strPtrs, c.Ptr)
		}
	}
	require.True(t, len(strPtrs) >= 2, "expected at least the define and get global name constants")
	assert.Same(t, strPtrs[0], strPtrs[1])
}

func TestAssembleRejectsUnencodableType(t *testing.T) {
	_, err := EncodeTy(types.NonLiteral{Name: "Foo"})
	assert.Error(t, err)
}

func TestStringDisassemblerProducesReadableDump(t *testing.T) {
	fns := compile(t, `let x: Int = 1;`)
	data, err := Assemble(fns)
	require.NoError(t, err)

	var sd StringDisassembler
	out, err := sd.Disassemble(data)
	require.NoError(t, err)
	assert.Contains(t, out, "constants")
	assert.Contains(t, out, "function")
}
