package symtab

import (
	"testing"

	"github.com/mna/theta/lang/types"
	"github.com/stretchr/testify/require"
)

func TestRootTableBuiltins(t *testing.T) {
	root := NewRootTable()
	for _, name := range []string{"Int", "String", "Bool", "Float"} {
		b, ok := root.Get(name, 0)
		require.True(t, ok, name)
		require.Equal(t, Type, b.Kind)
		require.NotNil(t, b.Ty)
	}
	_, ok := root.Get("Nope", 0)
	require.False(t, ok)
}

func TestInsertOverwritesSameDepth(t *testing.T) {
	root := NewRootTable()
	root.Insert(0, "x", &Binding{Kind: GlobalVariable, Ty: types.Int{}})
	b, ok := root.Get("x", 0)
	require.True(t, ok)
	require.Equal(t, types.Int{}, b.Ty)

	root.Insert(0, "x", &Binding{Kind: GlobalVariable, Ty: types.String{}})
	b, ok = root.Get("x", 0)
	require.True(t, ok)
	require.Equal(t, types.String{}, b.Ty, "rebinding at the same depth overwrites")
}

func TestLookupDescendsScopeDepths(t *testing.T) {
	root := NewRootTable()
	root.Insert(1, "x", &Binding{Kind: LocalVariable, Ty: types.Int{}, ScopeLevel: 1, Slot: 0})

	// not present at depth 2, must descend to depth 1
	b, ok := root.Get("x", 2)
	require.True(t, ok)
	require.Equal(t, 0, b.Slot)
}

func TestLookupDelegatesToEnclosing(t *testing.T) {
	root := NewRootTable()
	root.Insert(0, "g", &Binding{Kind: GlobalVariable, Ty: types.Int{}})

	child := NewTable(root)
	child.Insert(1, "x", &Binding{Kind: LocalVariable, Ty: types.Float{}, ScopeLevel: 1, Slot: 0})

	b, ok := child.Get("g", 1)
	require.True(t, ok)
	require.Equal(t, GlobalVariable, b.Kind)

	require.Equal(t, root, child.Enclosing())
}

func TestShadowingAtDeeperScope(t *testing.T) {
	root := NewRootTable()
	root.Insert(1, "x", &Binding{Kind: LocalVariable, Slot: 0, ScopeLevel: 1})
	root.Insert(2, "x", &Binding{Kind: LocalVariable, Slot: 1, ScopeLevel: 2})

	b, ok := root.Get("x", 2)
	require.True(t, ok)
	require.Equal(t, 1, b.Slot, "deepest scope wins")

	b, ok = root.Get("x", 1)
	require.True(t, ok)
	require.Equal(t, 0, b.Slot, "shallower lookup sees the shallower binding")
}

func TestFrameSlotAssignment(t *testing.T) {
	f := NewFrame(types.Int{})
	require.Equal(t, 0, f.NewParam())
	require.Equal(t, 1, f.NewParam())
	require.Equal(t, 2, f.NewLocal())
	require.Equal(t, 3, f.NewLocal())
	require.Equal(t, 2, f.NumParams)
	require.Equal(t, 2, f.NumLocals)
	require.Equal(t, 4, f.TotalSlots())
}
