// Package symtab implements the lexically-scoped symbol table and the
// per-function frame bookkeeping that the parser consults and mutates
// while it walks the token stream.
//
// A Table is nested: each function (or the top-level chunk) owns one
// Table, holding one scope per depth and enclosed by an outer Table, and
// the parser shares that Table and its Frame by reference with every tree
// node discovered while that scope
// is open, so that later passes (the type checker, the emitter) observe
// the exact same bindings and slot assignments the parser computed.
package symtab

import "github.com/mna/theta/lang/types"

// Kind identifies which variant of Binding a value holds.
type Kind uint8

const (
	// Type binds a name to a declared or built-in type.
	Type Kind = iota
	// GlobalVariable binds a name resolved by name at runtime (scope depth 0).
	GlobalVariable
	// LocalVariable binds a name resolved by frame slot at runtime (scope
	// depth >= 1).
	LocalVariable
	// Function binds a callable name.
	Function
)

var kindNames = [...]string{
	Type:           "type",
	GlobalVariable: "global variable",
	LocalVariable:  "local variable",
	Function:       "function",
}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return "invalid binding kind"
	}
	return kindNames[k]
}

// Binding is a single entry in a Table. Which fields are meaningful depends
// on Kind:
//   - Type: Ty is the bound type.
//   - GlobalVariable: Ty is the variable's type.
//   - LocalVariable: Ty is the variable's type, ScopeLevel and Slot locate
//     it in its function's frame.
//   - Function: ReturnTy and Args describe the signature. A function name
//     is callable only, never usable as a value (checkLiteral in
//     lang/typecheck rejects a bare reference to it), so a Function
//     binding carries no Ty.
type Binding struct {
	Kind Kind
	Ty   types.Info

	// LocalVariable fields.
	ScopeLevel int
	Slot       int

	// Function fields.
	ReturnTy types.Info
	Args     []types.Info
}

// Table is a scope-nested map keyed by (scope depth, symbol name). Lookup
// ascends scope depths within the table before delegating to the enclosing
// table, so a name declared at depth 2 shadows the same name declared at
// depth 1 or 0 without needing a separate shadow stack.
type Table struct {
	enclosing *Table
	scopes    map[int]map[string]*Binding
}

// NewTable creates an empty table. If enclosing is non-nil, lookups that
// fail to find a binding at any depth in this table fall back to it.
func NewTable(enclosing *Table) *Table {
	return &Table{enclosing: enclosing, scopes: make(map[int]map[string]*Binding)}
}

// NewRootTable creates the outermost table, pre-seeded with the built-in
// types Int, String, Bool and Float at scope depth 0.
func NewRootTable() *Table {
	t := NewTable(nil)
	for _, name := range []string{"Int", "String", "Bool", "Float"} {
		t.Insert(0, name, &Binding{Kind: Type, Ty: types.Builtin(name)})
	}
	return t
}

// Enclosing returns the table this one falls back to, or nil for the root
// table.
func (t *Table) Enclosing() *Table { return t.enclosing }

// Insert records binding under (scopeDepth, name) in this table,
// overwriting any existing binding at the same depth and name. There is no
// shadow stack: rebinding a name at the same depth discards the previous
// binding, per the open design question in the spec (resolved here as
// "overwrite", matching the source this toolchain is modeled on).
func (t *Table) Insert(scopeDepth int, name string, binding *Binding) {
	m, ok := t.scopes[scopeDepth]
	if !ok {
		m = make(map[string]*Binding)
		t.scopes[scopeDepth] = m
	}
	m[name] = binding
}

// Get looks up name starting at scopeDepth and descending to 0 within this
// table; if no depth in this table holds the name, the lookup continues in
// the enclosing table (at whatever depth it was left at when this table
// was pushed is irrelevant: the enclosing table is searched from its own
// deepest populated scope down to 0, same rule, recursively). It reports
// ok=false if the name is bound nowhere in the chain.
func (t *Table) Get(name string, scopeDepth int) (*Binding, bool) {
	for sd := scopeDepth; sd >= 0; sd-- {
		if m, ok := t.scopes[sd]; ok {
			if b, ok := m[name]; ok {
				return b, true
			}
		}
	}
	if t.enclosing != nil {
		return t.enclosing.Get(name, t.enclosing.deepestScope())
	}
	return nil, false
}

// deepestScope returns the highest scope depth with at least one entry, or
// 0 if the table has no entries at all. It lets Get restart the descent in
// an enclosing table regardless of how deep the current table's scopes go.
func (t *Table) deepestScope() int {
	max := 0
	for sd := range t.scopes {
		if sd > max {
			max = sd
		}
	}
	return max
}
