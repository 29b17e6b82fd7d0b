// Package ast defines the annotated tree produced by the parser: every
// Expr and Stmt carries an Info payload recording the scope and frame in
// which it was discovered (filled in by the parser) and, once the type
// checker has run, its resolved type.
//
// The tree is a value type once built: nodes are not mutated after the
// parser constructs them, though the symtab.Table and symtab.Frame they
// reference are themselves mutated by later insertions and slot
// assignments performed within the same scope (sharing, not node mutation).
package ast

import (
	"fmt"

	"github.com/mna/theta/lang/symtab"
	"github.com/mna/theta/lang/token"
	"github.com/mna/theta/lang/types"
)

// Node is implemented by every Expr and Stmt.
type Node interface {
	fmt.Formatter

	// Span reports the half-open character range the node covers.
	Span() token.Span

	// Walk visits the node's children, in source order, with v.
	Walk(v Visitor)

	// NodeInfo returns the node's shared parse/type information.
	NodeInfo() *Info
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	expr()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmt()
}

// Info is the payload attached to every node. ScopeDepth, Table and Frame
// are set by the parser as it discovers the node; Type is set later by the
// type checker. Table and Frame are shared by reference among every node
// parsed within the same scope/function, so later passes observe the
// parser's final slot counts.
type Info struct {
	Sp         token.Span
	ScopeDepth int
	Table      *symtab.Table
	Frame      *symtab.Frame
	Type       types.Info
}

func (i *Info) NodeInfo() *Info { return i }

// Span reports the half-open character range the node covers.
func (i *Info) Span() token.Span { return i.Sp }

// FunctionArg is a single parameter of a Function item: a name and its
// declared type annotation.
type FunctionArg struct {
	Name string
	Ty   types.Info
}

// Item is a top-level function definition, the unit the emitter lowers
// into one compiler.Chunk. The implicit top-level script is itself
// represented as an Item with an empty Name.
type Item struct {
	Info

	Name     string
	Args     []FunctionArg
	ReturnTy types.Info
	Body     *BlockExpr
}

func (n *Item) Format(f fmt.State, verb rune) {
	label := "function"
	if n.Name != "" {
		label += " " + n.Name
	}
	format(f, verb, n, label, map[string]int{"args": len(n.Args)})
}
func (n *Item) Walk(v Visitor) {
	if n.Body != nil {
		Walk(v, n.Body)
	}
}

// Program is the parsed form of a full compilation unit: a sequence of
// top-level function items. The first item (index 0) is always the
// implicit top-level script, compiled from the file's top-level
// declarations; named `fun` declarations are hoisted out as the
// subsequent items.
type Program struct {
	Items []*Item
}

func format(f fmt.State, verb rune, n Node, label string, counts map[string]int) {
	if verb != 'v' && verb != 's' {
		fmt.Fprintf(f, "%%!%c(%T)", verb, n)
		return
	}
	fmt.Fprint(f, label)
	if f.Flag('#') && len(counts) > 0 {
		fmt.Fprint(f, " {")
		first := true
		for k, v := range counts {
			if !first {
				fmt.Fprint(f, ", ")
			}
			first = false
			fmt.Fprintf(f, "%s=%d", k, v)
		}
		fmt.Fprint(f, "}")
	}
}
