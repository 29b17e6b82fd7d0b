package ast

import (
	"fmt"

	"github.com/mna/theta/lang/token"
)

type (
	// BinaryExpr is `left op right`, e.g. `1 + 2` or `a == b`.
	BinaryExpr struct {
		Info
		Left  Expr
		Op    token.Token
		OpPos token.Span
		Right Expr
	}

	// UnaryExpr is `op right`, e.g. `-x` or `!done`.
	UnaryExpr struct {
		Info
		Op    token.Token
		OpPos token.Span
		Right Expr
	}

	// LiteralExpr is a single literal or identifier token: an integer, float,
	// string, boolean, or a name resolved against the symbol table.
	LiteralExpr struct {
		Info
		Tok token.Token
		Raw string // source text of the literal, or the identifier name
	}

	// SequenceExpr is a parenthesised, semicolon-separated list of
	// expressions, e.g. `(1; 2; 3)`; its value is that of the last element.
	SequenceExpr struct {
		Info
		Items []Expr
	}

	// AssignmentExpr is `name = value`.
	AssignmentExpr struct {
		Info
		Name  string
		Value Expr
	}

	// IfExpr is `if (cond) then else? `, usable as an expression (its value is
	// that of whichever branch ran) or as a statement.
	IfExpr struct {
		Info
		Cond Expr
		Then Expr
		Else Expr // nil if there is no else branch
	}

	// BlockExpr is `{ statements... }`; if the last element of the block was
	// written without a terminating semicolon, it is carried in FinalExpr and
	// becomes the block's value, otherwise the block's value is None.
	BlockExpr struct {
		Info
		Stmts     []Stmt
		FinalExpr Expr // nil unless the block ends in a Partial
		NumLocals int  // var-decls inserted directly at this block's scope depth
	}

	// LoopExpr is `while (predicate)? body`. A nil Predicate is an
	// unconditional loop, exited only via `return`.
	LoopExpr struct {
		Info
		Predicate Expr // nil for an unconditional loop
		Body      Expr
	}

	// CallExpr is `callee(args...)`.
	CallExpr struct {
		Info
		Callee Expr
		Args   []Expr
	}

	// ReturnExpr is `return expr?`.
	ReturnExpr struct {
		Info
		Value Expr // nil for a bare `return`
	}
)

func (*BinaryExpr) expr()     {}
func (*UnaryExpr) expr()      {}
func (*LiteralExpr) expr()    {}
func (*SequenceExpr) expr()   {}
func (*AssignmentExpr) expr() {}
func (*IfExpr) expr()         {}
func (*BlockExpr) expr()      {}
func (*LoopExpr) expr()       {}
func (*CallExpr) expr()       {}
func (*ReturnExpr) expr()     {}

func (n *BinaryExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "binary "+n.Op.GoString(), nil)
}
func (n *BinaryExpr) Walk(v Visitor) { Walk(v, n.Left); Walk(v, n.Right) }

func (n *UnaryExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "unary "+n.Op.GoString(), nil)
}
func (n *UnaryExpr) Walk(v Visitor) { Walk(v, n.Right) }

func (n *LiteralExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "literal "+n.Raw, nil) }
func (n *LiteralExpr) Walk(_ Visitor)                {}

func (n *SequenceExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "sequence", map[string]int{"items": len(n.Items)})
}
func (n *SequenceExpr) Walk(v Visitor) {
	for _, it := range n.Items {
		Walk(v, it)
	}
}

func (n *AssignmentExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "assign "+n.Name, nil)
}
func (n *AssignmentExpr) Walk(v Visitor) { Walk(v, n.Value) }

func (n *IfExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "if", nil) }
func (n *IfExpr) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	if n.Else != nil {
		Walk(v, n.Else)
	}
}

func (n *BlockExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "block", map[string]int{"stmts": len(n.Stmts)})
}
func (n *BlockExpr) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
	if n.FinalExpr != nil {
		Walk(v, n.FinalExpr)
	}
}

func (n *LoopExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "loop", nil) }
func (n *LoopExpr) Walk(v Visitor) {
	if n.Predicate != nil {
		Walk(v, n.Predicate)
	}
	Walk(v, n.Body)
}

func (n *CallExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call", map[string]int{"args": len(n.Args)})
}
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Callee)
	for _, a := range n.Args {
		Walk(v, a)
	}
}

func (n *ReturnExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "return", nil) }
func (n *ReturnExpr) Walk(v Visitor) {
	if n.Value != nil {
		Walk(v, n.Value)
	}
}
