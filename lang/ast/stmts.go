package ast

import "fmt"

type (
	// ExprStmt is a terminated expression used as a statement: `expr;`.
	ExprStmt struct {
		Info
		Expr Expr
	}

	// PrintStmt is `print(expr);`.
	PrintStmt struct {
		Info
		Expr Expr
	}

	// VarStmt is `let name: ty = init;` (both annotation and initializer are
	// required by the parser).
	VarStmt struct {
		Info
		Name string
		Init Expr
	}

	// PartialStmt wraps an expression used in statement position without a
	// terminating semicolon. It is legal only as the last element of a
	// block, where the parser instead records the expression directly in
	// BlockExpr.FinalExpr; a PartialStmt node only exists transiently during
	// parsing and is never itself a child of a finished BlockExpr.
	PartialStmt struct {
		Info
		Expr Expr
	}
)

func (*ExprStmt) stmt()    {}
func (*PrintStmt) stmt()   {}
func (*VarStmt) stmt()     {}
func (*PartialStmt) stmt() {}

func (n *ExprStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "expr stmt", nil) }
func (n *ExprStmt) Walk(v Visitor)                { Walk(v, n.Expr) }

func (n *PrintStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "print", nil) }
func (n *PrintStmt) Walk(v Visitor)                { Walk(v, n.Expr) }

func (n *VarStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "let "+n.Name, nil) }
func (n *VarStmt) Walk(v Visitor)                { Walk(v, n.Init) }

func (n *PartialStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "partial", nil) }
func (n *PartialStmt) Walk(v Visitor)                { Walk(v, n.Expr) }
