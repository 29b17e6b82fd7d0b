// Package typecheck implements the validating pass that sits between the
// parser and the bytecode emitter: it walks the annotated tree the parser
// produced, rejects ill-typed expressions and statements, and records each
// node's resolved type on its ast.Info so later passes (and disassembly)
// can inspect it. Its algorithm is deliberately simple type-equality
// checking, not full inference: the parser has already done the harder
// work of scope and frame-slot resolution, and the grammar has no
// user-declared types to infer structure for.
package typecheck

import (
	"github.com/mna/theta/lang/ast"
	"github.com/mna/theta/lang/symtab"
	"github.com/mna/theta/lang/token"
	"github.com/mna/theta/lang/types"
)

// Check validates every item of prog, annotating each node's Info.Type as
// it goes. file is used only to translate spans into reportable positions.
func Check(file *token.File, prog *ast.Program) error {
	c := &checker{file: file}
	for _, item := range prog.Items {
		c.checkItem(item)
	}
	c.errors.Sort()
	return c.errors.Err()
}

type checker struct {
	file   *token.File
	errors ErrorList
}

func (c *checker) errorf(span token.Span, format string, args ...any) {
	c.errors.add(c.file.Position(span.Begin), format, args...)
}

// resolveTy rejects a NonLiteral type annotation: this language has no way
// to declare a new type, so any annotation the parser could not resolve
// against the (fully pre-seeded, never-growing) root table at parse time
// names nothing and can never resolve later either.
func (c *checker) resolveTy(span token.Span, ty types.Info) (types.Info, bool) {
	if ty == nil {
		return types.None{}, true
	}
	if nl, ok := ty.(types.NonLiteral); ok {
		c.errorf(span, "unknown type %q", nl.Name)
		return nil, false
	}
	return ty, true
}

func (c *checker) checkItem(item *ast.Item) {
	for _, a := range item.Args {
		c.resolveTy(item.Span(), a.Ty)
	}
	retTy, ok := c.resolveTy(item.Span(), item.ReturnTy)
	if !ok {
		retTy = types.None{}
	}

	bodyTy := c.checkBlock(item.Body)
	if item.Name == "" {
		return // the implicit top-level script has no declared return type to match
	}
	if _, isNone := retTy.(types.None); isNone {
		return
	}
	if _, isNone := bodyTy.(types.None); isNone {
		// the function relies on explicit `return` statements inside the body
		// rather than a tail expression; verifying every path returns is flow
		// analysis this pass doesn't attempt.
		return
	}
	if !bodyTy.Equal(retTy) {
		c.errorf(item.Body.Span(), "function %s returns %s, declared return type is %s", item.Name, bodyTy, retTy)
	}
}

// checkBlock type-checks every statement and the tail expression (if any),
// returning the block's own resulting type: the tail expression's type, or
// None if the block ends in ";" with nothing to carry out.
func (c *checker) checkBlock(b *ast.BlockExpr) types.Info {
	for _, s := range b.Stmts {
		c.checkStmt(s)
	}
	if b.FinalExpr != nil {
		return c.checkExpr(b.FinalExpr)
	}
	return types.None{}
}

func (c *checker) checkStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.VarStmt:
		c.checkVarStmt(s)
	case *ast.ExprStmt:
		c.checkExpr(s.Expr)
	case *ast.PrintStmt:
		c.checkExpr(s.Expr)
	}
}

func (c *checker) checkVarStmt(s *ast.VarStmt) {
	declTy, ok := c.resolveTy(s.Span(), s.Type)
	initTy := c.checkExpr(s.Init)
	if ok && !declTy.Equal(initTy) {
		c.errorf(s.Span(), "cannot assign %s to %s %s", initTy, declTy, s.Name)
	}
	s.NodeInfo().Type = declTy
}

func (c *checker) checkExpr(e ast.Expr) types.Info {
	ty := c.synthesize(e)
	e.NodeInfo().Type = ty
	return ty
}

func (c *checker) synthesize(e ast.Expr) types.Info {
	switch e := e.(type) {
	case *ast.LiteralExpr:
		return c.checkLiteral(e)
	case *ast.BinaryExpr:
		return c.checkBinary(e)
	case *ast.UnaryExpr:
		return c.checkUnary(e)
	case *ast.SequenceExpr:
		var last types.Info = types.None{}
		for _, it := range e.Items {
			last = c.checkExpr(it)
		}
		return last
	case *ast.AssignmentExpr:
		return c.checkAssignment(e)
	case *ast.IfExpr:
		return c.checkIf(e)
	case *ast.BlockExpr:
		return c.checkBlock(e)
	case *ast.LoopExpr:
		if e.Predicate != nil {
			if pt := c.checkExpr(e.Predicate); !isBool(pt) {
				c.errorf(e.Predicate.Span(), "while predicate must be Bool, got %s", pt)
			}
		}
		c.checkExpr(e.Body)
		return types.None{}
	case *ast.CallExpr:
		return c.checkCall(e)
	case *ast.ReturnExpr:
		return c.checkReturn(e)
	default:
		return types.None{}
	}
}

func (c *checker) checkLiteral(lit *ast.LiteralExpr) types.Info {
	switch lit.Tok {
	case token.INT:
		return types.Int{}
	case token.FLOAT:
		return types.Float{}
	case token.STRING:
		return types.String{}
	case token.TRUE, token.FALSE:
		return types.Boolean{}
	case token.IDENT:
		b, ok := lit.Table.Get(lit.Raw, lit.ScopeDepth)
		if !ok {
			return types.None{} // already reported by the parser
		}
		if b.Kind == symtab.Function {
			c.errorf(lit.Span(), "%s names a function, not a value", lit.Raw)
			return types.None{}
		}
		return b.Ty
	default:
		return types.None{}
	}
}

func (c *checker) checkUnary(u *ast.UnaryExpr) types.Info {
	rt := c.checkExpr(u.Right)
	switch u.Op {
	case token.BANG:
		if !isBool(rt) {
			c.errorf(u.Span(), "! requires Bool, got %s", rt)
		}
		return types.Boolean{}
	case token.MINUS:
		if !isNumeric(rt) {
			c.errorf(u.Span(), "unary - requires Int or Float, got %s", rt)
		}
		return rt
	default:
		return types.None{}
	}
}

func (c *checker) checkBinary(b *ast.BinaryExpr) types.Info {
	lt := c.checkExpr(b.Left)
	rt := c.checkExpr(b.Right)

	switch b.Op {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH:
		if !isNumeric(lt) || !lt.Equal(rt) {
			c.errorf(b.OpPos, "%s requires matching Int or Float operands, got %s and %s", b.Op, lt, rt)
			return types.None{}
		}
		return lt
	case token.LT, token.LT_EQ, token.GT, token.GT_EQ:
		if !isNumeric(lt) || !lt.Equal(rt) {
			c.errorf(b.OpPos, "%s requires matching Int or Float operands, got %s and %s", b.Op, lt, rt)
		}
		return types.Boolean{}
	case token.EQ_EQ, token.BANG_EQ:
		if !lt.Equal(rt) {
			c.errorf(b.OpPos, "%s requires operands of the same type, got %s and %s", b.Op, lt, rt)
		}
		return types.Boolean{}
	default:
		return types.None{}
	}
}

func (c *checker) checkAssignment(a *ast.AssignmentExpr) types.Info {
	vt := c.checkExpr(a.Value)
	b, ok := a.Table.Get(a.Name, a.ScopeDepth)
	if !ok {
		return vt // already reported by the parser
	}
	if !b.Ty.Equal(vt) {
		c.errorf(a.Span(), "cannot assign %s to %s %s", vt, b.Ty, a.Name)
	}
	return b.Ty
}

func (c *checker) checkIf(i *ast.IfExpr) types.Info {
	if ct := c.checkExpr(i.Cond); !isBool(ct) {
		c.errorf(i.Cond.Span(), "if condition must be Bool, got %s", ct)
	}
	thenTy := c.checkExpr(i.Then)
	if i.Else == nil {
		return types.None{}
	}
	elseTy := c.checkExpr(i.Else)
	if !thenTy.Equal(elseTy) {
		c.errorf(i.Span(), "if branches disagree: %s vs %s", thenTy, elseTy)
	}
	return thenTy
}

func (c *checker) checkCall(call *ast.CallExpr) types.Info {
	callee, ok := call.Callee.(*ast.LiteralExpr)
	if !ok || callee.Tok != token.IDENT {
		c.errorf(call.Span(), "call target must be a plain function name")
		for _, a := range call.Args {
			c.checkExpr(a)
		}
		return types.None{}
	}
	b, ok := callee.Table.Get(callee.Raw, callee.ScopeDepth)
	argTys := make([]types.Info, len(call.Args))
	for i, a := range call.Args {
		argTys[i] = c.checkExpr(a)
	}
	if !ok || b.Kind != symtab.Function {
		return types.None{} // already reported by the parser
	}
	if len(argTys) != len(b.Args) {
		c.errorf(call.Span(), "%s expects %d arguments, got %d", callee.Raw, len(b.Args), len(argTys))
		return b.ReturnTy
	}
	for i, at := range argTys {
		if !b.Args[i].Equal(at) {
			c.errorf(call.Args[i].Span(), "argument %d of %s: expected %s, got %s", i+1, callee.Raw, b.Args[i], at)
		}
	}
	return b.ReturnTy
}

func (c *checker) checkReturn(r *ast.ReturnExpr) types.Info {
	retTy := r.Frame.ReturnTy
	if r.Value == nil {
		if retTy != nil {
			if _, isNone := retTy.(types.None); !isNone {
				c.errorf(r.Span(), "function must return a value of type %s", retTy)
			}
		}
		return types.None{}
	}
	vt := c.checkExpr(r.Value)
	if retTy != nil && !retTy.Equal(vt) {
		c.errorf(r.Span(), "return type mismatch: function returns %s, got %s", retTy, vt)
	}
	return types.None{}
}

func isBool(t types.Info) bool {
	_, ok := t.(types.Boolean)
	return ok
}

func isNumeric(t types.Info) bool {
	switch t.(type) {
	case types.Int, types.Float:
		return true
	default:
		return false
	}
}
