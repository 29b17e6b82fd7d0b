package parser

import (
	"github.com/mna/theta/lang/ast"
	"github.com/mna/theta/lang/symtab"
	"github.com/mna/theta/lang/token"
)

// parseExpr parses `expression := if | while | block | "return" expression?
// | assignment`.
func (p *parser) parseExpr() ast.Expr {
	switch p.tok() {
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.LBRACE:
		return p.parseBlock()
	case token.RETURN:
		return p.parseReturn()
	default:
		return p.parseAssignment()
	}
}

// parseAssignment parses `assignment := equality ("=" assignment)?`. The
// left-hand side must be a bare identifier; anything else followed by "="
// is a parse error.
func (p *parser) parseAssignment() ast.Expr {
	left := p.parseEquality()
	if !p.at(token.EQ) {
		return left
	}
	p.advance()
	value := p.parseAssignment()

	lit, ok := left.(*ast.LiteralExpr)
	if !ok || lit.Tok != token.IDENT {
		p.error(left.Span(), "invalid assignment target")
		return left
	}
	return &ast.AssignmentExpr{
		Info:  ast.Info{Sp: token.Merge(left.Span(), value.Span()), ScopeDepth: p.depth, Table: p.table, Frame: p.frame},
		Name:  lit.Raw,
		Value: value,
	}
}

func (p *parser) parseEquality() ast.Expr {
	return p.parseBinaryLevel(p.parseComparison, token.BANG_EQ, token.EQ_EQ)
}

func (p *parser) parseComparison() ast.Expr {
	return p.parseBinaryLevel(p.parseTerm, token.LT, token.LT_EQ, token.GT, token.GT_EQ)
}

func (p *parser) parseTerm() ast.Expr {
	return p.parseBinaryLevel(p.parseFactor, token.PLUS, token.MINUS)
}

func (p *parser) parseFactor() ast.Expr {
	return p.parseBinaryLevel(p.parseUnary, token.STAR, token.SLASH)
}

// parseBinaryLevel implements one left-associative precedence level:
// `next (op next)*`.
func (p *parser) parseBinaryLevel(next func() ast.Expr, ops ...token.Token) ast.Expr {
	left := next()
	for isOneOf(p.tok(), ops) {
		opTv := p.advance()
		right := next()
		left = &ast.BinaryExpr{
			Info:  ast.Info{Sp: token.Merge(left.Span(), right.Span()), ScopeDepth: p.depth, Table: p.table, Frame: p.frame},
			Left:  left,
			Op:    opTv.Tok,
			OpPos: opTv.Span,
			Right: right,
		}
	}
	return left
}

func isOneOf(tok token.Token, ops []token.Token) bool {
	for _, o := range ops {
		if tok == o {
			return true
		}
	}
	return false
}

// parseUnary parses `unary := ("!" | "-") unary | call`.
func (p *parser) parseUnary() ast.Expr {
	if p.at(token.BANG) || p.at(token.MINUS) {
		opTv := p.advance()
		right := p.parseUnary()
		return &ast.UnaryExpr{
			Info:  ast.Info{Sp: token.Merge(opTv.Span, right.Span()), ScopeDepth: p.depth, Table: p.table, Frame: p.frame},
			Op:    opTv.Tok,
			OpPos: opTv.Span,
			Right: right,
		}
	}
	return p.parseCall()
}

// parseCall parses `call := primary ("(" call-args ")")?`.
func (p *parser) parseCall() ast.Expr {
	callee := p.parsePrimary()
	if !p.at(token.LPAREN) {
		return callee
	}
	p.advance()
	var args []ast.Expr
	for !p.at(token.RPAREN) {
		args = append(args, p.parseExpr())
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	end := p.expect(token.RPAREN).Span

	if lit, ok := callee.(*ast.LiteralExpr); ok && lit.Tok == token.IDENT {
		if b, ok := p.table.Get(lit.Raw, p.depth); !ok || b.Kind != symtab.Function {
			p.error(lit.Span(), "call to undeclared function "+lit.Raw)
		}
	}

	return &ast.CallExpr{
		Info:   ast.Info{Sp: token.Merge(callee.Span(), end), ScopeDepth: p.depth, Table: p.table, Frame: p.frame},
		Callee: callee,
		Args:   args,
	}
}

// parsePrimary parses `primary := "(" expression (";" expression)* ")" |
// LITERAL`.
func (p *parser) parsePrimary() ast.Expr {
	switch p.tok() {
	case token.INT, token.FLOAT, token.STRING, token.TRUE, token.FALSE:
		tv := p.advance()
		return &ast.LiteralExpr{
			Info: ast.Info{Sp: tv.Span, ScopeDepth: p.depth, Table: p.table, Frame: p.frame},
			Tok:  tv.Tok,
			Raw:  tv.Raw,
		}
	case token.IDENT:
		tv := p.advance()
		if _, ok := p.table.Get(tv.Raw, p.depth); !ok {
			p.error(tv.Span, "undeclared name "+tv.Raw)
		}
		return &ast.LiteralExpr{
			Info: ast.Info{Sp: tv.Span, ScopeDepth: p.depth, Table: p.table, Frame: p.frame},
			Tok:  token.IDENT,
			Raw:  tv.Raw,
		}
	case token.LPAREN:
		return p.parseGrouping()
	default:
		p.error(p.span(), "expected an expression, found "+p.cur().Tok.GoString())
		panic(errPanicMode)
	}
}

func (p *parser) parseGrouping() ast.Expr {
	start := p.expect(token.LPAREN).Span
	items := []ast.Expr{p.parseExpr()}
	for p.at(token.SEMI) {
		p.advance()
		items = append(items, p.parseExpr())
	}
	end := p.expect(token.RPAREN).Span

	if len(items) == 1 {
		return items[0]
	}
	return &ast.SequenceExpr{
		Info:  ast.Info{Sp: token.Merge(start, end), ScopeDepth: p.depth, Table: p.table, Frame: p.frame},
		Items: items,
	}
}

func (p *parser) parseIf() ast.Expr {
	start := p.expect(token.IF).Span
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	then := p.parseExpr()

	end := then.Span()
	var elseExpr ast.Expr
	if p.at(token.ELSE) {
		p.advance()
		elseExpr = p.parseExpr()
		end = elseExpr.Span()
	}
	return &ast.IfExpr{
		Info: ast.Info{Sp: token.Merge(start, end), ScopeDepth: p.depth, Table: p.table, Frame: p.frame},
		Cond: cond,
		Then: then,
		Else: elseExpr,
	}
}

func (p *parser) parseWhile() ast.Expr {
	start := p.expect(token.WHILE).Span
	var pred ast.Expr
	if p.at(token.LPAREN) {
		p.advance()
		pred = p.parseExpr()
		p.expect(token.RPAREN)
	}
	body := p.parseExpr()
	return &ast.LoopExpr{
		Info:      ast.Info{Sp: token.Merge(start, body.Span()), ScopeDepth: p.depth, Table: p.table, Frame: p.frame},
		Predicate: pred,
		Body:      body,
	}
}

func (p *parser) parseReturn() ast.Expr {
	start := p.expect(token.RETURN).Span
	end := start
	var value ast.Expr
	if canStartExpr(p.tok()) {
		value = p.parseExpr()
		end = value.Span()
	}
	if p.frame.ReturnTy == nil && value != nil {
		p.error(start, "return with a value is not allowed at the top level")
	}
	return &ast.ReturnExpr{
		Info:  ast.Info{Sp: token.Merge(start, end), ScopeDepth: p.depth, Table: p.table, Frame: p.frame},
		Value: value,
	}
}

// canStartExpr reports whether tok can begin an expression, used to decide
// whether a bare `return` is followed by a value or stands alone.
func canStartExpr(tok token.Token) bool {
	switch tok {
	case token.SEMI, token.RBRACE, token.EOF:
		return false
	default:
		return true
	}
}
