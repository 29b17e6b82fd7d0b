package parser

import (
	"github.com/mna/theta/lang/ast"
	"github.com/mna/theta/lang/symtab"
	"github.com/mna/theta/lang/token"
)

// parseDeclaration parses one `declaration := var-decl | statement`. If the
// declaration turns out to be a bare expression with no terminating
// semicolon, it is a partial: legal only at the tail of a block (or of the
// top-level script, when topLevel is true), so it is returned via the
// second result instead of being wrapped in a statement.
func (p *parser) parseDeclaration(topLevel bool) (ast.Stmt, ast.Expr) {
	if p.at(token.LET) {
		return p.parseVarDecl(), nil
	}
	return p.parseStatement(topLevel)
}

func (p *parser) parseVarDecl() ast.Stmt {
	start := p.expect(token.LET).Span
	name := p.expect(token.IDENT)

	p.expect(token.COLON)
	tyTok := p.expect(token.IDENT)
	ty := p.resolveTypeAnnotation(tyTok.Span, tyTok.Raw)

	p.expect(token.EQ)
	init := p.parseExpr()
	end := p.expect(token.SEMI).Span

	var binding symtab.Binding
	binding.Ty = ty
	if p.depth == 0 {
		binding.Kind = symtab.GlobalVariable
	} else {
		binding.Kind = symtab.LocalVariable
		binding.ScopeLevel = p.depth
		binding.Slot = p.frame.NewLocal()
	}
	p.table.Insert(p.depth, name.Raw, &binding)

	return &ast.VarStmt{
		Info: ast.Info{Sp: token.Merge(start, end), ScopeDepth: p.depth, Table: p.table, Frame: p.frame, Type: ty},
		Name: name.Raw,
		Init: init,
	}
}

func (p *parser) parseStatement(topLevel bool) (ast.Stmt, ast.Expr) {
	if p.at(token.PRINT) {
		return p.parsePrintStmt(), nil
	}

	start := p.span()
	expr := p.parseExpr()
	if p.at(token.SEMI) {
		end := p.expect(token.SEMI).Span
		return &ast.ExprStmt{
			Info: ast.Info{Sp: token.Merge(start, end), ScopeDepth: p.depth, Table: p.table, Frame: p.frame},
			Expr: expr,
		}, nil
	}

	// no trailing semicolon: a partial, legal only at the tail of the
	// enclosing block (or script). The caller enforces tail position.
	return nil, expr
}

func (p *parser) parsePrintStmt() ast.Stmt {
	start := p.expect(token.PRINT).Span
	p.expect(token.LPAREN)
	expr := p.parseExpr()
	p.expect(token.RPAREN)
	end := p.expect(token.SEMI).Span
	return &ast.PrintStmt{
		Info: ast.Info{Sp: token.Merge(start, end), ScopeDepth: p.depth, Table: p.table, Frame: p.frame},
		Expr: expr,
	}
}

// parseBlock parses `"{" declaration* "}"`, pushing a new scope depth for
// its duration. A partial encountered mid-block (i.e. not immediately
// followed by "}") is a parse error.
func (p *parser) parseBlock() *ast.BlockExpr {
	start := p.expect(token.LBRACE).Span

	p.depth++
	depth := p.depth

	var stmts []ast.Stmt
	var final ast.Expr
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		if final != nil {
			p.error(p.span(), "unexpected token after partial expression")
		}
		stmt, expr := p.parseBlockDeclaration()
		if expr != nil {
			final = expr
		} else if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	end := p.expect(token.RBRACE).Span
	p.depth--

	return &ast.BlockExpr{
		Info:      ast.Info{Sp: token.Merge(start, end), ScopeDepth: depth, Table: p.table, Frame: p.frame},
		Stmts:     stmts,
		FinalExpr: final,
		NumLocals: countVarStmts(stmts),
	}
}

// countVarStmts counts the var-decls directly in stmts, i.e. declared at
// this block's own scope depth. Locals declared inside a nested block
// (itself a statement or expression at this depth) are not counted here:
// that nested BlockExpr accounts for and pops them at its own exit.
func countVarStmts(stmts []ast.Stmt) int {
	n := 0
	for _, s := range stmts {
		if _, ok := s.(*ast.VarStmt); ok {
			n++
		}
	}
	return n
}

func (p *parser) parseBlockDeclaration() (stmt ast.Stmt, final ast.Expr) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			p.synchronize()
			stmt, final = nil, nil
		}
	}()
	return p.parseDeclaration(false)
}
