package parser

import (
	"github.com/mna/theta/lang/ast"
	"github.com/mna/theta/lang/symtab"
	"github.com/mna/theta/lang/token"
	"github.com/mna/theta/lang/types"
)

// parseFunctionItem parses `function := "fun" IDENT "(" arg-list ")"
// ("->" IDENT)? block`. The function name is inserted into the enclosing
// (script) table before its body is parsed, so a function may call itself.
func (p *parser) parseFunctionItem() *ast.Item {
	outerTable, outerFrame, outerDepth := p.table, p.frame, p.depth
	defer func() {
		p.table, p.frame, p.depth = outerTable, outerFrame, outerDepth
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			p.synchronize()
		}
	}()

	start := p.expect(token.FUN).Span
	name := p.expect(token.IDENT)
	p.expect(token.LPAREN)

	var args []ast.FunctionArg
	for !p.at(token.RPAREN) {
		argName := p.expect(token.IDENT)
		p.expect(token.COLON)
		tyTok := p.expect(token.IDENT)
		ty := p.resolveTypeAnnotation(tyTok.Span, tyTok.Raw)
		args = append(args, ast.FunctionArg{Name: argName.Raw, Ty: ty})
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)

	var returnTy types.Info = types.None{}
	if p.at(token.ARROW) {
		p.advance()
		tyTok := p.expect(token.IDENT)
		returnTy = p.resolveTypeAnnotation(tyTok.Span, tyTok.Raw)
	}

	argTys := make([]types.Info, len(args))
	for i, a := range args {
		argTys[i] = a.Ty
	}
	p.table.Insert(p.depth, name.Raw, &symtab.Binding{
		Kind:     symtab.Function,
		ReturnTy: returnTy,
		Args:     argTys,
	})

	// switch to a fresh table/frame for the function body, nested under the
	// table the function was declared in so it can still see other
	// top-level functions and types.
	p.table = symtab.NewTable(outerTable)
	p.frame = symtab.NewFrame(returnTy)
	p.depth = 0

	bodyDepth := p.depth + 1
	for _, a := range args {
		p.table.Insert(bodyDepth, a.Name, &symtab.Binding{
			Kind:       symtab.LocalVariable,
			Ty:         a.Ty,
			ScopeLevel: bodyDepth,
			Slot:       p.frame.NewParam(),
		})
	}

	body := p.parseBlock()

	item := &ast.Item{
		Info:     ast.Info{Sp: token.Merge(start, body.Span()), ScopeDepth: 0, Table: p.table, Frame: p.frame},
		Name:     name.Raw,
		Args:     args,
		ReturnTy: returnTy,
		Body:     body,
	}

	return item
}
