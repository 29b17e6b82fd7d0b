// Package parser implements the recursive-descent parser that turns a
// token stream into an annotated ast.Program. Symbol resolution runs
// inline with parsing: every declaration is inserted into the active
// symtab.Table, and every name reference is resolved against it, as the
// tree is built rather than in a later pass.
package parser

import (
	"errors"
	"fmt"

	"github.com/mna/theta/lang/ast"
	"github.com/mna/theta/lang/scanner"
	"github.com/mna/theta/lang/symtab"
	"github.com/mna/theta/lang/token"
	"github.com/mna/theta/lang/types"
)

// ParseFile scans and parses a single named source into an ast.Program.
// The returned error, if non-nil, is either a *scanner.Error (the lexer
// never recovers from its own errors) or a parser.ErrorList.
func ParseFile(filename string, src []byte) (*token.FileSet, *ast.Program, error) {
	fs := token.NewFileSet()
	f := fs.AddFile(filename, len(src))

	res, lexErr := scanner.Scan(f, src)
	if lexErr != nil {
		return fs, nil, lexErr
	}

	p := newParser(f, res.Tokens)
	prog := p.parseProgram()
	p.errors.Sort()
	return fs, prog, p.errors.Err()
}

// parser holds the mutable state shared by every parse* method: the token
// cursor and the current symbol table/frame/scope depth, which change as
// the parser enters and leaves function bodies and nested blocks.
type parser struct {
	toks []scanner.TokenValue
	pos  int
	file *token.File

	errors ErrorList

	root  *symtab.Table // pre-seeded with builtin types, shared by every function
	table *symtab.Table  // active table for the function currently being parsed
	frame *symtab.Frame  // active frame for the function currently being parsed
	depth int            // active scope depth within table; 0 only at top-level script scope
}

func newParser(file *token.File, toks []scanner.TokenValue) *parser {
	root := symtab.NewRootTable()
	return &parser{
		toks:  toks,
		file:  file,
		root:  root,
		table: symtab.NewTable(root),
		frame: symtab.NewFrame(nil),
	}
}

func (p *parser) cur() scanner.TokenValue  { return p.toks[p.pos] }
func (p *parser) tok() token.Token         { return p.toks[p.pos].Tok }
func (p *parser) at(tok token.Token) bool  { return p.tok() == tok }
func (p *parser) span() token.Span         { return p.toks[p.pos].Span }

func (p *parser) advance() scanner.TokenValue {
	tv := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tv
}

// errPanicMode unwinds to the nearest recover point (parseDeclaration's
// caller loop) after a syntax error, so that one bad statement doesn't
// abort the whole parse.
var errPanicMode = errors.New("panic mode")

// expect consumes and returns the current token if it matches tok,
// otherwise records an error and panics into panic mode.
func (p *parser) expect(tok token.Token) scanner.TokenValue {
	if !p.at(tok) {
		p.errorExpected(tok)
		panic(errPanicMode)
	}
	return p.advance()
}

func (p *parser) error(span token.Span, msg string) {
	p.errors.Add(p.file.Position(span.Begin), msg)
}

func (p *parser) errorExpected(want token.Token) {
	got := p.cur()
	lit := got.Raw
	if lit == "" {
		lit = got.Tok.GoString()
	}
	p.error(got.Span, fmt.Sprintf("expected %s, found %s", want.GoString(), lit))
}

// synchronize discards tokens after a statement-level error until it finds
// a semicolon (which it consumes) or the start of a new declaration, so
// that parsing can resume from a plausible boundary.
func (p *parser) synchronize() {
	for !p.at(token.EOF) {
		if p.at(token.SEMI) {
			p.advance()
			return
		}
		switch p.tok() {
		case token.CLASS, token.FUN, token.LET, token.FOR, token.IF, token.WHILE, token.RETURN:
			return
		}
		p.advance()
	}
}

// parseProgram parses the whole file: a sequence of top-level `fun`
// declarations interleaved with the statements of the implicit top-level
// script, which always occupies Items[0].
func (p *parser) parseProgram() *ast.Program {
	start := p.span()
	var scriptStmts []ast.Stmt
	var scriptFinal ast.Expr
	var items []*ast.Item

	for !p.at(token.EOF) {
		if p.at(token.FUN) {
			if it := p.parseFunctionItem(); it != nil {
				items = append(items, it)
			}
			continue
		}
		if scriptFinal != nil {
			// a partial was already seen; nothing may legally follow it, but we
			// keep parsing to surface further errors instead of stopping cold.
			p.error(p.span(), "unexpected token after partial expression")
		}
		stmt, final := p.parseProgramDeclaration()
		if final != nil {
			scriptFinal = final
		} else if stmt != nil {
			scriptStmts = append(scriptStmts, stmt)
		}
	}

	script := &ast.Item{
		Info: ast.Info{Sp: token.Merge(start, p.span()), ScopeDepth: 0, Table: p.table, Frame: p.frame},
		Name: "",
		Body: &ast.BlockExpr{
			Info:      ast.Info{Sp: token.Merge(start, p.span()), ScopeDepth: 0, Table: p.table, Frame: p.frame},
			Stmts:     scriptStmts,
			FinalExpr: scriptFinal,
			// depth 0 var-decls bind as globals (self-popping via DefineGlobal),
			// never as stack-resident locals, so the top-level script never owns
			// any locals to pop at exit.
			NumLocals: 0,
		},
	}
	return &ast.Program{Items: append([]*ast.Item{script}, items...)}
}

// parseProgramDeclaration parses one top-level declaration, recovering
// from syntax errors the same way parseBlockDeclarations does.
func (p *parser) parseProgramDeclaration() (stmt ast.Stmt, final ast.Expr) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			p.synchronize()
			stmt, final = nil, nil
		}
	}()
	return p.parseDeclaration(true)
}

// resolveTypeAnnotation resolves name against the active table, per the
// parser-time symbol resolution rules: a binding to a Type yields that
// type; no binding at all yields a forward reference for the type checker
// to settle later; a binding to anything else is an error.
func (p *parser) resolveTypeAnnotation(span token.Span, name string) types.Info {
	b, ok := p.table.Get(name, p.depth)
	if !ok {
		return types.NonLiteral{Name: name}
	}
	if b.Kind != symtab.Type {
		p.error(span, fmt.Sprintf("%q does not name a type", name))
		return types.NonLiteral{Name: name}
	}
	return b.Ty
}
