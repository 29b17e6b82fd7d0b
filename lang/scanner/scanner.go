// Package scanner turns theta source text into a stream of tokens plus the
// line-break offset table the parser and diagnostics use to translate a
// byte offset into a line/column pair.
//
// The lexer is single-pass with one byte of lookahead. It never recovers
// from a lexical error: UnexpectedEOF, UnexpectedInput, UnterminatedString
// and ExtraCommentTermination all stop scanning immediately, matching the
// "never recovered, terminates compilation" contract for this phase.
package scanner

import (
	"github.com/mna/theta/lang/token"
)

// TokenValue pairs a token's tag with its span and, for tokens that carry a
// payload, the decoded literal value.
type TokenValue struct {
	Tok   token.Token
	Span  token.Span
	Raw   string  // exact source text consumed for this token
	Str   string  // decoded value, for STRING tokens
	Int   int32   // decoded value, for INT tokens
	Float float32 // decoded value, for FLOAT tokens
}

// Result is everything the lexer produces for one file: a complete token
// stream (always ending in an EOF token on success) and the line-break
// table recorded along the way.
type Result struct {
	File   *token.File
	Tokens []TokenValue
}

// Scan tokenizes src, which must be exactly file.Size() bytes long, and
// returns the token stream and line table, or the first lexical error
// encountered. On error, the lexer stops: the Result is nil and no
// attempt is made to recover and keep scanning.
func Scan(file *token.File, src []byte) (*Result, *Error) {
	s := &scanner{file: file, src: src}
	var toks []TokenValue
	for {
		tv, err := s.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tv)
		if tv.Tok == token.EOF {
			break
		}
	}
	return &Result{File: file, Tokens: toks}, nil
}

// ScanFiles tokenizes multiple named sources in one call, registering
// each in a shared token.FileSet. Scanning stops at the
// first file that fails; outputs for files before it are discarded, since
// a lex error is fatal to the whole compilation.
func ScanFiles(names []string, srcs [][]byte) (*token.FileSet, []*Result, error) {
	fs := token.NewFileSet()
	results := make([]*Result, len(names))
	for i, name := range names {
		f := fs.AddFile(name, len(srcs[i]))
		res, err := Scan(f, srcs[i])
		if err != nil {
			return fs, nil, err
		}
		results[i] = res
	}
	return fs, results, nil
}

type scanner struct {
	file *token.File
	src  []byte

	off int // offset of the byte about to be read
}

func (s *scanner) atEOF() bool { return s.off >= len(s.src) }

func (s *scanner) peekByte() byte {
	if s.atEOF() {
		return 0
	}
	return s.src[s.off]
}

func (s *scanner) peekByte2() byte {
	if s.off+1 >= len(s.src) {
		return 0
	}
	return s.src[s.off+1]
}

func (s *scanner) advance() byte {
	c := s.src[s.off]
	s.off++
	if c == '\n' {
		s.file.AddLine(s.off)
	}
	return c
}

func (s *scanner) errorf(kind Kind, at int, msg string) *Error {
	return &Error{Kind: kind, Pos: s.file.Position(token.Pos(at)), Msg: msg}
}

// next scans and returns the next token, skipping whitespace and comments.
func (s *scanner) next() (TokenValue, *Error) {
	for {
		s.skipWhitespace()
		if s.atEOF() {
			return TokenValue{Tok: token.EOF, Span: token.Span{Begin: token.Pos(s.off), End: token.Pos(s.off)}}, nil
		}

		c := s.peekByte()
		if c == '/' && s.peekByte2() == '/' {
			s.skipLineComment()
			continue
		}
		if c == '/' && s.peekByte2() == '*' {
			if err := s.skipBlockComment(); err != nil {
				return TokenValue{}, err
			}
			continue
		}
		if c == '*' && s.peekByte2() == '/' {
			return TokenValue{}, s.errorf(ExtraCommentTermination, s.off, "'*/' with no matching '/*'")
		}
		break
	}

	start := s.off
	c := s.advance()

	switch {
	case isAlpha(c):
		return s.scanIdent(start), nil
	case isDigit(c):
		return s.scanNumber(start)
	case c == '"':
		return s.scanString(start)
	}

	switch c {
	case '(':
		return s.tok(token.LPAREN, start), nil
	case ')':
		return s.tok(token.RPAREN, start), nil
	case '{':
		return s.tok(token.LBRACE, start), nil
	case '}':
		return s.tok(token.RBRACE, start), nil
	case ',':
		return s.tok(token.COMMA, start), nil
	case '.':
		return s.tok(token.DOT, start), nil
	case '+':
		return s.tok(token.PLUS, start), nil
	case ';':
		return s.tok(token.SEMI, start), nil
	case '/':
		return s.tok(token.SLASH, start), nil
	case '*':
		return s.tok(token.STAR, start), nil
	case ':':
		return s.tok(token.COLON, start), nil
	case '-':
		if s.peekByte() == '>' {
			s.advance()
			return s.tok(token.ARROW, start), nil
		}
		return s.tok(token.MINUS, start), nil
	case '!':
		if s.peekByte() == '=' {
			s.advance()
			return s.tok(token.BANG_EQ, start), nil
		}
		return s.tok(token.BANG, start), nil
	case '=':
		if s.peekByte() == '=' {
			s.advance()
			return s.tok(token.EQ_EQ, start), nil
		}
		return s.tok(token.EQ, start), nil
	case '<':
		if s.peekByte() == '=' {
			s.advance()
			return s.tok(token.LT_EQ, start), nil
		}
		return s.tok(token.LT, start), nil
	case '>':
		if s.peekByte() == '=' {
			s.advance()
			return s.tok(token.GT_EQ, start), nil
		}
		return s.tok(token.GT, start), nil
	}

	return TokenValue{}, s.errorf(UnexpectedInput, start, "unexpected character "+string(c))
}

func (s *scanner) tok(tok token.Token, start int) TokenValue {
	return TokenValue{
		Tok:  tok,
		Span: token.Span{Begin: token.Pos(start), End: token.Pos(s.off)},
		Raw:  string(s.src[start:s.off]),
	}
}

func (s *scanner) skipWhitespace() {
	for !s.atEOF() {
		switch s.peekByte() {
		case ' ', '\r', '\t', '\n':
			s.advance()
		default:
			return
		}
	}
}

func (s *scanner) scanIdent(start int) TokenValue {
	for !s.atEOF() && isAlpha(s.peekByte()) {
		s.advance()
	}
	raw := string(s.src[start:s.off])
	return TokenValue{
		Tok:  token.Lookup(raw),
		Span: token.Span{Begin: token.Pos(start), End: token.Pos(s.off)},
		Raw:  raw,
	}
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
