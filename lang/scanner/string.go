package scanner

import "github.com/mna/theta/lang/token"

// scanString scans a `"…"` literal. There are no escape sequences: the
// value runs verbatim until the next quote, internal newlines advance the
// line table like any other newline, and reaching EOF first is a fatal
// UnterminatedString.
func (s *scanner) scanString(start int) (TokenValue, *Error) {
	for {
		if s.atEOF() {
			return TokenValue{}, s.errorf(UnterminatedString, start, "unterminated string literal")
		}
		if s.peekByte() == '"' {
			break
		}
		s.advance()
	}
	s.advance() // closing quote

	raw := string(s.src[start:s.off])
	return TokenValue{
		Tok:  token.STRING,
		Span: token.Span{Begin: token.Pos(start), End: token.Pos(s.off)},
		Raw:  raw,
		Str:  raw[1 : len(raw)-1],
	}, nil
}
