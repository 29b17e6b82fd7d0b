package scanner

// skipLineComment consumes a `//` comment through (but not including) the
// terminating newline, or EOF.
func (s *scanner) skipLineComment() {
	s.advance() // '/'
	s.advance() // '/'
	for !s.atEOF() && s.peekByte() != '\n' {
		s.advance()
	}
}

// skipBlockComment consumes a nestable `/* ... */` comment. Nesting depth
// is tracked with a counter; EOF before the matching close is a fatal
// UnexpectedEOF.
func (s *scanner) skipBlockComment() *Error {
	start := s.off
	s.advance() // '/'
	s.advance() // '*'
	depth := 1
	for depth > 0 {
		if s.atEOF() {
			return s.errorf(UnexpectedEOF, start, "unterminated block comment")
		}
		if s.peekByte() == '/' && s.peekByte2() == '*' {
			s.advance()
			s.advance()
			depth++
			continue
		}
		if s.peekByte() == '*' && s.peekByte2() == '/' {
			s.advance()
			s.advance()
			depth--
			continue
		}
		s.advance()
	}
	return nil
}
