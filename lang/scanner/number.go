package scanner

import (
	"strconv"

	"github.com/mna/theta/lang/token"
)

// scanNumber scans `[0-9]+(\.[0-9]*)?`. The presence of the dot decides
// whether the token is INT or FLOAT; a value that doesn't fit in the
// literal's target width (int32 for INT, float32 for FLOAT) is a fatal
// lexical error rather than a silently truncated or rounded value.
func (s *scanner) scanNumber(start int) (TokenValue, *Error) {
	for !s.atEOF() && isDigit(s.peekByte()) {
		s.advance()
	}

	isFloat := false
	if s.peekByte() == '.' {
		isFloat = true
		s.advance()
		for !s.atEOF() && isDigit(s.peekByte()) {
			s.advance()
		}
	}

	raw := string(s.src[start:s.off])
	span := token.Span{Begin: token.Pos(start), End: token.Pos(s.off)}

	if !isFloat {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return TokenValue{}, s.errorf(UnexpectedInput, start, "integer literal out of range: "+raw)
		}
		return TokenValue{Tok: token.INT, Span: span, Raw: raw, Int: int32(n)}, nil
	}

	f, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return TokenValue{}, s.errorf(UnexpectedInput, start, "float literal out of range: "+raw)
	}
	return TokenValue{Tok: token.FLOAT, Span: span, Raw: raw, Float: float32(f)}, nil
}
