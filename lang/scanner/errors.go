package scanner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mna/theta/lang/token"
)

// Kind identifies which of the lexer's fatal failure modes produced an
// Error.
type Kind int

const (
	// UnexpectedEOF is reported when the source ends mid-token (e.g. inside
	// a block comment).
	UnexpectedEOF Kind = iota
	// UnexpectedInput is reported for a byte that starts no valid token.
	UnexpectedInput
	// UnterminatedString is reported when a string literal is not closed
	// before EOF.
	UnterminatedString
	// ExtraCommentTermination is reported for a `*/` that closes no open
	// block comment.
	ExtraCommentTermination
)

var kindNames = [...]string{
	UnexpectedEOF:           "unexpected end of file",
	UnexpectedInput:         "unexpected input",
	UnterminatedString:      "unterminated string",
	ExtraCommentTermination: "extra comment termination",
}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return "unknown lex error"
	}
	return kindNames[k]
}

// Error is a single lexical failure, fatal to the compilation it occurred
// in (the lexer never recovers from its own errors, per spec).
type Error struct {
	Kind Kind
	Pos  token.Position
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
}

// ErrorList collects the errors produced while scanning one or more files.
// The zero value is an empty, usable list.
type ErrorList []*Error

// Add appends a new error to the list.
func (l *ErrorList) Add(kind Kind, pos token.Position, msg string) {
	*l = append(*l, &Error{Kind: kind, Pos: pos, Msg: msg})
}

// Sort orders the list by file name then by offset, so that errors from
// multiple files are reported in a deterministic, source-order sequence.
func (l ErrorList) Sort() {
	sort.Slice(l, func(i, j int) bool {
		pi, pj := l[i].Pos, l[j].Pos
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		return pi.Offset < pj.Offset
	})
}

// Err returns l as an error if it is non-empty, or nil otherwise.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (and %d more errors)", l[0].Error(), len(l)-1)
	return b.String()
}

// Unwrap lets errors.Is/As and fmt %w traverse every error in the list.
func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}
