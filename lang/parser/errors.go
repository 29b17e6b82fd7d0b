package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mna/theta/lang/token"
)

// Error is a single syntax or resolution error recorded while parsing.
type Error struct {
	Pos token.Position
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// ErrorList collects every error recorded during a parse. Unlike the
// scanner, the parser recovers from each one (via synchronize) and keeps
// going, so a single parse can report many.
type ErrorList []*Error

func (l *ErrorList) Add(pos token.Position, msg string) {
	*l = append(*l, &Error{Pos: pos, Msg: msg})
}

// Sort orders the list by file then by offset.
func (l ErrorList) Sort() {
	sort.Slice(l, func(i, j int) bool {
		pi, pj := l[i].Pos, l[j].Pos
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		return pi.Offset < pj.Offset
	})
}

// Err returns l as an error if non-empty, or nil otherwise.
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

func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}
