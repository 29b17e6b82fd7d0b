package typecheck

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mna/theta/lang/token"
)

// Error is a single type error, attached to the source position of the
// node that failed to check.
type Error struct {
	Pos token.Position
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// ErrorList collects every error found during one Check call so that a
// single run reports as many problems as possible instead of stopping at
// the first one.
type ErrorList []*Error

func (l *ErrorList) add(pos token.Position, format string, args ...any) {
	*l = append(*l, &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// Sort orders the list by byte offset, for deterministic reporting.
func (l ErrorList) Sort() {
	sort.Slice(l, func(i, j int) bool { return l[i].Pos.Offset < l[j].Pos.Offset })
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
