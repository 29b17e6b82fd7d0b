// Package types defines the closed set of type information attached to
// expressions and symbol-table bindings: the resolved-or-forward-declared
// types flowing from the parser through the type checker into the emitter.
package types

import "fmt"

// Info is the interface implemented by every type-information variant. The
// set is closed: Int, String, Float, Boolean, None, NonLiteral and
// Function are the only implementations.
type Info interface {
	fmt.Stringer
	typeInfo()

	// Equal reports whether two Info values denote the same type. NonLiteral
	// values are never Equal to anything, including another NonLiteral with
	// the same name, since they represent an unresolved forward reference
	// that the type checker must replace before comparison is meaningful.
	Equal(other Info) bool
}

// Int is the built-in 64-bit signed integer type.
type Int struct{}

// String is the built-in UTF-8 string type.
type String struct{}

// Float is the built-in 64-bit floating point type.
type Float struct{}

// Boolean is the built-in boolean type.
type Boolean struct{}

// None is the type of an expression that produces no value (a bare
// statement, or the absent else-branch of an if used as a statement).
type None struct{}

// NonLiteral represents a forward-declared type name that has not yet been
// resolved to a concrete built-in or function type; the parser emits this
// when an annotation refers to a name not yet bound to a Type symbol, and
// the type checker reports it as an unknown type.
type NonLiteral struct{ Name string }

// Function is the type of a callable value.
type Function struct {
	Return Info
	Args   []Info
}

func (Int) typeInfo()        {}
func (String) typeInfo()     {}
func (Float) typeInfo()      {}
func (Boolean) typeInfo()    {}
func (None) typeInfo()       {}
func (NonLiteral) typeInfo() {}
func (Function) typeInfo()   {}

func (Int) String() string     { return "Int" }
func (String) String() string  { return "String" }
func (Float) String() string   { return "Float" }
func (Boolean) String() string { return "Bool" }
func (None) String() string    { return "None" }
func (n NonLiteral) String() string {
	return "unresolved:" + n.Name
}
func (f Function) String() string {
	s := "Function("
	for i, a := range f.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	s += ") -> " + f.Return.String()
	return s
}

func (Int) Equal(other Info) bool     { _, ok := other.(Int); return ok }
func (String) Equal(other Info) bool  { _, ok := other.(String); return ok }
func (Float) Equal(other Info) bool   { _, ok := other.(Float); return ok }
func (Boolean) Equal(other Info) bool { _, ok := other.(Boolean); return ok }
func (None) Equal(other Info) bool    { _, ok := other.(None); return ok }
func (NonLiteral) Equal(Info) bool    { return false }
func (f Function) Equal(other Info) bool {
	o, ok := other.(Function)
	if !ok || len(f.Args) != len(o.Args) {
		return false
	}
	if !f.Return.Equal(o.Return) {
		return false
	}
	for i, a := range f.Args {
		if !a.Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// Builtin looks up one of the four predeclared type names (Int, String,
// Bool, Float), returning nil if name does not name a built-in type.
func Builtin(name string) Info {
	switch name {
	case "Int":
		return Int{}
	case "String":
		return String{}
	case "Bool":
		return Boolean{}
	case "Float":
		return Float{}
	default:
		return nil
	}
}
