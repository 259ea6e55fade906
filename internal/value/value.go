// Package value defines the runtime values of FUN programs and the
// persistent environments that bind them.
package value

import (
	"strconv"
	"strings"

	"github.com/lhaig/fun/internal/ast"
)

// Value is a fully evaluated FUN value: Int, Bool, *Closure or
// *Constructed. The set is closed.
type Value interface {
	String() string
	valueNode()
}

// Int is a machine integer
type Int int64

func (Int) valueNode()       {}
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// Bool is a boolean
type Bool bool

func (Bool) valueNode()       {}
func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

// Closure is a function value. Env is the environment in effect when the
// function literal was evaluated; later extensions of that environment are
// not visible to the closure.
type Closure struct {
	Param string
	Body  ast.Expression
	Env   *Env
}

func (*Closure) valueNode()     {}
func (*Closure) String() string { return "<function>" }

// Constructed is a data constructor applied to zero or more fields. It is
// partial while len(Fields) is less than the constructor's arity.
type Constructed struct {
	Constructor *ast.DataConstructor
	Fields      []Value
}

func (*Constructed) valueNode() {}

// String renders the value as source: P 3 (Q true) (-1)
func (c *Constructed) String() string {
	var sb strings.Builder
	sb.WriteString(c.Constructor.Name)
	for _, f := range c.Fields {
		sb.WriteByte(' ')
		sb.WriteString(fieldString(f))
	}
	return sb.String()
}

func fieldString(v Value) string {
	switch v := v.(type) {
	case Int:
		if v < 0 {
			return "(" + v.String() + ")"
		}
	case *Constructed:
		if len(v.Fields) > 0 {
			return "(" + v.String() + ")"
		}
	}
	return v.String()
}

// Apply returns a new constructed value with arg appended to the fields.
// The receiver is not modified.
func (c *Constructed) Apply(arg Value) *Constructed {
	fields := make([]Value, len(c.Fields), len(c.Fields)+1)
	copy(fields, c.Fields)
	return &Constructed{Constructor: c.Constructor, Fields: append(fields, arg)}
}

// Partial reports whether fewer fields are present than declared.
func (c *Constructed) Partial() bool {
	return len(c.Fields) < c.Constructor.Arity()
}

// Equal compares values structurally. Closures are equal only to
// themselves; constructors compare by name.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Int:
		b, ok := b.(Int)
		return ok && a == b
	case Bool:
		b, ok := b.(Bool)
		return ok && a == b
	case *Closure:
		b, ok := b.(*Closure)
		return ok && a == b
	case *Constructed:
		b, ok := b.(*Constructed)
		if !ok || !ast.SameConstructor(a.Constructor, b.Constructor) || len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if !Equal(a.Fields[i], b.Fields[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Kind names the sort of a value for messages: Int, Bool, function, or the
// declaring data type of a constructed value.
func Kind(v Value) string {
	switch v := v.(type) {
	case Int:
		return "Int"
	case Bool:
		return "Bool"
	case *Closure:
		return "function"
	case *Constructed:
		if v.Constructor.Type != "" {
			return v.Constructor.Type
		}
		return v.Constructor.Name
	default:
		return "unknown"
	}
}
