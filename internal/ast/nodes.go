package ast

import (
	"strings"

	"github.com/lhaig/fun/internal/lexer"
)

// Node is the base interface for all AST nodes
type Node interface {
	Pos() (line, col int)
}

// Expression nodes
type Expression interface {
	Node
	exprNode()
}

// Pattern nodes
type Pattern interface {
	Node
	patternNode()
}

// Runtime is embedded by expression forms that only exist while an
// expression is being reduced. The parser never produces them.
type Runtime struct{}

func (Runtime) exprNode()       {}
func (Runtime) Pos() (int, int) { return 0, 0 }

// Surfacer is implemented by runtime forms that can be displayed as
// ordinary syntax.
type Surfacer interface {
	Surface() Expression
}

// Program represents a whole FUN source file
type Program struct {
	Imports []*ImportDecl
	Data    []*DataDecl
	Body    Expression // nil for files that only declare data
}

func (p *Program) Pos() (int, int) {
	if len(p.Imports) > 0 {
		return p.Imports[0].Pos()
	}
	if len(p.Data) > 0 {
		return p.Data[0].Pos()
	}
	if p.Body != nil {
		return p.Body.Pos()
	}
	return 0, 0
}

// Constructors returns every constructor declared by the program, in
// declaration order.
func (p *Program) Constructors() []*DataConstructor {
	var ctors []*DataConstructor
	for _, d := range p.Data {
		ctors = append(ctors, d.Constructors...)
	}
	return ctors
}

// ImportDecl represents an import declaration
type ImportDecl struct {
	Path   string // import path relative to the importing file (e.g. "shapes.fun")
	Line   int
	Column int
}

func (i *ImportDecl) Pos() (int, int) { return i.Line, i.Column }

// DataDecl represents: data Name = C1 T1 T2 | C2 | ...;
type DataDecl struct {
	Name         string
	Constructors []*DataConstructor
	Line         int
	Column       int
}

func (d *DataDecl) Pos() (int, int) { return d.Line, d.Column }

// DataConstructor is a named constructor with its declared field types.
// Two constructors are the same for matching purposes when their names are
// equal.
type DataConstructor struct {
	Name   string
	Fields []*TypeRef
	Type   string // name of the declaring data type
	Line   int
	Column int
}

func (c *DataConstructor) Pos() (int, int) { return c.Line, c.Column }

// Arity returns the number of declared fields.
func (c *DataConstructor) Arity() int { return len(c.Fields) }

// SameConstructor reports whether a and b denote the same constructor.
func SameConstructor(a, b *DataConstructor) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name == b.Name
}

// TypeRef represents a type annotation: Int, Bool, a data type name, or a
// function type Param -> Result.
type TypeRef struct {
	Name   string   // empty for function types
	Param  *TypeRef // function types only
	Result *TypeRef // function types only
	Line   int
	Column int
}

func (t *TypeRef) Pos() (int, int) { return t.Line, t.Column }

// IsFunc reports whether t is a function type.
func (t *TypeRef) IsFunc() bool { return t != nil && t.Param != nil }

// String renders the type in source syntax.
func (t *TypeRef) String() string {
	if t == nil {
		return "?"
	}
	if !t.IsFunc() {
		return t.Name
	}
	param := t.Param.String()
	if t.Param.IsFunc() {
		param = "(" + param + ")"
	}
	return param + " -> " + t.Result.String()
}

// --- expressions ---

// Var is a variable reference
type Var struct {
	Name   string
	Line   int
	Column int
}

func (v *Var) Pos() (int, int) { return v.Line, v.Column }
func (v *Var) exprNode()       {}

// IntLit is an integer literal
type IntLit struct {
	Value  int64
	Line   int
	Column int
}

func (i *IntLit) Pos() (int, int) { return i.Line, i.Column }
func (i *IntLit) exprNode()       {}

// BoolLit is a boolean literal
type BoolLit struct {
	Value  bool
	Line   int
	Column int
}

func (b *BoolLit) Pos() (int, int) { return b.Line, b.Column }
func (b *BoolLit) exprNode()       {}

// BinaryExpr applies one of + - * > >= < <= to two operands
type BinaryExpr struct {
	Op     lexer.TokenType
	Left   Expression
	Right  Expression
	Line   int
	Column int
}

func (b *BinaryExpr) Pos() (int, int) { return b.Line, b.Column }
func (b *BinaryExpr) exprNode()       {}

// IfExpr is: if Cond then Then else Else
type IfExpr struct {
	Cond   Expression
	Then   Expression
	Else   Expression
	Line   int
	Column int
}

func (i *IfExpr) Pos() (int, int) { return i.Line, i.Column }
func (i *IfExpr) exprNode()       {}

// FunExpr is a single-parameter function literal: \Param -> Body
type FunExpr struct {
	Param  string
	Body   Expression
	Line   int
	Column int
}

func (f *FunExpr) Pos() (int, int) { return f.Line, f.Column }
func (f *FunExpr) exprNode()       {}

// AppExpr applies Func to an ordered list of arguments
type AppExpr struct {
	Func   Expression
	Args   []Expression
	Line   int
	Column int
}

func (a *AppExpr) Pos() (int, int) { return a.Line, a.Column }
func (a *AppExpr) exprNode()       {}

// LetExpr is: let Name = Bound in Body. Name is in scope inside Bound.
type LetExpr struct {
	Name   string
	Bound  Expression
	Body   Expression
	Line   int
	Column int
}

func (l *LetExpr) Pos() (int, int) { return l.Line, l.Column }
func (l *LetExpr) exprNode()       {}

// AnnotExpr is: (Expr : Type). The annotation is not checked.
type AnnotExpr struct {
	Expr   Expression
	Type   *TypeRef
	Line   int
	Column int
}

func (a *AnnotExpr) Pos() (int, int) { return a.Line, a.Column }
func (a *AnnotExpr) exprNode()       {}

// ConstructorRef names a data constructor in expression position
type ConstructorRef struct {
	Constructor *DataConstructor
	Line        int
	Column      int
}

func (c *ConstructorRef) Pos() (int, int) { return c.Line, c.Column }
func (c *ConstructorRef) exprNode()       {}

// CaseExpr is: case Scrutinee of | p1 -> e1 | p2 -> e2 ...
type CaseExpr struct {
	Scrutinee Expression
	Alts      []*Alternative
	Line      int
	Column    int
}

func (c *CaseExpr) Pos() (int, int) { return c.Line, c.Column }
func (c *CaseExpr) exprNode()       {}

// Alternative is one arm of a case expression
type Alternative struct {
	Pattern Pattern
	Body    Expression
	Line    int
	Column  int
}

func (a *Alternative) Pos() (int, int) { return a.Line, a.Column }

// --- patterns ---

// IntPattern matches an integer literal
type IntPattern struct {
	Value  int64
	Line   int
	Column int
}

func (p *IntPattern) Pos() (int, int) { return p.Line, p.Column }
func (p *IntPattern) patternNode()    {}

// BoolPattern matches a boolean literal
type BoolPattern struct {
	Value  bool
	Line   int
	Column int
}

func (p *BoolPattern) Pos() (int, int) { return p.Line, p.Column }
func (p *BoolPattern) patternNode()    {}

// VarPattern always matches and binds the scrutinee to Name
type VarPattern struct {
	Name   string
	Line   int
	Column int
}

func (p *VarPattern) Pos() (int, int) { return p.Line, p.Column }
func (p *VarPattern) patternNode()    {}

// ConstructorPattern matches a constructed value with the same constructor
// name and exactly len(Args) fields.
type ConstructorPattern struct {
	Constructor *DataConstructor
	Args        []Pattern
	Line        int
	Column      int
}

func (p *ConstructorPattern) Pos() (int, int) { return p.Line, p.Column }
func (p *ConstructorPattern) patternNode()    {}

// Binders returns the variable names bound by p, left to right.
func Binders(p Pattern) []string {
	switch p := p.(type) {
	case *VarPattern:
		return []string{p.Name}
	case *ConstructorPattern:
		var names []string
		for _, arg := range p.Args {
			names = append(names, Binders(arg)...)
		}
		return names
	default:
		return nil
	}
}

// OperatorSymbol returns the source spelling of a binary operator.
func OperatorSymbol(op lexer.TokenType) string {
	switch op {
	case lexer.PLUS:
		return "+"
	case lexer.MINUS:
		return "-"
	case lexer.STAR:
		return "*"
	case lexer.GT:
		return ">"
	case lexer.GEQ:
		return ">="
	case lexer.LT:
		return "<"
	case lexer.LEQ:
		return "<="
	default:
		return "?"
	}
}

// IsBinaryOperator reports whether op is one of the FUN binary operators.
func IsBinaryOperator(op lexer.TokenType) bool {
	return OperatorSymbol(op) != "?"
}

// FieldSignature renders constructor field types as they appear in a data
// declaration.
func FieldSignature(fields []*TypeRef) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.String()
		if f.IsFunc() {
			parts[i] = "(" + parts[i] + ")"
		}
	}
	return strings.Join(parts, " ")
}
