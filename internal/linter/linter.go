package linter

import (
	"strings"
	"unicode"

	"github.com/lhaig/fun/internal/ast"
	"github.com/lhaig/fun/internal/diagnostic"
)

// Linter performs style and best-practice checks on an AST program.
// It reports warnings (never errors) using the diagnostic system.
type Linter struct {
	prog  *ast.Program
	diag  *diagnostic.Diagnostics
	scope *scope
}

// Lint runs all lint rules on the given program and returns diagnostics.
func Lint(prog *ast.Program) *diagnostic.Diagnostics {
	l := &Linter{
		prog:  prog,
		diag:  diagnostic.New(),
		scope: newScope(nil),
	}

	l.lintData()
	if prog.Body != nil {
		l.lintExpr(prog.Body)
	}

	l.diag.Sort()
	return l.diag
}

// lintData checks the data declarations.
func (l *Linter) lintData() {
	for _, d := range l.prog.Data {
		l.checkTypeNaming(d.Name, d.Line, d.Column)
		for _, c := range d.Constructors {
			l.checkConstructorNaming(d.Name, c)
		}
	}
}

// lintExpr walks an expression, tracking which bindings are in scope and
// which of them are read.
func (l *Linter) lintExpr(e ast.Expression) {
	switch e := e.(type) {
	case *ast.Var:
		if l.scope.resolve(e.Name) == nil {
			l.diag.WarningWithHint(e.Line, e.Column,
				"variable '"+e.Name+"' is not bound",
				"evaluation fails with UnboundVariable when this is reached")
		}
	case *ast.BinaryExpr:
		l.lintExpr(e.Left)
		l.lintExpr(e.Right)
	case *ast.IfExpr:
		l.checkConstantCondition(e)
		l.lintExpr(e.Cond)
		l.lintExpr(e.Then)
		l.lintExpr(e.Else)
	case *ast.FunExpr:
		l.enter()
		l.bind(e.Param, kindParam, e.Line, e.Column)
		l.lintExpr(e.Body)
		l.leave()
	case *ast.AppExpr:
		l.checkConstructorApplication(e)
		l.lintExpr(e.Func)
		for _, arg := range e.Args {
			l.lintExpr(arg)
		}
	case *ast.LetExpr:
		l.enter()
		b := l.bind(e.Name, kindLet, e.Line, e.Column)
		b.inBound = true
		l.lintExpr(e.Bound)
		b.inBound = false
		l.lintExpr(e.Body)
		l.leave()
	case *ast.AnnotExpr:
		l.lintExpr(e.Expr)
	case *ast.CaseExpr:
		l.lintExpr(e.Scrutinee)
		l.checkUnreachableAlternatives(e)
		for _, alt := range e.Alts {
			l.enter()
			l.lintPattern(alt.Pattern)
			l.lintExpr(alt.Body)
			l.leave()
		}
	}
}

func (l *Linter) lintPattern(p ast.Pattern) {
	switch p := p.(type) {
	case *ast.VarPattern:
		l.bind(p.Name, kindPattern, p.Line, p.Column)
	case *ast.ConstructorPattern:
		if p.Constructor != nil && len(p.Args) != p.Constructor.Arity() {
			l.diag.Warningf(p.Line, p.Column,
				"pattern for '%s' has %d argument(s) but the constructor declares %d; it never matches",
				p.Constructor.Name, len(p.Args), p.Constructor.Arity())
		}
		for _, arg := range p.Args {
			l.lintPattern(arg)
		}
	}
}

func (l *Linter) enter() {
	l.scope = newScope(l.scope)
}

// leave closes the innermost scope and reports its unused bindings.
func (l *Linter) leave() {
	for _, b := range l.scope.order {
		if !b.used && !strings.HasPrefix(b.name, "_") {
			l.diag.WarningWithHint(b.line, b.column,
				b.kind.String()+" '"+b.name+"' is never used",
				"remove it or rename it to start with '_'")
		}
	}
	l.scope = l.scope.parent
}

func (l *Linter) bind(name string, kind bindingKind, line, col int) *binding {
	l.checkVariableNaming(name, kind, line, col)
	b := &binding{name: name, kind: kind, line: line, column: col}
	if prev := l.scope.define(b); prev != nil && !strings.HasPrefix(name, "_") {
		l.diag.Warningf(line, col,
			"%s '%s' shadows the %s declared at %d:%d", kind, name, prev.kind, prev.line, prev.column)
	}
	return b
}

// checkConstantCondition warns about if expressions on a literal.
func (l *Linter) checkConstantCondition(e *ast.IfExpr) {
	lit, ok := e.Cond.(*ast.BoolLit)
	if !ok {
		return
	}
	branch := "else"
	if !lit.Value {
		branch = "then"
	}
	l.diag.WarningWithHint(lit.Line, lit.Column,
		"condition is always "+boolString(lit.Value),
		"the "+branch+" branch is never evaluated")
}

// checkConstructorApplication warns when a constructor gets more arguments
// than it declares fields. The extra fields make the value unmatchable.
func (l *Linter) checkConstructorApplication(e *ast.AppExpr) {
	ref, ok := e.Func.(*ast.ConstructorRef)
	if !ok || ref.Constructor == nil {
		return
	}
	if n := ref.Constructor.Arity(); len(e.Args) > n {
		l.diag.Warningf(e.Line, e.Column,
			"constructor '%s' takes %d argument(s) but is applied to %d",
			ref.Constructor.Name, n, len(e.Args))
	}
}

// checkUnreachableAlternatives warns about arms that follow a catch-all
// pattern or repeat an earlier literal pattern.
func (l *Linter) checkUnreachableAlternatives(e *ast.CaseExpr) {
	ints := make(map[int64]bool)
	bools := make(map[bool]bool)
	for i, alt := range e.Alts {
		line, col := alt.Pattern.Pos()
		switch p := alt.Pattern.(type) {
		case *ast.VarPattern:
			if i < len(e.Alts)-1 {
				next := e.Alts[i+1]
				nl, nc := next.Pattern.Pos()
				l.diag.WarningWithHint(nl, nc,
					"alternative is unreachable",
					"the pattern '"+p.Name+"' before it matches every value")
			}
			return
		case *ast.IntPattern:
			if ints[p.Value] {
				l.diag.Warningf(line, col, "alternative is unreachable: %d is already matched", p.Value)
			}
			ints[p.Value] = true
		case *ast.BoolPattern:
			if bools[p.Value] {
				l.diag.Warningf(line, col, "alternative is unreachable: %s is already matched", boolString(p.Value))
			}
			bools[p.Value] = true
			if bools[true] && bools[false] && i < len(e.Alts)-1 {
				nl, nc := e.Alts[i+1].Pattern.Pos()
				l.diag.WarningWithHint(nl, nc,
					"alternative is unreachable",
					"both true and false are matched before it")
				return
			}
		}
	}
}

// checkTypeNaming warns if a data type name is not PascalCase.
func (l *Linter) checkTypeNaming(name string, line, col int) {
	if !isPascalCase(name) {
		l.diag.Warningf(line, col,
			"data type '%s' should use PascalCase naming", name)
	}
}

// checkConstructorNaming warns if a constructor name is not PascalCase.
func (l *Linter) checkConstructorNaming(typeName string, c *ast.DataConstructor) {
	if !isPascalCase(c.Name) {
		l.diag.Warningf(c.Line, c.Column,
			"constructor '%s' in data type '%s' should use PascalCase naming", c.Name, typeName)
	}
}

// checkVariableNaming warns if a bound name does not start lowercase.
func (l *Linter) checkVariableNaming(name string, kind bindingKind, line, col int) {
	if !isCamelCase(name) {
		l.diag.Warningf(line, col,
			"%s '%s' should start with a lowercase letter", kind, name)
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// isCamelCase returns true if the name starts with a lowercase letter or an
// underscore.
func isCamelCase(name string) bool {
	if len(name) == 0 {
		return false
	}
	r := []rune(name)[0]
	return unicode.IsLower(r) || r == '_'
}

// isPascalCase returns true if the name starts with an uppercase letter
// and contains no underscores.
func isPascalCase(name string) bool {
	if len(name) == 0 {
		return false
	}
	runes := []rune(name)
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	return !strings.ContainsRune(name, '_')
}
