package formatter

import (
	"fmt"
	"strings"

	"github.com/lhaig/fun/internal/ast"
	"github.com/lhaig/fun/internal/lexer"
)

// Format takes an AST Program and returns canonical FUN source code.
// Top-level let chains and case alternatives of the body are laid out one
// per line; everything else is printed on a single line.
func Format(prog *ast.Program) string {
	f := &formatter{}
	f.formatProgram(prog)
	return f.sb.String()
}

// Expr returns the canonical single-line source of an expression. The
// output parses back to the same tree.
func Expr(e ast.Expression) string {
	f := &formatter{}
	return f.formatExprPrec(e, precTop)
}

// Pattern returns the source of a case pattern.
func Pattern(p ast.Pattern) string {
	f := &formatter{}
	return f.formatPattern(p, false)
}

type formatter struct {
	sb     strings.Builder
	indent int
}

func (f *formatter) emitLine(s string) {
	if s == "" {
		f.sb.WriteString("\n")
	} else {
		f.sb.WriteString(f.indentStr())
		f.sb.WriteString(s)
		f.sb.WriteString("\n")
	}
}

func (f *formatter) emitLinef(format string, args ...any) {
	f.emitLine(fmt.Sprintf(format, args...))
}

func (f *formatter) incIndent() { f.indent++ }
func (f *formatter) decIndent() { f.indent-- }

func (f *formatter) indentStr() string {
	return strings.Repeat("  ", f.indent)
}

func (f *formatter) blankLine() {
	f.sb.WriteString("\n")
}

// --- program-level ---

func (f *formatter) formatProgram(prog *ast.Program) {
	sections := 0

	if len(prog.Imports) > 0 {
		for _, imp := range prog.Imports {
			f.emitLinef("import %q;", imp.Path)
		}
		sections++
	}

	if len(prog.Data) > 0 {
		if sections > 0 {
			f.blankLine()
		}
		for _, d := range prog.Data {
			f.formatDataDecl(d)
		}
		sections++
	}

	if prog.Body != nil {
		if sections > 0 {
			f.blankLine()
		}
		f.formatBody(prog.Body)
	}
}

func (f *formatter) formatDataDecl(d *ast.DataDecl) {
	ctors := make([]string, len(d.Constructors))
	for i, c := range d.Constructors {
		if len(c.Fields) == 0 {
			ctors[i] = c.Name
		} else {
			ctors[i] = c.Name + " " + ast.FieldSignature(c.Fields)
		}
	}
	f.emitLinef("data %s = %s;", d.Name, strings.Join(ctors, " | "))
}

// formatBody lays out an expression in tail position over several lines.
func (f *formatter) formatBody(e ast.Expression) {
	switch expr := e.(type) {
	case *ast.LetExpr:
		f.emitLinef("let %s = %s in", expr.Name, f.formatExprPrec(expr.Bound, precTop))
		f.formatBody(expr.Body)

	case *ast.CaseExpr:
		f.emitLinef("case %s of", f.formatExprPrec(expr.Scrutinee, precTop))
		f.incIndent()
		for i, alt := range expr.Alts {
			f.emitLine("| " + f.formatAlternative(alt, i == len(expr.Alts)-1))
		}
		f.decIndent()

	default:
		f.emitLine(f.formatExprPrec(e, precTop))
	}
}

// --- expressions ---

// Precedence levels. Open forms (let, fun, if, case) print without
// parentheses only at precTop, since they extend as far right as possible.
const (
	precTop = iota
	precComparison
	precAdditive
	precMultiplicative
	precApp
	precAtom
)

func precedence(op lexer.TokenType) int {
	switch op {
	case lexer.LT, lexer.GT, lexer.LEQ, lexer.GEQ:
		return precComparison
	case lexer.PLUS, lexer.MINUS:
		return precAdditive
	case lexer.STAR:
		return precMultiplicative
	default:
		return precComparison
	}
}

func parenIf(cond bool, s string) string {
	if cond {
		return "(" + s + ")"
	}
	return s
}

// formatExprPrec formats an expression, wrapping in parens if needed based on parent precedence.
func (f *formatter) formatExprPrec(e ast.Expression, parentPrec int) string {
	switch expr := e.(type) {
	case *ast.Var:
		return expr.Name

	case *ast.IntLit:
		s := fmt.Sprintf("%d", expr.Value)
		return parenIf(expr.Value < 0 && parentPrec >= precApp, s)

	case *ast.BoolLit:
		if expr.Value {
			return "true"
		}
		return "false"

	case *ast.ConstructorRef:
		return expr.Constructor.Name

	case *ast.BinaryExpr:
		prec := precedence(expr.Op)
		left := f.formatExprPrec(expr.Left, prec)
		right := f.formatExprPrec(expr.Right, prec+1) // +1 for left-associativity
		result := fmt.Sprintf("%s %s %s", left, ast.OperatorSymbol(expr.Op), right)
		return parenIf(prec < parentPrec, result)

	case *ast.AppExpr:
		if len(expr.Args) == 0 {
			return f.formatExprPrec(expr.Func, parentPrec)
		}
		parts := make([]string, 0, len(expr.Args)+1)
		parts = append(parts, f.formatExprPrec(expr.Func, precAtom))
		for _, arg := range expr.Args {
			parts = append(parts, f.formatExprPrec(arg, precAtom))
		}
		return parenIf(precApp < parentPrec, strings.Join(parts, " "))

	case *ast.AnnotExpr:
		return fmt.Sprintf("(%s : %s)", f.formatExprPrec(expr.Expr, precTop), expr.Type)

	case *ast.FunExpr:
		s := fmt.Sprintf("\\%s -> %s", expr.Param, f.formatExprPrec(expr.Body, precTop))
		return parenIf(parentPrec > precTop, s)

	case *ast.LetExpr:
		s := fmt.Sprintf("let %s = %s in %s", expr.Name,
			f.formatExprPrec(expr.Bound, precTop),
			f.formatExprPrec(expr.Body, precTop))
		return parenIf(parentPrec > precTop, s)

	case *ast.IfExpr:
		s := fmt.Sprintf("if %s then %s else %s",
			f.formatExprPrec(expr.Cond, precTop),
			f.formatExprPrec(expr.Then, precTop),
			f.formatExprPrec(expr.Else, precTop))
		return parenIf(parentPrec > precTop, s)

	case *ast.CaseExpr:
		var sb strings.Builder
		sb.WriteString("case ")
		sb.WriteString(f.formatExprPrec(expr.Scrutinee, precTop))
		sb.WriteString(" of")
		for i, alt := range expr.Alts {
			sb.WriteString(" | ")
			sb.WriteString(f.formatAlternative(alt, i == len(expr.Alts)-1))
		}
		return parenIf(parentPrec > precTop, sb.String())

	case ast.Surfacer:
		return f.formatExprPrec(expr.Surface(), parentPrec)

	case fmt.Stringer:
		return parenIf(parentPrec >= precApp, expr.String())

	case nil:
		return "<nil>"

	default:
		return fmt.Sprintf("<%T>", e)
	}
}

// formatAlternative formats one case arm. Only the last arm's body may be
// an open form without parentheses; any other would swallow the arms after it.
func (f *formatter) formatAlternative(alt *ast.Alternative, last bool) string {
	bodyPrec := precComparison
	if last {
		bodyPrec = precTop
	}
	return f.formatPattern(alt.Pattern, false) + " -> " + f.formatExprPrec(alt.Body, bodyPrec)
}

// formatPattern formats a pattern; nested marks a constructor argument
// position, where applied constructors and negative literals need parens.
func (f *formatter) formatPattern(p ast.Pattern, nested bool) string {
	switch pat := p.(type) {
	case *ast.IntPattern:
		return parenIf(nested && pat.Value < 0, fmt.Sprintf("%d", pat.Value))

	case *ast.BoolPattern:
		if pat.Value {
			return "true"
		}
		return "false"

	case *ast.VarPattern:
		return pat.Name

	case *ast.ConstructorPattern:
		if len(pat.Args) == 0 {
			return pat.Constructor.Name
		}
		parts := []string{pat.Constructor.Name}
		for _, arg := range pat.Args {
			parts = append(parts, f.formatPattern(arg, true))
		}
		return parenIf(nested, strings.Join(parts, " "))

	default:
		return fmt.Sprintf("<%T>", p)
	}
}
