// Package eval implements the small-step semantics of FUN: a reducer that
// rewrites an expression and its environment one step at a time, the
// pattern matcher it uses for case analysis, and the driver loop.
package eval

import (
	"errors"

	"github.com/lhaig/fun/internal/ast"
	"github.com/lhaig/fun/internal/lexer"
	"github.com/lhaig/fun/internal/value"
)

// Result is the outcome of a successful step. When Value is set the
// expression has been fully reduced; otherwise evaluation continues with
// Expr under Env.
type Result struct {
	Expr  ast.Expression
	Env   *value.Env
	Value value.Value
}

// Done reports whether the step produced a final value.
func (r Result) Done() bool { return r.Value != nil }

func done(v value.Value) (Result, error) {
	return Result{Value: v}, nil
}

func next(e ast.Expression, env *value.Env) (Result, error) {
	return Result{Expr: e, Env: env}, nil
}

// Intermediate forms. They appear only inside expressions built by Step.

// valueExpr is a value that has already been computed, in expression
// position.
type valueExpr struct {
	ast.Runtime
	v value.Value
}

func (e *valueExpr) String() string { return e.v.String() }

func (e *valueExpr) Surface() ast.Expression {
	return surface(e.v)
}

// scopedExpr is a subterm that is reduced under its own environment rather
// than the environment of the expression containing it.
type scopedExpr struct {
	ast.Runtime
	env  *value.Env
	expr ast.Expression
}

func (e *scopedExpr) Surface() ast.Expression { return e.expr }

// letExpr is a let whose bound expression is being reduced under an
// environment where the name refers to knot.
type letExpr struct {
	ast.Runtime
	name  string
	knot  *value.Knot
	bound ast.Expression
	body  ast.Expression
}

func (e *letExpr) Surface() ast.Expression {
	return &ast.LetExpr{Name: e.name, Bound: e.bound, Body: e.body}
}

// surface renders a value as the syntax that would produce it.
func surface(v value.Value) ast.Expression {
	switch v := v.(type) {
	case value.Int:
		return &ast.IntLit{Value: int64(v)}
	case value.Bool:
		return &ast.BoolLit{Value: bool(v)}
	case *value.Closure:
		return &ast.FunExpr{Param: v.Param, Body: v.Body}
	case *value.Constructed:
		ref := &ast.ConstructorRef{Constructor: v.Constructor}
		if len(v.Fields) == 0 {
			return ref
		}
		args := make([]ast.Expression, len(v.Fields))
		for i, f := range v.Fields {
			args[i] = surface(f)
		}
		return &ast.AppExpr{Func: ref, Args: args}
	default:
		return &ast.Var{Name: "<?>"}
	}
}

// Val wraps an already computed value so it can appear in an expression
// passed to Step.
func Val(v value.Value) ast.Expression {
	return &valueExpr{v: v}
}

func isValue(e ast.Expression) (value.Value, bool) {
	if ve, ok := e.(*valueExpr); ok {
		return ve.v, true
	}
	return nil, false
}

// reduce performs one step of sub under env and returns the expression that
// replaces sub inside its parent, which stays under env.
func reduce(sub ast.Expression, env *value.Env) (ast.Expression, error) {
	r, err := Step(sub, env)
	if err != nil {
		return nil, err
	}
	if r.Done() {
		return &valueExpr{v: r.Value}, nil
	}
	if r.Env == env {
		return r.Expr, nil
	}
	return &scopedExpr{env: r.Env, expr: r.Expr}, nil
}

// Step performs one reduction of e under env. It returns a Result, or a
// *Failure when the expression cannot be reduced further.
func Step(e ast.Expression, env *value.Env) (Result, error) {
	switch e := e.(type) {
	case *valueExpr:
		return done(e.v)

	case *scopedExpr:
		r, err := Step(e.expr, e.env)
		if err != nil || r.Done() {
			return r, err
		}
		return next(r.Expr, r.Env)

	case *ast.Var:
		v, err := env.Lookup(e.Name)
		switch {
		case err == nil:
			return done(v)
		case errors.Is(err, value.ErrUnresolved):
			// The knot is still being tied; no step can make progress.
			return next(e, env)
		default:
			return Result{}, failf(UnboundVariable, e.Line, e.Column, "%s", e.Name)
		}

	case *ast.IntLit:
		return done(value.Int(e.Value))

	case *ast.BoolLit:
		return done(value.Bool(e.Value))

	case *ast.BinaryExpr:
		return stepBinary(e, env)

	case *ast.IfExpr:
		cond, ok := isValue(e.Cond)
		if !ok {
			c, err := reduce(e.Cond, env)
			if err != nil {
				return Result{}, err
			}
			ne := *e
			ne.Cond = c
			return next(&ne, env)
		}
		b, ok := cond.(value.Bool)
		if !ok {
			return Result{}, failf(InvalidOperator, e.Line, e.Column, "if condition is %s %s, not Bool", value.Kind(cond), cond)
		}
		if b {
			return next(e.Then, env)
		}
		return next(e.Else, env)

	case *ast.FunExpr:
		return done(&value.Closure{Param: e.Param, Body: e.Body, Env: env})

	case *ast.AppExpr:
		return stepApp(e, env)

	case *ast.LetExpr:
		kenv, knot := env.Recursive(e.Name)
		return next(&letExpr{
			name:  e.Name,
			knot:  knot,
			bound: &scopedExpr{env: kenv, expr: e.Bound},
			body:  e.Body,
		}, env)

	case *letExpr:
		if v, ok := isValue(e.bound); ok {
			e.knot.Resolve(v)
			return next(e.body, env.Bind(e.name, v))
		}
		bound, err := reduce(e.bound, env)
		if err != nil {
			return Result{}, err
		}
		return next(&letExpr{name: e.name, knot: e.knot, bound: bound, body: e.body}, env)

	case *ast.AnnotExpr:
		return next(e.Expr, env)

	case *ast.ConstructorRef:
		return done(&value.Constructed{Constructor: e.Constructor})

	case *ast.CaseExpr:
		scrutinee, ok := isValue(e.Scrutinee)
		if !ok {
			s, err := reduce(e.Scrutinee, env)
			if err != nil {
				return Result{}, err
			}
			ne := *e
			ne.Scrutinee = s
			return next(&ne, env)
		}
		for _, alt := range e.Alts {
			if extended, ok := Match(scrutinee, alt.Pattern, env); ok {
				return next(alt.Body, extended)
			}
		}
		return Result{}, failf(NoMatchingCase, e.Line, e.Column, "no alternative matches %s", scrutinee)

	case nil:
		return Result{}, &Failure{Reason: NotApplicable, Construct: "missing expression"}

	default:
		line, col := e.Pos()
		return Result{}, failf(NotApplicable, line, col, "malformed expression %T", e)
	}
}

func stepBinary(e *ast.BinaryExpr, env *value.Env) (Result, error) {
	left, ok := isValue(e.Left)
	if !ok {
		l, err := reduce(e.Left, env)
		if err != nil {
			return Result{}, err
		}
		ne := *e
		ne.Left = l
		return next(&ne, env)
	}
	right, ok := isValue(e.Right)
	if !ok {
		r, err := reduce(e.Right, env)
		if err != nil {
			return Result{}, err
		}
		ne := *e
		ne.Right = r
		return next(&ne, env)
	}

	v, ok := applyOperator(e.Op, left, right)
	if !ok {
		return Result{}, failf(InvalidOperator, e.Line, e.Column, "%s %s %s", left, ast.OperatorSymbol(e.Op), right)
	}
	return done(v)
}

// applyOperator applies a binary operator to two integers. Arithmetic wraps
// on overflow.
func applyOperator(op lexer.TokenType, left, right value.Value) (value.Value, bool) {
	a, ok := left.(value.Int)
	if !ok {
		return nil, false
	}
	b, ok := right.(value.Int)
	if !ok {
		return nil, false
	}
	switch op {
	case lexer.PLUS:
		return a + b, true
	case lexer.MINUS:
		return a - b, true
	case lexer.STAR:
		return a * b, true
	case lexer.GT:
		return value.Bool(a > b), true
	case lexer.GEQ:
		return value.Bool(a >= b), true
	case lexer.LT:
		return value.Bool(a < b), true
	case lexer.LEQ:
		return value.Bool(a <= b), true
	default:
		return nil, false
	}
}

// stepApp reduces App(callee, arg :: rest): the argument first, then the
// callee, then one application.
func stepApp(e *ast.AppExpr, env *value.Env) (Result, error) {
	if len(e.Args) == 0 {
		return next(e.Func, env)
	}

	arg, ok := isValue(e.Args[0])
	if !ok {
		a, err := reduce(e.Args[0], env)
		if err != nil {
			return Result{}, err
		}
		args := make([]ast.Expression, len(e.Args))
		copy(args, e.Args)
		args[0] = a
		ne := *e
		ne.Args = args
		return next(&ne, env)
	}

	callee, ok := isValue(e.Func)
	if !ok {
		f, err := reduce(e.Func, env)
		if err != nil {
			return Result{}, err
		}
		ne := *e
		ne.Func = f
		return next(&ne, env)
	}

	rest := e.Args[1:]
	switch fn := callee.(type) {
	case *value.Closure:
		body := fn.Env.Bind(fn.Param, arg)
		if len(rest) == 0 {
			return next(fn.Body, body)
		}
		return next(&ast.AppExpr{
			Func:   &scopedExpr{env: body, expr: fn.Body},
			Args:   rest,
			Line:   e.Line,
			Column: e.Column,
		}, env)

	case *value.Constructed:
		c := fn.Apply(arg)
		if len(rest) == 0 {
			return done(c)
		}
		return next(&ast.AppExpr{Func: &valueExpr{v: c}, Args: rest, Line: e.Line, Column: e.Column}, env)

	default:
		return Result{}, failf(NotApplicable, e.Line, e.Column, "%s %s is not a function", value.Kind(callee), callee)
	}
}
