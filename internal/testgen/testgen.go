// Package testgen generates pseudo-random FUN programs for round-trip and
// property tests. Generation is deterministic for a given seed.
package testgen

import (
	"github.com/lhaig/fun/internal/ast"
	"github.com/lhaig/fun/internal/lexer"
)

var binderPool = []string{"x", "y", "z", "f", "g", "n", "acc", "k"}

var operators = []lexer.TokenType{
	lexer.PLUS, lexer.MINUS, lexer.STAR,
	lexer.LT, lexer.GT, lexer.LEQ, lexer.GEQ,
}

type ctorSpec struct {
	name   string
	fields []string // "Int", "Bool", a data type name, or "Int->Int"
}

type dataSpec struct {
	name  string
	ctors []ctorSpec
}

var dataPool = []dataSpec{
	{"List", []ctorSpec{{"Nil", nil}, {"Cons", []string{"Int", "List"}}}},
	{"Shape", []ctorSpec{{"Circle", []string{"Int"}}, {"Rect", []string{"Int", "Int"}}, {"Dot", nil}}},
	{"Pair", []ctorSpec{{"Pair", []string{"Int", "Bool"}}}},
	{"Box", []ctorSpec{{"Box", []string{"Int->Int"}}}},
}

func typeRef(name string) *ast.TypeRef {
	if name == "Int->Int" {
		return &ast.TypeRef{Param: &ast.TypeRef{Name: "Int"}, Result: &ast.TypeRef{Name: "Int"}}
	}
	return &ast.TypeRef{Name: name}
}

// Generator produces random programs within its Constraints.
type Generator struct {
	state uint64
	c     Constraints
	data  []*ast.DataDecl
	ctors []*ast.DataConstructor
}

// New returns a generator seeded with seed. A zero seed uses a fixed
// default.
func New(seed uint64, c Constraints) *Generator {
	if seed == 0 {
		seed = defaultSeed
	}
	// Spread small seeds over the state space; the multiplier is odd, so
	// the state is never zero.
	g := &Generator{state: seed * 0x9e3779b97f4a7c15, c: c.normalize()}
	for _, spec := range dataPool[:g.c.Data] {
		decl := &ast.DataDecl{Name: spec.name}
		for _, cs := range spec.ctors {
			ctor := &ast.DataConstructor{Name: cs.name, Type: spec.name}
			for _, f := range cs.fields {
				ctor.Fields = append(ctor.Fields, typeRef(f))
			}
			decl.Constructors = append(decl.Constructors, ctor)
			g.ctors = append(g.ctors, ctor)
		}
		g.data = append(g.data, decl)
	}
	return g
}

// Data returns the data declarations generated expressions may use.
func (g *Generator) Data() []*ast.DataDecl { return g.data }

// Constructors returns every constructor of Data.
func (g *Generator) Constructors() []*ast.DataConstructor { return g.ctors }

// Program returns a program declaring Data with a random body.
func (g *Generator) Program() *ast.Program {
	return &ast.Program{Data: g.data, Body: g.Expr()}
}

// Expr returns a random expression.
func (g *Generator) Expr() ast.Expression {
	return g.expr(g.c.MaxDepth, nil)
}

func (g *Generator) next() uint64 {
	g.state = xorshift64(g.state)
	return g.state
}

// intn returns a value in [0, n).
func (g *Generator) intn(n int) int {
	if n <= 1 {
		return 0
	}
	return int(g.next() % uint64(n))
}

func (g *Generator) chance(percent int) bool {
	return g.intn(100) < percent
}

func (g *Generator) binder() string {
	return binderPool[g.intn(len(binderPool))]
}

// expr returns an expression at most depth levels deep. Helpers taking a
// depth build a node whose children are at most that deep.
func (g *Generator) expr(depth int, scope []string) ast.Expression {
	if depth <= 1 {
		return g.leaf(scope)
	}
	d := depth - 1

	switch g.intn(10) {
	case 0:
		return g.leaf(scope)
	case 1, 2:
		return &ast.BinaryExpr{
			Op:    operators[g.intn(len(operators))],
			Left:  g.expr(d, scope),
			Right: g.expr(d, scope),
		}
	case 3:
		return &ast.IfExpr{Cond: g.expr(d, scope), Then: g.expr(d, scope), Else: g.expr(d, scope)}
	case 4:
		return g.fun(d, scope)
	case 5:
		return g.app(d, scope)
	case 6:
		name := g.binder()
		inner := append(scope[:len(scope):len(scope)], name)
		var bound ast.Expression
		if d >= 2 && g.chance(60) {
			bound = g.fun(d-1, inner)
		} else {
			bound = g.expr(d, scope)
		}
		return &ast.LetExpr{Name: name, Bound: bound, Body: g.expr(d, inner)}
	case 7:
		return g.caseExpr(d, scope)
	case 8:
		if len(g.ctors) > 0 {
			return g.construct(d, scope)
		}
		return g.app(d, scope)
	default:
		return &ast.AnnotExpr{Expr: g.expr(d, scope), Type: g.typ(2)}
	}
}

func (g *Generator) leaf(scope []string) ast.Expression {
	switch g.intn(5) {
	case 0, 1:
		return &ast.IntLit{Value: randRange(g.next(), g.c.Lower, g.c.Upper)}
	case 2:
		return &ast.BoolLit{Value: g.chance(50)}
	case 3:
		if nullary := g.nullary(); nullary != nil {
			return &ast.ConstructorRef{Constructor: nullary}
		}
	}
	if len(scope) > 0 && (g.c.Closed || g.chance(80)) {
		return &ast.Var{Name: scope[g.intn(len(scope))]}
	}
	if !g.c.Closed {
		return &ast.Var{Name: g.binder()}
	}
	return &ast.IntLit{Value: randRange(g.next(), g.c.Lower, g.c.Upper)}
}

func (g *Generator) nullary() *ast.DataConstructor {
	var candidates []*ast.DataConstructor
	for _, c := range g.ctors {
		if c.Arity() == 0 {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[g.intn(len(candidates))]
}

func (g *Generator) fun(depth int, scope []string) *ast.FunExpr {
	param := g.binder()
	inner := append(scope[:len(scope):len(scope)], param)
	return &ast.FunExpr{Param: param, Body: g.expr(depth, inner)}
}

func (g *Generator) app(depth int, scope []string) ast.Expression {
	var callee ast.Expression
	switch {
	case len(scope) > 0 && g.chance(50):
		callee = &ast.Var{Name: scope[g.intn(len(scope))]}
	case depth >= 3 && g.chance(20):
		callee = g.app(depth-1, scope)
	case depth >= 2:
		callee = g.fun(depth-1, scope)
	default:
		return g.leaf(scope)
	}
	args := make([]ast.Expression, 1+g.intn(3))
	for i := range args {
		args[i] = g.expr(depth, scope)
	}
	return &ast.AppExpr{Func: callee, Args: args}
}

// construct applies a constructor to as many arguments as it declares, or
// occasionally fewer.
func (g *Generator) construct(depth int, scope []string) ast.Expression {
	ctor := g.ctors[g.intn(len(g.ctors))]
	ref := &ast.ConstructorRef{Constructor: ctor}
	n := ctor.Arity()
	if n > 0 && g.chance(15) {
		n--
	}
	if n == 0 {
		return ref
	}
	args := make([]ast.Expression, n)
	for i := range args {
		args[i] = g.expr(depth, scope)
	}
	return &ast.AppExpr{Func: ref, Args: args}
}

func (g *Generator) caseExpr(depth int, scope []string) *ast.CaseExpr {
	c := &ast.CaseExpr{Scrutinee: g.expr(depth, scope)}
	alts := 1 + g.intn(3)
	for i := 0; i < alts; i++ {
		pat := g.pattern(2)
		inner := append(scope[:len(scope):len(scope)], ast.Binders(pat)...)
		c.Alts = append(c.Alts, &ast.Alternative{Pattern: pat, Body: g.expr(depth, inner)})
	}
	return c
}

func (g *Generator) pattern(depth int) ast.Pattern {
	switch g.intn(4) {
	case 0:
		return &ast.IntPattern{Value: randRange(g.next(), g.c.Lower, g.c.Upper)}
	case 1:
		return &ast.BoolPattern{Value: g.chance(50)}
	case 2:
		if len(g.ctors) > 0 && depth > 0 {
			ctor := g.ctors[g.intn(len(g.ctors))]
			p := &ast.ConstructorPattern{Constructor: ctor}
			for range ctor.Fields {
				p.Args = append(p.Args, g.pattern(depth-1))
			}
			return p
		}
	}
	return &ast.VarPattern{Name: g.binder()}
}

func (g *Generator) typ(depth int) *ast.TypeRef {
	switch g.intn(4) {
	case 0:
		return &ast.TypeRef{Name: "Int"}
	case 1:
		return &ast.TypeRef{Name: "Bool"}
	case 2:
		if len(g.data) > 0 {
			return &ast.TypeRef{Name: g.data[g.intn(len(g.data))].Name}
		}
		return &ast.TypeRef{Name: "Int"}
	default:
		if depth <= 0 {
			return &ast.TypeRef{Name: "Int"}
		}
		return &ast.TypeRef{Param: g.typ(depth - 1), Result: g.typ(depth - 1)}
	}
}
