package interp

import (
	"context"
	"maps"
	"slices"

	"github.com/lhaig/fun/internal/ast"
	"github.com/lhaig/fun/internal/diagnostic"
	"github.com/lhaig/fun/internal/parser"
	"github.com/lhaig/fun/internal/value"
)

// Session is an interactive evaluation context. Data declarations and
// definitions entered on one line stay visible on the following lines.
type Session struct {
	opts  Options
	env   *value.Env
	ctors map[string]*ast.DataConstructor
	data  []*ast.DataDecl

	lastSteps int64
}

// NewSession returns an empty session evaluating with opts.
func NewSession(opts Options) *Session {
	return &Session{
		opts:  opts,
		env:   value.NewEnv(),
		ctors: make(map[string]*ast.DataConstructor),
	}
}

// Reply is the outcome of one line of input
type Reply struct {
	Data  []*ast.DataDecl // declarations the line added
	Name  string          // set when the line defined a session binding
	Value value.Value     // nil when the line only declared data
	Steps int64
}

// Eval parses and evaluates one line. Parse errors are returned as
// diagnostics; evaluation errors as the error. A failed line leaves the
// session unchanged.
func (s *Session) Eval(ctx context.Context, line string) (*Reply, *diagnostic.Diagnostics, error) {
	p := parser.New(line, parser.WithConstructors(slices.Collect(maps.Values(s.ctors))...))
	in := p.ParseInput()
	if p.Diagnostics().HasErrors() {
		return nil, p.Diagnostics(), nil
	}

	reply := &Reply{Data: in.Data, Name: in.Name}
	if in.Expr != nil {
		expr := in.Expr
		if in.Name != "" && isFunction(in.Expr) {
			// Function definitions are recursive. Other definitions see the
			// previous binding of the name, so let n = n + 1 works.
			expr = &ast.LetExpr{Name: in.Name, Bound: in.Expr, Body: &ast.Var{Name: in.Name}}
		}

		if s.opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
			defer cancel()
		}
		m := s.opts.machine()
		v, err := m.Run(ctx, expr, s.env)
		s.lastSteps = m.Steps()
		reply.Steps = m.Steps()
		if err != nil {
			return nil, p.Diagnostics(), err
		}
		reply.Value = v
		if in.Name != "" {
			s.env = s.env.Bind(in.Name, v)
		}
	}

	for _, d := range in.Data {
		s.data = append(s.data, d)
		for _, c := range d.Constructors {
			s.ctors[c.Name] = c
		}
	}
	return reply, p.Diagnostics(), nil
}

func isFunction(e ast.Expression) bool {
	for {
		switch x := e.(type) {
		case *ast.FunExpr:
			return true
		case *ast.AnnotExpr:
			e = x.Expr
		default:
			return false
		}
	}
}

// Env returns the session bindings.
func (s *Session) Env() *value.Env { return s.env }

// Data returns every data declaration entered so far.
func (s *Session) Data() []*ast.DataDecl { return s.data }

// LastSteps returns the step count of the most recent evaluation.
func (s *Session) LastSteps() int64 { return s.lastSteps }
