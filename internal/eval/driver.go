package eval

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	units "github.com/docker/go-units"

	"github.com/lhaig/fun/internal/ast"
	"github.com/lhaig/fun/internal/formatter"
	"github.com/lhaig/fun/internal/value"
)

// Evaluate reduces e under env until it is a value or fails. It does not
// bound the number of steps.
func Evaluate(e ast.Expression, env *value.Env) (value.Value, error) {
	return NewMachine().Run(context.Background(), e, env)
}

// Trace is an intermediate evaluation state, reported before each step.
type Trace struct {
	Step int64
	Expr ast.Expression
	Env  *value.Env
}

// Option configures a Machine.
type Option func(*Machine)

// WithMaxSteps bounds a run to n steps. Zero means unbounded.
func WithMaxSteps(n int64) Option {
	return func(m *Machine) { m.maxSteps = n }
}

// WithLogger sets the logger used for step and run records.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithTrace registers fn to observe every intermediate state.
func WithTrace(fn func(Trace)) Option {
	return func(m *Machine) { m.trace = fn }
}

// Machine is the driver loop. A Machine runs one evaluation at a time.
type Machine struct {
	maxSteps int64
	logger   *slog.Logger
	trace    func(Trace)

	steps   int64
	elapsed time.Duration
}

// NewMachine creates a driver with the given options.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Steps returns the number of steps taken by the last run.
func (m *Machine) Steps() int64 { return m.steps }

// Elapsed returns the wall-clock duration of the last run.
func (m *Machine) Elapsed() time.Duration { return m.elapsed }

// Run reduces e under env to a value. It stops early when ctx is done or
// the step budget is spent; both are reported as wrapped errors, separate
// from evaluation failures.
func (m *Machine) Run(ctx context.Context, e ast.Expression, env *value.Env) (value.Value, error) {
	m.steps = 0
	start := time.Now()
	defer func() { m.elapsed = time.Since(start) }()

	debug := m.logger.Enabled(ctx, slog.LevelDebug)
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("evaluation stopped after %d steps: %w", m.steps, err)
		}
		if m.maxSteps > 0 && m.steps >= m.maxSteps {
			return nil, fmt.Errorf("%w: %d steps", ErrStepLimit, m.maxSteps)
		}
		if m.trace != nil {
			m.trace(Trace{Step: m.steps, Expr: e, Env: env})
		}
		if debug {
			m.logger.DebugContext(ctx, "step", "n", m.steps, "expr", exprValue{e})
		}

		r, err := Step(e, env)
		m.steps++
		if err != nil {
			m.logger.InfoContext(ctx, "evaluation failed",
				"steps", m.steps,
				"elapsed", units.HumanDuration(time.Since(start)),
				"error", err)
			return nil, err
		}
		if r.Done() {
			m.logger.InfoContext(ctx, "evaluation finished",
				"steps", m.steps,
				"elapsed", units.HumanDuration(time.Since(start)),
				"kind", value.Kind(r.Value))
			return r.Value, nil
		}
		e, env = r.Expr, r.Env
	}
}

// exprValue defers formatting an expression until a record is emitted.
type exprValue struct{ e ast.Expression }

func (x exprValue) LogValue() slog.Value {
	return slog.StringValue(formatter.Expr(x.e))
}
