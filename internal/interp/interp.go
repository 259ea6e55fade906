// Package interp ties the stages together: it loads a file and its imports,
// evaluates the entry expression and reports problems as diagnostics.
package interp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lhaig/fun/internal/ast"
	"github.com/lhaig/fun/internal/diagnostic"
	"github.com/lhaig/fun/internal/eval"
	"github.com/lhaig/fun/internal/value"
)

// Options controls one evaluation.
type Options struct {
	MaxSteps int64         // zero means unbounded
	Timeout  time.Duration // zero means no deadline
	Logger   *slog.Logger
	Trace    func(eval.Trace)
}

func (o Options) machine() *eval.Machine {
	opts := []eval.Option{eval.WithMaxSteps(o.MaxSteps), eval.WithLogger(o.Logger)}
	if o.Trace != nil {
		opts = append(opts, eval.WithTrace(o.Trace))
	}
	return eval.NewMachine(opts...)
}

// Result holds the outcome of running one file
type Result struct {
	File        string
	Program     *ast.Program
	Value       value.Value // nil unless evaluation finished
	Steps       int64
	Elapsed     time.Duration
	Diagnostics *diagnostic.Diagnostics
	Err         error // the evaluation error behind an error diagnostic, if any
}

// OK reports whether the file loaded and evaluated without errors.
func (r *Result) OK() bool {
	return !r.Diagnostics.HasErrors()
}

// Load runs discover -> sort -> parse for the entry file and its imports.
// The returned program is nil when loading failed before parsing.
func Load(path string) (*ast.Program, *diagnostic.Diagnostics) {
	registry, err := NewRegistry(path)
	if err != nil {
		diag := diagnostic.New()
		diag.ErrorfInFile(path, 0, 0, "failed to initialize module registry: %s", err)
		return nil, diag
	}

	diag, err := registry.Discover()
	if err != nil {
		diag.ErrorfInFile(path, 0, 0, "%s", err)
		return nil, diag
	}
	if diag.HasErrors() {
		return nil, diag
	}

	order, err := registry.TopologicalSort()
	if err != nil {
		diag.ErrorfInFile(path, 0, 0, "%s", err)
		return nil, diag
	}

	diag.Merge(registry.Load(order), "")
	return registry.Entry(), diag
}

// Check loads the file and its imports and reports their diagnostics
// without evaluating anything.
func Check(path string) *diagnostic.Diagnostics {
	_, diag := Load(path)
	return diag
}

// Run loads path and evaluates its expression. Load problems and
// evaluation failures are reported in the result's diagnostics. A file that
// only declares data evaluates to nothing.
func Run(ctx context.Context, path string, opts Options) *Result {
	prog, diag := Load(path)
	res := &Result{File: path, Program: prog, Diagnostics: diag}
	if diag.HasErrors() || prog == nil || prog.Body == nil {
		return res
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	m := opts.machine()
	v, err := m.Run(ctx, prog.Body, value.NewEnv())
	res.Steps, res.Elapsed = m.Steps(), m.Elapsed()
	if err != nil {
		res.Err = err
		res.Diagnostics.Add(FailureDiagnostic(err, path))
		return res
	}
	res.Value = v
	return res
}

// RunFiles runs every path concurrently, each with its own machine, and
// returns the results in the order of paths. It only returns an error when
// ctx ends before every file was started.
func RunFiles(ctx context.Context, paths []string, opts Options) ([]*Result, error) {
	results := make([]*Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = Run(ctx, path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// FailureDiagnostic converts an evaluation error into a positioned
// diagnostic for file.
func FailureDiagnostic(err error, file string) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{Severity: diagnostic.Error, File: file}

	var f *eval.Failure
	switch {
	case errors.As(err, &f):
		d.Line, d.Column = f.Line, f.Column
		d.Message = fmt.Sprintf("evaluation failed: %s", f)
		d.Hint = failureHint(f.Reason)
	case errors.Is(err, eval.ErrStepLimit):
		d.Message = err.Error()
		d.Hint = "raise the budget with -max-steps or FUN_MAX_STEPS"
	case errors.Is(err, context.DeadlineExceeded):
		d.Message = err.Error()
		d.Hint = "raise the deadline with -timeout or FUN_TIMEOUT"
	default:
		d.Message = err.Error()
	}
	return d
}

func failureHint(r eval.Reason) string {
	switch r {
	case eval.UnboundVariable:
		return "bind the name with let, a function parameter or a case pattern"
	case eval.InvalidOperator:
		return "arithmetic needs two Ints; comparisons too; if needs a Bool"
	case eval.NotApplicable:
		return "only functions and constructors can be applied"
	case eval.NoMatchingCase:
		return "add an alternative, or end with a variable pattern"
	default:
		return ""
	}
}
