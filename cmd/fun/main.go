package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	units "github.com/docker/go-units"

	"github.com/lhaig/fun/internal/ast"
	"github.com/lhaig/fun/internal/config"
	"github.com/lhaig/fun/internal/eval"
	"github.com/lhaig/fun/internal/formatter"
	"github.com/lhaig/fun/internal/interp"
	"github.com/lhaig/fun/internal/linter"
	"github.com/lhaig/fun/internal/testgen"
)

const usage = `fun - a small functional language

Usage:
  fun run [flags] <file.fun>...     Evaluate files and print their values
  fun check <file.fun>              Parse (with imports) and report diagnostics
  fun fmt [-w] <file.fun>           Print canonical source (or rewrite the file)
  fun lint <file.fun>               Run lint checks for style/best practices
  fun ast <file.fun>                Dump the syntax tree
  fun trace [flags] <file.fun>      Print every intermediate evaluation state
  fun watch [flags] <file.fun>      Re-run whenever a .fun file in its directory changes
  fun repl [flags]                  Start an interactive session
  fun gen [flags]                   Print random programs

Evaluation flags (run, trace, watch, repl):
  -max-steps N     step budget, e.g. 500, 10k, 5M (0 = unbounded)
  -timeout D       wall-clock limit per evaluation, e.g. 2s
  -log-level L     debug, info, warn or error

Environment:
  FUN_MAX_STEPS, FUN_TIMEOUT, FUN_LOG_LEVEL, FUN_HISTORY (REPL history file)

Exit status: 0 on success, 1 on parse or evaluation errors, 2 on usage errors.
`

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := newCLI(os.Stdout, os.Stderr).run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// cli carries the output streams so commands can be exercised in tests.
type cli struct {
	stdout io.Writer
	stderr io.Writer
	lookup func(string) (string, bool)
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{stdout: stdout, stderr: stderr, lookup: os.LookupEnv}
}

func (c *cli) run(ctx context.Context, args []string) int {
	if len(args) < 1 {
		fmt.Fprint(c.stderr, usage)
		return exitUsage
	}

	command, rest := args[0], args[1:]
	switch command {
	case "run":
		return c.handleRun(ctx, rest)
	case "check":
		return c.handleCheck(rest)
	case "fmt":
		return c.handleFmt(rest)
	case "lint":
		return c.handleLint(rest)
	case "ast":
		return c.handleAST(rest)
	case "trace":
		return c.handleTrace(ctx, rest)
	case "watch":
		return c.handleWatch(ctx, rest)
	case "repl":
		return c.handleREPL(ctx, rest)
	case "gen":
		return c.handleGen(rest)
	case "help", "--help", "-h":
		fmt.Fprint(c.stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(c.stderr, "Unknown command: %s\n\n", command)
		fmt.Fprint(c.stderr, usage)
		return exitUsage
	}
}

// flags returns a flag set for a subcommand that reports to stderr.
func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

// evalConfig parses the evaluation flags of a subcommand on top of the
// environment.
func (c *cli) evalConfig(fs *flag.FlagSet, args []string, extra ...func(*config.Config, *flag.FlagSet)) (*config.Config, bool) {
	cfg := config.Default()
	if err := cfg.LoadEnv(c.lookup); err != nil {
		fmt.Fprintf(c.stderr, "Error: %s\n", err)
		return nil, false
	}
	cfg.RegisterFlags(fs)
	for _, fn := range extra {
		fn(cfg, fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, false
	}
	return cfg, true
}

func options(cfg *config.Config, logger *slog.Logger) interp.Options {
	return interp.Options{
		MaxSteps: int64(cfg.MaxSteps),
		Timeout:  cfg.Timeout,
		Logger:   logger,
	}
}

// oneFile returns the single positional argument, or reports a usage error.
func (c *cli) oneFile(fs *flag.FlagSet) (string, bool) {
	if fs.NArg() != 1 {
		fmt.Fprintln(c.stderr, "Error: expected exactly one input file")
		return "", false
	}
	return fs.Arg(0), true
}

func (c *cli) handleRun(ctx context.Context, args []string) int {
	fs := c.flags("run")
	cfg, ok := c.evalConfig(fs, args)
	if !ok {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(c.stderr, "Error: no input file specified")
		return exitUsage
	}
	logger := cfg.Logger(c.stderr)

	results, err := interp.RunFiles(ctx, fs.Args(), options(cfg, logger))
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %s\n", err)
		return exitError
	}

	code := exitOK
	for _, res := range results {
		if res == nil {
			code = exitError
			continue
		}
		if !c.report(res, len(results) > 1) {
			code = exitError
		}
	}
	return code
}

// report prints one run result and returns whether it succeeded.
func (c *cli) report(res *interp.Result, named bool) bool {
	if res.Diagnostics.Count() > 0 {
		fmt.Fprintln(c.stderr, res.Diagnostics.Format(res.File))
	}
	if !res.OK() {
		return false
	}
	if res.Value == nil {
		return true
	}
	if named {
		fmt.Fprintf(c.stdout, "%s: %s\n", res.File, res.Value)
	} else {
		fmt.Fprintln(c.stdout, res.Value)
	}
	return true
}

func (c *cli) handleCheck(args []string) int {
	fs := c.flags("check")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	filePath, ok := c.oneFile(fs)
	if !ok {
		return exitUsage
	}

	diag := interp.Check(filePath)
	if diag.Count() > 0 {
		fmt.Fprintln(c.stderr, diag.Format(filePath))
	}
	if diag.HasErrors() {
		return exitError
	}
	fmt.Fprintln(c.stdout, "No errors found.")
	return exitOK
}

func (c *cli) handleFmt(args []string) int {
	fs := c.flags("fmt")
	write := fs.Bool("w", false, "write the result back to the file")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	filePath, ok := c.oneFile(fs)
	if !ok {
		return exitUsage
	}

	prog, diag := interp.Load(filePath)
	if diag.HasErrors() {
		fmt.Fprintln(c.stderr, diag.Format(filePath))
		return exitError
	}
	out := formatter.Format(prog)
	if !*write {
		fmt.Fprint(c.stdout, out)
		return exitOK
	}

	info, err := os.Stat(filePath)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %s\n", err)
		return exitError
	}
	if err := os.WriteFile(filePath, []byte(out), info.Mode().Perm()); err != nil {
		fmt.Fprintf(c.stderr, "Error writing file: %s\n", err)
		return exitError
	}
	return exitOK
}

func (c *cli) handleLint(args []string) int {
	fs := c.flags("lint")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	filePath, ok := c.oneFile(fs)
	if !ok {
		return exitUsage
	}

	prog, diag := interp.Load(filePath)
	if diag.HasErrors() {
		fmt.Fprintln(c.stderr, diag.Format(filePath))
		return exitError
	}

	lint := linter.Lint(prog)
	if lint.Count() == 0 {
		fmt.Fprintln(c.stdout, "No lint warnings.")
		return exitOK
	}
	fmt.Fprintln(c.stdout, lint.Format(filePath))
	fmt.Fprintf(c.stdout, "%d warning(s) found.\n", lint.Count())
	return exitOK
}

func (c *cli) handleAST(args []string) int {
	fs := c.flags("ast")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	filePath, ok := c.oneFile(fs)
	if !ok {
		return exitUsage
	}

	prog, diag := interp.Load(filePath)
	if diag.HasErrors() {
		fmt.Fprintln(c.stderr, diag.Format(filePath))
		return exitError
	}
	fmt.Fprint(c.stdout, ast.Print(prog))
	return exitOK
}

func (c *cli) handleTrace(ctx context.Context, args []string) int {
	fs := c.flags("trace")
	showEnv := fs.Bool("env", false, "print the names bound at each step")
	cfg, ok := c.evalConfig(fs, args)
	if !ok {
		return exitUsage
	}
	filePath, ok := c.oneFile(fs)
	if !ok {
		return exitUsage
	}

	opts := options(cfg, cfg.Logger(c.stderr))
	opts.Trace = func(t eval.Trace) {
		fmt.Fprintf(c.stdout, "%6d  %s\n", t.Step, formatter.Expr(t.Expr))
		if *showEnv && t.Env.Len() > 0 {
			fmt.Fprintf(c.stdout, "        env: %v\n", t.Env.Names())
		}
	}

	res := interp.Run(ctx, filePath, opts)
	if !c.report(res, false) {
		return exitError
	}
	fmt.Fprintf(c.stdout, "%d step(s) in %s\n", res.Steps, units.HumanDuration(res.Elapsed))
	return exitOK
}

func (c *cli) handleWatch(ctx context.Context, args []string) int {
	fs := c.flags("watch")
	cfg, ok := c.evalConfig(fs, args)
	if !ok {
		return exitUsage
	}
	filePath, ok := c.oneFile(fs)
	if !ok {
		return exitUsage
	}
	return c.watch(ctx, filePath, cfg)
}

func (c *cli) handleREPL(ctx context.Context, args []string) int {
	fs := c.flags("repl")
	cfg, ok := c.evalConfig(fs, args, (*config.Config).RegisterHistoryFlag)
	if !ok {
		return exitUsage
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(c.stderr, "Error: repl takes no arguments")
		return exitUsage
	}
	return c.repl(ctx, cfg)
}

func (c *cli) handleGen(args []string) int {
	fs := c.flags("gen")
	def := testgen.DefaultConstraints()
	seed := fs.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	count := fs.Int("count", 1, "number of programs")
	depth := fs.Int("depth", def.MaxDepth, "maximum expression depth")
	lower := fs.Int64("lower", def.Lower, "smallest integer literal")
	upper := fs.Int64("upper", def.Upper, "largest integer literal")
	data := fs.Int("data", def.Data, "number of data declarations")
	open := fs.Bool("open", false, "allow free variables")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 0 || *count < 1 {
		fmt.Fprintln(c.stderr, "Error: gen takes no arguments and -count must be positive")
		return exitUsage
	}

	cons := testgen.Constraints{Lower: *lower, Upper: *upper, MaxDepth: *depth, Closed: !*open, Data: *data}
	for i := 0; i < *count; i++ {
		if i > 0 {
			fmt.Fprintln(c.stdout)
		}
		s := *seed + uint64(i)
		fmt.Fprintf(c.stdout, "// seed %d\n", s)
		fmt.Fprint(c.stdout, formatter.Format(testgen.New(s, cons).Program()))
	}
	return exitOK
}

// displayName shortens path for log records.
func displayName(path string) string {
	if rel, err := filepath.Rel(".", path); err == nil {
		return rel
	}
	return path
}
