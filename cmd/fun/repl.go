package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/lhaig/fun/internal/ast"
	"github.com/lhaig/fun/internal/config"
	"github.com/lhaig/fun/internal/diagnostic"
	"github.com/lhaig/fun/internal/formatter"
	"github.com/lhaig/fun/internal/interp"
)

const (
	newPrompt  = "\033[32mfun>\033[0m "
	contPrompt = "\033[32m  .\033[0m "
)

const replHelp = `Enter an expression to evaluate it.
  data T = C Int | D;     declare constructors for the rest of the session
  let name = expr         bind name for the rest of the session
:env      list session bindings
:data     list data declarations
:steps    show the step count of the last evaluation
:help     show this message
:quit     leave (Ctrl-D works too)
`

var replCompleter = readline.NewPrefixCompleter(
	readline.PcItem(":env"),
	readline.PcItem(":data"),
	readline.PcItem(":steps"),
	readline.PcItem(":help"),
	readline.PcItem(":quit"),
)

func (c *cli) repl(ctx context.Context, cfg *config.Config) int {
	l, err := readline.NewEx(&readline.Config{
		Prompt:            newPrompt,
		HistoryFile:       cfg.History,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		AutoComplete:      replCompleter,
		Stdout:            c.stdout,
		Stderr:            c.stderr,
	})
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %s\n", err)
		return exitError
	}
	defer l.Close()

	sess := interp.NewSession(options(cfg, cfg.Logger(c.stderr)))
	fmt.Fprintln(c.stdout, "fun REPL. Type :help for help.")

	pending := ""
	for {
		line, err := l.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if pending == "" && line == "" {
				return exitOK
			}
			pending = ""
			l.SetPrompt(newPrompt)
			continue
		} else if errors.Is(err, io.EOF) {
			return exitOK
		} else if err != nil {
			fmt.Fprintf(c.stderr, "Error: %s\n", err)
			return exitError
		}

		input := pending + line
		if strings.TrimSpace(input) == "" {
			continue
		}
		if pending == "" && strings.HasPrefix(strings.TrimSpace(line), ":") {
			if quit := replCommand(c.stdout, sess, strings.TrimSpace(line)); quit {
				return exitOK
			}
			continue
		}

		if more := replEval(ctx, c.stdout, sess, input); more {
			pending = input + "\n"
			l.SetPrompt(contPrompt)
			continue
		}
		pending = ""
		l.SetPrompt(newPrompt)
	}
}

// replEval evaluates one complete input and prints the outcome. It returns
// true without printing when the input stops in the middle of a construct
// and more lines should be read.
func replEval(ctx context.Context, w io.Writer, sess *interp.Session, input string) bool {
	reply, diag, err := sess.Eval(ctx, input)
	if diag.HasErrors() {
		if incomplete(diag) {
			return true
		}
		fmt.Fprintln(w, diag.Format("repl"))
		return false
	}
	if err != nil {
		d := interp.FailureDiagnostic(err, "repl")
		list := diagnostic.New()
		list.Add(d)
		fmt.Fprintln(w, list.Format("repl"))
		return false
	}

	for _, d := range reply.Data {
		names := make([]string, len(d.Constructors))
		for i, ctor := range d.Constructors {
			names[i] = ctor.Name
		}
		fmt.Fprintf(w, "data %s: %s\n", d.Name, strings.Join(names, ", "))
	}
	switch {
	case reply.Value == nil:
	case reply.Name != "":
		fmt.Fprintf(w, "%s = %s\n", reply.Name, reply.Value)
	default:
		fmt.Fprintln(w, reply.Value)
	}
	return false
}

// incomplete reports whether every error is about running out of input.
func incomplete(diag *diagnostic.Diagnostics) bool {
	for _, d := range diag.Errors() {
		if !strings.Contains(d.Message, "end of input") {
			return false
		}
	}
	return true
}

// replCommand runs a colon command and reports whether the session should
// end.
func replCommand(w io.Writer, sess *interp.Session, line string) bool {
	switch strings.Fields(line)[0] {
	case ":quit", ":q":
		return true
	case ":help", ":h":
		fmt.Fprint(w, replHelp)
	case ":env":
		env := sess.Env()
		if env.Len() == 0 {
			fmt.Fprintln(w, "(no bindings)")
		}
		for _, name := range env.Names() {
			v, _ := env.Lookup(name)
			fmt.Fprintf(w, "%s = %s\n", name, v)
		}
	case ":data":
		if len(sess.Data()) == 0 {
			fmt.Fprintln(w, "(no data declarations)")
			break
		}
		fmt.Fprint(w, formatter.Format(&ast.Program{Data: sess.Data()}))
	case ":steps":
		fmt.Fprintf(w, "%d step(s)\n", sess.LastSteps())
	default:
		fmt.Fprintf(w, "unknown command %s; try :help\n", line)
	}
	return false
}
