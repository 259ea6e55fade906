// Package config holds the settings shared by the fun subcommands.
// Defaults are overridden by FUN_* environment variables, which are in turn
// overridden by command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	units "github.com/docker/go-units"
)

// Environment variables read by LoadEnv.
const (
	EnvMaxSteps = "FUN_MAX_STEPS"
	EnvTimeout  = "FUN_TIMEOUT"
	EnvHistory  = "FUN_HISTORY"
	EnvLogLevel = "FUN_LOG_LEVEL"
)

// DefaultMaxSteps bounds an evaluation when nothing else is configured.
// Each step re-walks the pending context, so a step costs time in
// proportion to the current nesting depth. Deep non-tail recursion can hit
// -timeout long before this budget; lower it with -max-steps to fail fast.
const DefaultMaxSteps Steps = 10_000_000

// Config is the resolved configuration of one command invocation.
type Config struct {
	MaxSteps Steps         // zero means unbounded
	Timeout  time.Duration // zero means no deadline
	History  string        // REPL history file; empty disables history
	LogLevel LogLevel
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{MaxSteps: DefaultMaxSteps}
	c.LogLevel.v.Set(slog.LevelWarn)
	if home, err := os.UserHomeDir(); err == nil {
		c.History = filepath.Join(home, ".fun_history")
	}
	return c
}

// LoadEnv applies environment overrides. lookup is usually os.LookupEnv.
func (c *Config) LoadEnv(lookup func(string) (string, bool)) error {
	var errs []error
	if v, ok := lookup(EnvMaxSteps); ok {
		if err := c.MaxSteps.Set(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvMaxSteps, err))
		}
	}
	if v, ok := lookup(EnvTimeout); ok {
		d, err := time.ParseDuration(v)
		if err == nil && d < 0 {
			err = errors.New("negative duration")
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvTimeout, err))
		} else {
			c.Timeout = d
		}
	}
	if v, ok := lookup(EnvHistory); ok {
		c.History = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		if err := c.LogLevel.Set(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvLogLevel, err))
		}
	}
	return errors.Join(errs...)
}

// RegisterFlags adds the evaluation flags to fs. The current values become
// the flag defaults, so call it after LoadEnv.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.Var(&c.MaxSteps, "max-steps", "step budget per evaluation, e.g. 500, 10k, 5M (0 = unbounded)")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "wall-clock limit per evaluation (0 = none)")
	fs.Var(&c.LogLevel, "log-level", "log level: debug, info, warn or error")
}

// RegisterHistoryFlag adds the REPL history flag to fs.
func (c *Config) RegisterHistoryFlag(fs *flag.FlagSet) {
	fs.StringVar(&c.History, "history", c.History, "REPL history file (empty disables history)")
}

// Load resolves defaults, the process environment and args parsed by fs.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	c := Default()
	if err := c.LoadEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	c.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

// Logger returns a text logger on w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: &c.LogLevel.v}))
}

// Steps is a step budget that accepts human-readable sizes.
type Steps int64

// Set parses a plain or suffixed count such as 250, 10k or 2.5M.
func (s *Steps) Set(v string) error {
	n, err := units.FromHumanSize(v)
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("step budget must not be negative: %s", v)
	}
	*s = Steps(n)
	return nil
}

func (s *Steps) String() string {
	if s == nil {
		return "0"
	}
	n := int64(*s)
	for _, u := range []struct {
		suffix string
		size   int64
	}{{"G", units.GB}, {"M", units.MB}, {"k", units.KB}} {
		if n != 0 && n%u.size == 0 {
			return strconv.FormatInt(n/u.size, 10) + u.suffix
		}
	}
	return strconv.FormatInt(n, 10)
}

// LogLevel is a flag.Value over a slog.LevelVar.
type LogLevel struct {
	v slog.LevelVar
}

// Set accepts a level name or offset such as debug, WARN or info+2.
func (l *LogLevel) Set(s string) error {
	return l.v.UnmarshalText([]byte(s))
}

func (l *LogLevel) String() string {
	if l == nil {
		return slog.LevelWarn.String()
	}
	return l.v.Level().String()
}

// Level returns the current level.
func (l *LogLevel) Level() slog.Level { return l.v.Level() }
