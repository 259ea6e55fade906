package config

import (
	"bytes"
	"flag"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	c := Default()
	if c.MaxSteps != DefaultMaxSteps {
		t.Errorf("expected %d max steps, got %d", DefaultMaxSteps, c.MaxSteps)
	}
	if c.Timeout != 0 {
		t.Errorf("expected no timeout, got %s", c.Timeout)
	}
	if c.LogLevel.Level() != slog.LevelWarn {
		t.Errorf("expected WARN, got %s", c.LogLevel.Level())
	}
}

func TestStepsSet(t *testing.T) {
	tests := []struct {
		in      string
		want    Steps
		wantErr bool
	}{
		{"250", 250, false},
		{"10k", 10_000, false},
		{"5M", 5_000_000, false},
		{"2.5k", 2_500, false},
		{"0", 0, false},
		{"many", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var s Steps
			err := s.Set(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && s != tt.want {
				t.Errorf("Set(%q) = %d, want %d", tt.in, s, tt.want)
			}
		})
	}
}

func TestStepsString(t *testing.T) {
	tests := []struct {
		in   Steps
		want string
	}{
		{0, "0"},
		{999, "999"},
		{10_000, "10k"},
		{5_000_000, "5M"},
		{2_000_000_000, "2G"},
		{12_345, "12345"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("Steps(%d).String() = %q, want %q", int64(tt.in), got, tt.want)
		}
	}
}

func TestEnvOverridesDefaults(t *testing.T) {
	c := Default()
	err := c.LoadEnv(env(map[string]string{
		EnvMaxSteps: "20k",
		EnvTimeout:  "3s",
		EnvHistory:  "",
		EnvLogLevel: "debug",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if c.MaxSteps != 20_000 || c.Timeout != 3*time.Second || c.History != "" || c.LogLevel.Level() != slog.LevelDebug {
		t.Errorf("unexpected config %+v (level %s)", c, c.LogLevel.Level())
	}
}

func TestEnvErrorsAreJoined(t *testing.T) {
	c := Default()
	err := c.LoadEnv(env(map[string]string{
		EnvMaxSteps: "lots",
		EnvTimeout:  "-1s",
		EnvLogLevel: "loud",
	}))
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, name := range []string{EnvMaxSteps, EnvTimeout, EnvLogLevel} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("expected %s in %q", name, err)
		}
	}
	if c.MaxSteps != DefaultMaxSteps {
		t.Error("a bad value must not change the setting")
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	c := Default()
	if err := c.LoadEnv(env(map[string]string{EnvMaxSteps: "1k", EnvLogLevel: "error"})); err != nil {
		t.Fatal(err)
	}
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	c.RegisterFlags(fs)
	c.RegisterHistoryFlag(fs)

	if err := fs.Parse([]string{"-max-steps", "2M", "-timeout", "150ms", "-history", "/tmp/h", "file.fun"}); err != nil {
		t.Fatal(err)
	}
	if c.MaxSteps != 2_000_000 {
		t.Errorf("expected 2M steps, got %d", c.MaxSteps)
	}
	if c.Timeout != 150*time.Millisecond {
		t.Errorf("expected 150ms, got %s", c.Timeout)
	}
	if c.History != "/tmp/h" {
		t.Errorf("expected history path, got %q", c.History)
	}
	if c.LogLevel.Level() != slog.LevelError {
		t.Errorf("env level should survive when no flag is given, got %s", c.LogLevel.Level())
	}
	if fs.Arg(0) != "file.fun" {
		t.Errorf("expected positional file, got %v", fs.Args())
	}
}

func TestBadFlag(t *testing.T) {
	c := Default()
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	c.RegisterFlags(fs)
	if err := fs.Parse([]string{"-max-steps", "x"}); err == nil {
		t.Error("expected a parse error")
	}
}

func TestLoggerHonorsLevel(t *testing.T) {
	c := Default()
	var buf bytes.Buffer
	logger := c.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown")

	if err := c.LogLevel.Set("info"); err != nil {
		t.Fatal(err)
	}
	logger.Info("now shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "msg=shown") || !strings.Contains(out, "now shown") {
		t.Errorf("unexpected log output:\n%s", out)
	}
}
