package interp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/lhaig/fun/internal/eval"
	"github.com/lhaig/fun/internal/value"
)

// writeFiles creates the named files in a fresh directory and returns it.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRunSingleFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"fact.fun": `let fact = \n -> if n <= 1 then 1 else n * fact (n - 1) in fact 5`,
	})
	res := Run(context.Background(), filepath.Join(dir, "fact.fun"), Options{})
	if !res.OK() {
		t.Fatalf("unexpected diagnostics:\n%s", res.Diagnostics.Format("fact.fun"))
	}
	if diff := cmp.Diff(value.Int(120), res.Value, cmp.Comparer(value.Equal)); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}
	if res.Steps == 0 {
		t.Error("expected a step count")
	}
}

func TestRunWithImports(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"lib/list.fun": `data List = Cons Int List | Nil;`,
		"lib/sum.fun":  `import "list.fun"; data Total = Total Int;`,
		"main.fun": `import "lib/list.fun";
import "lib/sum.fun";
let sum = \l -> case l of | Nil -> 0 | Cons h t -> h + sum t in
Total (sum (Cons 1 (Cons 2 (Cons 3 Nil))))`,
	})
	res := Run(context.Background(), filepath.Join(dir, "main.fun"), Options{})
	if !res.OK() {
		t.Fatalf("unexpected diagnostics:\n%s", res.Diagnostics.Format("main.fun"))
	}
	if got := res.Value.String(); got != "Total 6" {
		t.Errorf("expected Total 6, got %s", got)
	}
}

func TestImportCycle(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.fun": `import "b.fun"; data A = A;`,
		"b.fun": `import "c.fun"; data B = B;`,
		"c.fun": `import "a.fun"; data C = C;`,
	})
	diag := Check(filepath.Join(dir, "a.fun"))
	if !diag.HasErrors() {
		t.Fatal("expected a cycle error")
	}
	if got := diag.Format("a.fun"); !strings.Contains(got, "import cycle detected: a.fun -> b.fun -> c.fun -> a.fun") {
		t.Errorf("unexpected message:\n%s", got)
	}
}

func TestTopologicalOrder(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.fun": `import "b.fun"; import "c.fun"; 1`,
		"b.fun":    `import "d.fun";`,
		"c.fun":    `import "d.fun";`,
		"d.fun":    `data D = D;`,
	})
	r, err := NewRegistry(filepath.Join(dir, "main.fun"))
	if err != nil {
		t.Fatal(err)
	}
	if diag, err := r.Discover(); err != nil || diag.HasErrors() {
		t.Fatalf("discover failed: %v %s", err, diag.Format("main.fun"))
	}
	order, err := r.TopologicalSort()
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, p := range order {
		names = append(names, filepath.Base(p))
	}
	if diff := cmp.Diff([]string{"d.fun", "b.fun", "c.fun", "main.fun"}, names); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if diag := r.Load(order); diag.HasErrors() {
		t.Errorf("diamond imports should load cleanly:\n%s", diag.Format("main.fun"))
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name:  "missing import",
			files: map[string]string{"main.fun": `import "nope.fun"; 1`},
			want:  "imported file not found: nope.fun",
		},
		{
			name:  "wrong extension",
			files: map[string]string{"main.fun": `import "lib.txt"; 1`},
			want:  "import path must have .fun extension",
		},
		{
			name: "conflicting constructors",
			files: map[string]string{
				"main.fun": `import "a.fun"; import "b.fun"; 1`,
				"a.fun":    `data A = Same;`,
				"b.fun":    `data B = Same;`,
			},
			want: "constructor 'Same' is declared by more than one imported file",
		},
		{
			name:  "parse error in import",
			files: map[string]string{"main.fun": `import "a.fun"; 1`, "a.fun": `data = ;`},
			want:  "a.fun:1:6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeFiles(t, tt.files)
			diag := Check(filepath.Join(dir, "main.fun"))
			if got := diag.Format("main.fun"); !strings.Contains(got, tt.want) {
				t.Errorf("expected %q in:\n%s", tt.want, got)
			}
		})
	}
}

func TestConstructorsNeedAnImport(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.fun":  `import "a.fun"; B 1`,
		"a.fun":     `data A = A;`,
		"other.fun": `data X = B Int;`,
	})
	// B is not visible, so it parses as a variable and is unbound at run time.
	res := Run(context.Background(), filepath.Join(dir, "main.fun"), Options{})
	if !errors.Is(res.Err, eval.ErrUnboundVariable) {
		t.Fatalf("expected UnboundVariable, got %v", res.Err)
	}
}

func TestTransitiveConstructorsAreVisible(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.fun": `import "a.fun"; B 1`,
		"a.fun":    `import "b.fun"; data A = A;`,
		"b.fun":    `data X = B Int;`,
	})
	res := Run(context.Background(), filepath.Join(dir, "main.fun"), Options{})
	if !res.OK() || res.Value.String() != "B 1" {
		t.Fatalf("expected B 1, got %v\n%s", res.Value, res.Diagnostics.Format("main.fun"))
	}
}

func TestImportedBodyIsIgnored(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.fun": `import "a.fun"; A`,
		"a.fun":    `data A = A; 1 + true`,
	})
	res := Run(context.Background(), filepath.Join(dir, "main.fun"), Options{})
	if !res.OK() {
		t.Fatalf("unexpected errors:\n%s", res.Diagnostics.Format("main.fun"))
	}
	if res.Diagnostics.WarningCount() != 1 {
		t.Errorf("expected one warning, got:\n%s", res.Diagnostics.Format("main.fun"))
	}
	if res.Value.String() != "A" {
		t.Errorf("expected A, got %s", res.Value)
	}
}

func TestRunFailureBecomesDiagnostic(t *testing.T) {
	dir := writeFiles(t, map[string]string{"bad.fun": "let x = 1 in\n  x + true"})
	res := Run(context.Background(), filepath.Join(dir, "bad.fun"), Options{})
	if res.OK() {
		t.Fatal("expected a failure")
	}
	if !errors.Is(res.Err, eval.ErrInvalidOperator) {
		t.Errorf("expected InvalidOperator, got %v", res.Err)
	}
	got := res.Diagnostics.Format("bad.fun")
	if !strings.Contains(got, ":2:5]: evaluation failed: InvalidOperator: 1 + true") {
		t.Errorf("unexpected diagnostic:\n%s", got)
	}
	if !strings.Contains(got, "hint:") {
		t.Errorf("expected a hint:\n%s", got)
	}
}

func TestRunStepLimit(t *testing.T) {
	dir := writeFiles(t, map[string]string{"loop.fun": `let f = \x -> f x in f 1`})
	res := Run(context.Background(), filepath.Join(dir, "loop.fun"), Options{MaxSteps: 500})
	if !errors.Is(res.Err, eval.ErrStepLimit) {
		t.Fatalf("expected step limit, got %v", res.Err)
	}
	if !strings.Contains(res.Diagnostics.Format("loop.fun"), "-max-steps") {
		t.Errorf("expected a budget hint:\n%s", res.Diagnostics.Format("loop.fun"))
	}
}

func TestRunTimeout(t *testing.T) {
	dir := writeFiles(t, map[string]string{"loop.fun": `let f = \x -> f x in f 1`})
	res := Run(context.Background(), filepath.Join(dir, "loop.fun"), Options{Timeout: 20 * time.Millisecond})
	if !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", res.Err)
	}
}

func TestRunDataOnlyFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{"types.fun": "data Color = Red | Green;"})
	res := Run(context.Background(), filepath.Join(dir, "types.fun"), Options{})
	if !res.OK() || res.Value != nil {
		t.Errorf("expected no value and no errors, got %v\n%s", res.Value, res.Diagnostics.Format("types.fun"))
	}
}

func TestRunFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"one.fun":   "1 + 1",
		"two.fun":   "data B = B Int; B 2",
		"three.fun": "1 1",
	})
	paths := []string{
		filepath.Join(dir, "one.fun"),
		filepath.Join(dir, "two.fun"),
		filepath.Join(dir, "three.fun"),
	}
	results, err := RunFiles(context.Background(), paths, Options{MaxSteps: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Value.String() != "2" || results[1].Value.String() != "B 2" {
		t.Errorf("unexpected values %v, %v", results[0].Value, results[1].Value)
	}
	if !errors.Is(results[2].Err, eval.ErrNotApplicable) {
		t.Errorf("expected NotApplicable, got %v", results[2].Err)
	}
	for i, r := range results {
		if r.File != paths[i] {
			t.Errorf("result %d is for %s", i, r.File)
		}
	}
}

func TestRunFilesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunFiles(ctx, []string{"a.fun"}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunMissingFile(t *testing.T) {
	res := Run(context.Background(), filepath.Join(t.TempDir(), "absent.fun"), Options{})
	if res.OK() {
		t.Fatal("expected an error")
	}
	if !strings.Contains(res.Diagnostics.Format("absent.fun"), "cannot read") {
		t.Errorf("unexpected diagnostic:\n%s", res.Diagnostics.Format("absent.fun"))
	}
}
