package formatter

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lhaig/fun/internal/ast"
	"github.com/lhaig/fun/internal/parser"
	"github.com/lhaig/fun/internal/testgen"
)

var ignorePos = cmp.FilterPath(func(p cmp.Path) bool {
	sf, ok := p.Last().(cmp.StructField)
	return ok && (sf.Name() == "Line" || sf.Name() == "Column")
}, cmp.Ignore())

// helper: parse source, format, return formatted string
func formatSource(t *testing.T, source string) string {
	t.Helper()
	p := parser.New(source)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("parse error: %s", p.Diagnostics().Format("<test>"))
	}
	return Format(prog)
}

func formatExprSource(t *testing.T, source string) string {
	t.Helper()
	e, diags := parser.ParseExpression(source)
	if diags.HasErrors() {
		t.Fatalf("parse error: %s", diags.Format("<test>"))
	}
	return Expr(e)
}

func TestFormatExpressions(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1+2*3", "1 + 2 * 3"},
		{"(1+2)*3", "(1 + 2) * 3"},
		{"1-(2-3)", "1 - (2 - 3)"},
		{"(1-2)-3", "1 - 2 - 3"},
		{"a + 1 <= b * 2", "a + 1 <= b * 2"},
		{"-5 + 3", "-5 + 3"},
		{"1 - -5", "1 - -5"},
		{"f (g x) (-1)", "f (g x) (-1)"},
		{"(f x) y", "(f x) y"},
		{"f x y", "f x y"},
		{"fun x -> x", `\x -> x`},
		{`(\x -> x) 1`, `(\x -> x) 1`},
		{`f (\x -> x) 1`, `f (\x -> x) 1`},
		{"(if a then b else c) + 1", "(if a then b else c) + 1"},
		{"if let x = 1 in x then 1 else 2", "if let x = 1 in x then 1 else 2"},
		{"let x = 1 in let y = x in y", "let x = 1 in let y = x in y"},
		{"case x of 0 -> 1 | y -> y", "case x of | 0 -> 1 | y -> y"},
		{`case x of | 0 -> (\y -> y) | z -> \y -> y`, `case x of | 0 -> (\y -> y) | z -> \y -> y`},
		{"case x of | 0 -> x + 1 | -2 -> 2", "case x of | 0 -> x + 1 | -2 -> 2"},
		{"(x : Int -> Int)", "(x : Int -> Int)"},
		{"(f : (Int -> Int) -> Bool)", "(f : (Int -> Int) -> Bool)"},
		{"( ( 42 ) )", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := formatExprSource(t, tt.input); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFormatProgramLayout(t *testing.T) {
	src := `import "shapes.fun"; data T = A Int | B; data F = F (Int -> Int) Bool;
let x = A 1 in case x of A n -> n | B -> 0`
	want := `import "shapes.fun";

data T = A Int | B;
data F = F (Int -> Int) Bool;

let x = A 1 in
case x of
  | A n -> n
  | B -> 0
`
	if got := formatSource(t, src); got != want {
		t.Errorf("layout mismatch:\n--- want\n%s--- got\n%s", want, got)
	}
}

func TestFormatPatterns(t *testing.T) {
	src := `data P = P Int P | N; case N of | P (-1) (P x N) -> x | P 1 y -> 0 | N -> 2`
	got := formatSource(t, src)
	for _, want := range []string{"| P (-1) (P x N) -> x", "| P 1 y -> 0", "| N -> 2"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in:\n%s", want, got)
		}
	}
}

func TestFormatDataOnly(t *testing.T) {
	got := formatSource(t, "data Unit = Unit;")
	if got != "data Unit = Unit;\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestIdempotency(t *testing.T) {
	sources := []string{
		"let f = \\x -> if x <= 1 then 1 else x * f (x - 1) in f 5",
		"data L = Cons Int L | Nil; let len = \\l -> case l of Nil -> 0 | Cons h t -> 1 + len t in len (Cons 1 Nil)",
		"case (\\x -> x) 1 of | 1 -> (case 2 of | y -> y) | z -> z",
	}
	for _, src := range sources {
		first := formatSource(t, src)
		second := formatSource(t, first)
		if first != second {
			t.Errorf("formatting is not idempotent:\n--- first\n%s--- second\n%s", first, second)
		}
	}
}

func TestRoundTripGeneratedPrograms(t *testing.T) {
	for seed := uint64(1); seed <= 300; seed++ {
		g := testgen.New(seed, testgen.DefaultConstraints())
		prog := g.Program()
		src := Format(prog)

		p := parser.New(src)
		got := p.Parse()
		if p.Diagnostics().HasErrors() {
			t.Fatalf("seed %d: formatted program does not parse:\n%s\n%s", seed, src, p.Diagnostics().Format("gen"))
		}
		if diff := cmp.Diff(prog, got, ignorePos); diff != "" {
			t.Fatalf("seed %d: round trip changed the tree (-want +got):\n%s\nsource:\n%s", seed, diff, src)
		}
	}
}

func TestRoundTripGeneratedExpressions(t *testing.T) {
	for seed := uint64(1); seed <= 300; seed++ {
		g := testgen.New(seed, testgen.Constraints{Lower: -20, Upper: 20, MaxDepth: 7, Data: 4})
		e := g.Expr()
		src := Expr(e)

		got, diags := parser.ParseExpression(src, parser.WithConstructors(g.Constructors()...))
		if diags.HasErrors() {
			t.Fatalf("seed %d: %q does not parse: %s", seed, src, diags.Format("gen"))
		}
		if diff := cmp.Diff(e, got, ignorePos); diff != "" {
			t.Fatalf("seed %d: round trip of %q changed the tree (-want +got):\n%s", seed, src, diff)
		}
	}
}

// pending stands in for an evaluator intermediate form.
type pending struct {
	ast.Runtime
	inner ast.Expression
}

func (p *pending) Surface() ast.Expression { return p.inner }

type opaque struct{ ast.Runtime }

func (opaque) String() string { return "<opaque thing>" }

func TestFormatRuntimeForms(t *testing.T) {
	inner, _ := parser.ParseExpression("a + b")
	e := &ast.AppExpr{Func: &ast.Var{Name: "f"}, Args: []ast.Expression{&pending{inner: inner}}}
	if got := Expr(e); got != "f (a + b)" {
		t.Errorf("expected surfaced form to be parenthesized, got %q", got)
	}

	e = &ast.AppExpr{Func: &ast.Var{Name: "f"}, Args: []ast.Expression{opaque{}}}
	if got := Expr(e); got != "f (<opaque thing>)" {
		t.Errorf("unexpected rendering %q", got)
	}
}

func TestFormatZeroArgumentApplication(t *testing.T) {
	e := &ast.AppExpr{Func: &ast.Var{Name: "f"}}
	if got := Expr(e); got != "f" {
		t.Errorf("expected bare callee, got %q", got)
	}
}
