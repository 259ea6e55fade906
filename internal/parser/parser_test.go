package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lhaig/fun/internal/ast"
	"github.com/lhaig/fun/internal/lexer"
)

// ignorePos compares trees without source positions.
var ignorePos = cmp.FilterPath(func(p cmp.Path) bool {
	sf, ok := p.Last().(cmp.StructField)
	return ok && (sf.Name() == "Line" || sf.Name() == "Column")
}, cmp.Ignore())

func mustParse(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := New(input)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("unexpected errors: %s", p.Diagnostics().Format("test"))
	}
	return prog
}

func mustParseExpr(t *testing.T, input string, opts ...Option) ast.Expression {
	t.Helper()
	expr, diags := ParseExpression(input, opts...)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors in %q: %s", input, diags.Format("test"))
	}
	return expr
}

func v(name string) *ast.Var { return &ast.Var{Name: name} }
func n(i int64) *ast.IntLit { return &ast.IntLit{Value: i} }

func bin(op lexer.TokenType, l, r ast.Expression) *ast.BinaryExpr {
	return &ast.BinaryExpr{Op: op, Left: l, Right: r}
}

func app(fn ast.Expression, args ...ast.Expression) *ast.AppExpr {
	return &ast.AppExpr{Func: fn, Args: args}
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		input string
		want  ast.Expression
	}{
		{"42", n(42)},
		{"-7", n(-7)},
		{"true", &ast.BoolLit{Value: true}},
		{"x", v("x")},
		{"1 + 2 * 3", bin(lexer.PLUS, n(1), bin(lexer.STAR, n(2), n(3)))},
		{"1 - 2 - 3", bin(lexer.MINUS, bin(lexer.MINUS, n(1), n(2)), n(3))},
		{"(1 - 2) * 3", bin(lexer.STAR, bin(lexer.MINUS, n(1), n(2)), n(3))},
		{"a + 1 <= b", bin(lexer.LEQ, bin(lexer.PLUS, v("a"), n(1)), v("b"))},
		{"x - 1", bin(lexer.MINUS, v("x"), n(1))},
		{"f x -1", bin(lexer.MINUS, app(v("f"), v("x")), n(1))},
		{"f x y", app(v("f"), v("x"), v("y"))},
		{"(f x) y", app(app(v("f"), v("x")), v("y"))},
		{"f (g x) 2", app(v("f"), app(v("g"), v("x")), n(2))},
		{"f x + g y", bin(lexer.PLUS, app(v("f"), v("x")), app(v("g"), v("y")))},
		{`\x -> x + 1`, &ast.FunExpr{Param: "x", Body: bin(lexer.PLUS, v("x"), n(1))}},
		{"fun x -> fun y -> x", &ast.FunExpr{Param: "x", Body: &ast.FunExpr{Param: "y", Body: v("x")}}},
		{"let x = 1 in x", &ast.LetExpr{Name: "x", Bound: n(1), Body: v("x")}},
		{"if x < 1 then 0 else x", &ast.IfExpr{Cond: bin(lexer.LT, v("x"), n(1)), Then: n(0), Else: v("x")}},
		{"(x : Int)", &ast.AnnotExpr{Expr: v("x"), Type: &ast.TypeRef{Name: "Int"}}},
		{
			"(f : Int -> Bool -> Int)",
			&ast.AnnotExpr{Expr: v("f"), Type: &ast.TypeRef{
				Param:  &ast.TypeRef{Name: "Int"},
				Result: &ast.TypeRef{Param: &ast.TypeRef{Name: "Bool"}, Result: &ast.TypeRef{Name: "Int"}},
			}},
		},
		{
			"case x of | 0 -> true | y -> false",
			&ast.CaseExpr{Scrutinee: v("x"), Alts: []*ast.Alternative{
				{Pattern: &ast.IntPattern{Value: 0}, Body: &ast.BoolLit{Value: true}},
				{Pattern: &ast.VarPattern{Name: "y"}, Body: &ast.BoolLit{Value: false}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := mustParseExpr(t, tt.input)
			if diff := cmp.Diff(tt.want, got, ignorePos); diff != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseLetExtendsRight(t *testing.T) {
	got := mustParseExpr(t, "let f = \\x -> x in f 1 + 2")
	want := &ast.LetExpr{
		Name:  "f",
		Bound: &ast.FunExpr{Param: "x", Body: v("x")},
		Body:  bin(lexer.PLUS, app(v("f"), n(1)), n(2)),
	}
	if diff := cmp.Diff(want, got, ignorePos); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDataDecl(t *testing.T) {
	prog := mustParse(t, `
data Shape = Circle Int | Rect Int Int | Dot;
data Box = Box (Int -> Int);
Rect 1 2`)

	if len(prog.Data) != 2 {
		t.Fatalf("expected 2 data declarations, got %d", len(prog.Data))
	}
	shape := prog.Data[0]
	if shape.Name != "Shape" || len(shape.Constructors) != 3 {
		t.Fatalf("unexpected data declaration: %s", ast.Print(shape))
	}
	arities := []int{1, 2, 0}
	for i, c := range shape.Constructors {
		if c.Arity() != arities[i] {
			t.Errorf("%s: expected arity %d, got %d", c.Name, arities[i], c.Arity())
		}
		if c.Type != "Shape" {
			t.Errorf("%s: expected type Shape, got %q", c.Name, c.Type)
		}
	}
	if !prog.Data[1].Constructors[0].Fields[0].IsFunc() {
		t.Error("expected Box field to be a function type")
	}

	body, ok := prog.Body.(*ast.AppExpr)
	if !ok {
		t.Fatalf("expected application body, got %T", prog.Body)
	}
	ref, ok := body.Func.(*ast.ConstructorRef)
	if !ok || ref.Constructor != shape.Constructors[1] {
		t.Errorf("expected callee to resolve to Rect, got %s", ast.Print(body.Func))
	}
}

func TestParseConstructorPatterns(t *testing.T) {
	prog := mustParse(t, `
data P = P Int Int | Q Bool;
case P 1 2 of
  | P 1 y -> y
  | P x (Q true) -> x
  | Q b -> 0`)

	c, ok := prog.Body.(*ast.CaseExpr)
	if !ok {
		t.Fatalf("expected case body, got %T", prog.Body)
	}
	if len(c.Alts) != 3 {
		t.Fatalf("expected 3 alternatives, got %d", len(c.Alts))
	}

	first := c.Alts[0].Pattern.(*ast.ConstructorPattern)
	if first.Constructor.Name != "P" || len(first.Args) != 2 {
		t.Fatalf("unexpected first pattern: %s", ast.Print(first))
	}
	if _, ok := first.Args[0].(*ast.IntPattern); !ok {
		t.Errorf("expected int sub-pattern, got %T", first.Args[0])
	}
	if diff := cmp.Diff([]string{"y"}, ast.Binders(first)); diff != "" {
		t.Errorf("binders mismatch (-want +got):\n%s", diff)
	}

	nested := c.Alts[1].Pattern.(*ast.ConstructorPattern).Args[1]
	if cp, ok := nested.(*ast.ConstructorPattern); !ok || cp.Constructor.Name != "Q" || len(cp.Args) != 1 {
		t.Errorf("expected parenthesized Q pattern, got %s", ast.Print(nested))
	}
}

func TestParseImports(t *testing.T) {
	prog := mustParse(t, `import "shapes.fun"; import "lib/list.fun"; 1`)
	var paths []string
	for _, imp := range prog.Imports {
		paths = append(paths, imp.Path)
	}
	if diff := cmp.Diff([]string{"shapes.fun", "lib/list.fun"}, paths); diff != "" {
		t.Errorf("import paths mismatch (-want +got):\n%s", diff)
	}
}

func TestScanImportsStopsAtHeader(t *testing.T) {
	imports, diags := ScanImports(`import "a.fun";
data T = A;
case x of | Unknown y -> y`)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %s", diags.Format("test"))
	}
	if len(imports) != 1 || imports[0].Path != "a.fun" {
		t.Errorf("unexpected imports: %v", imports)
	}
}

func TestWithConstructors(t *testing.T) {
	ctor := &ast.DataConstructor{Name: "Leaf", Type: "Tree"}
	got := mustParseExpr(t, "Leaf", WithConstructors(ctor))
	ref, ok := got.(*ast.ConstructorRef)
	if !ok || ref.Constructor != ctor {
		t.Errorf("expected constructor reference, got %s", ast.Print(got))
	}

	// Without the option the same name is a plain variable.
	got = mustParseExpr(t, "Leaf")
	if _, ok := got.(*ast.Var); !ok {
		t.Errorf("expected variable, got %T", got)
	}
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		input    string
		name     string
		wantData int
		wantExpr bool
	}{
		{"let sq = \\x -> x * x", "sq", 0, true},
		{"let sq = \\x -> x * x in sq 3", "", 0, true},
		{"data T = A | B;", "", 1, false},
		{"data T = A | B; A", "", 1, true},
		{"1 + 2", "", 0, true},
		{"", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := New(tt.input)
			in := p.ParseInput()
			if p.Diagnostics().HasErrors() {
				t.Fatalf("unexpected errors: %s", p.Diagnostics().Format("repl"))
			}
			if in.Name != tt.name {
				t.Errorf("expected name %q, got %q", tt.name, in.Name)
			}
			if len(in.Data) != tt.wantData {
				t.Errorf("expected %d data declarations, got %d", tt.wantData, len(in.Data))
			}
			if (in.Expr != nil) != tt.wantExpr {
				t.Errorf("expected expression present=%v, got %v", tt.wantExpr, in.Expr != nil)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"missing in", "let x = 1 x", "expected 'in'"},
		{"missing arrow", `\x x`, "expected '->'"},
		{"missing else", "if true then 1", "expected 'else'"},
		{"unclosed paren", "(1 + 2", "expected ')'"},
		{"trailing token", "1 )", "unexpected ')' after expression"},
		{"illegal char", "1 # 2", "illegal input: #"},
		{"empty case", "case x of", "in pattern"},
		{"duplicate constructor", "data A = X; data B = X;", "constructor 'X' is already declared"},
		{"bind constructor", "data T = K; let K = 1 in K", "cannot bind constructor name 'K'"},
		{"import after data", `data T = A; import "x.fun";`, "imports must come before data declarations"},
		{"int overflow", "99999999999999999999", "out of range"},
		{"unterminated comment", "1 /* never closed", "unterminated comment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.input)
			p.Parse()
			if !p.Diagnostics().HasErrors() {
				t.Fatalf("expected an error for %q", tt.input)
			}
			msg := p.Diagnostics().Format("test")
			if !strings.Contains(msg, tt.want) {
				t.Errorf("expected error containing %q, got:\n%s", tt.want, msg)
			}
		})
	}
}

func TestErrorPositions(t *testing.T) {
	p := New("let x = 1\nin x +")
	p.Parse()
	errs := p.Diagnostics().Errors()
	if len(errs) == 0 {
		t.Fatal("expected an error")
	}
	if errs[0].Line != 2 {
		t.Errorf("expected error on line 2, got %d:%d", errs[0].Line, errs[0].Column)
	}
}
