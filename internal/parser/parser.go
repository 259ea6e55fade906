package parser

import (
	"strconv"

	"github.com/lhaig/fun/internal/ast"
	"github.com/lhaig/fun/internal/diagnostic"
	"github.com/lhaig/fun/internal/lexer"
)

// Option configures a Parser.
type Option func(*Parser)

// WithConstructors makes constructors declared elsewhere (imported files, an
// interactive session) resolvable in the parsed source.
func WithConstructors(ctors ...*ast.DataConstructor) Option {
	return func(p *Parser) {
		for _, c := range ctors {
			p.ctors[c.Name] = c
		}
	}
}

// New creates a new parser
func New(source string, opts ...Option) *Parser {
	l := lexer.New(source)
	p := &Parser{
		tokens:  l.Tokenize(),
		pos:     0,
		diags:   diagnostic.New(),
		ctors:   make(map[string]*ast.DataConstructor),
		lastErr: -1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Diagnostics returns the parser's diagnostics
func (p *Parser) Diagnostics() *diagnostic.Diagnostics {
	return p.diags
}

// Parse parses the token stream into a Program AST
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{}

	for p.check(lexer.IMPORT) {
		prog.Imports = append(prog.Imports, p.parseImportDecl())
	}

	for p.check(lexer.DATA) {
		if d := p.parseDataDecl(); d != nil {
			prog.Data = append(prog.Data, d)
		}
	}

	if p.check(lexer.IMPORT) {
		p.errorf(p.current(), "imports must come before data declarations")
		return prog
	}

	if !p.check(lexer.EOF) {
		prog.Body = p.parseExpression()
		p.match(lexer.SEMICOLON)
		if !p.check(lexer.EOF) {
			p.errorf(p.current(), "unexpected %s after expression", describe(p.current()))
		}
	}
	return prog
}

// ParseExpression parses source consisting of a single expression.
func ParseExpression(source string, opts ...Option) (ast.Expression, *diagnostic.Diagnostics) {
	p := New(source, opts...)
	expr := p.parseExpression()
	p.match(lexer.SEMICOLON)
	if !p.check(lexer.EOF) {
		p.errorf(p.current(), "unexpected %s after expression", describe(p.current()))
	}
	return expr, p.diags
}

// ScanImports parses only the import header of source. The module registry
// uses it to discover dependencies before any constructor is known.
func ScanImports(source string) ([]*ast.ImportDecl, *diagnostic.Diagnostics) {
	p := New(source)
	var imports []*ast.ImportDecl
	for p.check(lexer.IMPORT) {
		imports = append(imports, p.parseImportDecl())
	}
	return imports, p.diags
}

// Input is one line of interactive input: data declarations, a session
// definition (let NAME = EXPR without 'in'), or an expression.
type Input struct {
	Data []*ast.DataDecl
	Name string // set for definitions
	Expr ast.Expression
}

// ParseInput parses one line of interactive input.
func (p *Parser) ParseInput() *Input {
	in := &Input{}
	for p.check(lexer.DATA) {
		if d := p.parseDataDecl(); d != nil {
			in.Data = append(in.Data, d)
		}
	}
	if p.check(lexer.EOF) {
		return in
	}

	if p.check(lexer.LET) {
		let := p.parseLet(true)
		if let.Body == nil {
			in.Name = let.Name
			in.Expr = let.Bound
		} else {
			in.Expr = let
		}
	} else {
		in.Expr = p.parseExpression()
	}
	p.match(lexer.SEMICOLON)
	if !p.check(lexer.EOF) {
		p.errorf(p.current(), "unexpected %s after expression", describe(p.current()))
	}
	return in
}

// Constructors returns every constructor the parser can resolve, including
// those declared in the parsed source.
func (p *Parser) Constructors() map[string]*ast.DataConstructor {
	return p.ctors
}

// parseImportDecl parses: import "path";
func (p *Parser) parseImportDecl() *ast.ImportDecl {
	tok := p.expect(lexer.IMPORT)
	pathTok := p.expect(lexer.STRING_LIT)
	p.expect(lexer.SEMICOLON)

	return &ast.ImportDecl{
		Path:   stripQuotes(pathTok.Literal),
		Line:   tok.Line,
		Column: tok.Column,
	}
}

// parseDataDecl parses: data Name = C1 T1 T2 | C2 | ...;
func (p *Parser) parseDataDecl() *ast.DataDecl {
	tok := p.expect(lexer.DATA)
	name := p.expect(lexer.IDENT)
	if name.Type != lexer.IDENT {
		p.synchronize()
		return nil
	}
	p.expect(lexer.ASSIGN)

	decl := &ast.DataDecl{
		Name:   name.Literal,
		Line:   tok.Line,
		Column: tok.Column,
	}

	for {
		ctorTok := p.expect(lexer.IDENT)
		if ctorTok.Type != lexer.IDENT {
			p.synchronize()
			return nil
		}
		ctor := &ast.DataConstructor{
			Name:   ctorTok.Literal,
			Type:   decl.Name,
			Line:   ctorTok.Line,
			Column: ctorTok.Column,
		}
		for p.startsAtomicType() {
			ctor.Fields = append(ctor.Fields, p.parseAtomicType())
		}
		if _, dup := p.ctors[ctor.Name]; dup {
			p.diags.ErrorWithHint(ctorTok.Line, ctorTok.Column,
				"constructor '"+ctor.Name+"' is already declared",
				"constructor names must be unique across all data declarations")
		}
		p.ctors[ctor.Name] = ctor
		decl.Constructors = append(decl.Constructors, ctor)

		if !p.match(lexer.BAR) {
			break
		}
	}

	p.expect(lexer.SEMICOLON)
	return decl
}

// --- types ---

func (p *Parser) startsAtomicType() bool {
	switch p.current().Type {
	case lexer.INT_TYPE, lexer.BOOL_TYPE, lexer.IDENT, lexer.LPAREN:
		return true
	default:
		return false
	}
}

// parseType parses: atype [-> type]
func (p *Parser) parseType() *ast.TypeRef {
	param := p.parseAtomicType()
	if p.check(lexer.ARROW) {
		arrow := p.advance()
		result := p.parseType()
		return &ast.TypeRef{Param: param, Result: result, Line: arrow.Line, Column: arrow.Column}
	}
	return param
}

func (p *Parser) parseAtomicType() *ast.TypeRef {
	tok := p.current()
	switch tok.Type {
	case lexer.INT_TYPE, lexer.BOOL_TYPE, lexer.IDENT:
		p.advance()
		return &ast.TypeRef{Name: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.LPAREN:
		p.advance()
		t := p.parseType()
		p.expect(lexer.RPAREN)
		return t
	default:
		p.errorf(tok, "expected a type, got %s", describe(tok))
		p.advance()
		return &ast.TypeRef{Name: "<error>", Line: tok.Line, Column: tok.Column}
	}
}

// --- expressions ---

// Precedence levels (lowest to highest), all left-associative:
// 1. < > <= >=
// 2. + -
// 3. *
// Application binds tighter than every operator.

const (
	precNone       = 0
	precComparison = 1
	precAdditive   = 2
	precMulti      = 3
)

func tokenPrecedence(tt lexer.TokenType) int {
	switch tt {
	case lexer.LT, lexer.GT, lexer.LEQ, lexer.GEQ:
		return precComparison
	case lexer.PLUS, lexer.MINUS:
		return precAdditive
	case lexer.STAR:
		return precMulti
	default:
		return precNone
	}
}

// parseExpression parses a full expression. let, fun, if and case extend as
// far to the right as possible.
func (p *Parser) parseExpression() ast.Expression {
	switch p.current().Type {
	case lexer.LET:
		return p.parseLet(false)
	case lexer.LAMBDA, lexer.FUN:
		return p.parseFun()
	case lexer.IF:
		return p.parseIf()
	case lexer.CASE:
		return p.parseCase()
	default:
		return p.parsePrecedence(precComparison)
	}
}

func (p *Parser) parsePrecedence(minPrec int) ast.Expression {
	left := p.parseApplication()

	for {
		prec := tokenPrecedence(p.current().Type)
		if prec == precNone || prec < minPrec {
			break
		}

		op := p.advance()
		right := p.parsePrecedence(prec + 1)
		left = &ast.BinaryExpr{
			Op:     op.Type,
			Left:   left,
			Right:  right,
			Line:   op.Line,
			Column: op.Column,
		}
	}

	return left
}

// parseApplication parses juxtaposition: f a b is one application of f to
// two arguments.
func (p *Parser) parseApplication() ast.Expression {
	fn := p.parseAtom()
	if !p.startsAtom() {
		return fn
	}

	line, col := fn.Pos()
	var args []ast.Expression
	for p.startsAtom() {
		args = append(args, p.parseAtom())
	}
	return &ast.AppExpr{Func: fn, Args: args, Line: line, Column: col}
}

// startsAtom reports whether the current token can begin an argument.
// A minus sign cannot: f -1 is a subtraction.
func (p *Parser) startsAtom() bool {
	switch p.current().Type {
	case lexer.INT_LIT, lexer.TRUE, lexer.FALSE, lexer.IDENT, lexer.LPAREN:
		return true
	default:
		return false
	}
}

func (p *Parser) parseAtom() ast.Expression {
	tok := p.current()

	switch tok.Type {
	case lexer.INT_LIT:
		p.advance()
		return &ast.IntLit{Value: p.parseInt(tok, false), Line: tok.Line, Column: tok.Column}
	case lexer.MINUS:
		if p.peek().Type == lexer.INT_LIT {
			p.advance()
			lit := p.advance()
			return &ast.IntLit{Value: p.parseInt(lit, true), Line: tok.Line, Column: tok.Column}
		}
	case lexer.TRUE:
		p.advance()
		return &ast.BoolLit{Value: true, Line: tok.Line, Column: tok.Column}
	case lexer.FALSE:
		p.advance()
		return &ast.BoolLit{Value: false, Line: tok.Line, Column: tok.Column}
	case lexer.IDENT:
		p.advance()
		if ctor, ok := p.ctors[tok.Literal]; ok {
			return &ast.ConstructorRef{Constructor: ctor, Line: tok.Line, Column: tok.Column}
		}
		return &ast.Var{Name: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.LPAREN:
		p.advance()
		expr := p.parseExpression()
		if p.check(lexer.COLON) {
			colon := p.advance()
			typ := p.parseType()
			expr = &ast.AnnotExpr{Expr: expr, Type: typ, Line: colon.Line, Column: colon.Column}
		}
		p.expect(lexer.RPAREN)
		return expr
	}

	p.errorf(tok, "unexpected %s in expression", describe(tok))
	if !p.check(lexer.EOF) {
		p.advance()
	}
	return &ast.Var{Name: "<error>", Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parseInt(tok lexer.Token, negative bool) int64 {
	lit := tok.Literal
	if negative {
		lit = "-" + lit
	}
	v, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		p.diags.Errorf(tok.Line, tok.Column, "integer literal %s out of range", lit)
		return 0
	}
	return v
}

// parseLet parses: let NAME = EXPR in EXPR. When definition is true the
// 'in' part may be omitted; Body is then nil.
func (p *Parser) parseLet(definition bool) *ast.LetExpr {
	tok := p.expect(lexer.LET)
	name := p.parseBinderName()
	p.expect(lexer.ASSIGN)
	bound := p.parseExpression()

	let := &ast.LetExpr{Name: name, Bound: bound, Line: tok.Line, Column: tok.Column}
	if definition && (p.check(lexer.EOF) || p.check(lexer.SEMICOLON)) {
		return let
	}
	p.expect(lexer.IN)
	let.Body = p.parseExpression()
	return let
}

// parseFun parses: \x -> EXPR or fun x -> EXPR
func (p *Parser) parseFun() *ast.FunExpr {
	tok := p.advance() // '\' or 'fun'
	param := p.parseBinderName()
	p.expect(lexer.ARROW)
	body := p.parseExpression()
	return &ast.FunExpr{Param: param, Body: body, Line: tok.Line, Column: tok.Column}
}

// parseBinderName parses a variable name in binding position.
func (p *Parser) parseBinderName() string {
	tok := p.expect(lexer.IDENT)
	if tok.Type != lexer.IDENT {
		return "<error>"
	}
	if _, ok := p.ctors[tok.Literal]; ok {
		p.errorf(tok, "cannot bind constructor name '%s'", tok.Literal)
	}
	return tok.Literal
}

// parseIf parses: if EXPR then EXPR else EXPR
func (p *Parser) parseIf() *ast.IfExpr {
	tok := p.expect(lexer.IF)
	cond := p.parseExpression()
	p.expect(lexer.THEN)
	then := p.parseExpression()
	p.expect(lexer.ELSE)
	els := p.parseExpression()
	return &ast.IfExpr{Cond: cond, Then: then, Else: els, Line: tok.Line, Column: tok.Column}
}

// parseCase parses: case EXPR of [|] PAT -> EXPR { | PAT -> EXPR }
func (p *Parser) parseCase() *ast.CaseExpr {
	tok := p.expect(lexer.CASE)
	scrutinee := p.parseExpression()
	p.expect(lexer.OF)
	p.match(lexer.BAR)

	c := &ast.CaseExpr{Scrutinee: scrutinee, Line: tok.Line, Column: tok.Column}
	for {
		c.Alts = append(c.Alts, p.parseAlternative())
		if !p.match(lexer.BAR) {
			break
		}
	}
	return c
}

// parseAlternative parses: PAT -> EXPR
func (p *Parser) parseAlternative() *ast.Alternative {
	tok := p.current()
	pattern := p.parsePattern()
	p.expect(lexer.ARROW)
	body := p.parseExpression()
	return &ast.Alternative{Pattern: pattern, Body: body, Line: tok.Line, Column: tok.Column}
}

// --- patterns ---

// parsePattern parses a constructor applied to sub-patterns, or an atomic
// pattern.
func (p *Parser) parsePattern() ast.Pattern {
	tok := p.current()
	if tok.Type == lexer.IDENT {
		if ctor, ok := p.ctors[tok.Literal]; ok {
			p.advance()
			cp := &ast.ConstructorPattern{Constructor: ctor, Line: tok.Line, Column: tok.Column}
			for p.startsPattern() {
				cp.Args = append(cp.Args, p.parseAtomicPattern())
			}
			return cp
		}
	}
	return p.parseAtomicPattern()
}

func (p *Parser) startsPattern() bool {
	switch p.current().Type {
	case lexer.INT_LIT, lexer.MINUS, lexer.TRUE, lexer.FALSE, lexer.IDENT, lexer.LPAREN:
		return true
	default:
		return false
	}
}

func (p *Parser) parseAtomicPattern() ast.Pattern {
	tok := p.current()

	switch tok.Type {
	case lexer.INT_LIT:
		p.advance()
		return &ast.IntPattern{Value: p.parseInt(tok, false), Line: tok.Line, Column: tok.Column}
	case lexer.MINUS:
		if p.peek().Type == lexer.INT_LIT {
			p.advance()
			lit := p.advance()
			return &ast.IntPattern{Value: p.parseInt(lit, true), Line: tok.Line, Column: tok.Column}
		}
	case lexer.TRUE:
		p.advance()
		return &ast.BoolPattern{Value: true, Line: tok.Line, Column: tok.Column}
	case lexer.FALSE:
		p.advance()
		return &ast.BoolPattern{Value: false, Line: tok.Line, Column: tok.Column}
	case lexer.IDENT:
		p.advance()
		if ctor, ok := p.ctors[tok.Literal]; ok {
			return &ast.ConstructorPattern{Constructor: ctor, Line: tok.Line, Column: tok.Column}
		}
		return &ast.VarPattern{Name: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.LPAREN:
		p.advance()
		pat := p.parsePattern()
		p.expect(lexer.RPAREN)
		return pat
	}

	p.errorf(tok, "unexpected %s in pattern", describe(tok))
	if !p.check(lexer.EOF) {
		p.advance()
	}
	return &ast.VarPattern{Name: "<error>", Line: tok.Line, Column: tok.Column}
}

func stripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
