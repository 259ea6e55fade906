package parser

import (
	"github.com/lhaig/fun/internal/ast"
	"github.com/lhaig/fun/internal/diagnostic"
	"github.com/lhaig/fun/internal/lexer"
)

// syncTokens are tokens the parser can synchronize to after an error in a
// declaration
var syncTokens = map[lexer.TokenType]bool{
	lexer.DATA:   true,
	lexer.IMPORT: true,
	lexer.EOF:    true,
}

// Parser holds the parser state
type Parser struct {
	tokens  []lexer.Token
	pos     int
	diags   *diagnostic.Diagnostics
	ctors   map[string]*ast.DataConstructor
	lastErr int // token index of the last reported error, -1 if none
}

// current returns the current token
func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.tokens[p.pos]
}

// peek returns the next token without consuming
func (p *Parser) peek() lexer.Token {
	if p.pos+1 >= len(p.tokens) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.tokens[p.pos+1]
}

// advance moves to the next token and returns the consumed token
func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches the expected type,
// otherwise reports an error
func (p *Parser) expect(tt lexer.TokenType) lexer.Token {
	tok := p.current()
	if tok.Type != tt {
		p.errorf(tok, "expected %s, got %s", spelling(tt), describe(tok))
		return tok
	}
	return p.advance()
}

// check returns true if the current token is of the given type
func (p *Parser) check(tt lexer.TokenType) bool {
	return p.current().Type == tt
}

// match consumes the current token if it matches, returns true if consumed
func (p *Parser) match(tt lexer.TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

// errorf reports an error at tok. A second error at the same token is
// dropped: it is almost always a consequence of the first.
func (p *Parser) errorf(tok lexer.Token, format string, args ...any) {
	if p.lastErr == p.pos {
		return
	}
	p.lastErr = p.pos
	p.diags.Errorf(tok.Line, tok.Column, format, args...)
}

// synchronize skips tokens until a declaration boundary is found, consuming
// a terminating semicolon.
func (p *Parser) synchronize() {
	for !p.check(lexer.EOF) {
		if p.current().Type == lexer.SEMICOLON {
			p.advance()
			return
		}
		if syncTokens[p.current().Type] {
			return
		}
		p.advance()
	}
}

// describe renders a token for error messages
func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.EOF:
		return "end of input"
	case lexer.ILLEGAL:
		return "illegal input: " + tok.Literal
	case lexer.IDENT, lexer.INT_LIT, lexer.STRING_LIT:
		return tok.Type.String() + " " + tok.Literal
	default:
		return "'" + tok.Literal + "'"
	}
}

var spellings = map[lexer.TokenType]string{
	lexer.IDENT:      "identifier",
	lexer.STRING_LIT: "string",
	lexer.LET:        "'let'",
	lexer.IN:         "'in'",
	lexer.IF:         "'if'",
	lexer.THEN:       "'then'",
	lexer.ELSE:       "'else'",
	lexer.CASE:       "'case'",
	lexer.OF:         "'of'",
	lexer.DATA:       "'data'",
	lexer.IMPORT:     "'import'",
	lexer.ASSIGN:     "'='",
	lexer.ARROW:      "'->'",
	lexer.RPAREN:     "')'",
	lexer.SEMICOLON:  "';'",
}

// spelling renders an expected token type the way it appears in source
func spelling(tt lexer.TokenType) string {
	if s, ok := spellings[tt]; ok {
		return s
	}
	return tt.String()
}
