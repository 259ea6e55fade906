package lexer

import "fmt"

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Literals
	IDENT      // x, fact, Cons
	INT_LIT    // 123
	STRING_LIT // "shapes.fun" (import paths only)

	// Keywords
	LET
	IN
	FUN
	IF
	THEN
	ELSE
	CASE
	OF
	DATA
	IMPORT
	TRUE
	FALSE

	// Type keywords
	INT_TYPE
	BOOL_TYPE

	// Operators
	PLUS   // +
	MINUS  // -
	STAR   // *
	LT     // <
	GT     // >
	LEQ    // <=
	GEQ    // >=
	ASSIGN // =
	ARROW  // ->
	LAMBDA // \

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	BAR       // |
	COLON     // :
	SEMICOLON // ;
)

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

var tokenNames = map[TokenType]string{
	ILLEGAL:    "ILLEGAL",
	EOF:        "EOF",
	IDENT:      "IDENT",
	INT_LIT:    "INT_LIT",
	STRING_LIT: "STRING_LIT",
	LET:        "LET",
	IN:         "IN",
	FUN:        "FUN",
	IF:         "IF",
	THEN:       "THEN",
	ELSE:       "ELSE",
	CASE:       "CASE",
	OF:         "OF",
	DATA:       "DATA",
	IMPORT:     "IMPORT",
	TRUE:       "TRUE",
	FALSE:      "FALSE",
	INT_TYPE:   "INT_TYPE",
	BOOL_TYPE:  "BOOL_TYPE",
	PLUS:       "PLUS",
	MINUS:      "MINUS",
	STAR:       "STAR",
	LT:         "LT",
	GT:         "GT",
	LEQ:        "LEQ",
	GEQ:        "GEQ",
	ASSIGN:     "ASSIGN",
	ARROW:      "ARROW",
	LAMBDA:     "LAMBDA",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	BAR:        "BAR",
	COLON:      "COLON",
	SEMICOLON:  "SEMICOLON",
}

// String returns a string representation of the token type
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, t.Literal, t.Line, t.Column)
}

var keywords = map[string]TokenType{
	"let":    LET,
	"in":     IN,
	"fun":    FUN,
	"if":     IF,
	"then":   THEN,
	"else":   ELSE,
	"case":   CASE,
	"of":     OF,
	"data":   DATA,
	"import": IMPORT,
	"true":   TRUE,
	"false":  FALSE,
	"Int":    INT_TYPE,
	"Bool":   BOOL_TYPE,
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether ident is reserved and cannot name a variable.
func IsKeyword(ident string) bool {
	_, ok := keywords[ident]
	return ok
}
