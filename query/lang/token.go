// Package lang tokenizes and parses the query surface: a closed
// s-expression grammar of nested function calls over string, int, and
// float literals.
//
// Grounded on
// original_source/caesium-server/src/query/parser/{tokenize,parse}.rs
// and original_source/server/src/query/parser/ast.rs.
package lang

import "fmt"

// TokenKind identifies the lexical class of a Token.
type TokenKind int

const (
	TokenSymbol TokenKind = iota
	TokenInt
	TokenFloat
	TokenString
	TokenLeftParen
	TokenRightParen
	TokenComma
)

// Token is one lexical unit of a query string.
type Token struct {
	Kind   TokenKind
	Symbol string
	Int    uint64
	Float  float64
	Str    string
}

func (t Token) String() string {
	switch t.Kind {
	case TokenSymbol:
		return fmt.Sprintf("Symbol(%s)", t.Symbol)
	case TokenInt:
		return fmt.Sprintf("Int(%d)", t.Int)
	case TokenFloat:
		return fmt.Sprintf("Float(%g)", t.Float)
	case TokenString:
		return fmt.Sprintf("String(%q)", t.Str)
	case TokenLeftParen:
		return "LeftParen"
	case TokenRightParen:
		return "RightParen"
	case TokenComma:
		return "Comma"
	default:
		return "Unknown"
	}
}
