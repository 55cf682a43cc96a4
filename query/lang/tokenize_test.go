package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertTokenize(t *testing.T, input string, expected []Token) {
	t.Helper()
	tokens, err := Tokenize(input)
	require.NoError(t, err)
	assert.Equal(t, expected, tokens)
}

func assertTokenizeError(t *testing.T, input string) {
	t.Helper()
	_, err := Tokenize(input)
	assert.Error(t, err)
}

func TestTokenizeSymbols(t *testing.T) {
	assertTokenize(t, "hello world", []Token{
		{Kind: TokenSymbol, Symbol: "hello"},
		{Kind: TokenSymbol, Symbol: "world"},
	})
}

func TestTokenizeSymbolsWithNumbers(t *testing.T) {
	assertTokenize(t, "server1234", []Token{{Kind: TokenSymbol, Symbol: "server1234"}})
}

func TestTokenizeSymbolsWithPeriods(t *testing.T) {
	assertTokenize(t, "region.us.server.abcd", []Token{{Kind: TokenSymbol, Symbol: "region.us.server.abcd"}})
}

func TestTokenizeSymbolsWithHyphens(t *testing.T) {
	assertTokenize(t, "us-west", []Token{{Kind: TokenSymbol, Symbol: "us-west"}})
}

func TestTokenizeSymbolsWithUnderscores(t *testing.T) {
	assertTokenize(t, "env_prod", []Token{{Kind: TokenSymbol, Symbol: "env_prod"}})
}

func TestTokenizeFloats(t *testing.T) {
	assertTokenize(t, "10.2345", []Token{{Kind: TokenFloat, Float: 10.2345}})
}

func TestTokenizeInts(t *testing.T) {
	assertTokenize(t, "23", []Token{{Kind: TokenInt, Int: 23}})
}

func TestTokenizeStrings(t *testing.T) {
	assertTokenize(t, `"foo.bar"`, []Token{{Kind: TokenString, Str: "foo.bar"}})
}

func TestTokenizeParens(t *testing.T) {
	assertTokenize(t, "foo(bar)", []Token{
		{Kind: TokenSymbol, Symbol: "foo"},
		{Kind: TokenLeftParen},
		{Kind: TokenSymbol, Symbol: "bar"},
		{Kind: TokenRightParen},
	})
}

func TestTokenizeCommas(t *testing.T) {
	assertTokenize(t, "foo, bar, baz", []Token{
		{Kind: TokenSymbol, Symbol: "foo"},
		{Kind: TokenComma},
		{Kind: TokenSymbol, Symbol: "bar"},
		{Kind: TokenComma},
		{Kind: TokenSymbol, Symbol: "baz"},
	})
}

func TestTokenizeErrorsOnFloatWithTooManyDecimalPoints(t *testing.T) {
	assertTokenizeError(t, "123.45.67")
}

func TestTokenizeErrorsOnInvalidNumberChars(t *testing.T) {
	assertTokenizeError(t, "123abc")
}

func TestTokenizeErrorsOnInvalidSymbolChars(t *testing.T) {
	assertTokenizeError(t, "foo%bar")
}

func TestTokenizeErrorsOnUnterminatedString(t *testing.T) {
	assertTokenizeError(t, `"foo`)
}
