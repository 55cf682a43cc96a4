package lang

import "fmt"

// Parse tokenizes and parses s into a single expression. A call is
// Symbol '(' (expr (',' expr)* ','?)? ')'; a trailing comma before ')'
// is permitted. Any leftover token after a complete expression, or any
// token stream that doesn't resolve to one, is a syntax error.
func Parse(s string) (Expr, error) {
	tokens, err := Tokenize(s)
	if err != nil {
		return Expr{}, err
	}
	consumed, expr, err := parseExpr(tokens)
	if err != nil {
		return Expr{}, err
	}
	if consumed < len(tokens) {
		return Expr{}, fmt.Errorf("%w: unexpected token %s", ErrSyntax, tokens[consumed])
	}
	return expr, nil
}

func parseExpr(tokens []Token) (int, Expr, error) {
	if len(tokens) == 0 {
		return 0, Expr{}, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
	}
	switch tokens[0].Kind {
	case TokenInt:
		return 1, Expr{Kind: ExprInt, Int: tokens[0].Int}, nil
	case TokenFloat:
		return 1, Expr{Kind: ExprFloat, Float: tokens[0].Float}, nil
	case TokenString:
		return 1, Expr{Kind: ExprString, Str: tokens[0].Str}, nil
	case TokenSymbol:
		if len(tokens) > 1 && tokens[1].Kind == TokenLeftParen {
			return parseCall(tokens)
		}
		if len(tokens) > 1 {
			return 0, Expr{}, fmt.Errorf("%w: unexpected token %s", ErrSyntax, tokens[1])
		}
		return 0, Expr{}, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
	default:
		return 0, Expr{}, fmt.Errorf("%w: unexpected token %s", ErrSyntax, tokens[0])
	}
}

func parseCall(tokens []Token) (int, Expr, error) {
	name := tokens[0].Symbol
	args, consumed, err := parseArgList(tokens[2:])
	if err != nil {
		return 0, Expr{}, err
	}
	rest := tokens[2+consumed:]
	if len(rest) == 0 {
		return 0, Expr{}, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
	}
	if rest[0].Kind != TokenRightParen {
		return 0, Expr{}, fmt.Errorf("%w: unexpected token %s", ErrSyntax, rest[0])
	}
	return 2 + consumed + 1, Expr{Kind: ExprCall, Name: name, Args: args}, nil
}

func parseArgList(tokens []Token) ([]Expr, int, error) {
	var args []Expr
	c := 0
	for {
		if c >= len(tokens) {
			return nil, 0, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
		}
		if tokens[c].Kind == TokenRightParen {
			return args, c, nil
		}
		consumed, arg, err := parseExpr(tokens[c:])
		if err != nil {
			return nil, 0, err
		}
		c += consumed
		args = append(args, arg)

		if c >= len(tokens) {
			return nil, 0, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
		}
		switch tokens[c].Kind {
		case TokenComma:
			c++
		case TokenRightParen:
			// handled next iteration
		default:
			return nil, 0, fmt.Errorf("%w: unexpected token %s", ErrSyntax, tokens[c])
		}
	}
}
