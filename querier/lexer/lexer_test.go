package lexer

import (
	"testing"

	"github.com/thisisjab/pinotbroker/querier/token"
)

func TestNextToken(t *testing.T) {
	input := `EXPLAIN PLAN FOR SELECT 6+8 AS addition, 'it''s', "my col", t.x
	FROM myTable
	WHERE bar >= ago('PT1H') AND baz <> 1.5 OR qux != 2e3
	GROUP BY foo ORDER BY foo DESC LIMIT 10;
	* / % - < <= > = `
	l := New(input)

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.EXPLAIN, "EXPLAIN"},
		{token.PLAN, "PLAN"},
		{token.FOR, "FOR"},
		{token.SELECT, "SELECT"},
		{token.INT, "6"},
		{token.PLUS, "+"},
		{token.INT, "8"},
		{token.AS, "AS"},
		{token.IDENT, "addition"},
		{token.COMMA, ","},
		{token.STRING, "it's"},
		{token.COMMA, ","},
		{token.IDENT, "my col"},
		{token.COMMA, ","},
		{token.IDENT, "t.x"},
		{token.FROM, "FROM"},
		{token.IDENT, "myTable"},
		{token.WHERE, "WHERE"},
		{token.IDENT, "bar"},
		{token.GREATEREQUAL, ">="},
		{token.IDENT, "ago"},
		{token.LPAREN, "("},
		{token.STRING, "PT1H"},
		{token.RPAREN, ")"},
		{token.AND, "AND"},
		{token.IDENT, "baz"},
		{token.NOTEQUAL, "<>"},
		{token.DECIMAL, "1.5"},
		{token.OR, "OR"},
		{token.IDENT, "qux"},
		{token.NOTEQUAL, "!="},
		{token.DECIMAL, "2e3"},
		{token.GROUP, "GROUP"},
		{token.BY, "BY"},
		{token.IDENT, "foo"},
		{token.ORDER, "ORDER"},
		{token.BY, "BY"},
		{token.IDENT, "foo"},
		{token.DESC, "DESC"},
		{token.LIMIT, "LIMIT"},
		{token.INT, "10"},
		{token.SEMICOLON, ";"},
		{token.ASTERISK, "*"},
		{token.SLASH, "/"},
		{token.PERCENT, "%"},
		{token.MINUS, "-"},
		{token.LESS, "<"},
		{token.LESSEQUAL, "<="},
		{token.GREATER, ">"},
		{token.EQUAL, "="},
		{token.EOF, ""},
	}

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNextTokenIllegal(t *testing.T) {
	tests := map[string]string{
		"'unterminated": "unterminated",
		"12abc":         "12abc",
		"!":             "!",
		"#":             "#",
	}

	for input, literal := range tests {
		tok := New(input).NextToken()
		if tok.Type != token.ILLEGAL {
			t.Fatalf("NextToken(%q) type = %q, want ILLEGAL", input, tok.Type)
		}
		if tok.Literal != literal {
			t.Fatalf("NextToken(%q) literal = %q, want %q", input, tok.Literal, literal)
		}
	}
}

func TestTokenPositions(t *testing.T) {
	l := New("SELECT  'a'")

	if tok := l.NextToken(); tok.Pos != 0 {
		t.Fatalf("first token pos = %d, want 0", tok.Pos)
	}
	if tok := l.NextToken(); tok.Pos != 8 {
		t.Fatalf("second token pos = %d, want 8", tok.Pos)
	}
}
