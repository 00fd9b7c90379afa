package token

const (
	ILLEGAL TokenType = iota
	EOF

	// Identifiers + literals
	IDENT
	INT
	DECIMAL
	STRING

	// Keywords
	SELECT
	FROM
	WHERE
	GROUP
	ORDER
	BY
	HAVING
	LIMIT
	AS
	ASC
	DESC
	AND
	OR
	NOT
	NULL
	TRUE
	FALSE
	EXPLAIN
	PLAN
	FOR

	// Delimiters
	COMMA
	SEMICOLON
	LPAREN
	RPAREN

	// Operators
	ASTERISK
	PLUS
	MINUS
	SLASH
	PERCENT
	EQUAL
	NOTEQUAL
	LESS
	LESSEQUAL
	GREATER
	GREATEREQUAL
)

type TokenType int

type Token struct {
	Type    TokenType
	Literal string

	// Pos is the rune offset of the token in the input.
	Pos int
}

var keywords = map[string]TokenType{
	"select":  SELECT,
	"from":    FROM,
	"where":   WHERE,
	"group":   GROUP,
	"order":   ORDER,
	"by":      BY,
	"having":  HAVING,
	"limit":   LIMIT,
	"as":      AS,
	"asc":     ASC,
	"desc":    DESC,
	"and":     AND,
	"or":      OR,
	"not":     NOT,
	"null":    NULL,
	"true":    TRUE,
	"false":   FALSE,
	"explain": EXPLAIN,
	"plan":    PLAN,
	"for":     FOR,
}

// LookupKeyword returns the keyword type of a lower-cased identifier.
func LookupKeyword(ident string) (TokenType, bool) {
	t, ok := keywords[ident]
	return t, ok
}

var names = map[TokenType]string{
	ILLEGAL:      "ILLEGAL",
	EOF:          "EOF",
	IDENT:        "identifier",
	INT:          "integer",
	DECIMAL:      "decimal",
	STRING:       "string",
	COMMA:        ",",
	SEMICOLON:    ";",
	LPAREN:       "(",
	RPAREN:       ")",
	ASTERISK:     "*",
	PLUS:         "+",
	MINUS:        "-",
	SLASH:        "/",
	PERCENT:      "%",
	EQUAL:        "=",
	NOTEQUAL:     "!=",
	LESS:         "<",
	LESSEQUAL:    "<=",
	GREATER:      ">",
	GREATEREQUAL: ">=",
}

func (t TokenType) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	for k, v := range keywords {
		if v == t {
			return k
		}
	}
	return "UNKNOWN"
}
