package lexer

import (
	"strings"

	"github.com/thisisjab/pinotbroker/querier/token"
)

type Lexer struct {
	input   []rune
	pos     int  // position of the current character in the input string
	readPos int  // position of the next character to be read
	char    rune // current character being processed
}

func New(input string) *Lexer {
	l := &Lexer{[]rune(input), 0, 0, 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.char = 0
	} else {
		l.char = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	} else {
		return l.input[l.readPos]
	}
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()
	start := l.pos

	switch l.char {
	case '=':
		tok = token.Token{Type: token.EQUAL, Literal: "="}
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok = token.Token{Type: token.LESSEQUAL, Literal: "<="}
		case '>':
			l.readChar()
			tok = token.Token{Type: token.NOTEQUAL, Literal: "<>"}
		default:
			tok = token.Token{Type: token.LESS, Literal: "<"}
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.GREATEREQUAL, Literal: ">="}
		} else {
			tok = token.Token{Type: token.GREATER, Literal: ">"}
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.NOTEQUAL, Literal: "!="}
		} else {
			tok = token.Token{Type: token.ILLEGAL, Literal: "!"}
		}
	case ',':
		tok = token.Token{Type: token.COMMA, Literal: ","}
	case ';':
		tok = token.Token{Type: token.SEMICOLON, Literal: ";"}
	case '(':
		tok = token.Token{Type: token.LPAREN, Literal: "("}
	case ')':
		tok = token.Token{Type: token.RPAREN, Literal: ")"}
	case '*':
		tok = token.Token{Type: token.ASTERISK, Literal: "*"}
	case '+':
		tok = token.Token{Type: token.PLUS, Literal: "+"}
	case '-':
		tok = token.Token{Type: token.MINUS, Literal: "-"}
	case '/':
		tok = token.Token{Type: token.SLASH, Literal: "/"}
	case '%':
		tok = token.Token{Type: token.PERCENT, Literal: "%"}
	case 0:
		tok = token.Token{Type: token.EOF, Literal: ""}
	case '\'':
		lit, ok := l.readQuoted('\'')
		if !ok {
			return token.Token{Type: token.ILLEGAL, Literal: lit, Pos: start}
		}
		tok = token.Token{Type: token.STRING, Literal: lit}
	case '"', '`':
		lit, ok := l.readQuoted(l.char)
		if !ok {
			return token.Token{Type: token.ILLEGAL, Literal: lit, Pos: start}
		}
		tok = token.Token{Type: token.IDENT, Literal: lit}
	default:
		if isLetter(l.char) {
			return l.readIdentifier()
		} else if isDigit(l.char) || (l.char == '.' && isDigit(l.peekChar())) {
			return l.readNumber()
		} else {
			tok = token.Token{Type: token.ILLEGAL, Literal: string(l.char)}
		}
	}

	tok.Pos = start
	l.readChar()
	return tok
}

func (l *Lexer) readIdentifier() token.Token {
	pos := l.pos

	for isLetter(l.char) || isDigit(l.char) || l.char == '.' {
		l.readChar()
	}

	literal := string(l.input[pos:l.pos])
	if t, ok := token.LookupKeyword(strings.ToLower(literal)); ok {
		return token.Token{Type: t, Literal: literal, Pos: pos}
	}

	return token.Token{Type: token.IDENT, Literal: literal, Pos: pos}
}

func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_' || r == '$'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func (l *Lexer) skipWhitespace() {
	for isWhitespace(l.char) {
		l.readChar()
	}
}

// readNumber reads an integer or decimal literal, including an optional
// exponent (1.5e3). A trailing letter makes the whole token ILLEGAL.
func (l *Lexer) readNumber() token.Token {
	pos := l.pos
	isDecimal := false

	for isDigit(l.char) {
		l.readChar()
	}

	if l.char == '.' {
		isDecimal = true
		l.readChar()
		for isDigit(l.char) {
			l.readChar()
		}
	}

	if l.char == 'e' || l.char == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '+' || next == '-' {
			isDecimal = true
			l.readChar()
			if l.char == '+' || l.char == '-' {
				l.readChar()
			}
			for isDigit(l.char) {
				l.readChar()
			}
		}
	}

	if isLetter(l.char) {
		for isLetter(l.char) || isDigit(l.char) {
			l.readChar()
		}
		return token.Token{Type: token.ILLEGAL, Literal: string(l.input[pos:l.pos]), Pos: pos}
	}

	literal := string(l.input[pos:l.pos])
	if isDecimal {
		return token.Token{Type: token.DECIMAL, Literal: literal, Pos: pos}
	}
	return token.Token{Type: token.INT, Literal: literal, Pos: pos}
}

// readQuoted reads a quoted run starting at the opening quote. A doubled
// quote inside the run stands for one quote character. The boolean is false
// when the input ends before the closing quote.
func (l *Lexer) readQuoted(quote rune) (string, bool) {
	var sb strings.Builder

	for {
		l.readChar()
		switch l.char {
		case 0:
			return sb.String(), false
		case quote:
			if l.peekChar() != quote {
				return sb.String(), true
			}
			l.readChar()
		}
		sb.WriteRune(l.char)
	}
}
