package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thisisjab/pinotbroker/fault"
	"github.com/thisisjab/pinotbroker/querier/ast"
	"github.com/thisisjab/pinotbroker/querier/lexer"
	"github.com/thisisjab/pinotbroker/querier/token"
)

const (
	_ int = iota
	LOWEST
	OR
	AND
	NOT
	COMPARE
	SUM
	PRODUCT
	PREFIX
)

var precedences = map[token.TokenType]int{
	token.OR:           OR,
	token.AND:          AND,
	token.EQUAL:        COMPARE,
	token.NOTEQUAL:     COMPARE,
	token.LESS:         COMPARE,
	token.LESSEQUAL:    COMPARE,
	token.GREATER:      COMPARE,
	token.GREATEREQUAL: COMPARE,
	token.PLUS:         SUM,
	token.MINUS:        SUM,
	token.ASTERISK:     PRODUCT,
	token.SLASH:        PRODUCT,
	token.PERCENT:      PRODUCT,
}

// Operators are folded into function calls with these canonical names.
var infixFunctions = map[token.TokenType]string{
	token.OR:           "or",
	token.AND:          "and",
	token.EQUAL:        "equals",
	token.NOTEQUAL:     "not_equals",
	token.LESS:         "less_than",
	token.LESSEQUAL:    "less_than_or_equal",
	token.GREATER:      "greater_than",
	token.GREATEREQUAL: "greater_than_or_equal",
	token.PLUS:         "plus",
	token.MINUS:        "minus",
	token.ASTERISK:     "times",
	token.SLASH:        "divide",
	token.PERCENT:      "mod",
}

type Parser struct {
	l         *lexer.Lexer
	curToken  token.Token
	peekToken token.Token
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l: l,
	}

	p.nextToken()
	p.nextToken()

	return p
}

// Parse compiles a single SQL SELECT statement.
func Parse(sql string) (*ast.Query, error) {
	return New(lexer.New(sql)).ParseQuery()
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

// expectPeek advances when the next token has type t.
func (p *Parser) expectPeek(t token.TokenType) error {
	if !p.peekTokenIs(t) {
		return p.errorf(p.peekToken, "expected %s, got %q", t, p.peekToken.Literal)
	}
	p.nextToken()
	return nil
}

func (p *Parser) errorf(tok token.Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if tok.Type == token.ILLEGAL {
		msg = fmt.Sprintf("illegal token %q", tok.Literal)
	}
	if tok.Type == token.EOF {
		msg += " at end of input"
	}
	return fault.Newf(fault.BadInputCode, "syntax error at position %d: %s", tok.Pos, msg)
}

// ParseQuery parses the whole input. On return the current token is EOF.
func (p *Parser) ParseQuery() (*ast.Query, error) {
	q := &ast.Query{}

	if p.curTokenIs(token.EXPLAIN) {
		if err := p.expectPeek(token.PLAN); err != nil {
			return nil, err
		}
		if err := p.expectPeek(token.FOR); err != nil {
			return nil, err
		}
		p.nextToken()
		q.IsExplain = true
	}

	if !p.curTokenIs(token.SELECT) {
		return nil, p.errorf(p.curToken, "expected SELECT, got %q", p.curToken.Literal)
	}

	if err := p.parseSelectList(q); err != nil {
		return nil, err
	}

	if p.peekTokenIs(token.FROM) {
		p.nextToken()
		if err := p.expectPeek(token.IDENT); err != nil {
			return nil, err
		}
		q.Table = p.curToken.Literal
	}

	if p.peekTokenIs(token.WHERE) {
		p.nextToken()
		p.nextToken()
		where, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		q.Where = where
	}

	if p.peekTokenIs(token.GROUP) {
		p.nextToken()
		if err := p.expectPeek(token.BY); err != nil {
			return nil, err
		}
		p.nextToken()
		groupBy, err := p.parseExpressionList()
		if err != nil {
			return nil, err
		}
		q.GroupBy = groupBy
	}

	if p.peekTokenIs(token.HAVING) {
		p.nextToken()
		p.nextToken()
		having, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		q.Having = having
	}

	if p.peekTokenIs(token.ORDER) {
		p.nextToken()
		if err := p.expectPeek(token.BY); err != nil {
			return nil, err
		}
		if err := p.parseOrderBy(q); err != nil {
			return nil, err
		}
	}

	if p.peekTokenIs(token.LIMIT) {
		p.nextToken()
		if err := p.expectPeek(token.INT); err != nil {
			return nil, err
		}
		limit, err := strconv.Atoi(p.curToken.Literal)
		if err != nil {
			return nil, p.errorf(p.curToken, "invalid limit %q", p.curToken.Literal)
		}
		q.Limit = limit
	}

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}

	if !p.peekTokenIs(token.EOF) {
		return nil, p.errorf(p.peekToken, "unexpected %q", p.peekToken.Literal)
	}
	p.nextToken()

	if err := q.Validate(); err != nil {
		return nil, err
	}

	return q, nil
}

func (p *Parser) parseSelectList(q *ast.Query) error {
	for {
		p.nextToken()

		item, err := p.parseSelectItem()
		if err != nil {
			return err
		}
		q.Select = append(q.Select, item)

		if !p.peekTokenIs(token.COMMA) {
			return nil
		}
		p.nextToken()
	}
}

func (p *Parser) parseSelectItem() (ast.Expr, error) {
	if p.curTokenIs(token.ASTERISK) {
		return &ast.ColumnRef{Name: ast.Wildcard}, nil
	}

	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}

	switch {
	case p.peekTokenIs(token.AS):
		p.nextToken()
		if err := p.expectPeek(token.IDENT); err != nil {
			return nil, err
		}
		return &ast.Aliased{Expr: expr, Alias: p.curToken.Literal}, nil
	case p.peekTokenIs(token.IDENT):
		p.nextToken()
		return &ast.Aliased{Expr: expr, Alias: p.curToken.Literal}, nil
	}

	return expr, nil
}

func (p *Parser) parseOrderBy(q *ast.Query) error {
	for {
		p.nextToken()

		expr, err := p.parseExpression(LOWEST)
		if err != nil {
			return err
		}

		item := ast.OrderByItem{Expr: expr}
		switch {
		case p.peekTokenIs(token.DESC):
			p.nextToken()
			item.Desc = true
		case p.peekTokenIs(token.ASC):
			p.nextToken()
		}
		q.OrderBy = append(q.OrderBy, item)

		if !p.peekTokenIs(token.COMMA) {
			return nil
		}
		p.nextToken()
	}
}

// parseExpressionList parses a comma separated list starting at the current token.
func (p *Parser) parseExpressionList() ([]ast.Expr, error) {
	var exprs []ast.Expr

	for {
		expr, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)

		if !p.peekTokenIs(token.COMMA) {
			return exprs, nil
		}
		p.nextToken()
		p.nextToken()
	}
}

func (p *Parser) parseExpression(precedence int) (ast.Expr, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for precedence < p.peekPrecedence() {
		op := p.peekToken
		p.nextToken()
		p.nextToken()

		right, err := p.parseExpression(precedences[op.Type])
		if err != nil {
			return nil, err
		}
		left = ast.NewCall(infixFunctions[op.Type], left, right)
	}

	return left, nil
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) parsePrefix() (ast.Expr, error) {
	switch p.curToken.Type {
	case token.INT:
		v, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
		if err != nil {
			return nil, p.errorf(p.curToken, "integer out of range %q", p.curToken.Literal)
		}
		return ast.NewInt(v, p.curToken.Literal), nil

	case token.DECIMAL:
		v, err := strconv.ParseFloat(p.curToken.Literal, 64)
		if err != nil {
			return nil, p.errorf(p.curToken, "invalid number %q", p.curToken.Literal)
		}
		return ast.NewFloat(v, p.curToken.Literal), nil

	case token.STRING:
		return ast.NewString(p.curToken.Literal), nil

	case token.TRUE:
		return ast.NewBool(true), nil

	case token.FALSE:
		return ast.NewBool(false), nil

	case token.NULL:
		return nil, p.errorf(p.curToken, "NULL literals are not supported")

	case token.MINUS:
		return p.parseNegation()

	case token.NOT:
		p.nextToken()
		operand, err := p.parseExpression(NOT)
		if err != nil {
			return nil, err
		}
		return ast.NewCall("not", operand), nil

	case token.LPAREN:
		p.nextToken()
		expr, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		if err := p.expectPeek(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	case token.IDENT:
		if p.peekTokenIs(token.LPAREN) {
			return p.parseCall()
		}
		return &ast.ColumnRef{Name: p.curToken.Literal}, nil

	default:
		return nil, p.errorf(p.curToken, "unexpected %q", p.curToken.Literal)
	}
}

// parseNegation folds a minus sign directly in front of a numeric literal
// into the literal itself; any other operand becomes a negate call.
func (p *Parser) parseNegation() (ast.Expr, error) {
	switch p.peekToken.Type {
	case token.INT:
		p.nextToken()
		text := "-" + p.curToken.Literal
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, p.errorf(p.curToken, "integer out of range %q", text)
		}
		return ast.NewInt(v, text), nil
	case token.DECIMAL:
		p.nextToken()
		text := "-" + p.curToken.Literal
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.errorf(p.curToken, "invalid number %q", text)
		}
		return ast.NewFloat(v, text), nil
	}

	p.nextToken()
	operand, err := p.parseExpression(PREFIX)
	if err != nil {
		return nil, err
	}
	return ast.NewCall("negate", operand), nil
}

func (p *Parser) parseCall() (ast.Expr, error) {
	call := &ast.FuncCall{Name: p.curToken.Literal}
	p.nextToken() // (

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return call, nil
	}

	// count(*) style argument
	if p.peekTokenIs(token.ASTERISK) {
		p.nextToken()
		call.Args = []ast.Expr{&ast.ColumnRef{Name: ast.Wildcard}}
		if err := p.expectPeek(token.RPAREN); err != nil {
			return nil, err
		}
		return call, nil
	}

	p.nextToken()
	args, err := p.parseExpressionList()
	if err != nil {
		return nil, err
	}
	call.Args = args

	if err := p.expectPeek(token.RPAREN); err != nil {
		return nil, fmt.Errorf("in call to %s: %w", strings.ToLower(call.Name), err)
	}

	return call, nil
}
