package ast

import (
	"strings"
)

// Expr is the interface that all nodes in the expression tree implement.
// It uses a private marker method so that only types defined in this
// package can be used as nodes, giving a closed "sum type". Consumers are
// expected to switch over every kind and fail on anything else.
type Expr interface {
	exprNode()
}

// LiteralKind is the intrinsic type of a literal as written in the query.
type LiteralKind uint8

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralString
	LiteralBool
)

// Literal is a constant value.
type Literal struct {
	Kind LiteralKind

	// Value holds an int64, float64, string or bool according to Kind.
	Value any

	// Text is the literal as written. For strings it is the unquoted value,
	// which is also the default output column name.
	Text string
}

func (*Literal) exprNode() {}

// ColumnRef references stored table data. The unqualified projection
// wildcard is represented as a ColumnRef named "*".
type ColumnRef struct {
	Name string
}

func (*ColumnRef) exprNode() {}

// FuncCall invokes a named function. Name is case-insensitive; operators are
// represented by their canonical function names (plus, equals, and, ...).
type FuncCall struct {
	Name string
	Args []Expr
}

func (*FuncCall) exprNode() {}

// Aliased gives Expr an explicit output name.
type Aliased struct {
	Expr  Expr
	Alias string
}

func (*Aliased) exprNode() {}

// Wildcard is the column reference produced by an unquoted `*` projection.
const Wildcard = "*"

func NewInt(v int64, text string) *Literal {
	return &Literal{Kind: LiteralInt, Value: v, Text: text}
}

func NewFloat(v float64, text string) *Literal {
	return &Literal{Kind: LiteralFloat, Value: v, Text: text}
}

func NewString(v string) *Literal {
	return &Literal{Kind: LiteralString, Value: v, Text: v}
}

func NewBool(v bool) *Literal {
	text := "false"
	if v {
		text = "true"
	}
	return &Literal{Kind: LiteralBool, Value: v, Text: text}
}

func NewCall(name string, args ...Expr) *FuncCall {
	return &FuncCall{Name: name, Args: args}
}

// Render returns the canonical source text of e. String literals are quoted
// so that a rendered call can be read back unambiguously; the result is used
// as the default output column name of function calls.
func Render(e Expr) string {
	var sb strings.Builder
	render(&sb, e)
	return sb.String()
}

func render(sb *strings.Builder, e Expr) {
	switch n := e.(type) {
	case *Literal:
		if n.Kind == LiteralString {
			sb.WriteByte('\'')
			sb.WriteString(strings.ReplaceAll(n.Text, "'", "''"))
			sb.WriteByte('\'')
			return
		}
		sb.WriteString(n.Text)
	case *ColumnRef:
		sb.WriteString(n.Name)
	case *FuncCall:
		sb.WriteString(n.Name)
		sb.WriteByte('(')
		for i, arg := range n.Args {
			if i > 0 {
				sb.WriteByte(',')
			}
			render(sb, arg)
		}
		sb.WriteByte(')')
	case *Aliased:
		render(sb, n.Expr)
		sb.WriteString(" AS ")
		sb.WriteString(n.Alias)
	case nil:
	}
}

// Walk calls fn for e and every expression nested in it, depth first. It
// stops as soon as fn returns false and reports whether the walk completed.
func Walk(e Expr, fn func(Expr) bool) bool {
	if e == nil {
		return true
	}
	if !fn(e) {
		return false
	}

	switch n := e.(type) {
	case *FuncCall:
		for _, arg := range n.Args {
			if !Walk(arg, fn) {
				return false
			}
		}
	case *Aliased:
		return Walk(n.Expr, fn)
	}

	return true
}
