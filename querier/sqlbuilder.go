package querier

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/thisisjab/pinotbroker/querier/ast"
)

// Folder reduces literal-only expressions to a single value. The broker's
// compile-time evaluator implements it.
type Folder interface {
	Fold(e ast.Expr) (Value, error)
}

// SQLOptions holds configuration for the SQL query builder.
type SQLOptions struct {
	// AllowedTables is a whitelist of table names permitted in FROM clauses.
	// If empty, any name matching IdentifierRegex is accepted.
	AllowedTables []string

	// IdentifierRegex validates table, column and alias names to prevent SQL
	// injection. If nil, defaultIdentifierRegex is used.
	IdentifierRegex *regexp.Regexp

	// DefaultLimit is applied when the query has no LIMIT. Defaults to 10.
	DefaultLimit int

	// Folder, when set, collapses literal-only sub-expressions into bound
	// arguments before rendering.
	Folder Folder
}

var defaultIdentifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Operators rendered infix. Anything else is looked up in backendFunctions.
var infixOperators = map[string]string{
	"plus":                  "+",
	"minus":                 "-",
	"times":                 "*",
	"divide":                "/",
	"mod":                   "%",
	"equals":                "=",
	"not_equals":            "!=",
	"less_than":             "<",
	"less_than_or_equal":    "<=",
	"greater_than":          ">",
	"greater_than_or_equal": ">=",
	"and":                   "AND",
	"or":                    "OR",
}

// backendFunctions maps broker function names to backend SQL functions that
// may be pushed down with column arguments.
var backendFunctions = map[string]string{
	"count":         "count",
	"sum":           "sum",
	"min":           "min",
	"max":           "max",
	"avg":           "avg",
	"distinctcount": "uniqExact",
	"upper":         "upper",
	"lower":         "lower",
	"length":        "length",
	"concat":        "concat",
	"trim":          "trimBoth",
	"reverse":       "reverse",
}

// SQLQueryBuilder is a generic SQL query builder that renders a compiled
// query into backend SQL with positional arguments.
type SQLQueryBuilder struct {
	opts SQLOptions
}

// NewSQLQueryBuilder creates a new SQL query builder with the given options.
func NewSQLQueryBuilder(opts SQLOptions) *SQLQueryBuilder {
	if opts.IdentifierRegex == nil {
		opts.IdentifierRegex = defaultIdentifierRegex
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 10
	}
	return &SQLQueryBuilder{opts: opts}
}

// BuildResult holds the generated SQL query and its arguments.
type BuildResult struct {
	Query string
	Args  []any
}

// Build builds a complete SELECT query. EXPLAIN requests are rendered as
// backend EXPLAIN statements.
func (b *SQLQueryBuilder) Build(q *ast.Query) (BuildResult, error) {
	var args []any
	var sb strings.Builder

	if q.IsExplain {
		sb.WriteString("EXPLAIN ")
	}

	sb.WriteString("SELECT ")
	for i, item := range q.Select {
		if i > 0 {
			sb.WriteString(", ")
		}
		if ref, ok := item.(*ast.ColumnRef); ok && ref.Name == ast.Wildcard {
			sb.WriteString("*")
			continue
		}
		s, a, err := b.renderExpr(item)
		if err != nil {
			return BuildResult{}, fmt.Errorf("failed to build select list: %w", err)
		}
		sb.WriteString(s)
		args = append(args, a...)
	}

	if q.Table == "" {
		return BuildResult{}, fmt.Errorf("query without FROM cannot be sent to the backend")
	}
	if err := b.validateTable(q.Table); err != nil {
		return BuildResult{}, err
	}
	sb.WriteString(" FROM ")
	sb.WriteString(q.Table)

	if q.Where != nil {
		s, a, err := b.renderExpr(q.Where)
		if err != nil {
			return BuildResult{}, fmt.Errorf("failed to build where clause: %w", err)
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(s)
		args = append(args, a...)
	}

	if len(q.GroupBy) > 0 {
		parts := make([]string, 0, len(q.GroupBy))
		for _, g := range q.GroupBy {
			s, a, err := b.renderExpr(g)
			if err != nil {
				return BuildResult{}, fmt.Errorf("failed to build group by clause: %w", err)
			}
			parts = append(parts, s)
			args = append(args, a...)
		}
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}

	if q.Having != nil {
		s, a, err := b.renderExpr(q.Having)
		if err != nil {
			return BuildResult{}, fmt.Errorf("failed to build having clause: %w", err)
		}
		sb.WriteString(" HAVING ")
		sb.WriteString(s)
		args = append(args, a...)
	}

	if len(q.OrderBy) > 0 {
		parts := make([]string, 0, len(q.OrderBy))
		for _, o := range q.OrderBy {
			s, a, err := b.renderExpr(o.Expr)
			if err != nil {
				return BuildResult{}, fmt.Errorf("failed to build order by clause: %w", err)
			}
			direction := "ASC"
			if o.Desc {
				direction = "DESC"
			}
			parts = append(parts, fmt.Sprintf("%s %s", s, direction))
			args = append(args, a...)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}

	limit := q.Limit
	if limit == 0 {
		limit = b.opts.DefaultLimit
	}
	fmt.Fprintf(&sb, " LIMIT %d", limit)

	return BuildResult{Query: sb.String(), Args: args}, nil
}

func (b *SQLQueryBuilder) validateTable(name string) error {
	if len(b.opts.AllowedTables) > 0 && !slices.Contains(b.opts.AllowedTables, name) {
		return fmt.Errorf("table `%s` is not allowed", name)
	}
	if !b.opts.IdentifierRegex.MatchString(name) {
		return fmt.Errorf("invalid table name: %s", name)
	}
	return nil
}

// renderExpr recursively traverses the expression tree and generates SQL.
func (b *SQLQueryBuilder) renderExpr(e ast.Expr) (string, []any, error) {
	if b.opts.Folder != nil && hasNoColumns(e) {
		if _, isAlias := e.(*ast.Aliased); !isAlias {
			v, err := b.opts.Folder.Fold(e)
			if err != nil {
				return "", nil, err
			}
			return "?", []any{v.Any()}, nil
		}
	}

	switch n := e.(type) {
	case *ast.Literal:
		return "?", []any{n.Value}, nil

	case *ast.ColumnRef:
		if !b.opts.IdentifierRegex.MatchString(n.Name) {
			return "", nil, fmt.Errorf("invalid column name: %s", n.Name)
		}
		return n.Name, nil, nil

	case *ast.Aliased:
		if !b.opts.IdentifierRegex.MatchString(n.Alias) {
			return "", nil, fmt.Errorf("invalid alias: %s", n.Alias)
		}
		s, args, err := b.renderExpr(n.Expr)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%s AS %s", s, n.Alias), args, nil

	case *ast.FuncCall:
		return b.renderCall(n)

	default:
		return "", nil, fmt.Errorf("unknown expression type: %T", e)
	}
}

func (b *SQLQueryBuilder) renderCall(n *ast.FuncCall) (string, []any, error) {
	name := strings.ToLower(n.Name)

	if name == "count" && len(n.Args) == 1 {
		if ref, ok := n.Args[0].(*ast.ColumnRef); ok && ref.Name == ast.Wildcard {
			return "count(*)", nil, nil
		}
	}

	parts := make([]string, 0, len(n.Args))
	var args []any
	for _, arg := range n.Args {
		s, a, err := b.renderExpr(arg)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, s)
		args = append(args, a...)
	}

	if op, ok := infixOperators[name]; ok {
		if len(parts) != 2 {
			return "", nil, fmt.Errorf("operator %s expects 2 operands, got %d", name, len(parts))
		}
		// Wrap in parentheses to ensure correct precedence when the database
		// evaluates the full string.
		return fmt.Sprintf("(%s %s %s)", parts[0], op, parts[1]), args, nil
	}

	switch name {
	case "not":
		if len(parts) != 1 {
			return "", nil, fmt.Errorf("operator not expects 1 operand, got %d", len(parts))
		}
		return fmt.Sprintf("NOT (%s)", parts[0]), args, nil
	case "negate":
		if len(parts) != 1 {
			return "", nil, fmt.Errorf("operator negate expects 1 operand, got %d", len(parts))
		}
		return fmt.Sprintf("-(%s)", parts[0]), args, nil
	case "toepochseconds":
		if len(parts) != 1 {
			return "", nil, fmt.Errorf("function toEpochSeconds expects 1 argument, got %d", len(parts))
		}
		return fmt.Sprintf("intDiv(%s, 1000)", parts[0]), args, nil
	}

	fn, ok := backendFunctions[name]
	if !ok {
		return "", nil, fmt.Errorf("function `%s` cannot be pushed down to the backend", n.Name)
	}

	return fmt.Sprintf("%s(%s)", fn, strings.Join(parts, ", ")), args, nil
}

func hasNoColumns(e ast.Expr) bool {
	return ast.Walk(e, func(n ast.Expr) bool {
		_, isColumn := n.(*ast.ColumnRef)
		return !isColumn
	})
}
