package ast

import (
	"fmt"

	"github.com/thisisjab/pinotbroker/fault"
)

// Query is a compiled SELECT statement. It is produced once by the parser
// and treated as read-only afterwards.
type Query struct {
	// Select holds the projected expressions in output order.
	Select []Expr

	// Table is the FROM table, empty when the query has none.
	Table string

	Where   Expr
	GroupBy []Expr
	OrderBy []OrderByItem
	Having  Expr

	// Limit is zero when no LIMIT clause was given.
	Limit int

	// IsExplain is set for EXPLAIN PLAN FOR statements.
	IsExplain bool
}

// OrderByItem defines a single sorting criterion.
type OrderByItem struct {
	Expr Expr
	Desc bool
}

// Exprs returns every top level expression of the query in clause order:
// select items, filter, grouping keys, ordering keys and having.
func (q *Query) Exprs() []Expr {
	exprs := make([]Expr, 0, len(q.Select)+len(q.GroupBy)+len(q.OrderBy)+2)
	exprs = append(exprs, q.Select...)
	if q.Where != nil {
		exprs = append(exprs, q.Where)
	}
	exprs = append(exprs, q.GroupBy...)
	for _, o := range q.OrderBy {
		exprs = append(exprs, o.Expr)
	}
	if q.Having != nil {
		exprs = append(exprs, q.Having)
	}
	return exprs
}

func (q *Query) Validate() error {
	const LimitMax = 1_000_000

	if len(q.Select) == 0 {
		return fault.New(fault.BadInputCode, "").WithMetadata(fault.FieldErrorsMetadata{"select": []string{"At least one select item is required."}})
	}

	if q.Limit < 0 || q.Limit > LimitMax {
		return fault.New(fault.BadInputCode, "").WithMetadata(fault.FieldErrorsMetadata{"limit": []string{fmt.Sprintf("Value must be between 0 and %d.", LimitMax)}})
	}

	return nil
}
