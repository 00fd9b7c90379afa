package broker

import "github.com/thisisjab/pinotbroker/querier/ast"

// IsLiteralOnly reports whether q can be answered without reading any
// stored data. Any column reference in the select list, filter, grouping,
// ordering or having clause disqualifies the whole query; the table name
// does not.
func IsLiteralOnly(q *ast.Query) bool {
	for _, e := range q.Exprs() {
		if !isLiteralOnly(e) {
			return false
		}
	}
	return true
}

func isLiteralOnly(e ast.Expr) bool {
	return ast.Walk(e, func(n ast.Expr) bool {
		switch n.(type) {
		case *ast.ColumnRef:
			return false
		case *ast.Literal, *ast.FuncCall, *ast.Aliased:
			return true
		default:
			return false
		}
	})
}
