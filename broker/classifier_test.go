package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thisisjab/pinotbroker/querier/ast"
	"github.com/thisisjab/pinotbroker/querier/parser"
)

func TestIsLiteralOnly(t *testing.T) {
	tests := []struct {
		sql      string
		expected bool
	}{
		{"SELECT 1", true},
		{"SELECT '*'", true},
		{"SELECT *", false},
		{"SELECT * FROM foo", false},
		{"SELECT 1, 'foo' FROM myTable", true},
		{"SELECT now(), ago('PT1H'), encodeUrl('a b')", true},
		{"SELECT frobnicate(1, 'x')", true},
		{"SELECT 6+8 AS addition", true},
		{"SELECT foo", false},
		{"SELECT upper(foo)", false},
		{"SELECT concat('a', lower(upper(foo)))", false},
		{"SELECT foo AS bar", false},
		{"SELECT 1 FROM t WHERE bar = encodeUrl('x')", false},
		{"SELECT count(*) FROM t WHERE bar > ago('PT1H')", false},
		{"SELECT 1 FROM t WHERE 1 = 1", true},
		{"SELECT 1 FROM t GROUP BY foo", false},
		{"SELECT 1 FROM t ORDER BY foo DESC", false},
		{"SELECT 1 FROM t GROUP BY 1 HAVING sum(foo) > 1", false},
		{"SELECT 1 FROM t ORDER BY 1", true},
		{"EXPLAIN PLAN FOR SELECT now()", true},
		{"EXPLAIN PLAN FOR SELECT foo FROM t", false},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			q, err := parser.Parse(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, IsLiteralOnly(q))
		})
	}
}

func TestIsLiteralOnlyDoesNotMutate(t *testing.T) {
	q := &ast.Query{
		Select: []ast.Expr{ast.NewCall("plus", ast.NewInt(1, "1"), ast.NewInt(2, "2"))},
		Table:  "t",
	}
	before := ast.Render(q.Select[0])

	assert.True(t, IsLiteralOnly(q))
	assert.Equal(t, before, ast.Render(q.Select[0]))
}
