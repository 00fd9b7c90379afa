package querier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thisisjab/pinotbroker/querier/ast"
)

type stubFolder map[string]Value

func (f stubFolder) Fold(e ast.Expr) (Value, error) {
	return f[ast.Render(e)], nil
}

func col(name string) *ast.ColumnRef {
	return &ast.ColumnRef{Name: name}
}

func TestSQLQueryBuilderBuild(t *testing.T) {
	tests := []struct {
		name  string
		query *ast.Query
		sql   string
		args  []any
	}{
		{
			name:  "wildcard",
			query: &ast.Query{Select: []ast.Expr{col(ast.Wildcard)}, Table: "logs"},
			sql:   "SELECT * FROM logs LIMIT 10",
		},
		{
			name: "filter and limit",
			query: &ast.Query{
				Select: []ast.Expr{col("a"), &ast.Aliased{Expr: ast.NewCall("upper", col("b")), Alias: "ub"}},
				Table:  "logs",
				Where: ast.NewCall("and",
					ast.NewCall("equals", col("level"), ast.NewString("ERROR")),
					ast.NewCall("not", ast.NewCall("less_than", col("n"), ast.NewInt(3, "3")))),
				Limit: 5,
			},
			sql:  "SELECT a, upper(b) AS ub FROM logs WHERE ((level = ?) AND NOT ((n < ?))) LIMIT 5",
			args: []any{"ERROR", int64(3)},
		},
		{
			name: "aggregation",
			query: &ast.Query{
				Select:  []ast.Expr{col("source"), ast.NewCall("count", col(ast.Wildcard))},
				Table:   "logs",
				GroupBy: []ast.Expr{col("source")},
				Having:  ast.NewCall("greater_than", ast.NewCall("count", col(ast.Wildcard)), ast.NewInt(10, "10")),
				OrderBy: []ast.OrderByItem{{Expr: col("source"), Desc: true}, {Expr: col("x")}},
			},
			sql:  "SELECT source, count(*) FROM logs GROUP BY source HAVING (count(*) > ?) ORDER BY source DESC, x ASC LIMIT 10",
			args: []any{int64(10)},
		},
		{
			name: "explain",
			query: &ast.Query{
				Select:    []ast.Expr{ast.NewCall("distinctCount", col("user")), ast.NewCall("toEpochSeconds", col("ts"))},
				Table:     "events",
				IsExplain: true,
			},
			sql: "EXPLAIN SELECT uniqExact(user), intDiv(ts, 1000) FROM events LIMIT 10",
		},
	}

	b := NewSQLQueryBuilder(SQLOptions{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := b.Build(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, res.Query)
			assert.Equal(t, tt.args, res.Args)
		})
	}
}

func TestSQLQueryBuilderFolds(t *testing.T) {
	b := NewSQLQueryBuilder(SQLOptions{
		Folder: stubFolder{"ago('PT1H')": LongValue(1000), "plus(1,2)": LongValue(3)},
	})

	res, err := b.Build(&ast.Query{
		Select: []ast.Expr{col("a"), &ast.Aliased{Expr: ast.NewCall("plus", ast.NewInt(1, "1"), ast.NewInt(2, "2")), Alias: "three"}},
		Table:  "logs",
		Where:  ast.NewCall("greater_than", col("ts"), ast.NewCall("ago", ast.NewString("PT1H"))),
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT a, ? AS three FROM logs WHERE (ts > ?) LIMIT 10", res.Query)
	assert.Equal(t, []any{int64(3), int64(1000)}, res.Args)
}

func TestSQLQueryBuilderErrors(t *testing.T) {
	b := NewSQLQueryBuilder(SQLOptions{AllowedTables: []string{"logs"}})

	tests := map[string]*ast.Query{
		"no table":          {Select: []ast.Expr{col("a")}},
		"table not allowed": {Select: []ast.Expr{col("a")}, Table: "users"},
		"bad column":        {Select: []ast.Expr{col("a; DROP TABLE logs")}, Table: "logs"},
		"bad alias":         {Select: []ast.Expr{&ast.Aliased{Expr: col("a"), Alias: "x y"}}, Table: "logs"},
		"unknown function":  {Select: []ast.Expr{ast.NewCall("sleep", col("a"))}, Table: "logs"},
		"operator arity":    {Select: []ast.Expr{ast.NewCall("plus", col("a"))}, Table: "logs"},
		"negate arity":      {Select: []ast.Expr{ast.NewCall("negate", col("a"), col("b"))}, Table: "logs"},
	}

	for name, q := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := b.Build(q)
			require.Error(t, err)
		})
	}
}
