package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thisisjab/pinotbroker/fault"
	"github.com/thisisjab/pinotbroker/querier/ast"
	"github.com/thisisjab/pinotbroker/querier/lexer"
	"github.com/thisisjab/pinotbroker/querier/token"
)

func TestParseSelectList(t *testing.T) {
	tests := map[string][]ast.Expr{
		"SELECT 1": {
			ast.NewInt(1, "1"),
		},
		"SELECT 1, '2', 3.5": {
			ast.NewInt(1, "1"),
			ast.NewString("2"),
			ast.NewFloat(3.5, "3.5"),
		},
		"SELECT *": {
			&ast.ColumnRef{Name: "*"},
		},
		"SELECT '*'": {
			ast.NewString("*"),
		},
		"select -5, true, FALSE": {
			ast.NewInt(-5, "-5"),
			ast.NewBool(true),
			ast.NewBool(false),
		},
		"SELECT now() AS currentTs, ago('PT1H') oneHourAgo": {
			&ast.Aliased{Expr: &ast.FuncCall{Name: "now"}, Alias: "currentTs"},
			&ast.Aliased{Expr: ast.NewCall("ago", ast.NewString("PT1H")), Alias: "oneHourAgo"},
		},
		"SELECT 6+8*2 as addition": {
			&ast.Aliased{
				Expr:  ast.NewCall("plus", ast.NewInt(6, "6"), ast.NewCall("times", ast.NewInt(8, "8"), ast.NewInt(2, "2"))),
				Alias: "addition",
			},
		},
		"SELECT (6+8)*2": {
			ast.NewCall("times", ast.NewCall("plus", ast.NewInt(6, "6"), ast.NewInt(8, "8")), ast.NewInt(2, "2")),
		},
		"SELECT 1-2-3": {
			ast.NewCall("minus", ast.NewCall("minus", ast.NewInt(1, "1"), ast.NewInt(2, "2")), ast.NewInt(3, "3")),
		},
		"SELECT -(1+2)": {
			ast.NewCall("negate", ast.NewCall("plus", ast.NewInt(1, "1"), ast.NewInt(2, "2"))),
		},
		"SELECT NOT 1 < 2 AND true OR false": {
			ast.NewCall("or",
				ast.NewCall("and",
					ast.NewCall("not", ast.NewCall("less_than", ast.NewInt(1, "1"), ast.NewInt(2, "2"))),
					ast.NewBool(true)),
				ast.NewBool(false)),
		},
		"SELECT count(*)": {
			ast.NewCall("count", &ast.ColumnRef{Name: "*"}),
		},
		"SELECT fromDateTime('2020-01-01 UTC', 'yyyy-MM-dd z')": {
			ast.NewCall("fromDateTime", ast.NewString("2020-01-01 UTC"), ast.NewString("yyyy-MM-dd z")),
		},
	}

	for input, expected := range tests {
		t.Run(input, func(t *testing.T) {
			actual, err := Parse(input)
			require.NoError(t, err)
			assert.Equal(t, expected, actual.Select)
			assert.False(t, actual.IsExplain)
		})
	}
}

func TestParseClauses(t *testing.T) {
	q, err := Parse("SELECT count(*) FROM foo WHERE bar > ago('PT1H') AND baz = 'x' " +
		"GROUP BY baz HAVING count(*) > 10 ORDER BY baz DESC, qux LIMIT 5;")
	require.NoError(t, err)

	assert.Equal(t, "foo", q.Table)
	assert.Equal(t,
		ast.NewCall("and",
			ast.NewCall("greater_than", &ast.ColumnRef{Name: "bar"}, ast.NewCall("ago", ast.NewString("PT1H"))),
			ast.NewCall("equals", &ast.ColumnRef{Name: "baz"}, ast.NewString("x"))),
		q.Where)
	assert.Equal(t, []ast.Expr{&ast.ColumnRef{Name: "baz"}}, q.GroupBy)
	assert.Equal(t,
		ast.NewCall("greater_than", ast.NewCall("count", &ast.ColumnRef{Name: "*"}), ast.NewInt(10, "10")),
		q.Having)
	assert.Equal(t, []ast.OrderByItem{
		{Expr: &ast.ColumnRef{Name: "baz"}, Desc: true},
		{Expr: &ast.ColumnRef{Name: "qux"}},
	}, q.OrderBy)
	assert.Equal(t, 5, q.Limit)
}

func TestParseExplain(t *testing.T) {
	q, err := Parse("EXPLAIN PLAN FOR SELECT 1.5, 'test'")
	require.NoError(t, err)

	assert.True(t, q.IsExplain)
	assert.Equal(t, []ast.Expr{ast.NewFloat(1.5, "1.5"), ast.NewString("test")}, q.Select)
}

func TestParseEndsAtEOF(t *testing.T) {
	p := New(lexer.New("SELECT 'a' FROM myTable"))

	_, err := p.ParseQuery()
	require.NoError(t, err)

	if p.curToken.Type != token.EOF {
		t.Fatalf("Expected EOF token, got %v", p.curToken)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"SELECT",
		"SELECT 1,",
		"SELECT 1 FROM",
		"SELECT foo(1, 2",
		"SELECT 'unterminated",
		"SELECT NULL",
		"EXPLAIN SELECT 1",
		"DELETE FROM foo",
		"SELECT 1 garbage garbage",
		"SELECT 1 LIMIT x",
		"SELECT 99999999999999999999",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)
			assert.Equal(t, fault.BadInputCode, fault.CodeOf(err))
		})
	}
}
