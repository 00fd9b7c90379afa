package function

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thisisjab/pinotbroker/fault"
	"github.com/thisisjab/pinotbroker/querier"
)

func TestStringFunctions(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		fn       string
		args     []querier.Value
		expected querier.Value
	}{
		{"upper", []querier.Value{querier.StringValue("abc")}, querier.StringValue("ABC")},
		{"lower", []querier.Value{querier.StringValue("ABC")}, querier.StringValue("abc")},
		{"trim", []querier.Value{querier.StringValue("  abc ")}, querier.StringValue("abc")},
		{"reverse", []querier.Value{querier.StringValue("héllo")}, querier.StringValue("olléh")},
		{"length", []querier.Value{querier.StringValue("héllo")}, querier.LongValue(5)},
		{"concat", []querier.Value{querier.StringValue("a"), querier.LongValue(1), querier.BooleanValue(true)}, querier.StringValue("a1true")},
		{"substr", []querier.Value{querier.StringValue("hello"), querier.LongValue(1), querier.LongValue(3)}, querier.StringValue("el")},
		{"substr", []querier.Value{querier.StringValue("hello"), querier.LongValue(2)}, querier.StringValue("llo")},
		{"substr", []querier.Value{querier.StringValue("hello"), querier.LongValue(2), querier.LongValue(-1)}, querier.StringValue("llo")},
	}

	for _, tt := range tests {
		v, err := r.Call(Env{}, tt.fn, tt.args)
		require.NoError(t, err, tt.fn)
		assert.True(t, tt.expected.Equal(v), "%s: got %s", tt.fn, v)
	}
}

func TestSubstrOutOfRange(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Call(Env{}, "substr", []querier.Value{querier.StringValue("abc"), querier.LongValue(2), querier.LongValue(10)})
	require.Error(t, err)
	assert.Equal(t, fault.FunctionEvaluationCode, fault.CodeOf(err))
}

func TestComparisons(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		fn       string
		a, b     querier.Value
		expected bool
	}{
		{"equals", querier.LongValue(1), querier.DoubleValue(1), true},
		{"equals", querier.StringValue("1"), querier.LongValue(1), true},
		{"not_equals", querier.StringValue("a"), querier.StringValue("b"), true},
		{"less_than", querier.StringValue("a"), querier.StringValue("b"), true},
		{"greater_than", querier.LongValue(3), querier.IntValue(2), true},
		{"less_than_or_equal", querier.LongValue(2), querier.LongValue(2), true},
		{"greater_than_or_equal", querier.BooleanValue(false), querier.BooleanValue(true), false},
	}

	for _, tt := range tests {
		v, err := r.Call(Env{}, tt.fn, []querier.Value{tt.a, tt.b})
		require.NoError(t, err, tt.fn)
		assert.Equal(t, tt.expected, v.Bool(), "%s(%s,%s)", tt.fn, tt.a, tt.b)
	}

	_, err := r.Call(Env{}, "equals", []querier.Value{querier.StringValue("x"), querier.LongValue(1)})
	require.Error(t, err)
	assert.Equal(t, fault.ArityOrTypeCode, fault.CodeOf(err))
}

func TestLogic(t *testing.T) {
	r := newTestRegistry(t)
	tr, fa := querier.BooleanValue(true), querier.BooleanValue(false)

	v, err := r.Call(Env{}, "and", []querier.Value{tr, tr, fa})
	require.NoError(t, err)
	assert.False(t, v.Bool())

	v, err = r.Call(Env{}, "or", []querier.Value{fa, tr})
	require.NoError(t, err)
	assert.True(t, v.Bool())

	v, err = r.Call(Env{}, "not", []querier.Value{fa})
	require.NoError(t, err)
	assert.True(t, v.Bool())
}
