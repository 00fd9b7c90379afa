package function

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thisisjab/pinotbroker/fault"
	"github.com/thisisjab/pinotbroker/querier"
)

func TestArithmetic(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		fn       string
		a, b     querier.Value
		expected querier.Value
	}{
		{"plus", querier.LongValue(6), querier.LongValue(8), querier.LongValue(14)},
		{"minus", querier.LongValue(6), querier.LongValue(8), querier.LongValue(-2)},
		{"times", querier.LongValue(6), querier.LongValue(8), querier.LongValue(48)},
		{"divide", querier.LongValue(9), querier.LongValue(2), querier.LongValue(4)},
		{"mod", querier.LongValue(9), querier.LongValue(4), querier.LongValue(1)},
		{"plus", querier.IntValue(1), querier.IntValue(2), querier.IntValue(3)},
		{"plus", querier.IntValue(1), querier.LongValue(2), querier.LongValue(3)},
		{"plus", querier.LongValue(1), querier.DoubleValue(0.5), querier.DoubleValue(1.5)},
		{"times", querier.FloatValue(1.5), querier.IntValue(2), querier.FloatValue(3)},
		{"divide", querier.DoubleValue(9), querier.LongValue(2), querier.DoubleValue(4.5)},
		{"mod", querier.DoubleValue(7.5), querier.LongValue(2), querier.DoubleValue(1.5)},
	}

	for _, tt := range tests {
		t.Run(tt.fn+"("+tt.a.String()+","+tt.b.String()+")", func(t *testing.T) {
			v, err := r.Call(Env{}, tt.fn, []querier.Value{tt.a, tt.b})
			require.NoError(t, err)
			assert.Equal(t, tt.expected.Type(), v.Type())
			assert.True(t, tt.expected.Equal(v), "got %s", v)
		})
	}
}

func TestArithmeticErrors(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		fn   string
		a, b querier.Value
	}{
		{"plus", querier.LongValue(math.MaxInt64), querier.LongValue(1)},
		{"minus", querier.LongValue(math.MinInt64), querier.LongValue(1)},
		{"times", querier.LongValue(math.MaxInt64), querier.LongValue(2)},
		{"times", querier.LongValue(math.MinInt64), querier.LongValue(-1)},
		{"plus", querier.IntValue(math.MaxInt32), querier.IntValue(1)},
		{"divide", querier.LongValue(1), querier.LongValue(0)},
		{"mod", querier.LongValue(1), querier.LongValue(0)},
		{"divide", querier.LongValue(math.MinInt64), querier.LongValue(-1)},
	}

	for _, tt := range tests {
		_, err := r.Call(Env{}, tt.fn, []querier.Value{tt.a, tt.b})
		require.Error(t, err, "%s(%s,%s)", tt.fn, tt.a, tt.b)
		assert.Equal(t, fault.FunctionEvaluationCode, fault.CodeOf(err))
	}
}

func TestNonFiniteResults(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		fn   string
		a, b querier.Value
	}{
		{"divide", querier.DoubleValue(1), querier.LongValue(0)},
		{"divide", querier.DoubleValue(-1), querier.LongValue(0)},
		{"mod", querier.DoubleValue(1), querier.DoubleValue(0)},
		{"times", querier.DoubleValue(math.MaxFloat64), querier.DoubleValue(2)},
		{"times", querier.FloatValue(math.MaxFloat32), querier.FloatValue(2)},
	}

	for _, tt := range tests {
		_, err := r.Call(Env{}, tt.fn, []querier.Value{tt.a, tt.b})
		assert.Equal(t, fault.FunctionEvaluationCode, fault.CodeOf(err), "%s(%s,%s)", tt.fn, tt.a, tt.b)
	}
}

func TestNonFiniteStringsAreNotNumbers(t *testing.T) {
	r := newTestRegistry(t)

	for _, s := range []string{"NaN", "Inf", "-Inf", "+infinity", "1e999"} {
		_, err := r.Call(Env{}, "plus", []querier.Value{querier.StringValue(s), querier.LongValue(1)})
		assert.Equal(t, fault.ArityOrTypeCode, fault.CodeOf(err), s)
	}

	v, err := r.Call(Env{}, "plus", []querier.Value{querier.StringValue("1.5"), querier.LongValue(1)})
	require.NoError(t, err)
	assert.Equal(t, 2.5, v.Double())
}

func TestNegateAndAbs(t *testing.T) {
	r := newTestRegistry(t)

	v, err := r.Call(Env{}, "negate", []querier.Value{querier.LongValue(5)})
	require.NoError(t, err)
	assert.True(t, querier.LongValue(-5).Equal(v))

	v, err = r.Call(Env{}, "abs", []querier.Value{querier.DoubleValue(-2.5)})
	require.NoError(t, err)
	assert.True(t, querier.DoubleValue(2.5).Equal(v))

	_, err = r.Call(Env{}, "negate", []querier.Value{querier.LongValue(math.MinInt64)})
	require.Error(t, err)
}
