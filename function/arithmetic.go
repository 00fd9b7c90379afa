package function

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/thisisjab/pinotbroker/querier"
)

var errIntegerOverflow = errors.New("integer overflow")
var errDivisionByZero = errors.New("division by zero")

type integerOp func(a, b int64) (int64, error)
type floatOp func(a, b float64) float64

func arithmeticRules() []Rule {
	return []Rule{
		binaryArithmetic("plus", addInt, func(a, b float64) float64 { return a + b }),
		binaryArithmetic("minus", subInt, func(a, b float64) float64 { return a - b }),
		binaryArithmetic("times", mulInt, func(a, b float64) float64 { return a * b }),
		binaryArithmetic("divide", divInt, func(a, b float64) float64 { return a / b }),
		binaryArithmetic("mod", modInt, math.Mod),
		{Name: "negate", Sig: Sig(Numeric), Eval: negate},
		{Name: "abs", Sig: Sig(Numeric), Eval: abs},
	}
}

// binaryArithmetic builds a rule whose result has the wider of the two
// operand types. Integral results are overflow checked against their type.
func binaryArithmetic(name string, iop integerOp, fop floatOp) Rule {
	return Rule{
		Name: name,
		Sig:  Sig(Numeric, Numeric),
		Eval: func(_ Env, args []querier.Value) (querier.Value, error) {
			a, b := args[0], args[1]
			typ := querier.Wider(a.Type(), b.Type())

			switch typ {
			case querier.TypeInt, querier.TypeLong:
				r, err := iop(a.Long(), b.Long())
				if err != nil {
					return querier.Value{}, err
				}
				return integralValue(typ, r)
			case querier.TypeFloat:
				return querier.FloatValue(float32(fop(a.Double(), b.Double()))), nil
			default:
				return querier.DoubleValue(fop(a.Double(), b.Double())), nil
			}
		},
	}
}

func integralValue(typ querier.DataType, v int64) (querier.Value, error) {
	if typ == querier.TypeInt {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return querier.Value{}, errIntegerOverflow
		}
		return querier.IntValue(int32(v)), nil
	}
	return querier.LongValue(v), nil
}

func addInt(a, b int64) (int64, error) {
	r := a + b
	if (r > a) != (b > 0) {
		return 0, errIntegerOverflow
	}
	return r, nil
}

func subInt(a, b int64) (int64, error) {
	r := a - b
	if (r < a) != (b > 0) {
		return 0, errIntegerOverflow
	}
	return r, nil
}

func mulInt(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	r := a * b
	if r/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, errIntegerOverflow
	}
	return r, nil
}

func divInt(a, b int64) (int64, error) {
	if b == 0 {
		return 0, errDivisionByZero
	}
	if a == math.MinInt64 && b == -1 {
		return 0, errIntegerOverflow
	}
	return a / b, nil
}

func modInt(a, b int64) (int64, error) {
	if b == 0 {
		return 0, errDivisionByZero
	}
	if b == -1 {
		return 0, nil
	}
	return a % b, nil
}

func negate(_ Env, args []querier.Value) (querier.Value, error) {
	v := args[0]
	switch v.Type() {
	case querier.TypeInt, querier.TypeLong:
		if v.Long() == math.MinInt64 {
			return querier.Value{}, errIntegerOverflow
		}
		return integralValue(v.Type(), -v.Long())
	case querier.TypeFloat:
		return querier.FloatValue(float32(-v.Double())), nil
	default:
		return querier.DoubleValue(-v.Double()), nil
	}
}

func abs(env Env, args []querier.Value) (querier.Value, error) {
	v := args[0]
	if v.Double() >= 0 {
		return v, nil
	}
	return negate(env, args)
}
