package function

import (
	"bytes"
	"cmp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/thisisjab/pinotbroker/fault"
	"github.com/thisisjab/pinotbroker/querier"
)

func logicRules() []Rule {
	return []Rule{
		comparison("equals", func(c int) bool { return c == 0 }),
		comparison("not_equals", func(c int) bool { return c != 0 }),
		comparison("less_than", func(c int) bool { return c < 0 }),
		comparison("less_than_or_equal", func(c int) bool { return c <= 0 }),
		comparison("greater_than", func(c int) bool { return c > 0 }),
		comparison("greater_than_or_equal", func(c int) bool { return c >= 0 }),
		{
			Name: "and",
			Sig:  Signature{Params: []ArgKind{Boolean, Boolean}, Variadic: true},
			Eval: func(_ Env, args []querier.Value) (querier.Value, error) {
				for _, a := range args {
					if !a.Bool() {
						return querier.BooleanValue(false), nil
					}
				}
				return querier.BooleanValue(true), nil
			},
		},
		{
			Name: "or",
			Sig:  Signature{Params: []ArgKind{Boolean, Boolean}, Variadic: true},
			Eval: func(_ Env, args []querier.Value) (querier.Value, error) {
				for _, a := range args {
					if a.Bool() {
						return querier.BooleanValue(true), nil
					}
				}
				return querier.BooleanValue(false), nil
			},
		},
		{
			Name: "not",
			Sig:  Sig(Boolean),
			Eval: func(_ Env, args []querier.Value) (querier.Value, error) {
				return querier.BooleanValue(!args[0].Bool()), nil
			},
		},
	}
}

func comparison(name string, test func(int) bool) Rule {
	return Rule{
		Name: name,
		Sig:  Sig(Any, Any),
		Eval: func(_ Env, args []querier.Value) (querier.Value, error) {
			c, err := compareValues(args[0], args[1])
			if err != nil {
				return querier.Value{}, fault.Newf(fault.ArityOrTypeCode, "cannot evaluate %s", name).WithOriginal(err)
			}
			return querier.BooleanValue(test(c)), nil
		},
	}
}

// compareValues orders two values. Numbers compare numerically, a string
// compared with a number is read as a number, strings compare by bytes and
// booleans order false before true.
func compareValues(a, b querier.Value) (int, error) {
	at, bt := a.Type(), b.Type()

	switch {
	case isNumber(at) && isNumber(bt):
		return compareNumbers(a, b), nil

	case isNumber(at) && bt == querier.TypeString:
		nb, ok := parseNumber(b.Text())
		if !ok {
			return 0, errors.Newf("cannot compare %s with non-numeric string %q", at, b.Text())
		}
		return compareNumbers(a, nb), nil

	case at == querier.TypeString && isNumber(bt):
		na, ok := parseNumber(a.Text())
		if !ok {
			return 0, errors.Newf("cannot compare non-numeric string %q with %s", a.Text(), bt)
		}
		return compareNumbers(na, b), nil

	case at == querier.TypeString && bt == querier.TypeString:
		return strings.Compare(a.Text(), b.Text()), nil

	case at == querier.TypeBoolean && bt == querier.TypeBoolean:
		return cmp.Compare(boolRank(a.Bool()), boolRank(b.Bool())), nil

	case at == querier.TypeBytes && bt == querier.TypeBytes:
		return bytes.Compare(a.Bytes(), b.Bytes()), nil
	}

	return 0, errors.Newf("cannot compare %s with %s", at, bt)
}

func isNumber(t querier.DataType) bool {
	return t.IsNumeric() || t == querier.TypeTimestamp
}

func compareNumbers(a, b querier.Value) int {
	if a.Type().IsIntegral() && b.Type().IsIntegral() {
		return cmp.Compare(a.Long(), b.Long())
	}
	return cmp.Compare(a.Double(), b.Double())
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
