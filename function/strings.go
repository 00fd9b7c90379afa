package function

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/thisisjab/pinotbroker/querier"
)

func stringRules() []Rule {
	return []Rule{
		stringMapper("upper", strings.ToUpper),
		stringMapper("lower", strings.ToLower),
		stringMapper("trim", strings.TrimSpace),
		stringMapper("reverse", reverseString),
		{
			Name: "length",
			Sig:  Sig(String),
			Eval: func(_ Env, args []querier.Value) (querier.Value, error) {
				return querier.LongValue(int64(utf8.RuneCountInString(args[0].Text()))), nil
			},
		},
		{
			Name: "concat",
			Sig:  Signature{Params: []ArgKind{Any}, Variadic: true},
			Eval: func(_ Env, args []querier.Value) (querier.Value, error) {
				var sb strings.Builder
				for _, a := range args {
					sb.WriteString(a.String())
				}
				return querier.StringValue(sb.String()), nil
			},
		},
		{
			Name: "substr",
			Sig:  Signature{Params: []ArgKind{String, Integral, Integral}, Optional: 1},
			Eval: substr,
		},
	}
}

func stringMapper(name string, fn func(string) string) Rule {
	return Rule{
		Name: name,
		Sig:  Sig(String),
		Eval: func(_ Env, args []querier.Value) (querier.Value, error) {
			return querier.StringValue(fn(args[0].Text())), nil
		},
	}
}

func reverseString(s string) string {
	runes := []rune(s)
	slices.Reverse(runes)
	return string(runes)
}

// substr returns the characters in [begin, end). A missing or negative end
// means the end of the string.
func substr(_ Env, args []querier.Value) (querier.Value, error) {
	runes := []rune(args[0].Text())
	begin := args[1].Long()
	end := int64(len(runes))
	if len(args) == 3 && args[2].Long() >= 0 {
		end = args[2].Long()
	}

	if begin < 0 || begin > end || end > int64(len(runes)) {
		return querier.Value{}, errors.Newf("substring range [%d, %d) out of bounds for length %d", begin, end, len(runes))
	}

	return querier.StringValue(string(runes[begin:end])), nil
}
