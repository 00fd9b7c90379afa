package function

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thisisjab/pinotbroker/querier"
)

// ArgKind is the accepted kind of a single parameter.
type ArgKind uint8

const (
	// Any accepts every value unchanged.
	Any ArgKind = iota
	// String accepts STRING values only.
	String
	// Numeric accepts INT, LONG, FLOAT, DOUBLE and TIMESTAMP values, and
	// STRING values that parse as a number. TIMESTAMP is passed as LONG.
	Numeric
	// Integral accepts INT, LONG and TIMESTAMP values and STRING values that
	// parse as an integer. The coerced value is always a LONG.
	Integral
	// Boolean accepts BOOLEAN values only.
	Boolean
	// Binary accepts BYTES, and STRING values as their UTF-8 bytes.
	Binary
)

var argKindNames = [...]string{
	Any:      "any",
	String:   "string",
	Numeric:  "numeric",
	Integral: "integral",
	Boolean:  "boolean",
	Binary:   "binary",
}

func (k ArgKind) String() string {
	if int(k) < len(argKindNames) {
		return argKindNames[k]
	}
	return fmt.Sprintf("ArgKind(%d)", k)
}

// Signature describes the parameters of a rule.
type Signature struct {
	Params []ArgKind

	// Optional is the number of trailing Params that may be omitted.
	Optional int

	// Variadic allows any number of extra arguments of the last Params kind.
	Variadic bool
}

// Sig is a shorthand for a fixed signature.
func Sig(params ...ArgKind) Signature {
	return Signature{Params: params}
}

func (s Signature) minArgs() int {
	return len(s.Params) - s.Optional
}

func (s Signature) accepts(n int) bool {
	if n < s.minArgs() {
		return false
	}
	return s.Variadic || n <= len(s.Params)
}

func (s Signature) kind(i int) ArgKind {
	if i < len(s.Params) {
		return s.Params[i]
	}
	return s.Params[len(s.Params)-1]
}

func (s Signature) describeArity() string {
	switch {
	case s.Variadic:
		return fmt.Sprintf("at least %d", s.minArgs())
	case s.Optional > 0:
		return fmt.Sprintf("%d to %d", s.minArgs(), len(s.Params))
	default:
		return strconv.Itoa(len(s.Params))
	}
}

// coerce converts v to kind k, reporting false when v cannot be accepted.
func coerce(k ArgKind, v querier.Value) (querier.Value, bool) {
	switch k {
	case Any:
		return v, true

	case String:
		return v, v.Type() == querier.TypeString

	case Boolean:
		return v, v.Type() == querier.TypeBoolean

	case Binary:
		switch v.Type() {
		case querier.TypeBytes:
			return v, true
		case querier.TypeString:
			return querier.BytesValue([]byte(v.Text())), true
		}
		return v, false

	case Numeric:
		switch v.Type() {
		case querier.TypeInt, querier.TypeLong, querier.TypeFloat, querier.TypeDouble:
			return v, true
		case querier.TypeTimestamp:
			return querier.LongValue(v.Long()), true
		case querier.TypeString:
			return parseNumber(v.Text())
		}
		return v, false

	case Integral:
		switch v.Type() {
		case querier.TypeInt, querier.TypeLong, querier.TypeTimestamp:
			return querier.LongValue(v.Long()), true
		case querier.TypeString:
			i, err := strconv.ParseInt(strings.TrimSpace(v.Text()), 10, 64)
			if err != nil {
				return v, false
			}
			return querier.LongValue(i), true
		}
		return v, false
	}

	return v, false
}

// parseNumber reads s as LONG when it is integral and as DOUBLE otherwise.
func parseNumber(s string) (querier.Value, bool) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return querier.LongValue(i), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && isFinite(f) {
		return querier.DoubleValue(f), true
	}
	return querier.StringValue(s), false
}
