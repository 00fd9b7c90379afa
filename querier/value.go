package querier

import (
	"encoding/hex"
	"math"
	"strconv"
)

// Value is a single evaluated value together with its data type. The zero
// Value is the INT 0. Values can only be built through the constructors
// below, so the type tag always matches the populated field.
type Value struct {
	typ DataType
	i   int64
	f   float64
	s   string
	b   bool
	raw []byte
}

func IntValue(v int32) Value {
	return Value{typ: TypeInt, i: int64(v)}
}

func LongValue(v int64) Value {
	return Value{typ: TypeLong, i: v}
}

func FloatValue(v float32) Value {
	return Value{typ: TypeFloat, f: float64(v)}
}

func DoubleValue(v float64) Value {
	return Value{typ: TypeDouble, f: v}
}

func BooleanValue(v bool) Value {
	return Value{typ: TypeBoolean, b: v}
}

// TimestampValue holds milliseconds since the epoch.
func TimestampValue(millis int64) Value {
	return Value{typ: TypeTimestamp, i: millis}
}

func StringValue(v string) Value {
	return Value{typ: TypeString, s: v}
}

func BytesValue(v []byte) Value {
	return Value{typ: TypeBytes, raw: append([]byte(nil), v...)}
}

func (v Value) Type() DataType {
	return v.typ
}

// Long returns the integral payload of INT, LONG and TIMESTAMP values.
func (v Value) Long() int64 {
	return v.i
}

// Double returns the value as float64 for every numeric type.
func (v Value) Double() float64 {
	if v.typ.IsIntegral() {
		return float64(v.i)
	}
	return v.f
}

func (v Value) Text() string {
	return v.s
}

func (v Value) Bool() bool {
	return v.b
}

func (v Value) Bytes() []byte {
	return append([]byte(nil), v.raw...)
}

// Any returns the Go representation placed in result rows. BYTES are
// rendered as lowercase hex.
func (v Value) Any() any {
	switch v.typ {
	case TypeInt:
		return int32(v.i)
	case TypeLong, TypeTimestamp:
		return v.i
	case TypeFloat:
		return float32(v.f)
	case TypeDouble:
		return v.f
	case TypeBoolean:
		return v.b
	case TypeString:
		return v.s
	case TypeBytes:
		return hex.EncodeToString(v.raw)
	}
	return nil
}

// String renders the value the way it would appear in a string context.
func (v Value) String() string {
	switch v.typ {
	case TypeInt, TypeLong, TypeTimestamp:
		return strconv.FormatInt(v.i, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 32)
	case TypeDouble:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case TypeBoolean:
		return strconv.FormatBool(v.b)
	case TypeString:
		return v.s
	case TypeBytes:
		return hex.EncodeToString(v.raw)
	}
	return ""
}

// Equal reports whether two values have the same type and payload. NaN is
// never equal to anything.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeFloat, TypeDouble:
		return !math.IsNaN(v.f) && v.f == o.f
	case TypeBoolean:
		return v.b == o.b
	case TypeString:
		return v.s == o.s
	case TypeBytes:
		return string(v.raw) == string(o.raw)
	}
	return v.i == o.i
}
