package querier

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DataType is the column data type reported in a result schema.
type DataType uint8

const (
	TypeInt DataType = iota
	TypeLong
	TypeFloat
	TypeDouble
	TypeBoolean
	TypeTimestamp
	TypeString
	TypeBytes
)

var dataTypeNames = [...]string{
	TypeInt:       "INT",
	TypeLong:      "LONG",
	TypeFloat:     "FLOAT",
	TypeDouble:    "DOUBLE",
	TypeBoolean:   "BOOLEAN",
	TypeTimestamp: "TIMESTAMP",
	TypeString:    "STRING",
	TypeBytes:     "BYTES",
}

func (t DataType) String() string {
	if int(t) < len(dataTypeNames) {
		return dataTypeNames[t]
	}
	return fmt.Sprintf("DataType(%d)", t)
}

// ParseDataType is the inverse of DataType.String and ignores case.
func ParseDataType(s string) (DataType, error) {
	for i, name := range dataTypeNames {
		if strings.EqualFold(name, s) {
			return DataType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown data type %q", s)
}

// IsNumeric reports whether values of t take part in arithmetic.
func (t DataType) IsNumeric() bool {
	switch t {
	case TypeInt, TypeLong, TypeFloat, TypeDouble:
		return true
	}
	return false
}

// IsIntegral reports whether values of t are stored as int64.
func (t DataType) IsIntegral() bool {
	return t == TypeInt || t == TypeLong || t == TypeTimestamp
}

// Wider returns the wider of two numeric types in the order
// INT < LONG < FLOAT < DOUBLE.
func Wider(a, b DataType) DataType {
	if a > b {
		return a
	}
	return b
}

func (t DataType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *DataType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDataType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
