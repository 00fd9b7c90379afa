package fault

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

type Code string

const (
	UnknownCode            Code = "unknown"
	NotFoundCode           Code = "not_found"
	BadInputCode           Code = "bad_input"
	UnknownFunctionCode    Code = "unknown_function"
	ArityOrTypeCode        Code = "arity_or_type"
	FunctionEvaluationCode Code = "function_evaluation"
	InvariantViolationCode Code = "invariant_violation"
	NoBackendCode          Code = "no_backend"
	BackendCode            Code = "backend"
)

type FieldErrorsMetadata map[string][]string

// Fault is an error carrying a machine readable code. Values are immutable;
// the With* methods return modified copies.
type Fault struct {
	code     Code
	message  string
	metadata any
	original error
}

func New(code Code, message string) Fault {
	return Fault{
		code:    code,
		message: message,
	}
}

// Newf is New with a formatted message.
func Newf(code Code, format string, args ...any) Fault {
	return New(code, fmt.Sprintf(format, args...))
}

func (f Fault) WithMetadata(metadata any) Fault {
	e := f
	e.metadata = metadata
	return e
}

func (f Fault) WithOriginal(original error) Fault {
	e := f
	e.original = original
	return e
}

func (f Fault) Code() Code {
	return f.code
}

func (f Fault) Message() string {
	return f.message
}

func (f Fault) Metadata() any {
	return f.metadata
}

func (f Fault) Original() error {
	return f.original
}

func (f Fault) Error() string {
	if f.original != nil {
		if f.message == "" {
			return f.original.Error()
		}
		return fmt.Sprintf("%s: %v", f.message, f.original)
	}
	return f.message
}

func (f Fault) Unwrap() error {
	return f.original
}

// CodeOf returns the code of the outermost Fault in err's chain, or
// UnknownCode when there is none.
func CodeOf(err error) Code {
	var f Fault
	if errors.As(err, &f) {
		return f.code
	}
	return UnknownCode
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
