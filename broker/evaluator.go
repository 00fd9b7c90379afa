package broker

import (
	"github.com/cockroachdb/errors"
	"github.com/thisisjab/pinotbroker/fault"
	"github.com/thisisjab/pinotbroker/function"
	"github.com/thisisjab/pinotbroker/querier"
	"github.com/thisisjab/pinotbroker/querier/ast"
)

// Evaluator reduces column-free expressions to values. It holds no mutable
// state and may be shared between goroutines.
type Evaluator struct {
	registry *function.Registry
	clock    function.Clock
}

func NewEvaluator(registry *function.Registry, clock function.Clock) *Evaluator {
	if clock == nil {
		clock = function.SystemClock
	}
	return &Evaluator{registry: registry, clock: clock}
}

// EvaluateSelectItem returns the output column name and value of a select
// item. Literals are named by their text, calls by their canonical form and
// aliased expressions by the alias.
func (ev *Evaluator) EvaluateSelectItem(e ast.Expr) (string, querier.Value, error) {
	switch n := e.(type) {
	case *ast.Aliased:
		v, err := ev.eval(n.Expr)
		if err != nil {
			return "", querier.Value{}, err
		}
		return n.Alias, v, nil
	case *ast.Literal:
		v, err := ev.eval(n)
		return n.Text, v, err
	default:
		v, err := ev.eval(e)
		if err != nil {
			return "", querier.Value{}, err
		}
		return ast.Render(e), v, nil
	}
}

// Fold evaluates a column-free expression. It lets the SQL builder bind
// constant subtrees as query arguments.
func (ev *Evaluator) Fold(e ast.Expr) (querier.Value, error) {
	return ev.eval(e)
}

func (ev *Evaluator) eval(e ast.Expr) (querier.Value, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return literalValue(n)

	case *ast.FuncCall:
		args := make([]querier.Value, len(n.Args))
		for i, arg := range n.Args {
			v, err := ev.eval(arg)
			if err != nil {
				return querier.Value{}, err
			}
			args[i] = v
		}
		return ev.registry.Call(function.Env{Clock: ev.clock}, n.Name, args)

	case *ast.Aliased:
		return ev.eval(n.Expr)

	case *ast.ColumnRef:
		return querier.Value{}, invariantViolation(errors.AssertionFailedf("column reference %q reached the literal evaluator", n.Name))

	default:
		return querier.Value{}, invariantViolation(errors.AssertionFailedf("unexpected expression %T", e))
	}
}

func literalValue(l *ast.Literal) (querier.Value, error) {
	switch l.Kind {
	case ast.LiteralInt:
		if v, ok := l.Value.(int64); ok {
			return querier.LongValue(v), nil
		}
	case ast.LiteralFloat:
		if v, ok := l.Value.(float64); ok {
			return querier.DoubleValue(v), nil
		}
	case ast.LiteralString:
		if v, ok := l.Value.(string); ok {
			return querier.StringValue(v), nil
		}
	case ast.LiteralBool:
		if v, ok := l.Value.(bool); ok {
			return querier.BooleanValue(v), nil
		}
	}
	return querier.Value{}, invariantViolation(errors.AssertionFailedf("literal %q holds %T", l.Text, l.Value))
}

func invariantViolation(err error) error {
	return fault.New(fault.InvariantViolationCode, "internal error while evaluating literal query").WithOriginal(err)
}
