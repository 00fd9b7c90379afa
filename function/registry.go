package function

import (
	"math"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/thisisjab/pinotbroker/fault"
	"github.com/thisisjab/pinotbroker/querier"
)

// Env is the per-call environment handed to rules.
type Env struct {
	Clock Clock
}

// EvalFunc computes a rule's result from already coerced arguments.
type EvalFunc func(env Env, args []querier.Value) (querier.Value, error)

// Rule is a named scalar function with a typed signature.
type Rule struct {
	Name string
	Sig  Signature
	Eval EvalFunc
}

// Registry maps canonical function names to rules. It is built once and
// never modified afterwards, so it is safe for concurrent use.
type Registry struct {
	rules map[string]Rule
}

// CanonicalName folds case and underscores so that fromDateTime,
// FROMDATETIME and from_date_time name the same function.
func CanonicalName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

// NewRegistry returns a registry with every built-in rule plus extra. Extra
// rules may not shadow built-ins or each other.
func NewRegistry(extra ...Rule) (*Registry, error) {
	r := &Registry{rules: make(map[string]Rule)}

	for _, group := range [][]Rule{arithmeticRules(), logicRules(), datetimeRules(), stringRules(), encodingRules(), extra} {
		for _, rule := range group {
			if err := r.add(rule); err != nil {
				return nil, err
			}
		}
	}

	return r, nil
}

func (r *Registry) add(rule Rule) error {
	if rule.Name == "" || rule.Eval == nil {
		return errors.Newf("function rule %q is incomplete", rule.Name)
	}
	key := CanonicalName(rule.Name)
	if _, exists := r.rules[key]; exists {
		return errors.Newf("function %q is registered twice", rule.Name)
	}
	r.rules[key] = rule
	return nil
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// Lookup returns the rule registered for name.
func (r *Registry) Lookup(name string) (Rule, bool) {
	rule, ok := r.rules[CanonicalName(name)]
	return rule, ok
}

// Names returns the canonical names of every registered rule, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.rules))
	for name := range r.rules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Call checks args against the rule's signature and evaluates it.
// Failures are faults coded UnknownFunctionCode, ArityOrTypeCode or
// FunctionEvaluationCode.
func (r *Registry) Call(env Env, name string, args []querier.Value) (querier.Value, error) {
	rule, ok := r.Lookup(name)
	if !ok {
		return querier.Value{}, fault.Newf(fault.UnknownFunctionCode, "unknown function %q", name)
	}

	if !rule.Sig.accepts(len(args)) {
		return querier.Value{}, fault.Newf(fault.ArityOrTypeCode,
			"function %s expects %s arguments, got %d", rule.Name, rule.Sig.describeArity(), len(args))
	}

	coerced := make([]querier.Value, len(args))
	for i, arg := range args {
		kind := rule.Sig.kind(i)
		v, ok := coerce(kind, arg)
		if !ok {
			return querier.Value{}, fault.Newf(fault.ArityOrTypeCode,
				"argument %d of %s must be %s, got %s", i+1, rule.Name, kind, arg.Type())
		}
		coerced[i] = v
	}

	if env.Clock == nil {
		env.Clock = SystemClock
	}

	result, err := rule.Eval(env, coerced)
	if err != nil {
		var f fault.Fault
		if errors.As(err, &f) {
			return querier.Value{}, err
		}
		return querier.Value{}, fault.Newf(fault.FunctionEvaluationCode, "cannot evaluate %s", rule.Name).WithOriginal(err)
	}

	if t := result.Type(); (t == querier.TypeFloat || t == querier.TypeDouble) && !isFinite(result.Double()) {
		return querier.Value{}, fault.Newf(fault.FunctionEvaluationCode, "%s returned %v", rule.Name, result.Double())
	}

	return result, nil
}
