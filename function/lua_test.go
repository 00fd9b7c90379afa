package function

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thisisjab/pinotbroker/fault"
	"github.com/thisisjab/pinotbroker/querier"
)

func writeScript(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "udf.lua")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o600))
	return path
}

func TestLuaRule(t *testing.T) {
	path := writeScript(t, `
local json = require("json")

function add_one(x)
	return x + 1
end

function greet(name)
	return "hello " .. name
end

function pair(a, b)
	return { first = a, second = b }
end

function is_positive(x)
	return x > 0
end
`)

	rules := make([]Rule, 0, 4)
	for _, cfg := range []LuaFunctionConfig{
		{Name: "addOne", ScriptPath: path, Entry: "add_one", ReturnType: "LONG", Arity: 1},
		{Name: "greet", ScriptPath: path, Arity: 1},
		{Name: "pair", ScriptPath: path, Arity: 2},
		{Name: "isPositive", ScriptPath: path, Entry: "is_positive", ReturnType: "boolean", Arity: 1},
	} {
		rule, err := NewLuaRule(cfg)
		require.NoError(t, err, cfg.Name)
		rules = append(rules, rule)
	}

	r := newTestRegistry(t, rules...)

	v, err := r.Call(Env{}, "add_one", []querier.Value{querier.LongValue(41)})
	require.NoError(t, err)
	assert.True(t, querier.LongValue(42).Equal(v), v.String())

	v, err = r.Call(Env{}, "greet", []querier.Value{querier.StringValue("broker")})
	require.NoError(t, err)
	assert.Equal(t, "hello broker", v.Text())

	v, err = r.Call(Env{}, "pair", []querier.Value{querier.LongValue(1), querier.StringValue("b")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"first":1,"second":"b"}`, v.Text())

	v, err = r.Call(Env{}, "isPositive", []querier.Value{querier.DoubleValue(-1)})
	require.NoError(t, err)
	assert.False(t, v.Bool())

	_, err = r.Call(Env{}, "greet", nil)
	require.Error(t, err)
	assert.Equal(t, fault.ArityOrTypeCode, fault.CodeOf(err))
}

func TestLuaRuleRuntimeError(t *testing.T) {
	path := writeScript(t, `
function explode(x)
	error("boom")
end
`)

	rule, err := NewLuaRule(LuaFunctionConfig{Name: "explode", ScriptPath: path, Arity: 1})
	require.NoError(t, err)

	r := newTestRegistry(t, rule)
	_, err = r.Call(Env{}, "explode", []querier.Value{querier.LongValue(1)})
	require.Error(t, err)
	assert.Equal(t, fault.FunctionEvaluationCode, fault.CodeOf(err))
}

func TestLuaRuleConcurrentCalls(t *testing.T) {
	path := writeScript(t, `
function double(x)
	return x * 2
end
`)

	rule, err := NewLuaRule(LuaFunctionConfig{Name: "double", ScriptPath: path, ReturnType: "LONG", Arity: 1})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := rule.Eval(Env{}, []querier.Value{querier.LongValue(int64(i))})
			assert.NoError(t, err)
			assert.Equal(t, int64(2*i), v.Long())
		}(i)
	}
	wg.Wait()
}

func TestNewLuaRuleErrors(t *testing.T) {
	valid := writeScript(t, `function f() return 1 end`)
	broken := writeScript(t, `function f( return end`)

	tests := []struct {
		name string
		cfg  LuaFunctionConfig
	}{
		{"missing name", LuaFunctionConfig{ScriptPath: valid}},
		{"missing script", LuaFunctionConfig{Name: "f", ScriptPath: filepath.Join(t.TempDir(), "missing.lua")}},
		{"syntax error", LuaFunctionConfig{Name: "f", ScriptPath: broken}},
		{"missing entry", LuaFunctionConfig{Name: "g", ScriptPath: valid}},
		{"unsupported return type", LuaFunctionConfig{Name: "f", ScriptPath: valid, ReturnType: "BYTES"}},
		{"unknown return type", LuaFunctionConfig{Name: "f", ScriptPath: valid, ReturnType: "DECIMAL"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLuaRule(tt.cfg)
			require.Error(t, err)
		})
	}
}
