package function

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/thisisjab/pinotbroker/querier"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
	luajson "layeh.com/gopher-json"
)

type LuaFunctionConfig struct {
	// Name is the SQL name of the function.
	Name string `yaml:"name"`

	ScriptPath string `yaml:"script_path"`

	// Entry is the global Lua function to call. Defaults to Name.
	Entry string `yaml:"entry"`

	// ReturnType is the data type name of the result (LONG, DOUBLE, STRING,
	// BOOLEAN). Defaults to STRING.
	ReturnType string `yaml:"return_type"`

	// Arity is the number of arguments. A negative value accepts any number.
	Arity int `yaml:"arity"`
}

// luaFunction evaluates a scalar function written in Lua.
// The script MUST define a global function named after Entry. Arguments are
// passed as Lua numbers, strings or booleans; a table result is serialized
// to JSON when the return type is STRING.
// Note that scripts have access to a JSON helper via `local json = require("json")`.
type luaFunction struct {
	cfg        LuaFunctionConfig
	returnType querier.DataType
	pool       *sync.Pool
}

// NewLuaRule compiles the script and returns a rule that runs it. The
// script is read and compiled once; every pooled VM executes the same
// compiled chunk.
func NewLuaRule(cfg LuaFunctionConfig) (Rule, error) {
	if cfg.Name == "" {
		return Rule{}, errors.New("lua function name is required")
	}
	if cfg.Entry == "" {
		cfg.Entry = cfg.Name
	}

	returnType := querier.TypeString
	if cfg.ReturnType != "" {
		t, err := querier.ParseDataType(cfg.ReturnType)
		if err != nil {
			return Rule{}, errors.Wrapf(err, "lua function %s", cfg.Name)
		}
		switch t {
		case querier.TypeLong, querier.TypeDouble, querier.TypeString, querier.TypeBoolean:
		default:
			return Rule{}, errors.Newf("lua function %s: unsupported return type %s", cfg.Name, t)
		}
		returnType = t
	}

	source, err := os.ReadFile(cfg.ScriptPath)
	if err != nil {
		return Rule{}, errors.Wrapf(err, "cannot read lua script for %s", cfg.Name)
	}

	chunk, err := parse.Parse(bytes.NewReader(source), cfg.ScriptPath)
	if err != nil {
		return Rule{}, errors.Wrapf(err, "cannot parse lua script for %s", cfg.Name)
	}

	proto, err := lua.Compile(chunk, cfg.ScriptPath)
	if err != nil {
		return Rule{}, errors.Wrapf(err, "cannot compile lua script for %s", cfg.Name)
	}

	f := &luaFunction{cfg: cfg, returnType: returnType}
	f.pool = &sync.Pool{
		New: func() any {
			L, err := newLuaState(proto)
			if err != nil {
				return nil
			}
			return L
		},
	}

	// Fail at startup rather than on first use.
	L, err := newLuaState(proto)
	if err != nil {
		return Rule{}, errors.Wrapf(err, "cannot load lua script for %s", cfg.Name)
	}
	if _, ok := L.GetGlobal(cfg.Entry).(*lua.LFunction); !ok {
		L.Close()
		return Rule{}, errors.Newf("lua script %s does not define function %s", cfg.ScriptPath, cfg.Entry)
	}
	f.pool.Put(L)

	sig := Signature{Params: []ArgKind{Any}, Variadic: true, Optional: 1}
	if cfg.Arity >= 0 {
		params := make([]ArgKind, cfg.Arity)
		for i := range params {
			params[i] = Any
		}
		sig = Signature{Params: params}
	}

	return Rule{Name: cfg.Name, Sig: sig, Eval: f.eval}, nil
}

func newLuaState(proto *lua.FunctionProto) (*lua.LState, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true, // Don't load anything by default
	})

	// Manually open only the safe libraries
	// We skip 'os' and 'io' to prevent system commands/file access
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},  // Allows 'require'
		{lua.BaseLibName, lua.OpenBase},     // Allows 'print', 'pairs', etc.
		{lua.TabLibName, lua.OpenTable},     // Allows 'table.insert', etc.
		{lua.StringLibName, lua.OpenString}, // Allows string manipulation
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	// This allows the user to do: local json = require("json")
	luajson.Preload(L)

	L.Push(L.NewFunctionFromProto(proto))
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		L.Close()
		return nil, err
	}

	return L, nil
}

func (f *luaFunction) eval(_ Env, args []querier.Value) (querier.Value, error) {
	L, ok := f.pool.Get().(*lua.LState)
	if !ok || L == nil {
		return querier.Value{}, errors.Newf("cannot start lua VM for %s", f.cfg.Name)
	}
	defer f.pool.Put(L)

	luaArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		luaArgs[i] = toLuaValue(a)
	}

	err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal(f.cfg.Entry),
		NRet:    1,
		Protect: true,
	}, luaArgs...)
	if err != nil {
		return querier.Value{}, fmt.Errorf("lua script error: %w", err)
	}

	ret := L.Get(-1)
	// Clean up stack IMMEDIATELY after extraction
	L.Pop(1)

	return f.fromLuaValue(ret)
}

func toLuaValue(v querier.Value) lua.LValue {
	switch v.Type() {
	case querier.TypeInt, querier.TypeLong, querier.TypeTimestamp, querier.TypeFloat, querier.TypeDouble:
		return lua.LNumber(v.Double())
	case querier.TypeBoolean:
		return lua.LBool(v.Bool())
	case querier.TypeBytes:
		return lua.LString(string(v.Bytes()))
	default:
		return lua.LString(v.Text())
	}
}

func (f *luaFunction) fromLuaValue(ret lua.LValue) (querier.Value, error) {
	switch f.returnType {
	case querier.TypeLong:
		n, ok := ret.(lua.LNumber)
		if !ok || float64(n) != math.Trunc(float64(n)) || math.Abs(float64(n)) > 1<<53 {
			return querier.Value{}, errors.Newf("%s returned %s, expected an integer", f.cfg.Name, ret.Type())
		}
		return querier.LongValue(int64(n)), nil

	case querier.TypeDouble:
		n, ok := ret.(lua.LNumber)
		if !ok {
			return querier.Value{}, errors.Newf("%s returned %s, expected a number", f.cfg.Name, ret.Type())
		}
		return querier.DoubleValue(float64(n)), nil

	case querier.TypeBoolean:
		b, ok := ret.(lua.LBool)
		if !ok {
			return querier.Value{}, errors.Newf("%s returned %s, expected a boolean", f.cfg.Name, ret.Type())
		}
		return querier.BooleanValue(bool(b)), nil
	}

	switch v := ret.(type) {
	case lua.LString:
		return querier.StringValue(string(v)), nil
	case *lua.LTable:
		encoded, err := luajson.Encode(v)
		if err != nil {
			return querier.Value{}, errors.Wrapf(err, "cannot encode result of %s", f.cfg.Name)
		}
		return querier.StringValue(string(encoded)), nil
	case *lua.LNilType:
		return querier.Value{}, errors.Newf("%s returned nil", f.cfg.Name)
	default:
		return querier.StringValue(v.String()), nil
	}
}
