package store

import (
	"fmt"
	"sort"
	"strings"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

const engineCEL = "cel"

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry exposes registry through call(name) and
// call(name, [args]).
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go. Expressions are
// type-checked against the variables present in the evaluation context, so
// a program is compiled per distinct key set.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx EvalContext, expression string) (any, error) {
	if expression == "" {
		return nil, evaluationFailed(engineCEL, "", "", errEmptyExpression)
	}
	return e.run(ctx, expression, ctx.Scope)
}

// Compile parses expression eagerly so syntax errors surface here. Type
// checking waits for the first context.
func (e *celEvaluator) Compile(expression string, opts ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, evaluationFailed(engineCEL, "", "", errEmptyExpression)
	}
	cfg := applyCompileOptions(opts)
	env, err := celgo.NewEnv()
	if err != nil {
		return nil, evaluationFailed(engineCEL, "", "", err)
	}
	if _, issues := env.Parse(expression); issues != nil && issues.Err() != nil {
		return nil, evaluationFailed(engineCEL, expression, cfg.scope, issues.Err())
	}
	return &celCompiledRule{evaluator: e, expression: expression, scope: cfg.scope}, nil
}

func (e *celEvaluator) run(ctx EvalContext, expression, scope string) (any, error) {
	if scope == "" {
		scope = ctx.Scope
	}
	activation := ctx.environment()
	program, err := e.loadOrCompile(expression, variableNames(activation))
	if err != nil {
		return nil, evaluationFailed(engineCEL, expression, scope, err)
	}
	out, _, err := program.Eval(activation)
	if err != nil {
		return nil, evaluationFailed(engineCEL, expression, scope, err)
	}
	return celToNative(out), nil
}

func (e *celEvaluator) loadOrCompile(expression string, names []string) (celgo.Program, error) {
	cacheKey := engineCEL + ":" + strings.Join(names, ",") + ":" + expression
	if e.cache != nil {
		if cached, ok := e.cache.Get(cacheKey); ok {
			if program, ok := cached.(celgo.Program); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv(names)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(cacheKey, program)
	}
	return program, nil
}

func (e *celEvaluator) buildEnv(names []string) (*celgo.Env, error) {
	opts := make([]celgo.EnvOption, 0, len(names)+1)
	for _, name := range names {
		switch name {
		case "now":
			opts = append(opts, celgo.Variable(name, celgo.TimestampType))
		case "scope":
			opts = append(opts, celgo.Variable(name, celgo.StringType))
		default:
			opts = append(opts, celgo.Variable(name, celgo.DynType))
		}
	}
	if e.registry != nil {
		opts = append(opts, celgo.Function("call",
			celgo.Overload("call_string",
				[]*celgo.Type{celgo.StringType},
				celgo.DynType,
				celgo.UnaryBinding(func(name ref.Val) ref.Val {
					return e.call(name, nil)
				}),
			),
			celgo.Overload("call_string_list",
				[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
				celgo.DynType,
				celgo.BinaryBinding(func(name, args ref.Val) ref.Val {
					return e.call(name, args)
				}),
			),
		))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) call(name, args ref.Val) ref.Val {
	fn, ok := name.Value().(string)
	if !ok {
		return types.NewErr("store: call name must be a string")
	}
	var arguments []any
	if args != nil {
		if list, ok := celToNative(args).([]any); ok {
			arguments = list
		}
	}
	result, err := e.registry.Call(fn, arguments...)
	if err != nil {
		return types.WrapErr(err)
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}

type celCompiledRule struct {
	evaluator  *celEvaluator
	expression string
	scope      string
}

func (r *celCompiledRule) Evaluate(ctx EvalContext) (any, error) {
	return r.evaluator.run(ctx, r.expression, r.scope)
}

func variableNames(activation map[string]any) []string {
	names := make([]string, 0, len(activation))
	for name := range activation {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// celToNative unwraps CEL values into plain Go values. Lists and maps built
// inside the expression come back as []any and map[string]any.
func celToNative(val ref.Val) any {
	switch v := val.(type) {
	case nil:
		return nil
	case types.Null:
		return nil
	case traits.Lister:
		out := []any{}
		for it := v.Iterator(); it.HasNext() == types.True; {
			out = append(out, celToNative(it.Next()))
		}
		return out
	case traits.Mapper:
		out := map[string]any{}
		for it := v.Iterator(); it.HasNext() == types.True; {
			key := it.Next()
			out[fmt.Sprint(key.Value())] = celToNative(v.Get(key))
		}
		return out
	default:
		return v.Value()
	}
}
