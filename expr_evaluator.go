package store

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

const engineExpr = "expr"

// ExprEvaluatorOption configures an expr evaluator instance.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithProgramCache wires a ProgramCache into the expr evaluator.
func ExprWithProgramCache(cache ProgramCache) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.cache = cache
	}
}

// ExprWithFunctionRegistry exposes registry to expressions, both through
// call(name, args...) and by name.
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// exprEvaluator executes expressions using github.com/expr-lang/expr.
type exprEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *exprEvaluator) Evaluate(ctx EvalContext, expression string) (any, error) {
	if expression == "" {
		return nil, evaluationFailed(engineExpr, "", "", errEmptyExpression)
	}
	program, err := e.loadOrCompile(expression, ctx.Scope)
	if err != nil {
		return nil, err
	}
	return e.run(program, ctx, expression, ctx.Scope)
}

func (e *exprEvaluator) Compile(expression string, opts ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, evaluationFailed(engineExpr, "", "", errEmptyExpression)
	}
	cfg := applyCompileOptions(opts)
	program, err := e.loadOrCompile(expression, cfg.scope)
	if err != nil {
		return nil, err
	}
	return &exprCompiledRule{
		evaluator:  e,
		program:    program,
		expression: expression,
		scope:      cfg.scope,
	}, nil
}

func (e *exprEvaluator) loadOrCompile(expression, scope string) (*exprvm.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(engineExpr + ":" + expression); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	if e.registry != nil {
		options = append(options, exprlang.Function("call", e.callDispatch))
		for _, name := range e.registry.Names() {
			options = append(options, exprlang.Function(name, e.registry.bound(name)))
		}
	}
	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, evaluationFailed(engineExpr, expression, scope, err)
	}
	if e.cache != nil {
		e.cache.Set(engineExpr+":"+expression, program)
	}
	return program, nil
}

func (e *exprEvaluator) run(program *exprvm.Program, ctx EvalContext, expression, scope string) (any, error) {
	if scope == "" {
		scope = ctx.Scope
	}
	result, err := exprlang.Run(program, ctx.environment())
	if err != nil {
		return nil, evaluationFailed(engineExpr, expression, scope, err)
	}
	return result, nil
}

func (e *exprEvaluator) callDispatch(params ...any) (any, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("store: call requires a function name")
	}
	name, ok := params[0].(string)
	if !ok {
		return nil, fmt.Errorf("store: call name must be a string, got %T", params[0])
	}
	return e.registry.Call(name, params[1:]...)
}

type exprCompiledRule struct {
	evaluator  *exprEvaluator
	program    *exprvm.Program
	expression string
	scope      string
}

func (r *exprCompiledRule) Evaluate(ctx EvalContext) (any, error) {
	return r.evaluator.run(r.program, ctx, r.expression, r.scope)
}
