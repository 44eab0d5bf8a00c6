//go:build js_eval

package store

import (
	"fmt"

	"github.com/dop251/goja"
)

type jsEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewJSEvaluator constructs an Evaluator backed by goja. Every evaluation
// runs in a fresh runtime.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	cfg := applyJSEvaluatorOptions(opts)
	return &jsEvaluator{
		cache:    cfg.cache,
		registry: cfg.registry,
	}
}

func (e *jsEvaluator) Evaluate(ctx EvalContext, expression string) (any, error) {
	if expression == "" {
		return nil, evaluationFailed(engineJS, "", "", errEmptyExpression)
	}
	program, err := e.loadOrCompile(expression, ctx.Scope)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, expression, ctx.Scope, program)
}

func (e *jsEvaluator) Compile(expression string, opts ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, evaluationFailed(engineJS, "", "", errEmptyExpression)
	}
	cfg := applyCompileOptions(opts)
	program, err := e.loadOrCompile(expression, cfg.scope)
	if err != nil {
		return nil, err
	}
	return &jsCompiledRule{
		evaluator:  e,
		expression: expression,
		scope:      cfg.scope,
		program:    program,
	}, nil
}

func (e *jsEvaluator) loadOrCompile(expression, scope string) (*goja.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(engineJS + ":" + expression); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", wrapJSExpression(expression), false)
	if err != nil {
		return nil, evaluationFailed(engineJS, expression, scope, err)
	}
	if e.cache != nil {
		e.cache.Set(engineJS+":"+expression, program)
	}
	return program, nil
}

func (e *jsEvaluator) run(ctx EvalContext, expression, scope string, program *goja.Program) (any, error) {
	if scope == "" {
		scope = ctx.Scope
	}
	vm := goja.New()
	if err := e.bind(vm, ctx); err != nil {
		return nil, evaluationFailed(engineJS, expression, scope, err)
	}
	value, err := vm.RunProgram(program)
	if err != nil {
		return nil, evaluationFailed(engineJS, expression, scope, err)
	}
	return value.Export(), nil
}

func (e *jsEvaluator) bind(vm *goja.Runtime, ctx EvalContext) error {
	for name, value := range ctx.environment() {
		if err := vm.Set(name, value); err != nil {
			return err
		}
	}
	if e.registry == nil {
		return nil
	}
	if err := vm.Set("call", func(name string, arguments ...any) (any, error) {
		return e.registry.Call(name, arguments...)
	}); err != nil {
		return err
	}
	for _, name := range e.registry.Names() {
		if err := vm.Set(name, e.registry.bound(name)); err != nil {
			return err
		}
	}
	return nil
}

func wrapJSExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

type jsCompiledRule struct {
	evaluator  *jsEvaluator
	expression string
	scope      string
	program    *goja.Program
}

func (r *jsCompiledRule) Evaluate(ctx EvalContext) (any, error) {
	return r.evaluator.run(ctx, r.expression, r.scope, r.program)
}

func jsEvaluatorAvailable() bool {
	return true
}
