package store

import (
	"time"

	"github.com/goliatone/go-scoped-store/internal/jsonvalue"
)

// Evaluator executes expressions against a store's state.
type Evaluator interface {
	Evaluate(ctx EvalContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule is a pre-compiled expression that can run many times.
type CompiledRule interface {
	Evaluate(ctx EvalContext) (any, error)
}

// CompileOption configures Compile. Engines may ignore options they do not
// understand.
type CompileOption func(*compileConfig)

type compileConfig struct {
	scope string
}

// CompileWithScope labels errors produced by the compiled rule.
func CompileWithScope(scope string) CompileOption {
	return func(cfg *compileConfig) {
		cfg.scope = scope
	}
}

func applyCompileOptions(opts []CompileOption) compileConfig {
	cfg := compileConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// EvalContext carries the inputs bound into an expression environment.
type EvalContext struct {
	// State holds the values of the evaluating scope.
	State map[string]any
	// Scopes maps every visible scope id to its values.
	Scopes map[string]map[string]any
	// Scope is the id of the evaluating scope.
	Scope string
	Args  map[string]any
	Now   *time.Time
}

func (ctx EvalContext) withDefaults() EvalContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.State == nil {
		ctx.State = map[string]any{}
	}
	if ctx.Scopes == nil {
		ctx.Scopes = map[string]map[string]any{}
	}
	return ctx
}

func (ctx EvalContext) timestamp() time.Time {
	return *ctx.withDefaults().Now
}

// environment builds the variables shared by every engine. Own keys that
// are valid identifiers are also bound at the top level unless they collide
// with a reserved name.
func (ctx EvalContext) environment() map[string]any {
	ctx = ctx.withDefaults()
	scopes := make(map[string]any, len(ctx.Scopes))
	for id, values := range ctx.Scopes {
		scopes[id] = values
	}
	env := map[string]any{
		"now":    *ctx.Now,
		"args":   ctx.Args,
		"scope":  ctx.Scope,
		"state":  ctx.State,
		"scopes": scopes,
	}
	for key, value := range ctx.State {
		if _, reserved := env[key]; reserved || !isIdentifier(key) {
			continue
		}
		env[key] = value
	}
	return env
}

func isIdentifier(name string) bool {
	if name == "" || name == "call" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// evalContext captures the store's state and visible scopes.
func (s *Store) evalContext(args map[string]any) EvalContext {
	return EvalContext{
		State:  s.valuesCopy(),
		Scopes: s.scopes.values(),
		Scope:  s.id,
		Args:   jsonvalue.CloneMap(args),
	}
}
