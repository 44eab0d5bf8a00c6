package store

import (
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/goliatone/go-scoped-store/pkg/activity"
)

// Option configures a store. Options given to a scope are inherited by every
// scope entered beneath it unless overridden there.
type Option func(*storeConfig)

type storeConfig struct {
	logger       Logger
	observer     Observer
	tracer       trace.Tracer
	activity     *activity.Emitter
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry

	// registerErrs holds function registration failures raised while the
	// options of one scope were applied.
	registerErrs []error
}

func defaultConfig() storeConfig {
	return storeConfig{
		logger:   noopLogger{},
		observer: noopObserver{},
		tracer:   noop.NewTracerProvider().Tracer(tracerName),
	}
}

func applyOptions(base storeConfig, opts []Option) storeConfig {
	cfg := base
	cfg.registerErrs = nil
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithTracer records spans for scope entry, exit and writes.
func WithTracer(tracer trace.Tracer) Option {
	return func(cfg *storeConfig) {
		if tracer == nil {
			cfg.tracer = noop.NewTracerProvider().Tracer(tracerName)
			return
		}
		cfg.tracer = tracer
	}
}

// WithActivity emits scope and state events through emitter.
func WithActivity(emitter *activity.Emitter) Option {
	return func(cfg *storeConfig) {
		cfg.activity = emitter
	}
}

// WithEvaluator sets the expression engine used by Store.Evaluate.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *storeConfig) {
		cfg.evaluator = e
	}
}

// WithProgramCache registers a compiled-program cache for the default
// evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *storeConfig) {
		cfg.programCache = cache
	}
}

// WithFunctionRegistry exposes registry to the default evaluator.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *storeConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for the default evaluator. A
// rejected name is logged under OpRegister when the scope is entered.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *storeConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		} else {
			cfg.functions = cfg.functions.Clone()
		}
		if err := cfg.functions.Register(name, fn); err != nil {
			cfg.registerErrs = append(cfg.registerErrs, err)
		}
	}
}
