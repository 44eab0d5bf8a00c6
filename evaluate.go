package store

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoEvaluator is returned when no expression engine could be resolved.
	ErrNoEvaluator     = errors.New("store: evaluator not configured")
	errEmptyExpression = errors.New("expression must not be empty")
)

// Evaluate runs expr against the store's own state and every visible scope.
func (s *Store) Evaluate(expr string) (any, error) {
	return s.EvaluateWith(nil, expr)
}

// EvaluateWith runs expr with args bound under the args variable.
func (s *Store) EvaluateWith(args map[string]any, expr string) (value any, err error) {
	evaluator, err := s.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	ctx := s.evalContext(args)
	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	defer func() {
		s.cfg.logger.LogEvent(LogEvent{
			Op:       OpEvaluate,
			Scope:    s.id,
			Engine:   engine,
			Expr:     expr,
			Duration: time.Since(start),
			Err:      err,
		})
	}()
	if expr == "" {
		return nil, s.evaluationError(engine, expr, errEmptyExpression)
	}
	value, err = evaluator.Evaluate(ctx, expr)
	return value, s.evaluationError(engine, expr, err)
}

// Compile prepares expr for repeated evaluation against this store.
func (s *Store) Compile(expr string) (*Rule, error) {
	evaluator, err := s.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	compiled, err := evaluator.Compile(expr, CompileWithScope(s.id))
	if err != nil {
		return nil, s.evaluationError(evaluatorEngineName(evaluator), expr, err)
	}
	return &Rule{store: s, expr: expr, engine: evaluatorEngineName(evaluator), compiled: compiled}, nil
}

// Rule is a compiled expression bound to a store. Each Evaluate call sees
// the store's state at that moment.
type Rule struct {
	store    *Store
	expr     string
	engine   string
	compiled CompiledRule
}

// Expr returns the source expression.
func (r *Rule) Expr() string {
	return r.expr
}

// Evaluate runs the rule against the current state.
func (r *Rule) Evaluate() (any, error) {
	return r.EvaluateWith(nil)
}

// EvaluateWith runs the rule with args bound under the args variable.
func (r *Rule) EvaluateWith(args map[string]any) (value any, err error) {
	start := time.Now()
	defer func() {
		r.store.cfg.logger.LogEvent(LogEvent{
			Op:       OpEvaluate,
			Scope:    r.store.id,
			Engine:   r.engine,
			Expr:     r.expr,
			Duration: time.Since(start),
			Err:      err,
		})
	}()
	value, err = r.compiled.Evaluate(r.store.evalContext(args))
	return value, r.store.evaluationError(r.engine, r.expr, err)
}

// resolveEvaluator returns the configured engine or builds the default expr
// engine from the configured cache and functions.
func (s *Store) resolveEvaluator() (Evaluator, error) {
	if s.cfg.evaluator != nil {
		return s.cfg.evaluator, nil
	}
	var opts []ExprEvaluatorOption
	if s.cfg.programCache != nil {
		opts = append(opts, ExprWithProgramCache(s.cfg.programCache))
	}
	if s.cfg.functions != nil {
		opts = append(opts, ExprWithFunctionRegistry(s.cfg.functions))
	}
	evaluator := NewExprEvaluator(opts...)
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	return evaluator, nil
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch name := fmt.Sprintf("%T", e); name {
	case "*store.exprEvaluator":
		return engineExpr
	case "*store.celEvaluator":
		return engineCEL
	case "*store.jsEvaluator":
		return engineJS
	default:
		return "custom"
	}
}
