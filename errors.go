package store

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrScopeIDRequired indicates a scope was entered without an identifier.
	ErrScopeIDRequired = errors.New("store: scope id must be provided")
	// ErrDuplicateScope matches every DuplicateScopeError.
	ErrDuplicateScope = errors.New("store: scope already defined")
	// ErrUnknownScope matches every UnknownScopeError.
	ErrUnknownScope = errors.New("store: scope not defined")
	// ErrUndefinedState matches every UndefinedStateError.
	ErrUndefinedState = errors.New("store: state not defined")
	// ErrInvalidValue indicates a value that is not JSON-like.
	ErrInvalidValue = errors.New("store: value is not JSON-like")
	// ErrStoreClosed indicates a write or subscription on an exited scope.
	ErrStoreClosed = errors.New("store: scope has exited")
	// ErrEvaluation matches every EvaluationError.
	ErrEvaluation = errors.New("store: evaluation failed")
)

// DuplicateScopeError is returned when a scope is entered with an identifier
// that is already visible from its parent.
type DuplicateScopeError struct {
	ID string
}

func (e *DuplicateScopeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("store: scope %q is already defined", e.ID)
}

// Is reports ErrDuplicateScope as a match.
func (e *DuplicateScopeError) Is(target error) bool {
	return target == ErrDuplicateScope
}

// UnknownScopeError is returned when a scope identifier cannot be resolved
// from the visible-scope table.
type UnknownScopeError struct {
	ID string
}

func (e *UnknownScopeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("store: scope %q is not defined", e.ID)
}

// Is reports ErrUnknownScope as a match.
func (e *UnknownScopeError) Is(target error) bool {
	return target == ErrUnknownScope
}

// UndefinedStateError is returned when a key was not part of the initial
// state of a scope.
type UndefinedStateError struct {
	Scope string
	Key   string
}

func (e *UndefinedStateError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Scope == "" {
		return fmt.Sprintf("store: state %q is not defined", e.Key)
	}
	return fmt.Sprintf("store: state %q is not defined in scope %q", e.Key, e.Scope)
}

// Is reports ErrUndefinedState as a match.
func (e *UndefinedStateError) Is(target error) bool {
	return target == ErrUndefinedState
}

func invalidValue(scope, key string, err error) error {
	return fmt.Errorf("%w: scope %q key %q: %v", ErrInvalidValue, scope, key, err)
}

// EvaluationError is returned when an expression fails to compile or run
// against a scope. Keys lists the scope's declared keys, which are the
// identifiers bound at the top level of the expression.
type EvaluationError struct {
	Engine string
	Expr   string
	Scope  string
	Keys   []string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	expr := "<empty>"
	if e.Expr != "" {
		expr = strconv.Quote(e.Expr)
	}
	if e.Scope == "" {
		return fmt.Sprintf("store: %s evaluation of %s failed: %v", e.Engine, expr, e.Err)
	}
	return fmt.Sprintf("store: %s evaluation of %s in scope %q failed: %v", e.Engine, expr, e.Scope, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports ErrEvaluation as a match.
func (e *EvaluationError) Is(target error) bool {
	return target == ErrEvaluation
}

// evaluationFailed wraps err for engine. An existing EvaluationError gets
// its missing fields filled in instead of being nested.
func evaluationFailed(engine, expr, scope string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		return &EvaluationError{Engine: engine, Expr: expr, Scope: scope, Err: err}
	}
	if evalErr.Engine == "" {
		evalErr.Engine = engine
	}
	if evalErr.Expr == "" {
		evalErr.Expr = expr
	}
	if evalErr.Scope == "" {
		evalErr.Scope = scope
	}
	return evalErr
}

// evaluationError wraps err with the store's scope and declared keys.
func (s *Store) evaluationError(engine, expr string, err error) error {
	err = evaluationFailed(engine, expr, s.id, err)
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) && evalErr.Keys == nil {
		evalErr.Keys = s.Keys()
	}
	return err
}
