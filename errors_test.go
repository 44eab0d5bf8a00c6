package store

import (
	"errors"
	"reflect"
	"testing"
)

func TestEvaluationFailedBuildsError(t *testing.T) {
	base := errors.New("boom")
	err := evaluationFailed(engineExpr, "count > limit", "Global", base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != engineExpr || evalErr.Expr != "count > limit" || evalErr.Scope != "Global" {
		t.Fatalf("unexpected metadata: %+v", evalErr)
	}
	if !errors.Is(err, base) || !errors.Is(err, ErrEvaluation) {
		t.Fatalf("expected match on base and ErrEvaluation")
	}
	if got := err.Error(); got != `store: expr evaluation of "count > limit" in scope "Global" failed: boom` {
		t.Fatalf("unexpected message %q", got)
	}
	if evaluationFailed(engineExpr, "x", "Global", nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}

func TestEvaluationFailedFillsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{Engine: engineExpr, Err: base}

	err := evaluationFailed(engineCEL, "rule", "A", existing)
	if err != existing {
		t.Fatalf("existing error should not be nested")
	}
	if existing.Engine != engineExpr {
		t.Fatalf("engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "rule" || existing.Scope != "A" {
		t.Fatalf("missing fields should be filled, got %+v", existing)
	}
}

func TestEvaluationErrorsAreNotConfusedWithStoreErrors(t *testing.T) {
	err := evaluationFailed(engineCEL, "hi", "A", ErrUnknownScope)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("store errors raised during evaluation should still be wrapped, got %T", err)
	}
	if !errors.Is(err, ErrUnknownScope) {
		t.Fatalf("wrapped store error should stay matchable")
	}
	if errors.Is(ErrUnknownScope, ErrEvaluation) {
		t.Fatalf("plain store errors must not match ErrEvaluation")
	}
}

func TestStoreEvaluationErrorCarriesKeys(t *testing.T) {
	_, a := newGlobalAndA(t)

	_, err := a.Evaluate(`hi +`)
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %v", err)
	}
	if !reflect.DeepEqual(evalErr.Keys, []string{"hi", "you"}) {
		t.Fatalf("unexpected keys %v", evalErr.Keys)
	}

	_, err = a.Evaluate("")
	if !errors.As(err, &evalErr) || evalErr.Scope != "A" || !errors.Is(err, errEmptyExpression) {
		t.Fatalf("empty expression should report scope A, got %v", err)
	}
}
