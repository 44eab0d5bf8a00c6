package store

import (
	"fmt"

	"github.com/goliatone/go-scoped-store/internal/jsonvalue"
)

// Value is a JSON-like value: nil, string, bool, a finite number, a sequence
// of values or a string-keyed mapping of values. Typed slices and maps are
// accepted and stored as []any and map[string]any.
type Value = any

// State is the initial key set of a scope.
type State map[string]Value

// Updater computes a new value from the previous one.
type Updater func(prev Value) Value

// ValidateValue reports whether v can be stored.
func ValidateValue(v Value) error {
	if err := jsonvalue.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return nil
}

func normalizeState(scope string, initial State) (map[string]Value, error) {
	values := make(map[string]Value, len(initial))
	for key, value := range initial {
		normalized, err := jsonvalue.Normalize(value)
		if err != nil {
			return nil, invalidValue(scope, key, err)
		}
		values[key] = normalized
	}
	return values, nil
}

// resolveUpdate applies valueOrUpdater against prev. A nil updater is an
// error rather than a write of null.
func resolveUpdate(prev Value, valueOrUpdater Value) (Value, error) {
	switch fn := valueOrUpdater.(type) {
	case Updater:
		if fn == nil {
			return nil, errNilUpdater
		}
		return fn(jsonvalue.Clone(prev)), nil
	case func(Value) Value:
		if fn == nil {
			return nil, errNilUpdater
		}
		return fn(jsonvalue.Clone(prev)), nil
	default:
		return valueOrUpdater, nil
	}
}
