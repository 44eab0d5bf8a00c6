// Package jsonvalue validates, normalizes and copies JSON-like values: nil,
// strings, booleans, finite numbers, sequences and string-keyed mappings.
package jsonvalue

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// ErrNotJSON reports a value that cannot be represented as JSON.
var ErrNotJSON = errors.New("jsonvalue: not a JSON-like value")

// Normalize returns a detached copy of v in canonical form. Sequences become
// []any and mappings become map[string]any; scalars keep their Go type.
// Self-referencing containers are rejected with ErrNotJSON.
func Normalize(v any) (any, error) {
	w := walker{visiting: map[visit]struct{}{}}
	return w.normalize(reflect.ValueOf(v), "")
}

// visit identifies a container on the current path.
type visit struct {
	ptr uintptr
	typ reflect.Type
	len int
}

type walker struct {
	visiting map[visit]struct{}
}

// enter marks v as being walked and fails when v is already on the path.
func (w *walker) enter(v reflect.Value, path string) (func(), error) {
	key := visit{ptr: v.Pointer(), typ: v.Type()}
	if v.Kind() == reflect.Slice {
		key.len = v.Len()
	}
	if _, ok := w.visiting[key]; ok {
		return nil, fmt.Errorf("%w at %s: cycle", ErrNotJSON, describePath(path))
	}
	w.visiting[key] = struct{}{}
	return func() { delete(w.visiting, key) }, nil
}

// Validate reports whether v is JSON-like without copying it.
func Validate(v any) error {
	_, err := Normalize(v)
	return err
}

// Clone deep copies a value previously returned by Normalize.
func Clone(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		if typed == nil {
			return map[string]any(nil)
		}
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[key] = Clone(value)
		}
		return out
	case []any:
		if typed == nil {
			return []any(nil)
		}
		out := make([]any, len(typed))
		for i, value := range typed {
			out[i] = Clone(value)
		}
		return out
	default:
		return v
	}
}

// CloneMap deep copies m. Values outside the JSON model are shared.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for key, value := range m {
		out[key] = Clone(value)
	}
	return out
}

func (w *walker) normalize(v reflect.Value, path string) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}

	if n, ok := v.Interface().(json.Number); ok {
		if _, err := n.Float64(); err != nil {
			return nil, fmt.Errorf("%w at %s: %v", ErrNotJSON, describePath(path), err)
		}
		return n, nil
	}

	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil, nil
		}
		if v.Kind() == reflect.Interface {
			return w.normalize(v.Elem(), path)
		}
		leave, err := w.enter(v, path)
		if err != nil {
			return nil, err
		}
		defer leave()
		return w.normalize(v.Elem(), path)
	case reflect.String, reflect.Bool:
		return v.Interface(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Interface(), nil
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w at %s: non-finite number", ErrNotJSON, describePath(path))
		}
		return v.Interface(), nil
	case reflect.Slice:
		if v.IsNil() {
			return []any(nil), nil
		}
		leave, err := w.enter(v, path)
		if err != nil {
			return nil, err
		}
		defer leave()
		return w.normalizeSequence(v, path)
	case reflect.Array:
		return w.normalizeSequence(v, path)
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w at %s: map key %s", ErrNotJSON, describePath(path), v.Type().Key())
		}
		if v.IsNil() {
			return map[string]any(nil), nil
		}
		leave, err := w.enter(v, path)
		if err != nil {
			return nil, err
		}
		defer leave()
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			value, err := w.normalize(iter.Value(), joinPath(path, key))
			if err != nil {
				return nil, err
			}
			out[key] = value
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w at %s: %s", ErrNotJSON, describePath(path), v.Type())
	}
}

func (w *walker) normalizeSequence(v reflect.Value, path string) (any, error) {
	out := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		value, err := w.normalize(v.Index(i), path+"["+strconv.Itoa(i)+"]")
		if err != nil {
			return nil, err
		}
		out[i] = value
	}
	return out, nil
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + "." + segment
}

func describePath(path string) string {
	if path == "" {
		return "<root>"
	}
	return strconv.Quote(path)
}
