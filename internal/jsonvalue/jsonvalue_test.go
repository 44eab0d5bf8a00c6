package jsonvalue

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestNormalizeCanonicalizesContainers(t *testing.T) {
	input := map[string]any{
		"tags":   []string{"a", "b"},
		"limits": map[string]int{"daily": 3},
		"nested": map[string]any{"ok": true, "none": nil},
		"count":  2,
	}

	got, err := Normalize(input)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	want := map[string]any{
		"tags":   []any{"a", "b"},
		"limits": map[string]any{"daily": 3},
		"nested": map[string]any{"ok": true, "none": nil},
		"count":  2,
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("unexpected normalized value:\nwant: %#v\n got: %#v", want, got)
	}
}

func TestNormalizeDetachesFromInput(t *testing.T) {
	input := map[string]any{"inner": map[string]any{"a": 1}}
	got, err := Normalize(input)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	input["inner"].(map[string]any)["a"] = 99
	if got.(map[string]any)["inner"].(map[string]any)["a"] != 1 {
		t.Fatalf("expected normalized copy to be detached, got %#v", got)
	}
}

func TestNormalizeRejectsNonJSON(t *testing.T) {
	cases := map[string]any{
		"struct":   struct{ A int }{A: 1},
		"func":     func() {},
		"chan":     make(chan int),
		"nan":      math.NaN(),
		"inf":      math.Inf(1),
		"int keys": map[int]string{1: "a"},
		"nested":   map[string]any{"a": []any{1, struct{}{}}},
		"number":   json.Number("nope"),
	}
	for name, value := range cases {
		if _, err := Normalize(value); !errors.Is(err, ErrNotJSON) {
			t.Fatalf("%s: expected ErrNotJSON, got %v", name, err)
		}
	}
}

func TestNormalizeAcceptsScalars(t *testing.T) {
	for _, value := range []any{nil, "s", true, 1, int64(2), uint8(3), 1.5, float32(2.5), json.Number("12")} {
		got, err := Normalize(value)
		if err != nil {
			t.Fatalf("normalize %#v: %v", value, err)
		}
		if got != value {
			t.Fatalf("expected scalar %#v preserved, got %#v", value, got)
		}
	}
}

func TestCloneDeepCopies(t *testing.T) {
	original := map[string]any{"list": []any{map[string]any{"a": 1}}}
	clone := Clone(original).(map[string]any)
	clone["list"].([]any)[0].(map[string]any)["a"] = 2
	if original["list"].([]any)[0].(map[string]any)["a"] != 1 {
		t.Fatalf("clone should not share nested containers")
	}
}

func TestNormalizeRejectsCycles(t *testing.T) {
	selfMap := map[string]any{}
	selfMap["self"] = selfMap

	selfSlice := []any{nil}
	selfSlice[0] = selfSlice

	deep := map[string]any{"list": []any{map[string]any{}}}
	deep["list"].([]any)[0].(map[string]any)["back"] = deep

	selfPtr := new(any)
	*selfPtr = selfPtr

	for name, value := range map[string]any{"map": selfMap, "slice": selfSlice, "deep": deep, "pointer": selfPtr} {
		if _, err := Normalize(value); !errors.Is(err, ErrNotJSON) {
			t.Fatalf("%s: expected ErrNotJSON, got %v", name, err)
		}
	}
}

func TestNormalizeAllowsSharedValues(t *testing.T) {
	shared := map[string]any{"a": 1}
	list := []any{"x"}
	got, err := Normalize(map[string]any{"left": shared, "right": shared, "l1": list, "l2": list})
	if err != nil {
		t.Fatalf("shared acyclic values should normalize: %v", err)
	}
	out := got.(map[string]any)
	if !reflect.DeepEqual(out["left"], out["right"]) || !reflect.DeepEqual(out["l1"], []any{"x"}) {
		t.Fatalf("unexpected result %#v", out)
	}
}
