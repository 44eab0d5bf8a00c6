package hydrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

type profile struct {
	Name   string   `json:"name"`
	Age    int      `json:"age"`
	Window window   `json:"window"`
	Tags   []string `json:"tags"`
}

type window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type numeric struct {
	Count any `json:"count"`
}

func TestDecoderCases(t *testing.T) {
	ctx := Context{Scope: "Global", Key: "profile"}

	cases := []struct {
		name      string
		input     any
		options   []DecoderOption[profile]
		expect    profile
		expectErr string
	}{
		{
			name:   "plain",
			input:  map[string]any{"name": "ada", "age": 36, "tags": []any{"x"}},
			expect: profile{Name: "ada", Age: 36, Tags: []string{"x"}},
		},
		{
			name:  "pre hook splits window",
			input: map[string]any{"name": "ada", "window": "09:00 - 17:00"},
			options: []DecoderOption[profile]{
				WithPreHook[profile](splitWindow),
			},
			expect: profile{Name: "ada", Window: window{Start: "09:00", End: "17:00"}},
		},
		{
			name:  "pre hook error",
			input: map[string]any{"window": "nonsense"},
			options: []DecoderOption[profile]{
				WithPreHook[profile](splitWindow),
			},
			expectErr: "pre-hook for Global/profile failed",
		},
		{
			name:  "post hook tags scope",
			input: map[string]any{"name": "ada"},
			options: []DecoderOption[profile]{
				WithPostHook[profile](defaultTag),
			},
			expect: profile{Name: "ada", Tags: []string{"Global:profile"}},
		},
		{
			name:  "unknown fields rejected",
			input: map[string]any{"name": "ada", "extra": true},
			options: []DecoderOption[profile]{
				WithDisallowUnknownFields[profile](),
			},
			expectErr: "decode Global/profile",
		},
		{
			name:  "custom decoder",
			input: `{"name":"grace"}`,
			options: []DecoderOption[profile]{
				WithCustomDecoder[profile](fromString),
			},
			expect: profile{Name: "grace"},
		},
		{
			name:      "type mismatch",
			input:     "just a string",
			expectErr: "decode Global/profile",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := NewDecoder[profile](tc.options...).Decode(ctx, tc.input)
			if tc.expectErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.expectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if !reflect.DeepEqual(tc.expect, result) {
				t.Fatalf("decoded mismatch:\nwant: %#v\n got: %#v", tc.expect, result)
			}
		})
	}
}

func TestDecoderUseNumber(t *testing.T) {
	result, err := NewDecoder[numeric](WithUseNumber[numeric]()).Decode(Context{Key: "n"}, map[string]any{"count": 3})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := result.Count.(json.Number); !ok {
		t.Fatalf("expected json.Number, got %T", result.Count)
	}
}

func TestDecoderDoesNotMutatePayload(t *testing.T) {
	payload := map[string]any{"window": "08:00-12:00"}
	if _, err := NewDecoder[profile](WithPreHook[profile](splitWindow)).Decode(Context{Key: "p"}, payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["window"] != "08:00-12:00" {
		t.Fatalf("payload mutated: %v", payload)
	}
}

func splitWindow(_ Context, payload any) (any, error) {
	m, ok := payload.(map[string]any)
	if !ok {
		return nil, nil
	}
	value, ok := m["window"].(string)
	if !ok || value == "" {
		return m, nil
	}
	parts := strings.Split(value, "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid window %q", value)
	}
	m["window"] = map[string]any{
		"start": strings.TrimSpace(parts[0]),
		"end":   strings.TrimSpace(parts[1]),
	}
	return m, nil
}

func defaultTag(ctx Context, p *profile) error {
	if p == nil {
		return errors.New("profile is nil")
	}
	if len(p.Tags) == 0 {
		p.Tags = []string{ctx.Scope + ":" + ctx.Key}
	}
	return nil
}

func fromString(ctx Context, payload any) (profile, error) {
	raw, ok := payload.(string)
	if !ok {
		return profile{}, fmt.Errorf("expected string payload for %s", ctx)
	}
	var out profile
	err := json.Unmarshal([]byte(raw), &out)
	return out, err
}
