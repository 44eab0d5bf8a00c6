package store

import (
	"github.com/goliatone/go-scoped-store/internal/hydrate"
)

// DecodeOption configures Decode.
type DecodeOption[T any] func(*decodeConfig[T])

type decodeConfig[T any] struct {
	opts []hydrate.DecoderOption[T]
}

// DecodeWithPreHook rewrites the JSON-like value before it is decoded.
func DecodeWithPreHook[T any](hook func(scope, key string, value any) (any, error)) DecodeOption[T] {
	return func(cfg *decodeConfig[T]) {
		if hook == nil {
			return
		}
		cfg.opts = append(cfg.opts, hydrate.WithPreHook[T](func(ctx hydrate.Context, value any) (any, error) {
			return hook(ctx.Scope, ctx.Key, value)
		}))
	}
}

// DecodeWithPostHook adjusts or validates the decoded value.
func DecodeWithPostHook[T any](hook func(scope, key string, out *T) error) DecodeOption[T] {
	return func(cfg *decodeConfig[T]) {
		if hook == nil {
			return
		}
		cfg.opts = append(cfg.opts, hydrate.WithPostHook[T](func(ctx hydrate.Context, out *T) error {
			return hook(ctx.Scope, ctx.Key, out)
		}))
	}
}

// DecodeUseNumber keeps numbers as json.Number.
func DecodeUseNumber[T any]() DecodeOption[T] {
	return func(cfg *decodeConfig[T]) {
		cfg.opts = append(cfg.opts, hydrate.WithUseNumber[T]())
	}
}

// DecodeDisallowUnknownFields rejects object fields T does not declare.
func DecodeDisallowUnknownFields[T any]() DecodeOption[T] {
	return func(cfg *decodeConfig[T]) {
		cfg.opts = append(cfg.opts, hydrate.WithDisallowUnknownFields[T]())
	}
}

// Decode reads key from s and converts it into T through a JSON round trip.
func Decode[T any](s *Store, key string, opts ...DecodeOption[T]) (T, error) {
	var zero T
	value, err := s.GetState(key)
	if err != nil {
		return zero, err
	}
	cfg := decodeConfig[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return hydrate.NewDecoder[T](cfg.opts...).Decode(hydrate.Context{Scope: s.id, Key: key}, value)
}
