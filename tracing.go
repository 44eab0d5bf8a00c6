package store

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/goliatone/go-scoped-store"

const (
	attrScope     = attribute.Key("store.scope")
	attrKey       = attribute.Key("store.key")
	attrListeners = attribute.Key("store.listeners")
)

func (s *Store) startSpan(name string, attrs ...attribute.KeyValue) trace.Span {
	_, span := s.cfg.tracer.Start(context.Background(), name,
		trace.WithAttributes(append([]attribute.KeyValue{attrScope.String(s.id)}, attrs...)...),
	)
	return span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
