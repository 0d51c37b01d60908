// Package tracer provides the tracing abstraction used around statement
// building. It supports OpenTelemetry and custom tracer implementations.
package tracer

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts spans.
type Tracer interface {
	// StartSpan starts a new tracing span with the given name
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

// Span represents one traced operation.
type Span interface {
	// SetAttributes sets key-value attributes on the span
	SetAttributes(attrs ...attribute.KeyValue)
	// RecordError records an error that occurred during the span
	RecordError(err error)
	// SetStatus sets the status code and description of the span
	SetStatus(code codes.Code, description string)
	// End marks the span as complete
	End()
}

// NoopTracer is a tracer that does nothing. It is the default.
type NoopTracer struct{}

// StartSpan returns the context unchanged with a no-op span.
func (n *NoopTracer) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, &NoopSpan{}
}

// NoopSpan is a span that does nothing.
type NoopSpan struct{}

// SetAttributes does nothing.
func (n *NoopSpan) SetAttributes(_ ...attribute.KeyValue) {}

// RecordError does nothing.
func (n *NoopSpan) RecordError(_ error) {}

// SetStatus does nothing.
func (n *NoopSpan) SetStatus(_ codes.Code, _ string) {}

// End does nothing.
func (n *NoopSpan) End() {}

// OtelTracer adapts an OpenTelemetry tracer.
type OtelTracer struct {
	tracer trace.Tracer
}

// NewOtelTracer creates a new OpenTelemetry tracer adapter.
// The provided tracer must not be nil.
func NewOtelTracer(tracer trace.Tracer) *OtelTracer {
	return &OtelTracer{tracer: tracer}
}

// StartSpan starts a new OpenTelemetry span.
func (t *OtelTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, &OtelSpan{span: span}
}

// OtelSpan wraps an OpenTelemetry span.
type OtelSpan struct {
	span trace.Span
}

// SetAttributes sets OpenTelemetry attributes on the span.
func (s *OtelSpan) SetAttributes(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

// RecordError records an error on the OpenTelemetry span.
func (s *OtelSpan) RecordError(err error) {
	s.span.RecordError(err)
}

// SetStatus sets the status of the OpenTelemetry span.
func (s *OtelSpan) SetStatus(code codes.Code, description string) {
	s.span.SetStatus(code, description)
}

// End completes the OpenTelemetry span.
func (s *OtelSpan) End() {
	s.span.End()
}

// Attribute keys set on statement-building spans.
const (
	AttrEntity    = attribute.Key("entmap.entity")
	AttrKind      = attribute.Key("entmap.statement.kind")
	AttrCacheHit  = attribute.Key("entmap.cache.hit")
	AttrTable     = attribute.Key("db.sql.table")
	AttrStatement = attribute.Key("db.statement")
)

// SpanName returns the span name for a statement kind.
func SpanName(kind string) string {
	return "entmap.build." + kind
}

// StatementMetadata describes one statement build.
type StatementMetadata struct {
	// Entity is the Go type name of the entity
	Entity string
	// Table is the qualified table name (empty when it could not be resolved)
	Table string
	// Kind is the statement kind (insert, update, upsert, ...)
	Kind string
	// CacheHit reports whether the statement came from the cache
	CacheHit bool
	// SQL is the generated statement
	SQL string
	// Error is any error that stopped the build
	Error error
}

// AddStatementAttributes sets the statement attributes and status on span.
func AddStatementAttributes(span Span, meta *StatementMetadata) {
	attrs := []attribute.KeyValue{
		AttrEntity.String(meta.Entity),
		AttrKind.String(meta.Kind),
		AttrCacheHit.Bool(meta.CacheHit),
	}

	if meta.Table != "" {
		attrs = append(attrs, AttrTable.String(meta.Table))
	}

	if meta.SQL != "" {
		attrs = append(attrs, AttrStatement.String(meta.SQL))
	}

	span.SetAttributes(attrs...)

	if meta.Error != nil {
		span.RecordError(meta.Error)
		span.SetStatus(codes.Error, meta.Error.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}
