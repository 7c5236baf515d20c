package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for the mcp-query package.
const TracerName = "github.com/giantswarm/mcp-query"

// Span attribute keys.
const (
	// SpanAttrTool is the MCP tool name.
	SpanAttrTool = "mcp.tool"

	// SpanAttrEnvironment is the data service environment name.
	SpanAttrEnvironment = "mcp.environment"

	// SpanAttrEnvironmentType is the classified environment type.
	SpanAttrEnvironmentType = "mcp.environment_type"

	// SpanAttrBackend is the backend family (kibana, data-explorer).
	SpanAttrBackend = "mcp.backend"

	// SpanAttrOperation is the backend operation.
	SpanAttrOperation = "mcp.operation"

	// SpanAttrDatabase is the data service database name.
	SpanAttrDatabase = "db.name"

	// SpanAttrSearchEndpoint is the reduced Elasticsearch endpoint.
	SpanAttrSearchEndpoint = "mcp.search.endpoint"

	// SpanAttrResultKind is "inline" or "spilled".
	SpanAttrResultKind = "mcp.result.kind"

	// SpanAttrResultTokens is the estimated token count of the result.
	SpanAttrResultTokens = "mcp.result.tokens"
)

// SpanAttributeBuilder helps construct OpenTelemetry span attributes
// with consistent naming and cardinality controls.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewSpanAttributeBuilder creates a new SpanAttributeBuilder.
func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 8),
	}
}

// WithTool adds the MCP tool name attribute.
func (b *SpanAttributeBuilder) WithTool(tool string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrTool, tool))
	return b
}

// WithEnvironment adds the environment name and its classified type.
func (b *SpanAttributeBuilder) WithEnvironment(name string) *SpanAttributeBuilder {
	if name != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrEnvironment, name))
	}
	b.attrs = append(b.attrs, attribute.String(SpanAttrEnvironmentType, ClassifyEnvironment(name)))
	return b
}

// WithBackend adds the backend family attribute.
func (b *SpanAttributeBuilder) WithBackend(backend string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrBackend, backend))
	return b
}

// WithDatabase adds the database name attribute.
func (b *SpanAttributeBuilder) WithDatabase(dbname string) *SpanAttributeBuilder {
	if dbname != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrDatabase, dbname))
	}
	return b
}

// WithSearchPath adds the reduced Elasticsearch endpoint of path.
func (b *SpanAttributeBuilder) WithSearchPath(path string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrSearchEndpoint, SearchEndpoint(path)))
	return b
}

// WithResult adds the result materialization attributes.
func (b *SpanAttributeBuilder) WithResult(kind string, tokens int) *SpanAttributeBuilder {
	b.attrs = append(b.attrs,
		attribute.String(SpanAttrResultKind, kind),
		attribute.Int(SpanAttrResultTokens, tokens),
	)
	return b
}

// Build returns the constructed attributes.
func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// StartSpan starts a new span with the given name and attributes.
// The caller is responsible for ending the span with defer span.End().
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartToolSpan starts a server span for an MCP tool invocation.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
	allAttrs = append(allAttrs, attribute.String(SpanAttrTool, toolName))
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "tool."+toolName,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartBackendSpan starts a client span for one backend operation.
func StartBackendSpan(ctx context.Context, backend, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+2)
	allAttrs = append(allAttrs,
		attribute.String(SpanAttrBackend, backend),
		attribute.String(SpanAttrOperation, operation),
	)
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, backend+"."+operation,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records an error on the span and sets the status to error.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// GetTraceID returns the trace ID from the current span in context.
// Returns empty string if no valid span is present.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

// GetSpanID returns the span ID from the current span in context.
func GetSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().SpanID().String()
	}
	return ""
}
