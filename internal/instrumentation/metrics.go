package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric attribute keys
const (
	attrMethod      = "method"
	attrPath        = "path"
	attrStatus      = "status"
	attrStatusClass = "status_class"
	attrTool        = "tool"
	attrErrorKind   = "error_kind"
	attrBackend     = "backend"
	attrOperation   = "operation"
	attrScope       = "scope"
	attrKind        = "kind"
)

var durationBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0}

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// HTTP transport metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// MCP tool metrics
	toolCallsTotal   metric.Int64Counter
	toolCallDuration metric.Float64Histogram

	// Outbound backend metrics
	backendRequestsTotal   metric.Int64Counter
	backendRequestDuration metric.Float64Histogram

	// Response governance metrics
	governedResponsesTotal metric.Int64Counter
	responseTokens         metric.Int64Histogram
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.toolCallsTotal, err = meter.Int64Counter(
		"mcp_tool_calls_total",
		metric.WithDescription("Total number of MCP tool calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_calls_total counter: %w", err)
	}

	m.toolCallDuration, err = meter.Float64Histogram(
		"mcp_tool_call_duration_seconds",
		metric.WithDescription("MCP tool call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_call_duration_seconds histogram: %w", err)
	}

	m.backendRequestsTotal, err = meter.Int64Counter(
		"backend_requests_total",
		metric.WithDescription("Total number of requests sent to query backends"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend_requests_total counter: %w", err)
	}

	m.backendRequestDuration, err = meter.Float64Histogram(
		"backend_request_duration_seconds",
		metric.WithDescription("Query backend request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend_request_duration_seconds histogram: %w", err)
	}

	m.governedResponsesTotal, err = meter.Int64Counter(
		"governed_responses_total",
		metric.WithDescription("Total number of governed responses by materialization kind"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create governed_responses_total counter: %w", err)
	}

	m.responseTokens, err = meter.Int64Histogram(
		"response_tokens",
		metric.WithDescription("Estimated token count of governed responses"),
		metric.WithUnit("{token}"),
		metric.WithExplicitBucketBoundaries(100, 1000, 5000, 10000, 20000, 30000, 50000, 100000, 500000),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create response_tokens histogram: %w", err)
	}

	return m, nil
}

// NewNoopMetrics returns a recorder backed by a no-op meter.
func NewNoopMetrics() *Metrics {
	m, err := NewMetrics(noop.NewMeterProvider().Meter(TracerName))
	if err != nil {
		// The no-op meter never fails to create instruments.
		return &Metrics{}
	}
	return m
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordToolCall records one MCP tool call. errorKind is empty on success.
func (m *Metrics) RecordToolCall(ctx context.Context, tool, status, errorKind string, duration time.Duration) {
	if m == nil || m.toolCallsTotal == nil || m.toolCallDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status),
		attribute.String(attrErrorKind, errorKind),
	}

	m.toolCallsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolCallDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs[:2]...))
}

// RecordBackendRequest records one outbound backend call. A zero status code
// means the call failed before a response arrived.
func (m *Metrics) RecordBackendRequest(ctx context.Context, backend, operation string, statusCode int, duration time.Duration) {
	if m == nil || m.backendRequestsTotal == nil || m.backendRequestDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrBackend, backend),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatusClass, StatusClass(statusCode)),
	}

	m.backendRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	if duration > 0 {
		m.backendRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	}
}

// RecordGoverned records the materialization of one governed response. The
// tool invocation carried by ctx, if any, is updated as well.
func (m *Metrics) RecordGoverned(ctx context.Context, scope string, tokens int, spilled bool) {
	kind := "inline"
	if spilled {
		kind = "spilled"
	}
	if ti := InvocationFromContext(ctx); ti != nil {
		ti.WithResult(kind, tokens)
	}

	if m == nil || m.governedResponsesTotal == nil || m.responseTokens == nil {
		return
	}

	m.governedResponsesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrScope, scope),
		attribute.String(attrKind, kind),
	))
	m.responseTokens.Record(ctx, int64(tokens), metric.WithAttributes(
		attribute.String(attrScope, scope),
	))
}
