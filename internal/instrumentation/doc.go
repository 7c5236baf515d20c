// Package instrumentation provides OpenTelemetry instrumentation for the
// mcp-query server.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Tool Metrics:
//   - mcp_tool_calls_total: Counter of tool calls by tool, status and error_kind
//   - mcp_tool_call_duration_seconds: Histogram of tool call durations
//
// Backend Metrics:
//   - backend_requests_total: Counter of outbound requests by backend, operation and status_class
//   - backend_request_duration_seconds: Histogram of outbound request durations
//
// Response Governance Metrics:
//   - governed_responses_total: Counter of results by scope and kind (inline, spilled)
//   - response_tokens: Histogram of estimated result tokens by scope
//
// # Cardinality Considerations
//
// Environment names, database names and Elasticsearch index names never
// appear as metric labels. Environments are reduced with ClassifyEnvironment,
// HTTP status codes with StatusClass and search paths with SearchEndpoint.
// Full names are available on spans and in audit logs.
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: false)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: mcp-query)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordToolCall(ctx, "list_dbnames", instrumentation.StatusSuccess, "", time.Since(start))
package instrumentation
