package instrumentation

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestAllMetricsExposedViaPrometheus verifies that every metric defined in
// metrics.go is recorded and exposed through the provider's Prometheus
// handler.
func TestAllMetricsExposedViaPrometheus(t *testing.T) {
	config := Config{
		ServiceName:     "test-metrics-integration",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	}

	ctx := context.Background()
	provider, err := NewProvider(ctx, config)
	if err != nil {
		t.Fatalf("Failed to create instrumentation provider: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("Metrics should not be nil when instrumentation is enabled")
	}

	metrics.RecordHTTPRequest(ctx, "POST", "/mcp", 200, 50*time.Millisecond)
	metrics.RecordToolCall(ctx, "list_environments", StatusSuccess, "", 5*time.Millisecond)
	metrics.RecordBackendRequest(ctx, BackendDataExplorer, "explore", 200, 30*time.Millisecond)
	metrics.RecordGoverned(ctx, "data", 420, false)

	handler := provider.PrometheusHandler()
	if handler == nil {
		t.Fatal("PrometheusHandler should not be nil with the prometheus exporter")
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("metrics endpoint returned %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	output := string(body)

	expected := []string{
		"http_requests_total",
		"http_request_duration_seconds",
		"mcp_tool_calls_total",
		"mcp_tool_call_duration_seconds",
		"backend_requests_total",
		"backend_request_duration_seconds",
		"governed_responses_total",
		"response_tokens",
	}
	for _, name := range expected {
		if !strings.Contains(output, name) {
			t.Errorf("metric %q not exposed via Prometheus", name)
		}
	}
}

func TestProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, Config{Enabled: false})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if provider.Enabled() {
		t.Error("disabled provider should report Enabled() == false")
	}
	if provider.Metrics() == nil {
		t.Error("disabled provider should still return a no-op recorder")
	}
	if provider.PrometheusHandler() != nil {
		t.Error("disabled provider should not expose a Prometheus handler")
	}
	if provider.AuditLogger() == nil {
		t.Error("AuditLogger should never be nil")
	}

	// Recording against the no-op meter must not panic.
	provider.Metrics().RecordToolCall(ctx, "list_environments", StatusSuccess, "", time.Millisecond)
}

func TestProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Enabled: true, MetricsExporter: "graphite"})
	if err == nil {
		t.Fatal("expected an error for an unsupported exporter")
	}
}

func TestProvider_NilShutdown(t *testing.T) {
	var p *Provider
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("nil provider Shutdown returned %v", err)
	}
	if p.PrometheusEndpoint() != "/metrics" {
		t.Errorf("nil provider PrometheusEndpoint = %q", p.PrometheusEndpoint())
	}
}
