package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/giantswarm/mcp-query/internal/instrumentation"
)

// Metrics server defaults.
const (
	DefaultMetricsAddr       = ":9090"
	DefaultShutdownTimeout   = 30 * time.Second
	metricsReadHeaderTimeout = 5 * time.Second
)

// MetricsServerConfig configures the dedicated metrics listener.
type MetricsServerConfig struct {
	// Addr is the listen address (default ":9090").
	Addr string

	// InstrumentationProvider supplies the Prometheus handler.
	InstrumentationProvider *instrumentation.Provider
}

// MetricsServer serves /metrics on its own listener so the MCP endpoint and
// the scrape endpoint can be exposed separately.
type MetricsServer struct {
	addr   string
	server *http.Server

	mu      sync.Mutex
	started bool
}

// NewMetricsServer builds a metrics server. The provider must use the
// Prometheus exporter for /metrics to serve data.
func NewMetricsServer(cfg MetricsServerConfig) (*MetricsServer, error) {
	if cfg.InstrumentationProvider == nil {
		return nil, errors.New("instrumentation provider is required")
	}
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultMetricsAddr
	}

	mux := http.NewServeMux()
	provider := cfg.InstrumentationProvider
	if handler := provider.PrometheusHandler(); handler != nil {
		mux.Handle(provider.PrometheusEndpoint(), handler)
	} else {
		mux.HandleFunc(provider.PrometheusEndpoint(), func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "prometheus exporter is not enabled", http.StatusNotFound)
		})
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &MetricsServer{
		addr: addr,
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: metricsReadHeaderTimeout,
		},
	}, nil
}

// Addr returns the listen address.
func (m *MetricsServer) Addr() string {
	return m.addr
}

// Start listens and serves until Shutdown. It returns http.ErrServerClosed
// after a graceful shutdown.
func (m *MetricsServer) Start() error {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()

	if err := m.server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// Shutdown stops the server. It is safe to call without Start.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()
	if !started {
		return nil
	}
	return m.server.Shutdown(ctx)
}
