package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/giantswarm/mcp-query/internal/backend"
	"github.com/giantswarm/mcp-query/internal/environment"
	"github.com/giantswarm/mcp-query/internal/filter"
	"github.com/giantswarm/mcp-query/internal/instrumentation"
	"github.com/giantswarm/mcp-query/internal/logging"
	"github.com/giantswarm/mcp-query/internal/tools/output"
)

// ServerContext encapsulates all dependencies needed by the MCP server
// and provides a clean abstraction for dependency injection and lifecycle management.
type ServerContext struct {
	logger *slog.Logger
	config *Config

	registry     *environment.Registry
	source       environment.Source
	resolver     *environment.Resolver
	search       *backend.SearchExecutor
	dataService  *backend.DataServiceExecutor
	httpClient   *http.Client
	jqCompiler   filter.Compiler
	tokenCounter output.TokenCounter

	instrumentationProvider *instrumentation.Provider

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new ServerContext with default values.
// Use the provided functional options to customize the context.
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	serverCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:    serverCtx,
		cancel: cancel,
		config: NewDefaultConfig(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(sc); err != nil {
			cancel()
			return nil, err
		}
	}

	if err := sc.validate(); err != nil {
		cancel()
		return nil, err
	}

	if err := sc.wire(); err != nil {
		cancel()
		return nil, err
	}

	return sc, nil
}

// wire builds the collaborators that were not injected by options.
func (sc *ServerContext) wire() error {
	if sc.registry == nil {
		reg, err := environment.DefaultRegistry()
		if err != nil {
			return err
		}
		sc.registry = reg
	}
	if sc.resolver == nil {
		sc.resolver = environment.NewResolver(sc.registry, sc.source)
	}

	if sc.config.Output == nil {
		sc.config.Output = output.DefaultConfig()
	}
	out := sc.config.Output.Validate()
	sc.config.Output = out

	metrics := sc.instrumentationProvider.Metrics()
	if metrics == nil {
		metrics = instrumentation.NewNoopMetrics()
	}
	govOpts := []output.GovernorOption{
		output.WithSpillDir(out.SpillDir),
		output.WithObserver(metrics),
	}
	if sc.tokenCounter != nil {
		govOpts = append(govOpts, output.WithTokenCounter(sc.tokenCounter))
	}

	httpLogger := logging.NewSlogAdapter(logging.WithOperation(sc.logger, "backend"))

	if sc.search == nil {
		sc.search = &backend.SearchExecutor{
			Governor:   output.NewGovernor(output.ScopeSearch, out.SearchMaxTokens, govOpts...),
			Compiler:   sc.jqCompiler,
			Timeout:    sc.config.RequestTimeout,
			Observer:   metrics,
			HTTPClient: sc.httpClient,
			Logger:     httpLogger,
		}
	}
	if sc.dataService == nil {
		sc.dataService = &backend.DataServiceExecutor{
			Governor:   output.NewGovernor(output.ScopeData, out.DataMaxTokens, govOpts...),
			Timeout:    sc.config.RequestTimeout,
			Observer:   metrics,
			HTTPClient: sc.httpClient,
			Logger:     httpLogger,
		}
	}
	return nil
}

// Context returns the server context for cancellation and deadlines.
func (sc *ServerContext) Context() context.Context {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.ctx
}

// Logger returns the structured logger.
func (sc *ServerContext) Logger() *slog.Logger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.logger
}

// Config returns the server configuration.
func (sc *ServerContext) Config() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config
}

// Registry returns the environment registry.
func (sc *ServerContext) Registry() *environment.Registry {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.registry
}

// Resolver returns the environment resolver.
func (sc *ServerContext) Resolver() *environment.Resolver {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.resolver
}

// SearchExecutor returns the executor for search proxy queries.
func (sc *ServerContext) SearchExecutor() *backend.SearchExecutor {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.search
}

// DataServiceExecutor returns the executor for data service queries.
func (sc *ServerContext) DataServiceExecutor() *backend.DataServiceExecutor {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.dataService
}

// InstrumentationProvider returns the instrumentation provider, which may be nil.
func (sc *ServerContext) InstrumentationProvider() *instrumentation.Provider {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.instrumentationProvider
}

// Shutdown gracefully shuts down the server context.
// This cancels the context and releases any resources.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.logger.Info("shutting down server context")

	if sc.cancel != nil {
		sc.cancel()
	}
	sc.shutdown = true

	sc.logger.Info("server context shutdown complete")
	return nil
}

// IsShutdown returns true if the server context has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// validate ensures all required dependencies are set.
func (sc *ServerContext) validate() error {
	if sc.logger == nil {
		return ErrMissingLogger
	}
	if sc.config == nil {
		return ErrMissingConfig
	}
	if sc.config.RequestTimeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Config holds the server configuration.
type Config struct {
	ServerName string `json:"serverName"`
	Version    string `json:"version"`

	// RequestTimeout bounds every outbound backend request.
	RequestTimeout time.Duration `json:"requestTimeout"`

	// Output holds the response budgets and spill directory.
	Output *output.Config `json:"output"`

	LogLevel  string `json:"logLevel"`
	LogFormat string `json:"logFormat"`
}

// NewDefaultConfig creates a configuration with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		ServerName:     "mcp-query",
		Version:        "0.1.0",
		RequestTimeout: backend.DefaultTimeout,
		Output:         output.DefaultConfig(),
		LogLevel:       "info",
		LogFormat:      logging.FormatText,
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Output = c.Output.Clone()
	if clone.Output == nil {
		clone.Output = output.DefaultConfig()
	}
	return &clone
}
