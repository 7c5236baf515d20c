package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/giantswarm/mcp-query/internal/backend"
	"github.com/giantswarm/mcp-query/internal/environment"
	"github.com/giantswarm/mcp-query/internal/filter"
	"github.com/giantswarm/mcp-query/internal/instrumentation"
	"github.com/giantswarm/mcp-query/internal/tools/output"
)

// Option is a functional option for configuring ServerContext.
type Option func(*ServerContext) error

// WithLogger sets the logger for the ServerContext.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) error {
		if logger == nil {
			return ErrMissingLogger
		}
		sc.logger = logger
		return nil
	}
}

// WithConfig sets the configuration for the ServerContext.
func WithConfig(config *Config) Option {
	return func(sc *ServerContext) error {
		if config == nil {
			return ErrMissingConfig
		}
		sc.config = config.Clone()
		return nil
	}
}

// WithServerName sets the server name in the configuration.
func WithServerName(name string) Option {
	return func(sc *ServerContext) error {
		sc.config.ServerName = name
		return nil
	}
}

// WithVersion sets the version reported by health endpoints.
func WithVersion(version string) Option {
	return func(sc *ServerContext) error {
		sc.config.Version = version
		return nil
	}
}

// WithRequestTimeout sets the timeout applied to each outbound request.
func WithRequestTimeout(d time.Duration) Option {
	return func(sc *ServerContext) error {
		if d < 0 {
			return ErrInvalidTimeout
		}
		sc.config.RequestTimeout = d
		return nil
	}
}

// WithOutputConfig sets the response budgets and spill directory.
func WithOutputConfig(cfg *output.Config) Option {
	return func(sc *ServerContext) error {
		if cfg == nil {
			return ErrMissingConfig
		}
		sc.config.Output = cfg.Clone()
		return nil
	}
}

// WithRegistry replaces the embedded environment registry.
func WithRegistry(reg *environment.Registry) Option {
	return func(sc *ServerContext) error {
		if reg == nil {
			return ErrMissingRegistry
		}
		sc.registry = reg
		return nil
	}
}

// WithCredentialSource sets where data service credentials are looked up.
// The default is the process environment.
func WithCredentialSource(src environment.Source) Option {
	return func(sc *ServerContext) error {
		sc.source = src
		return nil
	}
}

// WithHTTPClient sets the HTTP client used by both backends.
func WithHTTPClient(client *http.Client) Option {
	return func(sc *ServerContext) error {
		sc.httpClient = client
		return nil
	}
}

// WithFilterCompiler replaces the jq compiler used for search result filters.
func WithFilterCompiler(c filter.Compiler) Option {
	return func(sc *ServerContext) error {
		sc.jqCompiler = c
		return nil
	}
}

// WithTokenCounter replaces the token estimator used by both governors.
func WithTokenCounter(c output.TokenCounter) Option {
	return func(sc *ServerContext) error {
		sc.tokenCounter = c
		return nil
	}
}

// WithSearchExecutor injects a preconfigured search executor.
func WithSearchExecutor(e *backend.SearchExecutor) Option {
	return func(sc *ServerContext) error {
		sc.search = e
		return nil
	}
}

// WithDataServiceExecutor injects a preconfigured data service executor.
func WithDataServiceExecutor(e *backend.DataServiceExecutor) Option {
	return func(sc *ServerContext) error {
		sc.dataService = e
		return nil
	}
}

// WithInstrumentationProvider sets the OpenTelemetry instrumentation provider.
func WithInstrumentationProvider(provider *instrumentation.Provider) Option {
	return func(sc *ServerContext) error {
		sc.instrumentationProvider = provider
		return nil
	}
}

// Error definitions for ServerContext validation and operations.
var (
	ErrMissingLogger   = errors.New("logger is required")
	ErrMissingConfig   = errors.New("configuration is required")
	ErrMissingRegistry = errors.New("environment registry is required")
	ErrInvalidTimeout  = errors.New("request timeout must not be negative")
	ErrServerShutdown  = errors.New("server context has been shutdown")
)
