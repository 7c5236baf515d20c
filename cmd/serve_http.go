package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/mcp-query/internal/logging"
	"github.com/giantswarm/mcp-query/internal/server"
	"github.com/giantswarm/mcp-query/internal/server/middleware"
)

// HTTP server timeouts. WriteTimeout leaves room for slow backend queries.
const (
	httpReadHeaderTimeout = 10 * time.Second
	httpWriteTimeout      = 120 * time.Second
	httpIdleTimeout       = 120 * time.Second
)

// runStreamableHTTPServer runs the server with the streamable HTTP transport.
func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, config ServeConfig, sc *server.ServerContext) error {
	mux := http.NewServeMux()
	mux.Handle(config.HTTPEndpoint, mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(config.HTTPEndpoint),
	))

	sc.Logger().Info("streamable HTTP server starting",
		slog.String("addr", config.HTTPAddr),
		slog.String("endpoint", config.HTTPEndpoint))

	return serveHTTP(ctx, mux, config, sc)
}

// serveHTTP adds the health endpoints and middleware chain to mux, serves it
// on config.HTTPAddr and, when instrumentation is enabled, starts the
// dedicated metrics server. It returns after ctx is cancelled and both
// listeners have shut down, or as soon as either fails.
func serveHTTP(ctx context.Context, mux *http.ServeMux, config ServeConfig, sc *server.ServerContext) error {
	logger := sc.Logger()
	provider := sc.InstrumentationProvider()

	healthChecker := server.NewHealthChecker(sc)
	healthChecker.RegisterHealthEndpoints(mux)

	handler, err := buildHandler(mux, config, sc)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              config.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: httpReadHeaderTimeout,
		WriteTimeout:      httpWriteTimeout,
		IdleTimeout:       httpIdleTimeout,
	}
	if config.Transport == transportSSE {
		// SSE streams stay open for the whole session.
		httpServer.WriteTimeout = 0
	}

	var metricsServer *server.MetricsServer
	if config.Metrics.Enabled && provider != nil && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    config.Metrics.Addr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		return nil
	})
	if metricsServer != nil {
		logger.Info("metrics server starting", slog.String("addr", metricsServer.Addr()))
		g.Go(func() error {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		healthChecker.SetReady(false)
		logger.Info("shutdown signal received, stopping HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()

		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("error shutting down metrics server", logging.Err(err))
			}
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("HTTP server gracefully stopped")
	return nil
}

// buildHandler wraps h in the HTTP middleware chain. The outermost layer is
// listed last.
func buildHandler(h http.Handler, config ServeConfig, sc *server.ServerContext) (http.Handler, error) {
	origins, err := middleware.ValidateAllowedOrigins(config.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	h = middleware.HTTPMetrics(sc.InstrumentationProvider())(h)
	if config.MaxRequestBytes > 0 {
		h = middleware.MaxRequestSize(config.MaxRequestBytes)(h)
	}
	if len(origins) > 0 {
		h = middleware.CORS(origins)(h)
	}
	h = middleware.SecurityHeaders(config.EnableHSTS)(h)
	return h, nil
}
