package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-query/internal/environment"
	"github.com/giantswarm/mcp-query/internal/instrumentation"
	"github.com/giantswarm/mcp-query/internal/logging"
	"github.com/giantswarm/mcp-query/internal/server"
	"github.com/giantswarm/mcp-query/internal/tools/dataservice"
	"github.com/giantswarm/mcp-query/internal/tools/search"
)

// Transport names accepted by --transport.
const (
	transportStdio          = "stdio"
	transportSSE            = "sse"
	transportStreamableHTTP = "streamable-http"
)

// newServeCmd creates the Cobra command for starting the MCP server.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP query server",
		Long: `Start the Model Context Protocol server exposing the Elasticsearch and
data service query tools.

Supported transports:
  - stdio: standard input/output (default)
  - sse: Server-Sent Events over HTTP
  - streamable-http: streamable HTTP transport

Every flag can also be set through an environment variable prefixed with
MCP_QUERY_, for example MCP_QUERY_TRANSPORT=streamable-http. Data service
credentials are read from DATA_EXPLORER_MODULE_NAME and DATA_EXPLORER_SECRET,
or their per-environment variants such as DATA_EXPLORER_SG_LIVE_SECRET.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadServeConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Validate(); err != nil {
				return err
			}
			return runServe(config)
		},
	}

	addServeFlags(cmd)
	return cmd
}

// credentialSource layers the process environment over the optional dotenv
// file.
func credentialSource(envFile string) (environment.Source, error) {
	if envFile == "" {
		return environment.ProcessEnv{}, nil
	}
	dotenv, err := environment.LoadDotEnv(envFile)
	if err != nil {
		return nil, err
	}
	return environment.Layered{environment.ProcessEnv{}, dotenv}, nil
}

// newMCPServer builds the MCP server and registers every tool category.
func newMCPServer(sc *server.ServerContext, version string) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer("mcp-query", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)

	if err := search.RegisterSearchTools(mcpSrv, sc); err != nil {
		return nil, fmt.Errorf("failed to register search tools: %w", err)
	}
	if err := dataservice.RegisterDataServiceTools(mcpSrv, sc); err != nil {
		return nil, fmt.Errorf("failed to register data service tools: %w", err)
	}
	return mcpSrv, nil
}

func runServe(config ServeConfig) error {
	// Logs always go to stderr; stdout belongs to the stdio transport.
	logger, err := logging.NewLogger(config.LogLevel, config.LogFormat, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	source, err := credentialSource(config.EnvFile)
	if err != nil {
		return err
	}

	// Setup graceful shutdown - listen for both SIGINT and SIGTERM
	shutdownCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrumentationConfig := instrumentation.DefaultConfig()
	instrumentationConfig.ServiceVersion = rootCmd.Version
	provider, err := instrumentation.NewProvider(shutdownCtx, instrumentationConfig,
		instrumentation.WithAuditLogger(logging.WithOperation(logger, "audit")))
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	output := config.Output
	opts := []server.Option{
		server.WithLogger(logger),
		server.WithVersion(rootCmd.Version),
		server.WithRequestTimeout(config.RequestTimeout),
		server.WithOutputConfig(&output),
		server.WithCredentialSource(source),
		server.WithInstrumentationProvider(provider),
	}
	if config.EnvironmentsFile != "" {
		registry, err := environment.LoadRegistryFile(config.EnvironmentsFile)
		if err != nil {
			return err
		}
		opts = append(opts, server.WithRegistry(registry))
	}

	sc, err := server.NewServerContext(shutdownCtx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := sc.Shutdown(); err != nil {
			logger.Error("error during server context shutdown", logging.Err(err))
		}
	}()

	mcpSrv, err := newMCPServer(sc, rootCmd.Version)
	if err != nil {
		return err
	}

	effective := sc.Config().Output
	logger.Info("starting mcp-query",
		slog.String("version", rootCmd.Version),
		slog.String("transport", config.Transport),
		slog.Any("environments", sc.Registry().Names()),
		slog.Int("search_max_tokens", effective.SearchMaxTokens),
		slog.Int("data_max_tokens", effective.DataMaxTokens),
		slog.Bool("instrumentation", provider.Enabled()))

	switch config.Transport {
	case transportStdio:
		return runStdioServer(mcpSrv, logger)
	case transportSSE:
		return runSSEServer(shutdownCtx, mcpSrv, config, sc)
	case transportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, config, sc)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, sse, streamable-http)", config.Transport)
	}
}
