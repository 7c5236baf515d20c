package cmd

import (
	"context"
	"log/slog"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-query/internal/server"
)

// runSSEServer runs the server with the SSE transport. The SSE and message
// handlers share the HTTP listener, health endpoints and middleware with the
// streamable HTTP transport.
func runSSEServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, config ServeConfig, sc *server.ServerContext) error {
	sseServer := mcpserver.NewSSEServer(mcpSrv,
		mcpserver.WithSSEEndpoint(config.SSEEndpoint),
		mcpserver.WithMessageEndpoint(config.MessageEndpoint),
	)

	mux := http.NewServeMux()
	mux.Handle(config.SSEEndpoint, sseServer.SSEHandler())
	mux.Handle(config.MessageEndpoint, sseServer.MessageHandler())

	sc.Logger().Info("SSE server starting",
		slog.String("addr", config.HTTPAddr),
		slog.String("sse_endpoint", config.SSEEndpoint),
		slog.String("message_endpoint", config.MessageEndpoint))

	return serveHTTP(ctx, mux, config, sc)
}
