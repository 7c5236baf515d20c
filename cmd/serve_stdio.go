package cmd

import (
	"fmt"
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// runStdioServer runs the server with the STDIO transport. It returns when
// stdin is closed or a SIGINT/SIGTERM is received.
func runStdioServer(mcpSrv *mcpserver.MCPServer, logger *slog.Logger) error {
	errLogger := slog.NewLogLogger(logger.Handler(), slog.LevelError)

	if err := mcpserver.ServeStdio(mcpSrv, mcpserver.WithErrorLogger(errLogger)); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	// Nothing is printed here: stdout carries the MCP stream.
	return nil
}
