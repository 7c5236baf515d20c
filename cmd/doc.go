// Package cmd provides the command-line interface for mcp-query.
//
// Subcommands:
//   - serve: starts the MCP server (the default when no subcommand is given)
//   - version: prints the application version
//   - self-update: replaces the binary with the latest GitHub release
//
// Command structure:
//
//	mcp-query [flags]                 # Starts the MCP server (default)
//	mcp-query serve [flags]           # Explicitly starts the MCP server
//	mcp-query version                 # Shows version information
//	mcp-query self-update             # Updates to latest release
//
// Transport examples:
//
//	mcp-query serve --transport stdio
//	mcp-query serve --transport sse --http-addr :8080 --sse-endpoint /sse
//	mcp-query serve --transport streamable-http --http-addr :9000 --http-endpoint /mcp
//
// Serve flags may also be set through MCP_QUERY_* environment variables;
// a flag given on the command line wins.
package cmd
