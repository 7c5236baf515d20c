// Package logging provides structured logging utilities for mcp-query.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Logger construction for text or JSON output on stderr
//   - Consistent attribute naming for tools, environments and backends
//   - Host/URL sanitization and secret masking
//   - An adapter that routes HTTP client diagnostics into slog
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithTool(slog.Default(), "query_data_explorer")
//	logger.Info("query completed",
//	    logging.Environment("sg_live"),
//	    logging.Database("analytics"),
//	    logging.ResultKind("inline"))
//
// # Security Considerations
//
//   - Secrets, passwords and api tokens are never logged; use SanitizeToken
//     when their presence matters
//   - Backend URLs have IP addresses and userinfo redacted
package logging
