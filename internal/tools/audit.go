// Package tools provides shared utilities and types for MCP tool implementations.
package tools

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-query/internal/instrumentation"
	"github.com/giantswarm/mcp-query/internal/logging"
	"github.com/giantswarm/mcp-query/internal/server"
)

// ToolHandler is the signature for MCP tool handler functions that take ServerContext.
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error)

// Argument names shared by the data service tools and read by the audit wrapper.
const (
	ArgEnvName   = "env_name"
	ArgDBName    = "dbname"
	ArgTableName = "table_name"
)

// WrapWithAuditLogging wraps a tool handler with tracing, metrics and audit
// logging. The wrapper captures:
//   - Tool invocation timing
//   - Environment and database names from request arguments
//   - Success/error status and the error kind
//   - How the governed result was materialized (inline or spilled)
//   - OpenTelemetry trace context for correlation
//
// The invocation record travels in the handler's context so that the
// response governor and ErrorResult can annotate it.
func WrapWithAuditLogging(
	toolName string,
	backendName string,
	handler ToolHandler,
	sc *server.ServerContext,
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		envName := StringArg(args, ArgEnvName)
		dbname := StringArg(args, ArgDBName)

		attrs := instrumentation.NewSpanAttributeBuilder().
			WithTool(toolName).
			WithBackend(backendName).
			WithDatabase(dbname)
		if envName != "" {
			attrs.WithEnvironment(envName)
		}
		ctx, span := instrumentation.StartToolSpan(ctx, toolName, attrs.Build()...)
		defer span.End()

		invocation := instrumentation.NewToolInvocation(toolName).
			WithEnvironment(envName).
			WithBackend(backendName).
			WithDatabase(dbname).
			WithSpanContext(ctx)
		ctx = instrumentation.ContextWithInvocation(ctx, invocation)

		result, err := handler(ctx, request, sc)

		switch {
		case err != nil:
			invocation.CompleteWithError(err)
			if invocation.ErrorKind == "" {
				invocation.ErrorKind = errorKind(err)
			}
		case result != nil && result.IsError:
			// MCP tool errors are returned in the result, not as Go errors
			invocation.Complete(false, nil)
			if text := resultText(result); text != "" {
				invocation.Error = text
			}
		default:
			invocation.CompleteSuccess()
		}

		if invocation.Success {
			if invocation.ResultKind != "" {
				span.SetAttributes(instrumentation.NewSpanAttributeBuilder().
					WithResult(invocation.ResultKind, invocation.Tokens).Build()...)
			}
			instrumentation.SetSpanSuccess(span)
		} else {
			instrumentation.SetSpanError(span, errors.New(invocation.Error))
		}

		provider := sc.InstrumentationProvider()
		provider.Metrics().RecordToolCall(ctx, toolName, invocation.Status(), invocation.ErrorKind, invocation.Duration)

		logger := logging.WithTool(sc.Logger(), toolName)
		level := slog.LevelDebug
		if !invocation.Success {
			level = slog.LevelWarn
		}
		logger.LogAttrs(ctx, level, "tool call completed", invocation.LogAttrs()...)

		if provider != nil {
			provider.AuditLogger().LogToolInvocation(ctx, invocation)
		}

		return result, err
	}
}

func resultText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if textContent, ok := result.Content[0].(mcp.TextContent); ok {
		return textContent.Text
	}
	return ""
}
