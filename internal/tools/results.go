package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/giantswarm/mcp-query/internal/backend"
	"github.com/giantswarm/mcp-query/internal/instrumentation"
)

// ErrorResult converts err into an MCP error result. The message is passed
// through verbatim so the caller sees "<Kind>: <stage>: <message>". When ctx
// carries a tool invocation, its error kind is recorded.
func ErrorResult(ctx context.Context, err error) *mcp.CallToolResult {
	if ti := instrumentation.InvocationFromContext(ctx); ti != nil {
		ti.ErrorKind = errorKind(err)
	}
	return mcp.NewToolResultError(err.Error())
}

// errorKind returns the pipeline error kind of err, or "internal" for errors
// that did not come from the pipeline.
func errorKind(err error) string {
	if kind := backend.KindOf(err); kind != "" {
		return string(kind)
	}
	return "internal"
}

// ToolTitle turns a tool name such as "list_dbnames" into the display title
// "List Dbnames".
func ToolTitle(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

// ReadOnlyAnnotations returns the annotations shared by every query tool:
// a title derived from the tool name, read-only and idempotent hints, and
// whether the tool reaches systems outside the configured registry.
func ReadOnlyAnnotations(name string, openWorld bool) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithTitleAnnotation(ToolTitle(name)),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(openWorld),
	}
}
