package search

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-query/internal/instrumentation"
	"github.com/giantswarm/mcp-query/internal/server"
	"github.com/giantswarm/mcp-query/internal/tools"
)

// ToolQueryViaKibana is the name of the Elasticsearch query tool.
const ToolQueryViaKibana = "query_elasticsearch_via_kibana"

// RegisterSearchTools registers the Elasticsearch query tool with the MCP server.
func RegisterSearchTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Query Elasticsearch through the Kibana console proxy. " +
			"Large results are written to a file and a descriptor with its path is returned instead."),
		mcp.WithString("base_url",
			mcp.Required(),
			mcp.Description("Kibana base URL (e.g., https://kibana.example.com)"),
		),
		mcp.WithString("username",
			mcp.Description("Username for Kibana authentication, empty string when no auth is required"),
		),
		mcp.WithString("password",
			mcp.Description("Password for Kibana authentication, empty string when no auth is required"),
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Elasticsearch path (e.g., index/_search or _cat/indices?format=json)"),
		),
		mcp.WithString("jq_query",
			mcp.Description("jq expression applied to the result (optional). Use a filter when the result is long. "+
				"Example: .[] | select(.index | contains(\"myindex\"))"),
		),
		mcp.WithString(argQuery,
			mcp.Description("JSON query body as a string (default: {})"),
			mcp.DefaultString(defaultQuery),
		),
	}
	opts = append(opts, tools.ReadOnlyAnnotations(ToolQueryViaKibana, true)...)

	queryTool := mcp.NewTool(ToolQueryViaKibana, opts...)
	s.AddTool(queryTool, tools.WrapWithAuditLogging(ToolQueryViaKibana, instrumentation.BackendKibana, handleQuery, sc))

	return nil
}
