package search

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-query/internal/backend"
	"github.com/giantswarm/mcp-query/internal/instrumentation"
	"github.com/giantswarm/mcp-query/internal/logging"
	"github.com/giantswarm/mcp-query/internal/server"
	"github.com/giantswarm/mcp-query/internal/tools"
)

// queryArgs are the arguments of the query tool.
type queryArgs struct {
	BaseURL  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
	Path     string `json:"path"`
	JQQuery  string `json:"jq_query"`
	Query    string `json:"query"`
}

const (
	argQuery = "query"

	// defaultQuery is sent when the caller omits the query argument.
	defaultQuery = "{}"
)

// handleQuery handles Elasticsearch queries through Kibana
func handleQuery(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	rawArgs := request.GetArguments()
	var args queryArgs
	if err := tools.DecodeArgs(rawArgs, &args); err != nil {
		return tools.ErrorResult(ctx, err), nil
	}
	if _, ok := rawArgs[argQuery]; !ok {
		args.Query = defaultQuery
	}
	if err := tools.RequireArgs("base_url", args.BaseURL, "path", args.Path); err != nil {
		return tools.ErrorResult(ctx, err), nil
	}

	ctx, span := instrumentation.StartBackendSpan(ctx, instrumentation.BackendKibana, "query",
		instrumentation.NewSpanAttributeBuilder().WithSearchPath(args.Path).Build()...)
	defer span.End()

	logger := logging.WithOperation(sc.Logger(), "query")
	logger.Debug("forwarding search query",
		logging.Host(args.BaseURL),
		logging.Path(instrumentation.SearchEndpoint(args.Path)))

	result, err := sc.SearchExecutor().Execute(ctx, backend.SearchQuery{
		BaseURL:  args.BaseURL,
		Username: args.Username,
		Password: args.Password,
		Path:     args.Path,
		Filter:   args.JQQuery,
		Body:     args.Query,
	})
	if err != nil {
		instrumentation.SetSpanError(span, err)
		logger.Warn("search query failed",
			logging.Host(args.BaseURL),
			logging.ErrorKind(string(backend.KindOf(err))),
			logging.SanitizedErr(err))
		return tools.ErrorResult(ctx, err), nil
	}
	instrumentation.SetSpanSuccess(span)

	return mcp.NewToolResultText(result), nil
}
