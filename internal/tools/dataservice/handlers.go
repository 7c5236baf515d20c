package dataservice

import (
	"context"

	jsoniter "github.com/json-iterator/go"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-query/internal/backend"
	"github.com/giantswarm/mcp-query/internal/instrumentation"
	"github.com/giantswarm/mcp-query/internal/logging"
	"github.com/giantswarm/mcp-query/internal/server"
	"github.com/giantswarm/mcp-query/internal/tools"
)

// queryArgs covers the arguments of every data service tool; each tool
// requires its own subset.
type queryArgs struct {
	EnvName   string `json:"env_name"`
	DBName    string `json:"dbname"`
	SQL       string `json:"sql"`
	TableName string `json:"table_name"`
}

// EnvironmentInfo is one entry of the list_environments result.
type EnvironmentInfo struct {
	Name                  string `json:"name"`
	Description           string `json:"description,omitempty"`
	BaseURL               string `json:"base_url"`
	CredentialsConfigured bool   `json:"credentials_configured"`
}

var encoder = jsoniter.Config{
	EscapeHTML:  false,
	SortMapKeys: true,
}.Froze()

// call runs op against the endpoint resolved from args inside a backend span.
func call(
	ctx context.Context,
	request mcp.CallToolRequest,
	sc *server.ServerContext,
	operation string,
	required []string,
	op func(ctx context.Context, ep backend.Endpoint, args queryArgs) (string, error),
) (*mcp.CallToolResult, error) {
	var args queryArgs
	if err := tools.DecodeArgs(request.GetArguments(), &args); err != nil {
		return tools.ErrorResult(ctx, err), nil
	}
	values := map[string]string{
		tools.ArgEnvName:   args.EnvName,
		tools.ArgDBName:    args.DBName,
		"sql":              args.SQL,
		tools.ArgTableName: args.TableName,
	}
	// An unknown environment is reported before any other argument error.
	if err := tools.RequireArgs(tools.ArgEnvName, args.EnvName); err != nil {
		return tools.ErrorResult(ctx, err), nil
	}
	ep, err := sc.Resolver().Resolve(args.EnvName)
	if err != nil {
		return tools.ErrorResult(ctx, err), nil
	}

	pairs := make([]string, 0, 2*len(required))
	for _, name := range required {
		pairs = append(pairs, name, values[name])
	}
	if err := tools.RequireArgs(pairs...); err != nil {
		return tools.ErrorResult(ctx, err), nil
	}

	ctx, span := instrumentation.StartBackendSpan(ctx, instrumentation.BackendDataExplorer, operation,
		instrumentation.NewSpanAttributeBuilder().
			WithEnvironment(ep.Name).
			WithDatabase(args.DBName).
			Build()...)
	defer span.End()

	logger := logging.WithEnvironment(logging.WithOperation(sc.Logger(), operation), ep.Name).
		With(logging.Database(args.DBName))
	logger.Debug("calling data service", logging.Host(ep.BaseURL))

	result, err := op(ctx, ep, args)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		logger.Warn("data service call failed",
			logging.ErrorKind(string(backend.KindOf(err))),
			logging.SanitizedErr(err))
		return tools.ErrorResult(ctx, err), nil
	}
	instrumentation.SetSpanSuccess(span)

	return mcp.NewToolResultText(result), nil
}

// handleQuery handles query_data_explorer
func handleQuery(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	return call(ctx, request, sc, "query",
		[]string{tools.ArgEnvName, tools.ArgDBName, "sql"},
		func(ctx context.Context, ep backend.Endpoint, args queryArgs) (string, error) {
			return sc.DataServiceExecutor().Execute(ctx, ep, args.DBName, args.SQL)
		})
}

// handleListDatabases handles list_dbnames
func handleListDatabases(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	return call(ctx, request, sc, "explore",
		[]string{tools.ArgEnvName},
		func(ctx context.Context, ep backend.Endpoint, _ queryArgs) (string, error) {
			return sc.DataServiceExecutor().ListCollections(ctx, ep)
		})
}

// handleListTables handles list_tables
func handleListTables(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	return call(ctx, request, sc, "list_tables",
		[]string{tools.ArgEnvName, tools.ArgDBName},
		func(ctx context.Context, ep backend.Endpoint, args queryArgs) (string, error) {
			return sc.DataServiceExecutor().ListSubCollections(ctx, ep, args.DBName)
		})
}

// handleShowTableDDL handles show_table_ddl
func handleShowTableDDL(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	return call(ctx, request, sc, "describe",
		[]string{tools.ArgEnvName, tools.ArgDBName, tools.ArgTableName},
		func(ctx context.Context, ep backend.Endpoint, args queryArgs) (string, error) {
			return sc.DataServiceExecutor().DescribeSchema(ctx, ep, args.DBName, args.TableName)
		})
}

// handleListEnvironments dumps the registry. It makes no network calls.
func handleListEnvironments(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	envs := sc.Registry().List()
	infos := make([]EnvironmentInfo, 0, len(envs))
	for _, env := range envs {
		_, err := sc.Resolver().Resolve(env.Name)
		infos = append(infos, EnvironmentInfo{
			Name:                  env.Name,
			Description:           env.Description,
			BaseURL:               env.BaseURL,
			CredentialsConfigured: err == nil,
		})
	}

	out, err := encoder.MarshalToString(infos)
	if err != nil {
		return tools.ErrorResult(ctx, backend.NewError(backend.KindRemoteQueryError, "serialize", err)), nil
	}
	return mcp.NewToolResultText(out), nil
}
