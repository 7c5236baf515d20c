package dataservice

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-query/internal/instrumentation"
	"github.com/giantswarm/mcp-query/internal/server"
	"github.com/giantswarm/mcp-query/internal/tools"
)

// Tool names
const (
	ToolQuery            = "query_data_explorer"
	ToolListDatabases    = "list_dbnames"
	ToolListTables       = "list_tables"
	ToolShowTableDDL     = "show_table_ddl"
	ToolListEnvironments = "list_environments"
)

// RegisterDataServiceTools registers all data service tools with the MCP server
func RegisterDataServiceTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	envNames := sc.Registry().Names()

	envParam := func() mcp.ToolOption {
		return mcp.WithString(tools.ArgEnvName,
			mcp.Required(),
			mcp.Description("Environment name, see list_environments"),
			mcp.Enum(envNames...),
		)
	}
	dbParam := func(desc string) mcp.ToolOption {
		return mcp.WithString(tools.ArgDBName,
			mcp.Required(),
			mcp.Description(desc),
		)
	}

	// query_data_explorer tool
	opts := []mcp.ToolOption{
		mcp.WithDescription("Run a SQL query against a database through the data service. " +
			"Large results are written to a file and a descriptor with its path is returned instead."),
		envParam(),
		dbParam("Database name to query"),
		mcp.WithString("sql",
			mcp.Required(),
			mcp.Description("SQL query string to execute"),
		),
	}
	opts = append(opts, tools.ReadOnlyAnnotations(ToolQuery, false)...)
	s.AddTool(mcp.NewTool(ToolQuery, opts...),
		tools.WrapWithAuditLogging(ToolQuery, instrumentation.BackendDataExplorer, handleQuery, sc))

	// list_dbnames tool
	opts = []mcp.ToolOption{
		mcp.WithDescription("List the databases available in an environment"),
		envParam(),
	}
	opts = append(opts, tools.ReadOnlyAnnotations(ToolListDatabases, false)...)
	s.AddTool(mcp.NewTool(ToolListDatabases, opts...),
		tools.WrapWithAuditLogging(ToolListDatabases, instrumentation.BackendDataExplorer, handleListDatabases, sc))

	// list_tables tool
	opts = []mcp.ToolOption{
		mcp.WithDescription("List the tables of a database"),
		envParam(),
		dbParam("Database name whose tables are listed"),
	}
	opts = append(opts, tools.ReadOnlyAnnotations(ToolListTables, false)...)
	s.AddTool(mcp.NewTool(ToolListTables, opts...),
		tools.WrapWithAuditLogging(ToolListTables, instrumentation.BackendDataExplorer, handleListTables, sc))

	// show_table_ddl tool
	opts = []mcp.ToolOption{
		mcp.WithDescription("Show the CREATE TABLE statement of a table"),
		envParam(),
		dbParam("Database name containing the table"),
		mcp.WithString(tools.ArgTableName,
			mcp.Required(),
			mcp.Description("Table name"),
		),
	}
	opts = append(opts, tools.ReadOnlyAnnotations(ToolShowTableDDL, false)...)
	s.AddTool(mcp.NewTool(ToolShowTableDDL, opts...),
		tools.WrapWithAuditLogging(ToolShowTableDDL, instrumentation.BackendDataExplorer, handleShowTableDDL, sc))

	// list_environments tool
	opts = []mcp.ToolOption{
		mcp.WithDescription("List the data service environments and whether credentials are configured for them"),
	}
	opts = append(opts, tools.ReadOnlyAnnotations(ToolListEnvironments, false)...)
	s.AddTool(mcp.NewTool(ToolListEnvironments, opts...),
		tools.WrapWithAuditLogging(ToolListEnvironments, "", handleListEnvironments, sc))

	return nil
}
