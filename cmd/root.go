package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the mcp-query application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mcp-query",
	Short: "MCP server for Elasticsearch and data service queries",
	Long: `mcp-query is a Model Context Protocol (MCP) server that lets an assistant
run read-only queries against Elasticsearch clusters, through their Kibana
console proxy, and against the SQL data service of each configured environment.

Results are reduced with optional jq filters and kept within a token budget;
oversized results are written to a local file and described instead.

When run without subcommands, it starts the MCP server (equivalent to 'mcp-query serve').`,
	// SilenceUsage keeps usage output out of runtime errors.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// It is called from the main package to inject the version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcp-query version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
	rootCmd.AddCommand(newServeCmd())
}
