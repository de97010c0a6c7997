package cmd

import (
	"log"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/anortham/codesearch-mcp/internal/mcpserver"
)

var serveDefaultWorkspace string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an MCP server exposing codesearch-mcp's tools",
	Long: `Runs a Model Context Protocol server that exposes index_workspace,
text_search, file_search, directory_search, recent_files, similar_files,
batch_operations, and index_health_check as tools. Communicates over
stdin/stdout, compatible with MCP clients like Claude Desktop or
Cursor.

Example MCP client configuration:
{
  "mcpServers": {
    "codesearch-mcp": {
      "command": "/path/to/codesearch-mcp",
      "args": ["serve", "--default-workspace", "/path/to/project"]
    }
  }
}`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := server.NewMCPServer(
			"codesearch-mcp",
			rootCmd.Version,
			server.WithToolCapabilities(false),
			server.WithInstructions(serveInstructions),
		)

		mcpConfig := mcpserver.Config{
			Service:              svc,
			DefaultWorkspacePath: serveDefaultWorkspace,
			Debug:                debugFlag,
		}
		if err := mcpserver.RegisterAll(s, mcpConfig); err != nil {
			log.Fatalf("failed to register MCP tools: %v", err)
		}

		if debugFlag {
			log.Printf("starting MCP server, defaultWorkspace=%s", serveDefaultWorkspace)
		}
		return server.ServeStdio(s)
	},
}

const serveInstructions = `This MCP server exposes code-aware full-text search over indexed workspaces.

Main tools:
- index_workspace: build or refresh a workspace's index; run this first.
- text_search: ranked text search with Auto/Standard/Literal/Code/Symbol/Pattern/Fuzzy/Regex modes.
- file_search, directory_search, recent_files, similar_files: narrower lookups.
- batch_operations: run several of the above concurrently in one call.
- index_health_check: inspect index/lock/breaker/watcher state.

Workspaces stay incrementally up to date via a filesystem watcher started
the first time they're indexed; there's no need to re-run index_workspace
after every edit.`

func init() {
	serveCmd.Flags().StringVar(&serveDefaultWorkspace, "default-workspace", "", "workspace path used by tool calls that omit workspacePath")
	rootCmd.AddCommand(serveCmd)
}
