package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/anortham/codesearch-mcp/internal/config"
	"github.com/anortham/codesearch-mcp/internal/service"
)

var (
	basePath  string
	debugFlag bool
	runID     = uuid.NewString()

	svc *service.Service
)

var rootCmd = &cobra.Command{
	Use:     "codesearch-mcp",
	Short:   "codesearch-mcp - incrementally indexed full-text search over source-code workspaces",
	Version: "v0.1.0",
	Long:    "codesearch-mcp - incrementally indexed full-text search over source-code workspaces, usable as a CLI or as an MCP server.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if basePath != "" {
			cfg.BasePath = basePath
		}
		s, err := service.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to start codesearch service: %w", err)
		}
		svc = s
		if debugFlag {
			fmt.Fprintf(os.Stderr, "[%s] codesearch-mcp starting, basePath=%s\n", runID, cfg.BasePath)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if svc != nil {
			svc.Close()
		}
	},
}

// Execute runs the root command, exiting the process with a non-zero
// status on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "codesearch-mcp: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&basePath, "base-path", "", "base directory for indexes, logs, and the workspace registry (default ~/.coa/codesearch)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug output")
}
