package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var indexForceRebuild bool

var indexCmd = &cobra.Command{
	Use:     "index <workspacePath>",
	Aliases: []string{"idx"},
	Short:   "Build or refresh the full-text index for a workspace",
	Long: `Walks a workspace, indexes every file under its configured extension
allow-list, and starts a filesystem watcher so subsequent edits stay
reflected incrementally without re-running this command.`,
	Example: `  # Index the current directory
  codesearch-mcp index .

  # Discard the existing index and rebuild from scratch
  codesearch-mcp index . --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := svc.IndexWorkspace(context.Background(), args[0], indexForceRebuild)
		if err != nil {
			return err
		}
		fmt.Printf("indexed %s files, skipped %d, %d failures, in %dms\n",
			humanize.Comma(int64(result.Indexed)), result.Skipped, result.Failures, result.DurationMs)
		return nil
	},
}

func init() {
	indexCmd.Flags().BoolVar(&indexForceRebuild, "force", false, "discard the existing index and rebuild from scratch")
	rootCmd.AddCommand(indexCmd)
}
