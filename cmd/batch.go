package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anortham/codesearch-mcp/internal/service"
)

var batchDefaultWorkspace string

var batchCmd = &cobra.Command{
	Use:   "batch <operationsFile.json>",
	Short: "Run several operations concurrently from a JSON file",
	Long: `Reads a JSON array of {op,workspacePath?,params?} objects and runs
each against its own (or the shared default) workspace concurrently.
Each entry's outcome is captured independently; one failing entry
doesn't abort its siblings.`,
	Example: `  codesearch-mcp batch ops.json --default-workspace .`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading operations file: %w", err)
		}
		var ops []service.BatchOperation
		if err := json.Unmarshal(raw, &ops); err != nil {
			return fmt.Errorf("parsing operations file: %w", err)
		}
		results := svc.BatchOperations(context.Background(), ops, batchDefaultWorkspace)
		return printJSON(results)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchDefaultWorkspace, "default-workspace", "", "workspace path used for entries that don't set their own workspacePath")
	rootCmd.AddCommand(batchCmd)
}
