package cmd

import (
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health [workspacePath]",
	Short: "Report index health",
	Long: `With a workspacePath: that workspace's registry entry, document
count, circuit-breaker state, watcher status, and any stale-lock
findings. Without one: registry-wide statistics, the full lock report,
and orphaned-index count.`,
	Example: `  codesearch-mcp health .
  codesearch-mcp health`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspacePath := ""
		if len(args) == 1 {
			workspacePath = args[0]
		}
		report, aggregate, err := svc.IndexHealthCheck(workspacePath)
		if err != nil {
			return err
		}
		if report != nil {
			return printJSON(report)
		}
		return printJSON(aggregate)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
