package cmd

import (
	"github.com/spf13/cobra"
)

var recentMaxResults int

var recentCmd = &cobra.Command{
	Use:   "recent <timeFrame> <workspacePath>",
	Short: "List files modified within a time frame, newest first",
	Long: `timeFrame accepts Go duration syntax ("2h", "30m") plus a trailing-d
day count ("7d") the stdlib duration parser doesn't understand.`,
	Example: `  codesearch-mcp recent 24h .
  codesearch-mcp recent 7d .`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := svc.RecentFiles(args[1], args[0], recentMaxResults)
		if err != nil {
			return err
		}
		return printJSON(files)
	},
}

func init() {
	recentCmd.Flags().IntVar(&recentMaxResults, "max-results", 100, "maximum matches to return")
	rootCmd.AddCommand(recentCmd)
}
