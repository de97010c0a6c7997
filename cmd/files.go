package cmd

import (
	"github.com/spf13/cobra"
)

var filesMaxResults int

var filesCmd = &cobra.Command{
	Use:     "files <pattern> <workspacePath>",
	Aliases: []string{"f"},
	Short:   "Find files by name pattern",
	Long: `Finds files by a glob pattern (*, ?), or a regular expression when the
pattern looks like one (anchors, character classes, alternation).`,
	Example: `  codesearch-mcp files "*handler*" .
  codesearch-mcp files "^cmd/.*_test\.go$" .`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		matches, err := svc.FileSearch(args[1], args[0], filesMaxResults)
		if err != nil {
			return err
		}
		return printJSON(matches)
	},
}

func init() {
	filesCmd.Flags().IntVar(&filesMaxResults, "max-results", 100, "maximum matches to return")
	rootCmd.AddCommand(filesCmd)
}
