package cmd

import (
	"github.com/spf13/cobra"
)

var (
	dirsIncludeSubdirectories bool
	dirsMaxResults            int
)

var dirsCmd = &cobra.Command{
	Use:   "dirs <pattern> <workspacePath>",
	Short: "Find directories by name/prefix pattern",
	Long:  `Finds directories and reports a per-directory file count.`,
	Example: `  codesearch-mcp dirs internal .
  codesearch-mcp dirs "inter*" . --subdirs`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		matches, err := svc.DirectorySearch(args[1], args[0], dirsIncludeSubdirectories, dirsMaxResults)
		if err != nil {
			return err
		}
		return printJSON(matches)
	},
}

func init() {
	dirsCmd.Flags().BoolVar(&dirsIncludeSubdirectories, "subdirs", false, "count files in nested subdirectories too")
	dirsCmd.Flags().IntVar(&dirsMaxResults, "max-results", 100, "maximum matches to return")
	rootCmd.AddCommand(dirsCmd)
}
