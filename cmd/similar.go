package cmd

import (
	"github.com/spf13/cobra"
)

var (
	similarMaxResults int
	similarMinScore   float64
)

var similarCmd = &cobra.Command{
	Use:   "similar <filePath> <workspacePath>",
	Short: "Find files whose content resembles a given file's",
	Long:  `Ranks other indexed files by a [0,1] similarity score against filePath.`,
	Example: `  codesearch-mcp similar internal/service/search.go .`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		matches, err := svc.SimilarFiles(args[1], args[0], similarMaxResults, similarMinScore)
		if err != nil {
			return err
		}
		return printJSON(matches)
	},
}

func init() {
	similarCmd.Flags().IntVar(&similarMaxResults, "max-results", 100, "maximum matches to return")
	similarCmd.Flags().Float64Var(&similarMinScore, "min-score", 0, "drop matches scoring below this (0-1)")
	rootCmd.AddCommand(similarCmd)
}
