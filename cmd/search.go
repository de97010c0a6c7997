package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anortham/codesearch-mcp/internal/queryplanner"
	"github.com/anortham/codesearch-mcp/internal/service"
)

var (
	searchMode         string
	searchExtensions   []string
	searchIncludeGlobs []string
	searchExcludeGlobs []string
	searchResponseMode string
	searchMaxTokens    int
	searchNoCache      bool
)

var searchCmd = &cobra.Command{
	Use:     "search <query> <workspacePath>",
	Aliases: []string{"s"},
	Short:   "Search a workspace's indexed source for text",
	Long: `Searches a previously indexed workspace and prints the JSON response
envelope (files, hotspots, distributions, summary, metadata).

Mode picks how the query text is interpreted: Auto (default), Standard,
Literal (substring), Code (identifier-aware), Symbol (CamelCase-aware
prefix match), Pattern (structural punctuation such as ": ITool"), Fuzzy
(edit-distance tolerant), or Regex.`,
	Example: `  # Auto-mode search
  codesearch-mcp search "HandleRequest" .

  # Regex search restricted to Go files
  codesearch-mcp search "func \w+Handler\(" . --mode Regex --ext .go`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := svc.TextSearch(service.TextSearchRequest{
			Query:         args[0],
			WorkspacePath: args[1],
			Mode:          queryplanner.Mode(searchMode),
			Filters: queryplanner.Filters{
				Extensions:   searchExtensions,
				IncludeGlobs: searchIncludeGlobs,
				ExcludeGlobs: searchExcludeGlobs,
			},
			ResponseMode: searchResponseMode,
			MaxTokens:    searchMaxTokens,
			NoCache:      searchNoCache,
		})
		if err != nil {
			return err
		}
		return printJSON(resp)
	},
}

func printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func init() {
	searchCmd.Flags().StringVar(&searchMode, "mode", string(queryplanner.ModeAuto), "Auto, Standard, Literal, Code, Symbol, Pattern, Fuzzy, or Regex")
	searchCmd.Flags().StringSliceVar(&searchExtensions, "ext", nil, "restrict to these extensions (e.g. .go,.ts)")
	searchCmd.Flags().StringSliceVar(&searchIncludeGlobs, "include", nil, "only consider files whose relative path matches one of these globs")
	searchCmd.Flags().StringSliceVar(&searchExcludeGlobs, "exclude", nil, "drop files whose relative path matches one of these globs")
	searchCmd.Flags().StringVar(&searchResponseMode, "response-mode", "", "summary or full (default adaptive to token budget)")
	searchCmd.Flags().IntVar(&searchMaxTokens, "max-tokens", 0, "approximate token budget for the response (default 4000)")
	searchCmd.Flags().BoolVar(&searchNoCache, "no-cache", false, "bypass the query result cache for this call")
	rootCmd.AddCommand(searchCmd)
}
