package cmd

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/atotto/clipboard"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
)

var (
	pickPattern string
	pickOpen    bool
	pickCopy    bool
)

// isTerminal returns true if stdout is a terminal.
func isTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

var pickCmd = &cobra.Command{
	Use:   "pick <workspacePath>",
	Short: "Fuzzy-pick an indexed file and print, copy, or open it",
	Long: `Lists files matching --pattern (default "*") in the given workspace
and lets you fuzzy-select one interactively. By default the selected
path is printed to stdout and, on a terminal, also copied to the
clipboard. --open launches it in the system default application.`,
	Example: `  codesearch-mcp pick .
  codesearch-mcp pick . --pattern "*.go" --open`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspacePath := args[0]
		matches, err := svc.FileSearch(workspacePath, pickPattern, 500)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return errors.New("no files matched")
		}

		paths := make([]string, len(matches))
		for i, m := range matches {
			paths[i] = m.RelativePath
		}
		sort.Strings(paths)

		idx, err := fuzzyfinder.Find(paths, func(i int) string { return paths[i] })
		if err != nil {
			return fmt.Errorf("pick cancelled: %w", err)
		}
		selected := paths[idx]

		var fullPath string
		for _, m := range matches {
			if m.RelativePath == selected {
				fullPath = m.Path
				break
			}
		}

		if pickOpen {
			if err := open.Run(fullPath); err != nil {
				return fmt.Errorf("opening %s: %w", fullPath, err)
			}
		}

		if pickCopy && isTerminal() {
			if err := clipboard.WriteAll(fullPath); err != nil {
				return fmt.Errorf("copying to clipboard: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Copied %s to clipboard\n", fullPath)
		}

		fmt.Println(fullPath)
		return nil
	},
}

func init() {
	pickCmd.Flags().StringVar(&pickPattern, "pattern", "*", "glob pattern to narrow the candidate list")
	pickCmd.Flags().BoolVar(&pickOpen, "open", false, "open the selected file in the system default application")
	pickCmd.Flags().BoolVar(&pickCopy, "copy", true, "copy the selected path to the clipboard when stdout is a terminal")
	rootCmd.AddCommand(pickCmd)
}
