package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/reviewinsights/internal/pipeline"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Find businesses whose name contains a term",
	Long: `Search lists every distinct business whose name contains the term,
ignoring case, with its business ID and review count.

Example:
  reviewinsights search pizza --data reviews.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ds, err := a.dataset(cmd.Context())
	if err != nil {
		return err
	}

	term := strings.Join(args, " ")
	matches, err := ds.Search(term)
	if err != nil && !errors.Is(err, pipeline.ErrNoResults) {
		return err
	}
	a.renderer.RenderSearch(term, matches, a.cfg.Analysis.SearchDisplay)
	return nil
}
