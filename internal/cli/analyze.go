package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/reviewinsights/internal/model"
	"github.com/ppiankov/reviewinsights/internal/pipeline"
)

var (
	analyzeName string
	analyzeID   string
	analyzeJSON string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze every review of one business",
	Long: `Analyze runs each review of a business through extraction, cleaning and
standardization, ranks the recurring feedback themes, and generates
recommendations for the top issues.

--name matches every business whose name contains the value (ignoring case);
--id matches one business exactly.

Example:
  reviewinsights analyze --name "Joe's Pizza"
  reviewinsights analyze --id 4x8Gk2... --json report.json`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeName, "name", "", "business name (substring, case-insensitive)")
	analyzeCmd.Flags().StringVar(&analyzeID, "id", "", "exact business ID")
	analyzeCmd.Flags().StringVar(&analyzeJSON, "json", "", "also write the report as JSON to this path")
	analyzeCmd.MarkFlagsMutuallyExclusive("name", "id")
	analyzeCmd.MarkFlagsOneRequired("name", "id")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ds, err := a.dataset(cmd.Context())
	if err != nil {
		return err
	}
	return a.analyze(cmd.Context(), ds, analyzeName, analyzeID, analyzeJSON)
}

// analyze reports on one business by name or ID. An empty lookup prints a
// notice and is not an error.
func (a *app) analyze(ctx context.Context, ds *pipeline.Dataset, name, id, jsonPath string) error {
	if name == "" && id == "" {
		return fmt.Errorf("must provide either a business ID or a business name")
	}
	p, cleanup, err := a.newPipeline(a.options())
	if err != nil {
		return err
	}
	defer cleanup()

	identifier := "Business: " + name
	lookup := func() (*model.BusinessSummary, error) { return p.AnalyzeByName(ctx, ds, name) }
	if id != "" {
		identifier = "Business ID: " + id
		lookup = func() (*model.BusinessSummary, error) { return p.AnalyzeByID(ctx, ds, id) }
	}

	summary, err := lookup()
	if errors.Is(err, pipeline.ErrNoResults) {
		a.renderer.RenderNoResults(identifier)
		return nil
	}
	if err != nil {
		return err
	}

	a.renderer.RenderBusiness(summary)
	if jsonPath != "" {
		if err := writeJSON(jsonPath, summary); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		a.log.Info().Str("path", jsonPath).Msg("report written")
	}
	return nil
}
