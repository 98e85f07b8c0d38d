package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/reviewinsights/internal/model"
	"github.com/ppiankov/reviewinsights/internal/pipeline"
)

var (
	processOut        string
	processLimit      int
	processPreview    bool
	processSkipErrors bool
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Analyze every review and write an augmented dataset",
	Long: `Process runs every review through the full per-review path, with one
improvement suggestion per feedback point, and writes the input rows with
feedback_categories and improvement_suggestions columns appended. A
category coverage summary is printed at the end.

--preview prints the analyses instead of writing a file (first 10 reviews
unless --limit is set).

Example:
  reviewinsights process --out analyzed.csv
  reviewinsights process --limit 10 --preview`,
	Args: cobra.NoArgs,
	RunE: runProcess,
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run the full per-review path on built-in sample reviews",
	Args:  cobra.NoArgs,
	RunE:  runTest,
}

func init() {
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(testCmd)

	processCmd.Flags().StringVar(&processOut, "out", "", "augmented CSV path, - for stdout (default: output.dataset_file)")
	processCmd.Flags().IntVar(&processLimit, "limit", 0, "only analyze the first n reviews")
	processCmd.Flags().BoolVar(&processPreview, "preview", false, "print analyses instead of writing a file")
	processCmd.Flags().BoolVar(&processSkipErrors, "skip-errors", false, "leave failed reviews empty and continue")
}

func runProcess(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ds, err := a.dataset(cmd.Context())
	if err != nil {
		return err
	}

	if processPreview {
		limit := processLimit
		if limit <= 0 {
			limit = 10
		}
		return a.preview(cmd.Context(), ds, limit)
	}

	out := processOut
	if out == "" {
		out = a.cfg.Output.DatasetFile
	}
	return a.process(cmd.Context(), ds, processLimit, out, processSkipErrors)
}

// process augments the dataset and prints the category coverage
func (a *app) process(ctx context.Context, ds *pipeline.Dataset, limit int, out string, skipErrors bool) error {
	opts := a.options()
	opts.SkipErrors = skipErrors
	p, cleanup, err := a.newPipeline(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	n := ds.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	a.printf("\nProcessing %d reviews...\n", n)
	a.printf("Progress will be shown every %d reviews.\n\n", opts.DatasetProgress)

	start := time.Now()
	analyses, err := p.ProcessDataset(ctx, ds, limit)
	if err != nil {
		return err
	}
	if err := writeOutput(out, func(w io.Writer) error { return pipeline.WriteAugmentedCSV(w, ds, analyses) }); err != nil {
		return err
	}
	a.log.Info().Int("reviews", len(analyses)).Dur("took", time.Since(start)).Msg("dataset processed")

	if out != "-" {
		a.printf("\n Done! Results saved to: %s\n", out)
	}
	a.renderer.RenderCoverage(p.Coverage(analyses))
	return nil
}

// preview prints the analysis of the first limit reviews
func (a *app) preview(ctx context.Context, ds *pipeline.Dataset, limit int) error {
	p, cleanup, err := a.newPipeline(a.options())
	if err != nil {
		return err
	}
	defer cleanup()

	n := min(limit, ds.Len())
	a.printf("\nProcessing first %d reviews from dataset of %d reviews\n\n", n, ds.Len())
	for i := 0; i < n; i++ {
		analysis, err := p.AnalyzeReviewWithSuggestions(ctx, ds.Reviews[i])
		if err != nil {
			return err
		}
		a.renderer.RenderAnalysis(fmt.Sprintf("Review %d:", i+1), analysis)
	}
	return nil
}

func runTest(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	return a.sampleTest(cmd.Context())
}

// sampleTest analyzes the built-in sample reviews
func (a *app) sampleTest(ctx context.Context) error {
	if err := a.checkProvider(ctx); err != nil {
		return err
	}
	p, cleanup, err := a.newPipeline(a.options())
	if err != nil {
		return err
	}
	defer cleanup()

	a.printf("\n")
	a.renderer.Section("FULL SYSTEM TEST: Categorization + Suggestions")
	for i, text := range pipeline.SampleReviews {
		analysis, err := p.AnalyzeReviewWithSuggestions(ctx, model.Review{Text: text})
		if err != nil {
			return err
		}
		a.renderer.RenderAnalysis(fmt.Sprintf("Test %d:", i+1), analysis)
	}
	return nil
}

// checkProvider fails fast when the configured model endpoint is unreachable
func (a *app) checkProvider(ctx context.Context) error {
	provider, err := pipeline.NewProvider(a.cfg)
	if err != nil {
		return err
	}
	if !provider.IsAvailable(ctx) {
		return fmt.Errorf("%s provider is not available, check the llm settings", provider.Name())
	}
	a.log.Debug().Str("provider", provider.Name()).Msg("provider available")
	return nil
}
