package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/reviewinsights/internal/model"
	"github.com/ppiankov/reviewinsights/internal/pipeline"
	"github.com/ppiankov/reviewinsights/internal/store"
	"github.com/ppiankov/reviewinsights/internal/worker"
)

var (
	batchOut        string
	batchSQLite     string
	batchIDsFile    string
	batchSkipErrors bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Summarize every business into a CSV",
	Long: `Batch ranks the feedback themes of every business in the dataset and
writes one summary line per business: review count, average rating and the
three most frequent issues. No recommendations are generated.

The first model failure aborts the run unless --skip-errors is set.

Example:
  reviewinsights batch --out summary.csv
  reviewinsights batch --workers 4 --skip-errors --sqlite insights.db
  reviewinsights batch --ids ids.txt`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchOut, "out", "", "summary CSV path, - for stdout (default: output.batch_file)")
	batchCmd.Flags().StringVar(&batchSQLite, "sqlite", "", "also store the summary in this SQLite database")
	batchCmd.Flags().StringVar(&batchIDsFile, "ids", "", "only process the business IDs listed in this file")
	batchCmd.Flags().BoolVar(&batchSkipErrors, "skip-errors", false, "log failed businesses and continue")
}

func runBatch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ds, err := a.dataset(cmd.Context())
	if err != nil {
		return err
	}

	businesses, err := a.selectBusinesses(ds, batchIDsFile)
	if errors.Is(err, pipeline.ErrNoResults) {
		a.renderer.RenderNoResults("the business IDs in " + batchIDsFile)
		return nil
	}
	if err != nil {
		return err
	}

	out := batchOut
	if out == "" {
		out = a.cfg.Output.BatchFile
	}
	sqlitePath := batchSQLite
	if sqlitePath == "" {
		sqlitePath = a.cfg.Output.SQLitePath
	}
	return a.batch(cmd.Context(), businesses, out, sqlitePath, batchSkipErrors)
}

// selectBusinesses returns every business, or only those listed in idsFile.
// A list that matches nothing yields ErrNoResults.
func (a *app) selectBusinesses(ds *pipeline.Dataset, idsFile string) ([]model.BusinessReviews, error) {
	if idsFile == "" {
		return ds.Businesses(), nil
	}
	ids, err := worker.ReadIDsFromFile(idsFile)
	if err != nil {
		return nil, err
	}
	businesses := ds.Filter(ids)
	a.log.Info().Int("requested", len(ids)).Int("found", len(businesses)).Msg("filtered businesses")
	if len(businesses) == 0 {
		return nil, pipeline.ErrNoResults
	}
	return businesses, nil
}

// batch summarizes businesses and writes the CSV (and optional SQLite) output
func (a *app) batch(ctx context.Context, businesses []model.BusinessReviews, out, sqlitePath string, skipErrors bool) error {
	opts := a.options()
	opts.SkipErrors = skipErrors
	p, cleanup, err := a.newPipeline(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	a.printf("\nProcessing %d unique businesses...\n", len(businesses))
	a.printf("This will take a while.\n\n")

	start := time.Now()
	rows, err := p.ProcessAll(ctx, businesses)
	if err != nil {
		return fmt.Errorf("batch aborted after %d businesses: %w", len(rows), err)
	}

	if err := writeOutput(out, func(w io.Writer) error { return pipeline.WriteBatchCSV(w, rows) }); err != nil {
		return err
	}
	a.log.Info().
		Int("businesses", len(rows)).
		Int("skipped", len(businesses)-len(rows)).
		Dur("took", time.Since(start)).
		Msg("batch complete")

	if sqlitePath != "" {
		if err := saveBatch(ctx, sqlitePath, rows); err != nil {
			return err
		}
	}

	if out != "-" {
		a.printf("\n✅ Done! Results saved to: %s\n", out)
	}
	return nil
}

func saveBatch(ctx context.Context, path string, rows []model.BatchRow) error {
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if _, err := s.SaveBatch(ctx, store.NewRunID(time.Now()), rows); err != nil {
		return fmt.Errorf("save batch to %s: %w", path, err)
	}
	return nil
}
