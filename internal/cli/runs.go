package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ppiankov/reviewinsights/internal/pipeline"
	"github.com/ppiankov/reviewinsights/internal/store"
)

var (
	runsSQLite string
	runsOut    string
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List stored batch runs or export one as CSV",
	Long: `Runs reads the SQLite database written by "batch --sqlite". Without an
argument it lists every stored run, newest first. With a run ID it writes
that run's summary rows in the batch CSV format.

Example:
  reviewinsights runs --sqlite insights.db
  reviewinsights runs --sqlite insights.db 20240501T101500.000Z --out old.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().StringVar(&runsSQLite, "sqlite", "", "SQLite database path (default: output.sqlite_path)")
	runsCmd.Flags().StringVar(&runsOut, "out", "-", "CSV path for an exported run, - for stdout")
}

func runRuns(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	path := runsSQLite
	if path == "" {
		path = a.cfg.Output.SQLitePath
	}
	if path == "" {
		return fmt.Errorf("no database: pass --sqlite or set output.sqlite_path")
	}

	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if len(args) == 0 {
		return a.listRuns(cmd.Context(), s)
	}
	return a.exportRun(cmd.Context(), s, args[0], runsOut)
}

// listRuns prints one line per stored run
func (a *app) listRuns(ctx context.Context, s *store.SQLiteStore) error {
	runs, err := s.Runs(ctx)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		a.printf("No stored runs\n")
		return nil
	}

	a.printf("%-22s %10s  %s\n", "RUN", "BUSINESSES", "CREATED")
	for _, r := range runs {
		created := "-"
		if !r.CreatedAt.IsZero() {
			created = r.CreatedAt.Format("2006-01-02 15:04:05")
		}
		a.printf("%-22s %10d  %s\n", r.RunID, r.Businesses, created)
	}
	return nil
}

// exportRun writes the rows of one run as batch CSV
func (a *app) exportRun(ctx context.Context, s *store.SQLiteStore, runID, out string) error {
	rows, err := s.ListRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("read run %s: %w", runID, err)
	}
	if len(rows) == 0 {
		a.renderer.RenderNoResults("run " + runID)
		return nil
	}
	if err := writeOutput(out, func(w io.Writer) error { return pipeline.WriteBatchCSV(w, rows) }); err != nil {
		return err
	}
	a.log.Info().Str("run", runID).Int("businesses", len(rows)).Msg("run exported")
	return nil
}
