package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/reviewinsights/internal/features"
	"github.com/ppiankov/reviewinsights/internal/observability"
)

var (
	featuresIn        string
	featuresOut       string
	encodeColumns     []string
	pruneThreshold    float64
	pruneExcludeFlags []string
)

// featuresCmd groups the tabular feature engineering helpers
var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Prepare business tables for demand forecasting",
	Long: `Feature engineering over a CSV table of businesses:

  encode  one-hot encode list-valued columns such as categories or attributes
  prune   drop numeric columns dominated by a single value`,
}

var featuresEncodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "One-hot encode list-valued columns",
	Long: `Encode parses each cell of the given columns as a list ("['Pizza', 'Bars']")
and replaces the column with one 0/1 column per distinct label, named
<column>_<label>.

Example:
  reviewinsights features encode --in businesses.csv --out encoded.csv --col categories --col attributes`,
	Args: cobra.NoArgs,
	RunE: runFeaturesEncode,
}

var featuresPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop low-variance numeric columns",
	Long: `Prune removes numeric columns with at most ten distinct values whose most
common value covers at least --threshold of the rows. Identifier and target
columns listed with --exclude are kept.

Example:
  reviewinsights features prune --in encoded.csv --out pruned.csv --threshold 0.9`,
	Args: cobra.NoArgs,
	RunE: runFeaturesPrune,
}

func init() {
	rootCmd.AddCommand(featuresCmd)
	featuresCmd.AddCommand(featuresEncodeCmd)
	featuresCmd.AddCommand(featuresPruneCmd)

	featuresCmd.PersistentFlags().StringVar(&featuresIn, "in", "", "input CSV")
	featuresCmd.PersistentFlags().StringVar(&featuresOut, "out", "-", "output CSV, - for stdout")
	_ = featuresCmd.MarkPersistentFlagRequired("in")

	featuresEncodeCmd.Flags().StringSliceVar(&encodeColumns, "col", nil, "list-valued column to encode (repeatable)")
	_ = featuresEncodeCmd.MarkFlagRequired("col")

	featuresPruneCmd.Flags().Float64Var(&pruneThreshold, "threshold", features.DefaultThreshold, "dominant value share at which a column is dropped")
	featuresPruneCmd.Flags().StringSliceVar(&pruneExcludeFlags, "exclude", features.DefaultExclude, "columns never dropped")
}

func readFrame(path string) (*features.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return features.ReadCSV(f)
}

func runFeaturesEncode(cmd *cobra.Command, args []string) error {
	logger := observability.NewLogger(cmd.ErrOrStderr(), "console", verbose)

	frame, err := readFrame(featuresIn)
	if err != nil {
		return err
	}
	for _, col := range encodeColumns {
		var labels []string
		frame, labels, err = features.EncodeMultiLabel(frame, col)
		if err != nil {
			return err
		}
		logger.Info().Str("column", col).Msgf("%s: %d unique values found", col, len(labels))
	}
	return writeOutput(featuresOut, frame.WriteCSV)
}

func runFeaturesPrune(cmd *cobra.Command, args []string) error {
	if pruneThreshold <= 0 || pruneThreshold > 1 {
		return fmt.Errorf("threshold must be in (0, 1], got %v", pruneThreshold)
	}
	frame, err := readFrame(featuresIn)
	if err != nil {
		return err
	}

	pruned, report := features.RemoveLowVariance(frame, pruneThreshold, pruneExcludeFlags)
	printLowVariance(cmd.ErrOrStderr(), report, pruneThreshold)
	return writeOutput(featuresOut, pruned.WriteCSV)
}

func printLowVariance(w io.Writer, report []features.LowVariance, threshold float64) {
	if len(report) == 0 {
		_, _ = fmt.Fprintf(w, "No low-variance features found with threshold %v\n", threshold)
		return
	}
	_, _ = fmt.Fprintf(w, "\nFound and dropped %d low-variance features:\n", len(report))
	_, _ = fmt.Fprintf(w, "%-40s %14s %s\n", "column", "max_proportion", "dominant_value")
	for _, lv := range report {
		_, _ = fmt.Fprintf(w, "%-40s %14.4f %s\n", lv.Column, lv.MaxProportion, lv.DominantValue)
	}
}
