package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/reviewinsights/internal/model"
	"github.com/ppiankov/reviewinsights/internal/observability"
	"github.com/ppiankov/reviewinsights/internal/pipeline"
	"github.com/ppiankov/reviewinsights/internal/taxonomy"
)

// app bundles what every command needs: configuration, logger and renderer
type app struct {
	cfg      *model.Config
	log      zerolog.Logger
	out      io.Writer
	renderer *pipeline.Renderer
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	logger := observability.NewLogger(cmd.ErrOrStderr(), cfg.Log.Format, cfg.Log.Verbose)
	observability.Serve(cmd.Context(), cfg.Metrics.Addr, logger)

	out := cmd.OutOrStdout()
	return &app{
		cfg:      cfg,
		log:      logger,
		out:      out,
		renderer: pipeline.NewRenderer(out, cfg.Output.Color),
	}, nil
}

func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

// dataset loads the configured review dataset and prints its size
func (a *app) dataset(ctx context.Context) (*pipeline.Dataset, error) {
	d := a.cfg.Data
	fetcher := pipeline.NewFetcher(
		time.Duration(d.FetchTimeout)*time.Second, d.UserAgent, d.MaxBytes,
		a.cfg.LLM.HTTPProxy, a.cfg.LLM.HTTPSProxy, a.cfg.LLM.NoProxy,
	)
	if d.RespectRobots {
		fetcher.RespectRobots()
	}

	start := time.Now()
	ds, err := pipeline.LoadDataset(ctx, fetcher, d.Path, d.Columns)
	if err != nil {
		return nil, err
	}
	a.log.Debug().Str("path", d.Path).Dur("took", time.Since(start)).Msg("dataset loaded")
	a.renderer.RenderDatasetInfo(ds)
	return ds, nil
}

// pipeline builds the model client and analysis pipeline. The returned func
// releases the response cache.
func (a *app) newPipeline(opts pipeline.Options) (*pipeline.Pipeline, func(), error) {
	gen, cleanup, err := pipeline.BuildGenerator(a.cfg, a.log)
	if err != nil {
		return nil, nil, err
	}
	a.log.Debug().
		Str("provider", a.cfg.LLM.Provider).
		Str("model", a.cfg.LLM.Model).
		Int("workers", opts.Workers).
		Msg("pipeline ready")
	return pipeline.New(gen, taxonomy.Default(), opts, a.log), cleanup, nil
}

func (a *app) options() pipeline.Options {
	return pipeline.OptionsFromConfig(a.cfg)
}

func writeOutput(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}
	return pipeline.WriteFile(path, write)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(path, func(w io.Writer) error {
		_, err := w.Write(append(data, '\n'))
		return err
	})
}
