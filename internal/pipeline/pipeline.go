// Package pipeline wires extraction, aggregation and recommendation into
// the single-business, all-businesses and full-dataset runs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/reviewinsights/internal/aggregate"
	"github.com/ppiankov/reviewinsights/internal/cache"
	"github.com/ppiankov/reviewinsights/internal/extract"
	"github.com/ppiankov/reviewinsights/internal/llm"
	"github.com/ppiankov/reviewinsights/internal/model"
	"github.com/ppiankov/reviewinsights/internal/observability"
	"github.com/ppiankov/reviewinsights/internal/recommend"
	"github.com/ppiankov/reviewinsights/internal/taxonomy"
	"github.com/ppiankov/reviewinsights/internal/worker"
)

// SampleReviews exercise the full per-review path without a dataset
var SampleReviews = []string{
	"The pasta was cold when it arrived and the waiter took forever to check on us.",
	"Great food but way too expensive for the portion sizes.",
	"The restaurant was incredibly loud and we could barely hear each other.",
}

// Options control ranking depth, progress reporting and parallelism
type Options struct {
	TopIssues        int
	Recommendations  int
	BatchTopIssues   int
	ReviewProgress   int
	BusinessProgress int
	DatasetProgress  int
	Workers          int
	SkipErrors       bool // log and continue past failed businesses or reviews
}

// OptionsFromConfig copies the relevant configuration sections
func OptionsFromConfig(cfg *model.Config) Options {
	return Options{
		TopIssues:        cfg.Analysis.TopIssues,
		Recommendations:  cfg.Analysis.Recommendations,
		BatchTopIssues:   cfg.Analysis.BatchTopIssues,
		ReviewProgress:   cfg.Analysis.ReviewProgress,
		BusinessProgress: cfg.Analysis.BusinessProgress,
		DatasetProgress:  cfg.Analysis.DatasetProgress,
		Workers:          cfg.Concurrency.Workers,
	}
}

// Pipeline runs reviews through Extractor, Cleaner, Standardizer and
// Aggregator, and asks the Recommender about the top issues
type Pipeline struct {
	extractor    *extract.Extractor
	cleaner      *extract.Cleaner
	standardizer *extract.Standardizer
	recommender  *recommend.Recommender
	tax          taxonomy.Taxonomy
	opts         Options
	log          zerolog.Logger
}

// New creates a pipeline that sends every prompt to gen
func New(gen llm.Generator, tax taxonomy.Taxonomy, opts Options, logger zerolog.Logger) *Pipeline {
	extractOpts := extract.DefaultExtractorOptions()
	extractOpts.Categories = tax.Categories

	return &Pipeline{
		extractor:    extract.NewExtractor(gen, extractOpts),
		cleaner:      extract.NewCleaner(tax),
		standardizer: extract.NewStandardizer(tax),
		recommender:  recommend.NewRecommender(gen, recommend.DefaultOptions()),
		tax:          tax,
		opts:         opts,
		log:          logger,
	}
}

// Taxonomy returns the taxonomy the pipeline was built with
func (p *Pipeline) Taxonomy() taxonomy.Taxonomy {
	return p.tax
}

// NewProvider creates the configured model provider, filling credentials
// from the environment
func NewProvider(cfg *model.Config) (llm.Provider, error) {
	llmConfig := llm.ConfigFromModel(cfg.LLM)
	if err := llm.ApplyEnv(&llmConfig); err != nil {
		return nil, err
	}
	provider, err := llm.NewProvider(llmConfig)
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}
	return provider, nil
}

// BuildGenerator creates the configured provider, wrapped with metrics,
// optional throttling and an optional response cache. The returned func
// releases the cache connection.
func BuildGenerator(cfg *model.Config, logger zerolog.Logger) (llm.Generator, func(), error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, nil, err
	}

	var limiter llm.RateLimiter
	if cfg.Concurrency.RequestsPerSecond > 0 {
		limiter = worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.BurstSize)
	}
	var gen llm.Generator = llm.NewInstrumentedGenerator(provider, provider.Name(), limiter, logger)

	cleanup := func() {}
	if cfg.Cache.Enabled {
		c, err := cache.New(cfg.Cache)
		if err != nil {
			return nil, nil, fmt.Errorf("create cache: %w", err)
		}
		gen = llm.NewCachedGenerator(gen, c, cfg.Cache.TTL, provider.Name()+":"+cfg.LLM.Model)
		if closer, ok := c.(io.Closer); ok {
			cleanup = func() { _ = closer.Close() }
		}
		logger.Debug().Str("backend", cfg.Cache.Backend).Msg("response cache enabled")
	}
	return gen, cleanup, nil
}

// AnalyzeReview extracts, cleans and standardizes one review
func (p *Pipeline) AnalyzeReview(ctx context.Context, review model.Review) (model.ReviewAnalysis, error) {
	analysis := model.ReviewAnalysis{Review: review}

	raw, err := p.extractor.Extract(ctx, review.Text)
	if err != nil {
		return analysis, err
	}

	cleaned := p.cleaner.CleanDetailed(raw)
	if cleaned.Fallback {
		observability.CleanerFallbacks.Inc()
		p.log.Debug().Str("review", review.ID).Str("business", review.BusinessID).Msg("cleaner kept raw model output")
	}

	analysis.Points = p.standardizer.Points(cleaned.Text)
	analysis.Feedback = extract.Join(analysis.Points)
	analysis.Fallback = cleaned.Fallback
	return analysis, nil
}

// AnalyzeReviewWithSuggestions also generates one suggestion per point
func (p *Pipeline) AnalyzeReviewWithSuggestions(ctx context.Context, review model.Review) (model.ReviewAnalysis, error) {
	analysis, err := p.AnalyzeReview(ctx, review)
	if err != nil {
		return analysis, err
	}
	analysis.Suggestions, err = p.recommender.SuggestAll(ctx, analysis.Points)
	if err != nil {
		return analysis, err
	}
	return analysis, nil
}

// AnalyzeText runs an ad-hoc review text through the full per-review path
func (p *Pipeline) AnalyzeText(ctx context.Context, text string) (model.ReviewAnalysis, error) {
	return p.AnalyzeReviewWithSuggestions(ctx, model.Review{Text: text})
}

// accumulate analyzes every review of b in order and counts its labels
func (p *Pipeline) accumulate(ctx context.Context, b model.BusinessReviews, mode string, progress int) (*aggregate.Business, int, error) {
	acc := aggregate.NewBusiness(b.ID, b.Name)
	fallbacks := 0
	total := len(b.Reviews)

	for i, review := range b.Reviews {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		analysis, err := p.AnalyzeReview(ctx, review)
		if err != nil {
			return nil, 0, fmt.Errorf("review %d/%d: %w", i+1, total, err)
		}
		if analysis.Fallback {
			fallbacks++
		}
		acc.Add(review, extract.LabelsOf(analysis.Points))
		observability.ReviewsProcessed.WithLabelValues(mode).Inc()

		if progress > 0 && (i+1)%progress == 0 {
			p.log.Info().Msgf("Processed %d/%d reviews...", i+1, total)
		}
	}
	return acc, fallbacks, nil
}

// AnalyzeBusiness builds the full report for one business: ranked issues,
// category breakdown, rating bands and recommendations for the top issues
func (p *Pipeline) AnalyzeBusiness(ctx context.Context, b model.BusinessReviews, identifier string) (*model.BusinessSummary, error) {
	if len(b.Reviews) == 0 {
		return nil, ErrNoResults
	}

	acc, fallbacks, err := p.accumulate(ctx, b, "business", p.opts.ReviewProgress)
	if err != nil {
		observability.ObserveBusiness(err)
		return nil, fmt.Errorf("analyze %s: %w", identifier, err)
	}
	p.log.Info().Msgf("Processed %d/%d reviews... Done!", len(b.Reviews), len(b.Reviews))

	summary := acc.Summary(p.tax, p.opts.TopIssues)
	summary.Identifier = identifier
	summary.Fallbacks = fallbacks

	summary.Recommendations, err = p.recommender.RecommendTop(ctx, summary.TopIssues, summary.ReviewCount, p.opts.Recommendations)
	observability.ObserveBusiness(err)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", identifier, err)
	}
	return summary, nil
}

// AnalyzeByID analyzes the business with the exact ID
func (p *Pipeline) AnalyzeByID(ctx context.Context, ds *Dataset, id string) (*model.BusinessSummary, error) {
	b, err := ds.ByID(id)
	if err != nil {
		return nil, err
	}
	return p.AnalyzeBusiness(ctx, b, "Business ID: "+id)
}

// AnalyzeByName analyzes every review whose business name contains name
func (p *Pipeline) AnalyzeByName(ctx context.Context, ds *Dataset, name string) (*model.BusinessSummary, error) {
	b, err := ds.ByName(name)
	if err != nil {
		return nil, err
	}
	return p.AnalyzeBusiness(ctx, b, "Business: "+b.Name)
}

// SummarizeBusiness ranks one business's issues for the batch summary.
// No recommendations are generated.
func (p *Pipeline) SummarizeBusiness(ctx context.Context, b model.BusinessReviews) (model.BatchRow, error) {
	acc, _, err := p.accumulate(ctx, b, "batch", 0)
	observability.ObserveBusiness(err)
	if err != nil {
		return model.BatchRow{}, fmt.Errorf("business %s: %w", b.ID, err)
	}
	return acc.Row(p.opts.BatchTopIssues), nil
}

// ProcessAll summarizes every business, in input order. Without
// SkipErrors the first failure aborts the run and the rows finished so far
// are returned with the error.
func (p *Pipeline) ProcessAll(ctx context.Context, businesses []model.BusinessReviews) ([]model.BatchRow, error) {
	if len(businesses) == 0 {
		return nil, ErrEmptyDataset
	}
	if p.opts.Workers <= 1 {
		return p.processSequential(ctx, businesses)
	}
	return p.processConcurrent(ctx, businesses)
}

func (p *Pipeline) processSequential(ctx context.Context, businesses []model.BusinessReviews) ([]model.BatchRow, error) {
	rows := make([]model.BatchRow, 0, len(businesses))
	for i, b := range businesses {
		row, err := p.SummarizeBusiness(ctx, b)
		if err != nil {
			if !p.opts.SkipErrors || ctx.Err() != nil {
				return rows, err
			}
			p.log.Warn().Err(err).Str("business", b.ID).Msg("skipping business")
		} else {
			rows = append(rows, row)
		}
		p.businessProgress(i+1, len(businesses))
	}
	return rows, nil
}

// abortingSummarizer cancels the batch on the first failure
type abortingSummarizer struct {
	*Pipeline
	cancel context.CancelFunc
}

func (a abortingSummarizer) SummarizeBusiness(ctx context.Context, b model.BusinessReviews) (model.BatchRow, error) {
	row, err := a.Pipeline.SummarizeBusiness(ctx, b)
	if err != nil && a.cancel != nil {
		a.cancel()
	}
	return row, err
}

func (p *Pipeline) processConcurrent(ctx context.Context, businesses []model.BusinessReviews) ([]model.BatchRow, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	summarizer := abortingSummarizer{Pipeline: p}
	if !p.opts.SkipErrors {
		summarizer.cancel = cancel
	}
	processor := worker.NewBatchProcessor(summarizer, p.opts.Workers, p.businessProgress)
	results := processor.ProcessBusinesses(ctx, businesses)

	rows := make([]model.BatchRow, 0, len(results))
	var firstErr error
	for _, res := range results {
		if err := res.Err(); err != nil {
			if p.opts.SkipErrors {
				p.log.Warn().Err(err).Str("business", res.Business.ID).Msg("skipping business")
				continue
			}
			if firstErr == nil || errors.Is(firstErr, context.Canceled) {
				firstErr = err
			}
			continue
		}
		rows = append(rows, res.Row)
	}
	if firstErr == nil && len(results) < len(businesses) {
		firstErr = ctx.Err()
	}
	return rows, firstErr
}

func (p *Pipeline) businessProgress(done, total int) {
	if p.opts.BusinessProgress > 0 && done%p.opts.BusinessProgress == 0 {
		p.log.Info().Msgf("Processed %d/%d businesses...", done, total)
	}
}

// ProcessDataset analyzes the first limit reviews (all when limit <= 0),
// with suggestions, preserving input order
func (p *Pipeline) ProcessDataset(ctx context.Context, ds *Dataset, limit int) ([]model.ReviewAnalysis, error) {
	n := ds.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	results := make([]model.ReviewAnalysis, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, p.opts.Workers))

	var done atomic.Int64
	for i := 0; i < n; i++ {
		review := ds.Reviews[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			analysis, err := p.AnalyzeReviewWithSuggestions(gctx, review)
			if err != nil {
				if !p.opts.SkipErrors || gctx.Err() != nil {
					return fmt.Errorf("review %d: %w", i+1, err)
				}
				p.log.Warn().Err(err).Int("row", i+1).Msg("skipping review")
				analysis = model.ReviewAnalysis{Review: review}
			}
			results[i] = analysis
			observability.ReviewsProcessed.WithLabelValues("dataset").Inc()

			if d := done.Add(1); p.opts.DatasetProgress > 0 && d%int64(p.opts.DatasetProgress) == 0 {
				p.log.Info().Msgf("Processed %d/%d reviews...", d, n)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Coverage reports how many analyzed reviews mention each category
func (p *Pipeline) Coverage(analyses []model.ReviewAnalysis) []model.CategoryTotal {
	feedback := make([]string, len(analyses))
	for i, a := range analyses {
		feedback[i] = a.Feedback
	}
	return aggregate.Coverage(feedback, p.tax)
}
