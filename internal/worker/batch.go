package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/ppiankov/reviewinsights/internal/model"
)

// Summarizer aggregates one business into a batch row
type Summarizer interface {
	SummarizeBusiness(ctx context.Context, business model.BusinessReviews) (model.BatchRow, error)
}

// BusinessJob summarizes one business
type BusinessJob struct {
	Index      int
	Business   model.BusinessReviews
	Summarizer Summarizer
	done       func()
}

// Execute runs the summarizer
func (j *BusinessJob) Execute(ctx context.Context) Result {
	row, err := j.Summarizer.SummarizeBusiness(ctx, j.Business)
	if j.done != nil {
		j.done()
	}
	return &BusinessResult{
		Index:    j.Index,
		Business: j.Business,
		Row:      row,
		Error:    err,
	}
}

// BusinessResult is the outcome of one BusinessJob
type BusinessResult struct {
	Index    int
	Business model.BusinessReviews
	Row      model.BatchRow
	Error    error
}

// Err returns the job error
func (r *BusinessResult) Err() error {
	return r.Error
}

// ProgressFunc is called after each finished business
type ProgressFunc func(done, total int)

// BatchProcessor summarizes many businesses concurrently
type BatchProcessor struct {
	summarizer  Summarizer
	concurrency int
	progress    ProgressFunc
}

// NewBatchProcessor creates a batch processor; progress may be nil
func NewBatchProcessor(summarizer Summarizer, concurrency int, progress ProgressFunc) *BatchProcessor {
	return &BatchProcessor{
		summarizer:  summarizer,
		concurrency: concurrency,
		progress:    progress,
	}
}

// ProcessBusinesses summarizes every business and returns the results in
// input order. Businesses not reached before ctx is done are missing from
// the result.
func (b *BatchProcessor) ProcessBusinesses(ctx context.Context, businesses []model.BusinessReviews) []*BusinessResult {
	if len(businesses) == 0 {
		return []*BusinessResult{}
	}

	var finished atomic.Int64
	total := len(businesses)
	done := func() {
		n := int(finished.Add(1))
		if b.progress != nil {
			b.progress(n, total)
		}
	}

	jobs := make([]Job, len(businesses))
	for i, biz := range businesses {
		jobs[i] = &BusinessJob{
			Index:      i,
			Business:   biz,
			Summarizer: b.summarizer,
			done:       done,
		}
	}

	pool := NewPool(ctx, b.concurrency)
	results := pool.Run(jobs)

	out := make([]*BusinessResult, len(results))
	for i, result := range results {
		out[i] = result.(*BusinessResult)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Index < out[j].Index
	})
	return out
}

// ReadIDsFromFile reads business IDs from a file, one per line. Blank
// lines and #-comments are skipped and duplicates dropped.
func ReadIDsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var ids []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			ids = append(ids, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return ids, nil
}
