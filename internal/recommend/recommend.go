// Package recommend turns aggregated issues into prioritized, model-written
// improvement recommendations.
package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/reviewinsights/internal/llm"
	"github.com/ppiankov/reviewinsights/internal/model"
)

// Options are the sampling settings for recommendation prompts
type Options struct {
	Model                 string
	Temperature           float64
	MaxTokens             int // business-level recommendations
	SuggestionTemperature float64
	SuggestionMaxTokens   int // per-feedback-point suggestions
}

// DefaultOptions returns moderate temperature with a larger budget than
// feedback extraction
func DefaultOptions() Options {
	return Options{
		Temperature:           0.3,
		MaxTokens:             200,
		SuggestionTemperature: 0.3,
		SuggestionMaxTokens:   80,
	}
}

// Recommender generates recommendations through a Generator
type Recommender struct {
	gen  llm.Generator
	opts Options
}

// NewRecommender creates a recommender backed by gen
func NewRecommender(gen llm.Generator, opts Options) *Recommender {
	return &Recommender{gen: gen, opts: opts}
}

const businessPrompt = `A restaurant has received customer feedback about: "%s"

Context:
- This issue was mentioned in %d out of %d reviews (%.1f%%)
- This is a recurring theme across multiple customers

Provide ONE specific, actionable improvement recommendation that addresses the root cause of this issue. Focus on practical solutions the business can implement.

Recommendation:`

const suggestionPrompt = `Given this customer feedback about a restaurant, provide ONE specific, actionable improvement suggestion.

Feedback: %s

Requirements:
- Be specific and actionable
- Focus on practical business solutions
- Keep it brief (1-2 sentences)
- Make it relevant to restaurant operations

Improvement suggestion:`

// BuildPrompt renders the business-level recommendation prompt
func BuildPrompt(issue string, count, total int) string {
	share := 0.0
	if total > 0 {
		share = float64(count) / float64(total) * 100
	}
	return fmt.Sprintf(businessPrompt, issue, count, total, share)
}

// Recommend asks for one recommendation addressing issue, which was
// mentioned in issue.Count of total reviews
func (r *Recommender) Recommend(ctx context.Context, issue model.AggregatedIssue, total int) (model.Recommendation, error) {
	resp, err := r.gen.Generate(ctx, llm.GenerateRequest{
		Model:       r.opts.Model,
		Prompt:      BuildPrompt(issue.Label, issue.Count, total),
		Temperature: r.opts.Temperature,
		MaxTokens:   r.opts.MaxTokens,
	})
	if err != nil {
		return model.Recommendation{}, fmt.Errorf("recommend %q: %w", issue.Label, err)
	}
	return model.Recommendation{
		Issue:    issue,
		Priority: Classify(issue.Share),
		Text:     strings.TrimSpace(resp.Text),
	}, nil
}

// RecommendTop generates recommendations for the first n issues, in order.
// It stops at the first model error.
func (r *Recommender) RecommendTop(ctx context.Context, issues []model.AggregatedIssue, total, n int) ([]model.Recommendation, error) {
	if n > len(issues) {
		n = len(issues)
	}
	recs := make([]model.Recommendation, 0, n)
	for _, issue := range issues[:n] {
		rec, err := r.Recommend(ctx, issue, total)
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Suggest asks for a brief suggestion addressing one feedback label
func (r *Recommender) Suggest(ctx context.Context, label string) (string, error) {
	resp, err := r.gen.Generate(ctx, llm.GenerateRequest{
		Model:       r.opts.Model,
		Prompt:      fmt.Sprintf(suggestionPrompt, label),
		Temperature: r.opts.SuggestionTemperature,
		MaxTokens:   r.opts.SuggestionMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("suggest for %q: %w", label, err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// SuggestAll suggests for every point and renders "N. label → suggestion"
// lines
func (r *Recommender) SuggestAll(ctx context.Context, points []model.FeedbackPoint) (string, error) {
	lines := make([]string, 0, len(points))
	for _, p := range points {
		s, err := r.Suggest(ctx, p.Label)
		if err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("%s → %s", p, s))
	}
	return strings.Join(lines, "\n"), nil
}

// Classify maps a share of reviews (percent) to a priority tier
func Classify(share float64) model.Priority {
	switch {
	case share > 20:
		return model.PriorityHigh
	case share > 10:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}
