package aggregate

import (
	"strings"

	"github.com/ppiankov/reviewinsights/internal/model"
	"github.com/ppiankov/reviewinsights/internal/taxonomy"
)

// Business accumulates one business's standardized reviews
type Business struct {
	ID      string
	Name    string
	Reviews []model.Review
	Counter *Counter
}

// NewBusiness creates an empty accumulator
func NewBusiness(id, name string) *Business {
	return &Business{ID: id, Name: name, Counter: NewCounter()}
}

// Add records one review and its standardized labels
func (b *Business) Add(review model.Review, labels []string) {
	b.Reviews = append(b.Reviews, review)
	b.Counter.AddReview(labels)
}

// Summary builds the business report body: top k issues, category
// breakdown and rating bands. Recommendations are left to the caller.
func (b *Business) Summary(tax taxonomy.Taxonomy, k int) *model.BusinessSummary {
	total := len(b.Reviews)
	return &model.BusinessSummary{
		BusinessID:    b.ID,
		BusinessName:  b.Name,
		ReviewCount:   total,
		AverageRating: AverageRating(b.Reviews),
		TopIssues:     Issues(b.Counter.Top(k), total),
		Categories:    Categories(b.Counter, tax),
		Ratings:       Ratings(b.Reviews),
	}
}

// Row builds the batch summary line carrying the top three of the k
// highest-ranked issues
func (b *Business) Row(k int) model.BatchRow {
	row := model.BatchRow{
		BusinessID:    b.ID,
		BusinessName:  b.Name,
		TotalReviews:  len(b.Reviews),
		AverageRating: AverageRating(b.Reviews),
	}
	for i, issue := range b.Counter.Top(k) {
		if i >= len(row.TopIssues) {
			break
		}
		row.TopIssues[i] = issue
	}
	return row
}

// Coverage reports, per category, how many feedback texts mention it
// ("<category>:" case-insensitively) and the share of all texts
func Coverage(feedback []string, tax taxonomy.Taxonomy) []model.CategoryTotal {
	totals := make([]model.CategoryTotal, len(tax.Categories))
	for i, cat := range tax.Categories {
		needle := strings.ToLower(cat) + ":"
		n := 0
		for _, f := range feedback {
			if strings.Contains(strings.ToLower(f), needle) {
				n++
			}
		}
		totals[i] = model.CategoryTotal{Category: cat, Count: n, Share: share(n, len(feedback))}
	}
	sortByCount(totals)
	return totals
}
