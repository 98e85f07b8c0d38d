// Package aggregate counts canonical labels across reviews and rolls them
// up into ranked issues, category totals and rating bands.
package aggregate

import (
	"sort"

	"github.com/ppiankov/reviewinsights/internal/model"
	"github.com/ppiankov/reviewinsights/internal/taxonomy"
)

// Counter is a label multiset that remembers first-insertion order
type Counter struct {
	counts map[string]int
	order  []string
}

// NewCounter creates an empty counter
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Add increases label's count by n
func (c *Counter) Add(label string, n int) {
	if _, ok := c.counts[label]; !ok {
		c.order = append(c.order, label)
	}
	c.counts[label] += n
}

// AddReview counts each distinct label of one review once, so a label's
// count never exceeds the number of reviews added
func (c *Counter) AddReview(labels []string) {
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		c.Add(l, 1)
	}
}

// Count returns the count of label
func (c *Counter) Count(label string) int {
	return c.counts[label]
}

// Len returns the number of distinct labels
func (c *Counter) Len() int {
	return len(c.order)
}

// Each calls fn for every label in first-insertion order
func (c *Counter) Each(fn func(label string, count int)) {
	for _, l := range c.order {
		fn(l, c.counts[l])
	}
}

// Top returns the k most frequent labels, ties broken by first-insertion
// order. k <= 0 returns every label.
func (c *Counter) Top(k int) []model.IssueCount {
	ranked := make([]model.IssueCount, 0, len(c.order))
	for _, l := range c.order {
		ranked = append(ranked, model.IssueCount{Label: l, Count: c.counts[l]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// Issues attaches each count's share of the business's reviews
func Issues(top []model.IssueCount, reviews int) []model.AggregatedIssue {
	issues := make([]model.AggregatedIssue, len(top))
	for i, t := range top {
		issues[i] = model.AggregatedIssue{
			Label: t.Label,
			Count: t.Count,
			Share: share(t.Count, reviews),
		}
	}
	return issues
}

// Categories sums label counts per top-level category (prefix match). Shares
// are over all categorized mentions. Results are ordered by count, ties in
// taxonomy order; labels with no recognized category are left out.
func Categories(c *Counter, tax taxonomy.Taxonomy) []model.CategoryTotal {
	totals := make([]model.CategoryTotal, len(tax.Categories))
	index := make(map[string]int, len(tax.Categories))
	for i, cat := range tax.Categories {
		totals[i].Category = cat
		index[cat] = i
	}

	mentions := 0
	c.Each(func(label string, count int) {
		if cat, ok := tax.CategoryOf(label); ok {
			totals[index[cat]].Count += count
			mentions += count
		}
	})

	for i := range totals {
		totals[i].Share = share(totals[i].Count, mentions)
	}
	sortByCount(totals)
	return totals
}

func sortByCount(totals []model.CategoryTotal) {
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Count > totals[j].Count
	})
}

// Mentions returns the sum of category counts
func Mentions(totals []model.CategoryTotal) int {
	n := 0
	for _, t := range totals {
		n += t.Count
	}
	return n
}

// Ratings buckets reviews into positive (>=4), neutral (3) and negative (<=2)
// bands. Unrated reviews count toward the total only.
func Ratings(reviews []model.Review) model.RatingDistribution {
	d := model.RatingDistribution{Total: len(reviews)}
	for _, r := range reviews {
		if !r.Rated {
			continue
		}
		switch {
		case r.Stars >= 4:
			d.Positive++
		case r.Stars == 3:
			d.Neutral++
		case r.Stars <= 2:
			d.Negative++
		}
	}
	return d
}

// AverageRating is the mean star rating over rated reviews
func AverageRating(reviews []model.Review) float64 {
	sum, n := 0.0, 0
	for _, r := range reviews {
		if r.Rated {
			sum += r.Stars
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func share(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
