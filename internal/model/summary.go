package model

// Priority is the urgency tier of an aggregated issue
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// AggregatedIssue is a canonical label counted across one business's reviews
type AggregatedIssue struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Share float64 `json:"share"` // percent of the business's reviews
}

// IssueCount pairs a label with its mention count
type IssueCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CategoryTotal is the mention total of one top-level category
type CategoryTotal struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Share    float64 `json:"share"` // percent of all categorized mentions
}

// RatingDistribution buckets a business's reviews by star rating
type RatingDistribution struct {
	Total    int `json:"total"`
	Positive int `json:"positive"` // 4-5 stars
	Neutral  int `json:"neutral"`  // 3 stars
	Negative int `json:"negative"` // 1-2 stars
}

// PositiveShare returns the positive percentage of all reviews
func (d RatingDistribution) PositiveShare() float64 { return percent(d.Positive, d.Total) }

// NeutralShare returns the neutral percentage of all reviews
func (d RatingDistribution) NeutralShare() float64 { return percent(d.Neutral, d.Total) }

// NegativeShare returns the negative percentage of all reviews
func (d RatingDistribution) NegativeShare() float64 { return percent(d.Negative, d.Total) }

// Recommendation is a generated suggestion for one of the top issues
type Recommendation struct {
	Issue    AggregatedIssue `json:"issue"`
	Priority Priority        `json:"priority"`
	Text     string          `json:"text"`
}

// BusinessSummary is the output of one single-business analysis
type BusinessSummary struct {
	BusinessID      string             `json:"business_id"`
	BusinessName    string             `json:"business_name"`
	Identifier      string             `json:"identifier"` // "Business: <name>" or "Business ID: <id>"
	ReviewCount     int                `json:"review_count"`
	AverageRating   float64            `json:"average_rating"`
	TopIssues       []AggregatedIssue  `json:"top_issues"`
	Categories      []CategoryTotal    `json:"categories"`
	Ratings         RatingDistribution `json:"ratings"`
	Recommendations []Recommendation   `json:"recommendations,omitempty"`
	Fallbacks       int                `json:"fallbacks"` // reviews whose cleaning fell back to raw output
}

// BatchRow is one line of the all-businesses summary
type BatchRow struct {
	BusinessID    string        `json:"business_id"`
	BusinessName  string        `json:"business_name"`
	TotalReviews  int           `json:"total_reviews"`
	AverageRating float64       `json:"avg_rating"`
	TopIssues     [3]IssueCount `json:"top_issues"`
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
