package model

import "fmt"

// Review is one row of the input dataset
type Review struct {
	ID           string  `json:"review_id,omitempty"`
	BusinessID   string  `json:"business_id"`
	BusinessName string  `json:"business_name"`
	Text         string  `json:"text"`
	Stars        float64 `json:"stars"`
	Rated        bool    `json:"rated"` // false when the star column was empty or unparseable
}

// FeedbackPoint is one standardized line extracted from a review
type FeedbackPoint struct {
	Ordinal int    `json:"ordinal"`
	Label   string `json:"label"`            // "Category: subcategory"
	Detail  string `json:"detail,omitempty"` // model phrasing before standardization
}

// String renders the point as a numbered line ("1. Service: speed")
func (p FeedbackPoint) String() string {
	return fmt.Sprintf("%d. %s", p.Ordinal, p.Label)
}

// ReviewAnalysis is the per-review result of the full-dataset mode
type ReviewAnalysis struct {
	Review      Review          `json:"review"`
	Feedback    string          `json:"feedback_categories"`
	Points      []FeedbackPoint `json:"points,omitempty"`
	Suggestions string          `json:"improvement_suggestions"`
	Fallback    bool            `json:"fallback"` // cleaner returned the raw model output
}

// BusinessReviews groups one business's reviews in dataset order
type BusinessReviews struct {
	ID      string   `json:"business_id"`
	Name    string   `json:"business_name"`
	Reviews []Review `json:"reviews"`
}
