package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/reviewinsights/internal/model"
	"github.com/ppiankov/reviewinsights/internal/taxonomy"
)

var leadingOrdinal = regexp.MustCompile(`^\d+\.\s*`)

// Standardizer maps cleaned lines to canonical "Category: subcategory"
// labels using the taxonomy's ordered rules
type Standardizer struct {
	tax    taxonomy.Taxonomy
	inline *regexp.Regexp
}

// NewStandardizer creates a standardizer for tax
func NewStandardizer(tax taxonomy.Taxonomy) *Standardizer {
	return &Standardizer{tax: tax, inline: inlineOrdinals(tax.Categories)}
}

// Points standardizes every non-blank line of text, in order, numbering the
// results from 1. Points written on one line ("1. Food Quality: cold
// 2. Service: slow") are split first. Lines that already carry a canonical
// label keep it; others take the label of the first matching rule or pass
// through with only their ordinal stripped.
func (s *Standardizer) Points(text string) []model.FeedbackPoint {
	var points []model.FeedbackPoint
	for _, line := range splitPoints(s.inline, text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		content := StripOrdinal(line)
		if content == "" {
			continue
		}

		points = append(points, model.FeedbackPoint{
			Ordinal: len(points) + 1,
			Label:   s.label(line, content),
			Detail:  content,
		})
	}
	return points
}

// Standardize returns the standardized lines joined by newlines
func (s *Standardizer) Standardize(text string) string {
	return Join(s.Points(text))
}

func (s *Standardizer) label(line, content string) string {
	if canonical, ok := s.tax.IsCanonical(content); ok {
		return canonical
	}
	for _, rule := range s.tax.Rules {
		if rule.Pattern.MatchString(line) {
			return rule.Label
		}
	}
	return content
}

// Join renders points as numbered lines
func Join(points []model.FeedbackPoint) string {
	lines := make([]string, len(points))
	for i, p := range points {
		lines[i] = p.String()
	}
	return strings.Join(lines, "\n")
}

// StripOrdinal removes a leading "N." and the whitespace after it
func StripOrdinal(line string) string {
	return strings.TrimSpace(leadingOrdinal.ReplaceAllString(line, ""))
}

// LabelsOf returns the labels of points in order
func LabelsOf(points []model.FeedbackPoint) []string {
	labels := make([]string, len(points))
	for i, p := range points {
		labels[i] = p.Label
	}
	return labels
}
