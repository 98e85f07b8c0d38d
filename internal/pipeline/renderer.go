package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/reviewinsights/internal/model"
)

const ruleWidth = 70

// Renderer prints human-readable reports
type Renderer struct {
	out     io.Writer
	heading lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	tiers   map[model.Priority]lipgloss.Style
}

// NewRenderer creates a renderer writing to out. Without color every style
// renders plain text.
func NewRenderer(out io.Writer, color bool) *Renderer {
	r := &Renderer{
		out:     out,
		heading: lipgloss.NewStyle(),
		label:   lipgloss.NewStyle(),
		muted:   lipgloss.NewStyle(),
		tiers: map[model.Priority]lipgloss.Style{
			model.PriorityHigh:   lipgloss.NewStyle(),
			model.PriorityMedium: lipgloss.NewStyle(),
			model.PriorityLow:    lipgloss.NewStyle(),
		},
	}
	if color {
		r.heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
		r.label = lipgloss.NewStyle().Bold(true)
		r.muted = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		r.tiers[model.PriorityHigh] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
		r.tiers[model.PriorityMedium] = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
		r.tiers[model.PriorityLow] = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	}
	return r
}

func (r *Renderer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Section prints a titled separator block
func (r *Renderer) Section(title string) {
	rule := strings.Repeat("=", ruleWidth)
	r.printf("%s\n%s\n%s\n\n", rule, r.heading.Render(title), rule)
}

// RenderDatasetInfo prints the loaded dataset size
func (r *Renderer) RenderDatasetInfo(ds *Dataset) {
	r.printf("Loaded %s reviews from %s unique businesses\n\n", thousands(ds.Len()), thousands(ds.BusinessCount()))
}

// RenderBusiness prints the single-business report
func (r *Renderer) RenderBusiness(s *model.BusinessSummary) {
	r.printf("\n")
	r.Section("BUSINESS ANALYSIS: " + s.Identifier)
	r.printf("Total Reviews: %d\n", s.ReviewCount)
	r.printf("Average Rating: %.2f stars\n", s.AverageRating)
	if s.Fallbacks > 0 {
		r.printf("%s\n", r.muted.Render(fmt.Sprintf("Unfiltered model output kept for %d review(s)", s.Fallbacks)))
	}
	r.printf("\n")

	r.Section(fmt.Sprintf("TOP %d CUSTOMER FEEDBACK THEMES", len(s.TopIssues)))
	for i, issue := range s.TopIssues {
		r.printf("%d. %s\n", i+1, r.label.Render(issue.Label))
		r.printf("   Mentioned in %d reviews (%.1f%% of reviews)\n\n", issue.Count, issue.Share)
	}

	if len(s.Recommendations) > 0 {
		r.Section("PRIORITY IMPROVEMENT RECOMMENDATIONS")
		for i, rec := range s.Recommendations {
			r.printf("%d. %s (%.1f%% of reviews)\n", i+1, r.label.Render(rec.Issue.Label), rec.Issue.Share)
			r.printf("   Priority: %s\n", r.tiers[rec.Priority].Render(string(rec.Priority)))
			r.printf("   Recommendation: %s\n\n", rec.Text)
		}
	}

	r.Section("FEEDBACK CATEGORY BREAKDOWN")
	mentions := 0
	for _, c := range s.Categories {
		mentions += c.Count
	}
	if mentions > 0 {
		for _, c := range s.Categories {
			r.printf("%s: %d mentions (%.1f%% of total feedback)\n", c.Category, c.Count, c.Share)
		}
	}

	r.printf("\n")
	r.Section("RATING DISTRIBUTION")
	d := s.Ratings
	r.printf("Positive Reviews (4-5 stars): %d (%.1f%%)\n", d.Positive, d.PositiveShare())
	r.printf("Negative Reviews (1-2 stars): %d (%.1f%%)\n", d.Negative, d.NegativeShare())
	r.printf("Neutral Reviews (3 stars): %d (%.1f%%)\n", d.Neutral, d.NeutralShare())
}

// RenderNoResults prints the empty-lookup message
func (r *Renderer) RenderNoResults(identifier string) {
	r.printf("No reviews found for %s\n", identifier)
}

// RenderSearch lists up to limit matches for term
func (r *Renderer) RenderSearch(term string, matches []BusinessMatch, limit int) {
	if len(matches) == 0 {
		r.printf("No businesses found matching '%s'\n", term)
		return
	}
	r.printf("\nFound %d business(es) matching '%s':\n\n", len(matches), term)
	shown := matches
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for i, m := range shown {
		r.printf("%d. %s\n", i+1, r.label.Render(m.Name))
		r.printf("   Business ID: %s\n", m.ID)
		r.printf("   Reviews: %d\n\n", m.ReviewCount)
	}
	if len(matches) > len(shown) {
		r.printf("... and %d more matches\n\n", len(matches)-len(shown))
	}
}

// RenderAnalysis prints one review's standardized feedback and suggestions
func (r *Renderer) RenderAnalysis(title string, a model.ReviewAnalysis) {
	r.printf("%s\n", r.label.Render(title))
	r.printf("%s\n\n", preview(a.Review.Text, 100))
	r.printf("Feedback Categories:\n%s\n", a.Feedback)
	r.printf("\nImprovement Suggestions:\n%s\n", a.Suggestions)
	r.printf("\n%s\n\n", strings.Repeat("=", 50))
}

// RenderCoverage prints the dataset-wide category distribution
func (r *Renderer) RenderCoverage(totals []model.CategoryTotal) {
	r.printf("\n")
	r.Section("ANALYSIS SUMMARY")
	r.printf("Feedback Category Distribution:\n")
	for _, t := range totals {
		r.printf("%s: %s reviews (%.1f%%)\n", t.Category, thousands(t.Count), t.Share)
	}
}

func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

func thousands(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return "-" + thousands(-n)
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// BatchHeader is the column layout of the batch summary
var BatchHeader = []string{
	"business_id", "business_name", "total_reviews", "avg_rating",
	"top_issue_1", "top_issue_1_count",
	"top_issue_2", "top_issue_2_count",
	"top_issue_3", "top_issue_3_count",
}

// WriteBatchCSV writes one line per business
func WriteBatchCSV(w io.Writer, rows []model.BatchRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(BatchHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.BusinessID,
			row.BusinessName,
			strconv.Itoa(row.TotalReviews),
			strconv.FormatFloat(row.AverageRating, 'f', -1, 64),
		}
		for _, issue := range row.TopIssues {
			record = append(record, issue.Label, strconv.Itoa(issue.Count))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAugmentedCSV writes the analyzed input rows with the
// feedback_categories and improvement_suggestions columns appended
func WriteAugmentedCSV(w io.Writer, ds *Dataset, analyses []model.ReviewAnalysis) error {
	cw := csv.NewWriter(w)
	header := append(append([]string(nil), ds.Header...), "feedback_categories", "improvement_suggestions")
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, a := range analyses {
		record := make([]string, 0, len(ds.Rows[i])+2)
		record = append(record, ds.Rows[i]...)
		record = append(record, a.Feedback, a.Suggestions)
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates path and hands it to write
func WriteFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
