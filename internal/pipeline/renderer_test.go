package pipeline

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/reviewinsights/internal/model"
)

func TestRenderBusiness(t *testing.T) {
	var buf bytes.Buffer
	s := &model.BusinessSummary{
		Identifier:    "Business: Joe's Pizza",
		ReviewCount:   10,
		AverageRating: 3.456,
		TopIssues: []model.AggregatedIssue{
			{Label: "Service: speed", Count: 3, Share: 30},
		},
		Categories: []model.CategoryTotal{
			{Category: "Service", Count: 3, Share: 100},
			{Category: "Value", Count: 0, Share: 0},
		},
		Ratings: model.RatingDistribution{Total: 10, Positive: 4, Neutral: 2, Negative: 4},
		Recommendations: []model.Recommendation{
			{Issue: model.AggregatedIssue{Label: "Service: speed", Count: 3, Share: 30}, Priority: model.PriorityHigh, Text: "Add a runner."},
		},
	}
	NewRenderer(&buf, false).RenderBusiness(s)
	out := buf.String()

	for _, want := range []string{
		"BUSINESS ANALYSIS: Business: Joe's Pizza",
		"Total Reviews: 10",
		"Average Rating: 3.46 stars",
		"TOP 1 CUSTOMER FEEDBACK THEMES",
		"1. Service: speed\n   Mentioned in 3 reviews (30.0% of reviews)",
		"Priority: HIGH",
		"Recommendation: Add a runner.",
		"Service: 3 mentions (100.0% of total feedback)",
		"Positive Reviews (4-5 stars): 4 (40.0%)",
		"Negative Reviews (1-2 stars): 4 (40.0%)",
		"Neutral Reviews (3 stars): 2 (20.0%)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Unfiltered model output") {
		t.Error("Fallback note must be omitted when no review fell back")
	}
}

func TestRenderBusiness_NoMentions(t *testing.T) {
	var buf bytes.Buffer
	s := &model.BusinessSummary{
		Identifier:  "Business ID: b1",
		ReviewCount: 1,
		Categories:  []model.CategoryTotal{{Category: "Service"}},
		Fallbacks:   1,
	}
	NewRenderer(&buf, false).RenderBusiness(s)
	out := buf.String()

	if strings.Contains(out, "mentions (") {
		t.Errorf("Category lines must be omitted without mentions:\n%s", out)
	}
	if !strings.Contains(out, "Unfiltered model output kept for 1 review(s)") {
		t.Errorf("Expected fallback note:\n%s", out)
	}
	if strings.Contains(out, "PRIORITY IMPROVEMENT RECOMMENDATIONS") {
		t.Error("Recommendations section must be omitted when empty")
	}
}

func TestRenderSearch(t *testing.T) {
	matches := []BusinessMatch{
		{Name: "A", ID: "1", ReviewCount: 5},
		{Name: "B", ID: "2", ReviewCount: 1},
		{Name: "C", ID: "3", ReviewCount: 2},
	}

	var buf bytes.Buffer
	NewRenderer(&buf, false).RenderSearch("x", matches, 2)
	out := buf.String()
	if !strings.Contains(out, "Found 3 business(es) matching 'x'") {
		t.Errorf("Missing header:\n%s", out)
	}
	if !strings.Contains(out, "2. B\n   Business ID: 2\n   Reviews: 1") {
		t.Errorf("Missing second match:\n%s", out)
	}
	if strings.Contains(out, "3. C") || !strings.Contains(out, "... and 1 more matches") {
		t.Errorf("Expected truncation:\n%s", out)
	}

	buf.Reset()
	NewRenderer(&buf, false).RenderSearch("zzz", nil, 10)
	if buf.String() != "No businesses found matching 'zzz'\n" {
		t.Errorf("Unexpected empty output %q", buf.String())
	}
}

func TestRenderCoverageAndInfo(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)
	r.RenderDatasetInfo(loadSample(t))
	r.RenderCoverage([]model.CategoryTotal{{Category: "Service", Count: 12345, Share: 61.7}})
	out := buf.String()

	if !strings.Contains(out, "Loaded 5 reviews from 3 unique businesses") {
		t.Errorf("Missing dataset info:\n%s", out)
	}
	if !strings.Contains(out, "Service: 12,345 reviews (61.7%)") {
		t.Errorf("Missing coverage line:\n%s", out)
	}
}

func TestRenderAnalysis(t *testing.T) {
	var buf bytes.Buffer
	a := model.ReviewAnalysis{
		Review:      model.Review{Text: strings.Repeat("a", 120)},
		Feedback:    "1. Service: speed",
		Suggestions: "1. Service: speed → Add staff.",
	}
	NewRenderer(&buf, false).RenderAnalysis("Review 1:", a)
	out := buf.String()

	if !strings.Contains(out, strings.Repeat("a", 100)+"...\n") {
		t.Errorf("Expected 100-character preview:\n%s", out)
	}
	if !strings.Contains(out, "Feedback Categories:\n1. Service: speed") {
		t.Errorf("Missing feedback:\n%s", out)
	}
	if !strings.Contains(out, "Improvement Suggestions:\n1. Service: speed → Add staff.") {
		t.Errorf("Missing suggestions:\n%s", out)
	}
}

func TestThousands(t *testing.T) {
	tests := map[int]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -4500: "-4,500"}
	for n, want := range tests {
		if got := thousands(n); got != want {
			t.Errorf("thousands(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestWriteBatchCSV(t *testing.T) {
	rows := []model.BatchRow{
		{
			BusinessID: "b1", BusinessName: "Joe's, Pizza", TotalReviews: 2, AverageRating: 4.5,
			TopIssues: [3]model.IssueCount{{Label: "Service: speed", Count: 2}, {Label: "Value: pricing", Count: 1}},
		},
	}
	var buf bytes.Buffer
	if err := WriteBatchCSV(&buf, rows); err != nil {
		t.Fatalf("WriteBatchCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected header and one row, got %d", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(BatchHeader, ",") {
		t.Errorf("Unexpected header %v", records[0])
	}
	want := []string{"b1", "Joe's, Pizza", "2", "4.5", "Service: speed", "2", "Value: pricing", "1", "", "0"}
	for i := range want {
		if records[1][i] != want[i] {
			t.Errorf("Column %s = %q, want %q", BatchHeader[i], records[1][i], want[i])
		}
	}
}

func TestWriteAugmentedCSV(t *testing.T) {
	ds := loadSample(t)
	analyses := []model.ReviewAnalysis{
		{Review: ds.Reviews[0], Feedback: "1. Service: friendliness\n2. Food Quality: taste", Suggestions: "1. Service: friendliness → Keep it up."},
		{Review: ds.Reviews[1]},
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	err := WriteFile(path, func(w io.Writer) error { return WriteAugmentedCSV(w, ds, analyses) })
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header and two rows, got %d", len(records))
	}
	header := records[0]
	if header[len(header)-2] != "feedback_categories" || header[len(header)-1] != "improvement_suggestions" {
		t.Errorf("Unexpected header %v", header)
	}
	if records[1][0] != "r1" || records[1][5] != "1. Service: friendliness\n2. Food Quality: taste" {
		t.Errorf("Unexpected first row %v", records[1])
	}
	if records[2][5] != "" || records[2][6] != "" {
		t.Errorf("Expected empty analysis columns, got %v", records[2])
	}
}

func TestWriteAugmentedCSV_ShortRowsStayAligned(t *testing.T) {
	cols := model.DefaultConfig().Data.Columns
	ds, err := ReadDataset(strings.NewReader("business_id,text,stars_review\nb1,Cold soup\nb1,Great,5\n"), cols)
	if err != nil {
		t.Fatalf("ReadDataset failed: %v", err)
	}
	analyses := []model.ReviewAnalysis{
		{Review: ds.Reviews[0], Feedback: "1. Food Quality: temperature"},
		{Review: ds.Reviews[1]},
	}

	var buf bytes.Buffer
	if err := WriteAugmentedCSV(&buf, ds, analyses); err != nil {
		t.Fatalf("WriteAugmentedCSV failed: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	for i, rec := range records {
		if len(rec) != 5 {
			t.Errorf("record %d has %d fields, want 5: %q", i, len(rec), rec)
		}
	}
	if records[1][3] != "1. Food Quality: temperature" {
		t.Errorf("Feedback landed in the wrong column: %q", records[1])
	}
}
