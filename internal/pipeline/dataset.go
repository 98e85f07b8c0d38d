package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ppiankov/reviewinsights/internal/model"
)

var (
	// ErrNoResults means a lookup matched no reviews
	ErrNoResults = errors.New("no results")

	// ErrEmptyDataset means the dataset holds a header but no rows
	ErrEmptyDataset = errors.New("dataset has no reviews")
)

// Dataset is a loaded review table. The raw rows are kept so the augmented
// output can reproduce every input column.
type Dataset struct {
	Header  []string
	Rows    [][]string
	Reviews []model.Review

	byBusiness map[string][]int
	order      []string // business IDs in first-seen order
}

// BusinessMatch is one distinct (name, ID) pair returned by Search
type BusinessMatch struct {
	Name        string
	ID          string
	ReviewCount int
}

// LoadDataset opens path (local or http/https) and parses it
func LoadDataset(ctx context.Context, f *Fetcher, path string, cols model.ColumnMapping) (*Dataset, error) {
	if path == "" {
		return nil, fmt.Errorf("no dataset configured (set --data or data.path)")
	}
	rc, err := f.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	ds, err := ReadDataset(rc, cols)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ds, nil
}

// ReadDataset parses CSV with a header row. The business ID and text columns
// are required; name, stars and review ID are optional. Short rows are padded
// to the header width and longer rows are rejected.
func ReadDataset(r io.Reader, cols model.ColumnMapping) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	idx := columnIndex(header)
	idCol, ok := idx[cols.BusinessID]
	if !ok {
		return nil, fmt.Errorf("missing column %q", cols.BusinessID)
	}
	textCol, ok := idx[cols.Text]
	if !ok {
		return nil, fmt.Errorf("missing column %q", cols.Text)
	}
	nameCol, hasName := idx[cols.Name]
	starsCol, hasStars := idx[cols.Stars]
	reviewCol, hasReviewID := idx[cols.ReviewID]

	ds := &Dataset{Header: header, byBusiness: make(map[string][]int)}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(record) > len(header) {
			return nil, fmt.Errorf("line %d: %d fields, header has %d", line, len(record), len(header))
		}
		for len(record) < len(header) {
			record = append(record, "")
		}

		review := model.Review{
			BusinessID: field(record, idCol),
			Text:       field(record, textCol),
		}
		if hasName {
			review.BusinessName = field(record, nameCol)
		}
		if hasReviewID {
			review.ID = field(record, reviewCol)
		}
		if hasStars {
			if stars, err := strconv.ParseFloat(strings.TrimSpace(field(record, starsCol)), 64); err == nil {
				review.Stars = stars
				review.Rated = true
			}
		}

		i := len(ds.Reviews)
		if _, seen := ds.byBusiness[review.BusinessID]; !seen {
			ds.order = append(ds.order, review.BusinessID)
		}
		ds.byBusiness[review.BusinessID] = append(ds.byBusiness[review.BusinessID], i)
		ds.Reviews = append(ds.Reviews, review)
		ds.Rows = append(ds.Rows, record)
	}

	if len(ds.Reviews) == 0 {
		return nil, ErrEmptyDataset
	}
	return ds, nil
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	return idx
}

func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

// Len returns the number of reviews
func (d *Dataset) Len() int {
	return len(d.Reviews)
}

// BusinessCount returns the number of distinct business IDs
func (d *Dataset) BusinessCount() int {
	return len(d.order)
}

// Businesses groups reviews by business in first-seen order
func (d *Dataset) Businesses() []model.BusinessReviews {
	out := make([]model.BusinessReviews, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.business(id))
	}
	return out
}

// Filter returns the listed businesses in the given order, skipping IDs not
// present in the dataset
func (d *Dataset) Filter(ids []string) []model.BusinessReviews {
	out := make([]model.BusinessReviews, 0, len(ids))
	for _, id := range ids {
		if _, ok := d.byBusiness[id]; ok {
			out = append(out, d.business(id))
		}
	}
	return out
}

func (d *Dataset) business(id string) model.BusinessReviews {
	rows := d.byBusiness[id]
	b := model.BusinessReviews{
		ID:      id,
		Name:    d.Reviews[rows[0]].BusinessName,
		Reviews: make([]model.Review, len(rows)),
	}
	for i, r := range rows {
		b.Reviews[i] = d.Reviews[r]
	}
	return b
}

// ByID returns the reviews of one business
func (d *Dataset) ByID(id string) (model.BusinessReviews, error) {
	if _, ok := d.byBusiness[id]; !ok {
		return model.BusinessReviews{}, ErrNoResults
	}
	return d.business(id), nil
}

// ByName returns every review whose business name contains name, ignoring
// case. The group takes its name and ID from the first matching row.
func (d *Dataset) ByName(name string) (model.BusinessReviews, error) {
	needle := strings.ToLower(name)
	var b model.BusinessReviews
	for _, r := range d.Reviews {
		if r.BusinessName == "" || !strings.Contains(strings.ToLower(r.BusinessName), needle) {
			continue
		}
		if len(b.Reviews) == 0 {
			b.ID = r.BusinessID
			b.Name = r.BusinessName
		}
		b.Reviews = append(b.Reviews, r)
	}
	if len(b.Reviews) == 0 {
		return model.BusinessReviews{}, ErrNoResults
	}
	return b, nil
}

// Search lists the distinct businesses whose name contains term, ignoring
// case, in first-seen order
func (d *Dataset) Search(term string) ([]BusinessMatch, error) {
	needle := strings.ToLower(term)
	seen := make(map[[2]string]bool)
	var matches []BusinessMatch
	for _, r := range d.Reviews {
		if r.BusinessName == "" || !strings.Contains(strings.ToLower(r.BusinessName), needle) {
			continue
		}
		key := [2]string{r.BusinessName, r.BusinessID}
		if seen[key] {
			continue
		}
		seen[key] = true
		matches = append(matches, BusinessMatch{
			Name:        r.BusinessName,
			ID:          r.BusinessID,
			ReviewCount: len(d.byBusiness[r.BusinessID]),
		})
	}
	if len(matches) == 0 {
		return nil, ErrNoResults
	}
	return matches, nil
}
