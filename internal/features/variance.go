package features

import (
	"sort"
	"strconv"
	"strings"
)

const (
	// DefaultThreshold is the dominant-value share at which a column is dropped
	DefaultThreshold = 0.90

	maxDistinct = 10
)

// DefaultExclude are the identifier and target columns never pruned
var DefaultExclude = []string{"business_id", "month", "demand"}

// LowVariance describes one pruned column
type LowVariance struct {
	Column        string
	MaxProportion float64
	DominantValue string
}

// RemoveLowVariance drops numeric columns with at most ten distinct values
// whose most common value covers at least threshold of the non-empty cells.
// The report is sorted by proportion, highest first.
func RemoveLowVariance(f *Frame, threshold float64, exclude []string) (*Frame, []LowVariance) {
	skip := make(map[string]bool, len(exclude))
	for _, c := range exclude {
		skip[c] = true
	}

	var report []LowVariance
	for i, col := range f.Columns {
		if skip[col] {
			continue
		}
		lv, ok := dominance(f, i)
		if !ok || lv.MaxProportion < threshold {
			continue
		}
		lv.Column = col
		report = append(report, lv)
	}

	sort.SliceStable(report, func(a, b int) bool {
		return report[a].MaxProportion > report[b].MaxProportion
	})

	drop := make([]string, len(report))
	for i, lv := range report {
		drop[i] = lv.Column
	}
	return f.Drop(drop...), report
}

// dominance reports the most frequent value of a numeric, low-cardinality
// column. Empty and "nan" cells are ignored.
func dominance(f *Frame, col int) (LowVariance, bool) {
	counts := make(map[float64]int)
	var order []float64
	raw := make(map[float64]string)
	n := 0

	for _, row := range f.Rows {
		cell := strings.TrimSpace(row[col])
		if cell == "" || strings.EqualFold(cell, "nan") {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return LowVariance{}, false
		}
		if _, ok := counts[v]; !ok {
			order = append(order, v)
			raw[v] = cell
		}
		counts[v]++
		n++
	}
	if n == 0 || len(order) > maxDistinct {
		return LowVariance{}, false
	}

	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return LowVariance{
		MaxProportion: float64(counts[best]) / float64(n),
		DominantValue: raw[best],
	}, true
}
