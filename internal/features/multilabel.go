package features

import (
	"sort"
	"strings"
)

// ParseLabels reads a list literal such as "[a, 'b', \"c\"]". Empty cells,
// "[]" and "nan" hold no labels.
func ParseLabels(cell string) []string {
	if cell == "" || cell == "[]" || cell == "nan" {
		return nil
	}
	var labels []string
	for _, item := range strings.Split(strings.Trim(cell, "[]"), ",") {
		item = strings.Trim(strings.TrimSpace(item), `'"`)
		if item != "" {
			labels = append(labels, item)
		}
	}
	return labels
}

// EncodeMultiLabel replaces col with one 0/1 column "<col>_<label>" per
// distinct label, in sorted label order, appended after the remaining
// columns. It returns the new frame and the labels found.
func EncodeMultiLabel(f *Frame, col string) (*Frame, []string, error) {
	cells, err := f.Column(col)
	if err != nil {
		return nil, nil, err
	}

	parsed := make([]map[string]bool, len(cells))
	seen := make(map[string]bool)
	var classes []string
	for r, cell := range cells {
		parsed[r] = make(map[string]bool)
		for _, label := range ParseLabels(cell) {
			parsed[r][label] = true
			if !seen[label] {
				seen[label] = true
				classes = append(classes, label)
			}
		}
	}
	sort.Strings(classes)

	out := f.Drop(col)
	for _, label := range classes {
		values := make([]string, len(cells))
		for r := range cells {
			values[r] = "0"
			if parsed[r][label] {
				values[r] = "1"
			}
		}
		if err := out.Append(col+"_"+label, values); err != nil {
			return nil, nil, err
		}
	}
	return out, classes, nil
}
