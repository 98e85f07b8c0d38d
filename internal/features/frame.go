// Package features prepares tabular business data for demand forecasting:
// multi-label columns are one-hot encoded and near-constant columns pruned.
package features

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Frame is a table of string cells with named columns
type Frame struct {
	Columns []string
	Rows    [][]string
}

// ReadCSV loads a frame from CSV with a header row. Short rows are padded
// with empty cells.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: no header row")
	}

	f := &Frame{Columns: records[0]}
	f.Columns[0] = strings.TrimPrefix(f.Columns[0], "\ufeff")
	for _, rec := range records[1:] {
		row := make([]string, len(f.Columns))
		copy(row, rec)
		f.Rows = append(f.Rows, row)
	}
	return f, nil
}

// WriteCSV writes the frame with its header
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(f.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// Index returns the position of column name, or -1
func (f *Frame) Index(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named column's cells
func (f *Frame) Column(name string) ([]string, error) {
	i := f.Index(name)
	if i < 0 {
		return nil, fmt.Errorf("column %q not found", name)
	}
	out := make([]string, len(f.Rows))
	for r, row := range f.Rows {
		out[r] = row[i]
	}
	return out, nil
}

// Drop returns a frame without the named columns. Unknown names are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}

	var keep []int
	out := &Frame{}
	for i, c := range f.Columns {
		if !drop[c] {
			keep = append(keep, i)
			out.Columns = append(out.Columns, c)
		}
	}
	out.Rows = make([][]string, len(f.Rows))
	for r, row := range f.Rows {
		cells := make([]string, len(keep))
		for j, i := range keep {
			cells[j] = row[i]
		}
		out.Rows[r] = cells
	}
	return out
}

// Append adds a column at the end. values must have one cell per row.
func (f *Frame) Append(name string, values []string) error {
	if len(values) != len(f.Rows) {
		return fmt.Errorf("column %q has %d values for %d rows", name, len(values), len(f.Rows))
	}
	f.Columns = append(f.Columns, name)
	for r := range f.Rows {
		f.Rows[r] = append(f.Rows[r], values[r])
	}
	return nil
}
