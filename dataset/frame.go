// Package dataset provides the tabular frame consumed by the feature
// builder, plus a CSV loader for pharmacokinetic datasets.
package dataset

import (
	"strconv"

	"github.com/YuminosukeSato/pkgraph/pkg/errors"
)

// Frame is an immutable column-ordered table of string cells. Row order is
// preserved from the source; rows belonging to one subject keep their visit
// order.
type Frame struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewFrame builds a Frame from a header and rows. Every row must have
// exactly len(columns) cells.
func NewFrame(columns []string, rows [][]string) (*Frame, error) {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		index[name] = i
	}
	for _, row := range rows {
		if len(row) != len(columns) {
			return nil, errors.NewDimensionError("NewFrame", len(columns), len(row), 1)
		}
	}
	return &Frame{columns: columns, index: index, rows: rows}, nil
}

// NumRows returns the number of rows in the frame.
func (f *Frame) NumRows() int {
	return len(f.rows)
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

// HasColumn reports whether the frame contains the named column.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the named column as strings. The column must exist.
func (f *Frame) Column(name string) ([]string, error) {
	j, ok := f.index[name]
	if !ok {
		return nil, errors.NewConfigError(name, "required column is missing from the input frame")
	}
	out := make([]string, len(f.rows))
	for i, row := range f.rows {
		out[i] = row[j]
	}
	return out, nil
}

// Floats returns the named column parsed as float64 values.
func (f *Frame) Floats(name string) ([]float64, error) {
	col, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(col))
	for i, s := range col {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "dataset: column %q row %d is not numeric", name, i)
		}
		out[i] = v
	}
	return out, nil
}
