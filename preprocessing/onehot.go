package preprocessing

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pkgraph/core/model"
	"github.com/YuminosukeSato/pkgraph/pkg/errors"
)

// OneHotEncoder expands nominal string columns into indicator columns.
//
// Categories are the sorted distinct values observed at Fit, so the column
// layout is deterministic for a given dataset. A value not seen at Fit maps
// to an all-zero indicator block instead of failing, matching
// handle_unknown="ignore" semantics.
type OneHotEncoder struct {
	model.BaseEstimator

	// Categories holds, per input column, the sorted category values.
	Categories [][]string

	index []map[string]int
}

// NewOneHotEncoder creates an unfitted OneHotEncoder.
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{}
}

// Fit learns the category sets from columns, where columns[j] is one nominal
// column of length n_samples.
func (e *OneHotEncoder) Fit(columns [][]string) error {
	if len(columns) == 0 {
		return errors.NewValueError("OneHotEncoder.Fit", "no columns")
	}

	e.Categories = make([][]string, len(columns))
	e.index = make([]map[string]int, len(columns))

	for j, col := range columns {
		if len(col) == 0 {
			return errors.NewValueError("OneHotEncoder.Fit", "empty column")
		}
		seen := make(map[string]struct{}, len(col))
		for _, v := range col {
			seen[v] = struct{}{}
		}
		cats := make([]string, 0, len(seen))
		for v := range seen {
			cats = append(cats, v)
		}
		sort.Strings(cats)

		e.Categories[j] = cats
		e.index[j] = make(map[string]int, len(cats))
		for i, v := range cats {
			e.index[j][v] = i
		}
	}

	e.SetFitted()
	return nil
}

// NumOutputColumns returns the total width of the encoded block.
func (e *OneHotEncoder) NumOutputColumns() int {
	total := 0
	for _, cats := range e.Categories {
		total += len(cats)
	}
	return total
}

// Transform encodes columns into an n_samples × NumOutputColumns indicator
// matrix. All input columns must have the same length.
func (e *OneHotEncoder) Transform(columns [][]string) (*mat.Dense, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	if len(columns) != len(e.Categories) {
		return nil, errors.NewDimensionError("OneHotEncoder.Transform", len(e.Categories), len(columns), 1)
	}

	n := len(columns[0])
	for _, col := range columns {
		if len(col) != n {
			return nil, errors.NewDimensionError("OneHotEncoder.Transform", n, len(col), 0)
		}
	}

	result := mat.NewDense(n, e.NumOutputColumns(), nil)
	for i := 0; i < n; i++ {
		offset := 0
		for j, col := range columns {
			if pos, ok := e.index[j][col[i]]; ok {
				result.Set(i, offset+pos, 1.0)
			}
			offset += len(e.Categories[j])
		}
	}
	return result, nil
}

// FitTransform fits the encoder and encodes the same columns.
func (e *OneHotEncoder) FitTransform(columns [][]string) (*mat.Dense, error) {
	if err := e.Fit(columns); err != nil {
		return nil, err
	}
	return e.Transform(columns)
}
