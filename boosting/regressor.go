package boosting

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pkgraph/core/model"
	"github.com/YuminosukeSato/pkgraph/core/parallel"
	"github.com/YuminosukeSato/pkgraph/pkg/errors"
	"github.com/YuminosukeSato/pkgraph/pkg/log"
)

// Params holds the ensemble hyperparameters.
type Params struct {
	// Iterations is the number of boosting rounds.
	Iterations int
	// LearningRate shrinks each tree's contribution.
	LearningRate float64
	// MaxDepth caps tree depth.
	MaxDepth int
	// MinSamplesLeaf is the minimum number of samples per leaf.
	MinSamplesLeaf int
	// Lambda is the L2 regularization on leaf values.
	Lambda float64
}

// DefaultParams returns the ensemble defaults.
func DefaultParams() Params {
	return Params{
		Iterations:     500,
		LearningRate:   0.1,
		MaxDepth:       6,
		MinSamplesLeaf: 1,
		Lambda:         0.0,
	}
}

// GBRegressor is a gradient-boosted regression-tree ensemble with squared
// error loss.
type GBRegressor struct {
	model.BaseEstimator

	Params Params

	trees     []Tree
	initScore float64
	nFeatures int
}

// NewGBRegressor creates an untrained ensemble with the given parameters.
// Zero-valued fields fall back to the defaults.
func NewGBRegressor(params Params) *GBRegressor {
	defaults := DefaultParams()
	if params.Iterations == 0 {
		params.Iterations = defaults.Iterations
	}
	if params.LearningRate == 0 {
		params.LearningRate = defaults.LearningRate
	}
	if params.MaxDepth == 0 {
		params.MaxDepth = defaults.MaxDepth
	}
	if params.MinSamplesLeaf == 0 {
		params.MinSamplesLeaf = defaults.MinSamplesLeaf
	}
	return &GBRegressor{Params: params}
}

// Fit trains the ensemble on X (n_samples × n_features) and y (n_samples × 1).
func (r *GBRegressor) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewValueError("GBRegressor.Fit", "empty data")
	}
	if yRows != rows {
		return errors.NewDimensionError("GBRegressor.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("GBRegressor.Fit", "target must be a column vector")
	}
	if r.Params.Iterations < 1 {
		return errors.NewValueError("GBRegressor.Fit", "iterations must be >= 1")
	}

	t := newTrainer(r.Params, X, y)
	t.run()

	r.trees = t.trees
	r.initScore = t.initScore
	r.nFeatures = cols
	r.SetFitted()

	log.GetLoggerWithName("boosting").Info("ensemble trained",
		log.OperationKey, "fit",
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		"iterations", len(r.trees),
	)
	return nil
}

// Predict returns ensemble predictions for X as an n_samples × 1 matrix.
func (r *GBRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !r.IsFitted() {
		return nil, errors.NewNotFittedError("GBRegressor", "Predict")
	}
	rows, cols := X.Dims()
	if cols != r.nFeatures {
		return nil, errors.NewDimensionError("GBRegressor.Predict", r.nFeatures, cols, 1)
	}

	result := mat.NewDense(rows, 1, nil)
	const parallelThreshold = 1000
	parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
		features := make([]float64, cols)
		for i := start; i < end; i++ {
			for j := 0; j < cols; j++ {
				features[j] = X.At(i, j)
			}
			pred := r.initScore
			for ti := range r.trees {
				pred += r.trees[ti].predict(features) * r.Params.LearningRate
			}
			result.Set(i, 0, pred)
		}
	})
	return result, nil
}
