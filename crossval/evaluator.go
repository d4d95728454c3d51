package crossval

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pkgraph/boosting"
	"github.com/YuminosukeSato/pkgraph/gnn"
	"github.com/YuminosukeSato/pkgraph/graph"
	"github.com/YuminosukeSato/pkgraph/metrics"
	"github.com/YuminosukeSato/pkgraph/pkg/errors"
	"github.com/YuminosukeSato/pkgraph/pkg/log"
)

// Config holds the cross-validation loop configuration together with the
// per-fold model hyperparameters.
type Config struct {
	NSplits  int
	Seed     int
	Encoder  gnn.Config
	Boosting boosting.Params
}

// DefaultConfig returns the evaluation defaults.
func DefaultConfig() Config {
	return Config{
		NSplits:  5,
		Seed:     42,
		Encoder:  gnn.DefaultConfig(),
		Boosting: boosting.DefaultParams(),
	}
}

// RunContext bundles the shared, read-only inputs of a cross-validation run:
// the full feature matrix, the target vector and the subject graph. It is
// constructed once and passed into every fold; folds must not mutate it.
type RunContext struct {
	X     *mat.Dense
	Y     *mat.VecDense
	Graph *graph.Graph
}

// NewRunContext validates the shared inputs and wraps them for the
// evaluator.
func NewRunContext(X *mat.Dense, y *mat.VecDense, g *graph.Graph) (*RunContext, error) {
	n, _ := X.Dims()
	if y.Len() != n {
		return nil, errors.NewDimensionError("NewRunContext", n, y.Len(), 0)
	}
	if g.NumNodes != n {
		return nil, errors.NewDimensionError("NewRunContext", n, g.NumNodes, 0)
	}
	return &RunContext{X: X, Y: y, Graph: g}, nil
}

// Metrics is one set of regression scores.
type Metrics struct {
	MSE  float64
	RMSE float64
	MAE  float64
	R2   float64
}

// Report is the terminal state of a cross-validation run: per-fold scores,
// their averages, and the last fold's loss curves for diagnostics.
type Report struct {
	Folds []Metrics
	Mean  Metrics

	// TrainLoss and ValLoss are the last fold's per-epoch loss curves.
	TrainLoss []float64
	ValLoss   []float64
}

// AsMap returns the averaged metrics keyed by their conventional names.
func (r *Report) AsMap() map[string]float64 {
	return map[string]float64{
		"mse":  r.Mean.MSE,
		"rmse": r.Mean.RMSE,
		"mae":  r.Mean.MAE,
		"r2":   r.Mean.R2,
	}
}

// Evaluator runs the two-stage model through k-fold cross-validation.
type Evaluator struct {
	cfg Config
}

// NewEvaluator creates an Evaluator. Zero-valued config fields fall back to
// the defaults.
func NewEvaluator(cfg Config) *Evaluator {
	defaults := DefaultConfig()
	if cfg.NSplits == 0 {
		cfg.NSplits = defaults.NSplits
	}
	if cfg.Encoder == (gnn.Config{}) {
		cfg.Encoder = defaults.Encoder
	}
	if cfg.Boosting == (boosting.Params{}) {
		cfg.Boosting = defaults.Boosting
	}
	return &Evaluator{cfg: cfg}
}

// Run executes all folds sequentially and fail-fast: the first error aborts
// the run with no partial results. Each fold's encoder/regressor pair is
// created inside the fold and dropped once its metrics are recorded.
func (e *Evaluator) Run(ctx *RunContext) (*Report, error) {
	logger := log.GetLoggerWithName("crossval")

	n, inputDim := ctx.X.Dims()
	splitter := NewKFold(e.cfg.NSplits, true, e.cfg.Seed)
	folds, err := splitter.Split(n)
	if err != nil {
		return nil, err
	}

	logger.Info("cross-validation started",
		log.SamplesKey, n,
		log.FeaturesKey, inputDim,
		"n_splits", e.cfg.NSplits,
	)

	report := &Report{Folds: make([]Metrics, 0, len(folds))}

	for foldIdx, fold := range folds {
		foldLogger := logger.With(log.FoldKey, foldIdx+1)

		encCfg := e.cfg.Encoder
		// Fresh weights per fold; offsetting the seed keeps folds
		// independent while the whole run stays reproducible.
		encCfg.Seed += uint64(foldIdx)
		encoder, err := gnn.NewGraphRegressor(inputDim, encCfg)
		if err != nil {
			return nil, errors.Wrapf(err, "crossval: fold %d encoder init failed", foldIdx+1)
		}

		if err := encoder.Fit(ctx.X, ctx.Graph, ctx.Y, fold.TrainIndices, fold.TestIndices); err != nil {
			return nil, errors.Wrapf(err, "crossval: fold %d encoder training failed", foldIdx+1)
		}

		// The trained encoder's evaluation-mode scalar outputs are the
		// embeddings handed to the tree ensemble.
		trainEmb, err := encoder.Predict(ctx.X, ctx.Graph, fold.TrainIndices)
		if err != nil {
			return nil, errors.Wrapf(err, "crossval: fold %d train embedding failed", foldIdx+1)
		}
		testEmb, err := encoder.Predict(ctx.X, ctx.Graph, fold.TestIndices)
		if err != nil {
			return nil, errors.Wrapf(err, "crossval: fold %d test embedding failed", foldIdx+1)
		}

		regressor := boosting.NewGBRegressor(e.cfg.Boosting)
		if err := regressor.Fit(trainEmb, subsetTargets(ctx.Y, fold.TrainIndices)); err != nil {
			return nil, errors.Wrapf(err, "crossval: fold %d regressor training failed", foldIdx+1)
		}

		preds, err := regressor.Predict(testEmb)
		if err != nil {
			return nil, errors.Wrapf(err, "crossval: fold %d prediction failed", foldIdx+1)
		}

		foldMetrics, err := scoreFold(ctx.Y, fold.TestIndices, preds)
		if err != nil {
			return nil, errors.Wrapf(err, "crossval: fold %d scoring failed", foldIdx+1)
		}
		report.Folds = append(report.Folds, foldMetrics)

		if foldIdx == len(folds)-1 {
			report.TrainLoss = encoder.TrainLoss()
			report.ValLoss = encoder.ValLoss()
		}

		foldLogger.Info("fold complete",
			"mse", foldMetrics.MSE,
			"rmse", foldMetrics.RMSE,
			"mae", foldMetrics.MAE,
			"r2", foldMetrics.R2,
		)
	}

	for _, m := range report.Folds {
		report.Mean.MSE += m.MSE
		report.Mean.RMSE += m.RMSE
		report.Mean.MAE += m.MAE
		report.Mean.R2 += m.R2
	}
	count := float64(len(report.Folds))
	report.Mean.MSE /= count
	report.Mean.RMSE /= count
	report.Mean.MAE /= count
	report.Mean.R2 /= count

	logger.Info("cross-validation finished",
		"mse", report.Mean.MSE,
		"rmse", report.Mean.RMSE,
		"mae", report.Mean.MAE,
		"r2", report.Mean.R2,
	)
	return report, nil
}

// subsetTargets extracts the targets for a set of row indices as a column
// matrix.
func subsetTargets(y *mat.VecDense, indices []int) *mat.Dense {
	out := mat.NewDense(len(indices), 1, nil)
	for i, idx := range indices {
		out.Set(i, 0, y.AtVec(idx))
	}
	return out
}

// scoreFold computes the fold metrics against the held-out targets.
func scoreFold(y *mat.VecDense, testIdx []int, preds mat.Matrix) (Metrics, error) {
	yTrue := mat.NewVecDense(len(testIdx), nil)
	yPred := mat.NewVecDense(len(testIdx), nil)
	for i, idx := range testIdx {
		yTrue.SetVec(i, y.AtVec(idx))
		yPred.SetVec(i, preds.At(i, 0))
	}

	var m Metrics
	var err error
	if m.MSE, err = metrics.MSE(yTrue, yPred); err != nil {
		return m, err
	}
	if m.RMSE, err = metrics.RMSE(yTrue, yPred); err != nil {
		return m, err
	}
	if m.MAE, err = metrics.MAE(yTrue, yPred); err != nil {
		return m, err
	}
	if m.R2, err = metrics.R2Score(yTrue, yPred); err != nil {
		return m, err
	}
	return m, nil
}
