package crossval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pkgraph/boosting"
	"github.com/YuminosukeSato/pkgraph/gnn"
	"github.com/YuminosukeSato/pkgraph/graph"
)

// syntheticRun builds a small multi-subject dataset with a learnable target
// and the matching subject graph.
func syntheticRun(t *testing.T, n int) *RunContext {
	t.Helper()

	X := mat.NewDense(n, 2, nil)
	y := mat.NewVecDense(n, nil)
	subjects := make([]string, n)
	for i := 0; i < n; i++ {
		x1 := float64(i%10) / 10.0
		x2 := float64(i%4) / 4.0
		X.Set(i, 0, x1)
		X.Set(i, 1, x2)
		y.SetVec(i, 1.5*x1+0.5*x2)
		subjects[i] = []string{"S1", "S2", "S3"}[i%3]
	}

	g, err := graph.BuildSubjectGraph(X, subjects, graph.Options{KNeighbors: 3, CategoricalWeight: 1.0})
	require.NoError(t, err)

	ctx, err := NewRunContext(X, y, g)
	require.NoError(t, err)
	return ctx
}

func smallConfig() Config {
	return Config{
		NSplits: 5,
		Seed:    42,
		Encoder: gnn.Config{
			HiddenChannels: 8,
			NumLayers:      2,
			Dropout:        0.2,
			Epochs:         30,
			LearningRate:   0.01,
			WeightDecay:    0.001,
			Seed:           42,
		},
		Boosting: boosting.Params{Iterations: 30, LearningRate: 0.1, MaxDepth: 3},
	}
}

func TestEvaluatorRun(t *testing.T) {
	ctx := syntheticRun(t, 60)
	report, err := NewEvaluator(smallConfig()).Run(ctx)
	require.NoError(t, err)

	require.Len(t, report.Folds, 5)

	t.Run("averaged R2 bounded above by one", func(t *testing.T) {
		assert.LessOrEqual(t, report.Mean.R2, 1.0+1e-9)
	})

	t.Run("error metrics are non-negative and finite", func(t *testing.T) {
		for i, m := range report.Folds {
			assert.GreaterOrEqual(t, m.MSE, 0.0, "fold %d mse", i)
			assert.GreaterOrEqual(t, m.RMSE, 0.0, "fold %d rmse", i)
			assert.GreaterOrEqual(t, m.MAE, 0.0, "fold %d mae", i)
			assert.False(t, math.IsNaN(m.R2), "fold %d r2", i)
		}
	})

	t.Run("mean is the average of fold metrics", func(t *testing.T) {
		var sum float64
		for _, m := range report.Folds {
			sum += m.MSE
		}
		assert.InDelta(t, sum/5, report.Mean.MSE, 1e-12)
	})

	t.Run("last fold loss curves recorded", func(t *testing.T) {
		assert.Len(t, report.TrainLoss, 30)
		assert.Len(t, report.ValLoss, 30)
	})

	t.Run("metric map keys", func(t *testing.T) {
		m := report.AsMap()
		for _, key := range []string{"mse", "rmse", "mae", "r2"} {
			_, ok := m[key]
			assert.True(t, ok, "missing key %s", key)
		}
	})
}

func TestEvaluatorConstantTarget(t *testing.T) {
	// A constant target must not fail numerically; R2 lands at or below 0.
	n := 30
	X := mat.NewDense(n, 1, nil)
	y := mat.NewVecDense(n, nil)
	subjects := make([]string, n)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		y.SetVec(i, 5.0)
		subjects[i] = "S1"
	}
	g, err := graph.BuildSubjectGraph(X, subjects, graph.Options{KNeighbors: 2, CategoricalWeight: 1.0})
	require.NoError(t, err)
	ctx, err := NewRunContext(X, y, g)
	require.NoError(t, err)

	cfg := smallConfig()
	cfg.Encoder.Epochs = 10
	report, err := NewEvaluator(cfg).Run(ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, report.Mean.R2, 1.0)
}

func TestEvaluatorZeroSplitsFails(t *testing.T) {
	ctx := syntheticRun(t, 30)
	cfg := smallConfig()
	cfg.NSplits = 1

	_, err := NewEvaluator(cfg).Run(ctx)
	assert.Error(t, err)
}

func TestNewRunContextValidation(t *testing.T) {
	X := mat.NewDense(3, 1, nil)
	y := mat.NewVecDense(2, nil)
	g := &graph.Graph{NumNodes: 3}

	_, err := NewRunContext(X, y, g)
	assert.Error(t, err)
}
