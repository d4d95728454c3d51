package gnn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pkgraph/graph"
)

// selfLoopGraph is the minimal connectivity: each node aggregates only
// itself, reducing the network to a plain MLP.
func selfLoopGraph(n int) *graph.Graph {
	g := &graph.Graph{NumNodes: n}
	for i := 0; i < n; i++ {
		g.Edges = append(g.Edges, graph.Edge{Src: i, Dst: i})
	}
	return g
}

func testConfig() Config {
	return Config{
		HiddenChannels: 8,
		NumLayers:      2,
		Dropout:        0.0,
		Epochs:         150,
		LearningRate:   0.01,
		WeightDecay:    0.0,
		Seed:           42,
	}
}

func linearDataset(n int) (*mat.Dense, *mat.VecDense) {
	X := mat.NewDense(n, 1, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n)
		X.Set(i, 0, x)
		y.SetVec(i, 2*x)
	}
	return X, y
}

func TestGraphRegressorFitReducesLoss(t *testing.T) {
	n := 40
	X, y := linearDataset(n)
	g := selfLoopGraph(n)

	trainIdx := make([]int, 0, n)
	for i := 0; i < n; i++ {
		trainIdx = append(trainIdx, i)
	}

	m, err := NewGraphRegressor(1, testConfig())
	require.NoError(t, err)
	require.NoError(t, m.Fit(X, g, y, trainIdx, nil))

	losses := m.TrainLoss()
	require.Len(t, losses, testConfig().Epochs)
	assert.Less(t, losses[len(losses)-1], losses[0],
		"training loss should decrease on a learnable target")
}

func TestGraphRegressorLossCurves(t *testing.T) {
	n := 20
	X, y := linearDataset(n)
	g := selfLoopGraph(n)

	cfg := testConfig()
	cfg.Epochs = 10

	trainIdx := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}
	valIdx := []int{15, 16, 17, 18, 19}

	m, err := NewGraphRegressor(1, cfg)
	require.NoError(t, err)
	require.NoError(t, m.Fit(X, g, y, trainIdx, valIdx))

	assert.Len(t, m.TrainLoss(), 10)
	assert.Len(t, m.ValLoss(), 10)
	for _, v := range m.ValLoss() {
		assert.False(t, v != v, "validation loss must be recorded when valIdx is given")
	}
}

func TestGraphRegressorPredict(t *testing.T) {
	n := 20
	X, y := linearDataset(n)
	g := selfLoopGraph(n)

	cfg := testConfig()
	cfg.Epochs = 20
	cfg.Dropout = 0.4

	trainIdx := make([]int, n)
	for i := range trainIdx {
		trainIdx[i] = i
	}

	m, err := NewGraphRegressor(1, cfg)
	require.NoError(t, err)
	require.NoError(t, m.Fit(X, g, y, trainIdx, nil))

	t.Run("returns one column per requested row", func(t *testing.T) {
		out, err := m.Predict(X, g, []int{3, 7, 11})
		require.NoError(t, err)
		r, c := out.Dims()
		assert.Equal(t, 3, r)
		assert.Equal(t, 1, c)
	})

	t.Run("evaluation mode is deterministic despite dropout", func(t *testing.T) {
		first, err := m.Predict(X, g, trainIdx)
		require.NoError(t, err)
		second, err := m.Predict(X, g, trainIdx)
		require.NoError(t, err)
		assert.True(t, mat.Equal(first, second))
	})

	t.Run("index out of range", func(t *testing.T) {
		_, err := m.Predict(X, g, []int{n})
		assert.Error(t, err)
	})
}

func TestGraphRegressorNotFitted(t *testing.T) {
	m, err := NewGraphRegressor(1, testConfig())
	require.NoError(t, err)

	X, _ := linearDataset(5)
	_, err = m.Predict(X, selfLoopGraph(5), []int{0})
	assert.Error(t, err)
}

func TestGraphRegressorAggregatesOutsideSubset(t *testing.T) {
	// Two connected nodes with different features: node 0's output must
	// change when node 1's features change, even though only node 0 is
	// requested.
	g := &graph.Graph{NumNodes: 2, Edges: []graph.Edge{
		{Src: 0, Dst: 0}, {Src: 1, Dst: 0},
		{Src: 1, Dst: 1}, {Src: 0, Dst: 1},
	}}

	cfg := testConfig()
	cfg.Epochs = 5

	X := mat.NewDense(2, 1, []float64{1.0, 2.0})
	y := mat.NewVecDense(2, []float64{1.0, 2.0})

	m, err := NewGraphRegressor(1, cfg)
	require.NoError(t, err)
	require.NoError(t, m.Fit(X, g, y, []int{0, 1}, nil))

	base, err := m.Predict(X, g, []int{0})
	require.NoError(t, err)

	XShifted := mat.NewDense(2, 1, []float64{1.0, 50.0})
	shifted, err := m.Predict(XShifted, g, []int{0})
	require.NoError(t, err)

	assert.NotEqual(t, base.At(0, 0), shifted.At(0, 0),
		"neighbor features outside the requested subset must influence aggregation")
}

func TestNewGraphRegressorValidation(t *testing.T) {
	cfg := testConfig()

	t.Run("bad input dim", func(t *testing.T) {
		_, err := NewGraphRegressor(0, cfg)
		assert.Error(t, err)
	})

	t.Run("bad dropout", func(t *testing.T) {
		bad := cfg
		bad.Dropout = 1.0
		_, err := NewGraphRegressor(1, bad)
		assert.Error(t, err)
	})

	t.Run("bad layers", func(t *testing.T) {
		bad := cfg
		bad.NumLayers = 0
		_, err := NewGraphRegressor(1, bad)
		assert.Error(t, err)
	})
}
