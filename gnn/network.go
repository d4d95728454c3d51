// Package gnn implements the graph encoder: a configurable-depth stack of
// neighborhood-aggregation layers with batch normalization, ReLU and dropout,
// closed by a linear projection to a scalar, trained by gradient descent
// against mean squared error.
//
// The scalar projection output doubles as the node "embedding" consumed by
// the downstream boosted-tree regressor.
package gnn

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pkgraph/core/model"
	"github.com/YuminosukeSato/pkgraph/graph"
	"github.com/YuminosukeSato/pkgraph/pkg/errors"
)

// Config holds the encoder architecture and training hyperparameters.
type Config struct {
	HiddenChannels int     // width of every hidden layer
	NumLayers      int     // number of aggregation layers
	Dropout        float64 // dropout rate, active only in training mode
	Epochs         int     // fixed number of training epochs
	LearningRate   float64 // AdamW step size
	WeightDecay    float64 // decoupled L2 regularization
	Seed           uint64  // weight init and dropout seed
}

// DefaultConfig returns the encoder defaults.
func DefaultConfig() Config {
	return Config{
		HiddenChannels: 512,
		NumLayers:      5,
		Dropout:        0.4,
		Epochs:         400,
		LearningRate:   0.001,
		WeightDecay:    0.01,
		Seed:           42,
	}
}

// GraphRegressor is one encoder instance. Its lifecycle is scoped to a
// single cross-validation fold: freshly initialized, trained, used to emit
// embeddings, then discarded.
type GraphRegressor struct {
	model.BaseEstimator

	cfg      Config
	inputDim int

	layers []*convLayer
	out    *linear

	rng *rand.Rand

	trainLoss []float64
	valLoss   []float64
}

// NewGraphRegressor creates an encoder for inputDim node features with
// freshly initialized weights.
func NewGraphRegressor(inputDim int, cfg Config) (*GraphRegressor, error) {
	if inputDim < 1 {
		return nil, errors.NewValueError("NewGraphRegressor", "input dimension must be >= 1")
	}
	if cfg.NumLayers < 1 {
		return nil, errors.NewValueError("NewGraphRegressor", "num_layers must be >= 1")
	}
	if cfg.HiddenChannels < 1 {
		return nil, errors.NewValueError("NewGraphRegressor", "hidden_channels must be >= 1")
	}
	if cfg.Dropout < 0 || cfg.Dropout >= 1 {
		return nil, errors.NewValueError("NewGraphRegressor", "dropout must be in [0, 1)")
	}
	if cfg.Epochs < 1 {
		return nil, errors.NewValueError("NewGraphRegressor", "epochs must be >= 1")
	}

	m := &GraphRegressor{
		cfg:      cfg,
		inputDim: inputDim,
		rng:      rand.New(rand.NewPCG(cfg.Seed, cfg.Seed)),
	}

	in := inputDim
	for l := 0; l < cfg.NumLayers; l++ {
		m.layers = append(m.layers, newConvLayer(in, cfg.HiddenChannels, m.rng))
		in = cfg.HiddenChannels
	}
	m.out = newLinear(cfg.HiddenChannels, 1, m.rng)

	return m, nil
}

// TrainLoss returns the recorded per-epoch training losses.
func (m *GraphRegressor) TrainLoss() []float64 {
	return m.trainLoss
}

// ValLoss returns the recorded per-epoch validation losses.
func (m *GraphRegressor) ValLoss() []float64 {
	return m.valLoss
}

// aggregation is the precomputed message-passing structure of a graph:
// in-neighbor lists plus the inverse in-degree. Self-loops guarantee every
// node has at least one in-neighbor.
type aggregation struct {
	neighbors [][]int
	invDeg    []float64
}

func newAggregation(g *graph.Graph) *aggregation {
	neighbors := g.InNeighbors()
	invDeg := make([]float64, g.NumNodes)
	for i, ns := range neighbors {
		if len(ns) > 0 {
			invDeg[i] = 1.0 / float64(len(ns))
		}
	}
	return &aggregation{neighbors: neighbors, invDeg: invDeg}
}

// forward runs the network over all nodes of the graph. It returns the
// scalar output per node, the last hidden representation, and the per-layer
// caches needed for backpropagation. Caches are only populated in training
// mode.
func (m *GraphRegressor) forward(h [][]float64, agg *aggregation, training bool) ([]float64, [][]float64, []*layerCache) {
	var caches []*layerCache
	if training {
		caches = make([]*layerCache, len(m.layers))
	}

	for l, layer := range m.layers {
		var cache *layerCache
		h, cache = layer.forward(h, agg, training, m.rng, m.cfg.Dropout)
		if training {
			caches[l] = cache
		}
	}

	n := len(h)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = m.out.apply(h[i])[0]
	}
	return out, h, caches
}

// Predict runs the trained encoder in evaluation mode (dropout disabled,
// batch-norm running statistics) over the full node set and returns the
// scalar outputs for the requested row indices as an n×1 matrix.
//
// Aggregation always operates on the full edge structure, so neighbors
// outside the requested subset still contribute.
func (m *GraphRegressor) Predict(X *mat.Dense, g *graph.Graph, indices []int) (*mat.Dense, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("GraphRegressor", "Predict")
	}
	n, d := X.Dims()
	if d != m.inputDim {
		return nil, errors.NewDimensionError("GraphRegressor.Predict", m.inputDim, d, 1)
	}
	if g.NumNodes != n {
		return nil, errors.NewDimensionError("GraphRegressor.Predict", n, g.NumNodes, 0)
	}
	for _, idx := range indices {
		if idx < 0 || idx >= n {
			return nil, errors.Newf("gnn: node index %d out of range [0, %d)", idx, n)
		}
	}

	agg := newAggregation(g)
	out, _, _ := m.forward(denseToRows(X), agg, false)

	result := mat.NewDense(len(indices), 1, nil)
	for i, idx := range indices {
		result.Set(i, 0, out[idx])
	}
	return result, nil
}

// denseToRows copies a gonum matrix into per-row float slices.
func denseToRows(X *mat.Dense) [][]float64 {
	n, d := X.Dims()
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = make([]float64, d)
		for j := 0; j < d; j++ {
			rows[i][j] = X.At(i, j)
		}
	}
	return rows
}

// glorotUniform samples Glorot/Xavier uniform initial weights.
func glorotUniform(rng *rand.Rand, fanIn, fanOut int) float64 {
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return (rng.Float64()*2 - 1) * limit
}
