package gnn

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pkgraph/graph"
	"github.com/YuminosukeSato/pkgraph/pkg/errors"
	"github.com/YuminosukeSato/pkgraph/pkg/log"
)

// Fit trains the encoder by AdamW gradient descent on mean squared error
// over the training rows for a fixed number of epochs.
//
// The forward pass always covers the full node set so aggregation can gather
// neighbor information from outside the training subset; the loss and its
// gradient are restricted to trainIdx. Per-epoch training loss and
// evaluation-mode validation loss over valIdx are recorded for diagnostics.
func (m *GraphRegressor) Fit(X *mat.Dense, g *graph.Graph, y *mat.VecDense, trainIdx, valIdx []int) error {
	n, d := X.Dims()
	if d != m.inputDim {
		return errors.NewDimensionError("GraphRegressor.Fit", m.inputDim, d, 1)
	}
	if y.Len() != n {
		return errors.NewDimensionError("GraphRegressor.Fit", n, y.Len(), 0)
	}
	if g.NumNodes != n {
		return errors.NewDimensionError("GraphRegressor.Fit", n, g.NumNodes, 0)
	}
	if len(trainIdx) == 0 {
		return errors.NewValueError("GraphRegressor.Fit", "empty training index set")
	}
	for _, idx := range append(append([]int{}, trainIdx...), valIdx...) {
		if idx < 0 || idx >= n {
			return errors.Newf("gnn: node index %d out of range [0, %d)", idx, n)
		}
	}

	logger := log.GetLoggerWithName("gnn")
	logger.Info("encoder training started",
		log.OperationKey, "fit",
		log.SamplesKey, len(trainIdx),
		log.FeaturesKey, d,
		"epochs", m.cfg.Epochs,
		"hidden_channels", m.cfg.HiddenChannels,
		"num_layers", m.cfg.NumLayers,
	)

	var params []*param
	for _, layer := range m.layers {
		params = append(params, layer.params()...)
	}
	params = append(params, m.out.params()...)
	opt := newAdamW(params, m.cfg.LearningRate, m.cfg.WeightDecay)

	features := denseToRows(X)
	agg := newAggregation(g)

	m.trainLoss = make([]float64, 0, m.cfg.Epochs)
	m.valLoss = make([]float64, 0, m.cfg.Epochs)

	for epoch := 0; epoch < m.cfg.Epochs; epoch++ {
		opt.zeroGrad()

		out, hLast, caches := m.forward(features, agg, true)

		// MSE and its gradient, restricted to the training rows.
		loss := 0.0
		dOut := make([]float64, n)
		invCount := 1.0 / float64(len(trainIdx))
		for _, idx := range trainIdx {
			diff := out[idx] - y.AtVec(idx)
			loss += diff * diff
			dOut[idx] = 2 * diff * invCount
		}
		loss *= invCount

		// Backward through the output projection.
		hidden := m.cfg.HiddenChannels
		dh := make([][]float64, n)
		for i := 0; i < n; i++ {
			dh[i] = make([]float64, hidden)
			if dOut[i] == 0 {
				continue
			}
			m.out.B.g[0] += dOut[i]
			for k := 0; k < hidden; k++ {
				m.out.W.g[k] += hLast[i][k] * dOut[i]
				dh[i][k] = m.out.W.w[k] * dOut[i]
			}
		}

		for l := len(m.layers) - 1; l >= 0; l-- {
			dh = m.layers[l].backward(dh, caches[l], agg)
		}

		opt.update()

		m.trainLoss = append(m.trainLoss, loss)
		m.valLoss = append(m.valLoss, m.validationLoss(features, agg, y, valIdx))

		if (epoch+1)%50 == 0 {
			logger.Debug("epoch complete",
				log.EpochKey, epoch+1,
				log.LossKey, loss,
				log.ValLossKey, m.valLoss[epoch],
			)
		}
	}

	m.SetFitted()
	logger.Info("encoder training finished",
		log.LossKey, m.trainLoss[len(m.trainLoss)-1],
		log.ValLossKey, m.valLoss[len(m.valLoss)-1],
	)
	return nil
}

// validationLoss computes evaluation-mode MSE over valIdx, or NaN when no
// validation rows were supplied.
func (m *GraphRegressor) validationLoss(features [][]float64, agg *aggregation, y *mat.VecDense, valIdx []int) float64 {
	if len(valIdx) == 0 {
		return math.NaN()
	}
	out, _, _ := m.forward(features, agg, false)
	loss := 0.0
	for _, idx := range valIdx {
		diff := out[idx] - y.AtVec(idx)
		loss += diff * diff
	}
	return loss / float64(len(valIdx))
}
