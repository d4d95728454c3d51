package gnn

import (
	"math"
	"math/rand/v2"
)

const (
	bnEpsilon  = 1e-5
	bnMomentum = 0.1
)

// param is one trainable tensor with its gradient and AdamW moment buffers.
type param struct {
	w []float64 // values
	g []float64 // gradient, zeroed before each backward pass
	m []float64 // first moment
	v []float64 // second moment
}

func newParam(size int) *param {
	return &param{
		w: make([]float64, size),
		g: make([]float64, size),
		m: make([]float64, size),
		v: make([]float64, size),
	}
}

func (p *param) zeroGrad() {
	for i := range p.g {
		p.g[i] = 0
	}
}

// linear is a fully connected layer.
type linear struct {
	in, out int
	W       *param // in × out, row-major
	B       *param // out
}

func newLinear(in, out int, rng *rand.Rand) *linear {
	l := &linear{in: in, out: out, W: newParam(in * out), B: newParam(out)}
	for i := range l.W.w {
		l.W.w[i] = glorotUniform(rng, in, out)
	}
	return l
}

func (l *linear) apply(x []float64) []float64 {
	y := make([]float64, l.out)
	for j := 0; j < l.out; j++ {
		sum := l.B.w[j]
		for i := 0; i < l.in; i++ {
			sum += x[i] * l.W.w[i*l.out+j]
		}
		y[j] = sum
	}
	return y
}

func (l *linear) params() []*param {
	return []*param{l.W, l.B}
}

// convLayer is one message-passing block: mean neighborhood aggregation, a
// linear transform, batch normalization, ReLU and dropout.
type convLayer struct {
	in, out int

	lin *linear

	// Batch-norm affine parameters and running statistics.
	Gamma   *param
	Beta    *param
	runMean []float64
	runVar  []float64
}

func newConvLayer(in, out int, rng *rand.Rand) *convLayer {
	l := &convLayer{
		in:      in,
		out:     out,
		lin:     newLinear(in, out, rng),
		Gamma:   newParam(out),
		Beta:    newParam(out),
		runMean: make([]float64, out),
		runVar:  make([]float64, out),
	}
	for j := 0; j < out; j++ {
		l.Gamma.w[j] = 1.0
		l.runVar[j] = 1.0
	}
	return l
}

func (l *convLayer) params() []*param {
	return append(l.lin.params(), l.Gamma, l.Beta)
}

// layerCache holds the intermediate activations a backward pass needs.
type layerCache struct {
	agg      [][]float64 // aggregated input, n × in
	xhat     [][]float64 // normalized pre-activation, n × out
	invStd   []float64   // 1/sqrt(var+eps) per column
	reluMask [][]bool    // whether the ReLU passed each unit
	dropMask [][]float64 // inverted-dropout multiplier, nil when not training
}

// forward runs the block over all nodes. In training mode batch statistics
// are computed from the current forward pass (and folded into the running
// statistics); in evaluation mode the running statistics are used and
// dropout is disabled.
func (l *convLayer) forward(h [][]float64, agg *aggregation, training bool, rng *rand.Rand, dropout float64) ([][]float64, *layerCache) {
	n := len(h)

	// Mean aggregation over in-neighbors. The edge list indexes the full
	// node set, so nodes outside any requested subset still contribute.
	a := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, l.in)
		for _, s := range agg.neighbors[i] {
			src := h[s]
			for j := 0; j < l.in; j++ {
				row[j] += src[j]
			}
		}
		for j := 0; j < l.in; j++ {
			row[j] *= agg.invDeg[i]
		}
		a[i] = row
	}

	// Linear transform.
	z := make([][]float64, n)
	for i := 0; i < n; i++ {
		z[i] = l.lin.apply(a[i])
	}

	// Batch normalization.
	var mean, variance []float64
	if training {
		mean = make([]float64, l.out)
		variance = make([]float64, l.out)
		for j := 0; j < l.out; j++ {
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += z[i][j]
			}
			mean[j] = sum / float64(n)
		}
		for j := 0; j < l.out; j++ {
			sq := 0.0
			for i := 0; i < n; i++ {
				d := z[i][j] - mean[j]
				sq += d * d
			}
			variance[j] = sq / float64(n)
		}
		// Fold batch statistics into the running estimates (unbiased
		// variance for the running buffer).
		for j := 0; j < l.out; j++ {
			unbiased := variance[j]
			if n > 1 {
				unbiased = variance[j] * float64(n) / float64(n-1)
			}
			l.runMean[j] = (1-bnMomentum)*l.runMean[j] + bnMomentum*mean[j]
			l.runVar[j] = (1-bnMomentum)*l.runVar[j] + bnMomentum*unbiased
		}
	} else {
		mean = l.runMean
		variance = l.runVar
	}

	invStd := make([]float64, l.out)
	for j := 0; j < l.out; j++ {
		invStd[j] = 1.0 / math.Sqrt(variance[j]+bnEpsilon)
	}

	xhat := make([][]float64, n)
	out := make([][]float64, n)
	reluMask := make([][]bool, n)
	var dropMask [][]float64
	if training && dropout > 0 {
		dropMask = make([][]float64, n)
	}
	keepScale := 1.0
	if dropout > 0 {
		keepScale = 1.0 / (1.0 - dropout)
	}

	for i := 0; i < n; i++ {
		xh := make([]float64, l.out)
		row := make([]float64, l.out)
		mask := make([]bool, l.out)
		var dm []float64
		if dropMask != nil {
			dm = make([]float64, l.out)
		}
		for j := 0; j < l.out; j++ {
			xh[j] = (z[i][j] - mean[j]) * invStd[j]
			y := l.Gamma.w[j]*xh[j] + l.Beta.w[j]
			if y > 0 {
				mask[j] = true
			} else {
				y = 0
			}
			if dm != nil {
				if rng.Float64() < dropout {
					dm[j] = 0
				} else {
					dm[j] = keepScale
				}
				y *= dm[j]
			}
			row[j] = y
		}
		xhat[i] = xh
		out[i] = row
		reluMask[i] = mask
		if dropMask != nil {
			dropMask[i] = dm
		}
	}

	if !training {
		return out, nil
	}
	return out, &layerCache{
		agg:      a,
		xhat:     xhat,
		invStd:   invStd,
		reluMask: reluMask,
		dropMask: dropMask,
	}
}

// backward propagates dOut (gradient w.r.t. this block's output) through
// dropout, ReLU, batch norm, the linear transform and the aggregation,
// accumulating parameter gradients and returning the gradient w.r.t. the
// block's input.
func (l *convLayer) backward(dOut [][]float64, cache *layerCache, agg *aggregation) [][]float64 {
	n := len(dOut)

	// Dropout and ReLU.
	d := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, l.out)
		for j := 0; j < l.out; j++ {
			g := dOut[i][j]
			if cache.dropMask != nil {
				g *= cache.dropMask[i][j]
			}
			if !cache.reluMask[i][j] {
				g = 0
			}
			row[j] = g
		}
		d[i] = row
	}

	// Batch norm backward.
	dz := make([][]float64, n)
	for i := range dz {
		dz[i] = make([]float64, l.out)
	}
	for j := 0; j < l.out; j++ {
		var sumD, sumDX float64
		for i := 0; i < n; i++ {
			l.Gamma.g[j] += d[i][j] * cache.xhat[i][j]
			l.Beta.g[j] += d[i][j]
			dxh := d[i][j] * l.Gamma.w[j]
			sumD += dxh
			sumDX += dxh * cache.xhat[i][j]
		}
		nf := float64(n)
		for i := 0; i < n; i++ {
			dxh := d[i][j] * l.Gamma.w[j]
			dz[i][j] = cache.invStd[j] / nf * (nf*dxh - sumD - cache.xhat[i][j]*sumDX)
		}
	}

	// Linear backward.
	da := make([][]float64, n)
	for i := 0; i < n; i++ {
		da[i] = make([]float64, l.in)
		for j := 0; j < l.out; j++ {
			g := dz[i][j]
			l.lin.B.g[j] += g
			for k := 0; k < l.in; k++ {
				l.lin.W.g[k*l.out+j] += cache.agg[i][k] * g
				da[i][k] += l.lin.W.w[k*l.out+j] * g
			}
		}
	}

	// Aggregation backward: each target's gradient flows back to its
	// in-neighbors scaled by the target's inverse degree.
	dh := make([][]float64, n)
	for i := range dh {
		dh[i] = make([]float64, l.in)
	}
	for t := 0; t < n; t++ {
		scale := agg.invDeg[t]
		for _, s := range agg.neighbors[t] {
			dst := dh[s]
			src := da[t]
			for k := 0; k < l.in; k++ {
				dst[k] += src[k] * scale
			}
		}
	}

	return dh
}
