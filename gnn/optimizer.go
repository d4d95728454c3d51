package gnn

import "math"

// adamW implements the Adam optimizer with decoupled weight decay.
type adamW struct {
	lr          float64
	weightDecay float64
	beta1       float64
	beta2       float64
	epsilon     float64

	step   int
	params []*param
}

func newAdamW(params []*param, lr, weightDecay float64) *adamW {
	return &adamW{
		lr:          lr,
		weightDecay: weightDecay,
		beta1:       0.9,
		beta2:       0.999,
		epsilon:     1e-8,
		params:      params,
	}
}

func (o *adamW) zeroGrad() {
	for _, p := range o.params {
		p.zeroGrad()
	}
}

// update applies one AdamW step to every parameter. Weight decay is applied
// directly to the weights, decoupled from the adaptive gradient estimate.
func (o *adamW) update() {
	o.step++
	bc1 := 1 - math.Pow(o.beta1, float64(o.step))
	bc2 := 1 - math.Pow(o.beta2, float64(o.step))

	for _, p := range o.params {
		for i := range p.w {
			g := p.g[i]
			p.m[i] = o.beta1*p.m[i] + (1-o.beta1)*g
			p.v[i] = o.beta2*p.v[i] + (1-o.beta2)*g*g

			mHat := p.m[i] / bc1
			vHat := p.v[i] / bc2

			p.w[i] -= o.lr * (mHat/(math.Sqrt(vHat)+o.epsilon) + o.weightDecay*p.w[i])
		}
	}
}
