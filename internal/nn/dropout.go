package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// clampProbability returns p, or 0.5 with a warning when p is outside [0, 1].
func clampProbability(layer string, p float64) float64 {
	if p >= 0 && p <= 1 {
		return p
	}
	log().Warn("drop probability out of range, using 0.5",
		"layer", layer, "probability", p)
	return 0.5
}

// keepDraw samples 1 (keep) with probability 1-p.
func keepDraw(p float64) distuv.Bernoulli {
	return distuv.Bernoulli{P: 1 - p}
}

// DropOut is a fully-connected layer whose output units are dropped with
// probability p during training.
//
// The mask is drawn at construction and redrawn on every WeightUpdate, so all
// samples of one mini-batch share it. Dropped units output zero and take no
// part in back-propagation. PredictOutputs scales the deterministic output
// by 1-p.
type DropOut struct {
	dense
	prob float64
	keep []bool
}

// NewDropOut creates a DropOut layer. A probability outside [0, 1] is
// replaced by 0.5 and logged.
func NewDropOut(in, out int, act Activation, prob float64, opts ...Option) *DropOut {
	d := &DropOut{dense: newDense(TypeDropOut, in, out, act, act.Type(), opts)}
	d.prob = clampProbability(d.label(), prob)
	d.keep = make([]bool, out)
	d.resample()
	return d
}

func (d *DropOut) resample() {
	draw := keepDraw(d.prob)
	for j := range d.keep {
		d.keep[j] = draw.Rand() == 1
	}
}

// Probability returns the effective drop probability.
func (d *DropOut) Probability() float64 { return d.prob }

// ForwardPropagation computes the pre-activation state of every unit.
func (d *DropOut) ForwardPropagation() {
	d.pre = affine(d.weights, d.inputs, d.biases)
}

// Outputs returns φ(pre) with dropped units zeroed.
func (d *DropOut) Outputs() []float64 {
	out := d.act.apply(d.pre)
	for j, k := range d.keep {
		if !k {
			out[j] = 0
		}
	}
	return out
}

// PredictOutputs returns φ(pre)·(1-p).
func (d *DropOut) PredictOutputs() []float64 {
	out := d.act.apply(d.pre)
	for j := range out {
		out[j] *= 1 - d.prob
	}
	return out
}

// BackPropagation accumulates gradients for kept units only.
func (d *DropOut) BackPropagation(next []float64) []float64 {
	delta := d.localDelta(next, d.keep)
	d.accumulate(delta, nil)
	return propagate(d.weights, delta)
}

// WeightUpdate applies the gradients, then draws a new mask.
func (d *DropOut) WeightUpdate(eta, mu, lambda float64) {
	d.dense.WeightUpdate(eta, mu, lambda)
	d.resample()
}

// Summary describes the layer geometry and drop probability.
func (d *DropOut) Summary() string {
	return fmt.Sprintf("%s, DropOutProb:%g", d.dense.Summary(), d.prob)
}

// DropConnect is a fully-connected layer whose individual connections are
// dropped with probability p during training.
//
// Like DropOut the mask is shared by a mini-batch and redrawn on
// WeightUpdate. Gradients and the returned signal go through the masked
// weights. PredictOutputs uses the unmasked weights scaled by 1-p.
type DropConnect struct {
	dense
	prob float64
	mask *mat.Dense // [in x out], 0 or 1
}

// NewDropConnect creates a DropConnect layer. A probability outside [0, 1]
// is replaced by 0.5 and logged.
func NewDropConnect(in, out int, act Activation, prob float64, opts ...Option) *DropConnect {
	d := &DropConnect{dense: newDense(TypeDropConnect, in, out, act, act.Type(), opts)}
	d.prob = clampProbability(d.label(), prob)
	d.mask = mat.NewDense(in, out, nil)
	d.resample()
	return d
}

func (d *DropConnect) resample() {
	draw := keepDraw(d.prob)
	data := d.mask.RawMatrix().Data
	for k := range data {
		data[k] = draw.Rand()
	}
}

// Probability returns the effective drop probability.
func (d *DropConnect) Probability() float64 { return d.prob }

func (d *DropConnect) masked() *mat.Dense {
	var w mat.Dense
	w.MulElem(d.mask, d.weights)
	return &w
}

// ForwardPropagation computes (M⊙W)ᵗ·x + b.
func (d *DropConnect) ForwardPropagation() {
	d.pre = affine(d.masked(), d.inputs, d.biases)
}

// Outputs returns φ(pre).
func (d *DropConnect) Outputs() []float64 {
	return d.act.apply(d.pre)
}

// PredictOutputs returns φ(Wᵗ·x + b)·(1-p) with the unmasked weights.
func (d *DropConnect) PredictOutputs() []float64 {
	out := d.act.apply(affine(d.weights, d.inputs, d.biases))
	for j := range out {
		out[j] *= 1 - d.prob
	}
	return out
}

// BackPropagation accumulates gradients of the kept connections and returns
// (M⊙W)·δ.
func (d *DropConnect) BackPropagation(next []float64) []float64 {
	delta := d.localDelta(next, nil)
	d.accumulate(delta, d.mask)
	return propagate(d.masked(), delta)
}

// WeightUpdate applies the gradients, then draws a new mask.
func (d *DropConnect) WeightUpdate(eta, mu, lambda float64) {
	d.dense.WeightUpdate(eta, mu, lambda)
	d.resample()
}

// Summary describes the layer geometry and drop probability.
func (d *DropConnect) Summary() string {
	return fmt.Sprintf("%s, DropConnectProb:%g", d.dense.Summary(), d.prob)
}
