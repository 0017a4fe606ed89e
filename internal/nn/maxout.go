package nn

import (
	"fmt"

	"github.com/born-ml/convnet/internal/optim"
	"github.com/born-ml/convnet/internal/parallel"
	"gonum.org/v1/gonum/mat"
)

// Maxout is the fully-connected form of maxout.
//
// Every (input i, output j) pair keeps its own affine piece
// z[i,j] = w[i,j]·x[i] + b[i,j], and output j is max_i z[i,j]. The winning
// input of each output is recorded in the forward pass; back-propagation
// routes the upstream gradient to that input only.
type Maxout struct {
	base

	inputs  []float64
	pre     *mat.Dense // [in x out] per-pair pre-activations
	winners []int      // [out] argmax row of each column

	weights, biases *mat.Dense // [in x out]
	dw, prevDW      *mat.Dense
	db, prevDB      *mat.Dense
}

// NewMaxout creates a Maxout layer with weights drawn uniformly from ±1/in
// and zero biases.
func NewMaxout(in, out int, opts ...Option) *Maxout {
	if in <= 0 || out <= 0 {
		panic(fmt.Sprintf("%s: invalid size in=%d, out=%d", TypeMaxout, in, out))
	}
	m := &Maxout{
		base:    newBase(TypeMaxout, "Maxout", opts),
		inputs:  make([]float64, in),
		pre:     mat.NewDense(in, out, nil),
		winners: make([]int, out),
		weights: mat.NewDense(in, out, nil),
		biases:  mat.NewDense(in, out, nil),
		dw:      mat.NewDense(in, out, nil),
		prevDW:  mat.NewDense(in, out, nil),
		db:      mat.NewDense(in, out, nil),
		prevDB:  mat.NewDense(in, out, nil),
	}
	m.inSize, m.outSize = in, out
	bound := fcBound(in)
	m.GenerateWeights(-bound, bound)
	return m
}

// SetInputs copies x into the layer.
func (m *Maxout) SetInputs(x []float64) error {
	if err := checkLen(&m.base, "inputs", m.inSize, x); err != nil {
		return err
	}
	copy(m.inputs, x)
	return nil
}

// ForwardPropagation fills the per-pair pre-activations and records the
// winner of every output column. Ties go to the lowest input index.
func (m *Maxout) ForwardPropagation() {
	pre := m.pre.RawMatrix()
	w := m.weights.RawMatrix().Data
	b := m.biases.RawMatrix().Data
	parallel.For(m.outSize, func(j int) {
		best := 0
		for i, x := range m.inputs {
			k := i*pre.Stride + j
			pre.Data[k] = w[k]*x + b[k]
			if pre.Data[k] > pre.Data[best*pre.Stride+j] {
				best = i
			}
		}
		m.winners[j] = best
	}, fanout())
}

// Outputs returns the column maxima.
func (m *Maxout) Outputs() []float64 {
	out := make([]float64, m.outSize)
	for j, i := range m.winners {
		out[j] = m.pre.At(i, j)
	}
	return out
}

// PredictOutputs equals Outputs.
func (m *Maxout) PredictOutputs() []float64 {
	return m.Outputs()
}

// BackPropagation routes next[j] to the winning pair of column j and returns
// the per-input sum of w[i,j]·δ[i,j].
func (m *Maxout) BackPropagation(next []float64) []float64 {
	delta := m.checkDelta(next)
	dw := m.dw.RawMatrix()
	db := m.db.RawMatrix().Data
	parallel.For(m.outSize, func(j int) {
		i := m.winners[j]
		k := i*dw.Stride + j
		dw.Data[k] += delta[j] * m.inputs[i]
		db[k] += delta[j]
	}, fanout())

	// Several outputs may share a winning input; reduce sequentially.
	signal := make([]float64, m.inSize)
	for j, i := range m.winners {
		signal[i] += m.weights.At(i, j) * delta[j]
	}
	return signal
}

// WeightUpdate applies the accumulated gradients and clears them.
func (m *Maxout) WeightUpdate(eta, mu, lambda float64) {
	cfg := optim.SGDConfig{LR: eta, Momentum: mu, WeightDecay: lambda}
	optim.StepDense(m.weights, m.dw, m.prevDW, cfg)
	optim.StepDense(m.biases, m.db, m.prevDB, cfg.WithoutDecay())
}

// GenerateWeights redraws every weight from [lower, upper).
func (m *Maxout) GenerateWeights(lower, upper float64) {
	Uniform(m.weights.RawMatrix().Data, lower, upper)
}

// Weights returns W row-major ([in x out]).
func (m *Maxout) Weights() []float64 {
	return append([]float64(nil), m.weights.RawMatrix().Data...)
}

// SetWeights replaces W from a row-major [in x out] slice.
func (m *Maxout) SetWeights(w []float64) error {
	if err := checkLen(&m.base, "weights", m.inSize*m.outSize, w); err != nil {
		return err
	}
	copy(m.weights.RawMatrix().Data, w)
	return nil
}

// Biases returns the per-pair biases row-major ([in x out]).
func (m *Maxout) Biases() []float64 {
	return append([]float64(nil), m.biases.RawMatrix().Data...)
}

// SetBiases replaces the per-pair biases from a row-major [in x out] slice.
func (m *Maxout) SetBiases(b []float64) error {
	if err := checkLen(&m.base, "biases", m.inSize*m.outSize, b); err != nil {
		return err
	}
	copy(m.biases.RawMatrix().Data, b)
	return nil
}

// ParameterShapes returns [in out] for both weights and biases.
func (m *Maxout) ParameterShapes() (weights, biases []int) {
	return []int{m.inSize, m.outSize}, []int{m.inSize, m.outSize}
}

// Summary describes the layer geometry.
func (m *Maxout) Summary() string {
	return fmt.Sprintf("Inputs:%d, Outputs:%d, Weights:%dx%d, Biases:%dx%d",
		m.inSize, m.outSize, m.inSize, m.outSize, m.inSize, m.outSize)
}
