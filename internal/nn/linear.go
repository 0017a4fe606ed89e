package nn

import (
	"fmt"

	"github.com/born-ml/convnet/internal/optim"
	"github.com/born-ml/convnet/internal/parallel"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// dense is the affine core shared by FullyConnected, DropOut, DropConnect and
// Softmax: pre = Wᵗ·x + b with W shaped [in x out].
type dense struct {
	base
	act Activation

	inputs []float64 // [in]
	pre    []float64 // [out] pre-activation

	weights *mat.Dense // [in x out]
	biases  []float64  // [out]

	dw, prevDW *mat.Dense
	db, prevDB []float64
}

func newDense(kind string, in, out int, act Activation, variant string, opts []Option) dense {
	if in <= 0 || out <= 0 {
		panic(fmt.Sprintf("%s: invalid size in=%d, out=%d", kind, in, out))
	}
	d := dense{
		base:    newBase(kind, variant, opts),
		act:     act,
		inputs:  make([]float64, in),
		pre:     make([]float64, out),
		weights: mat.NewDense(in, out, nil),
		biases:  make([]float64, out),
		dw:      mat.NewDense(in, out, nil),
		prevDW:  mat.NewDense(in, out, nil),
		db:      make([]float64, out),
		prevDB:  make([]float64, out),
	}
	d.inSize, d.outSize = in, out
	bound := fcBound(in)
	d.GenerateWeights(-bound, bound)
	return d
}

// SetInputs copies x into the layer.
func (d *dense) SetInputs(x []float64) error {
	if err := checkLen(&d.base, "inputs", d.inSize, x); err != nil {
		return err
	}
	copy(d.inputs, x)
	return nil
}

// affine returns wᵗ·x + b for w shaped [len(x) x len(b)].
func affine(w mat.Matrix, x, b []float64) []float64 {
	out := mat.NewVecDense(len(b), nil)
	out.MulVec(w.T(), mat.NewVecDense(len(x), x))
	pre := out.RawVector().Data
	floats.Add(pre, b)
	return pre
}

// localDelta returns δ_j = next_j·φ'(pre_j). Units with keep[j] == false get
// zero; a nil keep keeps every unit.
func (d *dense) localDelta(next []float64, keep []bool) []float64 {
	delta := d.checkDelta(next)
	for j := range delta {
		if keep != nil && !keep[j] {
			delta[j] = 0
			continue
		}
		delta[j] *= d.act.Df(d.pre[j])
	}
	return delta
}

// accumulate adds δ into the bias gradient and x⊗δ into the weight gradient,
// one job per output unit. A non-nil mask gates each connection.
func (d *dense) accumulate(delta []float64, mask *mat.Dense) {
	dw := d.dw.RawMatrix()
	var m []float64
	if mask != nil {
		m = mask.RawMatrix().Data
	}
	parallel.For(d.outSize, func(j int) {
		dj := delta[j]
		if dj == 0 {
			return
		}
		d.db[j] += dj
		for i, x := range d.inputs {
			k := i*dw.Stride + j
			if m != nil {
				dw.Data[k] += dj * x * m[k]
				continue
			}
			dw.Data[k] += dj * x
		}
	}, fanout())
}

// propagate returns w·δ, the signal for the previous layer.
func propagate(w mat.Matrix, delta []float64) []float64 {
	rows, _ := w.Dims()
	out := mat.NewVecDense(rows, nil)
	out.MulVec(w, mat.NewVecDense(len(delta), delta))
	return out.RawVector().Data
}

// WeightUpdate applies the accumulated gradients and clears them.
func (d *dense) WeightUpdate(eta, mu, lambda float64) {
	cfg := optim.SGDConfig{LR: eta, Momentum: mu, WeightDecay: lambda}
	optim.StepDense(d.weights, d.dw, d.prevDW, cfg)
	optim.Step(d.biases, d.db, d.prevDB, cfg.WithoutDecay())
}

// GenerateWeights redraws every weight from [lower, upper).
func (d *dense) GenerateWeights(lower, upper float64) {
	Uniform(d.weights.RawMatrix().Data, lower, upper)
}

// Weights returns W row-major ([in x out]).
func (d *dense) Weights() []float64 {
	return append([]float64(nil), d.weights.RawMatrix().Data...)
}

// SetWeights replaces W from a row-major [in x out] slice.
func (d *dense) SetWeights(w []float64) error {
	if err := checkLen(&d.base, "weights", d.inSize*d.outSize, w); err != nil {
		return err
	}
	copy(d.weights.RawMatrix().Data, w)
	return nil
}

// Biases returns a copy of the bias vector.
func (d *dense) Biases() []float64 {
	return append([]float64(nil), d.biases...)
}

// SetBiases replaces the bias vector.
func (d *dense) SetBiases(b []float64) error {
	if err := checkLen(&d.base, "biases", d.outSize, b); err != nil {
		return err
	}
	copy(d.biases, b)
	return nil
}

// ParameterShapes returns [in out] and [out].
func (d *dense) ParameterShapes() (weights, biases []int) {
	return []int{d.inSize, d.outSize}, []int{d.outSize}
}

// Summary describes the layer geometry.
func (d *dense) Summary() string {
	return fmt.Sprintf("Inputs:%d, Outputs:%d, Weights:%dx%d, Biases:%d",
		d.inSize, d.outSize, d.inSize, d.outSize, d.outSize)
}

// FullyConnected is a dense layer: y = φ(Wᵗ·x + b).
//
// Example:
//
//	fc := nn.NewFullyConnected(100, 10, nn.Sigmoid, nn.Named("hidden"))
type FullyConnected struct {
	dense
}

// NewFullyConnected creates a dense layer with weights drawn uniformly from
// ±1/in and zero biases. Panics if in or out is not positive.
func NewFullyConnected(in, out int, act Activation, opts ...Option) *FullyConnected {
	return &FullyConnected{dense: newDense(TypeFullyConnected, in, out, act, act.Type(), opts)}
}

// ForwardPropagation computes the pre-activation state.
func (f *FullyConnected) ForwardPropagation() {
	f.pre = affine(f.weights, f.inputs, f.biases)
}

// Outputs returns φ(pre).
func (f *FullyConnected) Outputs() []float64 {
	return f.act.apply(f.pre)
}

// PredictOutputs equals Outputs.
func (f *FullyConnected) PredictOutputs() []float64 {
	return f.Outputs()
}

// BackPropagation accumulates gradients and returns W·δ.
func (f *FullyConnected) BackPropagation(next []float64) []float64 {
	delta := f.localDelta(next, nil)
	f.accumulate(delta, nil)
	return propagate(f.weights, delta)
}
