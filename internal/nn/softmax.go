package nn

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// softmaxFloor is the smallest exponential kept before normalization.
const softmaxFloor = 1e-10

// Softmax is a fully-connected output layer normalized into a probability
// distribution.
//
// BackPropagation applies only the diagonal of the softmax Jacobian,
// δ_j = next_j·y_j·(1-y_j). Paired with MultiClassCrossEntropy, whose
// derivative is y-t, this trains towards the targets; the exact cross-unit
// coupling of the Jacobian is not modelled, so other losses get a wrong
// gradient.
type Softmax struct {
	dense
	out []float64
}

// NewSoftmax creates a softmax output layer with weights drawn uniformly from
// ±1/in and zero biases.
func NewSoftmax(in, out int, opts ...Option) *Softmax {
	return &Softmax{
		dense: newDense(TypeSoftmax, in, out, Identity, "Softmax", opts),
		out:   make([]float64, out),
	}
}

// ForwardPropagation computes the logits and their normalized exponentials.
func (s *Softmax) ForwardPropagation() {
	s.pre = affine(s.weights, s.inputs, s.biases)
	s.out = softmax(s.pre)
}

// softmax returns exp(z - max z), floored at softmaxFloor, divided by its sum.
// It never returns a zero or NaN entry for finite input.
func softmax(z []float64) []float64 {
	out := make([]float64, len(z))
	peak := floats.Max(z)
	for i, v := range z {
		out[i] = math.Max(math.Exp(v-peak), softmaxFloor)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}

// Outputs returns the class probabilities.
func (s *Softmax) Outputs() []float64 {
	return append([]float64(nil), s.out...)
}

// PredictOutputs equals Outputs.
func (s *Softmax) PredictOutputs() []float64 {
	return s.Outputs()
}

// BackPropagation accumulates gradients using δ_j = next_j·y_j·(1-y_j).
func (s *Softmax) BackPropagation(next []float64) []float64 {
	delta := s.checkDelta(next)
	for j, y := range s.out {
		delta[j] *= y * (1 - y)
	}
	s.accumulate(delta, nil)
	return propagate(s.weights, delta)
}
