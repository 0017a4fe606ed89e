package nn

import (
	"fmt"
	"math"
)

// Activation is a scalar function applied element-wise to a layer's
// pre-activation state.
//
// Df takes the pre-activation value x, not the activated output.
//
// Example:
//
//	fc := nn.NewFullyConnected(784, 100, nn.Sigmoid)
type Activation struct {
	F    func(x float64) float64
	Df   func(x float64) float64
	Name string
}

// Type returns the activation name reported as the layer variant.
func (a Activation) Type() string { return a.Name }

// apply maps F over x into a new slice.
func (a Activation) apply(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = a.F(v)
	}
	return out
}

// Identity passes values through unchanged: f(x) = x.
var Identity = Activation{
	F:    func(x float64) float64 { return x },
	Df:   func(float64) float64 { return 1 },
	Name: "Identity",
}

// Sigmoid squashes values to (0, 1): σ(x) = 1 / (1 + exp(-x)).
var Sigmoid = Activation{
	F:    sigmoid,
	Df:   func(x float64) float64 { s := sigmoid(x); return s * (1 - s) },
	Name: "Sigmoid",
}

// Tanh squashes values to (-1, 1).
var Tanh = Activation{
	F:    math.Tanh,
	Df:   func(x float64) float64 { t := math.Tanh(x); return 1 - t*t },
	Name: "Tanh",
}

// ReLU is the rectified linear unit: f(x) = max(0, x).
// The derivative at 0 is taken as 0.
var ReLU = Activation{
	F: func(x float64) float64 { return math.Max(0, x) },
	Df: func(x float64) float64 {
		if x > 0 {
			return 1
		}
		return 0
	},
	Name: "ReLU",
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// ActivationByName looks up a built-in activation by its Type string.
func ActivationByName(name string) (Activation, error) {
	for _, a := range []Activation{Identity, Sigmoid, Tanh, ReLU} {
		if a.Name == name {
			return a, nil
		}
	}
	return Activation{}, fmt.Errorf("nn: unknown activation %q", name)
}
