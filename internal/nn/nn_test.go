package nn

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
)

const gradTol = 1e-6

func randSlice(rng *rand.Rand, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = rng.Float64()*2 - 1
	}
	return s
}

// objective evaluates Σ c·Outputs(x) with the layer's current parameters.
func objective(t *testing.T, l Layer, x, c []float64) float64 {
	t.Helper()
	require.NoError(t, l.SetInputs(x))
	l.ForwardPropagation()
	return floats.Dot(c, l.Outputs())
}

type gradients struct {
	weights, biases, inputs []float64
}

var central = &fd.Settings{Formula: fd.Central, Step: 1e-6}

// numericGradients estimates the gradients of Σ c·Outputs(x) by central
// differences. Layer parameters are restored on return.
func numericGradients(t *testing.T, l Layer, x, c []float64) gradients {
	t.Helper()
	w0, b0 := l.Weights(), l.Biases()
	var g gradients
	if len(w0) > 0 {
		g.weights = fd.Gradient(nil, func(w []float64) float64 {
			require.NoError(t, l.SetWeights(w))
			return objective(t, l, x, c)
		}, w0, central)
		require.NoError(t, l.SetWeights(w0))
	}
	if len(b0) > 0 {
		g.biases = fd.Gradient(nil, func(b []float64) float64 {
			require.NoError(t, l.SetBiases(b))
			return objective(t, l, x, c)
		}, b0, central)
		require.NoError(t, l.SetBiases(b0))
	}
	g.inputs = fd.Gradient(nil, func(in []float64) float64 {
		return objective(t, l, in, c)
	}, x, central)
	return g
}

// analyticGradients runs one backward pass with upstream signal c and reads
// the accumulated gradients back through a plain gradient step
// (eta = 1, mu = lambda = 0). Layer parameters are restored on return.
func analyticGradients(t *testing.T, l Layer, x, c []float64) gradients {
	t.Helper()
	require.NoError(t, l.SetInputs(x))
	l.ForwardPropagation()
	signal := l.BackPropagation(c)

	w0, b0 := l.Weights(), l.Biases()
	l.WeightUpdate(1, 0, 0)
	g := gradients{inputs: signal}
	if w0 != nil {
		g.weights = floats.SubTo(make([]float64, len(w0)), w0, l.Weights())
		require.NoError(t, l.SetWeights(w0))
	}
	if b0 != nil {
		g.biases = floats.SubTo(make([]float64, len(b0)), b0, l.Biases())
		require.NoError(t, l.SetBiases(b0))
	}
	return g
}

func TestGradientCheck(t *testing.T) {
	tests := []struct {
		name  string
		layer func() Layer
	}{
		{"FullyConnected/Sigmoid", func() Layer { return NewFullyConnected(5, 4, Sigmoid) }},
		{"FullyConnected/Tanh", func() Layer { return NewFullyConnected(3, 6, Tanh) }},
		{"FullyConnected/Identity", func() Layer { return NewFullyConnected(4, 2, Identity) }},
		{"Convolutional", func() Layer {
			return NewConvolutional(ConvolutionalConfig{
				InHeight: 5, InWidth: 6, InDepth: 2, KernelSize: 3, OutDepth: 3, Activation: Tanh,
			})
		}},
		{"Convolutional/StridePadding", func() Layer {
			return NewConvolutional(ConvolutionalConfig{
				InHeight: 6, InWidth: 6, InDepth: 2, KernelSize: 3, OutDepth: 2,
				Stride: 2, Padding: 1, Activation: Sigmoid,
			})
		}},
		{"Convolutional/ConnectionTable", func() Layer {
			return NewConvolutional(ConvolutionalConfig{
				InHeight: 4, InWidth: 4, InDepth: 2, KernelSize: 2, OutDepth: 3,
				ConnectionTable: []int{1, 0, 1, 0, 1, 1},
			})
		}},
		{"Pooling/Max", func() Layer {
			return NewPooling(PoolingConfig{InHeight: 4, InWidth: 6, InDepth: 2})
		}},
		{"Pooling/AverageOverlapping", func() Layer {
			return NewPooling(PoolingConfig{InHeight: 5, InWidth: 5, InDepth: 2, Size: 3, Stride: 1, Func: AveragePooling})
		}},
		{"ElementWise/Max", func() Layer {
			return NewElementWise(ElementWiseConfig{InHeight: 3, InWidth: 2, InDepth: 4})
		}},
		{"ElementWise/AverageOverlapping", func() Layer {
			return NewElementWise(ElementWiseConfig{InHeight: 2, InWidth: 3, InDepth: 5, Size: 3, Stride: 1, Func: ElementAverage})
		}},
		{"DropOut", func() Layer { return NewDropOut(5, 6, Tanh, 0.5) }},
		{"DropConnect", func() Layer { return NewDropConnect(5, 4, Sigmoid, 0.4) }},
		{"Maxout", func() Layer { return NewMaxout(4, 3) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewPCG(7, 11))
			l := tt.layer()
			// Non-zero biases exercise the bias path of the forward pass.
			if b := l.Biases(); b != nil {
				require.NoError(t, l.SetBiases(randSlice(rng, len(b))))
			}
			x := randSlice(rng, l.InputSize())
			c := randSlice(rng, l.OutputSize())

			num := numericGradients(t, l, x, c)
			ana := analyticGradients(t, l, x, c)

			require.Len(t, ana.inputs, l.InputSize())
			assert.InDeltaSlice(t, num.inputs, ana.inputs, gradTol, "input signal")
			assert.InDeltaSlice(t, num.weights, ana.weights, gradTol, "weight gradient")
			assert.InDeltaSlice(t, num.biases, ana.biases, gradTol, "bias gradient")
		})
	}
}

// TestLayerShapes checks the output and signal lengths of every variant.
func TestLayerShapes(t *testing.T) {
	layers := []Layer{
		NewFullyConnected(7, 3, ReLU),
		NewConvolutional(ConvolutionalConfig{InHeight: 28, InWidth: 28, InDepth: 1, KernelSize: 5, OutDepth: 6, Padding: 2}),
		NewPooling(PoolingConfig{InHeight: 28, InWidth: 28, InDepth: 6}),
		NewElementWise(ElementWiseConfig{InHeight: 14, InWidth: 14, InDepth: 6}),
		NewDropOut(10, 4, Sigmoid, 0.3),
		NewDropConnect(10, 4, Sigmoid, 0.3),
		NewSoftmax(6, 10),
		NewMaxout(6, 2),
	}
	rng := rand.New(rand.NewPCG(1, 2))
	for _, l := range layers {
		t.Run(l.Type(), func(t *testing.T) {
			require.NoError(t, l.SetInputs(randSlice(rng, l.InputSize())))
			l.ForwardPropagation()
			assert.Len(t, l.Outputs(), l.OutputSize())
			assert.Len(t, l.PredictOutputs(), l.OutputSize())
			assert.Len(t, l.BackPropagation(randSlice(rng, l.OutputSize())), l.InputSize())
			assert.True(t, l.CheckSize(l.InputSize()))
			assert.False(t, l.CheckSize(l.InputSize()+1))
			assert.NotEmpty(t, l.Summary())
		})
	}
}

func TestSetInputs_ShapeError(t *testing.T) {
	l := NewFullyConnected(3, 2, Identity, Named("hidden"))

	err := l.SetInputs([]float64{1, 2})
	require.ErrorIs(t, err, ErrShape)
	var se *ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "hidden", se.Layer)
	assert.Equal(t, "inputs", se.Field)
	assert.Equal(t, 3, se.Want)
	assert.Equal(t, 2, se.Got)
	assert.Equal(t, "hidden: inputs has 2 elements, want 3", err.Error())

	assert.ErrorIs(t, l.SetWeights(make([]float64, 5)), ErrShape)
	assert.ErrorIs(t, l.SetBiases(make([]float64, 3)), ErrShape)
}

func TestBackPropagation_WrongLengthPanics(t *testing.T) {
	l := NewFullyConnected(3, 2, Identity)
	require.NoError(t, l.SetInputs([]float64{1, 2, 3}))
	l.ForwardPropagation()
	assert.Panics(t, func() { l.BackPropagation([]float64{1}) })
}

// TestBackPropagation_NoAliasing checks that the upstream slice is left
// untouched and the returned signal is a fresh slice.
func TestBackPropagation_NoAliasing(t *testing.T) {
	l := NewFullyConnected(2, 2, Sigmoid)
	require.NoError(t, l.SetInputs([]float64{0.3, -0.2}))
	l.ForwardPropagation()
	next := []float64{1, 1}
	signal := l.BackPropagation(next)
	assert.Equal(t, []float64{1, 1}, next)
	signal[0] = 42
	assert.Equal(t, []float64{1, 1}, next)
}

func TestWeightless(t *testing.T) {
	p := NewPooling(PoolingConfig{InHeight: 2, InWidth: 2, InDepth: 1})
	assert.Nil(t, p.Weights())
	assert.Nil(t, p.Biases())
	w, b := p.ParameterShapes()
	assert.Nil(t, w)
	assert.Nil(t, b)
	assert.NoError(t, p.SetWeights(nil))
	assert.ErrorIs(t, p.SetBiases([]float64{1}), ErrShape)
	assert.Equal(t, 2, p.Stride())
}

func TestIdentity(t *testing.T) {
	fc := NewFullyConnected(2, 2, Tanh, Named("fc1"))
	assert.Equal(t, "fc1", fc.Name())
	assert.Equal(t, TypeFullyConnected, fc.Type())
	assert.Equal(t, "Tanh", fc.Variant())
	assert.Equal(t, -1, fc.Stride())
	assert.Equal(t, "Inputs:2, Outputs:2, Weights:2x2, Biases:2", fc.Summary())
}
