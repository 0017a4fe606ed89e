// Package nn implements the layers of a feed-forward convolutional network
// trained by back-propagation.
//
// This package provides:
//   - Layer interface: the forward/backward/update contract every layer meets
//   - FullyConnected, Convolutional, Pooling, ElementWise layers
//   - DropOut and DropConnect stochastic layers
//   - Softmax output layer and Maxout (fully-connected form)
//   - Strategies: activations, pooling functions, element-wise merges, losses
//
// Every layer exchanges activations and error signals as flat []float64
// slices ordered depth-major, then row-major within a channel. Spatial layers
// convert to per-channel gonum matrices internally.
package nn

import "fmt"

// Layer type tags reported by Layer.Type.
const (
	TypeFullyConnected = "FullyConnectedLayer"
	TypeConvolutional  = "ConvolutionalLayer"
	TypePooling        = "PoolingLayer"
	TypeElementWise    = "ElementWiseLayer"
	TypeDropOut        = "DropOutLayer"
	TypeDropConnect    = "DropConnectLayer"
	TypeSoftmax        = "SoftmaxLayer"
	TypeMaxout         = "MaxoutLayer"
)

// Layer is the unit of computation chained by a network.
//
// A training step for one sample is SetInputs, ForwardPropagation, Outputs,
// then BackPropagation with the signal from the next layer. Gradients keep
// accumulating across calls until WeightUpdate consumes and clears them.
type Layer interface {
	// Name returns the user-given name, possibly empty.
	Name() string
	// Type returns the layer type tag (TypeFullyConnected, ...).
	Type() string
	// Variant returns the active strategy name (activation, pooling or
	// element-wise function). Used for introspection only.
	Variant() string

	// InputSize, OutputSize and Stride return -1 when not applicable.
	InputSize() int
	OutputSize() int
	Stride() int
	// CheckSize reports whether prevOutputSize matches InputSize.
	CheckSize(prevOutputSize int) bool

	// SetInputs copies x into the layer, applying any padding.
	// Returns a *ShapeError if len(x) != InputSize().
	SetInputs(x []float64) error
	// ForwardPropagation recomputes the pre-activation state from the
	// current inputs and parameters.
	ForwardPropagation()
	// Outputs returns the training-time output (stochastic masks applied).
	Outputs() []float64
	// PredictOutputs returns the inference-time output.
	PredictOutputs() []float64
	// BackPropagation consumes the upstream signal (len OutputSize),
	// accumulates parameter gradients and returns a fresh signal of
	// len InputSize for the previous layer. Panics on a wrong length.
	BackPropagation(nextDelta []float64) []float64
	// WeightUpdate applies the accumulated gradients with learning rate
	// eta, momentum mu and weight decay lambda, then clears them.
	WeightUpdate(eta, mu, lambda float64)
	// GenerateWeights re-draws every weight uniformly from [lower, upper).
	GenerateWeights(lower, upper float64)

	// Weights and Biases return flat copies; nil for weightless layers.
	Weights() []float64
	SetWeights(w []float64) error
	Biases() []float64
	SetBiases(b []float64) error
	// ParameterShapes returns the interchange dimensions of the weights and
	// biases, nil for weightless layers.
	ParameterShapes() (weights, biases []int)

	// Summary is a one-line description of the layer geometry.
	Summary() string
}

// Option configures the identity of a layer.
type Option func(*base)

// Named sets the layer name used in logs, reports and file names.
func Named(name string) Option {
	return func(b *base) { b.name = name }
}

// base carries identity and shape parameters shared by all variants.
type base struct {
	name    string
	kind    string
	variant string
	inSize  int
	outSize int
	stride  int
}

func newBase(kind, variant string, opts []Option) base {
	b := base{kind: kind, variant: variant, inSize: -1, outSize: -1, stride: -1}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) Name() string    { return b.name }
func (b *base) Type() string    { return b.kind }
func (b *base) Variant() string { return b.variant }
func (b *base) InputSize() int  { return b.inSize }
func (b *base) OutputSize() int { return b.outSize }
func (b *base) Stride() int     { return b.stride }

func (b *base) CheckSize(prevOutputSize int) bool {
	return prevOutputSize == b.inSize
}

// label names the layer in error messages.
func (b *base) label() string {
	if b.name != "" {
		return b.name
	}
	return b.kind
}

// checkDelta validates an upstream signal and returns a private copy.
func (b *base) checkDelta(next []float64) []float64 {
	if len(next) != b.outSize {
		panic(fmt.Sprintf("%s.BackPropagation: got %d deltas, want %d", b.label(), len(next), b.outSize))
	}
	return append([]float64(nil), next...)
}

// weightless implements the parameter accessors of layers without
// parameters. Only empty assignments are accepted.
type weightless struct {
	base
}

func (w *weightless) WeightUpdate(_, _, _ float64)             {}
func (w *weightless) GenerateWeights(_, _ float64)             {}
func (w *weightless) Weights() []float64                       { return nil }
func (w *weightless) Biases() []float64                        { return nil }
func (w *weightless) ParameterShapes() (weights, biases []int) { return nil, nil }

func (w *weightless) SetWeights(v []float64) error {
	return checkLen(&w.base, "weights", 0, v)
}

func (w *weightless) SetBiases(v []float64) error {
	return checkLen(&w.base, "biases", 0, v)
}

var (
	_ Layer = (*FullyConnected)(nil)
	_ Layer = (*Convolutional)(nil)
	_ Layer = (*Pooling)(nil)
	_ Layer = (*ElementWise)(nil)
	_ Layer = (*DropOut)(nil)
	_ Layer = (*DropConnect)(nil)
	_ Layer = (*Softmax)(nil)
	_ Layer = (*Maxout)(nil)
)
