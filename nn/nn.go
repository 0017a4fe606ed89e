// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"log/slog"

	"github.com/born-ml/convnet/internal/nn"
	"github.com/born-ml/convnet/internal/parallel"
)

// Layer is the forward/backward/update contract shared by every layer.
type Layer = nn.Layer

// Option configures a layer at construction.
type Option = nn.Option

// Named sets the layer name used in consistency warnings and parameter
// file names.
func Named(name string) Option { return nn.Named(name) }

// Layer type tags reported by Layer.Type.
const (
	TypeFullyConnected = nn.TypeFullyConnected
	TypeConvolutional  = nn.TypeConvolutional
	TypePooling        = nn.TypePooling
	TypeElementWise    = nn.TypeElementWise
	TypeDropOut        = nn.TypeDropOut
	TypeDropConnect    = nn.TypeDropConnect
	TypeSoftmax        = nn.TypeSoftmax
	TypeMaxout         = nn.TypeMaxout
)

// Errors

// ErrShape is matched by every ShapeError.
var ErrShape = nn.ErrShape

// ShapeError reports a vector whose length does not fit a layer.
type ShapeError = nn.ShapeError

// Strategies

// Activation is an element-wise nonlinearity and its derivative.
type Activation = nn.Activation

// Activation functions.
var (
	Identity = nn.Identity
	Sigmoid  = nn.Sigmoid
	Tanh     = nn.Tanh
	ReLU     = nn.ReLU
)

// ActivationByName looks up an activation by its Type tag.
func ActivationByName(name string) (Activation, error) { return nn.ActivationByName(name) }

// Loss is a per-component loss and its derivative.
type Loss = nn.Loss

// Loss functions.
var (
	MSE                    = nn.MSE
	MultiClassCrossEntropy = nn.MultiClassCrossEntropy
	BinaryCrossEntropy     = nn.BinaryCrossEntropy
)

// LossByName looks up a loss by its Type tag.
func LossByName(name string) (Loss, error) { return nn.LossByName(name) }

// PoolingFunc reduces a window to one value.
type PoolingFunc = nn.PoolingFunc

// Pooling functions.
var (
	MaxPooling     = nn.MaxPooling
	AveragePooling = nn.AveragePooling
)

// ElementWiseFunc merges a group of channel values at one pixel.
type ElementWiseFunc = nn.ElementWiseFunc

// Element-wise merge functions.
var (
	ElementMax     = nn.ElementMax
	ElementAverage = nn.ElementAverage
)

// Layers

// FullyConnected is a dense layer.
type FullyConnected = nn.FullyConnected

// NewFullyConnected creates a dense layer.
//
// Example:
//
//	fc := nn.NewFullyConnected(120, 84, nn.Tanh)
func NewFullyConnected(in, out int, act Activation, opts ...Option) *FullyConnected {
	return nn.NewFullyConnected(in, out, act, opts...)
}

// DropOut is a dense layer that silences random output units while training.
type DropOut = nn.DropOut

// NewDropOut creates a drop-out layer. prob is the probability of dropping
// a unit.
func NewDropOut(in, out int, act Activation, prob float64, opts ...Option) *DropOut {
	return nn.NewDropOut(in, out, act, prob, opts...)
}

// DropConnect is a dense layer that silences random weights while training.
type DropConnect = nn.DropConnect

// NewDropConnect creates a drop-connect layer. prob is the probability of
// dropping a weight.
func NewDropConnect(in, out int, act Activation, prob float64, opts ...Option) *DropConnect {
	return nn.NewDropConnect(in, out, act, prob, opts...)
}

// Softmax is a dense layer followed by a normalized exponential.
type Softmax = nn.Softmax

// NewSoftmax creates a softmax output layer.
func NewSoftmax(in, out int, opts ...Option) *Softmax {
	return nn.NewSoftmax(in, out, opts...)
}

// Maxout outputs, per unit, the largest of its weighted inputs.
type Maxout = nn.Maxout

// NewMaxout creates a Maxout layer.
func NewMaxout(in, out int, opts ...Option) *Maxout {
	return nn.NewMaxout(in, out, opts...)
}

// ConvolutionalConfig describes a convolutional layer.
type ConvolutionalConfig = nn.ConvolutionalConfig

// Convolutional is a 2D convolution over a depth-stacked volume.
type Convolutional = nn.Convolutional

// NewConvolutional creates a convolutional layer.
//
// Example:
//
//	conv := nn.NewConvolutional(nn.ConvolutionalConfig{
//	    InHeight: 32, InWidth: 32, InDepth: 1, KernelSize: 5, OutDepth: 6,
//	})
func NewConvolutional(cfg ConvolutionalConfig, opts ...Option) *Convolutional {
	return nn.NewConvolutional(cfg, opts...)
}

// PoolingConfig describes a pooling layer.
type PoolingConfig = nn.PoolingConfig

// Pooling downsamples every channel independently.
type Pooling = nn.Pooling

// NewPooling creates a pooling layer.
func NewPooling(cfg PoolingConfig, opts ...Option) *Pooling {
	return nn.NewPooling(cfg, opts...)
}

// ElementWiseConfig describes an element-wise merge layer.
type ElementWiseConfig = nn.ElementWiseConfig

// ElementWise merges groups of channels.
type ElementWise = nn.ElementWise

// NewElementWise creates an element-wise merge layer.
func NewElementWise(cfg ElementWiseConfig, opts ...Option) *ElementWise {
	return nn.NewElementWise(cfg, opts...)
}

// Initialization

// Uniform fills dst with draws from U(lower, upper).
func Uniform(dst []float64, lower, upper float64) { nn.Uniform(dst, lower, upper) }

// Runtime settings

// SetLogger sets the logger for configuration warnings. A nil logger
// restores slog.Default().
func SetLogger(l *slog.Logger) { nn.SetLogger(l) }

// ParallelConfig controls the per-channel fan-out inside layers.
type ParallelConfig = parallel.Config

// DefaultParallelism returns a config sized to the CPU count.
func DefaultParallelism() ParallelConfig { return parallel.DefaultConfig() }

// SetParallelism sets the fan-out used by all layers. Use
// ParallelConfig{} to run every layer on the calling goroutine.
func SetParallelism(cfg ParallelConfig) { nn.SetParallelism(cfg) }
