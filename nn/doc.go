// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers of a feed-forward convolutional network.
//
// # Overview
//
// This package contains:
//   - Layers: FullyConnected, Convolutional, Pooling, ElementWise
//   - Stochastic layers: DropOut, DropConnect
//   - Output and merge layers: Softmax, Maxout
//   - Activations: Identity, Sigmoid, Tanh, ReLU
//   - Loss functions: MSE, MultiClassCrossEntropy, BinaryCrossEntropy
//   - Pooling functions: MaxPooling, AveragePooling
//   - Element-wise merges: ElementMax, ElementAverage
//
// Layers exchange activations and error signals as flat []float64 slices.
// Spatial data is ordered depth-major, then row-major within a channel.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/convnet/network"
//	    "github.com/born-ml/convnet/nn"
//	)
//
//	func main() {
//	    net := network.New(nn.MultiClassCrossEntropy,
//	        nn.NewConvolutional(nn.ConvolutionalConfig{
//	            InHeight: 28, InWidth: 28, InDepth: 1,
//	            KernelSize: 5, OutDepth: 6, Padding: 2,
//	            Activation: nn.Tanh,
//	        }),
//	        nn.NewPooling(nn.PoolingConfig{InHeight: 28, InWidth: 28, InDepth: 6}),
//	        nn.NewFullyConnected(14*14*6, 10, nn.Tanh),
//	        nn.NewSoftmax(10, 10),
//	    )
//	    y, err := net.Prediction(x)
//	}
//
// # Layers
//
// Convolutional: kernels slide over zero-padded input maps. A connection
// table restricts which input channels feed which output channels.
//
//	conv := nn.NewConvolutional(nn.ConvolutionalConfig{
//	    InHeight: 14, InWidth: 14, InDepth: 6, KernelSize: 5, OutDepth: 16,
//	    ConnectionTable: table, // len 6*16, index id*16+od, 0 disconnects
//	})
//
// Pooling: max or average over non-overlapping or strided windows
//
//	pool := nn.NewPooling(nn.PoolingConfig{
//	    InHeight: 28, InWidth: 28, InDepth: 6, Func: nn.AveragePooling,
//	})
//
// ElementWise: merges groups of adjacent channels pixel by pixel
//
//	merge := nn.NewElementWise(nn.ElementWiseConfig{InHeight: 5, InWidth: 5, InDepth: 16})
//
// DropOut and DropConnect: randomly silence units or weights while training;
// inference scales outputs by the keep probability.
//
//	drop := nn.NewDropOut(400, 120, nn.ReLU, 0.5)
//
// # Logging
//
// Recovered configuration problems, such as a drop probability outside
// [0, 1], are logged at Warn through the logger set with SetLogger.
package nn
