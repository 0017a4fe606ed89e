// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package network chains layers into a feed-forward network, trains it by
// back-propagation and saves its parameters.
//
// Example:
//
//	net := network.New(nn.MSE,
//	    nn.NewFullyConnected(2, 3, nn.Tanh),
//	    nn.NewFullyConnected(3, 1, nn.Sigmoid),
//	)
//	cfg := network.TrainConfig{BatchSize: 1, Epochs: 2000, LearningRate: 0.1}
//	if err := net.Train(inputs, targets, cfg); err != nil {
//	    log.Fatal(err)
//	}
//	if err := network.Save("params", "xor", net); err != nil {
//	    log.Fatal(err)
//	}
package network

import (
	"github.com/born-ml/convnet/internal/network"
	"github.com/born-ml/convnet/internal/nn"
	"github.com/born-ml/convnet/internal/serialization"
)

// Network is an ordered chain of layers with a loss function.
type Network = network.Network

// New creates a network with the given loss and layers.
func New(loss nn.Loss, layers ...nn.Layer) *Network {
	return network.New(loss, layers...)
}

// TrainConfig holds the hyperparameters of one Train call.
type TrainConfig = network.TrainConfig

// DefaultTrainConfig returns mini-batches of 20 over 10000 epochs at a base
// learning rate of 0.05.
func DefaultTrainConfig() TrainConfig { return network.DefaultTrainConfig() }

// ConsistencyWarning reports adjacent layers whose sizes disagree.
type ConsistencyWarning = network.ConsistencyWarning

// Errors returned by Train, Evaluate and Accuracy.
var (
	ErrNoLayers        = network.ErrNoLayers
	ErrEmptyDataset    = network.ErrEmptyDataset
	ErrDatasetMismatch = network.ErrDatasetMismatch
)

// Save writes <prefix>_weight_<name>.txt and <prefix>_biase_<name>.txt into
// dir for every layer with parameters. Unnamed layers use their 1-based
// position as name.
func Save(dir, prefix string, net *Network) error {
	return serialization.SaveNetwork(dir, prefix, net)
}

// Load reads the files written by Save into a network of the same
// structure.
func Load(dir, prefix string, net *Network) error {
	return serialization.LoadNetwork(dir, prefix, net)
}
