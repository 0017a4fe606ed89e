// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the shape and volume helpers used by spatial
// layers.
//
// A Volume is a Height x Width x Depth block of activations. Layers exchange
// volumes as flat slices ordered depth-major, then row-major within a
// channel; ToMaps and Flatten convert between that layout and one gonum
// matrix per channel.
//
// Example:
//
//	v := tensor.Volume{Height: 28, Width: 28, Depth: 6}
//	maps := tensor.ToMaps(flat, v)
//	h := tensor.OutputDim(28, 5, 1, 2) // 28
package tensor

import (
	"github.com/born-ml/convnet/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// Shape represents the dimensions of a parameter block.
type Shape = tensor.Shape

// Volume is a Height x Width x Depth activation block.
type Volume = tensor.Volume

// OutputDim returns the output extent of a sliding window.
func OutputDim(in, kernel, stride, padding int) int {
	return tensor.OutputDim(in, kernel, stride, padding)
}

// NewMaps allocates one zeroed matrix per channel of v.
func NewMaps(v Volume) []*mat.Dense { return tensor.NewMaps(v) }

// ToMaps splits a flat depth-major slice into per-channel matrices.
func ToMaps(flat []float64, v Volume) []*mat.Dense { return tensor.ToMaps(flat, v) }

// Flatten concatenates per-channel matrices into a flat depth-major slice.
func Flatten(maps []*mat.Dense) []float64 { return tensor.Flatten(maps) }
