// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim exposes the parameter update rule applied by every trainable
// layer: gradient descent with momentum and L2 weight decay.
//
//	Δw(t)  = -η·∂E/∂w + μ·Δw(t-1) - η·λ·w(t)
//	w(t+1) = w(t) + Δw(t)
//
// Networks apply the rule through Layer.WeightUpdate; Step and StepDense are
// available for custom layers.
package optim

import (
	"github.com/born-ml/convnet/internal/optim"
	"gonum.org/v1/gonum/mat"
)

// SGDConfig contains the hyperparameters of one update step.
type SGDConfig = optim.SGDConfig

// Step applies one update to param in place, records the applied delta in
// prev and clears grad.
//
// Example:
//
//	cfg := optim.SGDConfig{LR: 0.05, Momentum: 0.9}
//	optim.Step(biases, biasGrad, prevBiasDelta, cfg.WithoutDecay())
func Step(param, grad, prev []float64, cfg SGDConfig) { optim.Step(param, grad, prev, cfg) }

// StepDense is Step for matrix-shaped parameters.
func StepDense(param, grad, prev *mat.Dense, cfg SGDConfig) { optim.StepDense(param, grad, prev, cfg) }
