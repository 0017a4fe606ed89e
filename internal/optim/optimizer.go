// Package optim implements the parameter update rule shared by every
// trainable layer.
//
// Layers accumulate raw gradients during back-propagation and call Step (or
// StepDense) once per update cycle. The rule is gradient descent with
// momentum and L2 weight decay:
//
//	Δw(t)   = -η·∂E/∂w + μ·Δw(t-1) - η·λ·w(t)
//	w(t+1)  = w(t) + Δw(t)
//
// Biases use the same rule with λ = 0.
//
// Example:
//
//	cfg := optim.SGDConfig{LR: 0.05, Momentum: 0.9, WeightDecay: 1e-4}
//	optim.Step(weights, grads, prevDelta, cfg)
package optim

import "fmt"

// SGDConfig holds the hyperparameters of one update step.
type SGDConfig struct {
	LR          float64 // Learning rate η
	Momentum    float64 // Momentum factor μ, range [0, 1)
	WeightDecay float64 // L2 coefficient λ
}

// WithoutDecay returns a copy of the config with WeightDecay cleared,
// the form applied to biases.
func (c SGDConfig) WithoutDecay() SGDConfig {
	c.WeightDecay = 0
	return c
}

// Validate reports hyperparameters that make the rule diverge or stall.
func (c SGDConfig) Validate() error {
	if c.LR < 0 {
		return fmt.Errorf("optim: negative learning rate %g", c.LR)
	}
	if c.Momentum < 0 || c.Momentum >= 1 {
		return fmt.Errorf("optim: momentum %g outside [0, 1)", c.Momentum)
	}
	if c.WeightDecay < 0 {
		return fmt.Errorf("optim: negative weight decay %g", c.WeightDecay)
	}
	return nil
}
