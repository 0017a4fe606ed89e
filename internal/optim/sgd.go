package optim

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Step applies one update to param in place.
//
//	Δ(t)  = -lr·grad + momentum·prev - lr·decay·param
//	param = param + Δ(t)
//
// On return prev holds Δ(t) and grad is zeroed, ready for the next
// accumulation cycle. All three slices must have the same length.
func Step(param, grad, prev []float64, cfg SGDConfig) {
	if len(grad) != len(param) || len(prev) != len(param) {
		panic(fmt.Sprintf("optim.Step: length mismatch param=%d grad=%d prev=%d",
			len(param), len(grad), len(prev)))
	}

	delta := make([]float64, len(param))
	floats.ScaleTo(delta, -cfg.LR, grad)
	floats.AddScaled(delta, cfg.Momentum, prev)
	if cfg.WeightDecay != 0 {
		floats.AddScaled(delta, -cfg.LR*cfg.WeightDecay, param)
	}

	floats.Add(param, delta)
	copy(prev, delta)
	clear(grad)
}

// StepDense is Step for matrices. The matrices must be contiguous (as
// returned by mat.NewDense) and share dimensions.
func StepDense(param, grad, prev *mat.Dense, cfg SGDConfig) {
	Step(contiguous(param), contiguous(grad), contiguous(prev), cfg)
}

func contiguous(m *mat.Dense) []float64 {
	raw := m.RawMatrix()
	if raw.Stride != raw.Cols {
		panic("optim: matrix is a non-contiguous view")
	}
	return raw.Data[:raw.Rows*raw.Cols]
}
