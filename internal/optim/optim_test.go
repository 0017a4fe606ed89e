package optim_test

import (
	"testing"

	"github.com/born-ml/convnet/internal/optim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// TestStep_NoMomentum checks Δw(t) == -η·g exactly when μ = λ = 0.
func TestStep_NoMomentum(t *testing.T) {
	w := []float64{2.0, -1.0, 0.5}
	g := []float64{1.0, 0.25, -4.0}
	prev := make([]float64, 3)
	cfg := optim.SGDConfig{LR: 0.1}

	before := append([]float64(nil), w...)
	grad := append([]float64(nil), g...)
	optim.Step(w, g, prev, cfg)

	for i := range w {
		assert.Equal(t, -cfg.LR*grad[i], prev[i], "delta[%d]", i)
		assert.Equal(t, before[i]+prev[i], w[i], "w[%d]", i)
	}
	assert.Equal(t, []float64{0, 0, 0}, g, "gradient accumulator must be zeroed")
}

// TestStep_Momentum checks two consecutive updates with known gradients.
func TestStep_Momentum(t *testing.T) {
	w := []float64{1.0}
	prev := []float64{0}
	cfg := optim.SGDConfig{LR: 0.1, Momentum: 0.9}

	g1 := 1.0
	optim.Step(w, []float64{g1}, prev, cfg)
	d1 := -cfg.LR * g1
	assert.Equal(t, d1, prev[0])
	assert.Equal(t, 1.0+d1, w[0])

	g2 := 0.5
	optim.Step(w, []float64{g2}, prev, cfg)
	d2 := -cfg.LR*g2 + cfg.Momentum*d1
	assert.InDelta(t, d2, prev[0], 1e-15)
	assert.InDelta(t, 1.0+d1+d2, w[0], 1e-15)
}

func TestStep_WeightDecay(t *testing.T) {
	w := []float64{2.0}
	prev := []float64{0}
	cfg := optim.SGDConfig{LR: 0.5, WeightDecay: 0.1}

	optim.Step(w, []float64{0}, prev, cfg)

	// Δ = -η·λ·w = -0.5·0.1·2 = -0.1
	assert.InDelta(t, -0.1, prev[0], 1e-15)
	assert.InDelta(t, 1.9, w[0], 1e-15)
}

func TestStep_LengthMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		optim.Step([]float64{1, 2}, []float64{1}, []float64{0, 0}, optim.SGDConfig{LR: 1})
	})
}

func TestStepDense(t *testing.T) {
	w := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	g := mat.NewDense(2, 2, []float64{1, 1, 1, 1})
	prev := mat.NewDense(2, 2, nil)

	optim.StepDense(w, g, prev, optim.SGDConfig{LR: 0.5})

	assert.Equal(t, []float64{0.5, 1.5, 2.5, 3.5}, w.RawMatrix().Data)
	assert.Equal(t, []float64{-0.5, -0.5, -0.5, -0.5}, prev.RawMatrix().Data)
	assert.Equal(t, []float64{0, 0, 0, 0}, g.RawMatrix().Data)
}

func TestStepDense_RejectsViews(t *testing.T) {
	big := mat.NewDense(3, 3, nil)
	view := big.Slice(0, 2, 0, 2).(*mat.Dense)
	assert.Panics(t, func() {
		optim.StepDense(view, mat.NewDense(2, 2, nil), mat.NewDense(2, 2, nil), optim.SGDConfig{LR: 1})
	})
}

func TestSGDConfig(t *testing.T) {
	cfg := optim.SGDConfig{LR: 0.1, Momentum: 0.9, WeightDecay: 0.01}
	require.NoError(t, cfg.Validate())
	assert.Zero(t, cfg.WithoutDecay().WeightDecay)
	assert.Equal(t, 0.9, cfg.WithoutDecay().Momentum)

	assert.Error(t, optim.SGDConfig{LR: -1}.Validate())
	assert.Error(t, optim.SGDConfig{LR: 0.1, Momentum: 1}.Validate())
	assert.Error(t, optim.SGDConfig{LR: 0.1, WeightDecay: -0.5}.Validate())
}
