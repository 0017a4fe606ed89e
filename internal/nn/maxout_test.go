package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxout_Routing(t *testing.T) {
	m := NewMaxout(3, 2)
	// Column 0 prefers input 2, column 1 prefers input 0.
	require.NoError(t, m.SetWeights([]float64{
		1, 3,
		1, 1,
		2, 1,
	}))
	require.NoError(t, m.SetInputs([]float64{1, 1, 1}))
	m.ForwardPropagation()
	assert.Equal(t, []float64{2, 3}, m.Outputs())

	signal := m.BackPropagation([]float64{10, 100})
	assert.Equal(t, []float64{300, 0, 20}, signal)

	w0 := m.Weights()
	m.WeightUpdate(1, 0, 0)
	w1 := m.Weights()
	// Only the winning pairs move: w[2,0] by 10·x2 and w[0,1] by 100·x0.
	assert.Equal(t, []float64{w0[0], w0[1] - 100, w0[2], w0[3], w0[4] - 10, w0[5]}, w1)
	assert.Equal(t, []float64{0, -100, 0, 0, -10, 0}, m.Biases())
}

func TestMaxout_SharedWinner(t *testing.T) {
	m := NewMaxout(2, 2)
	require.NoError(t, m.SetWeights([]float64{5, 5, 1, 1}))
	require.NoError(t, m.SetInputs([]float64{1, 1}))
	m.ForwardPropagation()
	assert.Equal(t, []float64{10, 0}, m.BackPropagation([]float64{1, 1}))
}

func TestMaxout_Parameters(t *testing.T) {
	m := NewMaxout(3, 4)
	w, b := m.ParameterShapes()
	assert.Equal(t, []int{3, 4}, w)
	assert.Equal(t, []int{3, 4}, b)
	assert.Len(t, m.Biases(), 12)
	assert.ErrorIs(t, m.SetBiases(make([]float64, 4)), ErrShape)
	assert.Equal(t, "Inputs:3, Outputs:4, Weights:3x4, Biases:3x4", m.Summary())
	assert.Equal(t, "Maxout", m.Variant())
}
