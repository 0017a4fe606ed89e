package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape    Shape
		expected int
	}{
		{Shape{}, 1},         // Scalar
		{Shape{5}, 5},        // 1D
		{Shape{3, 4}, 12},    // 2D
		{Shape{2, 3, 4}, 24}, // 3D
		{Shape{1, 1, 1}, 1},  // Ones
	}

	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.expected {
			t.Errorf("Shape%v.NumElements() = %d, want %d", tt.shape, got, tt.expected)
		}
	}
}

func TestShapeValidation(t *testing.T) {
	for _, s := range []Shape{{1}, {3, 4}, {2, 3, 4}} {
		if err := s.Validate(); err != nil {
			t.Errorf("Shape%v.Validate() failed: %v", s, err)
		}
	}

	for _, s := range []Shape{{0}, {3, 0}, {-1}, {3, -4}} {
		if err := s.Validate(); err == nil {
			t.Errorf("Shape%v.Validate() should fail but didn't", s)
		}
	}
}

func TestShapeEqual(t *testing.T) {
	tests := []struct {
		a, b  Shape
		equal bool
	}{
		{Shape{3, 4}, Shape{3, 4}, true},
		{Shape{3, 4}, Shape{4, 3}, false},
		{Shape{3}, Shape{3, 1}, false},
		{Shape{}, Shape{}, true},
	}

	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.equal {
			t.Errorf("Shape%v.Equal(%v) = %v, want %v", tt.a, tt.b, got, tt.equal)
		}
	}
}

func TestVolume(t *testing.T) {
	v := Volume{Depth: 3, Height: 28, Width: 20}
	assert.Equal(t, 3*28*20, v.Size())
	assert.Equal(t, "28x20x3", v.String())
	assert.Equal(t, Volume{Depth: 3, Height: 32, Width: 24}, v.Padded(2))
	assert.NoError(t, v.Validate())
	assert.Error(t, Volume{Depth: 0, Height: 1, Width: 1}.Validate())
}

func TestOutputDim(t *testing.T) {
	tests := []struct {
		in, kernel, stride, padding int
		want                        int
	}{
		{28, 5, 1, 2, 28},
		{28, 5, 1, 0, 24},
		{24, 2, 2, 0, 12},
		{7, 3, 2, 0, 3},
		{7, 3, 2, 1, 4},
		{5, 5, 1, 0, 1},
		{4, 5, 1, 0, 0},
		{4, 2, 0, 0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputDim(tt.in, tt.kernel, tt.stride, tt.padding),
			"OutputDim(%d, %d, %d, %d)", tt.in, tt.kernel, tt.stride, tt.padding)
	}
}
