package tensor

import "fmt"

// Shape represents the dimensions of a parameter or activation block.
type Shape []int

// NumElements returns the total number of elements described by the shape.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Volume is a depth x height x width block of activations.
//
// At layer boundaries a volume travels as a flat slice ordered depth-major,
// then row-major within each channel. Spatial layers keep one 2D map per
// depth channel internally.
type Volume struct {
	Depth  int
	Height int
	Width  int
}

// Size returns Depth*Height*Width.
func (v Volume) Size() int {
	return v.Depth * v.Height * v.Width
}

// Shape returns the volume as a [depth, height, width] shape.
func (v Volume) Shape() Shape {
	return Shape{v.Depth, v.Height, v.Width}
}

// Validate checks that all three dimensions are positive.
func (v Volume) Validate() error {
	return v.Shape().Validate()
}

// Padded returns the volume grown by padding cells on every spatial border.
func (v Volume) Padded(padding int) Volume {
	return Volume{Depth: v.Depth, Height: v.Height + 2*padding, Width: v.Width + 2*padding}
}

// String renders the volume as HxWxD, the order used in layer summaries.
func (v Volume) String() string {
	return fmt.Sprintf("%dx%dx%d", v.Height, v.Width, v.Depth)
}

// OutputDim applies the sliding-window shape law:
//
//	out = floor((in + 2*padding - kernel) / stride) + 1
//
// It returns a value <= 0 when the window does not fit.
func OutputDim(in, kernel, stride, padding int) int {
	padded := in + 2*padding
	if stride <= 0 || kernel > padded {
		return 0
	}
	return (padded-kernel)/stride + 1
}
