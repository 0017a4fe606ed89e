package serialization

import (
	"fmt"

	"github.com/born-ml/convnet/internal/tensor"
)

// Block tags.
const (
	TagWeights = "#Weights"
	TagKernels = "#Kernels"
	TagBiases  = "#Biases"
)

// MaxDims is the highest block rank.
const MaxDims = 3

// Block is one tagged parameter array. Values are flat in row-major order
// over Dims.
type Block struct {
	Tag    string
	Dims   []int
	Values []float64
}

func validTag(tag string) bool {
	switch tag {
	case TagWeights, TagKernels, TagBiases:
		return true
	}
	return false
}

// validate checks the tag, the rank and the value count.
func (b Block) validate() error {
	if !validTag(b.Tag) {
		return &FormatError{Err: ErrInvalidTag, Details: fmt.Sprintf("%q", b.Tag)}
	}
	if len(b.Dims) == 0 || len(b.Dims) > MaxDims {
		return &FormatError{Tag: b.Tag, Err: ErrInvalidDims, Details: fmt.Sprintf("rank %d", len(b.Dims))}
	}
	if err := tensor.Shape(b.Dims).Validate(); err != nil {
		return &FormatError{Tag: b.Tag, Err: ErrInvalidDims, Details: err.Error()}
	}
	if want := tensor.Shape(b.Dims).NumElements(); len(b.Values) != want {
		return &FormatError{
			Tag: b.Tag, Err: ErrValueCount,
			Details: fmt.Sprintf("dims %v need %d values, got %d", b.Dims, want, len(b.Values)),
		}
	}
	return nil
}

// rowWidth is the number of values written per line.
func (b Block) rowWidth() int {
	return b.Dims[len(b.Dims)-1]
}

// sliceLen is the number of values between blank separator lines, or 0 when
// the block has no depth slices.
func (b Block) sliceLen() int {
	if len(b.Dims) < MaxDims {
		return 0
	}
	return b.Dims[1] * b.Dims[2]
}
