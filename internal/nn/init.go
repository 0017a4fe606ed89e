package nn

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Uniform fills dst with independent draws from [lower, upper).
//
// A degenerate range (lower == upper) fills dst with lower.
func Uniform(dst []float64, lower, upper float64) {
	if lower == upper {
		for i := range dst {
			dst[i] = lower
		}
		return
	}
	if lower > upper {
		lower, upper = upper, lower
	}
	dist := distuv.Uniform{Min: lower, Max: upper}
	for i := range dst {
		dst[i] = dist.Rand()
	}
}

// fcBound is the default symmetric init bound of the fully-connected family.
func fcBound(in int) float64 {
	return 1 / float64(in)
}

// convBound is the default symmetric init bound of a convolutional layer.
func convBound(inDepth, kernel int) float64 {
	return 1 / math.Sqrt(float64(inDepth*kernel*kernel))
}
