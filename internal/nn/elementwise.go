package nn

import (
	"fmt"

	"github.com/born-ml/convnet/internal/parallel"
	"github.com/born-ml/convnet/internal/tensor"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ElementWiseFunc merges the values of one pixel across a group of
// channels. Df returns the share of a unit gradient each channel receives.
type ElementWiseFunc struct {
	F    func(values []float64) float64
	Df   func(values []float64) []float64
	Name string
}

// Type returns the merge name reported as the layer variant.
func (e ElementWiseFunc) Type() string { return e.Name }

// ElementMax keeps the largest value; the first maximum takes the gradient.
var ElementMax = ElementWiseFunc{
	F: floats.Max,
	Df: func(v []float64) []float64 {
		g := make([]float64, len(v))
		g[floats.MaxIdx(v)] = 1
		return g
	},
	Name: "MaxOut",
}

// ElementAverage keeps the mean and spreads gradients uniformly.
var ElementAverage = ElementWiseFunc{
	F: func(v []float64) float64 {
		return floats.Sum(v) / float64(len(v))
	},
	Df: func(v []float64) []float64 {
		g := make([]float64, len(v))
		floats.AddConst(1/float64(len(v)), g)
		return g
	},
	Name: "Average",
}

// ElementWiseConfig configures an ElementWise layer.
type ElementWiseConfig struct {
	InHeight, InWidth, InDepth int

	Size   int             // Channels merged per output channel (default: 2)
	Stride int             // Step between groups over channel index (default: 2)
	Func   ElementWiseFunc // Default: ElementMax
}

func (c *ElementWiseConfig) applyDefaults() {
	if c.Size == 0 {
		c.Size = 2
	}
	if c.Stride == 0 {
		c.Stride = 2
	}
	if c.Func.F == nil {
		c.Func = ElementMax
	}
}

// ElementWise collapses groups of consecutive channels into one channel per
// group with a per-pixel merge. Group od covers input channels
// [od*stride, od*stride+size). Spatial dimensions pass through.
type ElementWise struct {
	weightless
	merge ElementWiseFunc

	in, out tensor.Volume
	size    int

	inputs []*mat.Dense
	pre    []*mat.Dense
}

// NewElementWise creates an element-wise merge layer. Panics on invalid
// geometry.
func NewElementWise(cfg ElementWiseConfig, opts ...Option) *ElementWise {
	cfg.applyDefaults()
	in := tensor.Volume{Depth: cfg.InDepth, Height: cfg.InHeight, Width: cfg.InWidth}
	if err := in.Validate(); err != nil {
		panic(fmt.Sprintf("%s: invalid input volume: %v", TypeElementWise, err))
	}
	if cfg.Size < 0 || cfg.Stride < 0 || cfg.Size > in.Depth {
		panic(fmt.Sprintf("%s: invalid size=%d stride=%d for depth %d",
			TypeElementWise, cfg.Size, cfg.Stride, in.Depth))
	}
	out := tensor.Volume{
		Depth:  tensor.OutputDim(in.Depth, cfg.Size, cfg.Stride, 0),
		Height: in.Height,
		Width:  in.Width,
	}

	e := &ElementWise{
		weightless: weightless{base: newBase(TypeElementWise, cfg.Func.Type(), opts)},
		merge:      cfg.Func,
		in:         in,
		out:        out,
		size:       cfg.Size,
		inputs:     tensor.NewMaps(in),
		pre:        tensor.NewMaps(out),
	}
	e.inSize, e.outSize, e.stride = in.Size(), out.Size(), cfg.Stride
	return e
}

// InputVolume returns the input geometry.
func (e *ElementWise) InputVolume() tensor.Volume { return e.in }

// OutputVolume returns the output geometry.
func (e *ElementWise) OutputVolume() tensor.Volume { return e.out }

// SetInputs copies x into the per-channel maps.
func (e *ElementWise) SetInputs(x []float64) error {
	if err := checkLen(&e.base, "inputs", e.inSize, x); err != nil {
		return err
	}
	e.inputs = tensor.ToMaps(x, e.in)
	return nil
}

// pixel gathers the values of cell k across the channels of group od.
func (e *ElementWise) pixel(od, k int) []float64 {
	v := make([]float64, e.size)
	for s := range v {
		v[s] = e.inputs[od*e.stride+s].RawMatrix().Data[k]
	}
	return v
}

// ForwardPropagation merges every group, one job per output channel.
func (e *ElementWise) ForwardPropagation() {
	plane := e.in.Height * e.in.Width
	parallel.ForEach(e.out.Depth, func(od int) {
		dst := e.pre[od].RawMatrix().Data
		for k := 0; k < plane; k++ {
			dst[k] = e.merge.F(e.pixel(od, k))
		}
	}, fanout())
}

// Outputs returns the merged maps flattened depth-major.
func (e *ElementWise) Outputs() []float64 {
	return tensor.Flatten(e.pre)
}

// PredictOutputs equals Outputs.
func (e *ElementWise) PredictOutputs() []float64 {
	return e.Outputs()
}

// BackPropagation routes each upstream gradient to the channels of its
// group. Groups overlap when stride < size; the signal is then reduced on the
// calling goroutine.
func (e *ElementWise) BackPropagation(next []float64) []float64 {
	next = e.checkDelta(next)
	plane := e.in.Height * e.in.Width
	signal := make([]float64, e.inSize)

	route := func(od int) {
		for k := 0; k < plane; k++ {
			g := e.merge.Df(e.pixel(od, k))
			dv := next[od*plane+k]
			for s, share := range g {
				signal[(od*e.stride+s)*plane+k] += share * dv
			}
		}
	}
	if e.stride >= e.size {
		parallel.ForEach(e.out.Depth, route, fanout())
	} else {
		for od := 0; od < e.out.Depth; od++ {
			route(od)
		}
	}
	return signal
}

// Summary describes the layer geometry.
func (e *ElementWise) Summary() string {
	return fmt.Sprintf("Inputs:%v, Outputs:%v, ElementWiseSize:%d, Stride:%d",
		e.in, e.out, e.size, e.stride)
}
