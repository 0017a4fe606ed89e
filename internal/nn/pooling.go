package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/convnet/internal/parallel"
	"github.com/born-ml/convnet/internal/tensor"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// PoolingFunc reduces a window to a scalar. Df returns, for the same window,
// how a unit upstream gradient is distributed back over its cells.
type PoolingFunc struct {
	F    func(window mat.Matrix) float64
	Df   func(window mat.Matrix) *mat.Dense
	Name string
}

// Type returns the pooling name reported as the layer variant.
func (p PoolingFunc) Type() string { return p.Name }

// MaxPooling keeps the window maximum. The gradient goes to the first
// maximum in row-major scan order.
var MaxPooling = PoolingFunc{
	F: mat.Max,
	Df: func(w mat.Matrix) *mat.Dense {
		r, c := w.Dims()
		best, bi, bj := math.Inf(-1), 0, 0
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				if v := w.At(i, j); v > best {
					best, bi, bj = v, i, j
				}
			}
		}
		g := mat.NewDense(r, c, nil)
		g.Set(bi, bj, 1)
		return g
	},
	Name: "Max",
}

// AveragePooling keeps the window mean and spreads gradients uniformly.
var AveragePooling = PoolingFunc{
	F: func(w mat.Matrix) float64 {
		r, c := w.Dims()
		return mat.Sum(w) / float64(r*c)
	},
	Df: func(w mat.Matrix) *mat.Dense {
		r, c := w.Dims()
		data := make([]float64, r*c)
		floats.AddConst(1/float64(r*c), data)
		return mat.NewDense(r, c, data)
	},
	Name: "Average",
}

// PoolingConfig configures a Pooling layer.
type PoolingConfig struct {
	InHeight, InWidth, InDepth int

	Size   int         // Square window side (default: 2)
	Stride int         // Window step (default: 2)
	Func   PoolingFunc // Default: MaxPooling
}

func (c *PoolingConfig) applyDefaults() {
	if c.Size == 0 {
		c.Size = 2
	}
	if c.Stride == 0 {
		c.Stride = 2
	}
	if c.Func.F == nil {
		c.Func = MaxPooling
	}
}

// Pooling downsamples every channel independently. Output depth equals input
// depth; it has no parameters.
type Pooling struct {
	weightless
	pool PoolingFunc

	in, out tensor.Volume
	size    int

	inputs []*mat.Dense
	pre    []*mat.Dense
}

// NewPooling creates a pooling layer. Panics on invalid geometry.
func NewPooling(cfg PoolingConfig, opts ...Option) *Pooling {
	cfg.applyDefaults()
	in := tensor.Volume{Depth: cfg.InDepth, Height: cfg.InHeight, Width: cfg.InWidth}
	if err := in.Validate(); err != nil {
		panic(fmt.Sprintf("%s: invalid input volume: %v", TypePooling, err))
	}
	if cfg.Size < 0 || cfg.Stride < 0 {
		panic(fmt.Sprintf("%s: invalid size=%d stride=%d", TypePooling, cfg.Size, cfg.Stride))
	}
	out := tensor.Volume{
		Depth:  in.Depth,
		Height: tensor.OutputDim(in.Height, cfg.Size, cfg.Stride, 0),
		Width:  tensor.OutputDim(in.Width, cfg.Size, cfg.Stride, 0),
	}
	if out.Height <= 0 || out.Width <= 0 {
		panic(fmt.Sprintf("%s: window %d does not fit input %v", TypePooling, cfg.Size, in))
	}

	p := &Pooling{
		weightless: weightless{base: newBase(TypePooling, cfg.Func.Type(), opts)},
		pool:       cfg.Func,
		in:         in,
		out:        out,
		size:       cfg.Size,
		inputs:     tensor.NewMaps(in),
		pre:        tensor.NewMaps(out),
	}
	p.inSize, p.outSize, p.stride = in.Size(), out.Size(), cfg.Stride
	return p
}

// InputVolume returns the input geometry.
func (p *Pooling) InputVolume() tensor.Volume { return p.in }

// OutputVolume returns the output geometry.
func (p *Pooling) OutputVolume() tensor.Volume { return p.out }

// SetInputs copies x into the per-channel maps.
func (p *Pooling) SetInputs(x []float64) error {
	if err := checkLen(&p.base, "inputs", p.inSize, x); err != nil {
		return err
	}
	p.inputs = tensor.ToMaps(x, p.in)
	return nil
}

// ForwardPropagation reduces every window of every channel.
func (p *Pooling) ForwardPropagation() {
	parallel.ForEach(p.out.Depth, func(d int) {
		for oh := 0; oh < p.out.Height; oh++ {
			for ow := 0; ow < p.out.Width; ow++ {
				p.pre[d].Set(oh, ow, p.pool.F(window(p.inputs[d], oh, ow, p.size, p.stride)))
			}
		}
	}, fanout())
}

// Outputs returns the pooled maps flattened depth-major.
func (p *Pooling) Outputs() []float64 {
	return tensor.Flatten(p.pre)
}

// PredictOutputs equals Outputs.
func (p *Pooling) PredictOutputs() []float64 {
	return p.Outputs()
}

// BackPropagation distributes each upstream gradient over its window.
// Overlapping windows add up.
func (p *Pooling) BackPropagation(next []float64) []float64 {
	deltas := tensor.ToMaps(p.checkDelta(next), p.out)
	signal := tensor.NewMaps(p.in)
	parallel.ForEach(p.in.Depth, func(d int) {
		for oh := 0; oh < p.out.Height; oh++ {
			for ow := 0; ow < p.out.Width; ow++ {
				g := p.pool.Df(window(p.inputs[d], oh, ow, p.size, p.stride))
				dst := window(signal[d], oh, ow, p.size, p.stride)
				g.Scale(deltas[d].At(oh, ow), g)
				dst.Add(dst, g)
			}
		}
	}, fanout())
	return tensor.Flatten(signal)
}

// Summary describes the layer geometry.
func (p *Pooling) Summary() string {
	return fmt.Sprintf("Inputs:%v, Outputs:%v, PoolingSize:%dx%d, Stride:%d",
		p.in, p.out, p.size, p.size, p.stride)
}
