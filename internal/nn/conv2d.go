package nn

import (
	"fmt"

	"github.com/born-ml/convnet/internal/optim"
	"github.com/born-ml/convnet/internal/parallel"
	"github.com/born-ml/convnet/internal/tensor"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ConvolutionalConfig configures a Convolutional layer.
type ConvolutionalConfig struct {
	InHeight, InWidth, InDepth int

	KernelSize int // Square kernel side (default: 3)
	OutDepth   int // Number of output channels (default: 32)
	Stride     int // Window step (default: 1)
	Padding    int // Zero cells added on every spatial border

	// ConnectionTable links input channel id to output channel od when
	// ConnectionTable[id*OutDepth+od] != 0. A nil or mis-sized table means
	// every pair is connected.
	ConnectionTable []int

	Activation Activation // Default: Identity
}

func (c *ConvolutionalConfig) applyDefaults() {
	if c.KernelSize == 0 {
		c.KernelSize = 3
	}
	if c.OutDepth == 0 {
		c.OutDepth = 32
	}
	if c.Stride == 0 {
		c.Stride = 1
	}
	if c.Activation.F == nil {
		c.Activation = Identity
	}
}

// Convolutional is a 2D convolution layer over a depth x height x width
// volume.
//
// Kernels are stored per (input, output) channel pair at index
// id*outDepth+od. Padding is materialized once, when inputs are set.
//
//	out = floor((in + 2*padding - kernel) / stride) + 1
//
// Example:
//
//	conv := nn.NewConvolutional(nn.ConvolutionalConfig{
//		InHeight: 28, InWidth: 28, InDepth: 1,
//		KernelSize: 5, OutDepth: 6, Padding: 2,
//		Activation: nn.ReLU,
//	})
type Convolutional struct {
	base
	act Activation

	in, out         tensor.Volume
	kernel, padding int
	connected       []bool // [inDepth*outDepth]

	inputs []*mat.Dense // padded input maps
	pre    []*mat.Dense // pre-activation output maps

	kernels    []*mat.Dense // [inDepth*outDepth] of kernel x kernel
	biases     []float64    // [outDepth]
	dk, prevDK []*mat.Dense
	db, prevDB []float64
}

// NewConvolutional creates a convolution layer with connected kernels drawn
// uniformly from ±1/sqrt(inDepth·K²) and zero biases.
// Panics on invalid geometry.
func NewConvolutional(cfg ConvolutionalConfig, opts ...Option) *Convolutional {
	cfg.applyDefaults()
	in := tensor.Volume{Depth: cfg.InDepth, Height: cfg.InHeight, Width: cfg.InWidth}
	if err := in.Validate(); err != nil {
		panic(fmt.Sprintf("%s: invalid input volume: %v", TypeConvolutional, err))
	}
	if cfg.KernelSize < 0 || cfg.OutDepth < 0 || cfg.Stride < 0 || cfg.Padding < 0 {
		panic(fmt.Sprintf("%s: invalid kernel=%d outDepth=%d stride=%d padding=%d",
			TypeConvolutional, cfg.KernelSize, cfg.OutDepth, cfg.Stride, cfg.Padding))
	}
	out := tensor.Volume{
		Depth:  cfg.OutDepth,
		Height: tensor.OutputDim(in.Height, cfg.KernelSize, cfg.Stride, cfg.Padding),
		Width:  tensor.OutputDim(in.Width, cfg.KernelSize, cfg.Stride, cfg.Padding),
	}
	if out.Height <= 0 || out.Width <= 0 {
		panic(fmt.Sprintf("%s: kernel %d does not fit input %v with padding %d",
			TypeConvolutional, cfg.KernelSize, in, cfg.Padding))
	}

	c := &Convolutional{
		base:    newBase(TypeConvolutional, cfg.Activation.Type(), opts),
		act:     cfg.Activation,
		in:      in,
		out:     out,
		kernel:  cfg.KernelSize,
		padding: cfg.Padding,
		inputs:  tensor.NewMaps(in.Padded(cfg.Padding)),
		pre:     tensor.NewMaps(out),
		biases:  make([]float64, out.Depth),
		db:      make([]float64, out.Depth),
		prevDB:  make([]float64, out.Depth),
	}
	c.inSize, c.outSize, c.stride = in.Size(), out.Size(), cfg.Stride
	c.connected = connections(c.label(), cfg.ConnectionTable, in.Depth, out.Depth)

	pairs := in.Depth * out.Depth
	kv := tensor.Volume{Depth: pairs, Height: cfg.KernelSize, Width: cfg.KernelSize}
	c.kernels = tensor.NewMaps(kv)
	c.dk = tensor.NewMaps(kv)
	c.prevDK = tensor.NewMaps(kv)

	bound := convBound(in.Depth, cfg.KernelSize)
	c.GenerateWeights(-bound, bound)
	return c
}

func connections(layer string, table []int, inDepth, outDepth int) []bool {
	conn := make([]bool, inDepth*outDepth)
	if table != nil && len(table) != len(conn) {
		log().Warn("connection table size mismatch, connecting all channels",
			"layer", layer, "size", len(table), "want", len(conn))
		table = nil
	}
	for k := range conn {
		conn[k] = table == nil || table[k] != 0
	}
	return conn
}

// InputVolume returns the unpadded input geometry.
func (c *Convolutional) InputVolume() tensor.Volume { return c.in }

// OutputVolume returns the output geometry.
func (c *Convolutional) OutputVolume() tensor.Volume { return c.out }

// Connected reports whether input channel id feeds output channel od.
func (c *Convolutional) Connected(id, od int) bool {
	return c.connected[id*c.out.Depth+od]
}

// SetInputs writes x into the interior of the padded input maps.
func (c *Convolutional) SetInputs(x []float64) error {
	if err := checkLen(&c.base, "inputs", c.inSize, x); err != nil {
		return err
	}
	tensor.WritePadded(c.inputs, x, c.padding)
	return nil
}

// ForwardPropagation convolves every output channel independently.
func (c *Convolutional) ForwardPropagation() {
	parallel.ForEach(c.out.Depth, func(od int) {
		dst := c.pre[od]
		dst.Zero()
		for id := 0; id < c.in.Depth; id++ {
			if c.Connected(id, od) {
				correlateAdd(dst, c.inputs[id], c.kernels[id*c.out.Depth+od], c.stride)
			}
		}
		raw := dst.RawMatrix()
		floats.AddConst(c.biases[od], raw.Data[:raw.Rows*raw.Cols])
	}, fanout())
}

// Outputs returns φ(pre) flattened depth-major.
func (c *Convolutional) Outputs() []float64 {
	return c.act.apply(tensor.Flatten(c.pre))
}

// PredictOutputs equals Outputs.
func (c *Convolutional) PredictOutputs() []float64 {
	return c.Outputs()
}

// BackPropagation accumulates kernel and bias gradients per output channel,
// then scatters the signal into each input channel and strips the padding.
func (c *Convolutional) BackPropagation(next []float64) []float64 {
	deltas := tensor.ToMaps(c.checkDelta(next), c.out)

	parallel.ForEach(c.out.Depth, func(od int) {
		raw := deltas[od].RawMatrix()
		pre := c.pre[od].RawMatrix()
		for k := range raw.Data {
			raw.Data[k] *= c.act.Df(pre.Data[k])
		}
		c.db[od] += floats.Sum(raw.Data)
		for id := 0; id < c.in.Depth; id++ {
			if c.Connected(id, od) {
				kernelGradAdd(c.dk[id*c.out.Depth+od], c.inputs[id], deltas[od], c.stride)
			}
		}
	}, fanout())

	signal := make([]*mat.Dense, c.in.Depth)
	padded := c.in.Padded(c.padding)
	parallel.ForEach(c.in.Depth, func(id int) {
		buf := mat.NewDense(padded.Height, padded.Width, nil)
		for od := 0; od < c.out.Depth; od++ {
			if c.Connected(id, od) {
				scatterAdd(buf, c.kernels[id*c.out.Depth+od], deltas[od], c.stride)
			}
		}
		signal[id] = tensor.Crop(buf, c.padding)
	}, fanout())
	return tensor.Flatten(signal)
}

// WeightUpdate applies the accumulated gradients of connected kernels and
// the biases, then clears them.
func (c *Convolutional) WeightUpdate(eta, mu, lambda float64) {
	cfg := optim.SGDConfig{LR: eta, Momentum: mu, WeightDecay: lambda}
	for k, on := range c.connected {
		if on {
			optim.StepDense(c.kernels[k], c.dk[k], c.prevDK[k], cfg)
		}
	}
	optim.Step(c.biases, c.db, c.prevDB, cfg.WithoutDecay())
}

// GenerateWeights redraws connected kernels from [lower, upper) and zeroes
// disconnected ones.
func (c *Convolutional) GenerateWeights(lower, upper float64) {
	for k, on := range c.connected {
		data := c.kernels[k].RawMatrix().Data
		if on {
			Uniform(data, lower, upper)
			continue
		}
		clear(data)
	}
}

// Weights returns the kernels flattened pair by pair, row-major within each
// kernel.
func (c *Convolutional) Weights() []float64 {
	return tensor.Flatten(c.kernels)
}

// SetWeights replaces the kernels. Disconnected kernels are forced to zero.
func (c *Convolutional) SetWeights(w []float64) error {
	plane := c.kernel * c.kernel
	if err := checkLen(&c.base, "weights", len(c.kernels)*plane, w); err != nil {
		return err
	}
	for k, m := range c.kernels {
		data := m.RawMatrix().Data
		if c.connected[k] {
			copy(data, w[k*plane:(k+1)*plane])
			continue
		}
		clear(data)
	}
	return nil
}

// Biases returns one bias per output channel.
func (c *Convolutional) Biases() []float64 {
	return append([]float64(nil), c.biases...)
}

// SetBiases replaces the per-channel biases.
func (c *Convolutional) SetBiases(b []float64) error {
	if err := checkLen(&c.base, "biases", c.out.Depth, b); err != nil {
		return err
	}
	copy(c.biases, b)
	return nil
}

// ParameterShapes returns [pairs K K] and [outDepth].
func (c *Convolutional) ParameterShapes() (weights, biases []int) {
	return []int{len(c.kernels), c.kernel, c.kernel}, []int{c.out.Depth}
}

// Summary describes the layer geometry.
func (c *Convolutional) Summary() string {
	return fmt.Sprintf("Inputs:%v, Outputs:%v, Kernels:%dx%dx%dx%d, Biases:%d, Stride:%d, Padding:%d",
		c.in, c.out, c.in.Depth, c.out.Depth, c.kernel, c.kernel, c.out.Depth, c.stride, c.padding)
}
