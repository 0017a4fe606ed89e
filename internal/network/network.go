// Package network chains layers into a feed-forward network and trains it
// by back-propagation.
//
// The topology is a fixed linear chain: the flat output of layer i is the
// input of layer i+1. Training supports online, mini-batch and full-batch
// regimes selected by TrainConfig.BatchSize.
//
// Example:
//
//	net := network.New(nn.MSE,
//		nn.NewFullyConnected(2, 3, nn.Tanh),
//		nn.NewFullyConnected(3, 1, nn.Sigmoid),
//	)
//	err := net.Train(inputs, targets, network.TrainConfig{
//		BatchSize: 1, Epochs: 1000, LearningRate: 0.1,
//	})
package network

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/born-ml/convnet/internal/nn"
)

// Sentinel errors returned by Train, Evaluate and Accuracy.
var (
	ErrNoLayers        = errors.New("network has no layers")
	ErrEmptyDataset    = errors.New("empty dataset")
	ErrDatasetMismatch = errors.New("inputs and targets differ in length")
)

// Network owns an ordered chain of layers and a loss function.
//
// Eta, Mu and Lambda are the effective learning rate, momentum and weight
// decay of the running Train call. Train sets them from its TrainConfig;
// epoch and batch hooks may change them to adapt the schedule.
type Network struct {
	layers []nn.Layer
	loss   nn.Loss
	logger *slog.Logger

	Eta    float64
	Mu     float64
	Lambda float64
}

// New creates a network with the given loss and layers.
func New(loss nn.Loss, layers ...nn.Layer) *Network {
	return &Network{
		layers: append([]nn.Layer(nil), layers...),
		loss:   loss,
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for training progress and consistency
// warnings. A nil logger restores slog.Default().
func (n *Network) WithLogger(l *slog.Logger) *Network {
	if l == nil {
		l = slog.Default()
	}
	n.logger = l
	return n
}

// Add appends layers to the end of the chain.
func (n *Network) Add(layers ...nn.Layer) {
	n.layers = append(n.layers, layers...)
}

// Len returns the number of layers.
func (n *Network) Len() int { return len(n.layers) }

// Layer returns the i-th layer.
func (n *Network) Layer(i int) nn.Layer { return n.layers[i] }

// Layers returns the layers in order. The slice is a copy.
func (n *Network) Layers() []nn.Layer {
	return append([]nn.Layer(nil), n.layers...)
}

// Loss returns the loss function.
func (n *Network) Loss() nn.Loss { return n.loss }

// Forward runs a training-mode pass and returns the last layer's Outputs.
// Stochastic layers apply their current masks.
func (n *Network) Forward(x []float64) ([]float64, error) {
	return n.run(x, nn.Layer.Outputs)
}

// Prediction runs an inference-mode pass, chaining PredictOutputs at every
// stage.
func (n *Network) Prediction(x []float64) ([]float64, error) {
	return n.run(x, nn.Layer.PredictOutputs)
}

func (n *Network) run(x []float64, out func(nn.Layer) []float64) ([]float64, error) {
	if len(n.layers) == 0 {
		return nil, ErrNoLayers
	}
	for i, l := range n.layers {
		if err := l.SetInputs(x); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i+1, err)
		}
		l.ForwardPropagation()
		x = out(l)
	}
	return x, nil
}

// ConsistencyWarning reports adjacent layers whose sizes disagree.
type ConsistencyWarning struct {
	Index      int    // Position of the earlier layer
	Prev, Next string // Layer names, or 1-based positions when unnamed
	Output     int    // Output size of the earlier layer
	Input      int    // Declared input size of the later layer
}

// String implements fmt.Stringer.
func (w ConsistencyWarning) String() string {
	return fmt.Sprintf("layers %s and %s: output %d does not match input %d",
		w.Prev, w.Next, w.Output, w.Input)
}

// Check reports every adjacent pair whose output and input sizes disagree.
// Each mismatch is also logged. An empty result means the chain is
// consistent; training a reported network fails on the first sample.
func (n *Network) Check() []ConsistencyWarning {
	var warnings []ConsistencyWarning
	for i := 0; i+1 < len(n.layers); i++ {
		prev, next := n.layers[i], n.layers[i+1]
		if next.CheckSize(prev.OutputSize()) {
			continue
		}
		w := ConsistencyWarning{
			Index:  i,
			Prev:   fmt.Sprint(i + 1),
			Next:   fmt.Sprint(i + 2),
			Output: prev.OutputSize(),
			Input:  next.InputSize(),
		}
		if prev.Name() != "" && next.Name() != "" {
			w.Prev, w.Next = prev.Name(), next.Name()
		}
		n.logger.Warn("network structure mismatch",
			"prev", w.Prev, "next", w.Next, "output", w.Output, "input", w.Input)
		warnings = append(warnings, w)
	}
	return warnings
}

// Structure describes the chain one layer per line as
// "<position>, <type>, <variant>, <summary>", followed by a final
// "<n+1>, OutputLayer, <loss>" line.
func (n *Network) Structure() string {
	var b strings.Builder
	for i, l := range n.layers {
		fmt.Fprintf(&b, "%d, %s, %s, %s\n", i+1, l.Type(), l.Variant(), l.Summary())
	}
	fmt.Fprintf(&b, "%d, OutputLayer, %s\n", len(n.layers)+1, n.loss.Type())
	return b.String()
}
