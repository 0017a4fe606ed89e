package network

import (
	"fmt"
	"math"
	"time"

	"github.com/born-ml/convnet/internal/nn"
	"github.com/born-ml/convnet/internal/optim"
)

// TrainConfig holds the hyperparameters of one Train call.
type TrainConfig struct {
	// BatchSize selects the regime: 1 is online, values <= 0 or >= the
	// dataset size are full-batch, anything else is mini-batch.
	BatchSize int
	Epochs    int

	LearningRate float64 // Base rate; the effective Eta is LearningRate·sqrt(BatchSize)
	Momentum     float64
	WeightDecay  float64

	// OnEpoch runs after every epoch; returning true stops training.
	OnEpoch func() bool
	// OnBatch receives the mean per-sample error of every batch. Its
	// result is ignored by Train.
	OnBatch func(err float64) bool
}

// DefaultTrainConfig returns mini-batches of 20 over 10000 epochs with a
// base learning rate of 0.05 and no momentum or decay.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		BatchSize:    20,
		Epochs:       10000,
		LearningRate: 0.05,
	}
}

// Validate checks the hyperparameter ranges.
func (c TrainConfig) Validate() error {
	if c.Epochs < 0 {
		return fmt.Errorf("epochs must be >= 0, got %d", c.Epochs)
	}
	return optim.SGDConfig{LR: c.LearningRate, Momentum: c.Momentum, WeightDecay: c.WeightDecay}.Validate()
}

// batchSize normalizes BatchSize for a dataset of n samples.
func (c TrainConfig) batchSize(n int) int {
	if c.BatchSize <= 0 || c.BatchSize > n {
		return n
	}
	return c.BatchSize
}

func regime(batch, n int) string {
	switch batch {
	case 1:
		return "online"
	case n:
		return "full-batch"
	default:
		return "mini-batch"
	}
}

// Train fits the network to the dataset.
//
// Every batch runs forward and backward over each of its samples, letting
// gradients accumulate, then updates every layer once. The last batch of an
// epoch may be shorter. Shape mismatches between the dataset and the chain
// are reported before any parameter changes.
func (n *Network) Train(inputs, targets [][]float64, cfg TrainConfig) error {
	if err := n.validateDataset(inputs, targets); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("train config: %w", err)
	}

	size := len(inputs)
	batch := cfg.batchSize(size)
	n.Eta = cfg.LearningRate * math.Sqrt(float64(batch))
	n.Mu = cfg.Momentum
	n.Lambda = cfg.WeightDecay

	n.logger.Info("training start",
		"samples", size, "batch", batch, "regime", regime(batch, size),
		"epochs", cfg.Epochs, "eta", n.Eta, "mu", n.Mu, "lambda", n.Lambda)
	start := time.Now()

	epoch := 0
	for epoch < cfg.Epochs {
		var total float64
		for lo := 0; lo < size; lo += batch {
			hi := min(lo+batch, size)
			e, err := n.trainBatch(inputs[lo:hi], targets[lo:hi])
			if err != nil {
				return fmt.Errorf("epoch %d: %w", epoch+1, err)
			}
			total += e
			if cfg.OnBatch != nil {
				cfg.OnBatch(e / float64(hi-lo))
			}
		}
		epoch++
		n.logger.Debug("epoch done", "epoch", epoch, "error", total/float64(size))

		if cfg.OnEpoch != nil && cfg.OnEpoch() {
			n.logger.Info("training stopped by epoch hook", "epoch", epoch)
			break
		}
	}

	n.logger.Info("training finished", "epochs", epoch, "elapsed", time.Since(start))
	return nil
}

// trainBatch accumulates gradients over the batch, then updates every layer.
// It returns the summed loss of the batch.
func (n *Network) trainBatch(inputs, targets [][]float64) (float64, error) {
	var total float64
	for i, x := range inputs {
		y, err := n.Forward(x)
		if err != nil {
			return 0, err
		}
		delta := make([]float64, len(y))
		for j, v := range y {
			total += n.loss.F(v, targets[i][j])
			delta[j] = n.loss.Df(v, targets[i][j])
		}
		for k := len(n.layers) - 1; k >= 0; k-- {
			delta = n.layers[k].BackPropagation(delta)
		}
	}
	for _, l := range n.layers {
		l.WeightUpdate(n.Eta, n.Mu, n.Lambda)
	}
	return total, nil
}

// validateDataset checks the dataset against the chain's end sizes.
func (n *Network) validateDataset(inputs, targets [][]float64) error {
	if len(n.layers) == 0 {
		return ErrNoLayers
	}
	if len(inputs) == 0 {
		return ErrEmptyDataset
	}
	if len(inputs) != len(targets) {
		return fmt.Errorf("%w: %d inputs, %d targets", ErrDatasetMismatch, len(inputs), len(targets))
	}
	in := n.layers[0].InputSize()
	out := n.layers[len(n.layers)-1].OutputSize()
	for i := range inputs {
		if len(inputs[i]) != in {
			return &nn.ShapeError{Layer: "dataset", Field: fmt.Sprintf("inputs[%d]", i), Want: in, Got: len(inputs[i])}
		}
		if len(targets[i]) != out {
			return &nn.ShapeError{Layer: "dataset", Field: fmt.Sprintf("targets[%d]", i), Want: out, Got: len(targets[i])}
		}
	}
	return nil
}
