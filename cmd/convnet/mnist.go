package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/convnet/network"
	"gonum.org/v1/gonum/mat"
)

func runMNIST(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("mnist", flag.ContinueOnError)
	dataDir := fs.String("data", "./data", "Directory containing the MNIST IDX files")
	samples := fs.Int("samples", 2000, "Max samples to load (0 = all)")
	valFrac := fs.Float64("val", 0.2, "Fraction of samples held out for validation")
	epochs := fs.Int("epochs", 5, "Number of training epochs")
	batch := fs.Int("batch", 10, "Batch size (1 = online, 0 = full batch)")
	lr := fs.Float64("lr", 0.01, "Base learning rate")
	momentum := fs.Float64("momentum", 0.9, "Momentum factor")
	decay := fs.Float64("decay", 1e-4, "L2 weight decay")
	drop := fs.Float64("drop", 0.5, "Drop-out probability of the first fully-connected layer")
	out := fs.String("out", "", "Directory to write the trained parameters to")
	verbose := fs.Bool("v", false, "Log every epoch")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *valFrac < 0 || *valFrac >= 1 {
		return fmt.Errorf("-val must be in [0, 1), got %g", *valFrac)
	}

	inputs, targets, err := loadMNIST(*dataDir, *samples)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w\nexpected %s and %s (gunzipped) in %s",
				err, trainImagesFile, trainLabelsFile, *dataDir)
		}
		return err
	}
	held := int(float64(len(inputs)) * *valFrac)
	split := len(inputs) - held
	trainX, trainY := inputs[:split], targets[:split]
	valX, valY := inputs[split:], targets[split:]
	fmt.Fprintf(stdout, "train: %d samples, validation: %d samples\n", len(trainX), len(valX))

	net := newLeNet(*drop).WithLogger(newLogger(*verbose))
	fmt.Fprint(stdout, net.Structure())

	epoch := 0
	var batchErr float64
	var batches int
	cfg := network.TrainConfig{
		BatchSize:    *batch,
		Epochs:       *epochs,
		LearningRate: *lr,
		Momentum:     *momentum,
		WeightDecay:  *decay,
		OnBatch: func(e float64) bool {
			batchErr += e
			batches++
			return false
		},
		OnEpoch: func() bool {
			epoch++
			line := fmt.Sprintf("epoch %d: train error %.4f", epoch, batchErr/float64(batches))
			if len(valX) > 0 {
				acc, err := net.Accuracy(valX, valY)
				if err == nil {
					line += fmt.Sprintf(", validation accuracy %.2f%%", acc)
				}
			}
			fmt.Fprintln(stdout, line)
			batchErr, batches = 0, 0
			return false
		},
	}
	if err := net.Train(trainX, trainY, cfg); err != nil {
		return err
	}

	if len(valX) > 0 {
		table, err := net.Confusion(valX, valY)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\nconfusion (rows predicted, columns target):\n%v\n", mat.Formatted(table))
	}

	if *out == "" {
		return nil
	}
	if err := os.MkdirAll(*out, 0o750); err != nil {
		return err
	}
	if err := network.Save(*out, "lenet", net); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "parameters written to %s\n", *out)
	return nil
}
