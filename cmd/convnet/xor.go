package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/convnet/network"
	"github.com/born-ml/convnet/nn"
)

var (
	xorInputs  = [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	xorTargets = [][]float64{{0}, {1}, {1}, {0}}
)

func runXOR(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("xor", flag.ContinueOnError)
	epochs := fs.Int("epochs", 5000, "Number of training epochs")
	lr := fs.Float64("lr", 0.1, "Base learning rate")
	momentum := fs.Float64("momentum", 0.5, "Momentum factor")
	decay := fs.Float64("decay", 0, "L2 weight decay")
	batch := fs.Int("batch", 1, "Batch size (1 = online, 0 = full batch)")
	out := fs.String("out", "", "Directory to write the trained parameters to")
	verbose := fs.Bool("v", false, "Log every epoch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	net := network.New(nn.MSE,
		nn.NewFullyConnected(2, 3, nn.Tanh, nn.Named("hidden")),
		nn.NewFullyConnected(3, 1, nn.Sigmoid, nn.Named("out")),
	).WithLogger(newLogger(*verbose))

	fmt.Fprint(stdout, net.Structure())

	cfg := network.TrainConfig{
		BatchSize:    *batch,
		Epochs:       *epochs,
		LearningRate: *lr,
		Momentum:     *momentum,
		WeightDecay:  *decay,
	}
	if err := net.Train(xorInputs, xorTargets, cfg); err != nil {
		return err
	}

	loss, err := net.Evaluate(xorInputs, xorTargets)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "\nerror: %.6f\n", loss)
	for i, x := range xorInputs {
		y, err := net.Prediction(x)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%v -> %.4f (want %g)\n", x, y[0], xorTargets[i][0])
	}

	if *out == "" {
		return nil
	}
	if err := os.MkdirAll(*out, 0o750); err != nil {
		return err
	}
	if err := network.Save(*out, "xor", net); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "parameters written to %s\n", *out)
	return nil
}
