package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/convnet/network"
	"github.com/born-ml/convnet/nn"
	"gonum.org/v1/gonum/floats"
)

const (
	digitSize = 28
	classes   = 10
)

// lenetTable wires the 6 first-stage maps to the 16 second-stage maps.
// Row id, column od; index id*16+od.
var lenetTable = []int{
	1, 0, 0, 0, 1, 1, 1, 0, 0, 1, 1, 1, 1, 0, 1, 1,
	1, 1, 0, 0, 0, 1, 1, 1, 0, 0, 1, 1, 1, 1, 0, 1,
	1, 1, 1, 0, 0, 0, 1, 1, 1, 0, 0, 1, 0, 1, 1, 1,
	0, 1, 1, 1, 0, 0, 1, 1, 1, 1, 0, 0, 1, 0, 1, 1,
	0, 0, 1, 1, 1, 0, 0, 1, 1, 1, 1, 0, 1, 1, 0, 1,
	0, 0, 0, 1, 1, 1, 0, 0, 1, 1, 1, 1, 0, 1, 1, 1,
}

// newLeNet builds a LeNet-5 style classifier for 28x28 grey images:
//
//	conv 5x5 (pad 2) -> 28x28x6 -> max pool -> 14x14x6
//	conv 5x5 (table) -> 10x10x16 -> max pool -> 5x5x16
//	maxout merge     -> 5x5x8
//	drop-out fc 200->120, fc 120->84, softmax 84->10
func newLeNet(dropProb float64) *network.Network {
	return network.New(nn.MultiClassCrossEntropy,
		nn.NewConvolutional(nn.ConvolutionalConfig{
			InHeight: digitSize, InWidth: digitSize, InDepth: 1,
			KernelSize: 5, OutDepth: 6, Padding: 2, Activation: nn.Tanh,
		}, nn.Named("c1")),
		nn.NewPooling(nn.PoolingConfig{InHeight: 28, InWidth: 28, InDepth: 6}, nn.Named("s2")),
		nn.NewConvolutional(nn.ConvolutionalConfig{
			InHeight: 14, InWidth: 14, InDepth: 6,
			KernelSize: 5, OutDepth: 16, Activation: nn.Tanh,
			ConnectionTable: lenetTable,
		}, nn.Named("c3")),
		nn.NewPooling(nn.PoolingConfig{InHeight: 10, InWidth: 10, InDepth: 16}, nn.Named("s4")),
		nn.NewElementWise(nn.ElementWiseConfig{InHeight: 5, InWidth: 5, InDepth: 16}, nn.Named("m5")),
		nn.NewDropOut(5*5*8, 120, nn.Tanh, dropProb, nn.Named("f6")),
		nn.NewFullyConnected(120, 84, nn.Tanh, nn.Named("f7")),
		nn.NewSoftmax(84, classes, nn.Named("out")),
	)
}

// syntheticDigit draws a "7" on a blank 28x28 canvas.
func syntheticDigit() []float64 {
	img := make([]float64, digitSize*digitSize)
	for x := 7; x <= 20; x++ {
		img[6*digitSize+x] = 1
	}
	for y := 7; y <= 22; y++ {
		x := 20 - (y-7)*8/15
		img[y*digitSize+x] = 1
	}
	return img
}

func runLeNet(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("lenet", flag.ContinueOnError)
	drop := fs.Float64("drop", 0.5, "Drop-out probability of the first fully-connected layer")
	out := fs.String("out", "", "Directory to write the initial parameters to")
	verbose := fs.Bool("v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	net := newLeNet(*drop).WithLogger(newLogger(*verbose))
	fmt.Fprint(stdout, net.Structure())

	if warnings := net.Check(); len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(stdout, w)
		}
		return fmt.Errorf("%d structure mismatches", len(warnings))
	}
	fmt.Fprintln(stdout, "\nstructure consistent")

	y, err := net.Prediction(syntheticDigit())
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "prediction: %.4f\n", y)
	fmt.Fprintf(stdout, "class: %d (untrained)\n", floats.MaxIdx(y))

	if *out == "" {
		return nil
	}
	if err := os.MkdirAll(*out, 0o750); err != nil {
		return err
	}
	return network.Save(*out, "lenet", net)
}
