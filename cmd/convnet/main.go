// Package main provides the convnet CLI.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/born-ml/convnet/nn"
)

const version = "v0.1.0"

type command struct {
	name  string
	usage string
	run   func(args []string, stdout io.Writer) error
}

var commands = []command{
	{"version", "Show version", func(_ []string, w io.Writer) error {
		fmt.Fprintf(w, "convnet %s\n", version)
		return nil
	}},
	{"xor", "Train a 2-3-1 network on XOR", runXOR},
	{"lenet", "Build a LeNet-style network and run one prediction", runLeNet},
	{"mnist", "Train the LeNet-style network on MNIST IDX files", runMNIST},
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stdout)
		return
	}
	for _, c := range commands {
		if c.name != os.Args[1] {
			continue
		}
		if err := c.run(os.Args[2:], os.Stdout); err != nil {
			if !errors.Is(err, flag.ErrHelp) {
				fmt.Fprintf(os.Stderr, "convnet %s: %v\n", c.name, err)
			}
			os.Exit(1)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "convnet: unknown command %q\n\n", os.Args[1])
	usage(os.Stderr)
	os.Exit(2)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "convnet - feed-forward convolutional networks in Go")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.usage)
	}
}

// newLogger installs a text logger on stderr for both the layers and the
// caller's network.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	nn.SetLogger(l)
	return l
}
