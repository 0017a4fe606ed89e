package nn

import (
	"fmt"
	"math"
)

// Loss is a per-output error function. F(y, t) is the scalar error of output
// y against target t and Df(y, t) its derivative with respect to y.
//
// All built-in losses report Df = y - t. For the cross-entropy losses this is
// the derivative with respect to the logit, which is only correct when the
// output layer is Softmax (multi-class) or sigmoid-activated (binary).
type Loss struct {
	F    func(y, t float64) float64
	Df   func(y, t float64) float64
	Name string
}

// Type returns the loss name.
func (l Loss) Type() string { return l.Name }

// MSE is the halved squared error: (y-t)²/2.
var MSE = Loss{
	F: func(y, t float64) float64 {
		d := y - t
		return d * d / 2
	},
	Df:   residual,
	Name: "MSE",
}

// MultiClassCrossEntropy is -t·ln(y), zero when the target is 0 or the
// output already matches it. Pair with Softmax.
var MultiClassCrossEntropy = Loss{
	F: func(y, t float64) float64 {
		if y == t || t == 0 {
			return 0
		}
		return -t * math.Log(y)
	},
	Df:   residual,
	Name: "MultiClassCrossEntropy",
}

// BinaryCrossEntropy is -(t·ln(y) + (1-t)·ln(1-y)), zero when the output
// already matches the target.
var BinaryCrossEntropy = Loss{
	F: func(y, t float64) float64 {
		if y == t {
			return 0
		}
		return -(t*math.Log(y) + (1-t)*math.Log(1-y))
	},
	Df:   residual,
	Name: "BinaryCrossEntropy",
}

func residual(y, t float64) float64 { return y - t }

// LossByName looks up a built-in loss by its Type string.
func LossByName(name string) (Loss, error) {
	for _, l := range []Loss{MSE, MultiClassCrossEntropy, BinaryCrossEntropy} {
		if l.Name == name {
			return l, nil
		}
	}
	return Loss{}, fmt.Errorf("nn: unknown loss %q", name)
}
