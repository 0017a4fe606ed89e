package network

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Evaluate returns the total loss of the dataset in inference mode.
func (n *Network) Evaluate(inputs, targets [][]float64) (float64, error) {
	if err := n.validateDataset(inputs, targets); err != nil {
		return 0, err
	}
	var total float64
	for i, x := range inputs {
		y, err := n.Prediction(x)
		if err != nil {
			return 0, err
		}
		for j, v := range y {
			total += n.loss.F(v, targets[i][j])
		}
	}
	return total, nil
}

// Confusion tallies inference-mode classifications. Entry (p, t) counts the
// samples predicted as class p whose target class is t, where a class is the
// index of the largest output or target component.
func (n *Network) Confusion(inputs, targets [][]float64) (*mat.Dense, error) {
	if err := n.validateDataset(inputs, targets); err != nil {
		return nil, err
	}
	classes := n.layers[len(n.layers)-1].OutputSize()
	table := mat.NewDense(classes, classes, nil)
	for i, x := range inputs {
		y, err := n.Prediction(x)
		if err != nil {
			return nil, err
		}
		p, t := floats.MaxIdx(y), floats.MaxIdx(targets[i])
		table.Set(p, t, table.At(p, t)+1)
	}
	return table, nil
}

// Accuracy returns the percentage of samples whose predicted class matches
// the target class.
func (n *Network) Accuracy(inputs, targets [][]float64) (float64, error) {
	table, err := n.Confusion(inputs, targets)
	if err != nil {
		return 0, err
	}
	return mat.Trace(table) / float64(len(inputs)) * 100, nil
}
