// Package serialization reads and writes layer parameters as plain text.
//
// A file holds one or more blocks. Each block is a tag line, a dims line and
// the values:
//
//	#Weights
//	2	3
//	0.1	-0.25	0.3
//	0.05	0.2	-0.4
//
// Tags are #Weights (fully-connected and Maxout weights, [in out]),
// #Kernels (convolution kernels, [pairs K K]) and #Biases. Dims are 1 to 3
// tab-separated positive integers. Values are tab-separated, one line per
// row of the innermost two dimensions; 3D blocks end each depth slice with a
// blank line. Numbers use the shortest representation that reads back to the
// same float64.
//
// Example usage:
//
//	// Save every layer of a network
//	if err := serialization.SaveNetwork("params", "xor", net); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Restore into a network with the same structure
//	if err := serialization.LoadNetwork("params", "xor", net); err != nil {
//	    log.Fatal(err)
//	}
package serialization
