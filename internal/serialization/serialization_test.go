package serialization_test

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/born-ml/convnet/internal/network"
	"github.com/born-ml/convnet/internal/nn"
	"github.com/born-ml/convnet/internal/serialization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBlock_Layout(t *testing.T) {
	tests := []struct {
		name  string
		block serialization.Block
		want  string
	}{
		{
			name:  "weights",
			block: serialization.Block{Tag: "#Weights", Dims: []int{2, 3}, Values: []float64{0.1, -0.25, 0.3, 0.05, 0.2, -0.4}},
			want:  "#Weights\n2\t3\n0.1\t-0.25\t0.3\n0.05\t0.2\t-0.4\n\n",
		},
		{
			name:  "kernels",
			block: serialization.Block{Tag: "#Kernels", Dims: []int{2, 1, 2}, Values: []float64{1, 2, 3, 4}},
			want:  "#Kernels\n2\t1\t2\n1\t2\n\n3\t4\n\n",
		},
		{
			name:  "biases",
			block: serialization.Block{Tag: "#Biases", Dims: []int{3}, Values: []float64{1, 2.5, -3}},
			want:  "#Biases\n3\n1\t2.5\t-3\n\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, serialization.WriteBlock(&buf, tt.block))
			assert.Equal(t, tt.want, buf.String())

			got, err := serialization.ReadBlock(&buf)
			require.NoError(t, err)
			assert.Equal(t, tt.block, got)
		})
	}
}

func TestBlock_ExactRoundTrip(t *testing.T) {
	values := []float64{1.0 / 3, -2.0 / 7, math.Pi, 1e-300, -math.MaxFloat64, math.SmallestNonzeroFloat64}
	var buf bytes.Buffer
	require.NoError(t, serialization.WriteBlock(&buf, serialization.Block{Tag: "#Biases", Dims: []int{6}, Values: values}))

	got, err := serialization.ReadBlock(&buf)
	require.NoError(t, err)
	assert.Equal(t, values, got.Values)
}

func TestWriteBlock_Invalid(t *testing.T) {
	var buf bytes.Buffer
	err := serialization.WriteBlock(&buf, serialization.Block{Tag: "#Gradients", Dims: []int{1}, Values: []float64{1}})
	assert.ErrorIs(t, err, serialization.ErrInvalidTag)

	err = serialization.WriteBlock(&buf, serialization.Block{Tag: "#Weights", Dims: []int{1, 1, 1, 1}, Values: []float64{1}})
	assert.ErrorIs(t, err, serialization.ErrInvalidDims)

	err = serialization.WriteBlock(&buf, serialization.Block{Tag: "#Weights", Dims: []int{2, 0}})
	assert.ErrorIs(t, err, serialization.ErrInvalidDims)

	err = serialization.WriteBlock(&buf, serialization.Block{Tag: "#Weights", Dims: []int{2, 2}, Values: []float64{1, 2, 3}})
	assert.ErrorIs(t, err, serialization.ErrValueCount)
	assert.Zero(t, buf.Len())
}

func TestReadBlock_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"unknown tag", "#Foo\n1\n1\n", serialization.ErrInvalidTag},
		{"bad dims", "#Biases\nx\n1\n", serialization.ErrInvalidDims},
		{"zero dim", "#Biases\n0\n", serialization.ErrInvalidDims},
		{"rank four", "#Weights\n1\t1\t1\t1\n1\n", serialization.ErrInvalidDims},
		{"too few values", "#Biases\n3\n1\t2\n", serialization.ErrValueCount},
		{"too many values", "#Biases\n2\n1\t2\t3\n", serialization.ErrValueCount},
		{"missing dims", "#Biases\n", serialization.ErrValueCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := serialization.ReadBlock(strings.NewReader(tt.input))
			require.ErrorIs(t, err, tt.want)

			var fe *serialization.FormatError
			require.ErrorAs(t, err, &fe)
			assert.Positive(t, fe.Line)
		})
	}

	_, err := serialization.ReadBlock(strings.NewReader("#Biases\n1\nabc\n"))
	var fe *serialization.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 3, fe.Line)
	assert.Contains(t, err.Error(), "line 3: #Biases")
}

func TestReader_Sequence(t *testing.T) {
	r := serialization.NewReader(strings.NewReader("\n#Weights\n1\t2\n1\t2\n\n\n#Biases\n2\n3 4\n"))

	w, err := r.ReadBlock()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, w.Values)

	b, err := r.ReadBlock()
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, b.Values)

	_, err = r.ReadBlock()
	assert.True(t, errors.Is(err, io.EOF))
}

func TestLayerRoundTrip(t *testing.T) {
	layers := map[string]func() nn.Layer{
		"fully-connected": func() nn.Layer { return nn.NewFullyConnected(3, 2, nn.Tanh) },
		"maxout":          func() nn.Layer { return nn.NewMaxout(3, 2) },
		"convolutional": func() nn.Layer {
			return nn.NewConvolutional(nn.ConvolutionalConfig{InHeight: 4, InWidth: 4, InDepth: 2, OutDepth: 3})
		},
	}
	for name, mk := range layers {
		t.Run(name, func(t *testing.T) {
			src, dst := mk(), mk()

			var buf bytes.Buffer
			require.NoError(t, serialization.WriteLayer(&buf, src))
			require.NoError(t, serialization.LoadLayer(&buf, dst))

			assert.Equal(t, src.Weights(), dst.Weights())
			assert.Equal(t, src.Biases(), dst.Biases())
		})
	}
}

func TestWriteLayer_KernelTag(t *testing.T) {
	conv := nn.NewConvolutional(nn.ConvolutionalConfig{InHeight: 3, InWidth: 3, InDepth: 1, OutDepth: 2})
	var buf bytes.Buffer
	require.NoError(t, serialization.WriteLayer(&buf, conv))
	assert.True(t, strings.HasPrefix(buf.String(), "#Kernels\n2\t3\t3\n"))
}

func TestLoadLayer_ShapeMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, serialization.WriteLayer(&buf, nn.NewFullyConnected(3, 2, nn.Identity)))

	dst := nn.NewFullyConnected(2, 3, nn.Identity)
	before := dst.Weights()
	err := serialization.LoadLayer(&buf, dst)
	assert.ErrorIs(t, err, serialization.ErrInvalidDims)
	assert.Equal(t, before, dst.Weights())

	buf.Reset()
	require.NoError(t, serialization.WriteLayer(&buf, nn.NewFullyConnected(2, 3, nn.Identity)))
	conv := nn.NewConvolutional(nn.ConvolutionalConfig{InHeight: 3, InWidth: 3, InDepth: 2, OutDepth: 3})
	assert.ErrorIs(t, serialization.LoadLayer(&buf, conv), serialization.ErrInvalidTag)
}

func TestWeightlessLayer(t *testing.T) {
	pool := nn.NewPooling(nn.PoolingConfig{InHeight: 2, InWidth: 2, InDepth: 1})
	var buf bytes.Buffer
	require.NoError(t, serialization.WriteLayer(&buf, pool))
	assert.Zero(t, buf.Len())
	require.NoError(t, serialization.LoadLayer(&buf, pool))
}

func buildNet() *network.Network {
	return network.New(nn.MultiClassCrossEntropy,
		nn.NewConvolutional(nn.ConvolutionalConfig{
			InHeight: 4, InWidth: 4, InDepth: 2, OutDepth: 2, Padding: 1,
			ConnectionTable: []int{1, 0, 1, 1},
		}),
		nn.NewPooling(nn.PoolingConfig{InHeight: 4, InWidth: 4, InDepth: 2}),
		nn.NewFullyConnected(8, 3, nn.Tanh, nn.Named("hidden")),
		nn.NewSoftmax(3, 3, nn.Named("out")),
	)
}

func TestNetworkRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src, dst := buildNet(), buildNet()

	require.NoError(t, serialization.SaveNetwork(dir, "lenet", src))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{
		"lenet_weight_1.txt", "lenet_biase_1.txt",
		"lenet_weight_hidden.txt", "lenet_biase_hidden.txt",
		"lenet_weight_out.txt", "lenet_biase_out.txt",
	}, names)

	require.NoError(t, serialization.LoadNetwork(dir, "lenet", dst))

	x := make([]float64, 32)
	for i := range x {
		x[i] = float64(i%7) / 7
	}
	want, err := src.Prediction(x)
	require.NoError(t, err)
	got, err := dst.Prediction(x)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadNetwork_MissingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, serialization.SaveNetwork(dir, "p", buildNet()))
	require.NoError(t, os.Remove(filepath.Join(dir, "p_biase_hidden.txt")))

	err := serialization.LoadNetwork(dir, "p", buildNet())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "layer 3")
}
