package serialization

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/born-ml/convnet/internal/nn"
)

// WriteBlock writes one block followed by a blank line.
func WriteBlock(w io.Writer, b Block) error {
	if err := b.validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)

	bw.WriteString(b.Tag)
	bw.WriteByte('\n')
	for i, d := range b.Dims {
		if i > 0 {
			bw.WriteByte('\t')
		}
		bw.WriteString(strconv.Itoa(d))
	}
	bw.WriteByte('\n')

	width, slice := b.rowWidth(), b.sliceLen()
	buf := make([]byte, 0, 32)
	for i, v := range b.Values {
		if i%width != 0 {
			bw.WriteByte('\t')
		}
		buf = strconv.AppendFloat(buf[:0], v, 'g', -1, 64)
		bw.Write(buf)
		if (i+1)%width == 0 {
			bw.WriteByte('\n')
		}
		if slice > 0 && (i+1)%slice == 0 {
			bw.WriteByte('\n')
		}
	}
	if slice == 0 {
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Blocks returns the weight and bias blocks of a layer. Layers without
// parameters return nil blocks.
func Blocks(l nn.Layer) (weights, biases *Block) {
	ws, bs := l.ParameterShapes()
	if ws == nil {
		return nil, nil
	}
	tag := TagWeights
	if len(ws) == MaxDims {
		tag = TagKernels
	}
	return &Block{Tag: tag, Dims: ws, Values: l.Weights()},
		&Block{Tag: TagBiases, Dims: bs, Values: l.Biases()}
}

// WriteLayer writes the weight block and then the bias block of l.
// Layers without parameters write nothing.
func WriteLayer(w io.Writer, l nn.Layer) error {
	weights, biases := Blocks(l)
	if weights == nil {
		return nil
	}
	if err := WriteBlock(w, *weights); err != nil {
		return fmt.Errorf("write weights: %w", err)
	}
	if err := WriteBlock(w, *biases); err != nil {
		return fmt.Errorf("write biases: %w", err)
	}
	return nil
}

// LayerSet is anything that exposes an ordered chain of layers.
type LayerSet interface {
	Layers() []nn.Layer
}

// FileNames returns the weight and bias file names for the i-th layer
// (0-based). Named layers use their name, others their 1-based position.
func FileNames(prefix string, i int, l nn.Layer) (weights, biases string) {
	key := l.Name()
	if key == "" {
		key = strconv.Itoa(i + 1)
	}
	return fmt.Sprintf("%s_weight_%s.txt", prefix, key), fmt.Sprintf("%s_biase_%s.txt", prefix, key)
}

// SaveNetwork writes one weight file and one bias file into dir for every
// layer with parameters.
func SaveNetwork(dir, prefix string, net LayerSet) error {
	for i, l := range net.Layers() {
		weights, biases := Blocks(l)
		if weights == nil {
			continue
		}
		wname, bname := FileNames(prefix, i, l)
		if err := writeFile(filepath.Join(dir, wname), *weights); err != nil {
			return fmt.Errorf("layer %d: %w", i+1, err)
		}
		if err := writeFile(filepath.Join(dir, bname), *biases); err != nil {
			return fmt.Errorf("layer %d: %w", i+1, err)
		}
	}
	return nil
}

func writeFile(path string, b Block) (err error) {
	//nolint:gosec // G304: parameter paths come from the caller
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteBlock(f, b)
}
