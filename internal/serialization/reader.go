package serialization

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/born-ml/convnet/internal/nn"
	"github.com/born-ml/convnet/internal/tensor"
)

// maxLineSize bounds a single value row.
const maxLineSize = 64 * 1024 * 1024

// Reader reads consecutive blocks from a stream.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader creates a block reader.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{sc: sc}
}

// next returns the next non-blank line, trimmed.
func (r *Reader) next() (string, error) {
	for r.sc.Scan() {
		r.line++
		if s := strings.TrimSpace(r.sc.Text()); s != "" {
			return s, nil
		}
	}
	if err := r.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// ReadBlock reads the next block. It returns io.EOF when the stream holds no
// further blocks.
func (r *Reader) ReadBlock() (Block, error) {
	tag, err := r.next()
	if err != nil {
		return Block{}, err
	}
	if !validTag(tag) {
		return Block{}, &FormatError{Line: r.line, Err: ErrInvalidTag, Details: fmt.Sprintf("%q", tag)}
	}
	b := Block{Tag: tag}

	line, err := r.next()
	if err != nil {
		return Block{}, r.truncated(b, err)
	}
	fields := strings.Fields(line)
	if len(fields) == 0 || len(fields) > MaxDims {
		return Block{}, &FormatError{Line: r.line, Tag: tag, Err: ErrInvalidDims, Details: fmt.Sprintf("rank %d", len(fields))}
	}
	for _, f := range fields {
		d, err := strconv.Atoi(f)
		if err != nil || d <= 0 {
			return Block{}, &FormatError{Line: r.line, Tag: tag, Err: ErrInvalidDims, Details: fmt.Sprintf("%q", f)}
		}
		b.Dims = append(b.Dims, d)
	}

	want := tensor.Shape(b.Dims).NumElements()
	b.Values = make([]float64, 0, want)
	for len(b.Values) < want {
		line, err := r.next()
		if err != nil {
			return Block{}, r.truncated(b, err)
		}
		fields := strings.Fields(line)
		if len(b.Values)+len(fields) > want {
			return Block{}, &FormatError{
				Line: r.line, Tag: tag, Err: ErrValueCount,
				Details: fmt.Sprintf("dims %v need %d values", b.Dims, want),
			}
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return Block{}, &FormatError{Line: r.line, Tag: tag, Err: err}
			}
			b.Values = append(b.Values, v)
		}
	}
	return b, nil
}

func (r *Reader) truncated(b Block, err error) error {
	if !errors.Is(err, io.EOF) {
		return err
	}
	return &FormatError{
		Line: r.line, Tag: b.Tag, Err: ErrValueCount,
		Details: fmt.Sprintf("unexpected end of input after %d values", len(b.Values)),
	}
}

// ReadBlock reads a single block from r.
func ReadBlock(r io.Reader) (Block, error) {
	return NewReader(r).ReadBlock()
}

// expect checks a block read for a layer parameter.
func expect(b Block, tag string, dims []int) error {
	if b.Tag != tag {
		return &FormatError{Tag: b.Tag, Err: ErrInvalidTag, Details: fmt.Sprintf("want %s", tag)}
	}
	if !tensor.Shape(b.Dims).Equal(dims) {
		return &FormatError{Tag: b.Tag, Err: ErrInvalidDims, Details: fmt.Sprintf("got %v, want %v", b.Dims, dims)}
	}
	return nil
}

// apply checks both blocks against l and installs them.
func apply(l nn.Layer, weights, biases Block) error {
	want, _ := Blocks(l)
	if err := expect(weights, want.Tag, want.Dims); err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	_, bs := l.ParameterShapes()
	if err := expect(biases, TagBiases, bs); err != nil {
		return fmt.Errorf("biases: %w", err)
	}
	if err := l.SetWeights(weights.Values); err != nil {
		return err
	}
	return l.SetBiases(biases.Values)
}

// LoadLayer reads a weight block and a bias block from r into l. The blocks
// must match the layer's parameter shapes. Layers without parameters read
// nothing.
func LoadLayer(r io.Reader, l nn.Layer) error {
	if ws, _ := l.ParameterShapes(); ws == nil {
		return nil
	}
	br := NewReader(r)
	weights, err := br.ReadBlock()
	if err != nil {
		return fmt.Errorf("read weights: %w", err)
	}
	biases, err := br.ReadBlock()
	if err != nil {
		return fmt.Errorf("read biases: %w", err)
	}
	return apply(l, weights, biases)
}

// LoadNetwork reads the files written by SaveNetwork back into net.
func LoadNetwork(dir, prefix string, net LayerSet) error {
	for i, l := range net.Layers() {
		if ws, _ := l.ParameterShapes(); ws == nil {
			continue
		}
		wname, bname := FileNames(prefix, i, l)
		weights, err := readFile(filepath.Join(dir, wname))
		if err != nil {
			return fmt.Errorf("layer %d: %w", i+1, err)
		}
		biases, err := readFile(filepath.Join(dir, bname))
		if err != nil {
			return fmt.Errorf("layer %d: %w", i+1, err)
		}
		if err := apply(l, weights, biases); err != nil {
			return fmt.Errorf("layer %d: %w", i+1, err)
		}
	}
	return nil
}

func readFile(path string) (Block, error) {
	//nolint:gosec // G304: parameter paths come from the caller
	f, err := os.Open(path)
	if err != nil {
		return Block{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return ReadBlock(f)
}
