package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// IDX magic numbers.
const (
	idxImagesMagic = 2051
	idxLabelsMagic = 2049
)

// MNIST file names inside the data directory.
const (
	trainImagesFile = "train-images-idx3-ubyte"
	trainLabelsFile = "train-labels-idx1-ubyte"
)

// readIDXImages reads at most limit images (0 = all) in IDX format and
// scales the pixels to [0, 1].
//
//	magic number: 0x00000803 (2051)
//	number of images, rows, cols: 4 bytes each, big-endian
//	pixel data: unsigned bytes (0-255)
func readIDXImages(r io.Reader, limit int) (images [][]float64, rows, cols int, err error) {
	var header struct{ Magic, Count, Rows, Cols uint32 }
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to read header: %w", err)
	}
	if header.Magic != idxImagesMagic {
		return nil, 0, 0, fmt.Errorf("invalid magic number: got %d, want %d", header.Magic, idxImagesMagic)
	}

	n := capped(int(header.Count), limit)
	rows, cols = int(header.Rows), int(header.Cols)
	buf := make([]byte, rows*cols)
	images = make([][]float64, n)
	for i := range images {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, 0, 0, fmt.Errorf("failed to read image %d: %w", i, err)
		}
		img := make([]float64, len(buf))
		for j, p := range buf {
			img[j] = float64(p) / 255
		}
		images[i] = img
	}
	return images, rows, cols, nil
}

// readIDXLabels reads at most limit labels (0 = all) in IDX format.
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes, big-endian
//	label data: unsigned bytes (0-9)
func readIDXLabels(r io.Reader, limit int) ([]byte, error) {
	var header struct{ Magic, Count uint32 }
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if header.Magic != idxLabelsMagic {
		return nil, fmt.Errorf("invalid magic number: got %d, want %d", header.Magic, idxLabelsMagic)
	}

	labels := make([]byte, capped(int(header.Count), limit))
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	for i, l := range labels {
		if l >= classes {
			return nil, fmt.Errorf("label %d out of range [0, %d): %d", i, classes, l)
		}
	}
	return labels, nil
}

func capped(n, limit int) int {
	if limit > 0 && limit < n {
		return limit
	}
	return n
}

// oneHot encodes a class label as a target vector.
func oneHot(label byte) []float64 {
	t := make([]float64, classes)
	t[label] = 1
	return t
}

// loadMNIST reads the training images and labels from dir as network
// inputs and one-hot targets.
func loadMNIST(dir string, limit int) (inputs, targets [][]float64, err error) {
	//nolint:gosec // G304: data directory comes from the command line
	imgFile, err := os.Open(filepath.Join(dir, trainImagesFile))
	if err != nil {
		return nil, nil, err
	}
	defer imgFile.Close()
	inputs, rows, cols, err := readIDXImages(bufio.NewReader(imgFile), limit)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", trainImagesFile, err)
	}
	if rows != digitSize || cols != digitSize {
		return nil, nil, fmt.Errorf("%s: images are %dx%d, want %dx%d", trainImagesFile, rows, cols, digitSize, digitSize)
	}

	//nolint:gosec // G304: data directory comes from the command line
	lblFile, err := os.Open(filepath.Join(dir, trainLabelsFile))
	if err != nil {
		return nil, nil, err
	}
	defer lblFile.Close()
	labels, err := readIDXLabels(bufio.NewReader(lblFile), limit)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", trainLabelsFile, err)
	}
	if len(labels) != len(inputs) {
		return nil, nil, fmt.Errorf("%d images but %d labels", len(inputs), len(labels))
	}

	targets = make([][]float64, len(labels))
	for i, l := range labels {
		targets[i] = oneHot(l)
	}
	return inputs, targets, nil
}
