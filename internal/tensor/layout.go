package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// NewMaps allocates one zeroed Height x Width map per depth channel.
func NewMaps(v Volume) []*mat.Dense {
	maps := make([]*mat.Dense, v.Depth)
	for d := range maps {
		maps[d] = mat.NewDense(v.Height, v.Width, nil)
	}
	return maps
}

// ToMaps splits a flat depth-major slice into per-channel maps.
//
// The values are copied; the returned maps never alias flat.
// Panics if len(flat) != v.Size().
func ToMaps(flat []float64, v Volume) []*mat.Dense {
	if len(flat) != v.Size() {
		panic(fmt.Sprintf("tensor.ToMaps: got %d values, volume %v needs %d", len(flat), v, v.Size()))
	}
	plane := v.Height * v.Width
	maps := make([]*mat.Dense, v.Depth)
	for d := range maps {
		data := make([]float64, plane)
		copy(data, flat[d*plane:(d+1)*plane])
		maps[d] = mat.NewDense(v.Height, v.Width, data)
	}
	return maps
}

// Flatten concatenates maps depth-major, row-major within each map.
func Flatten(maps []*mat.Dense) []float64 {
	n := 0
	for _, m := range maps {
		r, c := m.Dims()
		n += r * c
	}
	flat := make([]float64, 0, n)
	for _, m := range maps {
		raw := m.RawMatrix()
		for i := 0; i < raw.Rows; i++ {
			flat = append(flat, raw.Data[i*raw.Stride:i*raw.Stride+raw.Cols]...)
		}
	}
	return flat
}

// WritePadded copies a flat depth-major slice into the interior of padded
// maps, leaving the border cells untouched.
//
// Each destination map must be (h+2*padding) x (w+2*padding) where h*w is the
// per-channel plane of flat. Panics if the element counts disagree.
func WritePadded(dst []*mat.Dense, flat []float64, padding int) {
	if len(dst) == 0 {
		if len(flat) != 0 {
			panic("tensor.WritePadded: no destination maps")
		}
		return
	}
	rows, cols := dst[0].Dims()
	h, w := rows-2*padding, cols-2*padding
	if len(flat) != len(dst)*h*w {
		panic(fmt.Sprintf("tensor.WritePadded: got %d values, maps hold %d", len(flat), len(dst)*h*w))
	}
	idx := 0
	for _, m := range dst {
		raw := m.RawMatrix()
		for i := 0; i < h; i++ {
			row := (i + padding) * raw.Stride
			copy(raw.Data[row+padding:row+padding+w], flat[idx:idx+w])
			idx += w
		}
	}
}

// Crop returns a copy of m with padding cells removed from every border.
func Crop(m *mat.Dense, padding int) *mat.Dense {
	if padding == 0 {
		return mat.DenseCopyOf(m)
	}
	r, c := m.Dims()
	return mat.DenseCopyOf(m.Slice(padding, r-padding, padding, c-padding))
}
