package nn

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Sliding-window kernels over contiguous maps. Output cell (oh, ow) reads the
// window whose top-left corner is (oh*stride, ow*stride) in the source map.

// correlateAdd adds the valid cross-correlation of src with k into dst.
func correlateAdd(dst, src, k *mat.Dense, stride int) {
	d, s, kr := dst.RawMatrix(), src.RawMatrix(), k.RawMatrix()
	for oh := 0; oh < d.Rows; oh++ {
		for ow := 0; ow < d.Cols; ow++ {
			var sum float64
			for u := 0; u < kr.Rows; u++ {
				at := (oh*stride+u)*s.Stride + ow*stride
				sum += floats.Dot(s.Data[at:at+kr.Cols], kr.Data[u*kr.Stride:u*kr.Stride+kr.Cols])
			}
			d.Data[oh*d.Stride+ow] += sum
		}
	}
}

// kernelGradAdd adds Σ delta[oh,ow]·window(oh,ow) of src into dk.
func kernelGradAdd(dk, src, delta *mat.Dense, stride int) {
	g, s, dl := dk.RawMatrix(), src.RawMatrix(), delta.RawMatrix()
	for oh := 0; oh < dl.Rows; oh++ {
		for ow := 0; ow < dl.Cols; ow++ {
			dv := dl.Data[oh*dl.Stride+ow]
			if dv == 0 {
				continue
			}
			for u := 0; u < g.Rows; u++ {
				at := (oh*stride+u)*s.Stride + ow*stride
				floats.AddScaled(g.Data[u*g.Stride:u*g.Stride+g.Cols], dv, s.Data[at:at+g.Cols])
			}
		}
	}
}

// scatterAdd adds delta[oh,ow]·k into window(oh,ow) of dst.
func scatterAdd(dst, k, delta *mat.Dense, stride int) {
	d, kr, dl := dst.RawMatrix(), k.RawMatrix(), delta.RawMatrix()
	for oh := 0; oh < dl.Rows; oh++ {
		for ow := 0; ow < dl.Cols; ow++ {
			dv := dl.Data[oh*dl.Stride+ow]
			if dv == 0 {
				continue
			}
			for u := 0; u < kr.Rows; u++ {
				at := (oh*stride+u)*d.Stride + ow*stride
				floats.AddScaled(d.Data[at:at+kr.Cols], dv, kr.Data[u*kr.Stride:u*kr.Stride+kr.Cols])
			}
		}
	}
}

// window returns the size x size view of m at output cell (oh, ow).
func window(m *mat.Dense, oh, ow, size, stride int) *mat.Dense {
	return m.Slice(oh*stride, oh*stride+size, ow*stride, ow*stride+size).(*mat.Dense)
}
