// Package mask builds the binary occlusion masks of the inpainting task and
// applies them to image batches.
package mask

import (
	"fmt"
	"math"

	"github.com/ChizhovVadim/InpaintGAN/internal/ml"
)

// Mask is a binary H x W indicator. 1 marks a pixel to reconstruct.
type Mask struct {
	H, W int
	Data []float64
}

func New(h, w int) *Mask {
	return &Mask{
		H:    h,
		W:    w,
		Data: make([]float64, h*w),
	}
}

func (m *Mask) At(i, j int) float64 {
	return m.Data[i*m.W+j]
}

func (m *Mask) Set(i, j int, value float64) {
	m.Data[i*m.W+j] = value
}

func (m *Mask) Reset() {
	for i := range m.Data {
		m.Data[i] = 0
	}
}

// Ones returns the number of masked pixels.
func (m *Mask) Ones() int {
	var count int
	for _, v := range m.Data {
		if v == 1 {
			count++
		}
	}
	return count
}

func (m *Mask) Equal(other *Mask) bool {
	if m.H != other.H || m.W != other.W {
		return false
	}
	for i, v := range m.Data {
		if other.Data[i] != v {
			return false
		}
	}
	return true
}

// IShape rasterises itself into a mask.
type IShape interface {
	Draw(m *Mask)
}

// Circle marks (i-CX)^2 + (j-CY)^2 < R^2, i being the row.
type Circle struct {
	CX, CY, R float64
}

func (c Circle) Draw(m *Mask) {
	for i := 0; i < m.H; i++ {
		for j := 0; j < m.W; j++ {
			var di = float64(i) - c.CX
			var dj = float64(j) - c.CY
			if di*di+dj*dj < c.R*c.R {
				m.Set(i, j, 1)
			}
		}
	}
}

// Rect marks rows [X1, X2) and columns [Y1, Y2), clipped to the mask.
type Rect struct {
	X1, X2, Y1, Y2 int
}

func (r Rect) Draw(m *Mask) {
	for i := max(r.X1, 0); i < min(r.X2, m.H); i++ {
		for j := max(r.Y1, 0); j < min(r.Y2, m.W); j++ {
			m.Set(i, j, 1)
		}
	}
}

func FromShape(h, w int, shape IShape) *Mask {
	var m = New(h, w)
	shape.Draw(m)
	return m
}

// Apply writes src into dst and overwrites every channel of the masked
// pixels of sample n with fill, using masks[n].
func Apply(dst, src *ml.Tensor, masks []*Mask, fill float64) {
	if !dst.SameShape(src) {
		panic(fmt.Sprintf("mask: apply %v into %v", src.ShapeString(), dst.ShapeString()))
	}
	if len(masks) != src.N {
		panic(fmt.Sprintf("mask: %d masks for %d samples", len(masks), src.N))
	}
	copy(dst.Data, src.Data)
	for n, m := range masks {
		if m.H != src.H || m.W != src.W {
			panic(fmt.Sprintf("mask: %dx%d mask for %v images", m.H, m.W, src.ShapeString()))
		}
		for c := 0; c < dst.C; c++ {
			var plane = dst.Plane(n, c)
			for i, v := range m.Data {
				if v == 1 {
					plane[i] = fill
				}
			}
		}
	}
}

// OverlapWeights returns per-pixel loss weights: weight for masked pixels
// within overlap pixels of an unmasked one, 1 for the other masked pixels,
// 0 outside the mask. With weight 1 this is the mask itself.
func OverlapWeights(m *Mask, overlap int, weight float64) []float64 {
	var result = make([]float64, len(m.Data))
	copy(result, m.Data)
	if overlap <= 0 || weight == 1 {
		return result
	}
	for i := 0; i < m.H; i++ {
		for j := 0; j < m.W; j++ {
			if m.At(i, j) != 1 {
				continue
			}
			if nearUnmasked(m, i, j, overlap) {
				result[i*m.W+j] = weight
			}
		}
	}
	return result
}

func nearUnmasked(m *Mask, i, j, overlap int) bool {
	for di := -overlap; di <= overlap; di++ {
		var y = i + di
		if y < 0 || y >= m.H {
			continue
		}
		for dj := -overlap; dj <= overlap; dj++ {
			var x = j + dj
			if x < 0 || x >= m.W {
				continue
			}
			if m.At(y, x) != 1 {
				return true
			}
		}
	}
	return false
}

// scale maps a coordinate defined on a 128 pixel image onto size.
func scale(coord, size int) int {
	return int(math.Round(float64(coord) * float64(size) / referenceSize))
}
