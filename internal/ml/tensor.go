package ml

import "fmt"

// Tensor is a dense NCHW batch of images or feature maps.
type Tensor struct {
	N, C, H, W int
	Data       []float64
}

func NewTensor(n, c, h, w int) *Tensor {
	return &Tensor{
		N:    n,
		C:    c,
		H:    h,
		W:    w,
		Data: make([]float64, n*c*h*w),
	}
}

func (t *Tensor) SampleSize() int {
	return t.C * t.H * t.W
}

func (t *Tensor) Len() int {
	return len(t.Data)
}

// Sample returns the storage of the i-th item of the batch.
func (t *Tensor) Sample(i int) []float64 {
	var size = t.SampleSize()
	return t.Data[i*size : (i+1)*size]
}

// Plane returns channel c of sample i.
func (t *Tensor) Plane(i, c int) []float64 {
	var size = t.H * t.W
	var offset = (i*t.C + c) * size
	return t.Data[offset : offset+size]
}

func (t *Tensor) SameShape(other *Tensor) bool {
	return t.N == other.N && t.C == other.C && t.H == other.H && t.W == other.W
}

func (t *Tensor) ShapeString() string {
	return fmt.Sprintf("[%d %d %d %d]", t.N, t.C, t.H, t.W)
}

func (t *Tensor) Fill(value float64) {
	for i := range t.Data {
		t.Data[i] = value
	}
}

func (t *Tensor) Clone() *Tensor {
	var result = NewTensor(t.N, t.C, t.H, t.W)
	copy(result.Data, t.Data)
	return result
}

// reuse returns t when it already has the requested shape, a new tensor otherwise.
// Layers keep their output buffers between calls this way.
func reuse(t *Tensor, n, c, h, w int) *Tensor {
	if t != nil && t.N == n && t.C == c && t.H == h && t.W == w {
		return t
	}
	return NewTensor(n, c, h, w)
}

func resize(data []float64, size int) []float64 {
	if cap(data) < size {
		return make([]float64, size)
	}
	return data[:size]
}

func zero(data []float64) {
	for i := range data {
		data[i] = 0
	}
}
