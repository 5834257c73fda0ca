package trainer

import (
	"github.com/ChizhovVadim/InpaintGAN/internal/domain"
	"github.com/ChizhovVadim/InpaintGAN/internal/mask"
	"github.com/ChizhovVadim/InpaintGAN/internal/ml"
)

// BatchBuffer owns fixed capacity storage for the real images of a batch
// and their masked copy. Every LoadBatch overwrites the active extent and
// zeroes the rest, so nothing of a previous larger batch survives.
type BatchBuffer struct {
	capacity   int
	realData   []float64
	maskedData []float64
	real       ml.Tensor
	masked     ml.Tensor
}

func NewBatchBuffer(capacity, channels, height, width int) *BatchBuffer {
	var size = capacity * channels * height * width
	var b = &BatchBuffer{
		capacity:   capacity,
		realData:   make([]float64, size),
		maskedData: make([]float64, size),
	}
	b.real = ml.Tensor{C: channels, H: height, W: width}
	b.masked = ml.Tensor{C: channels, H: height, W: width}
	return b
}

// LoadBatch copies images into the buffer and builds the masked input:
// pixels with masks[n] == 1 are set to the fill value in every channel,
// the others are copied unchanged.
func (b *BatchBuffer) LoadBatch(images *ml.Tensor, masks []*mask.Mask) error {
	if images.N > b.capacity || images.N == 0 {
		return domain.Computationf("batch of %d images, capacity %d", images.N, b.capacity)
	}
	if images.C != b.real.C || images.H != b.real.H || images.W != b.real.W {
		return domain.Computationf("batch %v, expected [* %d %d %d]",
			images.ShapeString(), b.real.C, b.real.H, b.real.W)
	}
	var n = images.N * images.SampleSize()
	b.real.N = images.N
	b.real.Data = b.realData[:n]
	b.masked.N = images.N
	b.masked.Data = b.maskedData[:n]

	copy(b.real.Data, images.Data)
	mask.Apply(&b.masked, &b.real, masks, maskFill)
	clear(b.realData[n:])
	clear(b.maskedData[n:])
	return nil
}

// Real is the active extent of the real images.
func (b *BatchBuffer) Real() *ml.Tensor { return &b.real }

// Masked is the active extent of the masked input.
func (b *BatchBuffer) Masked() *ml.Tensor { return &b.masked }

// Labels is a fixed capacity target vector for the discriminator.
type Labels struct {
	data []float64
}

func NewLabels(capacity int) *Labels {
	return &Labels{data: make([]float64, capacity)}
}

// Fill sets the first n labels to value, zeroes the rest and returns the
// first n.
func (l *Labels) Fill(n int, value float64) []float64 {
	for i := range l.data {
		if i < n {
			l.data[i] = value
		} else {
			l.data[i] = 0
		}
	}
	return l.data[:n]
}
