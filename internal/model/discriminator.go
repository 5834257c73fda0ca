package model

import (
	"fmt"
	"math/rand"

	"github.com/ChizhovVadim/InpaintGAN/internal/ml"
)

// Discriminator scores the realism of every image in a batch with a
// probability.
type Discriminator struct {
	net *ml.Sequential
	dp  *ml.Tensor
}

func NewDiscriminator(o Options) (*Discriminator, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	var depth = o.depth()
	var w = widths(o.NDF, depth)

	var layers []ml.ILayer
	layers = append(layers,
		ml.NewConv2D(o.Channels, w[0], 4, 2, 1),
		ml.LeakyReLU(leakySlope))
	for k := 1; k < depth; k++ {
		layers = append(layers,
			ml.NewConv2D(w[k-1], w[k], 4, 2, 1),
			ml.NewBatchNorm2D(w[k]),
			ml.LeakyReLU(leakySlope))
	}
	layers = append(layers,
		ml.NewConv2D(w[depth-1], 1, baseSize, 1, 0),
		ml.SigmoidLayer())

	return &Discriminator{
		net: ml.NewSequential(layers...),
	}, nil
}

func (d *Discriminator) Init(rnd *rand.Rand) { d.net.Init(rnd) }

// Forward returns one probability per sample. The slice is overwritten by
// the next Forward call.
func (d *Discriminator) Forward(x *ml.Tensor) []float64 {
	var y = d.net.Forward(x)
	if y.C != 1 || y.H != 1 || y.W != 1 {
		panic(fmt.Sprintf("model: discriminator output %v", y.ShapeString()))
	}
	return y.Data
}

// Backward takes the loss gradient for every probability, accumulates param
// gradients and returns the gradient with respect to the input images.
func (d *Discriminator) Backward(dp []float64) *ml.Tensor {
	if d.dp == nil || d.dp.N != len(dp) {
		d.dp = ml.NewTensor(len(dp), 1, 1, 1)
	}
	copy(d.dp.Data, dp)
	return d.net.Backward(d.dp)
}

func (d *Discriminator) ZeroGrad() { d.net.ZeroGrad() }

func (d *Discriminator) Params() []*ml.Param { return d.net.Params() }

func (d *Discriminator) String() string { return Describe("Discriminator", d.net) }
