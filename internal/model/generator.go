package model

import (
	"fmt"
	"math/rand"

	"github.com/ChizhovVadim/InpaintGAN/internal/mask"
	"github.com/ChizhovVadim/InpaintGAN/internal/ml"
)

// Generator is a context encoder: it encodes the masked image, with the mask
// as an extra input channel, into a bottleneck vector and decodes a full
// image in [-1, 1].
type Generator struct {
	channels int
	net      *ml.Sequential
	input    *ml.Tensor
}

func NewGenerator(o Options) (*Generator, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	var depth = o.depth()
	var enc = widths(o.NEF, depth)
	var dec = widths(o.NGF, depth)

	var layers []ml.ILayer
	layers = append(layers,
		ml.NewConv2D(o.Channels+1, enc[0], 4, 2, 1),
		ml.LeakyReLU(leakySlope))
	for k := 1; k < depth; k++ {
		layers = append(layers,
			ml.NewConv2D(enc[k-1], enc[k], 4, 2, 1),
			ml.NewBatchNorm2D(enc[k]),
			ml.LeakyReLU(leakySlope))
	}
	layers = append(layers,
		ml.NewConv2D(enc[depth-1], o.NBottleneck, baseSize, 1, 0),
		ml.NewBatchNorm2D(o.NBottleneck),
		ml.LeakyReLU(leakySlope),
		ml.NewConvTranspose2D(o.NBottleneck, dec[depth-1], baseSize, 1, 0),
		ml.NewBatchNorm2D(dec[depth-1]),
		ml.ReLU())
	for k := depth - 1; k > 0; k-- {
		layers = append(layers,
			ml.NewConvTranspose2D(dec[k], dec[k-1], 4, 2, 1),
			ml.NewBatchNorm2D(dec[k-1]),
			ml.ReLU())
	}
	layers = append(layers,
		ml.NewConvTranspose2D(dec[0], o.Channels, 4, 2, 1),
		ml.Tanh())

	return &Generator{
		channels: o.Channels,
		net:      ml.NewSequential(layers...),
	}, nil
}

func (g *Generator) Init(rnd *rand.Rand) { g.net.Init(rnd) }

// Forward reconstructs the batch. masks[n] is the mask of sample n.
// The returned tensor is owned by the generator and overwritten by the next
// Forward call.
func (g *Generator) Forward(masked *ml.Tensor, masks []*mask.Mask) *ml.Tensor {
	if masked.C != g.channels || len(masks) != masked.N {
		panic(fmt.Sprintf("model: generator input %v with %d masks", masked.ShapeString(), len(masks)))
	}
	if g.input == nil || g.input.N != masked.N || g.input.H != masked.H || g.input.W != masked.W {
		g.input = ml.NewTensor(masked.N, g.channels+1, masked.H, masked.W)
	}
	for n := 0; n < masked.N; n++ {
		var sample = g.input.Sample(n)
		copy(sample, masked.Sample(n))
		copy(sample[masked.SampleSize():], masks[n].Data)
	}
	return g.net.Forward(g.input)
}

// Backward accumulates param gradients for dy, the gradient of the loss
// with respect to the last Forward output.
func (g *Generator) Backward(dy *ml.Tensor) {
	g.net.Backward(dy)
}

func (g *Generator) ZeroGrad() { g.net.ZeroGrad() }

func (g *Generator) Params() []*ml.Param { return g.net.Params() }

func (g *Generator) String() string { return Describe("Generator", g.net) }
