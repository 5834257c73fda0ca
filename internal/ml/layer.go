package ml

import (
	"math/rand"
	"strconv"
)

// ILayer is one stage of a Sequential network. Forward caches whatever
// Backward needs, so Backward refers to the most recent Forward call.
// Backward accumulates param gradients and returns the gradient of the input.
type ILayer interface {
	Forward(x *Tensor) *Tensor
	Backward(dy *Tensor) *Tensor
	Params() []*Param
	// Init sets the initial weights. Each layer kind has its own scheme.
	Init(rnd *rand.Rand)
}

type Sequential struct {
	layers []ILayer
	params []*Param
}

// NewSequential chains layers. Param names get the layer index as prefix,
// e.g. "3.weight".
func NewSequential(layers ...ILayer) *Sequential {
	var params []*Param
	for i, layer := range layers {
		for _, p := range layer.Params() {
			p.Name = strconv.Itoa(i) + "." + p.Name
			params = append(params, p)
		}
	}
	return &Sequential{
		layers: layers,
		params: params,
	}
}

func (s *Sequential) Forward(x *Tensor) *Tensor {
	for _, layer := range s.layers {
		x = layer.Forward(x)
	}
	return x
}

func (s *Sequential) Backward(dy *Tensor) *Tensor {
	for i := len(s.layers) - 1; i >= 0; i-- {
		dy = s.layers[i].Backward(dy)
	}
	return dy
}

func (s *Sequential) Params() []*Param {
	return s.params
}

func (s *Sequential) Init(rnd *rand.Rand) {
	for _, layer := range s.layers {
		layer.Init(rnd)
	}
}

func (s *Sequential) ZeroGrad() {
	ZeroGrad(s.params)
}

func (s *Sequential) Layers() []ILayer {
	return s.layers
}
