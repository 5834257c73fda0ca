package ml

import (
	"math"
	"math/rand"
)

type IActivationFn interface {
	Sigma(x float64) float64
	SigmaPrime(x float64) float64
}

type ReLuActivation struct{}

func (*ReLuActivation) Sigma(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func (*ReLuActivation) SigmaPrime(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

type LeakyReLuActivation struct {
	Slope float64
}

func (a *LeakyReLuActivation) Sigma(x float64) float64 {
	if x > 0 {
		return x
	}
	return a.Slope * x
}

func (a *LeakyReLuActivation) SigmaPrime(x float64) float64 {
	if x > 0 {
		return 1
	}
	return a.Slope
}

type SigmoidActivation struct{}

func (s *SigmoidActivation) Sigma(x float64) float64 {
	return Sigmoid(x)
}

func (s *SigmoidActivation) SigmaPrime(x float64) float64 {
	var y = s.Sigma(x)
	return y * (1 - y)
}

type TanhActivation struct{}

func (*TanhActivation) Sigma(x float64) float64 {
	return math.Tanh(x)
}

func (*TanhActivation) SigmaPrime(x float64) float64 {
	var y = math.Tanh(x)
	return 1 - y*y
}

// Activation applies an elementwise function. It has no params.
type Activation struct {
	fn    IActivationFn
	out   *Tensor
	dx    *Tensor
	prime []float64
}

func NewActivation(fn IActivationFn) *Activation {
	return &Activation{fn: fn}
}

func ReLU() *Activation                   { return NewActivation(&ReLuActivation{}) }
func LeakyReLU(slope float64) *Activation { return NewActivation(&LeakyReLuActivation{Slope: slope}) }
func Tanh() *Activation                   { return NewActivation(&TanhActivation{}) }
func SigmoidLayer() *Activation           { return NewActivation(&SigmoidActivation{}) }

func (l *Activation) Forward(x *Tensor) *Tensor {
	l.out = reuse(l.out, x.N, x.C, x.H, x.W)
	l.prime = resize(l.prime, x.Len())
	for i, v := range x.Data {
		l.out.Data[i] = l.fn.Sigma(v)
		l.prime[i] = l.fn.SigmaPrime(v)
	}
	return l.out
}

func (l *Activation) Backward(dy *Tensor) *Tensor {
	l.dx = reuse(l.dx, dy.N, dy.C, dy.H, dy.W)
	for i, g := range dy.Data {
		l.dx.Data[i] = g * l.prime[i]
	}
	return l.dx
}

func (l *Activation) Params() []*Param { return nil }

func (l *Activation) Init(rnd *rand.Rand) {}
