package ml

import (
	"fmt"
	"math"
	"math/rand"
)

const (
	batchNormEpsilon  = 1e-5
	batchNormMomentum = 0.1
	batchNormInitStd  = 0.02
)

// BatchNorm2D normalises every channel with statistics of the current batch
// (training mode) and keeps running statistics as non-trainable params.
type BatchNorm2D struct {
	channels    int
	weight      *Param
	bias        *Param
	runningMean *Param
	runningVar  *Param
	xhat        []float64
	invStd      []float64
	out         *Tensor
	dx          *Tensor
}

func NewBatchNorm2D(channels int) *BatchNorm2D {
	var l = &BatchNorm2D{
		channels:    channels,
		weight:      NewParam("weight", true, channels),
		bias:        NewParam("bias", true, channels),
		runningMean: NewParam("running_mean", false, channels),
		runningVar:  NewParam("running_var", false, channels),
		invStd:      make([]float64, channels),
	}
	InitConst(l.weight.Data, 1)
	InitConst(l.runningVar.Data, 1)
	return l
}

func (l *BatchNorm2D) Params() []*Param {
	return []*Param{l.weight, l.bias, l.runningMean, l.runningVar}
}

func (l *BatchNorm2D) Init(rnd *rand.Rand) {
	InitNorm(rnd, l.weight.Data, 1, batchNormInitStd)
	InitConst(l.bias.Data, 0)
	InitConst(l.runningMean.Data, 0)
	InitConst(l.runningVar.Data, 1)
}

func (l *BatchNorm2D) Forward(x *Tensor) *Tensor {
	if x.C != l.channels {
		panic(fmt.Sprintf("ml: batch norm expects %d channels, got %v", l.channels, x.ShapeString()))
	}
	l.out = reuse(l.out, x.N, x.C, x.H, x.W)
	l.xhat = resize(l.xhat, x.Len())
	var count = float64(x.N * x.H * x.W)
	for c := 0; c < x.C; c++ {
		var mean float64
		for n := 0; n < x.N; n++ {
			for _, v := range x.Plane(n, c) {
				mean += v
			}
		}
		mean /= count

		var variance float64
		for n := 0; n < x.N; n++ {
			for _, v := range x.Plane(n, c) {
				variance += (v - mean) * (v - mean)
			}
		}
		variance /= count

		var invStd = 1 / math.Sqrt(variance+batchNormEpsilon)
		l.invStd[c] = invStd
		var gamma, beta = l.weight.Data[c], l.bias.Data[c]
		var size = x.H * x.W
		for n := 0; n < x.N; n++ {
			var offset = (n*x.C + c) * size
			for i, v := range x.Plane(n, c) {
				var xhat = (v - mean) * invStd
				l.xhat[offset+i] = xhat
				l.out.Data[offset+i] = gamma*xhat + beta
			}
		}

		var unbiased = variance
		if count > 1 {
			unbiased = variance * count / (count - 1)
		}
		l.runningMean.Data[c] = (1-batchNormMomentum)*l.runningMean.Data[c] + batchNormMomentum*mean
		l.runningVar.Data[c] = (1-batchNormMomentum)*l.runningVar.Data[c] + batchNormMomentum*unbiased
	}
	return l.out
}

func (l *BatchNorm2D) Backward(dy *Tensor) *Tensor {
	if dy.Len() != len(l.xhat) {
		panic(fmt.Sprintf("ml: batch norm gradient %v does not match output", dy.ShapeString()))
	}
	l.dx = reuse(l.dx, dy.N, dy.C, dy.H, dy.W)
	var count = float64(dy.N * dy.H * dy.W)
	var size = dy.H * dy.W
	for c := 0; c < dy.C; c++ {
		var sumDy, sumDyXhat float64
		for n := 0; n < dy.N; n++ {
			var offset = (n*dy.C + c) * size
			for i, g := range dy.Plane(n, c) {
				sumDy += g
				sumDyXhat += g * l.xhat[offset+i]
			}
		}
		l.weight.Grad[c] += sumDyXhat
		l.bias.Grad[c] += sumDy

		var scale = l.weight.Data[c] * l.invStd[c] / count
		for n := 0; n < dy.N; n++ {
			var offset = (n*dy.C + c) * size
			for i, g := range dy.Plane(n, c) {
				var xhat = l.xhat[offset+i]
				l.dx.Data[offset+i] = scale * (count*g - sumDy - xhat*sumDyXhat)
			}
		}
	}
	return l.dx
}
