package ml

import (
	"fmt"
	"math"
)

type IModelCost interface {
	Cost(predicted, target float64) float64
	CostPrime(predicted, target float64) float64
}

type MSECost struct{}

func (*MSECost) Cost(predicted, target float64) float64 {
	var x = predicted - target
	return x * x
}

func (*MSECost) CostPrime(predicted, target float64) float64 {
	return 2 * (predicted - target)
}

const (
	bceMinLog     = -100
	bceMinDivisor = 1e-12
)

// BCECost is binary cross-entropy on probabilities. Logs are clamped at -100
// so that saturated outputs give a finite loss.
type BCECost struct{}

func (*BCECost) Cost(predicted, target float64) float64 {
	var logP = math.Max(math.Log(predicted), bceMinLog)
	var log1P = math.Max(math.Log(1-predicted), bceMinLog)
	return -(target*logP + (1-target)*log1P)
}

func (*BCECost) CostPrime(predicted, target float64) float64 {
	return (predicted - target) / math.Max(predicted*(1-predicted), bceMinDivisor)
}

// MeanCost averages cost over the batch and writes d(mean)/d(predicted) into grad.
func MeanCost(cost IModelCost, predicted, targets, grad []float64) float64 {
	if len(predicted) != len(targets) || len(grad) != len(predicted) {
		panic(fmt.Sprintf("ml: cost of %d predictions against %d targets", len(predicted), len(targets)))
	}
	if len(predicted) == 0 {
		return 0
	}
	var n = float64(len(predicted))
	var total float64
	for i, p := range predicted {
		total += cost.Cost(p, targets[i])
		grad[i] = cost.CostPrime(p, targets[i]) / n
	}
	return total / n
}

// MaskedMSE is the mean over every element of (predicted-target)^2 * weight,
// where weights holds one value per pixel of a sample plane and is shared by
// all channels. weights is indexed per sample: weights[n] has H*W entries.
// The gradient is written into grad.
func MaskedMSE(predicted, target *Tensor, weights [][]float64, grad *Tensor) float64 {
	if !predicted.SameShape(target) || !predicted.SameShape(grad) {
		panic(fmt.Sprintf("ml: masked mse of %v against %v", predicted.ShapeString(), target.ShapeString()))
	}
	if len(weights) != predicted.N {
		panic(fmt.Sprintf("ml: masked mse with %d weight maps for %d samples", len(weights), predicted.N))
	}
	var cost = &MSECost{}
	var n = float64(predicted.Len())
	var total float64
	for i := 0; i < predicted.N; i++ {
		var w = weights[i]
		for c := 0; c < predicted.C; c++ {
			var p, t, g = predicted.Plane(i, c), target.Plane(i, c), grad.Plane(i, c)
			for j := range p {
				total += cost.Cost(p[j], t[j]) * w[j]
				g[j] = cost.CostPrime(p[j], t[j]) * w[j] / n
			}
		}
	}
	return total / n
}
