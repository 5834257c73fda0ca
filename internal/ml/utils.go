package ml

import (
	"math"
	"math/rand"
)

func InitNorm(rnd *rand.Rand, data []float64, mean, stDev float64) {
	for i := range data {
		data[i] = rnd.NormFloat64()*stDev + mean
	}
}

func InitConst(data []float64, value float64) {
	for i := range data {
		data[i] = value
	}
}

func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
