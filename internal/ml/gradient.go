package ml

import "math"

const (
	DefaultLearningRate = 0.0002
	DefaultBeta1        = 0.5
	DefaultBeta2        = 0.999
	DefaultEpsilon      = 1e-8
)

type Gradient struct {
	M1 float64
	M2 float64
}

// Adam applies accumulated gradients to a fixed set of params.
type Adam struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64
	params       []*Param
	moments      [][]Gradient
	steps        int
}

func NewAdam(params []*Param, learningRate, beta1 float64) *Adam {
	var trainable = Trainable(params)
	var moments = make([][]Gradient, len(trainable))
	for i, p := range trainable {
		moments[i] = make([]Gradient, p.Size())
	}
	return &Adam{
		LearningRate: learningRate,
		Beta1:        beta1,
		Beta2:        DefaultBeta2,
		Epsilon:      DefaultEpsilon,
		params:       trainable,
		moments:      moments,
	}
}

func (a *Adam) Params() []*Param {
	return a.params
}

func (a *Adam) ZeroGrad() {
	ZeroGrad(a.params)
}

func (a *Adam) Steps() int {
	return a.steps
}

// Step updates every param from its current Grad. Grads are left untouched.
func (a *Adam) Step() {
	a.steps++
	var correction1 = 1 - math.Pow(a.Beta1, float64(a.steps))
	var correction2 = 1 - math.Pow(a.Beta2, float64(a.steps))
	var stepSize = a.LearningRate / correction1
	for i, p := range a.params {
		var moments = a.moments[i]
		for j, g := range p.Grad {
			var m = &moments[j]
			m.M1 = m.M1*a.Beta1 + g*(1-a.Beta1)
			m.M2 = m.M2*a.Beta2 + (g*g)*(1-a.Beta2)
			var denom = math.Sqrt(m.M2/correction2) + a.Epsilon
			p.Data[j] -= stepSize * m.M1 / denom
		}
	}
}
