package ml

// Param is a named block of network state. Trainable params are updated by
// the optimizer; the others (batch norm running statistics) are only persisted.
type Param struct {
	Name      string
	Shape     []int
	Data      []float64
	Grad      []float64
	Trainable bool
}

func NewParam(name string, trainable bool, shape ...int) *Param {
	var size = 1
	for _, dim := range shape {
		size *= dim
	}
	var p = &Param{
		Name:      name,
		Shape:     append([]int(nil), shape...),
		Data:      make([]float64, size),
		Trainable: trainable,
	}
	if trainable {
		p.Grad = make([]float64, size)
	}
	return p
}

func (p *Param) Size() int {
	return len(p.Data)
}

func (p *Param) ZeroGrad() {
	zero(p.Grad)
}

func ZeroGrad(params []*Param) {
	for _, p := range params {
		p.ZeroGrad()
	}
}

func Trainable(params []*Param) []*Param {
	var result []*Param
	for _, p := range params {
		if p.Trainable {
			result = append(result, p)
		}
	}
	return result
}

// CountParams returns the number of trainable scalars.
func CountParams(params []*Param) int {
	var count int
	for _, p := range params {
		if p.Trainable {
			count += p.Size()
		}
	}
	return count
}
