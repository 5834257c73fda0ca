// Package metrics accumulates the per-step losses of a training run.
package metrics

// StepLosses are the scalars produced by one training step.
type StepLosses struct {
	DiscriminatorReal    float64 // errD_real
	DiscriminatorFake    float64 // errD_fake
	GeneratorAdversarial float64 // errG_D
	GeneratorL2          float64 // errG_l2
	Generator            float64 // errG
	RealScore            float64 // mean D(x)
	FakeScore            float64 // mean D(G(z)) before the D update
}

func (l StepLosses) Discriminator() float64 {
	return l.DiscriminatorReal + l.DiscriminatorFake
}

// TrainingMetrics holds the loss series of one run, indexed by the global
// step counter. It is created at run start, appended to once per step and
// read at run end.
type TrainingMetrics struct {
	steps []int
	dReal []float64
	dFake []float64
	gAdv  []float64
	gL2   []float64
	g     []float64
}

func NewTrainingMetrics() *TrainingMetrics {
	return &TrainingMetrics{}
}

// Record appends one step and returns its global step number, starting at 1.
func (m *TrainingMetrics) Record(l StepLosses) int {
	var step = len(m.steps) + 1
	m.steps = append(m.steps, step)
	m.dReal = append(m.dReal, l.DiscriminatorReal)
	m.dFake = append(m.dFake, l.DiscriminatorFake)
	m.gAdv = append(m.gAdv, l.GeneratorAdversarial)
	m.gL2 = append(m.gL2, l.GeneratorL2)
	m.g = append(m.g, l.Generator)
	return step
}

func (m *TrainingMetrics) Len() int { return len(m.steps) }

func (m *TrainingMetrics) Steps() []int                    { return m.steps }
func (m *TrainingMetrics) DiscriminatorReal() []float64    { return m.dReal }
func (m *TrainingMetrics) DiscriminatorFake() []float64    { return m.dFake }
func (m *TrainingMetrics) GeneratorAdversarial() []float64 { return m.gAdv }
func (m *TrainingMetrics) GeneratorL2() []float64          { return m.gL2 }
func (m *TrainingMetrics) Generator() []float64            { return m.g }
