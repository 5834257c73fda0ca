package metrics

import (
	"errors"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	labelDiscriminatorReal = "D Loss Real"
	labelDiscriminatorFake = "D Loss Fake"
	labelGenerator         = "G Loss"
)

var errNoSteps = errors.New("metrics: no steps recorded")

func points(steps []int, values []float64) plotter.XYs {
	var result = make(plotter.XYs, len(steps))
	for i := range steps {
		result[i].X = float64(steps[i])
		result[i].Y = values[i]
	}
	return result
}

// RenderChart draws the discriminator and generator losses over the global
// step axis into a PNG (or any format plot supports by extension).
func RenderChart(m *TrainingMetrics, path string) error {
	if m.Len() == 0 {
		return errNoSteps
	}
	var p = plot.New()
	p.Title.Text = "Training losses"
	p.X.Label.Text = "step"
	p.Y.Label.Text = "loss"
	p.Add(plotter.NewGrid())

	var err = plotutil.AddLines(p,
		labelDiscriminatorReal, points(m.steps, m.dReal),
		labelDiscriminatorFake, points(m.steps, m.dFake),
		labelGenerator, points(m.steps, m.g))
	if err != nil {
		return err
	}
	p.Legend.Top = true
	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
