package metrics

import "time"

// Window averages throughput and losses over the steps between two
// progress reports.
type Window struct {
	steps   int
	images  int
	wait    time.Duration
	compute time.Duration
	lossD   float64
	lossG   float64
	real    float64
	fake    float64
}

// Record adds one step. wait is the time spent waiting for the batch,
// compute the time of the D and G updates.
func (w *Window) Record(images int, wait, compute time.Duration, l StepLosses) {
	w.steps++
	w.images += images
	w.wait += wait
	w.compute += compute
	w.lossD += l.Discriminator()
	w.lossG += l.Generator
	w.real += l.RealScore
	w.fake += l.FakeScore
}

// Report returns the averages since the last call and starts a new window.
func (w *Window) Report() WindowReport {
	var r = WindowReport{Steps: w.steps}
	if elapsed := w.wait + w.compute; elapsed > 0 {
		r.ImagesPerSec = float64(w.images) / elapsed.Seconds()
	}
	if w.steps > 0 {
		var n = float64(w.steps)
		r.WaitMS = float64(w.wait.Milliseconds()) / n
		r.ComputeMS = float64(w.compute.Milliseconds()) / n
		r.LossD = w.lossD / n
		r.LossG = w.lossG / n
		r.RealScore = w.real / n
		r.FakeScore = w.fake / n
	}
	*w = Window{}
	return r
}

type WindowReport struct {
	Steps        int
	ImagesPerSec float64
	WaitMS       float64
	ComputeMS    float64
	LossD        float64
	LossG        float64
	RealScore    float64
	FakeScore    float64
}
