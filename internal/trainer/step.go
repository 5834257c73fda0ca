package trainer

import (
	"gonum.org/v1/gonum/stat"

	"github.com/ChizhovVadim/InpaintGAN/internal/domain"
	"github.com/ChizhovVadim/InpaintGAN/internal/mask"
	"github.com/ChizhovVadim/InpaintGAN/internal/metrics"
	"github.com/ChizhovVadim/InpaintGAN/internal/ml"
)

// Step trains both networks on one batch and records the losses.
// A panic inside the networks or a non-finite loss is an ErrComputation.
func (t *Trainer) Step(images *ml.Tensor) (losses metrics.StepLosses, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.Computationf("step %d: %v", t.metrics.Len()+1, r)
		}
	}()

	var masks = t.policy.Masks(images.N)
	if err := t.buffer.LoadBatch(images, masks); err != nil {
		return losses, err
	}
	var real, masked = t.buffer.Real(), t.buffer.Masked()
	var n = real.N
	var dp = t.dp[:n]

	// discriminator: real images against real labels
	t.disc.ZeroGrad()
	var labels = t.labels.Fill(n, realLabel)
	var output = t.disc.Forward(real)
	losses.RealScore = stat.Mean(output, nil)
	losses.DiscriminatorReal = ml.MeanCost(&t.bce, output, labels, dp)
	t.disc.Backward(dp)

	// reconstructions against fake labels; nothing flows back into G here
	var fake = t.generator.Forward(masked, masks)
	t.fake = fake
	labels = t.labels.Fill(n, fakeLabel)
	output = t.disc.Forward(fake)
	losses.FakeScore = stat.Mean(output, nil)
	losses.DiscriminatorFake = ml.MeanCost(&t.bce, output, labels, dp)
	t.disc.Backward(dp)
	t.optD.Step()

	// generator: the same reconstructions against real labels
	t.generator.ZeroGrad()
	labels = t.labels.Fill(n, realLabel)
	output = t.disc.Forward(fake)
	losses.GeneratorAdversarial = ml.MeanCost(&t.bce, output, labels, dp)
	var dAdv = t.disc.Backward(dp)

	t.dL2 = reuse(t.dL2, fake)
	losses.GeneratorL2 = ml.MaskedMSE(fake, real, t.lossWeights(masks), t.dL2)

	var wtl2 = t.opts.WtL2
	losses.Generator = (1-wtl2)*losses.GeneratorAdversarial + wtl2*losses.GeneratorL2

	t.dFake = reuse(t.dFake, fake)
	for i := range t.dFake.Data {
		t.dFake.Data[i] = (1-wtl2)*dAdv.Data[i] + wtl2*t.dL2.Data[i]
	}
	t.generator.Backward(t.dFake)
	t.optG.Step()

	for _, v := range []float64{losses.DiscriminatorReal, losses.DiscriminatorFake,
		losses.GeneratorAdversarial, losses.GeneratorL2} {
		if !ml.IsFinite(v) {
			return losses, domain.Computationf("step %d: non-finite loss %+v", t.metrics.Len()+1, losses)
		}
	}
	t.metrics.Record(losses)
	return losses, nil
}

// lossWeights returns the per-pixel L2 weights of every sample.
func (t *Trainer) lossWeights(masks []*mask.Mask) [][]float64 {
	t.weights = t.weights[:0]
	for _, m := range masks {
		switch {
		case t.fixedWeights != nil:
			t.weights = append(t.weights, t.fixedWeights)
		case t.opts.OverlapL2Weight == 1 || t.opts.OverlapPred <= 0:
			t.weights = append(t.weights, m.Data)
		default:
			t.weights = append(t.weights, mask.OverlapWeights(m, t.opts.OverlapPred, t.opts.OverlapL2Weight))
		}
	}
	return t.weights
}

func reuse(t, like *ml.Tensor) *ml.Tensor {
	if t != nil && t.SameShape(like) {
		return t
	}
	return ml.NewTensor(like.N, like.C, like.H, like.W)
}
