package ml

import (
	"math"
	"testing"
)

func TestBCECost(t *testing.T) {
	var cost = &BCECost{}
	if math.Abs(cost.Cost(0.5, 1)-math.Ln2) > 1e-12 {
		t.Error("bce(0.5, 1) != ln 2")
	}
	if cost.Cost(0, 1) != 100 || cost.Cost(1, 0) != 100 {
		t.Error("saturated bce must be clamped to 100")
	}
	if cost.Cost(1, 1) != 0 {
		t.Error("bce(1, 1) != 0")
	}
	var p, y = 0.3, 1.0
	const h = 1e-7
	var numeric = (cost.Cost(p+h, y) - cost.Cost(p-h, y)) / (2 * h)
	if math.Abs(numeric-cost.CostPrime(p, y)) > 1e-5 {
		t.Errorf("bce prime numeric=%v analytic=%v", numeric, cost.CostPrime(p, y))
	}
}

func TestMeanCost(t *testing.T) {
	var grad = make([]float64, 2)
	var loss = MeanCost(&BCECost{}, []float64{0.5, 0.5}, []float64{1, 0}, grad)
	if math.Abs(loss-math.Ln2) > 1e-12 {
		t.Errorf("unexpected mean loss %v", loss)
	}
	if math.Abs(grad[0]+1) > 1e-12 || math.Abs(grad[1]-1) > 1e-12 {
		t.Errorf("unexpected grad %v", grad)
	}
}

func TestMaskedMSEOnlySeesMaskedPixels(t *testing.T) {
	var real = NewTensor(1, 2, 2, 2)
	var fake = NewTensor(1, 2, 2, 2)
	var grad = NewTensor(1, 2, 2, 2)
	var weights = [][]float64{{1, 0, 0, 1}}

	// differences outside the mask do not count
	fake.Data[1] = 5
	fake.Data[6] = -3
	if loss := MaskedMSE(fake, real, weights, grad); loss != 0 {
		t.Fatalf("expected zero loss, got %v", loss)
	}
	for i, g := range grad.Data {
		if g != 0 {
			t.Fatalf("grad[%d]=%v outside mask", i, g)
		}
	}

	fake.Data[0] = 2
	var loss = MaskedMSE(fake, real, weights, grad)
	if math.Abs(loss-4.0/8) > 1e-12 {
		t.Fatalf("expected mean over all elements 0.5, got %v", loss)
	}
	if math.Abs(grad.Data[0]-2*2.0/8) > 1e-12 {
		t.Fatalf("unexpected grad %v", grad.Data[0])
	}
}

func TestAdamMinimisesQuadratic(t *testing.T) {
	var p = NewParam("x", true, 1)
	var opt = NewAdam([]*Param{p}, 0.1, 0.5)
	for i := 0; i < 500; i++ {
		opt.ZeroGrad()
		p.Grad[0] = 2 * (p.Data[0] - 3)
		opt.Step()
	}
	if math.Abs(p.Data[0]-3) > 0.1 {
		t.Fatalf("adam did not converge: %v", p.Data[0])
	}
	if opt.Steps() != 500 {
		t.Fatalf("unexpected step count %d", opt.Steps())
	}
}

func TestAdamSkipsBuffers(t *testing.T) {
	var bn = NewBatchNorm2D(2)
	var opt = NewAdam(bn.Params(), 0.1, 0.5)
	if len(opt.Params()) != 2 {
		t.Fatalf("expected only weight and bias, got %d params", len(opt.Params()))
	}
}

func TestAdamFirstStepSize(t *testing.T) {
	var p = NewParam("x", true, 1)
	var opt = NewAdam([]*Param{p}, DefaultLearningRate, DefaultBeta1)
	p.Grad[0] = 10
	opt.Step()
	// bias correction makes the first step ~lr in the gradient sign
	if math.Abs(p.Data[0]+DefaultLearningRate) > 1e-9 {
		t.Fatalf("unexpected first step %v", p.Data[0])
	}
}
