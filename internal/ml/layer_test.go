package ml

import (
	"math"
	"math/rand"
	"testing"
)

// checkGradients compares Backward against central differences of
// loss = sum(Forward(x) * r) for the input and every trainable param.
func checkGradients(t *testing.T, name string, layer ILayer, x *Tensor, tolerance float64) {
	t.Helper()
	var rnd = rand.New(rand.NewSource(7))
	var out = layer.Forward(x)
	var r = NewTensor(out.N, out.C, out.H, out.W)
	for i := range r.Data {
		r.Data[i] = rnd.NormFloat64()
	}
	var loss = func() float64 {
		var y = layer.Forward(x)
		var total float64
		for i, v := range y.Data {
			total += v * r.Data[i]
		}
		return total
	}

	ZeroGrad(layer.Params())
	layer.Forward(x)
	var dx = layer.Backward(r).Clone()

	const h = 1e-5
	for i := range x.Data {
		var saved = x.Data[i]
		x.Data[i] = saved + h
		var plus = loss()
		x.Data[i] = saved - h
		var minus = loss()
		x.Data[i] = saved
		var numeric = (plus - minus) / (2 * h)
		if math.Abs(numeric-dx.Data[i]) > tolerance*math.Max(1, math.Abs(numeric)) {
			t.Fatalf("%v: input grad[%d] numeric=%v analytic=%v", name, i, numeric, dx.Data[i])
		}
	}
	for _, p := range Trainable(layer.Params()) {
		for i := range p.Data {
			var saved = p.Data[i]
			p.Data[i] = saved + h
			var plus = loss()
			p.Data[i] = saved - h
			var minus = loss()
			p.Data[i] = saved
			var numeric = (plus - minus) / (2 * h)
			if math.Abs(numeric-p.Grad[i]) > tolerance*math.Max(1, math.Abs(numeric)) {
				t.Fatalf("%v: %v grad[%d] numeric=%v analytic=%v", name, p.Name, i, numeric, p.Grad[i])
			}
		}
	}
}

func randomTensor(rnd *rand.Rand, n, c, h, w int) *Tensor {
	var x = NewTensor(n, c, h, w)
	for i := range x.Data {
		x.Data[i] = rnd.NormFloat64()
	}
	return x
}

func TestConv2DGradients(t *testing.T) {
	var rnd = rand.New(rand.NewSource(1))
	var layer = NewConv2D(2, 3, 4, 2, 1)
	InitNorm(rnd, layer.weight.Data, 0, 0.5)
	var x = randomTensor(rnd, 2, 2, 8, 8)
	var y = layer.Forward(x)
	if y.N != 2 || y.C != 3 || y.H != 4 || y.W != 4 {
		t.Fatalf("unexpected output shape %v", y.ShapeString())
	}
	checkGradients(t, "conv", layer, x, 1e-6)
}

func TestConvTranspose2DGradients(t *testing.T) {
	var rnd = rand.New(rand.NewSource(2))
	var layer = NewConvTranspose2D(3, 2, 4, 2, 1)
	InitNorm(rnd, layer.weight.Data, 0, 0.5)
	var x = randomTensor(rnd, 2, 3, 3, 3)
	var y = layer.Forward(x)
	if y.N != 2 || y.C != 2 || y.H != 6 || y.W != 6 {
		t.Fatalf("unexpected output shape %v", y.ShapeString())
	}
	checkGradients(t, "convT", layer, x, 1e-6)
}

func TestConvTransposeIsAdjointOfConv(t *testing.T) {
	var rnd = rand.New(rand.NewSource(3))
	var conv = NewConv2D(2, 3, 4, 2, 1)
	var convT = NewConvTranspose2D(3, 2, 4, 2, 1)
	InitNorm(rnd, conv.weight.Data, 0, 1)
	// same weight memory layout: [3][2][4][4] for both
	copy(convT.weight.Data, conv.weight.Data)

	var x = randomTensor(rnd, 1, 2, 8, 8)
	var y = randomTensor(rnd, 1, 3, 4, 4)
	var cx = conv.Forward(x)
	var ty = convT.Forward(y)
	var lhs, rhs float64
	for i := range cx.Data {
		lhs += cx.Data[i] * y.Data[i]
	}
	for i := range ty.Data {
		rhs += ty.Data[i] * x.Data[i]
	}
	if math.Abs(lhs-rhs) > 1e-9*math.Max(1, math.Abs(lhs)) {
		t.Fatalf("<conv x, y>=%v <x, convT y>=%v", lhs, rhs)
	}
}

func TestBatchNormGradients(t *testing.T) {
	var rnd = rand.New(rand.NewSource(4))
	var layer = NewBatchNorm2D(3)
	layer.Init(rnd)
	var x = randomTensor(rnd, 3, 3, 2, 2)
	checkGradients(t, "batchnorm", layer, x, 1e-4)
}

func TestBatchNormNormalises(t *testing.T) {
	var rnd = rand.New(rand.NewSource(5))
	var layer = NewBatchNorm2D(2)
	var x = randomTensor(rnd, 4, 2, 3, 3)
	for i := range x.Data {
		x.Data[i] = x.Data[i]*3 + 5
	}
	var y = layer.Forward(x)
	for c := 0; c < 2; c++ {
		var mean, sq float64
		for n := 0; n < 4; n++ {
			for _, v := range y.Plane(n, c) {
				mean += v
				sq += v * v
			}
		}
		mean /= 36
		sq /= 36
		if math.Abs(mean) > 1e-9 || math.Abs(sq-1) > 1e-3 {
			t.Errorf("channel %d: mean=%v meansq=%v", c, mean, sq)
		}
	}
	if layer.runningMean.Data[0] == 0 {
		t.Error("running mean was not updated")
	}
}

func TestActivationGradients(t *testing.T) {
	var rnd = rand.New(rand.NewSource(6))
	for name, layer := range map[string]ILayer{
		"leaky":   LeakyReLU(0.2),
		"tanh":    Tanh(),
		"sigmoid": SigmoidLayer(),
	} {
		checkGradients(t, name, layer, randomTensor(rnd, 2, 2, 3, 3), 1e-5)
	}
}

func TestSequentialParamNames(t *testing.T) {
	var net = NewSequential(
		NewConv2D(3, 4, 4, 2, 1),
		LeakyReLU(0.2),
		NewBatchNorm2D(4),
	)
	var want = []string{"0.weight", "2.weight", "2.bias", "2.running_mean", "2.running_var"}
	var params = net.Params()
	if len(params) != len(want) {
		t.Fatalf("expected %d params, got %d", len(want), len(params))
	}
	for i, p := range params {
		if p.Name != want[i] {
			t.Errorf("param %d: got %v want %v", i, p.Name, want[i])
		}
	}
	if CountParams(params) != 4*3*4*4+4+4 {
		t.Errorf("unexpected trainable count %d", CountParams(params))
	}
}

func TestSequentialInitByLayerKind(t *testing.T) {
	var conv = NewConv2D(3, 8, 4, 2, 1)
	var bn = NewBatchNorm2D(8)
	var net = NewSequential(conv, bn, ReLU())
	net.Init(rand.New(rand.NewSource(9)))

	var mean, sq float64
	for _, v := range conv.weight.Data {
		mean += v
		sq += v * v
	}
	mean /= float64(conv.weight.Size())
	var std = math.Sqrt(sq/float64(conv.weight.Size()) - mean*mean)
	if math.Abs(mean) > 0.01 || math.Abs(std-0.02) > 0.01 {
		t.Errorf("conv init mean=%v std=%v", mean, std)
	}
	for c := range bn.weight.Data {
		if math.Abs(bn.weight.Data[c]-1) > 0.1 {
			t.Errorf("batch norm weight %v not near 1", bn.weight.Data[c])
		}
		if bn.bias.Data[c] != 0 {
			t.Errorf("batch norm bias %v not zero", bn.bias.Data[c])
		}
	}
}
