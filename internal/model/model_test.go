package model

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/ChizhovVadim/InpaintGAN/internal/domain"
	"github.com/ChizhovVadim/InpaintGAN/internal/mask"
	"github.com/ChizhovVadim/InpaintGAN/internal/ml"
)

func smallOptions(size int) Options {
	return Options{
		ImageSize:   size,
		Channels:    3,
		NEF:         4,
		NGF:         4,
		NDF:         4,
		NBottleneck: 8,
	}
}

func randomBatch(rnd *rand.Rand, n, size int) *ml.Tensor {
	var t = ml.NewTensor(n, 3, size, size)
	for i := range t.Data {
		t.Data[i] = 2*rnd.Float64() - 1
	}
	return t
}

func TestShapes(t *testing.T) {
	var rnd = rand.New(rand.NewSource(1))
	for _, size := range []int{8, 16, 32} {
		var o = smallOptions(size)
		g, err := NewGenerator(o)
		if err != nil {
			t.Fatal(err)
		}
		d, err := NewDiscriminator(o)
		if err != nil {
			t.Fatal(err)
		}
		g.Init(rnd)
		d.Init(rnd)

		var masks = mask.NewFixed("circle", mask.DefaultCircle(size, 2)).Masks(2)
		var fake = g.Forward(randomBatch(rnd, 2, size), masks)
		if fake.N != 2 || fake.C != 3 || fake.H != size || fake.W != size {
			t.Fatalf("size %d: generator output %v", size, fake.ShapeString())
		}
		for _, v := range fake.Data {
			if v < -1 || v > 1 {
				t.Fatalf("size %d: output %v outside [-1, 1]", size, v)
			}
		}
		var p = d.Forward(fake)
		if len(p) != 2 {
			t.Fatalf("size %d: %d scores", size, len(p))
		}
		for _, v := range p {
			if !(v > 0 && v < 1) {
				t.Fatalf("size %d: score %v", size, v)
			}
		}
		var dx = d.Backward([]float64{1, -1})
		if !dx.SameShape(fake) {
			t.Fatalf("size %d: input gradient %v", size, dx.ShapeString())
		}
		g.Backward(dx)
	}
}

func TestInvalidOptions(t *testing.T) {
	for _, size := range []int{4, 12, 0} {
		if _, err := NewGenerator(smallOptions(size)); !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("size %d: expected configuration error, got %v", size, err)
		}
		if _, err := NewDiscriminator(smallOptions(size)); !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("size %d: expected configuration error, got %v", size, err)
		}
	}
}

func TestParamNamesUnique(t *testing.T) {
	g, _ := NewGenerator(smallOptions(16))
	var seen = make(map[string]bool)
	for _, p := range g.Params() {
		if seen[p.Name] {
			t.Fatalf("duplicate param %v", p.Name)
		}
		seen[p.Name] = true
	}
	if !seen["0.weight"] {
		t.Error("expected 0.weight")
	}
	// the first conv sees the mask as an extra channel
	if g.Params()[0].Shape[1] != 4 {
		t.Errorf("unexpected first conv shape %v", g.Params()[0].Shape)
	}
	if !strings.Contains(g.String(), "BatchNorm2D") {
		t.Errorf("unexpected description %v", g.String())
	}
}

// The discriminator gradient with respect to its input matches finite
// differences of the summed scores.
func TestDiscriminatorInputGradient(t *testing.T) {
	var rnd = rand.New(rand.NewSource(2))
	var o = smallOptions(8)
	d, _ := NewDiscriminator(o)
	d.Init(rnd)
	var x = randomBatch(rnd, 2, 8)

	var sum = func() float64 {
		var p = d.Forward(x)
		return p[0] + p[1]
	}
	sum()
	var dx = d.Backward([]float64{1, 1}).Clone()

	const h = 1e-6
	for _, i := range []int{0, 17, 100, 191} {
		var saved = x.Data[i]
		x.Data[i] = saved + h
		var plus = sum()
		x.Data[i] = saved - h
		var minus = sum()
		x.Data[i] = saved
		var numeric = (plus - minus) / (2 * h)
		if math.Abs(numeric-dx.Data[i]) > 1e-4*math.Max(1, math.Abs(numeric)) {
			t.Errorf("dx[%d] numeric=%v analytic=%v", i, numeric, dx.Data[i])
		}
	}
}
