package ml

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

const convInitStdDev = 0.02

// Conv2D is a bias-free strided convolution, weight shape [out, in, k, k].
type Conv2D struct {
	inChannels  int
	outChannels int
	kernel      int
	stride      int
	pad         int
	weight      *Param
	geom        convGeometry
	input       *Tensor
	out         *Tensor
	dx          *Tensor
	cols        []float64
	dcols       []float64
	wtmp        []float64
}

func NewConv2D(inChannels, outChannels, kernel, stride, pad int) *Conv2D {
	return &Conv2D{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernel:      kernel,
		stride:      stride,
		pad:         pad,
		weight:      NewParam("weight", true, outChannels, inChannels, kernel, kernel),
	}
}

func (l *Conv2D) Params() []*Param { return []*Param{l.weight} }

func (l *Conv2D) Init(rnd *rand.Rand) {
	InitNorm(rnd, l.weight.Data, 0, convInitStdDev)
}

func (l *Conv2D) Forward(x *Tensor) *Tensor {
	if x.C != l.inChannels {
		panic(fmt.Sprintf("ml: conv expects %d channels, got %v", l.inChannels, x.ShapeString()))
	}
	var oh = convOutputSize(x.H, l.kernel, l.stride, l.pad)
	var ow = convOutputSize(x.W, l.kernel, l.stride, l.pad)
	if oh <= 0 || ow <= 0 {
		panic(fmt.Sprintf("ml: conv kernel %d does not fit %v", l.kernel, x.ShapeString()))
	}
	l.geom = convGeometry{
		channels: x.C, h: x.H, w: x.W,
		kernel: l.kernel, stride: l.stride, pad: l.pad,
		oh: oh, ow: ow,
	}
	l.input = x
	l.out = reuse(l.out, x.N, l.outChannels, oh, ow)
	l.cols = resize(l.cols, l.geom.rows()*l.geom.cols())

	var w = mat.NewDense(l.outChannels, l.geom.rows(), l.weight.Data)
	var cols = mat.NewDense(l.geom.rows(), l.geom.cols(), l.cols)
	for n := 0; n < x.N; n++ {
		l.geom.im2col(x.Sample(n), l.cols)
		var y = mat.NewDense(l.outChannels, l.geom.cols(), l.out.Sample(n))
		y.Mul(w, cols)
	}
	return l.out
}

func (l *Conv2D) Backward(dy *Tensor) *Tensor {
	var x = l.input
	if dy.N != x.N || dy.C != l.outChannels || dy.H != l.geom.oh || dy.W != l.geom.ow {
		panic(fmt.Sprintf("ml: conv gradient %v does not match output", dy.ShapeString()))
	}
	var rows, ncols = l.geom.rows(), l.geom.cols()
	l.dx = reuse(l.dx, x.N, x.C, x.H, x.W)
	l.dcols = resize(l.dcols, rows*ncols)
	l.wtmp = resize(l.wtmp, l.weight.Size())

	var w = mat.NewDense(l.outChannels, rows, l.weight.Data)
	var dw = mat.NewDense(l.outChannels, rows, l.weight.Grad)
	var wtmp = mat.NewDense(l.outChannels, rows, l.wtmp)
	var cols = mat.NewDense(rows, ncols, l.cols)
	var dcols = mat.NewDense(rows, ncols, l.dcols)
	for n := 0; n < x.N; n++ {
		var dyn = mat.NewDense(l.outChannels, ncols, dy.Sample(n))
		l.geom.im2col(x.Sample(n), l.cols)
		wtmp.Mul(dyn, cols.T())
		dw.Add(dw, wtmp)

		dcols.Mul(w.T(), dyn)
		var dxn = l.dx.Sample(n)
		zero(dxn)
		l.geom.col2im(l.dcols, dxn)
	}
	return l.dx
}

// ConvTranspose2D is the adjoint of Conv2D, weight shape [in, out, k, k].
// Output size is (size-1)*stride - 2*pad + kernel.
type ConvTranspose2D struct {
	inChannels  int
	outChannels int
	kernel      int
	stride      int
	pad         int
	weight      *Param
	geom        convGeometry
	input       *Tensor
	out         *Tensor
	dx          *Tensor
	cols        []float64
	dcols       []float64
	wtmp        []float64
}

func NewConvTranspose2D(inChannels, outChannels, kernel, stride, pad int) *ConvTranspose2D {
	return &ConvTranspose2D{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernel:      kernel,
		stride:      stride,
		pad:         pad,
		weight:      NewParam("weight", true, inChannels, outChannels, kernel, kernel),
	}
}

func (l *ConvTranspose2D) Params() []*Param { return []*Param{l.weight} }

func (l *ConvTranspose2D) Init(rnd *rand.Rand) {
	InitNorm(rnd, l.weight.Data, 0, convInitStdDev)
}

func (l *ConvTranspose2D) Forward(x *Tensor) *Tensor {
	if x.C != l.inChannels {
		panic(fmt.Sprintf("ml: transposed conv expects %d channels, got %v", l.inChannels, x.ShapeString()))
	}
	var oh = convTransposeOutputSize(x.H, l.kernel, l.stride, l.pad)
	var ow = convTransposeOutputSize(x.W, l.kernel, l.stride, l.pad)
	if oh <= 0 || ow <= 0 {
		panic(fmt.Sprintf("ml: transposed conv produces empty output from %v", x.ShapeString()))
	}
	// the large plane is the output, the small one is the input
	l.geom = convGeometry{
		channels: l.outChannels, h: oh, w: ow,
		kernel: l.kernel, stride: l.stride, pad: l.pad,
		oh: x.H, ow: x.W,
	}
	l.input = x
	l.out = reuse(l.out, x.N, l.outChannels, oh, ow)
	l.cols = resize(l.cols, l.geom.rows()*l.geom.cols())

	var w = mat.NewDense(l.inChannels, l.geom.rows(), l.weight.Data)
	var cols = mat.NewDense(l.geom.rows(), l.geom.cols(), l.cols)
	for n := 0; n < x.N; n++ {
		var xn = mat.NewDense(l.inChannels, l.geom.cols(), x.Sample(n))
		cols.Mul(w.T(), xn)
		var yn = l.out.Sample(n)
		zero(yn)
		l.geom.col2im(l.cols, yn)
	}
	return l.out
}

func (l *ConvTranspose2D) Backward(dy *Tensor) *Tensor {
	var x = l.input
	if dy.N != x.N || dy.C != l.outChannels || dy.H != l.geom.h || dy.W != l.geom.w {
		panic(fmt.Sprintf("ml: transposed conv gradient %v does not match output", dy.ShapeString()))
	}
	var rows, ncols = l.geom.rows(), l.geom.cols()
	l.dx = reuse(l.dx, x.N, x.C, x.H, x.W)
	l.dcols = resize(l.dcols, rows*ncols)
	l.wtmp = resize(l.wtmp, l.weight.Size())

	var w = mat.NewDense(l.inChannels, rows, l.weight.Data)
	var dw = mat.NewDense(l.inChannels, rows, l.weight.Grad)
	var wtmp = mat.NewDense(l.inChannels, rows, l.wtmp)
	var dcols = mat.NewDense(rows, ncols, l.dcols)
	for n := 0; n < x.N; n++ {
		l.geom.im2col(dy.Sample(n), l.dcols)
		var xn = mat.NewDense(l.inChannels, ncols, x.Sample(n))
		var dxn = mat.NewDense(l.inChannels, ncols, l.dx.Sample(n))
		dxn.Mul(w, dcols)
		wtmp.Mul(xn, dcols.T())
		dw.Add(dw, wtmp)
	}
	return l.dx
}
