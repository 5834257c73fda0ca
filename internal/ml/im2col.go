package ml

// Geometry of a strided convolution between a large plane (h x w) and a
// small one (oh x ow).
type convGeometry struct {
	channels, h, w int
	kernel         int
	stride, pad    int
	oh, ow         int
}

func convOutputSize(size, kernel, stride, pad int) int {
	return (size+2*pad-kernel)/stride + 1
}

func convTransposeOutputSize(size, kernel, stride, pad int) int {
	return (size-1)*stride - 2*pad + kernel
}

func (g *convGeometry) rows() int {
	return g.channels * g.kernel * g.kernel
}

func (g *convGeometry) cols() int {
	return g.oh * g.ow
}

// im2col unfolds x (channels x h x w) into cols (rows x oh*ow).
// Row index is (c*kernel + ky)*kernel + kx, matching the weight layout.
func (g *convGeometry) im2col(x, cols []float64) {
	var plane = g.oh * g.ow
	for c := 0; c < g.channels; c++ {
		var src = x[c*g.h*g.w : (c+1)*g.h*g.w]
		for ky := 0; ky < g.kernel; ky++ {
			for kx := 0; kx < g.kernel; kx++ {
				var row = (c*g.kernel+ky)*g.kernel + kx
				var dst = cols[row*plane : (row+1)*plane]
				for oy := 0; oy < g.oh; oy++ {
					var iy = oy*g.stride - g.pad + ky
					for ox := 0; ox < g.ow; ox++ {
						var ix = ox*g.stride - g.pad + kx
						if iy < 0 || iy >= g.h || ix < 0 || ix >= g.w {
							dst[oy*g.ow+ox] = 0
						} else {
							dst[oy*g.ow+ox] = src[iy*g.w+ix]
						}
					}
				}
			}
		}
	}
}

// col2im is the adjoint of im2col: it adds cols back into x.
// The caller zeroes x beforehand.
func (g *convGeometry) col2im(cols, x []float64) {
	var plane = g.oh * g.ow
	for c := 0; c < g.channels; c++ {
		var dst = x[c*g.h*g.w : (c+1)*g.h*g.w]
		for ky := 0; ky < g.kernel; ky++ {
			for kx := 0; kx < g.kernel; kx++ {
				var row = (c*g.kernel+ky)*g.kernel + kx
				var src = cols[row*plane : (row+1)*plane]
				for oy := 0; oy < g.oh; oy++ {
					var iy = oy*g.stride - g.pad + ky
					if iy < 0 || iy >= g.h {
						continue
					}
					for ox := 0; ox < g.ow; ox++ {
						var ix = ox*g.stride - g.pad + kx
						if ix < 0 || ix >= g.w {
							continue
						}
						dst[iy*g.w+ix] += src[oy*g.ow+ox]
					}
				}
			}
		}
	}
}
