package dataset

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// resizeCrop scales the shorter side of src to size and cuts the centre
// size x size square.
func resizeCrop(src image.Image, size int) *image.RGBA {
	var b = src.Bounds()
	var w, h = b.Dx(), b.Dy()
	var sw, sh = size, size
	if w < h {
		sh = max(size, int(math.Round(float64(h)*float64(size)/float64(w))))
	} else if h < w {
		sw = max(size, int(math.Round(float64(w)*float64(size)/float64(h))))
	}

	var scaled image.Image = src
	var origin = b.Min
	if sw != w || sh != h {
		var dst = image.NewRGBA(image.Rect(0, 0, sw, sh))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
		scaled = dst
		origin = image.Point{}
	}

	var result = image.NewRGBA(image.Rect(0, 0, size, size))
	var offset = image.Point{X: (sw - size) / 2, Y: (sh - size) / 2}
	draw.Draw(result, result.Bounds(), scaled, origin.Add(offset), draw.Src)
	return result
}

// toSample writes img into sample as planes normalised to [-1, 1].
// A single channel holds the luminance.
func toSample(img *image.RGBA, channels int, sample []float64) {
	var b = img.Bounds()
	var plane = b.Dx() * b.Dy()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			var c = img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			var offset = y*b.Dx() + x
			if channels == 1 {
				var gray = 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
				sample[offset] = normalize(gray)
				continue
			}
			sample[offset] = normalize(float64(c.R))
			sample[plane+offset] = normalize(float64(c.G))
			sample[2*plane+offset] = normalize(float64(c.B))
		}
	}
}

func normalize(v float64) float64 {
	return (v/255 - 0.5) / 0.5
}
