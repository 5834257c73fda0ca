// Package imageio writes batches and masks as PNG files.
package imageio

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ChizhovVadim/InpaintGAN/internal/mask"
	"github.com/ChizhovVadim/InpaintGAN/internal/ml"
)

const (
	DefaultRowSize = 8
	DefaultPadding = 2

	captionHeight = 15
)

type GridOptions struct {
	RowSize int
	Padding int
	Caption string
}

func DefaultGridOptions(caption string) GridOptions {
	return GridOptions{
		RowSize: DefaultRowSize,
		Padding: DefaultPadding,
		Caption: caption,
	}
}

// Grid tiles the images of t, RowSize per row, separated by Padding black
// pixels. Values are expected in [-1, 1] and mapped to [0, 255]; out of range
// values are clamped. A non-empty caption is drawn in a band above the tiles.
func Grid(t *ml.Tensor, opts GridOptions) *image.RGBA {
	var rowSize = max(1, min(opts.RowSize, t.N))
	var rows = (t.N + rowSize - 1) / rowSize
	var cellW, cellH = t.W + opts.Padding, t.H + opts.Padding
	var top = 0
	if opts.Caption != "" {
		top = captionHeight
	}
	var img = image.NewRGBA(image.Rect(0, 0, rowSize*cellW+opts.Padding, top+rows*cellH+opts.Padding))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	for n := 0; n < t.N; n++ {
		var x0 = (n%rowSize)*cellW + opts.Padding
		var y0 = top + (n/rowSize)*cellH + opts.Padding
		for i := 0; i < t.H; i++ {
			for j := 0; j < t.W; j++ {
				img.SetRGBA(x0+j, y0+i, pixel(t, n, i*t.W+j))
			}
		}
	}

	if opts.Caption != "" {
		var d = &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.White),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(opts.Padding, captionHeight-3),
		}
		d.DrawString(opts.Caption)
	}
	return img
}

func pixel(t *ml.Tensor, n, offset int) color.RGBA {
	var channel = func(c int) uint8 {
		return toByte(t.Plane(n, min(c, t.C-1))[offset])
	}
	return color.RGBA{channel(0), channel(1), channel(2), 255}
}

func toByte(v float64) uint8 {
	var x = (v + 1) / 2 * 255
	if x <= 0 || x != x {
		return 0
	}
	if x >= 255 {
		return 255
	}
	return uint8(x + 0.5)
}

func SaveGrid(path string, t *ml.Tensor, opts GridOptions) error {
	return savePNG(path, Grid(t, opts))
}

// SaveMask renders masked pixels white.
func SaveMask(path string, m *mask.Mask) error {
	var img = image.NewGray(image.Rect(0, 0, m.W, m.H))
	for i := 0; i < m.H; i++ {
		for j := 0; j < m.W; j++ {
			if m.At(i, j) == 1 {
				img.SetGray(j, i, color.Gray{Y: 255})
			}
		}
	}
	return savePNG(path, img)
}

func savePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return err
	}
	return f.Close()
}
