package imageio

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ChizhovVadim/InpaintGAN/internal/mask"
	"github.com/ChizhovVadim/InpaintGAN/internal/ml"
)

func TestGridLayout(t *testing.T) {
	var batch = ml.NewTensor(10, 3, 4, 4)
	batch.Fill(1)
	var img = Grid(batch, GridOptions{RowSize: 8, Padding: 2})
	var b = img.Bounds()
	// 8 columns and 2 rows of 4x4 tiles with 2 pixel padding
	if b.Dx() != 8*6+2 || b.Dy() != 2*6+2 {
		t.Fatalf("unexpected grid size %v", b)
	}
	if img.RGBAAt(2, 2) != (color.RGBA{255, 255, 255, 255}) {
		t.Error("first tile must be white")
	}
	if img.RGBAAt(0, 0) != (color.RGBA{0, 0, 0, 255}) {
		t.Error("padding must be black")
	}
	// third tile of the second row does not exist
	if img.RGBAAt(2*6+2, 6+2) != (color.RGBA{0, 0, 0, 255}) {
		t.Error("missing tile must stay black")
	}
}

func TestToByte(t *testing.T) {
	var cases = []struct {
		in  float64
		out uint8
	}{
		{-1, 0},
		{-5, 0},
		{0, 128},
		{1, 255},
		{3, 255},
	}
	for _, c := range cases {
		if got := toByte(c.in); got != c.out {
			t.Errorf("toByte(%v)=%v, expected %v", c.in, got, c.out)
		}
	}
}

func TestSaveGridWithCaption(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "real", "real_samples_epoch_000.png")
	var batch = ml.NewTensor(2, 1, 8, 8)
	if err := SaveGrid(path, batch, DefaultGridOptions("epoch 0")); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dy() != captionHeight+10+2 {
		t.Errorf("unexpected height %d", img.Bounds().Dy())
	}
}

func TestSaveMask(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "mask.png")
	var m = mask.DefaultCircle(32, 5)
	if err := SaveMask(path, m); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if r, _, _, _ := img.At(16, 16).RGBA(); r == 0 {
		t.Error("centre must be white")
	}
	if r, _, _, _ := img.At(0, 0).RGBA(); r != 0 {
		t.Error("corner must be black")
	}
}
