package trainer

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/klog/v2"

	"github.com/ChizhovVadim/InpaintGAN/internal/imageio"
	"github.com/ChizhovVadim/InpaintGAN/internal/ml"
)

// DirSink writes sample grids under Dir/result/train, one file per epoch and
// kind. Later grids of the same epoch replace earlier ones.
type DirSink struct {
	Dir string
}

const (
	SampleReal = iota
	SampleMasked
	SampleReconstruction
)

var sampleKinds = []struct {
	dir    string
	format string
}{
	{"real", "real_samples_epoch_%03d.png"},
	{"cropped", "cropped_samples_epoch_%03d.png"},
	{"recon", "recon_center_samples_epoch_%03d.png"},
}

// NewDirSink creates the result directories. Existing ones are fine.
func NewDirSink(dir string) (*DirSink, error) {
	var s = &DirSink{Dir: dir}
	for _, kind := range sampleKinds {
		if err := os.MkdirAll(s.kindDir(kind.dir), 0755); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *DirSink) kindDir(kind string) string {
	return filepath.Join(s.Dir, "result", "train", kind)
}

func (s *DirSink) Path(kind int, epoch int) string {
	var k = sampleKinds[kind]
	return filepath.Join(s.kindDir(k.dir), fmt.Sprintf(k.format, epoch))
}

func (s *DirSink) SaveGrids(epoch int, real, masked, fake *ml.Tensor) error {
	var caption = fmt.Sprintf("epoch %d", epoch)
	for i, images := range []*ml.Tensor{real, masked, fake} {
		var path = s.Path(i, epoch)
		if err := imageio.SaveGrid(path, images, imageio.DefaultGridOptions(caption)); err != nil {
			return err
		}
		klog.V(1).Infof("saved %v", path)
	}
	return nil
}
