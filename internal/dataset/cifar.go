package dataset

import (
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/ChizhovVadim/InpaintGAN/internal/domain"
)

const (
	cifarSide       = 32
	cifarPlane      = cifarSide * cifarSide
	cifarRecordSize = 1 + 3*cifarPlane
)

// cifarSource reads the CIFAR-10 binary batches: each record is a label byte
// followed by the red, green and blue 32x32 planes.
type cifarSource struct {
	records []byte
}

// cifarFiles lists the training batches and the test batch of the first
// directory that has any. Labels are not used, so both serve as images.
func cifarFiles(root string) []string {
	for _, dir := range []string{root, filepath.Join(root, "cifar-10-batches-bin")} {
		files, _ := filepath.Glob(filepath.Join(dir, "data_batch_*.bin"))
		var test = filepath.Join(dir, "test_batch.bin")
		if _, err := os.Stat(test); err == nil {
			files = append(files, test)
		}
		if len(files) != 0 {
			return files
		}
	}
	return nil
}

func openCifar(root string) (*cifarSource, error) {
	var files = cifarFiles(root)
	if len(files) == 0 {
		return nil, domain.Configurationf("dataset: no CIFAR-10 data_batch_*.bin or test_batch.bin files in %v", root)
	}
	var records []byte
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		if len(content)%cifarRecordSize != 0 {
			return nil, domain.Configurationf("dataset: %v is not a CIFAR-10 batch", file)
		}
		records = append(records, content...)
	}
	return &cifarSource{records: records}, nil
}

func (s *cifarSource) Len() int {
	return len(s.records) / cifarRecordSize
}

func (s *cifarSource) Load(i int, size, channels int, sample []float64) error {
	var record = s.records[i*cifarRecordSize+1 : (i+1)*cifarRecordSize]
	var img = image.NewRGBA(image.Rect(0, 0, cifarSide, cifarSide))
	for p := 0; p < cifarPlane; p++ {
		img.SetRGBA(p%cifarSide, p/cifarSide, color.RGBA{
			R: record[p],
			G: record[cifarPlane+p],
			B: record[2*cifarPlane+p],
			A: 255,
		})
	}
	toSample(resizeCrop(img, size), channels, sample)
	return nil
}
