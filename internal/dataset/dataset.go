// Package dataset loads image datasets as normalised NCHW batches.
package dataset

import (
	"context"
	"math/rand"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/ChizhovVadim/InpaintGAN/internal/domain"
	"github.com/ChizhovVadim/InpaintGAN/internal/ml"
)

const (
	KindCifar10    = "cifar10"
	KindLSUN       = "lsun"
	KindImageNet   = "imagenet"
	KindFolder     = "folder"
	KindLFW        = "lfw"
	KindStreetView = "streetview"
)

func Kinds() []string {
	return []string{KindCifar10, KindLSUN, KindImageNet, KindFolder, KindLFW, KindStreetView}
}

func ValidKind(kind string) bool {
	for _, k := range Kinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// ISource gives random access to the images of a dataset.
type ISource interface {
	Len() int
	// Load decodes image i into sample, a C*size*size slice.
	Load(i int, size, channels int, sample []float64) error
}

// Loader cuts a shuffled dataset into batches. The last batch of an epoch
// may be smaller than BatchSize.
type Loader struct {
	Kind      string
	Root      string
	ImageSize int
	Channels  int
	BatchSize int
	Workers   int
	Seed      int64
	source    ISource
}

// Open indexes the dataset. It fails with ErrConfiguration for an unknown
// kind, a missing root or an empty dataset.
func (l *Loader) Open() error {
	if !ValidKind(l.Kind) {
		return domain.Configurationf("dataset: unknown kind %q, expected one of %v", l.Kind, Kinds())
	}
	if l.ImageSize <= 0 || l.BatchSize <= 0 {
		return domain.Configurationf("dataset: image size %d batch size %d", l.ImageSize, l.BatchSize)
	}
	if l.Channels != 1 && l.Channels != 3 {
		return domain.Configurationf("dataset: %d channels, expected 1 or 3", l.Channels)
	}
	var source ISource
	var err error
	switch l.Kind {
	case KindCifar10:
		source, err = openCifar(l.Root)
	default:
		source, err = openFolder(l.Root)
	}
	if err != nil {
		return err
	}
	if source.Len() == 0 {
		return domain.Configurationf("dataset: no images found in %v", l.Root)
	}
	l.source = source
	klog.Infof("dataset %v: %d images in %v", l.Kind, source.Len(), l.Root)
	return nil
}

func (l *Loader) Len() int {
	if l.source == nil {
		return 0
	}
	return l.source.Len()
}

func (l *Loader) NumBatches() int {
	return (l.Len() + l.BatchSize - 1) / l.BatchSize
}

// Run sends the batches of one epoch to out in shuffled order. The order only
// depends on Seed and epoch. Run does not close out.
func (l *Loader) Run(ctx context.Context, epoch int, out chan<- *ml.Tensor) error {
	var n = l.Len()
	var order = rand.New(rand.NewSource(l.Seed + int64(epoch))).Perm(n)
	for start := 0; start < n; start += l.BatchSize {
		var indices = order[start:min(start+l.BatchSize, n)]
		batch, err := l.loadBatch(ctx, indices)
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- batch:
		}
	}
	return nil
}

func (l *Loader) loadBatch(ctx context.Context, indices []int) (*ml.Tensor, error) {
	var batch = ml.NewTensor(len(indices), l.Channels, l.ImageSize, l.ImageSize)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, l.Workers))
	for i, index := range indices {
		var i, index = i, index
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return l.source.Load(index, l.ImageSize, l.Channels, batch.Sample(i))
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batch, nil
}
