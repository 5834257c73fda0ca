// Package trainer runs the adversarial training of the inpainting networks.
package trainer

import (
	"context"

	"github.com/ChizhovVadim/InpaintGAN/internal/domain"
	"github.com/ChizhovVadim/InpaintGAN/internal/mask"
	"github.com/ChizhovVadim/InpaintGAN/internal/ml"
)

// IGenerator reconstructs images from masked input. Forward caches what
// Backward needs; Backward accumulates param gradients.
type IGenerator interface {
	Forward(masked *ml.Tensor, masks []*mask.Mask) *ml.Tensor
	Backward(dy *ml.Tensor)
	ZeroGrad()
	Params() []*ml.Param
}

// IDiscriminator scores every image with the probability of being real.
// Backward returns the gradient with respect to the last Forward input.
type IDiscriminator interface {
	Forward(x *ml.Tensor) []float64
	Backward(dp []float64) *ml.Tensor
	ZeroGrad()
	Params() []*ml.Param
}

// IBatchSource sends the batches of an epoch to out and returns. It does not
// close out.
type IBatchSource interface {
	NumBatches() int
	Run(ctx context.Context, epoch int, out chan<- *ml.Tensor) error
}

type ICheckpointStore interface {
	SaveAll(epoch int, generator, discriminator []*ml.Param) error
}

// IArtifactSink keeps sample grids of the real batch, the masked input and
// the reconstruction.
type IArtifactSink interface {
	SaveGrids(epoch int, real, masked, fake *ml.Tensor) error
}

const (
	DefaultSampleEvery = 100

	realLabel = 1
	fakeLabel = 0
	maskFill  = 1.0
)

// Cadence is how often both checkpoints are written.
type Cadence int

const (
	// CheckpointEveryStep writes after every step.
	CheckpointEveryStep Cadence = iota
	// CheckpointEveryEpoch writes once at the end of an epoch.
	CheckpointEveryEpoch
)

func (c Cadence) String() string {
	switch c {
	case CheckpointEveryStep:
		return "step"
	case CheckpointEveryEpoch:
		return "epoch"
	}
	return "unknown"
}

func ParseCadence(s string) (Cadence, error) {
	switch s {
	case "step":
		return CheckpointEveryStep, nil
	case "epoch":
		return CheckpointEveryEpoch, nil
	}
	return 0, domain.Configurationf("unknown checkpoint cadence %q, expected step or epoch", s)
}

// Options configure a Trainer. OverlapL2Weight scales the L2 loss on the
// OverlapPred pixel border of the mask: 1 leaves the plain mask, 0 drops
// the border from the loss.
type Options struct {
	Epochs          int
	BatchSize       int
	Channels        int
	ImageSize       int
	LearningRate    float64
	Beta1           float64
	WtL2            float64
	OverlapPred     int
	OverlapL2Weight float64
	SampleEvery     int
	Checkpoint      Cadence
	ChartPath       string
}
