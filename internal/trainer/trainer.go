package trainer

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/ChizhovVadim/InpaintGAN/internal/checkpoint"
	"github.com/ChizhovVadim/InpaintGAN/internal/mask"
	"github.com/ChizhovVadim/InpaintGAN/internal/metrics"
	"github.com/ChizhovVadim/InpaintGAN/internal/ml"
)

const prefetchBatches = 2

type Trainer struct {
	opts       Options
	generator  IGenerator
	disc       IDiscriminator
	policy     mask.IPolicy
	store      ICheckpointStore
	sink       IArtifactSink
	optG       *ml.Adam
	optD       *ml.Adam
	buffer     *BatchBuffer
	labels     *Labels
	metrics    *metrics.TrainingMetrics
	window     metrics.Window
	startEpoch int

	bce          ml.BCECost
	dp           []float64
	dFake        *ml.Tensor
	dL2          *ml.Tensor
	weights      [][]float64
	fixedWeights []float64
	fake         *ml.Tensor
}

// NewTrainer wires the networks with their optimizers. store and sink may be
// nil to skip checkpoints and sample grids.
func NewTrainer(
	opts Options,
	generator IGenerator,
	discriminator IDiscriminator,
	policy mask.IPolicy,
	store ICheckpointStore,
	sink IArtifactSink,
) *Trainer {
	if opts.SampleEvery <= 0 {
		opts.SampleEvery = DefaultSampleEvery
	}
	var t = &Trainer{
		opts:      opts,
		generator: generator,
		disc:      discriminator,
		policy:    policy,
		store:     store,
		sink:      sink,
		optG:      ml.NewAdam(generator.Params(), opts.LearningRate, opts.Beta1),
		optD:      ml.NewAdam(discriminator.Params(), opts.LearningRate, opts.Beta1),
		buffer:    NewBatchBuffer(opts.BatchSize, opts.Channels, opts.ImageSize, opts.ImageSize),
		labels:    NewLabels(opts.BatchSize),
		metrics:   metrics.NewTrainingMetrics(),
		dp:        make([]float64, opts.BatchSize),
	}
	if fixed, ok := policy.(*mask.Fixed); ok {
		t.fixedWeights = mask.OverlapWeights(fixed.Mask(), opts.OverlapPred, opts.OverlapL2Weight)
	}
	return t
}

func (t *Trainer) Metrics() *metrics.TrainingMetrics { return t.metrics }

func (t *Trainer) StartEpoch() int { return t.startEpoch }

// Resume loads the given checkpoints, an empty path meaning none, and sets
// the epoch to start from. The discriminator is loaded last, so its epoch
// wins when both are given.
func (t *Trainer) Resume(netG, netD string) (int, error) {
	var epoch int
	if netG != "" {
		ckpt, err := load(netG, t.generator.Params())
		if err != nil {
			return 0, err
		}
		epoch = ckpt.Epoch
		klog.Infof("loaded generator %v, epoch %d", netG, ckpt.Epoch)
	}
	if netD != "" {
		ckpt, err := load(netD, t.disc.Params())
		if err != nil {
			return 0, err
		}
		if netG != "" && ckpt.Epoch != epoch {
			klog.Warningf("generator epoch %d and discriminator epoch %d differ, resuming at %d",
				epoch, ckpt.Epoch, ckpt.Epoch)
		}
		epoch = ckpt.Epoch
		klog.Infof("loaded discriminator %v, epoch %d", netD, ckpt.Epoch)
	}
	t.startEpoch = epoch
	return epoch, nil
}

func load(path string, params []*ml.Param) (*checkpoint.Checkpoint, error) {
	ckpt, err := checkpoint.Load(path)
	if err != nil {
		return nil, err
	}
	if err := checkpoint.Restore(params, ckpt); err != nil {
		return nil, errors.Wrapf(err, "%v", path)
	}
	return ckpt, nil
}

// Run trains from the start epoch up to opts.Epochs. Batches are loaded
// concurrently, steps run one at a time.
func (t *Trainer) Run(ctx context.Context, source IBatchSource) error {
	klog.Infof("training epochs [%d, %d), %d batches per epoch, checkpoint every %v",
		t.startEpoch, t.opts.Epochs, source.NumBatches(), t.opts.Checkpoint)
	for epoch := t.startEpoch; epoch < t.opts.Epochs; epoch++ {
		if err := t.runEpoch(ctx, source, epoch); err != nil {
			return err
		}
		if t.opts.Checkpoint == CheckpointEveryEpoch {
			if err := t.saveCheckpoints(epoch); err != nil {
				return err
			}
		}
		klog.Infof("finished epoch %d", epoch)
	}
	return t.finish()
}

func (t *Trainer) runEpoch(ctx context.Context, source IBatchSource, epoch int) error {
	g, ctx := errgroup.WithContext(ctx)
	var batches = make(chan *ml.Tensor, prefetchBatches)

	g.Go(func() error {
		defer close(batches)
		return source.Run(ctx, epoch, batches)
	})

	g.Go(func() error {
		var numBatches = source.NumBatches()
		var i int
		var ready = time.Now()
		for images := range batches {
			var dataTime = time.Since(ready)
			var start = time.Now()
			losses, err := t.Step(images)
			if err != nil {
				return errors.Wrapf(err, "epoch %d step %d", epoch, i)
			}
			t.window.Record(images.N, dataTime, time.Since(start), losses)

			klog.Infof("[%d/%d][%d/%d] Loss_D: %.4f Loss_G: %.4f / %.4f l_D(x): %.4f l_D(G(z)): %.4f",
				epoch, t.opts.Epochs, i, numBatches,
				losses.Discriminator(), losses.GeneratorAdversarial, losses.GeneratorL2,
				losses.RealScore, losses.FakeScore)

			if i%t.opts.SampleEvery == 0 {
				if err := t.saveSamples(epoch); err != nil {
					return err
				}
				var r = t.window.Report()
				klog.V(1).Infof("%d steps: %.1f images/s, wait %.1f ms, compute %.1f ms, Loss_D %.4f Loss_G %.4f D(x) %.4f D(G(z)) %.4f",
					r.Steps, r.ImagesPerSec, r.WaitMS, r.ComputeMS, r.LossD, r.LossG, r.RealScore, r.FakeScore)
			}
			if t.opts.Checkpoint == CheckpointEveryStep {
				if err := t.saveCheckpoints(epoch); err != nil {
					return err
				}
			}
			i++
			ready = time.Now()
		}
		return nil
	})

	return g.Wait()
}

func (t *Trainer) saveSamples(epoch int) error {
	if t.sink == nil {
		return nil
	}
	return t.sink.SaveGrids(epoch, t.buffer.Real(), t.buffer.Masked(), t.fake)
}

// saveCheckpoints stores both networks with the epoch to resume from.
func (t *Trainer) saveCheckpoints(epoch int) error {
	if t.store == nil {
		return nil
	}
	if err := t.store.SaveAll(epoch+1, t.generator.Params(), t.disc.Params()); err != nil {
		return err
	}
	klog.V(1).Infof("saved checkpoints, epoch %d", epoch+1)
	return nil
}

func (t *Trainer) finish() error {
	klog.Infof("training finished after %d steps", t.metrics.Len())
	for _, s := range t.metrics.Summary() {
		klog.Infof("%v", s)
	}
	klog.V(1).Infof("errD_real %v", metrics.FormatSeries(t.metrics.DiscriminatorReal()))
	klog.V(1).Infof("errD_fake %v", metrics.FormatSeries(t.metrics.DiscriminatorFake()))
	klog.V(1).Infof("errG_D %v", metrics.FormatSeries(t.metrics.GeneratorAdversarial()))
	klog.V(1).Infof("errG_l2 %v", metrics.FormatSeries(t.metrics.GeneratorL2()))
	klog.V(1).Infof("errG %v", metrics.FormatSeries(t.metrics.Generator()))
	if t.opts.ChartPath == "" || t.metrics.Len() == 0 {
		return nil
	}
	if err := metrics.RenderChart(t.metrics, t.opts.ChartPath); err != nil {
		return err
	}
	klog.Infof("saved chart %v", t.opts.ChartPath)
	return nil
}
