package main

import (
	"context"
	"math/rand"
	"path/filepath"

	"k8s.io/klog/v2"

	"github.com/ChizhovVadim/InpaintGAN/internal/checkpoint"
	"github.com/ChizhovVadim/InpaintGAN/internal/config"
	"github.com/ChizhovVadim/InpaintGAN/internal/dataset"
	"github.com/ChizhovVadim/InpaintGAN/internal/mask"
	"github.com/ChizhovVadim/InpaintGAN/internal/model"
	"github.com/ChizhovVadim/InpaintGAN/internal/trainer"
)

func runTrain(ctx context.Context, args []string) error {
	cfg, err := config.Parse(newFlagSet("train"), args)
	if err != nil {
		return err
	}
	logBanner()
	var seed = cfg.ResolveSeed()
	klog.Infof("Random Seed: %d", seed)
	klog.V(1).Infof("config:\n%s", cfg.YAML())
	if cfg.Cuda || cfg.NGPU > 1 {
		klog.Warningf("cuda=%v ngpu=%d requested, training runs on the CPU", cfg.Cuda, cfg.NGPU)
	}
	if cfg.WtlD != config.DefaultWtlD {
		klog.Warningf("wtlD=%v is not part of the loss", cfg.WtlD)
	}
	var rnd = rand.New(rand.NewSource(seed))

	policy, err := mask.ParsePolicy(cfg.Mask, cfg.ImageSize, cfg.MaskRadius, rnd)
	if err != nil {
		return err
	}
	klog.Infof("mask policy %v", policy.Name())
	if cfg.OverlapL2Weight != 1 {
		klog.Infof("L2 weight %v on the %d pixel border of the mask", cfg.OverlapL2Weight, cfg.OverlapPred)
	}

	var loader = &dataset.Loader{
		Kind:      cfg.Dataset,
		Root:      cfg.DataRoot,
		ImageSize: cfg.ImageSize,
		Channels:  cfg.NC,
		BatchSize: cfg.BatchSize,
		Workers:   cfg.Workers,
		Seed:      seed,
	}
	if err := loader.Open(); err != nil {
		return err
	}

	var modelOptions = model.Options{
		ImageSize:   cfg.ImageSize,
		Channels:    cfg.NC,
		NEF:         cfg.NEF,
		NGF:         cfg.NGF,
		NDF:         cfg.NDF,
		NBottleneck: cfg.NBottleneck,
	}
	generator, err := model.NewGenerator(modelOptions)
	if err != nil {
		return err
	}
	discriminator, err := model.NewDiscriminator(modelOptions)
	if err != nil {
		return err
	}
	generator.Init(rnd)
	discriminator.Init(rnd)
	klog.Info(generator)
	klog.Info(discriminator)

	sink, err := trainer.NewDirSink(cfg.OutF)
	if err != nil {
		return err
	}
	var store = checkpoint.NewStore(filepath.Join(cfg.OutF, "model"))
	cadence, err := trainer.ParseCadence(cfg.CheckpointEvery)
	if err != nil {
		return err
	}
	var chartPath string
	if cfg.Plot != "" {
		chartPath = filepath.Join(cfg.OutF, cfg.Plot)
	}

	var t = trainer.NewTrainer(trainer.Options{
		Epochs:          cfg.NIter,
		BatchSize:       cfg.BatchSize,
		Channels:        cfg.NC,
		ImageSize:       cfg.ImageSize,
		LearningRate:    cfg.LR,
		Beta1:           cfg.Beta1,
		WtL2:            cfg.WtL2,
		OverlapPred:     cfg.OverlapPred,
		OverlapL2Weight: cfg.OverlapL2Weight,
		SampleEvery:     cfg.SampleEvery,
		Checkpoint:      cadence,
		ChartPath:       chartPath,
	}, generator, discriminator, policy, store, sink)

	if _, err := t.Resume(cfg.NetG, cfg.NetD); err != nil {
		return err
	}
	return t.Run(ctx, loader)
}
