// Package config holds the settings of a training run. Values come from
// defaults, then an optional YAML file, then explicitly set flags.
package config

import (
	"bytes"
	"flag"
	"math/rand"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ChizhovVadim/InpaintGAN/internal/dataset"
	"github.com/ChizhovVadim/InpaintGAN/internal/domain"
	"github.com/ChizhovVadim/InpaintGAN/internal/mask"
	"github.com/ChizhovVadim/InpaintGAN/internal/trainer"
)

const (
	maxAutoSeed = 10000

	DefaultWtlD = 0.001
)

type Config struct {
	Dataset         string  `yaml:"dataset"`
	DataRoot        string  `yaml:"dataroot"`
	Workers         int     `yaml:"workers"`
	BatchSize       int     `yaml:"batchSize"`
	ImageSize       int     `yaml:"imageSize"`
	NZ              int     `yaml:"nz"`
	NGF             int     `yaml:"ngf"`
	NDF             int     `yaml:"ndf"`
	NC              int     `yaml:"nc"`
	NIter           int     `yaml:"niter"`
	LR              float64 `yaml:"lr"`
	Beta1           float64 `yaml:"beta1"`
	Cuda            bool    `yaml:"cuda"`
	NGPU            int     `yaml:"ngpu"`
	NetG            string  `yaml:"netG"`
	NetD            string  `yaml:"netD"`
	OutF            string  `yaml:"outf"`
	ManualSeed      int64   `yaml:"manualSeed"`
	NBottleneck     int     `yaml:"nBottleneck"`
	OverlapPred     int     `yaml:"overlapPred"`
	NEF             int     `yaml:"nef"`
	WtL2            float64 `yaml:"wtl2"`
	WtlD            float64 `yaml:"wtlD"`
	Mask            string  `yaml:"mask"`
	MaskRadius      float64 `yaml:"maskRadius"`
	CheckpointEvery string  `yaml:"checkpointEvery"`
	SampleEvery     int     `yaml:"sampleEvery"`
	OverlapL2Weight float64 `yaml:"overlapL2Weight"`
	Plot            string  `yaml:"plot"`
	ConfigFile      string  `yaml:"-"`
}

func Default() Config {
	return Config{
		Dataset:         dataset.KindStreetView,
		DataRoot:        "dataset/train",
		Workers:         2,
		BatchSize:       64,
		ImageSize:       128,
		NZ:              100,
		NGF:             64,
		NDF:             64,
		NC:              3,
		NIter:           25,
		LR:              0.0002,
		Beta1:           0.5,
		NGPU:            1,
		OutF:            ".",
		NBottleneck:     4000,
		OverlapPred:     4,
		NEF:             64,
		WtL2:            0.998,
		WtlD:            DefaultWtlD,
		Mask:            mask.PolicyCircle,
		MaskRadius:      mask.DefaultRadius,
		CheckpointEvery: trainer.CheckpointEveryStep.String(),
		SampleEvery:     trainer.DefaultSampleEvery,
		OverlapL2Weight: 1,
		Plot:            "my_plot.png",
	}
}

func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Dataset, "dataset", c.Dataset, strings.Join(dataset.Kinds(), " | "))
	fs.StringVar(&c.DataRoot, "dataroot", c.DataRoot, "path to dataset")
	fs.IntVar(&c.Workers, "workers", c.Workers, "number of data loading workers")
	fs.IntVar(&c.BatchSize, "batchSize", c.BatchSize, "input batch size")
	fs.IntVar(&c.ImageSize, "imageSize", c.ImageSize, "the height / width of the input image to network")
	fs.IntVar(&c.NZ, "nz", c.NZ, "size of the latent z vector")
	fs.IntVar(&c.NGF, "ngf", c.NGF, "generator filters in the last deconv")
	fs.IntVar(&c.NDF, "ndf", c.NDF, "discriminator filters in the first conv")
	fs.IntVar(&c.NC, "nc", c.NC, "image channels")
	fs.IntVar(&c.NIter, "niter", c.NIter, "number of epochs to train for")
	fs.Float64Var(&c.LR, "lr", c.LR, "learning rate")
	fs.Float64Var(&c.Beta1, "beta1", c.Beta1, "beta1 for adam")
	fs.BoolVar(&c.Cuda, "cuda", c.Cuda, "enables cuda")
	fs.IntVar(&c.NGPU, "ngpu", c.NGPU, "number of GPUs to use")
	fs.StringVar(&c.NetG, "netG", c.NetG, "path to netG (to continue training)")
	fs.StringVar(&c.NetD, "netD", c.NetD, "path to netD (to continue training)")
	fs.StringVar(&c.OutF, "outf", c.OutF, "folder to output images and model checkpoints")
	fs.Int64Var(&c.ManualSeed, "manualSeed", c.ManualSeed, "manual seed, 0 picks a random one")
	fs.IntVar(&c.NBottleneck, "nBottleneck", c.NBottleneck, "dim of the encoder bottleneck")
	fs.IntVar(&c.OverlapPred, "overlapPred", c.OverlapPred, "overlapping edges")
	fs.IntVar(&c.NEF, "nef", c.NEF, "encoder filters in the first conv")
	fs.Float64Var(&c.WtL2, "wtl2", c.WtL2, "weight of the L2 loss, 0 means adversarial only")
	fs.Float64Var(&c.WtlD, "wtlD", c.WtlD, "discriminator loss weight, not used by the loss")
	fs.StringVar(&c.Mask, "mask", c.Mask, strings.Join(mask.PolicyNames(), " | "))
	fs.Float64Var(&c.MaskRadius, "maskRadius", c.MaskRadius, "radius of the circle mask")
	fs.StringVar(&c.CheckpointEvery, "checkpointEvery", c.CheckpointEvery, "step | epoch")
	fs.IntVar(&c.SampleEvery, "sampleEvery", c.SampleEvery, "save image grids every n steps of an epoch")
	fs.Float64Var(&c.OverlapL2Weight, "overlapL2Weight", c.OverlapL2Weight, "L2 weight of the overlapPred border of the mask, 1 disables")
	fs.StringVar(&c.Plot, "plot", c.Plot, "loss chart file name in outf, empty disables")
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "YAML file with settings, flags take precedence")
}

// Parse reads args with fs. flag.ErrHelp is returned unchanged.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg = Default()
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cfg, err
		}
		return cfg, domain.Configurationf("%v", err)
	}
	if cfg.ConfigFile != "" {
		var fromFile = Default()
		if err := Load(MapPath(cfg.ConfigFile), &fromFile); err != nil {
			return cfg, err
		}
		var overlay = flag.NewFlagSet(fs.Name(), flag.ContinueOnError)
		fromFile.RegisterFlags(overlay)
		var err error
		fs.Visit(func(f *flag.Flag) {
			// logging flags share fs but are not settings
			if err == nil && overlay.Lookup(f.Name) != nil {
				err = overlay.Set(f.Name, f.Value.String())
			}
		})
		if err != nil {
			return cfg, domain.Configurationf("%v", err)
		}
		cfg = fromFile
	}
	cfg.DataRoot = MapPath(cfg.DataRoot)
	cfg.NetG = MapPath(cfg.NetG)
	cfg.NetD = MapPath(cfg.NetD)
	cfg.OutF = MapPath(cfg.OutF)
	return cfg, cfg.Validate()
}

// Load decodes a YAML file over c. Unknown keys are an error.
func Load(path string, c *Config) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.Configurationf("config %v: %v", path, err)
	}
	var dec = yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return domain.Configurationf("config %v: %v", path, err)
	}
	c.ConfigFile = path
	return nil
}

// YAML renders the settings as they would appear in a config file.
func (c *Config) YAML() string {
	var out, err = yaml.Marshal(c)
	if err != nil {
		return err.Error()
	}
	return string(out)
}

// ResolveSeed picks a seed in [1, 10000] when none was given.
func (c *Config) ResolveSeed() int64 {
	if c.ManualSeed == 0 {
		c.ManualSeed = 1 + rand.Int63n(maxAutoSeed)
	}
	return c.ManualSeed
}

func (c *Config) Validate() error {
	if !dataset.ValidKind(c.Dataset) {
		return domain.Configurationf("unknown dataset %q, expected one of %v", c.Dataset, dataset.Kinds())
	}
	if c.DataRoot == "" {
		return domain.Configurationf("dataroot is required")
	}
	if _, err := os.Stat(c.DataRoot); err != nil {
		return domain.Configurationf("dataroot: %v", err)
	}
	if c.ImageSize < 8 || c.ImageSize&(c.ImageSize-1) != 0 {
		return domain.Configurationf("imageSize %d must be a power of two >= 8", c.ImageSize)
	}
	for _, v := range []struct {
		name  string
		value int
	}{
		{"batchSize", c.BatchSize},
		{"niter", c.NIter},
		{"nz", c.NZ},
		{"ngf", c.NGF},
		{"ndf", c.NDF},
		{"nef", c.NEF},
		{"nBottleneck", c.NBottleneck},
		{"sampleEvery", c.SampleEvery},
	} {
		if v.value <= 0 {
			return domain.Configurationf("%v must be > 0, got %d", v.name, v.value)
		}
	}
	if c.Workers < 0 || c.OverlapPred < 0 || c.NGPU < 0 {
		return domain.Configurationf("workers, overlapPred and ngpu must be >= 0")
	}
	if c.NC != 1 && c.NC != 3 {
		return domain.Configurationf("nc must be 1 or 3, got %d", c.NC)
	}
	if c.LR <= 0 {
		return domain.Configurationf("lr must be > 0, got %v", c.LR)
	}
	if c.Beta1 < 0 || c.Beta1 >= 1 {
		return domain.Configurationf("beta1 must be in [0, 1), got %v", c.Beta1)
	}
	if c.WtL2 < 0 || c.WtL2 > 1 {
		return domain.Configurationf("wtl2 must be in [0, 1], got %v", c.WtL2)
	}
	if c.OverlapL2Weight <= 0 {
		return domain.Configurationf("overlapL2Weight must be > 0, got %v", c.OverlapL2Weight)
	}
	if !validPolicy(c.Mask) {
		return domain.Configurationf("unknown mask %q, expected one of %v", c.Mask, mask.PolicyNames())
	}
	if c.MaskRadius <= 0 {
		return domain.Configurationf("maskRadius must be > 0, got %v", c.MaskRadius)
	}
	if _, err := trainer.ParseCadence(c.CheckpointEvery); err != nil {
		return err
	}
	return nil
}

func validPolicy(name string) bool {
	for _, p := range mask.PolicyNames() {
		if p == name {
			return true
		}
	}
	return false
}

// MapPath expands a leading ~/ to the home directory.
func MapPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		curUser, err := user.Current()
		if err != nil {
			return path
		}
		return filepath.Join(curUser.HomeDir, strings.TrimPrefix(path, "~/"))
	}
	return path
}
