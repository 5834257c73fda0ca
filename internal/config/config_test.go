package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ChizhovVadim/InpaintGAN/internal/domain"
)

func newFlagSet() *flag.FlagSet {
	var fs = flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestDefaults(t *testing.T) {
	var root = t.TempDir()
	cfg, err := Parse(newFlagSet(), []string{"-dataroot", root})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BatchSize != 64 || cfg.ImageSize != 128 || cfg.NBottleneck != 4000 ||
		cfg.WtL2 != 0.998 || cfg.WtlD != 0.001 || cfg.OverlapPred != 4 || cfg.Workers != 2 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Dataset != "streetview" || cfg.Mask != "circle" || cfg.CheckpointEvery != "step" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestPrecedence(t *testing.T) {
	var dir = t.TempDir()
	var path = filepath.Join(dir, "train.yaml")
	var content = "dataroot: " + dir + "\nbatchSize: 16\nniter: 3\nmask: random\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Parse(newFlagSet(), []string{"-config", path, "-niter", "7"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BatchSize != 16 || cfg.Mask != "random" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.NIter != 7 {
		t.Errorf("flag must override the file, got niter %d", cfg.NIter)
	}
	if cfg.ImageSize != 128 {
		t.Errorf("default lost, got imageSize %d", cfg.ImageSize)
	}
}

func TestConfigFileWithForeignFlags(t *testing.T) {
	var dir = t.TempDir()
	var path = filepath.Join(dir, "train.yaml")
	if err := os.WriteFile(path, []byte("dataroot: "+dir+"\nbatchSize: 16\n"), 0644); err != nil {
		t.Fatal(err)
	}
	var fs = newFlagSet()
	var verbosity = fs.Int("v", 0, "log level")
	cfg, err := Parse(fs, []string{"-config", path, "-v", "2", "-niter", "5"})
	if err != nil {
		t.Fatal(err)
	}
	if *verbosity != 2 {
		t.Errorf("foreign flag not parsed, got %d", *verbosity)
	}
	if cfg.BatchSize != 16 || cfg.NIter != 5 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestUnknownKey(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("batchsize: 3\n"), 0644)
	var cfg = Default()
	if err := Load(path, &cfg); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	var root = t.TempDir()
	var cases = map[string]func(c *Config){
		"dataset":    func(c *Config) { c.Dataset = "mnist" },
		"dataroot":   func(c *Config) { c.DataRoot = filepath.Join(root, "missing") },
		"imageSize":  func(c *Config) { c.ImageSize = 100 },
		"batchSize":  func(c *Config) { c.BatchSize = 0 },
		"wtl2":       func(c *Config) { c.WtL2 = 1.5 },
		"lr":         func(c *Config) { c.LR = 0 },
		"beta1":      func(c *Config) { c.Beta1 = 1 },
		"nc":         func(c *Config) { c.NC = 2 },
		"mask":       func(c *Config) { c.Mask = "triangle" },
		"cadence":    func(c *Config) { c.CheckpointEvery = "hour" },
		"overlap":    func(c *Config) { c.OverlapL2Weight = 0 },
		"maskRadius": func(c *Config) { c.MaskRadius = -1 },
	}
	for name, modify := range cases {
		var cfg = Default()
		cfg.DataRoot = root
		modify(&cfg)
		if err := cfg.Validate(); !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("%v: expected configuration error, got %v", name, err)
		}
	}
}

func TestHelp(t *testing.T) {
	if _, err := Parse(newFlagSet(), []string{"-h"}); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("expected ErrHelp, got %v", err)
	}
}

func TestResolveSeed(t *testing.T) {
	var cfg = Default()
	var seed = cfg.ResolveSeed()
	if seed < 1 || seed > 10000 || cfg.ManualSeed != seed {
		t.Errorf("unexpected seed %d", seed)
	}
	cfg.ManualSeed = 42
	if cfg.ResolveSeed() != 42 {
		t.Error("explicit seed must be kept")
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	var cfg = Default()
	cfg.NIter = 9
	var path = filepath.Join(t.TempDir(), "out.yaml")
	if err := os.WriteFile(path, []byte(cfg.YAML()), 0644); err != nil {
		t.Fatal(err)
	}
	var loaded = Default()
	if err := Load(path, &loaded); err != nil {
		t.Fatal(err)
	}
	if loaded.NIter != 9 {
		t.Errorf("expected niter 9, got %d", loaded.NIter)
	}
}
