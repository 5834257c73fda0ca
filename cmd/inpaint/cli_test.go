package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ChizhovVadim/InpaintGAN/internal/config"
	"github.com/ChizhovVadim/InpaintGAN/internal/domain"
)

func TestCommandHandler(t *testing.T) {
	var cli = NewCommandHandler()
	var got []string
	cli.Add("mask", func(args []string) error {
		got = args
		return nil
	})
	if err := cli.Execute([]string{"mask", "-out", "x.png"}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "-out" {
		t.Errorf("unexpected args %v", got)
	}
	if err := cli.Execute([]string{"paint"}); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
	if err := cli.Execute(nil); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestRunMask(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "mask.png")
	if err := runMask([]string{"-mask", "small_square", "-imageSize", "64", "-out", path}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
	if err := runMask([]string{"-mask", "hexagon"}); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestRunInspectMissing(t *testing.T) {
	var err = runInspect([]string{"-ckpt", filepath.Join(t.TempDir(), "netG.ckpt")})
	if !errors.Is(err, domain.ErrCheckpointNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestTrainFlagsWithConfigFile(t *testing.T) {
	var dir = t.TempDir()
	var path = filepath.Join(dir, "run.yaml")
	if err := os.WriteFile(path, []byte("dataroot: "+dir+"\nniter: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Parse(newFlagSet("train"), []string{"-config", path, "-v", "1", "-logtostderr"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NIter != 2 {
		t.Errorf("config file not applied, got niter %d", cfg.NIter)
	}
}
