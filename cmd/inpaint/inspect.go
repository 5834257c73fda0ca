package main

import (
	"os"

	"github.com/ChizhovVadim/InpaintGAN/internal/checkpoint"
	"github.com/ChizhovVadim/InpaintGAN/internal/config"
	"github.com/ChizhovVadim/InpaintGAN/internal/domain"
)

// runInspect prints the epoch and parameter shapes of a checkpoint.
func runInspect(args []string) error {
	var fs = newFlagSet("inspect")
	var path = fs.String("ckpt", "", "checkpoint file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return domain.Configurationf("-ckpt is required")
	}
	return checkpoint.Describe(os.Stdout, config.MapPath(*path))
}
