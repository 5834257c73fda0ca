package main

import (
	"math/rand"

	"k8s.io/klog/v2"

	"github.com/ChizhovVadim/InpaintGAN/internal/config"
	"github.com/ChizhovVadim/InpaintGAN/internal/domain"
	"github.com/ChizhovVadim/InpaintGAN/internal/imageio"
	"github.com/ChizhovVadim/InpaintGAN/internal/mask"
)

// runMask renders the mask of a policy to a PNG file.
func runMask(args []string) error {
	var (
		fs         = newFlagSet("mask")
		policyName = fs.String("mask", mask.PolicyCircle, "mask policy")
		imageSize  = fs.Int("imageSize", 128, "mask size")
		radius     = fs.Float64("maskRadius", mask.DefaultRadius, "radius of the circle mask")
		seed       = fs.Int64("seed", 1, "seed of the random policy")
		out        = fs.String("out", "mask.png", "output file")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *imageSize <= 0 {
		return domain.Configurationf("imageSize must be > 0, got %d", *imageSize)
	}
	policy, err := mask.ParsePolicy(*policyName, *imageSize, *radius, rand.New(rand.NewSource(*seed)))
	if err != nil {
		return err
	}
	var m = policy.Masks(1)[0]
	var path = config.MapPath(*out)
	if err := imageio.SaveMask(path, m); err != nil {
		return err
	}
	klog.Infof("saved %v mask %dx%d with %d masked pixels to %v", policy.Name(), m.W, m.H, m.Ones(), path)
	return nil
}
