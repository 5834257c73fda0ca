// Package model builds the context encoder generator and the local
// discriminator of the inpainting GAN.
package model

import (
	"fmt"
	"strings"

	"github.com/ChizhovVadim/InpaintGAN/internal/domain"
	"github.com/ChizhovVadim/InpaintGAN/internal/ml"
)

const (
	leakySlope = 0.2
	// spatial size of the last encoder feature map
	baseSize = 4
	// channel multiplier cap
	maxMult = 8
)

type Options struct {
	ImageSize   int
	Channels    int
	NEF         int // encoder filters in the first conv
	NGF         int // decoder filters in the last deconv
	NDF         int // discriminator filters in the first conv
	NBottleneck int
}

func (o Options) validate() error {
	if o.ImageSize < 2*baseSize || o.ImageSize&(o.ImageSize-1) != 0 {
		return domain.Configurationf("model: image size %d must be a power of two >= %d", o.ImageSize, 2*baseSize)
	}
	if o.Channels <= 0 || o.NEF <= 0 || o.NGF <= 0 || o.NDF <= 0 || o.NBottleneck <= 0 {
		return domain.Configurationf("model: non-positive width in %+v", o)
	}
	return nil
}

// depth is the number of stride 2 convs from ImageSize down to baseSize.
func (o Options) depth() int {
	var result int
	for size := o.ImageSize; size > baseSize; size /= 2 {
		result++
	}
	return result
}

// widths returns base*min(2^k, maxMult) for k < depth.
func widths(base, depth int) []int {
	var result = make([]int, depth)
	for k := range result {
		result[k] = base * min(1<<k, maxMult)
	}
	return result
}

// Describe lists the layers of a network with their param shapes.
func Describe(name string, seq *ml.Sequential) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%v (%d params)\n", name, ml.CountParams(seq.Params()))
	for i, layer := range seq.Layers() {
		fmt.Fprintf(&sb, "  (%d) %T", i, layer)
		for _, p := range layer.Params() {
			if p.Trainable {
				fmt.Fprintf(&sb, " %v%v", p.Name, p.Shape)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
