package mask

import (
	"math/rand"
	"sort"

	"github.com/ChizhovVadim/InpaintGAN/internal/domain"
)

const (
	PolicyCircle = "circle"
	PolicyRandom = "random"

	DefaultRadius = 20

	referenceSize = 128
)

// IPolicy yields the masks of one batch. Implementations are Fixed and
// RandomRect; the policy is chosen once per run.
type IPolicy interface {
	Name() string
	// Masks returns one mask per sample. The slice and the masks are only
	// valid until the next call.
	Masks(n int) []*Mask
	policy()
}

// Fixed gives every sample of every batch the same immutable mask.
type Fixed struct {
	name  string
	mask  *Mask
	masks []*Mask
}

func NewFixed(name string, m *Mask) *Fixed {
	return &Fixed{name: name, mask: m}
}

func (p *Fixed) Name() string { return p.name }

func (p *Fixed) Mask() *Mask { return p.mask }

func (p *Fixed) Masks(n int) []*Mask {
	if cap(p.masks) < n {
		p.masks = make([]*Mask, n)
	}
	p.masks = p.masks[:n]
	for i := range p.masks {
		p.masks[i] = p.mask
	}
	return p.masks
}

func (p *Fixed) policy() {}

// RandomRect draws an independent random rectangle for every sample.
type RandomRect struct {
	size int
	rnd  *rand.Rand
	pool []*Mask
}

func NewRandomRect(size int, rnd *rand.Rand) *RandomRect {
	return &RandomRect{size: size, rnd: rnd}
}

func (p *RandomRect) Name() string { return PolicyRandom }

func (p *RandomRect) Masks(n int) []*Mask {
	for len(p.pool) < n {
		p.pool = append(p.pool, New(p.size, p.size))
	}
	var masks = p.pool[:n]
	for _, m := range masks {
		m.Reset()
		p.nextRect().Draw(m)
	}
	return masks
}

// nextRect picks both corners uniformly in [1, size).
func (p *RandomRect) nextRect() Rect {
	var x1, x2 = p.coord(), p.coord()
	var y1, y2 = p.coord(), p.coord()
	return Rect{
		X1: min(x1, x2),
		X2: max(x1, x2),
		Y1: min(y1, y2),
		Y2: max(y1, y2),
	}
}

func (p *RandomRect) coord() int {
	return 1 + p.rnd.Intn(p.size-1)
}

func (p *RandomRect) policy() {}

var presets = map[string]func(size int) Rect{
	"regular_square": func(size int) Rect {
		return Rect{size / 4, size/4 + size/2, size / 4, size/4 + size/2}
	},
	"small_central_square": func(size int) Rect {
		return Rect{size / 3, 2 * size / 3, size / 3, 2 * size / 3}
	},
	"big_rectangle": func(size int) Rect {
		return Rect{scale(30, size), scale(80, size), scale(20, size), scale(110, size)}
	},
	"long_rectangle": func(size int) Rect {
		return Rect{scale(60, size), scale(75, size), scale(30, size), scale(100, size)}
	},
	"small_square": func(size int) Rect {
		return Rect{scale(60, size), scale(75, size), scale(30, size), scale(45, size)}
	},
}

// PolicyNames lists every accepted policy name.
func PolicyNames() []string {
	var result = []string{PolicyCircle, PolicyRandom}
	var names []string
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return append(result, names...)
}

// DefaultCircle is the centred disc of the given radius.
func DefaultCircle(size int, radius float64) *Mask {
	var center = float64(size / 2)
	return FromShape(size, size, Circle{CX: center, CY: center, R: radius})
}

// ParsePolicy selects the mask policy of a run. rnd is only used by the
// random policy.
func ParsePolicy(name string, size int, radius float64, rnd *rand.Rand) (IPolicy, error) {
	if size < 2 {
		return nil, domain.Configurationf("mask: image size %d", size)
	}
	switch name {
	case "", PolicyCircle:
		if radius <= 0 {
			return nil, domain.Configurationf("mask: radius %v must be > 0", radius)
		}
		return NewFixed(PolicyCircle, DefaultCircle(size, radius)), nil
	case PolicyRandom:
		return NewRandomRect(size, rnd), nil
	}
	if preset, found := presets[name]; found {
		return NewFixed(name, FromShape(size, size, preset(size))), nil
	}
	return nil, domain.Configurationf("mask: unknown policy %q, expected one of %v", name, PolicyNames())
}
