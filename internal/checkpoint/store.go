package checkpoint

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/ChizhovVadim/InpaintGAN/internal/ml"
)

type ModelID string

const (
	Generator     ModelID = "G"
	Discriminator ModelID = "D"
)

const (
	DefaultGeneratorFile     = "netG_streetview.ckpt"
	DefaultDiscriminatorFile = "netlocalD.ckpt"
)

// Store keeps one checkpoint per network at a fixed path, each save
// overwriting the previous one.
type Store struct {
	Dir               string
	GeneratorFile     string
	DiscriminatorFile string
}

func NewStore(dir string) *Store {
	return &Store{
		Dir:               dir,
		GeneratorFile:     DefaultGeneratorFile,
		DiscriminatorFile: DefaultDiscriminatorFile,
	}
}

func (s *Store) Path(id ModelID) string {
	switch id {
	case Generator:
		return filepath.Join(s.Dir, s.GeneratorFile)
	case Discriminator:
		return filepath.Join(s.Dir, s.DiscriminatorFile)
	}
	panic(fmt.Sprintf("checkpoint: unknown model %q", id))
}

func (s *Store) Save(id ModelID, epoch int, params []*ml.Param) error {
	return Save(s.Path(id), Snapshot(params, epoch))
}

// SaveAll writes both networks with the same epoch.
func (s *Store) SaveAll(epoch int, generator, discriminator []*ml.Param) error {
	if err := s.Save(Generator, epoch, generator); err != nil {
		return err
	}
	return s.Save(Discriminator, epoch, discriminator)
}

// Describe prints the epoch and the parameter shapes of a checkpoint file.
func Describe(w io.Writer, path string) error {
	ckpt, err := Load(path)
	if err != nil {
		return err
	}
	var total int
	fmt.Fprintf(w, "%v\n", path)
	fmt.Fprintf(w, "epoch: %d\n", ckpt.Epoch)
	for _, p := range ckpt.Params {
		fmt.Fprintf(w, "%-24s %v\n", p.Name, p.Shape)
		total += len(p.Data)
	}
	fmt.Fprintf(w, "params: %d values: %d\n", len(ckpt.Params), total)
	return nil
}
