package dataset

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/ChizhovVadim/InpaintGAN/internal/domain"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// folderSource is a directory tree of image files, usually one
// subdirectory per class.
type folderSource struct {
	paths []string
}

func openFolder(root string) (*folderSource, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, domain.Configurationf("dataset: root %v: %v", root, err)
	}
	if !info.IsDir() {
		return nil, domain.Configurationf("dataset: root %v is not a directory", root)
	}
	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && imageExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &folderSource{paths: paths}, nil
}

func (s *folderSource) Len() int {
	return len(s.paths)
}

func (s *folderSource) Load(i int, size, channels int, sample []float64) error {
	var path = s.paths[i]
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return errors.Wrapf(err, "decode %v", path)
	}
	toSample(resizeCrop(img, size), channels, sample)
	return nil
}
