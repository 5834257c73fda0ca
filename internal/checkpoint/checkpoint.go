// Package checkpoint persists network parameters together with the epoch to
// resume from.
package checkpoint

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/ChizhovVadim/InpaintGAN/internal/domain"
	"github.com/ChizhovVadim/InpaintGAN/internal/ml"
)

const (
	versionMajor = 1
	versionMinor = 0

	maxNameLen = 1 << 10
	maxRank    = 8
)

var magic = [2]byte{'C', 'E'}

// Tensor is a named parameter snapshot.
type Tensor struct {
	Name  string
	Shape []int
	Data  []float64
}

type Checkpoint struct {
	Epoch  int
	Params []Tensor
}

// Snapshot copies params, buffers included.
func Snapshot(params []*ml.Param, epoch int) *Checkpoint {
	var result = &Checkpoint{
		Epoch:  epoch,
		Params: make([]Tensor, len(params)),
	}
	for i, p := range params {
		var data = make([]float64, len(p.Data))
		copy(data, p.Data)
		result.Params[i] = Tensor{
			Name:  p.Name,
			Shape: append([]int(nil), p.Shape...),
			Data:  data,
		}
	}
	return result
}

// Restore copies the checkpoint values into params by name. Every param must
// be present with the same shape.
func Restore(params []*ml.Param, ckpt *Checkpoint) error {
	var byName = make(map[string]*Tensor, len(ckpt.Params))
	for i := range ckpt.Params {
		byName[ckpt.Params[i].Name] = &ckpt.Params[i]
	}
	for _, p := range params {
		var t, found = byName[p.Name]
		if !found {
			return errors.Wrapf(domain.ErrCheckpointIncompatible, "param %v missing", p.Name)
		}
		if !sameShape(t.Shape, p.Shape) || len(t.Data) != len(p.Data) {
			return errors.Wrapf(domain.ErrCheckpointIncompatible,
				"param %v shape %v, expected %v", p.Name, t.Shape, p.Shape)
		}
	}
	if len(byName) != len(params) {
		return errors.Wrapf(domain.ErrCheckpointIncompatible,
			"checkpoint has %d params, network %d", len(byName), len(params))
	}
	for _, p := range params {
		copy(p.Data, byName[p.Name].Data)
	}
	return nil
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Binary layout, little-endian:
//   - magic 'C' 'E', major and minor version, one byte each
//   - epoch, uint32
//   - number of params, uint32
//   - per param: name length uint32 and name bytes, rank uint32,
//     rank dims uint32 each, then the values as float64
//   - CRC-32 (IEEE) of everything above, uint32
//
// Save writes to a temporary file in the same directory and renames it over
// path, so a reader never sees a partial checkpoint.
func Save(path string, ckpt *Checkpoint) error {
	var dir = filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	var tmpName = f.Name()
	defer os.Remove(tmpName)

	err = write(f, ckpt)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return errors.Wrapf(err, "write checkpoint %v", path)
	}
	return os.Rename(tmpName, path)
}

func write(w io.Writer, ckpt *Checkpoint) error {
	var crc = crc32.NewIEEE()
	var bw = bufio.NewWriter(io.MultiWriter(w, crc))

	var header = []byte{magic[0], magic[1], versionMajor, versionMinor}
	if _, err := bw.Write(header); err != nil {
		return err
	}
	var buf = make([]byte, 8)
	var putUint32 = func(v uint32) error {
		binary.LittleEndian.PutUint32(buf, v)
		_, err := bw.Write(buf[:4])
		return err
	}
	if err := putUint32(uint32(ckpt.Epoch)); err != nil {
		return err
	}
	if err := putUint32(uint32(len(ckpt.Params))); err != nil {
		return err
	}
	for _, p := range ckpt.Params {
		if err := putUint32(uint32(len(p.Name))); err != nil {
			return err
		}
		if _, err := bw.WriteString(p.Name); err != nil {
			return err
		}
		if err := putUint32(uint32(len(p.Shape))); err != nil {
			return err
		}
		for _, dim := range p.Shape {
			if err := putUint32(uint32(dim)); err != nil {
				return err
			}
		}
		for _, v := range p.Data {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
			if _, err := bw.Write(buf); err != nil {
				return err
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(buf, crc.Sum32())
	_, err := w.Write(buf[:4])
	return err
}

// Load reads a checkpoint written by Save.
func Load(path string) (*Checkpoint, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(domain.ErrCheckpointNotFound, "%v", path)
		}
		return nil, errors.Wrapf(domain.ErrCheckpointCorrupt, "%v: %v", path, err)
	}
	ckpt, err := read(content)
	if err != nil {
		return nil, errors.Wrapf(err, "%v", path)
	}
	return ckpt, nil
}

func corruptf(format string, args ...interface{}) error {
	return errors.Wrapf(domain.ErrCheckpointCorrupt, format, args...)
}

func read(content []byte) (*Checkpoint, error) {
	if len(content) < 4+4+4+4 {
		return nil, corruptf("file too short")
	}
	if content[0] != magic[0] || content[1] != magic[1] {
		return nil, corruptf("magic word does not match")
	}
	if content[2] != versionMajor || content[3] != versionMinor {
		return nil, corruptf("version %d.%d is not supported", content[2], content[3])
	}
	var body = content[:len(content)-4]
	var stored = binary.LittleEndian.Uint32(content[len(content)-4:])
	if crc32.ChecksumIEEE(body) != stored {
		return nil, corruptf("checksum mismatch")
	}

	var r = bytes.NewReader(body[4:])
	var buf = make([]byte, 8)
	var readUint32 = func() (uint32, error) {
		if _, err := io.ReadFull(r, buf[:4]); err != nil {
			return 0, corruptf("truncated")
		}
		return binary.LittleEndian.Uint32(buf), nil
	}

	epoch, err := readUint32()
	if err != nil {
		return nil, err
	}
	count, err := readUint32()
	if err != nil {
		return nil, err
	}
	var ckpt = &Checkpoint{Epoch: int(epoch)}
	for i := uint32(0); i < count; i++ {
		nameLen, err := readUint32()
		if err != nil {
			return nil, err
		}
		if nameLen > maxNameLen {
			return nil, corruptf("param %d name length %d", i, nameLen)
		}
		var name = make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, corruptf("truncated")
		}
		rank, err := readUint32()
		if err != nil {
			return nil, err
		}
		if rank > maxRank {
			return nil, corruptf("param %s rank %d", name, rank)
		}
		var shape = make([]int, rank)
		var size = 1
		for j := range shape {
			dim, err := readUint32()
			if err != nil {
				return nil, err
			}
			shape[j] = int(dim)
			size *= shape[j]
			if size > r.Len()/8 {
				return nil, corruptf("param %s truncated", name)
			}
		}
		var data = make([]float64, size)
		for j := range data {
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, corruptf("param %s truncated", name)
			}
			data[j] = math.Float64frombits(binary.LittleEndian.Uint64(buf))
		}
		ckpt.Params = append(ckpt.Params, Tensor{
			Name:  string(name),
			Shape: shape,
			Data:  data,
		})
	}
	if r.Len() != 0 {
		return nil, corruptf("%d trailing bytes", r.Len())
	}
	return ckpt, nil
}
