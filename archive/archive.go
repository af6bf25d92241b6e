// Package archive implements the persisted-model binary format of
// spec §6: a native binary archive with a length-prefixed entry per
// field — (name, ttype, count, raw-component-bytes) — little-endian
// two's-complement for integers, IEEE-754 for reals, row-major for
// rank-1/2 tensors.
//
// Grounded on ele.Element's Encode/Decode contract in
// ele/element.go — a per-object binary round-trip — generalized here
// to a whole model.Model rather than one element's internal state, and
// written directly against encoding/binary rather than gosl/utl's
// generic gob-based Encoder/Decoder: the archive format is a fixed,
// spec-exact byte layout meant to be readable independent of Go's gob
// wire format, which utl.Encoder/Decoder do not expose control over
// (see DESIGN.md).
package archive

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gofem-sph/field"
	"github.com/cpmech/gofem-sph/model"
	"github.com/cpmech/gofem-sph/tensor"
)

const magic = "SPHA"
const version = uint8(1)

func errBadFileFormat(msg string, args ...interface{}) error {
	return chk.Err("BadFileFormatError: archive: "+msg, args...)
}

// Save writes the full state of m (globals and every group's uniform
// and varying fields) to path.
func Save(path string, m *model.Model) error {
	f, err := os.Create(path)
	if err != nil {
		return errBadFileFormat("cannot create %q: %v", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	if _, err := w.WriteString(magic); err != nil {
		return err
	}
	if err := w.WriteByte(version); err != nil {
		return err
	}

	globalNames := m.GlobalNames()
	if err := writeUint32(w, uint32(len(globalNames))); err != nil {
		return err
	}
	for _, name := range globalNames {
		g, err := m.GetGlobal(name)
		if err != nil {
			return err
		}
		if err := writeEntry(w, name, g); err != nil {
			return err
		}
	}

	if err := writeUint32(w, uint32(m.GetGroupCount())); err != nil {
		return err
	}
	for _, idx := range groupIndexOrder(m) {
		g, err := m.GetGroupByIndex(idx)
		if err != nil {
			continue // removed group: its tombstoned slot is not saved
		}
		if err := writeGroup(w, g); err != nil {
			return err
		}
	}

	return w.Flush()
}

// groupIndexOrder returns 0..GroupIndexCount()-1 in ascending order —
// the stable group_index insertion order Model.AddGroup assigns.
func groupIndexOrder(m *model.Model) []int {
	n := m.GroupIndexCount()
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func writeGroup(w *bufio.Writer, g *model.Group) error {
	if err := writeString(w, g.Name()); err != nil {
		return err
	}
	if err := writeString(w, g.Type()); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(g.ItemCount())); err != nil {
		return err
	}

	uniformNames := g.UniformNames()
	if err := writeUint32(w, uint32(len(uniformNames))); err != nil {
		return err
	}
	for _, name := range uniformNames {
		f, err := g.GetUniform(name)
		if err != nil {
			return err
		}
		if err := writeEntry(w, name, f); err != nil {
			return err
		}
	}

	varyingNames := g.VaryingNames()
	if err := writeUint32(w, uint32(len(varyingNames))); err != nil {
		return err
	}
	for _, name := range varyingNames {
		f, err := g.GetVarying(name)
		if err != nil {
			return err
		}
		if err := writeEntry(w, name, f); err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(w *bufio.Writer, name string, f field.Field) error {
	if err := writeString(w, name); err != nil {
		return err
	}
	if err := writeTensorType(w, tensor.TensorType{Ctype: f.ComponentType(), Shape: f.Shape()}); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(f.Size())); err != nil {
		return err
	}
	raw, err := field.EncodeRaw(f)
	if err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(raw))); err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeString(w *bufio.Writer, s string) error {
	if err := writeUint32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := w.WriteString(s)
	return err
}

func writeTensorType(w io.Writer, tt tensor.TensorType) error {
	buf := []byte{byte(tt.Ctype), byte(tt.Shape.Rank)}
	if _, err := w.Write(buf); err != nil {
		return err
	}
	return writeUint32(w, uint32(tt.Shape.N))
}

// Load reads a full model.Model back from path, as written by Save.
func Load(path string) (*model.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errBadFileFormat("cannot open %q: %v", path, err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil || string(hdr[:]) != magic {
		return nil, errBadFileFormat("%q is not a valid archive (bad magic)", path)
	}
	v, err := r.ReadByte()
	if err != nil || v != version {
		return nil, errBadFileFormat("%q has unsupported archive version", path)
	}

	m := model.NewModel()

	nGlobals, err := readUint32(r)
	if err != nil {
		return nil, errBadFileFormat("%q: %v", path, err)
	}
	for i := uint32(0); i < nGlobals; i++ {
		name, ttype, raw, err := readEntry(r)
		if err != nil {
			return nil, errBadFileFormat("%q: global %d: %v", path, i, err)
		}
		g, err := m.AddGlobal(name, ttype)
		if err != nil {
			return nil, err
		}
		if err := field.DecodeRaw(g, raw); err != nil {
			return nil, err
		}
	}

	nGroups, err := readUint32(r)
	if err != nil {
		return nil, errBadFileFormat("%q: %v", path, err)
	}
	for i := uint32(0); i < nGroups; i++ {
		if err := readGroup(r, m); err != nil {
			return nil, errBadFileFormat("%q: group %d: %v", path, i, err)
		}
	}

	return m, nil
}

func readGroup(r *bufio.Reader, m *model.Model) error {
	name, err := readString(r)
	if err != nil {
		return err
	}
	typ, err := readString(r)
	if err != nil {
		return err
	}
	itemCount, err := readUint32(r)
	if err != nil {
		return err
	}

	g, err := m.AddGroup(name, typ)
	if err != nil {
		return err
	}
	if _, _, err := g.CreateItems(int(itemCount)); err != nil {
		return err
	}

	nUniforms, err := readUint32(r)
	if err != nil {
		return err
	}
	for i := uint32(0); i < nUniforms; i++ {
		fname, ttype, raw, err := readEntry(r)
		if err != nil {
			return err
		}
		uf, err := g.AddUniform(fname, ttype)
		if err != nil {
			return err
		}
		if err := field.DecodeRaw(uf, raw); err != nil {
			return err
		}
	}

	nVaryings, err := readUint32(r)
	if err != nil {
		return err
	}
	for i := uint32(0); i < nVaryings; i++ {
		fname, ttype, raw, err := readEntry(r)
		if err != nil {
			return err
		}
		vf, err := g.AddVarying(fname, ttype)
		if err != nil {
			return err
		}
		if err := field.DecodeRaw(vf, raw); err != nil {
			return err
		}
	}

	return nil
}

func readEntry(r *bufio.Reader) (name string, ttype tensor.TensorType, raw []byte, err error) {
	name, err = readString(r)
	if err != nil {
		return "", tensor.TensorType{}, nil, err
	}
	ttype, err = readTensorType(r)
	if err != nil {
		return "", tensor.TensorType{}, nil, err
	}
	if _, err = readUint32(r); err != nil { // count (redundant with raw length, kept for format fidelity)
		return "", tensor.TensorType{}, nil, err
	}
	rawLen, err := readUint32(r)
	if err != nil {
		return "", tensor.TensorType{}, nil, err
	}
	raw = make([]byte, rawLen)
	if _, err = io.ReadFull(r, raw); err != nil {
		return "", tensor.TensorType{}, nil, err
	}
	return name, ttype, raw, nil
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readString(r *bufio.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readTensorType(r *bufio.Reader) (tensor.TensorType, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return tensor.TensorType{}, err
	}
	n, err := readUint32(r)
	if err != nil {
		return tensor.TensorType{}, err
	}
	return tensor.TensorType{
		Ctype: tensor.ComponentType(buf[0]),
		Shape: tensor.Shape{Rank: tensor.Rank(buf[1]), N: int(n)},
	}, nil
}
