package field

import (
	"encoding/binary"
	"math"

	"github.com/cpmech/gofem-sph/tensor"
)

// EncodeRaw serializes f's components in row-major, little-endian,
// two's-complement (integers) / IEEE-754 (reals) form, one component
// at a time in storage order — the "raw-component-bytes" of spec §6's
// persisted-model archive format. Booleans are serialized as single
// bytes (0 or 1), a natural extension the spec's external-interfaces
// section does not need to name since no boolean field exists in the
// current scheme set, but which keeps the codec total over ComponentType.
func EncodeRaw(f Field) ([]byte, error) {
	s, ok := f.(*storage)
	if !ok {
		return nil, errBadType("field is not backed by native storage")
	}
	switch s.ctype {
	case tensor.Real:
		buf := make([]byte, 8*len(s.real))
		for i, x := range s.real {
			binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(x))
		}
		return buf, nil
	case tensor.Integer:
		buf := make([]byte, 8*len(s.ints))
		for i, x := range s.ints {
			binary.LittleEndian.PutUint64(buf[i*8:], uint64(x))
		}
		return buf, nil
	case tensor.Boolean:
		buf := make([]byte, len(s.bools))
		for i, b := range s.bools {
			if b {
				buf[i] = 1
			}
		}
		return buf, nil
	}
	return nil, errBadType("unknown component type %v", s.ctype)
}

// DecodeRaw is the inverse of EncodeRaw: it overwrites f's existing
// components (already sized by a prior Resize) from data.
func DecodeRaw(f Field, data []byte) error {
	s, ok := f.(*storage)
	if !ok {
		return errBadType("field is not backed by native storage")
	}
	switch s.ctype {
	case tensor.Real:
		if len(data) != 8*len(s.real) {
			return errBadType("raw real data has %d bytes, expected %d", len(data), 8*len(s.real))
		}
		for i := range s.real {
			s.real[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
		return nil
	case tensor.Integer:
		if len(data) != 8*len(s.ints) {
			return errBadType("raw integer data has %d bytes, expected %d", len(data), 8*len(s.ints))
		}
		for i := range s.ints {
			s.ints[i] = int64(binary.LittleEndian.Uint64(data[i*8:]))
		}
		return nil
	case tensor.Boolean:
		if len(data) != len(s.bools) {
			return errBadType("raw boolean data has %d bytes, expected %d", len(data), len(s.bools))
		}
		for i := range s.bools {
			s.bools[i] = data[i] != 0
		}
		return nil
	}
	return errBadType("unknown component type %v", s.ctype)
}
