package field

import "github.com/cpmech/gofem-sph/tensor"

// Field is the type-erased interface every concrete field storage
// implements. Varying fields track a group's item count; uniform fields
// always report Size()==1.
type Field interface {
	Size() int
	ComponentType() tensor.ComponentType
	Shape() tensor.Shape
	Resize(n int) error
	Permute(perm []int) error
}

// storage is the shared concrete implementation backing both uniform and
// varying fields: a flat array-of-tensors, dispatched by component type.
// Only one of real/ints/bools is populated, selected by ctype.
type storage struct {
	ctype tensor.ComponentType
	shape tensor.Shape
	n     int
	real  []float64
	ints  []int64
	bools []bool
}

func newStorage(ctype tensor.ComponentType, shape tensor.Shape, n int) *storage {
	s := &storage{ctype: ctype, shape: shape}
	s.Resize(n)
	return s
}

func (s *storage) Size() int                        { return s.n }
func (s *storage) ComponentType() tensor.ComponentType { return s.ctype }
func (s *storage) Shape() tensor.Shape               { return s.shape }

func (s *storage) Resize(n int) error {
	if n < 0 {
		return errBadArgument("cannot resize field to negative length %d", n)
	}
	sz := s.shape.Size()
	switch s.ctype {
	case tensor.Real:
		s.real = resizeReal(s.real, n*sz)
	case tensor.Integer:
		s.ints = resizeInt(s.ints, n*sz)
	case tensor.Boolean:
		s.bools = resizeBool(s.bools, n*sz)
	}
	s.n = n
	return nil
}

func resizeReal(old []float64, n int) []float64 {
	v := make([]float64, n)
	copy(v, old)
	return v
}
func resizeInt(old []int64, n int) []int64 {
	v := make([]int64, n)
	copy(v, old)
	return v
}
func resizeBool(old []bool, n int) []bool {
	v := make([]bool, n)
	copy(v, old)
	return v
}

// Permute applies perm such that new[i] = old[perm[i]], for every tensor
// slot. Fails with BadArgumentError if perm is not a permutation of
// [0,n).
func (s *storage) Permute(perm []int) error {
	if len(perm) != s.n {
		return errBadArgument("permutation length %d does not match field length %d", len(perm), s.n)
	}
	seen := make([]bool, s.n)
	for _, p := range perm {
		if p < 0 || p >= s.n || seen[p] {
			return errBadArgument("index %d is not a valid permutation entry", p)
		}
		seen[p] = true
	}
	sz := s.shape.Size()
	switch s.ctype {
	case tensor.Real:
		out := make([]float64, len(s.real))
		for i, p := range perm {
			copy(out[i*sz:(i+1)*sz], s.real[p*sz:(p+1)*sz])
		}
		s.real = out
	case tensor.Integer:
		out := make([]int64, len(s.ints))
		for i, p := range perm {
			copy(out[i*sz:(i+1)*sz], s.ints[p*sz:(p+1)*sz])
		}
		s.ints = out
	case tensor.Boolean:
		out := make([]bool, len(s.bools))
		for i, p := range perm {
			copy(out[i*sz:(i+1)*sz], s.bools[p*sz:(p+1)*sz])
		}
		s.bools = out
	}
	return nil
}

// NewField allocates a new field of the given tensor type and initial
// length (1 for uniform fields, the group's item count for varying ones).
func NewField(ttype tensor.TensorType, n int) Field {
	return newStorage(ttype.Ctype, ttype.Shape, n)
}
