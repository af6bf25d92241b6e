package field

import "github.com/cpmech/gofem-sph/tensor"

// RealView is a typed, non-owning accessor over a real-valued field.
// It refers to the field's storage object, not to its backing array, so
// it keeps reading the current contents after the field is resized or
// permuted.
type RealView struct {
	s *storage
}

func newRealView(s *storage) (RealView, error) {
	if s.ctype != tensor.Real {
		return RealView{}, errBadType("field has component type %v, not real", s.ctype)
	}
	return RealView{s: s}, nil
}

// Len returns the number of tensors in the field.
func (v RealView) Len() int { return v.s.n }

// Shape returns the per-tensor shape.
func (v RealView) Shape() tensor.Shape { return v.s.shape }

// GetScalar reads tensor i as a rank-0 value.
func (v RealView) GetScalar(i int) (float64, error) {
	if v.s.shape.Rank != tensor.Rank0 {
		return 0, errBadType("field is not scalar-shaped")
	}
	return v.s.real[i], nil
}

// SetScalar writes tensor i as a rank-0 value.
func (v RealView) SetScalar(i int, x float64) error {
	if v.s.shape.Rank != tensor.Rank0 {
		return errBadType("field is not scalar-shaped")
	}
	v.s.real[i] = x
	return nil
}

// GetVector reads tensor i as a rank-1 value (a fresh copy).
func (v RealView) GetVector(i int) ([]float64, error) {
	if v.s.shape.Rank != tensor.Rank1 {
		return nil, errBadType("field is not vector-shaped")
	}
	n := v.s.shape.N
	out := make([]float64, n)
	copy(out, v.s.real[i*n:(i+1)*n])
	return out, nil
}

// SetVector writes tensor i as a rank-1 value.
func (v RealView) SetVector(i int, x []float64) error {
	if v.s.shape.Rank != tensor.Rank1 {
		return errBadType("field is not vector-shaped")
	}
	n := v.s.shape.N
	if len(x) != n {
		return errBadType("vector has length %d, field expects %d", len(x), n)
	}
	copy(v.s.real[i*n:(i+1)*n], x)
	return nil
}

// GetMatrix reads tensor i as a rank-2 value (a fresh n x n copy).
func (v RealView) GetMatrix(i int) ([][]float64, error) {
	if v.s.shape.Rank != tensor.Rank2 {
		return nil, errBadType("field is not matrix-shaped")
	}
	n := v.s.shape.N
	out := make([][]float64, n)
	base := i * n * n
	for r := 0; r < n; r++ {
		out[r] = make([]float64, n)
		copy(out[r], v.s.real[base+r*n:base+(r+1)*n])
	}
	return out, nil
}

// SetMatrix writes tensor i as a rank-2 value.
func (v RealView) SetMatrix(i int, x [][]float64) error {
	if v.s.shape.Rank != tensor.Rank2 {
		return errBadType("field is not matrix-shaped")
	}
	n := v.s.shape.N
	if len(x) != n {
		return errBadType("matrix has %d rows, field expects %d", len(x), n)
	}
	base := i * n * n
	for r := 0; r < n; r++ {
		if len(x[r]) != n {
			return errBadType("matrix row %d has %d columns, field expects %d", r, len(x[r]), n)
		}
		copy(v.s.real[base+r*n:base+(r+1)*n], x[r])
	}
	return nil
}

// IntView is a typed, non-owning accessor over an integer-valued field.
type IntView struct {
	s *storage
}

func newIntView(s *storage) (IntView, error) {
	if s.ctype != tensor.Integer {
		return IntView{}, errBadType("field has component type %v, not integer", s.ctype)
	}
	return IntView{s: s}, nil
}

func (v IntView) Len() int { return v.s.n }

func (v IntView) GetScalar(i int) (int64, error) {
	if v.s.shape.Rank != tensor.Rank0 {
		return 0, errBadType("field is not scalar-shaped")
	}
	return v.s.ints[i], nil
}

func (v IntView) SetScalar(i int, x int64) error {
	if v.s.shape.Rank != tensor.Rank0 {
		return errBadType("field is not scalar-shaped")
	}
	v.s.ints[i] = x
	return nil
}

// BoolView is a typed, non-owning accessor over a boolean-valued field.
type BoolView struct {
	s *storage
}

func newBoolView(s *storage) (BoolView, error) {
	if s.ctype != tensor.Boolean {
		return BoolView{}, errBadType("field has component type %v, not boolean", s.ctype)
	}
	return BoolView{s: s}, nil
}

func (v BoolView) Len() int { return v.s.n }

func (v BoolView) GetScalar(i int) (bool, error) {
	if v.s.shape.Rank != tensor.Rank0 {
		return false, errBadType("field is not scalar-shaped")
	}
	return v.s.bools[i], nil
}

func (v BoolView) SetScalar(i int, x bool) error {
	if v.s.shape.Rank != tensor.Rank0 {
		return errBadType("field is not scalar-shaped")
	}
	v.s.bools[i] = x
	return nil
}

// AsRealView attempts to view f as a real-valued field.
func AsRealView(f Field) (RealView, error) {
	s, ok := f.(*storage)
	if !ok {
		return RealView{}, errBadType("field is not backed by native storage")
	}
	return newRealView(s)
}

// AsIntView attempts to view f as an integer-valued field.
func AsIntView(f Field) (IntView, error) {
	s, ok := f.(*storage)
	if !ok {
		return IntView{}, errBadType("field is not backed by native storage")
	}
	return newIntView(s)
}

// AsBoolView attempts to view f as a boolean-valued field.
func AsBoolView(f Field) (BoolView, error) {
	s, ok := f.(*storage)
	if !ok {
		return BoolView{}, errBadType("field is not backed by native storage")
	}
	return newBoolView(s)
}
