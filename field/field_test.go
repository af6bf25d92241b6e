package field

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gofem-sph/tensor"
)

func Test_field01(tst *testing.T) {

	chk.PrintTitle("field01: resize and permute a varying vector field")

	f := NewField(tensor.TensorType{Ctype: tensor.Real, Shape: tensor.VectorShape(3)}, 0)
	chk.IntAssert(f.Size(), 0)

	err := f.Resize(3)
	if err != nil {
		tst.Fatalf("resize failed: %v", err)
	}
	v, err := AsRealView(f)
	if err != nil {
		tst.Fatalf("view failed: %v", err)
	}
	v.SetVector(0, []float64{1, 0, 0})
	v.SetVector(1, []float64{2, 0, 0})
	v.SetVector(2, []float64{3, 0, 0})

	err = f.Permute([]int{2, 0, 1})
	if err != nil {
		tst.Fatalf("permute failed: %v", err)
	}
	x0, _ := v.GetVector(0)
	chk.Scalar(tst, "permuted[0].x", 1e-15, x0[0], 3)
	x1, _ := v.GetVector(1)
	chk.Scalar(tst, "permuted[1].x", 1e-15, x1[0], 1)
	x2, _ := v.GetVector(2)
	chk.Scalar(tst, "permuted[2].x", 1e-15, x2[0], 2)
}

func Test_field02(tst *testing.T) {

	chk.PrintTitle("field02: identity permutation is a no-op")

	f := NewField(tensor.TensorType{Ctype: tensor.Real, Shape: tensor.ScalarShape()}, 4)
	v, _ := AsRealView(f)
	for i := 0; i < 4; i++ {
		v.SetScalar(i, float64(i))
	}
	f.Permute([]int{0, 1, 2, 3})
	for i := 0; i < 4; i++ {
		x, _ := v.GetScalar(i)
		chk.Scalar(tst, "identity permute", 1e-15, x, float64(i))
	}
}

func Test_field03(tst *testing.T) {

	chk.PrintTitle("field03: type mismatch fails with BadTypeError")

	f := NewField(tensor.TensorType{Ctype: tensor.Real, Shape: tensor.ScalarShape()}, 1)
	_, err := AsIntView(f)
	if err == nil {
		tst.Fatalf("expected BadTypeError, got nil")
	}
}

func Test_field04(tst *testing.T) {

	chk.PrintTitle("field04: non-permutation indices are rejected")

	f := NewField(tensor.TensorType{Ctype: tensor.Real, Shape: tensor.ScalarShape()}, 3)
	err := f.Permute([]int{0, 0, 2})
	if err == nil {
		tst.Fatalf("expected BadArgumentError for repeated index")
	}
}

func Test_field05(tst *testing.T) {

	chk.PrintTitle("field05: resizing a field to zero leaves it empty")

	f := NewField(tensor.TensorType{Ctype: tensor.Boolean, Shape: tensor.ScalarShape()}, 2)
	chk.IntAssert(f.Size(), 2)
	f.Resize(0)
	chk.IntAssert(f.Size(), 0)
}
