package model

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gofem-sph/field"
	"github.com/cpmech/gofem-sph/tensor"
)

func vec3() tensor.TensorType {
	return tensor.TensorType{Ctype: tensor.Real, Shape: tensor.VectorShape(3)}
}

func Test_model01(tst *testing.T) {

	chk.PrintTitle("model01: group/model lifecycle")

	m := NewModel()
	fluid, err := m.AddGroup("fluid", "fluid")
	if err != nil {
		tst.Fatalf("AddGroup failed: %v", err)
	}

	_, err = m.AddGroup("fluid", "fluid")
	if err == nil {
		tst.Fatalf("expected GroupExistsError")
	}

	posField, err := fluid.AddVarying("position", vec3())
	if err != nil {
		tst.Fatalf("AddVarying failed: %v", err)
	}

	first, n, err := fluid.CreateItems(2)
	if err != nil {
		tst.Fatalf("CreateItems failed: %v", err)
	}
	chk.IntAssert(first, 0)
	chk.IntAssert(n, 2)
	chk.IntAssert(fluid.ItemCount(), 2)
	chk.IntAssert(posField.Size(), 2)

	pos, _ := field.AsRealView(posField)
	pos.SetVector(0, []float64{0, 0, 0})
	pos.SetVector(1, []float64{1, 0, 0})
}

func Test_model02(tst *testing.T) {

	chk.PrintTitle("model02: AddUniform is idempotent")

	m := NewModel()
	g, _ := m.AddGroup("boundary", "boundary")
	f1, err := g.AddUniform("rest_density", tensor.TensorType{Ctype: tensor.Real, Shape: tensor.ScalarShape()})
	if err != nil {
		tst.Fatalf("AddUniform failed: %v", err)
	}
	f2, err := g.AddUniform("rest_density", tensor.TensorType{Ctype: tensor.Real, Shape: tensor.ScalarShape()})
	if err != nil {
		tst.Fatalf("second AddUniform failed: %v", err)
	}
	if f1 != f2 {
		tst.Fatalf("expected the same field view on repeated AddUniform")
	}

	_, err = g.AddUniform("rest_density", vec3())
	if err == nil {
		tst.Fatalf("expected FieldExistsError on mismatched type/shape")
	}
}

func Test_model03(tst *testing.T) {

	chk.PrintTitle("model03: destroying the last item empties varying fields")

	m := NewModel()
	g, _ := m.AddGroup("fluid", "fluid")
	g.AddVarying("position", vec3())
	g.CreateItems(1)
	chk.IntAssert(g.ItemCount(), 1)

	_, err := g.DestroyItems([]int{0})
	if err != nil {
		tst.Fatalf("DestroyItems failed: %v", err)
	}
	chk.IntAssert(g.ItemCount(), 0)
	posField, _ := g.GetVarying("position")
	chk.IntAssert(posField.Size(), 0)
}

func Test_model04(tst *testing.T) {

	chk.PrintTitle("model04: CreateItems(0) is a no-op on field length")

	m := NewModel()
	g, _ := m.AddGroup("fluid", "fluid")
	posField, _ := g.AddVarying("position", vec3())
	first, n, err := g.CreateItems(0)
	if err != nil {
		tst.Fatalf("CreateItems(0) failed: %v", err)
	}
	chk.IntAssert(first, 0)
	chk.IntAssert(n, 0)
	chk.IntAssert(posField.Size(), 0)
}

func Test_model05(tst *testing.T) {

	chk.PrintTitle("model05: globals always have length 1")

	m := NewModel()
	err := InitGlobals(m, 3)
	if err != nil {
		tst.Fatalf("InitGlobals failed: %v", err)
	}
	for _, name := range m.GlobalNames() {
		f, err := m.GetGlobal(name)
		if err != nil {
			tst.Fatalf("GetGlobal(%q) failed: %v", name, err)
		}
		chk.IntAssert(f.Size(), 1)
	}
}

func Test_model06(tst *testing.T) {

	chk.PrintTitle("model06: invalid identifiers are rejected")

	m := NewModel()
	_, err := m.AddGroup("1bad", "fluid")
	if err == nil {
		tst.Fatalf("expected InvalidIdentifierError")
	}
	g, _ := m.AddGroup("ok", "fluid")
	_, err = g.AddVarying("bad-name", vec3())
	if err == nil {
		tst.Fatalf("expected InvalidIdentifierError for field name")
	}
}
