package sesph

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gofem-sph/field"
	"github.com/cpmech/gofem-sph/model"
	"github.com/cpmech/gofem-sph/nhood"
	"github.com/cpmech/gofem-sph/tensor"
)

func setUniform(g *model.Group, name string, v float64) {
	f, _ := g.AddUniform(name, tensor.TensorType{Ctype: tensor.Real, Shape: tensor.ScalarShape()})
	view, _ := field.AsRealView(f)
	view.SetScalar(0, v)
}

func Test_sesph02_two_particle_density(tst *testing.T) {

	chk.PrintTitle("sesph02: two-fluid-particle rest density (spec scenario 1)")

	h := 0.025
	rho0 := 1000.0
	mass := h * h * h * rho0

	m := model.NewModel()
	fluid, _ := m.AddGroup("fluid", "fluid")

	s := New(3)
	if err := s.Require(m); err != nil {
		tst.Fatalf("Require failed: %v", err)
	}

	setUniform(fluid, "mass", mass)
	setUniform(fluid, "rest_density", rho0)
	setUniform(fluid, "viscosity", 0)

	fluid.CreateItems(2)
	pos, _ := fluid.GetVarying("position")
	posV, _ := field.AsRealView(pos)
	posV.SetVector(0, []float64{0, 0, 0})
	posV.SetVector(1, []float64{h, 0, 0})

	if err := s.Load(m); err != nil {
		tst.Fatalf("Load failed: %v", err)
	}

	idx := nhood.NewIndex()
	idx.SetRadius(tensor.KernelSupportRadius(h))
	idx.Load(m)
	idx.Update()

	if err := s.ComputeDensity(idx, h); err != nil {
		tst.Fatalf("ComputeDensity failed: %v", err)
	}

	densityF, _ := fluid.GetVarying("density")
	densityV, _ := field.AsRealView(densityF)

	expected := mass * (tensor.Kernel([]float64{0, 0, 0}, h, 3) + tensor.Kernel([]float64{h, 0, 0}, h, 3))
	for i := 0; i < 2; i++ {
		rho, _ := densityV.GetScalar(i)
		chk.AnaNum(tst, "density", 1e-6, rho, expected, false)
	}
}

func Test_sesph03_boundary_volume_plate(tst *testing.T) {

	chk.PrintTitle("sesph03: boundary volume of an infinite plate (spec scenario 2)")

	h := 0.02
	m := model.NewModel()
	boundary, _ := m.AddGroup("plate", "boundary")

	s := New(3)
	if err := s.Require(m); err != nil {
		tst.Fatalf("Require failed: %v", err)
	}
	setUniform(boundary, "rest_density", 1000)

	const side = 10
	boundary.CreateItems(side * side)
	pos, _ := boundary.GetVarying("position")
	posV, _ := field.AsRealView(pos)
	k := 0
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			posV.SetVector(k, []float64{float64(i) * h, float64(j) * h, 0})
			k++
		}
	}

	if err := s.Load(m); err != nil {
		tst.Fatalf("Load failed: %v", err)
	}
	idx := nhood.NewIndex()
	idx.SetRadius(tensor.KernelSupportRadius(h))
	idx.Load(m)
	idx.Update()

	if err := s.ComputeVolume(idx, h); err != nil {
		tst.Fatalf("ComputeVolume failed: %v", err)
	}

	volF, _ := boundary.GetVarying("volume")
	volV, _ := field.AsRealView(volF)

	// compare interior particles (away from the 2-cell-wide support edge)
	var interior []float64
	k = 0
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			if i >= 2 && i < side-2 && j >= 2 && j < side-2 {
				v, _ := volV.GetScalar(k)
				interior = append(interior, v)
			}
			k++
		}
	}
	if len(interior) < 2 {
		tst.Fatalf("not enough interior particles sampled")
	}
	mean := 0.0
	for _, v := range interior {
		mean += v
	}
	mean /= float64(len(interior))
	for _, v := range interior {
		if math.Abs(v-mean) > 0.01*mean {
			tst.Fatalf("interior volumes vary by more than 1%%: %v vs mean %v", v, mean)
		}
	}
}

func Test_sesph04_gravity_drop(tst *testing.T) {

	chk.PrintTitle("sesph04: gravity-only drop (spec scenario 3)")

	m := model.NewModel()
	fluid, _ := m.AddGroup("fluid", "fluid")
	s := New(3)
	s.Require(m)
	setUniform(fluid, "mass", 1)
	setUniform(fluid, "rest_density", 1000)
	setUniform(fluid, "viscosity", 0)
	fluid.CreateItems(1)

	pos, _ := fluid.GetVarying("position")
	posV, _ := field.AsRealView(pos)
	posV.SetVector(0, []float64{0, 0, 0})

	s.Load(m)

	g := []float64{0, -9.81, 0}
	dt := 0.01
	var t float64
	for step := 0; step < 100; step++ {
		s.InitializeAcceleration(g)
		s.IntegrateVelocityWithHardFade(dt, t, 0)
		s.IntegratePosition(dt)
		t += dt
	}

	posV2, _ := field.AsRealView(pos)
	final, _ := posV2.GetVector(0)
	tf := 100 * dt
	expectedY := -9.81 * tf * tf / 2
	chk.AnaNum(tst, "y position", 0.1, final[1], expectedY, false)
}
