package iisph

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gofem-sph/field"
	"github.com/cpmech/gofem-sph/model"
	"github.com/cpmech/gofem-sph/nhood"
	"github.com/cpmech/gofem-sph/scheme/sesph"
	"github.com/cpmech/gofem-sph/tensor"
)

func setUniform(g *model.Group, name string, v float64) {
	f, _ := g.AddUniform(name, tensor.TensorType{Ctype: tensor.Real, Shape: tensor.ScalarShape()})
	view, _ := field.AsRealView(f)
	view.SetScalar(0, v)
}

// buildCube fills a group with a regular lattice of side^3 particles
// spaced at the given step, centered on the origin.
func buildCube(g *model.Group, side int, step float64) {
	g.CreateItems(side * side * side)
	pos, _ := g.GetVarying("position")
	posV, _ := field.AsRealView(pos)
	k := 0
	half := float64(side-1) * step / 2
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			for l := 0; l < side; l++ {
				posV.SetVector(k, []float64{
					float64(i)*step - half,
					float64(j)*step - half,
					float64(l)*step - half,
				})
				k++
			}
		}
	}
}

func Test_iisph01_zero_particles_converges_immediately(tst *testing.T) {

	chk.PrintTitle("iisph01: zero fluid particles converges in zero iterations")

	m := model.NewModel()
	m.AddGroup("fluid", "fluid")

	se := sesph.New(3)
	se.Require(m)
	sol := New(3)
	if err := sol.Require(m); err != nil {
		tst.Fatalf("Require failed: %v", err)
	}

	se.Load(m)
	if err := sol.Load(se); err != nil {
		tst.Fatalf("Load failed: %v", err)
	}

	idx := nhood.NewIndex()
	idx.SetRadius(tensor.KernelSupportRadius(0.025))
	idx.Load(m)
	idx.Update()

	iters, aprde, err := sol.Run(m, idx, 0.001, 0.025)
	if err != nil {
		tst.Fatalf("Run failed: %v", err)
	}
	chk.IntAssert(iters, 0)
	chk.Scalar(tst, "aprde", 1e-12, aprde, 0)
}

func Test_iisph02_compressed_block_reduces_density_error(tst *testing.T) {

	chk.PrintTitle("iisph02: compressed fluid block (spec scenario 4)")

	h := 0.05
	rho0 := 1000.0
	spacing := 0.8 * h // overcompressed relative to a relaxed lattice
	mass := h * h * h * rho0

	m := model.NewModel()
	fluid, _ := m.AddGroup("fluid", "fluid")

	se := sesph.New(3)
	if err := se.Require(m); err != nil {
		tst.Fatalf("sesph Require failed: %v", err)
	}
	sol := New(3)
	if err := sol.Require(m); err != nil {
		tst.Fatalf("iisph Require failed: %v", err)
	}

	setUniform(fluid, "mass", mass)
	setUniform(fluid, "rest_density", rho0)
	setUniform(fluid, "viscosity", 0)
	setUniform(fluid, "compressibility", 1)

	const side = 8
	buildCube(fluid, side, spacing)

	if err := se.Load(m); err != nil {
		tst.Fatalf("sesph Load failed: %v", err)
	}
	if err := sol.Load(se); err != nil {
		tst.Fatalf("iisph Load failed: %v", err)
	}

	idx := nhood.NewIndex()
	idx.SetRadius(tensor.KernelSupportRadius(h))
	idx.Load(m)
	idx.Update()

	if err := se.ComputeDensity(idx, h); err != nil {
		tst.Fatalf("ComputeDensity failed: %v", err)
	}

	dt := 0.001
	iters, aprde, err := sol.Run(m, idx, dt, h)
	if err != nil {
		tst.Fatalf("Run failed: %v", err)
	}
	if iters < sol.MinIters {
		tst.Fatalf("expected at least MinIters=%d iterations, got %d", sol.MinIters, iters)
	}
	if iters > sol.MaxIters {
		tst.Fatalf("exceeded MaxIters=%d, got %d", sol.MaxIters, iters)
	}
	if aprde > 1 {
		tst.Fatalf("aprde did not shrink to a sane magnitude: %v", aprde)
	}

	fields, ok := se.FluidFields(0)
	if !ok {
		tst.Fatalf("expected fluid group to still be loaded")
	}
	var anyPositive bool
	for i := 0; i < fields.Position.Len(); i++ {
		pf, _ := fluid.GetVarying("pressure")
		pv, _ := field.AsRealView(pf)
		p, _ := pv.GetScalar(i)
		if p < 0 {
			tst.Fatalf("pressure must stay non-negative, got %v at particle %d", p, i)
		}
		if p > 0 {
			anyPositive = true
		}
	}
	if !anyPositive {
		tst.Fatalf("expected at least one particle to carry positive pressure in an overcompressed block")
	}
}
