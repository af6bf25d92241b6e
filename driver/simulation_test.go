package driver

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gofem-sph/field"
	"github.com/cpmech/gofem-sph/model"
	"github.com/cpmech/gofem-sph/tensor"
)

func setUniform(g *model.Group, name string, v float64) {
	f, _ := g.AddUniform(name, tensor.TensorType{Ctype: tensor.Real, Shape: tensor.ScalarShape()})
	view, _ := field.AsRealView(f)
	view.SetScalar(0, v)
}

func setGlobalScalar(m *model.Model, name string, v float64) {
	f, _ := m.GetGlobal(name)
	view, _ := field.AsRealView(f)
	view.SetScalar(0, v)
}

func buildFluidCube(g *model.Group, side int, step float64, center []float64) {
	g.CreateItems(side * side * side)
	pos, _ := g.GetVarying("position")
	posV, _ := field.AsRealView(pos)
	k := 0
	half := float64(side-1) * step / 2
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			for l := 0; l < side; l++ {
				posV.SetVector(k, []float64{
					center[0] + float64(i)*step - half,
					center[1] + float64(j)*step - half,
					center[2] + float64(l)*step - half,
				})
				k++
			}
		}
	}
}

// buildBoundaryBox fills g with two horizontal planes (floor at yLo,
// ceiling at yHi), so the out-of-domain AABB encloses the volume between
// them rather than degenerating to a single-height slab.
func buildBoundaryBox(g *model.Group, side int, step, yLo, yHi float64) {
	n := side * side
	g.CreateItems(2 * n)
	pos, _ := g.GetVarying("position")
	posV, _ := field.AsRealView(pos)
	half := float64(side-1) * step / 2
	k := 0
	for _, y := range []float64{yLo, yHi} {
		for i := 0; i < side; i++ {
			for l := 0; l < side; l++ {
				posV.SetVector(k, []float64{float64(i)*step - half, y, float64(l)*step - half})
				k++
			}
		}
	}
}

func Test_simulation01_falling_block_advances_clock_and_stays_bounded(tst *testing.T) {

	chk.PrintTitle("simulation01: a falling fluid block runs a few frames without error")

	h := 0.05
	rho0 := 1000.0

	m := model.NewModel()
	if err := model.InitGlobals(m, 3); err != nil {
		tst.Fatalf("InitGlobals failed: %v", err)
	}
	setGlobalScalar(m, model.GlobalSmoothingScale, h)
	setGlobalScalar(m, model.GlobalMaximumCFL, 0.4)
	setGlobalScalar(m, model.GlobalMaximumTimeStep, 0.001)
	setGlobalScalar(m, model.GlobalFadeDuration, 0)
	gravF, _ := m.GetGlobal(model.GlobalGravity)
	gravV, _ := field.AsRealView(gravF)
	gravV.SetVector(0, []float64{0, -9.8, 0})

	fluid, err := m.AddGroup("block", "fluid")
	if err != nil {
		tst.Fatalf("AddGroup(block) failed: %v", err)
	}
	boundary, err := m.AddGroup("floor", "boundary")
	if err != nil {
		tst.Fatalf("AddGroup(floor) failed: %v", err)
	}

	log := &Logger{Quiet: true}
	sim, err := NewSimulation(3, m, log)
	if err != nil {
		tst.Fatalf("NewSimulation failed: %v", err)
	}

	setUniform(fluid, "mass", h*h*h*rho0)
	setUniform(fluid, "rest_density", rho0)
	setUniform(fluid, "viscosity", 0)
	buildFluidCube(fluid, 4, 0.9*h, []float64{0, 0.5, 0})

	buildBoundaryBox(boundary, 10, h, -0.5, 1.5)
	setUniform(boundary, "rest_density", rho0)

	if err := sim.reloadAll(); err != nil {
		tst.Fatalf("reloadAll after populating groups failed: %v", err)
	}

	sim.FPS = 30
	if err := sim.RunFrames(2); err != nil {
		tst.Fatalf("RunFrames failed: %v", err)
	}

	if sim.Clock.Now() <= 0 {
		tst.Fatalf("expected the clock to have advanced, got %v", sim.Clock.Now())
	}
	if fluid.ItemCount() > 4*4*4 {
		tst.Fatalf("fluid particle count should never grow without a source, got %d", fluid.ItemCount())
	}
}
