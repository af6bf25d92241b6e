// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

import (
	"github.com/cpmech/gofem-sph/field"
	"github.com/cpmech/gofem-sph/model"
	"github.com/cpmech/gofem-sph/nhood"
	"github.com/cpmech/gofem-sph/scheme/sesph"
	"github.com/cpmech/gofem-sph/solver/iisph"
	"github.com/cpmech/gofem-sph/solver/viscosity"
	"github.com/cpmech/gofem-sph/tensor"
	"github.com/cpmech/gofem-sph/vtkio"
	"github.com/cpmech/gosl/io"
)

// PermuteEvery is the k of spec §4.H step 2: every k-th frame, particles
// are permuted via the Neighbor index for cache locality.
const PermuteEvery = 4

// Simulation bundles the per-run state the step loop of spec §4.H
// drives: the Model, the shared Neighbor index, the virtual clock and
// scheduler, the SESPH/IISPH/viscosity procedures, and the particle
// sources polled every inner iteration.
type Simulation struct {
	Dim int
	M   *model.Model
	Idx *nhood.Index

	Clock     *Clock
	Scheduler *Scheduler
	SESPH     *sesph.Scheme
	IISPH     *iisph.Solver
	Viscosity *viscosity.Solver
	Sources   []*Source

	Log *Logger

	FPS                float64
	OutDir             string
	FnKey              string
	OutOfDomainPadding float64 // multiple of h added to the boundary AABB

	h     float64
	frame int
	dt    float64
}

// NewSimulation validates and wraps an already-populated Model (groups,
// uniforms, globals.smoothing_scale/gravity/maximum_cfl/maximum_time_step
// set by the scene loader), declaring every field the schemes/solvers
// need and loading the first snapshot.
func NewSimulation(dim int, m *model.Model, log *Logger) (*Simulation, error) {
	hF, err := m.GetGlobal(model.GlobalSmoothingScale)
	if err != nil {
		return nil, err
	}
	hV, err := field.AsRealView(hF)
	if err != nil {
		return nil, err
	}
	h, err := hV.GetScalar(0)
	if err != nil {
		return nil, err
	}
	if h <= 0 {
		return nil, errBadFileFormat("smoothing_scale must be positive, got %v", h)
	}

	s := &Simulation{
		Dim: dim, M: m, Log: log, h: h,
		FPS:                30,
		OutOfDomainPadding: 2, // 2h beyond the boundary AABB, a generous slack
		Idx:                nhood.NewIndex(),
		Clock:              NewClock(),
		SESPH:              sesph.New(dim),
		IISPH:              iisph.New(dim),
		Viscosity:          viscosity.New(dim),
	}
	s.Scheduler = NewScheduler(s.Clock)

	if err := s.Idx.SetRadius(tensor.KernelSupportRadius(h)); err != nil {
		return nil, err
	}
	if err := s.SESPH.Require(m); err != nil {
		return nil, err
	}
	if err := s.IISPH.Require(m); err != nil {
		return nil, err
	}
	if err := viscosity.Require(m); err != nil {
		return nil, err
	}

	if err := s.reloadAll(); err != nil {
		return nil, err
	}
	return s, nil
}

// AddSource registers src and schedules its first invocation
// immediately, per spec §4.H's construction contract.
func (s *Simulation) AddSource(src *Source) {
	s.Sources = append(s.Sources, src)
	s.Scheduler.Schedule(s.Clock.Now(), src.Callback(s.Idx, s.Clock, s.h, s.Dim))
}

func (s *Simulation) reloadAll() error {
	if err := s.Idx.Load(s.M); err != nil {
		return err
	}
	if err := s.Idx.Update(); err != nil {
		return err
	}
	if err := s.SESPH.Load(s.M); err != nil {
		return err
	}
	if err := s.IISPH.Load(s.SESPH); err != nil {
		return err
	}
	if err := s.Viscosity.Load(s.SESPH); err != nil {
		return err
	}
	return nil
}

func (s *Simulation) anyGroupDirty() bool {
	n := s.M.GroupIndexCount()
	for idx := 0; idx < n; idx++ {
		g, err := s.M.GetGroupByIndex(idx)
		if err != nil || g == nil {
			continue
		}
		if g.Dirty() {
			return true
		}
	}
	return false
}

func (s *Simulation) clearAllDirty() {
	n := s.M.GroupIndexCount()
	for idx := 0; idx < n; idx++ {
		g, err := s.M.GetGroupByIndex(idx)
		if err == nil && g != nil {
			g.ClearDirty()
		}
	}
}

// RunFrames drives nFrames worth of the spec §4.H step loop, saving a
// VTK snapshot of every fluid group at the start of each frame.
func (s *Simulation) RunFrames(nFrames int) error {
	frameDuration := 1.0 / s.FPS
	if s.dt <= 0 {
		s.dt = frameDuration / 10 // seed value before the first CFL estimate
	}

	for f := 0; f < nFrames; f++ {
		if err := s.saveFrame(); err != nil {
			return err
		}

		if s.frame%PermuteEvery == 0 {
			if err := s.Idx.Permute(s.M); err != nil {
				return err
			}
			if err := s.reloadSchemesOnly(); err != nil {
				return err
			}
		}

		frameDone := s.Clock.Now() + frameDuration
		for s.Clock.Now() < frameDone {
			if err := s.innerStep(); err != nil {
				return err
			}
		}

		if err := s.removeOutOfDomain(); err != nil {
			return err
		}

		s.frame++
	}
	return nil
}

// reloadSchemesOnly re-snapshots scheme/solver field views without
// touching the Neighbor index (already fresh from the caller's Permute).
func (s *Simulation) reloadSchemesOnly() error {
	if err := s.SESPH.Load(s.M); err != nil {
		return err
	}
	if err := s.IISPH.Load(s.SESPH); err != nil {
		return err
	}
	return s.Viscosity.Load(s.SESPH)
}

// innerStep implements one iteration of spec §4.H step 3: update the
// Neighbor index, poll sources, run the per-step SPH pipeline, and
// advance the clock by the previous step's CFL-bounded dt.
func (s *Simulation) innerStep() error {
	if err := s.Idx.Update(); err != nil {
		return err
	}

	// Scheduler.Tick() fires any due source callbacks; a source that
	// creates particles flips its target group's dirty flag, which is
	// how we detect "did anything get created this step" per spec
	// §4.H step 3.b.
	s.Scheduler.Tick()
	if s.anyGroupDirty() {
		if err := s.reloadAll(); err != nil {
			return err
		}
		s.clearAllDirty()
	}

	if err := s.zeroGlobalScalar(model.GlobalMaximumSpeed); err != nil {
		return err
	}

	h := s.h
	dt := s.dt

	if err := s.SESPH.ComputeVolume(s.Idx, h); err != nil {
		return err
	}
	if err := s.SESPH.ComputeDensity(s.Idx, h); err != nil {
		return err
	}

	gravity, err := s.globalVector(model.GlobalGravity)
	if err != nil {
		return err
	}
	if err := s.SESPH.InitializeAcceleration(gravity); err != nil {
		return err
	}
	if err := s.SESPH.AccumulateViscosity(s.Idx, h); err != nil {
		return err
	}

	currentTime, err := s.globalScalar(model.GlobalCurrentTime)
	if err != nil {
		return err
	}
	fadeDuration, err := s.globalScalar(model.GlobalFadeDuration)
	if err != nil {
		return err
	}

	if err := s.SESPH.IntegrateVelocityWithHardFade(dt, currentTime, fadeDuration); err != nil {
		return err
	}

	iters, aprde, err := s.IISPH.Run(s.M, s.Idx, dt, h)
	if err != nil {
		return err
	}
	if iters >= s.IISPH.MaxIters {
		s.Log.Warnf("iisph: hit max_iters=%d without reaching max_aprde (aprde=%.3e)", s.IISPH.MaxIters, aprde)
	}

	if err := s.SESPH.IntegrateVelocityWithHardFade(dt, currentTime, fadeDuration); err != nil {
		return err
	}

	if s.hasAnyViscosity() {
		viters, diverged, err := s.Viscosity.Run(s.Idx, dt, h, fadeDuration, currentTime)
		if err != nil {
			return err
		}
		for i, d := range diverged {
			if d {
				s.Log.Warnf("viscosity: group %d's CG broke down numerically after %d iterations", i, viters[i])
			}
		}
		if err := s.SESPH.IntegrateVelocityWithHardFade(dt, currentTime, fadeDuration); err != nil {
			return err
		}
	}

	if err := s.SESPH.IntegratePosition(dt); err != nil {
		return err
	}

	maxSpeed := s.SESPH.MaxSpeed()
	if err := s.setGlobalScalar(model.GlobalMaximumSpeed, maxSpeed); err != nil {
		return err
	}

	maxCFL, err := s.globalScalar(model.GlobalMaximumCFL)
	if err != nil {
		return err
	}
	maxDt, err := s.globalScalar(model.GlobalMaximumTimeStep)
	if err != nil {
		return err
	}

	s.Clock.Advance(dt)
	if err := s.setGlobalScalar(model.GlobalCurrentTime, s.Clock.Now()); err != nil {
		return err
	}

	newDt := maxDt
	if maxSpeed > 1e-300 {
		cfl := maxCFL * h / maxSpeed
		if cfl < newDt {
			newDt = cfl
		}
	}
	s.dt = newDt
	return s.setGlobalScalar(model.GlobalTimeStep, newDt)
}

func (s *Simulation) hasAnyViscosity() bool {
	n := s.M.GroupIndexCount()
	for idx := 0; idx < n; idx++ {
		g, err := s.M.GetGroupByIndex(idx)
		if err != nil || g == nil || g.Type() != "fluid" {
			continue
		}
		vf, err := g.GetUniform(model.UniformViscosity)
		if err != nil {
			continue
		}
		vv, err := field.AsRealView(vf)
		if err != nil {
			continue
		}
		v, _ := vv.GetScalar(0)
		if v != 0 {
			return true
		}
	}
	return false
}

func (s *Simulation) globalScalar(name string) (float64, error) {
	f, err := s.M.GetGlobal(name)
	if err != nil {
		return 0, err
	}
	v, err := field.AsRealView(f)
	if err != nil {
		return 0, err
	}
	return v.GetScalar(0)
}

func (s *Simulation) setGlobalScalar(name string, x float64) error {
	f, err := s.M.GetGlobal(name)
	if err != nil {
		return err
	}
	v, err := field.AsRealView(f)
	if err != nil {
		return err
	}
	return v.SetScalar(0, x)
}

func (s *Simulation) zeroGlobalScalar(name string) error {
	return s.setGlobalScalar(name, 0)
}

func (s *Simulation) globalVector(name string) ([]float64, error) {
	f, err := s.M.GetGlobal(name)
	if err != nil {
		return nil, err
	}
	v, err := field.AsRealView(f)
	if err != nil {
		return nil, err
	}
	return v.GetVector(0)
}

// removeOutOfDomain implements spec §4.H step 4: a fluid particle whose
// position leaves a padded AABB of the union of boundary positions is
// destroyed.
func (s *Simulation) removeOutOfDomain() error {
	lo, hi, ok := s.boundaryAABB()
	if !ok {
		return nil // no boundary groups loaded: nothing constrains domain extent
	}
	pad := s.OutOfDomainPadding * s.h
	for i := range lo {
		lo[i] -= pad
		hi[i] += pad
	}

	n := s.M.GroupIndexCount()
	for idx := 0; idx < n; idx++ {
		g, err := s.M.GetGroupByIndex(idx)
		if err != nil || g == nil || g.Type() != "fluid" {
			continue
		}
		pf, err := g.GetVarying("position")
		if err != nil {
			continue
		}
		pv, err := field.AsRealView(pf)
		if err != nil {
			continue
		}
		var doomed []int
		for i := 0; i < pv.Len(); i++ {
			p, err := pv.GetVector(i)
			if err != nil {
				return err
			}
			outside := false
			for d := 0; d < s.Dim; d++ {
				if p[d] < lo[d] || p[d] > hi[d] {
					outside = true
					break
				}
			}
			if outside {
				doomed = append(doomed, i)
			}
		}
		if len(doomed) == 0 {
			continue
		}
		if _, err := g.DestroyItems(doomed); err != nil {
			return err
		}
		s.Log.Warnf("removed %d out-of-domain particle(s) from group %q", len(doomed), g.Name())
	}
	return nil
}

func (s *Simulation) boundaryAABB() (lo, hi []float64, ok bool) {
	lo = tensor.MostPositive(s.Dim)
	hi = tensor.MostNegative(s.Dim)
	n := s.M.GroupIndexCount()
	found := false
	for idx := 0; idx < n; idx++ {
		g, err := s.M.GetGroupByIndex(idx)
		if err != nil || g == nil || g.Type() != "boundary" {
			continue
		}
		pf, err := g.GetVarying("position")
		if err != nil {
			continue
		}
		pv, err := field.AsRealView(pf)
		if err != nil {
			continue
		}
		for i := 0; i < pv.Len(); i++ {
			p, err := pv.GetVector(i)
			if err != nil {
				continue
			}
			found = true
			lo = tensor.ComponentMin(lo, p)
			hi = tensor.ComponentMax(hi, p)
		}
	}
	return lo, hi, found
}

// saveFrame writes every "visible"-tagged (or fluid) group's position,
// and its velocity, density and pressure where present, to a VTK legacy
// POLYDATA file named "<FnKey>_<group>_<frame, 6 digits>.vtk" under
// OutDir.
func (s *Simulation) saveFrame() error {
	if s.OutDir == "" {
		return nil // headless/test mode: no output configured
	}
	n := s.M.GroupIndexCount()
	for idx := 0; idx < n; idx++ {
		g, err := s.M.GetGroupByIndex(idx)
		if err != nil || g == nil {
			continue
		}
		if !g.HasTag("visible") && g.Type() != "fluid" {
			continue
		}
		if err := s.writeGroupFrame(g); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulation) writeGroupFrame(g *model.Group) error {
	pf, err := g.GetVarying("position")
	if err != nil {
		return err
	}
	pv, err := field.AsRealView(pf)
	if err != nil {
		return err
	}

	var scalars []vtkio.Scalar
	var vectors []vtkio.Vector
	if vf, err := g.GetVarying("velocity"); err == nil {
		if vv, err := field.AsRealView(vf); err == nil {
			vectors = append(vectors, vtkio.Vector{Name: "velocity", View: vv, Dim: s.Dim})
		}
	}
	if df, err := g.GetVarying("density"); err == nil {
		if dv, err := field.AsRealView(df); err == nil {
			scalars = append(scalars, vtkio.Scalar{Name: "density", View: dv})
		}
	}
	if pf, err := g.GetVarying("pressure"); err == nil {
		if pvw, err := field.AsRealView(pf); err == nil {
			scalars = append(scalars, vtkio.Scalar{Name: "pressure", View: pvw})
		}
	}

	path := s.outputPath(g.Name(), s.frame)
	return vtkio.Write(path, io.Sf("frame %d, group %s", s.frame, g.Name()), pv, s.Dim, scalars, vectors)
}

func (s *Simulation) outputPath(groupName string, frame int) string {
	return io.Sf("%s/%s_%s_%06d.vtk", s.OutDir, s.FnKey, groupName, frame)
}
