// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package viscosity

import (
	"github.com/cpmech/gofem-sph/field"
	"github.com/cpmech/gofem-sph/model"
	"github.com/cpmech/gofem-sph/nhood"
	"github.com/cpmech/gofem-sph/scheme"
	"github.com/cpmech/gofem-sph/scheme/sesph"
	"github.com/cpmech/gofem-sph/tensor"
)

// Defaults per spec §4.G.
const (
	DefaultTolerance = 1.0
	DefaultMaxIters  = 100

	// laplacianEps softens the 1/|dx|^2 singularity at small separation,
	// the usual SPH viscous-Laplacian regulariser (0.01 h^2).
	laplacianEpsFactor = 0.01
)

type fluidState struct {
	fields    sesph.Fields
	viscosity float64
}

// Solver implements the implicit velocity-diffusion viscosity system:
// per spatial dimension d, solves (I - dt*nu*L) v_d = v_d^old for a
// diffused velocity component, where L is the standard SPH viscous
// Laplacian operator (Brookshaw-style), via the generic CG engine in
// cg.go. This is spec §4.G's "velocity reconstruction" system; the
// sibling "vorticity diffusion" system shares the exact same Problem
// shape (a component-wise implicit diffusion) and is not separately
// instantiated here since the sesph scheme carries no vorticity state
// to diffuse — see DESIGN.md.
type Solver struct {
	Dim       int
	Tolerance float64
	MaxIters  int

	fluids  []fluidState
	scratch *scheme.ScratchPool
}

// New returns a viscosity solver with spec-default tolerance/iteration
// cap.
func New(dim int) *Solver {
	return &Solver{
		Dim:       dim,
		Tolerance: DefaultTolerance,
		MaxIters:  DefaultMaxIters,
		scratch:   scheme.NewScratchPool(scheme.NumWorkers),
	}
}

// Load snapshots fluid field views from a loaded sesph.Scheme.
func (s *Solver) Load(se *sesph.Scheme) error {
	s.fluids = s.fluids[:0]
	for _, h := range se.Fluids() {
		fields, ok := se.FluidFields(h.Index)
		if !ok {
			continue
		}
		vf, err := h.Group.GetUniform("viscosity")
		var visc float64
		if err == nil {
			vv, _ := field.AsRealView(vf)
			visc, _ = vv.GetScalar(0)
		}
		s.fluids = append(s.fluids, fluidState{fields: fields, viscosity: visc})
	}
	return nil
}

func (s *Solver) byIndex(groupIdx int) *fluidState {
	for i := range s.fluids {
		if s.fluids[i].fields.Handle.Index == groupIdx {
			return &s.fluids[i]
		}
	}
	return nil
}

// Run solves the implicit velocity-diffusion system for every loaded
// fluid group, dimension by dimension (spec §4.G's sequential-dimension
// ordering guarantee), and writes the diffused velocity back in place.
// Returns, per group, the iteration count of its slowest-converging
// dimension and whether any dimension's CG broke down numerically
// (reported, not fatal, per spec §4.G).
func (s *Solver) Run(idx *nhood.Index, dt, h, fadeDuration, currentTime float64) (iters []int, diverged []bool, err error) {
	iters = make([]int, len(s.fluids))
	diverged = make([]bool, len(s.fluids))

	for fi := range s.fluids {
		fs := &s.fluids[fi]
		n := fs.fields.Position.Len()
		if n == 0 || fs.viscosity == 0 {
			continue
		}

		velocities := make([][]float64, s.Dim)
		for d := 0; d < s.Dim; d++ {
			velocities[d] = make([]float64, n)
		}
		for i := 0; i < n; i++ {
			v, _ := fs.fields.Velocity.GetVector(i)
			for d := 0; d < s.Dim; d++ {
				velocities[d][i] = v[d]
			}
		}

		laplacianWeights := s.computeLaplacianWeights(fs, idx, h)

		worst := 0
		anyDiverged := false
		for d := 0; d < s.Dim; d++ {
			x0 := velocities[d]
			problem := Problem{
				N:      n,
				RHS:    func(i int) float64 { return x0[i] },
				System: makeSystem(laplacianWeights, fs.viscosity, dt),
				Diagonal: func(i int) float64 {
					return 1 + dt*fs.viscosity*laplacianWeights[i].diagonal
				},
				Apply: func(i int, old, newVal float64) float64 {
					if fadeDuration <= 0 {
						return newVal
					}
					tob, _ := fs.fields.TimeOfBirth.GetScalar(i)
					age := currentTime - tob
					if age >= fadeDuration {
						return newVal
					}
					w := age / fadeDuration
					if w < 0 {
						w = 0
					}
					return old + w*(newVal-old)
				},
			}
			solved, res := SolveComponent(problem, x0, s.Tolerance, fs.fields.RestDensity, s.MaxIters)
			velocities[d] = solved
			if res.Iterations > worst {
				worst = res.Iterations
			}
			if res.Diverged {
				anyDiverged = true
			}
		}

		for i := 0; i < n; i++ {
			v := make([]float64, s.Dim)
			for d := 0; d < s.Dim; d++ {
				v[d] = velocities[d][i]
			}
			fs.fields.Velocity.SetVector(i, v)
		}

		iters[fi] = worst
		diverged[fi] = anyDiverged
	}
	return iters, diverged, nil
}

// laplacianRow holds the precomputed SPH-Laplacian stencil for one
// particle: neighbor indices, their coefficients, and the row's own
// diagonal contribution (sum of the same coefficients, since the
// Brookshaw Laplacian is diagonally dominant by construction).
type laplacianRow struct {
	neighbors []int
	coeffs    []float64
	diagonal  float64
}

// computeLaplacianWeights builds the Brookshaw-style SPH Laplacian
// stencil (standard viscous-term discretisation, stored with its sign
// flipped so every coefficient is non-negative: -2*(N+2)*m_j/rho_i *
// (dx.gradW)/(|dx|^2 + 0.01h^2), where dx.gradW <= 0) for every
// particle in fs, using idx for neighbor search.
func (s *Solver) computeLaplacianWeights(fs *fluidState, idx *nhood.Index, h float64) []laplacianRow {
	n := fs.fields.Position.Len()
	rows := make([]laplacianRow, n)
	epsSq := laplacianEpsFactor * h * h
	scheme.ParallelFor(n, func(worker, i int) {
		scr := s.scratch.For(worker)
		scr.Gather(idx, fs.fields.Handle.Index, i)
		xi, _ := fs.fields.Position.GetVector(i)
		rhoi, _ := fs.fields.Density.GetScalar(i)

		var row laplacianRow
		for _, ng := range scr.Groups() {
			other := s.byIndex(ng)
			if other == nil {
				continue
			}
			for _, j := range scr.Items(ng) {
				if other.fields.Handle.Index == fs.fields.Handle.Index && j == i {
					continue
				}
				xj, _ := other.fields.Position.GetVector(j)
				dx := tensor.Sub(xi, xj)
				grad := tensor.KernelGradient(dx, h, s.Dim)
				denom := tensor.NormSquared(dx) + epsSq
				if denom < 1e-300 || rhoi < 1e-300 {
					continue
				}
				coeff := -2 * float64(s.Dim+2) * other.fields.Mass / rhoi * tensor.Dot(dx, grad) / denom
				row.neighbors = append(row.neighbors, j)
				row.coeffs = append(row.coeffs, coeff)
				row.diagonal += coeff
			}
		}
		rows[i] = row
	})
	return rows
}

// makeSystem builds the System closure for one component from
// precomputed Laplacian rows: (A x)_i = x_i + dt*nu*(diag_i*x_i -
// sum_j coeff_ij*x_j), the implicit-Euler diffusion operator per spec
// §4.G's "(I - nu*dt*L)" form.
func makeSystem(rows []laplacianRow, nu, dt float64) func(i int, x []float64) float64 {
	return func(i int, x []float64) float64 {
		w := rows[i]
		diffusion := w.diagonal * x[i]
		for k, j := range w.neighbors {
			diffusion -= w.coeffs[k] * x[j]
		}
		return x[i] + dt*nu*diffusion
	}
}

// Require declares no additional fields: this solver reads and writes
// the velocity field sesph's scheme already owns, plus the uniform
// "viscosity" per-group coefficient sesph already requires.
func Require(*model.Model) error { return nil }
