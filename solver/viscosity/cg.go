// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package viscosity implements the implicit-viscosity component-wise
// conjugate-gradient solver of spec §4.G: a generic preconditioned CG
// engine driven by scheme-supplied rhs/system/diagonal/apply closures,
// run once per spatial dimension.
//
// Grounded on spec §4.F's IISPH relaxed-Jacobi solver for the surrounding
// solver-state conventions (warm-started unknowns, globals-as-
// convergence-signal) and on the num/CG style of linear solvers gofem's
// sibling gosl package exposes for FEM systems — gosl itself has no
// meshless CG, so the kernel here is original to this port, written in
// gofem's plain-error-return idiom.
package viscosity

import (
	"math"

	"github.com/cpmech/gofem-sph/scheme"
)

// Problem bundles the three required closures and one optional closure
// spec §4.G names: rhs(f), system(f, x) = (A x)_f using the current
// thread's neighbor list, diagonal(f) for the Jacobi preconditioner, and
// an optional apply(f, old, new) that can suppress the update (e.g. for
// newborn particles during fade_duration).
type Problem struct {
	N        int
	RHS      func(i int) float64
	System   func(i int, x []float64) float64
	Diagonal func(i int) float64
	Apply    func(i int, old, new float64) float64
}

// Result reports what SolveComponent did.
type Result struct {
	Iterations int
	Diverged   bool
}

const breakdownEps = 1e-30

// SolveComponent runs preconditioned CG for one spatial component,
// terminating when r.r < eps^2 * b.b (eps = tolerance * 1e-5 *
// restDensity) or after maxIters iterations. x0 is the initial guess
// (e.g. the previous step's velocity component, or nil for zero);
// returns the solved vector, without mutating x0.
func SolveComponent(p Problem, x0 []float64, tolerance, restDensity float64, maxIters int) ([]float64, Result) {
	n := p.N
	x := make([]float64, n)
	if x0 != nil {
		copy(x, x0)
	}

	b := make([]float64, n)
	bNormRed := scheme.NewReduction(scheme.ReduceSum, scheme.NumWorkers)
	scheme.ParallelFor(n, func(worker, i int) {
		b[i] = p.RHS(i)
		bNormRed.Accumulate(worker, b[i]*b[i])
	})
	bNormSq := bNormRed.Combine()

	eps := tolerance * 1e-5 * restDensity
	threshold := eps * eps * bNormSq

	r := make([]float64, n)
	scheme.ParallelFor(n, func(_, i int) {
		r[i] = b[i] - p.System(i, x)
	})

	z := make([]float64, n)
	applyPreconditioner(p, r, z)

	d := make([]float64, n)
	copy(d, z)

	rz := parallelDot(n, r, z)

	var res Result
	for iter := 0; iter < maxIters; iter++ {
		ad := make([]float64, n)
		scheme.ParallelFor(n, func(_, i int) {
			ad[i] = p.System(i, d)
		})
		dAd := parallelDot(n, d, ad)
		if math.Abs(dAd) < breakdownEps {
			res.Diverged = true
			res.Iterations = iter
			return x, res
		}
		alpha := rz / dAd

		scheme.ParallelFor(n, func(_, i int) {
			newXi := x[i] + alpha*d[i]
			if p.Apply != nil {
				newXi = p.Apply(i, x[i], newXi)
			}
			x[i] = newXi
			r[i] -= alpha * ad[i]
		})

		rr := parallelDot(n, r, r)
		res.Iterations = iter + 1
		if rr < threshold {
			return x, res
		}

		applyPreconditioner(p, r, z)
		rzNew := parallelDot(n, r, z)
		if math.Abs(rzNew) < breakdownEps {
			res.Diverged = true
			return x, res
		}
		beta := rzNew / rz
		scheme.ParallelFor(n, func(_, i int) {
			d[i] = z[i] + beta*d[i]
		})
		rz = rzNew
	}
	return x, res
}

func applyPreconditioner(p Problem, r, z []float64) {
	scheme.ParallelFor(p.N, func(_, i int) {
		diag := p.Diagonal(i)
		if math.Abs(diag) < breakdownEps {
			z[i] = 0
			return
		}
		z[i] = r[i] / diag
	})
}

// parallelDot computes a.b by accumulating per-worker partials under
// ParallelFor's fork/join barrier (spec §4.E/§5's reduction contract),
// rather than a single-threaded loop.
func parallelDot(n int, a, b []float64) float64 {
	red := scheme.NewReduction(scheme.ReduceSum, scheme.NumWorkers)
	scheme.ParallelFor(n, func(worker, i int) {
		red.Accumulate(worker, a[i]*b[i])
	})
	return red.Combine()
}
