package tensor

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_kernel01(tst *testing.T) {

	chk.PrintTitle("kernel01: symmetry and antisymmetry")

	h := 0.025
	for _, dim := range []int{1, 2, 3} {
		dx := make([]float64, dim)
		for i := range dx {
			dx[i] = 0.3 * h * float64(i+1)
		}
		ndx := Scale(-1, dx)

		w1 := Kernel(dx, h, dim)
		w2 := Kernel(ndx, h, dim)
		chk.Scalar(tst, "W(dx)==W(-dx)", 1e-14, w1, w2)

		g1 := KernelGradient(dx, h, dim)
		g2 := KernelGradient(ndx, h, dim)
		for i := range g1 {
			chk.Scalar(tst, "gradW(dx)==-gradW(-dx)", 1e-12, g1[i], -g2[i])
		}
	}
}

func Test_kernel02(tst *testing.T) {

	chk.PrintTitle("kernel02: integrates to one over the support")

	h := 0.05
	for dim := 1; dim <= 3; dim++ {
		sum, vol := integrateKernel(h, dim)
		chk.AnaNum(tst, "∫W dV", 1.5e-2, 1.0, sum*vol, false)
	}
}

// integrateKernel performs a crude Riemann-sum integration of the kernel
// over a box enclosing its support, returning the accumulated weight and
// the per-cell volume element.
func integrateKernel(h float64, dim int) (sum, cellVol float64) {
	support := KernelSupportRadius(h)
	n := 60
	step := 2 * support / float64(n)
	cellVol = math.Pow(step, float64(dim))
	var rec func(depth int, dx []float64)
	rec = func(depth int, dx []float64) {
		if depth == dim {
			sum += Kernel(dx, h, dim)
			return
		}
		for i := 0; i < n; i++ {
			x := -support + step*(float64(i)+0.5)
			rec(depth+1, append(dx, x))
		}
	}
	rec(0, make([]float64, 0, dim))
	return
}

func Test_kernel03(tst *testing.T) {

	chk.PrintTitle("kernel03: support radius")

	h := 0.1
	chk.Scalar(tst, "support", 1e-15, KernelSupportRadius(h), 0.2)
}
