package nhood

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gofem-sph/field"
	"github.com/cpmech/gofem-sph/model"
	"github.com/cpmech/gofem-sph/tensor"
)

func buildModel(points [][]float64) *model.Model {
	m := model.NewModel()
	g, _ := m.AddGroup("fluid", "fluid")
	g.AddVarying("position", tensor.TensorType{Ctype: tensor.Real, Shape: tensor.VectorShape(3)})
	g.CreateItems(len(points))
	pos, _ := g.GetVarying("position")
	view, _ := field.AsRealView(pos)
	for i, p := range points {
		view.SetVector(i, p)
	}
	return m
}

func bruteForceNeighbors(points [][]float64, i int, r float64) map[int]bool {
	out := make(map[int]bool)
	for j, q := range points {
		d2 := 0.0
		for k := range q {
			d := points[i][k] - q[k]
			d2 += d * d
		}
		if d2 <= r*r {
			out[j] = true
		}
	}
	return out
}

func Test_nhood01(tst *testing.T) {

	chk.PrintTitle("nhood01: matches a naive quadratic oracle")

	points := [][]float64{
		{0, 0, 0}, {0.01, 0, 0}, {0.02, 0, 0}, {1, 1, 1}, {0.5, 0.5, 0.5},
	}
	m := buildModel(points)

	idx := NewIndex()
	if err := idx.SetRadius(0.05); err != nil {
		tst.Fatalf("SetRadius failed: %v", err)
	}
	idx.Load(m)
	idx.Update()

	for i := range points {
		got := make(map[int]bool)
		idx.Neighbors(0, i, func(ng, ni int) {
			if ng != 0 {
				tst.Fatalf("unexpected group %d", ng)
			}
			got[ni] = true
		})
		want := bruteForceNeighbors(points, i, 0.05)
		if len(got) != len(want) {
			tst.Fatalf("particle %d: got %v want %v", i, got, want)
		}
		for k := range want {
			if !got[k] {
				tst.Fatalf("particle %d: missing neighbor %d", i, k)
			}
		}
	}
}

func Test_nhood02(tst *testing.T) {

	chk.PrintTitle("nhood02: bad radius rejected")

	idx := NewIndex()
	err := idx.SetRadius(0)
	if err == nil {
		tst.Fatalf("expected BadRadiusError")
	}
	err = idx.SetRadius(-1)
	if err == nil {
		tst.Fatalf("expected BadRadiusError")
	}
}

func Test_nhood03(tst *testing.T) {

	chk.PrintTitle("nhood03: missing position field")

	m := model.NewModel()
	m.AddGroup("no_position", "fluid")
	idx := NewIndex()
	idx.SetRadius(0.1)
	idx.Load(m)
	idx.Update()
	err := idx.Neighbors(0, 0, func(int, int) {})
	if err == nil {
		tst.Fatalf("expected MissingPositionError")
	}
}

func Test_nhood04(tst *testing.T) {

	chk.PrintTitle("nhood04: permute preserves neighbor results")

	points := make([][]float64, 0, 27)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				points = append(points, []float64{float64(i) * 0.01, float64(j) * 0.01, float64(k) * 0.01})
			}
		}
	}
	m := buildModel(points)
	idx := NewIndex()
	idx.SetRadius(0.015)
	idx.Load(m)
	idx.Update()

	before := make(map[int]bool)
	idx.Neighbors(0, 0, func(_, ni int) { before[ni] = true })

	if err := idx.Permute(m); err != nil {
		tst.Fatalf("Permute failed: %v", err)
	}
	idx.Load(m)
	idx.Update()

	// the physical point set is unchanged by permutation, so the total
	// neighbor-pair count summed over all particles must match too.
	total := 0
	for i := range points {
		count := 0
		idx.Neighbors(0, i, func(int, int) { count++ })
		total += count
	}
	expected := 0
	for i := range points {
		expected += len(bruteForceNeighbors(points, i, 0.015))
	}
	if total != expected {
		tst.Fatalf("unexpected total neighbor count after permute: got %d want %d", total, expected)
	}
	_ = before
}
